// README: Dispatch route data for the tracking map, via Google Maps Directions.
package maps

import (
	"context"
	"fmt"
	"math"
	"time"

	"googlemaps.github.io/maps"

	"courierdash/internal/types"
)

const earthRadiusKm = 6371.0

// Route is the polyline drawn on the tracking map between pickup and delivery.
type Route struct {
	Duration       time.Duration
	DistanceMeters int
	Points         []types.Point
}

// RouteService handles interactions with the Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// DispatchRoute returns the driving route from pickup to delivery. Callers fall
// back to StraightLine when the API is unavailable.
func (s *RouteService) DispatchRoute(ctx context.Context, pickup, delivery types.Point) (Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", pickup.Lat, pickup.Lng),
		Destination: fmt.Sprintf("%f,%f", delivery.Lat, delivery.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	path, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return Route{}, fmt.Errorf("decode polyline: %w", err)
	}
	points := make([]types.Point, 0, len(path))
	for _, ll := range path {
		points = append(points, types.Point{Lat: ll.Lat, Lng: ll.Lng})
	}
	return Route{
		Duration:       leg.Duration,
		DistanceMeters: leg.Distance.Meters,
		Points:         points,
	}, nil
}

// StraightLine is the degraded route used when Directions is not configured or
// fails: a two-point segment with a great-circle distance estimate.
func StraightLine(pickup, delivery types.Point) Route {
	km := haversineKm(pickup.Lat, pickup.Lng, delivery.Lat, delivery.Lng)
	return Route{
		DistanceMeters: int(km * 1000),
		Points:         []types.Point{pickup, delivery},
	}
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

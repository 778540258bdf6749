// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courierdash/internal/backend"
	"courierdash/internal/http/handlers"
	"courierdash/internal/http/middleware"
	"courierdash/internal/maps"
	"courierdash/internal/modules/customer"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/integrations"
	"courierdash/internal/modules/session"
	"courierdash/internal/modules/tracking"
	"courierdash/internal/parse"
)

type RouterDeps struct {
	JWTSecret string
	Platform  *backend.Client
	Customers *customer.Service
	Sessions  *session.Registry
	Defaults  draft.Defaults
	Settings  *integrations.Service
	Trackers  *tracking.Manager
	Routes    *maps.RouteService   // optional
	AIParser  parse.ContactParser  // optional
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.JWTSecret))

	sessionDeps := session.Deps{
		Slots:     deps.Platform,
		Quotes:    deps.Platform,
		Customers: deps.Customers,
	}
	draftHandler := handlers.NewDraftHandler(deps.Sessions, sessionDeps, deps.Platform, deps.Defaults)
	api.POST("/drafts", draftHandler.Create)
	api.GET("/drafts/:id", draftHandler.Get)
	api.DELETE("/drafts/:id", draftHandler.Delete)
	api.PATCH("/drafts/:id/party/:section", draftHandler.UpdateParty)
	api.POST("/drafts/:id/party/:section/reset", draftHandler.ResetParty)
	api.PATCH("/drafts/:id/timeframe", draftHandler.UpdateTimeframe)
	api.PUT("/drafts/:id/date", draftHandler.SetDate)
	api.PUT("/drafts/:id/service", draftHandler.SetService)
	api.PUT("/drafts/:id/slot", draftHandler.SelectSlot)
	api.POST("/drafts/:id/submit", draftHandler.Submit)
	api.POST("/drafts/:id/ack", draftHandler.Acknowledge)

	customerHandler := handlers.NewCustomerHandler(deps.Customers)
	api.GET("/customers", customerHandler.Lookup)

	addressHandler := handlers.NewAddressHandler(deps.Platform)
	api.GET("/addresses/autocomplete", addressHandler.Autocomplete)
	api.GET("/addresses/validate", addressHandler.Validate)

	orderHandler := handlers.NewOrderHandler(deps.Platform, deps.Trackers, deps.Routes)
	api.GET("/orders/:id", orderHandler.Get)
	api.PATCH("/orders/:id", orderHandler.Update)
	api.DELETE("/orders/:id", orderHandler.Cancel)
	api.GET("/orders/:id/tracking", orderHandler.Track)
	api.POST("/orders/:id/tracking/pause", orderHandler.PauseTracking)
	api.POST("/orders/:id/tracking/resume", orderHandler.ResumeTracking)
	api.DELETE("/orders/:id/tracking", orderHandler.StopTracking)
	api.GET("/orders/:id/route", orderHandler.Route)

	integrationHandler := handlers.NewIntegrationHandler(deps.Settings)
	api.GET("/integrations", integrationHandler.Get)
	api.PUT("/integrations", integrationHandler.Save)
	api.POST("/integrations/rotate-key", integrationHandler.RotateAPIKey)

	parseHandler := handlers.NewParseHandler(deps.AIParser)
	api.POST("/parse/contact", parseHandler.Contact)

	return r
}

// README: Common value objects shared across modules.
package types

// ID is an opaque identifier assigned by the courier platform.
type ID string

// Money is an integer amount in cents.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Point is a geographic coordinate handed to the map collaborator.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

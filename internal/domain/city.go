package domain

import "time"

// City is a dispatchable city with resolved coordinates and per-class prices.
type City struct {
	ID        string
	Title     string
	Latitude  float64
	Longitude float64
	IsAllowed bool
	Prices    CityPrices
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CityPrices holds the fare for each class of service, in integer currency
// units.
type CityPrices struct {
	Economy  int64
	Standard int64
	Comfort  int64
	Delivery int64
}

// PriceFor returns the fare for the given travel class.
func (p CityPrices) PriceFor(class TravelClass) int64 {
	switch class {
	case TravelClassEconomy:
		return p.Economy
	case TravelClassComfort:
		return p.Comfort
	default:
		return p.Standard
	}
}

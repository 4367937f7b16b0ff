package domain

import "time"

// TravelClass represents the class of service for a travel request.
type TravelClass string

const (
	TravelClassEconomy  TravelClass = "economy"
	TravelClassStandard TravelClass = "standard"
	TravelClassComfort  TravelClass = "comfort"
)

// Valid reports whether c is a recognized travel class.
func (c TravelClass) Valid() bool {
	return c == TravelClassEconomy || c == TravelClassStandard || c == TravelClassComfort
}

// TravelRequestKind discriminates the two travel request variants.
type TravelRequestKind string

const (
	KindTravel   TravelRequestKind = "passengertravel"
	KindDelivery TravelRequestKind = "passengerpost"
)

// Valid reports whether k is a recognized request kind.
func (k TravelRequestKind) Valid() bool {
	return k == KindTravel || k == KindDelivery
}

// TravelRequest is the priced, routed thing an order points to. The set is
// closed: Travel and Delivery are the only variants.
type TravelRequest interface {
	Kind() TravelRequestKind
	RequestID() string
	RequestPrice() int64

	sealedTravelRequest()
}

// Travel is a passenger ride request.
type Travel struct {
	ID             string
	UserID         int64
	From           Location
	To             Location
	Price          int64
	Destination    string
	StartTime      time.Time
	TravelClass    TravelClass
	PassengerCount int
	HasWoman       bool
	Rate           int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Kind returns KindTravel.
func (t *Travel) Kind() TravelRequestKind { return KindTravel }

// RequestID returns the request identity.
func (t *Travel) RequestID() string { return t.ID }

// RequestPrice returns the price in integer currency units.
func (t *Travel) RequestPrice() int64 { return t.Price }

func (t *Travel) sealedTravelRequest() {}

// Delivery is a parcel delivery request.
type Delivery struct {
	ID          string
	UserID      int64
	From        Location
	To          Location
	Price       int64
	Destination string
	StartTime   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Kind returns KindDelivery.
func (d *Delivery) Kind() TravelRequestKind { return KindDelivery }

// RequestID returns the request identity.
func (d *Delivery) RequestID() string { return d.ID }

// RequestPrice returns the price in integer currency units.
func (d *Delivery) RequestPrice() int64 { return d.Price }

func (d *Delivery) sealedTravelRequest() {}

// Compile-time check that both variants satisfy the union.
var (
	_ TravelRequest = (*Travel)(nil)
	_ TravelRequest = (*Delivery)(nil)
)

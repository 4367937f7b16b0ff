package domain

import (
	"errors"
	"time"
)

var (
	// ErrUnknownOrderStatus is returned when a submitted status value is not
	// one of the recognized lifecycle statuses.
	ErrUnknownOrderStatus = errors.New("unknown order status")

	// ErrDriverChangeDenied is returned in strict mode when a submitted driver
	// reference conflicts with the one already stored on the order.
	ErrDriverChangeDenied = errors.New("driver change denied")
)

// OrderStatus represents the current lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "created"
	OrderStatusAssigned OrderStatus = "assigned"
	OrderStatusArrived  OrderStatus = "arrived"
	OrderStatusStarted  OrderStatus = "started"
	OrderStatusEnded    OrderStatus = "ended"
	OrderStatusRejected OrderStatus = "rejected"
)

// Valid reports whether s is a recognized order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusAssigned, OrderStatusArrived,
		OrderStatusStarted, OrderStatusEnded, OrderStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusEnded || s == OrderStatusRejected
}

// OrderType represents the kind of request an order was issued against.
type OrderType string

const (
	OrderTypeTravel   OrderType = "travel"
	OrderTypeDelivery OrderType = "delivery"
)

// Valid reports whether t is a recognized order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeTravel || t == OrderTypeDelivery
}

// RequestKind returns the travel request kind an order of this type must
// reference.
func (t OrderType) RequestKind() TravelRequestKind {
	if t == OrderTypeDelivery {
		return KindDelivery
	}
	return KindTravel
}

// Order links a passenger's travel or delivery request to an optional driver
// and a lifecycle status. UserID is the creator's telegram id, denormalized.
// DriverID is empty until a driver claims the order; once set it never changes
// to a different driver.
type Order struct {
	ID          string
	UserID      int64
	DriverID    string
	Status      OrderStatus
	OrderType   OrderType
	RequestKind TravelRequestKind
	RequestID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AllowDriverChange is the assignment guard: a driver reference may be written
// only when no driver is set yet, or when the write repeats the existing one.
func AllowDriverChange(oldDriver, newDriver string) bool {
	return oldDriver == "" || oldDriver == newDriver
}

// ApplyTransition mutates o with a submitted status and driver reference and
// returns the resulting transition event.
//
// An empty newStatus keeps the current status; anything else must be a
// recognized value. A driver reference may only fill an empty slot or repeat
// the stored one. A conflicting reference fails in strict mode; otherwise the
// stored driver wins and the rest of the write still applies. Once a driver
// is present, a resulting status of CREATED or ASSIGNED is forced to ASSIGNED.
func (o *Order) ApplyTransition(newStatus OrderStatus, driverID string, strict bool) (OrderTransitioned, error) {
	old := o.Status

	next := newStatus
	if next == "" {
		next = o.Status
	} else if !next.Valid() {
		return OrderTransitioned{}, ErrUnknownOrderStatus
	}

	if driverID != "" {
		if !AllowDriverChange(o.DriverID, driverID) {
			if strict {
				return OrderTransitioned{}, ErrDriverChangeDenied
			}
		} else {
			o.DriverID = driverID
		}
	}

	if o.DriverID != "" && (next == OrderStatusCreated || next == OrderStatusAssigned) {
		next = OrderStatusAssigned
	}

	o.Status = next
	return OrderTransitioned{
		OrderID:   o.ID,
		OldStatus: old,
		NewStatus: next,
		DriverID:  o.DriverID,
	}, nil
}

// OrderTransitioned is the event published after an order mutation commits.
type OrderTransitioned struct {
	OrderID   string
	OldStatus OrderStatus
	NewStatus OrderStatus
	DriverID  string
}

package service

import "errors"

var (
	ErrInvalidOrderID   = errors.New("invalid order id")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidDriverID  = errors.New("invalid driver id")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidClass     = errors.New("invalid travel class")
	ErrInvalidLocation  = errors.New("invalid location")

	// ErrRequestKindMismatch is returned when the order type does not match
	// the kind of the referenced travel request.
	ErrRequestKindMismatch = errors.New("order type does not match request kind")

	// ErrDriverReassignmentDenied is returned in strict mode when a submit
	// attempts to move an order from one driver to another.
	ErrDriverReassignmentDenied = errors.New("order is already assigned to a different driver")

	ErrDriverNotFound    = errors.New("driver not found")
	ErrPassengerNotFound = errors.New("passenger not found")
	ErrCityNotFound      = errors.New("city not found")
)

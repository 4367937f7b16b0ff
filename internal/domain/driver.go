package domain

import "time"

// DriverStatus represents the availability of a driver.
type DriverStatus string

const (
	DriverStatusOffline DriverStatus = "offline"
	DriverStatusOnline  DriverStatus = "online"
)

// DefaultDriverAmount is the starting balance credited to a new driver.
const DefaultDriverAmount int64 = 150000

// Driver represents a driver in the system. Amount is a running balance in
// integer currency units; it is mutated only by settlement and by explicit
// administrative adjustment.
type Driver struct {
	ID         string
	TelegramID int64
	FullName   string
	Phone      string
	Rating     int
	TotalRides int
	FromCity   string
	ToCity     string
	Status     DriverStatus
	Amount     int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DriverTransaction is a ledger entry recorded for every balance mutation.
// OrderID is empty for manual adjustments.
type DriverTransaction struct {
	ID        string
	DriverID  string
	OrderID   string
	Amount    int64
	Reason    string
	CreatedAt time.Time
}

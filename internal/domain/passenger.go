package domain

import "time"

// Passenger represents a passenger-bot user.
type Passenger struct {
	TelegramID int64
	FullName   string
	Phone      string
	Rating     int
	TotalRides int
	CreatedAt  time.Time
}

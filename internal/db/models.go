package db

import "time"

type TimeSlot struct {
	ID        int
	StartTime string
	EndTime   string
	SortOrder int
}

type SystemSettings struct {
	MaxAdvanceBookingDays int
	TablesPerSlot         int
}

type Reservation struct {
	ID              int
	Code            string
	GuestFirstName  string
	GuestLastName   string
	GuestEmail      string
	GuestPhone      string
	ReservationDate time.Time
	TimeSlotID      int
	GuestCount      int
	Status          string
	PaymentStatus   string
	StripeSessionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package entities

import "time"

type CreateReservationResponse struct {
	ReservationCode string `json:"reservation_code"`
	CheckoutURL     string `json:"checkout_url"`
	SessionID       string `json:"session_id,omitempty"`
}

type ReservationResponse struct {
	Code            string    `json:"code"`
	GuestFirstName  string    `json:"guest_first_name"`
	GuestLastName   string    `json:"guest_last_name"`
	GuestEmail      string    `json:"guest_email"`
	GuestPhone      string    `json:"guest_phone"`
	ReservationDate string    `json:"reservation_date"`
	TimeSlotID      int       `json:"time_slot_id"`
	SlotStartTime   string    `json:"slot_start_time"`
	SlotEndTime     string    `json:"slot_end_time"`
	GuestCount      int       `json:"guest_count"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

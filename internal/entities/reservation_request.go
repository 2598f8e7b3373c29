package entities

type ReservationRequest struct {
	GuestFirstName  string `json:"guest_first_name"`
	GuestLastName   string `json:"guest_last_name"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone"`
	ReservationDate string `json:"reservation_date"` // YYYY-MM-DD
	TimeSlotID      int    `json:"time_slot_id"`
	GuestCount      int    `json:"guest_count"`
}

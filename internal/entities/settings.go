package entities

type SettingsResponse struct {
	MaxAdvanceBookingDays int `json:"max_advance_booking_days"`
	TablesPerSlot         int `json:"tables_per_slot"`
}

type TimeSlotResponse struct {
	ID        int    `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Formatted string `json:"formatted"`
}

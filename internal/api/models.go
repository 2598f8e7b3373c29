package api

// Admin overrides
type UpdateDisabledDatesRequest struct {
	DisabledDates []string `json:"disabled_dates"`
}

type UpdateDisabledTimeSlotsRequest struct {
	DisabledTimeSlots map[string][]string `json:"disabled_time_slots"`
}

// Admin settings
type UpdateSettingsRequest struct {
	MaxAdvanceBookingDays int `json:"max_advance_booking_days"`
	TablesPerSlot         int `json:"tables_per_slot"`
}

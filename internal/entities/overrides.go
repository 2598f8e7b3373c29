package entities

// Overrides are keyed by "MonthName-day" strings, e.g. "January-15".
// Slot overrides map that key to formatted start times, e.g. ["18:00", "20:30"].

type DisabledDatesResponse struct {
	DisabledDates []string `json:"disabled_dates"`
}

type DisabledTimeSlotsResponse struct {
	DisabledTimeSlots map[string][]string `json:"disabled_time_slots"`
}

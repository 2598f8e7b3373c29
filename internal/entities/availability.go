package entities

type FullyBookedDatesResponse struct {
	FullyBookedDates []int `json:"fully_booked_dates"`
}

type OccupiedTimeSlotsResponse struct {
	OccupiedTimeSlots []int `json:"occupied_time_slots"`
}

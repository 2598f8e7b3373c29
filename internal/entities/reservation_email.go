package entities

type ReservationEmailData struct {
	GuestName       string
	ReservationCode string
	DateFormatted   string
	TimeFormatted   string
	GuestCount      int
	Status          string
	CurrentYear     int
}

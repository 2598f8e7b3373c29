package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"osteria/internal/entities"
	"osteria/internal/utils"
)

// Session drives one guest's reservation flow: month navigation, date and
// time slot selection, guest details, and the confirm/submit step. All state
// lives behind one mutex; availability fetches run in goroutines and commit
// their result only if their request key still matches the current selection,
// so a stale response can never overwrite a newer choice.
type Session struct {
	mu sync.Mutex
	wg sync.WaitGroup

	client    AvailabilityClient
	overrides Overrides
	slots     []TimeSlot
	settings  Settings
	now       func() time.Time

	stage Stage

	month time.Month
	year  int
	day   int // selected day of month, 0 = none

	slotID     int // selected time slot id, 0 = none
	guestCount int
	firstName  string
	lastName   string
	email      string
	phone      string

	occupied    map[int]bool
	fullyBooked map[int]bool

	dateKey  string // request tag of the in-flight occupied-slots fetch
	monthKey string // request tag of the in-flight fully-booked fetch

	redirectURL string
}

// Config wires a Session. Client is required; everything else has defaults.
type Config struct {
	Client     AvailabilityClient
	Overrides  OverrideStore
	TimeSlots  []TimeSlot
	Settings   Settings
	Month      time.Month // initially viewed month, defaults to the current one
	Year       int
	GuestCount int // defaults to 1
	Now        func() time.Time
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("booking: Client is required")
	}

	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()

	month := cfg.Month
	year := cfg.Year
	if month == 0 {
		month = now.Month()
	}
	if year == 0 {
		year = now.Year()
	}

	guestCount := cfg.GuestCount
	if guestCount < 1 {
		guestCount = 1
	}

	overrides := EmptyOverrides()
	if cfg.Overrides != nil {
		loaded, err := cfg.Overrides.Load()
		if err != nil {
			// Fail open: an unreadable override store blocks nothing.
			log.Printf("warning: could not load admin overrides: %v", err)
		} else {
			overrides = loaded
		}
	}

	s := &Session{
		client:      cfg.Client,
		overrides:   overrides,
		slots:       cfg.TimeSlots,
		settings:    cfg.Settings,
		now:         nowFn,
		stage:       StageIdle,
		month:       month,
		year:        year,
		guestCount:  guestCount,
		occupied:    map[int]bool{},
		fullyBooked: map[int]bool{},
	}

	s.mu.Lock()
	s.fetchFullyBooked()
	s.mu.Unlock()
	return s, nil
}

// Wait blocks until every in-flight availability fetch has landed.
func (s *Session) Wait() {
	s.wg.Wait()
}

// ViewMonth navigates the calendar. Any selected date or slot is cleared and
// the fully-booked set for the new month is refetched.
func (s *Session) ViewMonth(month time.Month, year int) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("booking: invalid month %d", month)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == StageSubmitting || s.stage == StageConfirmed {
		return fmt.Errorf("booking: cannot navigate while %s", s.stage)
	}

	s.month = month
	s.year = year
	s.day = 0
	s.slotID = 0
	s.occupied = map[int]bool{}
	s.fullyBooked = map[int]bool{}
	s.dateKey = ""
	s.stage = StageIdle
	s.fetchFullyBooked()
	return nil
}

// IsDateDisabled reports whether the day of the viewed month cannot be
// selected: in the past or today, past the booking window (the boundary day
// itself is allowed), or admin-disabled.
func (s *Session) IsDateDisabled(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDateDisabled(day)
}

func (s *Session) isDateDisabled(day int) bool {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	date := time.Date(s.year, s.month, day, 0, 0, 0, 0, time.UTC)

	if !date.After(today) {
		return true
	}
	if date.After(today.AddDate(0, 0, s.settings.MaxAdvanceBookingDays)) {
		return true
	}
	return s.overrides.DateDisabled(utils.DateKey(s.month, day))
}

// IsDateFullyBooked reports whether the day has no open slot left. A fully
// booked day is still selectable; it is marked in the calendar and slot-level
// occupancy blocks the booking.
func (s *Session) IsDateFullyBooked(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullyBooked[day]
}

// IsTimeSlotAdminDisabled reports whether the slot is admin-disabled on the
// currently selected date.
func (s *Session) IsTimeSlotAdminDisabled(slotID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isTimeSlotAdminDisabled(slotID)
}

func (s *Session) isTimeSlotAdminDisabled(slotID int) bool {
	if s.day == 0 {
		return false
	}
	slot := s.slotByID(slotID)
	if slot == nil {
		return false
	}
	return s.overrides.SlotDisabled(utils.DateKey(s.month, s.day), slot.StartTime)
}

// SelectDate picks a day of the viewed month and refetches the occupied
// slots for it.
func (s *Session) SelectDate(day int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == StageSubmitting || s.stage == StageConfirmed {
		return fmt.Errorf("booking: cannot select a date while %s", s.stage)
	}
	if day < 1 {
		return fmt.Errorf("booking: invalid day %d", day)
	}
	if s.isDateDisabled(day) {
		return fmt.Errorf("booking: day %d is not available", day)
	}

	s.day = day
	s.stage = StageSlotsLoading
	s.occupied = map[int]bool{}
	s.fetchOccupied()
	return nil
}

// SelectTimeSlot picks a time slot for the selected date.
func (s *Session) SelectTimeSlot(slotID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.day == 0 {
		return fmt.Errorf("booking: select a date first")
	}
	if s.slotByID(slotID) == nil {
		return fmt.Errorf("booking: unknown time slot %d", slotID)
	}
	if s.occupied[slotID] {
		return fmt.Errorf("booking: time slot %d is occupied", slotID)
	}
	if s.isTimeSlotAdminDisabled(slotID) {
		return fmt.Errorf("booking: time slot %d is not available on the selected date", slotID)
	}

	s.slotID = slotID
	return nil
}

func (s *Session) SetGuestCount(n int) error {
	if n < 1 {
		return fmt.Errorf("booking: guest count must be at least 1")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guestCount = n
	return nil
}

func (s *Session) SetContact(firstName, lastName, email, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firstName = firstName
	s.lastName = lastName
	s.email = email
	s.phone = phone
}

// FormatSelectedDateTime renders the current selection for display, e.g.
// "January 15 (Wednesday), 18:00, 2 Guests". With neither date nor time
// chosen it returns the placeholder "Select date and time".
func (s *Session) FormatSelectedDateTime() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.day == 0 && s.slotID == 0 {
		return "Select date and time"
	}

	var parts []string
	if s.day != 0 {
		date := time.Date(s.year, s.month, s.day, 0, 0, 0, 0, time.UTC)
		parts = append(parts, date.Format("January 2 (Monday)"))
	}
	if slot := s.slotByID(s.slotID); slot != nil {
		parts = append(parts, slot.StartTime)
	}
	if s.guestCount == 1 {
		parts = append(parts, "1 Guest")
	} else {
		parts = append(parts, fmt.Sprintf("%d Guests", s.guestCount))
	}
	return strings.Join(parts, ", ")
}

// IsFormValid reports whether the reservation can be submitted.
func (s *Session) IsFormValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFormValid()
}

func (s *Session) isFormValid() bool {
	if s.day == 0 || s.slotID == 0 {
		return false
	}
	if s.occupied[s.slotID] || s.isTimeSlotAdminDisabled(s.slotID) {
		return false
	}
	if strings.TrimSpace(s.firstName) == "" || strings.TrimSpace(s.lastName) == "" {
		return false
	}
	email := strings.TrimSpace(s.email)
	if email == "" || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return false
	}
	return strings.TrimSpace(s.phone) != ""
}

// BookTable opens the confirmation step. An invalid form blocks it.
func (s *Session) BookTable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == StageSubmitting || s.stage == StageConfirmed {
		return fmt.Errorf("booking: already %s", s.stage)
	}
	if !s.isFormValid() {
		return fmt.Errorf("booking: the reservation form is not complete")
	}
	s.stage = StageConfirming
	return nil
}

// CancelBooking closes the confirmation step without submitting.
func (s *Session) CancelBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageConfirming {
		s.stage = StageReady
	}
}

// ConfirmBooking submits the reservation and returns the redirect URL for
// the checkout/confirmation page. Submission failures are returned to the
// caller untouched; the flow goes back to Ready so the guest can retry.
func (s *Session) ConfirmBooking(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.stage != StageConfirming {
		s.mu.Unlock()
		return "", fmt.Errorf("booking: nothing to confirm")
	}
	req := entities.ReservationRequest{
		GuestFirstName:  s.firstName,
		GuestLastName:   s.lastName,
		GuestEmail:      s.email,
		GuestPhone:      s.phone,
		ReservationDate: utils.ISODate(s.year, s.month, s.day),
		TimeSlotID:      s.slotID,
		GuestCount:      s.guestCount,
	}
	s.stage = StageSubmitting
	s.mu.Unlock()

	resp, err := s.client.CreateReservation(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stage = StageReady
		return "", err
	}
	s.stage = StageConfirmed
	s.redirectURL = resp.CheckoutURL
	return s.redirectURL, nil
}

// Accessors.

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) SelectedDay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// SelectedDateISO returns the selected date as YYYY-MM-DD, or "" when no
// date is chosen.
func (s *Session) SelectedDateISO() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.day == 0 {
		return ""
	}
	return utils.ISODate(s.year, s.month, s.day)
}

func (s *Session) SelectedTimeSlot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotID
}

func (s *Session) GuestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guestCount
}

func (s *Session) OccupiedTimeSlots() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.occupied))
	for _, slot := range s.slots {
		if s.occupied[slot.ID] {
			ids = append(ids, slot.ID)
		}
	}
	return ids
}

func (s *Session) FullyBookedDates() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := make([]int, 0, len(s.fullyBooked))
	for day := 1; day <= 31; day++ {
		if s.fullyBooked[day] {
			days = append(days, day)
		}
	}
	return days
}

func (s *Session) RedirectURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirectURL
}

// Internals. Callers hold s.mu.

func (s *Session) slotByID(id int) *TimeSlot {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return &s.slots[i]
		}
	}
	return nil
}

// reassignSlot keeps the invariant that the selected slot is never occupied:
// when the fresh occupied set covers it, the first open slot takes its place,
// or the selection clears when every slot is taken.
func (s *Session) reassignSlot() {
	if s.slotID == 0 || !s.occupied[s.slotID] {
		return
	}
	for _, slot := range s.slots {
		if !s.occupied[slot.ID] {
			s.slotID = slot.ID
			return
		}
	}
	s.slotID = 0
}

func (s *Session) fetchFullyBooked() {
	key := fmt.Sprintf("%04d-%02d", s.year, int(s.month))
	s.monthKey = key
	month, year := s.month, s.year

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		days, err := s.client.FullyBookedDates(context.Background(), int(month), year)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.monthKey != key {
			return // superseded by a newer month view
		}
		booked := map[int]bool{}
		if err != nil {
			log.Printf("warning: could not load fully booked dates for %s: %v", key, err)
		} else {
			for _, d := range days {
				booked[d] = true
			}
		}
		s.fullyBooked = booked
	}()
}

func (s *Session) fetchOccupied() {
	key := utils.ISODate(s.year, s.month, s.day)
	s.dateKey = key

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ids, err := s.client.OccupiedTimeSlots(context.Background(), key)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.dateKey != key {
			return // a newer date selection owns the state now
		}
		occupied := map[int]bool{}
		if err != nil {
			log.Printf("warning: could not load occupied time slots for %s: %v", key, err)
		} else {
			for _, id := range ids {
				occupied[id] = true
			}
		}
		s.occupied = occupied
		s.reassignSlot()
		if s.stage == StageSlotsLoading {
			s.stage = StageReady
		}
	}()
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"osteria/internal/entities"
)

type fakeClient struct {
	mu             sync.Mutex
	fullyBooked    []int
	fullyBookedErr error
	occupied       map[string][]int
	occupiedErr    error
	gates          map[string]chan struct{} // keyed by date, blocks occupied fetches
	monthGates     map[string]chan struct{} // keyed "YYYY-MM", blocks fully-booked fetches
	createResp     *entities.CreateReservationResponse
	createErr      error
	created        []entities.ReservationRequest
}

func (f *fakeClient) FullyBookedDates(ctx context.Context, month, year int) ([]int, error) {
	f.mu.Lock()
	gate := f.monthGates[fmt.Sprintf("%04d-%02d", year, month)]
	err := f.fullyBookedErr
	days := append([]int(nil), f.fullyBooked...)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return days, nil
}

func (f *fakeClient) OccupiedTimeSlots(ctx context.Context, date string) ([]int, error) {
	f.mu.Lock()
	gate := f.gates[date]
	err := f.occupiedErr
	ids := append([]int(nil), f.occupied[date]...)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (f *fakeClient) CreateReservation(ctx context.Context, req entities.ReservationRequest) (*entities.CreateReservationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func testSlots() []TimeSlot {
	return []TimeSlot{
		{ID: 1, StartTime: "18:00", EndTime: "19:30"},
		{ID: 2, StartTime: "19:30", EndTime: "21:00"},
		{ID: 3, StartTime: "21:00", EndTime: "22:30"},
	}
}

// newTestSession fixes the clock at 2025-01-10 with a 30 day booking window,
// viewing January 2025.
func newTestSession(t *testing.T, client *fakeClient, overrides Overrides) *Session {
	t.Helper()
	s, err := NewSession(Config{
		Client:    client,
		Overrides: &StaticOverrideStore{Overrides: overrides},
		TimeSlots: testSlots(),
		Settings:  Settings{MaxAdvanceBookingDays: 30},
		Month:     time.January,
		Year:      2025,
		Now: func() time.Time {
			return time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)
	return s
}

func fillValidContact(s *Session) {
	s.SetContact("Ada", "Lovelace", "ada@example.com", "+34600000000")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNewSessionDefaults(t *testing.T) {
	s := newTestSession(t, &fakeClient{}, Overrides{})
	s.Wait()

	require.Equal(t, StageIdle, s.Stage())
	require.Equal(t, 1, s.GuestCount())
	require.Equal(t, "", s.SelectedDateISO())
	require.Equal(t, "Select date and time", s.FormatSelectedDateTime())
}

func TestDateDisabledWindow(t *testing.T) {
	s := newTestSession(t, &fakeClient{}, Overrides{})
	s.Wait()

	tests := []struct {
		name     string
		day      int
		disabled bool
	}{
		{"yesterday", 9, true},
		{"today", 10, true},
		{"tomorrow", 11, false},
		{"window boundary", 40, false}, // normalizes to Feb 9, exactly 30 days out
		{"past window", 41, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.disabled, s.IsDateDisabled(tt.day))
		})
	}
}

func TestDateDisabledByOverride(t *testing.T) {
	overrides := Overrides{
		Dates: map[string]bool{"January-20": true},
		Slots: map[string]map[string]bool{},
	}
	s := newTestSession(t, &fakeClient{}, overrides)
	s.Wait()

	require.True(t, s.IsDateDisabled(20))
	require.False(t, s.IsDateDisabled(21))
	require.Error(t, s.SelectDate(20))
}

func TestFullyBookedDateStaysSelectable(t *testing.T) {
	client := &fakeClient{fullyBooked: []int{15, 16}}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.Equal(t, []int{15, 16}, s.FullyBookedDates())
	require.True(t, s.IsDateFullyBooked(15))
	require.False(t, s.IsDateFullyBooked(17))

	// A fully booked day is marked in the calendar but not blocked here;
	// slot occupancy does the blocking.
	require.NoError(t, s.SelectDate(15))
}

func TestSelectDateLoadsOccupiedSlots(t *testing.T) {
	client := &fakeClient{occupied: map[string][]int{"2025-01-15": {2}}}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	require.Equal(t, "2025-01-15", s.SelectedDateISO())
	s.Wait()

	require.Equal(t, StageReady, s.Stage())
	require.Equal(t, []int{2}, s.OccupiedTimeSlots())
	require.Error(t, s.SelectTimeSlot(2))
	require.NoError(t, s.SelectTimeSlot(1))
}

func TestOccupiedReassignsSelectedSlot(t *testing.T) {
	client := &fakeClient{occupied: map[string][]int{
		"2025-01-16": {2},
		"2025-01-17": {1, 2, 3},
	}}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.NoError(t, s.SelectTimeSlot(2))

	// The new date has slot 2 taken, so the selection moves to the first
	// open slot.
	require.NoError(t, s.SelectDate(16))
	s.Wait()
	require.Equal(t, 1, s.SelectedTimeSlot())
}

func TestOccupiedClearsSelectionWhenAllTaken(t *testing.T) {
	client := &fakeClient{occupied: map[string][]int{"2025-01-17": {1, 2, 3}}}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.NoError(t, s.SelectTimeSlot(1))

	require.NoError(t, s.SelectDate(17))
	s.Wait()
	require.Equal(t, 0, s.SelectedTimeSlot())
}

func TestStaleOccupiedResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{
		occupied: map[string][]int{
			"2025-01-15": {3},
			"2025-01-16": {1},
		},
		gates: map[string]chan struct{}{"2025-01-15": gate},
	}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	// The fetch for the 15th stays in flight while the guest moves on to
	// the 16th.
	require.NoError(t, s.SelectDate(15))
	require.NoError(t, s.SelectDate(16))
	waitFor(t, func() bool { return len(s.OccupiedTimeSlots()) > 0 })

	close(gate)
	s.Wait()

	// The late response for the 15th must not overwrite the 16th's data.
	require.Equal(t, "2025-01-16", s.SelectedDateISO())
	require.Equal(t, []int{1}, s.OccupiedTimeSlots())
}

func TestOccupiedFetchFailsOpen(t *testing.T) {
	client := &fakeClient{occupiedErr: errors.New("backend down")}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	s.Wait()

	require.Equal(t, StageReady, s.Stage())
	require.Empty(t, s.OccupiedTimeSlots())
	require.NoError(t, s.SelectTimeSlot(1))
}

func TestFullyBookedFetchFailsOpen(t *testing.T) {
	client := &fakeClient{fullyBookedErr: errors.New("backend down")}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.Empty(t, s.FullyBookedDates())
	require.NoError(t, s.SelectDate(15))
}

func TestAdminDisabledSlot(t *testing.T) {
	overrides := Overrides{
		Dates: map[string]bool{},
		Slots: map[string]map[string]bool{"January-15": {"18:00": true}},
	}
	s := newTestSession(t, &fakeClient{}, overrides)
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	s.Wait()

	require.True(t, s.IsTimeSlotAdminDisabled(1))
	require.Error(t, s.SelectTimeSlot(1))
	require.NoError(t, s.SelectTimeSlot(2))

	// The same slot is fine on a date without the override.
	require.NoError(t, s.SelectDate(16))
	s.Wait()
	require.False(t, s.IsTimeSlotAdminDisabled(1))
	require.NoError(t, s.SelectTimeSlot(1))
}

func TestFormatSelectedDateTime(t *testing.T) {
	s := newTestSession(t, &fakeClient{}, Overrides{})
	s.Wait()

	require.Equal(t, "Select date and time", s.FormatSelectedDateTime())

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.Equal(t, "January 15 (Wednesday), 1 Guest", s.FormatSelectedDateTime())

	require.NoError(t, s.SelectTimeSlot(1))
	require.Equal(t, "January 15 (Wednesday), 18:00, 1 Guest", s.FormatSelectedDateTime())

	require.NoError(t, s.SetGuestCount(4))
	require.Equal(t, "January 15 (Wednesday), 18:00, 4 Guests", s.FormatSelectedDateTime())
}

func TestIsFormValid(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		email string
		phone string
		valid bool
	}{
		{"complete", "Ada", "Lovelace", "ada@example.com", "+34600000000", true},
		{"missing first name", "", "Lovelace", "ada@example.com", "+34600000000", false},
		{"missing last name", "Ada", "", "ada@example.com", "+34600000000", false},
		{"email without at", "Ada", "Lovelace", "ada.example.com", "+34600000000", false},
		{"email without dot", "Ada", "Lovelace", "ada@example", "+34600000000", false},
		{"missing phone", "Ada", "Lovelace", "ada@example.com", "", false},
		{"whitespace only names", "  ", " ", "ada@example.com", "+34600000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, &fakeClient{}, Overrides{})
			s.Wait()
			require.NoError(t, s.SelectDate(15))
			s.Wait()
			require.NoError(t, s.SelectTimeSlot(1))
			s.SetContact(tt.first, tt.last, tt.email, tt.phone)
			require.Equal(t, tt.valid, s.IsFormValid())
		})
	}
}

func TestFormInvalidWithoutDateOrSlot(t *testing.T) {
	s := newTestSession(t, &fakeClient{}, Overrides{})
	s.Wait()
	fillValidContact(s)
	require.False(t, s.IsFormValid())

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.False(t, s.IsFormValid())

	require.NoError(t, s.SelectTimeSlot(1))
	require.True(t, s.IsFormValid())
}

func TestBookingFlow(t *testing.T) {
	client := &fakeClient{
		createResp: &entities.CreateReservationResponse{
			ReservationCode: "0A1B2C3D",
			CheckoutURL:     "https://checkout.example.com/s/123",
		},
	}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.Error(t, s.BookTable()) // nothing selected yet

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.NoError(t, s.SelectTimeSlot(2))
	require.NoError(t, s.SetGuestCount(3))
	fillValidContact(s)

	require.NoError(t, s.BookTable())
	require.Equal(t, StageConfirming, s.Stage())

	// Backing out returns to the form.
	s.CancelBooking()
	require.Equal(t, StageReady, s.Stage())

	require.NoError(t, s.BookTable())
	url, err := s.ConfirmBooking(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://checkout.example.com/s/123", url)
	require.Equal(t, StageConfirmed, s.Stage())
	require.Equal(t, url, s.RedirectURL())

	require.Len(t, client.created, 1)
	req := client.created[0]
	require.Equal(t, "2025-01-15", req.ReservationDate)
	require.Equal(t, 2, req.TimeSlotID)
	require.Equal(t, 3, req.GuestCount)
	require.Equal(t, "Ada", req.GuestFirstName)
	require.Equal(t, "ada@example.com", req.GuestEmail)

	// The confirmed flow locks out further edits.
	require.Error(t, s.SelectDate(16))
	require.Error(t, s.ViewMonth(time.February, 2025))
}

func TestConfirmBookingFailureReturnsToReady(t *testing.T) {
	client := &fakeClient{createErr: errors.New("slot taken")}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.NoError(t, s.SelectTimeSlot(1))
	fillValidContact(s)
	require.NoError(t, s.BookTable())

	_, err := s.ConfirmBooking(context.Background())
	require.Error(t, err)
	require.Equal(t, StageReady, s.Stage())

	// The guest can try again.
	require.NoError(t, s.BookTable())
}

func TestViewMonthClearsSelection(t *testing.T) {
	client := &fakeClient{fullyBooked: []int{5}}
	s := newTestSession(t, client, Overrides{})
	s.Wait()

	require.NoError(t, s.SelectDate(15))
	s.Wait()
	require.NoError(t, s.SelectTimeSlot(1))

	require.NoError(t, s.ViewMonth(time.February, 2025))
	s.Wait()

	require.Equal(t, StageIdle, s.Stage())
	require.Equal(t, "", s.SelectedDateISO())
	require.Equal(t, 0, s.SelectedTimeSlot())
}

func TestViewMonthResetsFullyBooked(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{
		fullyBooked: []int{5},
		monthGates:  map[string]chan struct{}{"2025-02": gate},
	}
	s := newTestSession(t, client, Overrides{})
	s.Wait()
	require.True(t, s.IsDateFullyBooked(5))

	// While February's fetch is still in flight, January's days must not
	// show against the new month.
	require.NoError(t, s.ViewMonth(time.February, 2025))
	require.False(t, s.IsDateFullyBooked(5))
	require.Empty(t, s.FullyBookedDates())

	close(gate)
	s.Wait()
	require.Equal(t, []int{5}, s.FullyBookedDates())
}

func TestSetGuestCountRejectsZero(t *testing.T) {
	s := newTestSession(t, &fakeClient{}, Overrides{})
	s.Wait()

	require.Error(t, s.SetGuestCount(0))
	require.Error(t, s.SetGuestCount(-2))
	require.Equal(t, 1, s.GuestCount())
}

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Parameter validation happens before the service is touched, so a nil
// service is fine here.

func TestFullyBookedDatesRejectsBadParams(t *testing.T) {
	h := NewReservationHandler(nil)

	tests := []struct {
		name  string
		query string
	}{
		{"missing month", "year=2025"},
		{"month zero", "month=0&year=2025"},
		{"month thirteen", "month=13&year=2025"},
		{"missing year", "month=1"},
		{"year too small", "month=1&year=99"},
		{"year not a number", "month=1&year=soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/reservations/fully-booked-dates?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.FullyBookedDates(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestOccupiedTimeSlotsRequiresDate(t *testing.T) {
	h := NewReservationHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/reservations/occupied-time-slots", nil)
	rec := httptest.NewRecorder()
	h.OccupiedTimeSlots(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationRejectsBadJSON(t *testing.T) {
	h := NewReservationHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations", nil)
	rec := httptest.NewRecorder()
	h.CreateReservation(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

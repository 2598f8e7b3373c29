package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"osteria/internal/entities"
)

func TestHTTPClientFullyBookedDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reservations/fully-booked-dates", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("month"))
		require.Equal(t, "2025", r.URL.Query().Get("year"))
		json.NewEncoder(w).Encode(entities.FullyBookedDatesResponse{FullyBookedDates: []int{5, 12}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	days, err := client.FullyBookedDates(context.Background(), 1, 2025)
	require.NoError(t, err)
	require.Equal(t, []int{5, 12}, days)
}

func TestHTTPClientOccupiedTimeSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reservations/occupied-time-slots", r.URL.Path)
		require.Equal(t, "2025-01-15", r.URL.Query().Get("date"))
		json.NewEncoder(w).Encode(entities.OccupiedTimeSlotsResponse{OccupiedTimeSlots: []int{2, 3}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	ids, err := client.OccupiedTimeSlots(context.Background(), "2025-01-15")
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, ids)
}

func TestHTTPClientCreateReservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reservations", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req entities.ReservationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "2025-01-15", req.ReservationDate)
		require.Equal(t, 2, req.TimeSlotID)

		json.NewEncoder(w).Encode(entities.CreateReservationResponse{
			ReservationCode: "0A1B2C3D",
			CheckoutURL:     "https://checkout.example.com/s/1",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	resp, err := client.CreateReservation(context.Background(), entities.ReservationRequest{
		GuestFirstName:  "Ada",
		GuestLastName:   "Lovelace",
		GuestEmail:      "ada@example.com",
		GuestPhone:      "+34600000000",
		ReservationDate: "2025-01-15",
		TimeSlotID:      2,
		GuestCount:      2,
	})
	require.NoError(t, err)
	require.Equal(t, "0A1B2C3D", resp.ReservationCode)
	require.Equal(t, "https://checkout.example.com/s/1", resp.CheckoutURL)
}

func TestHTTPClientCreateReservationConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "the selected time slot is fully booked", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.CreateReservation(context.Background(), entities.ReservationRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "409")
	require.Contains(t, err.Error(), "fully booked")
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.OccupiedTimeSlots(context.Background(), "2025-01-15")
	require.Error(t, err)
}

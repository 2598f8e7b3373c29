package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"osteria/internal/entities"
	httperr "osteria/internal/errors"
	"osteria/internal/service"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

func (h *ReservationHandler) FullyBookedDates(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "month must be 1-12", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		http.Error(w, "year must be a four digit year", http.StatusBadRequest)
		return
	}

	days, err := h.Service.FullyBookedDates(month, year)
	if err != nil {
		http.Error(w, "Error checking fully booked dates", http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []int{}
	}
	writeJSON(w, entities.FullyBookedDatesResponse{FullyBookedDates: days})
}

func (h *ReservationHandler) OccupiedTimeSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	ids, err := h.Service.OccupiedTimeSlots(date)
	if err != nil {
		writeServiceError(w, err, "Error checking occupied time slots")
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, entities.OccupiedTimeSlotsResponse{OccupiedTimeSlots: ids})
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.CreateReservation(&req)
	if err != nil {
		writeServiceError(w, err, "Could not create reservation")
		return
	}
	writeJSON(w, resp)
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}
	res, err := h.Service.GetReservationByCode(code, email)
	if err != nil {
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Service.CancelReservation(code); err != nil {
		writeServiceError(w, err, "Could not cancel reservation")
		return
	}
	writeJSON(w, map[string]string{"message": "Reservation cancelled"})
}

func (h *ReservationHandler) RefreshCheckout(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	resp, err := h.Service.RefreshCheckoutSession(code)
	if err != nil {
		writeServiceError(w, err, "Could not refresh checkout session")
		return
	}
	writeJSON(w, resp)
}

func (h *ReservationHandler) ListTimeSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Service.GetTimeSlots()
	if err != nil {
		http.Error(w, "Could not get time slots", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []entities.TimeSlotResponse{}
	}
	writeJSON(w, slots)
}

func (h *ReservationHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetSettings()
	if err != nil {
		http.Error(w, "Could not get settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var httpErr *httperr.HTTPError
	if errors.As(err, &httpErr) {
		http.Error(w, httpErr.Message, httpErr.Code)
		return
	}
	http.Error(w, fallback, http.StatusInternalServerError)
}

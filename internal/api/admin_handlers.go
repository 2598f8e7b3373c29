package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"osteria/internal/entities"
	"osteria/internal/service"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	reservations, err := h.Service.ListReservations(date, status)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if reservations == nil {
		reservations = []entities.ReservationResponse{}
	}
	writeJSON(w, reservations)
}

func (h *AdminHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteReservationByID(id); err != nil {
		http.Error(w, "Could not delete reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Reservation deleted"})
}

func (h *AdminHandler) GetDisabledDates(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Service.GetDisabledDates()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, entities.DisabledDatesResponse{DisabledDates: keys})
}

func (h *AdminHandler) UpdateDisabledDates(w http.ResponseWriter, r *http.Request) {
	var req UpdateDisabledDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.ReplaceDisabledDates(req.DisabledDates); err != nil {
		writeServiceError(w, err, "Could not update disabled dates")
		return
	}
	writeJSON(w, map[string]string{"message": "Disabled dates updated"})
}

func (h *AdminHandler) GetDisabledTimeSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Service.GetDisabledTimeSlots()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = map[string][]string{}
	}
	writeJSON(w, entities.DisabledTimeSlotsResponse{DisabledTimeSlots: slots})
}

func (h *AdminHandler) UpdateDisabledTimeSlots(w http.ResponseWriter, r *http.Request) {
	var req UpdateDisabledTimeSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.ReplaceDisabledTimeSlots(req.DisabledTimeSlots); err != nil {
		writeServiceError(w, err, "Could not update disabled time slots")
		return
	}
	writeJSON(w, map[string]string{"message": "Disabled time slots updated"})
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.UpdateSettings(req.MaxAdvanceBookingDays, req.TablesPerSlot); err != nil {
		writeServiceError(w, err, "Could not update settings")
		return
	}
	writeJSON(w, map[string]string{"message": "Settings updated"})
}

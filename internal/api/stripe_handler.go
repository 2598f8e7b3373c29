package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"osteria/internal/entities"
)

const (
	confirmed       = "confirmed"
	canceled        = "canceled"
	refunded        = "refunded"
	statusSucceeded = "succeeded"
)

// reservationPayments is the slice of the reservation service the webhook needs.
type reservationPayments interface {
	UpdateReservationAndPaymentStatusBySessionID(sessionID, reservationStatus, paymentStatus string) error
	GetReservationBySessionID(sessionID string) (*entities.ReservationResponse, error)
	GetSessionIDByPaymentIntentID(paymentIntentID string) (string, error)
}

type reservationNotifier interface {
	SendReservationEmail(reservation entities.ReservationResponse, status string)
	SendReservationSMS(reservation entities.ReservationResponse, status string)
}

type StripeWebhookHandler struct {
	StripeSecret       string
	reservationService reservationPayments
	senderService      reservationNotifier
}

func NewStripeWebhookHandler(stripeSecret string, reservationService reservationPayments, senderService reservationNotifier) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		StripeSecret:       stripeSecret,
		reservationService: reservationService,
		senderService:      senderService,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.StripeSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Printf("No session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		err := h.reservationService.UpdateReservationAndPaymentStatusBySessionID(sess.ID, confirmed, statusSucceeded)
		if err != nil {
			log.Printf("DB error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		reservation, err := h.reservationService.GetReservationBySessionID(sess.ID)
		if err != nil {
			log.Printf("DB error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		reservation.Status = confirmed
		h.senderService.SendReservationSMS(*reservation, confirmed)
		h.senderService.SendReservationEmail(*reservation, confirmed)

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			log.Printf("Error parsing charge: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			si, err := h.reservationService.GetSessionIDByPaymentIntentID(charge.PaymentIntent.ID)
			if err != nil {
				log.Printf("No session_id found for PaymentIntent %s: %v", charge.PaymentIntent.ID, err)
				return
			}
			err = h.reservationService.UpdateReservationAndPaymentStatusBySessionID(si, canceled, refunded)
			if err != nil {
				log.Printf("DB error: %v", err)
				return
			}
		}
	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *StripeWebhookHandler) GetReservationBySessionIDHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if sessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}
	reservation, err := h.reservationService.GetReservationBySessionID(sessionID)
	if err != nil {
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, reservation)
}

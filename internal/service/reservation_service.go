package service

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"osteria/internal/db"
	"osteria/internal/entities"
	httperr "osteria/internal/errors"
	"osteria/internal/repository"
	"osteria/internal/utils"
)

const (
	statusPending   = "pending"
	statusConfirmed = "confirmed"
	statusCanceled  = "canceled"

	paymentStatusPending = "pending"
	paymentStatusNone    = "none"
)

type ReservationService struct {
	Repo          *repository.ReservationRepository
	overrideRepo  *repository.OverrideRepository
	settingsRepo  *repository.SettingsRepository
	stripeRepo    *repository.StripeRepository
	stripeService *StripeService
	senderService *SenderService
}

func NewReservationService(
	repo *repository.ReservationRepository,
	overrideRepo *repository.OverrideRepository,
	settingsRepo *repository.SettingsRepository,
	stripeRepo *repository.StripeRepository,
	stripeService *StripeService,
	senderService *SenderService,
) *ReservationService {
	return &ReservationService{
		Repo:          repo,
		overrideRepo:  overrideRepo,
		settingsRepo:  settingsRepo,
		stripeRepo:    stripeRepo,
		stripeService: stripeService,
		senderService: senderService,
	}
}

func (s *ReservationService) GetTimeSlots() ([]entities.TimeSlotResponse, error) {
	slots, err := s.settingsRepo.GetTimeSlots()
	if err != nil {
		return nil, err
	}
	resp := make([]entities.TimeSlotResponse, 0, len(slots))
	for _, ts := range slots {
		resp = append(resp, entities.TimeSlotResponse{
			ID:        ts.ID,
			StartTime: ts.StartTime,
			EndTime:   ts.EndTime,
			Formatted: utils.SlotRange(ts.StartTime, ts.EndTime),
		})
	}
	return resp, nil
}

func (s *ReservationService) GetSettings() (*entities.SettingsResponse, error) {
	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}
	return &entities.SettingsResponse{
		MaxAdvanceBookingDays: settings.MaxAdvanceBookingDays,
		TablesPerSlot:         settings.TablesPerSlot,
	}, nil
}

// FullyBookedDates returns the days of the month that cannot take any more
// bookings: every slot at capacity, or the whole day disabled by an admin.
func (s *ReservationService) FullyBookedDates(month, year int) ([]int, error) {
	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}

	days, err := s.Repo.GetFullyBookedDays(month, year, settings.TablesPerSlot)
	if err != nil {
		log.Printf("Error from GetFullyBookedDays: %v", err)
		return nil, fmt.Errorf("internal error checking fully booked dates: %w", err)
	}

	disabled, err := s.overrideRepo.GetDisabledDaysForMonth(time.Month(month))
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(days)+len(disabled))
	merged := make([]int, 0, len(days)+len(disabled))
	for _, d := range append(days, disabled...) {
		if !seen[d] {
			seen[d] = true
			merged = append(merged, d)
		}
	}
	sort.Ints(merged)
	return merged, nil
}

// OccupiedTimeSlots returns the slot ids unavailable on the given date, both
// at-capacity slots and admin-disabled ones.
func (s *ReservationService) OccupiedTimeSlots(dateStr string) ([]int, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, httperr.ErrBadRequest("date must be YYYY-MM-DD")
	}

	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}

	ids, err := s.Repo.GetOccupiedSlotIDs(date, settings.TablesPerSlot)
	if err != nil {
		log.Printf("Error from GetOccupiedSlotIDs: %v", err)
		return nil, fmt.Errorf("internal error checking occupied time slots: %w", err)
	}

	key := utils.DateKey(date.Month(), date.Day())
	labels, err := s.overrideRepo.GetDisabledSlotLabels(key)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		slots, err := s.settingsRepo.GetTimeSlots()
		if err != nil {
			return nil, err
		}
		disabled := make(map[string]bool, len(labels))
		for _, l := range labels {
			disabled[l] = true
		}
		for _, ts := range slots {
			if disabled[ts.StartTime] {
				ids = append(ids, ts.ID)
			}
		}
	}

	seen := make(map[int]bool, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Ints(unique)
	return unique, nil
}

func (s *ReservationService) CreateReservation(req *entities.ReservationRequest) (*entities.CreateReservationResponse, error) {
	if err := ValidateReservationRequest(req); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.ReservationDate)
	if err != nil {
		return nil, httperr.ErrBadRequest("reservation_date must be YYYY-MM-DD")
	}

	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}

	today := time.Now().In(restaurantLocation())
	if !WithinBookingWindow(date, today, settings.MaxAdvanceBookingDays) {
		return nil, httperr.ErrConflict(fmt.Sprintf(
			"reservation date must be after today and at most %d days ahead", settings.MaxAdvanceBookingDays))
	}

	key := utils.DateKey(date.Month(), date.Day())
	dateDisabled, err := s.overrideRepo.IsDateDisabled(key)
	if err != nil {
		return nil, err
	}
	if dateDisabled {
		return nil, httperr.ErrConflict("the restaurant is closed on the selected date")
	}

	slot, err := s.settingsRepo.GetTimeSlotByID(req.TimeSlotID)
	if err != nil {
		return nil, httperr.ErrBadRequest("unknown time slot")
	}

	disabledLabels, err := s.overrideRepo.GetDisabledSlotLabels(key)
	if err != nil {
		return nil, err
	}
	for _, label := range disabledLabels {
		if label == slot.StartTime {
			return nil, httperr.ErrConflict("the selected time slot is not available on that date")
		}
	}

	booked, err := s.Repo.CountActiveReservations(date, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if booked >= settings.TablesPerSlot {
		return nil, httperr.ErrConflict("the selected time slot is fully booked")
	}

	code := fmt.Sprintf("%08X", time.Now().UnixNano()%100000000)

	reservation := &db.Reservation{
		Code:            code,
		GuestFirstName:  strings.TrimSpace(req.GuestFirstName),
		GuestLastName:   strings.TrimSpace(req.GuestLastName),
		GuestEmail:      strings.TrimSpace(req.GuestEmail),
		GuestPhone:      strings.TrimSpace(req.GuestPhone),
		ReservationDate: date,
		TimeSlotID:      req.TimeSlotID,
		GuestCount:      req.GuestCount,
		Status:          statusPending,
		PaymentStatus:   paymentStatusPending,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	checkoutURL, err := s.handleCheckout(req, reservation, code)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.CreateReservation(reservation); err != nil {
		log.Printf("Error creating reservation in repository: %v", err)
		return nil, err
	}

	// Without a deposit there is no checkout step to wait for.
	if reservation.Status == statusConfirmed {
		if resp, err := s.toResponse(reservation); err == nil {
			s.senderService.SendReservationEmail(*resp, statusConfirmed)
			s.senderService.SendReservationSMS(*resp, statusConfirmed)
		}
	}

	return &entities.CreateReservationResponse{
		ReservationCode: code,
		CheckoutURL:     checkoutURL,
		SessionID:       reservation.StripeSessionID,
	}, nil
}

func (s *ReservationService) GetReservationByCode(code, email string) (*entities.ReservationResponse, error) {
	return s.Repo.GetReservationByCode(code, email)
}

func (s *ReservationService) GetReservationBySessionID(sessionID string) (*entities.ReservationResponse, error) {
	reservation, err := s.Repo.GetReservationByStripeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(reservation)
}

func (s *ReservationService) UpdateReservationAndPaymentStatusBySessionID(sessionID, reservationStatus, paymentStatus string) error {
	reservation, err := s.Repo.GetReservationByStripeSessionID(sessionID)
	if err != nil {
		return err
	}
	return s.Repo.UpdateReservationAndPaymentStatus(reservation.ID, reservationStatus, paymentStatus)
}

// GetSessionIDByPaymentIntentID looks up the checkout session in Stripe from a PaymentIntentID.
func (s *ReservationService) GetSessionIDByPaymentIntentID(paymentIntentID string) (string, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: &paymentIntentID,
	}
	params.Limit = stripe.Int64(1)
	it := session.List(params)
	for it.Next() {
		sess := it.CheckoutSession()
		if sess != nil && sess.ID != "" {
			return sess.ID, nil
		}
	}
	return "", fmt.Errorf("no session_id found for PaymentIntentID %s", paymentIntentID)
}

// RefreshCheckoutSession issues a new Stripe checkout link for a reservation
// whose earlier session expired before payment.
func (s *ReservationService) RefreshCheckoutSession(code string) (*entities.CreateReservationResponse, error) {
	reservation, err := s.Repo.GetReservationByCodeOnly(code)
	if err != nil {
		return nil, err
	}
	if reservation.Status != statusPending || reservation.PaymentStatus != paymentStatusPending {
		return nil, httperr.ErrConflict("reservation is not awaiting payment")
	}

	depositCents, err := depositPerGuestCents()
	if err != nil {
		return nil, err
	}
	if depositCents <= 0 {
		return nil, httperr.ErrConflict("no deposit is required for this reservation")
	}

	amount := depositCents * int64(reservation.GuestCount)
	description := fmt.Sprintf("Table reservation %s", code)
	sessionURL, sessionID, err := s.stripeService.CreateCheckoutSession(amount, "eur", description, reservation.GuestEmail)
	if err != nil {
		return nil, err
	}

	if err := s.stripeRepo.UpdateReservationStripeInfo(reservation.ID, sessionID, statusPending, paymentStatusPending); err != nil {
		return nil, err
	}

	return &entities.CreateReservationResponse{
		ReservationCode: code,
		CheckoutURL:     sessionURL,
		SessionID:       sessionID,
	}, nil
}

func (s *ReservationService) CancelReservation(code string) error {
	reservation, err := s.Repo.GetReservationByCodeOnly(code)
	if err != nil {
		return err
	}
	if reservation.Status == statusCanceled {
		return httperr.ErrConflict("reservation is already canceled")
	}

	// Same-day cancellations are phone-only so the staff can replan the room.
	today := time.Now().In(restaurantLocation()).Format("2006-01-02")
	if reservation.ReservationDate.Format("2006-01-02") == today {
		return httperr.ErrConflict("same-day reservations cannot be canceled online, please call the restaurant")
	}

	if reservation.PaymentStatus == "succeeded" && reservation.StripeSessionID != "" {
		if err := s.stripeService.RefundPaymentBySessionID(reservation.StripeSessionID); err != nil {
			return err
		}
	}

	if _, err = s.Repo.CancelReservation(code); err != nil {
		return err
	}

	if resp, respErr := s.toResponse(reservation); respErr == nil {
		resp.Status = statusCanceled
		s.senderService.SendReservationEmail(*resp, statusCanceled)
		s.senderService.SendReservationSMS(*resp, statusCanceled)
	}
	return nil
}

func depositPerGuestCents() (int64, error) {
	raw := os.Getenv("RESERVATION_DEPOSIT_CENTS")
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid RESERVATION_DEPOSIT_CENTS: %w", err)
	}
	return parsed, nil
}

func (s *ReservationService) handleCheckout(req *entities.ReservationRequest, reservation *db.Reservation, code string) (string, error) {
	depositCents, err := depositPerGuestCents()
	if err != nil {
		return "", err
	}

	if depositCents <= 0 {
		reservation.Status = statusConfirmed
		reservation.PaymentStatus = paymentStatusNone
		baseURL := os.Getenv("PUBLIC_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:3000"
		}
		return baseURL + "/reservations/confirmation?code=" + code, nil
	}

	amount := depositCents * int64(req.GuestCount)
	description := fmt.Sprintf("Table reservation %s", code)
	sessionURL, sessionID, err := s.stripeService.CreateCheckoutSession(amount, "eur", description, reservation.GuestEmail)
	if err != nil {
		return "", err
	}

	reservation.StripeSessionID = sessionID
	reservation.PaymentStatus = paymentStatusPending
	return sessionURL, nil
}

func (s *ReservationService) toResponse(reservation *db.Reservation) (*entities.ReservationResponse, error) {
	slot, err := s.settingsRepo.GetTimeSlotByID(reservation.TimeSlotID)
	if err != nil {
		return nil, err
	}
	return &entities.ReservationResponse{
		Code:            reservation.Code,
		GuestFirstName:  reservation.GuestFirstName,
		GuestLastName:   reservation.GuestLastName,
		GuestEmail:      reservation.GuestEmail,
		GuestPhone:      reservation.GuestPhone,
		ReservationDate: reservation.ReservationDate.Format("2006-01-02"),
		TimeSlotID:      reservation.TimeSlotID,
		SlotStartTime:   slot.StartTime,
		SlotEndTime:     slot.EndTime,
		GuestCount:      reservation.GuestCount,
		Status:          reservation.Status,
		PaymentStatus:   reservation.PaymentStatus,
		CreatedAt:       reservation.CreatedAt,
		UpdatedAt:       reservation.UpdatedAt,
	}, nil
}

// ValidateReservationRequest applies the guest-field rules shared with the
// booking flow: non-empty names and phone, email with "@" and ".".
func ValidateReservationRequest(req *entities.ReservationRequest) error {
	if strings.TrimSpace(req.GuestFirstName) == "" || strings.TrimSpace(req.GuestLastName) == "" {
		return httperr.ErrBadRequest("guest first and last name are required")
	}
	email := strings.TrimSpace(req.GuestEmail)
	if email == "" || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return httperr.ErrBadRequest("a valid guest email is required")
	}
	if strings.TrimSpace(req.GuestPhone) == "" {
		return httperr.ErrBadRequest("guest phone is required")
	}
	if req.GuestCount < 1 {
		return httperr.ErrBadRequest("guest_count must be at least 1")
	}
	if req.TimeSlotID < 1 {
		return httperr.ErrBadRequest("time_slot_id is required")
	}
	return nil
}

// WithinBookingWindow reports whether date falls in (today, today+maxDays].
// Today itself is excluded, the boundary day is included.
func WithinBookingWindow(date, today time.Time, maxDays int) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !day.After(base) {
		return false
	}
	return !day.After(base.AddDate(0, 0, maxDays))
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"osteria/internal/db"
	"osteria/internal/entities"
)

const activeStatuses = `('pending', 'confirmed')`

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// GetFullyBookedDays returns the days of the given month where every time slot
// has reached capacity. A day counts as fully booked only when the number of
// at-capacity slots equals the number of configured slots.
func (r *ReservationRepository) GetFullyBookedDays(month, year, tablesPerSlot int) ([]int, error) {
	query := `
		WITH slot_counts AS (
			SELECT r.reservation_date, r.time_slot_id, COUNT(r.id) AS booked
			FROM reservations r
			WHERE EXTRACT(MONTH FROM r.reservation_date) = $1
			  AND EXTRACT(YEAR FROM r.reservation_date) = $2
			  AND r.status IN ` + activeStatuses + `
			GROUP BY r.reservation_date, r.time_slot_id
		)
		SELECT EXTRACT(DAY FROM sc.reservation_date)::int AS day
		FROM slot_counts sc
		WHERE sc.booked >= $3
		GROUP BY sc.reservation_date
		HAVING COUNT(sc.time_slot_id) >= (SELECT COUNT(*) FROM time_slots)
		ORDER BY day
	`

	rows, err := r.DB.Query(query, month, year, tablesPerSlot)
	if err != nil {
		return nil, fmt.Errorf("error querying fully booked days: %w", err)
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("error scanning fully booked day: %w", err)
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating fully booked days: %w", err)
	}
	return days, nil
}

// GetOccupiedSlotIDs returns the time slot ids at capacity for the given date.
func (r *ReservationRepository) GetOccupiedSlotIDs(date time.Time, tablesPerSlot int) ([]int, error) {
	query := `
		SELECT time_slot_id
		FROM reservations
		WHERE reservation_date = $1
		  AND status IN ` + activeStatuses + `
		GROUP BY time_slot_id
		HAVING COUNT(id) >= $2
		ORDER BY time_slot_id
	`

	rows, err := r.DB.Query(query, date, tablesPerSlot)
	if err != nil {
		return nil, fmt.Errorf("error querying occupied time slots: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning occupied time slot: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating occupied time slots: %w", err)
	}
	return ids, nil
}

// CountActiveReservations counts pending and confirmed reservations for one slot on one date.
func (r *ReservationRepository) CountActiveReservations(date time.Time, timeSlotID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`
		SELECT COUNT(id) FROM reservations
		WHERE reservation_date = $1 AND time_slot_id = $2 AND status IN `+activeStatuses,
		date, timeSlotID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting reservations: %w", err)
	}
	return count, nil
}

func (r *ReservationRepository) CreateReservation(res *db.Reservation) error {
	query := `
		INSERT INTO reservations
		(code, guest_first_name, guest_last_name, guest_email, guest_phone, reservation_date, time_slot_id, guest_count, status, payment_status, stripe_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRow(query,
		res.Code,
		res.GuestFirstName,
		res.GuestLastName,
		res.GuestEmail,
		res.GuestPhone,
		res.ReservationDate,
		res.TimeSlotID,
		res.GuestCount,
		res.Status,
		res.PaymentStatus,
		res.StripeSessionID,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (r *ReservationRepository) GetReservationByCode(code, email string) (*entities.ReservationResponse, error) {
	var res entities.ReservationResponse
	var date time.Time

	query := `
		SELECT
			r.code, r.guest_first_name, r.guest_last_name, r.guest_email, r.guest_phone,
			r.reservation_date, r.time_slot_id, ts.start_time, ts.end_time,
			r.guest_count, r.status, r.payment_status, r.created_at, r.updated_at
		FROM reservations r
		JOIN time_slots ts ON ts.id = r.time_slot_id
		WHERE r.code = $1 AND r.guest_email = $2
	`

	err := r.DB.QueryRow(query, code, email).Scan(
		&res.Code, &res.GuestFirstName, &res.GuestLastName, &res.GuestEmail, &res.GuestPhone,
		&date, &res.TimeSlotID, &res.SlotStartTime, &res.SlotEndTime,
		&res.GuestCount, &res.Status, &res.PaymentStatus, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation with code '%s' and email '%s' not found: %w", code, email, err)
		}
		return nil, fmt.Errorf("error querying or scanning reservation: %w", err)
	}
	res.ReservationDate = date.Format("2006-01-02")
	return &res, nil
}

func (r *ReservationRepository) GetReservationByCodeOnly(code string) (*db.Reservation, error) {
	var res db.Reservation
	query := `
		SELECT id, code, guest_first_name, guest_last_name, guest_email, guest_phone, reservation_date, time_slot_id, guest_count, status, payment_status, stripe_session_id, created_at, updated_at
		FROM reservations WHERE code = $1`
	err := r.DB.QueryRow(query, code).Scan(
		&res.ID, &res.Code, &res.GuestFirstName, &res.GuestLastName, &res.GuestEmail, &res.GuestPhone,
		&res.ReservationDate, &res.TimeSlotID, &res.GuestCount, &res.Status, &res.PaymentStatus,
		&res.StripeSessionID, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepository) GetReservationByStripeSessionID(sessionID string) (*db.Reservation, error) {
	var res db.Reservation
	query := `
		SELECT id, code, guest_first_name, guest_last_name, guest_email, guest_phone, reservation_date, time_slot_id, guest_count, status, payment_status, stripe_session_id, created_at, updated_at
		FROM reservations WHERE stripe_session_id = $1`
	err := r.DB.QueryRow(query, sessionID).Scan(
		&res.ID, &res.Code, &res.GuestFirstName, &res.GuestLastName, &res.GuestEmail, &res.GuestPhone,
		&res.ReservationDate, &res.TimeSlotID, &res.GuestCount, &res.Status, &res.PaymentStatus,
		&res.StripeSessionID, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation with session '%s' not found: %w", sessionID, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepository) UpdateReservationAndPaymentStatus(id int, status, paymentStatus string) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET status = $2, payment_status = $3, updated_at = NOW() WHERE id = $1`,
		id, status, paymentStatus,
	)
	if err != nil {
		return fmt.Errorf("error updating reservation %d status: %w", id, err)
	}
	return nil
}

func (r *ReservationRepository) CancelReservation(code string) (string, error) {
	query := `UPDATE reservations SET status = 'canceled', updated_at = NOW() WHERE code = $1 RETURNING status`
	var status string
	err := r.DB.QueryRow(query, code).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("error canceling reservation: %w", err)
	}
	return status, nil
}

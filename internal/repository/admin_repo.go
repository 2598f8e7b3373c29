package repository

import (
	"database/sql"
	"strconv"
	"time"

	"osteria/internal/entities"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(database *sql.DB) *AdminRepository {
	return &AdminRepository{DB: database}
}

func (r *AdminRepository) ListReservations(date, status string) ([]entities.ReservationResponse, error) {
	query := `
	SELECT
		r.code, r.guest_first_name, r.guest_last_name, r.guest_email, r.guest_phone,
		r.reservation_date, r.time_slot_id, ts.start_time, ts.end_time,
		r.guest_count, r.status, r.payment_status, r.created_at, r.updated_at
	FROM reservations r
	JOIN time_slots ts ON ts.id = r.time_slot_id
	WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND r.reservation_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND r.status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY r.reservation_date DESC, ts.sort_order"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []entities.ReservationResponse
	for rows.Next() {
		var res entities.ReservationResponse
		var resDate time.Time
		err := rows.Scan(
			&res.Code, &res.GuestFirstName, &res.GuestLastName, &res.GuestEmail, &res.GuestPhone,
			&resDate, &res.TimeSlotID, &res.SlotStartTime, &res.SlotEndTime,
			&res.GuestCount, &res.Status, &res.PaymentStatus, &res.CreatedAt, &res.UpdatedAt,
		)
		if err == nil {
			res.ReservationDate = resDate.Format("2006-01-02")
			reservations = append(reservations, res)
		}
	}
	return reservations, nil
}

func (r *AdminRepository) DeleteReservationByID(id int) error {
	_, err := r.DB.Exec(`DELETE FROM reservations WHERE id = $1`, id)
	return err
}

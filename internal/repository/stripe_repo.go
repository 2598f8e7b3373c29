package repository

import (
	"database/sql"
	"fmt"
	"time"
)

type StripeRepository struct {
	DB *sql.DB
}

func NewStripeRepository(database *sql.DB) *StripeRepository {
	return &StripeRepository{DB: database}
}

// UpdateReservationStripeInfo records the checkout session and payment outcome for a reservation.
func (r *StripeRepository) UpdateReservationStripeInfo(reservationID int, stripeSessionID, newStatus, newPaymentStatus string) error {
	query := `
		UPDATE reservations
		SET
			stripe_session_id = $2,
			status = $3,
			payment_status = $4,
			updated_at = $5
		WHERE id = $1`

	_, err := r.DB.Exec(query, reservationID, stripeSessionID, newStatus, newPaymentStatus, time.Now())
	if err != nil {
		return fmt.Errorf("error updating reservation %d with Stripe info: %w", reservationID, err)
	}
	return nil
}

package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// OverrideRepository persists the admin-disabled dates and time slots.
// Keys follow the "MonthName-day" convention used by the booking clients;
// slot overrides store formatted start times per key.
type OverrideRepository struct {
	DB *sql.DB
}

func NewOverrideRepository(database *sql.DB) *OverrideRepository {
	return &OverrideRepository{DB: database}
}

func (r *OverrideRepository) GetDisabledDates() ([]string, error) {
	rows, err := r.DB.Query(`SELECT date_key FROM disabled_dates ORDER BY date_key`)
	if err != nil {
		return nil, fmt.Errorf("error querying disabled dates: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning disabled date: %w", err)
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating disabled dates: %w", err)
	}
	return keys, nil
}

// GetDisabledDaysForMonth returns the disabled day numbers for one month,
// e.g. month=January matches keys "January-1" .. "January-31".
func (r *OverrideRepository) GetDisabledDaysForMonth(month time.Month) ([]int, error) {
	prefix := month.String() + "-"
	rows, err := r.DB.Query(
		`SELECT date_key FROM disabled_dates WHERE date_key LIKE $1 ORDER BY date_key`,
		prefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("error querying disabled dates for %s: %w", month, err)
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning disabled date: %w", err)
		}
		var day int
		if _, err := fmt.Sscanf(strings.TrimPrefix(key, prefix), "%d", &day); err == nil && day >= 1 {
			days = append(days, day)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating disabled dates: %w", err)
	}
	return days, nil
}

func (r *OverrideRepository) IsDateDisabled(key string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM disabled_dates WHERE date_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking disabled date: %w", err)
	}
	return exists, nil
}

// ReplaceDisabledDates swaps the whole disabled-dates set in one transaction.
func (r *OverrideRepository) ReplaceDisabledDates(keys []string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM disabled_dates`); err != nil {
		return fmt.Errorf("error clearing disabled dates: %w", err)
	}
	for _, key := range keys {
		if _, err := tx.Exec(`INSERT INTO disabled_dates (date_key) VALUES ($1) ON CONFLICT DO NOTHING`, key); err != nil {
			return fmt.Errorf("error inserting disabled date %q: %w", key, err)
		}
	}
	return tx.Commit()
}

func (r *OverrideRepository) GetDisabledTimeSlots() (map[string][]string, error) {
	rows, err := r.DB.Query(`SELECT date_key, slot_label FROM disabled_time_slots ORDER BY date_key, slot_label`)
	if err != nil {
		return nil, fmt.Errorf("error querying disabled time slots: %w", err)
	}
	defer rows.Close()

	slots := make(map[string][]string)
	for rows.Next() {
		var key, label string
		if err := rows.Scan(&key, &label); err != nil {
			return nil, fmt.Errorf("error scanning disabled time slot: %w", err)
		}
		slots[key] = append(slots[key], label)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating disabled time slots: %w", err)
	}
	return slots, nil
}

// GetDisabledSlotLabels returns the disabled formatted start times for one date key.
func (r *OverrideRepository) GetDisabledSlotLabels(key string) ([]string, error) {
	rows, err := r.DB.Query(`SELECT slot_label FROM disabled_time_slots WHERE date_key = $1 ORDER BY slot_label`, key)
	if err != nil {
		return nil, fmt.Errorf("error querying disabled slots for %q: %w", key, err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("error scanning disabled slot label: %w", err)
		}
		labels = append(labels, label)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating disabled slot labels: %w", err)
	}
	return labels, nil
}

// ReplaceDisabledTimeSlots swaps the whole disabled-slots mapping in one transaction.
func (r *OverrideRepository) ReplaceDisabledTimeSlots(slots map[string][]string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM disabled_time_slots`); err != nil {
		return fmt.Errorf("error clearing disabled time slots: %w", err)
	}
	for key, labels := range slots {
		for _, label := range labels {
			if _, err := tx.Exec(
				`INSERT INTO disabled_time_slots (date_key, slot_label) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				key, label,
			); err != nil {
				return fmt.Errorf("error inserting disabled slot %q %q: %w", key, label, err)
			}
		}
	}
	return tx.Commit()
}

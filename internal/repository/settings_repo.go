package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"osteria/internal/db"
)

type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(database *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: database}
}

func (r *SettingsRepository) GetTimeSlots() ([]db.TimeSlot, error) {
	rows, err := r.DB.Query(`SELECT id, start_time, end_time, sort_order FROM time_slots ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying time slots: %w", err)
	}
	defer rows.Close()

	var slots []db.TimeSlot
	for rows.Next() {
		var ts db.TimeSlot
		if err := rows.Scan(&ts.ID, &ts.StartTime, &ts.EndTime, &ts.SortOrder); err != nil {
			return nil, fmt.Errorf("error scanning time slot: %w", err)
		}
		slots = append(slots, ts)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating time slots: %w", err)
	}
	return slots, nil
}

func (r *SettingsRepository) GetTimeSlotByID(id int) (*db.TimeSlot, error) {
	var ts db.TimeSlot
	err := r.DB.QueryRow(`SELECT id, start_time, end_time, sort_order FROM time_slots WHERE id = $1`, id).
		Scan(&ts.ID, &ts.StartTime, &ts.EndTime, &ts.SortOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("time slot %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying time slot %d: %w", id, err)
	}
	return &ts, nil
}

func (r *SettingsRepository) GetSettings() (*db.SystemSettings, error) {
	var s db.SystemSettings
	err := r.DB.QueryRow(`SELECT max_advance_booking_days, tables_per_slot FROM system_settings WHERE id = 1`).
		Scan(&s.MaxAdvanceBookingDays, &s.TablesPerSlot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("system settings not configured: %w", err)
		}
		return nil, fmt.Errorf("error querying system settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) UpdateSettings(maxAdvanceBookingDays, tablesPerSlot int) error {
	_, err := r.DB.Exec(
		`UPDATE system_settings SET max_advance_booking_days = $1, tables_per_slot = $2 WHERE id = 1`,
		maxAdvanceBookingDays, tablesPerSlot,
	)
	if err != nil {
		return fmt.Errorf("error updating system settings: %w", err)
	}
	return nil
}

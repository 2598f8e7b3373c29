package service

import (
	"fmt"
	"log"
	"time"

	"osteria/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// MarkFinishedReservations moves confirmed reservations whose date has passed to "finished".
func (s *JobService) MarkFinishedReservations() error {
	log.Println("Cron Job: Checking for reservations to mark as 'finished'...")

	reservationIDs, err := s.Repo.GetConfirmedReservationIDsPastDate()
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed reservations past their date: %w", err)
	}

	if len(reservationIDs) == 0 {
		log.Println("Cron Job: No confirmed reservations found past their date.")
		return nil
	}

	log.Printf("Cron Job: Found %d reservations to mark as 'finished'. IDs: %v", len(reservationIDs), reservationIDs)

	err = s.Repo.UpdateReservationStatuses(reservationIDs, "finished")
	if err != nil {
		return fmt.Errorf("cron job: failed to update reservation statuses: %w", err)
	}

	log.Printf("Cron Job: Successfully updated %d reservations to 'finished'.", len(reservationIDs))
	return nil
}

// DeleteOldPendingReservations deletes all reservations still pending (checkout
// never completed) created before the given time.
func (s *JobService) DeleteOldPendingReservations(before time.Time) (int64, error) {
	return s.Repo.DeletePendingReservationsOlderThan(before)
}

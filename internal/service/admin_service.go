package service

import (
	"osteria/internal/entities"
	httperr "osteria/internal/errors"
	"osteria/internal/repository"
	"osteria/internal/utils"
)

type AdminService struct {
	adminRepo    *repository.AdminRepository
	overrideRepo *repository.OverrideRepository
	settingsRepo *repository.SettingsRepository
}

func NewAdminService(adminRepo *repository.AdminRepository, overrideRepo *repository.OverrideRepository, settingsRepo *repository.SettingsRepository) *AdminService {
	return &AdminService{
		adminRepo:    adminRepo,
		overrideRepo: overrideRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *AdminService) ListReservations(date, status string) ([]entities.ReservationResponse, error) {
	return s.adminRepo.ListReservations(date, status)
}

func (s *AdminService) DeleteReservationByID(id int) error {
	return s.adminRepo.DeleteReservationByID(id)
}

func (s *AdminService) GetDisabledDates() ([]string, error) {
	return s.overrideRepo.GetDisabledDates()
}

func (s *AdminService) ReplaceDisabledDates(keys []string) error {
	for _, key := range keys {
		if _, _, err := utils.ParseDateKey(key); err != nil {
			return httperr.ErrBadRequest(err.Error())
		}
	}
	return s.overrideRepo.ReplaceDisabledDates(keys)
}

func (s *AdminService) GetDisabledTimeSlots() (map[string][]string, error) {
	return s.overrideRepo.GetDisabledTimeSlots()
}

func (s *AdminService) ReplaceDisabledTimeSlots(slots map[string][]string) error {
	for key := range slots {
		if _, _, err := utils.ParseDateKey(key); err != nil {
			return httperr.ErrBadRequest(err.Error())
		}
	}
	return s.overrideRepo.ReplaceDisabledTimeSlots(slots)
}

func (s *AdminService) UpdateSettings(maxAdvanceBookingDays, tablesPerSlot int) error {
	if maxAdvanceBookingDays < 1 {
		return httperr.ErrBadRequest("max_advance_booking_days must be at least 1")
	}
	if tablesPerSlot < 1 {
		return httperr.ErrBadRequest("tables_per_slot must be at least 1")
	}
	return s.settingsRepo.UpdateSettings(maxAdvanceBookingDays, tablesPerSlot)
}

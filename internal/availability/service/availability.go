package service

import (
	"context"

	"bookline/internal/availability"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
)

// ServiceSource, EmployeeSource and AppointmentSource load the
// snapshot the resolver decides over. The catalog and appointment
// repositories satisfy them.
type ServiceSource interface {
	ListAll(ctx context.Context) ([]*model.Service, error)
}

type EmployeeSource interface {
	ListAll(ctx context.Context) ([]*model.Employee, error)
}

type AppointmentSource interface {
	FindByDate(ctx context.Context, date string) ([]*model.Appointment, error)
}

type AvailabilityService interface {
	Check(ctx context.Context, serviceID, date, clock string) (*availability.Availability, error)
	FindEmployees(ctx context.Context, serviceID, date, clock string) ([]*model.Employee, error)
	SuggestSlots(ctx context.Context, serviceID, date, fromClock string, maxResults int) ([]availability.Slot, error)
}

type availabilityService struct {
	services     ServiceSource
	employees    EmployeeSource
	appointments AppointmentSource
	cfg          *config.Config
}

func NewAvailabilityService(
	services ServiceSource,
	employees EmployeeSource,
	appointments AppointmentSource,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		services:     services,
		employees:    employees,
		appointments: appointments,
		cfg:          cfg,
	}
}

// loadSnapshot reads a consistent view for one resolver call. The
// snapshot is discarded afterwards; concurrent writes between load
// and decision are guarded at confirm time, not here.
func (s *availabilityService) loadSnapshot(ctx context.Context, date string) (*availability.Snapshot, error) {
	services, err := s.services.ListAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load service catalog", "error", err)
		return nil, apperrors.Internal("Failed to load service catalog", err)
	}

	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load employee roster", "error", err)
		return nil, apperrors.Internal("Failed to load employee roster", err)
	}

	var appointments []*model.Appointment
	if availability.ValidDate(date) {
		appointments, err = s.appointments.FindByDate(ctx, date)
		if err != nil {
			s.cfg.Log.Error("Failed to load appointments", "date", date, "error", err)
			return nil, apperrors.Internal("Failed to load appointments", err)
		}
	}

	return availability.NewSnapshot(services, employees, appointments), nil
}

func (s *availabilityService) Check(ctx context.Context, serviceID, date, clock string) (*availability.Availability, error) {
	snap, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	return snap.CheckAvailability(serviceID, date, clock), nil
}

func (s *availabilityService) FindEmployees(ctx context.Context, serviceID, date, clock string) ([]*model.Employee, error) {
	snap, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	employees := snap.FindAvailableEmployees(serviceID, date, clock)
	if employees == nil {
		employees = []*model.Employee{}
	}
	return employees, nil
}

func (s *availabilityService) SuggestSlots(ctx context.Context, serviceID, date, fromClock string, maxResults int) ([]availability.Slot, error) {
	if maxResults <= 0 || maxResults > s.cfg.MaxSlotSuggestions {
		maxResults = s.cfg.MaxSlotSuggestions
	}

	snap, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	slots := snap.SuggestSlots(serviceID, date, fromClock, maxResults)
	if slots == nil {
		slots = []availability.Slot{}
	}
	return slots, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmenterrors "bookline/internal/appointments/errors"
	"bookline/internal/appointments/repository"
	"bookline/internal/appointments/validator"
	"bookline/internal/availability"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

// ServiceSource and EmployeeSource expose the slices of the catalog
// the assignment check needs. The catalog repositories satisfy them.
type ServiceSource interface {
	ListAll(ctx context.Context) ([]*model.Service, error)
}

type EmployeeSource interface {
	FindByID(ctx context.Context, id string) (*model.Employee, error)
}

type AppointmentService interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error)
	Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) error
	Delete(ctx context.Context, id string) error

	Confirm(ctx context.Context, id string, employeeID string) (*model.Appointment, error)
	Complete(ctx context.Context, id string) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.ConfirmLockRepository
	services  ServiceSource
	employees EmployeeSource
	validator *validator.AppointmentValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.ConfirmLockRepository,
	services ServiceSource,
	employees EmployeeSource,
	validator *validator.AppointmentValidator,
	publisher EventPublisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		services:  services,
		employees: employees,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create books a new appointment in pending state. Staff assignment
// happens later through Confirm; an employee_id in the request body is
// discarded.
func (s *appointmentService) Create(ctx context.Context, appt *model.Appointment) error {
	s.sanitize(appt)
	appt.Status = model.StatusPending
	appt.EmployeeID = ""

	if err := s.validator.Validate(appt); err != nil {
		s.cfg.Log.Warn("Appointment validation failed",
			"customer", appt.CustomerName,
			"error", err,
		)
		return apperrors.Validation("Appointment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"customer", appt.CustomerName,
			"error", err,
		)
		return apperrors.Internal("Failed to create appointment", err)
	}

	s.cfg.Log.Info("Appointment created",
		"id", appt.ID,
		"service_id", appt.ServiceID,
		"at", availability.FormatDateTime(appt.Date, appt.Time),
	)
	s.publishEvent(ctx, EventAppointmentCreated, appt, "")
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve")
	}
	return appt, nil
}

func (s *appointmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appointments, count, nil
}

func (s *appointmentService) Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if filter.Date != "" && !availability.ValidDate(filter.Date) {
		return nil, 0, apperrors.InvalidInput("date must be YYYY-MM-DD format")
	}
	if filter.Status != "" {
		switch filter.Status {
		case model.StatusPending, model.StatusConfirmed, model.StatusCompleted, model.StatusCanceled:
		default:
			return nil, 0, apperrors.InvalidInput("unknown status: " + filter.Status)
		}
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	appointments, total, err := s.repo.Search(ctx, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search appointments", "error", err)
		return nil, 0, apperrors.Internal("Failed to search appointments", err)
	}
	return appointments, total, nil
}

// Update edits booking details on active appointments. Status and
// assignment move only through the lifecycle operations.
func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	updates.CustomerName = sanitizer.NormalizeName(updates.CustomerName)
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
	}
	if updates.Notes != nil {
		normalized := sanitizer.NormalizeNotes(*updates.Notes)
		updates.Notes = &normalized
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation("Appointment update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}
		if !existing.IsActive() {
			return apperrors.Conflict("Only pending or confirmed appointments can be edited")
		}

		if updates.CustomerName != "" {
			existing.CustomerName = updates.CustomerName
		}
		if updates.Phone != "" {
			existing.Phone = updates.Phone
		}
		if updates.ServiceID != "" {
			existing.ServiceID = updates.ServiceID
		}
		if updates.Date != "" {
			existing.Date = updates.Date
		}
		if updates.Time != "" {
			existing.Time = updates.Time
		}
		if updates.Notes != nil {
			existing.Notes = *updates.Notes
		}

		if err := s.validator.Validate(existing); err != nil {
			return apperrors.Validation("Appointment validation failed", map[string]any{
				"error": err.Error(),
			})
		}

		_, err = s.repo.Update(sessCtx, id, existing)
		return err
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return s.mapRepoError(err, id, "update")
	}

	s.cfg.Log.Info("Appointment updated", "id", id)
	return nil
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "delete")
	}

	s.cfg.Log.Info("Appointment deleted", "id", id)
	return nil
}

// Confirm assigns an employee to a pending appointment. The slot must
// pass the full availability check: qualification, working hours,
// daily limit, and interval conflicts. An advisory lock on the slot
// coordinates keeps concurrent confirmations from double booking.
func (s *appointmentService) Confirm(ctx context.Context, id string, employeeID string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	if employeeID == "" {
		return nil, apperrors.InvalidInput("Employee ID is required to confirm")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve")
	}
	if appt.Status != model.StatusPending {
		return nil, apperrors.Conflict("Only pending appointments can be confirmed")
	}

	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Employee", employeeID)
	}

	lockID, err := s.acquireSlotLock(ctx, employeeID, appt.Date, appt.Time)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release confirm lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		services, err := s.services.ListAll(sessCtx)
		if err != nil {
			return apperrors.Internal("Failed to load service catalog", err)
		}
		dayAppointments, err := s.repo.FindByDate(sessCtx, appt.Date)
		if err != nil {
			return apperrors.Internal("Failed to load appointments for the day", err)
		}

		snap := availability.NewSnapshot(services, []*model.Employee{employee}, dayAppointments)
		verdict := snap.CheckAvailability(appt.ServiceID, appt.Date, appt.Time)
		if !verdict.Available {
			return apperrors.Conflict("Employee is not available for this slot").WithDetails(map[string]any{
				"suggestions": verdict.Suggestions,
			})
		}

		return s.repo.SetStatus(sessCtx, id, model.StatusConfirmed, employeeID)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, s.mapRepoError(err, id, "confirm")
	}

	previous := appt.Status
	appt.Status = model.StatusConfirmed
	appt.EmployeeID = employeeID

	s.cfg.Log.Info("Appointment confirmed",
		"id", id,
		"employee_id", employeeID,
		"at", availability.FormatDateTime(appt.Date, appt.Time),
	)
	s.publishEvent(ctx, EventAppointmentStatusChanged, appt, previous)
	return appt, nil
}

func (s *appointmentService) Complete(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusCompleted, model.StatusConfirmed)
}

func (s *appointmentService) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusCanceled, model.StatusPending, model.StatusConfirmed)
}

func (s *appointmentService) transition(ctx context.Context, id string, target string, allowedFrom ...string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	var appt *model.Appointment
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}

		allowed := false
		for _, from := range allowedFrom {
			if existing.Status == from {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.Conflict(fmt.Sprintf("Cannot move %s appointment to %s", existing.Status, target))
		}

		if err := s.repo.SetStatus(sessCtx, id, target, ""); err != nil {
			return err
		}

		appt = existing
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, s.mapRepoError(err, id, "transition")
	}

	previous := appt.Status
	appt.Status = target

	s.cfg.Log.Info("Appointment status changed",
		"id", id,
		"from", previous,
		"to", target,
	)
	s.publishEvent(ctx, EventAppointmentStatusChanged, appt, previous)
	return appt, nil
}

// acquireSlotLock takes the advisory lock for one employee slot. The
// lock expires on its own should the process die before release.
func (s *appointmentService) acquireSlotLock(ctx context.Context, employeeID, date, clock string) (string, error) {
	lockID := fmt.Sprintf("confirm_lock_%s_%s_%s", employeeID, date, clock)

	lock := &model.ConfirmLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is being confirmed by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire confirm lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) sanitize(appt *model.Appointment) {
	appt.CustomerName = sanitizer.NormalizeName(appt.CustomerName)
	if appt.Phone != "" {
		appt.Phone = sanitizer.NormalizePhone(appt.Phone)
	}
	appt.Notes = sanitizer.NormalizeNotes(appt.Notes)
}

func (s *appointmentService) mapRepoError(err error, id string, op string) error {
	if errors.Is(err, appointmenterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Appointment", id)
	}
	if errors.Is(err, appointmenterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid appointment ID format")
	}
	s.cfg.Log.Error("Appointment operation failed", "op", op, "id", id, "error", err)
	return apperrors.Internal("Failed to "+op+" appointment", err)
}

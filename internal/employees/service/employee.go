package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	employeeerrors "bookline/internal/employees/errors"
	"bookline/internal/employees/repository"
	"bookline/internal/employees/validator"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

type EmployeeService interface {
	Create(ctx context.Context, e *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Employee, int64, error)
	GetByServiceID(ctx context.Context, serviceID string) ([]*model.Employee, error)
	Update(ctx context.Context, id string, updates *model.EmployeeUpdate) error
	Delete(ctx context.Context, id string) error
}

type employeeService struct {
	repo      repository.EmployeeRepository
	validator *validator.EmployeeValidator
	cfg       *config.Config
}

func NewEmployeeService(
	repo repository.EmployeeRepository,
	validator *validator.EmployeeValidator,
	cfg *config.Config,
) EmployeeService {
	return &employeeService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *employeeService) Create(ctx context.Context, e *model.Employee) error {
	s.sanitize(e)
	s.applyDefaults(e)

	if err := s.validator.Validate(e); err != nil {
		s.cfg.Log.Warn("Employee validation failed",
			"name", e.Name,
			"error", err,
		)
		return apperrors.Validation("Employee validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.ListAll(sessCtx)
		if err != nil {
			return apperrors.Internal("Failed to check for existing employees", err)
		}
		for _, other := range existing {
			if other.Phone == e.Phone {
				return apperrors.Conflict("Employee with the same phone already exists")
			}
			if strings.EqualFold(other.Name, e.Name) {
				return apperrors.Conflict("Employee with the same name already exists")
			}
		}
		return s.repo.Create(sessCtx, e)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create employee",
			"name", e.Name,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Employee created successfully",
		"id", e.ID,
		"name", e.Name,
		"services", len(e.ServiceIDs),
	)
	return nil
}

func (s *employeeService) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Employee ID cannot be empty")
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, employeeerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Employee", id)
		}
		if errors.Is(err, employeeerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid employee ID format")
		}
		s.cfg.Log.Error("Failed to get employee by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve employee", err)
	}

	return e, nil
}

func (s *employeeService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Employee, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	employees, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list employees", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve employees", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count employees", "error", err)
		return nil, 0, apperrors.Internal("Failed to count employees", err)
	}

	return employees, total, nil
}

func (s *employeeService) GetByServiceID(ctx context.Context, serviceID string) ([]*model.Employee, error) {
	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	employees, err := s.repo.FindByServiceID(ctx, serviceID)
	if err != nil {
		s.cfg.Log.Error("Failed to find employees by service", "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve employees", err)
	}
	return employees, nil
}

func (s *employeeService) Update(ctx context.Context, id string, updates *model.EmployeeUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Employee ID cannot be empty")
	}

	updates.Name = sanitizer.NormalizeName(updates.Name)
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation("Employee update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}

		if updates.Name != "" {
			existing.Name = updates.Name
		}
		if updates.Phone != "" {
			existing.Phone = updates.Phone
		}
		if updates.ServiceIDs != nil {
			existing.ServiceIDs = *updates.ServiceIDs
		}
		if updates.WorkingHours != nil {
			existing.WorkingHours = *updates.WorkingHours
		}
		if updates.DailyLimit != nil {
			existing.DailyLimit = *updates.DailyLimit
		}

		if err := s.validator.Validate(existing); err != nil {
			return apperrors.Validation("Employee validation failed", map[string]any{
				"error": err.Error(),
			})
		}

		_, err = s.repo.Update(sessCtx, id, existing)
		return err
	})
	if err != nil {
		if errors.Is(err, employeeerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Employee", id)
		}
		if errors.Is(err, employeeerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid employee ID format")
		}
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to update employee", "id", id, "error", err)
		return apperrors.Internal("Failed to update employee", err)
	}

	s.cfg.Log.Info("Employee updated successfully", "id", id)
	return nil
}

func (s *employeeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Employee ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, employeeerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Employee", id)
		}
		if errors.Is(err, employeeerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid employee ID format")
		}
		s.cfg.Log.Error("Failed to delete employee", "id", id, "error", err)
		return apperrors.Internal("Failed to delete employee", err)
	}

	s.cfg.Log.Info("Employee deleted", "id", id)
	return nil
}

func (s *employeeService) sanitize(e *model.Employee) {
	e.Name = sanitizer.NormalizeName(e.Name)
	if e.Phone != "" {
		e.Phone = sanitizer.NormalizePhone(e.Phone)
	}
}

func (s *employeeService) applyDefaults(e *model.Employee) {
	if e.DailyLimit == 0 {
		e.DailyLimit = s.cfg.DefaultDailyLimit
	}
	if e.WorkingHours.Start == "" && e.WorkingHours.End == "" {
		e.WorkingHours = model.WorkingHours{
			Start: s.cfg.DefaultWorkStart,
			End:   s.cfg.DefaultWorkEnd,
		}
	}
}

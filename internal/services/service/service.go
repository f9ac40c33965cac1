package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	serviceerrors "bookline/internal/services/errors"
	"bookline/internal/services/repository"
	"bookline/internal/services/validator"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

type CatalogService interface {
	Create(ctx context.Context, svc *model.Service) error
	GetByID(ctx context.Context, id string) (*model.Service, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Service, int64, error)
	Update(ctx context.Context, id string, updates *model.ServiceUpdate) error
	Delete(ctx context.Context, id string) error
}

type catalogService struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
}

func NewCatalogService(
	repo repository.ServiceRepository,
	validator *validator.ServiceValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) Create(ctx context.Context, svc *model.Service) error {
	s.sanitize(svc)
	if svc.DurationMin == 0 {
		svc.DurationMin = s.cfg.DefaultServiceDurationMin
	}

	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed",
			"name", svc.Name,
			"error", err,
		)
		return apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.ListAll(sessCtx)
		if err != nil {
			return apperrors.Internal("Failed to check for existing services", err)
		}
		for _, e := range existing {
			if strings.EqualFold(e.Name, svc.Name) {
				return apperrors.Conflict("Service with the same name already exists")
			}
		}
		return s.repo.Create(sessCtx, svc)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create service",
			"name", svc.Name,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"name", svc.Name,
		"duration_min", svc.DurationMin,
	)
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, serviceerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to get service by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}

	return svc, nil
}

func (s *catalogService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Service, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	services, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve services", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count services", "error", err)
		return nil, 0, apperrors.Internal("Failed to count services", err)
	}

	return services, total, nil
}

func (s *catalogService) Update(ctx context.Context, id string, updates *model.ServiceUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.Description = sanitizer.TrimAndNormalize(updates.Description)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation("Service update validation failed", map[string]any{
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
		if updates.Price != nil {
			existing.Price = *updates.Price
		}
		if updates.DurationMin != nil {
			existing.DurationMin = *updates.DurationMin
		}
		if updates.Description != "" {
			existing.Description = updates.Description
		}

		if err := s.validator.Validate(existing); err != nil {
			return apperrors.Validation("Service validation failed", map[string]any{
				"error": err.Error(),
			})
		}

		_, err = s.repo.Update(sessCtx, id, existing)
		return err
	})
	if err != nil {
		if errors.Is(err, serviceerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, serviceerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service ID format")
		}
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
		return apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated successfully", "id", id)
	return nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, serviceerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, serviceerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to delete service", "id", id, "error", err)
		return apperrors.Internal("Failed to delete service", err)
	}

	s.cfg.Log.Info("Service deleted", "id", id)
	return nil
}

func (s *catalogService) sanitize(svc *model.Service) {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	svc.Description = sanitizer.TrimAndNormalize(svc.Description)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	reviewerrors "bookline/internal/reviews/errors"
	"bookline/internal/reviews/repository"
	"bookline/internal/reviews/validator"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

type ReviewService interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Review, int64, error)
	GetByEmployeeID(ctx context.Context, employeeID string, limit int, offset int64) ([]*model.Review, int64, error)
	AddReply(ctx context.Context, reviewID string, reply *model.Reply) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.ReviewStats, error)
}

type reviewService struct {
	repo      repository.ReviewRepository
	validator *validator.ReviewValidator
	cfg       *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	validator *validator.ReviewValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *reviewService) Create(ctx context.Context, review *model.Review) error {
	review.CustomerName = sanitizer.NormalizeName(review.CustomerName)
	review.Comment = sanitizer.NormalizeNotes(review.Comment)
	review.Replies = nil

	if err := s.validator.Validate(review); err != nil {
		s.cfg.Log.Warn("Review validation failed",
			"appointment_id", review.AppointmentID,
			"error", err,
		)
		return apperrors.Validation("Review validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exists, err := s.repo.ExistsForAppointment(sessCtx, review.EmployeeID, review.AppointmentID)
		if err != nil {
			return apperrors.Internal("Failed to check for existing reviews", err)
		}
		if exists {
			return apperrors.Conflict("This appointment has already been reviewed")
		}
		return s.repo.Create(sessCtx, review)
	})
	if errors.Is(err, reviewerrors.ErrDuplicate) {
		// Unique index caught a concurrent insert of the same pair.
		return apperrors.Conflict("This appointment has already been reviewed")
	}
	if err != nil {
		s.cfg.Log.Error("Failed to create review",
			"appointment_id", review.AppointmentID,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Review created",
		"id", review.ID,
		"rating", review.Rating,
		"employee_id", review.EmployeeID,
	)
	return nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return review, nil
}

func (s *reviewService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Review, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	reviews, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reviews", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve reviews", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count reviews", "error", err)
		return nil, 0, apperrors.Internal("Failed to count reviews", err)
	}

	return reviews, total, nil
}

func (s *reviewService) GetByEmployeeID(ctx context.Context, employeeID string, limit int, offset int64) ([]*model.Review, int64, error) {
	if employeeID == "" {
		return nil, 0, apperrors.InvalidInput("Employee ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	reviews, total, err := s.repo.FindByEmployeeID(ctx, employeeID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reviews by employee", "employee_id", employeeID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve reviews", err)
	}
	return reviews, total, nil
}

// AddReply appends a staff response to a review. Reply IDs are
// generated here; replies are embedded, not separate documents.
func (s *reviewService) AddReply(ctx context.Context, reviewID string, reply *model.Reply) error {
	if reviewID == "" {
		return apperrors.InvalidInput("Review ID cannot be empty")
	}

	reply.Author = sanitizer.NormalizeName(reply.Author)
	reply.Content = sanitizer.NormalizeNotes(reply.Content)

	if err := s.validator.ValidateReply(reply); err != nil {
		return apperrors.Validation("Reply validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	reply.ID = uuid.New().String()
	reply.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := s.repo.AddReply(ctx, reviewID, *reply); err != nil {
		return s.mapRepoError(err, reviewID)
	}

	s.cfg.Log.Info("Reply added to review",
		"review_id", reviewID,
		"role", reply.Role,
	)
	return nil
}

func (s *reviewService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Review ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id)
	}

	s.cfg.Log.Info("Review deleted", "id", id)
	return nil
}

func (s *reviewService) Stats(ctx context.Context) (*model.ReviewStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate review stats", "error", err)
		return nil, apperrors.Internal("Failed to aggregate review stats", err)
	}
	return stats, nil
}

func (s *reviewService) mapRepoError(err error, id string) error {
	if errors.Is(err, reviewerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Review", id)
	}
	if errors.Is(err, reviewerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid review ID format")
	}
	s.cfg.Log.Error("Review operation failed", "id", id, "error", err)
	return apperrors.Internal("Review operation failed", err)
}

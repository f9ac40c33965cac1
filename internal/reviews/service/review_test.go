package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	reviewerrors "bookline/internal/reviews/errors"
	"bookline/internal/reviews/validator"
	"bookline/pkg/config"
	mongotx "bookline/pkg/db/mongo"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

const (
	reviewID      = "65c000000000000000000001"
	appointmentID = "65d000000000000000000001"
	serviceID     = "65f000000000000000000001"
	employeeID    = "65e000000000000000000001"
)

type mockReviewRepository struct {
	createFunc               func(ctx context.Context, review *model.Review) error
	findByIDFunc             func(ctx context.Context, id string) (*model.Review, error)
	findAllFunc              func(ctx context.Context, limit int, offset int64) ([]*model.Review, error)
	findByEmployeeIDFunc     func(ctx context.Context, employeeID string, limit int, offset int64) ([]*model.Review, int64, error)
	existsForAppointmentFunc func(ctx context.Context, employeeID, appointmentID string) (bool, error)
	addReplyFunc             func(ctx context.Context, reviewID string, reply model.Reply) error
	deleteFunc               func(ctx context.Context, id string) error
	countFunc                func(ctx context.Context) (int64, error)
	statsFunc                func(ctx context.Context) (*model.ReviewStats, error)
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, review)
	}
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reviewerrors.ErrNotFound
}

func (m *mockReviewRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Review, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Review{}, nil
}

func (m *mockReviewRepository) FindByEmployeeID(ctx context.Context, employeeID string, limit int, offset int64) ([]*model.Review, int64, error) {
	if m.findByEmployeeIDFunc != nil {
		return m.findByEmployeeIDFunc(ctx, employeeID, limit, offset)
	}
	return []*model.Review{}, 0, nil
}

func (m *mockReviewRepository) ExistsForAppointment(ctx context.Context, employeeID, appointmentID string) (bool, error) {
	if m.existsForAppointmentFunc != nil {
		return m.existsForAppointmentFunc(ctx, employeeID, appointmentID)
	}
	return false, nil
}

func (m *mockReviewRepository) AddReply(ctx context.Context, reviewID string, reply model.Reply) error {
	if m.addReplyFunc != nil {
		return m.addReplyFunc(ctx, reviewID, reply)
	}
	return nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReviewRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockReviewRepository) Stats(ctx context.Context) (*model.ReviewStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return &model.ReviewStats{RatingCounts: map[int]int{}}, nil
}

func (m *mockReviewRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func validReview() *model.Review {
	return &model.Review{
		AppointmentID: appointmentID,
		ServiceID:     serviceID,
		EmployeeID:    employeeID,
		CustomerName:  "Linh Nguyen",
		Rating:        5,
		Comment:       "Great service",
	}
}

func TestCreateReview(t *testing.T) {
	t.Run("valid review", func(t *testing.T) {
		var created *model.Review
		repo := &mockReviewRepository{
			createFunc: func(ctx context.Context, review *model.Review) error {
				created = review
				return nil
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		if err := svc.Create(context.Background(), validReview()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || created.Rating != 5 {
			t.Errorf("review not stored: %+v", created)
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc := NewReviewService(&mockReviewRepository{}, validator.NewReviewValidator(), testConfig())

		review := validReview()
		review.Rating = 6
		err := svc.Create(context.Background(), review)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("duplicate appointment review rejected", func(t *testing.T) {
		created := false
		repo := &mockReviewRepository{
			existsForAppointmentFunc: func(ctx context.Context, empID, apptID string) (bool, error) {
				return empID == employeeID && apptID == appointmentID, nil
			},
			createFunc: func(ctx context.Context, review *model.Review) error {
				created = true
				return nil
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		err := svc.Create(context.Background(), validReview())
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
		if created {
			t.Error("duplicate review reached the repository")
		}
	})

	t.Run("duplicate found beyond one listing page", func(t *testing.T) {
		// A busy employee with far more reviews than a single page;
		// the earliest one reviewed this appointment.
		store := make([]*model.Review, 150)
		for i := range store {
			store[i] = &model.Review{
				ID:            fmt.Sprintf("65c0000000000000000000%02x", i),
				AppointmentID: fmt.Sprintf("65d0000000000000000000%02x", i),
				EmployeeID:    employeeID,
				Rating:        4,
			}
		}
		store[len(store)-1].AppointmentID = appointmentID

		created := false
		repo := &mockReviewRepository{
			findByEmployeeIDFunc: func(ctx context.Context, empID string, limit int, offset int64) ([]*model.Review, int64, error) {
				end := min(offset+int64(limit), int64(len(store)))
				return store[offset:end], int64(len(store)), nil
			},
			existsForAppointmentFunc: func(ctx context.Context, empID, apptID string) (bool, error) {
				for _, other := range store {
					if other.EmployeeID == empID && other.AppointmentID == apptID {
						return true, nil
					}
				}
				return false, nil
			},
			createFunc: func(ctx context.Context, review *model.Review) error {
				created = true
				return nil
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		err := svc.Create(context.Background(), validReview())
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
		if created {
			t.Error("duplicate review reached the repository")
		}
	})

	t.Run("concurrent duplicate caught by unique index", func(t *testing.T) {
		repo := &mockReviewRepository{
			createFunc: func(ctx context.Context, review *model.Review) error {
				return fmt.Errorf("%w: appointment %s", reviewerrors.ErrDuplicate, review.AppointmentID)
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		err := svc.Create(context.Background(), validReview())
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("client supplied replies dropped", func(t *testing.T) {
		var created *model.Review
		repo := &mockReviewRepository{
			createFunc: func(ctx context.Context, review *model.Review) error {
				created = review
				return nil
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		review := validReview()
		review.Replies = []model.Reply{{Author: "Hack", Role: "admin", Content: "planted"}}
		if err := svc.Create(context.Background(), review); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(created.Replies) != 0 {
			t.Error("expected replies to be cleared on create")
		}
	})
}

func TestGetReviewsByEmployee(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int64
		wantLimit  int
		wantOffset int64
	}{
		{"plain page", 20, 40, 20, 40},
		{"zero limit falls back", 0, 0, 10, 0},
		{"limit clamped to max", 500, 0, config.DefaultPaginationLimit, 0},
		{"negative offset normalized", 10, -5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			var gotOffset int64
			repo := &mockReviewRepository{
				findByEmployeeIDFunc: func(ctx context.Context, empID string, limit int, offset int64) ([]*model.Review, int64, error) {
					gotLimit, gotOffset = limit, offset
					return []*model.Review{{ID: reviewID, EmployeeID: empID}}, 42, nil
				},
			}
			svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

			reviews, total, err := svc.GetByEmployeeID(context.Background(), employeeID, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Errorf("repository called with limit=%d offset=%d, want limit=%d offset=%d",
					gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
			if total != 42 || len(reviews) != 1 {
				t.Errorf("got %d reviews, total %d, want 1 and 42", len(reviews), total)
			}
		})
	}

	t.Run("empty employee id rejected", func(t *testing.T) {
		svc := NewReviewService(&mockReviewRepository{}, validator.NewReviewValidator(), testConfig())

		_, _, err := svc.GetByEmployeeID(context.Background(), "", 10, 0)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})
}

func TestAddReply(t *testing.T) {
	t.Run("assigns id and timestamp", func(t *testing.T) {
		var stored model.Reply
		repo := &mockReviewRepository{
			addReplyFunc: func(ctx context.Context, reviewID string, reply model.Reply) error {
				stored = reply
				return nil
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		reply := &model.Reply{Author: "Anna", Role: "employee", Content: "Thank you!"}
		if err := svc.AddReply(context.Background(), reviewID, reply); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored.ID == "" || stored.CreatedAt.IsZero() {
			t.Errorf("reply missing id or timestamp: %+v", stored)
		}
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		svc := NewReviewService(&mockReviewRepository{}, validator.NewReviewValidator(), testConfig())

		reply := &model.Reply{Author: "Anna", Role: "customer", Content: "hi"}
		err := svc.AddReply(context.Background(), reviewID, reply)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("review not found", func(t *testing.T) {
		repo := &mockReviewRepository{
			addReplyFunc: func(ctx context.Context, reviewID string, reply model.Reply) error {
				return reviewerrors.ErrNotFound
			},
		}
		svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

		reply := &model.Reply{Author: "Anna", Role: "employee", Content: "Thanks"}
		err := svc.AddReply(context.Background(), reviewID, reply)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestReviewStats(t *testing.T) {
	repo := &mockReviewRepository{
		statsFunc: func(ctx context.Context) (*model.ReviewStats, error) {
			return &model.ReviewStats{
				TotalReviews:   4,
				AverageRating:  4.25,
				RatingCounts:   map[int]int{5: 2, 4: 1, 3: 1},
				PendingReplies: 2,
			}, nil
		},
	}
	svc := NewReviewService(repo, validator.NewReviewValidator(), testConfig())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalReviews != 4 || stats.AverageRating != 4.25 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.RatingCounts[5] != 2 || stats.PendingReplies != 2 {
		t.Errorf("unexpected stats detail: %+v", stats)
	}
}

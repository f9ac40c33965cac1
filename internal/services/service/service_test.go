package service

import (
	"context"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	serviceerrors "bookline/internal/services/errors"
	"bookline/internal/services/validator"
	"bookline/pkg/config"
	mongotx "bookline/pkg/db/mongo"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type mockServiceRepository struct {
	createFunc   func(ctx context.Context, svc *model.Service) error
	findByIDFunc func(ctx context.Context, id string) (*model.Service, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Service, error)
	listAllFunc  func(ctx context.Context) ([]*model.Service, error)
	updateFunc   func(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
	countFunc    func(ctx context.Context) (int64, error)
}

func (m *mockServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, svc)
	}
	return nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, serviceerrors.ErrNotFound
}

func (m *mockServiceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Service, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Service{}, nil
}

func (m *mockServiceRepository) ListAll(ctx context.Context) ([]*model.Service, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return []*model.Service{}, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, svc)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockServiceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockServiceRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockServiceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
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
		ReadTimeout:               5 * time.Second,
		WriteTimeout:              5 * time.Second,
		DefaultServiceDurationMin: 60,
	}
}

func TestCreateService(t *testing.T) {
	t.Run("applies default duration", func(t *testing.T) {
		var created *model.Service
		repo := &mockServiceRepository{
			createFunc: func(ctx context.Context, svc *model.Service) error {
				created = svc
				return nil
			},
		}
		svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())

		err := svc.Create(context.Background(), &model.Service{
			Name:  "Haircut",
			Price: 250000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || created.DurationMin != 60 {
			t.Errorf("expected default duration 60, got %+v", created)
		}
	})

	t.Run("rejects invalid service", func(t *testing.T) {
		svc := NewCatalogService(&mockServiceRepository{}, validator.NewServiceValidator(), testConfig())

		err := svc.Create(context.Background(), &model.Service{Name: "X"})
		if err == nil {
			t.Fatal("expected validation error")
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeValidation {
			t.Errorf("expected validation code, got %s", appErr.Code)
		}
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		repo := &mockServiceRepository{
			listAllFunc: func(ctx context.Context) ([]*model.Service, error) {
				return []*model.Service{{ID: "1", Name: "haircut"}}, nil
			},
		}
		svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())

		err := svc.Create(context.Background(), &model.Service{
			Name:        "Haircut",
			Price:       250000,
			DurationMin: 30,
		})
		if err == nil {
			t.Fatal("expected conflict error")
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Errorf("expected conflict code, got %s", apperrors.AsAppError(err).Code)
		}
	})

	t.Run("normalizes name whitespace", func(t *testing.T) {
		var created *model.Service
		repo := &mockServiceRepository{
			createFunc: func(ctx context.Context, svc *model.Service) error {
				created = svc
				return nil
			},
		}
		svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())

		err := svc.Create(context.Background(), &model.Service{
			Name:        "  Deep   Tissue  Massage ",
			Price:       600000,
			DurationMin: 60,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Name != "Deep Tissue Massage" {
			t.Errorf("name not normalized: %q", created.Name)
		}
	})
}

func TestGetServiceByID(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		svc := NewCatalogService(&mockServiceRepository{}, validator.NewServiceValidator(), testConfig())
		if _, err := svc.GetByID(context.Background(), ""); err == nil {
			t.Fatal("expected invalid input error")
		}
	})

	t.Run("not found maps to app error", func(t *testing.T) {
		svc := NewCatalogService(&mockServiceRepository{}, validator.NewServiceValidator(), testConfig())
		_, err := svc.GetByID(context.Background(), "65f000000000000000000001")
		if err == nil {
			t.Fatal("expected error")
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
			t.Errorf("expected not found code, got %s", apperrors.AsAppError(err).Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		repo := &mockServiceRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
				return &model.Service{ID: id, Name: "Haircut", DurationMin: 30}, nil
			},
		}
		svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())
		got, err := svc.GetByID(context.Background(), "65f000000000000000000001")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "Haircut" {
			t.Errorf("unexpected service: %+v", got)
		}
	})
}

func TestGetAllServices(t *testing.T) {
	repo := &mockServiceRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Service, error) {
			return []*model.Service{{ID: "1", Name: "Haircut"}}, nil
		},
		countFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
	}
	svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())

	services, total, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 || len(services) != 1 {
		t.Errorf("got %d services, total %d", len(services), total)
	}
}

func TestUpdateService(t *testing.T) {
	t.Run("merges partial update", func(t *testing.T) {
		var updated *model.Service
		repo := &mockServiceRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
				return &model.Service{ID: id, Name: "Haircut", Price: 250000, DurationMin: 30}, nil
			},
			updateFunc: func(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error) {
				updated = svc
				return &mongo.UpdateResult{MatchedCount: 1}, nil
			},
		}
		svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())

		newDuration := 45
		err := svc.Update(context.Background(), "65f000000000000000000001", &model.ServiceUpdate{
			DurationMin: &newDuration,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.DurationMin != 45 || updated.Name != "Haircut" {
			t.Errorf("merge failed: %+v", updated)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewCatalogService(&mockServiceRepository{}, validator.NewServiceValidator(), testConfig())
		err := svc.Update(context.Background(), "65f000000000000000000001", &model.ServiceUpdate{})
		if err == nil {
			t.Fatal("expected error")
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
			t.Errorf("expected not found code, got %s", apperrors.AsAppError(err).Code)
		}
	})
}

func TestDeleteService(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := &mockServiceRepository{
			deleteFunc: func(ctx context.Context, id string) error {
				return serviceerrors.ErrNotFound
			},
		}
		svc := NewCatalogService(repo, validator.NewServiceValidator(), testConfig())
		err := svc.Delete(context.Background(), "65f000000000000000000001")
		if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
			t.Errorf("expected not found code, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := NewCatalogService(&mockServiceRepository{}, validator.NewServiceValidator(), testConfig())
		if err := svc.Delete(context.Background(), "65f000000000000000000001"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

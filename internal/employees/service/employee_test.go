package service

import (
	"context"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	employeeerrors "bookline/internal/employees/errors"
	"bookline/internal/employees/validator"
	"bookline/pkg/config"
	mongotx "bookline/pkg/db/mongo"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type mockEmployeeRepository struct {
	createFunc          func(ctx context.Context, e *model.Employee) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Employee, error)
	findAllFunc         func(ctx context.Context, limit int, offset int64) ([]*model.Employee, error)
	listAllFunc         func(ctx context.Context) ([]*model.Employee, error)
	findByServiceIDFunc func(ctx context.Context, serviceID string) ([]*model.Employee, error)
	updateFunc          func(ctx context.Context, id string, e *model.Employee) (*mongo.UpdateResult, error)
	deleteFunc          func(ctx context.Context, id string) error
	countFunc           func(ctx context.Context) (int64, error)
}

func (m *mockEmployeeRepository) Create(ctx context.Context, e *model.Employee) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	return nil
}

func (m *mockEmployeeRepository) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, employeeerrors.ErrNotFound
}

func (m *mockEmployeeRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Employee, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Employee{}, nil
}

func (m *mockEmployeeRepository) ListAll(ctx context.Context) ([]*model.Employee, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return []*model.Employee{}, nil
}

func (m *mockEmployeeRepository) FindByServiceID(ctx context.Context, serviceID string) ([]*model.Employee, error) {
	if m.findByServiceIDFunc != nil {
		return m.findByServiceIDFunc(ctx, serviceID)
	}
	return []*model.Employee{}, nil
}

func (m *mockEmployeeRepository) Update(ctx context.Context, id string, e *model.Employee) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, e)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockEmployeeRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockEmployeeRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockEmployeeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
	return &config.Config{
		Log:               log,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		DefaultDailyLimit: 8,
		DefaultWorkStart:  "09:00",
		DefaultWorkEnd:    "17:00",
	}
}

func newTestService(repo *mockEmployeeRepository, cfg *config.Config) EmployeeService {
	return NewEmployeeService(repo, validator.NewEmployeeValidator(cfg.Log), cfg)
}

func TestCreateEmployee(t *testing.T) {
	t.Run("applies defaults for hours and limit", func(t *testing.T) {
		var created *model.Employee
		repo := &mockEmployeeRepository{
			createFunc: func(ctx context.Context, e *model.Employee) error {
				created = e
				return nil
			},
		}
		svc := newTestService(repo, testConfig())

		err := svc.Create(context.Background(), &model.Employee{
			Name:       "Anna Tran",
			Phone:      "+84901234567",
			ServiceIDs: []string{"65f000000000000000000001"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.DailyLimit != 8 {
			t.Errorf("expected default daily limit 8, got %d", created.DailyLimit)
		}
		if created.WorkingHours.Start != "09:00" || created.WorkingHours.End != "17:00" {
			t.Errorf("expected default working hours, got %+v", created.WorkingHours)
		}
	})

	t.Run("duplicate phone rejected", func(t *testing.T) {
		repo := &mockEmployeeRepository{
			listAllFunc: func(ctx context.Context) ([]*model.Employee, error) {
				return []*model.Employee{{ID: "1", Name: "Bern", Phone: "+84901234567"}}, nil
			},
		}
		svc := newTestService(repo, testConfig())

		err := svc.Create(context.Background(), &model.Employee{
			Name:       "Anna Tran",
			Phone:      "+84901234567",
			ServiceIDs: []string{"65f000000000000000000001"},
		})
		if err == nil {
			t.Fatal("expected conflict error")
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Errorf("expected conflict code, got %s", apperrors.AsAppError(err).Code)
		}
	})

	t.Run("invalid employee rejected", func(t *testing.T) {
		svc := newTestService(&mockEmployeeRepository{}, testConfig())
		err := svc.Create(context.Background(), &model.Employee{Name: "Anna"})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
			t.Errorf("expected validation code, got %s", apperrors.AsAppError(err).Code)
		}
	})
}

func TestUpdateEmployee(t *testing.T) {
	t.Run("merges working hours", func(t *testing.T) {
		var updated *model.Employee
		repo := &mockEmployeeRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Employee, error) {
				return &model.Employee{
					ID:           id,
					Name:         "Anna Tran",
					Phone:        "+84901234567",
					ServiceIDs:   []string{"65f000000000000000000001"},
					WorkingHours: model.WorkingHours{Start: "09:00", End: "17:00"},
					DailyLimit:   5,
				}, nil
			},
			updateFunc: func(ctx context.Context, id string, e *model.Employee) (*mongo.UpdateResult, error) {
				updated = e
				return &mongo.UpdateResult{MatchedCount: 1}, nil
			},
		}
		svc := newTestService(repo, testConfig())

		err := svc.Update(context.Background(), "65e000000000000000000001", &model.EmployeeUpdate{
			WorkingHours: &model.WorkingHours{Start: "08:00", End: "16:00"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.WorkingHours.Start != "08:00" || updated.Name != "Anna Tran" {
			t.Errorf("merge failed: %+v", updated)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(&mockEmployeeRepository{}, testConfig())
		err := svc.Update(context.Background(), "65e000000000000000000001", &model.EmployeeUpdate{})
		if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestGetEmployeesByService(t *testing.T) {
	repo := &mockEmployeeRepository{
		findByServiceIDFunc: func(ctx context.Context, serviceID string) ([]*model.Employee, error) {
			return []*model.Employee{{ID: "1", Name: "Anna"}}, nil
		},
	}
	svc := newTestService(repo, testConfig())

	employees, err := svc.GetByServiceID(context.Background(), "65f000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(employees) != 1 {
		t.Errorf("expected 1 employee, got %d", len(employees))
	}

	if _, err := svc.GetByServiceID(context.Background(), ""); err == nil {
		t.Error("expected error for empty service id")
	}
}

package service

import (
	"context"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmenterrors "bookline/internal/appointments/errors"
	"bookline/internal/appointments/repository"
	"bookline/internal/appointments/validator"
	"bookline/pkg/config"
	mongotx "bookline/pkg/db/mongo"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/kafka"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

const (
	apptID     = "65d000000000000000000001"
	haircutID  = "65f000000000000000000001"
	employeeID = "65e000000000000000000001"
)

type mockAppointmentRepository struct {
	createFunc     func(ctx context.Context, appt *model.Appointment) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFunc    func(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error)
	findByDateFunc func(ctx context.Context, date string) ([]*model.Appointment, error)
	searchFunc     func(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
	updateFunc     func(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error)
	setStatusFunc  func(ctx context.Context, id string, status string, employeeID string) error
	deleteFunc     func(ctx context.Context, id string) error
	countFunc      func(ctx context.Context) (int64, error)
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, appt)
	}
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, appointmenterrors.ErrNotFound
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) FindByDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, limit, offset)
	}
	return []*model.Appointment{}, 0, nil
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, appt)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockAppointmentRepository) SetStatus(ctx context.Context, id string, status string, employeeID string) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status, employeeID)
	}
	return nil
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.ConfirmLock) (*model.ConfirmLock, error)
	deleted    []string
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.ConfirmLock) (*model.ConfirmLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockServiceSource struct {
	services []*model.Service
}

func (m *mockServiceSource) ListAll(ctx context.Context) ([]*model.Service, error) {
	return m.services, nil
}

type mockEmployeeSource struct {
	employee *model.Employee
	err      error
}

func (m *mockEmployeeSource) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.employee, nil
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		EventsEnabled: true,
	}
}

func testEmployee() *model.Employee {
	return &model.Employee{
		ID:           employeeID,
		Name:         "Anna",
		Phone:        "+84901234567",
		ServiceIDs:   []string{haircutID},
		WorkingHours: model.WorkingHours{Start: "08:00", End: "18:00"},
		DailyLimit:   5,
	}
}

func pendingAppointment() *model.Appointment {
	return &model.Appointment{
		ID:           apptID,
		CustomerName: "Linh Nguyen",
		Phone:        "+84907654321",
		ServiceID:    haircutID,
		Date:         "2024-01-10",
		Time:         "10:00",
		Status:       model.StatusPending,
	}
}

func newService(repo *mockAppointmentRepository, locks *mockLockRepository, employees *mockEmployeeSource, pub *mockPublisher) AppointmentService {
	cfg := testConfig()
	return NewAppointmentService(
		repo,
		locks,
		&mockServiceSource{services: []*model.Service{{ID: haircutID, Name: "Haircut", Price: 250000, DurationMin: 30}}},
		employees,
		validator.NewAppointmentValidator(cfg.Log),
		pub,
		cfg,
	)
}

func TestCreateAppointment(t *testing.T) {
	t.Run("forces pending and drops assignment", func(t *testing.T) {
		var created *model.Appointment
		repo := &mockAppointmentRepository{
			createFunc: func(ctx context.Context, appt *model.Appointment) error {
				appt.ID = apptID
				created = appt
				return nil
			},
		}
		pub := &mockPublisher{}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{}, pub)

		err := svc.Create(context.Background(), &model.Appointment{
			CustomerName: "Linh Nguyen",
			Phone:        "+84907654321",
			ServiceID:    haircutID,
			EmployeeID:   employeeID,
			Date:         "2024-01-10",
			Time:         "10:00",
			Status:       model.StatusConfirmed,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Status != model.StatusPending || created.EmployeeID != "" {
			t.Errorf("expected pending unassigned appointment, got %+v", created)
		}
		if len(pub.published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(pub.published))
		}
		if got := pub.published[0].GetEventType(); got != EventAppointmentCreated {
			t.Errorf("event type = %q", got)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		svc := newService(&mockAppointmentRepository{}, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})

		err := svc.Create(context.Background(), &model.Appointment{
			CustomerName: "Linh Nguyen",
			Phone:        "+84907654321",
			ServiceID:    haircutID,
			Date:         "10/01/2024",
			Time:         "10:00",
		})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
			t.Errorf("expected validation code, got %s", apperrors.AsAppError(err).Code)
		}
	})

	t.Run("publish failure does not fail the booking", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			createFunc: func(ctx context.Context, appt *model.Appointment) error {
				appt.ID = apptID
				return nil
			},
		}
		pub := &mockPublisher{err: kafka.ErrProducerClosed}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{}, pub)

		err := svc.Create(context.Background(), &model.Appointment{
			CustomerName: "Linh Nguyen",
			Phone:        "+84907654321",
			ServiceID:    haircutID,
			Date:         "2024-01-10",
			Time:         "10:00",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConfirmAppointment(t *testing.T) {
	t.Run("assigns free employee", func(t *testing.T) {
		var setStatus, setEmployee string
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				return pendingAppointment(), nil
			},
			setStatusFunc: func(ctx context.Context, id string, status string, employeeID string) error {
				setStatus, setEmployee = status, employeeID
				return nil
			},
		}
		locks := &mockLockRepository{}
		pub := &mockPublisher{}
		svc := newService(repo, locks, &mockEmployeeSource{employee: testEmployee()}, pub)

		appt, err := svc.Confirm(context.Background(), apptID, employeeID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if setStatus != model.StatusConfirmed || setEmployee != employeeID {
			t.Errorf("status write = %s/%s", setStatus, setEmployee)
		}
		if appt.Status != model.StatusConfirmed || appt.EmployeeID != employeeID {
			t.Errorf("returned appointment not confirmed: %+v", appt)
		}
		if len(locks.deleted) != 1 {
			t.Errorf("expected lock release, got %v", locks.deleted)
		}
		if len(pub.published) != 1 || pub.published[0].GetEventType() != EventAppointmentStatusChanged {
			t.Errorf("expected status change event")
		}
	})

	t.Run("conflicting slot rejected with suggestions", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				return pendingAppointment(), nil
			},
			findByDateFunc: func(ctx context.Context, date string) ([]*model.Appointment, error) {
				return []*model.Appointment{{
					ID:         "other",
					ServiceID:  haircutID,
					EmployeeID: employeeID,
					Date:       "2024-01-10",
					Time:       "10:00",
					Status:     model.StatusConfirmed,
				}}, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{employee: testEmployee()}, &mockPublisher{})

		_, err := svc.Confirm(context.Background(), apptID, employeeID)
		if err == nil {
			t.Fatal("expected conflict error")
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict code, got %s", appErr.Code)
		}
		if appErr.Details["suggestions"] == nil {
			t.Error("expected suggestions in conflict details")
		}
	})

	t.Run("outside working hours rejected", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				appt := pendingAppointment()
				appt.Time = "07:00"
				return appt, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{employee: testEmployee()}, &mockPublisher{})

		_, err := svc.Confirm(context.Background(), apptID, employeeID)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("daily limit rejected", func(t *testing.T) {
		employee := testEmployee()
		employee.DailyLimit = 1
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				return pendingAppointment(), nil
			},
			findByDateFunc: func(ctx context.Context, date string) ([]*model.Appointment, error) {
				return []*model.Appointment{{
					ID:         "other",
					ServiceID:  haircutID,
					EmployeeID: employeeID,
					Date:       "2024-01-10",
					Time:       "14:00",
					Status:     model.StatusConfirmed,
				}}, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{employee: employee}, &mockPublisher{})

		_, err := svc.Confirm(context.Background(), apptID, employeeID)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("non pending appointment rejected", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				appt := pendingAppointment()
				appt.Status = model.StatusConfirmed
				return appt, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{employee: testEmployee()}, &mockPublisher{})

		_, err := svc.Confirm(context.Background(), apptID, employeeID)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("held lock surfaces as conflict", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				return pendingAppointment(), nil
			},
		}
		locks := &mockLockRepository{
			createFunc: func(ctx context.Context, lock *model.ConfirmLock) (*model.ConfirmLock, error) {
				return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
			},
		}
		svc := newService(repo, locks, &mockEmployeeSource{employee: testEmployee()}, &mockPublisher{})

		_, err := svc.Confirm(context.Background(), apptID, employeeID)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("missing employee id", func(t *testing.T) {
		svc := newService(&mockAppointmentRepository{}, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		_, err := svc.Confirm(context.Background(), apptID, "")
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})
}

func TestLifecycleTransitions(t *testing.T) {
	withStatus := func(status string) *mockAppointmentRepository {
		return &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				appt := pendingAppointment()
				appt.Status = status
				return appt, nil
			},
		}
	}

	t.Run("complete confirmed", func(t *testing.T) {
		svc := newService(withStatus(model.StatusConfirmed), &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		appt, err := svc.Complete(context.Background(), apptID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if appt.Status != model.StatusCompleted {
			t.Errorf("status = %s", appt.Status)
		}
	})

	t.Run("complete pending rejected", func(t *testing.T) {
		svc := newService(withStatus(model.StatusPending), &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		if _, err := svc.Complete(context.Background(), apptID); err == nil {
			t.Fatal("expected conflict")
		}
	})

	t.Run("cancel pending", func(t *testing.T) {
		svc := newService(withStatus(model.StatusPending), &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		appt, err := svc.Cancel(context.Background(), apptID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if appt.Status != model.StatusCanceled {
			t.Errorf("status = %s", appt.Status)
		}
	})

	t.Run("cancel canceled rejected", func(t *testing.T) {
		svc := newService(withStatus(model.StatusCanceled), &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		if _, err := svc.Cancel(context.Background(), apptID); err == nil {
			t.Fatal("expected conflict")
		}
	})

	t.Run("complete completed rejected", func(t *testing.T) {
		svc := newService(withStatus(model.StatusCompleted), &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		if _, err := svc.Complete(context.Background(), apptID); err == nil {
			t.Fatal("expected conflict")
		}
	})
}

func TestSearchAppointments(t *testing.T) {
	t.Run("rejects malformed date", func(t *testing.T) {
		svc := newService(&mockAppointmentRepository{}, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		_, _, err := svc.Search(context.Background(), repository.SearchFilter{Date: "not-a-date"}, 10, 0)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc := newService(&mockAppointmentRepository{}, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})
		_, _, err := svc.Search(context.Background(), repository.SearchFilter{Status: "done"}, 10, 0)
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("passes filter through", func(t *testing.T) {
		var gotFilter repository.SearchFilter
		repo := &mockAppointmentRepository{
			searchFunc: func(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
				gotFilter = filter
				return []*model.Appointment{pendingAppointment()}, 1, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})

		results, total, err := svc.Search(context.Background(), repository.SearchFilter{
			Date:   "2024-01-10",
			Status: model.StatusPending,
		}, 10, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 1 || len(results) != 1 {
			t.Errorf("got %d results, total %d", len(results), total)
		}
		if gotFilter.Date != "2024-01-10" || gotFilter.Status != model.StatusPending {
			t.Errorf("filter not forwarded: %+v", gotFilter)
		}
	})
}

func TestUpdateAppointment(t *testing.T) {
	t.Run("terminal appointment rejected", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				appt := pendingAppointment()
				appt.Status = model.StatusCompleted
				return appt, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})

		err := svc.Update(context.Background(), apptID, &model.AppointmentUpdate{Time: "11:00"})
		if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("merges time change", func(t *testing.T) {
		var updated *model.Appointment
		repo := &mockAppointmentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
				return pendingAppointment(), nil
			},
			updateFunc: func(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error) {
				updated = appt
				return &mongo.UpdateResult{MatchedCount: 1}, nil
			},
		}
		svc := newService(repo, &mockLockRepository{}, &mockEmployeeSource{}, &mockPublisher{})

		err := svc.Update(context.Background(), apptID, &model.AppointmentUpdate{Time: "11:30"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Time != "11:30" || updated.CustomerName != "Linh Nguyen" {
			t.Errorf("merge failed: %+v", updated)
		}
	})
}

package validator

import (
	"io"
	"testing"

	"bookline/pkg/logger"
	"bookline/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
}

func validEmployee() *model.Employee {
	return &model.Employee{
		Name:       "Anna Tran",
		Phone:      "+84901234567",
		ServiceIDs: []string{"65f000000000000000000001"},
		WorkingHours: model.WorkingHours{
			Start: "09:00",
			End:   "17:00",
		},
		DailyLimit: 5,
	}
}

func TestEmployeeValidator(t *testing.T) {
	v := NewEmployeeValidator(testLogger())

	t.Run("valid employee", func(t *testing.T) {
		if err := v.Validate(validEmployee()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(e *model.Employee)
	}{
		{"missing name", func(e *model.Employee) { e.Name = "" }},
		{"short name", func(e *model.Employee) { e.Name = "A" }},
		{"missing phone", func(e *model.Employee) { e.Phone = "" }},
		{"phone not e164", func(e *model.Employee) { e.Phone = "0901234567" }},
		{"no services", func(e *model.Employee) { e.ServiceIDs = nil }},
		{"bad service id", func(e *model.Employee) { e.ServiceIDs = []string{"nope"} }},
		{"bad start clock", func(e *model.Employee) { e.WorkingHours.Start = "9am" }},
		{"bad end clock", func(e *model.Employee) { e.WorkingHours.End = "25:00" }},
		{"end before start", func(e *model.Employee) { e.WorkingHours = model.WorkingHours{Start: "17:00", End: "09:00"} }},
		{"zero daily limit", func(e *model.Employee) { e.DailyLimit = 0 }},
		{"negative daily limit", func(e *model.Employee) { e.DailyLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEmployee()
			tt.mutate(e)
			if err := v.Validate(e); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestEmployeeValidatorUpdate(t *testing.T) {
	v := NewEmployeeValidator(testLogger())

	t.Run("empty update is valid", func(t *testing.T) {
		if err := v.ValidateUpdate(&model.EmployeeUpdate{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("inverted working hours rejected", func(t *testing.T) {
		err := v.ValidateUpdate(&model.EmployeeUpdate{
			WorkingHours: &model.WorkingHours{Start: "18:00", End: "08:00"},
		})
		if err == nil {
			t.Fatal("expected error for inverted hours")
		}
	})

	t.Run("malformed clock rejected", func(t *testing.T) {
		err := v.ValidateUpdate(&model.EmployeeUpdate{
			WorkingHours: &model.WorkingHours{Start: "08:0", End: "18:00"},
		})
		if err == nil {
			t.Fatal("expected error for malformed clock")
		}
	})
}

package model

import "time"

// WorkingHours is an inclusive daily window in "HH:mm" 24-hour format.
type WorkingHours struct {
	Start string `json:"start" bson:"start" validate:"required,clock_time"`
	End   string `json:"end" bson:"end" validate:"required,clock_time"`
}

type Employee struct {
	ID           string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone        string       `json:"phone" bson:"phone" validate:"required,e164"`
	ServiceIDs   []string     `json:"service_ids" bson:"service_ids" validate:"required,min=1,max=50,dive,mongodb"`
	WorkingHours WorkingHours `json:"working_hours" bson:"working_hours" validate:"required"`
	DailyLimit   int          `json:"daily_limit" bson:"daily_limit" validate:"required,min=1,max=50"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CanPerform reports whether the employee is qualified for the service.
func (e *Employee) CanPerform(serviceID string) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

type EmployeeUpdate struct {
	Name         string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone        string        `json:"phone,omitempty" validate:"omitempty,e164"`
	ServiceIDs   *[]string     `json:"service_ids,omitempty" validate:"omitempty,min=1,max=50,dive,mongodb"`
	WorkingHours *WorkingHours `json:"working_hours,omitempty"`
	DailyLimit   *int          `json:"daily_limit,omitempty" validate:"omitempty,min=1,max=50"`
}

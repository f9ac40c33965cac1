package model

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Appointment keeps Date and Time as the wire strings ("YYYY-MM-DD",
// "HH:mm") used by the availability resolver. Custom validator tags
// guard the formats at the boundary.
type Appointment struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerName string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	Phone        string    `json:"phone" bson:"phone" validate:"required,e164"`
	ServiceID    string    `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	EmployeeID   string    `json:"employee_id,omitempty" bson:"employee_id,omitempty" validate:"omitempty,mongodb"`
	Date         string    `json:"date" bson:"date" validate:"required,calendar_date"`
	Time         string    `json:"time" bson:"time" validate:"required,clock_time"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed canceled"`
	Notes        string    `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=500"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsActive reports whether the appointment counts against conflicts
// and daily quotas.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

type AppointmentUpdate struct {
	CustomerName string `json:"customer_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,e164"`
	ServiceID    string `json:"service_id,omitempty" validate:"omitempty,mongodb"`
	Date         string `json:"date,omitempty" validate:"omitempty,calendar_date"`
	Time         string `json:"time,omitempty" validate:"omitempty,clock_time"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

package service

import (
	"context"
	"time"

	"bookline/pkg/kafka"
	"bookline/pkg/model"
)

const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"

	eventSource = "appointments"
)

// EventPublisher is the producer surface the service needs. Nil
// publishers disable eventing entirely.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// AppointmentEvent is the wire payload for appointment lifecycle
// topics. PreviousStatus is empty on creation.
type AppointmentEvent struct {
	AppointmentID  string    `json:"appointment_id"`
	CustomerName   string    `json:"customer_name"`
	Phone          string    `json:"phone"`
	ServiceID      string    `json:"service_id"`
	EmployeeID     string    `json:"employee_id,omitempty"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (s *appointmentService) publishEvent(ctx context.Context, eventType string, appt *model.Appointment, previousStatus string) {
	if s.publisher == nil || !s.cfg.EventsEnabled {
		return
	}

	msg := kafka.NewMessage().
		WithKey(appt.ID).
		WithValue(AppointmentEvent{
			AppointmentID:  appt.ID,
			CustomerName:   appt.CustomerName,
			Phone:          appt.Phone,
			ServiceID:      appt.ServiceID,
			EmployeeID:     appt.EmployeeID,
			Date:           appt.Date,
			Time:           appt.Time,
			Status:         appt.Status,
			PreviousStatus: previousStatus,
			OccurredAt:     time.Now().UTC(),
		}).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	// Events are best effort; the write already committed.
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"id", appt.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}

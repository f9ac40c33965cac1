// Package notifier consumes appointment lifecycle events and sends
// customer notices. Delivery is a structured log line; an SMS or email
// gateway plugs in behind Sender without touching the consumer loop.
package notifier

import (
	"context"
	"fmt"

	"bookline/internal/appointments/service"
	"bookline/pkg/kafka"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

// Sender delivers a rendered notice to a customer phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// LogSender writes notices to the service log instead of a gateway.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, phone, text string) error {
	s.log.Info("Notice delivered",
		"phone", phone,
		"text", text,
	)
	return nil
}

type Notifier struct {
	sender Sender
	log    *logger.Logger
}

func NewNotifier(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		log:    log,
	}
}

// HandleMessage is the kafka consumer callback. Unknown event types
// are skipped without error so they never reach the DLQ.
func (n *Notifier) HandleMessage(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	switch eventType {
	case service.EventAppointmentCreated, service.EventAppointmentStatusChanged:
	default:
		n.log.Debug("Skipping event",
			"event_id", msg.GetEventID(),
			"event_type", eventType,
		)
		return nil
	}

	var event service.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("decode %s event %s: %w", eventType, msg.GetEventID(), err)
	}
	if event.AppointmentID == "" || event.Phone == "" {
		return fmt.Errorf("event %s is missing appointment_id or phone", msg.GetEventID())
	}

	text := renderNotice(eventType, &event)
	if text == "" {
		n.log.Debug("No notice for status",
			"appointment_id", event.AppointmentID,
			"status", event.Status,
		)
		return nil
	}

	if err := n.sender.Send(ctx, event.Phone, text); err != nil {
		return fmt.Errorf("send notice for appointment %s: %w", event.AppointmentID, err)
	}

	n.log.Info("Appointment notice sent",
		"appointment_id", event.AppointmentID,
		"event_type", eventType,
		"status", event.Status,
	)
	return nil
}

// renderNotice maps a lifecycle event to customer-facing text. Pending
// transitions other than creation produce no notice.
func renderNotice(eventType string, event *service.AppointmentEvent) string {
	when := event.Date + " at " + event.Time

	if eventType == service.EventAppointmentCreated {
		return fmt.Sprintf("Hi %s, we received your appointment request for %s. We will confirm it shortly.",
			event.CustomerName, when)
	}

	switch event.Status {
	case model.StatusConfirmed:
		return fmt.Sprintf("Hi %s, your appointment on %s is confirmed.",
			event.CustomerName, when)
	case model.StatusCanceled:
		return fmt.Sprintf("Hi %s, your appointment on %s has been canceled.",
			event.CustomerName, when)
	case model.StatusCompleted:
		return fmt.Sprintf("Hi %s, thank you for visiting us on %s. We would love to hear your feedback.",
			event.CustomerName, when)
	}
	return ""
}

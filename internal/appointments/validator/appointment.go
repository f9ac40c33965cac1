package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookline/internal/availability"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}

	return &AppointmentValidator{validate: v}
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, ok := availability.ClockToMinutes(fl.Field().String())
	return ok
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	return availability.ValidDate(fl.Field().String())
}

func (v *AppointmentValidator) Validate(appt *model.Appointment) error {
	return v.translate(v.validate.Struct(appt))
}

func (v *AppointmentValidator) ValidateUpdate(updates *model.AppointmentUpdate) error {
	return v.translate(v.validate.Struct(updates))
}

func (v *AppointmentValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		case "e164":
			message = fmt.Sprintf("%s must be an E.164 phone number", fe.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", fe.Field())
		case "clock_time":
			message = fmt.Sprintf("%s must be HH:mm 24-hour format", fe.Field())
		case "calendar_date":
			message = fmt.Sprintf("%s must be YYYY-MM-DD format", fe.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: message})
	}
	return out
}

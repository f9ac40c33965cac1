package main

import (
	appointmenthandler "bookline/internal/appointments/handler"
	appointmentrepo "bookline/internal/appointments/repository"
	appointmentservice "bookline/internal/appointments/service"
	appointmentvalidator "bookline/internal/appointments/validator"
	availabilityhandler "bookline/internal/availability/handler"
	availabilityservice "bookline/internal/availability/service"
	employeerepo "bookline/internal/employees/repository"
	servicerepo "bookline/internal/services/repository"
	"bookline/pkg/app"
	"bookline/pkg/config"
	"bookline/pkg/kafka"
	kafkaconfig "bookline/pkg/kafka/config"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	var publisher appointmentservice.EventPublisher
	if cfg.EventsEnabled {
		producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.AppointmentEventsTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = producer
		cfg.Log.Info("Appointment events enabled", "topic", cfg.AppointmentEventsTopic)
	}

	cfg.Log.Info("Starting Appointments service")
	appointmentSvc, availabilitySvc := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		appointmenthandler.NewAppointmentHandler(appointmentSvc, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher appointmentservice.EventPublisher) (appointmentservice.AppointmentService, availabilityservice.AvailabilityService) {
	serviceRepo := servicerepo.NewMongoServiceRepository(cfg)
	employeeRepo := employeerepo.NewMongoEmployeeRepository(cfg)
	appointmentRepo := appointmentrepo.NewMongoAppointmentRepository(cfg)

	appointmentSvc := appointmentservice.NewAppointmentService(
		appointmentRepo,
		appointmentrepo.NewConfirmLockRepository(cfg),
		serviceRepo,
		employeeRepo,
		appointmentvalidator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg,
	)

	availabilitySvc := availabilityservice.NewAvailabilityService(
		serviceRepo,
		employeeRepo,
		appointmentRepo,
		cfg,
	)

	cfg.Log.Info("Appointment services initialized", "database", cfg.MongoDatabaseName)
	return appointmentSvc, availabilitySvc
}

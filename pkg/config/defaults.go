package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookline"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// Appointment duration assumed when an appointment references a
	// service record that no longer exists.
	DefaultServiceDurationMin = 60

	DefaultMaxSlotSuggestions = 5

	DefaultDailyLimit = 8
	DefaultWorkStart  = "09:00"
	DefaultWorkEnd    = "17:00"

	DefaultAppointmentEventsTopic = "bookline.appointments.events"
	DefaultAppointmentEventsDLQ   = "bookline.appointments.events.dlq"
	DefaultNotifierGroupID        = "bookline-notifier"
)

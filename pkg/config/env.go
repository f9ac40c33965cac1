package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultServiceDurationMin = "DEFAULT_SERVICE_DURATION_MIN"
	EnvMaxSlotSuggestions        = "MAX_SLOT_SUGGESTIONS"
	EnvDefaultDailyLimit         = "DEFAULT_DAILY_LIMIT"
	EnvDefaultWorkStart          = "DEFAULT_WORK_START"
	EnvDefaultWorkEnd            = "DEFAULT_WORK_END"

	EnvEventsEnabled          = "EVENTS_ENABLED"
	EnvAppointmentEventsTopic = "APPOINTMENT_EVENTS_TOPIC"
	EnvAppointmentEventsDLQ   = "APPOINTMENT_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID        = "NOTIFIER_GROUP_ID"
)

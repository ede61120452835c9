package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvBreakerFailureThreshold = "BREAKER_FAILURE_THRESHOLD"
	EnvBreakerOpenTimeout      = "BREAKER_OPEN_TIMEOUT"
	EnvBreakerHalfOpenProbes   = "BREAKER_HALF_OPEN_PROBES"

	EnvClientTimeout    = "CLIENT_TIMEOUT"
	EnvClientRetries    = "CLIENT_RETRIES"
	EnvClientRetryDelay = "CLIENT_RETRY_DELAY"

	EnvMinBookingDuration = "MIN_BOOKING_DURATION"
	EnvMaxBookingDuration = "MAX_BOOKING_DURATION"

	EnvUsersServiceURL    = "USERS_SERVICE_URL"
	EnvRoomsServiceURL    = "ROOMS_SERVICE_URL"
	EnvBookingsServiceURL = "BOOKINGS_SERVICE_URL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"
	EnvKafkaEnabled = "KAFKA_ENABLED"

	EnvServiceTokenTTL = "SERVICE_TOKEN_TTL"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
)

package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomline"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultBreakerFailureThreshold = 3
	DefaultBreakerOpenTimeout      = 30 * time.Second
	DefaultBreakerHalfOpenProbes   = 1

	DefaultClientTimeout    = 5 * time.Second
	DefaultClientRetries    = 1
	DefaultClientRetryDelay = 100 * time.Millisecond

	DefaultMinBookingDuration = 15 * time.Minute
	DefaultMaxBookingDuration = 8 * time.Hour

	DefaultUsersServiceURL    = "http://users-service:8001"
	DefaultRoomsServiceURL    = "http://rooms-service:8002"
	DefaultBookingsServiceURL = "http://bookings-service:8003"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaTopic = "roomline.booking-events"

	DefaultServiceTokenTTL = 10 * time.Minute

	DefaultCORSAllowedOrigins = "*"

	DefaultPaginationLimit = 100
)

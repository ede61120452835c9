package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"roomline/pkg/client"
	"roomline/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenProbes   int

	ClientTimeout    time.Duration
	ClientRetries    int
	ClientRetryDelay time.Duration

	MinBookingDuration time.Duration
	MaxBookingDuration time.Duration

	UsersServiceURL    string
	RoomsServiceURL    string
	BookingsServiceURL string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	ServiceTokenTTL time.Duration

	CORSAllowedOrigins []string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// Present in local development only; ignored when missing.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		BreakerFailureThreshold: getEnvNum(EnvBreakerFailureThreshold, DefaultBreakerFailureThreshold),
		BreakerOpenTimeout:      getEnvDuration(EnvBreakerOpenTimeout, DefaultBreakerOpenTimeout),
		BreakerHalfOpenProbes:   getEnvNum(EnvBreakerHalfOpenProbes, DefaultBreakerHalfOpenProbes),

		ClientTimeout:    getEnvDuration(EnvClientTimeout, DefaultClientTimeout),
		ClientRetries:    getEnvNum(EnvClientRetries, DefaultClientRetries),
		ClientRetryDelay: getEnvDuration(EnvClientRetryDelay, DefaultClientRetryDelay),

		MinBookingDuration: getEnvDuration(EnvMinBookingDuration, DefaultMinBookingDuration),
		MaxBookingDuration: getEnvDuration(EnvMaxBookingDuration, DefaultMaxBookingDuration),

		UsersServiceURL:    getEnvStr(EnvUsersServiceURL, DefaultUsersServiceURL),
		RoomsServiceURL:    getEnvStr(EnvRoomsServiceURL, DefaultRoomsServiceURL),
		BookingsServiceURL: getEnvStr(EnvBookingsServiceURL, DefaultBookingsServiceURL),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		KafkaBrokers: getEnvList(EnvKafkaBrokers, nil),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		KafkaEnabled: getEnvBool(EnvKafkaEnabled, false),

		ServiceTokenTTL: getEnvDuration(EnvServiceTokenTTL, DefaultServiceTokenTTL),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, []string{DefaultCORSAllowedOrigins}),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}

	if cfg.BreakerFailureThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("BreakerFailureThreshold must be positive, got: %d", cfg.BreakerFailureThreshold))
	}
	if cfg.BreakerOpenTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("BreakerOpenTimeout must be positive, got: %s", cfg.BreakerOpenTimeout))
	}
	if cfg.BreakerHalfOpenProbes <= 0 {
		errs = append(errs, fmt.Sprintf("BreakerHalfOpenProbes must be positive, got: %d", cfg.BreakerHalfOpenProbes))
	}

	if cfg.ClientTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ClientTimeout must be positive, got: %s", cfg.ClientTimeout))
	}
	if cfg.ClientRetries < 0 || cfg.ClientRetries > 1 {
		errs = append(errs, fmt.Sprintf("ClientRetries must be 0 or 1, got: %d", cfg.ClientRetries))
	}
	if cfg.ClientRetryDelay < 0 {
		errs = append(errs, fmt.Sprintf("ClientRetryDelay cannot be negative, got: %s", cfg.ClientRetryDelay))
	}

	if cfg.MinBookingDuration <= 0 {
		errs = append(errs, fmt.Sprintf("MinBookingDuration must be positive, got: %s", cfg.MinBookingDuration))
	}
	if cfg.MaxBookingDuration < cfg.MinBookingDuration {
		errs = append(errs, fmt.Sprintf("MaxBookingDuration (%s) must be >= MinBookingDuration (%s)", cfg.MaxBookingDuration, cfg.MinBookingDuration))
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		errs = append(errs, "KafkaBrokers cannot be empty when KafkaEnabled is true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		errs = append(errs, "CORSAllowedOrigins cannot be empty")
	}
	if cfg.ServiceTokenTTL <= 0 {
		errs = append(errs, fmt.Sprintf("ServiceTokenTTL must be positive, got: %s", cfg.ServiceTokenTTL))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"breaker_failure_threshold", cfg.BreakerFailureThreshold,
		"breaker_open_timeout", cfg.BreakerOpenTimeout,
		"breaker_half_open_probes", cfg.BreakerHalfOpenProbes,
		"client_timeout", cfg.ClientTimeout,
		"client_retries", cfg.ClientRetries,
		"min_booking_duration", cfg.MinBookingDuration,
		"max_booking_duration", cfg.MaxBookingDuration,
		"users_service_url", cfg.UsersServiceURL,
		"rooms_service_url", cfg.RoomsServiceURL,
		"bookings_service_url", cfg.BookingsServiceURL,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_topic", cfg.KafkaTopic,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}

package main

import (
	"roomline/internal/bookings/handler"
	"roomline/internal/bookings/repository"
	"roomline/internal/bookings/service"
	"roomline/internal/bookings/validator"
	"roomline/pkg/app"
	"roomline/pkg/auth"
	"roomline/pkg/breaker"
	"roomline/pkg/client"
	"roomline/pkg/config"
	"roomline/pkg/events"
	"roomline/pkg/health"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	breakers := breaker.NewRegistry(breaker.Settings{
		FailureThreshold:  cfg.BreakerFailureThreshold,
		OpenTimeout:       cfg.BreakerOpenTimeout,
		HalfOpenMaxProbes: cfg.BreakerHalfOpenProbes,
	}, cfg.Log)

	bookingService, publisher := initServices(cfg, breakers)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		health.NewHandler(cfg.Client.Mongo, breakers, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, breakers *breaker.Registry) (service.BookingService, events.Publisher) {
	caller := client.NewCaller(breakers, client.CallerOptions{
		Retries:    cfg.ClientRetries,
		RetryDelay: cfg.ClientRetryDelay,
	}, cfg.Log)

	tokenFn := func() (string, error) {
		return auth.NewServiceToken(cfg.JWTSecret, cfg.ServiceTokenTTL)
	}
	usersClient := client.NewUsersClient(cfg.UsersServiceURL, cfg.ClientTimeout, caller, tokenFn)
	roomsClient := client.NewRoomsClient(cfg.RoomsServiceURL, cfg.ClientTimeout, caller, tokenFn)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEnabled {
		publisher = events.NewPublisher(events.PublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, cfg.Log)
		cfg.Log.Info("Kafka booking events enabled", "topic", cfg.KafkaTopic)
	}

	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.MinBookingDuration, cfg.MaxBookingDuration)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewRoomLockRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		usersClient,
		roomsClient,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, publisher
}

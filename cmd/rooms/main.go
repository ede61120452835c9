package main

import (
	"roomline/internal/rooms/handler"
	"roomline/internal/rooms/repository"
	"roomline/internal/rooms/service"
	"roomline/internal/rooms/validator"
	"roomline/pkg/app"
	"roomline/pkg/auth"
	"roomline/pkg/breaker"
	"roomline/pkg/client"
	"roomline/pkg/config"
	"roomline/pkg/health"
)

const ServiceName = "rooms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Rooms service")

	breakers := breaker.NewRegistry(breaker.Settings{
		FailureThreshold:  cfg.BreakerFailureThreshold,
		OpenTimeout:       cfg.BreakerOpenTimeout,
		HalfOpenMaxProbes: cfg.BreakerHalfOpenProbes,
	}, cfg.Log)

	roomService := initServices(cfg, breakers)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.SetApp(
		handler.NewRoomHandler(roomService, cfg.Log),
		health.NewHandler(cfg.Client.Mongo, breakers, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, breakers *breaker.Registry) service.RoomService {
	caller := client.NewCaller(breakers, client.CallerOptions{
		Retries:    cfg.ClientRetries,
		RetryDelay: cfg.ClientRetryDelay,
	}, cfg.Log)

	tokenFn := func() (string, error) {
		return auth.NewServiceToken(cfg.JWTSecret, cfg.ServiceTokenTTL)
	}
	bookingsClient := client.NewBookingsClient(cfg.BookingsServiceURL, cfg.ClientTimeout, caller, tokenFn)

	roomValidator := validator.NewRoomValidator(cfg.Log)
	roomRepo := repository.NewMongoRoomRepository(cfg)

	roomService := service.NewRoomService(
		roomRepo,
		roomValidator,
		bookingsClient,
		cfg,
	)

	cfg.Log.Info("Room service initialized", "database", cfg.MongoDatabaseName)
	return roomService
}

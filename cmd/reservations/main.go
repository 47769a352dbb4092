package main

import (
	"context"

	"seaview/internal/reservations/handler"
	"seaview/internal/reservations/notifier"
	"seaview/internal/reservations/repository"
	"seaview/internal/reservations/service"
	"seaview/internal/reservations/validator"
	"seaview/pkg/app"
	"seaview/pkg/client"
	"seaview/pkg/config"
	kafka_config "seaview/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	reservationService, dispatcher := initServices(cfg)
	defer dispatcher.Close()

	identity := client.NewIdentityClient(cfg.IdentityURL)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log), identity)
	serverApp.SetSweeper(func(ctx context.Context) {
		service.RunHoldSweeper(ctx, reservationService, cfg)
	})
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ReservationService, notifier.Dispatcher) {
	dispatcher := initDispatcher(cfg)

	reservationValidator := validator.NewReservationValidator(cfg.Log, cfg.MaxGuestCount)
	reservationStore := repository.NewMongoReservationStore(cfg)
	lockRepo := repository.NewRoomLockRepository(cfg)
	catalog := client.NewRoomCatalogClient(cfg.RoomCatalogURL)

	reservationService := service.NewReservationService(
		reservationStore,
		lockRepo,
		catalog,
		reservationValidator,
		dispatcher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, dispatcher
}

// initDispatcher falls back to a no-op dispatcher when Kafka is not
// configured; bookings must not depend on the event pipeline.
func initDispatcher(cfg *config.Config) notifier.Dispatcher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka configuration invalid, reservation events disabled", "error", err)
		return notifier.NopDispatcher{}
	}

	dispatcher, err := notifier.NewKafkaDispatcher(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, reservation events disabled", "error", err)
		return notifier.NopDispatcher{}
	}

	cfg.Log.Info("Kafka dispatcher initialized", "topic", kafkaCfg.EventsTopic)
	return dispatcher
}

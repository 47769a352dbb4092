package notifier

import (
	"context"
	"time"

	"seaview/pkg/kafka"
	kafka_config "seaview/pkg/kafka/config"
	kafka_middleware "seaview/pkg/kafka/middleware"
	"seaview/pkg/logger"
	"seaview/pkg/model"
)

const (
	EventConfirmed   = "reservation.confirmed"
	EventHeld        = "reservation.held"
	EventCancelled   = "reservation.cancelled"
	EventModified    = "reservation.modified"
	EventHoldExpired = "reservation.hold_expired"
)

// Dispatcher publishes reservation lifecycle events for downstream consumers
// (mailer, admin feed). Publishing is strictly post-commit and fire-and-forget:
// a failure is logged and dead-lettered, never surfaced to the booking caller.
type Dispatcher interface {
	Notify(event string, reservation *model.Reservation)
	Close() error
}

type kafkaDispatcher struct {
	producer *kafka.Producer
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaDispatcher(cfg *kafka_config.Config, log *logger.Logger) (Dispatcher, error) {
	producer, err := kafka.NewProducer(cfg, cfg.EventsTopic, cfg.DLQTopic)
	if err != nil {
		return nil, err
	}

	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}

	return &kafkaDispatcher{
		producer: producer,
		timeout:  cfg.PublishTimeout,
		log:      log,
	}, nil
}

// Notify runs detached from the request so lock hold time and response
// latency never depend on the broker.
func (d *kafkaDispatcher) Notify(event string, reservation *model.Reservation) {
	msg, err := kafka.NewMessage().
		WithKey(reservation.RoomID).
		WithEventType(event).
		WithSource("seaview-reservations").
		WithCorrelationID(reservation.ID).
		WithValue(reservation).
		Build()
	if err != nil {
		d.log.Error("Failed to build notification event",
			"event", event,
			"reservation_id", reservation.ID,
			"error", err,
		)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.producer.Publish(ctx, msg); err != nil {
			d.log.Error("Failed to publish notification event",
				"event", event,
				"reservation_id", reservation.ID,
				"room_id", reservation.RoomID,
				"error", err,
			)
		}
	}()
}

func (d *kafkaDispatcher) Close() error {
	return d.producer.Close()
}

// NopDispatcher drops events; used when Kafka is not configured and in tests.
type NopDispatcher struct{}

func (NopDispatcher) Notify(string, *model.Reservation) {}

func (NopDispatcher) Close() error { return nil }

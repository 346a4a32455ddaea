package broadcast

import (
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type failureCounter interface {
	DeliveryFailed()
}

// Broadcaster hands events to seat connections. A failing seat never stops
// delivery to the others.
type Broadcaster struct {
	logger  *slog.Logger
	metrics failureCounter
}

func New(logger *slog.Logger, metrics failureCounter) *Broadcaster {
	return &Broadcaster{
		logger:  logger.With("component", "broadcaster"),
		metrics: metrics,
	}
}

// Deliver - sends every delivery and returns how many failed.
func (that *Broadcaster) Deliver(deliveries []entity.Delivery) int {
	log := that.logger.With("method", "Deliver")

	failed := 0
	for _, delivery := range deliveries {
		if delivery.Conn == nil {
			continue
		}

		if err := delivery.Conn.Send(delivery.Event); err != nil {
			failed++
			that.metrics.DeliveryFailed()
			log.Warn("failed to deliver event",
				"playerID", delivery.PlayerID,
				"event", delivery.Event.Type,
				"error", err,
			)
		}
	}

	return failed
}

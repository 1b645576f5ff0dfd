package report

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/petshop-commerce/internal/core/events"
)

// invalidatingEvents change what a dashboard summary would show.
var invalidatingEvents = []string{
	events.EventTypeOrderCreated,
	events.EventTypeOrderStatusChanged,
	events.EventTypePaymentCompleted,
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type EventHandler struct {
	reports Invalidator
	logger  *slog.Logger
}

func NewEventHandler(reports Invalidator, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		reports: reports,
		logger:  logger,
	}
}

func (h *EventHandler) HandleOrderChange(ctx context.Context, event events.Event) error {
	if err := h.reports.Invalidate(ctx); err != nil {
		h.logger.Error("failed to purge summary cache",
			"error", err,
			"event_type", event.EventType(),
			"event_id", event.EventID())
		return err
	}

	h.logger.Debug("summary cache purged", "event_type", event.EventType(), "event_id", event.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.SubscribeAll(h.HandleOrderChange, invalidatingEvents...)

	h.logger.Info("report event handlers registered", "handlers", invalidatingEvents)
}

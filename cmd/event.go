package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/core/events"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish sample domain events through the bus and, when enabled, to Kafka`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample domain event",
	Long:      `Publish a sample domain event to the event bus for testing and debugging. With kafka.enabled the event is also written to the configured topic.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: events.AllTypes,
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventOrderNumber string

func sampleEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeOrderCreated:
		return events.NewOrderCreatedEvent(1, eventOrderNumber, "customer@example.com", 84.00, 8.00, 0, ""), nil
	case events.EventTypeOrderStatusChanged:
		return events.NewOrderStatusChangedEvent(1, eventOrderNumber, "paid", "shipped"), nil
	case events.EventTypePaymentCompleted:
		return events.NewPaymentCompletedEvent(1, eventOrderNumber, "Touch n Go", "cli-test"), nil
	case events.EventTypePaymentFailed:
		return events.NewPaymentFailedEvent(1, eventOrderNumber, "cli test"), nil
	case events.EventTypeVoucherRedeemed:
		orderID := int64(1)
		return events.NewVoucherRedeemedEvent(1, "WELCOME10", "customer@example.com", &orderID), nil
	}
	return nil, fmt.Errorf("unknown event type %q; expected one of %v", eventType, events.AllTypes)
}

func publishTestEvent(eventType string) {
	logger := logger.LoggerWrapper()

	event, err := sampleEvent(eventType)
	if err != nil {
		logger.Error("cannot build sample event", "error", err)
		return
	}

	eventBus := events.NewEventBus(logger)
	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		logger.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	if cfg, err := loadConfig(configPath); err == nil && cfg.Kafka.Enabled {
		forwarder := events.NewKafkaForwarder(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), logger)
		forwarder.Register(eventBus)
		defer forwarder.Close()
	}

	logger.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	ctx := context.Background()
	if err := eventBus.Publish(ctx, event); err != nil {
		logger.Error("failed to publish event", "error", err)
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := eventBus.Wait(waitCtx); err != nil {
		logger.Warn("event handlers did not finish", "error", err)
		return
	}
	logger.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventOrderNumber, "order-number", "PS-TEST-0001", "order number carried by the sample event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

package worker

import (
	"context"
	"fmt"

	"suiteship/internal/broker"
	"suiteship/internal/models"
	"suiteship/internal/store"
	"suiteship/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes shipment events and notifies the suite owner.
// Delivery is a structured log line for now; the consumer loop, dedupe and
// metrics are the part that matters.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, st *store.Store) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnShipmentCreated(w.handleShipmentCreated)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleShipmentCreated(ctx context.Context, event *models.ShipmentCreatedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event dedupe: %w", err)
	}
	if processed {
		w.logger.Debug("Skipping already-processed event",
			zap.String("event_id", event.EventID))
		return nil
	}

	client, err := w.store.GetClientByID(ctx, event.ClientID)
	if err != nil {
		return fmt.Errorf("failed to resolve client for notification: %w", err)
	}

	w.logger.Info("Shipment notification sent",
		zap.Int64("shipment_id", event.ShipmentID),
		zap.String("suite_id", client.SuiteID),
		zap.String("email", client.Email),
		zap.String("total_cost", event.TotalCost.String()))
	util.NotificationsSentTotal.Inc()

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

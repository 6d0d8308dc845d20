package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"suiteship/internal/models"
	"suiteship/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishUserRegistered publishes UserRegistered event
func (ep *EventPublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	key := fmt.Sprintf("user-%d", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishClientCreated publishes ClientCreated event
func (ep *EventPublisher) PublishClientCreated(ctx context.Context, event *models.ClientCreatedEvent) error {
	key := fmt.Sprintf("client-%d", event.ClientID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishShipmentCreated publishes ShipmentCreated event
func (ep *EventPublisher) PublishShipmentCreated(ctx context.Context, event *models.ShipmentCreatedEvent) error {
	key := fmt.Sprintf("shipment-%d", event.ShipmentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onShipmentCreated func(context.Context, *models.ShipmentCreatedEvent) error
	logger            *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnShipmentCreated registers a handler for ShipmentCreated events
func (eh *EventHandler) OnShipmentCreated(handler func(context.Context, *models.ShipmentCreatedEvent) error) {
	eh.onShipmentCreated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeShipmentCreated:
		if eh.onShipmentCreated != nil {
			var event models.ShipmentCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ShipmentCreated event: %w", err)
			}
			return eh.onShipmentCreated(ctx, &event)
		}

	default:
		// Other event types are informational only for now.
	}

	return nil
}

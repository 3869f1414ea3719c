package service

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// MessageWriter is the slice of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventPublisher publishes the application events, one writer per topic.
// Publishing is best-effort: a commercial transaction must never fail because
// the bus is down, so errors are logged and the event is dropped.
type EventPublisher struct {
	orders        MessageWriter
	notifications MessageWriter
	inventory     MessageWriter
	recipes       MessageWriter
}

func NewEventPublisher(orders, notifications, inventory, recipes MessageWriter) *EventPublisher {
	return &EventPublisher{
		orders:        orders,
		notifications: notifications,
		inventory:     inventory,
		recipes:       recipes,
	}
}

// OrderCreated emits one orders.created event, keyed by order id so all
// events for an order land on the same partition.
func (p *EventPublisher) OrderCreated(ctx context.Context, event entity.OrderCreatedEvent) {
	p.publish(ctx, p.orders, "orders.created", strconv.Itoa(event.OrderID), event)
}

func (p *EventPublisher) OrderStatusChanged(ctx context.Context, event entity.OrderStatusChangedEvent) {
	p.publish(ctx, p.notifications, "notifications.email", strconv.Itoa(event.OrderID), event)
}

func (p *EventPublisher) InventoryUpdated(ctx context.Context, event entity.InventoryUpdateEvent) {
	p.publish(ctx, p.inventory, "inventory.updates", strconv.Itoa(event.ProductID), event)
}

func (p *EventPublisher) RecipeGenerated(ctx context.Context, event entity.RecipeGeneratedEvent) {
	p.publish(ctx, p.recipes, "recipes.generated", strconv.Itoa(event.RecipeID), event)
}

func (p *EventPublisher) publish(ctx context.Context, w MessageWriter, topic, key string, event any) {
	if w == nil {
		logger.Warn().Msgf("Kafka is not configured, skipping '%s' event", topic)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling '%s' event", topic)
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		logger.Warn().Err(err).Msgf("Kafka unavailable, skipping '%s' event", topic)
	}
}

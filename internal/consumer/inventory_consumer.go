package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

// MessageReader is the slice of *kafka.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type ProductStore interface {
	GetByID(ctx context.Context, id int) (*entity.Product, error)
	UpdateStock(ctx context.Context, id, count int) error
}

type PopularityRanker interface {
	IncrementProductPopularity(ctx context.Context, productID int) error
}

// InventoryConsumer applies order effects to inventory and popularity after
// the fact. Delivery is at-least-once: a Redis applied-events ledger keyed by
// order id turns redelivered events into no-ops. Business-rule violations
// (missing product, negative stock) are logged and acknowledged so that
// permanently-bad data never causes a redelivery storm; only transport and
// decode failures leave the message uncommitted.
type InventoryConsumer struct {
	reader   MessageReader
	products ProductStore
	trending PopularityRanker
	rdb      *redis.Client
}

func NewInventoryConsumer(reader MessageReader, products ProductStore, trending PopularityRanker, rdb *redis.Client) *InventoryConsumer {
	return &InventoryConsumer{
		reader:   reader,
		products: products,
		trending: trending,
		rdb:      rdb,
	}
}

// Run consumes orders.created until the context is cancelled.
func (c *InventoryConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("Error reading orders.created message")
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			// Left uncommitted; the broker redelivers it.
			log.Error().Err(err).Msg("Error processing orders.created message")
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error().Err(err).Msg("Error committing orders.created offset")
		}
	}
}

func (c *InventoryConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event entity.OrderCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode orders.created: %w", err)
	}

	applied, err := c.markApplied(ctx, event.OrderID)
	if err != nil {
		// Ledger unavailable: favor liveness and process anyway.
		log.Warn().Err(err).Msgf("Applied-events ledger unreachable for order %d", event.OrderID)
	} else if !applied {
		log.Info().Msgf("Duplicate orders.created for order %d, skipping", event.OrderID)
		return nil
	}

	log.Info().Msgf("Received orders.created for order %d, updating inventory", event.OrderID)

	for _, item := range event.Items {
		// Popularity counts every ordered item regardless of stock outcome.
		if err := c.trending.IncrementProductPopularity(ctx, item.ProductID); err != nil {
			log.Error().Err(err).Msgf("Error updating popularity for product %d", item.ProductID)
		}

		product, err := c.products.GetByID(ctx, item.ProductID)
		if err != nil {
			log.Error().Err(err).Msgf("Product %d not found in inventory update", item.ProductID)
			continue
		}

		newStock := product.InventoryCount - item.Quantity
		if newStock < 0 {
			// Expected under concurrent ordering, not a hard error.
			log.Warn().Msgf("Stock went negative for product %d, clamping to zero", product.ID)
			newStock = 0
		}

		if err := c.products.UpdateStock(ctx, product.ID, newStock); err != nil {
			log.Error().Err(err).Msgf("Error updating stock for product %d", product.ID)
			continue
		}

		log.Info().Msgf("Updated stock for product %d: %d -> %d", product.ID, product.InventoryCount, newStock)
	}

	return nil
}

// markApplied records the order in the ledger. It returns false when the
// order was already applied by an earlier delivery.
func (c *InventoryConsumer) markApplied(ctx context.Context, orderID int) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("orders:applied:%d", orderID), 1, 0).Result()
}

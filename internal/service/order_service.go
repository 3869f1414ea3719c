package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

// OrderStore is the order persistence surface the service depends on.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id int) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id int, status entity.OrderStatus) error
	ListByUser(ctx context.Context, userID int) ([]*entity.Order, error)
	ListByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error)
	ListPaginated(ctx context.Context, page, size int) ([]*entity.Order, error)
	DashboardStats(ctx context.Context) (*entity.DashboardStats, error)
}

// ProductStore is the slice of the product repository used during order
// validation and delivery-time stock adjustment.
type ProductStore interface {
	GetByID(ctx context.Context, id int) (*entity.Product, error)
	UpdateStock(ctx context.Context, id, count int) error
}

// OrderService owns order placement and status transitions.
type OrderService struct {
	orders   OrderStore
	products ProductStore
	events   *EventPublisher
}

func NewOrderService(orders OrderStore, products ProductStore, events *EventPublisher) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		events:   events,
	}
}

// PlaceOrder validates the cart against current stock, persists the order and
// its line items atomically, and emits one orders.created event on success.
//
// The stock check is advisory: two concurrent orders can both pass it and
// oversubscribe inventory. There is no row locking here; the asynchronous
// reconciler settles inventory after the fact.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int, cart *entity.CartRequest) (*entity.Order, error) {
	order := &entity.Order{
		UserID:          userID,
		DeliveryAddress: cart.DeliveryAddress,
		Status:          entity.StatusPending,
	}

	total := decimal.Zero
	for _, line := range cart.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for product %d", line.ProductID)
		}

		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			logger.Error().Err(err).Msgf("Error looking up product %d", line.ProductID)
			return nil, err
		}

		if line.Quantity > product.InventoryCount {
			logger.Warn().Msgf("Product %d out of stock (requested %d, have %d)",
				product.ID, line.Quantity, product.InventoryCount)
			return nil, fmt.Errorf("product %q: %w", product.Name, entity.ErrInsufficientStock)
		}

		// Capture the current price into the line item; later catalog price
		// changes never affect this order.
		order.Items = append(order.Items, entity.OrderItem{
			ProductID:       product.ID,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	order.TotalPrice = total

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	event := entity.OrderCreatedEvent{
		OrderID: created.ID,
		UserID:  created.UserID,
	}
	for _, item := range created.Items {
		event.Items = append(event.Items, entity.OrderItemEvent{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	s.events.OrderCreated(ctx, event)

	return created, nil
}

// UpdateOrderStatus overwrites the order status. Transition legality is not
// enforced. Entering DELIVERED additionally decrements stock for every line
// item, clamped at zero, and emits one inventory.updates event per item.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, newStatus entity.OrderStatus) (*entity.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status

	if newStatus == entity.StatusDelivered && oldStatus != entity.StatusDelivered {
		s.applyDeliveryDecrement(ctx, order)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		logger.Error().Err(err).Msgf("Error updating status for order %d", orderID)
		return nil, err
	}
	order.Status = newStatus

	s.events.OrderStatusChanged(ctx, entity.OrderStatusChangedEvent{
		OrderID:   orderID,
		OldStatus: string(oldStatus),
		Status:    string(newStatus),
	})

	return order, nil
}

func (s *OrderService) applyDeliveryDecrement(ctx context.Context, order *entity.Order) {
	for _, item := range order.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			logger.Error().Err(err).Msgf("Product %d not found during delivery of order %d", item.ProductID, order.ID)
			continue
		}

		oldCount := product.InventoryCount
		newCount := oldCount - item.Quantity
		if newCount < 0 {
			logger.Warn().Msgf("Stock went negative for product %d, clamping to zero", product.ID)
			newCount = 0
		}

		if err := s.products.UpdateStock(ctx, product.ID, newCount); err != nil {
			logger.Error().Err(err).Msgf("Error updating stock for product %d", product.ID)
			continue
		}

		s.events.InventoryUpdated(ctx, entity.InventoryUpdateEvent{
			ProductID:   product.ID,
			ProductName: product.Name,
			OldCount:    oldCount,
			NewCount:    newCount,
		})
	}
}

func (s *OrderService) GetOrdersByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) GetOrdersByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	return s.orders.ListByStatus(ctx, status)
}

func (s *OrderService) GetOrdersPaginated(ctx context.Context, page, size int) ([]*entity.Order, error) {
	return s.orders.ListPaginated(ctx, page, size)
}

func (s *OrderService) GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	return s.orders.DashboardStats(ctx)
}

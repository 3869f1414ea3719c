package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// CreateOrder persists the order and its line items in a single transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	order.CreatedAt = time.Now()

	orderQuery := `INSERT INTO orders (user_id, delivery_address, status, total_price, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, order.UserID, order.DeliveryAddress, order.Status, order.TotalPrice, order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Insert line items with batch
	itemQuery := `INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase) VALUES `

	var values []any
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?),"
		values = append(values, orderID, item.ProductID, item.Quantity, item.PriceAtPurchase)
	}

	// Remove the trailing comma
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	orderQuery := `SELECT id, user_id, delivery_address, status, total_price, created_at FROM orders WHERE id = ?`

	order := &entity.Order{}
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(&order.ID, &order.UserID, &order.DeliveryAddress,
		&order.Status, &order.TotalPrice, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status entity.OrderStatus) error {
	query := `UPDATE orders SET status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	query := `SELECT id, user_id, delivery_address, status, total_price, created_at FROM orders
		WHERE user_id = ? ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	query := `SELECT id, user_id, delivery_address, status, total_price, created_at FROM orders
		WHERE status = ? ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, status)
}

// ListPaginated returns one page of orders, most recent first. Pages are
// zero-indexed.
func (r *OrderRepository) ListPaginated(ctx context.Context, page, size int) ([]*entity.Order, error) {
	query := `SELECT id, user_id, delivery_address, status, total_price, created_at FROM orders
		ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryOrders(ctx, query, size, page*size)
}

// DashboardStats aggregates order counts and revenue over delivered orders.
func (r *OrderRepository) DashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	stats := &entity.DashboardStats{}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&stats.TotalOrders)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE status = ?`, entity.StatusPending).Scan(&stats.PendingOrders)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE status = ?`, entity.StatusDelivered).Scan(&stats.Revenue)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order := &entity.Order{}
		err := rows.Scan(&order.ID, &order.UserID, &order.DeliveryAddress, &order.Status, &order.TotalPrice, &order.CreatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	itemQuery := `SELECT id, order_id, product_id, quantity, price_at_purchase FROM order_items WHERE order_id = ?`
	rows, err := r.db.QueryContext(ctx, itemQuery, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item := entity.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

package repository

import (
	"context"
	"database/sql"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db}
}

func (r *CartRepository) ListByUser(ctx context.Context, userID int) ([]*entity.CartItem, error) {
	query := `SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id = ?`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.CartItem
	for rows.Next() {
		item := &entity.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Add inserts a cart line or bumps the quantity when the product is already
// in the cart.
func (r *CartRepository) Add(ctx context.Context, userID, productID, quantity int) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`
	_, err := r.db.ExecContext(ctx, query, userID, productID, quantity)
	return err
}

func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID, quantity int) error {
	query := `UPDATE cart_items SET quantity = ? WHERE user_id = ? AND product_id = ?`
	_, err := r.db.ExecContext(ctx, query, quantity, userID, productID)
	return err
}

func (r *CartRepository) Remove(ctx context.Context, userID, productID int) error {
	query := `DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID, productID)
	return err
}

func (r *CartRepository) Clear(ctx context.Context, userID int) error {
	query := `DELETE FROM cart_items WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

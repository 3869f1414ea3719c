package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

const productColumns = `id, name, description, price, unit, category, inventory_count, weight_in_grams, image_url, is_active`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Unit, &p.Category,
		&p.InventoryCount, &p.WeightInGrams, &p.ImageURL, &p.IsActive)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, entity.ErrNotFound)
	}
	return p, err
}

// GetByIDs fetches a batch of products. The result order is whatever the
// database returns, not the order of ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + placeholders + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

// SearchByName performs a case-insensitive substring search over product names.
func (r *ProductRepository) SearchByName(ctx context.Context, keyword string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE LOWER(name) LIKE CONCAT('%', LOWER(?), '%')`
	rows, err := r.db.QueryContext(ctx, query, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = 1`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = ?`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (name, description, price, unit, category, inventory_count, weight_in_grams, image_url, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Description, product.Price, product.Unit,
		product.Category, product.InventoryCount, product.WeightInGrams, product.ImageURL, product.IsActive)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	product.ID = int(id)
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, description = ?, price = ?, unit = ?, category = ?,
		inventory_count = ?, weight_in_grams = ?, image_url = ?, is_active = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, product.Name, product.Description, product.Price, product.Unit,
		product.Category, product.InventoryCount, product.WeightInGrams, product.ImageURL, product.IsActive, product.ID)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateStock persists a new quantity-on-hand for a product.
func (r *ProductRepository) UpdateStock(ctx context.Context, id, count int) error {
	query := `UPDATE products SET inventory_count = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, count, id)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM products WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func collectProducts(rows *sql.Rows) ([]*entity.Product, error) {
	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

func newOrderRepoFixture(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(db), mock
}

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCreateOrder(t *testing.T) {
	t.Run("order and items commit together", func(t *testing.T) {
		repo, mock := newOrderRepoFixture(t)

		order := &entity.Order{
			UserID:          9,
			DeliveryAddress: "42 Main St",
			Status:          entity.StatusPending,
			TotalPrice:      money("260.00"),
			Items: []entity.OrderItem{
				{ProductID: 1, Quantity: 2, PriceAtPurchase: money("25.00")},
				{ProductID: 2, Quantity: 3, PriceAtPurchase: money("70.00")},
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WithArgs(9, "42 Main St", entity.StatusPending, order.TotalPrice, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(int64(5), 1, 2, money("25.00"), int64(5), 2, 3, money("70.00")).
			WillReturnResult(sqlmock.NewResult(1, 2))
		mock.ExpectCommit()

		saved, err := repo.CreateOrder(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, 5, saved.ID)
		assert.Equal(t, 5, saved.Items[0].OrderID)
		assert.Equal(t, 5, saved.Items[1].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("item insert failure rolls everything back", func(t *testing.T) {
		repo, mock := newOrderRepoFixture(t)

		order := &entity.Order{
			UserID:     9,
			Status:     entity.StatusPending,
			TotalPrice: money("25.00"),
			Items:      []entity.OrderItem{{ProductID: 1, Quantity: 1, PriceAtPurchase: money("25.00")}},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnError(errors.New("duplicate entry"))
		mock.ExpectRollback()

		_, err := repo.CreateOrder(context.Background(), order)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrderByID(t *testing.T) {
	t.Run("loads order with items", func(t *testing.T) {
		repo, mock := newOrderRepoFixture(t)

		created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "delivery_address", "status", "total_price", "created_at"}).
				AddRow(5, 9, "42 Main St", "PENDING", "260.00", created))
		mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id").
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price_at_purchase"}).
				AddRow(1, 5, 1, 2, "25.00").
				AddRow(2, 5, 2, 3, "70.00"))

		order, err := repo.GetOrderByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPending, order.Status)
		assert.True(t, order.TotalPrice.Equal(money("260.00")))
		require.Len(t, order.Items, 2)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		repo, mock := newOrderRepoFixture(t)

		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
			WithArgs(404).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "delivery_address", "status", "total_price", "created_at"}))

		_, err := repo.GetOrderByID(context.Background(), 404)
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestListPaginated(t *testing.T) {
	repo, mock := newOrderRepoFixture(t)

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM orders\\s+ORDER BY created_at DESC LIMIT \\? OFFSET \\?").
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "delivery_address", "status", "total_price", "created_at"}).
			AddRow(5, 9, "42 Main St", "PENDING", "25.00", created))
	mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price_at_purchase"}))

	orders, err := repo.ListPaginated(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 5, orders[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDashboardStats(t *testing.T) {
	repo, mock := newOrderRepoFixture(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders$").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders WHERE status").
		WithArgs(entity.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(total_price\\), 0\\) FROM orders WHERE status").
		WithArgs(entity.StatusDelivered).
		WillReturnRows(sqlmock.NewRows([]string{"revenue"}).AddRow("310.50"))

	stats, err := repo.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalOrders)
	assert.Equal(t, 4, stats.PendingOrders)
	assert.True(t, stats.Revenue.Equal(money("310.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

type fakeBatchStore struct {
	products map[int]*entity.Product
}

// GetByIDs returns products in reversed order on purpose, like an IN query
// with no ORDER BY might. Callers must not rely on it.
func (f *fakeBatchStore) GetByIDs(_ context.Context, ids []int) ([]*entity.Product, error) {
	var out []*entity.Product
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := f.products[ids[i]]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTrendingFixture(t *testing.T) (*TrendingService, *fakeBatchStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := &fakeBatchStore{products: map[int]*entity.Product{
		1: {ID: 1, Name: "Fresh Tomatoes"},
		2: {ID: 2, Name: "Paneer"},
		3: {ID: 3, Name: "Basmati Rice"},
	}}
	return NewTrendingService(rdb, store), store
}

func TestTrendingRanking(t *testing.T) {
	svc, _ := newTrendingFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.IncrementProductPopularity(ctx, 1))
	require.NoError(t, svc.IncrementProductPopularity(ctx, 1))
	require.NoError(t, svc.IncrementProductPopularity(ctx, 2))

	products, err := svc.GetTrendingProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Fresh Tomatoes", products[0].Name)
	assert.Equal(t, "Paneer", products[1].Name)
}

func TestTrendingLimit(t *testing.T) {
	svc, _ := newTrendingFixture(t)
	ctx := context.Background()

	for id, hits := range map[int]int{1: 3, 2: 2, 3: 1} {
		for i := 0; i < hits; i++ {
			require.NoError(t, svc.IncrementProductPopularity(ctx, id))
		}
	}

	products, err := svc.GetTrendingProducts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, 2, products[1].ID)
}

func TestTrendingEmpty(t *testing.T) {
	svc, _ := newTrendingFixture(t)

	products, err := svc.GetTrendingProducts(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestTrendingSkipsUnknownProducts(t *testing.T) {
	svc, store := newTrendingFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.IncrementProductPopularity(ctx, 1))
	require.NoError(t, svc.IncrementProductPopularity(ctx, 99))
	require.NoError(t, svc.IncrementProductPopularity(ctx, 99))
	delete(store.products, 99)

	products, err := svc.GetTrendingProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, products[0].ID)
}

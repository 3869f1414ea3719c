package service

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

const trendingKey = "trending_products"

// ProductBatchStore fetches products in bulk for ranking hydration.
type ProductBatchStore interface {
	GetByIDs(ctx context.Context, ids []int) ([]*entity.Product, error)
}

// TrendingService keeps a monotonic per-product popularity score in a Redis
// sorted set. No decay, no expiry.
type TrendingService struct {
	rdb      *redis.Client
	products ProductBatchStore
}

func NewTrendingService(rdb *redis.Client, products ProductBatchStore) *TrendingService {
	return &TrendingService{
		rdb:      rdb,
		products: products,
	}
}

// IncrementProductPopularity bumps the product's score by one.
func (s *TrendingService) IncrementProductPopularity(ctx context.Context, productID int) error {
	return s.rdb.ZIncrBy(ctx, trendingKey, 1, strconv.Itoa(productID)).Err()
}

// GetTrendingProducts returns up to limit products ordered by descending
// popularity. The batch fetch does not preserve order, so the result is
// re-sorted to match the sorted-set ranking before returning.
func (s *TrendingService) GetTrendingProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	members, err := s.rdb.ZRevRange(ctx, trendingKey, 0, int64(limit-1)).Result()
	if err != nil {
		logger.Error().Err(err).Msg("Error reading trending ranking")
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	var ids []int
	for _, member := range members {
		id, err := strconv.Atoi(member)
		if err != nil {
			logger.Warn().Msgf("Skipping malformed trending member %q", member)
			continue
		}
		ids = append(ids, id)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	sorted := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			sorted = append(sorted, p)
		}
	}
	return sorted, nil
}

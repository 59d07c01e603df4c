// Package pricing maintains the restaurant average price. After every restaurant
// write the aggregate is recomputed from the full collection and stamped onto every
// record, so no record ever carries a stale value after a successful write.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hospitality/metrics"
	"hospitality/models"
	"hospitality/rdx"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

// CacheKey holds the last computed average in Redis.
const CacheKey = "restaurants:average-price"

// Source is the slice of the restaurant store the aggregator needs.
type Source interface {
	Find(ctx context.Context, filter bson.M) ([]models.Restaurant, error)
	SetAveragePrice(ctx context.Context, avg float64) error
}

// Average is the arithmetic mean of prices, 0 for an empty slice. No rounding.
func Average(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}

type Aggregator struct {
	src   Source
	cache *rdx.Cache
	log   zerolog.Logger

	// mu serializes Refresh so the last writer always reads after every earlier insert.
	mu sync.Mutex
}

func NewAggregator(src Source, cache *rdx.Cache, log zerolog.Logger) *Aggregator {
	return &Aggregator{src: src, cache: cache, log: log.With().Str("component", "pricing").Logger()}
}

// RecomputeAveragePrice reads every restaurant and returns the mean price.
func (a *Aggregator) RecomputeAveragePrice(ctx context.Context) (float64, error) {
	restaurants, err := a.src.Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("fetch restaurants: %w", err)
	}
	prices := make([]float64, len(restaurants))
	for i, r := range restaurants {
		prices[i] = r.Price
	}
	return Average(prices), nil
}

// Refresh recomputes the average and writes it back to every restaurant and the cache.
func (a *Aggregator) Refresh(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	avg, err := a.RecomputeAveragePrice(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.src.SetAveragePrice(ctx, avg); err != nil {
		return 0, err
	}
	if err := a.cache.SetJSON(ctx, CacheKey, avg); err != nil {
		a.log.Warn().Err(err).Msg("cache average price")
	}
	metrics.AveragePrice.Set(avg)
	a.log.Info().Float64("average_price", avg).Msg("average price recomputed")
	return avg, nil
}

// Current serves the cached average, falling back to a read-only recompute.
func (a *Aggregator) Current(ctx context.Context) (float64, error) {
	var avg float64
	err := a.cache.GetJSON(ctx, CacheKey, &avg)
	if err == nil {
		return avg, nil
	}
	if !errors.Is(err, rdx.ErrMiss) {
		a.log.Warn().Err(err).Msg("read cached average price")
	}
	return a.RecomputeAveragePrice(ctx)
}

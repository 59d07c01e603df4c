package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hospitality/metrics"
	"hospitality/models"
	"hospitality/rdx"
	"hospitality/store/storetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type memorySource struct {
	*storetest.Memory[models.Restaurant]
}

func newMemorySource() *memorySource {
	return &memorySource{storetest.NewMemory(func(r models.Restaurant) string { return r.ID })}
}

func (m *memorySource) SetAveragePrice(_ context.Context, avg float64) error {
	m.Update(func(r models.Restaurant) models.Restaurant {
		r.AveragePrice = avg
		return r
	})
	return nil
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 100.0, Average([]float64{100}))
	assert.Equal(t, 200.0, Average([]float64{100, 300}))
	assert.InDelta(t, 10.0/3.0, Average([]float64{1, 2, 7}), 1e-12)
}

func TestRefreshStampsEveryRestaurant(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource()
	agg := NewAggregator(src, nil, zerolog.Nop())

	avg, err := agg.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	require.NoError(t, src.Insert(ctx, models.Restaurant{ID: "a", Price: 100}))
	avg, err = agg.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, avg)

	require.NoError(t, src.Insert(ctx, models.Restaurant{ID: "b", Price: 300}))
	avg, err = agg.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200.0, avg)
	assert.Equal(t, 200.0, testutil.ToFloat64(metrics.AveragePrice))

	all, err := src.Find(ctx, bson.M{})
	require.NoError(t, err)
	for _, r := range all {
		assert.Equal(t, 200.0, r.AveragePrice, r.ID)
	}
}

func TestRefreshPropagatesStorageError(t *testing.T) {
	src := newMemorySource()
	src.Err = errors.New("connection refused")

	_, err := NewAggregator(src, nil, zerolog.Nop()).Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
}

func TestConcurrentRefreshConverges(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource()
	agg := NewAggregator(src, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i, price := range []float64{10, 20, 30, 40, 50, 60, 70, 80} {
		wg.Add(1)
		go func(id string, p float64) {
			defer wg.Done()
			_ = src.Insert(ctx, models.Restaurant{ID: id, Price: p})
			_, _ = agg.Refresh(ctx)
		}(string(rune('a'+i)), price)
	}
	wg.Wait()

	all, err := src.Find(ctx, bson.M{})
	require.NoError(t, err)
	for _, r := range all {
		assert.Equal(t, 45.0, r.AveragePrice)
	}
}

func TestCurrentUsesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	src := newMemorySource()
	require.NoError(t, src.Insert(ctx, models.Restaurant{ID: "a", Price: 80}))
	agg := NewAggregator(src, rdx.New(client, time.Minute), zerolog.Nop())

	_, err := agg.Refresh(ctx)
	require.NoError(t, err)

	// A write that bypassed Refresh is not visible until the cache expires.
	require.NoError(t, src.Insert(ctx, models.Restaurant{ID: "b", Price: 120}))
	avg, err := agg.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80.0, avg)

	mr.FastForward(2 * time.Minute)
	avg, err = agg.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, avg)
}

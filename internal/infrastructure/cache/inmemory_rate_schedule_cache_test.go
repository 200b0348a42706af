package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ukTestSchedule(t *testing.T) *tax.RateSchedule {
	t.Helper()
	schedule, err := tax.NewRateSchedule(tax.JurisdictionUK, valueobject.GBP,
		map[tax.RateClass]decimal.Decimal{
			tax.RateClassStandard: decimal.NewFromInt(20),
			tax.RateClassReduced:  decimal.NewFromInt(5),
		})
	require.NoError(t, err)
	return schedule
}

func TestInMemoryRateScheduleCache_SetGet(t *testing.T) {
	c := NewInMemoryRateScheduleCache()
	defer c.Close()
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		schedule, err := c.Get(ctx, tax.JurisdictionUK)
		assert.NoError(t, err)
		assert.Nil(t, schedule)
	})

	t.Run("set then get returns the schedule", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, ukTestSchedule(t), 0))

		schedule, err := c.Get(ctx, tax.JurisdictionUK)
		require.NoError(t, err)
		require.NotNil(t, schedule)
		assert.Equal(t, tax.JurisdictionUK, schedule.Jurisdiction)
	})

	t.Run("nil schedule is a no-op", func(t *testing.T) {
		assert.NoError(t, c.Set(ctx, nil, 0))
	})
}

func TestInMemoryRateScheduleCache_Expiry(t *testing.T) {
	c := NewInMemoryRateScheduleCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ukTestSchedule(t), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	schedule, err := c.Get(ctx, tax.JurisdictionUK)
	assert.NoError(t, err)
	assert.Nil(t, schedule, "expired entry must read as a miss")
	assert.Equal(t, 0, c.Count())
}

func TestInMemoryRateScheduleCache_Delete(t *testing.T) {
	c := NewInMemoryRateScheduleCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ukTestSchedule(t), 0))
	require.NoError(t, c.Delete(ctx, tax.JurisdictionUK))

	schedule, err := c.Get(ctx, tax.JurisdictionUK)
	assert.NoError(t, err)
	assert.Nil(t, schedule)
}

func TestInMemoryRateScheduleCache_Stats(t *testing.T) {
	c := NewInMemoryRateScheduleCache()
	defer c.Close()
	ctx := context.Background()

	_, _ = c.Get(ctx, tax.JurisdictionUK) // miss
	require.NoError(t, c.Set(ctx, ukTestSchedule(t), 0))
	_, _ = c.Get(ctx, tax.JurisdictionUK) // hit

	hits, misses := c.GetStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryRateScheduleCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryRateScheduleCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestScheduleCacheWireFormat_RoundTrip(t *testing.T) {
	schedule := ukTestSchedule(t)

	restored, err := fromDomain(schedule).toDomain()
	require.NoError(t, err)

	assert.Equal(t, schedule.Jurisdiction, restored.Jurisdiction)
	assert.Equal(t, schedule.Currency, restored.Currency)
	rate, err := restored.Rate(tax.RateClassStandard)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(20)))
}

func TestCachedScheduleToDomain_RejectsBadRate(t *testing.T) {
	bad := cachedSchedule{
		Jurisdiction: "GB",
		Currency:     "GBP",
		Rates:        map[string]string{"standard": "twenty", "reduced": "5"},
	}
	_, err := bad.toDomain()
	assert.Error(t, err)
}

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	t.Run("requires every tier", func(t *testing.T) {
		_, err := NewRegistry([]Definition{
			{Tier: TierFree, Limits: Limits{MaxUsers: 1, MaxRecords: 1, MaxCustomers: 1}},
		})

		assert.Error(t, err)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		_, err := NewRegistry([]Definition{
			{Tier: Tier("platinum"), Limits: Limits{MaxUsers: 1, MaxRecords: 1, MaxCustomers: 1}},
		})

		assert.Error(t, err)
	})

	t.Run("rejects zero limit", func(t *testing.T) {
		_, err := NewRegistry([]Definition{
			{Tier: TierFree, Limits: Limits{MaxUsers: 0, MaxRecords: 1, MaxCustomers: 1}},
		})

		assert.Error(t, err)
	})

	t.Run("rejects duplicate tier", func(t *testing.T) {
		def := Definition{Tier: TierFree, Limits: Limits{MaxUsers: 1, MaxRecords: 1, MaxCustomers: 1}}
		_, err := NewRegistry([]Definition{def, def})

		assert.Error(t, err)
	})
}

func TestRegistry_CheckRecordLimit(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("at the ceiling is blocked", func(t *testing.T) {
		result := registry.CheckRecordLimit(TierFree, 50)

		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
		assert.Equal(t, int64(50), result.Limit)
		assert.False(t, result.Fallback)
	})

	t.Run("one below the ceiling is allowed", func(t *testing.T) {
		result := registry.CheckRecordLimit(TierFree, 49)

		assert.True(t, result.Allowed)
		assert.Equal(t, int64(1), result.Remaining)
	})

	t.Run("above the ceiling reports zero remaining", func(t *testing.T) {
		result := registry.CheckRecordLimit(TierFree, 60)

		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("unlimited tier always allows", func(t *testing.T) {
		result := registry.CheckRecordLimit(TierEnterprise, 1_000_000)

		assert.True(t, result.Allowed)
		assert.True(t, result.Unlimited)
		assert.Equal(t, Unlimited, result.Limit)
	})

	t.Run("unknown tier falls back to lowest limits", func(t *testing.T) {
		result := registry.CheckRecordLimit(Tier("platinum"), 50)

		assert.False(t, result.Allowed)
		assert.True(t, result.Fallback)
		assert.Equal(t, TierFree, result.Tier)
		assert.Equal(t, int64(50), result.Limit)
	})
}

func TestRegistry_CheckUserLimit(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("enforces user ceiling", func(t *testing.T) {
		result := registry.CheckUserLimit(TierStarter, 5)

		assert.False(t, result.Allowed)
		assert.Equal(t, LimitKindUsers, result.Kind)
	})

	t.Run("allows below ceiling", func(t *testing.T) {
		result := registry.CheckUserLimit(TierStarter, 3)

		assert.True(t, result.Allowed)
		assert.Equal(t, int64(2), result.Remaining)
	})
}

func TestRegistry_CheckCustomerLimit(t *testing.T) {
	registry := DefaultRegistry()

	result := registry.CheckCustomerLimit(TierPro, 2499)

	assert.True(t, result.Allowed)
	assert.Equal(t, int64(1), result.Remaining)
}

func TestRegistry_HasFeature(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("enabled feature", func(t *testing.T) {
		assert.True(t, registry.HasFeature(TierPro, "multi_currency"))
	})

	t.Run("feature not at this tier", func(t *testing.T) {
		assert.False(t, registry.HasFeature(TierFree, "multi_currency"))
	})

	t.Run("unknown feature fails closed", func(t *testing.T) {
		assert.False(t, registry.HasFeature(TierEnterprise, "teleportation"))
	})

	t.Run("unknown tier fails closed", func(t *testing.T) {
		assert.False(t, registry.HasFeature(Tier("platinum"), "invoicing"))
	})
}

func TestTier_Ordering(t *testing.T) {
	require.True(t, TierEnterprise.AtLeast(TierPro))
	require.True(t, TierPro.AtLeast(TierStarter))
	require.True(t, TierStarter.AtLeast(TierFree))
	assert.False(t, TierFree.AtLeast(TierStarter))
	assert.True(t, TierFree.AtLeast(TierFree))
}

func TestTier_IsValid(t *testing.T) {
	for _, tier := range AllTiers() {
		assert.True(t, tier.IsValid(), tier.String())
	}
	assert.False(t, Tier("platinum").IsValid())
}

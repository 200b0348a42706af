package config

import (
	"testing"
	"time"

	"github.com/bizsuite/backend/internal/domain/plan"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bizsuite-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "bizsuite", cfg.Database.DBName)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Cache.ScheduleTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 365, cfg.Compliance.RetentionReviewDays)

	require.Len(t, cfg.Tax.Jurisdictions, 1)
	assert.Equal(t, "GB", cfg.Tax.Jurisdictions[0].Code)
	assert.Equal(t, "20", cfg.Tax.Jurisdictions[0].StandardRate)

	require.Len(t, cfg.Plan.Countries, 4)
	assert.Equal(t, "UK-", cfg.Plan.Countries[0].Prefix)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BIZSUITE_DATABASE_HOST", "db.internal")
	t.Setenv("BIZSUITE_DATABASE_PORT", "5433")
	t.Setenv("BIZSUITE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base(t)
		cfg.Database.MaxIdleConns = 100
		cfg.Database.MaxOpenConns = 10
		assert.Error(t, cfg.validate())
	})

	t.Run("unknown cache backend is rejected", func(t *testing.T) {
		cfg := base(t)
		cfg.Cache.Backend = "memcached"
		assert.Error(t, cfg.validate())
	})

	t.Run("jurisdiction without rates is rejected", func(t *testing.T) {
		cfg := base(t)
		cfg.Tax.Jurisdictions = []JurisdictionConfig{{Code: "GB", Currency: "GBP"}}
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		cfg := base(t)
		cfg.App.Env = "production"
		cfg.Database.Password = ""
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "disable"
		assert.Error(t, cfg.validate())

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "p@ss:word/1",
		DBName:   "bizsuite",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss:word/1", "password must be escaped")
}

func TestTaxConfig_Schedules(t *testing.T) {
	t.Run("builds schedules from config", func(t *testing.T) {
		cfg := TaxConfig{Jurisdictions: []JurisdictionConfig{
			{Code: "GB", Currency: "GBP", StandardRate: "20", ReducedRate: "5"},
		}}

		schedules, err := cfg.Schedules()
		require.NoError(t, err)
		require.Len(t, schedules, 1)

		assert.Equal(t, tax.JurisdictionUK, schedules[0].Jurisdiction)
		assert.Equal(t, valueobject.GBP, schedules[0].Currency)

		rate, err := schedules[0].Rate(tax.RateClassStandard)
		require.NoError(t, err)
		assert.Equal(t, "20", rate.String())
	})

	t.Run("rejects malformed rates", func(t *testing.T) {
		cfg := TaxConfig{Jurisdictions: []JurisdictionConfig{
			{Code: "GB", Currency: "GBP", StandardRate: "twenty", ReducedRate: "5"},
		}}
		_, err := cfg.Schedules()
		assert.Error(t, err)
	})
}

func TestPlanConfig_Builders(t *testing.T) {
	t.Run("guard from configured countries", func(t *testing.T) {
		cfg := PlanConfig{Countries: []CountryPolicyConfig{
			{Country: "UK", Prefix: "UK-", Currency: "GBP"},
		}}

		guard, err := cfg.NamespaceGuard()
		require.NoError(t, err)

		policy, ok := guard.Policy("UK")
		require.True(t, ok)
		assert.Equal(t, valueobject.GBP, policy.Currency)
	})

	t.Run("empty tiers fall back to stock definitions", func(t *testing.T) {
		registry, err := PlanConfig{}.TierRegistry()
		require.NoError(t, err)

		result := registry.CheckRecordLimit(plan.TierFree, 49)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(50), result.Limit)
	})

	t.Run("configured tiers must cover every tier", func(t *testing.T) {
		cfg := PlanConfig{Tiers: []TierConfig{
			{Name: "free", MaxUsers: 1, MaxRecords: 10, MaxCustomers: 5},
		}}
		_, err := cfg.TierRegistry()
		assert.Error(t, err)
	})
}

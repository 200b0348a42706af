package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetentionPolicy(t *testing.T) {
	tenantID := uuid.New()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("schedules first review from frequency", func(t *testing.T) {
		policy, err := NewRetentionPolicy(tenantID, "invoices", 2555, BasisLegalObligation, 90, now)
		require.NoError(t, err)

		assert.Equal(t, 90, policy.ReviewFrequencyDays)
		assert.Equal(t, now.AddDate(0, 0, 90), policy.NextReviewAt)
	})

	t.Run("defaults review frequency to a year", func(t *testing.T) {
		policy, err := NewRetentionPolicy(tenantID, "invoices", 2555, BasisLegalObligation, 0, now)
		require.NoError(t, err)

		assert.Equal(t, DefaultReviewFrequencyDays, policy.ReviewFrequencyDays)
		assert.Equal(t, now.AddDate(0, 0, 365), policy.NextReviewAt)
	})

	t.Run("rejects non-positive retention", func(t *testing.T) {
		_, err := NewRetentionPolicy(tenantID, "invoices", 0, BasisLegalObligation, 90, now)
		assert.Error(t, err)

		_, err = NewRetentionPolicy(tenantID, "invoices", -30, BasisLegalObligation, 90, now)
		assert.Error(t, err)
	})

	t.Run("rejects unknown lawful basis", func(t *testing.T) {
		_, err := NewRetentionPolicy(tenantID, "invoices", 365, LawfulBasis("because"), 90, now)
		assert.Error(t, err)
	})
}

func TestRetentionPolicy_ReviewCycle(t *testing.T) {
	tenantID := uuid.New()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	policy, err := NewRetentionPolicy(tenantID, "consent_records", 730, BasisConsent, 180, now)
	require.NoError(t, err)

	t.Run("not due before the scheduled date", func(t *testing.T) {
		assert.False(t, policy.IsReviewDue(now))
		assert.False(t, policy.IsReviewDue(now.AddDate(0, 0, 179)))
	})

	t.Run("due on and after the scheduled date", func(t *testing.T) {
		assert.True(t, policy.IsReviewDue(now.AddDate(0, 0, 180)))
		assert.True(t, policy.IsReviewDue(now.AddDate(0, 0, 400)))
	})

	t.Run("marking reviewed reschedules", func(t *testing.T) {
		reviewedAt := now.AddDate(0, 0, 200)
		policy.MarkReviewed(reviewedAt)

		assert.Equal(t, reviewedAt.AddDate(0, 0, 180), policy.NextReviewAt)
		assert.False(t, policy.IsReviewDue(reviewedAt))
	})

	t.Run("updating retention reschedules", func(t *testing.T) {
		updatedAt := now.AddDate(1, 0, 0)
		require.NoError(t, policy.UpdateRetention(365, updatedAt))

		assert.Equal(t, 365, policy.RetentionDays)
		assert.Equal(t, updatedAt.AddDate(0, 0, 180), policy.NextReviewAt)
	})
}

func TestRetentionPolicy_ExpiresAt(t *testing.T) {
	policy, err := NewRetentionPolicy(uuid.New(), "audit_trail", 90, BasisLegalObligation, 0, time.Now())
	require.NoError(t, err)

	createdAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 14, 12, 0, 0, 0, time.UTC), policy.ExpiresAt(createdAt))
}

func TestNewRetentionLogEntry(t *testing.T) {
	policyID := uuid.New()
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("records the action", func(t *testing.T) {
		entry, err := NewRetentionLogEntry(policyID, "purge", "removed 42 expired records", at)
		require.NoError(t, err)

		assert.Equal(t, policyID, entry.PolicyID)
		assert.Equal(t, "purge", entry.Action)
		assert.Equal(t, at, entry.RecordedAt)
		assert.NotEqual(t, uuid.Nil, entry.ID)
	})

	t.Run("rejects empty action", func(t *testing.T) {
		_, err := NewRetentionLogEntry(policyID, "", "", at)
		assert.Error(t, err)
	})

	t.Run("rejects nil policy", func(t *testing.T) {
		_, err := NewRetentionLogEntry(uuid.Nil, "purge", "", at)
		assert.Error(t, err)
	})
}

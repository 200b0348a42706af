package compliance

import (
	"errors"
	"testing"
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsentRecord(t *testing.T) {
	tenantID := uuid.New()
	givenAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("creates active record", func(t *testing.T) {
		record, err := NewConsentRecord(tenantID, "subject-1", "marketing_emails", BasisConsent, givenAt)
		require.NoError(t, err)

		assert.True(t, record.ConsentGiven)
		assert.True(t, record.IsActive())
		assert.Nil(t, record.WithdrawnAt)
		assert.Equal(t, givenAt, record.GivenAt)
		assert.NotEqual(t, uuid.Nil, record.ID)
	})

	t.Run("accepts every lawful basis", func(t *testing.T) {
		for _, basis := range AllLawfulBases() {
			_, err := NewConsentRecord(tenantID, "subject-1", "analytics", basis, givenAt)
			assert.NoError(t, err, "basis %s", basis)
		}
	})

	t.Run("rejects unknown lawful basis", func(t *testing.T) {
		_, err := NewConsentRecord(tenantID, "subject-1", "analytics", LawfulBasis("curiosity"), givenAt)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_LAWFUL_BASIS", domainErr.Code)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := NewConsentRecord(tenantID, "", "analytics", BasisConsent, givenAt)
		assert.Error(t, err)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewConsentRecord(uuid.Nil, "subject-1", "analytics", BasisConsent, givenAt)
		assert.Error(t, err)
	})
}

func TestConsentRecord_Withdraw(t *testing.T) {
	tenantID := uuid.New()
	givenAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	newRecord := func(t *testing.T) *ConsentRecord {
		record, err := NewConsentRecord(tenantID, "subject-1", "marketing_emails", BasisConsent, givenAt)
		require.NoError(t, err)
		return record
	}

	t.Run("deactivates the record", func(t *testing.T) {
		record := newRecord(t)
		withdrawnAt := givenAt.AddDate(0, 1, 0)

		err := record.Withdraw(withdrawnAt, "no longer interested")
		require.NoError(t, err)

		assert.False(t, record.IsActive())
		require.NotNil(t, record.WithdrawnAt)
		assert.Equal(t, withdrawnAt, *record.WithdrawnAt)
		assert.Equal(t, "no longer interested", record.WithdrawalReason)
	})

	t.Run("is one-way", func(t *testing.T) {
		record := newRecord(t)
		require.NoError(t, record.Withdraw(givenAt.AddDate(0, 1, 0), ""))

		err := record.Withdraw(givenAt.AddDate(0, 2, 0), "again")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "CONSENT_ALREADY_WITHDRAWN", domainErr.Code)
		assert.Equal(t, shared.KindInvariant, domainErr.Kind)
	})

	t.Run("cannot predate the consent", func(t *testing.T) {
		record := newRecord(t)
		err := record.Withdraw(givenAt.Add(-time.Hour), "")
		require.Error(t, err)
		assert.True(t, record.IsActive())
	})
}

package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessSeverity(t *testing.T) {
	tests := []struct {
		name     string
		input    BreachInput
		expected Assessment
	}{
		{
			name:     "sensitive data type forces high",
			input:    BreachInput{DataTypesAffected: []string{"health"}, SubjectsAffected: 5, BreachType: BreachAvailability},
			expected: Assessment{Severity: SeverityHigh, RiskToRights: RiskLikely, NotificationRequired: true},
		},
		{
			name:     "over one thousand subjects forces high",
			input:    BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 1001, BreachType: BreachIntegrity},
			expected: Assessment{Severity: SeverityHigh, RiskToRights: RiskLikely, NotificationRequired: true},
		},
		{
			name:     "exactly one thousand subjects is not the mass rule",
			input:    BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 1000, BreachType: BreachIntegrity},
			expected: Assessment{Severity: SeverityMedium, RiskToRights: RiskPossible, NotificationRequired: true},
		},
		{
			name:     "over one hundred subjects notifies at medium",
			input:    BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 101, BreachType: BreachIntegrity},
			expected: Assessment{Severity: SeverityMedium, RiskToRights: RiskPossible, NotificationRequired: true},
		},
		{
			name:     "confidentiality with subjects is medium without notification",
			input:    BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 12, BreachType: BreachConfidentiality},
			expected: Assessment{Severity: SeverityMedium, RiskToRights: RiskPossible, NotificationRequired: false},
		},
		{
			name:     "availability with few subjects falls through to low",
			input:    BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 3, BreachType: BreachAvailability},
			expected: Assessment{Severity: SeverityLow, RiskToRights: RiskUnlikely, NotificationRequired: false},
		},
		{
			name:     "empty report floors to low even for confidentiality",
			input:    BreachInput{DataTypesAffected: nil, SubjectsAffected: 0, BreachType: BreachConfidentiality},
			expected: Assessment{Severity: SeverityLow, RiskToRights: RiskUnlikely, NotificationRequired: false},
		},
		{
			name:     "sensitive type with zero subjects still escapes the floor",
			input:    BreachInput{DataTypesAffected: []string{"biometric"}, SubjectsAffected: 0, BreachType: BreachAvailability},
			expected: Assessment{Severity: SeverityHigh, RiskToRights: RiskLikely, NotificationRequired: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AssessSeverity(tt.input))
		})
	}
}

func TestIsSensitiveDataType(t *testing.T) {
	for _, dt := range []string{"financial", "health", "criminal", "biometric", "genetic"} {
		assert.True(t, IsSensitiveDataType(dt), dt)
	}
	assert.False(t, IsSensitiveDataType("contact_details"))
	assert.False(t, IsSensitiveDataType("Health"), "matching is case sensitive")
}

func TestNewDataBreach(t *testing.T) {
	tenantID := uuid.New()
	occurredAt := time.Date(2024, 7, 1, 3, 0, 0, 0, time.UTC)
	discoveredAt := occurredAt.Add(6 * time.Hour)

	t.Run("derives the assessment", func(t *testing.T) {
		breach, err := NewDataBreach(tenantID, "backup tape lost in transit", BreachConfidentiality,
			BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 40},
			occurredAt, discoveredAt, nil)
		require.NoError(t, err)

		assert.Equal(t, SeverityMedium, breach.Severity)
		assert.Equal(t, RiskPossible, breach.RiskToRights)
		assert.False(t, breach.NotificationRequired)
		assert.False(t, breach.SeverityOverridden)
	})

	t.Run("operator overrides replace derived values", func(t *testing.T) {
		severity := SeverityHigh
		notify := true
		breach, err := NewDataBreach(tenantID, "backup tape lost in transit", BreachConfidentiality,
			BreachInput{DataTypesAffected: []string{"contact_details"}, SubjectsAffected: 40},
			occurredAt, discoveredAt,
			&AssessmentOverride{Severity: &severity, NotificationRequired: &notify})
		require.NoError(t, err)

		assert.Equal(t, SeverityHigh, breach.Severity)
		assert.True(t, breach.SeverityOverridden)
		assert.True(t, breach.NotificationRequired)
		assert.Equal(t, RiskPossible, breach.RiskToRights, "unset override keeps derived risk")
	})

	t.Run("rejects invalid override values", func(t *testing.T) {
		severity := Severity("catastrophic")
		_, err := NewDataBreach(tenantID, "desc", BreachIntegrity,
			BreachInput{SubjectsAffected: 1},
			occurredAt, discoveredAt, &AssessmentOverride{Severity: &severity})
		assert.Error(t, err)
	})

	t.Run("rejects unknown breach type", func(t *testing.T) {
		_, err := NewDataBreach(tenantID, "desc", BreachType("ransomware"),
			BreachInput{SubjectsAffected: 1}, occurredAt, discoveredAt, nil)
		assert.Error(t, err)
	})

	t.Run("rejects negative subject count", func(t *testing.T) {
		_, err := NewDataBreach(tenantID, "desc", BreachIntegrity,
			BreachInput{SubjectsAffected: -1}, occurredAt, discoveredAt, nil)
		assert.Error(t, err)
	})

	t.Run("rejects discovery before occurrence", func(t *testing.T) {
		_, err := NewDataBreach(tenantID, "desc", BreachIntegrity,
			BreachInput{SubjectsAffected: 1}, occurredAt, occurredAt.Add(-time.Hour), nil)
		assert.Error(t, err)
	})
}

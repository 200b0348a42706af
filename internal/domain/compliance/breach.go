package compliance

import (
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BreachType classifies how the data was compromised
type BreachType string

const (
	BreachConfidentiality BreachType = "confidentiality"
	BreachIntegrity       BreachType = "integrity"
	BreachAvailability    BreachType = "availability"
)

// IsValid returns true if the breach type is one of the fixed enumeration
func (b BreachType) IsValid() bool {
	switch b {
	case BreachConfidentiality, BreachIntegrity, BreachAvailability:
		return true
	}
	return false
}

// Severity is the assessed seriousness of a breach
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid returns true if the severity is a known level
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Risk is the assessed risk to the rights and freedoms of data subjects
type Risk string

const (
	RiskUnlikely Risk = "unlikely"
	RiskPossible Risk = "possible"
	RiskLikely   Risk = "likely"
)

// IsValid returns true if the risk is a known level
func (r Risk) IsValid() bool {
	switch r {
	case RiskUnlikely, RiskPossible, RiskLikely:
		return true
	}
	return false
}

// sensitiveDataTypes are the special-category data types that force a
// high-severity assessment regardless of subject count.
var sensitiveDataTypes = map[string]bool{
	"financial": true,
	"health":    true,
	"criminal":  true,
	"biometric": true,
	"genetic":   true,
}

// IsSensitiveDataType reports whether a data type is in the special
// category set.
func IsSensitiveDataType(dataType string) bool {
	return sensitiveDataTypes[dataType]
}

// BreachInput is the raw report a breach assessment runs over
type BreachInput struct {
	DataTypesAffected []string
	SubjectsAffected  int64
	BreachType        BreachType
}

// Assessment is the derived severity outcome for a breach
type Assessment struct {
	Severity             Severity
	RiskToRights         Risk
	NotificationRequired bool
}

// severityRule is one row of the assessment decision table
type severityRule struct {
	name    string
	applies func(in BreachInput) bool
	outcome Assessment
}

// severityRules is the ordered decision table; the first matching row wins.
// The empty-report floor is NOT part of this table: it is a terminal
// override applied after the table, see AssessSeverity.
var severityRules = []severityRule{
	{
		name: "mass_or_sensitive",
		applies: func(in BreachInput) bool {
			if in.SubjectsAffected > 1000 {
				return true
			}
			for _, dt := range in.DataTypesAffected {
				if IsSensitiveDataType(dt) {
					return true
				}
			}
			return false
		},
		outcome: Assessment{Severity: SeverityHigh, RiskToRights: RiskLikely, NotificationRequired: true},
	},
	{
		name:    "large_subject_count",
		applies: func(in BreachInput) bool { return in.SubjectsAffected > 100 },
		outcome: Assessment{Severity: SeverityMedium, RiskToRights: RiskPossible, NotificationRequired: true},
	},
	{
		name: "confidentiality_with_subjects",
		applies: func(in BreachInput) bool {
			return in.BreachType == BreachConfidentiality && in.SubjectsAffected > 0
		},
		outcome: Assessment{Severity: SeverityMedium, RiskToRights: RiskPossible, NotificationRequired: false},
	},
}

// defaultAssessment is the fall-through outcome when no rule matches
var defaultAssessment = Assessment{Severity: SeverityLow, RiskToRights: RiskUnlikely, NotificationRequired: false}

// AssessSeverity derives a breach's severity, risk to rights, and whether
// the supervisory authority must be notified.
//
// The table rows run first-match-wins. An empty report (no data types AND
// zero subjects) is then applied as a terminal override forcing the low
// floor, whatever the table produced. This mirrors the documented
// assessment procedure, which computes defaults in sequence and overwrites
// them at the end; precedence when breachType alone is set with no subject
// count is under product review, so the override stays last and absolute.
func AssessSeverity(in BreachInput) Assessment {
	assessment := defaultAssessment
	for _, rule := range severityRules {
		if rule.applies(in) {
			assessment = rule.outcome
			break
		}
	}

	if len(in.DataTypesAffected) == 0 && in.SubjectsAffected == 0 {
		return defaultAssessment
	}
	return assessment
}

// AssessmentOverride carries operator-supplied values that replace the
// derived assessment at insert time. Nil fields keep the derived value.
type AssessmentOverride struct {
	Severity             *Severity
	RiskToRights         *Risk
	NotificationRequired *bool
}

// DataBreach records a personal-data breach and its assessment
type DataBreach struct {
	shared.BaseEntity
	TenantID          uuid.UUID
	Description       string
	BreachType        BreachType
	DataTypesAffected []string
	SubjectsAffected  int64
	OccurredAt        time.Time
	DiscoveredAt      time.Time

	Severity             Severity
	RiskToRights         Risk
	NotificationRequired bool
	// SeverityOverridden marks that an operator replaced the derived
	// severity; the derived value then was only a suggestion.
	SeverityOverridden bool
}

// NewDataBreach records a breach, deriving the assessment and applying any
// operator overrides on top.
func NewDataBreach(tenantID uuid.UUID, description string, breachType BreachType, input BreachInput, occurredAt, discoveredAt time.Time, override *AssessmentOverride) (*DataBreach, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewValidationError("INVALID_BREACH", "Breach description cannot be empty")
	}
	if !breachType.IsValid() {
		return nil, shared.NewValidationError("INVALID_BREACH_TYPE", "Unknown breach type %q", string(breachType))
	}
	if input.SubjectsAffected < 0 {
		return nil, shared.NewValidationError("INVALID_SUBJECT_COUNT", "Affected subject count cannot be negative")
	}
	if discoveredAt.Before(occurredAt) {
		return nil, shared.NewValidationError("INVALID_DISCOVERY_TIME", "Discovery cannot predate the breach")
	}
	input.BreachType = breachType

	assessment := AssessSeverity(input)
	breach := &DataBreach{
		BaseEntity:           shared.NewBaseEntity(),
		TenantID:             tenantID,
		Description:          description,
		BreachType:           breachType,
		DataTypesAffected:    input.DataTypesAffected,
		SubjectsAffected:     input.SubjectsAffected,
		OccurredAt:           occurredAt,
		DiscoveredAt:         discoveredAt,
		Severity:             assessment.Severity,
		RiskToRights:         assessment.RiskToRights,
		NotificationRequired: assessment.NotificationRequired,
	}

	if override != nil {
		if override.Severity != nil {
			if !override.Severity.IsValid() {
				return nil, shared.NewValidationError("INVALID_SEVERITY", "Unknown severity %q", string(*override.Severity))
			}
			breach.Severity = *override.Severity
			breach.SeverityOverridden = true
		}
		if override.RiskToRights != nil {
			if !override.RiskToRights.IsValid() {
				return nil, shared.NewValidationError("INVALID_RISK", "Unknown risk %q", string(*override.RiskToRights))
			}
			breach.RiskToRights = *override.RiskToRights
		}
		if override.NotificationRequired != nil {
			breach.NotificationRequired = *override.NotificationRequired
		}
	}

	return breach, nil
}

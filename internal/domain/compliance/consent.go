package compliance

import (
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LawfulBasis is a legal justification for processing personal data,
// per UK GDPR Article 6.
type LawfulBasis string

const (
	BasisConsent             LawfulBasis = "consent"
	BasisContract            LawfulBasis = "contract"
	BasisLegalObligation     LawfulBasis = "legal_obligation"
	BasisVitalInterests      LawfulBasis = "vital_interests"
	BasisPublicTask          LawfulBasis = "public_task"
	BasisLegitimateInterests LawfulBasis = "legitimate_interests"
)

// IsValid returns true if the lawful basis is one of the fixed enumeration
func (b LawfulBasis) IsValid() bool {
	switch b {
	case BasisConsent, BasisContract, BasisLegalObligation,
		BasisVitalInterests, BasisPublicTask, BasisLegitimateInterests:
		return true
	}
	return false
}

// String returns the string representation
func (b LawfulBasis) String() string {
	return string(b)
}

// AllLawfulBases returns every valid lawful basis
func AllLawfulBases() []LawfulBasis {
	return []LawfulBasis{
		BasisConsent, BasisContract, BasisLegalObligation,
		BasisVitalInterests, BasisPublicTask, BasisLegitimateInterests,
	}
}

// ConsentRecord captures one grant of consent by a data subject. Withdrawal
// is one-way: a withdrawn record is immutable history, and re-consent
// requires a new record.
type ConsentRecord struct {
	shared.BaseEntity
	TenantID         uuid.UUID
	SubjectID        string
	ConsentType      string
	LawfulBasis      LawfulBasis
	ConsentGiven     bool
	GivenAt          time.Time
	WithdrawnAt      *time.Time
	WithdrawalReason string
}

// NewConsentRecord records consent given by a data subject at the given time
func NewConsentRecord(tenantID uuid.UUID, subjectID, consentType string, basis LawfulBasis, givenAt time.Time) (*ConsentRecord, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if subjectID == "" {
		return nil, shared.NewValidationError("INVALID_SUBJECT", "Data subject ID cannot be empty")
	}
	if consentType == "" {
		return nil, shared.NewValidationError("INVALID_CONSENT_TYPE", "Consent type cannot be empty")
	}
	if !basis.IsValid() {
		return nil, shared.NewValidationError("INVALID_LAWFUL_BASIS", "Unknown lawful basis %q", basis.String())
	}

	return &ConsentRecord{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		SubjectID:    subjectID,
		ConsentType:  consentType,
		LawfulBasis:  basis,
		ConsentGiven: true,
		GivenAt:      givenAt,
	}, nil
}

// IsActive is the derived consent state: given and not withdrawn.
// Never stored; always recomputed from the underlying fields.
func (c *ConsentRecord) IsActive() bool {
	return c.ConsentGiven && c.WithdrawnAt == nil
}

// Withdraw records withdrawal of consent. This is a one-way transition:
// withdrawing twice is an error, and the record cannot be re-activated by
// mutation. Create a new record if the subject consents again.
func (c *ConsentRecord) Withdraw(at time.Time, reason string) error {
	if c.WithdrawnAt != nil {
		return shared.NewInvariantViolation("CONSENT_ALREADY_WITHDRAWN",
			"Consent for subject %s was already withdrawn", c.SubjectID)
	}
	if at.Before(c.GivenAt) {
		return shared.NewValidationError("INVALID_WITHDRAWAL_TIME", "Withdrawal cannot predate the consent")
	}
	c.WithdrawnAt = &at
	c.WithdrawalReason = reason
	c.UpdatedAt = time.Now()
	return nil
}

package compliance

import (
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultReviewFrequencyDays applies when a policy does not set its own
// review cadence.
const DefaultReviewFrequencyDays = 365

// RetentionPolicy governs how long one category of records is kept and how
// often the policy itself is reviewed.
type RetentionPolicy struct {
	shared.BaseEntity
	TenantID            uuid.UUID
	Category            string
	RetentionDays       int
	LawfulBasis         LawfulBasis
	ReviewFrequencyDays int
	NextReviewAt        time.Time
}

// NewRetentionPolicy creates a policy and schedules its first review.
// A non-positive review frequency takes the 365-day default.
func NewRetentionPolicy(tenantID uuid.UUID, category string, retentionDays int, basis LawfulBasis, reviewFrequencyDays int, now time.Time) (*RetentionPolicy, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if category == "" {
		return nil, shared.NewValidationError("INVALID_CATEGORY", "Retention category cannot be empty")
	}
	if retentionDays <= 0 {
		return nil, shared.NewValidationError("INVALID_RETENTION_PERIOD", "Retention period must be positive")
	}
	if !basis.IsValid() {
		return nil, shared.NewValidationError("INVALID_LAWFUL_BASIS", "Unknown lawful basis %q", basis.String())
	}
	if reviewFrequencyDays <= 0 {
		reviewFrequencyDays = DefaultReviewFrequencyDays
	}

	return &RetentionPolicy{
		BaseEntity:          shared.NewBaseEntity(),
		TenantID:            tenantID,
		Category:            category,
		RetentionDays:       retentionDays,
		LawfulBasis:         basis,
		ReviewFrequencyDays: reviewFrequencyDays,
		NextReviewAt:        now.AddDate(0, 0, reviewFrequencyDays),
	}, nil
}

// UpdateRetention changes the retention period and reschedules the review
func (p *RetentionPolicy) UpdateRetention(retentionDays int, now time.Time) error {
	if retentionDays <= 0 {
		return shared.NewValidationError("INVALID_RETENTION_PERIOD", "Retention period must be positive")
	}
	p.RetentionDays = retentionDays
	p.NextReviewAt = now.AddDate(0, 0, p.ReviewFrequencyDays)
	p.UpdatedAt = time.Now()
	return nil
}

// MarkReviewed reschedules the next review from the given review time
func (p *RetentionPolicy) MarkReviewed(now time.Time) {
	p.NextReviewAt = now.AddDate(0, 0, p.ReviewFrequencyDays)
	p.UpdatedAt = time.Now()
}

// IsReviewDue reports whether the policy review date has passed
func (p *RetentionPolicy) IsReviewDue(now time.Time) bool {
	return !now.Before(p.NextReviewAt)
}

// ExpiresAt returns when a record created at the given time falls out of
// retention under this policy.
func (p *RetentionPolicy) ExpiresAt(recordCreatedAt time.Time) time.Time {
	return recordCreatedAt.AddDate(0, 0, p.RetentionDays)
}

// RetentionLogEntry records one action taken under a retention policy.
// The log is append-only: entries are never updated or deleted.
type RetentionLogEntry struct {
	ID         uuid.UUID
	PolicyID   uuid.UUID
	Action     string
	Details    string
	RecordedAt time.Time
}

// NewRetentionLogEntry creates a log entry for an action under a policy
func NewRetentionLogEntry(policyID uuid.UUID, action, details string, at time.Time) (*RetentionLogEntry, error) {
	if policyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if action == "" {
		return nil, shared.NewValidationError("INVALID_ACTION", "Retention log action cannot be empty")
	}
	return &RetentionLogEntry{
		ID:         uuid.New(),
		PolicyID:   policyID,
		Action:     action,
		Details:    details,
		RecordedAt: at,
	}, nil
}

package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConsentRepository persists consent records
type ConsentRepository interface {
	Save(ctx context.Context, record *ConsentRecord) error
	Update(ctx context.Context, record *ConsentRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*ConsentRecord, error)
	FindBySubject(ctx context.Context, tenantID uuid.UUID, subjectID string) ([]*ConsentRecord, error)
	FindActiveBySubjectAndType(ctx context.Context, tenantID uuid.UUID, subjectID, consentType string) (*ConsentRecord, error)
}

// RetentionRepository persists retention policies and their append-only log.
// Log entries are insert-only; implementations must not expose update or
// delete on them.
type RetentionRepository interface {
	SavePolicy(ctx context.Context, policy *RetentionPolicy) error
	UpdatePolicy(ctx context.Context, policy *RetentionPolicy) error
	FindPolicyByID(ctx context.Context, id uuid.UUID) (*RetentionPolicy, error)
	FindPolicyByCategory(ctx context.Context, tenantID uuid.UUID, category string) (*RetentionPolicy, error)
	FindPoliciesDueForReview(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*RetentionPolicy, error)
	AppendLog(ctx context.Context, entry *RetentionLogEntry) error
	FindLogByPolicy(ctx context.Context, policyID uuid.UUID) ([]*RetentionLogEntry, error)
}

// DsarRepository persists data subject access requests
type DsarRepository interface {
	Save(ctx context.Context, request *DsarRequest) error
	Update(ctx context.Context, request *DsarRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*DsarRequest, error)
	FindOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]*DsarRequest, error)
	FindOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*DsarRequest, error)
}

// BreachRepository persists data breach records
type BreachRepository interface {
	Save(ctx context.Context, breach *DataBreach) error
	FindByID(ctx context.Context, id uuid.UUID) (*DataBreach, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*DataBreach, error)
	FindRequiringNotification(ctx context.Context, tenantID uuid.UUID) ([]*DataBreach, error)
}

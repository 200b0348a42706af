package persistence

import (
	"context"
	"time"

	"github.com/bizsuite/backend/internal/domain/compliance"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RetentionPolicyModel is the GORM model for retention policies
type RetentionPolicyModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_retention_tenant_category"`
	Category            string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_retention_tenant_category"`
	RetentionDays       int       `gorm:"not null"`
	LawfulBasis         string    `gorm:"type:varchar(30);not null"`
	ReviewFrequencyDays int       `gorm:"not null"`
	NextReviewAt        time.Time `gorm:"not null;index"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for the model
func (RetentionPolicyModel) TableName() string {
	return "retention_policies"
}

// ToEntity converts the model to a domain retention policy
func (m *RetentionPolicyModel) ToEntity() *compliance.RetentionPolicy {
	return &compliance.RetentionPolicy{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:            m.TenantID,
		Category:            m.Category,
		RetentionDays:       m.RetentionDays,
		LawfulBasis:         compliance.LawfulBasis(m.LawfulBasis),
		ReviewFrequencyDays: m.ReviewFrequencyDays,
		NextReviewAt:        m.NextReviewAt,
	}
}

// RetentionPolicyModelFromEntity creates a model from a domain retention policy
func RetentionPolicyModelFromEntity(p *compliance.RetentionPolicy) *RetentionPolicyModel {
	return &RetentionPolicyModel{
		ID:                  p.ID,
		TenantID:            p.TenantID,
		Category:            p.Category,
		RetentionDays:       p.RetentionDays,
		LawfulBasis:         string(p.LawfulBasis),
		ReviewFrequencyDays: p.ReviewFrequencyDays,
		NextReviewAt:        p.NextReviewAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// RetentionLogModel is the GORM model for the append-only retention log
type RetentionLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PolicyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"type:varchar(50);not null"`
	Details    string    `gorm:"type:text"`
	RecordedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the model
func (RetentionLogModel) TableName() string {
	return "retention_logs"
}

// ToEntity converts the model to a domain log entry
func (m *RetentionLogModel) ToEntity() *compliance.RetentionLogEntry {
	return &compliance.RetentionLogEntry{
		ID:         m.ID,
		PolicyID:   m.PolicyID,
		Action:     m.Action,
		Details:    m.Details,
		RecordedAt: m.RecordedAt,
	}
}

// RetentionRepository implements the compliance.RetentionRepository
// interface. Log rows are insert-only; no update or delete path exists.
type RetentionRepository struct {
	db *gorm.DB
}

// NewRetentionRepository creates a new retention repository
func NewRetentionRepository(db *gorm.DB) *RetentionRepository {
	return &RetentionRepository{db: db}
}

// SavePolicy persists a new retention policy
func (r *RetentionRepository) SavePolicy(ctx context.Context, policy *compliance.RetentionPolicy) error {
	model := RetentionPolicyModelFromEntity(policy)
	return r.db.WithContext(ctx).Create(model).Error
}

// UpdatePolicy persists changes to an existing retention policy
func (r *RetentionRepository) UpdatePolicy(ctx context.Context, policy *compliance.RetentionPolicy) error {
	model := RetentionPolicyModelFromEntity(policy)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindPolicyByID retrieves a retention policy by its ID
func (r *RetentionRepository) FindPolicyByID(ctx context.Context, id uuid.UUID) (*compliance.RetentionPolicy, error) {
	var model RetentionPolicyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindPolicyByCategory retrieves a tenant's policy for a record category
func (r *RetentionRepository) FindPolicyByCategory(ctx context.Context, tenantID uuid.UUID, category string) (*compliance.RetentionPolicy, error) {
	var model RetentionPolicyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("category = ?", category).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindPoliciesDueForReview retrieves policies whose review date has passed
func (r *RetentionRepository) FindPoliciesDueForReview(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*compliance.RetentionPolicy, error) {
	var models []RetentionPolicyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("next_review_at <= ?", asOf).
		Order("next_review_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	policies := make([]*compliance.RetentionPolicy, len(models))
	for i, model := range models {
		policies[i] = model.ToEntity()
	}
	return policies, nil
}

// AppendLog inserts a log entry. Entries are never updated or deleted.
func (r *RetentionRepository) AppendLog(ctx context.Context, entry *compliance.RetentionLogEntry) error {
	model := &RetentionLogModel{
		ID:         entry.ID,
		PolicyID:   entry.PolicyID,
		Action:     entry.Action,
		Details:    entry.Details,
		RecordedAt: entry.RecordedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindLogByPolicy retrieves a policy's log entries in recorded order
func (r *RetentionRepository) FindLogByPolicy(ctx context.Context, policyID uuid.UUID) ([]*compliance.RetentionLogEntry, error) {
	var models []RetentionLogModel
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("recorded_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*compliance.RetentionLogEntry, len(models))
	for i, model := range models {
		entries[i] = model.ToEntity()
	}
	return entries, nil
}

// Ensure RetentionRepository implements the interface
var _ compliance.RetentionRepository = (*RetentionRepository)(nil)

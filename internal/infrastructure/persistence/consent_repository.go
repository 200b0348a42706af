package persistence

import (
	"context"
	"time"

	"github.com/bizsuite/backend/internal/domain/compliance"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsentRecordModel is the GORM model for consent records
type ConsentRecordModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_consent_tenant_subject"`
	SubjectID        string     `gorm:"type:varchar(100);not null;index:idx_consent_tenant_subject"`
	ConsentType      string     `gorm:"type:varchar(100);not null"`
	LawfulBasis      string     `gorm:"type:varchar(30);not null"`
	ConsentGiven     bool       `gorm:"not null"`
	GivenAt          time.Time  `gorm:"not null"`
	WithdrawnAt      *time.Time `gorm:"index"`
	WithdrawalReason string     `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the model
func (ConsentRecordModel) TableName() string {
	return "consent_records"
}

// ToEntity converts the model to a domain consent record
func (m *ConsentRecordModel) ToEntity() *compliance.ConsentRecord {
	return &compliance.ConsentRecord{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:         m.TenantID,
		SubjectID:        m.SubjectID,
		ConsentType:      m.ConsentType,
		LawfulBasis:      compliance.LawfulBasis(m.LawfulBasis),
		ConsentGiven:     m.ConsentGiven,
		GivenAt:          m.GivenAt,
		WithdrawnAt:      m.WithdrawnAt,
		WithdrawalReason: m.WithdrawalReason,
	}
}

// ConsentRecordModelFromEntity creates a model from a domain consent record
func ConsentRecordModelFromEntity(c *compliance.ConsentRecord) *ConsentRecordModel {
	return &ConsentRecordModel{
		ID:               c.ID,
		TenantID:         c.TenantID,
		SubjectID:        c.SubjectID,
		ConsentType:      c.ConsentType,
		LawfulBasis:      string(c.LawfulBasis),
		ConsentGiven:     c.ConsentGiven,
		GivenAt:          c.GivenAt,
		WithdrawnAt:      c.WithdrawnAt,
		WithdrawalReason: c.WithdrawalReason,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ConsentRepository implements the compliance.ConsentRepository interface
type ConsentRepository struct {
	db *gorm.DB
}

// NewConsentRepository creates a new consent repository
func NewConsentRepository(db *gorm.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// Save persists a new consent record
func (r *ConsentRepository) Save(ctx context.Context, record *compliance.ConsentRecord) error {
	model := ConsentRecordModelFromEntity(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing consent record
func (r *ConsentRepository) Update(ctx context.Context, record *compliance.ConsentRecord) error {
	model := ConsentRecordModelFromEntity(record)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID retrieves a consent record by its ID
func (r *ConsentRepository) FindByID(ctx context.Context, id uuid.UUID) (*compliance.ConsentRecord, error) {
	var model ConsentRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindBySubject retrieves a subject's full consent history, oldest first
func (r *ConsentRepository) FindBySubject(ctx context.Context, tenantID uuid.UUID, subjectID string) ([]*compliance.ConsentRecord, error) {
	var models []ConsentRecordModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("subject_id = ?", subjectID).
		Order("given_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]*compliance.ConsentRecord, len(models))
	for i, model := range models {
		records[i] = model.ToEntity()
	}
	return records, nil
}

// FindActiveBySubjectAndType retrieves the subject's current active consent
// of one type, or shared.ErrNotFound if none is in force.
func (r *ConsentRepository) FindActiveBySubjectAndType(ctx context.Context, tenantID uuid.UUID, subjectID, consentType string) (*compliance.ConsentRecord, error) {
	var model ConsentRecordModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("subject_id = ?", subjectID).
		Where("consent_type = ?", consentType).
		Where("consent_given = ?", true).
		Where("withdrawn_at IS NULL").
		Order("given_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Ensure ConsentRepository implements the interface
var _ compliance.ConsentRepository = (*ConsentRepository)(nil)

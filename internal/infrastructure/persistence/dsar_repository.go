package persistence

import (
	"context"
	"time"

	"github.com/bizsuite/backend/internal/domain/compliance"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DsarRequestModel is the GORM model for data subject access requests
type DsarRequestModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubjectID   string     `gorm:"type:varchar(100);not null;index"`
	RequestType string     `gorm:"type:varchar(20);not null"`
	Status      string     `gorm:"type:varchar(20);not null;index"`
	ReceivedAt  time.Time  `gorm:"not null"`
	DueDate     time.Time  `gorm:"not null;index"`
	ResolvedAt  *time.Time
	Resolution  string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the model
func (DsarRequestModel) TableName() string {
	return "dsar_requests"
}

// ToEntity converts the model to a domain DSAR request
func (m *DsarRequestModel) ToEntity() *compliance.DsarRequest {
	return &compliance.DsarRequest{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:    m.TenantID,
		SubjectID:   m.SubjectID,
		RequestType: compliance.RequestType(m.RequestType),
		Status:      compliance.DsarStatus(m.Status),
		ReceivedAt:  m.ReceivedAt,
		DueDate:     m.DueDate,
		ResolvedAt:  m.ResolvedAt,
		Resolution:  m.Resolution,
	}
}

// DsarRequestModelFromEntity creates a model from a domain DSAR request
func DsarRequestModelFromEntity(d *compliance.DsarRequest) *DsarRequestModel {
	return &DsarRequestModel{
		ID:          d.ID,
		TenantID:    d.TenantID,
		SubjectID:   d.SubjectID,
		RequestType: string(d.RequestType),
		Status:      string(d.Status),
		ReceivedAt:  d.ReceivedAt,
		DueDate:     d.DueDate,
		ResolvedAt:  d.ResolvedAt,
		Resolution:  d.Resolution,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// DsarRepository implements the compliance.DsarRepository interface
type DsarRepository struct {
	db *gorm.DB
}

// NewDsarRepository creates a new DSAR repository
func NewDsarRepository(db *gorm.DB) *DsarRepository {
	return &DsarRepository{db: db}
}

// Save persists a new DSAR request
func (r *DsarRepository) Save(ctx context.Context, request *compliance.DsarRequest) error {
	model := DsarRequestModelFromEntity(request)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing DSAR request
func (r *DsarRepository) Update(ctx context.Context, request *compliance.DsarRequest) error {
	model := DsarRequestModelFromEntity(request)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID retrieves a DSAR request by its ID
func (r *DsarRepository) FindByID(ctx context.Context, id uuid.UUID) (*compliance.DsarRequest, error) {
	var model DsarRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindOpenByTenant retrieves a tenant's non-terminal requests, most urgent
// deadline first.
func (r *DsarRepository) FindOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]*compliance.DsarRequest, error) {
	var models []DsarRequestModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", []string{string(compliance.DsarReceived), string(compliance.DsarInProgress)}).
		Order("due_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return dsarEntities(models), nil
}

// FindOverdue retrieves open requests whose deadline has passed
func (r *DsarRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*compliance.DsarRequest, error) {
	var models []DsarRequestModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", []string{string(compliance.DsarReceived), string(compliance.DsarInProgress)}).
		Where("due_date < ?", asOf).
		Order("due_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return dsarEntities(models), nil
}

func dsarEntities(models []DsarRequestModel) []*compliance.DsarRequest {
	requests := make([]*compliance.DsarRequest, len(models))
	for i, model := range models {
		requests[i] = model.ToEntity()
	}
	return requests
}

// Ensure DsarRepository implements the interface
var _ compliance.DsarRepository = (*DsarRepository)(nil)

package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bizsuite/backend/internal/domain/compliance"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// breachLogger logs model conversion problems; a corrupted data-type list
// must not make the whole breach row unreadable.
var breachLogger = zap.L().Named("compliance.models")

// DataBreachModel is the GORM model for data breach records
type DataBreachModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID             uuid.UUID `gorm:"type:uuid;not null;index"`
	Description          string    `gorm:"type:text;not null"`
	BreachType           string    `gorm:"type:varchar(20);not null"`
	DataTypesJSON        string    `gorm:"column:data_types;type:jsonb;default:'[]'"`
	SubjectsAffected     int64     `gorm:"not null;default:0"`
	OccurredAt           time.Time `gorm:"not null"`
	DiscoveredAt         time.Time `gorm:"not null"`
	Severity             string    `gorm:"type:varchar(10);not null;index"`
	RiskToRights         string    `gorm:"type:varchar(10);not null"`
	NotificationRequired bool      `gorm:"not null;index"`
	SeverityOverridden   bool      `gorm:"not null;default:false"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the model
func (DataBreachModel) TableName() string {
	return "data_breaches"
}

// ToEntity converts the model to a domain data breach
func (m *DataBreachModel) ToEntity() *compliance.DataBreach {
	breach := &compliance.DataBreach{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:             m.TenantID,
		Description:          m.Description,
		BreachType:           compliance.BreachType(m.BreachType),
		DataTypesAffected:    make([]string, 0),
		SubjectsAffected:     m.SubjectsAffected,
		OccurredAt:           m.OccurredAt,
		DiscoveredAt:         m.DiscoveredAt,
		Severity:             compliance.Severity(m.Severity),
		RiskToRights:         compliance.Risk(m.RiskToRights),
		NotificationRequired: m.NotificationRequired,
		SeverityOverridden:   m.SeverityOverridden,
	}

	if m.DataTypesJSON != "" && m.DataTypesJSON != "[]" {
		var dataTypes []string
		if err := json.Unmarshal([]byte(m.DataTypesJSON), &dataTypes); err != nil {
			breachLogger.Warn("failed to parse data_types JSON",
				zap.String("breach_id", m.ID.String()),
				zap.String("raw_json", m.DataTypesJSON),
				zap.Error(err))
		} else {
			breach.DataTypesAffected = dataTypes
		}
	}

	return breach
}

// DataBreachModelFromEntity creates a model from a domain data breach
func DataBreachModelFromEntity(b *compliance.DataBreach) *DataBreachModel {
	model := &DataBreachModel{
		ID:                   b.ID,
		TenantID:             b.TenantID,
		Description:          b.Description,
		BreachType:           string(b.BreachType),
		DataTypesJSON:        "[]",
		SubjectsAffected:     b.SubjectsAffected,
		OccurredAt:           b.OccurredAt,
		DiscoveredAt:         b.DiscoveredAt,
		Severity:             string(b.Severity),
		RiskToRights:         string(b.RiskToRights),
		NotificationRequired: b.NotificationRequired,
		SeverityOverridden:   b.SeverityOverridden,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}

	if len(b.DataTypesAffected) > 0 {
		if jsonBytes, err := json.Marshal(b.DataTypesAffected); err == nil {
			model.DataTypesJSON = string(jsonBytes)
		}
	}

	return model
}

// BreachRepository implements the compliance.BreachRepository interface.
// Breach records are write-once; no update path exists.
type BreachRepository struct {
	db *gorm.DB
}

// NewBreachRepository creates a new breach repository
func NewBreachRepository(db *gorm.DB) *BreachRepository {
	return &BreachRepository{db: db}
}

// Save persists a new breach record
func (r *BreachRepository) Save(ctx context.Context, breach *compliance.DataBreach) error {
	model := DataBreachModelFromEntity(breach)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID retrieves a breach record by its ID
func (r *BreachRepository) FindByID(ctx context.Context, id uuid.UUID) (*compliance.DataBreach, error) {
	var model DataBreachModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByTenant retrieves a tenant's breach history, most recent discovery first
func (r *BreachRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*compliance.DataBreach, error) {
	var models []DataBreachModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("discovered_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return breachEntities(models), nil
}

// FindRequiringNotification retrieves breaches assessed as notifiable
func (r *BreachRepository) FindRequiringNotification(ctx context.Context, tenantID uuid.UUID) ([]*compliance.DataBreach, error) {
	var models []DataBreachModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("notification_required = ?", true).
		Order("discovered_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return breachEntities(models), nil
}

func breachEntities(models []DataBreachModel) []*compliance.DataBreach {
	breaches := make([]*compliance.DataBreach, len(models))
	for i := range models {
		breaches[i] = models[i].ToEntity()
	}
	return breaches
}

// Ensure BreachRepository implements the interface
var _ compliance.BreachRepository = (*BreachRepository)(nil)

package persistence

import (
	"context"
	"time"

	"github.com/bizsuite/backend/internal/domain/plan"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// PlanCodeModel is the GORM model for plan codes. The code column stores the
// normalized form and its unique index is what makes the service-layer
// collision check safe under concurrency.
type PlanCodeModel struct {
	Code      string    `gorm:"type:varchar(50);primaryKey"`
	Country   string    `gorm:"type:varchar(5);not null;default:'';index"`
	Currency  string    `gorm:"type:varchar(3);not null"`
	Active    bool      `gorm:"not null;default:true;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (PlanCodeModel) TableName() string {
	return "plan_codes"
}

// ToEntity converts the model to a domain plan code
func (m *PlanCodeModel) ToEntity() plan.PlanCode {
	return plan.PlanCode{
		Code:     m.Code,
		Country:  m.Country,
		Currency: valueobject.Currency(m.Currency),
		Active:   m.Active,
	}
}

// PlanCodeModelFromEntity creates a model from a domain plan code
func PlanCodeModelFromEntity(p *plan.PlanCode) *PlanCodeModel {
	return &PlanCodeModel{
		Code:     plan.NormalizeCode(p.Code),
		Country:  p.Country,
		Currency: string(p.Currency),
		Active:   p.Active,
	}
}

// PlanCodeRepository implements the plan.PlanCodeRepository interface
type PlanCodeRepository struct {
	db *gorm.DB
}

// NewPlanCodeRepository creates a new plan code repository
func NewPlanCodeRepository(db *gorm.DB) *PlanCodeRepository {
	return &PlanCodeRepository{db: db}
}

// FindByCode retrieves a plan code by its normalized code
func (r *PlanCodeRepository) FindByCode(ctx context.Context, code string) (*plan.PlanCode, error) {
	var model PlanCodeModel
	err := r.db.WithContext(ctx).
		Where("code = ?", plan.NormalizeCode(code)).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	entity := model.ToEntity()
	return &entity, nil
}

// FindActive retrieves all active plan codes
func (r *PlanCodeRepository) FindActive(ctx context.Context) ([]plan.PlanCode, error) {
	var models []PlanCodeModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	codes := make([]plan.PlanCode, len(models))
	for i, model := range models {
		codes[i] = model.ToEntity()
	}
	return codes, nil
}

// FindAll retrieves every plan code, active or not
func (r *PlanCodeRepository) FindAll(ctx context.Context) ([]*plan.PlanCode, error) {
	var models []PlanCodeModel
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	codes := make([]*plan.PlanCode, len(models))
	for i, model := range models {
		entity := model.ToEntity()
		codes[i] = &entity
	}
	return codes, nil
}

// Save persists a new plan code
func (r *PlanCodeRepository) Save(ctx context.Context, code *plan.PlanCode) error {
	model := PlanCodeModelFromEntity(code)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing plan code
func (r *PlanCodeRepository) Update(ctx context.Context, code *plan.PlanCode) error {
	model := PlanCodeModelFromEntity(code)
	result := r.db.WithContext(ctx).
		Model(&PlanCodeModel{}).
		Where("code = ?", model.Code).
		Updates(map[string]interface{}{
			"country":  model.Country,
			"currency": model.Currency,
			"active":   model.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure PlanCodeRepository implements the interface
var _ plan.PlanCodeRepository = (*PlanCodeRepository)(nil)

package persistence

import (
	"context"
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateScheduleModel is the GORM model for jurisdiction rate schedules.
// One row per jurisdiction; the zero and exempt classes are fixed at 0%
// and are not stored.
type RateScheduleModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Jurisdiction string          `gorm:"type:varchar(10);not null;uniqueIndex"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	StandardRate decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	ReducedRate  decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (RateScheduleModel) TableName() string {
	return "rate_schedules"
}

// ToEntity converts the model to a domain rate schedule
func (m *RateScheduleModel) ToEntity() *tax.RateSchedule {
	return &tax.RateSchedule{
		Jurisdiction: tax.Jurisdiction(m.Jurisdiction),
		Currency:     valueobject.Currency(m.Currency),
		Rates: map[tax.RateClass]decimal.Decimal{
			tax.RateClassStandard: m.StandardRate,
			tax.RateClassReduced:  m.ReducedRate,
		},
	}
}

// RateScheduleModelFromEntity creates a model from a domain rate schedule
func RateScheduleModelFromEntity(s *tax.RateSchedule) *RateScheduleModel {
	model := &RateScheduleModel{
		ID:           uuid.New(),
		Jurisdiction: string(s.Jurisdiction),
		Currency:     string(s.Currency),
	}
	if rate, ok := s.Rates[tax.RateClassStandard]; ok {
		model.StandardRate = rate
	}
	if rate, ok := s.Rates[tax.RateClassReduced]; ok {
		model.ReducedRate = rate
	}
	return model
}

// RateScheduleRepository implements the tax.RateScheduleRepository interface
type RateScheduleRepository struct {
	db *gorm.DB
}

// NewRateScheduleRepository creates a new rate schedule repository
func NewRateScheduleRepository(db *gorm.DB) *RateScheduleRepository {
	return &RateScheduleRepository{db: db}
}

// FindByJurisdiction retrieves the schedule for a jurisdiction
func (r *RateScheduleRepository) FindByJurisdiction(ctx context.Context, jurisdiction tax.Jurisdiction) (*tax.RateSchedule, error) {
	var model RateScheduleModel
	err := r.db.WithContext(ctx).
		Where("jurisdiction = ?", string(jurisdiction)).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindAll retrieves every configured schedule
func (r *RateScheduleRepository) FindAll(ctx context.Context) ([]*tax.RateSchedule, error) {
	var models []RateScheduleModel
	err := r.db.WithContext(ctx).
		Order("jurisdiction ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	schedules := make([]*tax.RateSchedule, len(models))
	for i, model := range models {
		schedules[i] = model.ToEntity()
	}
	return schedules, nil
}

// Save creates or replaces the schedule for its jurisdiction. The upsert
// runs as a single statement keyed on the jurisdiction's unique index.
func (r *RateScheduleRepository) Save(ctx context.Context, schedule *tax.RateSchedule) error {
	model := RateScheduleModelFromEntity(schedule)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jurisdiction"}},
			DoUpdates: clause.AssignmentColumns([]string{"currency", "standard_rate", "reduced_rate", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure RateScheduleRepository implements the interface
var _ tax.RateScheduleRepository = (*RateScheduleRepository)(nil)

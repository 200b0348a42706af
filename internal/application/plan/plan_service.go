package plan

import (
	"context"
	"errors"

	"github.com/bizsuite/backend/internal/domain/plan"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CreatePlanCodeInput contains input for registering a plan code
type CreatePlanCodeInput struct {
	Code     string
	Country  string // empty for legacy codes
	Currency valueobject.Currency
}

// LimitCheckInput contains input for a tier ceiling check
type LimitCheckInput struct {
	Tier         plan.Tier
	Kind         plan.LimitKind
	CurrentCount int64
}

// PlanService manages plan codes under the country namespace rules and
// answers tier limit and feature questions.
type PlanService struct {
	planRepo plan.PlanCodeRepository
	guard    *plan.NamespaceGuard
	registry *plan.Registry
	logger   *zap.Logger
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo plan.PlanCodeRepository, guard *plan.NamespaceGuard, registry *plan.Registry, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		guard:    guard,
		registry: registry,
		logger:   logger,
	}
}

// CreatePlanCode validates a new plan code against the namespace rules and
// the existing active codes, then persists it. Guard violations reach the
// caller before any write.
func (s *PlanService) CreatePlanCode(ctx context.Context, input CreatePlanCodeInput) (*plan.PlanCode, error) {
	if err := s.guard.ValidatePlan(input.Code, input.Country, input.Currency); err != nil {
		s.logger.Info("Plan code rejected by namespace guard",
			zap.String("code", input.Code),
			zap.String("country", input.Country),
			zap.Error(err))
		return nil, err
	}

	existing, err := s.planRepo.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to load active plan codes", zap.Error(err))
		return nil, err
	}
	if err := s.guard.CheckCollision(input.Code, existing); err != nil {
		return nil, err
	}

	code := &plan.PlanCode{
		Code:     plan.NormalizeCode(input.Code),
		Country:  input.Country,
		Currency: input.Currency,
		Active:   true,
	}
	if err := s.planRepo.Save(ctx, code); err != nil {
		s.logger.Error("Failed to save plan code",
			zap.String("code", code.Code),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Registered plan code",
		zap.String("code", code.Code),
		zap.String("country", code.Country),
		zap.String("currency", string(code.Currency)))
	return code, nil
}

// UpdatePlanCurrency changes a plan's currency. Currency pinning for
// protected countries applies on update exactly as on create.
func (s *PlanService) UpdatePlanCurrency(ctx context.Context, code string, currency valueobject.Currency) (*plan.PlanCode, error) {
	planCode, err := s.planRepo.FindByCode(ctx, plan.NormalizeCode(code))
	if err != nil {
		return nil, err
	}

	if err := s.guard.ValidateCurrency(planCode.Country, currency); err != nil {
		return nil, err
	}

	planCode.Currency = currency
	if err := s.planRepo.Update(ctx, planCode); err != nil {
		s.logger.Error("Failed to update plan code currency",
			zap.String("code", planCode.Code),
			zap.Error(err))
		return nil, err
	}
	return planCode, nil
}

// CleanupLegacyPlans deactivates every active legacy plan code. Running the
// cleanup repeatedly changes nothing after the first pass.
func (s *PlanService) CleanupLegacyPlans(ctx context.Context) (*plan.CleanupResult, error) {
	plans, err := s.planRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load plan codes for cleanup", zap.Error(err))
		return nil, err
	}

	result := s.guard.CleanupLegacyPlans(plans)

	for _, p := range plans {
		for _, deactivated := range result.Deactivated {
			if p.Code == deactivated {
				if err := s.planRepo.Update(ctx, p); err != nil {
					s.logger.Error("Failed to persist legacy plan deactivation",
						zap.String("code", p.Code),
						zap.Error(err))
					return nil, err
				}
				break
			}
		}
	}

	s.logger.Info("Legacy plan cleanup complete",
		zap.Int("deactivated", len(result.Deactivated)),
		zap.Int("skipped", len(result.Skipped)))
	return &result, nil
}

// CheckLimit runs a tier ceiling check. An unrecognized tier fails closed to
// the lowest tier's limits and is logged as a data-quality issue.
func (s *PlanService) CheckLimit(ctx context.Context, input LimitCheckInput) (plan.LimitCheckResult, error) {
	var result plan.LimitCheckResult
	switch input.Kind {
	case plan.LimitKindRecords:
		result = s.registry.CheckRecordLimit(input.Tier, input.CurrentCount)
	case plan.LimitKindUsers:
		result = s.registry.CheckUserLimit(input.Tier, input.CurrentCount)
	case plan.LimitKindCustomers:
		result = s.registry.CheckCustomerLimit(input.Tier, input.CurrentCount)
	default:
		return result, shared.NewValidationError("INVALID_LIMIT_KIND", "Unknown limit kind %q", string(input.Kind))
	}

	if result.Fallback {
		s.logger.Warn("Unrecognized tier in limit check, applied lowest tier limits",
			zap.String("requested_tier", string(input.Tier)),
			zap.String("kind", string(input.Kind)))
	}
	return result, nil
}

// HasFeature reports whether a tier enables a feature. Unknown tiers and
// unknown features both answer false.
func (s *PlanService) HasFeature(tier plan.Tier, feature string) bool {
	return s.registry.HasFeature(tier, feature)
}

// GetPlanCode returns a plan code by its normalized form
func (s *PlanService) GetPlanCode(ctx context.Context, code string) (*plan.PlanCode, error) {
	planCode, err := s.planRepo.FindByCode(ctx, plan.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		s.logger.Error("Failed to load plan code",
			zap.String("code", code),
			zap.Error(err))
		return nil, err
	}
	return planCode, nil
}

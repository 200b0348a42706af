package tax

import (
	"context"
	"errors"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"go.uber.org/zap"
)

// TaxIDValidationInput contains input for validating a tax identifier
type TaxIDValidationInput struct {
	RawValue     string
	Jurisdiction tax.Jurisdiction
}

// TaxIDValidationResult contains the outcome of a tax identifier validation.
// A failed checksum or format is a result, not an error: callers surface the
// reason code to the user rather than treating the request as broken.
type TaxIDValidationResult struct {
	Valid      bool
	Normalized string
	Formatted  string
	Kind       tax.IdentifierKind
	ReasonCode string
}

// CalculationInput contains input for a single VAT calculation
type CalculationInput struct {
	Jurisdiction tax.Jurisdiction
	NetAmount    string
	RateClass    tax.RateClass
	Flags        tax.Flags
}

// CalculationResult contains the outcome of a VAT calculation
type CalculationResult struct {
	Net      valueobject.Money
	Tax      valueobject.Money
	Total    valueobject.Money
	Rate     string
	RateType tax.RateType
}

// TaxService validates tax identifiers and calculates VAT against the
// configured rate schedules.
type TaxService struct {
	scheduleRepo tax.RateScheduleRepository
	cache        tax.RateScheduleCache
	cacheConfig  tax.CacheConfig
	logger       *zap.Logger
}

// NewTaxService creates a new TaxService. The cache is optional; pass nil to
// read schedules from the repository on every calculation.
func NewTaxService(scheduleRepo tax.RateScheduleRepository, cache tax.RateScheduleCache, logger *zap.Logger) *TaxService {
	return &TaxService{
		scheduleRepo: scheduleRepo,
		cache:        cache,
		cacheConfig:  tax.DefaultCacheConfig(),
		logger:       logger,
	}
}

// ValidateTaxID validates a raw tax identifier against its jurisdiction's
// rules and returns the normalized and display forms.
func (s *TaxService) ValidateTaxID(ctx context.Context, input TaxIDValidationInput) (*TaxIDValidationResult, error) {
	identifier, err := tax.ValidateIdentifier(input.RawValue, input.Jurisdiction)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Kind == shared.KindValidation {
			s.logger.Debug("Tax identifier rejected",
				zap.String("jurisdiction", string(input.Jurisdiction)),
				zap.String("reason", domainErr.Code))
			return &TaxIDValidationResult{Valid: false, ReasonCode: domainErr.Code}, nil
		}
		// Configuration gaps (unsupported jurisdiction) are real errors.
		return nil, err
	}

	return &TaxIDValidationResult{
		Valid:      true,
		Normalized: identifier.Normalized(),
		Formatted:  identifier.Formatted(),
		Kind:       identifier.Kind(),
	}, nil
}

// Calculate computes VAT on a single net amount using the jurisdiction's
// active rate schedule. Call it once per line item; summing nets first and
// calculating once changes the rounding outcome.
func (s *TaxService) Calculate(ctx context.Context, input CalculationInput) (*CalculationResult, error) {
	schedule, err := s.getSchedule(ctx, input.Jurisdiction)
	if err != nil {
		return nil, err
	}

	net, err := valueobject.NewMoneyFromString(input.NetAmount, schedule.Currency)
	if err != nil {
		return nil, err
	}

	calculator, err := tax.NewCalculator(schedule)
	if err != nil {
		return nil, err
	}

	result, err := calculator.Calculate(net, input.RateClass, input.Flags)
	if err != nil {
		return nil, err
	}

	return &CalculationResult{
		Net:      result.Net,
		Tax:      result.Tax,
		Total:    result.Total,
		Rate:     result.Rate.String(),
		RateType: result.RateType,
	}, nil
}

// CalculatorFor returns a calculator bound to the jurisdiction's active
// schedule, for callers that run many calculations in one pass.
func (s *TaxService) CalculatorFor(ctx context.Context, jurisdiction tax.Jurisdiction) (*tax.Calculator, error) {
	schedule, err := s.getSchedule(ctx, jurisdiction)
	if err != nil {
		return nil, err
	}
	return tax.NewCalculator(schedule)
}

// SaveSchedule creates or replaces a jurisdiction's rate schedule and
// invalidates the cached copy.
func (s *TaxService) SaveSchedule(ctx context.Context, schedule *tax.RateSchedule) error {
	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		s.logger.Error("Failed to save rate schedule",
			zap.String("jurisdiction", string(schedule.Jurisdiction)),
			zap.Error(err))
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, schedule.Jurisdiction); err != nil {
			s.logger.Warn("Failed to invalidate cached rate schedule",
				zap.String("jurisdiction", string(schedule.Jurisdiction)),
				zap.Error(err))
		}
	}

	s.logger.Info("Saved rate schedule",
		zap.String("jurisdiction", string(schedule.Jurisdiction)),
		zap.String("currency", string(schedule.Currency)))
	return nil
}

// getSchedule reads a schedule through the cache. Cache failures fall
// through to the repository; a schedule lookup never fails because the
// cache is down.
func (s *TaxService) getSchedule(ctx context.Context, jurisdiction tax.Jurisdiction) (*tax.RateSchedule, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, jurisdiction)
		if err != nil {
			s.logger.Warn("Rate schedule cache read failed",
				zap.String("jurisdiction", string(jurisdiction)),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	schedule, err := s.scheduleRepo.FindByJurisdiction(ctx, jurisdiction)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewConfigurationGap("MISSING_RATE_SCHEDULE",
				"No rate schedule configured for jurisdiction %q", string(jurisdiction))
		}
		s.logger.Error("Failed to load rate schedule",
			zap.String("jurisdiction", string(jurisdiction)),
			zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, schedule, s.cacheConfig.ScheduleTTL); err != nil {
			s.logger.Warn("Failed to cache rate schedule",
				zap.String("jurisdiction", string(jurisdiction)),
				zap.Error(err))
		}
	}

	return schedule, nil
}

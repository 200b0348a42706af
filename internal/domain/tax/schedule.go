package tax

import (
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateClass names a VAT rate band within a jurisdiction's schedule
type RateClass string

const (
	RateClassStandard RateClass = "standard"
	RateClassReduced  RateClass = "reduced"
	RateClassZero     RateClass = "zero"
	RateClassExempt   RateClass = "exempt"
)

// IsValid returns true if the rate class is a known band
func (c RateClass) IsValid() bool {
	switch c {
	case RateClassStandard, RateClassReduced, RateClassZero, RateClassExempt:
		return true
	}
	return false
}

// String returns the string representation
func (c RateClass) String() string {
	return string(c)
}

// AllRateClasses returns every valid rate class
func AllRateClasses() []RateClass {
	return []RateClass{RateClassStandard, RateClassReduced, RateClassZero, RateClassExempt}
}

// RateSchedule maps rate classes to percentage values for one jurisdiction.
// Schedules are read-mostly reference data; a tenant holds one active
// schedule reference. The zero and exempt classes always carry a 0% rate and
// need not be configured explicitly.
type RateSchedule struct {
	Jurisdiction Jurisdiction
	Currency     valueobject.Currency
	Rates        map[RateClass]decimal.Decimal
}

// NewRateSchedule creates a rate schedule for a jurisdiction. Rated classes
// (standard, reduced) must be present; percentages must be non-negative.
func NewRateSchedule(jurisdiction Jurisdiction, currency valueobject.Currency, rates map[RateClass]decimal.Decimal) (*RateSchedule, error) {
	if jurisdiction == "" {
		return nil, shared.NewValidationError("INVALID_JURISDICTION", "Jurisdiction cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "Unknown currency %q", string(currency))
	}

	normalized := make(map[RateClass]decimal.Decimal, len(rates))
	for class, rate := range rates {
		if !class.IsValid() {
			return nil, shared.NewValidationError("INVALID_RATE_CLASS", "Unknown rate class %q", class.String())
		}
		if rate.IsNegative() {
			return nil, shared.NewValidationError("INVALID_RATE", "Rate for class %q cannot be negative", class.String())
		}
		normalized[class] = rate
	}

	for _, required := range []RateClass{RateClassStandard, RateClassReduced} {
		if _, ok := normalized[required]; !ok {
			return nil, shared.NewConfigurationGap("MISSING_RATE",
				"Schedule for %s has no %s rate configured", string(jurisdiction), required.String())
		}
	}

	return &RateSchedule{
		Jurisdiction: jurisdiction,
		Currency:     currency,
		Rates:        normalized,
	}, nil
}

// Rate returns the percentage for a rate class. Zero and exempt are always
// 0%. A rated class absent from the schedule is a configuration gap, never
// an implicit zero; taxing at 0% because a rate row is missing would
// under-collect silently.
func (s *RateSchedule) Rate(class RateClass) (decimal.Decimal, error) {
	if !class.IsValid() {
		return decimal.Zero, shared.NewValidationError("INVALID_RATE_CLASS", "Unknown rate class %q", class.String())
	}
	if class == RateClassZero || class == RateClassExempt {
		return decimal.Zero, nil
	}
	rate, ok := s.Rates[class]
	if !ok {
		return decimal.Zero, shared.NewConfigurationGap("MISSING_RATE",
			"Schedule for %s has no %s rate configured", string(s.Jurisdiction), class.String())
	}
	return rate, nil
}

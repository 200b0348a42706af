package tax

import (
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateType labels which rule produced a calculation result
type RateType string

const (
	RateTypeReverseCharge RateType = "reverse_charge"
	RateTypeECSupply      RateType = "ec_supply"
	RateTypeExempt        RateType = "exempt"
	RateTypeZero          RateType = "zero"
	RateTypeStandard      RateType = "standard"
	RateTypeReduced       RateType = "reduced"
)

// Flags carry the supply-level VAT treatment overrides
type Flags struct {
	ReverseCharge bool
	ECSupply      bool
}

// Calculation is the result of calculating VAT on a single net amount
type Calculation struct {
	Net      valueobject.Money
	Tax      valueobject.Money
	Total    valueobject.Money
	Rate     decimal.Decimal
	RateType RateType
}

// vatRule is one row of the calculation decision table
type vatRule struct {
	name    string
	applies func(class RateClass, flags Flags) bool
	apply   func(c *Calculator, net valueobject.Money, class RateClass) (*Calculation, error)
}

// vatRules is the ordered decision table for VAT treatment; the first
// matching rule wins. Reverse charge beats EC supply when both flags are
// set, both beat the rate class, and exemption beats the rated bands.
var vatRules = []vatRule{
	{
		name:    "reverse_charge",
		applies: func(_ RateClass, f Flags) bool { return f.ReverseCharge },
		apply: func(c *Calculator, net valueobject.Money, _ RateClass) (*Calculation, error) {
			return zeroTax(net, RateTypeReverseCharge), nil
		},
	},
	{
		name:    "ec_supply",
		applies: func(_ RateClass, f Flags) bool { return f.ECSupply },
		apply: func(c *Calculator, net valueobject.Money, _ RateClass) (*Calculation, error) {
			return zeroTax(net, RateTypeECSupply), nil
		},
	},
	{
		name:    "exempt",
		applies: func(class RateClass, _ Flags) bool { return class == RateClassExempt },
		apply: func(c *Calculator, net valueobject.Money, _ RateClass) (*Calculation, error) {
			return zeroTax(net, RateTypeExempt), nil
		},
	},
	{
		name:    "rated",
		applies: func(_ RateClass, _ Flags) bool { return true },
		apply:   (*Calculator).calculateRated,
	},
}

// Calculator computes VAT for single net amounts against one rate schedule.
// It is pure: call it once per line item and sum the results. Calculating
// tax on a pre-summed amount changes the rounding characteristics of
// invoices with many small lines.
type Calculator struct {
	schedule *RateSchedule
}

// NewCalculator creates a calculator bound to a rate schedule
func NewCalculator(schedule *RateSchedule) (*Calculator, error) {
	if schedule == nil {
		return nil, shared.NewConfigurationGap("MISSING_RATE_SCHEDULE", "Calculator requires a rate schedule")
	}
	return &Calculator{schedule: schedule}, nil
}

// Schedule returns the rate schedule the calculator is bound to
func (c *Calculator) Schedule() *RateSchedule {
	return c.schedule
}

// Calculate computes VAT on a net amount. The net amount must be
// non-negative and in the schedule's currency. Tax is rounded half-up to the
// currency's minor units; total = net + tax.
func (c *Calculator) Calculate(net valueobject.Money, class RateClass, flags Flags) (*Calculation, error) {
	if net.IsNegative() {
		return nil, shared.NewValidationError("NEGATIVE_NET_AMOUNT", "Net amount cannot be negative")
	}
	if net.Currency() != c.schedule.Currency {
		return nil, shared.NewValidationError("CURRENCY_MISMATCH",
			"Net amount currency %s does not match schedule currency %s", net.Currency(), c.schedule.Currency)
	}
	if !class.IsValid() {
		return nil, shared.NewValidationError("INVALID_RATE_CLASS", "Unknown rate class %q", class.String())
	}

	for _, rule := range vatRules {
		if rule.applies(class, flags) {
			return rule.apply(c, net, class)
		}
	}
	// The final table row always applies.
	return nil, shared.NewInvariantViolation("RULE_TABLE_EXHAUSTED", "No VAT rule matched")
}

func (c *Calculator) calculateRated(net valueobject.Money, class RateClass) (*Calculation, error) {
	rate, err := c.schedule.Rate(class)
	if err != nil {
		return nil, err
	}

	tax := net.Percentage(rate).RoundToMinorUnits()
	total := net.MustAdd(tax)

	rateType := RateTypeStandard
	switch class {
	case RateClassReduced:
		rateType = RateTypeReduced
	case RateClassZero:
		rateType = RateTypeZero
	}

	return &Calculation{
		Net:      net,
		Tax:      tax,
		Total:    total,
		Rate:     rate,
		RateType: rateType,
	}, nil
}

func zeroTax(net valueobject.Money, rateType RateType) *Calculation {
	return &Calculation{
		Net:      net,
		Tax:      valueobject.Zero(net.Currency()),
		Total:    net,
		Rate:     decimal.Zero,
		RateType: rateType,
	}
}

package config

import (
	"fmt"

	"github.com/bizsuite/backend/internal/domain/plan"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// Schedules builds domain rate schedules from the configured jurisdictions
func (t TaxConfig) Schedules() ([]*tax.RateSchedule, error) {
	schedules := make([]*tax.RateSchedule, 0, len(t.Jurisdictions))
	for _, j := range t.Jurisdictions {
		standard, err := decimal.NewFromString(j.StandardRate)
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: invalid standard rate %q: %w", j.Code, j.StandardRate, err)
		}
		reduced, err := decimal.NewFromString(j.ReducedRate)
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: invalid reduced rate %q: %w", j.Code, j.ReducedRate, err)
		}

		schedule, err := tax.NewRateSchedule(tax.Jurisdiction(j.Code), valueobject.Currency(j.Currency),
			map[tax.RateClass]decimal.Decimal{
				tax.RateClassStandard: standard,
				tax.RateClassReduced:  reduced,
			})
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: %w", j.Code, err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

// NamespaceGuard builds the plan-code namespace guard from the configured
// country policies.
func (p PlanConfig) NamespaceGuard() (*plan.NamespaceGuard, error) {
	policies := make([]plan.CountryPolicy, 0, len(p.Countries))
	for _, c := range p.Countries {
		policies = append(policies, plan.CountryPolicy{
			Country:  c.Country,
			Prefix:   c.Prefix,
			Currency: valueobject.Currency(c.Currency),
		})
	}
	return plan.NewNamespaceGuard(policies)
}

// TierRegistry builds the tier registry from the configured tiers, or the
// stock definitions when none are configured.
func (p PlanConfig) TierRegistry() (*plan.Registry, error) {
	if len(p.Tiers) == 0 {
		return plan.DefaultRegistry(), nil
	}

	definitions := make([]plan.Definition, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		features := make(map[string]bool, len(t.Features))
		for _, f := range t.Features {
			features[f] = true
		}
		definitions = append(definitions, plan.Definition{
			Tier: plan.Tier(t.Name),
			Limits: plan.Limits{
				MaxUsers:     t.MaxUsers,
				MaxRecords:   t.MaxRecords,
				MaxCustomers: t.MaxCustomers,
			},
			Features: features,
		})
	}
	return plan.NewRegistry(definitions)
}

package plan

import "github.com/bizsuite/backend/internal/domain/shared"

// LimitKind names which ceiling a check ran against
type LimitKind string

const (
	LimitKindUsers     LimitKind = "users"
	LimitKindRecords   LimitKind = "records"
	LimitKindCustomers LimitKind = "customers"
)

// LimitCheckResult is the outcome of checking a current count against a
// tier ceiling.
type LimitCheckResult struct {
	Kind      LimitKind
	Tier      Tier
	Allowed   bool
	Limit     int64 // Unlimited (-1) when the tier has no ceiling
	Remaining int64 // clamped at 0; meaningless when Unlimited
	Unlimited bool
	// Fallback is set when the requested tier was unrecognized and the
	// lowest tier's limits were applied instead. Callers should log this
	// as a data-quality issue; the check itself fails closed.
	Fallback bool
}

// Registry resolves tier definitions. Built from configuration at startup;
// read-only afterwards.
type Registry struct {
	definitions map[Tier]Definition
}

// NewRegistry creates a tier registry from definitions. Every known tier
// must be present and every limit must be positive or Unlimited.
func NewRegistry(definitions []Definition) (*Registry, error) {
	byTier := make(map[Tier]Definition, len(definitions))
	for _, def := range definitions {
		if !def.Tier.IsValid() {
			return nil, shared.NewValidationError("INVALID_TIER", "Unknown tier %q in registry", def.Tier.String())
		}
		for _, limit := range []int64{def.Limits.MaxUsers, def.Limits.MaxRecords, def.Limits.MaxCustomers} {
			if limit != Unlimited && limit <= 0 {
				return nil, shared.NewValidationError("INVALID_LIMIT",
					"Tier %q limits must be positive or unlimited", def.Tier.String())
			}
		}
		if _, dup := byTier[def.Tier]; dup {
			return nil, shared.NewValidationError("DUPLICATE_TIER", "Tier %q defined twice", def.Tier.String())
		}
		byTier[def.Tier] = def
	}
	for _, tier := range AllTiers() {
		if _, ok := byTier[tier]; !ok {
			return nil, shared.NewConfigurationGap("MISSING_TIER", "Tier %q has no definition", tier.String())
		}
	}
	return &Registry{definitions: byTier}, nil
}

// DefaultRegistry returns the stock tier definitions the platform ships with
func DefaultRegistry() *Registry {
	registry, err := NewRegistry([]Definition{
		{
			Tier:   TierFree,
			Limits: Limits{MaxUsers: 2, MaxRecords: 50, MaxCustomers: 25},
			Features: map[string]bool{
				"invoicing": true,
			},
		},
		{
			Tier:   TierStarter,
			Limits: Limits{MaxUsers: 5, MaxRecords: 500, MaxCustomers: 250},
			Features: map[string]bool{
				"invoicing":  true,
				"api_access": true,
			},
		},
		{
			Tier:   TierPro,
			Limits: Limits{MaxUsers: 25, MaxRecords: 5000, MaxCustomers: 2500},
			Features: map[string]bool{
				"invoicing":        true,
				"api_access":       true,
				"multi_currency":   true,
				"compliance_suite": true,
				"custom_branding":  true,
			},
		},
		{
			Tier:   TierEnterprise,
			Limits: Limits{MaxUsers: Unlimited, MaxRecords: Unlimited, MaxCustomers: Unlimited},
			Features: map[string]bool{
				"invoicing":        true,
				"api_access":       true,
				"multi_currency":   true,
				"compliance_suite": true,
				"custom_branding":  true,
				"priority_support": true,
			},
		},
	})
	if err != nil {
		// The stock definitions are compile-time constants.
		panic(err)
	}
	return registry
}

// resolve returns the definition for a tier, falling back to the lowest
// tier for unrecognized names.
func (r *Registry) resolve(tier Tier) (Definition, bool) {
	if def, ok := r.definitions[tier]; ok {
		return def, false
	}
	return r.definitions[LowestTier], true
}

// CheckRecordLimit checks a tenant's current record count against the
// tier's record ceiling.
func (r *Registry) CheckRecordLimit(tier Tier, currentCount int64) LimitCheckResult {
	def, fallback := r.resolve(tier)
	return check(LimitKindRecords, def, fallback, def.Limits.MaxRecords, currentCount)
}

// CheckUserLimit checks a tenant's current user count against the tier's
// user ceiling.
func (r *Registry) CheckUserLimit(tier Tier, currentCount int64) LimitCheckResult {
	def, fallback := r.resolve(tier)
	return check(LimitKindUsers, def, fallback, def.Limits.MaxUsers, currentCount)
}

// CheckCustomerLimit checks a tenant's current customer count against the
// tier's customer ceiling.
func (r *Registry) CheckCustomerLimit(tier Tier, currentCount int64) LimitCheckResult {
	def, fallback := r.resolve(tier)
	return check(LimitKindCustomers, def, fallback, def.Limits.MaxCustomers, currentCount)
}

// HasFeature returns whether the tier enables a feature. Unknown tiers and
// unknown features both answer false.
func (r *Registry) HasFeature(tier Tier, feature string) bool {
	def, fallback := r.resolve(tier)
	if fallback {
		return false
	}
	return def.HasFeature(feature)
}

// Definition returns the resolved definition for a tier and whether the
// fail-closed fallback was applied.
func (r *Registry) Definition(tier Tier) (Definition, bool) {
	return r.resolve(tier)
}

// check is a read-then-decide ceiling comparison. It carries no atomicity
// guarantee: the persistence layer must pair it with a conditional write so
// concurrent consumers cannot jointly exceed the ceiling.
func check(kind LimitKind, def Definition, fallback bool, limit, currentCount int64) LimitCheckResult {
	result := LimitCheckResult{
		Kind:     kind,
		Tier:     def.Tier,
		Limit:    limit,
		Fallback: fallback,
	}

	if limit == Unlimited {
		result.Allowed = true
		result.Unlimited = true
		return result
	}

	result.Allowed = currentCount < limit
	result.Remaining = max(0, limit-currentCount)
	return result
}

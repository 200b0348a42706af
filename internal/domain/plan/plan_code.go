package plan

import (
	"strings"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
)

// CountryPolicy pins the plan-code namespace and currency for one protected
// country. Protected prefixes are a fixed, explicit set: adding a country
// here must never implicitly touch the legacy code set.
type CountryPolicy struct {
	Country  string
	Prefix   string
	Currency valueobject.Currency
}

// PlanCode is a priced offering's unique key. A code belongs to exactly one
// country namespace via its prefix, except legacy codes, which carry no
// protected prefix at all.
type PlanCode struct {
	Code     string // normalized form
	Country  string // empty for legacy codes
	Currency valueobject.Currency
	Active   bool
}

// IsLegacy reports whether the code predates country namespacing
func (p PlanCode) IsLegacy() bool {
	return p.Country == ""
}

// NormalizeCode produces the canonical plan-code form used for all
// collision and prefix checks: trimmed and uppercased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NamespaceGuard enforces plan-code namespace isolation and per-country
// currency pinning. The guard is consulted before every plan write; an
// invariant violation here must reach the caller before any persistence
// side effect.
type NamespaceGuard struct {
	policies map[string]CountryPolicy // keyed by country code
}

// NewNamespaceGuard creates a guard from country policies. Prefixes must be
// non-empty and mutually disjoint (no prefix may be a prefix of another).
func NewNamespaceGuard(policies []CountryPolicy) (*NamespaceGuard, error) {
	byCountry := make(map[string]CountryPolicy, len(policies))
	for _, policy := range policies {
		if policy.Country == "" || policy.Prefix == "" {
			return nil, shared.NewValidationError("INVALID_COUNTRY_POLICY",
				"Country policy requires a country code and a prefix")
		}
		if !policy.Currency.IsValid() {
			return nil, shared.NewValidationError("INVALID_COUNTRY_POLICY",
				"Country policy for %s has unknown currency %q", policy.Country, string(policy.Currency))
		}
		policy.Prefix = NormalizeCode(policy.Prefix)
		if _, dup := byCountry[policy.Country]; dup {
			return nil, shared.NewValidationError("DUPLICATE_COUNTRY_POLICY",
				"Country %s has more than one policy", policy.Country)
		}
		for _, other := range byCountry {
			if strings.HasPrefix(policy.Prefix, other.Prefix) || strings.HasPrefix(other.Prefix, policy.Prefix) {
				return nil, shared.NewInvariantViolation("PREFIX_OVERLAP",
					"Prefixes %q and %q overlap", policy.Prefix, other.Prefix)
			}
		}
		byCountry[policy.Country] = policy
	}
	return &NamespaceGuard{policies: byCountry}, nil
}

// DefaultCountryPolicies returns the platform's managed country namespaces
func DefaultCountryPolicies() []CountryPolicy {
	return []CountryPolicy{
		{Country: "UK", Prefix: "UK-", Currency: valueobject.GBP},
		{Country: "IE", Prefix: "IE-", Currency: valueobject.EUR},
		{Country: "AU", Prefix: "AU-", Currency: valueobject.AUD},
		{Country: "NZ", Prefix: "NZ-", Currency: valueobject.NZD},
	}
}

// Policy returns the policy for a country, if the country is protected
func (g *NamespaceGuard) Policy(country string) (CountryPolicy, bool) {
	policy, ok := g.policies[country]
	return policy, ok
}

// matchingPrefix returns the policy whose prefix the normalized code carries
func (g *NamespaceGuard) matchingPrefix(normalized string) (CountryPolicy, bool) {
	for _, policy := range g.policies {
		if strings.HasPrefix(normalized, policy.Prefix) {
			return policy, true
		}
	}
	return CountryPolicy{}, false
}

// ValidateCurrency checks that a plan for a protected country uses that
// country's mandated currency. This runs on create and on update, even when
// only the currency field changes.
func (g *NamespaceGuard) ValidateCurrency(country string, currency valueobject.Currency) error {
	policy, protected := g.policies[country]
	if !protected {
		return nil
	}
	if currency != policy.Currency {
		return shared.NewInvariantViolation("PLAN_CURRENCY_MISMATCH",
			"Plans for %s must be priced in %s, got %s", country, policy.Currency, currency)
	}
	return nil
}

// ValidatePlan checks a plan code against the namespace rules:
//   - a protected country's plan must carry that country's prefix and its
//     mandated currency
//   - a legacy plan (no country) must not carry any protected prefix
//   - a plan must never carry another country's prefix
func (g *NamespaceGuard) ValidatePlan(code, country string, currency valueobject.Currency) error {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return shared.NewValidationError("INVALID_PLAN_CODE", "Plan code cannot be empty")
	}

	owner, hasPrefix := g.matchingPrefix(normalized)

	if country == "" {
		if hasPrefix {
			return shared.NewInvariantViolation("LEGACY_PREFIX_COLLISION",
				"Legacy plan code %q collides with the protected %s prefix %q", normalized, owner.Country, owner.Prefix)
		}
		return nil
	}

	policy, protected := g.policies[country]
	if !protected {
		// Unmanaged countries only need to stay out of protected namespaces.
		if hasPrefix {
			return shared.NewInvariantViolation("FOREIGN_PREFIX_COLLISION",
				"Plan code %q for %s carries the protected %s prefix %q", normalized, country, owner.Country, owner.Prefix)
		}
		return nil
	}

	if err := g.ValidateCurrency(country, currency); err != nil {
		return err
	}
	if !hasPrefix || owner.Country != country {
		return shared.NewInvariantViolation("MISSING_COUNTRY_PREFIX",
			"Plan code %q for %s must start with %q", normalized, country, policy.Prefix)
	}
	return nil
}

// CheckCollision verifies that a new code does not collide with any
// existing active code once both are normalized.
func (g *NamespaceGuard) CheckCollision(code string, existing []PlanCode) error {
	normalized := NormalizeCode(code)
	for _, other := range existing {
		if !other.Active {
			continue
		}
		if NormalizeCode(other.Code) == normalized {
			return shared.NewInvariantViolation("PLAN_CODE_COLLISION",
				"Plan code %q already exists", normalized)
		}
	}
	return nil
}

// CleanupResult reports what a legacy-cleanup pass changed
type CleanupResult struct {
	Deactivated []string
	Skipped     []string // active codes kept because they carry a protected prefix
}

// CleanupLegacyPlans deactivates every active legacy code in place. The
// operation is idempotent: codes already inactive are untouched, so running
// it N times equals running it once. Codes carrying a protected prefix are
// never deactivated, whatever their recorded country.
func (g *NamespaceGuard) CleanupLegacyPlans(plans []*PlanCode) CleanupResult {
	var result CleanupResult
	for _, p := range plans {
		if !p.Active {
			continue
		}
		if _, protected := g.matchingPrefix(NormalizeCode(p.Code)); protected {
			result.Skipped = append(result.Skipped, p.Code)
			continue
		}
		if p.IsLegacy() {
			p.Active = false
			result.Deactivated = append(result.Deactivated, p.Code)
		}
	}
	return result
}

package plan

// Tier is a subscription level. Tiers form a strict order:
// free < starter < pro < enterprise.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Unlimited is the sentinel limit value meaning no ceiling
const Unlimited int64 = -1

// tierOrder ranks tiers from most to least restrictive
var tierOrder = map[Tier]int{
	TierFree:       0,
	TierStarter:    1,
	TierPro:        2,
	TierEnterprise: 3,
}

// IsValid returns true if the tier is a known subscription level
func (t Tier) IsValid() bool {
	_, ok := tierOrder[t]
	return ok
}

// String returns the string representation
func (t Tier) String() string {
	return string(t)
}

// AtLeast reports whether this tier is at or above the other in the tier order
func (t Tier) AtLeast(other Tier) bool {
	return tierOrder[t] >= tierOrder[other]
}

// AllTiers returns every tier from most to least restrictive
func AllTiers() []Tier {
	return []Tier{TierFree, TierStarter, TierPro, TierEnterprise}
}

// LowestTier is the fail-closed fallback for unrecognized tier names
const LowestTier = TierFree

// Limits holds the resource ceilings for one tier. A value of Unlimited (-1)
// means no ceiling; all other values must be positive.
type Limits struct {
	MaxUsers     int64
	MaxRecords   int64
	MaxCustomers int64
}

// Definition is the full configuration of one tier: its limits plus the set
// of feature flags enabled at that level. Definitions are shared read-only
// across all tenants of the tier.
type Definition struct {
	Tier     Tier
	Limits   Limits
	Features map[string]bool
}

// HasFeature returns the flag value, false for unknown features (fail closed)
func (d Definition) HasFeature(feature string) bool {
	return d.Features[feature]
}

// Package plan provides subscription-tier limit enforcement and the
// plan-code namespace guard for a multi-tenant business-management platform.
//
// This package implements two closely related concerns:
//   - Tier limits: resource-count and user-count ceiling checks against a
//     tenant's subscription tier, plus feature-flag lookup. Unknown tiers
//     fall back to the most restrictive tier's limits (fail closed).
//   - Plan-code namespaces: country-prefixed plan codes must never collide
//     with legacy or other-country codes, and each protected country pins
//     its plan currency.
//
// Tier definitions and country policies are configuration injected at
// startup; nothing here is hardcoded per tenant.
package plan

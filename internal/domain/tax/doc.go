// Package tax provides domain models for VAT validation and calculation in a
// multi-tenant business-management platform.
//
// This package implements the tax bounded context, which is responsible for:
//   - Validating and normalizing jurisdiction-specific tax identifiers
//     (checksum-verified UK VAT registration numbers)
//   - Looking up VAT rates from per-jurisdiction rate schedules
//   - Calculating per-line VAT with reverse-charge, EC-supply and exemption
//     handling
//
// Key types:
//   - TaxIdentifier: Immutable, checksum-validated tax registration number
//   - RateSchedule: Per-jurisdiction mapping of rate classes to percentages
//   - Calculator: Pure per-line VAT calculation over a rate schedule
//
// All monetary arithmetic uses the shared Money value object; nothing in this
// package performs I/O. Rate schedules are reference data fetched by the
// caller and passed in.
package tax

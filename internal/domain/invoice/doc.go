// Package invoice provides the invoice aggregate and its reconciliation
// logic for a multi-tenant business-management platform.
//
// An Invoice owns an ordered list of line items (order is display-significant
// only). Reconciliation computes each line's net and tax independently via
// the tax calculator, then rolls the lines up into header totals:
//
//	total   = subtotal - headerDiscount + delivery + installation + tax
//	balance = total - paid
//
// Aggregate amounts are always re-derived, never edited independently.
// All amounts are authoritative in the invoice's own currency; the exchange
// rate to the tenant's base currency is informational and applied exactly
// once, in BaseCurrencyTotal.
package invoice

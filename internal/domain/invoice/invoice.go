package invoice

import (
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the stored lifecycle state of an invoice. Overdue is not a
// status: it is derived from the due date and the outstanding balance, see
// IsOverdue.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusIssued        Status = "issued"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusCancelled     Status = "cancelled"
	StatusRefunded      Status = "refunded"
)

// IsValid returns true if the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPartiallyPaid, StatusPaid, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// IsTerminal returns true for states that admit no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Invoice is the tenant-scoped invoice aggregate
type Invoice struct {
	shared.BaseEntity
	TenantID uuid.UUID
	Number   string
	Status   Status

	Currency     valueobject.Currency
	BaseCurrency valueobject.Currency
	// ExchangeRate converts this invoice's currency to the tenant's base
	// currency. Informational only: recorded amounts are authoritative in
	// the invoice currency and the rate is applied exactly once, in
	// BaseCurrencyTotal.
	ExchangeRate decimal.Decimal

	Items []*LineItem
	Flags tax.Flags

	HeaderDiscount      valueobject.Money
	DeliveryCharges     valueobject.Money
	InstallationCharges valueobject.Money
	PaidAmount          valueobject.Money

	IssuedAt *time.Time
	DueDate  *time.Time

	// Derived by Reconcile; never edited independently.
	Subtotal      valueobject.Money
	TaxAmount     valueobject.Money
	TotalAmount   valueobject.Money
	BalanceAmount valueobject.Money
	reconciled    bool
}

// NewInvoice creates a draft invoice in the given currency. The exchange
// rate to the base currency must be positive.
func NewInvoice(tenantID uuid.UUID, number string, currency, baseCurrency valueobject.Currency, exchangeRate decimal.Decimal) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "Unknown currency %q", string(currency))
	}
	if !baseCurrency.IsValid() {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "Unknown base currency %q", string(baseCurrency))
	}
	if !exchangeRate.IsPositive() {
		return nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive")
	}

	return &Invoice{
		BaseEntity:          shared.NewBaseEntity(),
		TenantID:            tenantID,
		Number:              number,
		Status:              StatusDraft,
		Currency:            currency,
		BaseCurrency:        baseCurrency,
		ExchangeRate:        exchangeRate,
		HeaderDiscount:      valueobject.Zero(currency),
		DeliveryCharges:     valueobject.Zero(currency),
		InstallationCharges: valueobject.Zero(currency),
		PaidAmount:          valueobject.Zero(currency),
		Subtotal:            valueobject.Zero(currency),
		TaxAmount:           valueobject.Zero(currency),
		TotalAmount:         valueobject.Zero(currency),
		BalanceAmount:       valueobject.Zero(currency),
	}, nil
}

// AddLineItem appends a line item. Line order is preserved for display but
// has no effect on computed totals.
func (inv *Invoice) AddLineItem(item *LineItem) error {
	if inv.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if item.UnitPrice.Currency() != inv.Currency {
		return shared.NewValidationError("CURRENCY_MISMATCH",
			"Line item currency %s does not match invoice currency %s", item.UnitPrice.Currency(), inv.Currency)
	}
	inv.Items = append(inv.Items, item)
	inv.reconciled = false
	inv.UpdatedAt = time.Now()
	return nil
}

// SetHeaderCharges sets the header-level discount and surcharges. All must
// be non-negative and in the invoice currency.
func (inv *Invoice) SetHeaderCharges(discount, delivery, installation valueobject.Money) error {
	for _, m := range []valueobject.Money{discount, delivery, installation} {
		if m.Currency() != inv.Currency {
			return shared.NewValidationError("CURRENCY_MISMATCH",
				"Header amount currency %s does not match invoice currency %s", m.Currency(), inv.Currency)
		}
		if m.IsNegative() {
			return shared.NewValidationError("INVALID_AMOUNT", "Header amounts cannot be negative")
		}
	}
	inv.HeaderDiscount = discount
	inv.DeliveryCharges = delivery
	inv.InstallationCharges = installation
	inv.reconciled = false
	inv.UpdatedAt = time.Now()
	return nil
}

// Reconcile recomputes every line item and the header aggregates. Each line
// gets its own net and tax from the calculator; the header sums per-line
// results. total = subtotal - headerDiscount + delivery + installation + tax
// and balance = total - paid, always re-derived.
func (inv *Invoice) Reconcile(calc *tax.Calculator) error {
	if calc.Schedule().Currency != inv.Currency {
		return shared.NewValidationError("CURRENCY_MISMATCH",
			"Rate schedule currency %s does not match invoice currency %s", calc.Schedule().Currency, inv.Currency)
	}

	subtotal := valueobject.Zero(inv.Currency)
	taxTotal := valueobject.Zero(inv.Currency)
	for _, item := range inv.Items {
		if err := item.reconcile(calc, inv.Flags); err != nil {
			return err
		}
		subtotal = subtotal.MustAdd(item.NetAmount)
		taxTotal = taxTotal.MustAdd(item.TaxAmount)
	}

	inv.Subtotal = subtotal
	inv.TaxAmount = taxTotal
	inv.TotalAmount = subtotal.
		MustSubtract(inv.HeaderDiscount).
		MustAdd(inv.DeliveryCharges).
		MustAdd(inv.InstallationCharges).
		MustAdd(taxTotal).
		RoundToMinorUnits()
	inv.BalanceAmount = inv.TotalAmount.MustSubtract(inv.PaidAmount)
	inv.reconciled = true
	inv.UpdatedAt = time.Now()
	return nil
}

// Issue transitions a reconciled draft to issued and stamps the issue time
// and due date.
func (inv *Invoice) Issue(issuedAt time.Time, dueDate time.Time) error {
	if inv.Status != StatusDraft {
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"Invoice %s cannot be issued from status %s", inv.Number, inv.Status)
	}
	if !inv.reconciled {
		return shared.NewInvariantViolation("NOT_RECONCILED",
			"Invoice %s must be reconciled before issuing", inv.Number)
	}
	if dueDate.Before(issuedAt) {
		return shared.NewValidationError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	inv.Status = StatusIssued
	inv.IssuedAt = &issuedAt
	inv.DueDate = &dueDate
	inv.UpdatedAt = time.Now()
	return nil
}

// RecordPayment applies a payment and re-derives the balance and status.
// Overpayment is allowed and surfaces through IsOverpaid; it is never
// silently clamped because it signals a refund-eligible state.
func (inv *Invoice) RecordPayment(amount valueobject.Money) error {
	if inv.Status != StatusIssued && inv.Status != StatusPartiallyPaid {
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"Invoice %s cannot take payments in status %s", inv.Number, inv.Status)
	}
	if amount.Currency() != inv.Currency {
		return shared.NewValidationError("CURRENCY_MISMATCH",
			"Payment currency %s does not match invoice currency %s", amount.Currency(), inv.Currency)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	inv.PaidAmount = inv.PaidAmount.MustAdd(amount)
	inv.BalanceAmount = inv.TotalAmount.MustSubtract(inv.PaidAmount)

	if paid, _ := inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount); paid {
		inv.Status = StatusPaid
	} else {
		inv.Status = StatusPartiallyPaid
	}
	inv.UpdatedAt = time.Now()
	return nil
}

// Cancel moves the invoice to the terminal cancelled state. Paid invoices
// must be refunded instead.
func (inv *Invoice) Cancel() error {
	switch inv.Status {
	case StatusDraft, StatusIssued:
		inv.Status = StatusCancelled
		inv.UpdatedAt = time.Now()
		return nil
	default:
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"Invoice %s cannot be cancelled from status %s", inv.Number, inv.Status)
	}
}

// Refund moves a paid or partially paid invoice to the terminal refunded state
func (inv *Invoice) Refund() error {
	switch inv.Status {
	case StatusPaid, StatusPartiallyPaid:
		inv.Status = StatusRefunded
		inv.UpdatedAt = time.Now()
		return nil
	default:
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"Invoice %s cannot be refunded from status %s", inv.Number, inv.Status)
	}
}

// IsOverdue reports whether the invoice is past due with an outstanding
// balance. Derived on demand from the due date, never stored as a status.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.DueDate == nil {
		return false
	}
	if inv.Status != StatusIssued && inv.Status != StatusPartiallyPaid {
		return false
	}
	return now.After(*inv.DueDate) && inv.BalanceAmount.IsPositive()
}

// IsOverpaid reports whether payments exceed the invoice total. An overpaid
// invoice is refund-eligible; callers must surface this rather than clamp it.
func (inv *Invoice) IsOverpaid() bool {
	return inv.BalanceAmount.IsNegative()
}

// DisplayBalance is the balance clamped at zero for presentation. Internal
// arithmetic keeps the signed balance.
func (inv *Invoice) DisplayBalance() valueobject.Money {
	return inv.BalanceAmount.ClampNonNegative()
}

// BaseCurrencyTotal converts the invoice total to the tenant's base currency
// by applying the recorded exchange rate exactly once.
func (inv *Invoice) BaseCurrencyTotal() valueobject.Money {
	if inv.Currency == inv.BaseCurrency {
		return inv.TotalAmount
	}
	converted := inv.TotalAmount.Amount().Mul(inv.ExchangeRate)
	m, _ := valueobject.NewMoney(converted, inv.BaseCurrency)
	return m.RoundToMinorUnits()
}

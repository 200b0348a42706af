package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/bizsuite/backend/internal/domain/invoice"
	"github.com/bizsuite/backend/internal/domain/plan"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = validator.New()

// CalculatorProvider supplies a tax calculator bound to a jurisdiction's
// active rate schedule.
type CalculatorProvider interface {
	CalculatorFor(ctx context.Context, jurisdiction tax.Jurisdiction) (*tax.Calculator, error)
}

// LineItemInput describes one invoice line in a create request
type LineItemInput struct {
	Description string        `validate:"required"`
	Quantity    int64         `validate:"gt=0"`
	UnitPrice   string        `validate:"required"`
	Discount    string        ``
	RateClass   tax.RateClass `validate:"required"`
}

// CreateInvoiceInput contains input for creating an invoice
type CreateInvoiceInput struct {
	TenantID     uuid.UUID        `validate:"required"`
	Tier         plan.Tier        `validate:"required"`
	Number       string           `validate:"required"`
	Jurisdiction tax.Jurisdiction `validate:"required"`
	Currency     string           `validate:"required,len=3"`
	BaseCurrency string           `validate:"required,len=3"`
	ExchangeRate string           ``
	Flags        tax.Flags        ``
	Lines        []LineItemInput  `validate:"min=1,dive"`

	HeaderDiscount      string
	DeliveryCharges     string
	InstallationCharges string
}

// IssueInvoiceInput contains input for issuing a draft invoice
type IssueInvoiceInput struct {
	InvoiceID    uuid.UUID        `validate:"required"`
	Jurisdiction tax.Jurisdiction `validate:"required"`
	IssuedAt     time.Time        `validate:"required"`
	DueDate      time.Time        `validate:"required"`
}

// InvoiceSummary is the read model for a single invoice, with the derived
// overdue and overpayment states computed at read time.
type InvoiceSummary struct {
	ID                uuid.UUID
	Number            string
	Status            invoice.Status
	Currency          valueobject.Currency
	Subtotal          valueobject.Money
	TaxAmount         valueobject.Money
	TotalAmount       valueobject.Money
	PaidAmount        valueobject.Money
	Balance           valueobject.Money
	DisplayBalance    valueobject.Money
	BaseCurrencyTotal valueobject.Money
	Overdue           bool
	Overpaid          bool
	DueDate           *time.Time
}

// InvoiceService drives the invoice lifecycle: creation under tier record
// limits, reconciliation, issuing, payments, and the terminal transitions.
type InvoiceService struct {
	invoiceRepo invoice.Repository
	calculators CalculatorProvider
	registry    *plan.Registry
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo invoice.Repository, calculators CalculatorProvider, registry *plan.Registry, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		calculators: calculators,
		registry:    registry,
		logger:      logger,
	}
}

// CreateInvoice creates and reconciles a draft invoice. The tenant's tier
// record ceiling is checked first; a tenant at its cap cannot create more
// invoices until it upgrades.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*invoice.Invoice, error) {
	if err := validate.Struct(input); err != nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Invalid invoice input: %v", err)
	}

	count, err := s.invoiceRepo.CountByTenant(ctx, input.TenantID)
	if err != nil {
		s.logger.Error("Failed to count tenant invoices",
			zap.String("tenant_id", input.TenantID.String()),
			zap.Error(err))
		return nil, err
	}

	check := s.registry.CheckRecordLimit(input.Tier, count)
	if check.Fallback {
		s.logger.Warn("Unrecognized tier, applying lowest tier limits",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("requested_tier", string(input.Tier)))
	}
	if !check.Allowed {
		s.logger.Info("Record limit reached, blocking invoice creation",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("tier", string(check.Tier)),
			zap.Int64("limit", check.Limit),
			zap.Int64("current", count))
		return nil, shared.NewInvariantViolation("RECORD_LIMIT_REACHED",
			"Tier %s allows %d records; tenant already holds %d", check.Tier, check.Limit, count)
	}

	if _, err := s.invoiceRepo.FindByNumber(ctx, input.TenantID, input.Number); err == nil {
		return nil, shared.NewInvariantViolation("DUPLICATE_INVOICE_NUMBER",
			"Invoice number %q already exists for this tenant", input.Number)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	rate := decimal.NewFromInt(1)
	if input.ExchangeRate != "" {
		rate, err = decimal.NewFromString(input.ExchangeRate)
		if err != nil {
			return nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "Exchange rate %q is not a number", input.ExchangeRate)
		}
	}

	currency := valueobject.Currency(input.Currency)
	inv, err := invoice.NewInvoice(input.TenantID, input.Number, currency, valueobject.Currency(input.BaseCurrency), rate)
	if err != nil {
		return nil, err
	}
	inv.Flags = input.Flags

	for _, line := range input.Lines {
		item, err := s.buildLineItem(line, currency)
		if err != nil {
			return nil, err
		}
		if err := inv.AddLineItem(item); err != nil {
			return nil, err
		}
	}

	discount, delivery, installation, err := s.parseHeaderCharges(input, currency)
	if err != nil {
		return nil, err
	}
	if err := inv.SetHeaderCharges(discount, delivery, installation); err != nil {
		return nil, err
	}

	calculator, err := s.calculators.CalculatorFor(ctx, input.Jurisdiction)
	if err != nil {
		return nil, err
	}
	if err := inv.Reconcile(calculator); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		s.logger.Error("Failed to save invoice",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("number", input.Number),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Created invoice",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("number", inv.Number),
		zap.String("total", inv.TotalAmount.StringFixed()))
	return inv, nil
}

// IssueInvoice re-reconciles a draft against the current rate schedule and
// issues it. Reconciling at issue time guarantees the stamped totals match
// the rates in force when the invoice became payable.
func (s *InvoiceService) IssueInvoice(ctx context.Context, input IssueInvoiceInput) (*invoice.Invoice, error) {
	if err := validate.Struct(input); err != nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Invalid issue input: %v", err)
	}

	inv, err := s.invoiceRepo.FindByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	calculator, err := s.calculators.CalculatorFor(ctx, input.Jurisdiction)
	if err != nil {
		return nil, err
	}
	if err := inv.Reconcile(calculator); err != nil {
		return nil, err
	}
	if err := inv.Issue(input.IssuedAt, input.DueDate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		s.logger.Error("Failed to update issued invoice",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Issued invoice",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.Time("due_date", input.DueDate))
	return inv, nil
}

// RecordPayment applies a payment to an issued invoice. Overpayment is
// surfaced in the returned summary, not clamped.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, amount string) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payment, err := valueobject.NewMoneyFromString(amount, inv.Currency)
	if err != nil {
		return nil, err
	}
	if err := inv.RecordPayment(payment); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		s.logger.Error("Failed to update invoice after payment",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, err
	}

	if inv.IsOverpaid() {
		s.logger.Warn("Invoice overpaid",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("number", inv.Number),
			zap.String("balance", inv.BalanceAmount.StringFixed()))
	}
	return inv, nil
}

// CancelInvoice moves a draft or issued invoice to the terminal cancelled state
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return s.transition(ctx, invoiceID, (*invoice.Invoice).Cancel, "Cancelled invoice")
}

// RefundInvoice moves a paid or partially paid invoice to the terminal
// refunded state.
func (s *InvoiceService) RefundInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return s.transition(ctx, invoiceID, (*invoice.Invoice).Refund, "Refunded invoice")
}

func (s *InvoiceService) transition(ctx context.Context, invoiceID uuid.UUID, apply func(*invoice.Invoice) error, logMsg string) error {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := apply(inv); err != nil {
		return err
	}
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return err
	}
	s.logger.Info(logMsg,
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number))
	return nil
}

// GetInvoice returns the read model for one invoice with derived state
// computed against the given clock.
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID, now time.Time) (*InvoiceSummary, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return summarize(inv, now), nil
}

// ListOverdueInvoices returns every invoice a tenant holds that is past due
// with an outstanding balance.
func (s *InvoiceService) ListOverdueInvoices(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]*InvoiceSummary, error) {
	invoices, err := s.invoiceRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var overdue []*InvoiceSummary
	for _, inv := range invoices {
		if inv.IsOverdue(now) {
			overdue = append(overdue, summarize(inv, now))
		}
	}
	return overdue, nil
}

func summarize(inv *invoice.Invoice, now time.Time) *InvoiceSummary {
	return &InvoiceSummary{
		ID:                inv.ID,
		Number:            inv.Number,
		Status:            inv.Status,
		Currency:          inv.Currency,
		Subtotal:          inv.Subtotal,
		TaxAmount:         inv.TaxAmount,
		TotalAmount:       inv.TotalAmount,
		PaidAmount:        inv.PaidAmount,
		Balance:           inv.BalanceAmount,
		DisplayBalance:    inv.DisplayBalance(),
		BaseCurrencyTotal: inv.BaseCurrencyTotal(),
		Overdue:           inv.IsOverdue(now),
		Overpaid:          inv.IsOverpaid(),
		DueDate:           inv.DueDate,
	}
}

func (s *InvoiceService) buildLineItem(line LineItemInput, currency valueobject.Currency) (*invoice.LineItem, error) {
	unitPrice, err := valueobject.NewMoneyFromString(line.UnitPrice, currency)
	if err != nil {
		return nil, err
	}
	discount := valueobject.Zero(currency)
	if line.Discount != "" {
		discount, err = valueobject.NewMoneyFromString(line.Discount, currency)
		if err != nil {
			return nil, err
		}
	}
	return invoice.NewLineItem(line.Description, line.Quantity, unitPrice, discount, line.RateClass)
}

func (s *InvoiceService) parseHeaderCharges(input CreateInvoiceInput, currency valueobject.Currency) (discount, delivery, installation valueobject.Money, err error) {
	parse := func(raw string) (valueobject.Money, error) {
		if raw == "" {
			return valueobject.Zero(currency), nil
		}
		return valueobject.NewMoneyFromString(raw, currency)
	}

	if discount, err = parse(input.HeaderDiscount); err != nil {
		return
	}
	if delivery, err = parse(input.DeliveryCharges); err != nil {
		return
	}
	installation, err = parse(input.InstallationCharges)
	return
}

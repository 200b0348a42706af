package invoice

import (
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/google/uuid"
)

// LineItem is a single invoiced line. Line items are owned exclusively by
// their parent invoice and are never shared between invoices.
type LineItem struct {
	ID          uuid.UUID
	Description string
	Quantity    int64
	UnitPrice   valueobject.Money
	Discount    valueobject.Money
	RateClass   tax.RateClass

	// Computed by Invoice.Reconcile; zero until then.
	NetAmount   valueobject.Money
	TaxAmount   valueobject.Money
	TotalAmount valueobject.Money
	RateType    tax.RateType
}

// NewLineItem creates a line item. Quantity must be positive; unit price and
// discount must be non-negative and in the given currency.
func NewLineItem(description string, quantity int64, unitPrice, discount valueobject.Money, rateClass tax.RateClass) (*LineItem, error) {
	if description == "" {
		return nil, shared.NewValidationError("INVALID_LINE_ITEM", "Line item description cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Line item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_UNIT_PRICE", "Line item unit price cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_DISCOUNT", "Line item discount cannot be negative")
	}
	if unitPrice.Currency() != discount.Currency() {
		return nil, shared.NewValidationError("CURRENCY_MISMATCH",
			"Line item discount currency %s does not match unit price currency %s",
			discount.Currency(), unitPrice.Currency())
	}

	gross := unitPrice.MultiplyByInt(quantity)
	if greater, _ := discount.GreaterThanOrEqual(gross); greater && !discount.Equals(gross) {
		return nil, shared.NewValidationError("INVALID_DISCOUNT", "Line item discount cannot exceed the line gross amount")
	}

	return &LineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Discount:    discount,
		RateClass:   rateClass,
	}, nil
}

// net returns quantity x unit price minus the line's own discount
func (li *LineItem) net() valueobject.Money {
	return li.UnitPrice.MultiplyByInt(li.Quantity).MustSubtract(li.Discount)
}

// reconcile computes the line's net, tax and total using the calculator.
// Tax is computed per line, never on a pre-summed amount.
func (li *LineItem) reconcile(calc *tax.Calculator, flags tax.Flags) error {
	result, err := calc.Calculate(li.net().RoundToMinorUnits(), li.RateClass, flags)
	if err != nil {
		return err
	}
	li.NetAmount = result.Net
	li.TaxAmount = result.Tax
	li.TotalAmount = result.Total
	li.RateType = result.RateType
	return nil
}

package persistence

import (
	"context"
	"time"

	"github.com/bizsuite/backend/internal/domain/invoice"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceModel is the GORM model for the invoice aggregate root
type InvoiceModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoices_tenant_number"`
	Number       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	BaseCurrency string          `gorm:"type:varchar(3);not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,8);not null;default:1"`

	ReverseCharge bool `gorm:"not null;default:false"`
	ECSupply      bool `gorm:"column:ec_supply;not null;default:false"`

	HeaderDiscount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeliveryCharges     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InstallationCharges decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	IssuedAt  *time.Time `gorm:"index"`
	DueDate   *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the model
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineItemModel is the GORM model for invoice line items. Lines are
// owned by their invoice; position preserves display order.
type InvoiceLineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RateClass   string          `gorm:"type:varchar(20);not null"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RateType    string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for the model
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// mustMoney rebuilds a Money from persisted columns. The currency column is
// not null, so the constructor cannot fail on loaded rows.
func mustMoney(amount decimal.Decimal, currency string) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, valueobject.Currency(currency))
	return m
}

// ToEntity converts the model and its line rows to a domain invoice
func (m *InvoiceModel) ToEntity(lines []InvoiceLineItemModel) *invoice.Invoice {
	inv := &invoice.Invoice{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:     m.TenantID,
		Number:       m.Number,
		Status:       invoice.Status(m.Status),
		Currency:     valueobject.Currency(m.Currency),
		BaseCurrency: valueobject.Currency(m.BaseCurrency),
		ExchangeRate: m.ExchangeRate,
		Flags: tax.Flags{
			ReverseCharge: m.ReverseCharge,
			ECSupply:      m.ECSupply,
		},
		HeaderDiscount:      mustMoney(m.HeaderDiscount, m.Currency),
		DeliveryCharges:     mustMoney(m.DeliveryCharges, m.Currency),
		InstallationCharges: mustMoney(m.InstallationCharges, m.Currency),
		PaidAmount:          mustMoney(m.PaidAmount, m.Currency),
		Subtotal:            mustMoney(m.Subtotal, m.Currency),
		TaxAmount:           mustMoney(m.TaxAmount, m.Currency),
		TotalAmount:         mustMoney(m.TotalAmount, m.Currency),
		BalanceAmount:       mustMoney(m.BalanceAmount, m.Currency),
		IssuedAt:            m.IssuedAt,
		DueDate:             m.DueDate,
	}

	inv.Items = make([]*invoice.LineItem, len(lines))
	for i, line := range lines {
		inv.Items[i] = &invoice.LineItem{
			ID:          line.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   mustMoney(line.UnitPrice, m.Currency),
			Discount:    mustMoney(line.Discount, m.Currency),
			RateClass:   tax.RateClass(line.RateClass),
			NetAmount:   mustMoney(line.NetAmount, m.Currency),
			TaxAmount:   mustMoney(line.TaxAmount, m.Currency),
			TotalAmount: mustMoney(line.TotalAmount, m.Currency),
			RateType:    tax.RateType(line.RateType),
		}
	}
	return inv
}

// InvoiceModelFromEntity creates the header and line models from a domain invoice
func InvoiceModelFromEntity(inv *invoice.Invoice) (*InvoiceModel, []InvoiceLineItemModel) {
	model := &InvoiceModel{
		ID:                  inv.ID,
		TenantID:            inv.TenantID,
		Number:              inv.Number,
		Status:              string(inv.Status),
		Currency:            string(inv.Currency),
		BaseCurrency:        string(inv.BaseCurrency),
		ExchangeRate:        inv.ExchangeRate,
		ReverseCharge:       inv.Flags.ReverseCharge,
		ECSupply:            inv.Flags.ECSupply,
		HeaderDiscount:      inv.HeaderDiscount.Amount(),
		DeliveryCharges:     inv.DeliveryCharges.Amount(),
		InstallationCharges: inv.InstallationCharges.Amount(),
		PaidAmount:          inv.PaidAmount.Amount(),
		Subtotal:            inv.Subtotal.Amount(),
		TaxAmount:           inv.TaxAmount.Amount(),
		TotalAmount:         inv.TotalAmount.Amount(),
		BalanceAmount:       inv.BalanceAmount.Amount(),
		IssuedAt:            inv.IssuedAt,
		DueDate:             inv.DueDate,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
	}

	lines := make([]InvoiceLineItemModel, len(inv.Items))
	for i, item := range inv.Items {
		lines[i] = InvoiceLineItemModel{
			ID:          item.ID,
			InvoiceID:   inv.ID,
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Amount(),
			Discount:    item.Discount.Amount(),
			RateClass:   string(item.RateClass),
			NetAmount:   item.NetAmount.Amount(),
			TaxAmount:   item.TaxAmount.Amount(),
			TotalAmount: item.TotalAmount.Amount(),
			RateType:    string(item.RateType),
		}
	}
	return model, lines
}

// InvoiceRepository implements the invoice.Repository interface
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindByID retrieves an invoice with its line items
func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var model InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.findLines(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToEntity(lines), nil
}

// FindByNumber retrieves a tenant's invoice by its number
func (r *InvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*invoice.Invoice, error) {
	var model InvoiceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("number = ?", number).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.findLines(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToEntity(lines), nil
}

// FindByTenant retrieves all invoices for a tenant, oldest first
func (r *InvoiceRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*invoice.Invoice, error) {
	var models []InvoiceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]*invoice.Invoice, len(models))
	for i := range models {
		lines, err := r.findLines(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i] = models[i].ToEntity(lines)
	}
	return invoices, nil
}

// CountByTenant returns the number of invoices a tenant holds
func (r *InvoiceRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&InvoiceModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// Save persists a new invoice and its line items in one transaction. The
// composite unique index on (tenant_id, number) backs the duplicate check
// done at the service layer.
func (r *InvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	model, lines := InvoiceModelFromEntity(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists changes to an invoice. Line items are replaced wholesale:
// lines have no identity outside their invoice, so rewriting them is simpler
// and safer than diffing.
func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	model, lines := InvoiceModelFromEntity(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&InvoiceLineItemModel{}).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *InvoiceRepository) findLines(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceLineItemModel, error) {
	var lines []InvoiceLineItemModel
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position ASC").
		Find(&lines).Error
	return lines, err
}

// Ensure InvoiceRepository implements the interface
var _ invoice.Repository = (*InvoiceRepository)(nil)

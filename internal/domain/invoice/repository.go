package invoice

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to persisted invoices.
//
// Concurrency contract: invoice creation against a tier record limit is a
// read-then-decide check at the engine layer. Implementations must apply an
// atomic conditional write (count-and-insert in one statement, or an
// equivalent unique constraint) so two concurrent creations cannot jointly
// exceed a tenant's cap.
type Repository interface {
	// FindByID returns an invoice by ID, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber returns a tenant's invoice by its number, or shared.ErrNotFound
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindByTenant returns all invoices for a tenant, ordered by creation time
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Invoice, error)

	// CountByTenant returns the number of invoices a tenant holds
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Save persists a new invoice with its line items
	Save(ctx context.Context, inv *Invoice) error

	// Update persists changes to an existing invoice and its line items
	Update(ctx context.Context, inv *Invoice) error
}

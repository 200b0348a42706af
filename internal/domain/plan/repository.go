package plan

import "context"

// PlanCodeRepository provides access to persisted plan codes.
//
// Concurrency contract: collision checks are read-then-decide; the
// implementation must back them with a unique constraint on the normalized
// code so concurrent creations cannot both succeed.
type PlanCodeRepository interface {
	// FindByCode returns a plan code by normalized code, or shared.ErrNotFound
	FindByCode(ctx context.Context, code string) (*PlanCode, error)

	// FindActive returns all active plan codes
	FindActive(ctx context.Context) ([]PlanCode, error)

	// FindAll returns every plan code, active or not
	FindAll(ctx context.Context) ([]*PlanCode, error)

	// Save persists a new plan code
	Save(ctx context.Context, code *PlanCode) error

	// Update persists changes to an existing plan code
	Update(ctx context.Context, code *PlanCode) error
}

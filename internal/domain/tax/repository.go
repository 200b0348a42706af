package tax

import "context"

// RateScheduleRepository provides access to persisted rate schedules.
// Schedules are reference data: read-mostly, keyed by jurisdiction.
type RateScheduleRepository interface {
	// FindByJurisdiction returns the active schedule for a jurisdiction,
	// or shared.ErrNotFound if none is configured.
	FindByJurisdiction(ctx context.Context, jurisdiction Jurisdiction) (*RateSchedule, error)

	// FindAll returns every configured schedule
	FindAll(ctx context.Context) ([]*RateSchedule, error)

	// Save creates or replaces the schedule for its jurisdiction
	Save(ctx context.Context, schedule *RateSchedule) error
}

package compliance

import (
	"time"

	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DsarResponseDays is the fixed regulatory response deadline for a data
// subject access request.
const DsarResponseDays = 30

// RequestType is the kind of right a data subject is exercising
type RequestType string

const (
	RequestAccess        RequestType = "access"
	RequestRectification RequestType = "rectification"
	RequestErasure       RequestType = "erasure"
	RequestPortability   RequestType = "portability"
	RequestRestriction   RequestType = "restriction"
	RequestObjection     RequestType = "objection"
)

// IsValid returns true if the request type is one of the fixed enumeration
func (r RequestType) IsValid() bool {
	switch r {
	case RequestAccess, RequestRectification, RequestErasure,
		RequestPortability, RequestRestriction, RequestObjection:
		return true
	}
	return false
}

// String returns the string representation
func (r RequestType) String() string {
	return string(r)
}

// AllRequestTypes returns every valid request type
func AllRequestTypes() []RequestType {
	return []RequestType{
		RequestAccess, RequestRectification, RequestErasure,
		RequestPortability, RequestRestriction, RequestObjection,
	}
}

// DsarStatus is the workflow state of a request
type DsarStatus string

const (
	DsarReceived   DsarStatus = "received"
	DsarInProgress DsarStatus = "in_progress"
	DsarCompleted  DsarStatus = "completed"
	DsarRejected   DsarStatus = "rejected"
)

// IsTerminal returns true for states that admit no further transitions
func (s DsarStatus) IsTerminal() bool {
	return s == DsarCompleted || s == DsarRejected
}

// DsarRequest is a data subject access request with its regulatory deadline
type DsarRequest struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	SubjectID   string
	RequestType RequestType
	Status      DsarStatus
	ReceivedAt  time.Time
	DueDate     time.Time
	ResolvedAt  *time.Time
	Resolution  string
}

// NewDsarRequest files a request; the due date is fixed at thirty days from
// receipt.
func NewDsarRequest(tenantID uuid.UUID, subjectID string, requestType RequestType, receivedAt time.Time) (*DsarRequest, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if subjectID == "" {
		return nil, shared.NewValidationError("INVALID_SUBJECT", "Data subject ID cannot be empty")
	}
	if !requestType.IsValid() {
		return nil, shared.NewValidationError("INVALID_REQUEST_TYPE", "Unknown DSAR request type %q", requestType.String())
	}

	return &DsarRequest{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		SubjectID:   subjectID,
		RequestType: requestType,
		Status:      DsarReceived,
		ReceivedAt:  receivedAt,
		DueDate:     receivedAt.AddDate(0, 0, DsarResponseDays),
	}, nil
}

// Start moves a received request into progress
func (d *DsarRequest) Start() error {
	if d.Status != DsarReceived {
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"DSAR cannot start from status %s", d.Status)
	}
	d.Status = DsarInProgress
	d.UpdatedAt = time.Now()
	return nil
}

// Complete closes an in-progress request with a resolution note
func (d *DsarRequest) Complete(resolution string, at time.Time) error {
	if d.Status != DsarInProgress {
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"DSAR cannot complete from status %s", d.Status)
	}
	d.Status = DsarCompleted
	d.Resolution = resolution
	d.ResolvedAt = &at
	d.UpdatedAt = time.Now()
	return nil
}

// Reject closes a request with the reason it was refused. Allowed from
// received or in-progress.
func (d *DsarRequest) Reject(reason string, at time.Time) error {
	if d.Status.IsTerminal() {
		return shared.NewInvariantViolation("INVALID_TRANSITION",
			"DSAR cannot be rejected from status %s", d.Status)
	}
	d.Status = DsarRejected
	d.Resolution = reason
	d.ResolvedAt = &at
	d.UpdatedAt = time.Now()
	return nil
}

// IsOverdue reports whether an open request has passed its deadline.
// Derived from the due date, never stored.
func (d *DsarRequest) IsOverdue(now time.Time) bool {
	return !d.Status.IsTerminal() && now.After(d.DueDate)
}

// DaysRemaining returns whole days until the deadline, negative once overdue
func (d *DsarRequest) DaysRemaining(now time.Time) int {
	return int(d.DueDate.Sub(now).Hours() / 24)
}

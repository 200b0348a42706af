package compliance

import (
	"context"
	"errors"
	"time"

	"github.com/bizsuite/backend/internal/domain/compliance"
	"github.com/bizsuite/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// RecordConsentInput contains input for recording consent
type RecordConsentInput struct {
	TenantID    uuid.UUID              `validate:"required"`
	SubjectID   string                 `validate:"required"`
	ConsentType string                 `validate:"required"`
	LawfulBasis compliance.LawfulBasis `validate:"required"`
	GivenAt     time.Time              `validate:"required"`
}

// CreateRetentionPolicyInput contains input for creating a retention policy
type CreateRetentionPolicyInput struct {
	TenantID            uuid.UUID              `validate:"required"`
	Category            string                 `validate:"required"`
	RetentionDays       int                    `validate:"gt=0"`
	LawfulBasis         compliance.LawfulBasis `validate:"required"`
	ReviewFrequencyDays int                    ``
}

// SubmitDsarInput contains input for filing a data subject access request
type SubmitDsarInput struct {
	TenantID    uuid.UUID              `validate:"required"`
	SubjectID   string                 `validate:"required"`
	RequestType compliance.RequestType `validate:"required"`
	ReceivedAt  time.Time              `validate:"required"`
}

// ReportBreachInput contains input for recording a data breach
type ReportBreachInput struct {
	TenantID          uuid.UUID             `validate:"required"`
	Description       string                `validate:"required"`
	BreachType        compliance.BreachType `validate:"required"`
	DataTypesAffected []string              ``
	SubjectsAffected  int64                 `validate:"gte=0"`
	OccurredAt        time.Time             `validate:"required"`
	DiscoveredAt      time.Time             `validate:"required"`

	// Optional operator overrides applied over the derived assessment
	Override *compliance.AssessmentOverride
}

// ComplianceService drives the data-protection workflows: consent, retention
// policies, DSAR handling, and breach records.
type ComplianceService struct {
	consentRepo   compliance.ConsentRepository
	retentionRepo compliance.RetentionRepository
	dsarRepo      compliance.DsarRepository
	breachRepo    compliance.BreachRepository
	logger        *zap.Logger
}

// NewComplianceService creates a new ComplianceService
func NewComplianceService(
	consentRepo compliance.ConsentRepository,
	retentionRepo compliance.RetentionRepository,
	dsarRepo compliance.DsarRepository,
	breachRepo compliance.BreachRepository,
	logger *zap.Logger,
) *ComplianceService {
	return &ComplianceService{
		consentRepo:   consentRepo,
		retentionRepo: retentionRepo,
		dsarRepo:      dsarRepo,
		breachRepo:    breachRepo,
		logger:        logger,
	}
}

// RecordConsent records consent given by a data subject. If the subject
// already holds active consent of the same type, the existing record is
// returned unchanged; consent is not stacked.
func (s *ComplianceService) RecordConsent(ctx context.Context, input RecordConsentInput) (*compliance.ConsentRecord, error) {
	if err := validate.Struct(input); err != nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Invalid consent input: %v", err)
	}

	existing, err := s.consentRepo.FindActiveBySubjectAndType(ctx, input.TenantID, input.SubjectID, input.ConsentType)
	if err == nil && existing != nil {
		s.logger.Debug("Active consent already on record",
			zap.String("subject_id", input.SubjectID),
			zap.String("consent_type", input.ConsentType))
		return existing, nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record, err := compliance.NewConsentRecord(input.TenantID, input.SubjectID, input.ConsentType, input.LawfulBasis, input.GivenAt)
	if err != nil {
		return nil, err
	}
	if err := s.consentRepo.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save consent record",
			zap.String("subject_id", input.SubjectID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Recorded consent",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("subject_id", input.SubjectID),
		zap.String("consent_type", input.ConsentType),
		zap.String("lawful_basis", input.LawfulBasis.String()))
	return record, nil
}

// WithdrawConsent records a one-way withdrawal of consent
func (s *ComplianceService) WithdrawConsent(ctx context.Context, consentID uuid.UUID, at time.Time, reason string) (*compliance.ConsentRecord, error) {
	record, err := s.consentRepo.FindByID(ctx, consentID)
	if err != nil {
		return nil, err
	}
	if err := record.Withdraw(at, reason); err != nil {
		return nil, err
	}
	if err := s.consentRepo.Update(ctx, record); err != nil {
		s.logger.Error("Failed to persist consent withdrawal",
			zap.String("consent_id", consentID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Consent withdrawn",
		zap.String("consent_id", consentID.String()),
		zap.String("subject_id", record.SubjectID))
	return record, nil
}

// CreateRetentionPolicy creates a retention policy and logs its creation in
// the append-only retention log.
func (s *ComplianceService) CreateRetentionPolicy(ctx context.Context, input CreateRetentionPolicyInput) (*compliance.RetentionPolicy, error) {
	if err := validate.Struct(input); err != nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Invalid retention policy input: %v", err)
	}

	now := time.Now()
	policy, err := compliance.NewRetentionPolicy(input.TenantID, input.Category, input.RetentionDays, input.LawfulBasis, input.ReviewFrequencyDays, now)
	if err != nil {
		return nil, err
	}
	if err := s.retentionRepo.SavePolicy(ctx, policy); err != nil {
		s.logger.Error("Failed to save retention policy",
			zap.String("category", input.Category),
			zap.Error(err))
		return nil, err
	}

	s.appendRetentionLog(ctx, policy.ID, "created", "", now)
	return policy, nil
}

// ReviewRetentionPolicy marks a policy as reviewed and reschedules the next
// review.
func (s *ComplianceService) ReviewRetentionPolicy(ctx context.Context, policyID uuid.UUID, reviewedAt time.Time, notes string) (*compliance.RetentionPolicy, error) {
	policy, err := s.retentionRepo.FindPolicyByID(ctx, policyID)
	if err != nil {
		return nil, err
	}

	policy.MarkReviewed(reviewedAt)
	if err := s.retentionRepo.UpdatePolicy(ctx, policy); err != nil {
		s.logger.Error("Failed to persist retention policy review",
			zap.String("policy_id", policyID.String()),
			zap.Error(err))
		return nil, err
	}

	s.appendRetentionLog(ctx, policy.ID, "reviewed", notes, reviewedAt)
	return policy, nil
}

// ListPoliciesDueForReview returns every policy whose review date has passed
func (s *ComplianceService) ListPoliciesDueForReview(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*compliance.RetentionPolicy, error) {
	return s.retentionRepo.FindPoliciesDueForReview(ctx, tenantID, asOf)
}

// appendRetentionLog writes to the append-only retention log. Log failures
// are surfaced in logs but never fail the policy operation itself.
func (s *ComplianceService) appendRetentionLog(ctx context.Context, policyID uuid.UUID, action, details string, at time.Time) {
	entry, err := compliance.NewRetentionLogEntry(policyID, action, details, at)
	if err != nil {
		s.logger.Error("Failed to build retention log entry", zap.Error(err))
		return
	}
	if err := s.retentionRepo.AppendLog(ctx, entry); err != nil {
		s.logger.Error("Failed to append retention log entry",
			zap.String("policy_id", policyID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

// SubmitDsar files a data subject access request with its fixed thirty-day
// deadline.
func (s *ComplianceService) SubmitDsar(ctx context.Context, input SubmitDsarInput) (*compliance.DsarRequest, error) {
	if err := validate.Struct(input); err != nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Invalid DSAR input: %v", err)
	}

	request, err := compliance.NewDsarRequest(input.TenantID, input.SubjectID, input.RequestType, input.ReceivedAt)
	if err != nil {
		return nil, err
	}
	if err := s.dsarRepo.Save(ctx, request); err != nil {
		s.logger.Error("Failed to save DSAR",
			zap.String("subject_id", input.SubjectID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("DSAR filed",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("subject_id", input.SubjectID),
		zap.String("request_type", input.RequestType.String()),
		zap.Time("due_date", request.DueDate))
	return request, nil
}

// StartDsar moves a received request into progress
func (s *ComplianceService) StartDsar(ctx context.Context, requestID uuid.UUID) (*compliance.DsarRequest, error) {
	return s.updateDsar(ctx, requestID, func(r *compliance.DsarRequest) error {
		return r.Start()
	})
}

// CompleteDsar closes an in-progress request with its resolution
func (s *ComplianceService) CompleteDsar(ctx context.Context, requestID uuid.UUID, resolution string, at time.Time) (*compliance.DsarRequest, error) {
	return s.updateDsar(ctx, requestID, func(r *compliance.DsarRequest) error {
		return r.Complete(resolution, at)
	})
}

// RejectDsar closes a request with the reason it was refused
func (s *ComplianceService) RejectDsar(ctx context.Context, requestID uuid.UUID, reason string, at time.Time) (*compliance.DsarRequest, error) {
	return s.updateDsar(ctx, requestID, func(r *compliance.DsarRequest) error {
		return r.Reject(reason, at)
	})
}

func (s *ComplianceService) updateDsar(ctx context.Context, requestID uuid.UUID, apply func(*compliance.DsarRequest) error) (*compliance.DsarRequest, error) {
	request, err := s.dsarRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := apply(request); err != nil {
		return nil, err
	}
	if err := s.dsarRepo.Update(ctx, request); err != nil {
		s.logger.Error("Failed to update DSAR",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		return nil, err
	}
	return request, nil
}

// ListOverdueDsars returns every open request past its regulatory deadline
func (s *ComplianceService) ListOverdueDsars(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*compliance.DsarRequest, error) {
	overdue, err := s.dsarRepo.FindOverdue(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	if len(overdue) > 0 {
		s.logger.Warn("Overdue DSARs outstanding",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(overdue)))
	}
	return overdue, nil
}

// ReportBreach records a data breach, deriving severity from the assessment
// rules and applying any operator overrides on top.
func (s *ComplianceService) ReportBreach(ctx context.Context, input ReportBreachInput) (*compliance.DataBreach, error) {
	if err := validate.Struct(input); err != nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Invalid breach input: %v", err)
	}

	breach, err := compliance.NewDataBreach(
		input.TenantID,
		input.Description,
		input.BreachType,
		compliance.BreachInput{
			DataTypesAffected: input.DataTypesAffected,
			SubjectsAffected:  input.SubjectsAffected,
		},
		input.OccurredAt,
		input.DiscoveredAt,
		input.Override,
	)
	if err != nil {
		return nil, err
	}

	if err := s.breachRepo.Save(ctx, breach); err != nil {
		s.logger.Error("Failed to save breach record",
			zap.String("tenant_id", input.TenantID.String()),
			zap.Error(err))
		return nil, err
	}

	logFields := []zap.Field{
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("breach_id", breach.ID.String()),
		zap.String("severity", string(breach.Severity)),
		zap.String("risk", string(breach.RiskToRights)),
		zap.Bool("notification_required", breach.NotificationRequired),
		zap.Int64("subjects_affected", breach.SubjectsAffected),
	}
	if breach.NotificationRequired {
		s.logger.Warn("Breach recorded, supervisory-authority notification required", logFields...)
	} else {
		s.logger.Info("Breach recorded", logFields...)
	}
	return breach, nil
}

// ListBreachesRequiringNotification returns breaches flagged for
// supervisory-authority notification.
func (s *ComplianceService) ListBreachesRequiringNotification(ctx context.Context, tenantID uuid.UUID) ([]*compliance.DataBreach, error) {
	return s.breachRepo.FindRequiringNotification(ctx, tenantID)
}

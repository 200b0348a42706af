// Package compliance provides the data-protection workflow engine for a
// multi-tenant business-management platform.
//
// This package implements four workflows:
//   - Consent lifecycle: lawful-basis validated consent records with a
//     one-way withdrawal transition
//   - Retention policies: review-date scheduling plus an append-only log of
//     actions taken under a policy
//   - DSAR handling: data subject access requests with the fixed 30-day
//     regulatory response deadline
//   - Breach assessment: a first-match-wins decision table deriving
//     severity, risk to rights, and whether supervisory-authority
//     notification is required
//
// Deadline arithmetic takes explicit time inputs, so due dates, review
// schedules, and overdue checks are reproducible under test.
package compliance

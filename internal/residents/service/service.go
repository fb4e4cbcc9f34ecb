// Package service orchestrates the resident lifecycle: registration,
// profile updates, the verification workflow, soft deletion, and the report
// and chart read models. Domain rules live in models; persistence behind the
// Store interface.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"civreg/internal/activity"
	"civreg/internal/analytics"
	"civreg/internal/platform/metrics"
	"civreg/internal/platform/middleware"
	"civreg/internal/reporting"
	"civreg/internal/residents/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/email"
	"civreg/pkg/platform/sentinel"
)

type Store interface {
	Create(ctx context.Context, r *models.Resident) error
	FindByID(ctx context.Context, residentID id.ResidentID) (*models.Resident, error)
	List(ctx context.Context) ([]*models.Resident, error)
	ListDeleted(ctx context.Context) ([]*models.Resident, error)
	Mutate(ctx context.Context, residentID id.ResidentID, fn func(*models.Resident) error) (*models.Resident, error)
	SoftDelete(ctx context.Context, residentID id.ResidentID, now time.Time) error
	Restore(ctx context.Context, residentID id.ResidentID) error
}

// Notifier delivers the downstream notification fired when a resident is
// approved. Delivery failures are logged, never surfaced to the caller.
type Notifier interface {
	NotifyApproved(ctx context.Context, residentID id.ResidentID, name string) error
}

type ActivityPublisher interface {
	Emit(ctx context.Context, entry activity.Entry) error
}

// Service orchestrates resident management.
type Service struct {
	store     Store
	notifier  Notifier
	logger    *slog.Logger
	publisher ActivityPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithActivityPublisher(publisher ActivityPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tracer: otel.Tracer("civreg/residents"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProfileInput carries the editable resident profile fields.
type ProfileInput struct {
	FirstName     string
	MiddleName    string
	LastName      string
	Suffix        string
	Age           int
	Sex           string
	CivilStatus   string
	Nationality   string
	Religion      string
	ContactNumber string
	Email         string
	Address       string
	Role          models.Role
}

func (in *ProfileInput) apply(r *models.Resident) {
	r.FirstName = strings.TrimSpace(in.FirstName)
	r.MiddleName = strings.TrimSpace(in.MiddleName)
	r.LastName = strings.TrimSpace(in.LastName)
	r.Suffix = strings.TrimSpace(in.Suffix)
	r.Age = in.Age
	r.Sex = in.Sex
	r.CivilStatus = in.CivilStatus
	r.Nationality = in.Nationality
	r.Religion = in.Religion
	r.ContactNumber = in.ContactNumber
	r.Email = in.Email
	r.Address = in.Address
	if in.Role != "" {
		r.Role = in.Role
	}
}

// Create registers a resident. The record starts pending verification with
// fresh timestamps. Self-registrations may arrive with only an email
// address; names are then derived from its local part.
func (s *Service) Create(ctx context.Context, actorID id.UserID, in ProfileInput) (*models.Resident, error) {
	if strings.TrimSpace(in.FirstName) == "" && strings.TrimSpace(in.LastName) == "" && in.Email != "" {
		in.FirstName, in.LastName = email.DeriveNameFromEmail(in.Email)
	}
	r, err := models.NewResident(id.NewResidentID(), in.FirstName, in.LastName, s.now())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	in.apply(r)

	if err := s.store.Create(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "resident already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create resident")
	}
	s.metrics.IncrementResidentsCreated()
	s.recordActivity(ctx, actorID, activity.ActionResidentCreated, r.ID, r.DisplayName())
	return r, nil
}

// Get loads one resident. Denied residents are blocked from detail reads, a
// read-side policy applied here rather than in the workflow itself.
func (s *Service) Get(ctx context.Context, residentID id.ResidentID) (*models.Resident, error) {
	r, err := s.find(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if r.Blocked() {
		return nil, dErrors.New(dErrors.CodeForbidden, "resident profile is blocked pending re-approval")
	}
	return r, nil
}

// Update edits profile fields and refreshes the modification timestamp.
// Denied residents cannot be edited until re-approved.
func (s *Service) Update(ctx context.Context, actorID id.UserID, residentID id.ResidentID, in ProfileInput) (*models.Resident, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first and last name are required")
	}
	r, err := s.store.Mutate(ctx, residentID, func(r *models.Resident) error {
		if r.Blocked() {
			return dErrors.New(dErrors.CodeForbidden, "resident profile is blocked pending re-approval")
		}
		if r.IsDeleted() {
			return dErrors.New(dErrors.CodeNotFound, "resident not found")
		}
		in.apply(r)
		r.Touch(s.now())
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to update resident")
	}
	s.recordActivity(ctx, actorID, activity.ActionResidentUpdated, residentID, r.DisplayName())
	return r, nil
}

// List returns active residents matching the filter, unordered.
func (s *Service) List(ctx context.Context, filter reporting.ResidentFilter) ([]*models.Resident, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residents")
	}
	return reporting.Apply(all, filter.Predicates(s.now())...), nil
}

// ListDeleted returns the recently-deleted set.
func (s *Service) ListDeleted(ctx context.Context) ([]*models.Resident, error) {
	out, err := s.store.ListDeleted(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list deleted residents")
	}
	return out, nil
}

// SoftDelete moves a resident to the recently-deleted set. Records are never
// hard-deleted.
func (s *Service) SoftDelete(ctx context.Context, actorID id.UserID, residentID id.ResidentID) error {
	if err := s.store.SoftDelete(ctx, residentID, s.now()); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeConflict, "resident is already deleted")
		}
		return s.mutationError(err, "failed to delete resident")
	}
	s.recordActivity(ctx, actorID, activity.ActionResidentDeleted, residentID, "")
	return nil
}

// Restore brings a soft-deleted resident back to the active set without
// altering its verification status.
func (s *Service) Restore(ctx context.Context, actorID id.UserID, residentID id.ResidentID) error {
	if err := s.store.Restore(ctx, residentID); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeConflict, "resident is not deleted")
		}
		return s.mutationError(err, "failed to restore resident")
	}
	s.recordActivity(ctx, actorID, activity.ActionResidentRestored, residentID, "")
	return nil
}

// Approve marks a resident verified and fires the downstream notification.
// Approving an already approved resident is a no-op that leaves timestamps
// untouched.
func (s *Service) Approve(ctx context.Context, actorID id.UserID, residentID id.ResidentID) (*models.Resident, error) {
	changed := false
	r, err := s.store.Mutate(ctx, residentID, func(r *models.Resident) error {
		changed = r.ApplyApproval(s.now())
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to approve resident")
	}
	if !changed {
		return r, nil
	}
	s.metrics.IncrementVerificationDecision("approved")
	s.recordActivity(ctx, actorID, activity.ActionVerificationApproved, residentID, r.DisplayName())
	if s.notifier != nil {
		if err := s.notifier.NotifyApproved(ctx, residentID, r.DisplayName()); err != nil {
			s.logWarn(ctx, "approval notification failed", "resident_id", residentID, "error", err)
		}
	}
	return r, nil
}

// Deny rejects a resident's verification. The comment is mandatory and
// validated before any state change.
func (s *Service) Deny(ctx context.Context, actorID id.UserID, residentID id.ResidentID, comment string) (*models.Resident, error) {
	changed := false
	r, err := s.store.Mutate(ctx, residentID, func(r *models.Resident) error {
		if err := r.CanDeny(comment); err != nil {
			return err
		}
		changed = r.ApplyDenial(comment, s.now())
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to deny resident")
	}
	if !changed {
		return r, nil
	}
	s.metrics.IncrementVerificationDecision("denied")
	s.recordActivity(ctx, actorID, activity.ActionVerificationDenied, residentID, comment)
	return r, nil
}

// Report assembles the tabular report over active residents.
func (s *Service) Report(ctx context.Context, filter reporting.ReportFilter) ([]reporting.Row, reporting.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "residents.Report")
	defer span.End()

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, reporting.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residents")
	}
	rows, summary := reporting.Assemble(all, filter, s.now())
	s.metrics.IncrementReportsAssembled()
	return rows, summary, nil
}

// Chart aggregates resident registration counts into the dense series for
// the requested window.
func (s *Service) Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error) {
	ctx, span := s.tracer.Start(ctx, "residents.Chart")
	defer span.End()

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residents")
	}
	series := analytics.Series(all, func(r *models.Resident) time.Time {
		return r.CreatedAt
	}, w, s.now())
	s.metrics.IncrementChartSeriesBuilt("residents")
	return series, nil
}

func (s *Service) find(ctx context.Context, residentID id.ResidentID) (*models.Resident, error) {
	r, err := s.store.FindByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resident not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resident")
	}
	return r, nil
}

func (s *Service) mutationError(err error, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "resident not found")
	}
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func (s *Service) recordActivity(ctx context.Context, actorID id.UserID, action string, residentID id.ResidentID, description string) {
	if s.logger != nil {
		args := []any{"action", action, "resident_id", residentID, "log_type", "activity"}
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.InfoContext(ctx, action, args...)
	}
	if s.publisher == nil {
		return
	}
	entry := activity.Entry{
		Action:      action,
		ModelType:   "resident",
		ModelID:     residentID.String(),
		Description: description,
	}
	if !actorID.IsNil() {
		actor := actorID
		entry.ActorID = &actor
	}
	_ = s.publisher.Emit(ctx, entry)
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}

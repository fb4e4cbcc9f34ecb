// Package service orchestrates project lifecycle, engagement, and chart
// aggregation. Domain rules live in models; persistence behind the Store
// interface.
package service

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
	"civreg/internal/projects/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/sentinel"
)

type Store interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Mutate(ctx context.Context, projectID id.ProjectID, fn func(*models.Project) error) (*models.Project, error)
	SaveReaction(ctx context.Context, r models.Reaction) (models.ReactionKind, error)
	ListReactions(ctx context.Context, projectID id.ProjectID) ([]models.Reaction, error)
	ListAllReactions(ctx context.Context) ([]models.Reaction, error)
	AddFeedback(ctx context.Context, f models.Feedback) error
	ListFeedback(ctx context.Context, projectID id.ProjectID) ([]models.Feedback, error)
}

// ReactionCounters is the optional cached tally layer. The durable store
// remains authoritative; reads fall back to it when the cache fails.
type ReactionCounters interface {
	Adjust(ctx context.Context, projectID id.ProjectID, kind, previous models.ReactionKind) error
	Tally(ctx context.Context, projectID id.ProjectID) (models.Tally, error)
	TallyAll(ctx context.Context, projectIDs []id.ProjectID) (map[id.ProjectID]models.Tally, error)
}

type ActivityPublisher interface {
	Emit(ctx context.Context, entry activity.Entry) error
}

// Tab selects a project list view. Posted and record are independent facets.
type Tab string

const (
	TabAll     Tab = ""
	TabPosted  Tab = "posted"
	TabRecords Tab = "records"
)

// ParseTab validates a raw list tab.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabAll, TabPosted, TabRecords:
		return Tab(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown project tab: "+s)
	}
}

// Service orchestrates project management and engagement counters.
type Service struct {
	store     Store
	counters  ReactionCounters
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

func WithActivityPublisher(publisher ActivityPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithReactionCounters(c ReactionCounters) Option {
	return func(s *Service) { s.counters = c }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tracer: otel.Tracer("civreg/projects"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the optional fields of a new project.
type CreateInput struct {
	Title       string
	Description string
}

func (s *Service) Create(ctx context.Context, actorID id.UserID, in CreateInput) (*models.Project, error) {
	p, err := models.NewProject(id.NewProjectID(), in.Title, s.now())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	p.Description = strings.TrimSpace(in.Description)

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "project already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
	}
	s.recordActivity(ctx, actorID, activity.ActionProjectCreated, p.ID, p.Title)
	return p, nil
}

func (s *Service) Get(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	p, err := s.store.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return p, nil
}

// List returns projects for one tab. Tab and search filters are conjunctive
// and order-independent.
func (s *Service) List(ctx context.Context, tab Tab, search string) ([]*models.Project, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]*models.Project, 0, len(all))
	for _, p := range all {
		switch tab {
		case TabPosted:
			if !p.IsPosted() {
				continue
			}
		case TabRecords:
			if !p.IsRecord() {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdateInput carries the editable project fields.
type UpdateInput struct {
	Title       string
	Description string
	Status      models.Status
}

func (s *Service) Update(ctx context.Context, actorID id.UserID, projectID id.ProjectID, in UpdateInput) (*models.Project, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "project title is required")
	}
	p, err := s.store.Mutate(ctx, projectID, func(p *models.Project) error {
		p.Title = strings.TrimSpace(in.Title)
		p.Description = strings.TrimSpace(in.Description)
		if in.Status != "" && in.Status != models.StatusCompleted {
			p.Status = in.Status
		}
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to update project")
	}
	s.recordActivity(ctx, actorID, activity.ActionProjectUpdated, projectID, p.Title)
	return p, nil
}

// Publish makes a project visible to residents. Idempotent.
func (s *Service) Publish(ctx context.Context, actorID id.UserID, projectID id.ProjectID) (*models.Project, error) {
	p, err := s.store.Mutate(ctx, projectID, func(p *models.Project) error {
		p.Publish(s.now())
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to publish project")
	}
	s.recordActivity(ctx, actorID, activity.ActionProjectPublished, projectID, p.Title)
	return p, nil
}

// Unpublish hides a project without changing its lifecycle status.
func (s *Service) Unpublish(ctx context.Context, actorID id.UserID, projectID id.ProjectID) (*models.Project, error) {
	p, err := s.store.Mutate(ctx, projectID, func(p *models.Project) error {
		p.Unpublish(s.now())
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to unpublish project")
	}
	s.recordActivity(ctx, actorID, activity.ActionProjectUpdated, projectID, p.Title)
	return p, nil
}

// Complete marks a project as a finished record.
func (s *Service) Complete(ctx context.Context, actorID id.UserID, projectID id.ProjectID, remarks string) (*models.Project, error) {
	p, err := s.store.Mutate(ctx, projectID, func(p *models.Project) error {
		p.Complete(strings.TrimSpace(remarks), s.now())
		return nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to complete project")
	}
	s.recordActivity(ctx, actorID, activity.ActionProjectCompleted, projectID, p.Title)
	return p, nil
}

// React records a user's vote and keeps the cached counters in step. A
// repeat of the same vote is a no-op for the counters.
func (s *Service) React(ctx context.Context, actorID id.UserID, projectID id.ProjectID, raw string) (models.Tally, error) {
	kind, err := models.ParseReactionKind(raw)
	if err != nil {
		return models.Tally{}, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	previous, err := s.store.SaveReaction(ctx, models.Reaction{
		ProjectID: projectID,
		UserID:    actorID,
		Kind:      kind,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Tally{}, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return models.Tally{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record reaction")
	}

	if s.counters != nil {
		if err := s.counters.Adjust(ctx, projectID, kind, previous); err != nil {
			s.logWarn(ctx, "reaction counter adjust failed", "project_id", projectID, "error", err)
		}
	}
	s.recordActivity(ctx, actorID, activity.ActionReactionRecorded, projectID, string(kind))
	return s.Tally(ctx, projectID)
}

// Tally returns a project's reaction counts, zero-valued when it has none.
// Cached counters are preferred; the durable store answers when the cache is
// absent or failing.
func (s *Service) Tally(ctx context.Context, projectID id.ProjectID) (models.Tally, error) {
	if s.counters != nil {
		t, err := s.counters.Tally(ctx, projectID)
		if err == nil {
			return t, nil
		}
		s.logWarn(ctx, "reaction counter read failed", "project_id", projectID, "error", err)
	}
	reactions, err := s.store.ListReactions(ctx, projectID)
	if err != nil {
		return models.Tally{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reactions")
	}
	return models.CountReactions(reactions), nil
}

// Tallies returns reaction counts for every project keyed by id. Projects
// without reactions resolve to the zero tally on lookup.
func (s *Service) Tallies(ctx context.Context) (map[id.ProjectID]models.Tally, error) {
	if s.counters != nil {
		projects, err := s.store.List(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
		}
		ids := make([]id.ProjectID, 0, len(projects))
		for _, p := range projects {
			ids = append(ids, p.ID)
		}
		tallies, err := s.counters.TallyAll(ctx, ids)
		if err == nil {
			return tallies, nil
		}
		s.logWarn(ctx, "reaction counter read failed", "error", err)
	}
	reactions, err := s.store.ListAllReactions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reactions")
	}
	return models.TallyByProject(reactions), nil
}

// AddFeedback attaches a comment to a project. Blank comments are rejected.
func (s *Service) AddFeedback(ctx context.Context, actorID id.UserID, projectID id.ProjectID, comment string) (*models.Feedback, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "feedback comment must not be blank")
	}
	f := models.Feedback{
		ID:        id.NewFeedbackID(),
		ProjectID: projectID,
		UserID:    actorID,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	if err := s.store.AddFeedback(ctx, f); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record feedback")
	}
	s.recordActivity(ctx, actorID, activity.ActionFeedbackRecorded, projectID, comment)
	return &f, nil
}

func (s *Service) ListFeedback(ctx context.Context, projectID id.ProjectID) ([]models.Feedback, error) {
	entries, err := s.store.ListFeedback(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list feedback")
	}
	return entries, nil
}

// Chart aggregates project creation counts into the dense series for the
// requested window.
func (s *Service) Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Chart")
	defer span.End()

	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	series := analytics.Series(projects, func(p *models.Project) time.Time {
		return p.CreatedAt
	}, w, s.now())
	s.metrics.IncrementChartSeriesBuilt("projects")
	return series, nil
}

func (s *Service) mutationError(err error, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func (s *Service) recordActivity(ctx context.Context, actorID id.UserID, action string, projectID id.ProjectID, description string) {
	if s.logger != nil {
		args := []any{"action", action, "project_id", projectID, "log_type", "activity"}
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
		ModelType:   "project",
		ModelID:     projectID.String(),
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

package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"civreg/internal/analytics"
	"civreg/internal/platform/middleware"
	"civreg/internal/projects/models"
	"civreg/internal/reporting"
	"civreg/internal/transport/http/shared"
	id "civreg/pkg/domain"
)

// ResidentReader is the slice of the resident service the dashboard needs.
type ResidentReader interface {
	Report(ctx context.Context, filter reporting.ReportFilter) ([]reporting.Row, reporting.Summary, error)
	Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error)
}

// ProjectReader is the slice of the project service the dashboard needs.
type ProjectReader interface {
	Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error)
	Tallies(ctx context.Context) (map[id.ProjectID]models.Tally, error)
}

// DashboardHandler serves the console landing aggregate. The independent
// reads fan out concurrently and the first failure cancels the rest.
type DashboardHandler struct {
	residents    ResidentReader
	projects     ProjectReader
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func NewDashboardHandler(residents ResidentReader, projects ProjectReader, logger *slog.Logger, jwtValidator middleware.JWTValidator) *DashboardHandler {
	return &DashboardHandler{
		residents:    residents,
		projects:     projects,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register registers the dashboard route with the chi router.
func (h *DashboardHandler) Register(r chi.Router) {
	r.With(middleware.RequireAuth(h.jwtValidator, h.logger)).
		Get("/dashboard", h.handleDashboard)
}

type dashboardResponse struct {
	ResidentSummary reporting.Summary  `json:"resident_summary"`
	ResidentSeries  []analytics.Bucket `json:"resident_series"`
	ProjectSeries   []analytics.Bucket `json:"project_series"`
	ReactionTotal   models.Tally       `json:"reaction_total"`
}

func (h *DashboardHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	var resp dashboardResponse

	g.Go(func() error {
		_, summary, err := h.residents.Report(ctx, reporting.ReportFilter{})
		resp.ResidentSummary = summary
		return err
	})
	g.Go(func() error {
		series, err := h.residents.Chart(ctx, analytics.Window{})
		resp.ResidentSeries = series
		return err
	})
	g.Go(func() error {
		series, err := h.projects.Chart(ctx, analytics.Window{})
		resp.ProjectSeries = series
		return err
	})
	g.Go(func() error {
		tallies, err := h.projects.Tallies(ctx)
		if err != nil {
			return err
		}
		resp.ReactionTotal = models.SumTallies(tallies)
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.WarnContext(r.Context(), "dashboard aggregation failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

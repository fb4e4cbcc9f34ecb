// Package handler exposes the activity log over HTTP. Read-only: entries are
// appended by the services, never through this surface.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"civreg/internal/activity"
	"civreg/internal/analytics"
	"civreg/internal/platform/middleware"
	"civreg/internal/reporting"
	"civreg/internal/transport/http/shared"
)

// Store reads the activity log.
type Store interface {
	List(ctx context.Context) ([]activity.Entry, error)
}

// Handler handles activity log endpoints.
type Handler struct {
	store        Store
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	now          func() time.Time
}

// New creates an activity Handler.
func New(store Store, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		store:        store,
		logger:       logger,
		jwtValidator: jwtValidator,
		now:          time.Now,
	}
}

// Register registers the activity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/activity", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/", h.handleList)
		r.Get("/chart", h.handleChart)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	q := r.URL.Query()
	preds := []reporting.Predicate[activity.Entry]{
		entryAction(q.Get("action")),
		entryModelType(q.Get("model_type")),
	}
	filtered := reporting.Apply(entries, preds...)

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	shared.WriteJSON(w, http.StatusOK, filtered)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	window := analytics.Window{Period: analytics.Period(q.Get("period"))}
	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		window.Year = year
	}
	if month, err := strconv.Atoi(q.Get("month")); err == nil {
		window.Month = time.Month(month)
	}
	series := analytics.Series(entries, func(e activity.Entry) time.Time {
		return e.CreatedAt
	}, window, h.now())
	shared.WriteJSON(w, http.StatusOK, series)
}

func entryAction(action string) reporting.Predicate[activity.Entry] {
	return func(e activity.Entry) bool {
		return action == "" || e.Action == action
	}
}

func entryModelType(modelType string) reporting.Predicate[activity.Entry] {
	return func(e activity.Entry) bool {
		return modelType == "" || e.ModelType == modelType
	}
}

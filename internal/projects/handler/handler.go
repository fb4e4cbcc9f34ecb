// Package handler exposes project management and engagement over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"civreg/internal/analytics"
	"civreg/internal/platform/middleware"
	"civreg/internal/projects/models"
	"civreg/internal/projects/service"
	"civreg/internal/transport/http/shared"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// Service defines the project operations the handler needs.
type Service interface {
	Create(ctx context.Context, actorID id.UserID, in service.CreateInput) (*models.Project, error)
	Get(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	List(ctx context.Context, tab service.Tab, search string) ([]*models.Project, error)
	Update(ctx context.Context, actorID id.UserID, projectID id.ProjectID, in service.UpdateInput) (*models.Project, error)
	Publish(ctx context.Context, actorID id.UserID, projectID id.ProjectID) (*models.Project, error)
	Unpublish(ctx context.Context, actorID id.UserID, projectID id.ProjectID) (*models.Project, error)
	Complete(ctx context.Context, actorID id.UserID, projectID id.ProjectID, remarks string) (*models.Project, error)
	React(ctx context.Context, actorID id.UserID, projectID id.ProjectID, kind string) (models.Tally, error)
	Tally(ctx context.Context, projectID id.ProjectID) (models.Tally, error)
	AddFeedback(ctx context.Context, actorID id.UserID, projectID id.ProjectID, comment string) (*models.Feedback, error)
	ListFeedback(ctx context.Context, projectID id.ProjectID) ([]models.Feedback, error)
	Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error)
}

// Handler handles project endpoints.
type Handler struct {
	projects     Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

// New creates a project Handler.
func New(projects Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		projects:     projects,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register registers the project routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/chart", h.handleChart)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Post("/publish", h.handlePublish)
			r.Post("/unpublish", h.handleUnpublish)
			r.Post("/complete", h.handleComplete)
			r.Get("/reactions", h.handleTally)
			r.Post("/reactions", h.handleReact)
			r.Get("/feedback", h.handleListFeedback)
			r.Post("/feedback", h.handleAddFeedback)
		})
	})
}

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type projectResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Published   bool       `json:"published"`
	Posted      bool       `json:"posted"`
	Record      bool       `json:"record"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
	Files       []string   `json:"uploaded_files,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	// FeedbackCount is only populated on the detail view.
	FeedbackCount int `json:"feedback_count,omitempty"`
}

func toResponse(p *models.Project) projectResponse {
	return projectResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		Published:   p.Published,
		Posted:      p.IsPosted(),
		Record:      p.IsRecord(),
		CompletedAt: p.CompletedAt,
		Remarks:     p.Remarks,
		Files:       p.UploadedFiles,
		CreatedAt:   p.CreatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.projects.Create(ctx, actorID(ctx), service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logFailure(ctx, "create project failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.projects.ListFeedback(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := toResponse(p)
	resp.FeedbackCount = models.IndexFeedback(entries).Count(projectID)
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tab, err := service.ParseTab(r.URL.Query().Get("tab"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	projects, err := h.projects.List(r.Context(), tab, r.URL.Query().Get("search"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toResponse(p))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	in := service.UpdateInput{Title: req.Title, Description: req.Description}
	if req.Status != "" {
		status, err := models.ParseStatus(req.Status)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.Status = status
	}
	updated, err := h.projects.Update(ctx, actorID(ctx), projectID, in)
	if err != nil {
		h.logFailure(ctx, "update project failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.Publish)
}

func (h *Handler) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.projects.Unpublish)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.UserID, id.ProjectID) (*models.Project, error)) {
	ctx := r.Context()
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := op(ctx, actorID(ctx), projectID)
	if err != nil {
		h.logFailure(ctx, "project transition failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(p))
}

type completeRequest struct {
	Remarks string `json:"remarks"`
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	p, err := h.projects.Complete(ctx, actorID(ctx), projectID, req.Remarks)
	if err != nil {
		h.logFailure(ctx, "complete project failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(p))
}

type reactRequest struct {
	Kind string `json:"kind"`
}

func (h *Handler) handleReact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	tally, err := h.projects.React(ctx, actorID(ctx), projectID, req.Kind)
	if err != nil {
		h.logFailure(ctx, "record reaction failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tally)
}

func (h *Handler) handleTally(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tally, err := h.projects.Tally(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tally)
}

type feedbackRequest struct {
	Comment string `json:"comment"`
}

type feedbackResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	f, err := h.projects.AddFeedback(ctx, actorID(ctx), projectID, req.Comment)
	if err != nil {
		h.logFailure(ctx, "record feedback failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, feedbackResponse{
		ID:        f.ID.String(),
		ProjectID: f.ProjectID.String(),
		UserID:    f.UserID.String(),
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	})
}

func (h *Handler) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.projects.ListFeedback(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]feedbackResponse, 0, len(entries))
	for _, f := range entries {
		out = append(out, feedbackResponse{
			ID:        f.ID.String(),
			ProjectID: f.ProjectID.String(),
			UserID:    f.UserID.String(),
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.projects.Chart(r.Context(), chartWindow(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, buckets)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func actorID(ctx context.Context) id.UserID {
	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		return id.UserID{}
	}
	return userID
}

func chartWindow(r *http.Request) analytics.Window {
	q := r.URL.Query()
	w := analytics.Window{Period: analytics.Period(q.Get("period"))}
	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		w.Year = year
	}
	if month, err := strconv.Atoi(q.Get("month")); err == nil {
		w.Month = time.Month(month)
	}
	return w.Normalize()
}

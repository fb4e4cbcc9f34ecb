// Package handler exposes the resident lifecycle over HTTP. It stays thin:
// parse, delegate to the service, translate errors.
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
	"civreg/internal/freshness"
	"civreg/internal/platform/middleware"
	"civreg/internal/reporting"
	"civreg/internal/residents/models"
	"civreg/internal/residents/service"
	"civreg/internal/transport/http/shared"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// Service defines the resident operations the handler needs.
type Service interface {
	Create(ctx context.Context, actorID id.UserID, in service.ProfileInput) (*models.Resident, error)
	Get(ctx context.Context, residentID id.ResidentID) (*models.Resident, error)
	Update(ctx context.Context, actorID id.UserID, residentID id.ResidentID, in service.ProfileInput) (*models.Resident, error)
	List(ctx context.Context, filter reporting.ResidentFilter) ([]*models.Resident, error)
	ListDeleted(ctx context.Context) ([]*models.Resident, error)
	SoftDelete(ctx context.Context, actorID id.UserID, residentID id.ResidentID) error
	Restore(ctx context.Context, actorID id.UserID, residentID id.ResidentID) error
	Approve(ctx context.Context, actorID id.UserID, residentID id.ResidentID) (*models.Resident, error)
	Deny(ctx context.Context, actorID id.UserID, residentID id.ResidentID, comment string) (*models.Resident, error)
	Report(ctx context.Context, filter reporting.ReportFilter) ([]reporting.Row, reporting.Summary, error)
	Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error)
}

// Handler handles resident endpoints.
type Handler struct {
	residents    Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	now          func() time.Time
}

// New creates a resident Handler.
func New(residents Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		residents:    residents,
		logger:       logger,
		jwtValidator: jwtValidator,
		now:          time.Now,
	}
}

// Register registers the resident routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/residents", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/deleted", h.handleListDeleted)
		r.Get("/report", h.handleReport)
		r.Get("/chart", h.handleChart)
		r.Route("/{residentID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Post("/restore", h.handleRestore)
			r.Post("/approve", h.handleApprove)
			r.Post("/deny", h.handleDeny)
		})
	})
}

type profileRequest struct {
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	Suffix        string `json:"suffix"`
	Age           int    `json:"age"`
	Sex           string `json:"sex"`
	CivilStatus   string `json:"civil_status"`
	Nationality   string `json:"nationality"`
	Religion      string `json:"religion"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Role          string `json:"role"`
}

func (req *profileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Suffix:        req.Suffix,
		Age:           req.Age,
		Sex:           req.Sex,
		CivilStatus:   req.CivilStatus,
		Nationality:   req.Nationality,
		Religion:      req.Religion,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		Role:          models.ParseRole(req.Role),
	}
}

type residentResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	FirstName          string     `json:"first_name"`
	MiddleName         string     `json:"middle_name,omitempty"`
	LastName           string     `json:"last_name"`
	Suffix             string     `json:"suffix,omitempty"`
	Age                int        `json:"age,omitempty"`
	Sex                string     `json:"sex,omitempty"`
	CivilStatus        string     `json:"civil_status,omitempty"`
	Nationality        string     `json:"nationality,omitempty"`
	Religion           string     `json:"religion,omitempty"`
	ContactNumber      string     `json:"contact_number,omitempty"`
	Email              string     `json:"email,omitempty"`
	Address            string     `json:"address,omitempty"`
	Role               string     `json:"role"`
	ForReview          bool       `json:"for_review"`
	UpdateStatus       string     `json:"update_status"`
	VerificationStatus string     `json:"verification_status"`
	Comment            string     `json:"verification_comment,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	LastModified       *time.Time `json:"last_modified,omitempty"`
}

func (h *Handler) toResponse(r *models.Resident) residentResponse {
	return residentResponse{
		ID:                 r.ID.String(),
		Name:               r.DisplayName(),
		FirstName:          r.FirstName,
		MiddleName:         r.MiddleName,
		LastName:           r.LastName,
		Suffix:             r.Suffix,
		Age:                r.Age,
		Sex:                r.Sex,
		CivilStatus:        r.CivilStatus,
		Nationality:        r.Nationality,
		Religion:           r.Religion,
		ContactNumber:      r.ContactNumber,
		Email:              r.Email,
		Address:            r.Address,
		Role:               string(r.Role),
		ForReview:          r.ForReview,
		UpdateStatus:       string(r.DerivedStatus(h.now())),
		VerificationStatus: string(r.Verification.Status),
		Comment:            r.Verification.Comment,
		CreatedAt:          r.CreatedAt,
		LastModified:       r.LastModified,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.residents.Create(ctx, actorID(ctx), req.input())
	if err != nil {
		h.logFailure(ctx, "create resident failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, h.toResponse(created))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resident, err := h.residents.Get(r.Context(), residentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.toResponse(resident))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	updated, err := h.residents.Update(ctx, actorID(ctx), residentID, req.input())
	if err != nil {
		h.logFailure(ctx, "update resident failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.toResponse(updated))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reporting.ResidentFilter{
		Search:    q.Get("search"),
		ForReview: q.Get("for_review") == "true",
		Role:      models.ParseRole(q.Get("tab")),
	}
	filter.Status = freshness.ParseStatus(q.Get("status"))
	if from, ok := parseDate(q.Get("from")); ok {
		filter.From = &from
	}
	if to, ok := parseDate(q.Get("to")); ok {
		filter.To = &to
	}
	residents, err := h.residents.List(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]residentResponse, 0, len(residents))
	for _, resident := range residents {
		out = append(out, h.toResponse(resident))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListDeleted(w http.ResponseWriter, r *http.Request) {
	residents, err := h.residents.ListDeleted(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]residentResponse, 0, len(residents))
	for _, resident := range residents {
		out = append(out, h.toResponse(resident))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.residents.SoftDelete(ctx, actorID(ctx), residentID); err != nil {
		h.logFailure(ctx, "delete resident failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.residents.Restore(ctx, actorID(ctx), residentID); err != nil {
		h.logFailure(ctx, "restore resident failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	approved, err := h.residents.Approve(ctx, actorID(ctx), residentID)
	if err != nil {
		h.logFailure(ctx, "approve resident failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.toResponse(approved))
}

type denyRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) handleDeny(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req denyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	denied, err := h.residents.Deny(ctx, actorID(ctx), residentID, req.Comment)
	if err != nil {
		h.logFailure(ctx, "deny resident failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.toResponse(denied))
}

type reportResponse struct {
	Columns []string          `json:"columns"`
	Rows    []reporting.Row   `json:"rows"`
	Summary reporting.Summary `json:"summary"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reporting.ReportFilter{
		UpdateStatus:       freshness.ParseStatus(q.Get("update_status")),
		VerificationStatus: models.ParseVerificationStatus(q.Get("verification_status")),
		SortBy:             q.Get("sort_by"),
		SortOrder:          q.Get("sort_order"),
	}
	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		filter.Year = year
	}
	if month, err := strconv.Atoi(q.Get("month")); err == nil {
		filter.Month = time.Month(month)
	}
	rows, summary, err := h.residents.Report(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reportResponse{
		Columns: reporting.Columns(),
		Rows:    rows,
		Summary: summary,
	})
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.residents.Chart(r.Context(), chartWindow(r))
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

// actorID resolves the authenticated user, nil UUID when the claim is
// missing or malformed.
func actorID(ctx context.Context) id.UserID {
	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		return id.UserID{}
	}
	return userID
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	return t, err == nil
}

// chartWindow reads the shared {period, year, month} query contract.
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

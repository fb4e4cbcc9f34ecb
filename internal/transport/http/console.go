package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"civreg/internal/analytics"
	"civreg/internal/freshness"
	"civreg/internal/platform/middleware"
	"civreg/internal/reporting"
	"civreg/internal/residents/models"
	"civreg/internal/transport/http/shared"
	"civreg/internal/viewstate"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// ConsoleService is the slice of the resident service the console view needs.
type ConsoleService interface {
	List(ctx context.Context, filter reporting.ResidentFilter) ([]*models.Resident, error)
	Report(ctx context.Context, filter reporting.ReportFilter) ([]reporting.Row, reporting.Summary, error)
	Chart(ctx context.Context, w analytics.Window) ([]analytics.Bucket, error)
}

// ConsoleHandler keeps each admin's list-view state server side as one
// immutable value updated by discrete transitions. Every transition issues a
// new fetch sequence; record fetches carry that sequence back, and responses
// for superseded sequences are rejected so a slow early fetch can never
// overwrite the result of a later one.
type ConsoleHandler struct {
	residents    ConsoleService
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	now          func() time.Time

	mu       sync.Mutex
	sessions map[id.UserID]*consoleSession
}

type consoleSession struct {
	mu   sync.Mutex
	view viewstate.ViewState
	seq  viewstate.Sequencer
}

func NewConsoleHandler(residents ConsoleService, logger *slog.Logger, jwtValidator middleware.JWTValidator) *ConsoleHandler {
	return &ConsoleHandler{
		residents:    residents,
		logger:       logger,
		jwtValidator: jwtValidator,
		now:          time.Now,
		sessions:     make(map[id.UserID]*consoleSession),
	}
}

// Register registers the console routes with the chi router.
func (h *ConsoleHandler) Register(r chi.Router) {
	r.Route("/console", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/view", h.handleGetView)
		r.Post("/view", h.handleTransition)
		r.Get("/records", h.handleRecords)
	})
}

func (h *ConsoleHandler) session(actor id.UserID) *consoleSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[actor]
	if !ok {
		s = &consoleSession{view: viewstate.New()}
		h.sessions[actor] = s
	}
	return s
}

type transitionRequest struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Order  string `json:"order,omitempty"`
}

type reportView struct {
	UpdateStatus       freshness.Status          `json:"update_status,omitempty"`
	VerificationStatus models.VerificationStatus `json:"verification_status,omitempty"`
	Year               int                       `json:"year,omitempty"`
	Month              int                       `json:"month,omitempty"`
	SortBy             string                    `json:"sort_by"`
	SortOrder          string                    `json:"sort_order"`
}

type windowView struct {
	Period string `json:"period"`
	Year   int    `json:"year,omitempty"`
	Month  int    `json:"month,omitempty"`
}

type viewResponse struct {
	Search    string           `json:"search,omitempty"`
	Status    freshness.Status `json:"status,omitempty"`
	Tab       models.Role      `json:"tab,omitempty"`
	ForReview bool             `json:"for_review"`
	Report    reportView       `json:"report"`
	Window    windowView       `json:"window"`
	FetchSeq  uint64           `json:"fetch_seq"`
}

func viewBody(v viewstate.ViewState, seq uint64) viewResponse {
	return viewResponse{
		Search:    v.Search,
		Status:    v.Status,
		Tab:       v.Tab,
		ForReview: v.ForReview,
		Report: reportView{
			UpdateStatus:       v.Report.UpdateStatus,
			VerificationStatus: v.Report.VerificationStatus,
			Year:               v.Report.Year,
			Month:              int(v.Report.Month),
			SortBy:             v.Report.SortBy,
			SortOrder:          v.Report.SortOrder,
		},
		Window: windowView{
			Period: string(v.Window.Period),
			Year:   v.Window.Year,
			Month:  int(v.Window.Month),
		},
		FetchSeq: seq,
	}
}

func (h *ConsoleHandler) handleGetView(w http.ResponseWriter, r *http.Request) {
	s := h.session(consoleActor(r.Context()))
	s.mu.Lock()
	body := viewBody(s.view, s.seq.Next())
	s.mu.Unlock()
	shared.WriteJSON(w, http.StatusOK, body)
}

// handleTransition applies one reducer transition and hands back the new
// state together with the sequence to use for the follow-up records fetch.
func (h *ConsoleHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	s := h.session(consoleActor(r.Context()))
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := applyTransition(s.view, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	s.view = next
	shared.WriteJSON(w, http.StatusOK, viewBody(s.view, s.seq.Next()))
}

func applyTransition(v viewstate.ViewState, req transitionRequest) (viewstate.ViewState, error) {
	switch req.Action {
	case "search":
		return v.WithSearch(req.Value), nil
	case "status":
		return v.WithStatus(freshness.ParseStatus(req.Value)), nil
	case "tab":
		return v.WithTab(models.ParseRole(req.Value)), nil
	case "for_review":
		return v.WithForReview(req.Value == "true"), nil
	case "sort":
		return v.WithSort(req.Value, req.Order), nil
	case "year":
		year, err := strconv.Atoi(req.Value)
		if err != nil {
			return v, dErrors.New(dErrors.CodeValidation, "year must be a number")
		}
		return v.SelectYear(year), nil
	case "month":
		month, err := strconv.Atoi(req.Value)
		if err != nil {
			return v, dErrors.New(dErrors.CodeValidation, "month must be a number")
		}
		return v.SelectMonth(time.Month(month))
	case "reset":
		return v.Reset(), nil
	default:
		return v, dErrors.New(dErrors.CodeBadRequest, "unknown view transition")
	}
}

type consoleRecord struct {
	ID                 id.ResidentID             `json:"id"`
	Name               string                    `json:"name"`
	UpdateStatus       freshness.Status          `json:"update_status"`
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	ForReview          bool                      `json:"for_review"`
}

type recordsResponse struct {
	Seq     uint64             `json:"seq"`
	Records []consoleRecord    `json:"records"`
	Summary reporting.Summary  `json:"summary"`
	Series  []analytics.Bucket `json:"series"`
}

// handleRecords resolves the stored view into the resident list, summary,
// and chart series. The seq query parameter must be the latest one issued;
// anything older is a superseded fetch and is discarded.
func (h *ConsoleHandler) handleRecords(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseUint(r.URL.Query().Get("seq"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "seq query parameter is required"))
		return
	}

	s := h.session(consoleActor(r.Context()))
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()

	ctx := r.Context()
	residents, err := h.residents.List(ctx, view.Filter())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	_, summary, err := h.residents.Report(ctx, view.Report)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	series, err := h.residents.Chart(ctx, view.Window)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	now := h.now()
	records := make([]consoleRecord, 0, len(residents))
	for _, res := range residents {
		records = append(records, consoleRecord{
			ID:                 res.ID,
			Name:               res.DisplayName(),
			UpdateStatus:       res.DerivedStatus(now),
			VerificationStatus: res.Verification.Status,
			ForReview:          res.ForReview,
		})
	}

	resp := recordsResponse{Seq: seq, Records: records, Summary: summary, Series: series}
	s.mu.Lock()
	err = s.seq.Apply(seq, func() {})
	s.mu.Unlock()
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func consoleActor(ctx context.Context) id.UserID {
	actor, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		return id.UserID{}
	}
	return actor
}

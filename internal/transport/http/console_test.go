package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"

	"civreg/internal/platform/middleware"
	"civreg/internal/residents/service"
	"civreg/internal/residents/store"
	id "civreg/pkg/domain"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	return &middleware.JWTClaims{UserID: "b3e4f5a6-1c2d-4e3f-9a8b-7c6d5e4f3a2b", Role: "admin"}, nil
}

func newConsoleRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	svc := service.New(seededResidentStore(t), service.WithLogger(logger))
	h := NewConsoleHandler(svc, logger, stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func seededResidentStore(t *testing.T) *store.InMemory {
	t.Helper()
	s := store.NewInMemory()
	svc := service.New(s)
	for _, name := range []string{"Maria", "Jose", "Ana"} {
		_, err := svc.Create(t.Context(), id.NewUserID(), service.ProfileInput{
			FirstName: name,
			LastName:  "Santos",
		})
		if err != nil {
			t.Fatalf("seed resident: %v", err)
		}
	}
	return s
}

func do(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type viewBodyJSON struct {
	Search   string `json:"search"`
	FetchSeq uint64 `json:"fetch_seq"`
	Report   struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	} `json:"report"`
	Window struct {
		Period string `json:"period"`
	} `json:"window"`
}

func transition(t *testing.T, router http.Handler, action, value string) viewBodyJSON {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/console/view", map[string]string{"action": action, "value": value})
	if rec.Code != http.StatusOK {
		t.Fatalf("transition %s=%q: expected 200, got %d: %s", action, value, rec.Code, rec.Body.String())
	}
	var view viewBodyJSON
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestViewStartsAtDefaults(t *testing.T) {
	router := newConsoleRouter(t)

	rec := do(t, router, http.MethodGet, "/console/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var view viewBodyJSON
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Window.Period != "all" {
		t.Fatalf("expected trailing window by default, got %q", view.Window.Period)
	}
	if view.FetchSeq == 0 {
		t.Fatalf("expected a fetch sequence to be issued")
	}
}

func TestMonthRequiresYear(t *testing.T) {
	router := newConsoleRouter(t)

	rec := do(t, router, http.MethodPost, "/console/view", map[string]string{"action": "month", "value": "6"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 selecting a month without a year, got %d", rec.Code)
	}

	transition(t, router, "year", "2025")
	view := transition(t, router, "month", "6")
	if view.Report.Year != 2025 || view.Report.Month != 6 {
		t.Fatalf("expected 2025/6 selection, got %+v", view.Report)
	}
	if view.Window.Period != "month" {
		t.Fatalf("expected month window, got %q", view.Window.Period)
	}

	// Choosing a new year resets the month.
	view = transition(t, router, "year", "2024")
	if view.Report.Month != 0 {
		t.Fatalf("selecting a year must reset the month, got %d", view.Report.Month)
	}
}

func TestRecordsRejectSupersededFetch(t *testing.T) {
	router := newConsoleRouter(t)

	first := transition(t, router, "search", "maria")
	second := transition(t, router, "search", "santos")

	// The early fetch arrives after a newer transition: discard it.
	rec := do(t, router, http.MethodGet, "/console/records?seq="+itoa(first.FetchSeq), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for superseded fetch, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/console/records?seq="+itoa(second.FetchSeq), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for current fetch, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Records []struct {
			Name string `json:"name"`
		} `json:"records"`
		Series []json.RawMessage `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(resp.Records) != 3 {
		t.Fatalf("expected all Santos residents for search %q, got %d", "santos", len(resp.Records))
	}
	if len(resp.Series) != 12 {
		t.Fatalf("expected trailing 12-month series, got %d", len(resp.Series))
	}

	// Replaying the applied sequence is also stale.
	rec = do(t, router, http.MethodGet, "/console/records?seq="+itoa(second.FetchSeq), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 replaying an applied fetch, got %d", rec.Code)
	}
}

func TestRecordsRequireSeq(t *testing.T) {
	router := newConsoleRouter(t)
	rec := do(t, router, http.MethodGet, "/console/records", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without seq, got %d", rec.Code)
	}
}

func TestSearchTransitionNarrowsRecords(t *testing.T) {
	router := newConsoleRouter(t)

	view := transition(t, router, "search", "maria")
	rec := do(t, router, http.MethodGet, "/console/records?seq="+itoa(view.FetchSeq), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Records []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"records"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].Name != "Maria Santos" {
		t.Fatalf("expected only Maria Santos, got %+v", resp.Records)
	}
	if _, err := id.ParseResidentID(resp.Records[0].ID); err != nil {
		t.Fatalf("record id should be the canonical uuid string, got %q", resp.Records[0].ID)
	}
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

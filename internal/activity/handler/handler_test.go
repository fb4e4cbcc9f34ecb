package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"civreg/internal/activity"
	"civreg/internal/platform/middleware"
	id "civreg/pkg/domain"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	return &middleware.JWTClaims{UserID: id.NewUserID().String(), Role: "admin"}, nil
}

func newActivityRouter(t *testing.T, entries ...activity.Entry) http.Handler {
	t.Helper()
	store := activity.NewInMemoryStore()
	for _, e := range entries {
		if err := store.Append(context.Background(), e); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}
	h := New(store, slog.New(slog.DiscardHandler), stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func entry(action, modelType string, age time.Duration) activity.Entry {
	return activity.Entry{
		ID:        id.NewActivityID(),
		Action:    action,
		ModelType: modelType,
		CreatedAt: time.Now().UTC().Add(-age),
	}
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListFiltersByActionAndModel(t *testing.T) {
	router := newActivityRouter(t,
		entry(activity.ActionResidentCreated, "resident", time.Hour),
		entry(activity.ActionResidentUpdated, "resident", time.Minute),
		entry(activity.ActionProjectCreated, "project", time.Second),
	)

	cases := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?model_type=resident", 2},
		{"?action=" + activity.ActionProjectCreated, 1},
		{"?model_type=resident&action=" + activity.ActionProjectCreated, 0},
		{"?limit=2", 2},
	}
	for _, tc := range cases {
		rec := get(t, router, "/activity/"+tc.query)
		if rec.Code != http.StatusOK {
			t.Fatalf("query %q: expected 200, got %d", tc.query, rec.Code)
		}
		var entries []json.RawMessage
		if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
			t.Fatalf("query %q: decode: %v", tc.query, err)
		}
		if len(entries) != tc.want {
			t.Fatalf("query %q: expected %d entries, got %d", tc.query, tc.want, len(entries))
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	older := entry(activity.ActionResidentCreated, "resident", time.Hour)
	newer := entry(activity.ActionResidentUpdated, "resident", time.Minute)
	router := newActivityRouter(t, older, newer)

	rec := get(t, router, "/activity/")
	var entries []struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != activity.ActionResidentUpdated {
		t.Fatalf("expected newest entry first, got %+v", entries)
	}
}

func TestListSerializesIDsAsUUIDStrings(t *testing.T) {
	seeded := entry(activity.ActionResidentCreated, "resident", time.Hour)
	actor := id.NewUserID()
	seeded.ActorID = &actor
	router := newActivityRouter(t, seeded)

	rec := get(t, router, "/activity/")
	var entries []struct {
		ID      string `json:"id"`
		ActorID string `json:"actor_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != seeded.ID.String() {
		t.Fatalf("entry id should be the canonical uuid string, got %q", entries[0].ID)
	}
	if entries[0].ActorID != actor.String() {
		t.Fatalf("actor id should be the canonical uuid string, got %q", entries[0].ActorID)
	}
}

func TestChartBucketsTrailingYear(t *testing.T) {
	router := newActivityRouter(t,
		entry(activity.ActionResidentCreated, "resident", time.Hour),
		entry(activity.ActionResidentUpdated, "resident", 2*time.Hour),
	)

	rec := get(t, router, "/activity/chart")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from chart, got %d", rec.Code)
	}
	var buckets []struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&buckets); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if len(buckets) != 12 {
		t.Fatalf("expected dense 12-month series, got %d buckets", len(buckets))
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total != 2 {
		t.Fatalf("expected both entries in the current month bucket, got %d", total)
	}
}

func TestAuthRequired(t *testing.T) {
	router := newActivityRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/activity/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}

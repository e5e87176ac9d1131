package http_api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

type fixedStatus models.SyncStatus

func (f fixedStatus) Status() models.SyncStatus { return models.SyncStatus(f) }

type fakeLeaderboard struct {
	users     []*models.User
	err       error
	lastLimit int
}

func (f *fakeLeaderboard) Leaderboard(_ context.Context, limit int) ([]*models.User, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.users) {
		return f.users[:limit], nil
	}
	return f.users, nil
}

func get(t *testing.T, s *HTTPServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	live := NewHTTPServer(fixedStatus{State: models.StateLiveSubscribed}, nil, 0, false, logger.NewNop())
	if rec := get(t, live, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("live health = %d", rec.Code)
	}

	stopped := NewHTTPServer(fixedStatus{State: models.StateStopped}, nil, 0, false, logger.NewNop())
	if rec := get(t, stopped, "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("stopped health = %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	status := fixedStatus{
		State:     models.StateHistoricalReplay,
		Cursor:    120,
		LastBlock: 118,
		Restarts:  2,
		Stats:     models.ProjectionStats{Applied: 7, Duplicates: 1},
	}
	s := NewHTTPServer(status, nil, 0, false, logger.NewNop())

	rec := get(t, s, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}

	var got models.SyncStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != models.StateHistoricalReplay || got.Cursor != 120 || got.Stats.Applied != 7 || got.Restarts != 2 {
		t.Fatalf("status = %+v", got)
	}
}

func TestLeaderboard(t *testing.T) {
	board := &fakeLeaderboard{users: []*models.User{
		{Address: "cb01", Username: "alice", Earnings: models.Earnings{Matrix: 10, Total: 10}},
		{Address: "cb02", Username: "bob", Earnings: models.Earnings{Level: 4, Total: 4}},
	}}
	s := NewHTTPServer(fixedStatus{}, board, 0, false, logger.NewNop())

	rec := get(t, s, "/api/v1/leaderboard?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var body struct {
		Users []LeaderboardEntry `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Users) != 1 || body.Users[0].Rank != 1 || body.Users[0].Username != "alice" || body.Users[0].Earnings.Total != 10 {
		t.Fatalf("users = %+v", body.Users)
	}

	get(t, s, "/api/v1/leaderboard?limit=5000")
	if board.lastLimit != maxLeaderboardLimit {
		t.Fatalf("limit not capped: %d", board.lastLimit)
	}
	get(t, s, "/api/v1/leaderboard")
	if board.lastLimit != defaultLeaderboardLimit {
		t.Fatalf("default limit = %d", board.lastLimit)
	}

	if rec := get(t, s, "/api/v1/leaderboard?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit code = %d", rec.Code)
	}

	board.err = errors.New("db down")
	if rec := get(t, s, "/api/v1/leaderboard"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("failing store code = %d", rec.Code)
	}

	none := NewHTTPServer(fixedStatus{}, nil, 0, false, logger.NewNop())
	if rec := get(t, none, "/api/v1/leaderboard"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("no store code = %d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	s := NewHTTPServer(fixedStatus{}, nil, 0, false, logger.NewNop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d", rec.Code)
	}
}

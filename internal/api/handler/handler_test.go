package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-data/internal/cache"
)

type call struct {
	name string
	args []any
}

// fakeDB answers prepared statements from canned JSON.
type fakeDB struct {
	mu      sync.Mutex
	results map[string][]byte
	err     error
	calls   []call
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *[]byte:
		*d = r.data
	case *int:
		*d = 1
	}
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{sql, args})
	return fakeRow{data: f.results[sql], err: f.err}
}

func router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health/db", h.HealthCheckDB)
	r.Get("/api/v1/kinds", h.ListKinds)
	r.Get("/api/v1/records/{folder}/{table}", h.GetRecords)
	return r
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetRecords(t *testing.T) {
	db := &fakeDB{results: map[string][]byte{"records_by_kind": []byte(`[{"player":"Kobe Bryant","salary":1000000}]`)}}
	h := router(New(db, cache.New(true)))

	rec := get(t, h, "/api/v1/records/teams_stats/salaries?season=1997-98&team=lal&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"player":"Kobe Bryant","salary":1000000}]`, rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.Len(t, db.calls, 1)
	assert.Equal(t, []any{"teams_stats/salaries", "1997-98", "lal", 10}, db.calls[0].args)

	etag := rec.Header().Get("ETag")
	rec = get(t, h, "/api/v1/records/teams_stats/salaries?season=1997-98&team=LAL&limit=10")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Len(t, db.calls, 1)

	rec = get(t, h, "/api/v1/records/teams_stats/salaries?season=1997-98&team=LAL&limit=10", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestGetRecordsTeamName(t *testing.T) {
	db := &fakeDB{results: map[string][]byte{"records_by_kind": []byte(`[{"team":"Boston Celtics"}]`)}}
	h := router(New(db, cache.New(true)))

	rec := get(t, h, "/api/v1/records/conferences/conferences?team=Boston%20Celtics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, db.calls, 1)
	assert.Equal(t, []any{"conferences/conferences", nil, "Boston Celtics", defaultLimit}, db.calls[0].args)

	rec = get(t, h, "/api/v1/records/conferences/conferences?team=boston%20celtics")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Len(t, db.calls, 1)
}

func TestGetRecordsDefaults(t *testing.T) {
	db := &fakeDB{results: map[string][]byte{"records_by_kind": []byte(`[]`)}}
	h := router(New(db, cache.New(false)))

	rec := get(t, h, "/api/v1/records/seasons/seasons")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"seasons/seasons", nil, nil, defaultLimit}, db.calls[0].args)
}

func TestGetRecordsValidation(t *testing.T) {
	h := router(New(&fakeDB{}, cache.New(true)))

	tests := []struct {
		target string
		status int
	}{
		{"/api/v1/records/teams_stats/unknown", http.StatusNotFound},
		{"/api/v1/records/seasons/seasons?season=1997", http.StatusBadRequest},
		{"/api/v1/records/seasons/seasons?limit=0", http.StatusBadRequest},
		{"/api/v1/records/seasons/seasons?limit=9999", http.StatusBadRequest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, get(t, h, tt.target).Code, tt.target)
	}
}

func TestGetRecordsQueryFailure(t *testing.T) {
	h := router(New(&fakeDB{err: errors.New("relation does not exist")}, cache.New(true)))
	rec := get(t, h, "/api/v1/records/seasons/seasons")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "relation does not exist")
}

func TestListKinds(t *testing.T) {
	db := &fakeDB{results: map[string][]byte{"record_kinds": []byte(`[{"kind":"seasons/seasons","rows":79}]`)}}
	rec := get(t, router(New(db, cache.New(true))), "/api/v1/kinds")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"kind":"seasons/seasons","rows":79}]`, rec.Body.String())
}

func TestHealthCheckDB(t *testing.T) {
	rec := get(t, router(New(&fakeDB{}, cache.New(true))), "/health/db")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, router(New(&fakeDB{err: errors.New("down")}, cache.New(true))), "/health/db")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disconnected")
}

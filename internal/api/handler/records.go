package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/bbref-data/internal/api/respond"
	"github.com/albapepper/bbref-data/internal/cache"
	"github.com/albapepper/bbref-data/internal/season"
)

const (
	defaultLimit = 1000
	maxLimit     = 5000
)

// ListKinds returns the loaded record kinds.
// @Summary List loaded kinds
// @Description Returns every loaded kind with its row count and last load time.
// @Tags records
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /kinds [get]
func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.Key("kinds"), cache.TTLKinds, func(ctx context.Context) ([]byte, error) {
		var data []byte
		err := h.db.QueryRow(ctx, "record_kinds").Scan(&data)
		return data, err
	})
}

// GetRecords returns the records of one kind.
// @Summary Records of a kind
// @Description Returns the loaded records of folder/table in extraction order, optionally narrowed by season and team.
// @Tags records
// @Produce json
// @Param folder path string true "Output folder" example(teams_stats)
// @Param table path string true "Table name" example(salaries)
// @Param season query string false "Season, YYYY-YY" example(1997-98)
// @Param team query string false "Team abbreviation or name, any case" example(LAL)
// @Param limit query int false "Maximum rows (1-5000)" default(1000)
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /records/{folder}/{table} [get]
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "folder") + "/" + chi.URLParam(r, "table")
	if !h.kinds[kind] {
		respond.WriteErrorDetail(w, http.StatusNotFound, respond.CodeNotFound, "Unknown kind", kind)
		return
	}

	q := r.URL.Query()
	seasonParam := q.Get("season")
	if seasonParam != "" {
		if _, err := season.YearFromSeason(seasonParam); err != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, respond.CodeBadRequest, "Invalid season", err.Error())
			return
		}
	}
	// Team codes and full names both match regardless of case.
	team := strings.TrimSpace(q.Get("team"))

	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			respond.WriteErrorDetail(w, http.StatusBadRequest, respond.CodeBadRequest, "Invalid limit",
				"limit must be between 1 and "+strconv.Itoa(maxLimit))
			return
		}
		limit = n
	}

	key := cache.Key("records", kind, seasonParam, strings.ToUpper(team), strconv.Itoa(limit))
	h.serveCached(w, r, key, cache.TTLRecords, func(ctx context.Context) ([]byte, error) {
		var data []byte
		err := h.db.QueryRow(ctx, "records_by_kind", kind, nullable(seasonParam), nullable(team), limit).Scan(&data)
		return data, err
	})
}

// nullable maps an empty filter to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS generation_stats (
    ancestry        TEXT NOT NULL,
    strategy        TEXT NOT NULL,
    total           INTEGER NOT NULL DEFAULT 1,
    last_generated  DATETIME NOT NULL,
    PRIMARY KEY (ancestry, strategy)
);
`

// GenerationStat is one per-(ancestry, strategy) counter row.
type GenerationStat struct {
	Ancestry      string    `json:"ancestry"`
	Strategy      string    `json:"strategy"`
	Total         int64     `json:"total"`
	LastGenerated time.Time `json:"last_generated"`
}

// GenerationSummary provides a high-level overview of all collected counters.
type GenerationSummary struct {
	TotalGenerated int64 `json:"total_generated"`
	Ancestries     int64 `json:"ancestries"`
	Strategies     int64 `json:"strategies"`
}

// StatsAPI holds the dependencies for the generation counter handlers.
type StatsAPI struct {
	db     *sql.DB
	logger *slog.Logger
}

func setupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

func NewStatsAPI(db *sql.DB, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		db:     db,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/generation", s.handleGeneration)
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
}

// RecordGeneration bumps the counter for one produced name. Counting is
// best-effort: a failure is logged and never surfaces to the caller, so a
// broken stats table cannot block generation.
func (s *StatsAPI) RecordGeneration(ctx context.Context, ancestry, strategy string) {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO generation_stats (ancestry, strategy, total, last_generated) VALUES (?, ?, 1, ?)
        ON CONFLICT(ancestry, strategy) DO UPDATE SET total = total + 1, last_generated = ?
    `, ancestry, strategy, now, now)
	if err != nil {
		s.logger.Warn("Failed to record generation counter", "ancestry", ancestry, "strategy", strategy, "error", err)
	}
}

// handleGeneration serves and resets the per-(ancestry, strategy) counters.
func (s *StatsAPI) handleGeneration(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !hasScope(r, "stats:read") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'stats:read' scope")
			return
		}
		rows, err := s.db.QueryContext(r.Context(), "SELECT ancestry, strategy, total, last_generated FROM generation_stats ORDER BY total DESC")
		if err != nil {
			s.logger.Error("Failed to query generation stats", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
			return
		}
		defer func(rows *sql.Rows) {
			_ = rows.Close()
		}(rows)

		var results []GenerationStat
		for rows.Next() {
			var stat GenerationStat
			if err = rows.Scan(&stat.Ancestry, &stat.Strategy, &stat.Total, &stat.LastGenerated); err != nil {
				s.logger.Error("Failed to scan generation stat", "error", err)
				continue
			}
			results = append(results, stat)
		}
		respondWithJSON(w, http.StatusOK, results)

	case http.MethodDelete:
		if !hasScope(r, "admin") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'admin' scope")
			return
		}
		if _, err := s.db.ExecContext(r.Context(), "DELETE FROM generation_stats"); err != nil {
			s.logger.Error("Failed to reset generation stats", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
			return
		}
		s.logger.Info("Generation stats reset via API")
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "stats:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'stats:read' scope")
		return
	}
	var summary GenerationSummary
	_ = s.db.QueryRowContext(r.Context(), "SELECT COALESCE(SUM(total), 0) FROM generation_stats").Scan(&summary.TotalGenerated)
	_ = s.db.QueryRowContext(r.Context(), "SELECT COUNT(DISTINCT ancestry) FROM generation_stats").Scan(&summary.Ancestries)
	_ = s.db.QueryRowContext(r.Context(), "SELECT COUNT(DISTINCT strategy) FROM generation_stats").Scan(&summary.Strategies)
	respondWithJSON(w, http.StatusOK, summary)
}

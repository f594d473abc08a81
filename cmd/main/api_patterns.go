package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/halvdan/onomast/pkg/namegen"
	"github.com/halvdan/onomast/pkg/patternstore"
)

// PatternsAPI holds the dependencies for the pattern catalog API handlers.
type PatternsAPI struct {
	store  *patternstore.Store
	gen    *namegen.Generator
	logger *slog.Logger
}

// NewPatternsAPI creates a new instance of the PatternsAPI.
func NewPatternsAPI(store *patternstore.Store, gen *namegen.Generator, logger *slog.Logger) *PatternsAPI {
	return &PatternsAPI{
		store:  store,
		gen:    gen,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for the /api/patterns and
// /api/heritages endpoints.
func (p *PatternsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/patterns/refresh", p.handleRefresh)
	mux.HandleFunc("/api/patterns", p.handleList)
	mux.HandleFunc("/api/patterns/", p.handlePatternSet)
	mux.HandleFunc("/api/heritages", p.handleHeritages)
}

// handleRefresh triggers a manual reload of pattern files from disk.
func (p *PatternsAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "patterns:write") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'patterns:write' scope")
		return
	}
	if err := p.store.Refresh(); err != nil {
		p.logger.Error("API triggered pattern refresh failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh patterns: %v", err))
		return
	}
	// Chains trained from the old pattern data are stale now.
	p.gen.ClearChains()
	p.logger.Info("Patterns refreshed via API")
	w.WriteHeader(http.StatusNoContent)
}

// handleList returns the ancestry IDs of every loaded pattern set.
func (p *PatternsAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "patterns:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'patterns:read' scope")
		return
	}
	respondWithJSON(w, http.StatusOK, p.store.Ancestries())
}

// handleHeritages returns the configured heritage presets.
func (p *PatternsAPI) handleHeritages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "patterns:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'patterns:read' scope")
		return
	}

	names := p.store.Heritages()
	heritages := make([]patternstore.Heritage, 0, len(names))
	for _, name := range names {
		if heritage, ok := p.store.Heritage(name); ok {
			heritages = append(heritages, heritage)
		}
	}
	respondWithJSON(w, http.StatusOK, heritages)
}

// handlePatternSet manages CRUD operations for a single ancestry's pattern
// set.
func (p *PatternsAPI) handlePatternSet(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/patterns/")
	if name == "" || strings.HasSuffix(name, "/") {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !hasScope(r, "patterns:read") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'patterns:read' scope")
			return
		}
		patterns, err := p.store.Patterns(r.Context(), name)
		if err != nil {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Ancestry '%s' not found", name))
			return
		}
		respondWithJSON(w, http.StatusOK, patterns)

	case http.MethodPut:
		if !hasScope(r, "patterns:write") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'patterns:write' scope")
			return
		}
		var patterns namegen.PatternSet
		if err := json.NewDecoder(r.Body).Decode(&patterns); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if patterns.AncestryID == "" {
			patterns.AncestryID = strings.ToLower(strings.TrimSpace(name))
		} else if !strings.EqualFold(patterns.AncestryID, name) {
			respondWithError(w, http.StatusBadRequest, "Ancestry ID in body does not match URL")
			return
		}
		if err := p.store.Save(&patterns); err != nil {
			if errors.Is(err, patternstore.ErrInvalid) {
				respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid pattern set: %v", err))
				return
			}
			p.logger.Error("Failed to save pattern set", "ancestry", patterns.AncestryID, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save pattern set: %v", err))
			return
		}
		p.gen.ClearChains()
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if !hasScope(r, "patterns:write") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'patterns:write' scope")
			return
		}
		if err := p.store.Delete(name); err != nil {
			switch {
			case errors.Is(err, patternstore.ErrBuiltin):
				respondWithError(w, http.StatusBadRequest, "Cannot delete a built-in pattern set")
			case errors.Is(err, patternstore.ErrNotFound):
				respondWithError(w, http.StatusNotFound, fmt.Sprintf("Ancestry '%s' not found", name))
			default:
				respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete pattern set: %v", err))
			}
			return
		}
		p.gen.ClearChains()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

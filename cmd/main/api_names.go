package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halvdan/onomast/pkg/namegen"
	"github.com/halvdan/onomast/pkg/patternstore"
)

// maxNamesPerRequest caps the count parameter of generation endpoints.
const maxNamesPerRequest = 100

// NamesAPI holds the dependencies for the name generation API handlers.
type NamesAPI struct {
	gen      *namegen.Generator
	store    *patternstore.Store
	sessions *SessionRegistry
	stats    *StatsAPI
	logger   *slog.Logger
}

// NewNamesAPI creates a new instance of the NamesAPI.
func NewNamesAPI(gen *namegen.Generator, store *patternstore.Store, sessions *SessionRegistry, stats *StatsAPI, logger *slog.Logger) *NamesAPI {
	return &NamesAPI{
		gen:      gen,
		store:    store,
		sessions: sessions,
		stats:    stats,
		logger:   logger,
	}
}

// RegisterRoutes sets up the routing for the /api/names and /api/sessions endpoints.
func (n *NamesAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/names/generate", n.handleGenerate)
	mux.HandleFunc("/api/names/blend", n.handleBlend)
	mux.HandleFunc("/api/names/registry/clear", n.handleRegistryClear)
	mux.HandleFunc("/api/names/stats", n.handleStats)
	mux.HandleFunc("/api/names/chains/clear", n.handleChainsClear)
	mux.HandleFunc("/api/sessions", n.handleSessions)
	mux.HandleFunc("/api/sessions/", n.handleSessionByID)
}

// GenerateRequest is the expected JSON body for single-ancestry generation.
type GenerateRequest struct {
	Ancestry  string `json:"ancestry"`
	Gender    string `json:"gender,omitempty"`
	Count     int    `json:"count,omitempty"`
	Scope     string `json:"scope,omitempty"`
	Structure string `json:"structure,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Session   string `json:"session,omitempty"`
}

// BlendRequest is the expected JSON body for dual-ancestry generation.
// Either both ancestries or a heritage preset name must be given.
type BlendRequest struct {
	AncestryA string   `json:"ancestry_a,omitempty"`
	AncestryB string   `json:"ancestry_b,omitempty"`
	Heritage  string   `json:"heritage,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Ratio     *float64 `json:"ratio,omitempty"`
	Strategy  string   `json:"strategy,omitempty"`
	Count     int      `json:"count,omitempty"`
	Session   string   `json:"session,omitempty"`
}

// NamesResponse carries generated names back to the caller.
type NamesResponse struct {
	Names []string `json:"names"`
}

// clampCount normalizes the requested name count to [1, maxNamesPerRequest].
func clampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > maxNamesPerRequest {
		return maxNamesPerRequest
	}
	return count
}

// resolveScope applies the session prefix to a registry scope. It writes the
// error response itself when the session is unknown.
func (n *NamesAPI) resolveScope(w http.ResponseWriter, session, scope, fallback string) (string, bool) {
	if scope == "" {
		scope = fallback
	}
	if session == "" {
		return scope, true
	}
	scoped, ok := n.sessions.Touch(session, scope)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Session not found")
		return "", false
	}
	return scoped, true
}

// handleGenerate produces names for a single ancestry.
func (n *NamesAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "names:generate") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if strings.TrimSpace(req.Ancestry) == "" {
		respondWithError(w, http.StatusBadRequest, "Field 'ancestry' is required")
		return
	}

	mode := namegen.ModeSyllabic
	switch namegen.Mode(req.Mode) {
	case "", namegen.ModeSyllabic:
	case namegen.ModeMarkov:
		mode = namegen.ModeMarkov
	default:
		respondWithError(w, http.StatusBadRequest, "Field 'mode' must be 'syllabic' or 'markov'")
		return
	}

	structure := namegen.StructureType(req.Structure)
	switch structure {
	case "", namegen.StructureSingle, namegen.StructureFirstLast, namegen.StructureClanName,
		namegen.StructureCompound, namegen.StructureSyllabic:
	default:
		respondWithError(w, http.StatusBadRequest, "Field 'structure' is not a known structure type")
		return
	}

	scope, ok := n.resolveScope(w, req.Session, req.Scope, req.Ancestry)
	if !ok {
		return
	}

	opts := []namegen.GenerateOption{
		namegen.WithScope(scope),
		namegen.WithMode(mode),
	}
	if req.Gender != "" {
		opts = append(opts, namegen.WithGender(namegen.Gender(req.Gender)))
	}
	if structure != "" {
		opts = append(opts, namegen.WithStructure(structure))
	}

	count := clampCount(req.Count)
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		names = append(names, n.gen.Generate(r.Context(), req.Ancestry, opts...))
		n.stats.RecordGeneration(r.Context(), req.Ancestry, string(mode))
	}

	respondWithJSON(w, http.StatusOK, NamesResponse{Names: names})
}

// handleBlend produces names drawing on two ancestries, either named
// directly or resolved from a heritage preset.
func (n *NamesAPI) handleBlend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "names:generate") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
		return
	}

	var req BlendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	ancestryA := strings.TrimSpace(req.AncestryA)
	ancestryB := strings.TrimSpace(req.AncestryB)
	ratio := 0.5
	ratioSet := false
	var strategies []namegen.BlendStrategy

	if req.Heritage != "" {
		heritage, ok := n.store.Heritage(req.Heritage)
		if !ok {
			respondWithError(w, http.StatusNotFound, "Heritage not found")
			return
		}
		ancestryA = heritage.AncestryA
		ancestryB = heritage.AncestryB
		ratio = heritage.Ratio
		ratioSet = true
		strategies = heritage.Strategies
	}
	if ancestryA == "" || ancestryB == "" {
		respondWithError(w, http.StatusBadRequest, "Fields 'ancestry_a' and 'ancestry_b' (or 'heritage') are required")
		return
	}

	if req.Ratio != nil {
		ratio = *req.Ratio
		ratioSet = true
	}
	if req.Strategy != "" {
		strategy := namegen.BlendStrategy(req.Strategy)
		if !namegen.ValidStrategy(strategy) {
			respondWithError(w, http.StatusBadRequest, "Field 'strategy' is not a known blend strategy")
			return
		}
		strategies = []namegen.BlendStrategy{strategy}
	}

	scope, ok := n.resolveScope(w, req.Session, "", ancestryA+"+"+ancestryB)
	if !ok {
		return
	}

	count := clampCount(req.Count)
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		opts := []namegen.GenerateOption{namegen.WithScope(scope)}
		if req.Gender != "" {
			opts = append(opts, namegen.WithGender(namegen.Gender(req.Gender)))
		}
		if ratioSet {
			opts = append(opts, namegen.WithRatio(ratio))
		}
		recorded := "auto"
		if len(strategies) > 0 {
			strategy := strategies[i%len(strategies)]
			opts = append(opts, namegen.WithStrategy(strategy))
			recorded = string(strategy)
		}
		names = append(names, n.gen.GenerateBlended(r.Context(), ancestryA, ancestryB, opts...))
		n.stats.RecordGeneration(r.Context(), ancestryA+"+"+ancestryB, recorded)
	}

	respondWithJSON(w, http.StatusOK, NamesResponse{Names: names})
}

// handleRegistryClear drops uniqueness registry scopes. Without a body (or
// with an empty one) every scope is cleared; a session id limits the clear
// to that session's scopes.
func (n *NamesAPI) handleRegistryClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "names:generate") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
		return
	}

	var req struct {
		Scope   string `json:"scope,omitempty"`
		Session string `json:"session,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	if req.Session != "" {
		if req.Scope != "" {
			scoped, ok := n.sessions.Touch(req.Session, req.Scope)
			if !ok {
				respondWithError(w, http.StatusNotFound, "Session not found")
				return
			}
			n.gen.ClearRegistry(scoped)
		} else {
			scopes, ok := n.sessions.Scopes(req.Session)
			if !ok {
				respondWithError(w, http.StatusNotFound, "Session not found")
				return
			}
			for _, scope := range scopes {
				n.gen.ClearRegistry(scope)
			}
		}
	} else {
		n.gen.ClearRegistry(req.Scope)
	}

	n.logger.Info("Name registry cleared via API", "scope", req.Scope, "session", req.Session)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Registry cleared"})
}

// handleStats reports uniqueness registry statistics. With ?scope= it
// returns that scope's snapshot; without it, a snapshot per active scope.
func (n *NamesAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "stats:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'stats:read' scope")
		return
	}

	if scope := r.URL.Query().Get("scope"); scope != "" {
		respondWithJSON(w, http.StatusOK, n.gen.Stats(scope))
		return
	}

	scopes := n.gen.Scopes()
	stats := make([]namegen.Stats, 0, len(scopes))
	for _, scope := range scopes {
		stats = append(stats, n.gen.Stats(scope))
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// handleChainsClear empties the engine's memoized chain cache, forcing
// retraining from the current pattern data.
func (n *NamesAPI) handleChainsClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "names:generate") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
		return
	}

	cleared := n.gen.CacheStats().Chains
	n.gen.ClearChains()
	n.logger.Info("Chain cache cleared via API", "chains", cleared)
	respondWithJSON(w, http.StatusOK, map[string]int{"chains_cleared": cleared})
}

// handleSessions creates and lists generation sessions.
func (n *NamesAPI) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if !hasScope(r, "names:generate") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
			return
		}
		info := n.sessions.Create()
		n.logger.Info("Session created", "id", info.ID)
		respondWithJSON(w, http.StatusCreated, info)
	case http.MethodGet:
		if !hasScope(r, "names:generate") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
			return
		}
		respondWithJSON(w, http.StatusOK, n.sessions.List())
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSessionByID deletes a session and clears every registry scope it
// touched.
func (n *NamesAPI) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	trimmedPath := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id := strings.TrimSuffix(trimmedPath, "/") // Handle optional trailing slash

	if uuid.Validate(id) != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session ID format in URL")
		return
	}

	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed for this session resource")
		return
	}
	if !hasScope(r, "names:generate") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'names:generate' scope")
		return
	}

	scopes, ok := n.sessions.Remove(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	for _, scope := range scopes {
		n.gen.ClearRegistry(scope)
	}

	n.logger.Info("Session deleted", "id", id, "scopes_cleared", len(scopes))
	w.WriteHeader(http.StatusNoContent)
}

// SessionInfo is the public view of one generation session.
type SessionInfo struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Scopes  []string  `json:"scopes,omitempty"`
}

// sessionState is the registry's internal record of one session.
type sessionState struct {
	created time.Time
	scopes  map[string]struct{}
}

// SessionRegistry tracks short-lived generation sessions and the registry
// scopes each one has touched, so deleting a session can clear exactly the
// names it produced. All methods are concurrent-safe.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*sessionState),
	}
}

// Create registers a new session under a fresh UUID.
func (sr *SessionRegistry) Create() SessionInfo {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	id := uuid.NewString()
	sr.sessions[id] = &sessionState{
		created: time.Now(),
		scopes:  make(map[string]struct{}),
	}
	return SessionInfo{ID: id, Created: sr.sessions[id].created}
}

// Touch prefixes a registry scope with the session id and records it
// against the session. Returns false for unknown sessions.
func (sr *SessionRegistry) Touch(id, scope string) (string, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	session, ok := sr.sessions[id]
	if !ok {
		return "", false
	}
	scoped := id + ":" + scope
	session.scopes[scoped] = struct{}{}
	return scoped, true
}

// Scopes lists the registry scopes a session has touched, sorted.
func (sr *SessionRegistry) Scopes(id string) ([]string, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	session, ok := sr.sessions[id]
	if !ok {
		return nil, false
	}
	return sortedScopes(session), true
}

// Remove drops a session, returning the scopes it touched so the caller can
// clear them.
func (sr *SessionRegistry) Remove(id string) ([]string, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	session, ok := sr.sessions[id]
	if !ok {
		return nil, false
	}
	delete(sr.sessions, id)
	return sortedScopes(session), true
}

// List returns every active session, oldest first.
func (sr *SessionRegistry) List() []SessionInfo {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	out := make([]SessionInfo, 0, len(sr.sessions))
	for id, session := range sr.sessions {
		out = append(out, SessionInfo{
			ID:      id,
			Created: session.created,
			Scopes:  sortedScopes(session),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

func sortedScopes(session *sessionState) []string {
	scopes := make([]string, 0, len(session.scopes))
	for scope := range session.scopes {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}

package main

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// ReservedAPI manages the list of reserved names the generator must never
// hand out.
type ReservedAPI struct {
	db     *sql.DB
	logger *slog.Logger
	cache  *ReservedCache // A pointer to the in-memory cache
}

// setupReservedSchema creates the table for storing reserved names.
func setupReservedSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS reserved_names (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// ReservedCache keeps the reserved list in memory so the generator can
// consult it on every candidate without touching the database. Names are
// stored case-folded.
type ReservedCache struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewReservedCache() *ReservedCache {
	return &ReservedCache{
		names: make(map[string]struct{}),
	}
}

// foldName normalizes a name for reserved-list comparisons.
func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LoadFromDB reads all reserved names from the database into the cache.
func (c *ReservedCache) LoadFromDB(db *sql.DB) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = make(map[string]struct{})

	rows, err := db.Query("SELECT name FROM reserved_names")
	if err != nil {
		return err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return err
		}
		c.names[foldName(name)] = struct{}{}
	}
	return rows.Err()
}

// Add safely adds a single name to the cache.
func (c *ReservedCache) Add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[foldName(name)] = struct{}{}
}

// Remove safely removes a single name from the cache.
func (c *ReservedCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.names, foldName(name))
}

// IsReserved safely checks if a name is in the cache.
func (c *ReservedCache) IsReserved(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, found := c.names[foldName(name)]
	return found
}

// NewReservedAPI creates a new instance of the ReservedAPI.
func NewReservedAPI(db *sql.DB, logger *slog.Logger, cache *ReservedCache) *ReservedAPI {
	return &ReservedAPI{
		db:     db,
		logger: logger,
		cache:  cache,
	}
}

// RegisterRoutes sets up the routing for the /api/reserved endpoint.
func (a *ReservedAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/reserved", a.handleReserved)
}

func (a *ReservedAPI) handleReserved(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getList(w, r)
	case http.MethodPost:
		a.addName(w, r)
	case http.MethodDelete:
		a.removeName(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// getList retrieves every reserved name.
func (a *ReservedAPI) getList(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "reserved:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'reserved:read' scope")
		return
	}

	rows, err := a.db.Query("SELECT name FROM reserved_names ORDER BY name")
	if err != nil {
		a.logger.Error("Failed to query reserved names", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve reserved names")
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			a.logger.Error("Failed to scan reserved name", "error", err)
			continue
		}
		names = append(names, name)
	}

	respondWithJSON(w, http.StatusOK, names)
}

// addName adds a new name to the reserved list.
func (a *ReservedAPI) addName(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "reserved:write") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'reserved:write' scope")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	name := foldName(payload.Name)
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Reserved name cannot be empty")
		return
	}

	_, err := a.db.Exec("INSERT INTO reserved_names (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			respondWithError(w, http.StatusConflict, "Name is already reserved")
		} else {
			a.logger.Error("Failed to insert reserved name", "name", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to add reserved name")
		}
		return
	}

	a.cache.Add(name)
	a.logger.Info("Added reserved name", "name", name)
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Name reserved"})
}

// removeName removes a name from the reserved list.
func (a *ReservedAPI) removeName(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "reserved:write") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'reserved:write' scope")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	name := foldName(payload.Name)
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Reserved name cannot be empty")
		return
	}

	res, err := a.db.Exec("DELETE FROM reserved_names WHERE name = ?", name)
	if err != nil {
		a.logger.Error("Failed to delete reserved name", "name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to remove reserved name")
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		respondWithError(w, http.StatusNotFound, "Name is not reserved")
		return
	}

	a.cache.Remove(name)
	a.logger.Info("Removed reserved name", "name", name)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Name no longer reserved"})
}

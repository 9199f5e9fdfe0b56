package server

import (
	"database/sql"
	"net/http"

	"github.com/Sagyam/linite-sub002/internal/shared"
)

// HealthHandler reports service liveness and the applied schema version.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a HealthHandler over the given database connection.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/api/v1/health"}
}

type healthBody struct {
	Status        string `json:"status"`
	SchemaVersion int    `json:"schemaVersion"`
}

// ServeHTTP answers the liveness probe. A database that cannot answer the
// schema version query reports the service as unavailable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	version, err := shared.SchemaVersion(h.db)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, healthBody{Status: "ok", SchemaVersion: version})
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/Sagyam/linite-sub002/internal/engine"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// Resolver produces command plans for install and uninstall requests.
// Implemented by [engine.Engine].
type Resolver interface {
	Install(ctx context.Context, req engine.InstallRequest) (*engine.InstallPlan, error)
	Uninstall(ctx context.Context, req engine.UninstallRequest) (*engine.UninstallPlan, error)
}

// CommandHandler serves the resolution endpoints. A request that cannot be
// fully satisfied still returns 200 with warnings in the plan; only rejected
// input, an unknown distribution, or a backend failure map to error statuses.
type CommandHandler struct {
	resolver Resolver
	logger   *log.Logger
}

// NewCommandHandler creates a CommandHandler over the given resolver.
func NewCommandHandler(resolver Resolver, logger *log.Logger) *CommandHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CommandHandler{resolver: resolver, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CommandHandler) Routes() []string {
	return []string{"/api/v1/install", "/api/v1/uninstall"}
}

// ServeHTTP dispatches resolution requests. Both endpoints accept POST only.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case "/api/v1/install":
		h.install(w, r)
	case "/api/v1/uninstall":
		h.uninstall(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *CommandHandler) install(w http.ResponseWriter, r *http.Request) {
	var req engine.InstallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.resolver.Install(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (h *CommandHandler) uninstall(w http.ResponseWriter, r *http.Request) {
	var req engine.UninstallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.resolver.Uninstall(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// fail maps resolution errors onto HTTP statuses: an unknown distribution is
// a 404, rejected input a 400, anything else a 500 with the detail kept in
// the server log.
func (h *CommandHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrDistroNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrNoApplications), errors.Is(err, shared.ErrInvalidPreference):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("resolution failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the API's uniform error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

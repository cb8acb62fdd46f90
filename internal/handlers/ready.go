package handlers

import (
	"net/http"
	"os"
	"strings"
)

// ReadyHandler reports readiness from an environment flag. The flag is read
// on every request so it can be flipped without a restart.
type ReadyHandler struct {
	envName string
	lookup  func(string) string
}

// NewReadyHandler creates a ReadyHandler reading the variable envName.
func NewReadyHandler(envName string) *ReadyHandler {
	return &ReadyHandler{envName: envName, lookup: os.Getenv}
}

// ReadyResponse represents the readiness probe response.
type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// ServeHTTP handles GET /ready. Returns 200 when the flag is true, 1 or yes,
// 503 otherwise.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if !isTruthy(h.lookup(h.envName)) {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Ready: false})
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Ready: true})
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

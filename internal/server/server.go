// Package server exposes the config engine over HTTP/JSON. Authentication
// mechanics live with the external identity collaborator: requests carry
// the already-authenticated actor in X-Actor / X-Actor-Name headers, and
// the optional bearer token only fences the API off as a whole.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/groblegark/confpub/internal/engine"
	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

// ConfigServer handles the HTTP API backed by an engine.
type ConfigServer struct {
	engine *engine.Engine
}

// NewConfigServer returns a ConfigServer for the given engine.
func NewConfigServer(e *engine.Engine) *ConfigServer {
	return &ConfigServer{engine: e}
}

// actorFrom extracts the acting identity supplied by the identity
// collaborator. Mutating handlers reject requests without one.
func actorFrom(r *http.Request) engine.Actor {
	return engine.Actor{
		ID:   r.Header.Get("X-Actor"),
		Name: r.Header.Get("X-Actor-Name"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps engine errors onto HTTP status codes with
// messages precise enough for the UI to render guidance.
func writeEngineError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, engine.ErrNoDraftToPublish):
		writeError(w, http.StatusConflict, "no draft to publish")
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "concurrent modification, retry")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

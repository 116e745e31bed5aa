package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/confpub/internal/engine"
)

// handleExport handles GET /v1/products/{product}/export.
func (s *ConfigServer) handleExport(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("product")

	bundle, err := s.engine.ExportProduct(r.Context(), productID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

// handleImport handles PUT /v1/products/{product}/import.
func (s *ConfigServer) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.requireActor(w, r) {
		return
	}

	var bundle engine.ProductExport
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kinds, err := s.engine.ImportProduct(r.Context(), r.PathValue("product"), &bundle, actorFrom(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if kinds == nil {
		kinds = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": kinds})
}

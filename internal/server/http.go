package server

import (
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ConfigServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/products/{product}/configs", s.handleStatuses)
	mux.HandleFunc("GET /v1/products/{product}/configs/{kind}", s.handleGetConfig)
	mux.HandleFunc("PUT /v1/products/{product}/configs/{kind}", s.handlePutDraft)
	mux.HandleFunc("POST /v1/products/{product}/configs/{kind}/publish", s.handlePublish)
	mux.HandleFunc("POST /v1/products/{product}/configs/{kind}/rollback", s.handleRollback)
	mux.HandleFunc("GET /v1/products/{product}/configs/{kind}/history", s.handleKindHistory)
	mux.HandleFunc("GET /v1/products/{product}/history", s.handleProductHistory)
	mux.HandleFunc("GET /v1/products/{product}/export", s.handleExport)
	mux.HandleFunc("PUT /v1/products/{product}/import", s.handleImport)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *ConfigServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

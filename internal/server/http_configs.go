package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/confpub/internal/model"
)

// ownerKey builds the owner key from path values.
func ownerKey(r *http.Request) model.OwnerKey {
	return model.OwnerKey{
		ProductID:  r.PathValue("product"),
		ConfigKind: r.PathValue("kind"),
	}
}

// requireActor extracts the actor or writes a 400 and returns false.
func (s *ConfigServer) requireActor(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-Actor") == "" {
		writeError(w, http.StatusBadRequest, "X-Actor header is required")
		return false
	}
	return true
}

// handleStatuses handles GET /v1/products/{product}/configs.
func (s *ConfigServer) handleStatuses(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("product")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product is required")
		return
	}

	statuses, err := s.engine.Statuses(r.Context(), productID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"configs": statuses})
}

// handleGetConfig handles GET /v1/products/{product}/configs/{kind}.
// The optional status query selects draft or published; without it the
// draft is preferred and the published record is the fallback.
func (s *ConfigServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	var status model.Status
	if v := r.URL.Query().Get("status"); v != "" {
		status = model.Status(v)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "status must be draft or published")
			return
		}
	}

	rec, err := s.engine.Current(r.Context(), ownerKey(r), status)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// updateDraftRequest is the JSON body for PUT /v1/products/{product}/configs/{kind}.
type updateDraftRequest struct {
	Data json.RawMessage `json:"data"`
}

// handlePutDraft handles PUT /v1/products/{product}/configs/{kind}:
// create-or-update of the draft.
func (s *ConfigServer) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	if !s.requireActor(w, r) {
		return
	}

	var req updateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	rec, err := s.engine.CreateOrUpdateDraft(r.Context(), ownerKey(r), req.Data, actorFrom(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handlePublish handles POST /v1/products/{product}/configs/{kind}/publish.
func (s *ConfigServer) handlePublish(w http.ResponseWriter, r *http.Request) {
	if !s.requireActor(w, r) {
		return
	}

	rec, err := s.engine.Publish(r.Context(), ownerKey(r), actorFrom(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// rollbackRequest is the JSON body for POST .../rollback.
type rollbackRequest struct {
	HistoryID string `json:"history_id"`
}

// handleRollback handles POST /v1/products/{product}/configs/{kind}/rollback.
func (s *ConfigServer) handleRollback(w http.ResponseWriter, r *http.Request) {
	if !s.requireActor(w, r) {
		return
	}

	var req rollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.HistoryID == "" {
		writeError(w, http.StatusBadRequest, "history_id is required")
		return
	}

	rec, err := s.engine.Rollback(r.Context(), ownerKey(r), req.HistoryID, actorFrom(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

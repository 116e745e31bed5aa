package server

import (
	"net/http"
	"strconv"

	"github.com/groblegark/confpub/internal/model"
)

// historyResponse is the paginated envelope for history queries.
type historyResponse struct {
	History []*model.HistoryEntry `json:"history"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

// historyFilterFrom builds a history filter from query parameters.
func historyFilterFrom(r *http.Request, productID, configKind string) model.HistoryFilter {
	q := r.URL.Query()
	filter := model.HistoryFilter{
		ProductID:  productID,
		ConfigKind: configKind,
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	return filter
}

func (s *ConfigServer) writeHistoryPage(w http.ResponseWriter, r *http.Request, filter model.HistoryFilter) {
	entries, total, err := s.engine.History(r.Context(), filter)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	// Ensure history is never null in JSON output.
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}

	n := filter.Normalize()
	writeJSON(w, http.StatusOK, historyResponse{
		History: entries,
		Total:   total,
		Page:    n.Page,
		Limit:   n.Limit,
	})
}

// handleKindHistory handles GET /v1/products/{product}/configs/{kind}/history.
func (s *ConfigServer) handleKindHistory(w http.ResponseWriter, r *http.Request) {
	key := ownerKey(r)
	s.writeHistoryPage(w, r, historyFilterFrom(r, key.ProductID, key.ConfigKind))
}

// handleProductHistory handles GET /v1/products/{product}/history, the
// cross-kind timeline. The optional configType query narrows it to one kind.
func (s *ConfigServer) handleProductHistory(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("product")
	configKind := r.URL.Query().Get("configType")
	s.writeHistoryPage(w, r, historyFilterFrom(r, productID, configKind))
}

package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	defaultRecent = 20
	maxRecent     = 200
)

// History lists stored alerts, newest first.
type History interface {
	Recent(ctx context.Context, limit int) ([]string, error)
}

type Handler struct {
	History History
}

func NewHandler(h History) *Handler {
	return &Handler{History: h}
}

// Recent serves GET /api/alerts?limit=N.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		http.Error(w, "alert history is not configured", http.StatusNotFound)
		return
	}

	limit := defaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecent)
	}

	texts, err := h.History.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if texts == nil {
		texts = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"alerts": texts})
}

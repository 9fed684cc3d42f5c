package feed

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes the cache to operators over HTTP.
type Handler struct {
	Cache *Cache
}

func NewHandler(c *Cache) *Handler {
	return &Handler{Cache: c}
}

// Refresh forces a synchronous refresh and reports what changed.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.Cache.Refresh(r.Context())
	if errors.Is(err, ErrUnavailable) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

package api

import (
	"net/http"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	rooms, connections := h.registry.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"rooms":       rooms,
		"connections": connections,
	})
}

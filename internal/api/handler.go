// Package api exposes the request/response surface: topic and comment CRUD
// against the authoritative store, login/logout, and a health probe. The
// relay never goes through here; clients mutate over REST first and then
// announce the result to their room themselves.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/teamboard-dev/teamboard-server/internal/auth"
	"github.com/teamboard-dev/teamboard-server/internal/database"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
	"github.com/teamboard-dev/teamboard-server/internal/relay"
)

type Handler struct {
	topics   database.TopicStore
	comments database.CommentStore
	auth     *auth.Manager
	registry *relay.Registry
}

func NewHandler(topics database.TopicStore, comments database.CommentStore, authManager *auth.Manager, registry *relay.Registry) *Handler {
	return &Handler{
		topics:   topics,
		comments: comments,
		auth:     authManager,
		registry: registry,
	}
}

// Routes registers every REST endpoint on a fresh mux. The websocket
// endpoint is mounted separately by main.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/topics", h.listTopics)
	mux.HandleFunc("POST /api/topics", h.auth.Middleware(h.createTopic))
	mux.HandleFunc("GET /api/topics/{id}", h.getTopic)
	mux.HandleFunc("GET /api/comments", h.listComments)
	mux.HandleFunc("POST /api/comments", h.auth.Middleware(h.createComment))
	mux.HandleFunc("DELETE /api/comments/{id}", h.auth.Middleware(h.deleteComment))
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/logout", h.auth.Middleware(h.logout))
	mux.HandleFunc("GET /healthz", h.health)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.ErrorF("Fail to encode response body, details: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

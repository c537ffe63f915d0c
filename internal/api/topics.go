package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamboard-dev/teamboard-server/internal/auth"
	"github.com/teamboard-dev/teamboard-server/internal/database"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

type createTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.ListTopics()
	if err != nil {
		logger.ErrorF("Fail to list topics, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "Title and description are required")
		return
	}

	session := auth.SessionFrom(r.Context())
	topic := &database.Topic{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    session.UserID,
		AuthorName:  session.UserName,
	}
	if err := h.topics.InsertTopic(topic); err != nil {
		logger.ErrorF("Fail to create topic, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create topic")
		return
	}

	writeJSON(w, http.StatusCreated, database.TopicWithCount{Topic: *topic, CommentCount: 0})
}

func (h *Handler) getTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topics.FindTopic(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		logger.ErrorF("Fail to fetch topic, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch topic")
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

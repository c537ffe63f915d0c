package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamboard-dev/teamboard-server/internal/auth"
	"github.com/teamboard-dev/teamboard-server/internal/database"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
	"github.com/teamboard-dev/teamboard-server/internal/zodiac"
)

type createCommentRequest struct {
	TopicID     string `json:"topicId"`
	Content     string `json:"content"`
	IsAnonymous bool   `json:"isAnonymous"`
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	topicID := r.URL.Query().Get("topicId")
	if topicID == "" {
		writeError(w, http.StatusBadRequest, "Topic ID is required")
		return
	}

	comments, err := h.comments.ListComments(topicID)
	if err != nil {
		logger.ErrorF("Fail to list comments, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TopicID == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "Topic ID and content are required")
		return
	}

	session := auth.SessionFrom(r.Context())
	comment := &database.Comment{
		TopicID:     req.TopicID,
		Content:     req.Content,
		AuthorID:    session.UserID,
		AuthorName:  session.UserName,
		IsAnonymous: req.IsAnonymous,
	}
	if req.IsAnonymous {
		comment.AnonymousName = zodiac.RandomName()
	}
	if err := h.comments.InsertComment(comment); err != nil {
		logger.ErrorF("Fail to create comment, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// deleteComment removes a comment the caller owns. The caller announces
// the deletion to its room only after this succeeds, so the relay never
// hints at a mutation that failed here.
func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	comment, err := h.comments.FindComment(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		}
		logger.ErrorF("Fail to fetch comment, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	session := auth.SessionFrom(r.Context())
	if comment.AuthorID != session.UserID {
		writeError(w, http.StatusForbidden, "Forbidden - You can only delete your own comments")
		return
	}

	if err := h.comments.DeleteComment(id); err != nil {
		logger.ErrorF("Fail to delete comment, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/teamboard-dev/teamboard-server/internal/auth"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var assertion auth.Assertion
	if err := json.NewDecoder(r.Body).Decode(&assertion); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Login(assertion)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidAssertion) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		logger.ErrorF("Fail to create session, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.auth.Logout(token); err != nil {
		logger.ErrorF("Fail to delete session, details: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

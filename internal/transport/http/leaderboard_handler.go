package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// LeaderboardHandler exposes the ranked board over plain HTTP.
type LeaderboardHandler struct {
	service *app.QuizService
}

func NewLeaderboardHandler(service *app.QuizService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries := h.service.Leaderboard(r.Context())
		writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
	case http.MethodDelete:
		if err := h.service.ClearLeaderboard(r.Context()); err != nil {
			logrus.WithError(err).Warn("clear leaderboard failed")
			http.Error(w, "clear leaderboard failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("write response failed")
	}
}

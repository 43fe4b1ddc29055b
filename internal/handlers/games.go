package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maxwavex-backend/internal/middleware"
	"maxwavex-backend/internal/models"
)

type GameHandler struct {
	service gameService
}

type gameService interface {
	Record(ctx context.Context, principal models.Principal, req models.GameResultRequest) (*models.GameResult, error)
	Leaderboard(ctx context.Context, gameType string, limit int) (*models.Leaderboard, error)
	UserStats(ctx context.Context, principal models.Principal) (*models.UserGameStats, error)
	PersonalBest(ctx context.Context, principal models.Principal, gameType string) (*models.PersonalBest, error)
	SystemStats(ctx context.Context) (*models.SystemStats, error)
}

func NewGameHandler(service gameService) *GameHandler {
	return &GameHandler{service: service}
}

func (h *GameHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req models.GameResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.service.Record(r.Context(), principal, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Result saved successfully",
		"resultId":     result.ID,
		"score":        result.Score,
		"levelReached": result.LevelReached,
	})
}

func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	gameType := chi.URLParam(r, "gameType")

	// Non-numeric limits fall back to the default
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	leaderboard, err := h.service.Leaderboard(r.Context(), gameType, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard)
}

func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	stats, err := h.service.UserStats(r.Context(), principal)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *GameHandler) PersonalBest(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	gameType := chi.URLParam(r, "gameType")

	best, err := h.service.PersonalBest(r.Context(), principal, gameType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (h *GameHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.SystemStats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

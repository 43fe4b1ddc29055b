package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"maxwavex-backend/internal/models"
)

type ModuleHandler struct {
	moduleRepo moduleRepository
}

type moduleRepository interface {
	ListActive(ctx context.Context) ([]models.Module, error)
	ListActiveByType(ctx context.Context, contentType string) ([]models.Module, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	StatsSummary(ctx context.Context) (*models.ModuleStatsSummary, error)
}

func NewModuleHandler(moduleRepo moduleRepository) *ModuleHandler {
	return &ModuleHandler{moduleRepo: moduleRepo}
}

func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	modules, err := h.moduleRepo.ListActive(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list modules", r))
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid module ID", r))
		return
	}

	module, err := h.moduleRepo.GetActiveByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Module not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch module", r))
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (h *ModuleHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	contentType := chi.URLParam(r, "contentType")
	if !models.IsValidContentType(contentType) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content type", r))
		return
	}

	modules, err := h.moduleRepo.ListActiveByType(r.Context(), contentType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list modules", r))
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *ModuleHandler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.moduleRepo.StatsSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch module stats", r))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

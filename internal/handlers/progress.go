package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maxwavex-backend/internal/middleware"
	"maxwavex-backend/internal/models"
)

type ProgressHandler struct {
	service progressService
}

type progressService interface {
	List(ctx context.Context, principal models.Principal) ([]models.Progress, error)
	GetOrInit(ctx context.Context, principal models.Principal, moduleID uuid.UUID) (*models.Progress, error)
	Record(ctx context.Context, principal models.Principal, moduleID uuid.UUID, req models.ProgressUpdateRequest) (*models.Progress, error)
	Complete(ctx context.Context, principal models.Principal, moduleID uuid.UUID, req models.CompleteRequest) (*models.Progress, error)
	Summarize(ctx context.Context, principal models.Principal) (*models.ProgressSummary, error)
}

func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	records, err := h.service.List(r.Context(), principal)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	moduleID, err := uuid.Parse(chi.URLParam(r, "moduleId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid module ID", r))
		return
	}

	progress, err := h.service.GetOrInit(r.Context(), principal, moduleID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	moduleID, err := uuid.Parse(chi.URLParam(r, "moduleId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid module ID", r))
		return
	}

	var req models.ProgressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	progress, err := h.service.Record(r.Context(), principal, moduleID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Progress updated successfully",
		"progress": progress,
	})
}

func (h *ProgressHandler) Complete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	moduleID, err := uuid.Parse(chi.URLParam(r, "moduleId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid module ID", r))
		return
	}

	// An empty body is fine (score defaults to 0); malformed JSON is not.
	var req models.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	progress, err := h.service.Complete(r.Context(), principal, moduleID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Module completed successfully",
		"progress": progress,
	})
}

func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	summary, err := h.service.Summarize(r.Context(), principal)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

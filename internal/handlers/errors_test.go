package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"maxwavex-backend/internal/models"
	"maxwavex-backend/internal/services"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"score": "bad"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "taken"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "gone"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "nope"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"session expired", &services.SessionExpiredError{Message: "expired"}, http.StatusUnauthorized, "SESSION_EXPIRED"},
		{"account disabled", &services.AccountDisabledError{Message: "disabled"}, http.StatusUnauthorized, "ACCOUNT_DISABLED"},
		{"forbidden", &services.ForbiddenError{Message: "no"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, &services.ValidationError{Fields: map[string]string{
		"score":        "score is required",
		"levelReached": "levelReached must be at least 1",
	}})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Fields["score"] != "score is required" {
		t.Fatalf("expected score field error, got %v", resp.Error.Fields)
	}
	if resp.Error.Fields["levelReached"] == "" {
		t.Fatalf("expected levelReached field error, got %v", resp.Error.Fields)
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"maxwavex-backend/internal/models"
)

type allowAllResolver struct{}

func (allowAllResolver) Resolve(ctx context.Context, p models.Principal) error { return nil }

type expiredSessionResolver struct{}

func (expiredSessionResolver) Resolve(ctx context.Context, p models.Principal) error {
	return &fakeSessionExpired{}
}

type fakeSessionExpired struct{}

func (e *fakeSessionExpired) Error() string    { return "Guest session has expired" }
func (e *fakeSessionExpired) AuthCode() string { return "SESSION_EXPIRED" }

func TestJWTAuth_TokenRoundTrip(t *testing.T) {
	auth := NewJWTAuth("test-secret")

	t.Run("registered user", func(t *testing.T) {
		userID := uuid.New()
		token, err := auth.GenerateUserToken(userID, "user@example.com")
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		principal, err := auth.ParsePrincipal(token)
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		if principal.IsGuest() {
			t.Fatalf("expected registered principal")
		}
		if principal.ID != userID {
			t.Fatalf("expected id %s, got %s", userID, principal.ID)
		}
	})

	t.Run("guest", func(t *testing.T) {
		sessionID := uuid.New()
		token, err := auth.GenerateGuestToken(sessionID, "Visitor", time.Hour)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		principal, err := auth.ParsePrincipal(token)
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		if !principal.IsGuest() {
			t.Fatalf("expected guest principal")
		}
		if principal.ID != sessionID {
			t.Fatalf("expected id %s, got %s", sessionID, principal.ID)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token, err := auth.GenerateUserToken(uuid.New(), "user@example.com")
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		other := NewJWTAuth("other-secret")
		if _, err := other.ParsePrincipal(token); err == nil {
			t.Fatalf("expected verification failure with wrong secret")
		}
	})
}

func TestMiddleware_AttachesPrincipal(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	userID := uuid.New()
	token, err := auth.GenerateUserToken(userID, "user@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var got models.Principal
	handler := auth.Middleware(allowAllResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPrincipal(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if got.ID != userID {
		t.Fatalf("expected principal id %s, got %s", userID, got.ID)
	}
}

func TestMiddleware_RejectsBadHeaders(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	handler := auth.Middleware(allowAllResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
		})
	}
}

func TestMiddleware_ResolverErrorCode(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	token, err := auth.GenerateGuestToken(uuid.New(), "Visitor", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	handler := auth.Middleware(expiredSessionResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "SESSION_EXPIRED") {
		t.Fatalf("expected SESSION_EXPIRED code in body, got %s", body)
	}
}

func TestRequireRegistered(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRegistered(next)

	t.Run("no principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("guest principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), PrincipalKey, models.GuestPrincipal(uuid.New()))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))

		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
		}
	})

	t.Run("registered principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), PrincipalKey, models.RegisteredPrincipal(uuid.New()))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
	})
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"maxwavex-backend/internal/models"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// AccessTokenTTL applies to registered-user access tokens; guest tokens live
// as long as the guest session they belong to.
const AccessTokenTTL = 15 * time.Minute

type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret)}
}

// PrincipalResolver checks a token-derived principal against the store: the
// account must still exist and be active, and guest sessions must not have
// expired. Errors may implement AuthCode() to pick the response code.
type PrincipalResolver interface {
	Resolve(ctx context.Context, p models.Principal) error
}

type authCoder interface {
	AuthCode() string
}

func (j *JWTAuth) GenerateUserToken(userID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"kind":  string(models.PrincipalRegistered),
		"email": email,
		"exp":   time.Now().Add(AccessTokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTAuth) GenerateGuestToken(sessionID uuid.UUID, username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      sessionID.String(),
		"kind":     string(models.PrincipalGuest),
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ParsePrincipal verifies a raw token string and extracts the principal it
// carries. It performs no storage lookups.
func (j *JWTAuth) ParsePrincipal(tokenStr string) (models.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		return models.Principal{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	kind, _ := claims["kind"].(string)
	switch models.PrincipalKind(kind) {
	case models.PrincipalRegistered:
		return models.RegisteredPrincipal(id), nil
	case models.PrincipalGuest:
		return models.GuestPrincipal(id), nil
	}
	return models.Principal{}, jwt.ErrTokenInvalidClaims
}

// Middleware returns a handler wrapper that authenticates the Bearer token,
// resolves the principal against the store, and attaches it to the context.
func (j *JWTAuth) Middleware(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
				return
			}

			principal, err := j.ParsePrincipal(parts[1])
			if err != nil {
				if strings.Contains(err.Error(), "expired") {
					writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
				} else {
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
				}
				return
			}

			if resolver != nil {
				if err := resolver.Resolve(r.Context(), principal); err != nil {
					code := "UNAUTHORIZED"
					if coder, ok := err.(authCoder); ok {
						code = coder.AuthCode()
					}
					writeError(w, http.StatusUnauthorized, code, err.Error(), r)
					return
				}
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRegistered rejects guest principals. Progress persistence is a
// registered-user-only capability.
func RequireRegistered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipal(r.Context())
		if principal.IsZero() {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", r)
			return
		}
		if principal.IsGuest() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Guests cannot save progress. Create an account to keep yours.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal extracts the resolved principal from the request context.
func GetPrincipal(ctx context.Context) models.Principal {
	p, _ := ctx.Value(PrincipalKey).(models.Principal)
	return p
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"maxwavex-backend/internal/middleware"
	"maxwavex-backend/internal/models"
	"maxwavex-backend/internal/repository"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	userRepo  *repository.UserRepo
	guestRepo *repository.GuestRepo
	redis     *redis.Client
	jwt       *middleware.JWTAuth
	guestTTL  time.Duration
}

func NewAuthService(userRepo *repository.UserRepo, guestRepo *repository.GuestRepo, redisClient *redis.Client, jwt *middleware.JWTAuth, guestTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		guestRepo: guestRepo,
		redis:     redisClient,
		jwt:       jwt,
		guestTTL:  guestTTL,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.AuthTokens, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Validate all fields at once
	fieldErrors := make(map[string]string)

	if len(req.Name) < 2 || len(req.Name) > 100 {
		fieldErrors["name"] = "Name must be between 2 and 100 characters"
	}
	if !emailRegex.MatchString(req.Email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if len(req.Password) < 6 {
		fieldErrors["password"] = "Password must be at least 6 characters"
	}

	if len(fieldErrors) > 0 {
		return nil, nil, &ValidationError{Fields: fieldErrors}
	}

	// Check uniqueness
	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	// Hash password (bcrypt cost 12)
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.Name,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, *models.AuthTokens, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &UnauthorizedError{Message: "Invalid email or password"}
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, &AccountDisabledError{Message: "Account is deactivated"}
	}

	if !checkPassword(user.PasswordHash, req.Password) {
		return nil, nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	// Best-effort; a failed timestamp write must not block the login
	s.userRepo.UpdateLastLogin(ctx, user.ID)

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) CreateGuest(ctx context.Context, req models.GuestRequest) (*models.GuestSession, *models.AuthTokens, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 2 {
		return nil, nil, &ValidationError{Fields: map[string]string{
			"username": "Username must be at least 2 characters",
		}}
	}

	session := &models.GuestSession{
		SessionToken: uuid.NewString(),
		Username:     username,
		ExpiresAt:    time.Now().Add(s.guestTTL),
	}

	if err := s.guestRepo.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	accessToken, err := s.jwt.GenerateGuestToken(session.ID, username, s.guestTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate guest token: %w", err)
	}

	return session, &models.AuthTokens{
		AccessToken: accessToken,
		ExpiresIn:   int(s.guestTTL.Seconds()),
	}, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userIDStr, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	// Delete old token (rotation)
	s.redis.Del(ctx, "refresh:"+refreshToken)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, &AccountDisabledError{Message: "Account is deactivated"}
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, principal models.Principal, refreshToken string) error {
	if principal.IsGuest() {
		return s.guestRepo.Deactivate(ctx, principal.ID)
	}
	if refreshToken != "" {
		return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
	}
	return nil
}

// Resolve checks a token-derived principal against the store. Registered
// accounts must be active; guest sessions must be active and unexpired.
func (s *AuthService) Resolve(ctx context.Context, principal models.Principal) error {
	if principal.IsGuest() {
		session, err := s.guestRepo.GetByID(ctx, principal.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &UnauthorizedError{Message: "Guest session not found"}
			}
			return err
		}
		if !session.IsActive || time.Now().After(session.ExpiresAt) {
			return &SessionExpiredError{Message: "Guest session has expired"}
		}
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &UnauthorizedError{Message: "Account not found"}
		}
		return err
	}
	if !user.IsActive {
		return &AccountDisabledError{Message: "Account is deactivated"}
	}
	return nil
}

// Identity returns the payload the verify endpoint echoes back for a resolved
// principal.
func (s *AuthService) Identity(ctx context.Context, principal models.Principal) (map[string]interface{}, error) {
	if err := s.Resolve(ctx, principal); err != nil {
		return nil, err
	}

	if principal.IsGuest() {
		session, err := s.guestRepo.GetByID(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"id":        session.ID,
			"username":  session.Username,
			"userType":  models.PrincipalGuest,
			"expiresAt": session.ExpiresAt,
		}, nil
	}

	user, err := s.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":       user.ID,
		"name":     user.DisplayName,
		"email":    user.Email,
		"userType": models.PrincipalRegistered,
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	err = s.redis.Set(ctx, "refresh:"+refreshToken, user.ID.String(), refreshTokenTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

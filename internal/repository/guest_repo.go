package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"maxwavex-backend/internal/models"
)

type GuestRepo struct {
	pool *pgxpool.Pool
}

func NewGuestRepo(pool *pgxpool.Pool) *GuestRepo {
	return &GuestRepo{pool: pool}
}

func (r *GuestRepo) Create(ctx context.Context, session *models.GuestSession) error {
	query := `
		INSERT INTO guest_sessions (id, session_token, username, expires_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING created_at`

	session.ID = uuid.New()
	session.IsActive = true

	return r.pool.QueryRow(ctx, query,
		session.ID, session.SessionToken, session.Username, session.ExpiresAt,
	).Scan(&session.CreatedAt)
}

func (r *GuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	session := &models.GuestSession{}
	query := `SELECT id, session_token, username, created_at, expires_at, is_active
		FROM guest_sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID, &session.SessionToken, &session.Username,
		&session.CreatedAt, &session.ExpiresAt, &session.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *GuestRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE guest_sessions SET is_active = FALSE WHERE id = $1", id)
	return err
}

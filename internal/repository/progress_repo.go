package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"maxwavex-backend/internal/models"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

const progressJoin = `
	SELECT
		up.id,
		up.user_id,
		up.module_id,
		up.completion_percentage,
		up.time_spent,
		up.score,
		up.is_completed,
		up.last_accessed,
		m.title,
		m.content_type,
		m.difficulty_level
	FROM user_progress up
	JOIN modules m ON up.module_id = m.id`

func (r *ProgressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Progress, error) {
	rows, err := r.pool.Query(ctx, progressJoin+`
		WHERE up.user_id = $1
		ORDER BY m.order_index ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.Progress, 0)
	for rows.Next() {
		var p models.Progress
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.ModuleID, &p.CompletionPercentage, &p.TimeSpent,
			&p.Score, &p.IsCompleted, &p.LastAccessed,
			&p.ModuleTitle, &p.ContentType, &p.DifficultyLevel,
		); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (r *ProgressRepo) Get(ctx context.Context, userID, moduleID uuid.UUID) (*models.Progress, error) {
	p := &models.Progress{}
	err := r.pool.QueryRow(ctx, progressJoin+`
		WHERE up.user_id = $1 AND up.module_id = $2`, userID, moduleID).Scan(
		&p.ID, &p.UserID, &p.ModuleID, &p.CompletionPercentage, &p.TimeSpent,
		&p.Score, &p.IsCompleted, &p.LastAccessed,
		&p.ModuleTitle, &p.ContentType, &p.DifficultyLevel,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InitIfAbsent lazily creates the zero-progress row for a (user, module) pair.
// Losing the insert race to a concurrent request is fine; the row exists
// either way.
func (r *ProgressRepo) InitIfAbsent(ctx context.Context, userID, moduleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (user_id, module_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, module_id) DO NOTHING`, userID, moduleID)
	return err
}

// Upsert replaces the full mutable snapshot for the pair in one conditional
// statement, keyed on the (user_id, module_id) natural key.
func (r *ProgressRepo) Upsert(ctx context.Context, userID, moduleID uuid.UUID, completion float64, timeSpent, score int, isCompleted bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (user_id, module_id, completion_percentage, time_spent, score, is_completed, last_accessed)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, module_id) DO UPDATE SET
			completion_percentage = EXCLUDED.completion_percentage,
			time_spent = EXCLUDED.time_spent,
			score = EXCLUDED.score,
			is_completed = EXCLUDED.is_completed,
			last_accessed = NOW()`,
		userID, moduleID, completion, timeSpent, score, isCompleted)
	return err
}

// Complete forces the terminal state. time_spent is preserved when a row
// already exists and starts at zero otherwise, so the call is idempotent.
func (r *ProgressRepo) Complete(ctx context.Context, userID, moduleID uuid.UUID, score int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (user_id, module_id, completion_percentage, time_spent, score, is_completed, last_accessed)
		VALUES ($1, $2, 100, 0, $3, TRUE, NOW())
		ON CONFLICT (user_id, module_id) DO UPDATE SET
			completion_percentage = 100,
			score = EXCLUDED.score,
			is_completed = TRUE,
			last_accessed = NOW()`,
		userID, moduleID, score)
	return err
}

func (r *ProgressRepo) Summary(ctx context.Context, userID uuid.UUID) (*models.ProgressSummary, error) {
	s := &models.ProgressSummary{}
	var firstAccess, lastAccess pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_completed),
			COALESCE(ROUND(AVG(completion_percentage), 2), 0)::float8,
			COALESCE(SUM(time_spent), 0),
			COALESCE(SUM(score), 0),
			COALESCE(MAX(score), 0),
			MIN(last_accessed),
			MAX(last_accessed)
		FROM user_progress
		WHERE user_id = $1`, userID).Scan(
		&s.TotalModulesStarted, &s.CompletedModules, &s.AverageCompletion,
		&s.TotalTimeSpent, &s.TotalScore, &s.BestScore,
		&firstAccess, &lastAccess,
	)
	if err != nil {
		return nil, err
	}

	if firstAccess.Valid {
		t := firstAccess.Time
		s.FirstAccess = &t
	}
	if lastAccess.Valid {
		t := lastAccess.Time
		s.LastAccess = &t
	}
	return s, nil
}

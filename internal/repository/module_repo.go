package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maxwavex-backend/internal/models"
)

type ModuleRepo struct {
	pool *pgxpool.Pool
}

func NewModuleRepo(pool *pgxpool.Pool) *ModuleRepo {
	return &ModuleRepo{pool: pool}
}

const moduleColumns = `id, title, description, content_type, difficulty_level, order_index, is_active`

func (r *ModuleRepo) ListActive(ctx context.Context) ([]models.Module, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+moduleColumns+`
		FROM modules
		WHERE is_active = TRUE
		ORDER BY order_index ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanModules(rows)
}

func (r *ModuleRepo) ListActiveByType(ctx context.Context, contentType string) ([]models.Module, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+moduleColumns+`
		FROM modules
		WHERE content_type = $1 AND is_active = TRUE
		ORDER BY order_index ASC`, contentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanModules(rows)
}

// GetActiveByID treats inactive modules the same as absent ones.
func (r *ModuleRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	m := &models.Module{}
	err := r.pool.QueryRow(ctx, `
		SELECT `+moduleColumns+`
		FROM modules
		WHERE id = $1 AND is_active = TRUE`, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.ContentType,
		&m.DifficultyLevel, &m.OrderIndex, &m.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ModuleRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM modules WHERE is_active = TRUE").Scan(&count)
	return count, err
}

func (r *ModuleRepo) StatsSummary(ctx context.Context) (*models.ModuleStatsSummary, error) {
	s := &models.ModuleStatsSummary{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE difficulty_level = 'basic'),
			COUNT(*) FILTER (WHERE difficulty_level = 'intermediate'),
			COUNT(*) FILTER (WHERE difficulty_level = 'advanced'),
			COUNT(*) FILTER (WHERE content_type = 'theory'),
			COUNT(*) FILTER (WHERE content_type = 'equations'),
			COUNT(*) FILTER (WHERE content_type = 'applications'),
			COUNT(*) FILTER (WHERE content_type = 'simulation'),
			COUNT(*) FILTER (WHERE content_type = 'game')
		FROM modules
		WHERE is_active = TRUE`).Scan(
		&s.TotalModules, &s.BasicModules, &s.IntermediateModules, &s.AdvancedModules,
		&s.TheoryModules, &s.EquationsModules, &s.ApplicationsModules,
		&s.SimulationModules, &s.GameModules,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanModules(rows pgx.Rows) ([]models.Module, error) {
	modules := make([]models.Module, 0)
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.ContentType,
			&m.DifficultyLevel, &m.OrderIndex, &m.IsActive); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"maxwavex-backend/internal/models"
)

type GameRepo struct {
	pool *pgxpool.Pool
}

func NewGameRepo(pool *pgxpool.Pool) *GameRepo {
	return &GameRepo{pool: pool}
}

func (r *GameRepo) Insert(ctx context.Context, result *models.GameResult) error {
	query := `
		INSERT INTO game_results (user_id, guest_session_id, game_type, score, level_reached, time_played, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, played_at`

	return r.pool.QueryRow(ctx, query,
		result.UserID, result.GuestSessionID, result.GameType,
		result.Score, result.LevelReached, result.TimePlayed, result.Metadata,
	).Scan(&result.ID, &result.PlayedAt)
}

// ListByGameType returns every result for one game type with its player's
// display name resolved: registered display name, else guest username, else
// "Anonymous". Ranking order is applied by the caller.
func (r *GameRepo) ListByGameType(ctx context.Context, gameType string) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			gr.score,
			gr.level_reached,
			gr.time_played,
			gr.played_at,
			COALESCE(u.display_name, gs.username, 'Anonymous') AS player_name,
			CASE
				WHEN u.id IS NOT NULL THEN 'registered'
				WHEN gs.id IS NOT NULL THEN 'guest'
				ELSE 'anonymous'
			END AS player_type
		FROM game_results gr
		LEFT JOIN users u ON gr.user_id = u.id
		LEFT JOIN guest_sessions gs ON gr.guest_session_id = gs.id
		WHERE gr.game_type = $1`, gameType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Score, &e.LevelReached, &e.TimePlayed, &e.PlayedAt,
			&e.PlayerName, &e.PlayerType); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Per-principal queries come in pairs differing only in the owner column; the
// caller's Principal kind selects one of the two prepared statements.

const generalStatsHead = `
	SELECT
		COUNT(*),
		COUNT(DISTINCT game_type),
		COALESCE(MAX(score), 0),
		COALESCE(AVG(score), 0)::float8,
		COALESCE(MAX(level_reached), 0),
		COALESCE(AVG(level_reached), 0)::float8,
		COALESCE(SUM(time_played), 0),
		MIN(played_at),
		MAX(played_at)
	FROM game_results`

const (
	generalStatsByUser  = generalStatsHead + ` WHERE user_id = $1`
	generalStatsByGuest = generalStatsHead + ` WHERE guest_session_id = $1`
)

func (r *GameRepo) GeneralStats(ctx context.Context, principal models.Principal) (*models.GameAggregate, error) {
	query := generalStatsByUser
	if principal.IsGuest() {
		query = generalStatsByGuest
	}

	agg := &models.GameAggregate{}
	var firstGame, lastGame pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, query, principal.ID).Scan(
		&agg.TotalGamesPlayed, &agg.UniqueGamesPlayed, &agg.BestScore, &agg.AverageScore,
		&agg.HighestLevel, &agg.AverageLevel, &agg.TotalTimePlayed,
		&firstGame, &lastGame,
	)
	if err != nil {
		return nil, err
	}

	if firstGame.Valid {
		t := firstGame.Time
		agg.FirstGame = &t
	}
	if lastGame.Valid {
		t := lastGame.Time
		agg.LastGame = &t
	}
	return agg, nil
}

const gameTypeStatsHead = `
	SELECT
		game_type,
		COUNT(*),
		COALESCE(MAX(score), 0),
		COALESCE(AVG(score), 0)::float8,
		COALESCE(MAX(level_reached), 0),
		COALESCE(SUM(time_played), 0)
	FROM game_results`

const gameTypeStatsTail = `
	GROUP BY game_type
	ORDER BY MAX(score) DESC`

const (
	gameTypeStatsByUser  = gameTypeStatsHead + ` WHERE user_id = $1` + gameTypeStatsTail
	gameTypeStatsByGuest = gameTypeStatsHead + ` WHERE guest_session_id = $1` + gameTypeStatsTail
)

func (r *GameRepo) StatsByGameType(ctx context.Context, principal models.Principal) ([]models.GameTypeAggregate, error) {
	query := gameTypeStatsByUser
	if principal.IsGuest() {
		query = gameTypeStatsByGuest
	}

	rows, err := r.pool.Query(ctx, query, principal.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.GameTypeAggregate, 0)
	for rows.Next() {
		var s models.GameTypeAggregate
		if err := rows.Scan(&s.GameType, &s.GamesPlayed, &s.BestScore,
			&s.AverageScore, &s.HighestLevel, &s.TotalTime); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

const recentGamesHead = `
	SELECT game_type, score, level_reached, time_played, played_at
	FROM game_results`

const recentGamesTail = `
	ORDER BY played_at DESC
	LIMIT 10`

const (
	recentGamesByUser  = recentGamesHead + ` WHERE user_id = $1` + recentGamesTail
	recentGamesByGuest = recentGamesHead + ` WHERE guest_session_id = $1` + recentGamesTail
)

func (r *GameRepo) RecentGames(ctx context.Context, principal models.Principal) ([]models.RecentGame, error) {
	query := recentGamesByUser
	if principal.IsGuest() {
		query = recentGamesByGuest
	}

	rows, err := r.pool.Query(ctx, query, principal.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.RecentGame, 0)
	for rows.Next() {
		var g models.RecentGame
		if err := rows.Scan(&g.GameType, &g.Score, &g.LevelReached, &g.TimePlayed, &g.PlayedAt); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

const personalBestHead = `
	SELECT
		COALESCE(MAX(score), 0),
		COALESCE(MAX(level_reached), 0),
		COALESCE(MIN(time_played), 0),
		COUNT(*),
		COALESCE(AVG(score), 0)::float8,
		MAX(played_at)
	FROM game_results`

const (
	personalBestByUser  = personalBestHead + ` WHERE user_id = $1 AND game_type = $2`
	personalBestByGuest = personalBestHead + ` WHERE guest_session_id = $1 AND game_type = $2`
)

func (r *GameRepo) PersonalBestSummary(ctx context.Context, principal models.Principal, gameType string) (*models.PersonalBestSummary, error) {
	query := personalBestByUser
	if principal.IsGuest() {
		query = personalBestByGuest
	}

	s := &models.PersonalBestSummary{}
	var lastPlayed pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, query, principal.ID, gameType).Scan(
		&s.BestScore, &s.HighestLevel, &s.FastestTime, &s.TimesPlayed,
		&s.AverageScore, &lastPlayed,
	)
	if err != nil {
		return nil, err
	}

	if lastPlayed.Valid {
		t := lastPlayed.Time
		s.LastPlayed = &t
	}
	return s, nil
}

const resultsHead = `
	SELECT id, user_id, guest_session_id, game_type, score, level_reached, time_played, metadata, played_at
	FROM game_results`

const (
	resultsByUserAndType  = resultsHead + ` WHERE user_id = $1 AND game_type = $2`
	resultsByGuestAndType = resultsHead + ` WHERE guest_session_id = $1 AND game_type = $2`
)

// ListForPrincipal returns all of one principal's results for a game type,
// unordered; the caller picks the best row with the shared ranking order.
func (r *GameRepo) ListForPrincipal(ctx context.Context, principal models.Principal, gameType string) ([]models.GameResult, error) {
	query := resultsByUserAndType
	if principal.IsGuest() {
		query = resultsByGuestAndType
	}

	rows, err := r.pool.Query(ctx, query, principal.ID, gameType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.GameResult, 0)
	for rows.Next() {
		var g models.GameResult
		if err := rows.Scan(&g.ID, &g.UserID, &g.GuestSessionID, &g.GameType,
			&g.Score, &g.LevelReached, &g.TimePlayed, &g.Metadata, &g.PlayedAt); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

func (r *GameRepo) GlobalStats(ctx context.Context) (*models.GlobalGameStats, error) {
	s := &models.GlobalGameStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT COALESCE(user_id, guest_session_id)),
			COUNT(DISTINCT game_type),
			COALESCE(MAX(score), 0),
			COALESCE(AVG(score), 0)::float8,
			COALESCE(MAX(level_reached), 0),
			COALESCE(SUM(time_played), 0)
		FROM game_results`).Scan(
		&s.TotalGamesPlayed, &s.UniquePlayers, &s.AvailableGames,
		&s.HighestScoreEver, &s.GlobalAverageScore, &s.HighestLevelEver,
		&s.TotalPlaytimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *GameRepo) PopularGames(ctx context.Context) ([]models.PopularGame, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			game_type,
			COUNT(*),
			COUNT(DISTINCT COALESCE(user_id, guest_session_id)),
			COALESCE(MAX(score), 0),
			COALESCE(AVG(score), 0)::float8
		FROM game_results
		GROUP BY game_type
		ORDER BY COUNT(*) DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.PopularGame, 0)
	for rows.Next() {
		var g models.PopularGame
		if err := rows.Scan(&g.GameType, &g.TimesPlayed, &g.UniquePlayers,
			&g.HighestScore, &g.AverageScore); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *GameRepo) WeeklyActivity(ctx context.Context) ([]models.DailyActivity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			DATE(played_at) AS game_date,
			COUNT(*),
			COUNT(DISTINCT COALESCE(user_id, guest_session_id))
		FROM game_results
		WHERE played_at >= NOW() - INTERVAL '7 days'
		GROUP BY DATE(played_at)
		ORDER BY game_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]models.DailyActivity, 0)
	for rows.Next() {
		var d models.DailyActivity
		if err := rows.Scan(&d.GameDate, &d.GamesPlayed, &d.ActivePlayers); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

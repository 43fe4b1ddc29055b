package services

import (
	"context"
	"encoding/json"
	"log"
	"sort"

	"github.com/redis/go-redis/v9"

	"maxwavex-backend/internal/models"
)

const (
	leaderboardDefaultLimit = 10
	leaderboardMaxLimit     = 100
)

// LeaderboardChannel returns the pub/sub channel carrying updates for one
// game type.
func LeaderboardChannel(gameType string) string {
	return "leaderboard_updates:" + gameType
}

type gameStore interface {
	Insert(ctx context.Context, result *models.GameResult) error
	ListByGameType(ctx context.Context, gameType string) ([]models.LeaderboardEntry, error)
	GeneralStats(ctx context.Context, principal models.Principal) (*models.GameAggregate, error)
	StatsByGameType(ctx context.Context, principal models.Principal) ([]models.GameTypeAggregate, error)
	RecentGames(ctx context.Context, principal models.Principal) ([]models.RecentGame, error)
	PersonalBestSummary(ctx context.Context, principal models.Principal, gameType string) (*models.PersonalBestSummary, error)
	ListForPrincipal(ctx context.Context, principal models.Principal, gameType string) ([]models.GameResult, error)
	GlobalStats(ctx context.Context) (*models.GlobalGameStats, error)
	PopularGames(ctx context.Context) ([]models.PopularGame, error)
	WeeklyActivity(ctx context.Context) ([]models.DailyActivity, error)
}

// GameService records play results and derives leaderboards and statistics
// from them. Results are write-once; there is no update or delete path.
type GameService struct {
	games gameStore
	redis *redis.Client
}

func NewGameService(games gameStore, redisClient *redis.Client) *GameService {
	return &GameService{games: games, redis: redisClient}
}

// Record validates and persists one play session on behalf of the principal.
// Registered users are stamped by user id, guests by guest session id.
func (s *GameService) Record(ctx context.Context, principal models.Principal, req models.GameResultRequest) (*models.GameResult, error) {
	fieldErrors := make(map[string]string)
	if req.GameType == "" {
		fieldErrors["gameType"] = "gameType is required"
	}
	if req.Score == nil {
		fieldErrors["score"] = "score is required"
	}
	if req.LevelReached == nil {
		fieldErrors["levelReached"] = "levelReached is required"
	}
	if req.TimePlayed == nil {
		fieldErrors["timePlayed"] = "timePlayed is required"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if *req.Score < 0 {
		fieldErrors["score"] = "score must not be negative"
	}
	if *req.LevelReached < 1 {
		fieldErrors["levelReached"] = "levelReached must be at least 1"
	}
	if *req.TimePlayed < 0 {
		fieldErrors["timePlayed"] = "timePlayed must not be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	result := &models.GameResult{
		GameType:     req.GameType,
		Score:        *req.Score,
		LevelReached: *req.LevelReached,
		TimePlayed:   *req.TimePlayed,
		Metadata:     req.Metadata,
	}

	id := principal.ID
	if principal.IsGuest() {
		result.GuestSessionID = &id
	} else {
		result.UserID = &id
	}

	if err := s.games.Insert(ctx, result); err != nil {
		return nil, err
	}

	go s.publishUpdate(result)

	return result, nil
}

// Leaderboard ranks all results for one game type. limit defaults to 10 when
// zero or negative and is capped at 100.
func (s *GameService) Leaderboard(ctx context.Context, gameType string, limit int) (*models.Leaderboard, error) {
	if limit <= 0 {
		limit = leaderboardDefaultLimit
	}
	if limit > leaderboardMaxLimit {
		limit = leaderboardMaxLimit
	}

	entries, err := s.games.ListByGameType(ctx, gameType)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return betterRun(entries[i].Score, entries[i].LevelReached, entries[i].TimePlayed,
			entries[j].Score, entries[j].LevelReached, entries[j].TimePlayed)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &models.Leaderboard{
		GameType:     gameType,
		TotalEntries: len(entries),
		Entries:      entries,
	}, nil
}

func (s *GameService) UserStats(ctx context.Context, principal models.Principal) (*models.UserGameStats, error) {
	general, err := s.games.GeneralStats(ctx, principal)
	if err != nil {
		return nil, err
	}
	byType, err := s.games.StatsByGameType(ctx, principal)
	if err != nil {
		return nil, err
	}
	recent, err := s.games.RecentGames(ctx, principal)
	if err != nil {
		return nil, err
	}

	return &models.UserGameStats{
		General:     *general,
		ByGameType:  byType,
		RecentGames: recent,
	}, nil
}

func (s *GameService) PersonalBest(ctx context.Context, principal models.Principal, gameType string) (*models.PersonalBest, error) {
	summary, err := s.games.PersonalBestSummary(ctx, principal, gameType)
	if err != nil {
		return nil, err
	}

	results, err := s.games.ListForPrincipal(ctx, principal, gameType)
	if err != nil {
		return nil, err
	}

	var best *models.GameResult
	for i := range results {
		if best == nil || betterRun(results[i].Score, results[i].LevelReached, results[i].TimePlayed,
			best.Score, best.LevelReached, best.TimePlayed) {
			best = &results[i]
		}
	}

	return &models.PersonalBest{
		GameType: gameType,
		Summary:  *summary,
		BestGame: best,
	}, nil
}

func (s *GameService) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	global, err := s.games.GlobalStats(ctx)
	if err != nil {
		return nil, err
	}
	popular, err := s.games.PopularGames(ctx)
	if err != nil {
		return nil, err
	}
	weekly, err := s.games.WeeklyActivity(ctx)
	if err != nil {
		return nil, err
	}

	return &models.SystemStats{
		Global:         *global,
		PopularGames:   popular,
		WeeklyActivity: weekly,
	}, nil
}

// betterRun is the one ranking order for play results: higher score first,
// then higher level, then faster time.
func betterRun(aScore, aLevel, aTime, bScore, bLevel, bTime int) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	if aLevel != bLevel {
		return aLevel > bLevel
	}
	return aTime < bTime
}

func (s *GameService) publishUpdate(result *models.GameResult) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(models.LeaderboardUpdate{
		GameType:     result.GameType,
		Score:        result.Score,
		LevelReached: result.LevelReached,
		PlayedAt:     result.PlayedAt,
	})
	if err != nil {
		return
	}

	if err := s.redis.Publish(context.Background(), LeaderboardChannel(result.GameType), payload).Err(); err != nil {
		log.Printf("leaderboard publish failed: %v", err)
	}
}

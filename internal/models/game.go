package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GameResult is one immutable submitted play session. Exactly one of UserID /
// GuestSessionID is set, mirroring the Principal that recorded it.
type GameResult struct {
	ID             uuid.UUID       `json:"id"`
	UserID         *uuid.UUID      `json:"user_id"`
	GuestSessionID *uuid.UUID      `json:"guest_session_id"`
	GameType       string          `json:"game_type"`
	Score          int             `json:"score"`
	LevelReached   int             `json:"level_reached"`
	TimePlayed     int             `json:"time_played"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	PlayedAt       time.Time       `json:"played_at"`
}

// GameResultRequest uses pointers so missing fields can be told apart from
// explicit zeros; presence of all four is required.
type GameResultRequest struct {
	GameType     string          `json:"gameType"`
	Score        *int            `json:"score"`
	LevelReached *int            `json:"levelReached"`
	TimePlayed   *int            `json:"timePlayed"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

const (
	PlayerTypeRegistered = "registered"
	PlayerTypeGuest      = "guest"
	PlayerTypeAnonymous  = "anonymous"
)

type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	Score        int       `json:"score"`
	LevelReached int       `json:"levelReached"`
	TimePlayed   int       `json:"timePlayed"`
	PlayedAt     time.Time `json:"playedAt"`
	PlayerName   string    `json:"playerName"`
	PlayerType   string    `json:"playerType"`
}

type Leaderboard struct {
	GameType     string             `json:"gameType"`
	TotalEntries int                `json:"totalEntries"`
	Entries      []LeaderboardEntry `json:"leaderboard"`
}

type GameAggregate struct {
	TotalGamesPlayed  int        `json:"total_games_played"`
	UniqueGamesPlayed int        `json:"unique_games_played"`
	BestScore         int        `json:"best_score"`
	AverageScore      float64    `json:"average_score"`
	HighestLevel      int        `json:"highest_level"`
	AverageLevel      float64    `json:"average_level"`
	TotalTimePlayed   int        `json:"total_time_played"`
	FirstGame         *time.Time `json:"first_game"`
	LastGame          *time.Time `json:"last_game"`
}

type GameTypeAggregate struct {
	GameType     string  `json:"game_type"`
	GamesPlayed  int     `json:"games_played"`
	BestScore    int     `json:"best_score"`
	AverageScore float64 `json:"average_score"`
	HighestLevel int     `json:"highest_level"`
	TotalTime    int     `json:"total_time"`
}

type RecentGame struct {
	GameType     string    `json:"game_type"`
	Score        int       `json:"score"`
	LevelReached int       `json:"level_reached"`
	TimePlayed   int       `json:"time_played"`
	PlayedAt     time.Time `json:"played_at"`
}

type UserGameStats struct {
	General     GameAggregate       `json:"general"`
	ByGameType  []GameTypeAggregate `json:"byGameType"`
	RecentGames []RecentGame        `json:"recentGames"`
}

type PersonalBestSummary struct {
	BestScore    int        `json:"best_score"`
	HighestLevel int        `json:"highest_level"`
	FastestTime  int        `json:"fastest_time"`
	TimesPlayed  int        `json:"times_played"`
	AverageScore float64    `json:"average_score"`
	LastPlayed   *time.Time `json:"last_played"`
}

type PersonalBest struct {
	GameType string              `json:"gameType"`
	Summary  PersonalBestSummary `json:"summary"`
	BestGame *GameResult         `json:"bestGame"`
}

type GlobalGameStats struct {
	TotalGamesPlayed     int     `json:"total_games_played"`
	UniquePlayers        int     `json:"unique_players"`
	AvailableGames       int     `json:"available_games"`
	HighestScoreEver     int     `json:"highest_score_ever"`
	GlobalAverageScore   float64 `json:"global_average_score"`
	HighestLevelEver     int     `json:"highest_level_ever"`
	TotalPlaytimeSeconds int     `json:"total_playtime_seconds"`
}

type PopularGame struct {
	GameType      string  `json:"game_type"`
	TimesPlayed   int     `json:"times_played"`
	UniquePlayers int     `json:"unique_players"`
	HighestScore  int     `json:"highest_score"`
	AverageScore  float64 `json:"average_score"`
}

type DailyActivity struct {
	GameDate      time.Time `json:"game_date"`
	GamesPlayed   int       `json:"games_played"`
	ActivePlayers int       `json:"active_players"`
}

type SystemStats struct {
	Global         GlobalGameStats `json:"global"`
	PopularGames   []PopularGame   `json:"popularGames"`
	WeeklyActivity []DailyActivity `json:"weeklyActivity"`
}

// LeaderboardUpdate is the payload published on the leaderboard pub/sub
// channel whenever a new result lands.
type LeaderboardUpdate struct {
	GameType     string    `json:"gameType"`
	Score        int       `json:"score"`
	LevelReached int       `json:"levelReached"`
	PlayedAt     time.Time `json:"playedAt"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Progress is the single mutable completion snapshot for one (user, module)
// pair, returned joined with its module's display fields.
type Progress struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"user_id"`
	ModuleID             uuid.UUID `json:"module_id"`
	CompletionPercentage float64   `json:"completion_percentage"`
	TimeSpent            int       `json:"time_spent"`
	Score                int       `json:"score"`
	IsCompleted          bool      `json:"is_completed"`
	LastAccessed         time.Time `json:"last_accessed"`
	ModuleTitle          string    `json:"module_title"`
	ContentType          string    `json:"content_type"`
	DifficultyLevel      string    `json:"difficulty_level"`
}

// ProgressUpdateRequest carries self-reported progress. Pointer fields
// distinguish omitted values from explicit zeros for validation purposes only;
// omitted fields are written as zero, not as the previously stored value.
type ProgressUpdateRequest struct {
	CompletionPercentage *float64 `json:"completion_percentage"`
	TimeSpent            *int     `json:"time_spent"`
	Score                *int     `json:"score"`
}

type CompleteRequest struct {
	Score *int `json:"score"`
}

type ProgressSummary struct {
	TotalModulesStarted   int        `json:"total_modules_started"`
	CompletedModules      int        `json:"completed_modules"`
	AverageCompletion     float64    `json:"average_completion"`
	TotalTimeSpent        int        `json:"total_time_spent"`
	TotalScore            int        `json:"total_score"`
	BestScore             int        `json:"best_score"`
	FirstAccess           *time.Time `json:"first_access"`
	LastAccess            *time.Time `json:"last_access"`
	TotalAvailableModules int        `json:"total_available_modules"`
	CompletionRate        int        `json:"completion_rate"`
}

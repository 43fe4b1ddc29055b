package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"maxwavex-backend/internal/models"
)

type progressStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Progress, error)
	Get(ctx context.Context, userID, moduleID uuid.UUID) (*models.Progress, error)
	InitIfAbsent(ctx context.Context, userID, moduleID uuid.UUID) error
	Upsert(ctx context.Context, userID, moduleID uuid.UUID, completion float64, timeSpent, score int, isCompleted bool) error
	Complete(ctx context.Context, userID, moduleID uuid.UUID, score int) error
	Summary(ctx context.Context, userID uuid.UUID) (*models.ProgressSummary, error)
}

type moduleCatalog interface {
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	CountActive(ctx context.Context) (int, error)
}

// ProgressService owns the per-(user, module) completion state. Guests never
// get past the principal guard: progress persistence is registered-only.
type ProgressService struct {
	progress progressStore
	catalog  moduleCatalog
}

func NewProgressService(progress progressStore, catalog moduleCatalog) *ProgressService {
	return &ProgressService{progress: progress, catalog: catalog}
}

// deriveCompleted is the single derivation for the completion flag; every
// write path goes through it or writes the forced terminal state.
func deriveCompleted(completionPercentage float64) bool {
	return completionPercentage >= 100
}

func (s *ProgressService) guard(principal models.Principal) error {
	if principal.IsGuest() {
		return &ForbiddenError{Message: "Guests cannot save progress. Create an account to keep yours."}
	}
	return nil
}

func (s *ProgressService) List(ctx context.Context, principal models.Principal) ([]models.Progress, error) {
	if err := s.guard(principal); err != nil {
		return nil, err
	}
	return s.progress.ListByUser(ctx, principal.ID)
}

// GetOrInit returns the joined progress row for one module, lazily creating
// the zero-progress record on first read.
func (s *ProgressService) GetOrInit(ctx context.Context, principal models.Principal, moduleID uuid.UUID) (*models.Progress, error) {
	if err := s.guard(principal); err != nil {
		return nil, err
	}
	if err := s.requireModule(ctx, moduleID); err != nil {
		return nil, err
	}
	if err := s.progress.InitIfAbsent(ctx, principal.ID, moduleID); err != nil {
		return nil, err
	}
	return s.progress.Get(ctx, principal.ID, moduleID)
}

// Record validates and stores a self-reported progress snapshot. Omitted
// numeric fields are written as zero, not as the previously stored value; the
// client sends the full snapshot on every update.
func (s *ProgressService) Record(ctx context.Context, principal models.Principal, moduleID uuid.UUID, req models.ProgressUpdateRequest) (*models.Progress, error) {
	if err := s.guard(principal); err != nil {
		return nil, err
	}

	fieldErrors := make(map[string]string)
	if req.CompletionPercentage != nil && (*req.CompletionPercentage < 0 || *req.CompletionPercentage > 100) {
		fieldErrors["completion_percentage"] = "Completion percentage must be between 0 and 100"
	}
	if req.TimeSpent != nil && *req.TimeSpent < 0 {
		fieldErrors["time_spent"] = "Time spent cannot be negative"
	}
	if req.Score != nil && *req.Score < 0 {
		fieldErrors["score"] = "Score cannot be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if err := s.requireModule(ctx, moduleID); err != nil {
		return nil, err
	}

	var completion float64
	if req.CompletionPercentage != nil {
		completion = *req.CompletionPercentage
	}
	var timeSpent int
	if req.TimeSpent != nil {
		timeSpent = *req.TimeSpent
	}
	var score int
	if req.Score != nil {
		score = *req.Score
	}

	if err := s.progress.Upsert(ctx, principal.ID, moduleID, completion, timeSpent, score, deriveCompleted(completion)); err != nil {
		return nil, err
	}
	return s.progress.Get(ctx, principal.ID, moduleID)
}

// Complete forces the terminal state for the pair. Calling it again with the
// same score is a no-op beyond the access timestamp.
func (s *ProgressService) Complete(ctx context.Context, principal models.Principal, moduleID uuid.UUID, req models.CompleteRequest) (*models.Progress, error) {
	if err := s.guard(principal); err != nil {
		return nil, err
	}
	if req.Score != nil && *req.Score < 0 {
		return nil, &ValidationError{Fields: map[string]string{"score": "Score cannot be negative"}}
	}
	if err := s.requireModule(ctx, moduleID); err != nil {
		return nil, err
	}

	var score int
	if req.Score != nil {
		score = *req.Score
	}

	if err := s.progress.Complete(ctx, principal.ID, moduleID, score); err != nil {
		return nil, err
	}
	return s.progress.Get(ctx, principal.ID, moduleID)
}

func (s *ProgressService) Summarize(ctx context.Context, principal models.Principal) (*models.ProgressSummary, error) {
	if err := s.guard(principal); err != nil {
		return nil, err
	}

	summary, err := s.progress.Summary(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	available, err := s.catalog.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	summary.TotalAvailableModules = available
	if available > 0 {
		summary.CompletionRate = int(math.Round(float64(summary.CompletedModules) / float64(available) * 100))
	}
	return summary, nil
}

func (s *ProgressService) requireModule(ctx context.Context, moduleID uuid.UUID) error {
	if _, err := s.catalog.GetActiveByID(ctx, moduleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Module not found"}
		}
		return err
	}
	return nil
}

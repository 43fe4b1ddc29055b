package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"maxwavex-backend/internal/models"
)

type stubProgressStore struct {
	rows map[uuid.UUID]*models.Progress

	lastCompletion  float64
	lastTimeSpent   int
	lastScore       int
	lastIsCompleted bool
	upserted        bool
	completed       bool
	completedScore  int

	summary *models.ProgressSummary
}

func (s *stubProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Progress, error) {
	return nil, nil
}

func (s *stubProgressStore) Get(ctx context.Context, userID, moduleID uuid.UUID) (*models.Progress, error) {
	if p, ok := s.rows[moduleID]; ok {
		return p, nil
	}
	return &models.Progress{UserID: userID, ModuleID: moduleID}, nil
}

func (s *stubProgressStore) InitIfAbsent(ctx context.Context, userID, moduleID uuid.UUID) error {
	return nil
}

func (s *stubProgressStore) Upsert(ctx context.Context, userID, moduleID uuid.UUID, completion float64, timeSpent, score int, isCompleted bool) error {
	s.upserted = true
	s.lastCompletion = completion
	s.lastTimeSpent = timeSpent
	s.lastScore = score
	s.lastIsCompleted = isCompleted
	return nil
}

func (s *stubProgressStore) Complete(ctx context.Context, userID, moduleID uuid.UUID, score int) error {
	s.completed = true
	s.completedScore = score
	return nil
}

func (s *stubProgressStore) Summary(ctx context.Context, userID uuid.UUID) (*models.ProgressSummary, error) {
	if s.summary != nil {
		return s.summary, nil
	}
	return &models.ProgressSummary{}, nil
}

type stubCatalog struct {
	known   map[uuid.UUID]bool
	active  int
	failAll bool
}

func (s *stubCatalog) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	if s.failAll || !s.known[id] {
		return nil, pgx.ErrNoRows
	}
	return &models.Module{ID: id}, nil
}

func (s *stubCatalog) CountActive(ctx context.Context) (int, error) {
	return s.active, nil
}

func floatPtr(f float64) *float64 { return &f }

func TestProgressService_GuestsAreRejected(t *testing.T) {
	svc := NewProgressService(&stubProgressStore{}, &stubCatalog{})
	guest := models.GuestPrincipal(uuid.New())
	moduleID := uuid.New()

	if _, err := svc.List(context.Background(), guest); !isForbidden(err) {
		t.Fatalf("List: expected ForbiddenError, got %v", err)
	}
	if _, err := svc.GetOrInit(context.Background(), guest, moduleID); !isForbidden(err) {
		t.Fatalf("GetOrInit: expected ForbiddenError, got %v", err)
	}
	if _, err := svc.Record(context.Background(), guest, moduleID, models.ProgressUpdateRequest{}); !isForbidden(err) {
		t.Fatalf("Record: expected ForbiddenError, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), guest, moduleID, models.CompleteRequest{}); !isForbidden(err) {
		t.Fatalf("Complete: expected ForbiddenError, got %v", err)
	}
	if _, err := svc.Summarize(context.Background(), guest); !isForbidden(err) {
		t.Fatalf("Summarize: expected ForbiddenError, got %v", err)
	}
}

func isForbidden(err error) bool {
	_, ok := err.(*ForbiddenError)
	return ok
}

func TestProgressService_Record_RangeValidation(t *testing.T) {
	moduleID := uuid.New()
	catalog := &stubCatalog{known: map[uuid.UUID]bool{moduleID: true}}
	user := models.RegisteredPrincipal(uuid.New())

	tests := []struct {
		name  string
		req   models.ProgressUpdateRequest
		field string
	}{
		{"completion below zero", models.ProgressUpdateRequest{CompletionPercentage: floatPtr(-1)}, "completion_percentage"},
		{"completion above hundred", models.ProgressUpdateRequest{CompletionPercentage: floatPtr(100.5)}, "completion_percentage"},
		{"negative time", models.ProgressUpdateRequest{TimeSpent: intPtr(-10)}, "time_spent"},
		{"negative score", models.ProgressUpdateRequest{Score: intPtr(-1)}, "score"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubProgressStore{}
			svc := NewProgressService(store, catalog)

			_, err := svc.Record(context.Background(), user, moduleID, tc.req)
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, present := verr.Fields[tc.field]; !present {
				t.Fatalf("expected field error for %q, got %v", tc.field, verr.Fields)
			}
			if store.upserted {
				t.Fatalf("invalid input must not reach the store")
			}
		})
	}
}

func TestProgressService_Record_CompletionFlag(t *testing.T) {
	moduleID := uuid.New()
	catalog := &stubCatalog{known: map[uuid.UUID]bool{moduleID: true}}
	user := models.RegisteredPrincipal(uuid.New())

	tests := []struct {
		name       string
		completion float64
		want       bool
	}{
		{"just below", 99.9, false},
		{"exactly hundred", 100, true},
		{"zero", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubProgressStore{}
			svc := NewProgressService(store, catalog)

			_, err := svc.Record(context.Background(), user, moduleID, models.ProgressUpdateRequest{CompletionPercentage: floatPtr(tc.completion)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.lastIsCompleted != tc.want {
				t.Fatalf("completion %.1f: expected is_completed=%v, got %v", tc.completion, tc.want, store.lastIsCompleted)
			}
		})
	}
}

func TestProgressService_Record_OmittedFieldsWriteZero(t *testing.T) {
	moduleID := uuid.New()
	catalog := &stubCatalog{known: map[uuid.UUID]bool{moduleID: true}}
	store := &stubProgressStore{}
	svc := NewProgressService(store, catalog)

	_, err := svc.Record(context.Background(), models.RegisteredPrincipal(uuid.New()), moduleID, models.ProgressUpdateRequest{
		Score: intPtr(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastScore != 42 {
		t.Fatalf("expected score 42, got %d", store.lastScore)
	}
	if store.lastCompletion != 0 || store.lastTimeSpent != 0 {
		t.Fatalf("omitted fields must be stored as zero, got completion=%.1f time=%d", store.lastCompletion, store.lastTimeSpent)
	}
}

func TestProgressService_UnknownModule(t *testing.T) {
	catalog := &stubCatalog{failAll: true}
	svc := NewProgressService(&stubProgressStore{}, catalog)
	user := models.RegisteredPrincipal(uuid.New())
	moduleID := uuid.New()

	if _, err := svc.GetOrInit(context.Background(), user, moduleID); !isNotFound(err) {
		t.Fatalf("GetOrInit: expected NotFoundError, got %v", err)
	}
	if _, err := svc.Record(context.Background(), user, moduleID, models.ProgressUpdateRequest{}); !isNotFound(err) {
		t.Fatalf("Record: expected NotFoundError, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), user, moduleID, models.CompleteRequest{}); !isNotFound(err) {
		t.Fatalf("Complete: expected NotFoundError, got %v", err)
	}
}

func isNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

func TestProgressService_Complete(t *testing.T) {
	moduleID := uuid.New()
	catalog := &stubCatalog{known: map[uuid.UUID]bool{moduleID: true}}
	store := &stubProgressStore{}
	svc := NewProgressService(store, catalog)

	_, err := svc.Complete(context.Background(), models.RegisteredPrincipal(uuid.New()), moduleID, models.CompleteRequest{Score: intPtr(87)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.completed || store.completedScore != 87 {
		t.Fatalf("expected completion with score 87, got completed=%v score=%d", store.completed, store.completedScore)
	}
}

// memProgressStore keeps real rows so write-then-read behavior can be
// asserted, unlike the call-recording stub above.
type memProgressStore struct {
	rows map[uuid.UUID]map[uuid.UUID]models.Progress
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{rows: make(map[uuid.UUID]map[uuid.UUID]models.Progress)}
}

func (s *memProgressStore) row(userID, moduleID uuid.UUID) (models.Progress, bool) {
	p, ok := s.rows[userID][moduleID]
	return p, ok
}

func (s *memProgressStore) put(p models.Progress) {
	if s.rows[p.UserID] == nil {
		s.rows[p.UserID] = make(map[uuid.UUID]models.Progress)
	}
	s.rows[p.UserID][p.ModuleID] = p
}

func (s *memProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Progress, error) {
	records := make([]models.Progress, 0)
	for _, p := range s.rows[userID] {
		records = append(records, p)
	}
	return records, nil
}

func (s *memProgressStore) Get(ctx context.Context, userID, moduleID uuid.UUID) (*models.Progress, error) {
	p, ok := s.row(userID, moduleID)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (s *memProgressStore) InitIfAbsent(ctx context.Context, userID, moduleID uuid.UUID) error {
	if _, ok := s.row(userID, moduleID); !ok {
		s.put(models.Progress{ID: uuid.New(), UserID: userID, ModuleID: moduleID, LastAccessed: time.Now()})
	}
	return nil
}

func (s *memProgressStore) Upsert(ctx context.Context, userID, moduleID uuid.UUID, completion float64, timeSpent, score int, isCompleted bool) error {
	p, ok := s.row(userID, moduleID)
	if !ok {
		p = models.Progress{ID: uuid.New(), UserID: userID, ModuleID: moduleID}
	}
	p.CompletionPercentage = completion
	p.TimeSpent = timeSpent
	p.Score = score
	p.IsCompleted = isCompleted
	p.LastAccessed = time.Now()
	s.put(p)
	return nil
}

func (s *memProgressStore) Complete(ctx context.Context, userID, moduleID uuid.UUID, score int) error {
	p, ok := s.row(userID, moduleID)
	if !ok {
		p = models.Progress{ID: uuid.New(), UserID: userID, ModuleID: moduleID}
	}
	// time_spent is untouched on an existing row
	p.CompletionPercentage = 100
	p.Score = score
	p.IsCompleted = true
	p.LastAccessed = time.Now()
	s.put(p)
	return nil
}

func (s *memProgressStore) Summary(ctx context.Context, userID uuid.UUID) (*models.ProgressSummary, error) {
	return &models.ProgressSummary{}, nil
}

func TestProgressService_WriteThenRead(t *testing.T) {
	moduleID := uuid.New()
	catalog := &stubCatalog{known: map[uuid.UUID]bool{moduleID: true}}
	svc := NewProgressService(newMemProgressStore(), catalog)
	user := models.RegisteredPrincipal(uuid.New())

	written, err := svc.Record(context.Background(), user, moduleID, models.ProgressUpdateRequest{
		CompletionPercentage: floatPtr(40),
		TimeSpent:            intPtr(300),
		Score:                intPtr(25),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	read, err := svc.GetOrInit(context.Background(), user, moduleID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if read.CompletionPercentage != 40 || read.TimeSpent != 300 || read.Score != 25 {
		t.Fatalf("read back completion=%.1f time=%d score=%d, want the just-written 40/300/25",
			read.CompletionPercentage, read.TimeSpent, read.Score)
	}
	if read.IsCompleted != written.IsCompleted || read.IsCompleted {
		t.Fatalf("expected is_completed false at 40%%, got %v", read.IsCompleted)
	}
}

func TestProgressService_Complete_Idempotent(t *testing.T) {
	moduleID := uuid.New()
	catalog := &stubCatalog{known: map[uuid.UUID]bool{moduleID: true}}
	svc := NewProgressService(newMemProgressStore(), catalog)
	user := models.RegisteredPrincipal(uuid.New())

	// Existing time_spent must survive completion
	if _, err := svc.Record(context.Background(), user, moduleID, models.ProgressUpdateRequest{
		CompletionPercentage: floatPtr(80),
		TimeSpent:            intPtr(600),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.Complete(context.Background(), user, moduleID, models.CompleteRequest{Score: intPtr(95)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Complete(context.Background(), user, moduleID, models.CompleteRequest{Score: intPtr(95)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.CompletionPercentage != 100 || !first.IsCompleted || first.Score != 95 {
		t.Fatalf("unexpected completed state: completion=%.1f is_completed=%v score=%d",
			first.CompletionPercentage, first.IsCompleted, first.Score)
	}
	if first.TimeSpent != 600 {
		t.Fatalf("expected time_spent 600 preserved, got %d", first.TimeSpent)
	}

	a, b := *first, *second
	a.LastAccessed, b.LastAccessed = time.Time{}, time.Time{}
	if a != b {
		t.Fatalf("repeated completion changed the record:\nfirst:  %+v\nsecond: %+v", a, b)
	}
}

func TestProgressService_Summarize_CompletionRate(t *testing.T) {
	user := models.RegisteredPrincipal(uuid.New())

	t.Run("rounds the rate", func(t *testing.T) {
		store := &stubProgressStore{summary: &models.ProgressSummary{CompletedModules: 2}}
		svc := NewProgressService(store, &stubCatalog{active: 3})

		summary, err := svc.Summarize(context.Background(), user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.CompletionRate != 67 {
			t.Fatalf("expected completion rate 67, got %d", summary.CompletionRate)
		}
		if summary.TotalAvailableModules != 3 {
			t.Fatalf("expected 3 available modules, got %d", summary.TotalAvailableModules)
		}
	})

	t.Run("zero modules means zero rate", func(t *testing.T) {
		store := &stubProgressStore{summary: &models.ProgressSummary{}}
		svc := NewProgressService(store, &stubCatalog{active: 0})

		summary, err := svc.Summarize(context.Background(), user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.CompletionRate != 0 {
			t.Fatalf("expected completion rate 0, got %d", summary.CompletionRate)
		}
	})
}

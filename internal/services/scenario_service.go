package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/poofware/optimistic-lock-lab/internal/models"
	"github.com/poofware/optimistic-lock-lab/internal/repositories"
	"github.com/poofware/optimistic-lock-lab/internal/utils"
	"github.com/poofware/optimistic-lock-lab/xid"
)

const (
	ScenarioStaleGuard = "stale-guard"
	ScenarioFreshGuard = "fresh-guard"
	ScenarioContention = "contention"
)

var ErrScenarioFailed = errors.New("scenario_failed")

// ScenarioResult is one guarded update and what came of it.
type ScenarioResult struct {
	Scenario     string
	RecordID     uuid.UUID
	Guard        xid.TransactionID
	VersionAfter xid.TransactionID
	RowsAffected int64
	WantAffected int64
	// Conflict is set only when the guarded update touched no rows.
	Conflict     string
}

// Verify checks the affected-row count, and for a successful guarded write
// that xmin moved.
func (r *ScenarioResult) Verify() error {
	if r.RowsAffected != r.WantAffected {
		return fmt.Errorf("%w: %s affected %d rows, want %d", ErrScenarioFailed, r.Scenario, r.RowsAffected, r.WantAffected)
	}
	if r.RowsAffected == 1 && r.VersionAfter == r.Guard {
		return fmt.Errorf("%w: %s left xmin at %s", ErrScenarioFailed, r.Scenario, r.Guard)
	}
	return nil
}

type ContentionResult struct {
	RecordID    uuid.UUID
	Workers     int
	Succeeded   int
	Failed      int
	MutateCalls int64
	FinalValue  string
}

func (r *ContentionResult) Verify() error {
	if r.Failed > 0 {
		return fmt.Errorf("%w: %d of %d contended updates gave up", ErrScenarioFailed, r.Failed, r.Workers)
	}
	return nil
}

type ScenarioService interface {
	StaleGuard(ctx context.Context) (*ScenarioResult, error)
	FreshGuard(ctx context.Context) (*ScenarioResult, error)
	Contention(ctx context.Context, workers int) (*ContentionResult, error)
}

type scenarioService struct {
	repo repositories.RecordRepository
}

func NewScenarioService(repo repositories.RecordRepository) ScenarioService {
	return &scenarioService{repo: repo}
}

// StaleGuard writes the row without a guard, then retries with the xmin read
// before that write. Nothing may match.
func (s *scenarioService) StaleGuard(ctx context.Context) (*ScenarioResult, error) {
	rec, guard, err := s.seed(ctx)
	if err != nil {
		return nil, err
	}
	defer s.cleanup(rec.ID)

	rec.Value = "test2"
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("unguarded update: %w", err)
	}

	rec.Value = "test3"
	return s.guardedUpdate(ctx, ScenarioStaleGuard, rec, guard, 0)
}

// FreshGuard updates with the xmin just read and no writer in between.
func (s *scenarioService) FreshGuard(ctx context.Context) (*ScenarioResult, error) {
	rec, guard, err := s.seed(ctx)
	if err != nil {
		return nil, err
	}
	defer s.cleanup(rec.ID)

	rec.Value = "test2"
	return s.guardedUpdate(ctx, ScenarioFreshGuard, rec, guard, 1)
}

// Contention races workers through UpdateWithRetry on one row.
func (s *scenarioService) Contention(ctx context.Context, workers int) (*ContentionResult, error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", workers)
	}

	rec, _, err := s.seed(ctx)
	if err != nil {
		return nil, err
	}
	defer s.cleanup(rec.ID)

	var (
		wg          sync.WaitGroup
		mutateCalls int64
		gate        = make(chan struct{})
		errCh       = make(chan error, workers)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-gate
			errCh <- s.repo.UpdateWithRetry(ctx, rec.ID, func(r *models.Record) error {
				atomic.AddInt64(&mutateCalls, 1)
				r.Value = fmt.Sprintf("contended_%d", n)
				return nil
			})
		}(i)
	}
	close(gate)
	wg.Wait()
	close(errCh)

	res := &ContentionResult{RecordID: rec.ID, Workers: workers}
	for e := range errCh {
		switch {
		case e == nil:
			res.Succeeded++
		case errors.Is(e, utils.ErrRowVersionConflict):
			res.Failed++
		default:
			return nil, e
		}
	}
	res.MutateCalls = atomic.LoadInt64(&mutateCalls)

	final, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if final != nil {
		res.FinalValue = final.Value
	}
	return res, nil
}

/* ---------- internals ---------- */

func (s *scenarioService) seed(ctx context.Context) (*models.Record, xid.TransactionID, error) {
	rec := &models.Record{ID: uuid.New(), Value: "test"}
	if err := s.repo.Create(ctx, rec); err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, 0, fmt.Errorf("record %s already exists: %w", rec.ID, err)
		}
		return nil, 0, fmt.Errorf("insert record: %w", err)
	}
	guard, err := s.repo.GetVersion(ctx, rec.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("read xmin: %w", err)
	}
	rec.SetRowVersion(guard)
	utils.Logger.Debugf("Seeded record %s at xmin %s", rec.ID, guard)
	return rec, guard, nil
}

func (s *scenarioService) guardedUpdate(
	ctx context.Context,
	name string,
	rec *models.Record,
	guard xid.TransactionID,
	want int64,
) (*ScenarioResult, error) {
	tag, err := s.repo.UpdateIfVersion(ctx, rec, guard)
	if err != nil {
		return nil, fmt.Errorf("guarded update: %w", err)
	}

	res := &ScenarioResult{
		Scenario:     name,
		RecordID:     rec.ID,
		Guard:        guard,
		RowsAffected: tag.RowsAffected(),
		WantAffected: want,
	}

	if res.RowsAffected == 0 {
		kind, err := repositories.ClassifyConflict(ctx, func(ctx context.Context) (bool, error) {
			return s.repo.Exists(ctx, rec.ID)
		})
		if err != nil {
			return nil, err
		}
		res.Conflict = kind.String()
	}

	after, err := s.repo.GetVersion(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("read xmin after update: %w", err)
	}
	res.VersionAfter = after

	utils.Logger.Infof("%s: guard=%s rows_affected=%d xmin_after=%s", name, guard, res.RowsAffected, after)
	return res, nil
}

func (s *scenarioService) cleanup(id uuid.UUID) {
	if err := s.repo.Delete(context.Background(), id); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to delete record %s", id)
	}
}

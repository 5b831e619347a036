// Package review orchestrates one commission-review session: it loads a
// batch from the boundary collaborators, runs the reconciliation
// pipeline, and owns the derived state (rollups, summary, view,
// navigator) as a single atomically-replaced snapshot.
package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/channelops/commission-review/internal/aggregate"
	"github.com/channelops/commission-review/internal/domain"
	"github.com/channelops/commission-review/internal/fetch"
	"github.com/channelops/commission-review/internal/navigator"
	"github.com/channelops/commission-review/internal/normalize"
	"github.com/channelops/commission-review/internal/reconcile"
	"github.com/channelops/commission-review/internal/repository"
	"github.com/channelops/commission-review/internal/view"
)

// ErrSuperseded marks a load that was overtaken by a newer one. It is
// not a user-visible failure: the newer load's result is the one that
// counts.
var ErrSuperseded = errors.New("load superseded by a newer request")

// ErrNoBatch is returned by read operations before the first successful
// load.
var ErrNoBatch = errors.New("no batch loaded")

// Fetcher is the boundary the service loads from. *fetch.Client
// implements it; tests substitute fakes.
type Fetcher interface {
	EnterpriseDirectory(ctx context.Context, environment string) ([]domain.Enterprise, error)
	ComputeBatch(ctx context.Context, req fetch.BatchRequest) (*fetch.BatchResponse, error)
}

// Snapshot is everything derived from one batch. All fields come from
// the same pipeline pass; a snapshot is never partially updated.
type Snapshot struct {
	RunID       string                      `json:"run_id"`
	Environment string                      `json:"environment"`
	ChannelID   int64                       `json:"channel_id"`
	LoadedAt    time.Time                   `json:"loaded_at"`
	APIVerified bool                        `json:"api_verified"`
	Records     []domain.CommissionRecord   `json:"-"`
	Directory   []domain.Enterprise         `json:"-"`
	Rollups     aggregate.Result            `json:"-"`
	Summary     domain.BatchSummary         `json:"summary"`
}

// LoadRequest names the batch to load.
type LoadRequest struct {
	Environment    string  `json:"environment"`
	ChannelID      int64   `json:"channel_id"`
	EnterpriseIDs  []int64 `json:"enterprise_ids,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`
}

// Config tunes a Service.
type Config struct {
	Tolerance        decimal.Decimal
	TestEnterpriseID int64
	PageSize         int
}

// Service is safe for concurrent use. At most one load is in flight at a
// time; starting a new one cancels its predecessor.
type Service struct {
	fetcher Fetcher
	runs    *repository.RunRepo // nil disables run history
	cfg     Config
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	inflight *loadToken
	snap     *Snapshot
	view     *view.Session
	nav      *navigator.Navigator
}

type loadToken struct {
	cancel context.CancelFunc
}

func NewService(fetcher Fetcher, runs *repository.RunRepo, cfg Config, logger *logrus.Logger) *Service {
	if cfg.PageSize < 1 {
		cfg.PageSize = view.DefaultPageSize
	}
	return &Service{
		fetcher: fetcher,
		runs:    runs,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Load fetches and processes a fresh batch for the request, replacing
// all derived state in one step. A Load overtaken by a newer Load
// returns ErrSuperseded and leaves the newer result untouched.
func (s *Service) Load(ctx context.Context, req LoadRequest) (*Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	token := &loadToken{cancel: cancel}

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight.cancel()
	}
	s.inflight = token
	s.mu.Unlock()

	snap, err := s.load(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != token {
		// A newer load took over while this one was running; whatever it
		// produced is stale.
		cancel()
		return nil, ErrSuperseded
	}
	s.inflight = nil
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	s.snap = snap
	s.view = view.NewSession(snap.Records, view.Params{PageSize: s.cfg.PageSize})
	s.nav = navigator.New(snap.Rollups.Enterprises)

	return snap, nil
}

func (s *Service) load(ctx context.Context, req LoadRequest) (*Snapshot, error) {
	var (
		directory []domain.Enterprise
		batch     *fetch.BatchResponse
	)

	if len(req.EnterpriseIDs) == 0 {
		// The default selection is derived from the directory, so the
		// batch fetch has to wait for it.
		var err error
		directory, err = s.fetcher.EnterpriseDirectory(ctx, req.Environment)
		if err != nil {
			return nil, fmt.Errorf("enterprise directory: %w", err)
		}
		req.EnterpriseIDs = fetch.DefaultSelection(directory, s.cfg.TestEnterpriseID)

		batch, err = s.fetcher.ComputeBatch(ctx, batchRequest(req))
		if err != nil {
			return nil, fmt.Errorf("commission batch: %w", err)
		}
	} else {
		// Explicit selection: the two fetches are independent and run
		// concurrently.
		var wg sync.WaitGroup
		var dirErr, batchErr error

		wg.Add(2)
		go func() {
			defer wg.Done()
			directory, dirErr = s.fetcher.EnterpriseDirectory(ctx, req.Environment)
		}()
		go func() {
			defer wg.Done()
			batch, batchErr = s.fetcher.ComputeBatch(ctx, batchRequest(req))
		}()
		wg.Wait()

		if dirErr != nil {
			return nil, fmt.Errorf("enterprise directory: %w", dirErr)
		}
		if batchErr != nil {
			return nil, fmt.Errorf("commission batch: %w", batchErr)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, stats, err := normalize.Batch(batch.CommissionDetails)
	if err != nil {
		return nil, fmt.Errorf("normalize batch: %w", err)
	}
	if stats.Coerced > 0 {
		s.logger.Warnf("[review] coerced %d missing/unparseable numeric fields to zero (%d records)",
			stats.Coerced, stats.Records)
	}

	records = reconcile.Batch(records, s.cfg.Tolerance)
	records = aggregate.RunningTotals(records)
	rollups := aggregate.Compute(records, s.now())

	snap := &Snapshot{
		RunID:       uuid.NewString(),
		Environment: req.Environment,
		ChannelID:   req.ChannelID,
		LoadedAt:    s.now(),
		APIVerified: batch.APIVerification,
		Records:     records,
		Directory:   directory,
		Rollups:     rollups,
		Summary:     rollups.Summary,
	}

	s.logger.Infof("[review] run %s: %d records, %d mismatched, match_rate=%.4f (channel=%d, env=%s)",
		snap.RunID, snap.Summary.TotalCount, snap.Summary.MismatchCount,
		snap.Summary.MatchRate, req.ChannelID, req.Environment)

	s.recordRun(snap)
	return snap, nil
}

func batchRequest(req LoadRequest) fetch.BatchRequest {
	return fetch.BatchRequest{
		Environment:    req.Environment,
		ChannelID:      req.ChannelID,
		EnterpriseIDs:  req.EnterpriseIDs,
		TimeoutSeconds: req.TimeoutSeconds,
	}
}

func (s *Service) recordRun(snap *Snapshot) {
	if s.runs == nil {
		return
	}
	run := &repository.Run{
		ID:             snap.RunID,
		Environment:    snap.Environment,
		ChannelID:      snap.ChannelID,
		RecordCount:    snap.Summary.TotalCount,
		MismatchCount:  snap.Summary.MismatchCount,
		MatchRate:      snap.Summary.MatchRate,
		TotalProfit:    snap.Summary.TotalProfit,
		TotalPayAmount: snap.Summary.TotalPayAmount,
		APIVerified:    snap.APIVerified,
		CreatedAt:      snap.LoadedAt,
	}
	if err := s.runs.Insert(run); err != nil {
		s.logger.Warnf("[review] failed to record run %s: %v", snap.RunID, err)
	}
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Service) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Summary returns the batch-level KPIs of the current snapshot.
func (s *Service) Summary() (domain.BatchSummary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return domain.BatchSummary{}, false, ErrNoBatch
	}
	return s.snap.Summary, s.snap.APIVerified, nil
}

// UpdateView moves the view to the given parameters under the session's
// page-reset rules and returns the resulting page.
func (s *Service) UpdateView(p view.Params) (view.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return view.Result{}, ErrNoBatch
	}
	return s.view.Update(p), nil
}

// ViewPage changes only the page of the current view.
func (s *Service) ViewPage(page int) (view.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return view.Result{}, ErrNoBatch
	}
	return s.view.SetPage(page), nil
}

// ViewState returns the current page and the active parameters.
func (s *Service) ViewState() (view.Result, view.Params, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return view.Result{}, view.Params{}, ErrNoBatch
	}
	return s.view.Result(), s.view.Params(), nil
}

// Jurisdictions returns the jurisdiction rollups of the current batch.
func (s *Service) Jurisdictions() ([]domain.JurisdictionRollup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, ErrNoBatch
	}
	return s.snap.Rollups.Jurisdictions, nil
}

// Enterprises returns the enterprise rollups of the current batch in
// first-seen order.
func (s *Service) Enterprises() ([]domain.EnterpriseRollup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, ErrNoBatch
	}
	return s.snap.Rollups.Enterprises, nil
}

// NavigatorNext advances the enterprise cursor, wrapping past the end.
func (s *Service) NavigatorNext() (domain.EnterpriseRollup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nav == nil {
		return domain.EnterpriseRollup{}, ErrNoBatch
	}
	r, ok := s.nav.Next()
	if !ok {
		return domain.EnterpriseRollup{}, ErrNoBatch
	}
	return r, nil
}

// NavigatorPrev steps the enterprise cursor back, wrapping past index 0.
func (s *Service) NavigatorPrev() (domain.EnterpriseRollup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nav == nil {
		return domain.EnterpriseRollup{}, ErrNoBatch
	}
	r, ok := s.nav.Prev()
	if !ok {
		return domain.EnterpriseRollup{}, ErrNoBatch
	}
	return r, nil
}

// NavigatorCurrent returns the rollup under the cursor.
func (s *Service) NavigatorCurrent() (domain.EnterpriseRollup, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nav == nil {
		return domain.EnterpriseRollup{}, 0, ErrNoBatch
	}
	r, ok := s.nav.Current()
	if !ok {
		return domain.EnterpriseRollup{}, 0, ErrNoBatch
	}
	return r, s.nav.Index(), nil
}

// Records returns the full evaluated batch in batch order, for export.
func (s *Service) Records() ([]domain.CommissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, ErrNoBatch
	}
	return s.snap.Records, nil
}

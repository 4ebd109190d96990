// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the report CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/teacheval/internal/adapters/ingest"
	reportqueue "github.com/okian/teacheval/internal/adapters/mq/queue"
	workerpool "github.com/okian/teacheval/internal/adapters/mq/worker"
	"github.com/okian/teacheval/internal/adapters/report"
	"github.com/okian/teacheval/internal/adapters/repository"
	"github.com/okian/teacheval/internal/domain/improvement"
	"github.com/okian/teacheval/internal/domain/model"
	"github.com/okian/teacheval/internal/domain/scoring"
	"github.com/okian/teacheval/internal/domain/types"
	"github.com/okian/teacheval/pkg/logger"
	"github.com/okian/teacheval/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service answers every teacher evaluation query against the current
// catalog snapshot. Queries never lock; Reload swaps in a new snapshot.
type Service struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex

	// Core components
	store      *repository.Store
	loader     ingest.Source
	calculator *scoring.Calculator
	planner    improvement.Planner
	renderer   *report.Renderer
	queue      *reportqueue.InMemoryQueue
	pool       *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	planOpts    []improvement.Option
	now         func() time.Time

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	logger logger.Logger
}

var _ workerpool.Renderer = (*Service)(nil)

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = repository.NewStore(repository.WithClock(s.now))
	s.calculator = scoring.NewCalculator()
	s.planner = improvement.NewEngine(s.planOpts...)
	if s.renderer == nil {
		s.renderer = report.NewRenderer(report.WithClock(s.now))
	}
	return s
}

// Start loads the catalog, when a loader is configured, and starts the
// report workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting evaluation service...")

	if s.loader != nil {
		if _, err := s.Reload(ctx); err != nil {
			return fmt.Errorf("initial catalog load: %w", err)
		}
	}

	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.queue = reportqueue.NewInMemoryQueue(reportqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, workerpool.WithPoolLogger(s.logger.Named("reports")))
	s.pool.Start(poolCtx)

	s.cancel = cancel
	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the report workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping evaluation service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "report workers did not stop cleanly", logger.Error(err))
	}
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "evaluation service stopped")
}

// Reload reads the catalog from the loader and publishes it.
func (s *Service) Reload(ctx context.Context) (types.CatalogInfo, error) {
	if s.loader == nil {
		return types.CatalogInfo{}, ErrNoLoader
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	res, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, "catalog load failed", logger.Error(err))
		return types.CatalogInfo{}, err
	}
	c := s.publish(ctx, res.Questions, res.Evaluations, res.Files...)
	s.logger.Info(ctx, "catalog reloaded",
		logger.String("catalog", c.ID),
		logger.Int("issues", len(res.Issues)),
		logger.Int("invalidRatings", res.InvalidRatings),
		logger.Duration("took", res.Duration),
	)
	return catalogInfo(c), nil
}

// Install indexes the given data and publishes it as the current catalog.
func (s *Service) Install(ctx context.Context, questions []model.Question, evaluations []*model.Evaluation, sources ...string) types.CatalogInfo {
	return catalogInfo(s.publish(ctx, questions, evaluations, sources...))
}

func (s *Service) publish(ctx context.Context, questions []model.Question, evaluations []*model.Evaluation, sources ...string) *repository.Catalog {
	c := s.store.Publish(questions, evaluations, sources...)
	metrics.UpdateCatalogSize(c.Evaluations.Len(), c.Questions.Len(), c.Teachers(), c.LoadedAt.Unix())
	metrics.RecordDuplicatesDropped(c.Evaluations.Duplicates())
	if d := c.Evaluations.Duplicates(); d > 0 {
		s.logger.Warn(ctx, "duplicate evaluation ids dropped", logger.Int("count", d))
	}
	s.logger.Info(ctx, "catalog published",
		logger.String("catalog", c.ID),
		logger.Int("evaluations", c.Evaluations.Len()),
		logger.Int("questions", c.Questions.Len()),
		logger.Int("teachers", c.Teachers()),
	)
	return c
}

// CatalogInfo describes the current catalog.
func (s *Service) CatalogInfo(_ context.Context) (types.CatalogInfo, error) {
	c, err := s.store.Current()
	if err != nil {
		return types.CatalogInfo{}, err
	}
	return catalogInfo(c), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
	}
	if c, err := s.store.Current(); err == nil {
		stats["catalogId"] = c.ID
		stats["catalogLoadedAt"] = c.LoadedAt.Format(time.RFC3339)
		stats["evaluations"] = c.Evaluations.Len()
		stats["questions"] = c.Questions.Len()
		stats["teachers"] = c.Teachers()
		stats["duplicatesDropped"] = c.Evaluations.Duplicates()
	}
	return stats
}

func catalogInfo(c *repository.Catalog) types.CatalogInfo {
	sources := make([]string, len(c.Sources))
	copy(sources, c.Sources)
	return types.CatalogInfo{
		ID:          c.ID,
		LoadedAt:    c.LoadedAt.Format(time.RFC3339),
		Sources:     sources,
		Evaluations: c.Evaluations.Len(),
		Questions:   c.Questions.Len(),
		Teachers:    c.Teachers(),
	}
}

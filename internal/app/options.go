package service

import (
	"time"

	"github.com/okian/teacheval/internal/adapters/ingest"
	"github.com/okian/teacheval/internal/adapters/report"
	"github.com/okian/teacheval/internal/domain/improvement"
	"github.com/okian/teacheval/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of report workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the report queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoader sets the source Start and Reload read the catalog from.
func WithLoader(src ingest.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.loader = src
		}
	}
}

// WithImprovementThreshold sets the mean below which categories need work.
func WithImprovementThreshold(threshold float64) Option {
	return func(s *Service) {
		s.planOpts = append(s.planOpts, improvement.WithThreshold(threshold))
	}
}

// WithRules replaces the built-in recommendation table.
func WithRules(rules improvement.RuleSet) Option {
	return func(s *Service) {
		s.planOpts = append(s.planOpts, improvement.WithRules(rules))
	}
}

// WithRenderer sets the report renderer.
func WithRenderer(r *report.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithClock sets the time source for catalog stamps and archive names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

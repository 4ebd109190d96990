package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	reportqueue "github.com/okian/teacheval/internal/adapters/mq/queue"
	"github.com/okian/teacheval/internal/adapters/report"
	"github.com/okian/teacheval/internal/domain/model"
	"github.com/okian/teacheval/internal/domain/types"
	"github.com/okian/teacheval/pkg/logger"
)

// exportRetryDelay is how long an export waits for queue slots held by
// other exports.
const exportRetryDelay = 10 * time.Millisecond

// TeacherReport renders the printable report of one teacher.
func (s *Service) TeacherReport(ctx context.Context, document, period string) (types.ReportFile, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return types.ReportFile{}, err
	}
	return s.RenderReport(ctx, document, p)
}

// RenderReport renders the report of one teacher. Workers call it for every
// queued job.
func (s *Service) RenderReport(ctx context.Context, document string, period *model.Period) (file types.ReportFile, err error) {
	defer func(start time.Time) { observe(opReport, start, err) }(time.Now())

	c, err := s.store.Current()
	if err != nil {
		return types.ReportFile{}, err
	}
	sel, err := selectTeacher(c, document, period)
	if err != nil {
		return types.ReportFile{}, err
	}
	avg, err := s.averages(ctx, sel)
	if err != nil {
		return types.ReportFile{}, err
	}
	plan, err := s.plan(ctx, sel)
	if err != nil {
		return types.ReportFile{}, err
	}
	return s.renderer.File(avg, plan)
}

// ExportReports renders the report of every teacher with evaluations in the
// period through the worker pool and packs them into one ZIP archive. Jobs
// wait for free queue slots; a single failed report is logged and left out.
func (s *Service) ExportReports(ctx context.Context, period string) (types.ReportFile, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return types.ReportFile{}, err
	}
	c, err := s.store.Current()
	if err != nil {
		return types.ReportFile{}, err
	}

	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return types.ReportFile{}, ErrNotStarted
	}

	var documents []string
	names := make(map[string]string)
	for _, t := range c.Evaluations.ListTeachers() {
		if p != nil && len(c.Evaluations.FindByTeacherAndPeriod(t.Document, *p)) == 0 {
			continue
		}
		documents = append(documents, t.Document)
		names[t.Document] = t.Name
	}
	if len(documents) == 0 {
		return types.ReportFile{}, ErrNoReports
	}

	results := make(chan reportqueue.Result, len(documents))
	files := make(map[string]types.ReportFile, len(documents))
	collect := func(res reportqueue.Result) {
		if res.Err != nil {
			s.logger.Warn(ctx, "report left out of export",
				logger.String("document", res.Document), logger.Error(res.Err))
			return
		}
		res.File.Name = report.EntryName(res.Document, names[res.Document])
		files[res.Document] = res.File
	}
	received := 0
	receive := func() error {
		select {
		case res := <-results:
			received++
			collect(res)
			return nil
		case <-ctx.Done():
			return fmt.Errorf("export cancelled: %w", ctx.Err())
		}
	}

	// Jobs are fed as slots free up, so exports larger than the queue
	// still complete.
	for next := 0; next < len(documents); {
		err := q.Enqueue(ctx, reportqueue.NewJob(documents[next], p, results))
		switch {
		case err == nil:
			next++
		case errors.Is(err, reportqueue.ErrQueueFull) && received < next:
			if err := receive(); err != nil {
				return types.ReportFile{}, err
			}
		case errors.Is(err, reportqueue.ErrQueueFull):
			// Slots are held by other callers' jobs.
			select {
			case <-time.After(exportRetryDelay):
			case <-ctx.Done():
				return types.ReportFile{}, fmt.Errorf("export cancelled: %w", ctx.Err())
			}
		default:
			s.logger.Warn(ctx, "report export rejected", logger.String("document", documents[next]), logger.Error(err))
			return types.ReportFile{}, err
		}
	}
	for received < len(documents) {
		if err := receive(); err != nil {
			return types.ReportFile{}, err
		}
	}
	if len(files) == 0 {
		return types.ReportFile{}, errors.Join(ErrNoReports, errors.New("every report failed"))
	}

	ordered := make([]types.ReportFile, 0, len(files))
	for _, doc := range documents {
		if f, ok := files[doc]; ok {
			ordered = append(ordered, f)
		}
	}
	var buf bytes.Buffer
	if err := report.WriteArchive(&buf, ordered); err != nil {
		return types.ReportFile{}, err
	}
	s.logger.Info(ctx, "reports exported",
		logger.Int("reports", len(ordered)),
		logger.Int("failed", len(documents)-len(ordered)))
	return types.ReportFile{
		Name:        report.ArchiveName(periodString(p), s.now()),
		ContentType: report.ArchiveContentType,
		Content:     buf.Bytes(),
	}, nil
}

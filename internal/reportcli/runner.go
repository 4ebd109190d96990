package reportcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/okian/teacheval/internal/adapters/ingest"
	service "github.com/okian/teacheval/internal/app"
	"github.com/okian/teacheval/internal/domain/model"
	"github.com/okian/teacheval/internal/domain/types"
	"github.com/okian/teacheval/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o640
)

// Run loads the catalog and prints what cfg asks for on out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	color.NoColor = color.NoColor || cfg.NoColor

	log := logger.Nop()
	if cfg.Verbose {
		log = logger.Get()
	}
	loader := ingest.NewLoader(cfg.DataDir,
		ingest.WithQuestionsPath(cfg.QuestionsFile),
		ingest.WithReadOptions(ingest.ReadOptions{Delimiter: cfg.delimiter(), Encoding: cfg.Encoding}),
		ingest.WithLogger(log.Named("ingest")),
	)
	svc := service.New(
		service.WithLoader(loader),
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.Workers),
		service.WithImprovementThreshold(cfg.Threshold),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	defer svc.Stop()

	info, err := svc.CatalogInfo(ctx)
	if err != nil {
		return err
	}
	printCatalog(out, info)

	switch {
	case cfg.Output != "":
		return export(ctx, svc, cfg, out)
	case cfg.Teacher != "":
		return describeTeacher(ctx, svc, cfg, out)
	default:
		return summarize(ctx, svc, cfg, out)
	}
}

// summarize prints one row per teacher with evaluations in the period.
func summarize(ctx context.Context, svc *service.Service, cfg Config, out io.Writer) error {
	if _, err := service.ParsePeriod(cfg.Period); err != nil {
		return err
	}
	teachers, err := svc.ListTeachers(ctx)
	if err != nil {
		return err
	}
	rows := make([]types.TeacherAverages, 0, len(teachers))
	for _, t := range teachers {
		avg, err := svc.TeacherAverages(ctx, t.Document, cfg.Period)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		rows = append(rows, avg)
	}
	printSummary(out, periodLabel(cfg.Period), rows)
	return nil
}

// describeTeacher prints the averages, the evaluator comparison and the
// improvement plan of one teacher.
func describeTeacher(ctx context.Context, svc *service.Service, cfg Config, out io.Writer) error {
	avg, err := svc.TeacherAverages(ctx, cfg.Teacher, cfg.Period)
	if err != nil {
		return err
	}
	cmp, err := svc.CompareEvaluators(ctx, cfg.Teacher, cfg.Period)
	if err != nil {
		return err
	}
	plan, err := svc.ImprovementPlan(ctx, cfg.Teacher, cfg.Period)
	if err != nil {
		return err
	}
	printTeacher(out, avg)
	printComparison(out, cmp)
	printPlan(out, plan)
	return nil
}

// export writes the ZIP archive of every teacher report.
func export(ctx context.Context, svc *service.Service, cfg Config, out io.Writer) error {
	archive, err := svc.ExportReports(ctx, cfg.Period)
	if err != nil {
		return err
	}
	path := cfg.Output
	if isDirTarget(path) {
		path = filepath.Join(path, archive.Name)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, archive.Content, filePermission); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "Archive written to %s (%d bytes)\n", path, len(archive.Content))
	return nil
}

func isDirTarget(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func periodLabel(p string) string {
	if p == "" {
		return "all periods"
	}
	return p
}

// Package ingest reads the question catalog and the evaluation exports into
// domain entities.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/teacheval/internal/domain/model"
	"github.com/okian/teacheval/pkg/logger"
	"github.com/okian/teacheval/pkg/metrics"
)

// Default file names.
const (
	DefaultQuestionsFile = "preguntas.csv"
)

// DefaultEvaluationPatterns match the evaluation exports inside the data directory.
func DefaultEvaluationPatterns() []string {
	return []string{"Evaluacion*.csv", "evaluacion*.csv"}
}

// Result is everything one load produced.
type Result struct {
	Questions      []model.Question
	Evaluations    []*model.Evaluation
	Files          []string // question catalog first, then evaluation files
	Issues         []Issue
	InvalidRatings int
	Duration       time.Duration
}

// Source loads a catalog.
type Source interface {
	Load(ctx context.Context) (Result, error)
}

// Loader reads catalog files from disk.
type Loader struct {
	dataDir       string
	questionsPath string
	patterns      []string
	read          ReadOptions
	concurrency   int
	log           logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithQuestionsPath overrides the question catalog path. Relative paths
// resolve against the data directory.
func WithQuestionsPath(path string) Option {
	return func(l *Loader) { l.questionsPath = path }
}

// WithPatterns overrides the evaluation file glob patterns.
func WithPatterns(patterns ...string) Option {
	return func(l *Loader) {
		if len(patterns) > 0 {
			l.patterns = append([]string(nil), patterns...)
		}
	}
}

// WithReadOptions sets the delimiter and encoding of every file.
func WithReadOptions(opts ReadOptions) Option {
	return func(l *Loader) { l.read = opts }
}

// WithConcurrency bounds how many evaluation files are parsed at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger used for load summaries and row issues.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader returns a Loader for dataDir.
func NewLoader(dataDir string, opts ...Option) *Loader {
	l := &Loader{
		dataDir:       dataDir,
		questionsPath: DefaultQuestionsFile,
		patterns:      DefaultEvaluationPatterns(),
		read:          DefaultReadOptions(),
		concurrency:   4,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if !filepath.IsAbs(l.questionsPath) {
		l.questionsPath = filepath.Join(l.dataDir, l.questionsPath)
	}
	return l
}

// Load reads the question catalog and every evaluation export. Row level
// problems are logged and skipped; a load that yields nothing usable fails
// with *IngestionError.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := l.load(ctx)
	res.Duration = time.Since(start)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	_ = metrics.RecordCatalogLoad(outcome, float64(res.Duration.Milliseconds()))
	return res, err
}

func (l *Loader) load(ctx context.Context) (Result, error) {
	questions, qIssues, err := l.loadQuestions()
	if err != nil {
		return Result{}, err
	}
	l.report(ctx, "question", qIssues)

	files, err := l.evaluationFiles()
	if err != nil {
		return Result{}, err
	}

	type parsed struct {
		evaluations []*model.Evaluation
		stats       EvaluationStats
		issues      []Issue
	}
	out := make([]parsed, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := readFile(path, l.read)
			if err != nil {
				return err
			}
			evals, stats, issues, err := ParseEvaluations(path, table, questions)
			if err != nil {
				return &IngestionError{Path: path, Details: "invalid evaluation file", Err: err}
			}
			out[i] = parsed{evaluations: evals, stats: stats, issues: issues}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{
		Questions: questions,
		Files:     append([]string{l.questionsPath}, files...),
		Issues:    qIssues,
	}
	for i, p := range out {
		res.Evaluations = append(res.Evaluations, p.evaluations...)
		res.Issues = append(res.Issues, p.issues...)
		res.InvalidRatings += p.stats.InvalidRatings
		l.report(ctx, "evaluation", p.issues)
		l.log.Info(ctx, "evaluation file loaded",
			logger.String("file", filepath.Base(files[i])),
			logger.Int("rows", p.stats.Rows),
			logger.Int("evaluations", len(p.evaluations)),
			logger.Int("skipped", p.stats.Skipped),
			logger.Int("invalid_ratings", p.stats.InvalidRatings))
	}
	if len(res.Evaluations) == 0 {
		return Result{}, &IngestionError{Path: l.dataDir, Details: "no usable evaluations"}
	}

	l.log.Info(ctx, "catalog files loaded",
		logger.Int("files", len(files)),
		logger.Int("questions", len(res.Questions)),
		logger.Int("evaluations", len(res.Evaluations)),
		logger.Int("issues", len(res.Issues)))
	return res, nil
}

func (l *Loader) loadQuestions() ([]model.Question, []Issue, error) {
	table, err := readFile(l.questionsPath, l.read)
	if err != nil {
		return nil, nil, err
	}
	questions, issues, err := ParseQuestions(l.questionsPath, table)
	if err != nil {
		return nil, nil, &IngestionError{Path: l.questionsPath, Details: "invalid question catalog", Err: err}
	}
	if len(questions) == 0 {
		return nil, nil, &IngestionError{Path: l.questionsPath, Details: "no usable questions"}
	}
	return questions, issues, nil
}

// evaluationFiles expands the patterns, dropping duplicates and directories,
// sorted by path.
func (l *Loader) evaluationFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range l.patterns {
		matches, err := filepath.Glob(filepath.Join(l.dataDir, pattern))
		if err != nil {
			return nil, &IngestionError{Path: l.dataDir, Details: fmt.Sprintf("bad pattern %q", pattern), Err: err}
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, &IngestionError{Path: l.dataDir, Details: "no evaluation files found"}
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) report(ctx context.Context, kind string, issues []Issue) {
	skipped := 0
	for _, is := range issues {
		l.log.Warn(ctx, "row issue",
			logger.String("kind", kind),
			logger.String("file", filepath.Base(is.File)),
			logger.Int("line", is.Line),
			logger.Bool("skipped", is.Skipped),
			logger.String("reason", is.Reason))
		if is.Skipped {
			skipped++
		}
	}
	metrics.RecordRowsSkipped(kind, skipped)
}

func readFile(path string, opts ReadOptions) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, &IngestionError{Path: path, Details: "cannot open", Err: err}
	}
	defer f.Close()
	table, err := ReadRows(f, opts)
	if err != nil {
		return Table{}, &IngestionError{Path: path, Details: "cannot parse", Err: err}
	}
	return table, nil
}

// Package report renders teacher statistics as printable text documents and
// packs them into archives.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/okian/teacheval/internal/domain/types"
)

// ContentType of rendered reports.
const ContentType = "text/plain; charset=utf-8"

// Performance labels of the overall average.
const (
	LabelExcellent        = "Excellent"
	LabelVeryGood         = "Very good"
	LabelGood             = "Good"
	LabelNeedsImprovement = "Needs improvement"
)

// OverallLabel grades an overall average.
func OverallLabel(avg float64) string {
	switch {
	case avg >= 4.5:
		return LabelExcellent
	case avg >= 4.0:
		return LabelVeryGood
	case avg >= 3.5:
		return LabelGood
	default:
		return LabelNeedsImprovement
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the time source of the "Generated" line.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTitle replaces the report heading.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// Renderer writes text reports. It is safe for concurrent use.
type Renderer struct {
	title string
	now   func() time.Time
}

// NewRenderer returns a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{title: "TEACHER EVALUATION REPORT", now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the report of one teacher to w.
func (r *Renderer) Render(w io.Writer, avg types.TeacherAverages, plan types.ImprovementPlan) error {
	ew := &errWriter{w: w}

	ew.printf("%s\n", r.title)
	ew.printf("Generated: %s\n\n", r.now().Format("02/01/2006 15:04"))

	ew.printf("Teacher\n")
	info := newTable(ew, nil)
	info.AppendBulk([][]string{
		{"Name", avg.Name},
		{"Document", avg.Document},
		{"Period", periodLabel(avg.Period)},
		{"Total evaluations", strconv.Itoa(avg.TotalEvaluations)},
	})
	info.Render()

	ew.printf("\nOverall\n")
	overall := newTable(ew, nil)
	overall.Append([]string{"Overall average", score(avg.OverallAverage), OverallLabel(avg.OverallAverage)})
	overall.Render()

	if len(avg.PerCategory) > 0 {
		ew.printf("\nResults by category\n")
		t := newTable(ew, []string{"Category", "Average", "Evaluations"})
		for _, c := range avg.PerCategory {
			t.Append([]string{c.Category, score(c.Average), strconv.Itoa(c.Count)})
		}
		t.Render()
	}

	if len(avg.PerEvaluatorType) > 0 {
		ew.printf("\nResults by evaluator type\n")
		t := newTable(ew, []string{"Evaluator", "Average", "Evaluations"})
		for _, e := range avg.PerEvaluatorType {
			t.Append([]string{e.Type, score(e.Average), strconv.Itoa(e.Count)})
		}
		t.Render()
	}

	ew.printf("\nImprovement plan\n")
	if len(plan.Categories) == 0 {
		ew.printf("No improvement needed: every category meets the threshold.\n")
	}
	for _, c := range plan.Categories {
		ew.printf("\n%s (%s)\n", c.Category, score(c.CategoryAverage))
		t := newTable(ew, []string{"Question", "Average", "Recommendation"})
		for _, rec := range c.Recommendations {
			t.Append([]string{rec.QuestionCode + ": " + rec.QuestionText, score(rec.AverageRating), rec.Text})
		}
		t.Render()
	}
	return ew.err
}

// File renders the report into a named in-memory document.
func (r *Renderer) File(avg types.TeacherAverages, plan types.ImprovementPlan) (types.ReportFile, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, avg, plan); err != nil {
		return types.ReportFile{}, fmt.Errorf("render report %s: %w", avg.Document, err)
	}
	return types.ReportFile{
		Name:        FileName(avg.Document, avg.Period),
		ContentType: ContentType,
		Content:     buf.Bytes(),
	}, nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetColWidth(60)
	if header != nil {
		t.SetHeader(header)
	}
	return t
}

func score(v float64) string { return fmt.Sprintf("%.2f", v) }

func periodLabel(p *string) string {
	if p == nil {
		return "All periods"
	}
	return *p
}

// errWriter keeps the first write error so rendering can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e, format, args...)
}

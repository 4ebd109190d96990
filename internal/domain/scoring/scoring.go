// Package scoring computes teacher statistics from evaluations.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/teacheval/internal/domain/model"
)

// ErrNoData reports that no evaluation qualified for a statistic.
var ErrNoData = fmt.Errorf("%w: no qualifying evaluations", model.ErrNotFound)

// ErrCommentsNotScored reports a statistic requested for the Comments category.
var ErrCommentsNotScored = fmt.Errorf("%w: comments are not scored", model.ErrValidation)

// Input is the set of evaluations of one teacher, already filtered by period.
type Input struct {
	Document    string
	Period      *model.Period
	Evaluations []*model.Evaluation
}

// CategoryResult is the average of one category.
type CategoryResult struct {
	Category model.Category
	Average  float64
	Count    int
}

// EvaluatorTypeResult is the average of one evaluator type.
type EvaluatorTypeResult struct {
	Type    string
	Average float64
	Count   int
}

// Result holds every average of one teacher.
type Result struct {
	Overall          float64
	Total            int
	PerCategory      []CategoryResult
	PerEvaluatorType []EvaluatorTypeResult
}

// Averager computes averages from an input.
type Averager interface {
	// Averages fails with *model.TeacherNotFoundError on empty input.
	Averages(ctx context.Context, in Input) (Result, error)
}

// Calculator implements Averager. It is stateless and safe for concurrent use.
type Calculator struct{}

// NewCalculator returns a Calculator.
func NewCalculator() *Calculator { return &Calculator{} }

// Averages computes the overall, per-category and per-evaluator-type means.
//
// The overall mean averages per-evaluation means and keeps evaluations whose
// mean is 0 (nothing answered). The grouped means skip such zeros.
func (c *Calculator) Averages(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("averages cancelled: %w", err)
	}
	if len(in.Evaluations) == 0 {
		return Result{}, &model.TeacherNotFoundError{Document: in.Document, Period: in.Period}
	}

	means := make([]float64, len(in.Evaluations))
	for i, e := range in.Evaluations {
		means[i] = e.Mean()
	}

	return Result{
		Overall:          mean(means),
		Total:            len(in.Evaluations),
		PerCategory:      perCategory(in.Evaluations),
		PerEvaluatorType: perEvaluatorType(in.Evaluations, means),
	}, nil
}

func perCategory(evals []*model.Evaluation) []CategoryResult {
	values := make(map[model.Category][]float64)
	for _, e := range evals {
		for _, cat := range e.EvaluatedCategories() {
			if m := e.CategoryMean(cat); m != 0 {
				values[cat] = append(values[cat], m)
			}
		}
	}
	out := make([]CategoryResult, 0, len(values))
	for cat, vs := range values {
		out = append(out, CategoryResult{Category: cat, Average: mean(vs), Count: len(vs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category.Label() < out[j].Category.Label() })
	return out
}

func perEvaluatorType(evals []*model.Evaluation, means []float64) []EvaluatorTypeResult {
	values := make(map[string][]float64)
	for i, e := range evals {
		if means[i] != 0 {
			values[e.EvaluatorType] = append(values[e.EvaluatorType], means[i])
		}
	}
	out := make([]EvaluatorTypeResult, 0, len(values))
	for label, vs := range values {
		out = append(out, EvaluatorTypeResult{Type: label, Average: mean(vs), Count: len(vs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Group is the average of a subset of evaluations. Count 0 means no average.
type Group struct {
	Average float64
	Count   int
}

// Comparison contrasts self-evaluations with student evaluations.
type Comparison struct {
	Self    Group
	Student Group
	Other   Group
}

// Gap returns self minus student; ok is false when either side is empty.
func (c Comparison) Gap() (gap float64, ok bool) {
	if c.Self.Count == 0 || c.Student.Count == 0 {
		return 0, false
	}
	return c.Self.Average - c.Student.Average, true
}

// CompareEvaluators groups per-evaluation means by evaluator kind, skipping
// evaluations with nothing answered.
func (c *Calculator) CompareEvaluators(ctx context.Context, in Input) (Comparison, error) {
	if err := ctx.Err(); err != nil {
		return Comparison{}, fmt.Errorf("comparison cancelled: %w", err)
	}
	if len(in.Evaluations) == 0 {
		return Comparison{}, &model.TeacherNotFoundError{Document: in.Document, Period: in.Period}
	}
	var self, student, other []float64
	for _, e := range in.Evaluations {
		m := e.Mean()
		if m == 0 {
			continue
		}
		switch {
		case e.IsSelfEvaluation():
			self = append(self, m)
		case e.IsStudentEvaluation():
			student = append(student, m)
		default:
			other = append(other, m)
		}
	}
	return Comparison{Self: group(self), Student: group(student), Other: group(other)}, nil
}

// CategoryStats describes one category across teachers.
type CategoryStats struct {
	Category         model.Category
	Average          float64
	Max              float64
	Min              float64
	StdDev           float64
	TotalEvaluations int
	TotalTeachers    int
}

// CategoryStatistics averages category within each teacher (skipping
// evaluations with no answered question in it) and describes the spread of
// those teacher averages.
func (c *Calculator) CategoryStatistics(ctx context.Context, category model.Category, byTeacher map[string][]*model.Evaluation) (CategoryStats, error) {
	if err := ctx.Err(); err != nil {
		return CategoryStats{}, fmt.Errorf("category statistics cancelled: %w", err)
	}
	if category.IsComment() {
		return CategoryStats{}, ErrCommentsNotScored
	}
	if !category.Valid() {
		return CategoryStats{}, &model.UnknownCategoryError{Label: category.String()}
	}

	documents := make([]string, 0, len(byTeacher))
	for doc := range byTeacher {
		documents = append(documents, doc)
	}
	sort.Strings(documents)

	stats := CategoryStats{Category: category}
	var teacherAverages []float64
	for _, doc := range documents {
		var vs []float64
		for _, e := range byTeacher[doc] {
			if m := e.CategoryMean(category); m != 0 {
				vs = append(vs, m)
			}
		}
		if len(vs) == 0 {
			continue
		}
		teacherAverages = append(teacherAverages, mean(vs))
		stats.TotalEvaluations += len(vs)
	}
	if len(teacherAverages) == 0 {
		return CategoryStats{}, fmt.Errorf("category %s: %w", category.ShortLabel(), ErrNoData)
	}

	stats.TotalTeachers = len(teacherAverages)
	stats.Average = mean(teacherAverages)
	stats.Min, stats.Max = teacherAverages[0], teacherAverages[0]
	variance := 0.0
	for _, v := range teacherAverages {
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
		d := v - stats.Average
		variance += d * d
	}
	stats.StdDev = math.Sqrt(variance / float64(len(teacherAverages)))
	return stats, nil
}

// IsNoData reports whether err means nothing qualified.
func IsNoData(err error) bool { return errors.Is(err, ErrNoData) }

func group(vs []float64) Group {
	return Group{Average: mean(vs), Count: len(vs)}
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

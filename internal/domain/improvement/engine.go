// Package improvement turns low-scoring categories and questions into
// recommendations.
package improvement

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/teacheval/internal/domain/model"
)

// DefaultThreshold is the mean below which a category or question needs work.
const DefaultThreshold = 4.0

// Input is the set of evaluations of one teacher, already filtered by period.
type Input struct {
	Document    string
	Period      *model.Period
	Evaluations []*model.Evaluation
}

// Recommendation targets one question.
type Recommendation struct {
	Question model.Question
	Average  float64
	Text     string
}

// CategoryPlan lists the recommendations of one category, worst first.
type CategoryPlan struct {
	Category        model.Category
	Average         float64
	Recommendations []Recommendation
}

// Plan lists every category that needs work, ordered by canonical label.
type Plan struct {
	Categories []CategoryPlan
}

// Planner builds improvement plans.
type Planner interface {
	// Plan fails with *model.TeacherNotFoundError on empty input.
	Plan(ctx context.Context, in Input) (Plan, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold overrides DefaultThreshold; values outside (1, 5] are ignored.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > model.MinRating && threshold <= model.MaxRating {
			e.threshold = threshold
		}
	}
}

// WithRules replaces the built-in rule table.
func WithRules(rules RuleSet) Option {
	return func(e *Engine) {
		if rules.rules != nil {
			e.rules = rules
		}
	}
}

// Engine implements Planner. Means here are flat over individual ratings,
// not means of per-evaluation means.
type Engine struct {
	rules     RuleSet
	threshold float64
}

// NewEngine returns an Engine with the default rules and threshold.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules(), threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

type questionRatings struct {
	question model.Question
	values   []float64
}

// Plan selects categories whose flat mean is below threshold, then the
// questions within them whose flat mean is below threshold. Categories left
// without questions are dropped.
func (e *Engine) Plan(ctx context.Context, in Input) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, fmt.Errorf("plan cancelled: %w", err)
	}
	if len(in.Evaluations) == 0 {
		return Plan{}, &model.TeacherNotFoundError{Document: in.Document, Period: in.Period}
	}

	byCategory := make(map[model.Category][]float64)
	byQuestion := make(map[model.Category][]*questionRatings)
	index := make(map[string]*questionRatings)
	for _, ev := range in.Evaluations {
		for _, a := range ev.Answers() {
			if a.Rating == nil || a.Question.IsComment() {
				continue
			}
			c := a.Question.Category
			byCategory[c] = append(byCategory[c], a.Rating.Value())
			qr, ok := index[a.Question.Code]
			if !ok {
				qr = &questionRatings{question: a.Question}
				index[a.Question.Code] = qr
				byQuestion[c] = append(byQuestion[c], qr)
			}
			qr.values = append(qr.values, a.Rating.Value())
		}
	}

	var plan Plan
	for c, values := range byCategory {
		avg := mean(values)
		if avg >= e.threshold {
			continue
		}
		var recs []Recommendation
		for _, qr := range byQuestion[c] {
			qAvg := mean(qr.values)
			if qAvg >= e.threshold {
				continue
			}
			recs = append(recs, Recommendation{
				Question: qr.question,
				Average:  qAvg,
				Text:     e.rules.Resolve(c, qr.question.Text),
			})
		}
		if len(recs) == 0 {
			continue
		}
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Average < recs[j].Average })
		plan.Categories = append(plan.Categories, CategoryPlan{Category: c, Average: avg, Recommendations: recs})
	}
	sort.Slice(plan.Categories, func(i, j int) bool {
		return plan.Categories[i].Category.Label() < plan.Categories[j].Category.Label()
	})
	return plan, nil
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

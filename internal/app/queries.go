package service

import (
	"context"
	"strings"
	"time"

	"github.com/okian/teacheval/internal/adapters/repository"
	"github.com/okian/teacheval/internal/domain/improvement"
	"github.com/okian/teacheval/internal/domain/model"
	"github.com/okian/teacheval/internal/domain/scoring"
	"github.com/okian/teacheval/internal/domain/types"
	"github.com/okian/teacheval/pkg/metrics"
)

// Calculation names used in metrics.
const (
	opAverages    = "averages"
	opDetail      = "detail"
	opImprovement = "improvement"
	opComparison  = "comparison"
	opCategory    = "category_statistics"
	opReport      = "report"
)

// selection is the evaluations of one teacher in the current catalog,
// optionally narrowed to a period.
type selection struct {
	teacher     *model.Teacher
	period      *model.Period
	evaluations []*model.Evaluation
}

// ParsePeriod parses an optional period query value. Empty means all periods.
func ParsePeriod(raw string) (*model.Period, error) {
	if raw == "" {
		return nil, nil
	}
	p, err := model.ParsePeriod(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) selectTeacher(document, period string) (selection, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return selection{}, err
	}
	c, err := s.store.Current()
	if err != nil {
		return selection{}, err
	}
	return selectTeacher(c, document, p)
}

func selectTeacher(c *repository.Catalog, document string, p *model.Period) (selection, error) {
	t, ok := c.Evaluations.Teacher(document)
	if !ok {
		return selection{}, &model.TeacherNotFoundError{Document: document}
	}
	evals := t.Evaluations()
	if p != nil {
		evals = c.Evaluations.FindByTeacherAndPeriod(document, *p)
		if len(evals) == 0 {
			return selection{}, &model.TeacherNotFoundError{Document: document, Period: p}
		}
	}
	return selection{teacher: t, period: p, evaluations: evals}, nil
}

func observe(op string, start time.Time, err error) {
	metrics.RecordCalculationLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordCalculationError(op)
	}
}

// ListTeachers returns every teacher sorted by document.
func (s *Service) ListTeachers(_ context.Context) ([]types.TeacherListItem, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	teachers := c.Evaluations.ListTeachers()
	out := make([]types.TeacherListItem, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, types.TeacherListItem{
			Document:         t.Document,
			Name:             t.Name,
			TotalEvaluations: t.TotalEvaluations(),
		})
	}
	return out, nil
}

// TeacherAverages computes the averages of one teacher.
func (s *Service) TeacherAverages(ctx context.Context, document, period string) (out types.TeacherAverages, err error) {
	defer func(start time.Time) { observe(opAverages, start, err) }(time.Now())

	sel, err := s.selectTeacher(document, period)
	if err != nil {
		return types.TeacherAverages{}, err
	}
	return s.averages(ctx, sel)
}

func (s *Service) averages(ctx context.Context, sel selection) (types.TeacherAverages, error) {
	res, err := s.calculator.Averages(ctx, scoring.Input{
		Document:    sel.teacher.Document,
		Period:      sel.period,
		Evaluations: sel.evaluations,
	})
	if err != nil {
		return types.TeacherAverages{}, err
	}

	out := types.TeacherAverages{
		Document:         sel.teacher.Document,
		Name:             sel.teacher.Name,
		Period:           periodString(sel.period),
		OverallAverage:   res.Overall,
		PerformanceLevel: model.LevelFor(res.Overall),
		TotalEvaluations: res.Total,
		PerCategory:      make([]types.CategoryAverage, 0, len(res.PerCategory)),
		PerEvaluatorType: make([]types.EvaluatorTypeAverage, 0, len(res.PerEvaluatorType)),
	}
	for _, c := range res.PerCategory {
		out.PerCategory = append(out.PerCategory, types.CategoryAverage{
			Category:   c.Category.Label(),
			ShortLabel: c.Category.ShortLabel(),
			Average:    c.Average,
			Count:      c.Count,
		})
	}
	for _, e := range res.PerEvaluatorType {
		out.PerEvaluatorType = append(out.PerEvaluatorType, types.EvaluatorTypeAverage{
			Type:    e.Type,
			Average: e.Average,
			Count:   e.Count,
		})
	}
	return out, nil
}

// TeacherDetail lists every answer of one teacher, evaluation by evaluation.
func (s *Service) TeacherDetail(_ context.Context, document, period string) (out types.TeacherDetail, err error) {
	defer func(start time.Time) { observe(opDetail, start, err) }(time.Now())

	sel, err := s.selectTeacher(document, period)
	if err != nil {
		return types.TeacherDetail{}, err
	}
	out = types.TeacherDetail{
		Document:         sel.teacher.Document,
		Name:             sel.teacher.Name,
		Period:           periodString(sel.period),
		TotalEvaluations: len(sel.evaluations),
		Answers:          []types.Answer{},
	}
	for _, e := range sel.evaluations {
		for _, a := range e.Answers() {
			var rating *float64
			if a.Rating != nil {
				v := a.Rating.Value()
				rating = &v
			}
			out.Answers = append(out.Answers, types.Answer{
				EvaluationID:  e.ID,
				QuestionCode:  a.Question.Code,
				QuestionText:  a.Question.Text,
				Category:      a.Question.Category.Label(),
				Rating:        rating,
				EvaluatorType: e.EvaluatorType,
				Period:        e.Period.String(),
			})
		}
	}
	return out, nil
}

// ImprovementPlan lists the recommendations of one teacher.
func (s *Service) ImprovementPlan(ctx context.Context, document, period string) (out types.ImprovementPlan, err error) {
	defer func(start time.Time) { observe(opImprovement, start, err) }(time.Now())

	sel, err := s.selectTeacher(document, period)
	if err != nil {
		return types.ImprovementPlan{}, err
	}
	return s.plan(ctx, sel)
}

func (s *Service) plan(ctx context.Context, sel selection) (types.ImprovementPlan, error) {
	plan, err := s.planner.Plan(ctx, improvement.Input{
		Document:    sel.teacher.Document,
		Period:      sel.period,
		Evaluations: sel.evaluations,
	})
	if err != nil {
		return types.ImprovementPlan{}, err
	}

	out := types.ImprovementPlan{
		Document:   sel.teacher.Document,
		Name:       sel.teacher.Name,
		Period:     periodString(sel.period),
		Categories: make([]types.CategoryImprovement, 0, len(plan.Categories)),
	}
	for _, c := range plan.Categories {
		ci := types.CategoryImprovement{
			Category:        c.Category.Label(),
			ShortLabel:      c.Category.ShortLabel(),
			CategoryAverage: c.Average,
			Recommendations: make([]types.Recommendation, 0, len(c.Recommendations)),
		}
		for _, r := range c.Recommendations {
			ci.Recommendations = append(ci.Recommendations, types.Recommendation{
				QuestionCode:  r.Question.Code,
				QuestionText:  r.Question.Text,
				AverageRating: r.Average,
				Text:          r.Text,
			})
		}
		out.Categories = append(out.Categories, ci)
	}
	return out, nil
}

// CompareEvaluators contrasts self-evaluations with student evaluations.
func (s *Service) CompareEvaluators(ctx context.Context, document, period string) (out types.EvaluatorComparison, err error) {
	defer func(start time.Time) { observe(opComparison, start, err) }(time.Now())

	sel, err := s.selectTeacher(document, period)
	if err != nil {
		return types.EvaluatorComparison{}, err
	}
	cmp, err := s.calculator.CompareEvaluators(ctx, scoring.Input{
		Document:    sel.teacher.Document,
		Period:      sel.period,
		Evaluations: sel.evaluations,
	})
	if err != nil {
		return types.EvaluatorComparison{}, err
	}

	out = types.EvaluatorComparison{
		Document:       sel.teacher.Document,
		Name:           sel.teacher.Name,
		Period:         periodString(sel.period),
		SelfAverage:    groupAverage(cmp.Self),
		SelfCount:      cmp.Self.Count,
		StudentAverage: groupAverage(cmp.Student),
		StudentCount:   cmp.Student.Count,
		OtherAverage:   groupAverage(cmp.Other),
		OtherCount:     cmp.Other.Count,
	}
	if gap, ok := cmp.Gap(); ok {
		out.Gap = &gap
	}
	return out, nil
}

// CategoryStatistics describes one category across every teacher. The
// category may be given by canonical or short label.
func (s *Service) CategoryStatistics(ctx context.Context, category, period string) (out types.CategoryStatistics, err error) {
	defer func(start time.Time) { observe(opCategory, start, err) }(time.Now())

	cat, err := parseCategory(category)
	if err != nil {
		return types.CategoryStatistics{}, err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return types.CategoryStatistics{}, err
	}
	c, err := s.store.Current()
	if err != nil {
		return types.CategoryStatistics{}, err
	}

	evals := c.Evaluations.FindAll()
	if p != nil {
		evals = c.Evaluations.FindByPeriod(*p)
	}
	byTeacher := make(map[string][]*model.Evaluation)
	for _, e := range evals {
		byTeacher[e.Teacher.Document] = append(byTeacher[e.Teacher.Document], e)
	}

	st, err := s.calculator.CategoryStatistics(ctx, cat, byTeacher)
	if err != nil {
		return types.CategoryStatistics{}, err
	}
	return types.CategoryStatistics{
		Category:         st.Category.Label(),
		ShortLabel:       st.Category.ShortLabel(),
		Period:           periodString(p),
		Average:          st.Average,
		Max:              st.Max,
		Min:              st.Min,
		StdDev:           st.StdDev,
		TotalEvaluations: st.TotalEvaluations,
		TotalTeachers:    st.TotalTeachers,
	}, nil
}

// ListPeriods returns every period with its evaluation count, ascending.
func (s *Service) ListPeriods(_ context.Context) ([]types.PeriodListItem, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	periods := c.Evaluations.ListPeriods()
	out := make([]types.PeriodListItem, 0, len(periods))
	for _, p := range periods {
		out = append(out, types.PeriodListItem{
			Period:           p.String(),
			TotalEvaluations: len(c.Evaluations.FindByPeriod(p)),
		})
	}
	return out, nil
}

// ListEvaluatorTypes returns every evaluator type with its evaluation count.
func (s *Service) ListEvaluatorTypes(_ context.Context) ([]types.EvaluatorTypeListItem, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	labels := c.Evaluations.ListEvaluatorTypes()
	out := make([]types.EvaluatorTypeListItem, 0, len(labels))
	for _, l := range labels {
		out = append(out, types.EvaluatorTypeListItem{
			Type:             l,
			TotalEvaluations: len(c.Evaluations.FindByEvaluatorType(l)),
		})
	}
	return out, nil
}

func parseCategory(raw string) (model.Category, error) {
	cat, err := model.ParseCategory(raw)
	if err == nil {
		return cat, nil
	}
	needle := strings.TrimSpace(raw)
	for _, c := range model.Categories() {
		if strings.EqualFold(c.ShortLabel(), needle) {
			return c, nil
		}
	}
	return 0, err
}

func periodString(p *model.Period) *string {
	if p == nil {
		return nil
	}
	v := p.String()
	return &v
}

func groupAverage(g scoring.Group) *float64 {
	if g.Count == 0 {
		return nil
	}
	v := g.Average
	return &v
}

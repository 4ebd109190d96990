package model

import "strings"

// Evaluator label markers, matched case-insensitively.
var (
	selfEvaluationMarkers = []string{"autoevaluación", "autoevaluacion", "self"}
	studentMarkers        = []string{"estudiante", "student"}
)

// TeacherRef identifies the evaluated teacher on an evaluation row.
type TeacherRef struct {
	Document string
	Name     string
}

// Answer pairs a question with its optional rating. A nil Rating is an
// unanswered question.
type Answer struct {
	Question Question
	Rating   *Rating
}

// Evaluation is one filled-in form. Identity is ID.
//
// Answers keep insertion order so that every sum over them is computed in
// the same order across runs.
type Evaluation struct {
	ID            string
	Teacher       TeacherRef
	Period        Period
	EvaluatorType string

	questions map[string]Question
	ratings   map[string]*Rating
	order     []string
}

// NewEvaluation creates an evaluation without answers.
func NewEvaluation(id string, teacher TeacherRef, period Period, evaluatorType string) *Evaluation {
	return &Evaluation{
		ID:            id,
		Teacher:       teacher,
		Period:        period,
		EvaluatorType: evaluatorType,
		questions:     make(map[string]Question),
		ratings:       make(map[string]*Rating),
	}
}

// AddAnswer records the rating for q. A nil rating marks q as unanswered.
// Re-adding a code replaces its rating and keeps its position.
func (e *Evaluation) AddAnswer(q Question, r *Rating) {
	if _, ok := e.questions[q.Code]; !ok {
		e.order = append(e.order, q.Code)
	}
	e.questions[q.Code] = q
	if r != nil {
		v := *r
		r = &v
	}
	e.ratings[q.Code] = r
}

// Len returns the number of questions present, answered or not.
func (e *Evaluation) Len() int { return len(e.order) }

// Answers returns every answer in insertion order.
func (e *Evaluation) Answers() []Answer {
	out := make([]Answer, 0, len(e.order))
	for _, code := range e.order {
		out = append(out, Answer{Question: e.questions[code], Rating: e.ratings[code]})
	}
	return out
}

// Rating returns the rating for code; ok is false when the question is absent.
// An answered question returns a non-nil rating.
func (e *Evaluation) Rating(code string) (r *Rating, ok bool) {
	r, ok = e.ratings[code]
	return r, ok
}

// Mean averages answered ratings outside Comments, or 0 when there are none.
func (e *Evaluation) Mean() float64 {
	sum, n := 0.0, 0
	for _, code := range e.order {
		r := e.ratings[code]
		if r == nil || e.questions[code].IsComment() {
			continue
		}
		sum += r.Value()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CategoryMean averages answered ratings in c, or 0 when there are none.
func (e *Evaluation) CategoryMean(c Category) float64 {
	ratings := e.RatingsIn(c)
	if len(ratings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r.Value()
	}
	return sum / float64(len(ratings))
}

// RatingsIn returns the answered ratings in c in insertion order.
func (e *Evaluation) RatingsIn(c Category) []Rating {
	var out []Rating
	for _, code := range e.order {
		if r := e.ratings[code]; r != nil && e.questions[code].Category == c {
			out = append(out, *r)
		}
	}
	return out
}

// EvaluatedCategories lists the scored categories with at least one question
// present, answered or not, in declaration order.
func (e *Evaluation) EvaluatedCategories() []Category {
	present := make(map[Category]bool)
	for _, q := range e.questions {
		if !q.IsComment() {
			present[q.Category] = true
		}
	}
	out := make([]Category, 0, len(present))
	for _, c := range allCategories {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

// ValidAnswerCount counts answered questions outside Comments.
func (e *Evaluation) ValidAnswerCount() int {
	n := 0
	for code, r := range e.ratings {
		if r != nil && !e.questions[code].IsComment() {
			n++
		}
	}
	return n
}

// IsSelfEvaluation reports a self-evaluation form.
func (e *Evaluation) IsSelfEvaluation() bool {
	return containsAny(e.EvaluatorType, selfEvaluationMarkers)
}

// IsStudentEvaluation reports a form filled in by a student.
func (e *Evaluation) IsStudentEvaluation() bool { return containsAny(e.EvaluatorType, studentMarkers) }

// Equal compares ids only.
func (e *Evaluation) Equal(o *Evaluation) bool { return o != nil && e.ID == o.ID }

func containsAny(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

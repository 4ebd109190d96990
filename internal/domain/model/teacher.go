package model

// Teacher aggregates the evaluations of one document id. It holds no
// numeric state; statistics are computed from Evaluations.
type Teacher struct {
	Document string
	Name     string

	evaluations []*Evaluation
	seen        map[string]struct{}
}

// NewTeacher creates an empty aggregate.
func NewTeacher(document, name string) *Teacher {
	return &Teacher{Document: document, Name: name, seen: make(map[string]struct{})}
}

// AddEvaluation appends e unless an evaluation with the same id is present.
func (t *Teacher) AddEvaluation(e *Evaluation) bool {
	if _, dup := t.seen[e.ID]; dup {
		return false
	}
	t.seen[e.ID] = struct{}{}
	t.evaluations = append(t.evaluations, e)
	return true
}

// Evaluations returns a copy of the evaluations in insertion order.
func (t *Teacher) Evaluations() []*Evaluation {
	out := make([]*Evaluation, len(t.evaluations))
	copy(out, t.evaluations)
	return out
}

// TotalEvaluations returns the number of evaluations.
func (t *Teacher) TotalEvaluations() int { return len(t.evaluations) }

// HasEvaluations reports at least one evaluation.
func (t *Teacher) HasEvaluations() bool { return len(t.evaluations) > 0 }

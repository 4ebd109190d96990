package repository

import (
	"sort"

	"github.com/okian/teacheval/internal/domain/model"
)

// EvaluationIndex answers evaluation lookups in O(1) per key. It is built in
// one pass and never mutated afterwards, so concurrent reads need no locks.
//
// Input is sorted by evaluation id before indexing, which makes the index
// (bucket order, first-seen teacher names) independent of input order.
type EvaluationIndex struct {
	all             []*model.Evaluation
	byID            map[string]*model.Evaluation
	byTeacher       map[string][]*model.Evaluation
	byPeriod        map[model.Period][]*model.Evaluation
	byEvaluatorType map[string][]*model.Evaluation
	teacherNames    map[string]string
	documents       []string
	periods         []model.Period
	evaluatorTypes  []string
	duplicates      int
}

var _ EvaluationRepository = (*EvaluationIndex)(nil)

// NewEvaluationIndex indexes evals. Among evaluations sharing an id the one
// ordered first by evaluationLess is kept; the rest are dropped and counted.
func NewEvaluationIndex(evals []*model.Evaluation) *EvaluationIndex {
	ordered := make([]*model.Evaluation, 0, len(evals))
	for _, e := range evals {
		if e != nil {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return evaluationLess(ordered[i], ordered[j]) })

	idx := &EvaluationIndex{
		all:             make([]*model.Evaluation, 0, len(ordered)),
		byID:            make(map[string]*model.Evaluation, len(ordered)),
		byTeacher:       make(map[string][]*model.Evaluation),
		byPeriod:        make(map[model.Period][]*model.Evaluation),
		byEvaluatorType: make(map[string][]*model.Evaluation),
		teacherNames:    make(map[string]string),
	}
	for _, e := range ordered {
		if _, dup := idx.byID[e.ID]; dup {
			idx.duplicates++
			continue
		}
		idx.all = append(idx.all, e)
		idx.byID[e.ID] = e

		doc := e.Teacher.Document
		if _, seen := idx.teacherNames[doc]; !seen {
			idx.teacherNames[doc] = e.Teacher.Name
			idx.documents = append(idx.documents, doc)
		}
		idx.byTeacher[doc] = append(idx.byTeacher[doc], e)

		if _, seen := idx.byPeriod[e.Period]; !seen {
			idx.periods = append(idx.periods, e.Period)
		}
		idx.byPeriod[e.Period] = append(idx.byPeriod[e.Period], e)

		if _, seen := idx.byEvaluatorType[e.EvaluatorType]; !seen {
			idx.evaluatorTypes = append(idx.evaluatorTypes, e.EvaluatorType)
		}
		idx.byEvaluatorType[e.EvaluatorType] = append(idx.byEvaluatorType[e.EvaluatorType], e)
	}
	sort.Strings(idx.documents)
	model.SortPeriods(idx.periods)
	sort.Strings(idx.evaluatorTypes)
	return idx
}

// evaluationLess orders by id, then by content, so the survivor of a
// duplicate id does not depend on input order.
func evaluationLess(a, b *model.Evaluation) bool {
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	if a.Teacher.Document != b.Teacher.Document {
		return a.Teacher.Document < b.Teacher.Document
	}
	if c := a.Period.Compare(b.Period); c != 0 {
		return c < 0
	}
	if a.EvaluatorType != b.EvaluatorType {
		return a.EvaluatorType < b.EvaluatorType
	}
	return a.Teacher.Name < b.Teacher.Name
}

func clone(in []*model.Evaluation) []*model.Evaluation {
	out := make([]*model.Evaluation, len(in))
	copy(out, in)
	return out
}

// FindByID returns the evaluation with id, if any.
func (x *EvaluationIndex) FindByID(id string) (*model.Evaluation, bool) {
	e, ok := x.byID[id]
	return e, ok
}

// FindByTeacher returns the evaluations of document; empty when unknown.
func (x *EvaluationIndex) FindByTeacher(document string) []*model.Evaluation {
	return clone(x.byTeacher[document])
}

// FindByPeriod returns the evaluations in p.
func (x *EvaluationIndex) FindByPeriod(p model.Period) []*model.Evaluation {
	return clone(x.byPeriod[p])
}

// FindByTeacherAndPeriod filters the teacher's evaluations by period.
func (x *EvaluationIndex) FindByTeacherAndPeriod(document string, p model.Period) []*model.Evaluation {
	bucket := x.byTeacher[document]
	out := make([]*model.Evaluation, 0, len(bucket))
	for _, e := range bucket {
		if e.Period == p {
			out = append(out, e)
		}
	}
	return out
}

// FindByEvaluatorType returns the evaluations with the exact evaluator label.
func (x *EvaluationIndex) FindByEvaluatorType(label string) []*model.Evaluation {
	return clone(x.byEvaluatorType[label])
}

// FindAll returns every indexed evaluation, ordered by id.
func (x *EvaluationIndex) FindAll() []*model.Evaluation {
	return clone(x.all)
}

// ListTeachers returns one fresh aggregate per document, sorted by document.
func (x *EvaluationIndex) ListTeachers() []*model.Teacher {
	out := make([]*model.Teacher, 0, len(x.documents))
	for _, doc := range x.documents {
		out = append(out, x.teacher(doc))
	}
	return out
}

// Teacher returns the aggregate for document, if any evaluation names it.
func (x *EvaluationIndex) Teacher(document string) (*model.Teacher, bool) {
	if _, ok := x.teacherNames[document]; !ok {
		return nil, false
	}
	return x.teacher(document), true
}

func (x *EvaluationIndex) teacher(document string) *model.Teacher {
	t := model.NewTeacher(document, x.teacherNames[document])
	for _, e := range x.byTeacher[document] {
		t.AddEvaluation(e)
	}
	return t
}

// TeacherCount returns the number of distinct documents.
func (x *EvaluationIndex) TeacherCount() int { return len(x.documents) }

// ListPeriods returns the distinct periods in ascending order.
func (x *EvaluationIndex) ListPeriods() []model.Period {
	out := make([]model.Period, len(x.periods))
	copy(out, x.periods)
	return out
}

// ListEvaluatorTypes returns the distinct evaluator labels in ascending order.
func (x *EvaluationIndex) ListEvaluatorTypes() []string {
	out := make([]string, len(x.evaluatorTypes))
	copy(out, x.evaluatorTypes)
	return out
}

// Len returns the number of indexed evaluations.
func (x *EvaluationIndex) Len() int { return len(x.all) }

// Duplicates returns how many evaluations were dropped for a repeated id.
func (x *EvaluationIndex) Duplicates() int { return x.duplicates }

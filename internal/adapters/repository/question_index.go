package repository

import "github.com/okian/teacheval/internal/domain/model"

// QuestionIndex answers question lookups by code and by category.
type QuestionIndex struct {
	all        []model.Question
	byCode     map[string]model.Question
	byCategory map[model.Category][]model.Question
}

var _ QuestionRepository = (*QuestionIndex)(nil)

// NewQuestionIndex indexes questions, keeping the first question per code.
func NewQuestionIndex(questions []model.Question) *QuestionIndex {
	idx := &QuestionIndex{
		all:        make([]model.Question, 0, len(questions)),
		byCode:     make(map[string]model.Question, len(questions)),
		byCategory: make(map[model.Category][]model.Question),
	}
	for _, q := range questions {
		if _, dup := idx.byCode[q.Code]; dup {
			continue
		}
		idx.all = append(idx.all, q)
		idx.byCode[q.Code] = q
		idx.byCategory[q.Category] = append(idx.byCategory[q.Category], q)
	}
	return idx
}

// FindByCode returns the question with code.
func (x *QuestionIndex) FindByCode(code string) (model.Question, bool) {
	q, ok := x.byCode[code]
	return q, ok
}

// FindByCategory returns the questions of c in catalog order.
func (x *QuestionIndex) FindByCategory(c model.Category) []model.Question {
	src := x.byCategory[c]
	out := make([]model.Question, len(src))
	copy(out, src)
	return out
}

// FindAll returns every question in catalog order.
func (x *QuestionIndex) FindAll() []model.Question {
	out := make([]model.Question, len(x.all))
	copy(out, x.all)
	return out
}

// Categories returns the categories that have questions, in declaration order.
func (x *QuestionIndex) Categories() []model.Category {
	out := make([]model.Category, 0, len(x.byCategory))
	for _, c := range model.Categories() {
		if len(x.byCategory[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of questions.
func (x *QuestionIndex) Len() int { return len(x.all) }

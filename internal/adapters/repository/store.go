// Package repository holds the in-memory evaluation and question indexes and
// the catalog snapshot they are published in.
package repository

import (
	"time"

	"github.com/okian/teacheval/internal/domain/model"
)

// EvaluationRepository is the read side of the evaluation index.
type EvaluationRepository interface {
	FindByID(id string) (*model.Evaluation, bool)
	FindByTeacher(document string) []*model.Evaluation
	FindByPeriod(p model.Period) []*model.Evaluation
	FindByTeacherAndPeriod(document string, p model.Period) []*model.Evaluation
	FindByEvaluatorType(label string) []*model.Evaluation
	FindAll() []*model.Evaluation
	ListTeachers() []*model.Teacher
	ListPeriods() []model.Period
	ListEvaluatorTypes() []string
	Len() int
}

// QuestionRepository is the read side of the question index.
type QuestionRepository interface {
	FindByCode(code string) (model.Question, bool)
	FindByCategory(c model.Category) []model.Question
	FindAll() []model.Question
	Categories() []model.Category
	Len() int
}

// Catalog is one immutable generation of indexed data.
type Catalog struct {
	ID          string
	LoadedAt    time.Time
	Sources     []string
	Evaluations *EvaluationIndex
	Questions   *QuestionIndex
}

// Teachers returns the number of distinct teachers.
func (c *Catalog) Teachers() int { return c.Evaluations.TeacherCount() }

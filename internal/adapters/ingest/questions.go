package ingest

import (
	"fmt"

	"github.com/okian/teacheval/internal/domain/model"
)

// Question catalog columns.
const (
	ColQuestionCode     = "IDPREGUNTA"
	ColQuestionCategory = "CATEGORIA"
	ColQuestionText     = "PREGUNTA"
)

// ParseQuestions converts catalog rows into questions. Rows without a code
// or with a repeated code are skipped; an unknown category falls back to
// Comments. Both are reported as issues.
func ParseQuestions(file string, table Table) ([]model.Question, []Issue, error) {
	if missing, ok := table.HasColumns(ColQuestionCode, ColQuestionCategory, ColQuestionText); !ok {
		return nil, nil, fmt.Errorf("missing column %s", missing)
	}

	questions := make([]model.Question, 0, len(table.Rows))
	seen := make(map[string]bool, len(table.Rows))
	var issues []Issue
	for _, row := range table.Rows {
		code := row.Value(ColQuestionCode)
		if code == "" {
			issues = append(issues, Issue{File: file, Line: row.Line, Reason: "question without code", Skipped: true})
			continue
		}
		if seen[code] {
			issues = append(issues, Issue{File: file, Line: row.Line, Reason: fmt.Sprintf("duplicate question %s", code), Skipped: true})
			continue
		}
		seen[code] = true

		label := row.Value(ColQuestionCategory)
		category, err := model.ParseCategory(label)
		if err != nil {
			issues = append(issues, Issue{File: file, Line: row.Line, Reason: fmt.Sprintf("question %s: %v, using %s", code, err, model.Comments.ShortLabel())})
			category = model.Comments
		}
		questions = append(questions, model.Question{Code: code, Category: category, Text: row.Value(ColQuestionText)})
	}
	return questions, issues, nil
}

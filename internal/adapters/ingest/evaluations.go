package ingest

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/okian/teacheval/internal/domain/model"
)

// Evaluation export columns. Every other column is a question code.
const (
	ColPersonID      = "PEGE_ID"
	ColDocument      = "DOCUMENTO"
	ColFullName      = "NOMBRECOMPLETO"
	ColPeriod        = "PERIODO"
	ColEvaluatorType = "FORMULARIO"
)

// EvaluationStats summarizes one parsed export.
type EvaluationStats struct {
	Rows           int
	Skipped        int
	InvalidRatings int
}

// EvaluationID derives the identity of a response. The person id column is
// repeated for every response about the same person, so the source position
// qualifies it.
func EvaluationID(personID, file string, line int) string {
	return fmt.Sprintf("%s@%s:%d", personID, filepath.Base(file), line)
}

// ParseEvaluations converts export rows into evaluations. Only columns named
// after a catalog question are read, in catalog order. Rows without a person
// id or document, or with a malformed period, are skipped; rating cells that
// are empty, non-numeric or outside [1, 5] count as unanswered.
func ParseEvaluations(file string, table Table, questions []model.Question) ([]*model.Evaluation, EvaluationStats, []Issue, error) {
	if missing, ok := table.HasColumns(ColPersonID, ColDocument, ColFullName, ColPeriod, ColEvaluatorType); !ok {
		return nil, EvaluationStats{}, nil, fmt.Errorf("missing column %s", missing)
	}

	present := make(map[string]bool, len(table.Header))
	for _, h := range table.Header {
		present[h] = true
	}
	columns := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if present[q.Code] {
			columns = append(columns, q)
		}
	}

	stats := EvaluationStats{Rows: len(table.Rows)}
	evaluations := make([]*model.Evaluation, 0, len(table.Rows))
	var issues []Issue
	skip := func(row Row, reason string) {
		stats.Skipped++
		issues = append(issues, Issue{File: file, Line: row.Line, Reason: reason, Skipped: true})
	}
	for _, row := range table.Rows {
		personID := row.Value(ColPersonID)
		document := row.Value(ColDocument)
		if personID == "" {
			skip(row, "evaluation without person id")
			continue
		}
		if document == "" {
			skip(row, "evaluation without teacher document")
			continue
		}
		period, err := model.ParsePeriod(row.Value(ColPeriod))
		if err != nil {
			skip(row, err.Error())
			continue
		}

		e := model.NewEvaluation(
			EvaluationID(personID, file, row.Line),
			model.TeacherRef{Document: document, Name: row.Value(ColFullName)},
			period,
			row.Value(ColEvaluatorType),
		)
		for _, q := range columns {
			r, invalid := parseRating(row.Value(q.Code))
			if invalid {
				stats.InvalidRatings++
			}
			e.AddAnswer(q, r)
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, stats, issues, nil
}

// parseRating returns nil for blank cells; invalid reports a non-blank cell
// that is not a rating. Decimal commas are not ratings.
func parseRating(cell string) (r *model.Rating, invalid bool) {
	if cell == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, true
	}
	rating, err := model.NewRating(v)
	if err != nil {
		return nil, true
	}
	return &rating, false
}

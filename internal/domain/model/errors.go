package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for domain errors. Typed errors below match them via errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// InvalidRatingError reports a rating outside [MinRating, MaxRating].
type InvalidRatingError struct {
	Value float64
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("rating %v out of range [%.0f, %.0f]", e.Value, MinRating, MaxRating)
}

// Is reports ErrValidation.
func (e *InvalidRatingError) Is(target error) bool { return target == ErrValidation }

// InvalidPeriodError reports a period that is not YYYY-1 or YYYY-2.
type InvalidPeriodError struct {
	Value string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q: expected YYYY-1 or YYYY-2", e.Value)
}

// Is reports ErrValidation.
func (e *InvalidPeriodError) Is(target error) bool { return target == ErrValidation }

// UnknownCategoryError reports text that matches no category label.
type UnknownCategoryError struct {
	Label string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Label)
}

// Is reports ErrValidation.
func (e *UnknownCategoryError) Is(target error) bool { return target == ErrValidation }

// TeacherNotFoundError reports a teacher without evaluations, optionally
// within a period.
type TeacherNotFoundError struct {
	Document string
	Period   *Period
}

func (e *TeacherNotFoundError) Error() string {
	if e.Period == nil {
		return fmt.Sprintf("teacher %s has no evaluations", e.Document)
	}
	return fmt.Sprintf("teacher %s has no evaluations in period %s", e.Document, e.Period)
}

// Is reports ErrNotFound.
func (e *TeacherNotFoundError) Is(target error) bool { return target == ErrNotFound }

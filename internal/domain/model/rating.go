package model

import "fmt"

// Rating bounds and thresholds.
const (
	MinRating       = 1.0
	MaxRating       = 5.0
	PassingRating   = 3.0
	ExcellentRating = 4.5
)

// Performance levels returned by Rating.Level.
const (
	LevelExcellent    = "Excellent"
	LevelOutstanding  = "Outstanding"
	LevelGood         = "Good"
	LevelAcceptable   = "Acceptable"
	LevelInsufficient = "Insufficient"
)

// Rating is a single answer score in [1, 5].
type Rating struct {
	value float64
}

// NewRating validates v and returns it as a Rating.
func NewRating(v float64) (Rating, error) {
	// NaN fails both comparisons.
	if !(v >= MinRating && v <= MaxRating) {
		return Rating{}, &InvalidRatingError{Value: v}
	}
	return Rating{value: v}, nil
}

// MustRating is NewRating for constants; it panics on invalid input.
func MustRating(v float64) Rating {
	r, err := NewRating(v)
	if err != nil {
		panic(err)
	}
	return r
}

// Value returns the numeric score.
func (r Rating) Value() float64 { return r.value }

// IsPassing reports a score of at least 3.0.
func (r Rating) IsPassing() bool { return r.value >= PassingRating }

// IsExcellent reports a score of at least 4.5.
func (r Rating) IsExcellent() bool { return r.value >= ExcellentRating }

// Level returns the performance band of the score.
func (r Rating) Level() string { return LevelFor(r.value) }

func (r Rating) String() string { return fmt.Sprintf("%.2f", r.value) }

// LevelFor returns the performance band of any mean on the rating scale.
func LevelFor(v float64) string {
	switch {
	case v >= 4.5:
		return LevelExcellent
	case v >= 4.0:
		return LevelOutstanding
	case v >= 3.5:
		return LevelGood
	case v >= 3.0:
		return LevelAcceptable
	default:
		return LevelInsufficient
	}
}

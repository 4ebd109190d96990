package model

import (
	"encoding/json"
	"strings"
)

// Category groups questions on the evaluation form. The set is closed.
type Category int

// Categories in declaration order.
const (
	Planning Category = iota + 1
	TeachingDelivery
	LearningAssessment
	PersonalComponent
	Behavior
	TeachingLearning
	GeneralEvaluation
	Graduate
	VirtualClassroom
	Comments
)

type categoryLabels struct {
	label string
	short string
}

// Labels as they appear in the source exports.
var categoryTable = map[Category]categoryLabels{
	Planning:           {"PLANEACIÓN DEL PROCESO ENSEÑANZA - APRENDIZAJE - EVALUACIÓN", "Planeación"},
	TeachingDelivery:   {"CONDUCCIÓN DEL PROCESO ENSEÑANZA-APRENDIZAJE", "Conducción"},
	LearningAssessment: {"EVALUACIÓN DEL APRENDIZAJE", "Eval. Aprendizaje"},
	PersonalComponent:  {"COMPONENTE PERSONAL", "Personal"},
	Behavior:           {"COMPORTAMIENTO", "Comportamiento"},
	TeachingLearning:   {"ENSEÑANZA-APRENDIZAJE", "Enseñanza-Aprendizaje"},
	GeneralEvaluation:  {"EVALUACIÓN", "Evaluación"},
	Graduate:           {"POSGRADO", "Posgrado"},
	VirtualClassroom:   {"ESTRUCTURA DE AULA VIRTUAL", "Aula Virtual"},
	Comments:           {"COMENTARIOS", "Comentarios"},
}

var allCategories = []Category{
	Planning, TeachingDelivery, LearningAssessment, PersonalComponent, Behavior,
	TeachingLearning, GeneralEvaluation, Graduate, VirtualClassroom, Comments,
}

// ParseCategory resolves text against the canonical labels: trimmed,
// case-insensitive, exact. It never substitutes a fallback.
func ParseCategory(text string) (Category, error) {
	needle := strings.TrimSpace(text)
	for _, c := range allCategories {
		if strings.EqualFold(categoryTable[c].label, needle) {
			return c, nil
		}
	}
	return 0, &UnknownCategoryError{Label: text}
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ScoredCategories returns every category that contributes to averages.
func ScoredCategories() []Category {
	out := make([]Category, 0, len(allCategories)-1)
	for _, c := range allCategories {
		if !c.IsComment() {
			out = append(out, c)
		}
	}
	return out
}

// Valid reports whether c is a declared category.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label returns the canonical label.
func (c Category) Label() string { return categoryTable[c].label }

// ShortLabel returns the display label.
func (c Category) ShortLabel() string { return categoryTable[c].short }

// IsComment reports the free-text category excluded from scoring.
func (c Category) IsComment() bool { return c == Comments }

func (c Category) String() string {
	if !c.Valid() {
		return "UNKNOWN"
	}
	return c.Label()
}

// MarshalJSON encodes the canonical label.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Label())
}

// UnmarshalJSON resolves a label.
func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

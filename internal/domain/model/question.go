package model

// Question is one item of the evaluation form. Identity is Code.
type Question struct {
	Code     string
	Category Category
	Text     string
}

// Equal compares codes only.
func (q Question) Equal(o Question) bool { return q.Code == o.Code }

// IsComment reports a free-text question.
func (q Question) IsComment() bool { return q.Category.IsComment() }

// BelongsTo reports whether q is in category c.
func (q Question) BelongsTo(c Category) bool { return q.Category == c }

// Package types contains the response shapes shared by the service, the
// HTTP API and the report renderers.
package types

// CategoryAverage is the mean of one category across qualifying evaluations.
type CategoryAverage struct {
	Category   string  `json:"category"`
	ShortLabel string  `json:"short_label"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}

// EvaluatorTypeAverage is the mean of one evaluator type.
type EvaluatorTypeAverage struct {
	Type    string  `json:"type"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// TeacherAverages summarizes a teacher, optionally within a period.
type TeacherAverages struct {
	Document         string                 `json:"document"`
	Name             string                 `json:"name"`
	Period           *string                `json:"period"`
	OverallAverage   float64                `json:"overall_average"`
	PerformanceLevel string                 `json:"performance_level"`
	TotalEvaluations int                    `json:"total_evaluations"`
	PerCategory      []CategoryAverage      `json:"per_category"`
	PerEvaluatorType []EvaluatorTypeAverage `json:"per_evaluator_type"`
}

// Answer is one question answered in one evaluation. Rating is nil when the
// question was left unanswered.
type Answer struct {
	EvaluationID  string   `json:"evaluation_id"`
	QuestionCode  string   `json:"question_code"`
	QuestionText  string   `json:"question_text"`
	Category      string   `json:"category"`
	Rating        *float64 `json:"rating"`
	EvaluatorType string   `json:"evaluator_type"`
	Period        string   `json:"period"`
}

// TeacherDetail lists every answer of a teacher.
type TeacherDetail struct {
	Document         string   `json:"document"`
	Name             string   `json:"name"`
	Period           *string  `json:"period"`
	TotalEvaluations int      `json:"total_evaluations"`
	Answers          []Answer `json:"answers"`
}

// Recommendation targets one low-scoring question.
type Recommendation struct {
	QuestionCode  string  `json:"question_code"`
	QuestionText  string  `json:"question_text"`
	AverageRating float64 `json:"average_rating"`
	Text          string  `json:"text"`
}

// CategoryImprovement groups the recommendations of one category.
type CategoryImprovement struct {
	Category        string           `json:"category"`
	ShortLabel      string           `json:"short_label"`
	CategoryAverage float64          `json:"category_average"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ImprovementPlan lists the categories below threshold, each with its
// worst questions first.
type ImprovementPlan struct {
	Document   string                `json:"document"`
	Name       string                `json:"name"`
	Period     *string               `json:"period"`
	Categories []CategoryImprovement `json:"categories"`
}

// TeacherListItem is one row of the teacher listing.
type TeacherListItem struct {
	Document         string `json:"document"`
	Name             string `json:"name"`
	TotalEvaluations int    `json:"total_evaluations"`
}

// PeriodListItem counts evaluations in a period.
type PeriodListItem struct {
	Period           string `json:"period"`
	TotalEvaluations int    `json:"total_evaluations"`
}

// EvaluatorTypeListItem counts evaluations by evaluator type.
type EvaluatorTypeListItem struct {
	Type             string `json:"type"`
	TotalEvaluations int    `json:"total_evaluations"`
}

// EvaluatorComparison contrasts self-evaluations with student evaluations.
// Averages are nil when the side has no scored evaluation; Gap is set only
// when both are present.
type EvaluatorComparison struct {
	Document       string   `json:"document"`
	Name           string   `json:"name"`
	Period         *string  `json:"period"`
	SelfAverage    *float64 `json:"self_average"`
	SelfCount      int      `json:"self_count"`
	StudentAverage *float64 `json:"student_average"`
	StudentCount   int      `json:"student_count"`
	Gap            *float64 `json:"gap"`
	OtherAverage   *float64 `json:"other_average"`
	OtherCount     int      `json:"other_count"`
}

// CategoryStatistics describes how one category scores across teachers.
type CategoryStatistics struct {
	Category         string  `json:"category"`
	ShortLabel       string  `json:"short_label"`
	Period           *string `json:"period"`
	Average          float64 `json:"average"`
	Max              float64 `json:"max"`
	Min              float64 `json:"min"`
	StdDev           float64 `json:"std_dev"`
	TotalEvaluations int     `json:"total_evaluations"`
	TotalTeachers    int     `json:"total_teachers"`
}

// ReportFile is a rendered document ready to be served or archived.
type ReportFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// CatalogInfo describes the catalog snapshot in use.
type CatalogInfo struct {
	ID          string   `json:"id"`
	LoadedAt    string   `json:"loaded_at"`
	Sources     []string `json:"sources"`
	Evaluations int      `json:"evaluations"`
	Questions   int      `json:"questions"`
	Teachers    int      `json:"teachers"`
}

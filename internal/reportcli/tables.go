package reportcli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/teacheval/internal/domain/types"
)

var (
	heading = color.New(color.FgYellow, color.Bold)
	muted   = color.New(color.FgHiBlack)
	warning = color.New(color.FgRed)
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func optionalScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return score(*v)
}

func printCatalog(w io.Writer, info types.CatalogInfo) {
	_, _ = muted.Fprintf(w, "Catalog %s: %d evaluations, %d questions, %d teachers from %d files\n",
		info.ID, info.Evaluations, info.Questions, info.Teachers, len(info.Sources))
}

func printSummary(w io.Writer, period string, rows []types.TeacherAverages) {
	_, _ = heading.Fprintf(w, "\nTeachers (%s)\n", period)
	if len(rows) == 0 {
		_, _ = warning.Fprintln(w, "No teacher has evaluations in this period.")
		return
	}
	t := newTable(w, "Document", "Name", "Evaluations", "Overall", "Level")
	for _, r := range rows {
		t.Append([]string{r.Document, r.Name, strconv.Itoa(r.TotalEvaluations), score(r.OverallAverage), r.PerformanceLevel})
	}
	t.Render()
}

func printTeacher(w io.Writer, avg types.TeacherAverages) {
	period := "all periods"
	if avg.Period != nil {
		period = *avg.Period
	}
	_, _ = heading.Fprintf(w, "\n%s (%s), %s\n", avg.Name, avg.Document, period)
	_, _ = fmt.Fprintf(w, "Overall %s over %d evaluations: %s\n",
		score(avg.OverallAverage), avg.TotalEvaluations, avg.PerformanceLevel)

	_, _ = heading.Fprintln(w, "\nBy category")
	t := newTable(w, "Category", "Average", "Evaluations")
	for _, c := range avg.PerCategory {
		t.Append([]string{c.ShortLabel, score(c.Average), strconv.Itoa(c.Count)})
	}
	t.Render()

	_, _ = heading.Fprintln(w, "\nBy evaluator type")
	t = newTable(w, "Evaluator type", "Average", "Evaluations")
	for _, e := range avg.PerEvaluatorType {
		t.Append([]string{e.Type, score(e.Average), strconv.Itoa(e.Count)})
	}
	t.Render()
}

func printComparison(w io.Writer, cmp types.EvaluatorComparison) {
	_, _ = heading.Fprintln(w, "\nSelf versus students")
	t := newTable(w, "Self", "Students", "Gap", "Others")
	t.Append([]string{
		optionalScore(cmp.SelfAverage),
		optionalScore(cmp.StudentAverage),
		optionalScore(cmp.Gap),
		optionalScore(cmp.OtherAverage),
	})
	t.Render()
}

func printPlan(w io.Writer, plan types.ImprovementPlan) {
	_, _ = heading.Fprintln(w, "\nImprovement plan")
	if len(plan.Categories) == 0 {
		_, _ = fmt.Fprintln(w, "No improvement needed.")
		return
	}
	t := newTable(w, "Category", "Question", "Average", "Recommendation")
	t.SetColWidth(60)
	for _, c := range plan.Categories {
		for _, r := range c.Recommendations {
			t.Append([]string{
				fmt.Sprintf("%s (%s)", c.ShortLabel, score(c.CategoryAverage)),
				strings.TrimSpace(r.QuestionText),
				score(r.AverageRating),
				r.Text,
			})
		}
	}
	t.Render()
}

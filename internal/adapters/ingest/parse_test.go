package ingest

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/teacheval/internal/domain/model"
)

func table(src string) Table {
	tb, err := ReadRows(strings.NewReader(src), ReadOptions{Delimiter: ';', Encoding: EncodingUTF8})
	So(err, ShouldBeNil)
	return tb
}

func TestParseQuestions(t *testing.T) {
	Convey("Given a question catalog", t, func() {
		Convey("When categories vary in case and some are unknown", func() {
			src := "IDPREGUNTA;CATEGORIA;PREGUNTA\n" +
				"P1;componente personal;Respeta a los estudiantes\n" +
				"P2;SIN CATEGORIA;Observaciones\n" +
				";COMPONENTE PERSONAL;Sin codigo\n" +
				"P1;COMPONENTE PERSONAL;Repetida\n"
			questions, issues, err := ParseQuestions("preguntas.csv", table(src))

			Convey("Then categories should map and unknown ones fall back to comments", func() {
				So(err, ShouldBeNil)
				So(questions, ShouldHaveLength, 2)
				So(questions[0], ShouldResemble, model.Question{Code: "P1", Category: model.PersonalComponent, Text: "Respeta a los estudiantes"})
				So(questions[1].Category, ShouldEqual, model.Comments)
			})

			Convey("Then rows without a code and repeated codes should be skipped", func() {
				So(issues, ShouldHaveLength, 3)
				So(issues[0].Skipped, ShouldBeFalse)
				So(issues[0].Line, ShouldEqual, 3)
				So(issues[1].Skipped, ShouldBeTrue)
				So(issues[2].Skipped, ShouldBeTrue)
				So(issues[2].Reason, ShouldContainSubstring, "duplicate")
			})
		})

		Convey("When a column is missing", func() {
			_, _, err := ParseQuestions("preguntas.csv", table("IDPREGUNTA;PREGUNTA\nP1;x\n"))

			Convey("Then the column should be named in the error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "CATEGORIA")
			})
		})
	})
}

func TestParseEvaluations(t *testing.T) {
	Convey("Given an evaluation export", t, func() {
		questions := []model.Question{
			{Code: "P1", Category: model.Planning, Text: "Programa"},
			{Code: "P2", Category: model.PersonalComponent, Text: "Respeto"},
			{Code: "P9", Category: model.Comments, Text: "Absent column"},
		}
		header := "PEGE_ID;DOCUMENTO;NOMBRECOMPLETO;PERIODO;FORMULARIO;P2;P1;EXTRA\n"

		Convey("When a row is complete", func() {
			src := header + "77;100;Ana Ruiz;2024-1;ESTUDIANTE;5;4;zz\n"
			evals, stats, issues, err := ParseEvaluations("data/Evaluacion2024.csv", table(src), questions)

			Convey("Then the evaluation should carry catalog ordered answers", func() {
				So(err, ShouldBeNil)
				So(issues, ShouldBeEmpty)
				So(stats, ShouldResemble, EvaluationStats{Rows: 1})

				So(evals, ShouldHaveLength, 1)
				e := evals[0]
				So(e.ID, ShouldEqual, "77@Evaluacion2024.csv:2")
				So(e.Teacher, ShouldResemble, model.TeacherRef{Document: "100", Name: "Ana Ruiz"})
				So(e.Period, ShouldEqual, model.MustPeriod("2024-1"))
				So(e.EvaluatorType, ShouldEqual, "ESTUDIANTE")

				answers := e.Answers()
				So(answers, ShouldHaveLength, 2)
				So(answers[0].Question.Code, ShouldEqual, "P1")
				So(answers[1].Question.Code, ShouldEqual, "P2")
				So(e.Mean(), ShouldEqual, 4.5)
			})
		})

		Convey("When rating cells are blank, malformed or out of range", func() {
			src := header +
				"1;100;Ana;2024-1;ESTUDIANTE;;abc\n" +
				"2;100;Ana;2024-1;ESTUDIANTE;7;4,5\n" +
				"3;100;Ana;2024-1;ESTUDIANTE;0;3\n"
			evals, stats, _, err := ParseEvaluations("Evaluacion.csv", table(src), questions)

			Convey("Then they should count as unanswered", func() {
				So(err, ShouldBeNil)
				So(evals, ShouldHaveLength, 3)
				So(stats.InvalidRatings, ShouldEqual, 4)
				So(evals[0].ValidAnswerCount(), ShouldEqual, 0)
				So(evals[0].Mean(), ShouldEqual, 0.0)
				So(evals[1].ValidAnswerCount(), ShouldEqual, 0)
				So(evals[2].ValidAnswerCount(), ShouldEqual, 1)

				r, ok := evals[2].Rating("P1")
				So(ok, ShouldBeTrue)
				So(r, ShouldNotBeNil)
				So(r.Value(), ShouldEqual, 3.0)
			})
		})

		Convey("When rows lack a document or carry a malformed period", func() {
			src := header +
				"1;;Ana;2024-1;ESTUDIANTE;5;5\n" +
				"2;100;Ana;2024-3;ESTUDIANTE;5;5\n" +
				"3;100;Ana;2024-2;ESTUDIANTE;5;5\n"
			evals, stats, issues, err := ParseEvaluations("Evaluacion.csv", table(src), questions)

			Convey("Then they should be skipped with an issue each", func() {
				So(err, ShouldBeNil)
				So(evals, ShouldHaveLength, 1)
				So(evals[0].ID, ShouldEqual, "3@Evaluacion.csv:4")
				So(stats.Skipped, ShouldEqual, 2)
				So(issues, ShouldHaveLength, 2)
				So(issues[0].Line, ShouldEqual, 2)
				So(issues[1].Reason, ShouldContainSubstring, "2024-3")
			})
		})

		Convey("When a row has no person id", func() {
			src := header +
				";100;Ana;2024-1;ESTUDIANTE;5;5\n" +
				"4;100;Ana;2024-1;ESTUDIANTE;4;4\n"
			evals, stats, issues, err := ParseEvaluations("Evaluacion.csv", table(src), questions)

			Convey("Then it should be skipped with an issue", func() {
				So(err, ShouldBeNil)
				So(evals, ShouldHaveLength, 1)
				So(evals[0].ID, ShouldEqual, "4@Evaluacion.csv:3")
				So(stats.Skipped, ShouldEqual, 1)
				So(issues, ShouldHaveLength, 1)
				So(issues[0].Line, ShouldEqual, 2)
				So(issues[0].Skipped, ShouldBeTrue)
				So(issues[0].Reason, ShouldContainSubstring, "person id")
			})
		})

		Convey("When identity columns are missing", func() {
			_, _, _, err := ParseEvaluations("Evaluacion.csv", table("PEGE_ID;DOCUMENTO\n1;2\n"), questions)

			Convey("Then the first missing column should be named", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "NOMBRECOMPLETO")
			})
		})
	})
}

package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okian/teacheval/internal/adapters/ingest"
	"github.com/okian/teacheval/internal/adapters/repository"
	service "github.com/okian/teacheval/internal/app"
	"github.com/okian/teacheval/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	qPlan     = model.Question{Code: "P1", Category: model.Planning, Text: "Presenta el programa del curso"}
	qPersonal = model.Question{Code: "C1", Category: model.PersonalComponent, Text: "Respeta a los estudiantes"}
	qComment  = model.Question{Code: "X1", Category: model.Comments, Text: "Comentarios"}
)

func eval(id, doc, name, period, evaluator string, plan, personal float64) *model.Evaluation {
	e := model.NewEvaluation(id, model.TeacherRef{Document: doc, Name: name}, model.MustPeriod(period), evaluator)
	for _, a := range []struct {
		q model.Question
		v float64
	}{{qPlan, plan}, {qPersonal, personal}, {qComment, 0}} {
		if a.v == 0 {
			e.AddAnswer(a.q, nil)
			continue
		}
		r := model.MustRating(a.v)
		e.AddAnswer(a.q, &r)
	}
	return e
}

func fixture() ([]model.Question, []*model.Evaluation) {
	return []model.Question{qPlan, qPersonal, qComment}, []*model.Evaluation{
		eval("E1", "100", "Ana Ruiz", "2024-1", "ESTUDIANTE", 3, 5),
		eval("E2", "100", "Ana Ruiz", "2024-2", "ESTUDIANTE", 3, 4),
		eval("E3", "100", "Ana Ruiz", "2024-2", "AUTOEVALUACIÓN", 5, 5),
		eval("E4", "200", "Luis Gómez", "2024-2", "ESTUDIANTE", 4, 4),
	}
}

type stubLoader struct {
	res   ingest.Result
	err   error
	calls int
}

func (l *stubLoader) Load(context.Context) (ingest.Result, error) {
	l.calls++
	return l.res, l.err
}

func newService(opts ...service.Option) *service.Service {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	opts = append([]service.Option{service.WithClock(func() time.Time { return fixed }), service.WithWorkerCount(2)}, opts...)
	svc := service.New(opts...)
	q, e := fixture()
	svc.Install(context.Background(), q, e, "memory")
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with a loader", t, func() {
		q, e := fixture()
		loader := &stubLoader{res: ingest.Result{Questions: q, Evaluations: e, Files: []string{"preguntas.csv", "Evaluacion.csv"}}}
		svc := service.New(service.WithLoader(loader), service.WithWorkerCount(1))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When queried before starting", func() {
			_, err := svc.ListTeachers(ctx)

			Convey("Then the catalog should not be loaded", func() {
				So(errors.Is(err, repository.ErrNotLoaded), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When starting", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the catalog should be loaded once", func() {
				So(loader.calls, ShouldEqual, 1)
				info, err := svc.CatalogInfo(ctx)
				So(err, ShouldBeNil)
				So(info.Evaluations, ShouldEqual, 4)
				So(info.Teachers, ShouldEqual, 2)
				So(info.Sources, ShouldResemble, []string{"preguntas.csv", "Evaluacion.csv"})

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["teachers"], ShouldEqual, 2)
			})

			Convey("And reloading should publish a new catalog", func() {
				before, _ := svc.CatalogInfo(ctx)
				after, err := svc.Reload(ctx)
				So(err, ShouldBeNil)
				So(after.ID, ShouldNotEqual, before.ID)
			})

			Convey("And a failed reload should keep the current catalog", func() {
				before, _ := svc.CatalogInfo(ctx)
				loader.err = &ingest.IngestionError{Path: "data", Details: "no evaluation files found"}
				_, err := svc.Reload(ctx)
				So(errors.Is(err, ingest.ErrIngestion), ShouldBeTrue)
				current, _ := svc.CatalogInfo(ctx)
				So(current.ID, ShouldEqual, before.ID)
			})

			Convey("And stopping should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When the initial load fails", func() {
			loader.err = errors.New("disk gone")
			err := svc.Start(ctx)

			Convey("Then start should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "disk gone")
			})
		})
	})

	Convey("Given a service without a loader", t, func() {
		svc := service.New()

		Convey("Then reload should be refused", func() {
			_, err := svc.Reload(context.Background())
			So(errors.Is(err, service.ErrNoLoader), ShouldBeTrue)
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("Given a service with an installed catalog", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When listing teachers, periods and evaluator types", func() {
			teachers, err1 := svc.ListTeachers(ctx)
			periods, err2 := svc.ListPeriods(ctx)
			evaluators, err3 := svc.ListEvaluatorTypes(ctx)

			Convey("Then each list should be sorted with counts", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(len(teachers), ShouldEqual, 2)
				So(teachers[0].Document, ShouldEqual, "100")
				So(teachers[0].TotalEvaluations, ShouldEqual, 3)
				So(periods[0].Period, ShouldEqual, "2024-1")
				So(periods[1].TotalEvaluations, ShouldEqual, 3)
				So(evaluators[0].Type, ShouldEqual, "AUTOEVALUACIÓN")
				So(evaluators[1].TotalEvaluations, ShouldEqual, 3)
			})
		})

		Convey("When computing averages over every period", func() {
			avg, err := svc.TeacherAverages(ctx, "100", "")

			Convey("Then the period should be null and comments ignored", func() {
				So(err, ShouldBeNil)
				So(avg.Period, ShouldBeNil)
				So(avg.Name, ShouldEqual, "Ana Ruiz")
				So(avg.TotalEvaluations, ShouldEqual, 3)
				// evaluation means 4, 3.5 and 5
				So(avg.OverallAverage, ShouldAlmostEqual, 12.5/3, 1e-12)
				So(avg.PerformanceLevel, ShouldEqual, model.LevelOutstanding)
				So(len(avg.PerCategory), ShouldEqual, 2)
				So(avg.PerCategory[0].ShortLabel, ShouldEqual, "Personal")
				So(avg.PerEvaluatorType[0].Type, ShouldEqual, "AUTOEVALUACIÓN")
			})
		})

		Convey("When computing averages for a period", func() {
			avg, err := svc.TeacherAverages(ctx, "100", "2024-2")

			Convey("Then only that period should count", func() {
				So(err, ShouldBeNil)
				So(*avg.Period, ShouldEqual, "2024-2")
				So(avg.TotalEvaluations, ShouldEqual, 2)
				So(avg.OverallAverage, ShouldEqual, 4.25)
			})
		})

		Convey("When the teacher or the period does not match", func() {
			_, errUnknown := svc.TeacherAverages(ctx, "999", "")
			_, errPeriod := svc.TeacherAverages(ctx, "200", "2024-1")
			_, errFormat := svc.TeacherAverages(ctx, "100", "2024-3")

			Convey("Then the errors should tell the cases apart", func() {
				var nf *model.TeacherNotFoundError
				So(errors.As(errUnknown, &nf), ShouldBeTrue)
				So(nf.Period, ShouldBeNil)
				So(errors.As(errPeriod, &nf), ShouldBeTrue)
				So(nf.Period.String(), ShouldEqual, "2024-1")
				So(errors.Is(errFormat, model.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When reading the detail", func() {
			detail, err := svc.TeacherDetail(ctx, "200", "")

			Convey("Then every answer should be listed with null ratings kept", func() {
				So(err, ShouldBeNil)
				So(detail.TotalEvaluations, ShouldEqual, 1)
				So(len(detail.Answers), ShouldEqual, 3)
				So(detail.Answers[0].QuestionCode, ShouldEqual, "P1")
				So(*detail.Answers[0].Rating, ShouldEqual, 4.0)
				So(detail.Answers[2].Rating, ShouldBeNil)
				So(detail.Answers[2].Category, ShouldEqual, model.Comments.Label())
			})
		})

		Convey("When building the improvement plan", func() {
			plan, err := svc.ImprovementPlan(ctx, "100", "")

			Convey("Then only planning should need work", func() {
				So(err, ShouldBeNil)
				So(len(plan.Categories), ShouldEqual, 1)
				cat := plan.Categories[0]
				So(cat.Category, ShouldEqual, model.Planning.Label())
				So(cat.CategoryAverage, ShouldAlmostEqual, 11.0/3, 1e-12)
				So(len(cat.Recommendations), ShouldEqual, 1)
				So(cat.Recommendations[0].QuestionCode, ShouldEqual, "P1")
				So(cat.Recommendations[0].Text, ShouldNotBeEmpty)
			})
		})

		Convey("When comparing evaluators", func() {
			cmp, err := svc.CompareEvaluators(ctx, "100", "2024-2")

			Convey("Then the gap should be self minus student", func() {
				So(err, ShouldBeNil)
				So(*cmp.SelfAverage, ShouldEqual, 5.0)
				So(*cmp.StudentAverage, ShouldEqual, 3.5)
				So(*cmp.Gap, ShouldEqual, 1.5)
				So(cmp.OtherAverage, ShouldBeNil)
			})
		})

		Convey("When describing a category", func() {
			stats, err := svc.CategoryStatistics(ctx, "planeación", "2024-2")
			_, errComment := svc.CategoryStatistics(ctx, model.Comments.Label(), "")
			_, errUnknown := svc.CategoryStatistics(ctx, "nope", "")

			Convey("Then short labels should resolve and comments be refused", func() {
				So(err, ShouldBeNil)
				So(stats.Category, ShouldEqual, model.Planning.Label())
				So(stats.TotalTeachers, ShouldEqual, 2)
				So(stats.Average, ShouldEqual, 4.0)
				So(*stats.Period, ShouldEqual, "2024-2")
				So(errors.Is(errComment, model.ErrValidation), ShouldBeTrue)
				So(errors.Is(errUnknown, model.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestService_Reports(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When rendering one teacher", func() {
			file, err := svc.TeacherReport(ctx, "100", "2024-2")

			Convey("Then a named text report should be produced", func() {
				So(err, ShouldBeNil)
				So(file.Name, ShouldEqual, "reporte_100_2024-2.txt")
				So(string(file.Content), ShouldContainSubstring, "Ana Ruiz")
			})
		})

		Convey("When exporting every teacher", func() {
			file, err := svc.ExportReports(ctx, "")

			Convey("Then the archive should hold one report per teacher", func() {
				So(err, ShouldBeNil)
				So(file.Name, ShouldEqual, "reportes_profesores_todos_20250102_030405.zip")
				zr, err := zip.NewReader(bytes.NewReader(file.Content), int64(len(file.Content)))
				So(err, ShouldBeNil)
				So(len(zr.File), ShouldEqual, 2)
				So(zr.File[0].Name, ShouldEqual, "100_Ana_Ruiz.txt")
				So(zr.File[1].Name, ShouldEqual, "200_Luis_Gómez.txt")
			})
		})

		Convey("When exporting a period only some teachers have", func() {
			file, err := svc.ExportReports(ctx, "2024-1")

			Convey("Then the others should be skipped", func() {
				So(err, ShouldBeNil)
				zr, err := zip.NewReader(bytes.NewReader(file.Content), int64(len(file.Content)))
				So(err, ShouldBeNil)
				So(len(zr.File), ShouldEqual, 1)
				So(strings.HasPrefix(zr.File[0].Name, "100_"), ShouldBeTrue)
			})
		})

		Convey("When exporting a period nobody has", func() {
			_, err := svc.ExportReports(ctx, "1999-1")

			Convey("Then nothing should be found", func() {
				So(errors.Is(err, service.ErrNoReports), ShouldBeTrue)
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given more teachers than report queue slots", t, func() {
		svc := newService(service.WithQueueSize(2), service.WithWorkerCount(1))
		ctx := context.Background()
		q, _ := fixture()
		evals := make([]*model.Evaluation, 0, 50)
		for i := 0; i < 50; i++ {
			doc := fmt.Sprintf("D%03d", i)
			evals = append(evals, eval("E"+doc, doc, "Docente "+doc, "2024-1", "ESTUDIANTE", 4, 5))
		}
		svc.Install(ctx, q, evals, "memory")
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When exporting every teacher", func() {
			file, err := svc.ExportReports(ctx, "")

			Convey("Then every report should wait for a slot and be archived", func() {
				So(err, ShouldBeNil)
				zr, err := zip.NewReader(bytes.NewReader(file.Content), int64(len(file.Content)))
				So(err, ShouldBeNil)
				So(len(zr.File), ShouldEqual, 50)
				So(zr.File[0].Name, ShouldEqual, "D000_Docente_D000.txt")
				So(zr.File[49].Name, ShouldEqual, "D049_Docente_D049.txt")
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := newService()

		Convey("Then exporting should be refused", func() {
			_, err := svc.ExportReports(context.Background(), "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/teacheval/internal/adapters/http/api"
	reportqueue "github.com/okian/teacheval/internal/adapters/mq/queue"
	"github.com/okian/teacheval/internal/adapters/repository"
	"github.com/okian/teacheval/internal/domain/model"
	"github.com/okian/teacheval/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies answers every query for teacher "100" and reports
// anything else as not found.
type mockDependencies struct {
	err       error
	reloadErr error
	infoErr   error

	lastPeriod   string
	lastCategory string
}

func (m *mockDependencies) find(document string) error {
	if m.err != nil {
		return m.err
	}
	if document != "100" {
		return &model.TeacherNotFoundError{Document: document}
	}
	return nil
}

func (m *mockDependencies) ListTeachers(context.Context) ([]types.TeacherListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []types.TeacherListItem{{Document: "100", Name: "Ana Ruiz", TotalEvaluations: 2}}, nil
}

func (m *mockDependencies) TeacherAverages(_ context.Context, document, period string) (types.TeacherAverages, error) {
	m.lastPeriod = period
	if err := m.find(document); err != nil {
		return types.TeacherAverages{}, err
	}
	return types.TeacherAverages{Document: document, Name: "Ana Ruiz", OverallAverage: 4.25, TotalEvaluations: 2}, nil
}

func (m *mockDependencies) TeacherDetail(_ context.Context, document, _ string) (types.TeacherDetail, error) {
	if err := m.find(document); err != nil {
		return types.TeacherDetail{}, err
	}
	return types.TeacherDetail{Document: document, Answers: []types.Answer{}}, nil
}

func (m *mockDependencies) ImprovementPlan(_ context.Context, document, _ string) (types.ImprovementPlan, error) {
	if err := m.find(document); err != nil {
		return types.ImprovementPlan{}, err
	}
	return types.ImprovementPlan{Document: document, Categories: []types.CategoryImprovement{}}, nil
}

func (m *mockDependencies) CompareEvaluators(_ context.Context, document, _ string) (types.EvaluatorComparison, error) {
	if err := m.find(document); err != nil {
		return types.EvaluatorComparison{}, err
	}
	return types.EvaluatorComparison{Document: document, SelfCount: 1, StudentCount: 3}, nil
}

func (m *mockDependencies) ListPeriods(context.Context) ([]types.PeriodListItem, error) {
	return []types.PeriodListItem{{Period: "2024-1", TotalEvaluations: 3}}, m.err
}

func (m *mockDependencies) ListEvaluatorTypes(context.Context) ([]types.EvaluatorTypeListItem, error) {
	return []types.EvaluatorTypeListItem{{Type: "ESTUDIANTE", TotalEvaluations: 3}}, m.err
}

func (m *mockDependencies) CategoryStatistics(_ context.Context, category, period string) (types.CategoryStatistics, error) {
	m.lastCategory, m.lastPeriod = category, period
	if category == "" {
		return types.CategoryStatistics{}, &model.UnknownCategoryError{Label: category}
	}
	return types.CategoryStatistics{Category: category, TotalTeachers: 2}, m.err
}

func (m *mockDependencies) TeacherReport(_ context.Context, document, period string) (types.ReportFile, error) {
	if err := m.find(document); err != nil {
		return types.ReportFile{}, err
	}
	return types.ReportFile{
		Name:        fmt.Sprintf("reporte_%s_%s.txt", document, period),
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte("TEACHER EVALUATION REPORT"),
	}, nil
}

func (m *mockDependencies) ExportReports(context.Context, string) (types.ReportFile, error) {
	if m.err != nil {
		return types.ReportFile{}, m.err
	}
	return types.ReportFile{Name: "reportes_profesores_todos.zip", ContentType: "application/zip", Content: []byte("PK")}, nil
}

func (m *mockDependencies) CatalogInfo(context.Context) (types.CatalogInfo, error) {
	if m.infoErr != nil {
		return types.CatalogInfo{}, m.infoErr
	}
	return types.CatalogInfo{ID: "cat-1", Evaluations: 3, Teachers: 1}, nil
}

func (m *mockDependencies) Reload(context.Context) (types.CatalogInfo, error) {
	if m.reloadErr != nil {
		return types.CatalogInfo{}, m.reloadErr
	}
	return types.CatalogInfo{ID: "cat-2"}, nil
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "workerCount": 2}
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then the service description should be served at the root", func() {
			w := serve(mux, http.MethodGet, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"api":"/api/v1/"`)
		})

		Convey("And health should report the catalog", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"id":"cat-1"`)
		})

		Convey("And metrics should be exposed", func() {
			serve(mux, http.MethodGet, "/healthz")
			w := serve(mux, http.MethodGet, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "teacheval_catalog_http_requests_total")
		})

		Convey("And stats should be served", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"workerCount":2`)
		})

		Convey("And unknown routes should answer a JSON 404", func() {
			w := serve(mux, http.MethodGet, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("And a wrong method should not reach the handler", func() {
			w := serve(mux, http.MethodDelete, "/api/v1/teachers")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then registering should panic", func() {
			So(func() { api.NewServer(&mockDependencies{}).Register(context.Background(), nil) }, ShouldPanic)
		})
	})

	Convey("Given a custom prefix", t, func() {
		mux := newMux(&mockDependencies{}, api.WithPrefix("reports/"))

		Convey("Then routes should be mounted under it", func() {
			So(serve(mux, http.MethodGet, "/reports/teachers").Code, ShouldEqual, http.StatusOK)
			So(serve(mux, http.MethodGet, "/api/v1/teachers").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTeachersHandler(t *testing.T) {
	Convey("Given the teacher routes", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When listing teachers", func() {
			w := serve(mux, http.MethodGet, "/api/v1/teachers")

			Convey("Then the list should be returned as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var out []types.TeacherListItem
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out, ShouldHaveLength, 1)
				So(out[0].Name, ShouldEqual, "Ana Ruiz")
			})
		})

		Convey("When asking for averages with a period", func() {
			w := serve(mux, http.MethodGet, "/api/v1/teachers/100/averages?period=2024-1")

			Convey("Then the period should reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPeriod, ShouldEqual, "2024-1")
				var out types.TeacherAverages
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.OverallAverage, ShouldEqual, 4.25)
			})
		})

		Convey("When the teacher is unknown", func() {
			for _, path := range []string{"averages", "detail", "improvements", "comparison", "report"} {
				w := serve(mux, http.MethodGet, "/api/v1/teachers/999/"+path)
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "not_found")
				So(body["message"], ShouldContainSubstring, "teacher 999")
				So(body["message"], ShouldNotContainSubstring, "api.")
			}
		})

		Convey("When the period is malformed", func() {
			deps.err = &model.InvalidPeriodError{Value: "2024-3"}
			w := serve(mux, http.MethodGet, "/api/v1/teachers/100/detail?period=2024-3")

			Convey("Then validation should be reported as not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["message"], ShouldContainSubstring, "2024-3")
			})
		})

		Convey("When no catalog is loaded", func() {
			deps.err = repository.ErrNotLoaded
			w := serve(mux, http.MethodGet, "/api/v1/teachers")

			Convey("Then the service should be unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decodeError(w)["code"], ShouldEqual, "catalog_not_loaded")
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.err = errors.New("boom")
			w := serve(mux, http.MethodGet, "/api/v1/teachers/100/comparison")

			Convey("Then it should be an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
			})
		})
	})
}

func TestReportsHandler(t *testing.T) {
	Convey("Given the report routes", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When downloading a teacher report", func() {
			w := serve(mux, http.MethodGet, "/api/v1/teachers/100/report?period=2024-1")

			Convey("Then it should be an attachment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/plain; charset=utf-8")
				So(w.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename=reporte_100_2024-1.txt`)
				So(w.Body.String(), ShouldEqual, "TEACHER EVALUATION REPORT")
			})
		})

		Convey("When exporting every report", func() {
			w := serve(mux, http.MethodGet, "/api/v1/teachers/export")

			Convey("Then the archive should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/zip")
				So(w.Header().Get("Content-Length"), ShouldEqual, "2")
			})
		})

		Convey("When the report queue is full", func() {
			deps.err = fmt.Errorf("enqueue: %w", reportqueue.ErrQueueFull)
			w := serve(mux, http.MethodGet, "/api/v1/teachers/export")

			Convey("Then clients should be told to back off", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
			})
		})
	})
}

func TestCatalogHandler(t *testing.T) {
	Convey("Given the catalog statistics routes", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then periods and evaluator types should be listed", func() {
			So(serve(mux, http.MethodGet, "/api/v1/stats/periods").Body.String(), ShouldContainSubstring, `"period":"2024-1"`)
			So(serve(mux, http.MethodGet, "/api/v1/stats/evaluator-types").Body.String(), ShouldContainSubstring, `"type":"ESTUDIANTE"`)
		})

		Convey("When describing a category", func() {
			w := serve(mux, http.MethodGet, "/api/v1/stats/categories?category=Planning&period=2024-2")

			Convey("Then both parameters should reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastCategory, ShouldEqual, "Planning")
				So(deps.lastPeriod, ShouldEqual, "2024-2")
			})
		})

		Convey("When the category is missing", func() {
			w := serve(mux, http.MethodGet, "/api/v1/stats/categories")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAdminHandler(t *testing.T) {
	Convey("Given the reload route", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the reload succeeds", func() {
			w := serve(mux, http.MethodPost, "/api/v1/admin/reload")

			Convey("Then the new catalog should be described", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"id":"cat-2"`)
			})
		})

		Convey("When the reload fails", func() {
			deps.reloadErr = errors.New("no evaluation files found")
			w := serve(mux, http.MethodPost, "/api/v1/admin/reload")

			Convey("Then the failure should be reported", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "reload_failed")
				So(body["message"], ShouldEqual, "catalog reload failed: no evaluation files found")
			})
		})

		Convey("When reload is requested with GET", func() {
			w := serve(mux, http.MethodGet, "/api/v1/admin/reload")

			Convey("Then it should not reload", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHealthHandler_NotLoaded(t *testing.T) {
	Convey("Given no catalog yet", t, func() {
		mux := newMux(&mockDependencies{infoErr: repository.ErrNotLoaded})

		Convey("Then health should report loading", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, `"status":"loading"`)
		})
	})
}

func TestCORSMiddleware(t *testing.T) {
	Convey("Given a CORS-wrapped mux", t, func() {
		h := api.CORSMiddleware([]string{"http://localhost:3000/"}, newMux(&mockDependencies{}))

		Convey("When an allowed origin sends a preflight", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/teachers", http.NoBody)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", "GET")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be answered without reaching the routes", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")
			})
		})

		Convey("When another origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/teachers", http.NoBody)
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then no CORS header should be set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a wildcard origin", t, func() {
		h := api.CORSMiddleware([]string{"*"}, newMux(&mockDependencies{}))
		req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
		req.Header.Set("Origin", "https://dashboard.example")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		Convey("Then any origin should be echoed", func() {
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://dashboard.example")
			So(strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition"), ShouldBeTrue)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := &model.TeacherNotFoundError{Document: "7"}

		Convey("Then Wrap should keep the cause reachable", func() {
			err := api.Wrap("api.op", cause)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: teacher 7 has no evaluations")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})

		Convey("And WrapKind should match both kind and cause", func() {
			err := api.WrapKind("api.reload", api.ErrReload, cause)
			So(errors.Is(err, api.ErrReload), ShouldBeTrue)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("And NewKind should carry only the kind", func() {
			err := api.NewKind("api.route", api.ErrRouteNotFound)
			So(errors.Is(err, api.ErrRouteNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.route: route not found")
		})
	})
}

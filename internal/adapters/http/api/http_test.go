package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/epp/internal/adapters/http/api"
	"github.com/okian/epp/internal/adapters/repository"
	service "github.com/okian/epp/internal/app"
	"github.com/okian/epp/internal/domain/model"
	"github.com/okian/epp/internal/domain/scoring"
	"github.com/okian/epp/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const exportCSV = "Groupe;Nom_évalué;Prenom_évalué;Courriel_évalué;Note_aspect;Note_modif;Nom_évaluateur;Prenom_évaluateur\n" +
	"T1;a;a;a@etsmtl.ca;5;0;b;b\n" +
	"T1;a;a;a@etsmtl.ca;5;0;b;b\n" +
	"T1;b;b;b@etsmtl.ca;3;0;a;a\n" +
	"T1;b;b;b@etsmtl.ca;3;0;a;a\n" +
	"T2;c;c;c@etsmtl.ca;4;;d;d\n"

func newMux(opts ...api.Option) *http.ServeMux {
	svc := service.New(service.WithLogger(logger.Nop()))
	mux := http.NewServeMux()
	api.NewServer(svc, opts...).Register(mux)
	return mux
}

func do(mux *http.ServeMux, method, target string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestReportsAPI(t *testing.T) {
	Convey("Given a running API", t, func() {
		mux := newMux()

		Convey("When an export is posted", func() {
			rec := do(mux, http.MethodPost, "/v1/reports", strings.NewReader(exportCSV))

			Convey("Then a report is created", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				body := decode(rec)
				So(body["n_evaluated"], ShouldEqual, 3.0)
				So(body["teams"], ShouldEqual, 2.0)
				So(body["scale"], ShouldEqual, "1..5")
				So(body["id"], ShouldNotBeEmpty)
			})

			Convey("Then its JSON view can be read back", func() {
				id := decode(rec)["id"].(string)
				got := do(mux, http.MethodGet, "/v1/reports/"+id, nil)

				So(got.Code, ShouldEqual, http.StatusOK)
				body := decode(got)
				So(body["id"], ShouldEqual, id)
				teams := body["teams"].([]any)
				So(len(teams), ShouldEqual, 2)
				So(teams[0].(map[string]any)["average"], ShouldEqual, 80.0)
			})

			Convey("Then its workbook can be downloaded", func() {
				id := decode(rec)["id"].(string)
				got := do(mux, http.MethodGet, "/v1/reports/"+id+".xlsx", nil)

				So(got.Code, ShouldEqual, http.StatusOK)
				So(got.Header().Get("Content-Type"), ShouldStartWith, "application/vnd.openxmlformats")
				f, err := excelize.OpenReader(bytes.NewReader(got.Body.Bytes()))
				So(err, ShouldBeNil)
				defer f.Close()
				rows, err := f.GetRows(f.GetSheetList()[0])
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 4)
			})

			Convey("Then the health check counts it", func() {
				got := do(mux, http.MethodGet, "/healthz", nil)
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decode(got), ShouldResemble, map[string]any{"status": "ok", "reports": float64(1)})
			})
		})

		Convey("When a preset is named", func() {
			rec := do(mux, http.MethodPost, "/v1/reports?preset=ele795", strings.NewReader(exportCSV))

			Convey("Then it sets the scale", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(decode(rec)["scale"], ShouldEqual, "0..3")
			})
		})

		Convey("When the scale is out of range", func() {
			rec := do(mux, http.MethodPost, "/v1/reports?max=9", strings.NewReader(exportCSV))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "invalid_scale")
			})
		})

		Convey("When the export is empty", func() {
			rec := do(mux, http.MethodPost, "/v1/reports", strings.NewReader(""))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "empty_input")
			})
		})

		Convey("When a rating is not a number", func() {
			body := strings.Replace(exportCSV, ";5;0;b;b", ";x;0;b;b", 1)
			rec := do(mux, http.MethodPost, "/v1/reports", strings.NewReader(body))

			Convey("Then the record is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "malformed_record")
			})
		})

		Convey("When every note of a team is zero", func() {
			body := strings.ReplaceAll(exportCSV, ";5;0;", ";1;0;")
			body = strings.ReplaceAll(body, ";3;0;", ";1;0;")
			rec := do(mux, http.MethodPost, "/v1/reports?preset=ELE795", strings.NewReader(body))

			Convey("Then the export cannot be scored", func() {
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decode(rec)["code"], ShouldEqual, "division_by_zero")
			})
		})

		Convey("When a report is unknown", func() {
			rec := do(mux, http.MethodGet, "/v1/reports/missing", nil)

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the wrong method is used", func() {
			rec := do(mux, http.MethodGet, "/v1/reports", nil)

			Convey("Then the route is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When metrics are scraped", func() {
			do(mux, http.MethodGet, "/healthz", nil)
			rec := do(mux, http.MethodGet, "/metrics", nil)

			Convey("Then HTTP requests are exported", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "epp_http_requests_total")
			})
		})
	})

	Convey("Given an API with a tiny upload limit", t, func() {
		mux := newMux(api.WithMaxUploadBytes(16))
		rec := do(mux, http.MethodPost, "/v1/reports", strings.NewReader(exportCSV))

		Convey("Then large exports are refused", func() {
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

type failingDeps struct{}

func (failingDeps) Scale() scoring.Scale { return scoring.DefaultScale }
func (failingDeps) Submit(context.Context, io.Reader, scoring.Scale) (repository.Report, error) {
	return repository.Report{}, errors.New("disk on fire")
}
func (failingDeps) Report(context.Context, string) (repository.Report, error) {
	return repository.Report{}, errors.New("disk on fire")
}
func (failingDeps) Reports(context.Context) int { return 0 }
func (failingDeps) WriteXLSX(context.Context, io.Writer, *model.Cohort) error {
	return errors.New("disk on fire")
}

func TestReportsAPIFailures(t *testing.T) {
	Convey("Given dependencies that fail", t, func() {
		mux := http.NewServeMux()
		api.NewServer(failingDeps{}, api.WithLogger(logger.Nop())).Register(mux)

		Convey("Then unexpected errors map to 500", func() {
			So(do(mux, http.MethodPost, "/v1/reports", strings.NewReader(exportCSV)).Code, ShouldEqual, http.StatusInternalServerError)
			So(do(mux, http.MethodGet, "/v1/reports/x", nil).Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

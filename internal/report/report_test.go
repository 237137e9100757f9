package report_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"

	"github.com/okian/attrition/internal/adapters/http/api"
	repository "github.com/okian/attrition/internal/adapters/repository"
	service "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/report"
	"github.com/okian/attrition/pkg/logger"
)

const dataset = "Department,JobRole,Attrition,RevenueLoss,YearsAtCompany\n" +
	"Sales,Sales Executive,Yes,1200.50,2\n" +
	"Sales,Sales Executive,No,0,6\n" +
	"Sales,Manager,No,0,10\n" +
	"Research & Development,Research Scientist,Yes,800,1\n"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fileSource() *report.FileSource {
	src, err := report.ReadFrom(context.Background(), strings.NewReader(dataset), "test", ',')
	So(err, ShouldBeNil)
	return src
}

func TestFileSource(t *testing.T) {
	Convey("Given a dataset read from a reader", t, func() {
		src := fileSource()
		ctx := context.Background()

		Convey("Then departments are sorted", func() {
			depts, err := src.Departments(ctx)
			So(err, ShouldBeNil)
			So(depts, ShouldResemble, []string{"Research & Development", "Sales"})
		})

		Convey("Then views are derived locally", func() {
			v, err := src.Views(ctx, "Sales")
			So(err, ShouldBeNil)
			So(v.AttritionByRole, ShouldHaveLength, 3)
			So(v.RevenueByDepartment, ShouldHaveLength, 2)
		})
	})

	Convey("Given a missing dataset file", t, func() {
		_, err := report.OpenFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), ',')

		Convey("Then the load error is passed through", func() {
			So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a dataset file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "data.csv")
		So(os.WriteFile(path, []byte(dataset), 0o600), ShouldBeNil)
		src, err := report.OpenFile(context.Background(), path, ',')
		So(err, ShouldBeNil)

		Convey("Then it behaves like the reader source", func() {
			depts, err := src.Departments(context.Background())
			So(err, ShouldBeNil)
			So(depts, ShouldHaveLength, 2)
		})
	})
}

func TestRenderer(t *testing.T) {
	Convey("Given views for Sales", t, func() {
		v, err := fileSource().Views(context.Background(), "Sales")
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(report.NewRenderer(language.English).Views(&buf, v), ShouldBeNil)
		out := buf.String()

		Convey("Then every chart is printed as a titled table", func() {
			So(out, ShouldContainSubstring, "HR Attrition Dashboard: Sales")
			So(out, ShouldContainSubstring, "Attrition by Job Role")
			So(out, ShouldContainSubstring, "Revenue Loss by Department")
			So(out, ShouldContainSubstring, "Avg Tenure (YearsAtCompany) by Role x Dept")
		})

		Convey("Then numbers are grouped and the selection is marked", func() {
			So(out, ShouldContainSubstring, "1,200.50")
			So(out, ShouldContainSubstring, "*")
			So(out, ShouldContainSubstring, "10.00")
		})
	})

	Convey("Given views for all departments", t, func() {
		v, err := fileSource().Views(context.Background(), "")
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(report.NewRenderer(language.Und).Views(&buf, v), ShouldBeNil)

		Convey("Then absent heatmap cells print as a dash", func() {
			So(buf.String(), ShouldContainSubstring, "All Departments")
			So(buf.String(), ShouldContainSubstring, " - ")
		})
	})

	Convey("Given an unknown department", t, func() {
		v, err := fileSource().Views(context.Background(), "Legal")
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(report.NewRenderer(language.English).Views(&buf, v), ShouldBeNil)

		Convey("Then the miss is stated", func() {
			So(buf.String(), ShouldContainSubstring, "No records match the selected department.")
		})
	})

	Convey("Given a department list", t, func() {
		var buf bytes.Buffer
		report.NewRenderer(language.English).Departments(&buf, []string{"HR", "Sales"})

		Convey("Then each is printed", func() {
			So(buf.String(), ShouldContainSubstring, "HR")
			So(buf.String(), ShouldContainSubstring, "Sales")
		})
	})
}

func TestHTTPSource(t *testing.T) {
	Convey("Given a running dashboard server", t, func() {
		store, err := repository.Parse(context.Background(), strings.NewReader(dataset))
		So(err, ShouldBeNil)
		svc := service.New(service.WithStore(store))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(api.Stack(mux, nil))
		defer srv.Close()

		src := report.NewHTTPSource(srv.URL+"/", 5*time.Second)
		local := report.NewFileSource(store)

		Convey("Then remote views equal locally derived ones", func() {
			for _, dept := range []string{"", "Sales", "Legal"} {
				remote, err := src.Views(context.Background(), dept)
				So(err, ShouldBeNil)
				want, _ := local.Views(context.Background(), dept)
				So(remote.Department, ShouldEqual, want.Department)
				So(remote.FilterMiss, ShouldEqual, want.FilterMiss)
				So(remote.AttritionByRole, ShouldResemble, want.AttritionByRole)
				So(remote.TenureHeatmap.JobRoles, ShouldResemble, want.TenureHeatmap.JobRoles)
				So(remote.RevenueByDepartment, ShouldHaveLength, len(want.RevenueByDepartment))
				for i, r := range remote.RevenueByDepartment {
					So(r.RevenueLoss.Equal(want.RevenueByDepartment[i].RevenueLoss), ShouldBeTrue)
				}
			}
		})

		Convey("Then departments are fetched", func() {
			depts, err := src.Departments(context.Background())
			So(err, ShouldBeNil)
			So(depts, ShouldResemble, []string{"Research & Development", "Sales"})
		})
	})

	Convey("Given a server that is not ready", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"code":"not_ready","message":"dataset not loaded"}`))
		}))
		defer srv.Close()

		_, err := report.NewHTTPSource(srv.URL, time.Second).Views(context.Background(), "")

		Convey("Then the server message is surfaced", func() {
			So(errors.Is(err, report.ErrServer), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "not_ready")
		})
	})

	Convey("Given a server returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := report.NewHTTPSource(srv.URL, time.Second).Departments(context.Background())

		Convey("Then the response is rejected", func() {
			So(errors.Is(err, report.ErrResponse), ShouldBeTrue)
		})
	})
}

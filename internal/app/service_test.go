package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/okian/attrition/internal/adapters/repository"
	service "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/domain/model"
	"github.com/okian/attrition/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fixtureStore() *repository.MemoryStore {
	return repository.NewMemoryStore([]model.Employee{
		{Department: "Sales", JobRole: "Manager", Attrition: "Yes", RevenueLoss: decimal.NewFromInt(100), YearsAtCompany: 2},
		{Department: "Sales", JobRole: "Manager", Attrition: "No", RevenueLoss: decimal.NewFromInt(200), YearsAtCompany: 4},
		{Department: "HR", JobRole: "Recruiter", Attrition: "No", RevenueLoss: decimal.NewFromInt(10), YearsAtCompany: 7},
	}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestService_StartWithFile(t *testing.T) {
	Convey("Given a dataset file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "hr.tsv")
		content := "Department\tJobRole\tAttrition\tRevenueLoss\tYearsAtCompany\nSales\tManager\tYes\t100\t3\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		svc := service.New(service.WithDataPath(path), service.WithDelimiter('\t'))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then the dataset is available", func() {
				So(err, ShouldBeNil)
				depts, err := svc.Departments(context.Background())
				So(err, ShouldBeNil)
				So(depts, ShouldResemble, []string{"Sales"})
				So(svc.DatasetID(), ShouldNotBeEmpty)
			})

			Convey("And starting again is a no-op", func() {
				id := svc.DatasetID()
				So(svc.Start(context.Background()), ShouldBeNil)
				So(svc.DatasetID(), ShouldEqual, id)
			})
		})
	})

	Convey("Given a missing dataset file", t, func() {
		svc := service.New(service.WithDataPath(filepath.Join(t.TempDir(), "missing.csv")))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then the load error aborts startup", func() {
				So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Views(t *testing.T) {
	Convey("Given a started service over a fixture store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(fixtureStore()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When asking for all departments", func() {
			v, err := svc.Views(ctx, "")

			Convey("Then every record is aggregated", func() {
				So(err, ShouldBeNil)
				So(v.AttritionByRole, ShouldHaveLength, 3)
				So(v.RevenueByDepartment, ShouldHaveLength, 2)
				So(v.FilterMiss, ShouldBeFalse)
			})
		})

		Convey("When filtering on Sales", func() {
			v, err := svc.Views(ctx, "Sales")

			Convey("Then only Sales feeds the filtered views", func() {
				So(err, ShouldBeNil)
				So(v.AttritionByRole, ShouldHaveLength, 2)
				So(v.TenureHeatmap.Departments, ShouldResemble, []string{"Sales"})
				So(v.RevenueByDepartment[1].Highlighted, ShouldBeTrue)
			})
		})

		Convey("When filtering on an unknown department", func() {
			v, err := svc.Views(ctx, "Legal")

			Convey("Then the miss is not an error", func() {
				So(err, ShouldBeNil)
				So(v.FilterMiss, ShouldBeTrue)
				So(v.AttritionByRole, ShouldBeEmpty)
			})
		})

		Convey("When many callers ask concurrently", func() {
			var wg sync.WaitGroup
			results := make([]int, 32)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					v, err := svc.Views(ctx, "Sales")
					if err == nil {
						results[i] = len(v.AttritionByRole)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then each gets the same result", func() {
				for _, n := range results {
					So(n, ShouldEqual, 2)
				}
			})
		})

		Convey("When the caller context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Views(cctx, "")

			Convey("Then either the result or the cancellation is returned", func() {
				if err != nil {
					So(errors.Is(err, context.Canceled), ShouldBeTrue)
				}
			})
		})

		Convey("Then stats describe the dataset", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["rows"], ShouldEqual, 3)
			So(stats["departments"], ShouldEqual, 2)
			So(stats["jobRoles"], ShouldEqual, 2)
			So(stats["loadedAt"], ShouldEqual, "2024-01-02T03:04:05Z")
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then reads fail with ErrNotStarted", func() {
			_, err := svc.Views(context.Background(), "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Departments(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.DatasetID(), ShouldBeEmpty)
		})

		Convey("And Stop is harmless", func() {
			So(func() { svc.Stop(); svc.Stop() }, ShouldNotPanic)
		})
	})
}

package api_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/pkg/logger"
)

func TestStackAllowedHosts(t *testing.T) {
	Convey("Given a stack restricted to one host and a JSON log buffer", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithFormat(logger.FormatJSON), logger.WithWriter(&buf)), ShouldBeNil)
		Reset(func() { _ = logger.Init() })

		mux := http.NewServeMux()
		api.NewServer(&mockDependencies{records: fixture(), id: "ds-1"}, &mockStatsProvider{}).
			Register(context.Background(), mux)
		h := api.Stack(mux, nil, "dashboard.local")

		Convey("When a request arrives for another host", func() {
			w := get(h, "/api/departments", "X-Request-Id", "req-42")

			Convey("Then it is rejected once with a JSON 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_host"`)
				So(bytes.Count(w.Body.Bytes(), []byte(`"code"`)), ShouldEqual, 1)
			})

			Convey("And the warning carries the request id", func() {
				So(buf.String(), ShouldContainSubstring, "secure headers blocked request")
				So(buf.String(), ShouldContainSubstring, `"requestId":"req-42"`)
				So(buf.String(), ShouldContainSubstring, `"host":"example.com"`)
			})
		})

		Convey("When a request arrives for the allowed host", func() {
			w := get(h, "http://dashboard.local/api/departments")

			Convey("Then it is served without a warning", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(buf.String(), ShouldNotContainSubstring, "secure headers blocked request")
			})
		})
	})
}

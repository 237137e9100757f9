package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/attrition/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8050")
				convey.So(cfg.DataPath, convey.ShouldEqual, "attrition_dashboard_data.csv")
				convey.So(cfg.Delimiter, convey.ShouldEqual, ",")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ATTRITION_ADDR", ":9090")
			_ = os.Setenv("ATTRITION_DATA_PATH", "/data/hr.csv")
			_ = os.Setenv("ATTRITION_RATE_LIMIT_PER_MINUTE", "30")
			_ = os.Setenv("ATTRITION_READ_TIMEOUT", "3s")
			_ = os.Setenv("ATTRITION_ALLOWED_HOSTS", "dash.example.com,localhost:8050")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataPath, convey.ShouldEqual, "/data/hr.csv")
				convey.So(cfg.RateLimitPerMinute, convey.ShouldEqual, 30)
				convey.So(cfg.ReadTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.AllowedHosts, convey.ShouldResemble, []string{"dash.example.com", "localhost:8050"})
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
# dashboard settings
addr: ":7000"
data_path: "hr.tsv"
delimiter: "\t"
log_format: json
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.DataPath, convey.ShouldEqual, "hr.tsv")
				convey.So(cfg.Comma(), convey.ShouldEqual, '\t')
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.RateLimitPerMinute, convey.ShouldEqual, 600)
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(`
addr: ":7000"
data_path: "from-file.csv"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)
			_ = os.Setenv("ATTRITION_ADDR", ":7100")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7100")
				convey.So(cfg.DataPath, convey.ShouldEqual, "from-file.csv")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ATTRITION_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with an invalid log level", func() {
			_ = os.Setenv("ATTRITION_LOG_LEVEL", "loud")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "loglevel")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative rate limit", func() {
			_ = os.Setenv("ATTRITION_RATE_LIMIT_PER_MINUTE", "-1")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ATTRITION_RATE_LIMIT_PER_MINUTE", "many")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"ATTRITION_CONFIG",
		"ATTRITION_ADDR",
		"ATTRITION_DATA_PATH",
		"ATTRITION_DELIMITER",
		"ATTRITION_LOG_LEVEL",
		"ATTRITION_LOG_FORMAT",
		"ATTRITION_RATE_LIMIT_PER_MINUTE",
		"ATTRITION_READ_TIMEOUT",
		"ATTRITION_WRITE_TIMEOUT",
		"ATTRITION_ALLOWED_HOSTS",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "attrition-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

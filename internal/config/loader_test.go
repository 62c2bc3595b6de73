package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/motion/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MOTION_CONFIG",
	"MOTION_LOG_LEVEL",
	"MOTION_ADDR",
	"MOTION_DATA_FILE",
	"MOTION_DB_PATH",
	"MOTION_WORKER_COUNT",
	"MOTION_QUEUE_SIZE",
	"MOTION_DEDUPE_SIZE",
	"MOTION_STRICT_BINS",
	"MOTION_WATCH_DATA_FILE",
	"MOTION_MAX_BODY_BYTES",
	"MOTION_RESULT_RETENTION",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motion.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should match New", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(*cfg, convey.ShouldResemble, *config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MOTION_ADDR", ":8080")
			_ = os.Setenv("MOTION_QUEUE_SIZE", "500")
			_ = os.Setenv("MOTION_WORKER_COUNT", "3")
			_ = os.Setenv("MOTION_STRICT_BINS", "false")
			_ = os.Setenv("MOTION_DATA_FILE", "/data/actions.txt")
			_ = os.Setenv("MOTION_MAX_BODY_BYTES", "1024")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.StrictBins, convey.ShouldBeFalse)
				convey.So(cfg.DataFile, convey.ShouldEqual, "/data/actions.txt")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
log_level: debug
data_file: ./actions.txt
watch_data_file: true
db_path: ./reference.db
dedupe_size: 10
result_retention: 20
`)
			_ = os.Setenv("MOTION_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DataFile, convey.ShouldEqual, "./actions.txt")
				convey.So(cfg.WatchDataFile, convey.ShouldBeTrue)
				convey.So(cfg.DBPath, convey.ShouldEqual, "./reference.db")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 10)
				convey.So(cfg.ResultRetention, convey.ShouldEqual, 20)
			})

			convey.Convey("And env vars take precedence over the file", func() {
				_ = os.Setenv("MOTION_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("MOTION_CONFIG", "/non/existent/motion.yaml")

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When addr is set to empty", func() {
			_ = os.Setenv("MOTION_ADDR", "")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric setting is not a number", func() {
			_ = os.Setenv("MOTION_QUEUE_SIZE", "plenty")

			_, err := config.Load(ctx)

			convey.Convey("Then unmarshalling fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML is malformed", func() {
			_ = os.Setenv("MOTION_CONFIG", writeConfigFile(t, "addr: [unterminated"))

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

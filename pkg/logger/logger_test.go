package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		SetLevel(slog.LevelInfo)
		defer func() { So(Init(), ShouldBeNil) }()

		ctx := context.Background()

		Convey("When an info message is logged with fields", func() {
			Get().Info(ctx, "library loaded", String("file", "data.txt"), Int("lifts", 3), Bool("strict", true))

			Convey("Then the message and fields are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "library loaded")
				So(out, ShouldContainSubstring, "file=data.txt")
				So(out, ShouldContainSubstring, "lifts=3")
				So(out, ShouldContainSubstring, "strict=true")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When a named logger is used", func() {
			Named("ingest").Warn(ctx, "skipping record")

			Convey("Then the name is attached", func() {
				So(buf.String(), ShouldContainSubstring, "logger=ingest")
			})
		})

		Convey("When debug is below the configured level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")

			Convey("Then debug messages are written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		defer SetLevel(slog.LevelInfo)

		for _, name := range []string{"debug", "info", "", "warn", "warning", "error", " Info "} {
			So(SetLevelString(name), ShouldBeNil)
		}

		Convey("Then an unknown name is rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestInitWithWriterNil(t *testing.T) {
	Convey("Given a nil writer", t, func() {
		Convey("Then InitWithWriter fails", func() {
			So(InitWithWriter(nil), ShouldNotBeNil)
		})
	})
}

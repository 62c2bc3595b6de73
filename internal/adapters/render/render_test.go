package render_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/okian/motion/internal/adapters/render"
	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFormatFloat(t *testing.T) {
	Convey("Given values of different magnitudes", t, func() {
		cases := map[float64]string{
			1:          "1",
			1.5:        "1.5",
			-0.25:      "-0.25",
			100000:     "100000",
			1000000:    "1e+06",
			0.0001:     "0.0001",
			0.00001:    "1e-05",
			3.14159265: "3.14159",
		}
		for v, want := range cases {
			So(render.FormatFloat(v), ShouldEqual, want)
		}
	})
}

func TestWriteAction(t *testing.T) {
	Convey("Given an action", t, func() {
		action := model.NewAction([]model.DataPoint{
			{Velocity: 1, Position: 2.5, Effort: -3},
			{Velocity: 1e6, Position: 0, Effort: 0.125},
		})

		Convey("When it is written with a label", func() {
			var buf bytes.Buffer
			err := render.WriteAction(&buf, action, "lift")

			Convey("Then each sample ends with a space before the label", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "1 2.5 -3 1e+06 0 0.125 lift\n")
			})
		})

		Convey("When the action is empty", func() {
			var buf bytes.Buffer
			err := render.WriteAction(&buf, model.NewAction(nil), "sweep")

			Convey("Then only the label is written", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "sweep\n")
			})
		})

		Convey("When the writer fails", func() {
			err := render.WriteAction(failingWriter{}, action, "lift")

			Convey("Then the error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestWriteLibrary(t *testing.T) {
	Convey("Given a library with sweeps added before lifts", t, func() {
		lib := library.New()
		lib.Add(model.NewAction([]model.DataPoint{{Velocity: 9, Position: 9, Effort: 9}}), "sweep")
		lib.Add(model.NewAction([]model.DataPoint{{Velocity: 1, Position: 1, Effort: 1}}), "lift")
		lib.Add(model.NewAction([]model.DataPoint{{Velocity: 2, Position: 2, Effort: 2}}), "lift")

		Convey("When it is written", func() {
			var buf bytes.Buffer
			So(render.WriteLibrary(&buf, lib), ShouldBeNil)

			Convey("Then all lifts come first", func() {
				So(buf.String(), ShouldEqual, "1 1 1 lift\n2 2 2 lift\n9 9 9 sweep\n")
			})
		})
	})
}

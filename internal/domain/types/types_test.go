package types_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	types "github.com/okian/motion/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassifyRequest(t *testing.T) {
	Convey("Given a classify request body with samples", t, func() {
		body := `{"samples":[[1,2,3],[-1.5,0,2e3]]}`

		Convey("When it is decoded", func() {
			var req types.ClassifyRequest
			err := json.Unmarshal([]byte(body), &req)

			Convey("Then every sample keeps velocity, position, effort order", func() {
				So(err, ShouldBeNil)
				want := []types.Sample{{1, 2, 3}, {-1.5, 0, 2000}}
				So(cmp.Diff(want, req.Samples), ShouldBeEmpty)
				So(req.Record, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a job request body", t, func() {
		body := `{"request_id":"r-1","record":"1,2,3,lift"}`

		Convey("When it is decoded", func() {
			var req types.JobRequest
			err := json.Unmarshal([]byte(body), &req)

			Convey("Then the embedded classify fields are promoted", func() {
				So(err, ShouldBeNil)
				So(req.RequestID, ShouldEqual, "r-1")
				So(req.Record, ShouldEqual, "1,2,3,lift")
				So(req.Samples, ShouldBeNil)
			})
		})
	})
}

func TestJob(t *testing.T) {
	Convey("Given a pending job", t, func() {
		job := types.Job{JobID: "j-1", Status: types.JobPending}

		Convey("When it is encoded", func() {
			b, err := json.Marshal(job)

			Convey("Then empty optional fields are omitted", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"job_id":"j-1","status":"pending"}`)
			})
		})
	})

	Convey("Given a finished job", t, func() {
		job := types.Job{
			JobID:  "j-2",
			Status: types.JobDone,
			Result: &types.Classification{
				Label: "sweep",
				Votes: []types.Vote{{Label: "sweep", Count: 5}, {Label: "lift", Count: 3}},
				Total: 8, Points: 8, Bins: 1,
			},
		}

		Convey("When it is encoded", func() {
			b, err := json.Marshal(job)

			Convey("Then the result is nested", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"result":{"label":"sweep"`)
				So(string(b), ShouldContainSubstring, `{"label":"lift","count":3}`)
			})
		})
	})
}

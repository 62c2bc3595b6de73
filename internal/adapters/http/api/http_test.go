package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/motion/internal/adapters/http/api"
	"github.com/okian/motion/internal/adapters/ingest"
	service "github.com/okian/motion/internal/app"
	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records what the handlers pass through.
type mockDependencies struct {
	classified  []model.Action
	classifyRes types.Classification
	classifyErr error

	submitted []string
	submitDup bool
	submitErr error

	job    types.Job
	jobErr error

	lib     *library.Library
	loaded  string
	loadErr error
}

func (m *mockDependencies) Classify(_ context.Context, action model.Action) (types.Classification, error) {
	m.classified = append(m.classified, action)
	return m.classifyRes, m.classifyErr
}

func (m *mockDependencies) Submit(_ context.Context, requestID string, _ model.Action) (string, bool, error) {
	if m.submitErr != nil {
		return "", false, m.submitErr
	}
	m.submitted = append(m.submitted, requestID)
	return "job-" + requestID, m.submitDup, nil
}

func (m *mockDependencies) Job(_ context.Context, jobID string) (types.Job, error) {
	if m.jobErr != nil {
		return types.Job{}, m.jobErr
	}
	job := m.job
	job.JobID = jobID
	return job, nil
}

func (m *mockDependencies) Library() *library.Library {
	if m.lib == nil {
		m.lib = library.New()
	}
	return m.lib
}

func (m *mockDependencies) LoadLibrary(_ context.Context, r io.Reader) (ingest.Stats, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("read records: %w", err)
	}
	m.loaded = string(b)
	return ingest.Stats{Lines: strings.Count(m.loaded, "\n")}, m.loadErr
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, opts...).
		Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var resp struct {
		Code string `json:"code"`
	}
	So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
	return resp.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then health serves Prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are served as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodGet, "/classify", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/jobs", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/jobs/abc", "{}").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/library", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestClassifyHandler(t *testing.T) {
	Convey("Given a classify endpoint", t, func() {
		deps := &mockDependencies{classifyRes: types.Classification{
			Label: "lift",
			Votes: []types.Vote{{Label: "lift", Count: 8}},
			Total: 8,
		}}
		mux := newMux(deps)

		Convey("When samples are posted", func() {
			w := do(mux, http.MethodPost, "/classify", `{"samples":[[1,2,3],[4,5,6]]}`)

			Convey("Then the action is built from them and the result returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.classified, ShouldHaveLength, 1)
				want := []model.DataPoint{
					{Velocity: 1, Position: 2, Effort: 3},
					{Velocity: 4, Position: 5, Effort: 6},
				}
				So(cmp.Diff(want, deps.classified[0].Points()), ShouldBeEmpty)

				var got types.Classification
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(cmp.Diff(deps.classifyRes, got), ShouldBeEmpty)
			})
		})

		Convey("When a record line is posted", func() {
			w := do(mux, http.MethodPost, "/classify", `{"record":"1.0,2.0,3.0,4.0,5.0,6.0,lift"}`)

			Convey("Then its label is ignored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.classified[0].Len(), ShouldEqual, 2)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/classify", `{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("When the body is empty JSON", func() {
			w := do(mux, http.MethodPost, "/classify", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the record has a malformed number", func() {
			w := do(mux, http.MethodPost, "/classify", `{"record":"1.2.3,lift"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the action overruns the references", func() {
			deps.classifyErr = fmt.Errorf("extract: %w", model.ErrIndexOverrun)
			w := do(mux, http.MethodPost, "/classify", `{"samples":[[1,2,3]]}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "unprocessable")
		})

		Convey("When the body exceeds the limit", func() {
			small := newMux(deps, api.WithMaxBodyBytes(8))
			w := do(small, http.MethodPost, "/classify", `{"samples":[[1,2,3],[4,5,6]]}`)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestJobsHandler(t *testing.T) {
	Convey("Given a jobs endpoint", t, func() {
		deps := &mockDependencies{job: types.Job{Status: types.JobDone, Result: &types.Classification{Label: "sweep"}}}
		mux := newMux(deps)

		Convey("When a new job is posted", func() {
			w := do(mux, http.MethodPost, "/jobs", `{"request_id":" r1 ","samples":[[1,2,3]]}`)

			Convey("Then it is accepted with a job id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.submitted, ShouldResemble, []string{"r1"})
				var job types.Job
				So(json.Unmarshal(w.Body.Bytes(), &job), ShouldBeNil)
				So(job.JobID, ShouldEqual, "job-r1")
				So(job.Status, ShouldEqual, types.JobPending)
				So(job.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When a duplicate is posted", func() {
			deps.submitDup = true
			w := do(mux, http.MethodPost, "/jobs", `{"request_id":"r1","samples":[[1,2,3]]}`)

			Convey("Then it is acknowledged as a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = fmt.Errorf("%w: queue full", service.ErrBackpressure)
			w := do(mux, http.MethodPost, "/jobs", `{"samples":[[1,2,3]]}`)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorCode(w), ShouldEqual, "backpressure")
		})

		Convey("When the pipeline is not running", func() {
			deps.submitErr = service.ErrNotStarted
			w := do(mux, http.MethodPost, "/jobs", `{"samples":[[1,2,3]]}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When a job is fetched", func() {
			w := do(mux, http.MethodGet, "/jobs/abc", "")

			Convey("Then its state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var job types.Job
				So(json.Unmarshal(w.Body.Bytes(), &job), ShouldBeNil)
				So(job.JobID, ShouldEqual, "abc")
				So(job.Result.Label, ShouldEqual, "sweep")
			})
		})

		Convey("When an unknown job is fetched", func() {
			deps.jobErr = fmt.Errorf("%w: abc", service.ErrJobNotFound)
			So(do(mux, http.MethodGet, "/jobs/abc", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the job path is malformed", func() {
			So(do(mux, http.MethodGet, "/jobs/a/b", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/jobs/", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLibraryHandler(t *testing.T) {
	Convey("Given a library endpoint", t, func() {
		deps := &mockDependencies{lib: library.New()}
		deps.lib.Add(model.NewAction([]model.DataPoint{{Velocity: 1, Position: 2.5, Effort: 3}}), "sweep")
		deps.lib.Add(model.NewAction([]model.DataPoint{{Velocity: 0.5, Position: 0, Effort: -1}}), "lift")
		mux := newMux(deps)

		Convey("When the library is read", func() {
			w := do(mux, http.MethodGet, "/library", "")

			Convey("Then lifts print before sweeps", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
				So(w.Body.String(), ShouldEqual, "0.5 0 -1 lift\n1 2.5 3 sweep\n")
			})
		})

		Convey("When records are posted", func() {
			w := do(mux, http.MethodPost, "/library", "1,2,3,lift\n4,5,6,sweep\n")

			Convey("Then the body reaches the loader and stats come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.loaded, ShouldEqual, "1,2,3,lift\n4,5,6,sweep\n")
				var stats ingest.Stats
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats.Lines, ShouldEqual, 2)
			})
		})

		Convey("When the posted body exceeds the limit", func() {
			small := newMux(deps, api.WithMaxBodyBytes(4))
			w := do(small, http.MethodPost, "/library", "1,2,3,lift\n")
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When loading fails", func() {
			deps.loadErr = errors.New("disk full")
			So(do(mux, http.MethodPost, "/library", "1,2,3,lift\n").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestServerWithService(t *testing.T) {
	Convey("Given the API over a real service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { So(svc.Stop(ctx), ShouldBeNil) })

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)

		Convey("When references are posted and an action classified", func() {
			w := do(mux, http.MethodPost, "/library",
				"1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,lift\n"+
					"10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,10,sweep\n")
			So(w.Code, ShouldEqual, http.StatusOK)

			w = do(mux, http.MethodPost, "/classify",
				`{"samples":[[9,9,9],[9,9,9],[9,9,9],[9,9,9],[9,9,9],[9,9,9],[9,9,9],[9,9,9]]}`)

			Convey("Then the nearest category wins every vote", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got types.Classification
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Label, ShouldEqual, "sweep")
				So(got.Votes, ShouldResemble, []types.Vote{{Label: "sweep", Count: 8}})
				So(got.Bins, ShouldEqual, 1)
			})
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When stats are requested", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then provider stats come back with the uptime", func() {
				var got map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got["started"], ShouldEqual, true)
				So(got, ShouldContainKey, "uptimeSeconds")
			})
		})
	})
}

package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func serve(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
	return w
}

func TestRegister(t *testing.T) {
	convey.Convey("Given a mux with the docs routes", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		convey.Convey("The OpenAPI document lists the classifier routes", func() {
			w := serve(mux, http.MethodGet, "/openapi.yaml")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldStartWith, "application/yaml")
			for _, route := range []string{"/classify:", "/jobs:", "/jobs/{job_id}:", "/library:"} {
				convey.So(w.Body.String(), convey.ShouldContainSubstring, route)
			}
		})

		convey.Convey("The docs page loads ReDoc against the document", func() {
			w := serve(mux, http.MethodGet, "/api-docs")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldStartWith, "text/html")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "Motion API Docs")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, redocScript)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "'/openapi.yaml'")
		})

		convey.Convey("Non-GET methods are not found", func() {
			convey.So(serve(mux, http.MethodPost, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusNotFound)
			convey.So(serve(mux, http.MethodDelete, "/api-docs").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})

	convey.Convey("Given a nil mux", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}

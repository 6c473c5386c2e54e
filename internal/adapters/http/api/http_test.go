package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/vidmatch/internal/adapters/http/api"
	"github.com/okian/vidmatch/internal/domain/types"
	"github.com/okian/vidmatch/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

type mockStatsProvider struct {
	stats types.Summary
}

func (m *mockStatsProvider) GetStats() types.Summary {
	return m.stats
}

func TestServer_Register(t *testing.T) {
	Convey("Given a status server over a running batch", t, func() {
		stats := &mockStatsProvider{stats: types.Summary{
			RunID:     "run-42",
			Running:   true,
			Total:     10,
			Processed: 4,
			Matched:   3,
			Unmatched: 1,
			Persisted: 5,
			Elapsed:   2 * time.Second,
		}}
		mux := http.NewServeMux()
		api.NewServer(stats).Register(mux)

		Convey("When /healthz is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it should report ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When /stats is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then the summary and derived values should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var body map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["run_id"], ShouldEqual, "run-42")
				So(body["running"], ShouldEqual, true)
				So(body["processed"], ShouldEqual, 4.0)
				So(body["remaining"], ShouldEqual, 6.0)
				So(body["match_rate"], ShouldEqual, 0.75)
				So(body["elapsed_seconds"], ShouldEqual, 2.0)
			})
		})

		Convey("When /stats is called with the wrong method", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stats", nil))

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When /metrics is requested after recording", func() {
			metrics.RecordMatchPersisted()
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the matcher registry should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "vidmatch_matcher_matches_persisted_total")
				So(w.Body.String(), ShouldContainSubstring, "vidmatch_http_requests_total")
			})
		})
	})
}

func TestListen(t *testing.T) {
	Convey("Given a status listener on an ephemeral port", t, func() {
		ctx := context.Background()
		l, err := api.Listen(ctx, "127.0.0.1:0", api.NewServer(&mockStatsProvider{}))
		So(err, ShouldBeNil)

		Convey("Then it should serve until shut down", func() {
			resp, err := http.Get("http://" + l.Addr() + "/healthz")
			So(err, ShouldBeNil)
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "ok")

			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			So(l.Shutdown(sctx), ShouldBeNil)

			_, err = http.Get("http://" + l.Addr() + "/healthz")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an address that cannot be bound", t, func() {
		_, err := api.Listen(context.Background(), "256.0.0.1:bad", api.NewServer(&mockStatsProvider{}))

		Convey("Then Listen should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a dedicated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the collectors should be registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.recordsProcessed.WithLabelValues(OutcomeMatched).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom naming and labels", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.matchesPersisted.Inc()

			Convey("Then exported names should use them", func() {
				expected := `
# HELP test_unit_matches_persisted_total Match records appended to the result sink
# TYPE test_unit_matches_persisted_total counter
test_unit_matches_persisted_total{env="test"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_matches_persisted_total")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording record outcomes", func() {
			before := testutil.ToFloat64(globalManager.recordsProcessed.WithLabelValues(OutcomeFailed))
			RecordRecordProcessed(OutcomeFailed, 0.2)

			Convey("Then the labelled counter should advance", func() {
				after := testutil.ToFloat64(globalManager.recordsProcessed.WithLabelValues(OutcomeFailed))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording provider queries", func() {
			before := testutil.ToFloat64(globalManager.queries.WithLabelValues(QueryTimeout))
			RecordQuery(QueryTimeout, 45)
			RecordQuery(QueryTimeout, 45)

			Convey("Then each call should be counted", func() {
				after := testutil.ToFloat64(globalManager.queries.WithLabelValues(QueryTimeout))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When moving the busy worker gauge", func() {
			before := testutil.ToFloat64(globalManager.workersBusy)
			WorkerBusy(1)
			WorkerBusy(1)
			WorkerBusy(-1)

			Convey("Then it should reflect the net change", func() {
				So(testutil.ToFloat64(globalManager.workersBusy)-before, ShouldEqual, 1)
			})
			WorkerBusy(-1)
		})

		Convey("When updating gauges", func() {
			UpdateQueueCapacity(64)
			UpdateQueueSize(10)
			UpdateWorkerCount(8)
			UpdateRecordsTotal(4634)

			Convey("Then they should hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 8)
				So(testutil.ToFloat64(globalManager.recordsTotal), ShouldEqual, 4634)
			})
		})

		Convey("When recording the remaining counters", func() {
			So(func() {
				RecordCandidateScored()
				RecordCandidateDuplicate()
				RecordMatchPersisted()
				RecordSinkWrite(0.003)
				RecordSinkError()
			}, ShouldNotPanic)
		})

		Convey("When recording status server requests", func() {
			before := testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("stats", "GET", "200"))
			RecordHTTPRequest("stats", "GET", "200", 0.001)

			Convey("Then the labelled counter should advance", func() {
				after := testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("stats", "GET", "200"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("Then the custom registry should be exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"version": "1.0.0"}),
				WithPrometheusRegistry(registry),
			)
			m.submissions.WithLabelValues(SubmissionAccepted).Inc()

			Convey("Then its collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_submissions_total"], ShouldBeTrue)
			})

			Convey("Then const labels are attached", func() {
				So(testutil.ToFloat64(m.submissions.WithLabelValues(SubmissionAccepted)), ShouldEqual, 1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				for _, f := range families {
					if f.GetName() != "test_unit_submissions_total" {
						continue
					}
					labels := f.GetMetric()[0].GetLabel()
					found := false
					for _, l := range labels {
						if l.GetName() == "version" && l.GetValue() == "1.0.0" {
							found = true
						}
					}
					So(found, ShouldBeTrue)
				}
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestPackageRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording submissions", func() {
			before := testutil.ToFloat64(globalManager.submissions.WithLabelValues(SubmissionConfirm))
			RecordSubmission(SubmissionConfirm)
			So(testutil.ToFloat64(globalManager.submissions.WithLabelValues(SubmissionConfirm)), ShouldEqual, before+1)
		})

		Convey("When recording counters", func() {
			before := testutil.ToFloat64(globalManager.digestMismatch)
			RecordDigestMismatch()
			So(testutil.ToFloat64(globalManager.digestMismatch), ShouldEqual, before+1)

			before = testutil.ToFloat64(globalManager.overrides)
			RecordOverride()
			So(testutil.ToFloat64(globalManager.overrides), ShouldEqual, before+1)
		})

		Convey("When updating queue gauges", func() {
			UpdateQueueCapacity(10)
			UpdateQueueSize(4, 10)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 4)
			So(testutil.ToFloat64(globalManager.queueUtilization), ShouldAlmostEqual, 0.4, 1e-9)
		})

		Convey("When updating store and ranking gauges", func() {
			UpdateStoreRecords(17)
			UpdateRankPopulation(17)
			So(testutil.ToFloat64(globalManager.storeRecords), ShouldEqual, 17)
			So(testutil.ToFloat64(globalManager.rankPopulation), ShouldEqual, 17)
		})

		Convey("When observing histograms and labelled errors", func() {
			So(func() {
				RecordRankLatency(1.5)
				RecordStoreLatency("add", 2)
				RecordWorkerLatency(3)
				RecordHTTPRequest("scores", "GET", "200")
				RecordHTTPRequestDuration("scores", "GET", "200", 4)
				RecordErrorByComponent("api", "bad_request")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("scores", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 5)
				RecordImport(ImportApplied)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerError()
				RecordWorkerDuplicate()
				UpdateWorkerActiveCount(2)
				UpdateWorkerJobsPerSecond(1.25)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			registryOpt := WithRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording pipeline counters", func() {
			Convey("Then it should record ledger volumes", func() {
				So(func() {
					AddTransactionsLoaded(100)
					AddTransactionsNormalized(95)
					AddDuplicatesCollapsed(5)
					IncLedgerErrors()
				}, ShouldNotPanic)
			})

			Convey("And it should record analysis progress", func() {
				So(func() {
					IncSubgroupRuns()
					IncSubgroupsSkipped()
					IncAccountsEstimated()
					IncEstimatorSkips()
					AddSeriesBuckets(365)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording latencies and gauges", func() {
			Convey("Then it should record durations", func() {
				So(func() {
					ObserveRunDuration(250 * time.Millisecond)
					ObserveEstimationLatency(2 * time.Millisecond)
				}, ShouldNotPanic)
			})

			Convey("And it should update the tracked-accounts gauge", func() {
				So(func() {
					SetAccountsTracked(1200)
					SetAccountsTracked(900)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics HTTP handler", t, func() {
		Convey("When requesting it", func() {
			h := Handler()

			Convey("Then it should not be nil", func() {
				So(h, ShouldNotBeNil)
			})
		})
	})
}

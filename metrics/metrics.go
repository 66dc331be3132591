package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every farm metric. It is separate from the default registry
// so a Pushgateway push carries only these series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Run metrics
	RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_alert_runs_total",
			Help: "Total number of fetch, evaluate and notify runs",
		},
		[]string{"status"}, // status: ok, error
	)

	// Weather source metrics
	FetchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farm_alert_fetch_duration_seconds",
			Help:    "Weather observation fetch latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	FetchErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_alert_fetch_errors_total",
			Help: "Total number of failed weather fetches",
		},
		[]string{"provider"},
	)

	LastTemperature = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "farm_alert_temperature_celsius",
			Help: "Temperature from the last observation",
		},
	)

	LastHumidity = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "farm_alert_humidity_percent",
			Help: "Relative humidity from the last observation",
		},
	)

	// Alert metrics
	AlertSegmentsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_alert_segments_total",
			Help: "Total number of alert segments produced",
		},
		[]string{"kind"}, // kind: disease, humidity, summary
	)

	NotificationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_alert_notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"channel", "status"}, // status: sent, error
	)
)

// Handler serves the farm registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Push sends the current registry to a Pushgateway under the given job name.
func Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(Registry).PushContext(ctx)
}

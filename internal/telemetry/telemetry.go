package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_upstream_requests_total",
		Help: "Requests sent to the carrier sales API by status code and method",
	}, []string{"code", "method"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_upstream_request_duration_seconds",
		Help:    "Carrier sales API round trip latency",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"code", "method"})

	UpstreamInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_upstream_in_flight",
		Help: "Carrier sales API requests currently in flight",
	})

	PanelLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_panel_loads_total",
		Help: "Panel loads by panel and result",
	}, []string{"panel", "result"})

	PanelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_panel_load_duration_seconds",
		Help:    "Time for one panel to settle",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
	}, []string{"panel"})
)

// Transport wraps next so every upstream round trip is counted and timed.
// A nil next means http.DefaultTransport.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(UpstreamInFlight,
		promhttp.InstrumentRoundTripperCounter(UpstreamRequests,
			promhttp.InstrumentRoundTripperDuration(UpstreamDuration, next),
		),
	)
}

// InstrumentClient returns a client sharing c's settings with an
// instrumented transport. c is left untouched.
func InstrumentClient(c *http.Client) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	out := *c
	out.Transport = Transport(c.Transport)
	return &out
}

// ObservePanel records one settled panel load. Stale results count as
// "dropped" since they never reach the screen.
func ObservePanel(panel string, seconds float64, err error, applied bool) {
	result := "ok"
	switch {
	case !applied:
		result = "dropped"
	case err != nil:
		result = "error"
	}
	PanelLoads.WithLabelValues(panel, result).Inc()
	PanelDuration.WithLabelValues(panel).Observe(seconds)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

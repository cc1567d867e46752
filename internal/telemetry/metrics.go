package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's prometheus collectors, registered once per
// process and passed explicitly to components that need to record
// against them (no package-level global registry).
type Metrics struct {
	IngestAcks      prometheus.Counter
	IngestErrors    *prometheus.CounterVec
	CommittedRows   prometheus.Counter
	WindowUpdates   prometheus.Counter
	RenderLatencyMs prometheus.Histogram
	BackpressureState prometheus.Gauge
}

// NewMetrics constructs and registers a Metrics set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestAcks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stability_engine",
			Name:      "ingest_acks_total",
			Help:      "Total INGEST_ACK events emitted by the worker.",
		}),
		IngestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stability_engine",
			Name:      "ingest_errors_total",
			Help:      "Total INGEST_ERROR events emitted by the worker, by fatal/non-fatal.",
		}, []string{"fatal"}),
		CommittedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stability_engine",
			Name:      "committed_rows_total",
			Help:      "Total rows successfully committed to the column store.",
		}),
		WindowUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stability_engine",
			Name:      "window_updates_total",
			Help:      "Total WINDOW_UPDATE events emitted by the worker.",
		}),
		RenderLatencyMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stability_engine",
			Name:      "render_latency_ms",
			Help:      "Reported FRAME_ACK render latencies, in milliseconds.",
			Buckets:   []float64{2, 4, 8, 14, 20, 28, 40, 60, 100},
		}),
		BackpressureState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stability_engine",
			Name:      "backpressure_strategy",
			Help:      "Current backpressure strategy: 0=NOMINAL, 1=BUFFER, 2=SHED.",
		}),
	}

	reg.MustRegister(m.IngestAcks, m.IngestErrors, m.CommittedRows, m.WindowUpdates, m.RenderLatencyMs, m.BackpressureState)

	return m
}

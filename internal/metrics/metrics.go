package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unigps"

// Reader holds the counters of one stream reader. A nil *Reader records
// nothing, so callers need not check whether metrics are enabled.
type Reader struct {
	Frames    *prometheus.CounterVec
	Filtered  *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	Bytes     prometheus.Counter
	Discarded prometheus.Counter
	Relayed   *prometheus.CounterVec
}

// NewReader creates the reader counters. They are not registered.
func NewReader() *Reader {
	return &Reader{
		Frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "frames_total",
				Help:      "Frames returned by the reader",
			},
			[]string{"protocol", "identity"},
		),

		Filtered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "filtered_total",
				Help:      "Complete frames discarded by the protocol filter",
			},
			[]string{"protocol"},
		),

		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "errors_total",
				Help:      "Frame errors by kind (validation, truncated, header, parse)",
			},
			[]string{"kind"},
		),

		Bytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "frame_bytes_total",
				Help:      "Bytes of returned frames",
			},
		),

		Discarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "discarded_bytes_total",
				Help:      "Bytes skipped while searching for a protocol header",
			},
		),

		Relayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "packets_total",
				Help:      "Frames forwarded over UDP by result (ok, error)",
			},
			[]string{"result"},
		),
	}
}

// Register adds every counter to reg.
func (r *Reader) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{r.Frames, r.Filtered, r.Errors, r.Bytes, r.Discarded, r.Relayed} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) RecordFrame(protocol, identity string, size int) {
	if r == nil {
		return
	}
	r.Frames.WithLabelValues(protocol, identity).Inc()
	r.Bytes.Add(float64(size))
}

func (r *Reader) RecordFiltered(protocol string) {
	if r == nil {
		return
	}
	r.Filtered.WithLabelValues(protocol).Inc()
}

func (r *Reader) RecordError(kind string) {
	if r == nil {
		return
	}
	r.Errors.WithLabelValues(kind).Inc()
}

func (r *Reader) RecordDiscard(n int) {
	if r == nil {
		return
	}
	r.Discarded.Add(float64(n))
}

func (r *Reader) RecordRelay(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.Relayed.WithLabelValues(result).Inc()
}

// Handler serves the metrics gathered by reg.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

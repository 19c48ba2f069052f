package modem

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the receiver's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	framesDecoded    *prometheus.CounterVec // by baud
	candidates       prometheus.Counter     // start/end tone pairs examined
	failedCandidates prometheus.Counter     // pairs without a valid frame
	bufferedSamples  prometheus.Gauge
}

// NewMetrics creates and registers the receiver metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		framesDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modem_frames_decoded_total",
				Help: "Frames that passed the CRC check, by baud",
			},
			[]string{"baud"},
		),
		candidates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modem_candidate_segments_total",
				Help: "Data segments bracketed by a start and end tone",
			},
		),
		failedCandidates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modem_failed_segments_total",
				Help: "Data segments that did not yield a valid frame",
			},
		),
		bufferedSamples: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modem_buffered_samples",
				Help: "Samples held by the streaming receiver",
			},
		),
	}
}

func (m *Metrics) frameDecoded(baud int) {
	if m == nil {
		return
	}
	m.framesDecoded.WithLabelValues(strconv.Itoa(baud)).Inc()
}

func (m *Metrics) candidate(ok bool) {
	if m == nil {
		return
	}
	m.candidates.Inc()
	if !ok {
		m.failedCandidates.Inc()
	}
}

func (m *Metrics) buffered(n int) {
	if m == nil {
		return
	}
	m.bufferedSamples.Set(float64(n))
}

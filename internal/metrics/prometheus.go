package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "copybridge"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	invocations *prom.CounterVec
	duration    *prom.HistogramVec
	copyErrors  *prom.CounterVec
	copiedFiles prom.Counter
	copiedBytes prom.Counter
	inflight    prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		invocations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Bridge invocations by command and result",
		}, []string{"command", "result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Time from dispatch to resolution of a bridge invocation",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		copyErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "copy_errors_total",
			Help:      "Failed directory copies by error kind",
		}, []string{"kind"}),
		copiedFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "copied_files_total",
			Help:      "Regular files written by directory copies",
		}),
		copiedBytes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "copied_bytes_total",
			Help:      "File bytes written by directory copies",
		}),
		inflight: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_invocations",
			Help:      "Invocations queued or running",
		}),
	}
	reg.MustRegister(pr.invocations, pr.duration, pr.copyErrors, pr.copiedFiles, pr.copiedBytes, pr.inflight)
	return pr
}

func (p *PrometheusRecorder) ObserveInvocation(command string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.invocations.WithLabelValues(command, string(result)).Inc()
	p.duration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCopyError(kind string) {
	if p == nil {
		return
	}
	p.copyErrors.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) AddCopied(files int, bytes int64) {
	if p == nil {
		return
	}
	p.copiedFiles.Add(float64(files))
	p.copiedBytes.Add(float64(bytes))
}

func (p *PrometheusRecorder) IncInflight() {
	if p == nil {
		return
	}
	p.inflight.Inc()
}

func (p *PrometheusRecorder) DecInflight() {
	if p == nil {
		return
	}
	p.inflight.Dec()
}

// HTTPHandler returns an http.Handler that serves the metrics on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

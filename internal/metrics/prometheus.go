// Package metrics expõe a instrumentação Prometheus do serviço.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	HTTPDuration    *prometheus.HistogramVec
	IngestedRecords *prometheus.CounterVec
	IngestFailures  prometheus.Counter
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return &Registry{
		reg: reg,
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jornada_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP por rota e status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		IngestedRecords: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_ingested_records_total",
			Help: "Registros ingeridos por feed.",
		}, []string{"feed"}),
		IngestFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "jornada_ingest_failures_total",
			Help: "Execuções de ingestão que falharam.",
		}),
	}
}

func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Instrument mede a duração de cada requisição com a rota padronizada do
// chi (não o path cru, para não explodir a cardinalidade).
func (m *Registry) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPDuration.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

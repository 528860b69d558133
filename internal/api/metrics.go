package api

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goldpay_http_request_duration_seconds",
		Help:    "HTTP request latency by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	paymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goldpay_payments_total",
		Help: "Direct payments completed.",
	})

	settlementTransfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goldpay_settlement_transfers_total",
		Help: "Settlement transfers by outcome.",
	}, []string{"outcome"})

	assistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goldpay_assistant_requests_total",
		Help: "AI suggestion requests by result.",
	}, []string{"result"})
)

// metricsMiddleware records request latency.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		requestDuration.
			WithLabelValues(r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

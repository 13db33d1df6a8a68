package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_sessions_total",
			Help: "Total number of completed scrape sessions.",
		},
		[]string{"distributor"},
	)
	itemsScrapedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_scraped_total",
			Help: "Total number of raw products scraped.",
		},
		[]string{"distributor"},
	)
	productsMatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_matched_total",
			Help: "Total number of raw products resolved, by cascade step.",
		},
		[]string{"match_type"},
	)
	trendCalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trend_calculations_total",
			Help: "Total number of trend score calculations.",
		},
		[]string{"status"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests on the status listener.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(scrapeSessionsTotal)
	prometheus.MustRegister(itemsScrapedTotal)
	prometheus.MustRegister(productsMatchedTotal)
	prometheus.MustRegister(trendCalculationsTotal)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// RecordRequest records metrics for one HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// RecordSession counts one finished session and its item yield.
func RecordSession(distributor string, items int) {
	scrapeSessionsTotal.WithLabelValues(distributor).Inc()
	itemsScrapedTotal.WithLabelValues(distributor).Add(float64(items))
}

// RecordMatch counts one resolved raw product by cascade step.
func RecordMatch(matchType string) {
	productsMatchedTotal.WithLabelValues(matchType).Inc()
}

// RecordTrendCalculation counts one score calculation outcome.
func RecordTrendCalculation(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	trendCalculationsTotal.WithLabelValues(status).Inc()
}

// MetricsHandler returns the Prometheus exposition handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

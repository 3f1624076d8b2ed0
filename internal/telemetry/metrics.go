package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsCreated       = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_jobs_created_total", Help: "Jobs created"})
	JobsStarted       = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_jobs_started_total", Help: "Jobs started"})
	JobsCompleted     = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_jobs_completed_total", Help: "Jobs completed successfully"})
	JobsFailed        = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_jobs_failed_total", Help: "Jobs that failed"})
	JobsCancelled     = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_jobs_cancelled_total", Help: "Jobs cancelled"})
	RateLimitRejects  = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	ListingsScraped   = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_listings_scraped_total", Help: "Raw listings returned by the scraper"})
	ListingsExported  = prometheus.NewCounter(prometheus.CounterOpts{Name: "leads_listings_exported_total", Help: "Listings written to report artifacts"})
	ActiveExecutions  = prometheus.NewGauge(prometheus.GaugeOpts{Name: "leads_active_executions", Help: "Jobs currently executing"})
	ScrapeDuration    = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "leads_scrape_duration_seconds", Help: "Per-location scrape duration", Buckets: prometheus.ExponentialBuckets(0.5, 2, 10)})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsCreated,
			JobsStarted,
			JobsCompleted,
			JobsFailed,
			JobsCancelled,
			RateLimitRejects,
			ListingsScraped,
			ListingsExported,
			ActiveExecutions,
			ScrapeDuration,
		)
	})
	return promhttp.Handler()
}

package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// appMetrics counts the outcomes of the UI mutations.
type appMetrics struct {
	accountsCreated     atomic.Int64
	accountsDeleted     atomic.Int64
	transactionsCreated atomic.Int64
	mutationFailures    atomic.Int64
	refetchFailures     atomic.Int64
	started             time.Time
}

func newAppMetrics() *appMetrics {
	return &appMetrics{started: time.Now()}
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value any) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %v\n\n", name, value)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	cacheStats := s.data.CacheStats()

	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	writeMetric(w, "http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)

	writeMetric(w, "accounts_created_total", "counter", "Accounts created through the form", s.appMetrics.accountsCreated.Load())
	writeMetric(w, "accounts_deleted_total", "counter", "Accounts deleted", s.appMetrics.accountsDeleted.Load())
	writeMetric(w, "transactions_created_total", "counter", "Transactions recorded", s.appMetrics.transactionsCreated.Load())
	writeMetric(w, "mutation_failures_total", "counter", "Mutations rejected or failed", s.appMetrics.mutationFailures.Load())
	writeMetric(w, "refetch_failures_total", "counter", "Refetches that failed after a successful mutation", s.appMetrics.refetchFailures.Load())

	writeMetric(w, "cache_hits_total", "counter", "Total cache hits", cacheStats.Hits)
	writeMetric(w, "cache_misses_total", "counter", "Total cache misses", cacheStats.Misses)
	writeMetric(w, "cache_entries", "gauge", "Current cache entries", cacheStats.Size)
	writeMetric(w, "active_views", "gauge", "Page views holding selection state", s.views.Len())

	writeMetric(w, "rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Rejected)
	writeMetric(w, "active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)

	writeMetric(w, "uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.started).Seconds()))
}

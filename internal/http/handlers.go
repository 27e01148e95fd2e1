package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks that the store answers a cheap query.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if _, err := s.ledger.Store().ListCategories(ctx, ""); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}
	checks["snapshot_cache"] = map[string]any{"entries": s.snapshots.Size()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}

	NewJSONResponse().Status(httpStatus).Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	metric := func(name, help, kind string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime)
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", limitMetrics.TotalHits)
	metric("rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", limitMetrics.ClientCount)
	metric("security_suspicious_requests_total", "Requests flagged as suspicious", "counter", securityMetrics.SuspiciousRequests)
	metric("security_blocked_requests_total", "Suspicious requests refused", "counter", securityMetrics.BlockedRequests)
	metric("snapshot_cache_entries", "Users with a cached snapshot", "gauge", int64(s.snapshots.Size()))
	metric("uptime_seconds", "Seconds since the server started", "gauge", int64(time.Since(s.startedAt).Seconds()))
}

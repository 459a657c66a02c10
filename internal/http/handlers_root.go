package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"comptes/internal/core"
	applog "comptes/internal/log"
)

// handleIndex renders the page shell. A full load starts a new view with
// the default selection and drops the read caches, so every slot loads the
// server's current state.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := viewID(r)
	sel := s.views.Reset(id)
	s.data.DropAll()
	s.logger.DebugContext(r.Context(), "New page view", applog.FieldViewID, id)

	data := indexView{
		ViewID:      id,
		AccountForm: newAccountFormView(sel),
		Filters:     accountTypeOptions(sel.FilterType),
	}
	s.writePartial(w, r, NewHTMXResponse(), "index.html", data)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.started).String(),
	})
}

// handleReady checks templates and asks the backend for the cheapest query.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.data.Ping(ctx); err != nil {
		checks["backend"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["backend"] = "ok"
	}

	cacheStats := s.data.CacheStats()
	checks["cache"] = map[string]any{
		"entries": cacheStats.Size,
		"hits":    cacheStats.Hits,
		"misses":  cacheStats.Misses,
	}
	checks["views"] = s.views.Len()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func dateFormatter(r *http.Request) core.DateFormatter {
	return core.DateFormatterFor(r.Header.Get("Accept-Language"))
}

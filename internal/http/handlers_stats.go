package http

import (
	"net/http"

	"comptes/internal/core"
	applog "comptes/internal/log"
)

// handleStats renders the aggregate statistics. The sum is shown as the
// server sent it; only the average is rounded.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var view statsView
	stats, err := s.data.TotalBalanceStats(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load statistics",
			applog.FieldComponent, applog.ComponentStats,
			applog.FieldOperation, applog.OpRead,
			applog.FieldError, err)
		view.Error = errorMessage(err)
	} else {
		view = statsView{
			Count:   stats.Count,
			Sum:     stats.Sum.String() + " " + core.CurrencyCode,
			Average: core.RoundStat(stats.Average) + " " + core.CurrencyCode,
		}
	}
	s.writePartial(w, r, NewHTMXResponse(), "stats.html", view)
}

package http

import (
	"net/http"

	"comptes/internal/core"
	applog "comptes/internal/log"
	"comptes/internal/ui"
)

func (s *Server) renderAccountsByType(w http.ResponseWriter, r *http.Request, t core.AccountType) {
	view := accountsByTypeView{Type: t.String()}
	accounts, err := s.data.AccountsByType(r.Context(), t)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load accounts by type",
			applog.FieldComponent, applog.ComponentAccount,
			applog.FieldOperation, applog.OpFilter,
			applog.FieldAccountType, t.String(),
			applog.FieldError, err)
		view.Error = errorMessage(err)
	} else {
		f := dateFormatter(r)
		view.Accounts = make([]accountRow, 0, len(accounts))
		for _, a := range accounts {
			view.Accounts = append(view.Accounts, newAccountRow(a, f, ui.Selection{}))
		}
	}
	s.writePartial(w, r, NewHTMXResponse(), "accounts_by_type.html", view)
}

// handleAccountsByType renders the list for the session's current filter.
func (s *Server) handleAccountsByType(w http.ResponseWriter, r *http.Request) {
	s.renderAccountsByType(w, r, s.views.Get(viewID(r)).FilterType)
}

// handleFilter stores the selected type and renders its list, which replaces the previous one.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Requête invalide").Write(w)
		return
	}
	t, err := ParseFilterType(r, p)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Unknown account type filter",
			applog.FieldOperation, applog.OpFilter,
			applog.FieldError, err)
	}
	sel := s.views.Update(viewID(r), func(sel *ui.Selection) {
		if err == nil {
			sel.SetFilter(t)
		}
	})
	s.renderAccountsByType(w, r, sel.FilterType)
}

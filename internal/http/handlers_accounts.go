package http

import (
	"bytes"
	"net/http"
	"net/url"

	"comptes/internal/core"
	"comptes/internal/datasource"
	applog "comptes/internal/log"
	"comptes/internal/ui"
)

const (
	msgDeleteRefused  = "Impossible de supprimer ce compte"
	msgDeleteFailed   = "Erreur lors de la suppression du compte"
	msgRefetchWarning = "Les données affichées n'ont pas pu être actualisées"
	msgViewExpired    = "Page expirée, veuillez recharger"
	msgAccountCreated = "Compte créé"
	msgTxCreated      = "Transaction effectuée"
)

// handleAccountsList renders every account with its panel slot.
func (s *Server) handleAccountsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var view accountsListView

	accounts, err := s.data.AllAccounts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load accounts",
			applog.FieldComponent, applog.ComponentAccount,
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		view.Error = errorMessage(err)
	} else {
		sel := s.views.Get(viewID(r))
		f := dateFormatter(r)
		view.Accounts = make([]accountRow, 0, len(accounts))
		for _, a := range accounts {
			view.Accounts = append(view.Accounts, newAccountRow(a, f, sel))
		}
	}
	s.writePartial(w, r, NewHTMXResponse(), "accounts_list.html", view)
}

// handleToggleAccount flips the expanded account. The response only carries
// out-of-band swaps: the previous slot is emptied and the new one mounted.
func (s *Server) handleToggleAccount(w http.ResponseWriter, r *http.Request) {
	id, err := ParseAccountID(r)
	if err != nil {
		BadRequestError(errorMessage(err)).Write(w)
		return
	}

	var previous *core.AccountID
	sel := s.views.Update(viewID(r), func(sel *ui.Selection) {
		previous = sel.Toggle(id)
	})

	var body bytes.Buffer
	if previous != nil && *previous != id {
		out, ok := s.render(w, r, "panel_slot", newPanelSlot(*previous, false))
		if !ok {
			return
		}
		body.Write(out)
	}
	out, ok := s.render(w, r, "panel_slot", newPanelSlot(id, sel.IsExpanded(id)))
	if !ok {
		return
	}
	body.Write(out)

	s.logger.DebugContext(r.Context(), "Account selection toggled",
		applog.FieldAccountID, id.String(),
		applog.FieldOperation, applog.OpToggle,
		"expanded", sel.IsExpanded(id))
	NewHTMXResponse().BodyHTML(body.Bytes()).Write(w)
}

func newPanelSlot(id core.AccountID, expanded bool) panelSlot {
	return panelSlot{
		PathID:   url.PathEscape(id.String()),
		SafeID:   datasource.EventSafeID(id),
		Expanded: expanded,
		OOB:      true,
	}
}

// handleDeleteAccount deletes an account. Only a true answer refetches the
// list; false and errors raise an alert and leave every view untouched.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := ParseAccountID(r)
	if err != nil {
		NewHTMXResponse().TriggerAlert(msgDeleteFailed).Write(w)
		return
	}

	deleted, outcome, err := s.data.DeleteAccount(ctx, id, datasource.AllAccounts())
	if err != nil {
		s.appMetrics.mutationFailures.Add(1)
		s.events.LogError(ctx, "Account deletion failed", err, applog.ComponentAccount, applog.OpDelete,
			applog.NewFields().WithAccount(id.String(), ""))
		NewHTMXResponse().TriggerAlert(msgDeleteFailed).Write(w)
		return
	}
	s.events.LogAccountDeleted(ctx, id.String(), deleted)
	if !deleted {
		s.appMetrics.mutationFailures.Add(1)
		NewHTMXResponse().TriggerAlert(msgDeleteRefused).Write(w)
		return
	}

	s.appMetrics.accountsDeleted.Add(1)
	s.views.Update(viewID(r), func(sel *ui.Selection) {
		sel.Collapse(id)
	})
	s.mutationResponse(outcome, "").Write(w)
}

// handleRefetchAccounts reloads the account list after a transaction so the
// displayed balances follow the server.
func (s *Server) handleRefetchAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views := []datasource.View{datasource.AllAccounts()}
	resp := NewHTMXResponse().TriggerEvents(datasource.AllAccounts().Event())
	if err := s.data.Refetch(ctx, views...); err != nil {
		s.appMetrics.refetchFailures.Add(1)
		s.events.LogRefetchFailed(ctx, datasource.Keys(views), err)
		resp.TriggerWarningNotification(msgRefetchWarning)
	}
	resp.Write(w)
}

package http

import (
	"net/http"
	"net/url"

	"comptes/internal/core"
	"comptes/internal/datasource"
	applog "comptes/internal/log"
	"comptes/internal/ui"
)

// transactionsView builds the panel of id. A fetch error replaces the whole panel.
func (s *Server) transactionsView(r *http.Request, id core.AccountID, sel ui.Selection, txs []core.Transaction, fetchErr error) transactionsPanelView {
	view := transactionsPanelView{
		PathID:    url.PathEscape(id.String()),
		SafeID:    datasource.EventSafeID(id),
		FormOpen:  sel.TransactionFormOpen,
		Draft:     sel.TransactionDraft,
		Kinds:     kindOptions(sel.TransactionDraft.Kind),
		FormError: sel.TransactionFormError,
	}
	if fetchErr != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transactions",
			applog.FieldComponent, applog.ComponentTransaction,
			applog.FieldOperation, applog.OpList,
			applog.FieldAccountID, id.String(),
			applog.FieldError, fetchErr)
		view.Error = errorMessage(fetchErr)
		return view
	}
	f := dateFormatter(r)
	view.Transactions = make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		view.Transactions = append(view.Transactions, transactionRow{
			Kind:        tx.Kind.String(),
			Class:       tx.Kind.CSSClass(),
			Amount:      tx.DisplayAmount(),
			Date:        f.DateTime(tx.Timestamp, tx.RawTimestamp),
			Description: tx.Description,
		})
	}
	return view
}

// servePanel fetches the transactions of id cache-first and renders the
// panel, unless id stopped being the expanded account meanwhile.
func (s *Server) servePanel(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, id core.AccountID) {
	vid := viewID(r)
	txs, err := s.data.TransactionsByAccount(r.Context(), id)

	sel := s.views.Get(vid)
	if !sel.IsExpanded(id) {
		// Late result for a collapsed panel.
		s.logger.DebugContext(r.Context(), "Discarding transactions of a collapsed account",
			applog.FieldAccountID, id.String())
		resp.Status(http.StatusNoContent).Write(w)
		return
	}
	s.writePartial(w, r, resp, "transactions_panel.html", s.transactionsView(r, id, sel, txs, err))
}

func (s *Server) handleTransactionsPanel(w http.ResponseWriter, r *http.Request) {
	id, err := ParseAccountID(r)
	if err != nil {
		BadRequestError(errorMessage(err)).Write(w)
		return
	}
	if !s.views.Get(viewID(r)).IsExpanded(id) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.servePanel(w, r, NewHTMXResponse(), id)
}

func (s *Server) handleToggleTransactionForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseAccountID(r)
	if err != nil {
		BadRequestError(errorMessage(err)).Write(w)
		return
	}
	s.views.Update(viewID(r), func(sel *ui.Selection) {
		if sel.IsExpanded(id) {
			sel.ToggleTransactionForm()
		}
	})
	s.servePanel(w, r, NewHTMXResponse(), id)
}

// handleCreateTransaction records a transaction on the expanded account. On
// failure the form stays open with the typed values and the error inline.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vid := viewID(r)
	id, err := ParseAccountID(r)
	if err != nil {
		BadRequestError(errorMessage(err)).Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Requête invalide").Write(w)
		return
	}
	draft, err := ParseTransactionDraft(p)

	fail := func(status int, err error) {
		s.appMetrics.mutationFailures.Add(1)
		s.views.Update(vid, func(sel *ui.Selection) {
			if !sel.IsExpanded(id) {
				return
			}
			sel.TransactionFormOpen = true
			sel.TransactionDraft = draft
			sel.TransactionFormError = errorMessage(err)
		})
		s.servePanel(w, r, NewHTMXResponse().Status(status), id)
	}

	if err != nil {
		fail(http.StatusUnprocessableEntity, err)
		return
	}
	in, err := draft.Input(id)
	if err != nil {
		s.logger.WarnContext(ctx, "Transaction form rejected",
			applog.FieldComponent, applog.ComponentTransaction,
			applog.FieldOperation, applog.OpValidate,
			applog.FieldAccountID, id.String(),
			applog.FieldError, err)
		fail(http.StatusUnprocessableEntity, err)
		return
	}

	_, outcome, err := s.data.CreateTransaction(ctx, in, datasource.TransactionsByAccount(id))
	if err != nil {
		s.events.LogError(ctx, "Transaction creation failed", err, applog.ComponentTransaction, applog.OpCreate,
			applog.NewFields().WithTransaction(id.String(), in.Kind.String(), in.Amount))
		status := http.StatusBadGateway
		if isValidationError(err) {
			status = http.StatusUnprocessableEntity
		}
		fail(status, err)
		return
	}

	s.appMetrics.transactionsCreated.Add(1)
	s.events.LogTransactionCreated(ctx, id.String(), in.Kind.String(), in.Amount)
	s.views.Update(vid, func(sel *ui.Selection) {
		if sel.IsExpanded(id) {
			sel.CloseTransactionForm()
		}
	})

	// The fresh panel is the response body, so its own refetch event is not sent.
	resp := s.mutationResponse(outcome, msgTxCreated, datasource.TransactionsByAccount(id)).
		TriggerTransactionCreated(id.String())
	s.servePanel(w, r, resp, id)
}

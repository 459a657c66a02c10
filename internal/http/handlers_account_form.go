package http

import (
	"net/http"

	"comptes/internal/datasource"
	applog "comptes/internal/log"
	"comptes/internal/ui"
)

func (s *Server) handleToggleAccountForm(w http.ResponseWriter, r *http.Request) {
	sel := s.views.Update(viewID(r), func(sel *ui.Selection) {
		sel.ToggleAccountForm(s.now())
	})
	s.writePartial(w, r, NewHTMXResponse(), "account_form.html", newAccountFormView(sel))
}

// handleCreateAccount saves a new account and refetches the account list
// and the statistics. Failures keep the form open with the typed values.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vid := viewID(r)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Requête invalide").Write(w)
		return
	}
	draft, err := ParseAccountDraft(p)

	fail := func(status int, err error) {
		s.appMetrics.mutationFailures.Add(1)
		sel := s.views.Update(vid, func(sel *ui.Selection) {
			sel.ShowAccountForm = true
			sel.AccountDraft = draft
			sel.AccountFormError = errorMessage(err)
		})
		s.writePartial(w, r, NewHTMXResponse().Status(status), "account_form.html", newAccountFormView(sel))
	}

	if err != nil {
		fail(http.StatusUnprocessableEntity, err)
		return
	}
	in, err := draft.Input()
	if err != nil {
		s.logger.WarnContext(ctx, "Account form rejected",
			applog.FieldComponent, applog.ComponentAccount,
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err)
		fail(http.StatusUnprocessableEntity, err)
		return
	}

	acc, outcome, err := s.data.CreateAccount(ctx, in, datasource.AllAccounts(), datasource.TotalBalanceStats())
	if err != nil {
		s.events.LogError(ctx, "Account creation failed", err, applog.ComponentAccount, applog.OpCreate,
			applog.NewFields().WithAccount("", in.Type.String()))
		status := http.StatusBadGateway
		if isValidationError(err) {
			status = http.StatusUnprocessableEntity
		}
		fail(status, err)
		return
	}

	s.appMetrics.accountsCreated.Add(1)
	s.events.LogAccountCreated(ctx, acc.ID.String(), acc.Type.String(), acc.Balance.String())
	sel := s.views.Update(vid, func(sel *ui.Selection) {
		sel.CloseAccountForm()
	})
	s.writePartial(w, r, s.mutationResponse(outcome, msgAccountCreated), "account_form.html", newAccountFormView(sel))
}

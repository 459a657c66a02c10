package http

import (
	"html/template"
	"net/url"

	"comptes/internal/core"
	"comptes/internal/datasource"
	"comptes/internal/ui"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

func accountTypeOptions(selected core.AccountType) []option {
	out := make([]option, 0, 2)
	for _, t := range core.AccountTypes() {
		out = append(out, option{Value: t.String(), Label: t.Label(), Selected: t == selected})
	}
	return out
}

func kindOptions(selected core.TransactionKind) []option {
	out := make([]option, 0, 2)
	for _, k := range core.TransactionKinds() {
		out = append(out, option{Value: k.String(), Label: k.Label(), Selected: k == selected})
	}
	return out
}

type accountRow struct {
	ID       string
	PathID   string
	SafeID   string
	Balance  string
	Type     string
	Date     string
	Expanded bool
}

func newAccountRow(a core.Account, f core.DateFormatter, sel ui.Selection) accountRow {
	return accountRow{
		ID:       a.ID.String(),
		PathID:   url.PathEscape(a.ID.String()),
		SafeID:   datasource.EventSafeID(a.ID),
		Balance:  core.FormatMoney(a.Balance),
		Type:     a.Type.String(),
		Date:     f.Date(a.CreationDate, a.RawDate),
		Expanded: sel.IsExpanded(a.ID),
	}
}

type accountsListView struct {
	Accounts []accountRow
	Error    string
}

// panelSlot is the mount point of one account's transaction panel. OOB marks
// it for an out-of-band swap in toggle responses.
type panelSlot struct {
	PathID   string
	SafeID   string
	Expanded bool
	OOB      bool
}

type transactionRow struct {
	Kind        string
	Class       string
	Amount      string
	Date        string
	Description string
}

type transactionsPanelView struct {
	PathID       string
	SafeID       string
	FormOpen     bool
	Draft        core.TransactionDraft
	Kinds        []option
	FormError    string
	Transactions []transactionRow
	Error        string
}

type accountFormView struct {
	Open  bool
	Draft core.AccountDraft
	Types []option
	Error string
}

func newAccountFormView(sel ui.Selection) accountFormView {
	return accountFormView{
		Open:  sel.ShowAccountForm,
		Draft: sel.AccountDraft,
		Types: accountTypeOptions(sel.AccountDraft.Type),
		Error: sel.AccountFormError,
	}
}

type statsView struct {
	Count   int
	Sum     string
	Average string
	Error   string
}

type accountsByTypeView struct {
	Type     string
	Accounts []accountRow
	Error    string
}

type indexView struct {
	ViewID      string
	AccountForm accountFormView
	Filters     []option
}

var templateFuncs = template.FuncMap{
	"slot": func(id, safeID string, expanded, oob bool) panelSlot {
		return panelSlot{PathID: id, SafeID: safeID, Expanded: expanded, OOB: oob}
	},
}

// Package ui holds the per-browser selection state that coordinates the
// partials: which account is expanded, which forms are open and which
// account type the filtered list shows.
package ui

import (
	"time"

	"comptes/internal/core"
)

// Selection is the ephemeral UI state of one page view.
type Selection struct {
	// Expanded is the one account whose transaction panel is open, or nil.
	Expanded *core.AccountID
	// ShowAccountForm tells whether the account creation form is visible.
	ShowAccountForm bool
	// TransactionFormOpen belongs to the expanded panel and resets with it.
	TransactionFormOpen bool
	FilterType          core.AccountType

	AccountDraft     core.AccountDraft
	AccountFormError string

	TransactionDraft     core.TransactionDraft
	TransactionFormError string
}

// NewSelection returns the defaults of a fresh page load.
func NewSelection() Selection {
	return Selection{
		FilterType:       core.Current,
		TransactionDraft: core.NewTransactionDraft(),
	}
}

// IsExpanded reports whether id is the expanded account.
func (s Selection) IsExpanded(id core.AccountID) bool {
	return s.Expanded != nil && *s.Expanded == id
}

// Toggle expands id, or collapses it when it is already expanded. It
// returns the account that was expanded before, if any.
func (s *Selection) Toggle(id core.AccountID) (previous *core.AccountID) {
	previous = s.Expanded
	if s.IsExpanded(id) {
		s.Expanded = nil
	} else {
		next := id
		s.Expanded = &next
	}
	s.resetTransactionForm()
	return previous
}

// Collapse closes the panel if it belongs to id. It reports whether it did.
func (s *Selection) Collapse(id core.AccountID) bool {
	if !s.IsExpanded(id) {
		return false
	}
	s.Expanded = nil
	s.resetTransactionForm()
	return true
}

func (s *Selection) resetTransactionForm() {
	s.TransactionFormOpen = false
	s.TransactionDraft = core.NewTransactionDraft()
	s.TransactionFormError = ""
}

// ToggleTransactionForm opens or closes the form of the expanded panel.
func (s *Selection) ToggleTransactionForm() {
	if s.Expanded == nil {
		return
	}
	open := !s.TransactionFormOpen
	s.resetTransactionForm()
	s.TransactionFormOpen = open
}

// CloseTransactionForm is the completion step of a successful submission.
func (s *Selection) CloseTransactionForm() {
	s.resetTransactionForm()
}

// ToggleAccountForm shows or hides the creation form. Opening it resets the
// fields to defaults with today's date.
func (s *Selection) ToggleAccountForm(now time.Time) {
	s.ShowAccountForm = !s.ShowAccountForm
	s.AccountFormError = ""
	if s.ShowAccountForm {
		s.AccountDraft = core.NewAccountDraft(now)
	}
}

// CloseAccountForm is the completion step of a successful account creation.
func (s *Selection) CloseAccountForm() {
	s.ShowAccountForm = false
	s.AccountFormError = ""
	s.AccountDraft = core.AccountDraft{}
}

// SetFilter changes the type shown by the filtered list. Unknown values keep the current filter.
func (s *Selection) SetFilter(t core.AccountType) bool {
	if !t.IsValid() || t == s.FilterType {
		return false
	}
	s.FilterType = t
	return true
}

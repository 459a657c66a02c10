package http

import (
	"errors"
	"strings"

	"comptes/internal/api"
	"comptes/internal/core"
)

// sanitizeInput removes control characters except tab, newline and carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

var userMessages = []struct {
	err error
	msg string
}{
	{core.ErrInvalidAmount, "montant invalide"},
	{core.ErrInvalidAccountType, "type de compte invalide"},
	{core.ErrInvalidKind, "type de transaction invalide"},
	{core.ErrInvalidDate, "date invalide"},
	{core.ErrEmptyAccountID, "compte manquant"},
	{api.ErrAccountNotFound, "compte introuvable"},
	{api.ErrInsufficientFunds, "solde insuffisant"},
	{api.ErrNonPositiveAmount, "le montant doit être positif"},
}

// errorMessage is the inline "Erreur : …" text of a failed fetch or mutation.
func errorMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return "Erreur : " + m.msg
		}
	}
	return "Erreur : " + err.Error()
}

// isValidationError reports whether err was raised before reaching the backend.
func isValidationError(err error) bool {
	for _, e := range []error{core.ErrInvalidAmount, core.ErrInvalidAccountType, core.ErrInvalidKind, core.ErrInvalidDate, core.ErrEmptyAccountID} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

package core

import (
	"testing"
	"time"
)

func TestNewAccountDraftDefaults(t *testing.T) {
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	d := NewAccountDraft(now)
	if d.Type != Current || d.CreationDate != "2024-06-09" || d.Balance != "" {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestAccountDraftInput(t *testing.T) {
	in, err := AccountDraft{Balance: "100.00", Type: Current, CreationDate: "2024-01-01"}.Input()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if in.Balance != 100 || in.Type != Current || in.CreationDate != "2024-01-01" {
		t.Fatalf("unexpected input %+v", in)
	}
	if _, err := (AccountDraft{Balance: "abc", Type: Current, CreationDate: "2024-01-01"}).Input(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionDraftInput(t *testing.T) {
	d := NewTransactionDraft()
	if d.Kind != Deposit {
		t.Fatalf("default kind should be deposit, got %s", d.Kind)
	}
	d.Amount = "50"
	d.Kind = Withdrawal
	in, err := d.Input("7")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if in.AccountID != "7" || in.Amount != 50 || in.Kind != Withdrawal || in.Description != "" {
		t.Fatalf("unexpected input %+v", in)
	}
	if _, err := d.Input(""); err != ErrEmptyAccountID {
		t.Fatalf("expected ErrEmptyAccountID, got %v", err)
	}
}

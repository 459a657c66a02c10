package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAccountType(t *testing.T) {
	cases := []struct {
		in   string
		want AccountType
		ok   bool
	}{
		{"COURANT", Current, true},
		{"epargne", Savings, true},
		{"", Current, true},
		{"CHEQUE", Current, false},
	}
	for _, tc := range cases {
		got, err := ParseAccountType(tc.in, Current)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseTransactionKind(t *testing.T) {
	if k, err := ParseTransactionKind(""); err != nil || k != Deposit {
		t.Fatalf("empty kind should default to deposit, got %s (err=%v)", k, err)
	}
	if k, err := ParseTransactionKind("retrait"); err != nil || k != Withdrawal {
		t.Fatalf("expected withdrawal, got %s (err=%v)", k, err)
	}
	if _, err := ParseTransactionKind("VIREMENT"); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}

func TestTransactionKindPresentation(t *testing.T) {
	if Withdrawal.CSSClass() != "retrait" {
		t.Fatalf("unexpected css class %q", Withdrawal.CSSClass())
	}
	if Deposit.String() != "DEPOT" {
		t.Fatalf("label must stay uppercase, got %q", Deposit.String())
	}
}

func TestTransactionDisplayAmount(t *testing.T) {
	tests := []struct {
		kind TransactionKind
		want string
	}{
		{Withdrawal, "-20.00 MAD"},
		{Deposit, "+20.00 MAD"},
	}
	for _, tt := range tests {
		tx := Transaction{Amount: decimal.NewFromInt(20), Kind: tt.kind}
		if got := tx.DisplayAmount(); got != tt.want {
			t.Errorf("%s: DisplayAmount() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestInputValidate(t *testing.T) {
	good := AccountInput{Balance: 100, Type: Current, CreationDate: "2024-01-01"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []AccountInput{
		{Balance: 1, Type: "X", CreationDate: "2024-01-01"},
		{Balance: 1, Type: Savings, CreationDate: ""},
		{Balance: 1, Type: Savings, CreationDate: "01/01/2024"},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	if err := (TransactionInput{AccountID: "1", Kind: Deposit}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (TransactionInput{AccountID: " ", Kind: Deposit}).Validate(); err != ErrEmptyAccountID {
		t.Fatalf("expected ErrEmptyAccountID, got %v", err)
	}
}

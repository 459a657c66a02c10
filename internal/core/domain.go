package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Current AccountType = "COURANT"
	Savings AccountType = "EPARGNE"
)

const (
	Deposit    TransactionKind = "DEPOT"
	Withdrawal TransactionKind = "RETRAIT"
)

type (
	AccountID string

	AccountType string

	TransactionKind string

	Date struct {
		time.Time
	}

	Account struct {
		ID           AccountID
		Balance      decimal.Decimal // server-computed, never derived locally
		CreationDate Date
		RawDate      string // wire value, kept when it cannot be parsed
		Type         AccountType
	}

	Transaction struct {
		ID           string
		Amount       decimal.Decimal // always non-negative, sign comes from Kind
		Kind         TransactionKind
		Timestamp    time.Time
		RawTimestamp string
		Description  string
	}

	// Stats is the aggregate computed server-side over all accounts.
	Stats struct {
		Count   int
		Sum     decimal.Decimal
		Average decimal.Decimal
	}

	AccountInput struct {
		Balance      float64
		Type         AccountType
		CreationDate string // YYYY-MM-DD
	}

	TransactionInput struct {
		AccountID   AccountID
		Amount      float64
		Kind        TransactionKind
		Description string
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrEmptyAccountID     = errors.New("empty account id")
	ErrInvalidDate        = errors.New("invalid date")
)

// AccountTypes lists the selectable account types in display order.
func AccountTypes() []AccountType {
	return []AccountType{Current, Savings}
}

// TransactionKinds lists the selectable transaction kinds in display order.
func TransactionKinds() []TransactionKind {
	return []TransactionKind{Deposit, Withdrawal}
}

func (t AccountType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the enumerated account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Current, Savings:
		return true
	default:
		return false
	}
}

// Label is the human label shown in selectors.
func (t AccountType) Label() string {
	switch t {
	case Current:
		return "Courant"
	case Savings:
		return "Épargne"
	default:
		return string(t)
	}
}

// ParseAccountType normalizes s and falls back to def when s is empty.
func ParseAccountType(s string, def AccountType) (AccountType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	t := AccountType(s)
	if !t.IsValid() {
		return def, ErrInvalidAccountType
	}
	return t, nil
}

func (k TransactionKind) String() string {
	return string(k)
}

func (k TransactionKind) IsValid() bool {
	switch k {
	case Deposit, Withdrawal:
		return true
	default:
		return false
	}
}

func (k TransactionKind) Label() string {
	switch k {
	case Deposit:
		return "Dépôt"
	case Withdrawal:
		return "Retrait"
	default:
		return string(k)
	}
}

// CSSClass is the lower-cased discriminator used for styling.
func (k TransactionKind) CSSClass() string {
	return strings.ToLower(string(k))
}

// ParseTransactionKind normalizes s, defaulting to Deposit when empty.
func ParseTransactionKind(s string) (TransactionKind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Deposit, nil
	}
	k := TransactionKind(s)
	if !k.IsValid() {
		return Deposit, ErrInvalidKind
	}
	return k, nil
}

// String returns the canonical string form of the identifier.
func (id AccountID) String() string {
	return string(id)
}

func (id AccountID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ISO returns the date as YYYY-MM-DD, the format the date input control uses.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (in AccountInput) Validate() error {
	if !in.Type.IsValid() {
		return ErrInvalidAccountType
	}
	if _, err := ParseDate(in.CreationDate); err != nil {
		return err
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if in.AccountID.IsEmpty() {
		return ErrEmptyAccountID
	}
	if !in.Kind.IsValid() {
		return ErrInvalidKind
	}
	return nil
}

// DisplayAmount renders the amount with the sign implied by the transaction kind.
func (t Transaction) DisplayAmount() string {
	return SignedAmount(t.Kind, t.Amount)
}

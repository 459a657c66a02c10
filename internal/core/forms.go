package core

import "time"

// AccountDraft holds the raw text of the account creation form so that a
// failed submission can be rendered again with the user's values.
type AccountDraft struct {
	Balance      string
	Type         AccountType
	CreationDate string
}

// NewAccountDraft returns the defaults shown when the form opens at now.
func NewAccountDraft(now time.Time) AccountDraft {
	return AccountDraft{
		Type:         Current,
		CreationDate: now.Format(dateLayout),
	}
}

// Input converts the draft into the mutation input. The balance text is
// parsed into a float at this point and nowhere earlier.
func (d AccountDraft) Input() (AccountInput, error) {
	balance, err := ParseAmount(d.Balance)
	if err != nil {
		return AccountInput{}, err
	}
	in := AccountInput{
		Balance:      balance,
		Type:         d.Type,
		CreationDate: d.CreationDate,
	}
	if err := in.Validate(); err != nil {
		return AccountInput{}, err
	}
	return in, nil
}

// TransactionDraft holds the raw text of the transaction creation form.
type TransactionDraft struct {
	Amount      string
	Kind        TransactionKind
	Description string
}

// NewTransactionDraft returns the defaults of a freshly opened form.
func NewTransactionDraft() TransactionDraft {
	return TransactionDraft{Kind: Deposit}
}

// Input builds the mutation input for the given account.
func (d TransactionDraft) Input(accountID AccountID) (TransactionInput, error) {
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return TransactionInput{}, err
	}
	in := TransactionInput{
		AccountID:   accountID,
		Amount:      amount,
		Kind:        d.Kind,
		Description: d.Description,
	}
	if err := in.Validate(); err != nil {
		return TransactionInput{}, err
	}
	return in, nil
}

package api

import (
	"context"
	"errors"

	"comptes/internal/core"
)

// Ports for outbound adapters.
type (
	AccountReader interface {
		// AllAccounts returns every account in server order.
		AllAccounts(ctx context.Context) ([]core.Account, error)
		// AccountsByType returns only the accounts of the given type.
		AccountsByType(ctx context.Context, t core.AccountType) ([]core.Account, error)
	}

	AccountWriter interface {
		CreateAccount(ctx context.Context, in core.AccountInput) (core.Account, error)
		// DeleteAccount reports the server's success flag; false is not an error.
		DeleteAccount(ctx context.Context, id core.AccountID) (bool, error)
	}

	// StatsReader provides the aggregate computed over all accounts.
	StatsReader interface {
		TotalBalanceStats(ctx context.Context) (core.Stats, error)
	}

	TransactionReader interface {
		TransactionsByAccount(ctx context.Context, id core.AccountID) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	}
)

// Errors reported by the in-process backends. The remote API reports its
// own failures as GraphQL errors.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

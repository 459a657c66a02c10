package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"comptes/internal/api"
	"comptes/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the offline backend. It applies balance updates on the
// server side of the contract, exactly as the remote API does.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var (
	_ api.AccountReader     = (*SQLiteRepository)(nil)
	_ api.AccountWriter     = (*SQLiteRepository)(nil)
	_ api.StatsReader       = (*SQLiteRepository)(nil)
	_ api.TransactionReader = (*SQLiteRepository)(nil)
	_ api.TransactionWriter = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps balance updates serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AllAccounts implements api.AccountReader
func (r *SQLiteRepository) AllAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accountsFromRows(rows), nil
}

// AccountsByType implements api.AccountReader
func (r *SQLiteRepository) AccountsByType(ctx context.Context, t core.AccountType) ([]core.Account, error) {
	rows, err := r.queries.ListAccountsByType(ctx, t.String())
	if err != nil {
		return nil, fmt.Errorf("list accounts by type %s: %w", t, err)
	}
	return accountsFromRows(rows), nil
}

// TotalBalanceStats implements api.StatsReader
func (r *SQLiteRepository) TotalBalanceStats(ctx context.Context) (core.Stats, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return core.Stats{}, fmt.Errorf("list accounts for stats: %w", err)
	}
	st := core.Stats{Count: len(rows), Sum: decimal.Zero, Average: decimal.Zero}
	for _, a := range accountsFromRows(rows) {
		st.Sum = st.Sum.Add(a.Balance)
	}
	if st.Count > 0 {
		st.Average = st.Sum.Div(decimal.NewFromInt(int64(st.Count)))
	}
	return st, nil
}

// TransactionsByAccount implements api.TransactionReader
func (r *SQLiteRepository) TransactionsByAccount(ctx context.Context, id core.AccountID) ([]core.Transaction, error) {
	accountID, err := parseID(id)
	if err != nil {
		return []core.Transaction{}, nil
	}
	rows, err := r.queries.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for account %s: %w", id, err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, transactionFromRow(row))
	}
	return out, nil
}

// CreateAccount implements api.AccountWriter
func (r *SQLiteRepository) CreateAccount(ctx context.Context, in core.AccountInput) (core.Account, error) {
	if err := in.Validate(); err != nil {
		return core.Account{}, err
	}
	date, _ := core.ParseDate(in.CreationDate)
	row, err := r.queries.CreateAccount(ctx, CreateAccountParams{
		Balance:      decimal.NewFromFloat(in.Balance).String(),
		CreationDate: date.ISO(),
		Type:         in.Type.String(),
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved to SQLite",
		"id", row.ID,
		"type", row.Type,
		"balance", row.Balance)

	return accountFromRow(row), nil
}

// DeleteAccount implements api.AccountWriter. Unknown ids report false.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id core.AccountID) (bool, error) {
	accountID, err := parseID(id)
	if err != nil {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAccountTransactions(ctx, accountID); err != nil {
		return false, fmt.Errorf("delete transactions of account %d: %w", accountID, err)
	}
	n, err := q.DeleteAccount(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("delete account %d: %w", accountID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "Account deleted from SQLite", "id", accountID)
	}
	return n > 0, nil
}

// CreateTransaction implements api.TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if in.Amount <= 0 {
		return core.Transaction{}, api.ErrNonPositiveAmount
	}
	accountID, err := parseID(in.AccountID)
	if err != nil {
		return core.Transaction{}, api.ErrAccountNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	acc, err := q.GetAccount(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, api.ErrAccountNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get account %d: %w", accountID, err)
	}

	balance, err := decimal.NewFromString(acc.Balance)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode balance of account %d: %w", accountID, err)
	}
	amount := decimal.NewFromFloat(in.Amount)
	if in.Kind == core.Withdrawal {
		if balance.LessThan(amount) {
			return core.Transaction{}, api.ErrInsufficientFunds
		}
		balance = balance.Sub(amount)
	} else {
		balance = balance.Add(amount)
	}

	if err := q.UpdateAccountBalance(ctx, accountID, balance.String()); err != nil {
		return core.Transaction{}, fmt.Errorf("update balance of account %d: %w", accountID, err)
	}
	row, err := q.CreateTransaction(ctx, CreateTransactionParams{
		AccountID:   accountID,
		Amount:      amount.String(),
		Kind:        in.Kind.String(),
		CreatedAt:   r.now().UTC().Format(time.RFC3339),
		Description: in.Description,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"account_id", accountID,
		"kind", row.Kind,
		"amount", row.Amount,
		"balance", balance.String())

	return transactionFromRow(row), nil
}

func parseID(id core.AccountID) (int64, error) {
	return strconv.ParseInt(id.String(), 10, 64)
}

func accountFromRow(row AccountRow) core.Account {
	a := core.Account{
		ID:      core.AccountID(strconv.FormatInt(row.ID, 10)),
		RawDate: row.CreationDate,
		Type:    core.AccountType(row.Type),
	}
	if b, err := decimal.NewFromString(row.Balance); err == nil {
		a.Balance = b
	}
	if d, err := core.ParseDate(row.CreationDate); err == nil {
		a.CreationDate = d
	}
	return a
}

func accountsFromRows(rows []AccountRow) []core.Account {
	out := make([]core.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, accountFromRow(row))
	}
	return out
}

func transactionFromRow(row TransactionRow) core.Transaction {
	t := core.Transaction{
		ID:           strconv.FormatInt(row.ID, 10),
		Kind:         core.TransactionKind(row.Kind),
		RawTimestamp: row.CreatedAt,
		Description:  row.Description,
	}
	if a, err := decimal.NewFromString(row.Amount); err == nil {
		t.Amount = a
	}
	if ts, err := core.ParseTimestamp(row.CreatedAt); err == nil {
		t.Timestamp = ts
	}
	return t
}

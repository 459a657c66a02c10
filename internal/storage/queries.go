package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type AccountRow struct {
	ID           int64
	Balance      string
	CreationDate string
	Type         string
}

type TransactionRow struct {
	ID          int64
	AccountID   int64
	Amount      string
	Kind        string
	CreatedAt   string
	Description string
}

const listAccounts = `SELECT id, balance, creation_date, type FROM accounts ORDER BY id`

func (q *Queries) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

const listAccountsByType = `SELECT id, balance, creation_date, type FROM accounts WHERE type = ? ORDER BY id`

func (q *Queries) ListAccountsByType(ctx context.Context, accountType string) ([]AccountRow, error) {
	rows, err := q.db.QueryContext(ctx, listAccountsByType, accountType)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

const getAccount = `SELECT id, balance, creation_date, type FROM accounts WHERE id = ?`

func (q *Queries) GetAccount(ctx context.Context, id int64) (AccountRow, error) {
	var a AccountRow
	err := q.db.QueryRowContext(ctx, getAccount, id).Scan(&a.ID, &a.Balance, &a.CreationDate, &a.Type)
	return a, err
}

const createAccount = `INSERT INTO accounts (balance, creation_date, type) VALUES (?, ?, ?)
RETURNING id, balance, creation_date, type`

type CreateAccountParams struct {
	Balance      string
	CreationDate string
	Type         string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (AccountRow, error) {
	var a AccountRow
	err := q.db.QueryRowContext(ctx, createAccount, arg.Balance, arg.CreationDate, arg.Type).
		Scan(&a.ID, &a.Balance, &a.CreationDate, &a.Type)
	return a, err
}

const updateAccountBalance = `UPDATE accounts SET balance = ? WHERE id = ?`

func (q *Queries) UpdateAccountBalance(ctx context.Context, id int64, balance string) error {
	_, err := q.db.ExecContext(ctx, updateAccountBalance, balance, id)
	return err
}

const deleteAccount = `DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAccountTransactions = `DELETE FROM transactions WHERE account_id = ?`

func (q *Queries) DeleteAccountTransactions(ctx context.Context, accountID int64) error {
	_, err := q.db.ExecContext(ctx, deleteAccountTransactions, accountID)
	return err
}

const listTransactions = `SELECT id, account_id, amount, kind, created_at, description
FROM transactions WHERE account_id = ? ORDER BY id`

func (q *Queries) ListTransactions(ctx context.Context, accountID int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TransactionRow
	for rows.Next() {
		var t TransactionRow
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.CreatedAt, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const createTransaction = `INSERT INTO transactions (account_id, amount, kind, created_at, description)
VALUES (?, ?, ?, ?, ?)
RETURNING id, account_id, amount, kind, created_at, description`

type CreateTransactionParams struct {
	AccountID   int64
	Amount      string
	Kind        string
	CreatedAt   string
	Description string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	var t TransactionRow
	err := q.db.QueryRowContext(ctx, createTransaction,
		arg.AccountID, arg.Amount, arg.Kind, arg.CreatedAt, arg.Description,
	).Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.CreatedAt, &t.Description)
	return t, err
}

func scanAccounts(rows *sql.Rows) ([]AccountRow, error) {
	defer rows.Close()
	var out []AccountRow
	for rows.Next() {
		var a AccountRow
		if err := rows.Scan(&a.ID, &a.Balance, &a.CreationDate, &a.Type); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

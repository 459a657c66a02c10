package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	mbgraphql "github.com/machinebox/graphql"
	"github.com/shopspring/decimal"

	"comptes/internal/api"
	"comptes/internal/core"
	applog "comptes/internal/log"
)

// Client talks to the remote GraphQL API.
type Client struct {
	gql      *mbgraphql.Client
	endpoint string
	logger   *applog.Logger
}

// Ensure interface conformance
var (
	_ api.AccountReader     = (*Client)(nil)
	_ api.AccountWriter     = (*Client)(nil)
	_ api.StatsReader       = (*Client)(nil)
	_ api.TransactionReader = (*Client)(nil)
	_ api.TransactionWriter = (*Client)(nil)
)

// New creates a client for endpoint. A nil httpClient gets a client with
// the given timeout; the timeout belongs to the transport, not to callers.
func New(endpoint string, httpClient *http.Client, timeout time.Duration, logger *applog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("missing GraphQL endpoint")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentGraphQL)

	gql := mbgraphql.NewClient(endpoint, mbgraphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) {
		logger.Debug("GraphQL exchange", "message", s)
	}
	return &Client{gql: gql, endpoint: endpoint, logger: logger}, nil
}

// Endpoint returns the URL this client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type (
	// flexID accepts both string and numeric identifiers and keeps their canonical string form.
	flexID string

	accountDTO struct {
		ID           flexID          `json:"id"`
		Balance      decimal.Decimal `json:"solde"`
		CreationDate string          `json:"dateCreation"`
		Type         string          `json:"type"`
	}

	transactionDTO struct {
		ID          flexID          `json:"id"`
		Amount      decimal.Decimal `json:"montant"`
		Kind        string          `json:"type"`
		Timestamp   string          `json:"dateTransaction"`
		Description *string         `json:"description"`
	}

	statsDTO struct {
		Count   int             `json:"count"`
		Sum     decimal.Decimal `json:"sum"`
		Average decimal.Decimal `json:"average"`
	}
)

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

func (d accountDTO) toCore() core.Account {
	a := core.Account{
		ID:      core.AccountID(d.ID),
		Balance: d.Balance,
		RawDate: d.CreationDate,
		Type:    core.AccountType(d.Type),
	}
	if date, err := core.ParseDate(d.CreationDate); err == nil {
		a.CreationDate = date
	}
	return a
}

func (d transactionDTO) toCore() core.Transaction {
	t := core.Transaction{
		ID:           string(d.ID),
		Amount:       d.Amount,
		Kind:         core.TransactionKind(d.Kind),
		RawTimestamp: d.Timestamp,
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if ts, err := core.ParseTimestamp(d.Timestamp); err == nil {
		t.Timestamp = ts
	}
	return t
}

func accountsToCore(in []accountDTO) []core.Account {
	out := make([]core.Account, 0, len(in))
	for _, d := range in {
		out = append(out, d.toCore())
	}
	return out
}

func (c *Client) run(ctx context.Context, op string, req *mbgraphql.Request, resp any) error {
	start := time.Now()
	if err := c.gql.Run(ctx, req, resp); err != nil {
		c.logger.WarnContext(ctx, "GraphQL operation failed",
			applog.FieldOperation, op,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldError, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	c.logger.DebugContext(ctx, "GraphQL operation completed",
		applog.FieldOperation, op,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// AllAccounts implements api.AccountReader
func (c *Client) AllAccounts(ctx context.Context) ([]core.Account, error) {
	var resp struct {
		AllComptes []accountDTO `json:"allComptes"`
	}
	if err := c.run(ctx, "AllAccounts", mbgraphql.NewRequest(queryAllAccounts), &resp); err != nil {
		return nil, err
	}
	return accountsToCore(resp.AllComptes), nil
}

// AccountsByType implements api.AccountReader
func (c *Client) AccountsByType(ctx context.Context, t core.AccountType) ([]core.Account, error) {
	req := mbgraphql.NewRequest(queryAccountsByType)
	req.Var("type", t.String())
	var resp struct {
		ComptesByType []accountDTO `json:"comptesByType"`
	}
	if err := c.run(ctx, "AccountsByType", req, &resp); err != nil {
		return nil, err
	}
	return accountsToCore(resp.ComptesByType), nil
}

// TotalBalanceStats implements api.StatsReader
func (c *Client) TotalBalanceStats(ctx context.Context) (core.Stats, error) {
	var resp struct {
		TotalSolde statsDTO `json:"totalSolde"`
	}
	if err := c.run(ctx, "TotalBalanceStats", mbgraphql.NewRequest(queryTotalBalanceStats), &resp); err != nil {
		return core.Stats{}, err
	}
	return core.Stats{
		Count:   resp.TotalSolde.Count,
		Sum:     resp.TotalSolde.Sum,
		Average: resp.TotalSolde.Average,
	}, nil
}

// TransactionsByAccount implements api.TransactionReader
func (c *Client) TransactionsByAccount(ctx context.Context, id core.AccountID) ([]core.Transaction, error) {
	req := mbgraphql.NewRequest(queryTransactionsByAccount)
	req.Var("compteId", id.String())
	var resp struct {
		TransactionsByCompte []transactionDTO `json:"transactionsByCompte"`
	}
	if err := c.run(ctx, "TransactionsByAccount", req, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(resp.TransactionsByCompte))
	for _, d := range resp.TransactionsByCompte {
		out = append(out, d.toCore())
	}
	return out, nil
}

// CreateAccount implements api.AccountWriter
func (c *Client) CreateAccount(ctx context.Context, in core.AccountInput) (core.Account, error) {
	req := mbgraphql.NewRequest(mutationCreateAccount)
	req.Var("compteInput", map[string]any{
		"solde":        in.Balance,
		"type":         in.Type.String(),
		"dateCreation": in.CreationDate,
	})
	var resp struct {
		SaveCompte accountDTO `json:"saveCompte"`
	}
	if err := c.run(ctx, "CreateAccount", req, &resp); err != nil {
		return core.Account{}, err
	}
	return resp.SaveCompte.toCore(), nil
}

// DeleteAccount implements api.AccountWriter
func (c *Client) DeleteAccount(ctx context.Context, id core.AccountID) (bool, error) {
	req := mbgraphql.NewRequest(mutationDeleteAccount)
	req.Var("id", id.String())
	var resp struct {
		DeleteCompte bool `json:"deleteCompte"`
	}
	if err := c.run(ctx, "DeleteAccount", req, &resp); err != nil {
		return false, err
	}
	return resp.DeleteCompte, nil
}

// CreateTransaction implements api.TransactionWriter
func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	req := mbgraphql.NewRequest(mutationCreateTransaction)
	req.Var("transaction", map[string]any{
		"compteId":    in.AccountID.String(),
		"montant":     in.Amount,
		"type":        in.Kind.String(),
		"description": in.Description,
	})
	var resp struct {
		AddTransaction transactionDTO `json:"addTransaction"`
	}
	if err := c.run(ctx, "CreateTransaction", req, &resp); err != nil {
		return core.Transaction{}, err
	}
	return resp.AddTransaction.toCore(), nil
}

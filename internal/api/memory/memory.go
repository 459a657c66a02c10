package memory

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"comptes/internal/api"
	"comptes/internal/core"
)

// SeedFile is read from the seed directory, one account per line:
// TYPE;balance;YYYY-MM-DD
const SeedFile = "seed_accounts.txt"

// Store is an in-process backend honoring the same contract as the remote API.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	nextAcc  int
	nextTx   int
	accounts []core.Account
	txs      map[core.AccountID][]core.Transaction
}

var (
	_ api.AccountReader     = (*Store)(nil)
	_ api.AccountWriter     = (*Store)(nil)
	_ api.StatsReader       = (*Store)(nil)
	_ api.TransactionReader = (*Store)(nil)
	_ api.TransactionWriter = (*Store)(nil)
)

func New(seed []core.AccountInput) *Store {
	s := &Store{now: time.Now, txs: map[core.AccountID][]core.Transaction{}}
	for _, in := range seed {
		if _, err := s.CreateAccount(context.Background(), in); err != nil {
			slog.Warn("Skipping invalid seed account", "component", "memory", "error", err)
		}
	}
	return s
}

// NewFromFiles seeds the store from base/seed_accounts.txt, falling back to a
// couple of demo accounts when the file is missing or empty.
func NewFromFiles(base string) *Store {
	seed := readSeed(filepath.Join(base, SeedFile))
	if len(seed) == 0 {
		today := time.Now().Format("2006-01-02")
		seed = []core.AccountInput{
			{Balance: 1500, Type: core.Current, CreationDate: today},
			{Balance: 8000, Type: core.Savings, CreationDate: today},
		}
	}
	return New(seed)
}

// WithClock replaces the time source used for transaction timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) AllAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) AccountsByType(_ context.Context, t core.AccountType) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Account{}
	for _, a := range s.accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) TotalBalanceStats(_ context.Context) (core.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := core.Stats{Count: len(s.accounts), Sum: decimal.Zero, Average: decimal.Zero}
	for _, a := range s.accounts {
		st.Sum = st.Sum.Add(a.Balance)
	}
	if st.Count > 0 {
		st.Average = st.Sum.Div(decimal.NewFromInt(int64(st.Count)))
	}
	return st, nil
}

func (s *Store) TransactionsByAccount(_ context.Context, id core.AccountID) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.txs[id]...), nil
}

func (s *Store) CreateAccount(_ context.Context, in core.AccountInput) (core.Account, error) {
	if err := in.Validate(); err != nil {
		return core.Account{}, err
	}
	date, _ := core.ParseDate(in.CreationDate)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAcc++
	a := core.Account{
		ID:           core.AccountID(strconv.Itoa(s.nextAcc)),
		Balance:      decimal.NewFromFloat(in.Balance),
		CreationDate: date,
		RawDate:      date.ISO(),
		Type:         in.Type,
	}
	s.accounts = append(s.accounts, a)
	return a, nil
}

// DeleteAccount removes the account and its transactions. Unknown ids report false.
func (s *Store) DeleteAccount(_ context.Context, id core.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			delete(s.txs, id)
			return true, nil
		}
	}
	return false, nil
}

// CreateTransaction records the movement and applies it to the account balance.
func (s *Store) CreateTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if in.Amount <= 0 {
		return core.Transaction{}, api.ErrNonPositiveAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, a := range s.accounts {
		if a.ID == in.AccountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Transaction{}, api.ErrAccountNotFound
	}
	amount := decimal.NewFromFloat(in.Amount)
	acc := &s.accounts[idx]
	if in.Kind == core.Withdrawal {
		if acc.Balance.LessThan(amount) {
			return core.Transaction{}, api.ErrInsufficientFunds
		}
		acc.Balance = acc.Balance.Sub(amount)
	} else {
		acc.Balance = acc.Balance.Add(amount)
	}
	s.nextTx++
	ts := s.now().UTC().Truncate(time.Second)
	tx := core.Transaction{
		ID:           strconv.Itoa(s.nextTx),
		Amount:       amount,
		Kind:         in.Kind,
		Timestamp:    ts,
		RawTimestamp: ts.Format(time.RFC3339),
		Description:  in.Description,
	}
	s.txs[in.AccountID] = append(s.txs[in.AccountID], tx)
	return tx, nil
}

func readSeed(path string) []core.AccountInput {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.AccountInput
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) != 3 {
			continue
		}
		t, err := core.ParseAccountType(parts[0], core.Current)
		if err != nil {
			continue
		}
		balance, err := core.ParseAmount(parts[1])
		if err != nil {
			continue
		}
		out = append(out, core.AccountInput{Balance: balance, Type: t, CreationDate: strings.TrimSpace(parts[2])})
	}
	return out
}

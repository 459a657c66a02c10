// Package datasource is the process-wide data-access context shared by every
// UI unit. It serves reads cache-first, runs the invalidation list declared
// by each mutation call site, and reports refetch failures apart from the
// mutation result.
package datasource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"comptes/internal/backend"
	"comptes/internal/cache"
	"comptes/internal/core"
	applog "comptes/internal/log"
)

// Broadcaster forwards invalidated view keys to other replicas.
type Broadcaster interface {
	PublishInvalidation(ctx context.Context, keys []string) error
}

// Options sizes the read caches.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Outcome describes what happened after a mutation succeeded.
type Outcome struct {
	// Invalidated lists the views dropped and reloaded, in call-site order.
	Invalidated []View
	// RefetchErr is set when one of the reloads failed. The mutation itself succeeded.
	RefetchErr error
}

// Events returns the browser events for every invalidated view, without duplicates.
func (o Outcome) Events() []string {
	seen := make(map[string]struct{}, len(o.Invalidated))
	out := make([]string, 0, len(o.Invalidated))
	for _, v := range o.Invalidated {
		ev := v.Event()
		if ev == "" {
			continue
		}
		if _, ok := seen[ev]; ok {
			continue
		}
		seen[ev] = struct{}{}
		out = append(out, ev)
	}
	return out
}

// CacheStats aggregates hit and miss counters of every read cache.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

type Client struct {
	backend backend.Backend
	logger  *applog.Logger

	accounts     *cache.LRUCache[[]core.Account]
	stats        *cache.LRUCache[core.Stats]
	transactions *cache.LRUCache[[]core.Transaction]

	seqMu sync.Mutex
	seq   map[string]uint64

	bcMu        sync.RWMutex
	broadcaster Broadcaster
}

func New(b backend.Backend, opts Options, logger *applog.Logger) *Client {
	if opts.CacheSize < 1 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Client{
		backend:      b,
		logger:       logger.WithComponent(applog.ComponentDataSource),
		accounts:     cache.NewLRUCache[[]core.Account](opts.CacheSize, opts.CacheTTL),
		stats:        cache.NewLRUCache[core.Stats](4, opts.CacheTTL),
		transactions: cache.NewLRUCache[[]core.Transaction](opts.CacheSize, opts.CacheTTL),
		seq:          make(map[string]uint64),
	}
}

// SetBroadcaster attaches the cross-replica publisher. A nil value detaches it.
func (c *Client) SetBroadcaster(b Broadcaster) {
	c.bcMu.Lock()
	defer c.bcMu.Unlock()
	c.broadcaster = b
}

// RegisterCaches hands the read caches to a cleanup manager.
func (c *Client) RegisterCaches(m *cache.Manager) {
	m.Register("accounts", c.accounts)
	m.Register("stats", c.stats)
	m.Register("transactions", c.transactions)
}

func (c *Client) CacheStats() CacheStats {
	var out CacheStats
	for _, s := range []interface {
		Stats() (uint64, uint64)
		Size() int
	}{c.accounts, c.stats, c.transactions} {
		h, m := s.Stats()
		out.Hits += h
		out.Misses += m
		out.Size += s.Size()
	}
	return out
}

// begin registers a new fetch of key and returns its sequence number.
func (c *Client) begin(key string) uint64 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	c.seq[key]++
	return c.seq[key]
}

// latest reports whether seq is still the most recent fetch of key.
func (c *Client) latest(key string, seq uint64) bool {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	return c.seq[key] == seq
}

// load fetches a view and stores the result only if no newer fetch of the
// same view started meanwhile.
func load[T any](ctx context.Context, c *Client, store *cache.LRUCache[T], key string, fetch func(context.Context) (T, error)) (T, error) {
	seq := c.begin(key)
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if c.latest(key, seq) {
		store.Set(key, v)
	} else {
		c.logger.DebugContext(ctx, "Dropping superseded fetch result", "view", key)
	}
	return v, nil
}

func read[T any](ctx context.Context, c *Client, store *cache.LRUCache[T], key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := store.Get(key); ok {
		return v, nil
	}
	return load(ctx, c, store, key, fetch)
}

// AllAccounts returns every account, cache-first.
func (c *Client) AllAccounts(ctx context.Context) ([]core.Account, error) {
	return read(ctx, c, c.accounts, AllAccounts().Key(), c.backend.AllAccounts)
}

// AccountsByType returns the accounts of one type, cache-first.
func (c *Client) AccountsByType(ctx context.Context, t core.AccountType) ([]core.Account, error) {
	return read(ctx, c, c.accounts, AccountsByType(t).Key(), func(ctx context.Context) ([]core.Account, error) {
		return c.backend.AccountsByType(ctx, t)
	})
}

func (c *Client) TotalBalanceStats(ctx context.Context) (core.Stats, error) {
	return read(ctx, c, c.stats, TotalBalanceStats().Key(), c.backend.TotalBalanceStats)
}

func (c *Client) TransactionsByAccount(ctx context.Context, id core.AccountID) ([]core.Transaction, error) {
	return read(ctx, c, c.transactions, TransactionsByAccount(id).Key(), func(ctx context.Context) ([]core.Transaction, error) {
		return c.backend.TransactionsByAccount(ctx, id)
	})
}

// Invalidate drops the named views from the cache without reloading them.
// Fetches already in flight for those views lose the right to write.
func (c *Client) Invalidate(views ...View) {
	for _, v := range views {
		key := v.Key()
		switch {
		case v.Kind == KindAccountsByType && v.Type == "":
			prefix := string(KindAccountsByType) + ":"
			for _, t := range core.AccountTypes() {
				c.begin(AccountsByType(t).Key())
			}
			c.accounts.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
		case v.Kind == KindTotalBalanceStats:
			c.begin(key)
			c.stats.Delete(key)
		case v.Kind == KindTransactionsByAccount:
			c.begin(key)
			c.transactions.Delete(key)
		default:
			c.begin(key)
			c.accounts.Delete(key)
		}
	}
}

// DropAll empties every read cache. Fetches in flight lose the right to
// write, so the next read of each view goes to the backend. A full page
// load starts here.
func (c *Client) DropAll() {
	c.seqMu.Lock()
	for k := range c.seq {
		c.seq[k]++
	}
	c.seqMu.Unlock()

	c.accounts.Clear()
	c.stats.Clear()
	c.transactions.Clear()
}

// Refetch drops and reloads the named views concurrently. It returns the
// first reload error; every view is dropped either way.
func (c *Client) Refetch(ctx context.Context, views ...View) error {
	c.Invalidate(views...)

	g, ctx := errgroup.WithContext(ctx)
	for _, v := range expand(views) {
		g.Go(func() error {
			return c.reload(ctx, v)
		})
	}
	return g.Wait()
}

func expand(views []View) []View {
	out := make([]View, 0, len(views))
	for _, v := range views {
		if v.Kind == KindAccountsByType && v.Type == "" {
			for _, t := range core.AccountTypes() {
				out = append(out, AccountsByType(t))
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

func (c *Client) reload(ctx context.Context, v View) error {
	var err error
	switch v.Kind {
	case KindAllAccounts:
		_, err = load(ctx, c, c.accounts, v.Key(), c.backend.AllAccounts)
	case KindAccountsByType:
		_, err = load(ctx, c, c.accounts, v.Key(), func(ctx context.Context) ([]core.Account, error) {
			return c.backend.AccountsByType(ctx, v.Type)
		})
	case KindTotalBalanceStats:
		_, err = load(ctx, c, c.stats, v.Key(), c.backend.TotalBalanceStats)
	case KindTransactionsByAccount:
		_, err = load(ctx, c, c.transactions, v.Key(), func(ctx context.Context) ([]core.Transaction, error) {
			return c.backend.TransactionsByAccount(ctx, v.Account)
		})
	default:
		return errors.New("unknown view " + v.Key())
	}
	if err != nil {
		return &RefetchError{View: v, Err: err}
	}
	return nil
}

// RefetchError names the view whose reload failed.
type RefetchError struct {
	View View
	Err  error
}

func (e *RefetchError) Error() string {
	return "refetch " + e.View.Key() + ": " + e.Err.Error()
}

func (e *RefetchError) Unwrap() error {
	return e.Err
}

// afterMutation marks the mutation's stale views, runs the call site's
// invalidation list and tells other replicas about both. Stale views are only
// dropped; they reload on their next read.
func (c *Client) afterMutation(ctx context.Context, invalidate, stale []View) Outcome {
	out := Outcome{Invalidated: append([]View(nil), invalidate...)}
	c.Invalidate(stale...)
	if len(invalidate) > 0 {
		out.RefetchErr = c.Refetch(ctx, invalidate...)
		if out.RefetchErr != nil {
			c.logger.WarnContext(ctx, "Refetch after mutation failed",
				applog.FieldViews, Keys(invalidate),
				applog.FieldError, out.RefetchErr)
		}
	}

	keys := uniqueKeys(invalidate, stale)
	if len(keys) == 0 {
		return out
	}
	c.bcMu.RLock()
	bc := c.broadcaster
	c.bcMu.RUnlock()
	if bc != nil {
		if err := bc.PublishInvalidation(ctx, keys); err != nil {
			c.logger.WarnContext(ctx, "Failed to broadcast invalidation",
				applog.FieldViews, keys,
				applog.FieldError, err)
		}
	}
	return out
}

func uniqueKeys(lists ...[]View) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, views := range lists {
		for _, v := range views {
			k := v.Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// CreateAccount saves a new account and then refetches the views named by
// the caller. The filtered lists go stale.
func (c *Client) CreateAccount(ctx context.Context, in core.AccountInput, invalidate ...View) (core.Account, Outcome, error) {
	acc, err := c.backend.CreateAccount(ctx, in)
	if err != nil {
		return core.Account{}, Outcome{}, err
	}
	return acc, c.afterMutation(ctx, invalidate, []View{AccountsByType("")}), nil
}

// DeleteAccount removes an account. The views are refetched only when the
// backend reports true; false is a logical failure, not an error.
func (c *Client) DeleteAccount(ctx context.Context, id core.AccountID, invalidate ...View) (bool, Outcome, error) {
	ok, err := c.backend.DeleteAccount(ctx, id)
	if err != nil {
		return false, Outcome{}, err
	}
	if !ok {
		return false, Outcome{}, nil
	}
	// The panel of a deleted account never reads again.
	c.transactions.Delete(TransactionsByAccount(id).Key())
	return true, c.afterMutation(ctx, invalidate, []View{AccountsByType(""), TotalBalanceStats()}), nil
}

// CreateTransaction records a transaction and then refetches the views named
// by the caller. Every view showing a balance goes stale.
func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput, invalidate ...View) (core.Transaction, Outcome, error) {
	tx, err := c.backend.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, Outcome{}, err
	}
	stale := []View{AllAccounts(), AccountsByType(""), TotalBalanceStats()}
	return tx, c.afterMutation(ctx, invalidate, stale), nil
}

// ApplyRemoteInvalidation drops the views another replica invalidated. They
// reload lazily on the next read. Unknown keys are skipped.
func (c *Client) ApplyRemoteInvalidation(keys []string) int {
	applied := 0
	for _, key := range keys {
		v, err := ParseView(key)
		if err != nil {
			c.logger.Warn("Ignoring unknown view in remote invalidation", "view", key, applog.FieldError, err)
			continue
		}
		c.Invalidate(v)
		applied++
	}
	return applied
}

// Ping checks that the backend answers the cheapest query.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.backend.TotalBalanceStats(ctx)
	return err
}

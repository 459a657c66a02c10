package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"comptes/internal/api/memory"
	"comptes/internal/core"
	"comptes/internal/datasource"
	"comptes/internal/ui"
)

// fakeBackend wraps the memory store, counts reads and injects failures.
type fakeBackend struct {
	*memory.Store
	mu        sync.Mutex
	calls     map[string]int
	byType    []core.AccountType
	failReads error
	deleteErr error
}

func (b *fakeBackend) record(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
	return b.failReads
}

func (b *fakeBackend) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) setFailReads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failReads = err
}

func (b *fakeBackend) AllAccounts(ctx context.Context) ([]core.Account, error) {
	if err := b.record("AllAccounts"); err != nil {
		return nil, err
	}
	return b.Store.AllAccounts(ctx)
}

func (b *fakeBackend) AccountsByType(ctx context.Context, t core.AccountType) ([]core.Account, error) {
	b.record("AccountsByType")
	b.mu.Lock()
	b.byType = append(b.byType, t)
	b.mu.Unlock()
	return b.Store.AccountsByType(ctx, t)
}

func (b *fakeBackend) TotalBalanceStats(ctx context.Context) (core.Stats, error) {
	if err := b.record("TotalBalanceStats"); err != nil {
		return core.Stats{}, err
	}
	return b.Store.TotalBalanceStats(ctx)
}

func (b *fakeBackend) DeleteAccount(ctx context.Context, id core.AccountID) (bool, error) {
	if b.deleteErr != nil {
		return false, b.deleteErr
	}
	return b.Store.DeleteAccount(ctx, id)
}

// testEnv plays one browser tab: it keeps the view id of its last page load.
type testEnv struct {
	t       *testing.T
	srv     *Server
	backend *fakeBackend
	viewID  string
}

func newTestEnv(t *testing.T, seed ...core.AccountInput) *testEnv {
	t.Helper()
	return newTestEnvWithLimit(t, 1000, seed...)
}

func newTestEnvWithLimit(t *testing.T, limit int, seed ...core.AccountInput) *testEnv {
	t.Helper()
	b := &fakeBackend{Store: memory.New(seed), calls: map[string]int{}}
	b.Store.WithClock(func() time.Time { return time.Date(2024, 2, 3, 14, 5, 6, 0, time.UTC) })
	data := datasource.New(b, datasource.Options{}, nil)
	srv := NewServer(":0", data, ui.NewStore(16, time.Hour), Options{
		RateLimitPerMinute: limit,
		Now:                func() time.Time { return time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) },
	})
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	if srv.templates == nil {
		t.Fatal("templates not parsed")
	}
	env := &testEnv{t: t, srv: srv, backend: b}
	env.load()
	return env
}

var viewIDAttr = regexp.MustCompile(`hx-headers='\{"X-View-ID": "([0-9a-f-]+)"\}'`)

// load performs a full page load and keeps the view id it issues.
func (e *testEnv) load() *httptest.ResponseRecorder {
	e.t.Helper()
	rr := e.do(http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		e.t.Fatalf("index status=%d", rr.Code)
	}
	m := viewIDAttr.FindStringSubmatch(rr.Body.String())
	if m == nil {
		e.t.Fatalf("index does not carry a view id: %s", rr.Body.String())
	}
	e.viewID = m[1]
	return rr
}

// newTab opens another page of the same server.
func (e *testEnv) newTab() *testEnv {
	e.t.Helper()
	tab := &testEnv{t: e.t, srv: e.srv, backend: e.backend}
	tab.load()
	return tab
}

func (e *testEnv) do(method, path, form string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept-Language", "fr-FR")
	if e.viewID != "" {
		req.Header.Set(ViewHeader, e.viewID)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func triggers(t *testing.T, rr *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	raw := rr.Header().Get("HX-Trigger")
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %q", raw)
	}
	return out
}

func account(balance float64, t core.AccountType) core.AccountInput {
	return core.AccountInput{Balance: balance, Type: t, CreationDate: "2024-01-01"}
}

func TestIndexRendersSlotsAndResetsSelection(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current))

	rr := env.load()
	body := rr.Body.String()
	for _, want := range []string{"Gestion des Comptes Bancaires", "Chargement...", `hx-get="/ui/accounts"`, "Ajouter un compte", `value="COURANT" selected`} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}

	env.do(http.MethodPost, "/ui/accounts/1/toggle", "")
	env.do(http.MethodPost, "/ui/account-form/toggle", "")
	env.do(http.MethodPost, "/ui/filter", "type=EPARGNE")

	body = env.load().Body.String()
	if strings.Contains(body, "Créer le compte") || !strings.Contains(body, `value="COURANT" selected`) {
		t.Fatalf("page load did not reset selection")
	}
	if rr := env.do(http.MethodGet, "/ui/accounts/1/transactions", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expanded account survived page load, status=%d", rr.Code)
	}
}

func TestAccountsList(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current), account(2.5, core.Savings))

	rr := env.do(http.MethodGet, "/ui/accounts", "")
	body := rr.Body.String()
	for _, want := range []string{"ID: 1", "Solde: 100.00 MAD", "Type: COURANT", "Date: 01/01/2024", "Solde: 2.50 MAD", `id="tx-panel-1"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("list missing %q:\n%s", want, body)
		}
	}

	env.backend.setFailReads(errors.New("connection refused"))
	env.srv.data.Invalidate(datasource.AllAccounts())
	body = env.do(http.MethodGet, "/ui/accounts", "").Body.String()
	if !strings.Contains(body, `<div class="error">Erreur : connection refused</div>`) {
		t.Fatalf("expected inline error, got %s", body)
	}
}

func TestToggleKeepsSingleSelection(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current), account(50, core.Current))

	rr := env.do(http.MethodPost, "/ui/accounts/1/toggle", "")
	body := rr.Body.String()
	if !strings.Contains(body, `id="tx-panel-1" class="tx-panel-slot" hx-swap-oob="true"`) ||
		!strings.Contains(body, `hx-get="/ui/accounts/1/transactions"`) {
		t.Fatalf("toggle did not mount panel 1: %s", body)
	}

	rr = env.do(http.MethodPost, "/ui/accounts/2/toggle", "")
	body = rr.Body.String()
	if !strings.Contains(body, `<div id="tx-panel-1" class="tx-panel-slot" hx-swap-oob="true"></div>`) {
		t.Fatalf("panel 1 not emptied: %s", body)
	}
	if !strings.Contains(body, `hx-get="/ui/accounts/2/transactions"`) {
		t.Fatalf("panel 2 not mounted: %s", body)
	}

	if rr := env.do(http.MethodGet, "/ui/accounts/1/transactions", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("collapsed panel served content, status=%d", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/ui/accounts/2/transactions", ""); rr.Code != http.StatusOK {
		t.Fatalf("expanded panel status=%d", rr.Code)
	}
	if env.backend.Calls("AllAccounts") != 0 {
		t.Fatalf("toggling must not fetch the list")
	}

	// Toggling the open account closes it.
	body = env.do(http.MethodPost, "/ui/accounts/2/toggle", "").Body.String()
	if strings.Contains(body, "hx-get") {
		t.Fatalf("panel 2 still mounted: %s", body)
	}
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current), account(50, core.Current))
	env.do(http.MethodGet, "/ui/accounts", "")
	env.do(http.MethodPost, "/ui/accounts/1/toggle", "")

	rr := env.do(http.MethodPost, "/ui/accounts/1/delete", "")
	tr := triggers(t, rr)
	if _, ok := tr["accounts:refetch"]; !ok {
		t.Fatalf("expected accounts:refetch, got %v", tr)
	}
	if _, ok := tr[EventShowAlert]; ok {
		t.Fatalf("unexpected alert on success")
	}
	if rr := env.do(http.MethodGet, "/ui/accounts/1/transactions", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("deleted account still expanded")
	}
	body := env.do(http.MethodGet, "/ui/accounts", "").Body.String()
	if strings.Contains(body, "ID: 1<") || !strings.Contains(body, "ID: 2") {
		t.Fatalf("list not refreshed after delete: %s", body)
	}
}

func TestDeleteAccountFailures(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		deleteErr error
		alert     string
	}{
		{"unknown id", "999", nil, msgDeleteRefused},
		{"transport error", "1", errors.New("network down"), msgDeleteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, account(100, core.Current))
			env.backend.deleteErr = tt.deleteErr
			env.do(http.MethodGet, "/ui/accounts", "")
			before := env.backend.Calls("AllAccounts")

			rr := env.do(http.MethodPost, "/ui/accounts/"+tt.id+"/delete", "")
			tr := triggers(t, rr)
			var alert struct{ Message string }
			if err := json.Unmarshal(tr[EventShowAlert], &alert); err != nil || alert.Message != tt.alert {
				t.Fatalf("alert = %s, want %q", tr[EventShowAlert], tt.alert)
			}
			if _, ok := tr["accounts:refetch"]; ok {
				t.Fatalf("failed delete must not refetch")
			}
			if env.backend.Calls("AllAccounts") != before {
				t.Fatalf("failed delete reloaded the list")
			}
		})
	}
}

func TestCreateAccountScenario(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/ui/stats", "")

	form := env.do(http.MethodPost, "/ui/account-form/toggle", "").Body.String()
	if !strings.Contains(form, `value="2024-05-06"`) || !strings.Contains(form, "Fermer") {
		t.Fatalf("form not opened with today's date: %s", form)
	}

	rr := env.do(http.MethodPost, "/ui/accounts", "balance=100.00&type=COURANT&creationDate=2024-01-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	tr := triggers(t, rr)
	for _, ev := range []string{"accounts:refetch", "stats:refetch"} {
		if _, ok := tr[ev]; !ok {
			t.Fatalf("missing %s in %v", ev, tr)
		}
	}
	if !strings.Contains(string(tr[EventShowNotification]), msgAccountCreated) {
		t.Fatalf("expected success notification, got %s", tr[EventShowNotification])
	}
	if !strings.Contains(rr.Body.String(), "Ajouter un compte") || strings.Contains(rr.Body.String(), "Créer le compte") {
		t.Fatalf("form not closed after success")
	}

	list := env.do(http.MethodGet, "/ui/accounts", "").Body.String()
	if !strings.Contains(list, "100.00 MAD") {
		t.Fatalf("new account missing from list: %s", list)
	}
	stats := env.do(http.MethodGet, "/ui/stats", "").Body.String()
	for _, want := range []string{`id="stat-count">1<`, `id="stat-sum">100 MAD<`, `id="stat-average">100.00 MAD<`} {
		if !strings.Contains(stats, want) {
			t.Fatalf("stats missing %q: %s", want, stats)
		}
	}
}

func TestCreateAccountKeepsDraftOnError(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/ui/account-form/toggle", "")

	rr := env.do(http.MethodPost, "/ui/accounts", "balance=abc&type=EPARGNE&creationDate=2024-01-01")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Erreur : montant invalide", `value="abc"`, `value="EPARGNE" selected`, "Créer le compte"} {
		if !strings.Contains(body, want) {
			t.Fatalf("form missing %q: %s", want, body)
		}
	}
	if len(triggers(t, rr)) != 0 {
		t.Fatalf("failed creation must not emit events")
	}
}

func TestCreateAccountRefetchFailureIsSeparate(t *testing.T) {
	env := newTestEnv(t)
	env.backend.setFailReads(errors.New("read timeout"))

	rr := env.do(http.MethodPost, "/ui/accounts", "balance=10&type=COURANT&creationDate=2024-01-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("mutation succeeded but status=%d", rr.Code)
	}
	tr := triggers(t, rr)
	if _, ok := tr[EventShowNotification]; !ok {
		t.Fatalf("expected refetch warning, got %v", tr)
	}
	if _, ok := tr["accounts:refetch"]; !ok {
		t.Fatalf("views must still be announced")
	}
	if env.srv.appMetrics.accountsCreated.Load() != 1 || env.srv.appMetrics.refetchFailures.Load() != 1 {
		t.Fatalf("unexpected counters")
	}
}

func TestTransactionScenario(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current))
	env.do(http.MethodPost, "/ui/accounts/1/toggle", "")

	panel := env.do(http.MethodPost, "/ui/accounts/1/transactions/form", "").Body.String()
	if !strings.Contains(panel, "Fermer") || !strings.Contains(panel, "Effectuer la transaction") {
		t.Fatalf("form not opened: %s", panel)
	}

	rr := env.do(http.MethodPost, "/ui/accounts/1/transactions", "amount=50&kind=RETRAIT&description=")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	tr := triggers(t, rr)
	if _, ok := tr["transactions-1:refetch"]; ok {
		t.Fatalf("the response already renders the panel, got %v", tr)
	}
	if !strings.Contains(string(tr[EventShowNotification]), `"type":"success"`) {
		t.Fatalf("expected success notification, got %s", tr[EventShowNotification])
	}
	var created struct {
		AccountID string `json:"accountId"`
	}
	if err := json.Unmarshal(tr[EventTransactionCreated], &created); err != nil || created.AccountID != "1" {
		t.Fatalf("transaction:created = %s", tr[EventTransactionCreated])
	}

	body := rr.Body.String()
	for _, want := range []string{`<div class="transaction-type retrait">RETRAIT</div>`, "-50.00 MAD", "03/02/2024 14:05:06", "Nouvelle Transaction"} {
		if !strings.Contains(body, want) {
			t.Fatalf("panel missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, "transaction-description") || strings.Contains(body, "Effectuer la transaction") {
		t.Fatalf("unexpected description line or open form: %s", body)
	}

	// The root listens to transaction:created and reloads the balances.
	rr = env.do(http.MethodPost, "/ui/accounts/refetch", "")
	if _, ok := triggers(t, rr)["accounts:refetch"]; !ok {
		t.Fatalf("refetch endpoint must announce the list")
	}
	if list := env.do(http.MethodGet, "/ui/accounts", "").Body.String(); !strings.Contains(list, "Solde: 50.00 MAD") {
		t.Fatalf("balance not refreshed: %s", list)
	}
}

func TestCreateTransactionFailures(t *testing.T) {
	tests := []struct {
		name   string
		form   string
		status int
		want   string
	}{
		{"invalid amount", "amount=abc&kind=DEPOT", http.StatusUnprocessableEntity, "Erreur : montant invalide"},
		{"invalid kind", "amount=5&kind=VIREMENT", http.StatusUnprocessableEntity, "Erreur : type de transaction invalide"},
		{"insufficient funds", "amount=500&kind=RETRAIT&description=loyer", http.StatusBadGateway, "Erreur : solde insuffisant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, account(100, core.Current))
			env.do(http.MethodPost, "/ui/accounts/1/toggle", "")
			env.do(http.MethodPost, "/ui/accounts/1/transactions/form", "")

			rr := env.do(http.MethodPost, "/ui/accounts/1/transactions", tt.form)
			if rr.Code != tt.status {
				t.Fatalf("status=%d, want %d", rr.Code, tt.status)
			}
			body := rr.Body.String()
			if !strings.Contains(body, tt.want) || !strings.Contains(body, "Effectuer la transaction") {
				t.Fatalf("expected open form with %q: %s", tt.want, body)
			}
			if _, ok := triggers(t, rr)[EventTransactionCreated]; ok {
				t.Fatalf("failure must not signal creation")
			}
		})
	}
}

func TestFilterSwitchFetchesOnlyNewType(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current), account(8000, core.Savings))

	body := env.do(http.MethodGet, "/ui/accounts-by-type", "").Body.String()
	if !strings.Contains(body, "Comptes de type COURANT") {
		t.Fatalf("default filter not COURANT: %s", body)
	}
	before := env.backend.Calls("AccountsByType")

	body = env.do(http.MethodPost, "/ui/filter", "type=EPARGNE").Body.String()
	if got := env.backend.Calls("AccountsByType") - before; got != 1 {
		t.Fatalf("expected exactly one fetch, got %d", got)
	}
	if last := env.backend.byType[len(env.backend.byType)-1]; last != core.Savings {
		t.Fatalf("fetched %s", last)
	}
	if !strings.Contains(body, "Comptes de type EPARGNE") || !strings.Contains(body, "8000.00 MAD") || strings.Contains(body, "100.00 MAD") {
		t.Fatalf("list not replaced: %s", body)
	}
}

func TestStatsError(t *testing.T) {
	env := newTestEnv(t)
	env.backend.setFailReads(errors.New("boom"))
	body := env.do(http.MethodGet, "/ui/stats", "").Body.String()
	if !strings.Contains(body, "Erreur : boom") {
		t.Fatalf("expected inline error: %s", body)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := env.do(http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
	rr := env.do(http.MethodGet, "/metrics", "")
	for _, want := range []string{"http_requests_total", "accounts_created_total 0", "active_views 1"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Fatalf("metrics missing %q", want)
		}
	}

	env.backend.setFailReads(errors.New("down"))
	if rr := env.do(http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing backend status=%d", rr.Code)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	env := newTestEnvWithLimit(t, 1)
	env.do(http.MethodPost, "/ui/account-form/toggle", "")
	rr := env.do(http.MethodPost, "/ui/account-form/toggle", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("missing Retry-After")
	}
	if rr := env.do(http.MethodGet, "/ui/stats", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, status=%d", rr.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/ui/stats", "")
	if rr.Header().Get("Content-Security-Policy") == "" || rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing headers: %v", rr.Header())
	}
}

func TestReloadShowsServerState(t *testing.T) {
	env := newTestEnv(t)

	env.do(http.MethodPost, "/ui/filter", "type=EPARGNE")
	rr := env.do(http.MethodPost, "/ui/accounts", "balance=42&type=EPARGNE&creationDate=2024-01-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d", rr.Code)
	}
	// The creation leaves the filtered lists stale, so the next read reloads them.
	if body := env.do(http.MethodGet, "/ui/accounts-by-type", "").Body.String(); !strings.Contains(body, "42.00 MAD") {
		t.Fatalf("filtered list missing the new account: %s", body)
	}

	// A change made outside this client shows up after a page load.
	if _, err := env.backend.Store.CreateAccount(context.Background(), account(7, core.Current)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.do(http.MethodGet, "/ui/accounts", "")
	before := env.backend.Calls("AllAccounts")
	env.load()
	list := env.do(http.MethodGet, "/ui/accounts", "").Body.String()
	if env.backend.Calls("AllAccounts") != before+1 || !strings.Contains(list, "Solde: 7.00 MAD") {
		t.Fatalf("page load did not reload the list (calls %d -> %d): %s", before, env.backend.Calls("AllAccounts"), list)
	}
	if body := env.do(http.MethodGet, "/ui/accounts-by-type", "").Body.String(); !strings.Contains(body, "7.00 MAD") {
		t.Fatalf("filtered list after reload: %s", body)
	}
}

func TestReloadShowsBalanceAfterTransaction(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current))
	env.do(http.MethodGet, "/ui/accounts-by-type", "")
	env.do(http.MethodGet, "/ui/stats", "")
	env.do(http.MethodPost, "/ui/accounts/1/toggle", "")

	rr := env.do(http.MethodPost, "/ui/accounts/1/transactions", "amount=50&kind=DEPOT")
	if rr.Code != http.StatusOK {
		t.Fatalf("deposit status=%d body=%s", rr.Code, rr.Body.String())
	}

	env.load()
	if body := env.do(http.MethodGet, "/ui/accounts-by-type", "").Body.String(); !strings.Contains(body, "150.00 MAD") {
		t.Fatalf("filtered list keeps the old balance: %s", body)
	}
	if body := env.do(http.MethodGet, "/ui/stats", "").Body.String(); !strings.Contains(body, `id="stat-sum">150 MAD<`) {
		t.Fatalf("stats keep the old sum: %s", body)
	}
}

func TestTabsKeepTheirOwnSelection(t *testing.T) {
	env := newTestEnv(t, account(100, core.Current))
	env.do(http.MethodPost, "/ui/accounts/1/toggle", "")

	other := env.newTab()
	if other.viewID == env.viewID {
		t.Fatal("each page load needs its own view id")
	}

	rr := env.do(http.MethodPost, "/ui/accounts/1/transactions/form", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Effectuer la transaction") {
		t.Fatalf("first tab lost its panel: status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr := other.do(http.MethodGet, "/ui/accounts/1/transactions", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("second tab sees the first tab's panel, status=%d", rr.Code)
	}
}

func TestPartialWithoutViewIDIsRejected(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []string{"", "not-a-uuid"} {
		req := httptest.NewRequest(http.MethodGet, "/ui/stats", nil)
		if id != "" {
			req.Header.Set(ViewHeader, id)
		}
		rr := httptest.NewRecorder()
		env.srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), msgViewExpired) {
			t.Fatalf("view id %q: status=%d body=%s", id, rr.Code, rr.Body.String())
		}
	}
}

func TestTrustedProxyOption(t *testing.T) {
	srv := NewServer(":0", datasource.New(memory.New(nil), datasource.Options{}, nil), ui.NewStore(4, time.Hour), Options{
		TrustedProxies: []string{"10.0.0.0/8", "bogus"},
	})
	t.Cleanup(func() { srv.rateLimiter.Stop() })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	if got := srv.securityDetector.ExtractClientIP(req); got != "198.51.100.9" {
		t.Fatalf("client ip = %q", got)
	}
}

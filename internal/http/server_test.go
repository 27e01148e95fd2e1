package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/services"
	"dompet/internal/store/memory"
	"dompet/internal/worker"
)

var testToday = core.NewDate(2024, 6, 15)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	if err := st.Load(memory.Seed{User: "u1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshots := cache.NewLoadingCache(100, time.Minute, services.NewSnapshotLoader(st).Load)
	l := services.NewLedger(st,
		services.WithNotifier(worker.NewCacheInvalidator(snapshots)),
		services.WithClock(func() core.Date { return testToday }),
	)
	srv := NewServer(":0", l, snapshots, Options{RateLimitPerMinute: 1000})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(t *testing.T, srv *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		if strings.HasPrefix(body, "{") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: missing request id", path)
		}
	}

	rr := do(t, srv, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "snapshot_cache_entries 0") {
		t.Errorf("metrics body missing cache gauge: %s", rr.Body.String())
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":25000,"category_id":"makan","wallet_id":"cash","note":"Nasi padang"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[core.Transaction](t, rr)
	if created.ID == "" {
		t.Error("created transaction has no id")
	}
	if !created.Amount.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("amount = %s, want 25000", created.Amount)
	}
	if !created.Date.Equal(testToday) {
		t.Errorf("date = %s, want today", created.Date)
	}

	form := url.Values{
		"type":     {"income"},
		"amount":   {"Rp 1.500.000"},
		"category": {"gaji"},
		"wallet":   {"bank"},
		"date":     {"2024-06-14"},
	}
	rr = do(t, srv, http.MethodPost, "/api/transactions", "u1", form.Encode())
	if rr.Code != http.StatusCreated {
		t.Fatalf("form create status=%d body=%s", rr.Code, rr.Body.String())
	}
	income := decode[core.Transaction](t, rr)
	if !income.Amount.Equal(decimal.NewFromInt(1500000)) {
		t.Errorf("form amount = %s, want 1500000", income.Amount)
	}

	list := decode[transactionListResponse](t, do(t, srv, http.MethodGet, "/api/transactions", "u1", ""))
	if !list.Grouped || list.Total != 2 || len(list.Groups) != 2 {
		t.Fatalf("list = %+v, want 2 grouped transactions over 2 days", list)
	}
	labels := map[string]string{}
	for _, g := range list.Groups {
		labels[g.Date.String()] = g.Label
	}
	if labels["2024-06-15"] != "Hari Ini" || labels["2024-06-14"] != "Kemarin" {
		t.Errorf("labels = %v", labels)
	}
}

func TestCreateTransactionErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		user string
		body string
		want int
		code string
	}{
		{"anonymous", "", `{"type":"expense","amount":1,"category_id":"makan","wallet_id":"cash"}`, http.StatusUnauthorized, "unauthenticated"},
		{"malformed json", "u1", `{"type":`, http.StatusBadRequest, "bad_request"},
		{"zero amount", "u1", `{"type":"expense","amount":0,"category_id":"makan","wallet_id":"cash"}`, http.StatusUnprocessableEntity, "validation_failed"},
		{"bad type", "u1", `{"type":"transfer","amount":10,"category_id":"makan","wallet_id":"cash"}`, http.StatusUnprocessableEntity, "validation_failed"},
		{"missing category", "u1", `{"type":"expense","amount":10,"wallet_id":"cash"}`, http.StatusUnprocessableEntity, "validation_failed"},
		{"bad date", "u1", `{"type":"expense","amount":10,"category_id":"makan","wallet_id":"cash","date":"15/06/2024"}`, http.StatusUnprocessableEntity, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.user, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status=%d, want %d body=%s", rr.Code, tt.want, rr.Body.String())
			}
			body := decode[errorBody](t, rr)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}

	list := decode[transactionListResponse](t, do(t, srv, http.MethodGet, "/api/transactions", "u1", ""))
	if list.Total != 0 {
		t.Errorf("rejected requests stored %d transactions", list.Total)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decode[core.Transaction](t, do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":"25000","category_id":"makan","wallet_id":"cash"}`))

	rr := do(t, srv, http.MethodPut, "/api/transactions/"+created.ID, "u1", `{"note":"Makan siang"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	updated := decode[core.Transaction](t, rr)
	if updated.Note != "Makan siang" || !updated.Amount.Equal(created.Amount) || updated.CategoryID != "makan" {
		t.Errorf("update did not overlay: %+v", updated)
	}

	if rr := do(t, srv, http.MethodPut, "/api/transactions/missing", "u1", `{"note":"x"}`); rr.Code != http.StatusNotFound {
		t.Errorf("update missing status=%d, want 404", rr.Code)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "u1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "u1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d, want 404", rr.Code)
	}

	list := decode[transactionListResponse](t, do(t, srv, http.MethodGet, "/api/transactions", "u1", ""))
	if list.Total != 0 {
		t.Errorf("list after delete has %d entries", list.Total)
	}
}

func TestListTransactionsPaginationAndSort(t *testing.T) {
	srv, st := newTestServer(t)

	var raw []core.RawTransaction
	for i := 1; i <= 12; i++ {
		raw = append(raw, core.RawTransaction{
			Type:       "expense",
			Amount:     fmt.Sprintf("%d000", i),
			Date:       fmt.Sprintf("2024-06-%02d", i),
			CategoryID: "makan",
			WalletID:   "cash",
		})
	}
	if err := st.Load(memory.Seed{User: "u2", Transactions: raw}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := decode[transactionListResponse](t, do(t, srv, http.MethodGet, "/api/transactions", "u2", ""))
	if first.Total != 12 || first.Visible != 10 || !first.HasMore || first.NextVisible != 20 {
		t.Fatalf("first page = total %d visible %d more %v next %d", first.Total, first.Visible, first.HasMore, first.NextVisible)
	}

	all := decode[transactionListResponse](t, do(t, srv, http.MethodGet, "/api/transactions?visible=20", "u2", ""))
	if all.Visible != 12 || all.HasMore || all.NextVisible != 0 {
		t.Errorf("second page = visible %d more %v next %d", all.Visible, all.HasMore, all.NextVisible)
	}

	byAmount := decode[transactionListResponse](t, do(t, srv, http.MethodGet,
		"/api/transactions?advanced=true&sort=highest&min=5000&max=9000&visible=0", "u2", ""))
	if byAmount.Grouped || len(byAmount.Flat) != 5 {
		t.Fatalf("amount sort = grouped %v flat %d, want 5 flat", byAmount.Grouped, len(byAmount.Flat))
	}
	if !byAmount.Flat[0].Amount.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("highest first = %s, want 9000", byAmount.Flat[0].Amount)
	}
}

func TestAnonymousReadsAreEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/transactions", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	list := decode[transactionListResponse](t, rr)
	if list.Total != 0 {
		t.Errorf("anonymous list total = %d", list.Total)
	}

	wallets := decode[walletListResponse](t, do(t, srv, http.MethodGet, "/api/wallets", "", ""))
	if len(wallets.Wallets) != 0 {
		t.Errorf("anonymous wallets = %d", len(wallets.Wallets))
	}
}

func TestOnboardingCreatesDefaultWallets(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := decode[walletListResponse](t, do(t, srv, http.MethodGet, "/api/wallets", "newcomer", ""))
	if len(resp.Wallets) != 3 {
		t.Fatalf("wallets = %d, want the 3 defaults", len(resp.Wallets))
	}
	if resp.Wallets[0].ID != core.DefaultWalletID {
		t.Errorf("first wallet = %q, want %q", resp.Wallets[0].ID, core.DefaultWalletID)
	}
}

func TestWalletAdjust(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":25000,"category_id":"makan","wallet_id":"cash"}`)

	rr := do(t, srv, http.MethodPost, "/api/wallets/cash/adjust", "u1", `{"target":100000}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("adjust status=%d body=%s", rr.Code, rr.Body.String())
	}
	adj := decode[adjustResponse](t, rr)
	if !adj.Adjusted || adj.Transaction == nil {
		t.Fatalf("adjust = %+v", adj)
	}
	if adj.Transaction.Type != core.Income || !adj.Transaction.Amount.Equal(decimal.NewFromInt(125000)) {
		t.Errorf("adjustment = %s %s, want income 125000", adj.Transaction.Type, adj.Transaction.Amount)
	}
	if adj.Transaction.Note != core.ReconciliationNote {
		t.Errorf("note = %q", adj.Transaction.Note)
	}

	wallets := decode[walletListResponse](t, do(t, srv, http.MethodGet, "/api/wallets", "u1", ""))
	for _, w := range wallets.Wallets {
		if w.ID == "cash" && !w.Balance.Equal(decimal.NewFromInt(100000)) {
			t.Errorf("cash balance = %s, want 100000", w.Balance)
		}
	}

	rr = do(t, srv, http.MethodPost, "/api/wallets/cash/adjust", "u1", "target=100000")
	if rr.Code != http.StatusOK {
		t.Fatalf("no-op adjust status=%d", rr.Code)
	}
	if decode[adjustResponse](t, rr).Adjusted {
		t.Error("equal target should not adjust")
	}

	if rr := do(t, srv, http.MethodPost, "/api/wallets/nope/adjust", "u1", `{"target":1}`); rr.Code != http.StatusNotFound {
		t.Errorf("unknown wallet status=%d, want 404", rr.Code)
	}
}

func TestBudgets(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":40000,"category_id":"makan","wallet_id":"cash"}`)

	rr := do(t, srv, http.MethodPost, "/api/budgets", "u1", `{"category_id":"makan","limit_amount":100000}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	budget := decode[core.Budget](t, rr)

	if rr := do(t, srv, http.MethodPost, "/api/budgets", "u1", `{"category_id":"MAKAN","limit_amount":5}`); rr.Code != http.StatusConflict {
		t.Errorf("duplicate budget status=%d, want 409", rr.Code)
	}

	list := decode[budgetListResponse](t, do(t, srv, http.MethodGet, "/api/budgets", "u1", ""))
	if len(list.Budgets) != 1 {
		t.Fatalf("budgets = %d", len(list.Budgets))
	}
	if !list.Totals.Spent.Equal(decimal.NewFromInt(40000)) || !list.Totals.Remaining.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("totals = %+v", list.Totals)
	}
	for _, c := range list.AvailableCategories {
		if c.ID == "makan" {
			t.Error("budgeted category still offered")
		}
		if c.Type != core.Expense {
			t.Errorf("income category %q offered", c.ID)
		}
	}

	rr = do(t, srv, http.MethodPut, "/api/budgets/"+budget.ID, "u1", `{"limit_amount":"200000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[core.Budget](t, rr); !got.Limit.Equal(decimal.NewFromInt(200000)) || got.CategoryID != "makan" {
		t.Errorf("updated budget = %+v", got)
	}

	rr = do(t, srv, http.MethodPost, "/api/budgets/reset", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status=%d", rr.Code)
	}
	if got := decode[map[string]core.Date](t, rr)["cycle_start"]; !got.Equal(testToday) {
		t.Errorf("cycle_start = %s, want today", got)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/budgets/"+budget.ID, "u1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/budgets/"+budget.ID, "u1", `{"limit":1}`); rr.Code != http.StatusNotFound {
		t.Errorf("update deleted status=%d, want 404", rr.Code)
	}
}

func TestGoals(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/goals", "u1", `{"name":"Laptop","target_amount":1000000}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status=%d body=%s", rr.Code, rr.Body.String())
	}
	goal := decode[goalResponse](t, rr)
	if goal.Status != core.GoalActive || goal.Percentage != 0 {
		t.Errorf("new goal = %+v", goal)
	}

	rr = do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/savings", "u1", `{"amount":400000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("savings status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[goalResponse](t, rr); got.Percentage != 40 || !got.Remaining.Equal(decimal.NewFromInt(600000)) {
		t.Errorf("after savings = %+v", got)
	}

	if rr := do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/savings", "u1", `{"amount":-5}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative savings status=%d, want 422", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/savings", "u1", `{"amount":600000}`)
	if got := decode[goalResponse](t, rr); got.Status != core.GoalCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if rr := do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/savings", "u1", `{"amount":1}`); rr.Code != http.StatusConflict {
		t.Errorf("savings on completed goal status=%d, want 409", rr.Code)
	}

	active := decode[[]goalResponse](t, do(t, srv, http.MethodGet, "/api/goals?status=active", "u1", ""))
	completed := decode[[]goalResponse](t, do(t, srv, http.MethodGet, "/api/goals?status=completed", "u1", ""))
	if len(active) != 0 || len(completed) != 1 {
		t.Errorf("active=%d completed=%d", len(active), len(completed))
	}
	if rr := do(t, srv, http.MethodGet, "/api/goals?status=paused", "u1", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad status filter=%d, want 422", rr.Code)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/goals/"+goal.ID, "u1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status=%d", rr.Code)
	}
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"income","amount":500000,"category_id":"gaji","wallet_id":"bank","date":"2024-06-01"}`)
	do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":20000,"category_id":"makan","wallet_id":"cash","date":"2024-06-14"}`)
	do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":30000,"category_id":"transport","wallet_id":"cash","date":"2024-06-15"}`)

	summary := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/stats/summary", "u1", ""))
	if !summary.TotalBalance.Equal(decimal.NewFromInt(450000)) {
		t.Errorf("balance = %s, want 450000", summary.TotalBalance)
	}

	ranged := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/stats/summary?start=2024-06-10", "u1", ""))
	if !ranged.TotalIncome.IsZero() || !ranged.TotalExpense.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("ranged = %+v", ranged)
	}

	daily := decode[[]struct {
		Date   core.Date       `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}](t, do(t, srv, http.MethodGet, "/api/stats/daily?days=3", "u1", ""))
	if len(daily) != 3 {
		t.Fatalf("daily buckets = %d, want 3", len(daily))
	}
	if !daily[2].Date.Equal(testToday) || !daily[2].Amount.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("last bucket = %+v", daily[2])
	}

	monthly := decode[monthlyResponse](t, do(t, srv, http.MethodGet, "/api/stats/monthly?type=income", "u1", ""))
	if monthly.Year != 2024 || len(monthly.Months) != 12 {
		t.Fatalf("monthly = year %d months %d", monthly.Year, len(monthly.Months))
	}
	if !monthly.Months[5].Amount.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("june income = %s", monthly.Months[5].Amount)
	}

	if rr := do(t, srv, http.MethodGet, "/api/stats/daily?type=transfer", "u1", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type status=%d, want 422", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/stats/categories?start=yesterday", "u1", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad date status=%d, want 422", rr.Code)
	}

	if rr := do(t, srv, http.MethodGet, "/api/dashboard", "u1", ""); rr.Code != http.StatusOK {
		t.Errorf("dashboard status=%d", rr.Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/transactions", "u1",
		`{"type":"expense","amount":25000,"category_id":"makan","wallet_id":"cash","note":"Nasi"}`)

	rr := do(t, srv, http.MethodGet, "/api/export.csv", "u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "dompet-2024-06-15.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	if lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n"); len(lines) != 2 {
		t.Errorf("csv lines = %d, want header plus one row", len(lines))
	}
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/categories", "u1", `{"id":"kopi","name":"Kopi","type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status=%d body=%s", rr.Code, rr.Body.String())
	}

	income := decode[[]core.Category](t, do(t, srv, http.MethodGet, "/api/categories?type=income", "u1", ""))
	for _, c := range income {
		if c.Type != core.Income {
			t.Errorf("category %q has type %q", c.ID, c.Type)
		}
	}

	expense := decode[[]core.Category](t, do(t, srv, http.MethodGet, "/api/categories?type=expense", "u1", ""))
	found := false
	for _, c := range expense {
		found = found || c.ID == "kopi"
	}
	if !found {
		t.Error("new category not listed")
	}

	other := decode[[]core.Category](t, do(t, srv, http.MethodGet, "/api/categories", "u9", ""))
	for _, c := range other {
		if c.ID == "kopi" {
			t.Error("category leaked to another user")
		}
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	st := memory.New()
	snapshots := cache.NewLoadingCache(10, time.Minute, services.NewSnapshotLoader(st).Load)
	l := services.NewLedger(st, services.WithNotifier(worker.NewCacheInvalidator(snapshots)))
	srv := NewServer(":0", l, snapshots, Options{RateLimitPerMinute: 2})
	defer srv.Shutdown(context.Background())

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/goals", "", `{}`); rr.Code != http.StatusUnauthorized {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/goals", "", `{}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third mutation status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	if rr := do(t, srv, http.MethodGet, "/api/goals", "", ""); rr.Code != http.StatusOK {
		t.Errorf("reads are not limited, got %d", rr.Code)
	}
}

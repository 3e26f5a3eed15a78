package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/analytics"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/ledger"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/testutil"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	server *Server
	ledger *ledger.Service
	layout *layout.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rent := testutil.Expense(now.AddDate(0, 0, -1), 500, "rent", model.NecessityNeed)
	rent.PaymentMode = "Debit"
	coffee := testutil.Expense(now.AddDate(0, 0, -2), 5, "coffee", model.NecessityWant)
	coffee.PaymentMode = "Cash"
	salary := testutil.Income(now.AddDate(0, 0, -3), 2000, "salary")
	salary.PaymentMode = "Debit"
	env := testutil.SetupTestDB(t, now, rent, coffee, salary)

	srv := New(Config{Addr: "127.0.0.1:0"}, Deps{
		Ledger:    env.Ledger,
		Layout:    env.Layout,
		Engine:    env.Engine,
		Formatter: privacy.New(privacy.Settings{Currency: "USD"}),
		Modes:     env.Storage,
	})
	return &fixture{server: srv, ledger: env.Ledger, layout: env.Layout}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.InDelta(t, 3, body["transactions"], 0)
}

func TestGetDashboard(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Period string `json:"period"`
		Cards  []struct {
			ID        string `json:"id"`
			Type      string `json:"type"`
			FullWidth bool   `json:"fullWidth"`
		} `json:"cards"`
	}](t, w)

	assert.Equal(t, string(timewindow.PeriodThisMonth), body.Period)
	require.NotEmpty(t, body.Cards)
	assert.Equal(t, string(dashboard.CardSpent), body.Cards[0].ID)
	assert.Equal(t, string(dashboard.TypeStat), body.Cards[0].Type)
	for _, c := range body.Cards {
		if c.Type == string(dashboard.TypeChart) {
			assert.True(t, c.FullWidth, c.ID)
		}
	}
}

func TestGetDashboard_FollowsLayout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.layout.Reorder(context.Background(), []string{"income", "spent"}))

	w := f.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Cards []struct {
			ID string `json:"id"`
		} `json:"cards"`
	}](t, w)
	require.GreaterOrEqual(t, len(body.Cards), 2)
	assert.Equal(t, "income", body.Cards[0].ID)
	assert.Equal(t, "spent", body.Cards[1].ID)
}

func TestGetAnalytics(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTotal float64
	}{
		{name: "default period", query: "", wantCode: http.StatusOK, wantTotal: 505},
		{name: "last month is empty", query: "?period=lastMonth", wantCode: http.StatusOK, wantTotal: 0},
		{name: "kebab case", query: "?period=all-time", wantCode: http.StatusOK, wantTotal: 505},
		{name: "invalid", query: "?period=fortnight", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/analytics"+tt.query, nil)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			snap := decode[analytics.Snapshot](t, w)
			assert.InDelta(t, tt.wantTotal, snap.PeriodTotal, 0.001)
		})
	}
}

func TestGetStreaks(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/streaks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	// Last expense was yesterday, so today starts a no-expense streak.
	assert.InDelta(t, 1, body["noExpenseStreak"], 0)
	assert.InDelta(t, 0, body["spendingStreak"], 0)
}

func TestLayoutEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/layout/order", map[string]any{"ids": []string{"savings", "spent"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[layoutResponse](t, w)
	assert.Equal(t, "savings", body.Visible[0])

	w = f.do(t, http.MethodPut, "/api/layout/order", map[string]any{"ids": []string{"spent", "spent"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/api/layout/visibility", map[string]any{"id": "savings", "visible": false})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[layoutResponse](t, w)
	assert.NotContains(t, body.Visible, "savings")
	assert.Len(t, body.Entries, len(dashboard.IDs()))

	w = f.do(t, http.MethodPut, "/api/layout/visibility", map[string]any{"id": "ghost", "visible": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPut, "/api/layout/visibility", map[string]any{"id": "spent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/layout/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[layoutResponse](t, w)
	assert.Equal(t, dashboard.IDs(), body.Visible)

	w = f.do(t, http.MethodGet, "/api/layout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dashboard.IDs(), decode[layoutResponse](t, w).Visible)
}

func TestTransactionEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"date": "2024-03-15", "type": "e", "necessity": "want", "reason": " snacks ", "paymentMode": "cc", "amount": 12.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Transaction](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "snacks", created.Reason)
	assert.Equal(t, "Credit Card", created.PaymentMode)
	assert.Equal(t, model.TypeExpense, created.Type)

	w = f.do(t, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.Transaction](t, w)
	require.Len(t, list, 4)
	assert.Equal(t, created.ID, list[0].ID)

	w = f.do(t, http.MethodPatch, "/api/transactions/"+created.ID, map[string]any{"amount": 20, "type": "income"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[model.Transaction](t, w)
	assert.InDelta(t, 20, updated.Amount, 0.001)
	assert.Equal(t, model.NecessityNone, updated.Necessity)

	w = f.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 3, f.ledger.Len())

	w = f.do(t, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddTransaction_Rejects(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "bad date", body: map[string]any{"date": "15/03/2024", "type": "expense", "amount": 1}},
		{name: "bad type", body: map[string]any{"date": "2024-03-15", "type": "transfer", "amount": 1}},
		{name: "negative amount", body: map[string]any{"date": "2024-03-15", "type": "expense", "amount": -1}},
		{name: "missing type", body: map[string]any{"date": "2024-03-15", "amount": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, 3, f.ledger.Len())
}

func TestListTransactions_Period(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/transactions?period=lastYear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetPaymentModes(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/payment-modes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DefaultPaymentModes, decode[[]model.PaymentMode](t, w))
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

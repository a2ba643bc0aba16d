package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/config"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(
		config.ServerConfig{Addr: ":0"},
		config.JournalConfig{DefaultInitialCapital: 1000, DefaultRiskReward: 2.0},
		st,
		zerolog.Nop(),
	)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func createPlan(t *testing.T, srv *Server) models.TradingPlan {
	t.Helper()
	var plan models.TradingPlan
	rec := doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name":            "Swing plan",
		"riskRewardRatio": 2.0,
		"maxLossAmount":   100,
		"initialCapital":  1000,
		"isActive":        true,
	}, &plan)
	require.Equal(t, http.StatusCreated, rec.Code)
	return plan
}

func createTrade(t *testing.T, srv *Server, planID string, body map[string]interface{}) models.Trade {
	t.Helper()
	body["tradingPlanId"] = planID
	var trade models.Trade
	rec := doJSON(t, srv, http.MethodPost, "/api/trades", body, &trade)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return trade
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlanLifecycle(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)
	require.NotEmpty(t, plan.ID)
	assert.Equal(t, 2.0, plan.RiskRewardRatio)

	var got models.TradingPlan
	rec := doJSON(t, srv, http.MethodGet, "/api/plans/"+plan.ID, nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, plan.Name, got.Name)

	rec = doJSON(t, srv, http.MethodPut, "/api/plans/"+plan.ID, map[string]interface{}{
		"name": "Renamed",
	}, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", got.Name)
	// omitted fields keep their stored values
	assert.Equal(t, 1000.0, got.InitialCapital)

	var plans []models.TradingPlan
	rec = doJSON(t, srv, http.MethodGet, "/api/plans", nil, &plans)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, plans, 1)

	rec = doJSON(t, srv, http.MethodDelete, "/api/plans/"+plan.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans/"+plan.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlanValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name":           "bad",
		"initialCapital": -5,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePlanValidation(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	// negative capital is rejected on update just as on create
	rec := doJSON(t, srv, http.MethodPut, "/api/plans/"+plan.ID, map[string]interface{}{
		"name":           plan.Name,
		"initialCapital": -500,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// createdAt is server-owned and survives a client attempt to rewrite it
	var updated models.TradingPlan
	rec = doJSON(t, srv, http.MethodPut, "/api/plans/"+plan.ID, map[string]interface{}{
		"name":      "Renamed",
		"createdAt": "1999-01-01T00:00:00Z",
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, plan.CreatedAt, updated.CreatedAt)
}

func TestCreatePlanDefaultsRiskReward(t *testing.T) {
	srv := newTestServer(t)
	var plan models.TradingPlan
	rec := doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name": "defaults",
	}, &plan)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2.0, plan.RiskRewardRatio)
}

func TestTradeCloseFlow(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	trade := createTrade(t, srv, plan.ID, map[string]interface{}{
		"symbol":     "EURUSD",
		"type":       "BUY",
		"entryPrice": 1.0850,
		"quantity":   10000,
		"stopLoss":   1.0830,
	})
	assert.Equal(t, models.TradeOpen, trade.Status)
	// take profit suggested from the plan's 2:1 ratio
	assert.InDelta(t, 1.0890, trade.TakeProfit, 1e-9)
	assert.InDelta(t, 20, trade.RiskAmount, 1e-6)
	assert.InDelta(t, 40, trade.RewardAmount, 1e-6)

	var closed models.Trade
	rec := doJSON(t, srv, http.MethodPost, "/api/trades/"+trade.ID+"/close", map[string]interface{}{
		"exitPrice": 1.0890,
	}, &closed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.TradeClosed, closed.Status)
	require.NotNil(t, closed.PnL)
	assert.InDelta(t, 40.00, *closed.PnL, 1e-9)

	// closing again conflicts
	rec = doJSON(t, srv, http.MethodPost, "/api/trades/"+trade.ID+"/close", map[string]interface{}{
		"exitPrice": 1.0990,
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTradeOpenAndCancel(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	trade := createTrade(t, srv, plan.ID, map[string]interface{}{
		"symbol":     "GBPUSD",
		"type":       "SELL",
		"status":     "PENDING",
		"entryPrice": 1.2650,
		"quantity":   8000,
	})
	assert.Equal(t, models.TradePending, trade.Status)

	var opened models.Trade
	rec := doJSON(t, srv, http.MethodPost, "/api/trades/"+trade.ID+"/open", nil, &opened)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TradeOpen, opened.Status)

	var cancelled models.Trade
	rec = doJSON(t, srv, http.MethodPost, "/api/trades/"+trade.ID+"/cancel", nil, &cancelled)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TradeCancelled, cancelled.Status)

	// terminal trades reject edits
	rec = doJSON(t, srv, http.MethodPut, "/api/trades/"+trade.ID, map[string]interface{}{
		"notes": "too late",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateTradeValidation(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	cases := []map[string]interface{}{
		{"type": "BUY", "entryPrice": 1.1, "quantity": 1, "tradingPlanId": plan.ID},                          // missing symbol
		{"symbol": "EURUSD", "type": "HOLD", "entryPrice": 1.1, "quantity": 1, "tradingPlanId": plan.ID},     // bad type
		{"symbol": "EURUSD", "type": "BUY", "entryPrice": -1, "quantity": 1, "tradingPlanId": plan.ID},       // bad price
		{"symbol": "EURUSD", "type": "BUY", "entryPrice": 1.1, "quantity": 0, "tradingPlanId": plan.ID},      // bad qty
		{"symbol": "EURUSD", "type": "BUY", "entryPrice": 1.1, "quantity": 1},                                // missing plan
		{"symbol": "EURUSD", "type": "BUY", "status": "CLOSED", "entryPrice": 1.1, "quantity": 1, "tradingPlanId": plan.ID}, // bad status
	}
	for i, body := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/trades", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %d: %s", i, rec.Body.String())
	}

	// unknown plan is a 404
	rec := doJSON(t, srv, http.MethodPost, "/api/trades", map[string]interface{}{
		"symbol": "EURUSD", "type": "BUY", "entryPrice": 1.1, "quantity": 1, "tradingPlanId": "missing",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTradesFilters(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	createTrade(t, srv, plan.ID, map[string]interface{}{
		"symbol": "EURUSD", "type": "BUY", "entryPrice": 1.1, "quantity": 1,
	})
	createTrade(t, srv, plan.ID, map[string]interface{}{
		"symbol": "GBPUSD", "type": "SELL", "entryPrice": 1.2, "quantity": 1, "status": "PENDING",
	})

	var trades []models.Trade
	rec := doJSON(t, srv, http.MethodGet, "/api/trades", nil, &trades)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, trades, 2)

	rec = doJSON(t, srv, http.MethodGet, "/api/trades?status=PENDING", nil, &trades)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, trades, 1)
	assert.Equal(t, "GBPUSD", trades[0].Symbol)

	rec = doJSON(t, srv, http.MethodGet, "/api/trades?symbol=EURUSD", nil, &trades)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, trades, 1)
}

func TestCapitalAdditionsAPI(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	var addition models.CapitalAddition
	rec := doJSON(t, srv, http.MethodPost, "/api/capital-additions", map[string]interface{}{
		"amount":        500,
		"description":   "monthly deposit",
		"tradingPlanId": plan.ID,
	}, &addition)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 500.0, addition.Amount)

	// invalid amounts are rejected
	for _, amount := range []float64{0, -10} {
		rec = doJSON(t, srv, http.MethodPost, "/api/capital-additions", map[string]interface{}{
			"amount":        amount,
			"tradingPlanId": plan.ID,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %v", amount)
	}

	var additions []models.CapitalAddition
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/capital-additions?planId=%s", plan.ID), nil, &additions)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, additions, 1)

	rec = doJSON(t, srv, http.MethodDelete, "/api/capital-additions/"+addition.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	plan := createPlan(t, srv)

	// win 100, lose 50, win 30 against 1000 initial plus a 500 deposit
	for _, tc := range []struct {
		entry, exit float64
	}{
		{100, 200}, {100, 50}, {100, 130},
	} {
		trade := createTrade(t, srv, plan.ID, map[string]interface{}{
			"symbol": "EURUSD", "type": "BUY", "entryPrice": tc.entry, "quantity": 1,
		})
		rec := doJSON(t, srv, http.MethodPost, "/api/trades/"+trade.ID+"/close", map[string]interface{}{
			"exitPrice": tc.exit,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/capital-additions", map[string]interface{}{
		"amount": 500, "tradingPlanId": plan.ID,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var stats models.TradeStats
	rec = doJSON(t, srv, http.MethodGet, "/api/stats?planId="+plan.ID, nil, &stats)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 3, stats.TotalTrades)
	assert.Equal(t, 2, stats.WinningTrades)
	assert.Equal(t, 1, stats.LosingTrades)
	assert.InDelta(t, 80, stats.TotalPnL, 1e-9)
	assert.InDelta(t, 2.6, stats.ProfitFactor, 1e-9)
	assert.InDelta(t, 50, stats.MaxDrawdown, 1e-9)
	assert.InDelta(t, 1500, stats.InitialCapital, 1e-9)
	assert.InDelta(t, 1580, stats.CurrentCapital, 1e-9)

	var curve []models.EquityPoint
	rec = doJSON(t, srv, http.MethodGet, "/api/equity?planId="+plan.ID, nil, &curve)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, curve, 3)
	assert.InDelta(t, 1580, curve[2].Equity, 1e-9)
}

func TestStatsDefaultCapital(t *testing.T) {
	srv := newTestServer(t)

	var stats models.TradeStats
	rec := doJSON(t, srv, http.MethodGet, "/api/stats", nil, &stats)
	require.Equal(t, http.StatusOK, rec.Code)
	// no plans at all falls back to the configured default
	assert.InDelta(t, 1000, stats.InitialCapital, 1e-9)
	assert.Zero(t, stats.TotalTrades)

	// a plan-scoped query with no capital figure gets the same fallback
	var plan models.TradingPlan
	rec = doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name": "no capital",
	}, &plan)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/stats?planId="+plan.ID, nil, &stats)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1000, stats.InitialCapital, 1e-9)
}

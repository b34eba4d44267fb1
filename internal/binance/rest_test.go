package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

func newTestREST(t *testing.T, handler http.Handler) (*RESTClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	client := NewRESTClient(Endpoints{REST: srv.URL}, NewSigner("gatewayKey", "gatewaySecret"), "")
	return client, srv
}

func TestRESTClient_NewListenKey(t *testing.T) {
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != apiV3UserDataStream {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "gatewayKey" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"listenKey":"pqia91ma19a5s61cv6a81va65sdf19v8a65a1a5s61cv6a81va65sdf19v8a65a1"}`))
	}))

	key, err := client.NewListenKey(context.Background())
	if err != nil {
		t.Fatalf("NewListenKey failed: %v", err)
	}
	if key == "" {
		t.Error("empty listen key")
	}
}

func TestRESTClient_KeepAliveListenKey(t *testing.T) {
	var gotKey string
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotKey = r.URL.Query().Get("listenKey")
		w.Write([]byte(`{}`))
	}))

	if err := client.KeepAliveListenKey(context.Background(), "abc123"); err != nil {
		t.Fatalf("KeepAliveListenKey failed: %v", err)
	}
	if gotKey != "abc123" {
		t.Errorf("listenKey param = %s", gotKey)
	}
}

func TestRESTClient_AuthError(t *testing.T) {
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":-2015,"msg":"Invalid API-key, IP, or permissions for action."}`))
	}))

	_, err := client.NewListenKey(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Code != -2015 || !apiErr.IsAuthError() {
		t.Errorf("code = %d, IsAuthError = %v", apiErr.Code, apiErr.IsAuthError())
	}
}

func TestRESTClient_GetAccount(t *testing.T) {
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("signature") == "" || q.Get("timestamp") == "" {
			t.Error("account request is not signed")
		}
		w.Write([]byte(`{"updateTime":1660801715431,"balances":[
			{"asset":"BTC","free":"1.5","locked":"0.5"},
			{"asset":"DUST","free":"0.00000000","locked":"0.00000000"}]}`))
	}))

	account, err := client.GetAccount(context.Background())
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if len(account.Balances) != 1 {
		t.Fatalf("balances = %d, want 1 (zero balances skipped)", len(account.Balances))
	}
	if account.Balances[0].Asset != "BTC" || !account.Balances[0].Free.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("balance = %+v", account.Balances[0])
	}
}

func TestRESTClient_GetOpenOrders(t *testing.T) {
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Errorf("symbol param = %s", r.URL.Query().Get("symbol"))
		}
		w.Write([]byte(`[{"symbol":"BTCUSDT","orderId":42,"clientOrderId":"cid-1",
			"price":"23000.00","origQty":"1.0","executedQty":"0.25","status":"PARTIALLY_FILLED",
			"type":"LIMIT","side":"BUY","time":1660801715000,"updateTime":1660801716000}]`))
	}))

	orders, err := client.GetOpenOrders(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetOpenOrders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	order := orders[0]
	if order.OrderID != "42" || order.Status != schema.OrderStatusPartiallyFilled {
		t.Errorf("order = %+v", order)
	}
	if !order.FilledQty.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("filled = %s", order.FilledQty)
	}
}

func TestRESTClient_GetKlines(t *testing.T) {
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("interval") != "1m" {
			t.Errorf("interval param = %s", q.Get("interval"))
		}
		w.Write([]byte(`[[1499040000000,"0.01634790","0.80000000","0.01575800","0.01577100",
			"148976.11427815",1499644799999,"2434.19055334",308,"1756.87402397","28.46694368","0"]]`))
	}))

	start := time.UnixMilli(1499040000000)
	bars, err := client.GetKlines(context.Background(), "ETHBTC", schema.IntervalMinute, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetKlines failed: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("bars = %d, want 1", len(bars))
	}
	bar := bars[0]
	if !bar.OpenTime.Equal(start) {
		t.Errorf("open time = %v", bar.OpenTime)
	}
	if !bar.High.Equal(decimal.RequireFromString("0.8")) {
		t.Errorf("high = %s", bar.High)
	}
	if !bar.QuoteVolume.Equal(decimal.RequireFromString("2434.19055334")) {
		t.Errorf("quote volume = %s", bar.QuoteVolume)
	}

	if _, err := client.GetKlines(context.Background(), "ETHBTC", schema.Interval("weekly"), start, start.Add(time.Hour)); err == nil {
		t.Error("expected error for unsupported interval")
	}
}

func TestRESTClient_GetExchangeInfo(t *testing.T) {
	client, _ := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","baseAssetPrecision":8,
			 "quoteAsset":"USDT","quoteAssetPrecision":8,"isSpotTradingAllowed":true,
			 "filters":[{"filterType":"PRICE_FILTER","tickSize":"0.01000000"},
			            {"filterType":"LOT_SIZE","minQty":"0.00001000","stepSize":"0.00001000"},
			            {"filterType":"NOTIONAL","minNotional":"5.00000000"}]},
			{"symbol":"HALTED","status":"BREAK","baseAsset":"X","quoteAsset":"Y","isSpotTradingAllowed":true}]}`))
	}))

	contracts, err := client.GetExchangeInfo(context.Background())
	if err != nil {
		t.Fatalf("GetExchangeInfo failed: %v", err)
	}
	if len(contracts) != 1 {
		t.Fatalf("contracts = %d, want 1 (non-trading filtered)", len(contracts))
	}
	c := contracts[0]
	if c.Symbol != "BTCUSDT" || c.Base != "BTC" || c.Quote != "USDT" {
		t.Errorf("contract = %+v", c)
	}
	if !c.TickSize.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("tick size = %s", c.TickSize)
	}
	if !c.MinNotional.Equal(decimal.RequireFromString("5")) {
		t.Errorf("min notional = %s", c.MinNotional)
	}
}

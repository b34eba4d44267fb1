package binance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

const executionReportJSON = `{
	"e": "executionReport",
	"E": 1499405658658,
	"s": "ETHBTC",
	"c": "mUvoqJxFIILMdfAW5iGSOW",
	"S": "BUY",
	"o": "LIMIT",
	"f": "GTC",
	"q": "1.00000000",
	"p": "0.10264410",
	"x": "TRADE",
	"X": "PARTIALLY_FILLED",
	"i": 4293153,
	"l": "0.40000000",
	"z": "0.40000000",
	"L": "0.10264410",
	"n": "0.00000012",
	"N": "BTC",
	"T": 1499405658657,
	"t": 77,
	"O": 1499405658650
}`

func TestDecodeStreamMessage_ExecutionReport(t *testing.T) {
	v, err := DecodeStreamMessage([]byte(executionReportJSON))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	update, ok := v.(*ExecutionUpdate)
	if !ok {
		t.Fatalf("decoded to %T, want *ExecutionUpdate", v)
	}

	order := update.Order
	if order.Symbol != "ETHBTC" {
		t.Errorf("symbol = %s", order.Symbol)
	}
	if order.OrderID != "4293153" {
		t.Errorf("order id = %s", order.OrderID)
	}
	if order.ClientOrderID != "mUvoqJxFIILMdfAW5iGSOW" {
		t.Errorf("client order id = %s", order.ClientOrderID)
	}
	if order.Side != schema.OrderSideBuy {
		t.Errorf("side = %s", order.Side)
	}
	if order.Type != schema.OrderTypeLimit {
		t.Errorf("type = %s", order.Type)
	}
	if order.Status != schema.OrderStatusPartiallyFilled {
		t.Errorf("status = %s", order.Status)
	}
	if !order.FilledQty.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("filled qty = %s", order.FilledQty)
	}

	if update.Trade == nil {
		t.Fatal("expected a trade for a fill report")
	}
	if update.Trade.TradeID != "77" {
		t.Errorf("trade id = %s", update.Trade.TradeID)
	}
	if !update.Trade.Quantity.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("trade qty = %s", update.Trade.Quantity)
	}
	if update.Trade.CommissionAsset != "BTC" {
		t.Errorf("commission asset = %s", update.Trade.CommissionAsset)
	}
}

func TestDecodeStreamMessage_ExecutionReportNoFill(t *testing.T) {
	payload := `{"e":"executionReport","E":1,"s":"ETHBTC","c":"abc","S":"SELL","o":"MARKET",
		"q":"1","p":"0","X":"NEW","i":42,"l":"0.00000000","z":"0.00000000","L":"0.00000000",
		"T":1,"t":-1,"O":1}`
	v, err := DecodeStreamMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	update := v.(*ExecutionUpdate)
	if update.Trade != nil {
		t.Error("expected no trade for an ack-only report")
	}
	if update.Order.Status != schema.OrderStatusPendingNew {
		t.Errorf("status = %s", update.Order.Status)
	}
}

func TestDecodeStreamMessage_ExpiredFoldsToCancelled(t *testing.T) {
	payload := `{"e":"executionReport","E":1,"s":"ETHBTC","c":"abc","S":"BUY","o":"LIMIT",
		"q":"1","p":"0.1","X":"EXPIRED","i":43,"l":"0","z":"0","L":"0","T":1,"t":-1,"O":1}`
	v, err := DecodeStreamMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got := v.(*ExecutionUpdate).Order.Status; got != schema.OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled", got)
	}
}

func TestDecodeStreamMessage_AccountPosition(t *testing.T) {
	payload := `{"e":"outboundAccountPosition","E":1564034571105,"u":1564034571073,
		"B":[{"a":"ETH","f":"10000.000000","l":"0.000000"},{"a":"BTC","f":"1.5","l":"0.5"}]}`
	v, err := DecodeStreamMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	update, ok := v.(*AccountUpdate)
	if !ok {
		t.Fatalf("decoded to %T, want *AccountUpdate", v)
	}
	if len(update.Account.Balances) != 2 {
		t.Fatalf("balances = %d, want 2", len(update.Account.Balances))
	}
	if update.Account.Balances[1].Asset != "BTC" {
		t.Errorf("asset = %s", update.Account.Balances[1].Asset)
	}
	if !update.Account.Balances[1].Locked.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("locked = %s", update.Account.Balances[1].Locked)
	}
}

func TestDecodeStreamMessage_BalanceDelta(t *testing.T) {
	payload := `{"e":"balanceUpdate","E":1573200697110,"a":"BTC","d":"100.00000000","T":1573200697068}`
	v, err := DecodeStreamMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	delta, ok := v.(*BalanceDelta)
	if !ok {
		t.Fatalf("decoded to %T, want *BalanceDelta", v)
	}
	if delta.Asset != "BTC" || !delta.Delta.Equal(decimal.NewFromInt(100)) {
		t.Errorf("delta = %s %s", delta.Asset, delta.Delta)
	}
}

func TestDecodeStreamMessage_ListenKeyExpired(t *testing.T) {
	payload := `{"e":"listenKeyExpired","E":1699596037418,"listenKey":"OfYGbUzi3PraNagEkdKuFwUHn48brFsItTdsuiIXrucEvD0rhRXZ7I6URWfE8YE8"}`
	v, err := DecodeStreamMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := v.(*SessionExpired); !ok {
		t.Fatalf("decoded to %T, want *SessionExpired", v)
	}
}

func TestDecodeStreamMessage_CombinedStreamUnwrap(t *testing.T) {
	payload := `{"stream":"abc","data":{"e":"balanceUpdate","E":1,"a":"ETH","d":"-1.5","T":1}}`
	v, err := DecodeStreamMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := v.(*BalanceDelta); !ok {
		t.Fatalf("decoded to %T, want *BalanceDelta", v)
	}
}

func TestDecodeStreamMessage_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"corrupt json", `{"e":"executionReport",`},
		{"no event type", `{"result":null,"id":1}`},
		{"unknown event type", `{"e":"tickerXYZ","E":1}`},
		{"unknown status", `{"e":"executionReport","E":1,"s":"X","c":"y","S":"BUY","o":"LIMIT","q":"1","p":"1","X":"PENDING_CANCEL","i":1,"l":"0","z":"0","L":"0","T":1,"t":-1,"O":1}`},
		{"bad balance delta", `{"e":"balanceUpdate","E":1,"a":"BTC","d":"not-a-number","T":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := DecodeStreamMessage([]byte(tc.payload))
			if err == nil {
				t.Fatalf("expected error, got %T", v)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error type = %T, want *DecodeError", err)
			}
		})
	}
}

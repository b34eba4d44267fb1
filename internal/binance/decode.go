package binance

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

// Stream event types
const (
	eventExecutionReport  = "executionReport"
	eventAccountPosition  = "outboundAccountPosition"
	eventBalanceUpdate    = "balanceUpdate"
	eventListenKeyExpired = "listenKeyExpired"
)

// ExecutionUpdate is a decoded execution report: the order's new state and,
// when the report carries a fill, the trade.
type ExecutionUpdate struct {
	Order schema.Order
	Trade *schema.Trade
}

// AccountUpdate is a decoded account position snapshot.
type AccountUpdate struct {
	Account schema.Account
}

// BalanceDelta is a decoded single-asset balance change.
type BalanceDelta struct {
	Asset string
	Delta decimal.Decimal
	At    time.Time
}

// SessionExpired signals that the exchange invalidated the listen key.
type SessionExpired struct{}

// DecodeStreamMessage parses a user-data stream frame and returns one of
// *ExecutionUpdate, *AccountUpdate, *BalanceDelta or *SessionExpired. A frame
// that cannot be discriminated or parsed yields a *DecodeError.
func DecodeStreamMessage(data []byte) (any, error) {
	// combined-stream 帧先解包
	var wrapper struct {
		Stream string          `json:"stream"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Stream != "" && len(wrapper.Data) > 0 {
		data = wrapper.Data
	}

	var envelope struct {
		EventType string `json:"e"`
		EventTime int64  `json:"E"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON frame", Err: err}
	}
	if envelope.EventType == "" {
		return nil, &DecodeError{Reason: "frame has no event type"}
	}

	switch envelope.EventType {
	case eventExecutionReport:
		return decodeExecutionReport(data)
	case eventAccountPosition:
		return decodeAccountPosition(data)
	case eventBalanceUpdate:
		return decodeBalanceDelta(data)
	case eventListenKeyExpired:
		return &SessionExpired{}, nil
	default:
		return nil, &DecodeError{Reason: "unknown event type " + envelope.EventType}
	}
}

func decodeExecutionReport(data []byte) (*ExecutionUpdate, error) {
	var report struct {
		EventType       string `json:"e"`
		Symbol          string `json:"s"`
		ClientOrderID   string `json:"c"`
		Side            string `json:"S"`
		OrderType       string `json:"o"`
		Quantity        string `json:"q"`
		Price           string `json:"p"`
		Status          string `json:"X"`
		OrderID         int64  `json:"i"`
		LastQty         string `json:"l"`
		CumQty          string `json:"z"`
		LastPrice       string `json:"L"`
		Commission      string `json:"n"`
		CommissionAsset string `json:"N"`
		TradeTime       int64  `json:"T"`
		TradeID         int64  `json:"t"`
		OrigClientID    string `json:"C"` // set on cancels
		CreationTime    int64  `json:"O"`
		EventTime       int64  `json:"E"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &DecodeError{Reason: "invalid execution report", Err: err}
	}

	status, ok := StatusFromBinance(report.Status)
	if !ok {
		return nil, &DecodeError{Reason: "unknown order status " + report.Status}
	}
	side, ok := SideFromBinance(report.Side)
	if !ok {
		return nil, &DecodeError{Reason: "unknown order side " + report.Side}
	}
	orderType, ok := OrderTypeFromBinance(report.OrderType)
	if !ok {
		return nil, &DecodeError{Reason: "unknown order type " + report.OrderType}
	}

	price, _ := decimal.NewFromString(report.Price)
	qty, _ := decimal.NewFromString(report.Quantity)
	filled, _ := decimal.NewFromString(report.CumQty)

	// 撤单回报中原始客户订单ID在C字段
	clientID := report.ClientOrderID
	if report.OrigClientID != "" {
		clientID = report.OrigClientID
	}

	update := &ExecutionUpdate{
		Order: schema.Order{
			Symbol:        report.Symbol,
			OrderID:       strconv.FormatInt(report.OrderID, 10),
			ClientOrderID: clientID,
			Side:          side,
			Type:          orderType,
			Status:        status,
			Price:         price,
			Quantity:      qty,
			FilledQty:     filled,
			CreatedAt:     time.UnixMilli(report.CreationTime),
			UpdatedAt:     time.UnixMilli(report.EventTime),
		},
	}

	lastQty, _ := decimal.NewFromString(report.LastQty)
	if report.TradeID > 0 && lastQty.IsPositive() {
		lastPrice, _ := decimal.NewFromString(report.LastPrice)
		commission, _ := decimal.NewFromString(report.Commission)
		update.Trade = &schema.Trade{
			Symbol:          report.Symbol,
			TradeID:         strconv.FormatInt(report.TradeID, 10),
			OrderID:         update.Order.OrderID,
			Side:            side,
			Price:           lastPrice,
			Quantity:        lastQty,
			Commission:      commission,
			CommissionAsset: report.CommissionAsset,
			Timestamp:       time.UnixMilli(report.TradeTime),
		}
	}
	return update, nil
}

func decodeAccountPosition(data []byte) (*AccountUpdate, error) {
	var pos struct {
		EventType string `json:"e"`
		EventTime int64  `json:"E"`
		Balances  []struct {
			Asset  string `json:"a"`
			Free   string `json:"f"`
			Locked string `json:"l"`
		} `json:"B"`
	}
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil, &DecodeError{Reason: "invalid account position", Err: err}
	}

	account := schema.Account{UpdatedAt: time.UnixMilli(pos.EventTime)}
	for _, b := range pos.Balances {
		free, _ := decimal.NewFromString(b.Free)
		locked, _ := decimal.NewFromString(b.Locked)
		account.Balances = append(account.Balances, schema.Balance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
		})
	}
	return &AccountUpdate{Account: account}, nil
}

func decodeBalanceDelta(data []byte) (*BalanceDelta, error) {
	var upd struct {
		Asset     string `json:"a"`
		Delta     string `json:"d"`
		ClearTime int64  `json:"T"`
	}
	if err := json.Unmarshal(data, &upd); err != nil {
		return nil, &DecodeError{Reason: "invalid balance update", Err: err}
	}
	delta, err := decimal.NewFromString(upd.Delta)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid balance delta", Err: err}
	}
	return &BalanceDelta{
		Asset: upd.Asset,
		Delta: delta,
		At:    time.UnixMilli(upd.ClearTime),
	}, nil
}

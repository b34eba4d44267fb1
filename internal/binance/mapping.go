package binance

import "github.com/quantgate/binance-gateway/pkg/schema"

// Static bidirectional mapping tables between Binance's vocabulary and the
// host platform's. Forward maps are declared; reverse maps are derived at
// load time. Every reverse mapping must be injective, which mapping_test.go
// checks mechanically.
//
// Binance's EXPIRED status is deliberately absent: the decoder folds it into
// Cancelled before table lookup so the reverse table stays injective.

// 委托状态映射
var statusFromBinance = map[string]schema.OrderStatus{
	"NEW":              schema.OrderStatusPendingNew,
	"PARTIALLY_FILLED": schema.OrderStatusPartiallyFilled,
	"FILLED":           schema.OrderStatusFilled,
	"CANCELED":         schema.OrderStatusCancelled,
	"REJECTED":         schema.OrderStatusRejected,
}

// 委托类型映射
var orderTypeToBinance = map[schema.OrderType]string{
	schema.OrderTypeLimit:  "LIMIT",
	schema.OrderTypeMarket: "MARKET",
}

// 买卖方向映射
var sideToBinance = map[schema.OrderSide]string{
	schema.OrderSideBuy:  "BUY",
	schema.OrderSideSell: "SELL",
}

// 数据频率映射
var intervalToBinance = map[schema.Interval]string{
	schema.IntervalMinute: "1m",
	schema.IntervalHour:   "1h",
	schema.IntervalDaily:  "1d",
}

var (
	statusToBinance      = make(map[schema.OrderStatus]string, len(statusFromBinance))
	orderTypeFromBinance = make(map[string]schema.OrderType, len(orderTypeToBinance))
	sideFromBinance      = make(map[string]schema.OrderSide, len(sideToBinance))
	intervalFromBinance  = make(map[string]schema.Interval, len(intervalToBinance))
)

func init() {
	for k, v := range statusFromBinance {
		statusToBinance[v] = k
	}
	for k, v := range orderTypeToBinance {
		orderTypeFromBinance[v] = k
	}
	for k, v := range sideToBinance {
		sideFromBinance[v] = k
	}
	for k, v := range intervalToBinance {
		intervalFromBinance[v] = k
	}
}

// StatusFromBinance maps an exchange order status to the internal vocabulary.
func StatusFromBinance(s string) (schema.OrderStatus, bool) {
	// EXPIRED carries no distinct internal state; treat as cancelled.
	if s == "EXPIRED" {
		return schema.OrderStatusCancelled, true
	}
	v, ok := statusFromBinance[s]
	return v, ok
}

// StatusToBinance maps an internal order status to the exchange vocabulary.
func StatusToBinance(s schema.OrderStatus) (string, bool) {
	v, ok := statusToBinance[s]
	return v, ok
}

// OrderTypeToBinance maps an internal order type to the exchange vocabulary.
func OrderTypeToBinance(t schema.OrderType) (string, bool) {
	v, ok := orderTypeToBinance[t]
	return v, ok
}

// OrderTypeFromBinance maps an exchange order type to the internal vocabulary.
func OrderTypeFromBinance(t string) (schema.OrderType, bool) {
	v, ok := orderTypeFromBinance[t]
	return v, ok
}

// SideToBinance maps an internal order side to the exchange vocabulary.
func SideToBinance(s schema.OrderSide) (string, bool) {
	v, ok := sideToBinance[s]
	return v, ok
}

// SideFromBinance maps an exchange order side to the internal vocabulary.
func SideFromBinance(s string) (schema.OrderSide, bool) {
	v, ok := sideFromBinance[s]
	return v, ok
}

// IntervalToBinance maps an internal bar interval to the exchange vocabulary.
func IntervalToBinance(i schema.Interval) (string, bool) {
	v, ok := intervalToBinance[i]
	return v, ok
}

// IntervalFromBinance maps an exchange bar interval to the internal vocabulary.
func IntervalFromBinance(i string) (schema.Interval, bool) {
	v, ok := intervalFromBinance[i]
	return v, ok
}

package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServerKind selects the exchange environment the gateway connects to.
type ServerKind string

const (
	ServerLive ServerKind = "live"
	ServerTest ServerKind = "test"
)

// ChannelKind identifies one of the two gateway connections.
type ChannelKind string

const (
	ChannelControl ChannelKind = "control" // 请求/响应通道 (ws-api)
	ChannelStream  ChannelKind = "stream"  // 用户数据推送通道
)

// ConnState is the lifecycle state of a single connection.
type ConnState string

const (
	ConnClosed     ConnState = "closed"
	ConnConnecting ConnState = "connecting"
	ConnOpen       ConnState = "open"
	ConnErroring   ConnState = "erroring"
)

// OrderSide defines the side of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"  // 买单
	OrderSideSell OrderSide = "sell" // 卖单
)

// OrderType defines the type of an order.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"  // 限价单
	OrderTypeMarket OrderType = "market" // 市价单
)

// OrderStatus defines the status of an order. The three terminal states are
// final: once reached, no further mutation of the order is permitted.
type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "pending_new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// Interval is the host platform's bar frequency vocabulary.
type Interval string

const (
	IntervalMinute Interval = "minute"
	IntervalHour   Interval = "hour"
	IntervalDaily  Interval = "daily"
)

// IntervalDelta maps an interval to the span of one bar, used when paging
// history queries.
var IntervalDelta = map[Interval]time.Duration{
	IntervalMinute: time.Minute,
	IntervalHour:   time.Hour,
	IntervalDaily:  24 * time.Hour,
}

// Order represents a trading order owned by the gateway's order table.
type Order struct {
	Symbol        string          `json:"symbol"`        // 交易对
	OrderID       string          `json:"orderId"`       // 交易所订单ID
	ClientOrderID string          `json:"clientOrderId"` // 客户端订单ID
	Side          OrderSide       `json:"side"`
	Type          OrderType       `json:"type"`
	Status        OrderStatus     `json:"status"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	FilledQty     decimal.Decimal `json:"filledQty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Trade represents a single fill of an order.
type Trade struct {
	Symbol          string          `json:"symbol"`
	TradeID         string          `json:"tradeId"`
	OrderID         string          `json:"orderId"`
	Side            OrderSide       `json:"side"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Balance is a single asset balance.
type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// Account is the spot account snapshot pushed to the host platform.
type Account struct {
	Balances  []Balance `json:"balances"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Bar is a normalized candle returned by history queries.
type Bar struct {
	Symbol      string          `json:"symbol"`
	Interval    Interval        `json:"interval"`
	OpenTime    time.Time       `json:"openTime"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      decimal.Decimal `json:"volume"`
	QuoteVolume decimal.Decimal `json:"quoteVolume"`
}

// Contract carries the trading rules of one symbol.
type Contract struct {
	Symbol            string          `json:"symbol"`
	Base              string          `json:"base"`
	Quote             string          `json:"quote"`
	PricePrecision    int             `json:"pricePrecision"`
	QuantityPrecision int             `json:"quantityPrecision"`
	TickSize          decimal.Decimal `json:"tickSize"`
	StepSize          decimal.Decimal `json:"stepSize"`
	MinQuantity       decimal.Decimal `json:"minQuantity"`
	MinNotional       decimal.Decimal `json:"minNotional"`
}

// OrderRequest is the host platform's order submission request.
type OrderRequest struct {
	Symbol   string
	Side     OrderSide
	Type     OrderType
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// CancelRequest identifies the order to cancel. Either OrderID or
// ClientOrderID must be set; ClientOrderID wins when both are present.
type CancelRequest struct {
	Symbol        string
	OrderID       string
	ClientOrderID string
}

// HistoryRequest asks for bars of one symbol over [Start, End).
type HistoryRequest struct {
	Symbol   string
	Interval Interval
	Start    time.Time
	End      time.Time
}

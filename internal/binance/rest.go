package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/quantgate/binance-gateway/pkg/logger"
	"github.com/quantgate/binance-gateway/pkg/schema"
)

const (
	apiV3Ping           = "/api/v3/ping"
	apiV3UserDataStream = "/api/v3/userDataStream"
	apiV3ExchangeInfo   = "/api/v3/exchangeInfo"
	apiV3Account        = "/api/v3/account"
	apiV3OpenOrders     = "/api/v3/openOrders"
	apiV3Klines         = "/api/v3/klines"

	// ListenKeyTTL is how long the exchange keeps a listen key alive without
	// a keepalive call.
	ListenKeyTTL = 60 * time.Minute

	klinesMaxLimit = 1000
)

// RESTClient wraps the spot REST API used by the gateway.
type RESTClient struct {
	http    *resty.Client
	signer  *Signer
	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewRESTClient builds a client against the given endpoints. proxyURL may be
// empty.
func NewRESTClient(ep Endpoints, signer *Signer, proxyURL string) *RESTClient {
	c := resty.New().
		SetBaseURL(ep.REST).
		SetTimeout(10 * time.Second).
		SetHeader("X-MBX-APIKEY", signer.APIKey())
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return &RESTClient{
		http:   c,
		signer: signer,
		// 限速遵循交易所 1200 weight/min 的默认额度
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		log:     logger.WithComponent("binance_rest"),
	}
}

// apiError extracts the exchange error payload from a non-2xx response.
func apiError(r *resty.Response) error {
	var e APIError
	if err := json.Unmarshal(r.Body(), &e); err != nil || e.Code == 0 {
		return &APIError{Code: r.StatusCode(), Message: r.Status()}
	}
	return &e
}

func (c *RESTClient) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// Ping checks REST connectivity.
func (c *RESTClient) Ping(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	r, err := c.http.R().SetContext(ctx).Get(apiV3Ping)
	if err != nil {
		return err
	}
	if r.IsError() {
		return apiError(r)
	}
	return nil
}

// NewListenKey mints a user-data session token.
func (c *RESTClient) NewListenKey(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	var resp struct {
		ListenKey string `json:"listenKey"`
	}
	r, err := c.http.R().SetContext(ctx).SetResult(&resp).Post(apiV3UserDataStream)
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", apiError(r)
	}
	if resp.ListenKey == "" {
		return "", fmt.Errorf("empty listen key in response")
	}
	return resp.ListenKey, nil
}

// KeepAliveListenKey extends a listen key's validity.
func (c *RESTClient) KeepAliveListenKey(ctx context.Context, listenKey string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	r, err := c.http.R().SetContext(ctx).
		SetQueryParam("listenKey", listenKey).
		Put(apiV3UserDataStream)
	if err != nil {
		return err
	}
	if r.IsError() {
		return apiError(r)
	}
	return nil
}

// CloseListenKey invalidates a listen key.
func (c *RESTClient) CloseListenKey(ctx context.Context, listenKey string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	r, err := c.http.R().SetContext(ctx).
		SetQueryParam("listenKey", listenKey).
		Delete(apiV3UserDataStream)
	if err != nil {
		return err
	}
	if r.IsError() {
		return apiError(r)
	}
	return nil
}

// GetExchangeInfo fetches trading rules for all spot symbols.
func (c *RESTClient) GetExchangeInfo(ctx context.Context) ([]schema.Contract, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	var resp struct {
		Symbols []struct {
			Symbol               string `json:"symbol"`
			Status               string `json:"status"`
			BaseAsset            string `json:"baseAsset"`
			BaseAssetPrecision   int    `json:"baseAssetPrecision"`
			QuoteAsset           string `json:"quoteAsset"`
			QuoteAssetPrecision  int    `json:"quoteAssetPrecision"`
			IsSpotTradingAllowed bool   `json:"isSpotTradingAllowed"`
			Filters              []struct {
				FilterType  string `json:"filterType"`
				TickSize    string `json:"tickSize,omitempty"`
				MinQty      string `json:"minQty,omitempty"`
				StepSize    string `json:"stepSize,omitempty"`
				MinNotional string `json:"minNotional,omitempty"`
			} `json:"filters"`
		} `json:"symbols"`
	}

	r, err := c.http.R().SetContext(ctx).SetResult(&resp).Get(apiV3ExchangeInfo)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, apiError(r)
	}

	contracts := make([]schema.Contract, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		// 只处理现货交易且状态为TRADING的交易对
		if s.Status != "TRADING" || !s.IsSpotTradingAllowed {
			continue
		}
		contract := schema.Contract{
			Symbol:            s.Symbol,
			Base:              s.BaseAsset,
			Quote:             s.QuoteAsset,
			PricePrecision:    s.QuoteAssetPrecision,
			QuantityPrecision: s.BaseAssetPrecision,
		}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				contract.TickSize, _ = decimal.NewFromString(f.TickSize)
			case "LOT_SIZE":
				contract.MinQuantity, _ = decimal.NewFromString(f.MinQty)
				contract.StepSize, _ = decimal.NewFromString(f.StepSize)
			case "MIN_NOTIONAL", "NOTIONAL":
				contract.MinNotional, _ = decimal.NewFromString(f.MinNotional)
			}
		}
		contracts = append(contracts, contract)
	}
	return contracts, nil
}

// GetAccount fetches the spot account snapshot. SIGNED.
func (c *RESTClient) GetAccount(ctx context.Context) (schema.Account, error) {
	if err := c.wait(ctx); err != nil {
		return schema.Account{}, err
	}
	var resp struct {
		UpdateTime int64 `json:"updateTime"`
		Balances   []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}

	r, err := c.http.R().SetContext(ctx).
		SetQueryString(c.signer.SignQuery(url.Values{})).
		SetResult(&resp).
		Get(apiV3Account)
	if err != nil {
		return schema.Account{}, err
	}
	if r.IsError() {
		return schema.Account{}, apiError(r)
	}

	account := schema.Account{UpdatedAt: time.UnixMilli(resp.UpdateTime)}
	for _, b := range resp.Balances {
		free, _ := decimal.NewFromString(b.Free)
		locked, _ := decimal.NewFromString(b.Locked)
		// 跳过零余额资产
		if free.IsZero() && locked.IsZero() {
			continue
		}
		account.Balances = append(account.Balances, schema.Balance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
		})
	}
	return account, nil
}

// GetOpenOrders fetches resting orders, optionally filtered by symbol. SIGNED.
func (c *RESTClient) GetOpenOrders(ctx context.Context, symbol string) ([]schema.Order, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}

	var resp []restOrder
	r, err := c.http.R().SetContext(ctx).
		SetQueryString(c.signer.SignQuery(q)).
		SetResult(&resp).
		Get(apiV3OpenOrders)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, apiError(r)
	}

	orders := make([]schema.Order, 0, len(resp))
	for _, ro := range resp {
		order, err := ro.toSchema()
		if err != nil {
			c.log.WithError(err).WithField("order_id", ro.OrderID).Warn("skipping unmappable open order")
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// restOrder is the order shape shared by the order REST endpoints.
type restOrder struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	Time          int64  `json:"time"`
	UpdateTime    int64  `json:"updateTime"`
}

func (ro restOrder) toSchema() (schema.Order, error) {
	status, ok := StatusFromBinance(ro.Status)
	if !ok {
		return schema.Order{}, fmt.Errorf("unknown order status %q", ro.Status)
	}
	side, ok := SideFromBinance(ro.Side)
	if !ok {
		return schema.Order{}, fmt.Errorf("unknown order side %q", ro.Side)
	}
	orderType, ok := OrderTypeFromBinance(ro.Type)
	if !ok {
		return schema.Order{}, fmt.Errorf("unknown order type %q", ro.Type)
	}

	price, _ := decimal.NewFromString(ro.Price)
	qty, _ := decimal.NewFromString(ro.OrigQty)
	filled, _ := decimal.NewFromString(ro.ExecutedQty)

	return schema.Order{
		Symbol:        ro.Symbol,
		OrderID:       strconv.FormatInt(ro.OrderID, 10),
		ClientOrderID: ro.ClientOrderID,
		Side:          side,
		Type:          orderType,
		Status:        status,
		Price:         price,
		Quantity:      qty,
		FilledQty:     filled,
		CreatedAt:     time.UnixMilli(ro.Time),
		UpdatedAt:     time.UnixMilli(ro.UpdateTime),
	}, nil
}

// GetKlines fetches up to klinesMaxLimit bars of one page.
func (c *RESTClient) GetKlines(ctx context.Context, symbol string, interval schema.Interval, start, end time.Time) ([]schema.Bar, error) {
	binanceInterval, ok := IntervalToBinance(interval)
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	// kline 返回为混合类型数组
	var resp [][]json.RawMessage
	r, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":    symbol,
			"interval":  binanceInterval,
			"startTime": strconv.FormatInt(start.UnixMilli(), 10),
			"endTime":   strconv.FormatInt(end.UnixMilli(), 10),
			"limit":     strconv.Itoa(klinesMaxLimit),
		}).
		SetResult(&resp).
		Get(apiV3Klines)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, apiError(r)
	}

	bars := make([]schema.Bar, 0, len(resp))
	for _, row := range resp {
		if len(row) < 8 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}
		bar := schema.Bar{
			Symbol:   symbol,
			Interval: interval,
			OpenTime: time.UnixMilli(openTime),
		}
		fields := []*decimal.Decimal{nil, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, nil, &bar.QuoteVolume}
		ok := true
		for i, dst := range fields {
			if dst == nil {
				continue
			}
			var s string
			if err := json.Unmarshal(row[i], &s); err != nil {
				ok = false
				break
			}
			v, err := decimal.NewFromString(s)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

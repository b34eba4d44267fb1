package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/quantgate/binance-gateway/internal/binance"
	"github.com/quantgate/binance-gateway/internal/store"
	"github.com/quantgate/binance-gateway/internal/ws"
	"github.com/quantgate/binance-gateway/pkg/interfaces"
	"github.com/quantgate/binance-gateway/pkg/logger"
	"github.com/quantgate/binance-gateway/pkg/schema"
)

const (
	methodOrderPlace  = "order.place"
	methodOrderCancel = "order.cancel"

	// renewalThreshold is how much listen key lifetime may remain before the
	// keeper sends a keepalive.
	renewalThreshold = 10 * time.Minute

	defaultRequestTimeout = 5 * time.Second
	closeTimeout          = 3 * time.Second
)

// restAPI is the REST surface the gateway consumes.
type restAPI interface {
	Ping(ctx context.Context) error
	NewListenKey(ctx context.Context) (string, error)
	KeepAliveListenKey(ctx context.Context, listenKey string) error
	CloseListenKey(ctx context.Context, listenKey string) error
	GetExchangeInfo(ctx context.Context) ([]schema.Contract, error)
	GetAccount(ctx context.Context) (schema.Account, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]schema.Order, error)
	GetKlines(ctx context.Context, symbol string, interval schema.Interval, start, end time.Time) ([]schema.Bar, error)
}

// Callbacks are the host platform's event sinks. Nil members are skipped.
type Callbacks struct {
	OnOrder    func(schema.Order)
	OnTrade    func(schema.Trade)
	OnAccount  func(schema.Account)
	OnContract func(schema.Contract)
	OnLog      func(msg string)
}

// Options configures a Gateway.
type Options struct {
	Server         schema.ServerKind
	APIKey         string
	APISecret      string
	ProxyURL       string
	RequestTimeout time.Duration
	Callbacks      Callbacks
}

// Gateway is the spot trading adapter: it owns the REST client, the two
// websocket channels, the contract table and the order table, and forwards
// exchange pushes to the host platform through the callbacks.
type Gateway struct {
	opts      Options
	endpoints binance.Endpoints
	rest      restAPI
	signer    *binance.Signer
	log       *logrus.Entry

	// newChannel builds a channel for one of the two connections.
	newChannel func(kind schema.ChannelKind, wsURL string) interfaces.Channel

	contracts *store.ContractStore
	orders    *store.OrderStore

	mu        sync.Mutex
	running   bool
	control   interfaces.Channel
	stream    interfaces.Channel
	listenKey string
	// keyRenewedAt is when the listen key was minted or last kept alive.
	keyRenewedAt time.Time
	degraded     bool
	// account is the last known snapshot, kept so balance deltas can be
	// applied between full pushes.
	account schema.Account

	pendingMu sync.Mutex
	pending   map[string]chan wsAPIResponse

	wg sync.WaitGroup
}

// wsAPIResponse is a control channel response frame.
type wsAPIResponse struct {
	ID     string          `json:"id"`
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

// New builds a Gateway. No network activity happens until Connect.
func New(opts Options) *Gateway {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	ep := binance.EndpointsFor(opts.Server)
	signer := binance.NewSigner(opts.APIKey, opts.APISecret)

	g := &Gateway{
		opts:      opts,
		endpoints: ep,
		rest:      binance.NewRESTClient(ep, signer, opts.ProxyURL),
		signer:    signer,
		log:       logger.WithComponent("gateway"),
		contracts: store.NewContractStore(),
		orders:    store.NewOrderStore(),
		pending:   make(map[string]chan wsAPIResponse),
	}
	g.newChannel = func(kind schema.ChannelKind, wsURL string) interfaces.Channel {
		return ws.NewConn(kind, wsURL, opts.ProxyURL)
	}
	return g
}

// Connect bootstraps the session: REST reachability, contract download,
// listen key mint and both websocket connections. On any failure everything
// opened so far is torn down and a ConnectError is returned.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	if err := g.rest.Ping(ctx); err != nil {
		return &ConnectError{Reason: TransportFailure, Stage: "rest ping", Err: err}
	}

	contracts, err := g.rest.GetExchangeInfo(ctx)
	if err != nil {
		return &ConnectError{Reason: classifyConnect(err), Stage: "exchange info", Err: err}
	}
	g.contracts.Load(contracts)
	for _, c := range contracts {
		g.emitContract(c)
	}
	g.log.WithField("contracts", len(contracts)).Info("contract table loaded")

	listenKey, err := g.rest.NewListenKey(ctx)
	if err != nil {
		return &ConnectError{Reason: classifyConnect(err), Stage: "listen key", Err: err}
	}

	control := g.newChannel(schema.ChannelControl, g.endpoints.ControlWS)
	if err := control.Connect(ctx); err != nil {
		g.discardListenKey(listenKey)
		return &ConnectError{Reason: TransportFailure, Stage: "control channel", Err: err}
	}

	stream := g.newChannel(schema.ChannelStream, g.endpoints.StreamWS)
	if err := stream.Connect(ctx); err != nil {
		_ = control.Close(closeTimeout)
		g.discardListenKey(listenKey)
		return &ConnectError{Reason: TransportFailure, Stage: "stream channel", Err: err}
	}
	if err := subscribeUserData(ctx, stream, listenKey); err != nil {
		_ = stream.Close(closeTimeout)
		_ = control.Close(closeTimeout)
		g.discardListenKey(listenKey)
		return &ConnectError{Reason: TransportFailure, Stage: "stream subscribe", Err: err}
	}

	g.mu.Lock()
	g.running = true
	g.control = control
	g.stream = stream
	g.listenKey = listenKey
	g.keyRenewedAt = time.Now()
	g.degraded = false
	g.mu.Unlock()

	g.wg.Add(2)
	go g.dispatchControl(control)
	go g.dispatchStream(stream)

	g.log.WithField("server", g.opts.Server).Info("gateway connected")
	g.emitLog("gateway connected")

	// Initial snapshots. Failures here are reported but do not abort the
	// session: the stream will converge the state.
	if _, err := g.QueryAccount(ctx); err != nil {
		g.log.WithError(err).Warn("initial account query failed")
	}
	if _, err := g.QueryOpenOrders(ctx, ""); err != nil {
		g.log.WithError(err).Warn("initial open orders query failed")
	}
	return nil
}

// classifyConnect separates exchange rejections from transport faults. Any
// rejection the exchange answered with a code counts as an auth failure and
// carries the code and message verbatim through the wrapped error.
func classifyConnect(err error) ConnectReason {
	var apiErr *binance.APIError
	if errors.As(err, &apiErr) {
		return AuthFailure
	}
	return TransportFailure
}

func (g *Gateway) discardListenKey(listenKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := g.rest.CloseListenKey(ctx, listenKey); err != nil {
		g.log.WithError(err).Debug("listen key discard failed")
	}
}

func subscribeUserData(ctx context.Context, stream interfaces.Channel, listenKey string) error {
	return stream.WriteJSON(ctx, map[string]any{
		"method": "SUBSCRIBE",
		"params": []string{listenKey},
		"id":     1,
	})
}

// Close shuts the gateway down: the listen key is released best effort and
// both channels are closed bounded by a timeout.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return nil
	}
	g.running = false
	control, stream, listenKey := g.control, g.stream, g.listenKey
	g.control, g.stream, g.listenKey = nil, nil, ""
	g.mu.Unlock()

	if listenKey != "" {
		g.discardListenKey(listenKey)
	}
	if control != nil {
		_ = control.Close(closeTimeout)
	}
	if stream != nil {
		_ = stream.Close(closeTimeout)
	}
	g.wg.Wait()

	g.failPending()
	g.log.Info("gateway closed")
	return nil
}

// SessionDegraded reports whether the listen key session is in doubt after a
// failed renewal or an expiry push.
func (g *Gateway) SessionDegraded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degraded
}

// ProcessTimerEvent is the connection keeper tick, driven by the host
// platform's timer. Each tick probes the REST endpoint and both channels
// independently and renews the listen key at most once when its remaining
// lifetime falls below the threshold.
func (g *Gateway) ProcessTimerEvent() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	control, stream := g.control, g.stream
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), g.opts.RequestTimeout)
	defer cancel()

	if err := g.rest.Ping(ctx); err != nil {
		g.log.WithError(err).Warn("rest probe failed")
	}
	g.probeChannel(ctx, control)
	g.probeChannel(ctx, stream)

	// a stream redial above may have minted a fresh key, read the state again
	g.mu.Lock()
	listenKey, renewedAt := g.listenKey, g.keyRenewedAt
	g.mu.Unlock()

	if time.Since(renewedAt) >= binance.ListenKeyTTL-renewalThreshold {
		if err := g.rest.KeepAliveListenKey(ctx, listenKey); err != nil {
			sessErr := &SessionError{Reason: RenewalFailed, Err: err}
			g.log.WithError(err).Error("listen key renewal failed")
			g.emitLog(sessErr.Error())
			g.mu.Lock()
			g.degraded = true
			g.mu.Unlock()
			return
		}
		g.mu.Lock()
		g.keyRenewedAt = time.Now()
		g.degraded = false
		g.mu.Unlock()
		g.log.Debug("listen key renewed")
	}
}

// probeChannel pings an open channel and redials one that has gone away.
func (g *Gateway) probeChannel(ctx context.Context, ch interfaces.Channel) {
	if ch == nil {
		return
	}
	switch ch.State() {
	case schema.ConnOpen:
		if err := ch.Ping(); err != nil {
			g.log.WithField("channel", ch.Kind()).WithError(err).Warn("channel ping failed")
		}
	case schema.ConnConnecting:
		// dial in flight, leave it alone
	default:
		g.redialChannel(ctx, ch.Kind())
	}
}

func (g *Gateway) redialChannel(ctx context.Context, kind schema.ChannelKind) {
	g.log.WithField("channel", kind).Warn("channel down, redialing")

	var replacement interfaces.Channel
	switch kind {
	case schema.ChannelControl:
		replacement = g.newChannel(kind, g.endpoints.ControlWS)
		if err := replacement.Connect(ctx); err != nil {
			g.log.WithField("channel", kind).WithError(err).Error("redial failed")
			return
		}
	case schema.ChannelStream:
		// a dead stream may also have lost its listen key, mint a fresh one
		listenKey, err := g.rest.NewListenKey(ctx)
		if err != nil {
			g.log.WithError(err).Error("listen key mint failed during redial")
			return
		}
		replacement = g.newChannel(kind, g.endpoints.StreamWS)
		if err := replacement.Connect(ctx); err != nil {
			g.discardListenKey(listenKey)
			g.log.WithField("channel", kind).WithError(err).Error("redial failed")
			return
		}
		if err := subscribeUserData(ctx, replacement, listenKey); err != nil {
			_ = replacement.Close(closeTimeout)
			g.discardListenKey(listenKey)
			g.log.WithError(err).Error("stream resubscribe failed")
			return
		}
		g.mu.Lock()
		g.listenKey = listenKey
		g.keyRenewedAt = time.Now()
		g.degraded = false
		g.mu.Unlock()
	default:
		return
	}

	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		_ = replacement.Close(closeTimeout)
		return
	}
	if kind == schema.ChannelControl {
		g.control = replacement
	} else {
		g.stream = replacement
	}
	g.mu.Unlock()

	g.wg.Add(1)
	if kind == schema.ChannelControl {
		go g.dispatchControl(replacement)
	} else {
		go g.dispatchStream(replacement)
	}
	g.log.WithField("channel", kind).Info("channel reconnected")
}

// SendOrder places an order over the control channel and waits for the
// exchange acknowledgement. The order table is only written on a confirmed
// response, never optimistically.
func (g *Gateway) SendOrder(ctx context.Context, req schema.OrderRequest) (schema.Order, error) {
	if !g.isRunning() {
		return schema.Order{}, ErrNotConnected
	}
	if !g.contracts.Has(req.Symbol) {
		return schema.Order{}, &RequestError{Reason: Rejected, Message: "unknown symbol " + req.Symbol}
	}
	side, ok := binance.SideToBinance(req.Side)
	if !ok {
		return schema.Order{}, &RequestError{Reason: Rejected, Message: "unsupported side " + string(req.Side)}
	}
	orderType, ok := binance.OrderTypeToBinance(req.Type)
	if !ok {
		return schema.Order{}, &RequestError{Reason: Rejected, Message: "unsupported order type " + string(req.Type)}
	}

	clientOrderID := newClientOrderID()
	params := map[string]any{
		"symbol":           strings.ToUpper(req.Symbol),
		"side":             side,
		"type":             orderType,
		"quantity":         req.Quantity.String(),
		"newClientOrderId": clientOrderID,
	}
	if req.Type == schema.OrderTypeLimit {
		params["price"] = req.Price.String()
		params["timeInForce"] = "GTC"
	}

	resp, err := g.roundTrip(ctx, methodOrderPlace, params)
	if err != nil {
		return schema.Order{}, err
	}

	order, err := decodePlaceResult(resp.Result, req)
	if err != nil {
		g.log.WithError(err).Warn("order ack decode failed")
		return schema.Order{}, &RequestError{Reason: Rejected, Message: err.Error()}
	}
	g.orders.Upsert(order)
	g.emitOrder(order)
	return order, nil
}

// CancelOrder cancels an order over the control channel. The resulting order
// state arrives through the user data stream.
func (g *Gateway) CancelOrder(ctx context.Context, req schema.CancelRequest) error {
	if !g.isRunning() {
		return ErrNotConnected
	}
	params := map[string]any{
		"symbol": strings.ToUpper(req.Symbol),
	}
	switch {
	case req.ClientOrderID != "":
		params["origClientOrderId"] = req.ClientOrderID
	case req.OrderID != "":
		params["orderId"] = req.OrderID
	default:
		return &RequestError{Reason: Rejected, Message: "cancel request has no order id"}
	}

	_, err := g.roundTrip(ctx, methodOrderCancel, params)
	return err
}

// roundTrip sends one signed control channel request and waits for its
// response, bounded by the request timeout.
func (g *Gateway) roundTrip(ctx context.Context, method string, params map[string]any) (wsAPIResponse, error) {
	g.mu.Lock()
	control := g.control
	g.mu.Unlock()
	if control == nil {
		return wsAPIResponse{}, ErrNotConnected
	}

	id := uuid.NewString()
	respCh := make(chan wsAPIResponse, 1)
	g.pendingMu.Lock()
	g.pending[id] = respCh
	g.pendingMu.Unlock()
	defer func() {
		g.pendingMu.Lock()
		delete(g.pending, id)
		g.pendingMu.Unlock()
	}()

	frame := map[string]any{
		"id":     id,
		"method": method,
		"params": g.signer.SignParams(params),
	}
	if err := control.WriteJSON(ctx, frame); err != nil {
		return wsAPIResponse{}, &RequestError{Reason: Rejected, Message: err.Error()}
	}

	timer := time.NewTimer(g.opts.RequestTimeout)
	defer timer.Stop()
	select {
	case resp := <-respCh:
		if resp.Status != 200 {
			reqErr := &RequestError{Reason: Rejected}
			if resp.Error != nil {
				reqErr.Code = resp.Error.Code
				reqErr.Message = resp.Error.Msg
			}
			return wsAPIResponse{}, reqErr
		}
		return resp, nil
	case <-timer.C:
		return wsAPIResponse{}, &RequestError{Reason: Timeout}
	case <-ctx.Done():
		return wsAPIResponse{}, &RequestError{Reason: Timeout}
	}
}

func newClientOrderID() string {
	return "qg-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

func decodePlaceResult(raw json.RawMessage, req schema.OrderRequest) (schema.Order, error) {
	var result struct {
		Symbol        string `json:"symbol"`
		OrderID       int64  `json:"orderId"`
		ClientOrderID string `json:"clientOrderId"`
		TransactTime  int64  `json:"transactTime"`
		Price         string `json:"price"`
		OrigQty       string `json:"origQty"`
		ExecutedQty   string `json:"executedQty"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return schema.Order{}, err
	}
	status, ok := binance.StatusFromBinance(result.Status)
	if !ok {
		return schema.Order{}, errors.New("unknown order status " + result.Status)
	}

	price, _ := decimal.NewFromString(result.Price)
	qty, _ := decimal.NewFromString(result.OrigQty)
	filled, _ := decimal.NewFromString(result.ExecutedQty)
	at := time.UnixMilli(result.TransactTime)
	return schema.Order{
		Symbol:        result.Symbol,
		OrderID:       strconv.FormatInt(result.OrderID, 10),
		ClientOrderID: result.ClientOrderID,
		Side:          req.Side,
		Type:          req.Type,
		Status:        status,
		Price:         price,
		Quantity:      qty,
		FilledQty:     filled,
		CreatedAt:     at,
		UpdatedAt:     at,
	}, nil
}

// QueryAccount fetches the spot account snapshot and forwards it.
func (g *Gateway) QueryAccount(ctx context.Context) (schema.Account, error) {
	account, err := g.rest.GetAccount(ctx)
	if err != nil {
		return schema.Account{}, err
	}
	g.mu.Lock()
	g.account = account
	g.mu.Unlock()
	g.emitAccount(account)
	return account, nil
}

// applyBalanceDelta folds a single-asset delta into the held snapshot. It
// reports false before the first full snapshot has arrived.
func (g *Gateway) applyBalanceDelta(delta *binance.BalanceDelta) (schema.Account, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.account.UpdatedAt.IsZero() {
		return schema.Account{}, false
	}

	applied := false
	for i := range g.account.Balances {
		if g.account.Balances[i].Asset == delta.Asset {
			g.account.Balances[i].Free = g.account.Balances[i].Free.Add(delta.Delta)
			applied = true
			break
		}
	}
	if !applied {
		g.account.Balances = append(g.account.Balances, schema.Balance{
			Asset: delta.Asset,
			Free:  delta.Delta,
		})
	}
	g.account.UpdatedAt = delta.At

	out := schema.Account{
		Balances:  make([]schema.Balance, len(g.account.Balances)),
		UpdatedAt: g.account.UpdatedAt,
	}
	copy(out.Balances, g.account.Balances)
	return out, true
}

// QueryPosition is a no-op for spot: positions are balances, so the account
// snapshot is refreshed instead.
func (g *Gateway) QueryPosition(ctx context.Context) error {
	_, err := g.QueryAccount(ctx)
	return err
}

// QueryOpenOrders fetches resting orders, seeds the order table and forwards
// each order. An empty symbol queries all symbols.
func (g *Gateway) QueryOpenOrders(ctx context.Context, symbol string) ([]schema.Order, error) {
	orders, err := g.rest.GetOpenOrders(ctx, symbol)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if g.orders.Upsert(o) {
			g.emitOrder(o)
		}
	}
	return orders, nil
}

// QueryHistory fetches bars over the request window, paging by the interval
// span until the window is covered.
func (g *Gateway) QueryHistory(ctx context.Context, req schema.HistoryRequest) ([]schema.Bar, error) {
	delta, ok := schema.IntervalDelta[req.Interval]
	if !ok {
		return nil, &RequestError{Reason: Rejected, Message: "unsupported interval " + string(req.Interval)}
	}

	var bars []schema.Bar
	start := req.Start
	for start.Before(req.End) {
		page, err := g.rest.GetKlines(ctx, req.Symbol, req.Interval, start, req.End)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		bars = append(bars, page...)
		next := page[len(page)-1].OpenTime.Add(delta)
		if !next.After(start) {
			break
		}
		start = next
	}
	return bars, nil
}

// Orders returns a copy of the order table.
func (g *Gateway) Orders() []schema.Order { return g.orders.Snapshot() }

// Contract returns the trading rules of one symbol.
func (g *Gateway) Contract(symbol string) (schema.Contract, bool) {
	return g.contracts.Get(symbol)
}

// dispatchControl consumes the control channel event stream and matches
// response frames against pending requests.
func (g *Gateway) dispatchControl(ch interfaces.Channel) {
	defer g.wg.Done()
	for ev := range ch.Events() {
		switch ev.Kind {
		case interfaces.EventMessage:
			var resp wsAPIResponse
			if err := json.Unmarshal(ev.Data, &resp); err != nil {
				g.log.WithError(err).Warn("malformed control frame")
				continue
			}
			g.pendingMu.Lock()
			waiter, ok := g.pending[resp.ID]
			g.pendingMu.Unlock()
			if !ok {
				g.log.WithField("id", resp.ID).Warn("control response matches no pending request")
				continue
			}
			select {
			case waiter <- resp:
			default:
				g.log.WithField("id", resp.ID).Warn("duplicate control response dropped")
			}
		case interfaces.EventError:
			g.log.WithError(ev.Err).Error("control channel error")
		case interfaces.EventClose:
			g.log.Warn("control channel closed")
		default:
			g.logLifecycle(ev)
		}
	}
}

func (g *Gateway) logLifecycle(ev interfaces.Event) {
	g.log.WithFields(logger.Fields{
		"channel": ev.Channel,
		"event":   ev.Kind.String(),
	}).Debug("channel event")
}

// dispatchStream consumes the user data stream and translates pushes into
// host platform events.
func (g *Gateway) dispatchStream(ch interfaces.Channel) {
	defer g.wg.Done()
	for ev := range ch.Events() {
		switch ev.Kind {
		case interfaces.EventMessage:
			g.handleStreamMessage(ev.Data)
		case interfaces.EventError:
			g.log.WithError(ev.Err).Error("stream channel error")
		case interfaces.EventClose:
			g.log.Warn("stream channel closed")
		default:
			g.logLifecycle(ev)
		}
	}
}

func (g *Gateway) handleStreamMessage(data []byte) {
	// subscription acks have an id and no event type
	var ack struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &ack); err == nil && ack.ID != nil {
		return
	}

	decoded, err := binance.DecodeStreamMessage(data)
	if err != nil {
		g.log.WithError(err).Warn("stream frame dropped")
		return
	}

	switch msg := decoded.(type) {
	case *binance.ExecutionUpdate:
		if g.orders.Upsert(msg.Order) {
			g.emitOrder(msg.Order)
		}
		if msg.Trade != nil {
			g.emitTrade(*msg.Trade)
		}
	case *binance.AccountUpdate:
		g.mu.Lock()
		g.account = msg.Account
		g.mu.Unlock()
		g.emitAccount(msg.Account)
	case *binance.BalanceDelta:
		if account, ok := g.applyBalanceDelta(msg); ok {
			g.emitAccount(account)
		} else {
			g.log.WithFields(logger.Fields{
				"asset": msg.Asset,
				"delta": msg.Delta.String(),
			}).Debug("balance delta before first snapshot, dropped")
		}
	case *binance.SessionExpired:
		sessErr := &SessionError{Reason: Expired, Err: errors.New("listen key expired push")}
		g.log.Error(sessErr.Error())
		g.emitLog(sessErr.Error())
		g.mu.Lock()
		g.degraded = true
		g.mu.Unlock()
	}
}

func (g *Gateway) isRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// failPending wakes in-flight request waiters. A closed waiter channel reads
// as a zero response, which the round trip reports as a rejection.
func (g *Gateway) failPending() {
	g.pendingMu.Lock()
	defer g.pendingMu.Unlock()
	for id, waiter := range g.pending {
		close(waiter)
		delete(g.pending, id)
	}
}

func (g *Gateway) emitOrder(o schema.Order) {
	if g.opts.Callbacks.OnOrder != nil {
		g.opts.Callbacks.OnOrder(o)
	}
}

func (g *Gateway) emitTrade(t schema.Trade) {
	if g.opts.Callbacks.OnTrade != nil {
		g.opts.Callbacks.OnTrade(t)
	}
}

func (g *Gateway) emitAccount(a schema.Account) {
	if g.opts.Callbacks.OnAccount != nil {
		g.opts.Callbacks.OnAccount(a)
	}
}

func (g *Gateway) emitContract(c schema.Contract) {
	if g.opts.Callbacks.OnContract != nil {
		g.opts.Callbacks.OnContract(c)
	}
}

func (g *Gateway) emitLog(msg string) {
	if g.opts.Callbacks.OnLog != nil {
		g.opts.Callbacks.OnLog(msg)
	}
}

package binance

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"futures-trader/internal/config"
	"futures-trader/internal/core"
)

// Client is a futures-trader session over the Binance USDⓈ-M futures API.
type Client struct {
	fc         *futures.Client
	recvWindow int64

	mu         sync.Mutex
	rulesCache map[string]core.Rules
}

func NewClient(cfg config.ExchangeConfig, testnet bool) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("api_key/api_secret required")
	}
	futures.UseTestnet = testnet
	fc := binance.NewFuturesClient(cfg.APIKey, cfg.APISecret)
	timeout := 15 * time.Second
	if cfg.HTTPTimeoutSec > 0 {
		timeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
	}
	fc.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		fc:         fc,
		recvWindow: cfg.RecvWindowMs,
		rulesCache: make(map[string]core.Rules),
	}, nil
}

func (c *Client) Name() string {
	return "binance-futures"
}

func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	ms, err := c.fc.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, classifyError(err)
	}
	return time.UnixMilli(ms), nil
}

// RefreshRules fetches exchange info and rebuilds the trading-rule cache.
func (c *Client) RefreshRules(ctx context.Context) error {
	info, err := c.fc.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return classifyError(err)
	}
	fresh := make(map[string]core.Rules, len(info.Symbols))
	for i := range info.Symbols {
		s := &info.Symbols[i]
		rules, err := parseRules(s.Filters)
		if err != nil {
			continue
		}
		fresh[s.Symbol] = rules
	}
	c.mu.Lock()
	c.rulesCache = fresh
	c.mu.Unlock()
	return nil
}

// Rules returns the cached filters for symbol, refreshing the cache on a
// miss. A symbol absent after a refresh has no published trading rules.
func (c *Client) Rules(ctx context.Context, symbol string) (core.Rules, error) {
	c.mu.Lock()
	rules, ok := c.rulesCache[symbol]
	c.mu.Unlock()
	if ok {
		return rules, nil
	}
	if err := c.RefreshRules(ctx); err != nil {
		return core.Rules{}, err
	}
	c.mu.Lock()
	rules, ok = c.rulesCache[symbol]
	c.mu.Unlock()
	if !ok {
		return core.Rules{}, core.ErrSymbolNotFound
	}
	return rules, nil
}

func (c *Client) AssetBalance(ctx context.Context, asset string) (core.Balance, error) {
	account, err := c.fc.NewGetAccountService().Do(ctx, c.signedOpts()...)
	if err != nil {
		return core.Balance{}, classifyError(err)
	}
	for _, a := range account.Assets {
		if a.Asset != asset {
			continue
		}
		wallet, err := decimal.NewFromString(a.WalletBalance)
		if err != nil {
			return core.Balance{}, err
		}
		available, err := decimal.NewFromString(a.AvailableBalance)
		if err != nil {
			return core.Balance{}, err
		}
		return core.Balance{Asset: asset, Wallet: wallet, Available: available}, nil
	}
	return core.Balance{Asset: asset}, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req core.OrderRequest) (core.Order, error) {
	rules, _ := c.cachedRules(req.Symbol)
	svc := c.fc.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Quantity(formatToStep(req.Qty, rules.QtyStep))
	switch req.Type {
	case core.Market:
		svc.Type(futures.OrderTypeMarket)
	case core.Limit:
		svc.Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(formatToStep(req.Price, rules.PriceTick))
	case core.StopLossLimit:
		// The futures API spells the stop-limit order type STOP.
		svc.Type(futures.OrderTypeStop).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(formatToStep(req.Price, rules.PriceTick)).
			StopPrice(formatToStep(req.StopPrice, rules.PriceTick))
	default:
		return core.Order{}, core.ErrInvalidOrder
	}
	res, err := svc.Do(ctx, c.signedOpts()...)
	if err != nil {
		return core.Order{}, classifyError(err)
	}
	return orderFromCreateResponse(req, res)
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	svc := c.fc.NewListOpenOrdersService()
	if symbol != "" {
		svc.Symbol(symbol)
	}
	raw, err := svc.Do(ctx, c.signedOpts()...)
	if err != nil {
		return nil, classifyError(err)
	}
	orders := make([]core.Order, 0, len(raw))
	for _, o := range raw {
		order, err := orderFromFuturesOrder(o)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (core.Order, error) {
	res, err := c.fc.NewCancelOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(ctx, c.signedOpts()...)
	if err != nil {
		return core.Order{}, classifyError(err)
	}
	return orderFromCancelResponse(res)
}

func (c *Client) CancelAllOrders(ctx context.Context, symbol string) error {
	err := c.fc.NewCancelAllOpenOrdersService().
		Symbol(symbol).
		Do(ctx, c.signedOpts()...)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func (c *Client) cachedRules(symbol string) (core.Rules, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rules, ok := c.rulesCache[symbol]
	return rules, ok
}

func (c *Client) signedOpts() []futures.RequestOption {
	if c.recvWindow <= 0 {
		return nil
	}
	return []futures.RequestOption{futures.WithRecvWindow(c.recvWindow)}
}

// formatToStep renders an already-floored value for the wire. An unknown
// step falls back to the plain decimal string.
func formatToStep(value, step decimal.Decimal) string {
	if step.Cmp(decimal.Zero) <= 0 {
		return value.String()
	}
	return core.FormatToStep(value, step)
}

func parseRules(filters []map[string]interface{}) (core.Rules, error) {
	var rules core.Rules
	var haveLot, havePrice bool
	for _, f := range filters {
		switch f["filterType"] {
		case "LOT_SIZE":
			step, err := filterDecimal(f, "stepSize")
			if err != nil {
				return core.Rules{}, err
			}
			minQty, err := filterDecimal(f, "minQty")
			if err != nil {
				return core.Rules{}, err
			}
			rules.QtyStep = step
			rules.MinQty = minQty
			haveLot = true
		case "PRICE_FILTER":
			tick, err := filterDecimal(f, "tickSize")
			if err != nil {
				return core.Rules{}, err
			}
			rules.PriceTick = tick
			havePrice = true
		case "MIN_NOTIONAL":
			key := "notional"
			if _, ok := f[key]; !ok {
				key = "minNotional"
			}
			notional, err := filterDecimal(f, key)
			if err != nil {
				return core.Rules{}, err
			}
			rules.MinNotional = notional
		}
	}
	if !haveLot || !havePrice {
		return core.Rules{}, core.ErrSymbolNotFound
	}
	return rules, nil
}

func filterDecimal(f map[string]interface{}, key string) (decimal.Decimal, error) {
	raw, ok := f[key].(string)
	if !ok {
		return decimal.Decimal{}, core.ErrSymbolNotFound
	}
	return decimal.NewFromString(raw)
}

func orderFromCreateResponse(req core.OrderRequest, res *futures.CreateOrderResponse) (core.Order, error) {
	price, err := parseDecimalField(res.Price)
	if err != nil {
		return core.Order{}, err
	}
	stopPrice, err := parseDecimalField(res.StopPrice)
	if err != nil {
		return core.Order{}, err
	}
	qty, err := parseDecimalField(res.OrigQuantity)
	if err != nil {
		return core.Order{}, err
	}
	executed, err := parseDecimalField(res.ExecutedQuantity)
	if err != nil {
		return core.Order{}, err
	}
	return core.Order{
		ID:          res.OrderID,
		ClientID:    res.ClientOrderID,
		Symbol:      res.Symbol,
		Side:        req.Side,
		Type:        req.Type,
		Price:       price,
		StopPrice:   stopPrice,
		Qty:         qty,
		ExecutedQty: executed,
		Status:      core.OrderStatus(res.Status),
		CreatedAt:   time.UnixMilli(res.UpdateTime),
	}, nil
}

func orderFromFuturesOrder(o *futures.Order) (core.Order, error) {
	price, err := parseDecimalField(o.Price)
	if err != nil {
		return core.Order{}, err
	}
	stopPrice, err := parseDecimalField(o.StopPrice)
	if err != nil {
		return core.Order{}, err
	}
	qty, err := parseDecimalField(o.OrigQuantity)
	if err != nil {
		return core.Order{}, err
	}
	executed, err := parseDecimalField(o.ExecutedQuantity)
	if err != nil {
		return core.Order{}, err
	}
	return core.Order{
		ID:          o.OrderID,
		ClientID:    o.ClientOrderID,
		Symbol:      o.Symbol,
		Side:        core.Side(o.Side),
		Type:        orderTypeFromWire(o.Type),
		Price:       price,
		StopPrice:   stopPrice,
		Qty:         qty,
		ExecutedQty: executed,
		Status:      core.OrderStatus(o.Status),
		CreatedAt:   time.UnixMilli(o.Time),
	}, nil
}

func orderFromCancelResponse(res *futures.CancelOrderResponse) (core.Order, error) {
	price, err := parseDecimalField(res.Price)
	if err != nil {
		return core.Order{}, err
	}
	stopPrice, err := parseDecimalField(res.StopPrice)
	if err != nil {
		return core.Order{}, err
	}
	qty, err := parseDecimalField(res.OrigQuantity)
	if err != nil {
		return core.Order{}, err
	}
	executed, err := parseDecimalField(res.ExecutedQuantity)
	if err != nil {
		return core.Order{}, err
	}
	return core.Order{
		ID:          res.OrderID,
		ClientID:    res.ClientOrderID,
		Symbol:      res.Symbol,
		Side:        core.Side(res.Side),
		Type:        orderTypeFromWire(res.Type),
		Price:       price,
		StopPrice:   stopPrice,
		Qty:         qty,
		ExecutedQty: executed,
		Status:      core.OrderStatus(res.Status),
	}, nil
}

func orderTypeFromWire(t futures.OrderType) core.OrderType {
	if t == futures.OrderTypeStop {
		return core.StopLossLimit
	}
	return core.OrderType(t)
}

func parseDecimalField(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(raw)
}

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"futures-trader/internal/core"
	"futures-trader/internal/exchange"
	"futures-trader/internal/logger"
)

var errInputClosed = errors.New("input closed")

// Console runs the interactive menu loop. Commands execute strictly one at
// a time; the next prompt appears only after the previous command finishes.
type Console struct {
	session exchange.Session
	asset   string
	in      *bufio.Scanner
	out     io.Writer
}

func New(session exchange.Session, asset string, in *bufio.Scanner, out io.Writer) *Console {
	return &Console{
		session: session,
		asset:   asset,
		in:      in,
		out:     out,
	}
}

// Run shows the menu until the user exits or stdin closes.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.printMenu()
		choice, err := c.readLine("Select an option: ")
		if errors.Is(err, errInputClosed) {
			fmt.Fprintln(c.out, "Goodbye.")
			return nil
		}
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			c.showBalance(ctx)
		case "2":
			c.placeOrder(ctx, core.Market)
		case "3":
			c.placeOrder(ctx, core.Limit)
		case "4":
			c.placeOrder(ctx, core.StopLossLimit)
		case "5":
			c.listOpenOrders(ctx)
		case "6":
			c.cancelOrder(ctx)
		case "7":
			c.cancelAllOrders(ctx)
		case "8":
			fmt.Fprintln(c.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown option %q. Enter a number from 1 to 8.\n", choice)
		}
	}
}

func (c *Console) printMenu() {
	fmt.Fprintf(c.out, `
=== Futures Testnet Trader ===
1. Check balance (%s)
2. Place market order
3. Place limit order
4. Place stop-loss-limit order
5. List open orders
6. Cancel order by ID
7. Cancel all orders for a symbol
8. Exit
`, c.asset)
}

func (c *Console) showBalance(ctx context.Context) {
	balance, err := c.session.AssetBalance(ctx, c.asset)
	if err != nil {
		c.reportError("balance query", err)
		return
	}
	logger.Info("balance fetched", "asset", balance.Asset,
		"wallet", balance.Wallet.String(), "available", balance.Available.String())
	fmt.Fprintf(c.out, "%s balance: wallet %s, available %s\n",
		balance.Asset, balance.Wallet, balance.Available)
}

func (c *Console) placeOrder(ctx context.Context, orderType core.OrderType) {
	req, err := c.collectOrderRequest(orderType)
	if errors.Is(err, errInputClosed) {
		return
	}
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}

	rules, err := c.session.Rules(ctx, req.Symbol)
	if err != nil {
		c.reportError("rules lookup", err)
		return
	}
	normalized, err := core.NormalizeRequest(req, rules)
	if err != nil {
		logger.Warn("order rejected before submission", "symbol", req.Symbol,
			"type", string(req.Type), "reason", err.Error())
		fmt.Fprintf(c.out, "Order not placed: %v\n", err)
		return
	}

	order, err := c.session.PlaceOrder(ctx, normalized)
	if err != nil {
		c.reportError("order placement", err)
		return
	}
	logger.Info("order placed", "symbol", order.Symbol, "side", string(order.Side),
		"type", string(order.Type), "qty", order.Qty.String(),
		"price", order.Price.String(), "order_id", order.ID)
	fmt.Fprintf(c.out, "Order accepted: ID %d, status %s\n", order.ID, order.Status)
}

func (c *Console) collectOrderRequest(orderType core.OrderType) (core.OrderRequest, error) {
	symbol, err := c.readSymbol("Symbol (e.g. BTCUSDT): ")
	if err != nil {
		return core.OrderRequest{}, err
	}
	side, err := c.readSide()
	if err != nil {
		return core.OrderRequest{}, err
	}
	qty, err := c.readDecimal("Quantity: ")
	if err != nil {
		return core.OrderRequest{}, err
	}
	req := core.OrderRequest{
		Symbol: symbol,
		Side:   side,
		Type:   orderType,
		Qty:    qty,
	}
	if orderType == core.Market {
		return req, nil
	}
	price, err := c.readDecimal("Limit price: ")
	if err != nil {
		return core.OrderRequest{}, err
	}
	req.Price = price
	if orderType == core.StopLossLimit {
		stop, err := c.readDecimal("Stop price: ")
		if err != nil {
			return core.OrderRequest{}, err
		}
		req.StopPrice = stop
	}
	return req, nil
}

func (c *Console) listOpenOrders(ctx context.Context) {
	symbol, err := c.readSymbolOptional("Symbol (blank for all): ")
	if err != nil {
		return
	}
	orders, err := c.session.OpenOrders(ctx, symbol)
	if err != nil {
		c.reportError("open orders query", err)
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "No open orders found.")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(c.out, "ID %d  %s %s %s  qty %s (filled %s)  price %s  status %s\n",
			o.ID, o.Symbol, o.Side, o.Type, o.Qty, o.ExecutedQty, o.Price, o.Status)
	}
}

func (c *Console) cancelOrder(ctx context.Context) {
	symbol, err := c.readSymbol("Symbol: ")
	if err != nil {
		return
	}
	line, err := c.readLine("Order ID: ")
	if err != nil {
		return
	}
	orderID, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		fmt.Fprintln(c.out, "Order ID must be a number.")
		return
	}
	order, err := c.session.CancelOrder(ctx, symbol, orderID)
	if err != nil {
		c.reportError("order cancel", err)
		return
	}
	logger.Info("order canceled", "symbol", order.Symbol, "order_id", order.ID)
	fmt.Fprintf(c.out, "Canceled order %d, status %s\n", order.ID, order.Status)
}

func (c *Console) cancelAllOrders(ctx context.Context) {
	symbol, err := c.readSymbol("Symbol: ")
	if err != nil {
		return
	}
	confirm, err := c.readLine(fmt.Sprintf("Cancel ALL open orders for %s? (yes/no): ", symbol))
	if err != nil {
		return
	}
	if !strings.EqualFold(confirm, "yes") {
		fmt.Fprintln(c.out, "Aborted.")
		return
	}
	open, err := c.session.OpenOrders(ctx, symbol)
	if err != nil {
		c.reportError("open orders query", err)
		return
	}
	if err := c.session.CancelAllOrders(ctx, symbol); err != nil {
		c.reportError("cancel all orders", err)
		return
	}
	logger.Info("all orders canceled", "symbol", symbol, "count", len(open))
	fmt.Fprintf(c.out, "Canceled %d open order(s) for %s.\n", len(open), symbol)
}

func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) readSymbol(prompt string) (string, error) {
	for {
		line, err := c.readLine(prompt)
		if err != nil {
			return "", err
		}
		if line == "" {
			fmt.Fprintln(c.out, "Symbol is required.")
			continue
		}
		return strings.ToUpper(line), nil
	}
}

func (c *Console) readSymbolOptional(prompt string) (string, error) {
	line, err := c.readLine(prompt)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(line), nil
}

func (c *Console) readSide() (core.Side, error) {
	line, err := c.readLine("Side (BUY/SELL): ")
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(line) {
	case "BUY":
		return core.Buy, nil
	case "SELL":
		return core.Sell, nil
	default:
		return "", fmt.Errorf("side must be BUY or SELL, got %q", line)
	}
}

func (c *Console) readDecimal(prompt string) (decimal.Decimal, error) {
	for {
		line, err := c.readLine(prompt)
		if err != nil {
			return decimal.Decimal{}, err
		}
		value, err := decimal.NewFromString(line)
		if err != nil {
			fmt.Fprintf(c.out, "Not a valid number: %q\n", line)
			continue
		}
		return value, nil
	}
}

func (c *Console) reportError(action string, err error) {
	logger.Error(action+" failed", "error", err.Error())
	fmt.Fprintf(c.out, "Error during %s: %v\n", action, err)
}

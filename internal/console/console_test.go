package console

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"futures-trader/internal/core"
)

type fakeSession struct {
	rules       core.Rules
	rulesErr    error
	balance     core.Balance
	openOrders  []core.Order
	placed      []core.OrderRequest
	canceled    []int64
	canceledAll []string
}

func (f *fakeSession) Name() string { return "fake" }

func (f *fakeSession) ServerTime(ctx context.Context) (time.Time, error) {
	return time.Now(), nil
}

func (f *fakeSession) Rules(ctx context.Context, symbol string) (core.Rules, error) {
	if f.rulesErr != nil {
		return core.Rules{}, f.rulesErr
	}
	return f.rules, nil
}

func (f *fakeSession) AssetBalance(ctx context.Context, asset string) (core.Balance, error) {
	return f.balance, nil
}

func (f *fakeSession) PlaceOrder(ctx context.Context, req core.OrderRequest) (core.Order, error) {
	f.placed = append(f.placed, req)
	return core.Order{
		ID:     101,
		Symbol: req.Symbol,
		Side:   req.Side,
		Type:   req.Type,
		Qty:    req.Qty,
		Price:  req.Price,
		Status: core.OrderNew,
	}, nil
}

func (f *fakeSession) OpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	return f.openOrders, nil
}

func (f *fakeSession) CancelOrder(ctx context.Context, symbol string, orderID int64) (core.Order, error) {
	f.canceled = append(f.canceled, orderID)
	return core.Order{ID: orderID, Symbol: symbol, Status: core.OrderCanceled}, nil
}

func (f *fakeSession) CancelAllOrders(ctx context.Context, symbol string) error {
	f.canceledAll = append(f.canceledAll, symbol)
	return nil
}

func runConsole(t *testing.T, session *fakeSession, input string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(session, "USDT", bufio.NewScanner(strings.NewReader(input)), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestLimitOrderIsNormalizedBeforePlacement(t *testing.T) {
	session := &fakeSession{
		rules: core.Rules{
			PriceTick: decimal.RequireFromString("0.01"),
			QtyStep:   decimal.RequireFromString("0.001"),
		},
	}

	out := runConsole(t, session, "3\nbtcusdt\nbuy\n0.123456\n100.037\n8\n")

	if len(session.placed) != 1 {
		t.Fatalf("placed orders = %d, want 1", len(session.placed))
	}
	got := session.placed[0]
	if got.Symbol != "BTCUSDT" {
		t.Fatalf("symbol = %q, want BTCUSDT", got.Symbol)
	}
	if !got.Qty.Equal(decimal.RequireFromString("0.123")) {
		t.Fatalf("qty = %s, want 0.123", got.Qty)
	}
	if !got.Price.Equal(decimal.RequireFromString("100.03")) {
		t.Fatalf("price = %s, want 100.03", got.Price)
	}
	if !strings.Contains(out, "Order accepted: ID 101") {
		t.Fatalf("output missing acceptance line:\n%s", out)
	}
}

func TestOrderBelowStepNeverReachesSession(t *testing.T) {
	session := &fakeSession{
		rules: core.Rules{
			QtyStep: decimal.RequireFromString("0.001"),
		},
	}

	out := runConsole(t, session, "3\nBTCUSDT\nBUY\n0.0009\n100\n8\n")

	if len(session.placed) != 0 {
		t.Fatalf("placed orders = %d, want 0", len(session.placed))
	}
	if !strings.Contains(out, "minimum tradable increment") {
		t.Fatalf("output missing validation message:\n%s", out)
	}
}

func TestStopLossLimitPromptsForStopPrice(t *testing.T) {
	session := &fakeSession{
		rules: core.Rules{
			PriceTick: decimal.RequireFromString("0.1"),
			QtyStep:   decimal.RequireFromString("0.001"),
		},
	}

	runConsole(t, session, "4\nBTCUSDT\nSELL\n0.01\n27400.55\n27450.37\n8\n")

	if len(session.placed) != 1 {
		t.Fatalf("placed orders = %d, want 1", len(session.placed))
	}
	got := session.placed[0]
	if got.Type != core.StopLossLimit {
		t.Fatalf("type = %q, want %q", got.Type, core.StopLossLimit)
	}
	if !got.StopPrice.Equal(decimal.RequireFromString("27450.3")) {
		t.Fatalf("stop price = %s, want 27450.3", got.StopPrice)
	}
}

func TestInvalidSideAbortsToMenu(t *testing.T) {
	session := &fakeSession{}

	out := runConsole(t, session, "2\nBTCUSDT\nHOLD\n8\n")

	if len(session.placed) != 0 {
		t.Fatalf("placed orders = %d, want 0", len(session.placed))
	}
	if !strings.Contains(out, "side must be BUY or SELL") {
		t.Fatalf("output missing side validation:\n%s", out)
	}
}

func TestInvalidDecimalIsReprompted(t *testing.T) {
	session := &fakeSession{
		rules: core.Rules{QtyStep: decimal.RequireFromString("0.001")},
	}

	out := runConsole(t, session, "2\nBTCUSDT\nBUY\nabc\n0.5\n8\n")

	if len(session.placed) != 1 {
		t.Fatalf("placed orders = %d, want 1", len(session.placed))
	}
	if !strings.Contains(out, `Not a valid number: "abc"`) {
		t.Fatalf("output missing reprompt message:\n%s", out)
	}
}

func TestCancelAllReportsZeroWhenNoOrdersOpen(t *testing.T) {
	session := &fakeSession{}

	out := runConsole(t, session, "7\nBTCUSDT\nyes\n8\n")

	if len(session.canceledAll) != 1 {
		t.Fatalf("cancel-all calls = %d, want 1", len(session.canceledAll))
	}
	if !strings.Contains(out, "Canceled 0 open order(s) for BTCUSDT.") {
		t.Fatalf("output missing zero-cancellation line:\n%s", out)
	}
}

func TestCancelAllAbortsWithoutConfirmation(t *testing.T) {
	session := &fakeSession{}

	out := runConsole(t, session, "7\nBTCUSDT\nno\n8\n")

	if len(session.canceledAll) != 0 {
		t.Fatalf("cancel-all calls = %d, want 0", len(session.canceledAll))
	}
	if !strings.Contains(out, "Aborted.") {
		t.Fatalf("output missing abort line:\n%s", out)
	}
}

func TestCancelOrderRequiresNumericID(t *testing.T) {
	session := &fakeSession{}

	out := runConsole(t, session, "6\nBTCUSDT\nnot-a-number\n8\n")

	if len(session.canceled) != 0 {
		t.Fatalf("cancel calls = %d, want 0", len(session.canceled))
	}
	if !strings.Contains(out, "Order ID must be a number.") {
		t.Fatalf("output missing ID validation:\n%s", out)
	}
}

func TestBalancePrintsWalletAndAvailable(t *testing.T) {
	session := &fakeSession{
		balance: core.Balance{
			Asset:     "USDT",
			Wallet:    decimal.RequireFromString("1000.5"),
			Available: decimal.RequireFromString("900.25"),
		},
	}

	out := runConsole(t, session, "1\n8\n")

	if !strings.Contains(out, "USDT balance: wallet 1000.5, available 900.25") {
		t.Fatalf("output missing balance line:\n%s", out)
	}
}

func TestUnknownMenuOption(t *testing.T) {
	out := runConsole(t, &fakeSession{}, "9\n8\n")

	if !strings.Contains(out, `Unknown option "9"`) {
		t.Fatalf("output missing unknown option message:\n%s", out)
	}
}

func TestEOFEndsLoopCleanly(t *testing.T) {
	out := runConsole(t, &fakeSession{}, "")

	if !strings.Contains(out, "Goodbye.") {
		t.Fatalf("output missing goodbye line:\n%s", out)
	}
}

func TestListOpenOrdersEmpty(t *testing.T) {
	out := runConsole(t, &fakeSession{}, "5\n\n8\n")

	if !strings.Contains(out, "No open orders found.") {
		t.Fatalf("output missing empty list message:\n%s", out)
	}
}

package exchange

import (
	"context"
	"time"

	"futures-trader/internal/core"
)

// Session is an authenticated connection to a futures exchange.
type Session interface {
	Name() string
	ServerTime(ctx context.Context) (time.Time, error)
	Rules(ctx context.Context, symbol string) (core.Rules, error)
	AssetBalance(ctx context.Context, asset string) (core.Balance, error)
	PlaceOrder(ctx context.Context, req core.OrderRequest) (core.Order, error)
	OpenOrders(ctx context.Context, symbol string) ([]core.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) (core.Order, error)
	CancelAllOrders(ctx context.Context, symbol string) error
}

package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

type OrderType string

type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
	// StopLossLimit becomes an active limit order at Price once StopPrice trades.
	StopLossLimit OrderType = "STOP_LOSS_LIMIT"
)

const (
	OrderNew             OrderStatus = "NEW"
	OrderPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderFilled          OrderStatus = "FILLED"
	OrderCanceled        OrderStatus = "CANCELED"
	OrderRejected        OrderStatus = "REJECTED"
	OrderExpired         OrderStatus = "EXPIRED"
)

// OrderRequest carries raw user-supplied values. It must pass through
// NormalizeRequest before it is submitted to an exchange.
type OrderRequest struct {
	Symbol    string
	Side      Side
	Type      OrderType
	Qty       decimal.Decimal
	Price     decimal.Decimal
	StopPrice decimal.Decimal
}

// Order is an exchange-acknowledged order.
type Order struct {
	ID          int64
	ClientID    string
	Symbol      string
	Side        Side
	Type        OrderType
	Price       decimal.Decimal
	StopPrice   decimal.Decimal
	Qty         decimal.Decimal
	ExecutedQty decimal.Decimal
	Status      OrderStatus
	CreatedAt   time.Time
}

// Rules holds the per-symbol trading filters published by the exchange.
// QtyStep is the LOT_SIZE step size, PriceTick the PRICE_FILTER tick size.
type Rules struct {
	MinQty      decimal.Decimal
	MinNotional decimal.Decimal
	PriceTick   decimal.Decimal
	QtyStep     decimal.Decimal
}

type Balance struct {
	Asset     string
	Wallet    decimal.Decimal
	Available decimal.Decimal
}

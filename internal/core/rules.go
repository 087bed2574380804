package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder     = errors.New("invalid order")
	ErrQtyRoundsToZero  = errors.New("quantity below minimum tradable increment")
	ErrBelowMinQty      = errors.New("qty below min")
	ErrBelowMinNotional = errors.New("notional below min")
)

// NormalizeRequest floors the request's quantity to the symbol's lot step
// and, for price-bearing order types, the price and stop price to the tick
// size, then checks the exchange minimums. It never rounds up.
func NormalizeRequest(req OrderRequest, rules Rules) (OrderRequest, error) {
	if req.Qty.Cmp(decimal.Zero) <= 0 {
		return req, ErrInvalidOrder
	}
	req.Qty = RoundDown(req.Qty, rules.QtyStep)
	if req.Qty.Cmp(decimal.Zero) <= 0 {
		return req, ErrQtyRoundsToZero
	}
	if rules.MinQty.Cmp(decimal.Zero) > 0 && req.Qty.Cmp(rules.MinQty) < 0 {
		return req, ErrBelowMinQty
	}
	if req.Type == Market {
		return req, nil
	}
	if req.Price.Cmp(decimal.Zero) <= 0 {
		return req, ErrInvalidOrder
	}
	req.Price = RoundDown(req.Price, rules.PriceTick)
	if req.Price.Cmp(decimal.Zero) <= 0 {
		return req, ErrInvalidOrder
	}
	if req.Type == StopLossLimit {
		if req.StopPrice.Cmp(decimal.Zero) <= 0 {
			return req, ErrInvalidOrder
		}
		req.StopPrice = RoundDown(req.StopPrice, rules.PriceTick)
		if req.StopPrice.Cmp(decimal.Zero) <= 0 {
			return req, ErrInvalidOrder
		}
	}
	if rules.MinNotional.Cmp(decimal.Zero) > 0 {
		notional := req.Price.Mul(req.Qty)
		if notional.Cmp(rules.MinNotional) < 0 {
			return req, ErrBelowMinNotional
		}
	}
	return req, nil
}

// RoundDown floors value to the nearest multiple of step. A non-positive
// step leaves the value unchanged.
func RoundDown(value, step decimal.Decimal) decimal.Decimal {
	if step.Cmp(decimal.Zero) <= 0 {
		return value
	}
	return value.Div(step).Floor().Mul(step)
}

// StepPrecision returns the number of fractional digits implied by a step
// size. Exchange filters carry trailing zeros ("0.00100000"), so the
// exponent of the raw decimal cannot be used directly.
func StepPrecision(step decimal.Decimal) int32 {
	if step.Cmp(decimal.Zero) <= 0 {
		return 0
	}
	var p int32
	for !step.IsInteger() {
		step = step.Shift(1)
		p++
	}
	return p
}

// FormatToStep renders value with exactly as many fractional digits as the
// step implies. The value is floored first because StringFixed rounds.
func FormatToStep(value, step decimal.Decimal) string {
	return RoundDown(value, step).StringFixed(StepPrecision(step))
}

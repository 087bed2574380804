package binance

import (
	"errors"
	"strings"

	"github.com/adshao/go-binance/v2/common"

	"futures-trader/internal/core"
)

const (
	apiCodeInvalidSymbol      = -1121
	apiCodeNewOrderRejected   = -2010
	apiCodeCancelRejected     = -2011
	apiCodeOrderNotFound      = -2013
	apiCodeMarginInsufficient = -2019
)

var apiErrorMessageKinds = map[string]error{
	"duplicate order sent.":                                  core.ErrDuplicateOrder,
	"account has insufficient balance for requested action.": core.ErrInsufficientBalance,
	"balance is insufficient.":                               core.ErrInsufficientBalance,
	"margin is insufficient.":                                core.ErrInsufficientBalance,
	"unknown order sent.":                                    core.ErrOrderNotFound,
	"order does not exist.":                                  core.ErrOrderNotFound,
}

// classifyError joins the raw API error with the core sentinel(s) its code
// and message imply, so callers can errors.Is against the sentinels while
// the code and message stay visible in logs.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	kinds := classifyAPIErrorKinds(apiErr)
	if len(kinds) == 0 {
		return err
	}
	errChain := make([]error, 0, 1+len(kinds))
	errChain = append(errChain, err)
	errChain = append(errChain, kinds...)
	return errors.Join(errChain...)
}

func classifyAPIErrorKinds(apiErr *common.APIError) []error {
	kinds := make([]error, 0, 2)
	normalizedMsg := normalizeAPIErrorMsg(apiErr.Message)

	switch apiErr.Code {
	case apiCodeOrderNotFound, apiCodeCancelRejected:
		kinds = appendErrorKind(kinds, core.ErrOrderNotFound)
	case apiCodeInvalidSymbol:
		kinds = appendErrorKind(kinds, core.ErrSymbolNotFound)
	case apiCodeMarginInsufficient:
		kinds = appendErrorKind(kinds, core.ErrInsufficientBalance)
	case apiCodeNewOrderRejected:
		if kind, ok := apiErrorMessageKinds[normalizedMsg]; ok {
			kinds = appendErrorKind(kinds, kind)
		} else {
			kinds = appendErrorKind(kinds, core.ErrOrderRejected)
		}
	}

	if kind, ok := apiErrorMessageKinds[normalizedMsg]; ok {
		kinds = appendErrorKind(kinds, kind)
	}

	return kinds
}

func appendErrorKind(kinds []error, kind error) []error {
	if kind == nil {
		return kinds
	}
	for _, existing := range kinds {
		if existing == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}

func normalizeAPIErrorMsg(msg string) string {
	return strings.ToLower(strings.TrimSpace(msg))
}

func AsAPIError(err error) (*common.APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		return nil, false
	}
	return apiErr, true
}

func IsAPIErrorCode(err error, codes ...int64) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	for _, code := range codes {
		if apiErr.Code == code {
			return true
		}
	}
	return false
}

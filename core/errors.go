package core

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Validation errors: detected before any state is touched.
var (
	AmountNotPositive        = errors.New("amount must be positive")
	TokenNotAllowed          = errors.New("token is not a registered collateral asset")
	MismatchedAssetsAndFeeds = errors.New("asset ids and price feeds length mismatch")
	ReentrantCall            = errors.New("reentrant call rejected")
	PositionNotFound         = errors.New("position not found")
)

// External-interaction errors: the boundary call failed, as opposed to
// the engine rejecting the operation by policy.
var (
	TransferFailed = errors.New("external transfer failed")
	MintFailed     = errors.New("stable asset mint failed")
	BurnPullFailed = errors.New("stable asset transfer-from failed")
	BurnFailed     = errors.New("stable asset burn failed")
	SwapFailed     = errors.New("swap venue call failed")
)

// Ledger errors.
var (
	InsufficientCollateral = errors.New("collateral balance underflow")
	InsufficientDebt       = errors.New("debt balance underflow")
)

// Liquidation errors.
var (
	HealthFactorOk          = errors.New("target health factor is not below minimum")
	HealthFactorNotImproved = errors.New("liquidation did not improve target health factor")
)

// Oracle errors.
var (
	OracleFeedNotFound     = errors.New("no price feed bound for asset")
	OraclePriceStale       = errors.New("oracle price is stale")
	OraclePriceNotPositive = errors.New("oracle price is not positive")
)

// Direct repayment errors.
var (
	PaymentBelowRequired = errors.New("attached payment below cached-ratio requirement")
	NoCachedRatio        = errors.New("no mint ratio snapshot for position")
)

// HealthFactorError reports an invariant breach together with the
// computed factor, so callers can tell "unsafe by policy" apart from a
// boundary failure.
type HealthFactorError struct {
	Factor decimal.Decimal
}

func (e *HealthFactorError) Error() string {
	return fmt.Sprintf("health factor %s below minimum %s", e.Factor, MinHealthFactor)
}

// IsHealthFactorBreach reports whether err is a health-factor breach.
func IsHealthFactorBreach(err error) bool {
	var hfe *HealthFactorError
	return errors.As(err, &hfe)
}

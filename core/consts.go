package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// NativeAssetId is the sentinel registry id for the platform's native
// currency. Every other registered asset is a fungible token.
const NativeAssetId = "native"

const (
	// FeedDecimals is the precision price feeds report in.
	FeedDecimals int32 = 8
	// EngineDecimals is the fixed-point precision of every ledger amount.
	EngineDecimals int32 = 18

	DefaultOracleMaxAge int64 = 90
)

var (
	ONE     = decimal.NewFromInt(1)
	HUNDRED = decimal.NewFromInt(100)

	// Precision is the engine's fixed-point scale (1e18).
	Precision = decimal.New(1, EngineDecimals)

	// AdditionalFeedPrecision lifts a raw feed quote from feed precision
	// to engine precision (1e10).
	AdditionalFeedPrecision = decimal.New(1, EngineDecimals-FeedDecimals)

	// LiquidationThresholdPct of nominal collateral value counts as
	// backing capacity: a 2x overcollateralization target.
	LiquidationThresholdPct = decimal.NewFromInt(50)

	// LiquidationBonusPct of the seized base is paid to the liquidator
	// on top, funded from the unsafe account's remaining collateral.
	LiquidationBonusPct = decimal.NewFromInt(10)

	// MinHealthFactor is the safety boundary every indebted account must
	// sit at or above after a successful operation.
	MinHealthFactor = ONE

	// MaxHealthFactor stands in for infinite headroom when an account
	// carries no debt.
	MaxHealthFactor = decimal.NewFromUint64(math.MaxUint64)
)

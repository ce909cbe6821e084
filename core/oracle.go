package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

type (
	// PriceFeed is a single price source reporting raw integer quotes at
	// FeedDecimals precision, plus the unix time of the quote.
	PriceFeed interface {
		LatestRoundData(ctx context.Context) (price decimal.Decimal, updatedAt int64, err error)
	}

	// PriceOracleGateway converts a registered asset id into a validated
	// USD price per unit at engine precision.
	PriceOracleGateway interface {
		LatestPrice(ctx context.Context, assetId string) (decimal.Decimal, error)
	}
)

// FeedGateway resolves prices through the asset registry's feed bindings
// and rejects stale or non-positive quotes with typed errors.
type FeedGateway struct {
	clk      clock.Clock
	registry *AssetRegistry
	maxAge   int64
}

func NewFeedGateway(clk clock.Clock, registry *AssetRegistry, maxAge int64) *FeedGateway {
	if maxAge <= 0 {
		maxAge = DefaultOracleMaxAge
	}
	return &FeedGateway{
		clk:      clk,
		registry: registry,
		maxAge:   maxAge,
	}
}

func (g *FeedGateway) LatestPrice(ctx context.Context, assetId string) (decimal.Decimal, error) {
	feed, err := g.registry.Feed(assetId)
	if err != nil {
		return decimal.Zero, err
	}

	raw, updatedAt, err := feed.LatestRoundData(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !raw.IsPositive() {
		return decimal.Zero, OraclePriceNotPositive
	}
	if g.clk.Now().Unix()-updatedAt > g.maxAge {
		return decimal.Zero, OraclePriceStale
	}

	return NormalizeFeedPrice(raw), nil
}

// NormalizeFeedPrice lifts a raw feed quote to engine precision and
// scales it back down to a plain decimal USD price per unit.
func NormalizeFeedPrice(raw decimal.Decimal) decimal.Decimal {
	return raw.Mul(AdditionalFeedPrecision).Div(Precision)
}

package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// RiskEngine computes solvency from live price data and gates every
// risk-increasing mutation.
type RiskEngine struct {
	registry *AssetRegistry
	oracle   PriceOracleGateway
}

func NewRiskEngine(registry *AssetRegistry, oracle PriceOracleGateway) *RiskEngine {
	return &RiskEngine{
		registry: registry,
		oracle:   oracle,
	}
}

// CollateralValueUsd sums balance × price over the registry in
// registration order. Each price arrives already normalized to engine
// precision by the oracle gateway.
func (r *RiskEngine) CollateralValueUsd(ctx context.Context, position *Position) (decimal.Decimal, error) {
	totalValue := decimal.Zero
	for _, assetId := range r.registry.AssetIds() {
		balance := position.CollateralBalance(assetId)
		if balance.IsZero() {
			continue
		}
		price, err := r.oracle.LatestPrice(ctx, assetId)
		if err != nil {
			return decimal.Zero, err
		}
		totalValue = totalValue.Add(CalcValue(balance, price))
	}
	return totalValue, nil
}

// HealthFactor is backing capacity over debt: only the liquidation
// threshold share of nominal collateral value counts as backing. Zero
// debt yields MaxHealthFactor.
func (r *RiskEngine) HealthFactor(ctx context.Context, position *Position) (decimal.Decimal, error) {
	if !position.Debt.IsPositive() {
		return MaxHealthFactor, nil
	}
	collateralValue, err := r.CollateralValueUsd(ctx, position)
	if err != nil {
		return decimal.Zero, err
	}
	return HealthFactorFor(collateralValue, position.Debt), nil
}

func HealthFactorFor(collateralValueUsd, debt decimal.Decimal) decimal.Decimal {
	if !debt.IsPositive() {
		return MaxHealthFactor
	}
	adjusted := collateralValueUsd.Mul(LiquidationThresholdPct).Div(HUNDRED)
	return adjusted.Div(debt)
}

// Validate fails with a HealthFactorError carrying the computed factor
// when the position sits below minimum. Invoked after mint and after
// any redemption that can increase risk.
func (r *RiskEngine) Validate(ctx context.Context, position *Position) error {
	factor, err := r.HealthFactor(ctx, position)
	if err != nil {
		return err
	}
	if factor.LessThan(MinHealthFactor) {
		return &HealthFactorError{Factor: factor}
	}
	return nil
}

// UsdValue prices amount of the given asset.
func (r *RiskEngine) UsdValue(ctx context.Context, assetId string, amount decimal.Decimal) (decimal.Decimal, error) {
	price, err := r.oracle.LatestPrice(ctx, assetId)
	if err != nil {
		return decimal.Zero, err
	}
	return CalcValue(amount, price), nil
}

// TokenAmountFromUsd inverts UsdValue; used for liquidation sizing.
func (r *RiskEngine) TokenAmountFromUsd(ctx context.Context, assetId string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	price, err := r.oracle.LatestPrice(ctx, assetId)
	if err != nil {
		return decimal.Zero, err
	}
	return CalcAmount(usdValue, price)
}

func CalcValue(amount, price decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(price)
}

func CalcAmount(value, price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, OraclePriceNotPositive
	}
	return value.Div(price), nil
}

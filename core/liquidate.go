package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// LiquidateResult records one seizure-and-burn for callers and stores.
type LiquidateResult struct {
	CollateralAsset string    `json:"collateralAsset"`
	TargetAccount   uuid.UUID `json:"targetAccount"`
	Liquidator      uuid.UUID `json:"liquidator"`

	DebtCovered decimal.Decimal `json:"debtCovered"`
	SeizedBase  decimal.Decimal `json:"seizedBase"`
	Bonus       decimal.Decimal `json:"bonus"`
	TotalSeized decimal.Decimal `json:"totalSeized"`

	TargetPreHealth  decimal.Decimal `json:"targetPreHealth"`
	TargetPostHealth decimal.Decimal `json:"targetPostHealth"`
}

// LiquidationCoordinator orchestrates closing out unsafe positions:
// collateral valuation, forced redemption to the liquidator, forced
// debt burn paid by the liquidator, then re-validation of both sides.
//
// No minimum liquidation size is enforced. At collateralization at or
// below 100% the bonus makes liquidation unprofitable for any
// liquidator; that is a known, preserved limitation of the protocol.
type LiquidationCoordinator struct {
	collateral *CollateralLedger
	debt       *DebtLedger
	risk       *RiskEngine
}

func NewLiquidationCoordinator(collateral *CollateralLedger, debt *DebtLedger, risk *RiskEngine) *LiquidationCoordinator {
	return &LiquidationCoordinator{
		collateral: collateral,
		debt:       debt,
		risk:       risk,
	}
}

// Liquidate covers debtToCover of the target's debt and seizes the
// equivalent collateral plus the liquidation bonus. The target must be
// unsafe before and strictly healthier after; the liquidator's own
// position must remain safe once it takes on the burn.
func (c *LiquidationCoordinator) Liquidate(ctx context.Context, targetOp *operation, liquidatorPosition *Position, liquidator uuid.UUID, assetId string, debtToCover decimal.Decimal) (*LiquidateResult, error) {
	if !debtToCover.IsPositive() {
		return nil, AmountNotPositive
	}

	preHealth, err := c.risk.HealthFactor(ctx, targetOp.position)
	if err != nil {
		return nil, err
	}
	if preHealth.GreaterThanOrEqual(MinHealthFactor) {
		return nil, HealthFactorOk
	}

	seizeBase, err := c.risk.TokenAmountFromUsd(ctx, assetId, debtToCover)
	if err != nil {
		return nil, err
	}
	bonus := seizeBase.Mul(LiquidationBonusPct).Div(HUNDRED)
	totalSeized := seizeBase.Add(bonus)

	if err := c.collateral.Redeem(ctx, targetOp, liquidator, assetId, totalSeized); err != nil {
		return nil, err
	}
	if err := c.debt.Burn(ctx, targetOp, debtToCover, liquidator); err != nil {
		return nil, err
	}

	postHealth, err := c.risk.HealthFactor(ctx, targetOp.position)
	if err != nil {
		return nil, err
	}
	// Guards against undersized or ineffective liquidations.
	if !postHealth.GreaterThan(preHealth) {
		return nil, HealthFactorNotImproved
	}

	if err := c.risk.Validate(ctx, liquidatorPosition); err != nil {
		return nil, err
	}

	return &LiquidateResult{
		CollateralAsset:  assetId,
		TargetAccount:    targetOp.position.AccountId,
		Liquidator:       liquidator,
		DebtCovered:      debtToCover,
		SeizedBase:       seizeBase,
		Bonus:            bonus,
		TotalSeized:      totalSeized,
		TargetPreHealth:  preHealth,
		TargetPostHealth: postHealth,
	}, nil
}

package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// DirectRepaymentPath reduces debt against an attached native-currency
// payment instead of a stable-asset pull: either priced by the
// position's cached mint ratio, or converted through an external swap
// venue.
type DirectRepaymentPath struct {
	debt   *DebtLedger
	risk   *RiskEngine
	assets AssetClient
	swap   SwapVenue

	stableAssetId string
	engineId      uuid.UUID
}

func NewDirectRepaymentPath(debt *DebtLedger, risk *RiskEngine, assets AssetClient, swap SwapVenue, stableAssetId string, engineId uuid.UUID) *DirectRepaymentPath {
	return &DirectRepaymentPath{
		debt:          debt,
		risk:          risk,
		assets:        assets,
		swap:          swap,
		stableAssetId: stableAssetId,
		engineId:      engineId,
	}
}

// RepayDirect validates the attached payment against the cached
// collateral/debt ratio, reduces debt, re-validates the health factor,
// and only then refunds any excess. The refund is the last step so a
// repayment that fails any check moves no value. No live oracle read
// happens here: the ratio is the snapshot taken at mint time, so it can
// lag later price movement or collateral changes made through other
// paths. That is the intended low-cost tradeoff of this path, not an
// oversight.
func (p *DirectRepaymentPath) RepayDirect(ctx context.Context, op *operation, debtToCover, payment decimal.Decimal) error {
	if !debtToCover.IsPositive() {
		return AmountNotPositive
	}

	ratio := op.position.MintRatio
	if !ratio.IsPositive() {
		return NoCachedRatio
	}

	required := debtToCover.Mul(ratio)
	if payment.LessThan(required) {
		return PaymentBelowRequired
	}

	if err := op.position.DebitDebt(debtToCover); err != nil {
		return err
	}
	if err := p.risk.Validate(ctx, op.position); err != nil {
		return err
	}

	refund := payment.Sub(required)
	if refund.IsPositive() {
		if err := p.assets.TransferNative(ctx, op.position.AccountId, refund); err != nil {
			return TransferFailed
		}
	}
	return nil
}

// RepayViaSwap converts the attached native payment into the stable
// asset through the external venue and burns the proceeds from engine
// custody. Every internally checkable failure (debt underflow, risk
// validation) is detected before the venue is touched, and unconsumed
// input is refunded last, so a failed operation moves no value.
// Liquidity and slippage are the venue's responsibility.
func (p *DirectRepaymentPath) RepayViaSwap(ctx context.Context, op *operation, debtToCover, payment decimal.Decimal, deadline int64) error {
	if !debtToCover.IsPositive() || !payment.IsPositive() {
		return AmountNotPositive
	}

	if err := op.position.DebitDebt(debtToCover); err != nil {
		return err
	}
	if err := p.risk.Validate(ctx, op.position); err != nil {
		return err
	}

	path := []string{NativeAssetId, p.stableAssetId}
	inputUsed, err := p.swap.SwapForExactOutput(ctx, debtToCover, payment, path, p.engineId, deadline)
	if err != nil {
		return SwapFailed
	}
	if err := p.debt.BurnFromCustody(ctx, debtToCover); err != nil {
		return err
	}

	refund := payment.Sub(inputUsed)
	if refund.IsPositive() {
		if err := p.assets.TransferNative(ctx, op.position.AccountId, refund); err != nil {
			return TransferFailed
		}
	}
	return nil
}

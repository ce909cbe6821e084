package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DebtLedger owns per-account minted-debt balances and the interaction
// with the external stable-asset token.
type DebtLedger struct {
	token    StableAssetToken
	risk     *RiskEngine
	engineId uuid.UUID
}

func NewDebtLedger(token StableAssetToken, risk *RiskEngine, engineId uuid.UUID) *DebtLedger {
	return &DebtLedger{
		token:    token,
		risk:     risk,
		engineId: engineId,
	}
}

// Mint credits the account's debt, refreshes the mint-ratio snapshot,
// and validates the health factor before the external token mint, so an
// invariant violation never reaches the token. A failed mint discards
// the ledger credit with the rest of the operation.
func (l *DebtLedger) Mint(ctx context.Context, op *operation, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return AmountNotPositive
	}

	op.position.CreditDebt(amount)
	op.position.SnapshotMintRatio()

	if err := l.risk.Validate(ctx, op.position); err != nil {
		return err
	}

	minted, err := l.token.Mint(ctx, op.position.AccountId, amount)
	if err != nil {
		return errors.Wrap(MintFailed, err.Error())
	}
	if !minted {
		return MintFailed
	}
	return nil
}

// Burn debits the operation position's debt, pulls amount of stable
// asset from payer into engine custody, and destroys it. Reused by
// direct repayment and liquidation.
func (l *DebtLedger) Burn(ctx context.Context, op *operation, amount decimal.Decimal, payer uuid.UUID) error {
	if !amount.IsPositive() {
		return AmountNotPositive
	}

	if err := op.position.DebitDebt(amount); err != nil {
		return err
	}

	pulled, err := l.token.TransferFrom(ctx, payer, l.engineId, amount)
	if err != nil {
		return errors.Wrap(BurnPullFailed, err.Error())
	}
	if !pulled {
		return BurnPullFailed
	}
	if err := l.token.Burn(ctx, amount); err != nil {
		return errors.Wrap(BurnFailed, err.Error())
	}
	return nil
}

// BurnFromCustody destroys stable asset the engine already holds. The
// matching debt debit is the caller's responsibility and must precede
// any external call. Used by the swap repayment path where the venue
// delivers proceeds straight to engine custody.
func (l *DebtLedger) BurnFromCustody(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return AmountNotPositive
	}
	if err := l.token.Burn(ctx, amount); err != nil {
		return errors.Wrap(BurnFailed, err.Error())
	}
	return nil
}

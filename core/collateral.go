package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// CollateralLedger owns per-account, per-asset collateral balances and
// pairs every balance change with the matching external asset movement.
type CollateralLedger struct {
	registry *AssetRegistry
	assets   AssetClient
}

func NewCollateralLedger(registry *AssetRegistry, assets AssetClient) *CollateralLedger {
	return &CollateralLedger{
		registry: registry,
		assets:   assets,
	}
}

// Deposit credits the account's balance and records the notification
// before requesting the external transfer-in, so the ledger is never
// observable in a credited-but-unnotified state. A transfer failure
// discards the whole operation.
func (l *CollateralLedger) Deposit(ctx context.Context, op *operation, assetId string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return AmountNotPositive
	}
	if !l.registry.IsRegistered(assetId) {
		return TokenNotAllowed
	}

	op.position.CreditCollateral(assetId, amount)
	op.emit(NewCollateralDeposited(op.position.AccountId, assetId, amount, op.now))

	if err := l.assets.TransferIn(ctx, op.position.AccountId, assetId, amount); err != nil {
		return TransferFailed
	}
	return nil
}

// Redeem debits the operation's position and transfers amount to the
// recipient's wallet. Internal-only: callers decide whether the
// redemption needs a risk validation afterwards.
func (l *CollateralLedger) Redeem(ctx context.Context, op *operation, to uuid.UUID, assetId string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return AmountNotPositive
	}
	if !l.registry.IsRegistered(assetId) {
		return TokenNotAllowed
	}

	if err := op.position.DebitCollateral(assetId, amount); err != nil {
		return err
	}
	op.emit(NewCollateralRedeemed(op.position.AccountId, to, assetId, amount, op.now))

	var err error
	if assetId == NativeAssetId {
		err = l.assets.TransferNative(ctx, to, amount)
	} else {
		err = l.assets.TransferToken(ctx, to, assetId, amount)
	}
	if err != nil {
		return TransferFailed
	}
	return nil
}

package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	PositionStore interface {
		GetPosition(ctx context.Context, accountId uuid.UUID) (*Position, error)
		UpsertPosition(ctx context.Context, position *Position) error
		ListPositions(ctx context.Context) ([]*Position, error)
	}

	// Position is the per-account aggregate: collateral balances per
	// asset, outstanding minted debt, and the mint-only ratio snapshot
	// used by the direct repayment path. A position is created on first
	// deposit and never deleted; balances may return to zero.
	Position struct {
		AccountId uuid.UUID `json:"accountId"`

		Collateral map[string]decimal.Decimal `json:"collateral"`
		Debt       decimal.Decimal            `json:"debt"`

		// MintRatio is nativeCollateral/debt captured at mint time. It
		// is refreshed only by mint operations, so it can drift from
		// live prices and from collateral changes made through other
		// paths. That staleness is intended; see RepayWithNativeDirect.
		MintRatio decimal.Decimal `json:"mintRatio"`

		CreatedAt int64 `json:"createdAt"`
		UpdatedAt int64 `json:"updatedAt"`
	}
)

func NewPosition(clk clock.Clock, accountId uuid.UUID) *Position {
	return &Position{
		AccountId:  accountId,
		Collateral: make(map[string]decimal.Decimal),
		Debt:       decimal.Zero,
		MintRatio:  decimal.Zero,
		CreatedAt:  clk.Now().Unix(),
		UpdatedAt:  clk.Now().Unix(),
	}
}

// FindPosition loads a position; a store miss becomes PositionNotFound.
func FindPosition(ctx context.Context, store PositionStore, accountId uuid.UUID) (*Position, error) {
	position, err := store.GetPosition(ctx, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, PositionNotFound
		}
		return nil, err
	}
	return position, nil
}

func (p *Position) Clone() *Position {
	collateral := make(map[string]decimal.Decimal, len(p.Collateral))
	for assetId, amount := range p.Collateral {
		collateral[assetId] = amount
	}
	return &Position{
		AccountId:  p.AccountId,
		Collateral: collateral,
		Debt:       p.Debt,
		MintRatio:  p.MintRatio,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (p *Position) CollateralBalance(assetId string) decimal.Decimal {
	amount, ok := p.Collateral[assetId]
	if !ok {
		return decimal.Zero
	}
	return amount
}

func (p *Position) CreditCollateral(assetId string, amount decimal.Decimal) {
	p.Collateral[assetId] = p.CollateralBalance(assetId).Add(amount)
}

// DebitCollateral performs a checked subtraction; an underflow fails the
// operation without touching the balance.
func (p *Position) DebitCollateral(assetId string, amount decimal.Decimal) error {
	balance := p.CollateralBalance(assetId).Sub(amount)
	if balance.IsNegative() {
		return InsufficientCollateral
	}
	p.Collateral[assetId] = balance
	return nil
}

func (p *Position) CreditDebt(amount decimal.Decimal) {
	p.Debt = p.Debt.Add(amount)
}

func (p *Position) DebitDebt(amount decimal.Decimal) error {
	debt := p.Debt.Sub(amount)
	if debt.IsNegative() {
		return InsufficientDebt
	}
	p.Debt = debt
	return nil
}

// SnapshotMintRatio caches nativeCollateral/debt. Called on mint only.
func (p *Position) SnapshotMintRatio() {
	if p.Debt.IsPositive() {
		p.MintRatio = p.CollateralBalance(NativeAssetId).Div(p.Debt)
	}
}

func (p *Position) Touch(clk clock.Clock) {
	p.UpdatedAt = clk.Now().Unix()
}

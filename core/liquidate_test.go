package core

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedUnsafePosition opens a position with 10 native units and 100 of
// debt, then drops the native price so the health factor falls to 0.9.
func seedUnsafePosition(t *testing.T, f *engineFixture) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	target := uuid.Must(uuid.NewV4())

	require.NoError(t, f.engine.DepositNative(ctx, target, decimal.NewFromInt(10)))
	require.NoError(t, f.engine.MintDebt(ctx, target, decimal.NewFromInt(100)))

	f.setPrice(f.nativeFeed, 18)

	factor, err := f.engine.HealthFactor(ctx, target)
	require.NoError(t, err)
	require.True(t, factor.Equal(decimal.NewFromFloat(0.9)), "got %s", factor)
	return target
}

func TestLiquidateUnsafePosition(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	target := seedUnsafePosition(t, f)
	liquidator := uuid.Must(uuid.NewV4())

	debtToCover := decimal.NewFromInt(100)
	result, err := f.engine.Liquidate(ctx, liquidator, NativeAssetId, target, debtToCover)
	require.NoError(t, err)

	seizeBase := debtToCover.Div(decimal.NewFromInt(18))
	bonus := seizeBase.Mul(LiquidationBonusPct).Div(HUNDRED)
	totalSeized := seizeBase.Add(bonus)

	assert.True(t, result.DebtCovered.Equal(debtToCover))
	assert.True(t, result.SeizedBase.Equal(seizeBase), "got %s", result.SeizedBase)
	assert.True(t, result.Bonus.Equal(bonus), "got %s", result.Bonus)
	assert.True(t, result.TotalSeized.Equal(totalSeized), "got %s", result.TotalSeized)
	assert.True(t, result.TargetPreHealth.Equal(decimal.NewFromFloat(0.9)))
	assert.True(t, result.TargetPostHealth.GreaterThan(result.TargetPreHealth))

	// The liquidator paid the debt and received the collateral.
	assert.True(t, f.token.pulled[liquidator].Equal(debtToCover))
	assert.True(t, f.token.burned.Equal(debtToCover))
	assert.True(t, f.assets.nativeOut[liquidator].Equal(totalSeized))

	balance, err := f.engine.CollateralBalance(ctx, target, NativeAssetId)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10).Sub(totalSeized)), "got %s", balance)

	_, debt, err := f.engine.AccountInformation(ctx, target)
	require.NoError(t, err)
	assert.True(t, debt.IsZero())
}

func TestLiquidateHealthyPositionRejected(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	target := uuid.Must(uuid.NewV4())
	liquidator := uuid.Must(uuid.NewV4())

	require.NoError(t, f.engine.DepositNative(ctx, target, decimal.NewFromInt(10)))
	require.NoError(t, f.engine.MintDebt(ctx, target, decimal.NewFromInt(100)))

	_, err := f.engine.Liquidate(ctx, liquidator, NativeAssetId, target, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, HealthFactorOk)
	assert.Empty(t, f.token.pulled)
}

func TestLiquidateMustImproveHealthFactor(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	target := seedUnsafePosition(t, f)
	liquidator := uuid.Must(uuid.NewV4())

	// At $8 the collateral is worth less than debt plus bonus, so a
	// partial liquidation drags the health factor down further.
	f.setPrice(f.nativeFeed, 8)

	_, err := f.engine.Liquidate(ctx, liquidator, NativeAssetId, target, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, HealthFactorNotImproved)

	// Nothing committed to the ledger.
	balance, err2 := f.engine.CollateralBalance(ctx, target, NativeAssetId)
	require.NoError(t, err2)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)))
	_, debt, err3 := f.engine.AccountInformation(ctx, target)
	require.NoError(t, err3)
	assert.True(t, debt.Equal(decimal.NewFromInt(100)))
}

func TestLiquidateSeizureExceedingCollateral(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	target := seedUnsafePosition(t, f)
	liquidator := uuid.Must(uuid.NewV4())

	// Seizing 100/8 plus the bonus would need 13.75 units against 10 held.
	f.setPrice(f.nativeFeed, 8)

	_, err := f.engine.Liquidate(ctx, liquidator, NativeAssetId, target, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, InsufficientCollateral)
}

func TestLiquidateRejectsNonPositiveCover(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	target := seedUnsafePosition(t, f)
	liquidator := uuid.Must(uuid.NewV4())

	_, err := f.engine.Liquidate(ctx, liquidator, NativeAssetId, target, decimal.Zero)
	assert.ErrorIs(t, err, AmountNotPositive)
}

func TestLiquidateUnknownTarget(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Liquidate(ctx, uuid.Must(uuid.NewV4()), NativeAssetId,
		uuid.Must(uuid.NewV4()), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, PositionNotFound)
}

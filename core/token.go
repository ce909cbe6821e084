package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	// StableAssetToken is the external stable-asset contract. Mint and
	// transfer report success the way a fungible-asset contract does: a
	// false return without an error is still a boundary failure.
	StableAssetToken interface {
		Mint(ctx context.Context, to uuid.UUID, amount decimal.Decimal) (bool, error)
		Burn(ctx context.Context, amount decimal.Decimal) error
		Transfer(ctx context.Context, to uuid.UUID, amount decimal.Decimal) (bool, error)
		TransferFrom(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) (bool, error)
	}

	// AssetClient moves collateral between principals and engine custody.
	// Native-currency transfers are raw value transfers; token transfers
	// go through the token's transfer interface.
	AssetClient interface {
		TransferIn(ctx context.Context, from uuid.UUID, assetId string, amount decimal.Decimal) error
		TransferNative(ctx context.Context, to uuid.UUID, amount decimal.Decimal) error
		TransferToken(ctx context.Context, to uuid.UUID, assetId string, amount decimal.Decimal) error
	}

	// SwapVenue is the external exchange used by the swap-based
	// repayment variant only. Output shortfalls, liquidity, and slippage
	// are the venue's concern; the engine only checks the call outcome.
	SwapVenue interface {
		SwapForExactOutput(ctx context.Context, amountOut, maxInput decimal.Decimal, path []string, recipient uuid.UUID, deadline int64) (inputUsed decimal.Decimal, err error)
	}
)

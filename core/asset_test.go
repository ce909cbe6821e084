package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssetRegistryMismatchedLengths(t *testing.T) {
	feeds := []PriceFeed{newTestFeed(decimal.NewFromInt(2000), 0)}

	registry, err := NewAssetRegistry([]string{NativeAssetId, "wbtc"}, feeds)
	assert.ErrorIs(t, err, MismatchedAssetsAndFeeds)
	assert.Nil(t, registry)
}

func TestAssetRegistryOrderIsStable(t *testing.T) {
	assetIds := []string{NativeAssetId, "wbtc", "weth"}
	feeds := []PriceFeed{
		newTestFeed(decimal.NewFromInt(2000), 0),
		newTestFeed(decimal.NewFromInt(60000), 0),
		newTestFeed(decimal.NewFromInt(2000), 0),
	}

	registry, err := NewAssetRegistry(assetIds, feeds)
	require.NoError(t, err)

	assert.Equal(t, assetIds, registry.AssetIds())
	assert.Equal(t, 3, registry.Len())
	for _, assetId := range assetIds {
		assert.True(t, registry.IsRegistered(assetId))
	}
	assert.False(t, registry.IsRegistered("doge"))
}

func TestAssetRegistryDuplicateKeepsFirstBinding(t *testing.T) {
	first := newTestFeed(decimal.NewFromInt(2000), 0)
	second := newTestFeed(decimal.NewFromInt(9999), 0)

	registry, err := NewAssetRegistry([]string{"weth", "weth"}, []PriceFeed{first, second})
	require.NoError(t, err)

	assert.Equal(t, []string{"weth"}, registry.AssetIds())
	feed, err := registry.Feed("weth")
	require.NoError(t, err)
	assert.Same(t, PriceFeed(first), feed)
}

func TestAssetRegistryUnknownFeed(t *testing.T) {
	registry, err := NewAssetRegistry(nil, nil)
	require.NoError(t, err)

	_, err = registry.Feed("weth")
	assert.ErrorIs(t, err, OracleFeedNotFound)
}

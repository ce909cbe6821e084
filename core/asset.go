package core

// AssetRegistry is the ordered set of supported collateral assets, each
// bound to exactly one price feed. Order is fixed at construction and
// externally observable: enumeration always yields assets in the order
// they were registered.
type AssetRegistry struct {
	assetIds []string
	feeds    map[string]PriceFeed
}

// NewAssetRegistry binds assetIds[i] to feeds[i]. A length mismatch
// fails before any state is established. Duplicate ids keep their first
// binding.
func NewAssetRegistry(assetIds []string, feeds []PriceFeed) (*AssetRegistry, error) {
	if len(assetIds) != len(feeds) {
		return nil, MismatchedAssetsAndFeeds
	}

	r := &AssetRegistry{
		assetIds: make([]string, 0, len(assetIds)),
		feeds:    make(map[string]PriceFeed, len(assetIds)),
	}
	for i, assetId := range assetIds {
		if _, ok := r.feeds[assetId]; ok {
			continue
		}
		r.assetIds = append(r.assetIds, assetId)
		r.feeds[assetId] = feeds[i]
	}
	return r, nil
}

func (r *AssetRegistry) IsRegistered(assetId string) bool {
	_, ok := r.feeds[assetId]
	return ok
}

func (r *AssetRegistry) Feed(assetId string) (PriceFeed, error) {
	feed, ok := r.feeds[assetId]
	if !ok {
		return nil, OracleFeedNotFound
	}
	return feed, nil
}

// AssetIds returns the registered ids in registration order.
func (r *AssetRegistry) AssetIds() []string {
	ids := make([]string, len(r.assetIds))
	copy(ids, r.assetIds)
	return ids
}

func (r *AssetRegistry) Len() int {
	return len(r.assetIds)
}

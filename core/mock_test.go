package core

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// testStore is a minimal in-memory PositionStore for engine tests.
type testStore struct {
	mu        sync.Mutex
	positions map[uuid.UUID]*Position
}

func newTestStore() *testStore {
	return &testStore{positions: make(map[uuid.UUID]*Position)}
}

func (s *testStore) GetPosition(ctx context.Context, accountId uuid.UUID) (*Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	position, ok := s.positions[accountId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return position.Clone(), nil
}

func (s *testStore) UpsertPosition(ctx context.Context, position *Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[position.AccountId] = position.Clone()
	return nil
}

func (s *testStore) ListPositions(ctx context.Context) ([]*Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	positions := make([]*Position, 0, len(s.positions))
	for _, position := range s.positions {
		positions = append(positions, position.Clone())
	}
	return positions, nil
}

// testFeed reports a settable raw quote at feed precision.
type testFeed struct {
	mu        sync.Mutex
	raw       decimal.Decimal
	updatedAt int64
	err       error
}

// newTestFeed takes a USD price and stores it as a raw 8-decimal quote.
func newTestFeed(usd decimal.Decimal, updatedAt int64) *testFeed {
	return &testFeed{raw: usd.Mul(decimal.New(1, FeedDecimals)), updatedAt: updatedAt}
}

func (f *testFeed) LatestRoundData(ctx context.Context) (decimal.Decimal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return decimal.Zero, 0, f.err
	}
	return f.raw, f.updatedAt, nil
}

func (f *testFeed) setUsdPrice(usd decimal.Decimal, updatedAt int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = usd.Mul(decimal.New(1, FeedDecimals))
	f.updatedAt = updatedAt
}

// testToken records external stable-asset calls and can be told to fail
// or to re-enter the engine mid-call.
type testToken struct {
	minted   map[uuid.UUID]decimal.Decimal
	burned   decimal.Decimal
	pulled   map[uuid.UUID]decimal.Decimal
	mintErr  error
	failMint bool
	failPull bool
	onMint   func()
}

func newTestToken() *testToken {
	return &testToken{
		minted: make(map[uuid.UUID]decimal.Decimal),
		pulled: make(map[uuid.UUID]decimal.Decimal),
		burned: decimal.Zero,
	}
}

func (t *testToken) Mint(ctx context.Context, to uuid.UUID, amount decimal.Decimal) (bool, error) {
	if t.onMint != nil {
		t.onMint()
	}
	if t.mintErr != nil {
		return false, t.mintErr
	}
	if t.failMint {
		return false, nil
	}
	t.minted[to] = t.minted[to].Add(amount)
	return true, nil
}

func (t *testToken) Burn(ctx context.Context, amount decimal.Decimal) error {
	t.burned = t.burned.Add(amount)
	return nil
}

func (t *testToken) Transfer(ctx context.Context, to uuid.UUID, amount decimal.Decimal) (bool, error) {
	return true, nil
}

func (t *testToken) TransferFrom(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) (bool, error) {
	if t.failPull {
		return false, nil
	}
	t.pulled[from] = t.pulled[from].Add(amount)
	return true, nil
}

// testAssetClient records collateral movements.
type testAssetClient struct {
	failTransferIn bool
	failTransfer   bool

	transferredIn map[string]decimal.Decimal
	nativeOut     map[uuid.UUID]decimal.Decimal
	tokenOut      map[uuid.UUID]decimal.Decimal
}

func newTestAssetClient() *testAssetClient {
	return &testAssetClient{
		transferredIn: make(map[string]decimal.Decimal),
		nativeOut:     make(map[uuid.UUID]decimal.Decimal),
		tokenOut:      make(map[uuid.UUID]decimal.Decimal),
	}
}

func (c *testAssetClient) TransferIn(ctx context.Context, from uuid.UUID, assetId string, amount decimal.Decimal) error {
	if c.failTransferIn {
		return TransferFailed
	}
	c.transferredIn[assetId] = c.transferredIn[assetId].Add(amount)
	return nil
}

func (c *testAssetClient) TransferNative(ctx context.Context, to uuid.UUID, amount decimal.Decimal) error {
	if c.failTransfer {
		return TransferFailed
	}
	c.nativeOut[to] = c.nativeOut[to].Add(amount)
	return nil
}

func (c *testAssetClient) TransferToken(ctx context.Context, to uuid.UUID, assetId string, amount decimal.Decimal) error {
	if c.failTransfer {
		return TransferFailed
	}
	c.tokenOut[to] = c.tokenOut[to].Add(amount)
	return nil
}

// testSwap fills exact-output orders at a fixed rate.
type testSwap struct {
	rate decimal.Decimal // native per stable unit
	err  error

	lastAmountOut decimal.Decimal
	lastMaxInput  decimal.Decimal
	lastPath      []string
}

func (s *testSwap) SwapForExactOutput(ctx context.Context, amountOut, maxInput decimal.Decimal, path []string, recipient uuid.UUID, deadline int64) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	s.lastAmountOut = amountOut
	s.lastMaxInput = maxInput
	s.lastPath = path

	inputUsed := amountOut.Mul(s.rate)
	if inputUsed.GreaterThan(maxInput) {
		return decimal.Zero, SwapFailed
	}
	return inputUsed, nil
}

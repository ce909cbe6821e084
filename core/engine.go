package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sanskar717/stablecoin-backend/observability"
)

// swapDeadline bounds how long the swap venue may take to fill the
// exact-output order of the swap repayment path.
const swapDeadline = 5 * time.Minute

type Config struct {
	// EngineId is the engine's own principal, used as custody recipient
	// for pulled stable asset and as swap recipient.
	EngineId uuid.UUID

	// StableAssetId names the stable asset on the swap venue.
	StableAssetId string

	// AssetIds[i] is priced by Feeds[i]. Registration order is the
	// externally observable enumeration order.
	AssetIds []string
	Feeds    []PriceFeed

	// OracleMaxAge is the freshness bound in seconds; zero selects
	// DefaultOracleMaxAge.
	OracleMaxAge int64
}

// Engine is the serialized facade over the ledgers, the risk engine,
// the liquidation coordinator, and the direct repayment path. Every
// mutating entry point runs as one atomic unit: position state is
// mutated on a clone and committed only after all checks and external
// calls succeed, so any failure is a full rollback.
type Engine struct {
	log      Log
	clk      clock.Clock
	store    PositionStore
	registry *AssetRegistry
	oracle   PriceOracleGateway

	risk        *RiskEngine
	collateral  *CollateralLedger
	debtLedger  *DebtLedger
	liquidation *LiquidationCoordinator
	repayment   *DirectRepaymentPath

	notifier Notifier
	metrics  *observability.Metrics
	engineId uuid.UUID

	// busy is the reentrancy guard: set on entry to every mutating
	// operation, released on every exit path. A reentrant invocation
	// fails before it can observe a half-updated ledger.
	busy atomic.Bool
}

type Option func(e *Engine)

func WithClock(clk clock.Clock) Option {
	return func(e *Engine) { e.clk = clk }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.log = &logger }
}

func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) { e.notifier = notifier }
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = metrics }
}

func NewEngine(cfg Config, store PositionStore, token StableAssetToken, assets AssetClient, swap SwapVenue, opts ...Option) (*Engine, error) {
	registry, err := NewAssetRegistry(cfg.AssetIds, cfg.Feeds)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clk:      clock.New(),
		store:    store,
		registry: registry,
		engineId: cfg.EngineId,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		logger := observability.NewLogger("engine")
		e.log = &logger
	}

	e.oracle = NewFeedGateway(e.clk, registry, cfg.OracleMaxAge)
	e.risk = NewRiskEngine(registry, e.oracle)
	e.collateral = NewCollateralLedger(registry, assets)
	e.debtLedger = NewDebtLedger(token, e.risk, cfg.EngineId)
	e.liquidation = NewLiquidationCoordinator(e.collateral, e.debtLedger, e.risk)
	e.repayment = NewDirectRepaymentPath(e.debtLedger, e.risk, assets, swap, cfg.StableAssetId, cfg.EngineId)

	return e, nil
}

// operation carries one mutating entry point's working state: the
// cloned position and the notifications buffered until commit.
type operation struct {
	position *Position
	events   []Event
	now      int64
}

func (o *operation) emit(event Event) {
	o.events = append(o.events, event)
}

func (e *Engine) enter() (func(), error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ReentrantCall
	}
	return func() { e.busy.Store(false) }, nil
}

// run wraps a mutating operation with the reentrancy guard and metrics.
func (e *Engine) run(name string, fn func() error) error {
	release, err := e.enter()
	if err != nil {
		e.reject(name, err)
		return err
	}
	defer release()

	start := e.clk.Now()
	err = fn()
	if e.metrics != nil {
		e.metrics.OpDuration.WithLabelValues(name).Observe(e.clk.Now().Sub(start).Seconds())
	}
	if err != nil {
		e.reject(name, err)
		return err
	}
	if e.metrics != nil {
		e.metrics.OpsApplied.WithLabelValues(name).Inc()
	}
	return nil
}

func (e *Engine) reject(name string, err error) {
	e.log.Debug().Err(err).Str("op", name).Msg("operation rejected")
	if e.metrics != nil {
		e.metrics.OpsRejected.WithLabelValues(name, rejectReason(err)).Inc()
	}
}

func rejectReason(err error) string {
	switch {
	case IsHealthFactorBreach(err):
		return "invariant"
	case errors.Is(err, AmountNotPositive), errors.Is(err, TokenNotAllowed),
		errors.Is(err, ReentrantCall), errors.Is(err, PaymentBelowRequired),
		errors.Is(err, NoCachedRatio), errors.Is(err, PositionNotFound):
		return "validation"
	case errors.Is(err, TransferFailed), errors.Is(err, MintFailed),
		errors.Is(err, BurnPullFailed), errors.Is(err, BurnFailed),
		errors.Is(err, SwapFailed):
		return "external"
	case errors.Is(err, HealthFactorOk), errors.Is(err, HealthFactorNotImproved):
		return "liquidation"
	case errors.Is(err, InsufficientCollateral), errors.Is(err, InsufficientDebt):
		return "ledger"
	case errors.Is(err, OracleFeedNotFound), errors.Is(err, OraclePriceStale),
		errors.Is(err, OraclePriceNotPositive):
		return "oracle"
	default:
		return "internal"
	}
}

// begin clones the account's position for this operation. With create,
// a missing record starts empty and is only persisted on commit, so a
// failed first deposit leaves no trace.
func (e *Engine) begin(ctx context.Context, accountId uuid.UUID, create bool) (*operation, error) {
	position, err := e.store.GetPosition(ctx, accountId)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		if !create {
			return nil, PositionNotFound
		}
		position = NewPosition(e.clk, accountId)
	}
	return &operation{
		position: position.Clone(),
		now:      e.clk.Now().Unix(),
	}, nil
}

func (e *Engine) commit(ctx context.Context, op *operation) error {
	op.position.Touch(e.clk)
	if err := e.store.UpsertPosition(ctx, op.position); err != nil {
		return err
	}
	e.flush(ctx, op)
	return nil
}

// flush publishes the buffered notifications. Delivery is best effort:
// the operation is already committed, failures are logged and counted.
func (e *Engine) flush(ctx context.Context, op *operation) {
	if e.notifier == nil {
		return
	}
	for _, event := range op.events {
		if err := e.notifier.Publish(ctx, event); err != nil {
			e.log.Warn().Err(err).Str("type", string(event.Type)).Msg("notification publish failed")
			if e.metrics != nil {
				e.metrics.EventsDropped.Inc()
			}
			continue
		}
		if e.metrics != nil {
			e.metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
		}
	}
}

// ------------ mutating entry points

// DepositNative credits the caller's native-currency collateral against
// an attached value transfer.
func (e *Engine) DepositNative(ctx context.Context, account uuid.UUID, amount decimal.Decimal) error {
	return e.run("deposit_native", func() error {
		op, err := e.begin(ctx, account, true)
		if err != nil {
			return err
		}
		if err := e.collateral.Deposit(ctx, op, NativeAssetId, amount); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

func (e *Engine) DepositCollateral(ctx context.Context, account uuid.UUID, assetId string, amount decimal.Decimal) error {
	return e.run("deposit_collateral", func() error {
		op, err := e.begin(ctx, account, true)
		if err != nil {
			return err
		}
		if err := e.collateral.Deposit(ctx, op, assetId, amount); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

// DepositAndMint deposits collateral and mints debt as one atomic unit.
func (e *Engine) DepositAndMint(ctx context.Context, account uuid.UUID, assetId string, amount, mintAmount decimal.Decimal) error {
	return e.run("deposit_and_mint", func() error {
		op, err := e.begin(ctx, account, true)
		if err != nil {
			return err
		}
		if err := e.collateral.Deposit(ctx, op, assetId, amount); err != nil {
			return err
		}
		if err := e.debtLedger.Mint(ctx, op, mintAmount); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

func (e *Engine) MintDebt(ctx context.Context, account uuid.UUID, amount decimal.Decimal) error {
	return e.run("mint_debt", func() error {
		op, err := e.begin(ctx, account, false)
		if err != nil {
			return err
		}
		if err := e.debtLedger.Mint(ctx, op, amount); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

// RedeemCollateral returns collateral to the caller's wallet. Freeing
// collateral can only increase risk, so the post-state is validated.
func (e *Engine) RedeemCollateral(ctx context.Context, account uuid.UUID, assetId string, amount decimal.Decimal) error {
	return e.run("redeem_collateral", func() error {
		op, err := e.begin(ctx, account, false)
		if err != nil {
			return err
		}
		if err := e.collateral.Redeem(ctx, op, account, assetId, amount); err != nil {
			return err
		}
		if err := e.risk.Validate(ctx, op.position); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

// RedeemAndBurn burns debt first so the redemption is checked against
// the reduced exposure.
func (e *Engine) RedeemAndBurn(ctx context.Context, account uuid.UUID, assetId string, collateralAmount, debtAmount decimal.Decimal) error {
	return e.run("redeem_and_burn", func() error {
		op, err := e.begin(ctx, account, false)
		if err != nil {
			return err
		}
		if err := e.debtLedger.Burn(ctx, op, debtAmount, account); err != nil {
			return err
		}
		if err := e.collateral.Redeem(ctx, op, account, assetId, collateralAmount); err != nil {
			return err
		}
		if err := e.risk.Validate(ctx, op.position); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

func (e *Engine) BurnDebt(ctx context.Context, account uuid.UUID, amount decimal.Decimal) error {
	return e.run("burn_debt", func() error {
		op, err := e.begin(ctx, account, false)
		if err != nil {
			return err
		}
		if err := e.debtLedger.Burn(ctx, op, amount, account); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

// Liquidate lets the liquidator cover debtToCover of an unsafe target's
// debt in exchange for the equivalent collateral plus the bonus.
func (e *Engine) Liquidate(ctx context.Context, liquidator uuid.UUID, assetId string, target uuid.UUID, debtToCover decimal.Decimal) (*LiquidateResult, error) {
	var result *LiquidateResult
	err := e.run("liquidate", func() error {
		op, err := e.begin(ctx, target, false)
		if err != nil {
			return err
		}
		liquidatorOp, err := e.begin(ctx, liquidator, true)
		if err != nil {
			return err
		}

		result, err = e.liquidation.Liquidate(ctx, op, liquidatorOp.position, liquidator, assetId, debtToCover)
		if err != nil {
			return err
		}

		if err := e.commit(ctx, op); err != nil {
			return err
		}
		if e.metrics != nil {
			e.metrics.LiquidationsCompleted.Inc()
			covered, _ := result.DebtCovered.Float64()
			e.metrics.LiquidationDebtCovered.Add(covered)
		}
		e.log.Info().
			Str("target", target.String()).
			Str("liquidator", liquidator.String()).
			Str("debtCovered", result.DebtCovered.String()).
			Str("totalSeized", result.TotalSeized.String()).
			Msg("position liquidated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RepayWithNativeDirect reduces debt against an attached native payment
// priced by the cached mint ratio; no oracle read.
func (e *Engine) RepayWithNativeDirect(ctx context.Context, account uuid.UUID, debtAmount, payment decimal.Decimal) error {
	return e.run("repay_native_direct", func() error {
		op, err := e.begin(ctx, account, false)
		if err != nil {
			return err
		}
		if err := e.repayment.RepayDirect(ctx, op, debtAmount, payment); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

// RepayWithNativeViaSwap converts the attached native payment into
// stable asset on the external venue and burns the proceeds.
func (e *Engine) RepayWithNativeViaSwap(ctx context.Context, account uuid.UUID, debtAmount, payment decimal.Decimal) error {
	return e.run("repay_native_swap", func() error {
		op, err := e.begin(ctx, account, false)
		if err != nil {
			return err
		}
		deadline := e.clk.Now().Add(swapDeadline).Unix()
		if err := e.repayment.RepayViaSwap(ctx, op, debtAmount, payment, deadline); err != nil {
			return err
		}
		return e.commit(ctx, op)
	})
}

// ------------ read-only queries

// AccountInformation returns the account's collateral USD value and
// outstanding debt.
func (e *Engine) AccountInformation(ctx context.Context, account uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	position, err := FindPosition(ctx, e.store, account)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	collateralValue, err := e.risk.CollateralValueUsd(ctx, position)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return collateralValue, position.Debt, nil
}

func (e *Engine) CollateralBalance(ctx context.Context, account uuid.UUID, assetId string) (decimal.Decimal, error) {
	position, err := FindPosition(ctx, e.store, account)
	if err != nil {
		return decimal.Zero, err
	}
	return position.CollateralBalance(assetId), nil
}

func (e *Engine) HealthFactor(ctx context.Context, account uuid.UUID) (decimal.Decimal, error) {
	position, err := FindPosition(ctx, e.store, account)
	if err != nil {
		return decimal.Zero, err
	}
	return e.risk.HealthFactor(ctx, position)
}

func (e *Engine) UsdValue(ctx context.Context, assetId string, amount decimal.Decimal) (decimal.Decimal, error) {
	return e.risk.UsdValue(ctx, assetId, amount)
}

func (e *Engine) TokenAmountFromUsd(ctx context.Context, assetId string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	return e.risk.TokenAmountFromUsd(ctx, assetId, usdValue)
}

// CollateralAssets lists the registry in registration order.
func (e *Engine) CollateralAssets() []string {
	return e.registry.AssetIds()
}

func (e *Engine) MintRatio(ctx context.Context, account uuid.UUID) (decimal.Decimal, error) {
	position, err := FindPosition(ctx, e.store, account)
	if err != nil {
		return decimal.Zero, err
	}
	return position.MintRatio, nil
}

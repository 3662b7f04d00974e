// Package quoter holds the engine context for one LP account on one pool:
// the cached balances, the order-id counter, the cooldown watermark, and the
// order gate through which every submission flows.
package quoter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/poolmath"
	"cf-goquote/internal/signer"
)

// The one supported pool. RPC queries use chain-scoped asset names while the
// pools pallet uses its own capitalised symbols.
var (
	PoolBaseAsset  = cfrpc.Asset{Chain: "Ethereum", Asset: "USDT"}
	PoolQuoteAsset = cfrpc.Asset{Chain: "Ethereum", Asset: "USDC"}
)

const (
	PalletBaseAsset  = "Usdt"
	PalletQuoteAsset = "Usdc"

	// Both pool assets are 6-decimal stablecoins.
	AssetDecimals = 6
)

var (
	ErrUnsupportedPool = errors.New("unsupported pool: only Usdt/Usdc is implemented")
	ErrInvalidSwapSide = errors.New("invalid swap side")
)

// Strategy names accepted in configuration.
const (
	StrategyBasic   = "SELL-STABLECOIN-BASIC"
	StrategyBasicWS = "SELL-STABLECOIN-BASIC-WS"
)

// Config carries the validated strategy parameters. Validation runs before
// any network call is made.
type Config struct {
	Strategy  string
	SellPrice float64
	BuyPrice  float64
}

func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyBasic, StrategyBasicWS:
	default:
		return fmt.Errorf("config: unknown strategy %q", c.Strategy)
	}
	if !(c.SellPrice > 0) {
		return fmt.Errorf("config: sell price must be > 0, got %v", c.SellPrice)
	}
	if !(c.BuyPrice > 0) {
		return fmt.Errorf("config: buy price must be > 0, got %v", c.BuyPrice)
	}
	return nil
}

// RPC is the read-only node surface the engine needs.
type RPC interface {
	AssetBalances(ctx context.Context, accountID string) (cfrpc.Balances, error)
	PoolOrders(ctx context.Context, base, quote cfrpc.Asset, lp string) (*cfrpc.PoolOrders, error)
}

// Order is the record of one accepted submission, kept only long enough to
// journal it; resting orders are re-read from the node when needed.
type Order struct {
	ID         uint64
	BaseAsset  string
	QuoteAsset string
	Side       signer.Side
	Tick       int
	SellAmount string
}

// Engine is not safe for concurrent use: the bot drives it from the single
// goroutine consuming the swap feed, and the invalidate-around-mutation cache
// discipline relies on that.
type Engine struct {
	rpc    RPC
	signer signer.Signer
	cfg    Config

	balances      cfrpc.Balances // nil when stale
	lastOrderID   uint64
	cooldownBlock uint64
}

// NewEngine validates cfg and seeds the order-id counter from wall-clock
// milliseconds. Seeding this way keeps ids unique across restarts as long as
// the account runs a single instance; that assumption is documented, not
// enforced.
func NewEngine(rpc RPC, sig signer.Signer, cfg Config) (*Engine, error) {
	if rpc == nil {
		return nil, fmt.Errorf("engine: rpc client required")
	}
	if sig == nil {
		return nil, fmt.Errorf("engine: signer required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		rpc:         rpc,
		signer:      sig,
		cfg:         cfg,
		lastOrderID: uint64(time.Now().UnixMilli()),
	}, nil
}

// Balances returns the cached snapshot, reading through to the node on a
// cache miss. The node pushes no balance-change events, so freshness is
// managed purely by InvalidateBalances calls around mutations.
func (e *Engine) Balances(ctx context.Context) (cfrpc.Balances, error) {
	if e.balances != nil {
		return e.balances, nil
	}
	b, err := e.rpc.AssetBalances(ctx, e.signer.AccountID())
	if err != nil {
		return nil, fmt.Errorf("read balances: %w", err)
	}
	e.balances = b
	return b, nil
}

// InvalidateBalances marks the snapshot stale. Idempotent; called both before
// and after a mutation so a read interleaved with the submission can never
// survive it.
func (e *Engine) InvalidateBalances() {
	e.balances = nil
}

// CooldownBlock exposes the reactive watermark, mainly for logging.
func (e *Engine) CooldownBlock() uint64 {
	return e.cooldownBlock
}

// SubmitLimitOrder places one limit order selling `amount` (hex-encoded
// integer units of the offered asset) at the tick nearest to price. Returns
// the submitted order record once the signer reports finalization.
func (e *Engine) SubmitLimitOrder(ctx context.Context, base, quote string, side signer.Side, price float64, amount string) (*Order, error) {
	if base != PalletBaseAsset || quote != PalletQuoteAsset {
		return nil, fmt.Errorf("%w (got %s/%s)", ErrUnsupportedPool, base, quote)
	}
	if side != signer.SideBuy && side != signer.SideSell {
		return nil, fmt.Errorf("submit limit order: unknown side %q", side)
	}
	sellAmount, err := poolmath.ParseHexAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("submit limit order: %w", err)
	}
	if sellAmount.Sign() <= 0 {
		return nil, fmt.Errorf("submit limit order: sell amount must be > 0")
	}

	e.lastOrderID++
	order := Order{
		ID:         e.lastOrderID,
		BaseAsset:  base,
		QuoteAsset: quote,
		Side:       side,
		Tick:       poolmath.PriceToTick(price, AssetDecimals, AssetDecimals),
		SellAmount: poolmath.FormatHexAmount(sellAmount),
	}

	e.InvalidateBalances()
	err = e.signer.SubmitLimitOrder(ctx, signer.LimitOrderCall{
		BaseAsset:  order.BaseAsset,
		QuoteAsset: order.QuoteAsset,
		Side:       order.Side,
		OrderID:    order.ID,
		Tick:       order.Tick,
		SellAmount: sellAmount,
	})
	e.InvalidateBalances()
	if err != nil {
		return nil, fmt.Errorf("set limit order (%s @ tick %d): %w", order.Side, order.Tick, err)
	}
	return &order, nil
}

// CancelAllOpenOrders cancels every resting ask and bid the account has on
// the pool in one batch. It submits nothing when there is nothing to cancel.
func (e *Engine) CancelAllOpenOrders(ctx context.Context) (int, error) {
	open, err := e.rpc.PoolOrders(ctx, PoolBaseAsset, PoolQuoteAsset, e.signer.AccountID())
	if err != nil {
		return 0, fmt.Errorf("list open orders: %w", err)
	}

	refs := make([]signer.OrderRef, 0, len(open.LimitOrders.Asks)+len(open.LimitOrders.Bids))
	for _, o := range open.LimitOrders.Asks {
		refs = append(refs, signer.OrderRef{
			ID:         string(o.ID),
			BaseAsset:  PalletBaseAsset,
			QuoteAsset: PalletQuoteAsset,
			Side:       signer.SideSell,
		})
	}
	for _, o := range open.LimitOrders.Bids {
		refs = append(refs, signer.OrderRef{
			ID:         string(o.ID),
			BaseAsset:  PalletBaseAsset,
			QuoteAsset: PalletQuoteAsset,
			Side:       signer.SideBuy,
		})
	}
	if len(refs) == 0 {
		return 0, nil
	}

	e.InvalidateBalances()
	err = e.signer.CancelOrdersBatch(ctx, refs)
	e.InvalidateBalances()
	if err != nil {
		return 0, fmt.Errorf("cancel orders batch: %w", err)
	}
	return len(refs), nil
}

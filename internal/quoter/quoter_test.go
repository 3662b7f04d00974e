package quoter

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/poolmath"
	"cf-goquote/internal/signer"
)

type fakeRPC struct {
	balances     cfrpc.Balances
	balanceCalls int
	orders       cfrpc.PoolOrders
	orderCalls   int
}

func (f *fakeRPC) AssetBalances(ctx context.Context, accountID string) (cfrpc.Balances, error) {
	f.balanceCalls++
	return f.balances, nil
}

func (f *fakeRPC) PoolOrders(ctx context.Context, base, quote cfrpc.Asset, lp string) (*cfrpc.PoolOrders, error) {
	f.orderCalls++
	orders := f.orders
	return &orders, nil
}

type fakeSigner struct {
	submitted []signer.LimitOrderCall
	cancelled [][]signer.OrderRef
	submitErr error
}

func (f *fakeSigner) AccountID() string { return "cFtest" }

func (f *fakeSigner) SubmitLimitOrder(ctx context.Context, call signer.LimitOrderCall) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, call)
	return nil
}

func (f *fakeSigner) CancelOrdersBatch(ctx context.Context, orders []signer.OrderRef) error {
	f.cancelled = append(f.cancelled, orders)
	return nil
}

func ethBalances(usdt, usdc string) cfrpc.Balances {
	return cfrpc.Balances{"Ethereum": {"USDT": usdt, "USDC": usdc}}
}

func validConfig() Config {
	return Config{Strategy: StrategyBasic, SellPrice: 1.001, BuyPrice: 0.999}
}

func newTestEngine(t *testing.T, rpc *fakeRPC, sig *fakeSigner, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(rpc, sig, cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	cases := []Config{
		{Strategy: StrategyBasic, SellPrice: 0, BuyPrice: 1},
		{Strategy: StrategyBasic, SellPrice: 1, BuyPrice: -0.5},
		{Strategy: "YOLO", SellPrice: 1, BuyPrice: 1},
	}
	for _, cfg := range cases {
		if _, err := NewEngine(&fakeRPC{}, &fakeSigner{}, cfg); err == nil {
			t.Fatalf("expected config error for %#v", cfg)
		}
	}
}

func TestBalances_CachedUntilInvalidated(t *testing.T) {
	rpc := &fakeRPC{balances: ethBalances("0x0", "0xf4240")}
	e := newTestEngine(t, rpc, &fakeSigner{}, validConfig())
	ctx := context.Background()

	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}
	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}
	if rpc.balanceCalls != 1 {
		t.Fatalf("cached read still hit the node: %d calls", rpc.balanceCalls)
	}

	e.InvalidateBalances()
	e.InvalidateBalances() // idempotent
	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}
	if rpc.balanceCalls != 2 {
		t.Fatalf("invalidate did not force a fresh read: %d calls", rpc.balanceCalls)
	}
}

func TestSubmitLimitOrder_UnsupportedPool(t *testing.T) {
	rpc := &fakeRPC{}
	sig := &fakeSigner{}
	e := newTestEngine(t, rpc, sig, validConfig())

	_, err := e.SubmitLimitOrder(context.Background(), "Eth", "Btc", signer.SideSell, 1, "0x01")
	if !errors.Is(err, ErrUnsupportedPool) {
		t.Fatalf("expected ErrUnsupportedPool, got %v", err)
	}
	if len(sig.submitted) != 0 || rpc.balanceCalls != 0 {
		t.Fatalf("rejected submission still reached the network")
	}
}

func TestSubmitLimitOrder_MonotonicIDsAndInvalidation(t *testing.T) {
	rpc := &fakeRPC{balances: ethBalances("0xf4240", "0x0")}
	sig := &fakeSigner{}
	e := newTestEngine(t, rpc, sig, validConfig())
	ctx := context.Background()

	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}

	first, err := e.SubmitLimitOrder(ctx, PalletBaseAsset, PalletQuoteAsset, signer.SideSell, 1.001, "0xf4240")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := e.SubmitLimitOrder(ctx, PalletBaseAsset, PalletQuoteAsset, signer.SideSell, 1.001, "0xf4240")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("ids not strictly increasing: %d then %d", first.ID, second.ID)
	}

	// The pre/post invalidation means the next read goes back to the node.
	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}
	if rpc.balanceCalls != 2 {
		t.Fatalf("submission did not invalidate the cache: %d calls", rpc.balanceCalls)
	}

	call := sig.submitted[0]
	if call.Side != signer.SideSell || call.Tick != poolmath.PriceToTick(1.001, 6, 6) {
		t.Fatalf("call fields: %#v", call)
	}
	if call.SellAmount.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("sell amount: %v", call.SellAmount)
	}
}

func TestSubmitLimitOrder_SignerFailureSurfaced(t *testing.T) {
	rpc := &fakeRPC{balances: ethBalances("0xf4240", "0x0")}
	sig := &fakeSigner{submitErr: &signer.DispatchError{Module: "LiquidityPools", Name: "InvalidTick"}}
	e := newTestEngine(t, rpc, sig, validConfig())
	ctx := context.Background()

	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}

	_, err := e.SubmitLimitOrder(ctx, PalletBaseAsset, PalletQuoteAsset, signer.SideSell, 1.001, "0xf4240")
	var de *signer.DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
	// Failed submissions still invalidate: balances may or may not have moved.
	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}
	if rpc.balanceCalls != 2 {
		t.Fatalf("failed submission did not invalidate the cache: %d calls", rpc.balanceCalls)
	}
}

func TestCancelAllOpenOrders_NoopWhenEmpty(t *testing.T) {
	rpc := &fakeRPC{}
	sig := &fakeSigner{}
	e := newTestEngine(t, rpc, sig, validConfig())

	n, err := e.CancelAllOpenOrders(context.Background())
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n != 0 || len(sig.cancelled) != 0 {
		t.Fatalf("empty book should submit nothing: n=%d batches=%d", n, len(sig.cancelled))
	}
}

func TestCancelAllOpenOrders_BatchCoversAsksAndBids(t *testing.T) {
	rpc := &fakeRPC{balances: ethBalances("0x0", "0x0")}
	rpc.orders.LimitOrders.Asks = []cfrpc.PoolOrder{{ID: "0x1", Tick: 5}}
	rpc.orders.LimitOrders.Bids = []cfrpc.PoolOrder{{ID: "0x2", Tick: -5}, {ID: "0x3", Tick: -7}}
	sig := &fakeSigner{}
	e := newTestEngine(t, rpc, sig, validConfig())
	ctx := context.Background()

	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}

	n, err := e.CancelAllOpenOrders(ctx)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n != 3 || len(sig.cancelled) != 1 || len(sig.cancelled[0]) != 3 {
		t.Fatalf("batch shape: n=%d batches=%#v", n, sig.cancelled)
	}
	if sig.cancelled[0][0].Side != signer.SideSell || sig.cancelled[0][1].Side != signer.SideBuy {
		t.Fatalf("ref sides: %#v", sig.cancelled[0])
	}
	if _, err := e.Balances(ctx); err != nil {
		t.Fatalf("balances: %v", err)
	}
	if rpc.balanceCalls != 2 {
		t.Fatalf("cancellation did not invalidate the cache: %d calls", rpc.balanceCalls)
	}
}

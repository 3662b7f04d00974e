// Package signer abstracts transaction signing and dispatch. The engine only
// sees the Signer interface; key handling lives behind it (here, delegated to
// a trusted LP-API node that holds the key and signs server-side).
package signer

import (
	"context"
	"math/big"
)

type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// LimitOrderCall mirrors liquidityPools.setLimitOrder extrinsic arguments.
// BaseAsset/QuoteAsset carry pallet-style names ("Usdt", "Usdc").
type LimitOrderCall struct {
	BaseAsset  string
	QuoteAsset string
	Side       Side
	OrderID    uint64
	Tick       int
	SellAmount *big.Int
}

// OrderRef identifies one resting order inside a cancellation batch.
type OrderRef struct {
	ID         string
	BaseAsset  string
	QuoteAsset string
	Side       Side
}

// Signer signs and dispatches pool calls for one LP account and reports
// finalization or failure. Submissions are not retried here; a failure leaves
// the decision to the next strategy evaluation.
type Signer interface {
	AccountID() string
	SubmitLimitOrder(ctx context.Context, call LimitOrderCall) error
	CancelOrdersBatch(ctx context.Context, orders []OrderRef) error
}

package signer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/poolmath"
)

// LPAPISigner submits pool calls through a trusted LP-API node over JSON-RPC.
// The node holds the signing key, signs the extrinsic, and returns once the
// call is finalized or rejected.
type LPAPISigner struct {
	rpc       *cfrpc.Client
	accountID string
}

func NewLPAPISigner(rpc *cfrpc.Client, accountID string) (*LPAPISigner, error) {
	accountID = strings.TrimSpace(accountID)
	if rpc == nil {
		return nil, fmt.Errorf("lp signer: rpc client required")
	}
	if accountID == "" {
		return nil, fmt.Errorf("lp signer: account id required")
	}
	return &LPAPISigner{rpc: rpc, accountID: accountID}, nil
}

func (s *LPAPISigner) AccountID() string {
	return s.accountID
}

func (s *LPAPISigner) SubmitLimitOrder(ctx context.Context, call LimitOrderCall) error {
	if call.SellAmount == nil || call.SellAmount.Sign() <= 0 {
		return fmt.Errorf("lp signer: sell amount must be > 0")
	}
	params := map[string]any{
		"base_asset":  call.BaseAsset,
		"quote_asset": call.QuoteAsset,
		"side":        strings.ToLower(string(call.Side)),
		"id":          strconv.FormatUint(call.OrderID, 10),
		"tick":        call.Tick,
		"sell_amount": poolmath.FormatHexAmount(call.SellAmount),
	}
	if err := s.rpc.Call(ctx, "lp_set_limit_order", params, nil); err != nil {
		return s.asDispatchFailure(err)
	}
	return nil
}

func (s *LPAPISigner) CancelOrdersBatch(ctx context.Context, orders []OrderRef) error {
	if len(orders) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		batch = append(batch, map[string]any{
			"Limit": map[string]any{
				"id":          o.ID,
				"base_asset":  o.BaseAsset,
				"quote_asset": o.QuoteAsset,
				"side":        strings.ToLower(string(o.Side)),
			},
		})
	}
	if err := s.rpc.Call(ctx, "lp_cancel_orders_batch", []any{batch}, nil); err != nil {
		return s.asDispatchFailure(err)
	}
	return nil
}

// asDispatchFailure maps an RPC error member to the dispatch-failure taxonomy;
// transport failures pass through untouched.
func (s *LPAPISigner) asDispatchFailure(err error) error {
	var rpcErr *cfrpc.Error
	if errors.As(err, &rpcErr) {
		return decodeDispatchFailure(rpcErr.Data)
	}
	return err
}

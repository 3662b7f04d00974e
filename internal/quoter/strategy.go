package quoter

import (
	"context"
	"fmt"
	"strings"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/poolmath"
	"cf-goquote/internal/signer"
	"cf-goquote/internal/swapfeed"
)

// OrderIntent is a strategy decision not yet executed by the order gate.
type OrderIntent struct {
	Side       signer.Side
	Price      float64
	SellAmount string
}

// DecideQuotes is the pure decision function behind the basic strategy: quote
// the full free balance of each asset, selling base at the sell price and
// buying base (selling quote) at the buy price. A zero balance on a side
// yields no intent for that side.
func DecideQuotes(balances cfrpc.Balances, cfg Config) ([]OrderIntent, error) {
	var intents []OrderIntent

	baseHex := balances.Amount(PoolBaseAsset)
	baseAmount, err := poolmath.ParseHexAmount(baseHex)
	if err != nil {
		return nil, fmt.Errorf("%s balance: %w", PoolBaseAsset, err)
	}
	if baseAmount.Sign() > 0 {
		intents = append(intents, OrderIntent{Side: signer.SideSell, Price: cfg.SellPrice, SellAmount: baseHex})
	}

	quoteHex := balances.Amount(PoolQuoteAsset)
	quoteAmount, err := poolmath.ParseHexAmount(quoteHex)
	if err != nil {
		return nil, fmt.Errorf("%s balance: %w", PoolQuoteAsset, err)
	}
	if quoteAmount.Sign() > 0 {
		intents = append(intents, OrderIntent{Side: signer.SideBuy, Price: cfg.BuyPrice, SellAmount: quoteHex})
	}

	return intents, nil
}

// RunBasic executes one evaluation of the basic strategy and returns the
// orders that were accepted on-chain.
func (e *Engine) RunBasic(ctx context.Context) ([]Order, error) {
	balances, err := e.Balances(ctx)
	if err != nil {
		return nil, err
	}
	intents, err := DecideQuotes(balances, e.cfg)
	if err != nil {
		return nil, err
	}

	var orders []Order
	for _, intent := range intents {
		order, err := e.SubmitLimitOrder(ctx, PalletBaseAsset, PalletQuoteAsset, intent.Side, intent.Price, intent.SellAmount)
		if err != nil {
			return orders, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// HandleScheduledSwaps is the reactive variant: react to the first swap of an
// incoming batch by quoting the opposite side, gated by the cooldown
// watermark so one trade window triggers at most one submission.
//
// Only the first swap in a batch is inspected; later entries in the same
// batch do not add further reactions.
func (e *Engine) HandleScheduledSwaps(ctx context.Context, batch swapfeed.ScheduledSwaps) ([]Order, error) {
	if len(batch.Swaps) == 0 {
		return nil, nil
	}
	first := batch.Swaps[0]
	if first.ExecuteAt <= e.cooldownBlock {
		return nil, nil
	}

	balances, err := e.Balances(ctx)
	if err != nil {
		return nil, err
	}

	var (
		side   signer.Side
		price  float64
		amount string
	)
	switch strings.ToLower(first.Side) {
	case "buy":
		// Incoming buy takes base: offer it at the sell price.
		side, price, amount = signer.SideSell, e.cfg.SellPrice, balances.Amount(PoolBaseAsset)
	case "sell":
		side, price, amount = signer.SideBuy, e.cfg.BuyPrice, balances.Amount(PoolQuoteAsset)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSwapSide, first.Side)
	}

	free, err := poolmath.ParseHexAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("free balance: %w", err)
	}
	if free.Sign() <= 0 {
		// Watermark stays put: a later event in the same window may still
		// find balance to quote.
		return nil, nil
	}

	e.cooldownBlock = first.ExecuteAt
	order, err := e.SubmitLimitOrder(ctx, PalletBaseAsset, PalletQuoteAsset, side, price, amount)
	if err != nil {
		return nil, err
	}
	return []Order{*order}, nil
}

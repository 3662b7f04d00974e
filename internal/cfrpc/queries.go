package cfrpc

import (
	"bytes"
	"context"
	"encoding/json"
)

// Asset identifies an exchange asset by chain and symbol, e.g.
// {Chain: "Ethereum", Asset: "USDT"}.
type Asset struct {
	Chain string `json:"chain"`
	Asset string `json:"asset"`
}

func (a Asset) String() string {
	return a.Chain + ":" + a.Asset
}

// Balances maps chain → asset → hex-encoded integer quantity.
type Balances map[string]map[string]string

// Amount returns the hex balance for one asset, defaulting to "0x0" when the
// node omits the entry entirely.
func (b Balances) Amount(asset Asset) string {
	chain, ok := b[asset.Chain]
	if !ok {
		return "0x0"
	}
	v, ok := chain[asset.Asset]
	if !ok || v == "" {
		return "0x0"
	}
	return v
}

// AssetBalances fetches the account's free balances (cf_asset_balances).
func (c *Client) AssetBalances(ctx context.Context, accountID string) (Balances, error) {
	var out Balances
	err := c.Call(ctx, "cf_asset_balances", map[string]any{"account_id": accountID}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrderID tolerates both JSON string and number encodings; different node
// versions have emitted both.
type OrderID string

func (o *OrderID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*o = OrderID(n.String())
	return nil
}

// PoolOrder is one resting limit order as reported by cf_pool_orders.
type PoolOrder struct {
	ID                 OrderID `json:"id"`
	Tick               int     `json:"tick"`
	SellAmount         string  `json:"sell_amount"`
	OriginalSellAmount string  `json:"original_sell_amount"`
}

type LimitOrders struct {
	Asks []PoolOrder `json:"asks"`
	Bids []PoolOrder `json:"bids"`
}

type PoolOrders struct {
	LimitOrders LimitOrders `json:"limit_orders"`
}

// PoolOrders fetches the LP's open orders on one pool (cf_pool_orders).
func (c *Client) PoolOrders(ctx context.Context, base, quote Asset, lp string) (*PoolOrders, error) {
	var out PoolOrders
	err := c.Call(ctx, "cf_pool_orders", map[string]any{
		"base_asset":  base,
		"quote_asset": quote,
		"lp":          lp,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PoolPrice is the cf_pool_price_v2 result; Buy and Sell are sqrt-price hex
// encodings (price scaled by 2^96 after the square root).
type PoolPrice struct {
	BaseAsset  Asset  `json:"base_asset"`
	QuoteAsset Asset  `json:"quote_asset"`
	Buy        string `json:"buy"`
	Sell       string `json:"sell"`
}

// PoolPriceV2 fetches the current pool prices for an asset pair.
func (c *Client) PoolPriceV2(ctx context.Context, base, quote Asset) (*PoolPrice, error) {
	var out PoolPrice
	if err := c.Call(ctx, "cf_pool_price_v2", []Asset{base, quote}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LiquidityLevel is one tick level in the cf_pool_liquidity result.
type LiquidityLevel struct {
	Tick   int    `json:"tick"`
	Amount string `json:"amount"`
}

type PoolLiquidity struct {
	LimitOrders struct {
		Asks []LiquidityLevel `json:"asks"`
		Bids []LiquidityLevel `json:"bids"`
	} `json:"limit_orders"`
}

// PoolLiquidity fetches aggregate limit-order liquidity per tick.
func (c *Client) PoolLiquidity(ctx context.Context, base, quote Asset) (*PoolLiquidity, error) {
	var out PoolLiquidity
	err := c.Call(ctx, "cf_pool_liquidity", map[string]any{
		"base_asset":  base,
		"quote_asset": quote,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

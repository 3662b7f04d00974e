// poolinfo dumps the account's balances, resting orders, and the current pool
// price/liquidity for the USDT/USDC pool. Read-only; no signer required.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/dotenv"
	"cf-goquote/internal/poolmath"
	"cf-goquote/internal/quoter"
)

func main() {
	log.SetFlags(0)

	if err := dotenv.Load(); err != nil {
		log.Printf("[warn] %v", err)
	}

	var (
		rpcURL    = flag.String("http-rpc", os.Getenv("HTTP_RPC_URL"), "state-chain HTTP RPC URL")
		accountID = flag.String("account", os.Getenv("OWNER_ADDRESS"), "LP account id")
		liquidity = flag.Bool("liquidity", false, "also dump aggregate pool liquidity per tick")
	)
	flag.Parse()

	if *accountID == "" {
		log.Fatalf("[fatal] LP account id required (set OWNER_ADDRESS or --account)")
	}

	rpc, err := cfrpc.NewClient(*rpcURL)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	balances, err := rpc.AssetBalances(ctx, *accountID)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	orders, err := rpc.PoolOrders(ctx, quoter.PoolBaseAsset, quoter.PoolQuoteAsset, *accountID)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	price, err := rpc.PoolPriceV2(ctx, quoter.PoolBaseAsset, quoter.PoolQuoteAsset)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	fmt.Println("=== BALANCES ===")
	for _, asset := range []cfrpc.Asset{quoter.PoolBaseAsset, quoter.PoolQuoteAsset} {
		qty, err := poolmath.HexQuantityToQuantity(balances.Amount(asset), quoter.AssetDecimals)
		if err != nil {
			log.Fatalf("[fatal] %s balance: %v", asset, err)
		}
		fmt.Printf("%-16s %v\n", asset, qty)
	}

	if len(orders.LimitOrders.Asks) > 0 {
		fmt.Println("\n=== ASKS (selling USDT) ===")
		printOrders(orders.LimitOrders.Asks)
	}
	if len(orders.LimitOrders.Bids) > 0 {
		fmt.Println("\n=== BIDS (buying USDT) ===")
		printOrders(orders.LimitOrders.Bids)
	}

	fmt.Println("\n=== PRICES ===")
	buy, err := poolmath.SqrtPriceToPrice(price.Buy, quoter.AssetDecimals, quoter.AssetDecimals)
	if err != nil {
		log.Fatalf("[fatal] buy price: %v", err)
	}
	sell, err := poolmath.SqrtPriceToPrice(price.Sell, quoter.AssetDecimals, quoter.AssetDecimals)
	if err != nil {
		log.Fatalf("[fatal] sell price: %v", err)
	}
	fmt.Printf("%s buy %v | sell %v\n", price.BaseAsset.Asset, buy, sell)

	if *liquidity {
		liq, err := rpc.PoolLiquidity(ctx, quoter.PoolBaseAsset, quoter.PoolQuoteAsset)
		if err != nil {
			log.Fatalf("[fatal] %v", err)
		}
		fmt.Println("\n=== LIQUIDITY ===")
		for _, lvl := range liq.LimitOrders.Asks {
			printLevel("ask", lvl)
		}
		for _, lvl := range liq.LimitOrders.Bids {
			printLevel("bid", lvl)
		}
	}
}

func printOrders(orders []cfrpc.PoolOrder) {
	for _, o := range orders {
		pending, err := poolmath.HexQuantityToQuantity(o.SellAmount, quoter.AssetDecimals)
		if err != nil {
			log.Fatalf("[fatal] order %s: %v", o.ID, err)
		}
		original, err := poolmath.HexQuantityToQuantity(o.OriginalSellAmount, quoter.AssetDecimals)
		if err != nil {
			log.Fatalf("[fatal] order %s: %v", o.ID, err)
		}
		fmt.Printf("id=%s tick=%d price=%v pending=%v original=%v\n",
			o.ID, o.Tick, poolmath.TickToPrice(o.Tick, quoter.AssetDecimals, quoter.AssetDecimals), pending, original)
	}
}

func printLevel(side string, lvl cfrpc.LiquidityLevel) {
	amount, err := poolmath.HexQuantityToQuantity(lvl.Amount, quoter.AssetDecimals)
	if err != nil {
		log.Fatalf("[fatal] liquidity level: %v", err)
	}
	fmt.Printf("%s tick=%d price=%v amount=%v\n",
		side, lvl.Tick, poolmath.TickToPrice(lvl.Tick, quoter.AssetDecimals, quoter.AssetDecimals), amount)
}

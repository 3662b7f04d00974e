package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/dotenv"
	"cf-goquote/internal/journal"
	"cf-goquote/internal/quoter"
	"cf-goquote/internal/signer"
	"cf-goquote/internal/swapfeed"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := dotenv.Load(); err != nil {
		log.Printf("[warn] %v", err)
	}

	parsed, err := parseArgs()
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	runStartedAt := time.Now()
	events, err := journal.Open(parsed.journalPath)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	if events != nil {
		log.Printf("Event journal: %s (JSONL)", parsed.journalPath)
		defer func() {
			logBotEvent(events, botEvent{
				TsMs:     time.Now().UnixMilli(),
				Event:    "shutdown",
				Strategy: parsed.strategy,
				Account:  parsed.accountID,
				UptimeMs: time.Since(runStartedAt).Milliseconds(),
			})
			if err := events.Close(); err != nil {
				log.Printf("[warn] journal close: %v", err)
			}
		}()
	}

	serveMetrics(parsed.metricsAddr)

	log.Printf("Pool: %s / %s", quoter.PoolBaseAsset, quoter.PoolQuoteAsset)
	log.Printf("Strategy: %s (sell=%v buy=%v)", parsed.strategy, parsed.sellPrice, parsed.buyPrice)
	log.Printf("Account: %s", parsed.accountID)

	rpc, err := cfrpc.NewClient(parsed.httpRPCURL)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	lpRPC, err := cfrpc.NewClient(parsed.lpAPIURL)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	sig, err := signer.NewLPAPISigner(lpRPC, parsed.accountID)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	engine, err := quoter.NewEngine(rpc, sig, parsed.quoterConfig())
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Printf("Shutting down...")
		cancel()
	}()

	logBotEvent(events, botEvent{
		TsMs:     time.Now().UnixMilli(),
		Event:    "start",
		Strategy: parsed.strategy,
		Account:  parsed.accountID,
	})

	if parsed.cancelOpenOrders {
		n, err := engine.CancelAllOpenOrders(ctx)
		if err != nil {
			log.Fatalf("[fatal] cancel open orders: %v", err)
		}
		log.Printf("Cancelled %d resting order(s)", n)
		logBotEvent(events, botEvent{TsMs: time.Now().UnixMilli(), Event: "cancel_all", Cancelled: n})
	}

	switch parsed.strategy {
	case quoter.StrategyBasic:
		// One evaluation, then exit. Any failure is fatal here: there is no
		// long-lived loop whose liveness would justify swallowing it.
		orders, err := engine.RunBasic(ctx)
		journalOrders(events, parsed.strategy, orders)
		if err != nil {
			log.Fatalf("[fatal] %v", err)
		}
		log.Printf("Done: %d order(s) placed", len(orders))

	case quoter.StrategyBasicWS:
		runFeed(ctx, parsed, engine, events)
	}
}

// runFeed consumes the scheduled-swaps subscription until shutdown. A bad
// event logs and the loop continues: one malformed swap must not kill a
// long-lived listener.
func runFeed(ctx context.Context, parsed args, engine *quoter.Engine, events *journal.Writer) {
	session := uuid.NewString()
	feed := swapfeed.NewClient(parsed.wsRPCURL, quoter.PoolBaseAsset, quoter.PoolQuoteAsset, swapfeed.Options{})
	batches, errs := feed.Start(ctx)

	log.Printf("Listening for scheduled swaps (session %s)...", session)

	for {
		select {
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			mtxFeedErrors.Inc()
			log.Printf("[warn] %v", err)

		case batch, ok := <-batches:
			if !ok {
				log.Printf("Feed closed")
				return
			}
			mtxSwapBatches.Inc()

			orders, err := engine.HandleScheduledSwaps(ctx, batch)
			mtxCooldownBlock.Set(float64(engine.CooldownBlock()))
			if err != nil {
				mtxOrderFailures.Inc()
				log.Printf("[warn] swap at block %d: %v", batch.BlockNumber, err)
				logBotEvent(events, botEvent{
					TsMs:        time.Now().UnixMilli(),
					Event:       "error",
					Session:     session,
					BlockNumber: batch.BlockNumber,
					Err:         err.Error(),
				})
				continue
			}
			if len(orders) > 0 {
				journalOrders(events, parsed.strategy, orders)
			}
		}
	}
}

func journalOrders(events *journal.Writer, strategy string, orders []quoter.Order) {
	for _, o := range orders {
		log.Printf("Order %d: %s %s @ tick %d", o.ID, o.Side, o.SellAmount, o.Tick)
		mtxOrders.WithLabelValues(string(o.Side)).Inc()
		logBotEvent(events, botEvent{
			TsMs:       time.Now().UnixMilli(),
			Event:      "order",
			Strategy:   strategy,
			OrderID:    o.ID,
			Side:       string(o.Side),
			Tick:       o.Tick,
			SellAmount: o.SellAmount,
		})
	}
}

// Package swapfeed maintains a persistent subscription to the node's
// scheduled-swaps stream and hands decoded batches to the strategy engine
// over a bounded channel, keeping reconnection concerns out of decision code.
package swapfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"cf-goquote/internal/cfrpc"
)

const DefaultURL = "wss://mainnet-rpc.chainflip.io"

// SubscribeMethod doubles as the notification method name on inbound messages.
const SubscribeMethod = "cf_subscribe_scheduled_swaps"

const DefaultReconnectDelay = time.Second

// Swap is one upcoming trade scheduled for execution at a future block.
type Swap struct {
	SwapID          uint64 `json:"swap_id"`
	SwapRequestID   uint64 `json:"swap_request_id"`
	Side            string `json:"side"`
	Amount          string `json:"amount"`
	ExecuteAt       uint64 `json:"execute_at"`
	RemainingChunks uint64 `json:"remaining_chunks"`
}

// ScheduledSwaps is one notification batch.
type ScheduledSwaps struct {
	BlockNumber uint64 `json:"block_number"`
	Swaps       []Swap `json:"swaps"`
}

type subscribeRequest struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  subscribeParams `json:"params"`
}

type subscribeParams struct {
	BaseAsset  cfrpc.Asset `json:"base_asset"`
	QuoteAsset cfrpc.Asset `json:"quote_asset"`
}

type notification struct {
	Method string `json:"method"`
	Params struct {
		Result ScheduledSwaps `json:"result"`
	} `json:"params"`
}

type Options struct {
	// ReconnectDelay is the fixed wait before redialing after an abnormal
	// closure. Defaults to one second.
	ReconnectDelay time.Duration

	OutBuffer int
}

func (o Options) withDefaults() Options {
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.OutBuffer <= 0 {
		o.OutBuffer = 64
	}
	return o
}

// Client owns the subscription lifecycle for one pool.
type Client struct {
	url    string
	base   cfrpc.Asset
	quote  cfrpc.Asset
	opts   Options
	nextID atomic.Int64
}

func NewClient(url string, base, quote cfrpc.Asset, opts Options) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{url: url, base: base, quote: quote, opts: opts.withDefaults()}
}

// Start dials the feed and keeps the subscription alive until ctx is
// cancelled. Batches arrive on the returned channel, which is closed once the
// feed has shut down. Session-level failures are reported on the error
// channel and followed by a reconnect; they never stop the feed on their own.
func (c *Client) Start(ctx context.Context) (<-chan ScheduledSwaps, <-chan error) {
	out := make(chan ScheduledSwaps, c.opts.OutBuffer)
	errs := make(chan error, 16)

	go func() {
		defer close(out)
		defer close(errs)

		for {
			if ctx.Err() != nil {
				return
			}

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				emitNonBlocking(errs, fmt.Errorf("swapfeed dial: %w", err))
				if !sleep(ctx, c.opts.ReconnectDelay) {
					return
				}
				continue
			}

			normalClose, err := c.runSession(ctx, conn, out)
			_ = conn.Close()
			if err != nil && ctx.Err() == nil {
				emitNonBlocking(errs, err)
			}
			if normalClose || ctx.Err() != nil {
				return
			}
			if !sleep(ctx, c.opts.ReconnectDelay) {
				return
			}
		}
	}()

	return out, errs
}

// runSession subscribes and pumps notifications until the connection drops.
// It reports normalClose=true when the server closed with the normal-closure
// code or the context asked for shutdown, in which case no reconnect follows.
func (c *Client) runSession(ctx context.Context, conn *websocket.Conn, out chan<- ScheduledSwaps) (normalClose bool, err error) {
	req := subscribeRequest{
		ID:      c.nextID.Add(1),
		JSONRPC: "2.0",
		Method:  SubscribeMethod,
		Params:  subscribeParams{BaseAsset: c.base, QuoteAsset: c.quote},
	}
	if err := conn.WriteJSON(req); err != nil {
		return false, fmt.Errorf("swapfeed subscribe: %w", err)
	}

	// Shutdown closes the socket with a normal-closure code so the server
	// sees a clean goodbye rather than a dropped connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"), deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true, nil
			}
			return false, fmt.Errorf("swapfeed read: %w", err)
		}

		var n notification
		if err := json.Unmarshal(msg, &n); err != nil {
			log.Printf("[warn] swapfeed: dropping undecodable message: %v", err)
			continue
		}
		if n.Method != SubscribeMethod {
			// Subscription acks and anything else land here.
			log.Printf("[info] swapfeed: ignoring message method=%q", n.Method)
			continue
		}

		select {
		case out <- n.Params.Result:
		case <-ctx.Done():
			return true, nil
		}
	}
}

func emitNonBlocking(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// sleep waits d unless ctx ends first; it reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package main

import (
	"log"

	"cf-goquote/internal/journal"
)

type botEvent struct {
	TsMs  int64  `json:"ts_ms"`
	Event string `json:"event"`

	// Session identifies one feed connection lifetime.
	Session  string `json:"session,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Account  string `json:"account,omitempty"`

	// Order fields.
	OrderID    uint64  `json:"order_id,omitempty"`
	Side       string  `json:"side,omitempty"`
	Tick       int     `json:"tick,omitempty"`
	SellAmount string  `json:"sell_amount,omitempty"`
	Price      float64 `json:"price,omitempty"`

	// Swap event fields.
	BlockNumber uint64 `json:"block_number,omitempty"`
	ExecuteAt   uint64 `json:"execute_at,omitempty"`
	SwapSide    string `json:"swap_side,omitempty"`

	Cancelled int    `json:"cancelled,omitempty"`
	Err       string `json:"err,omitempty"`
	UptimeMs  int64  `json:"uptime_ms,omitempty"`
}

func logBotEvent(w *journal.Writer, ev botEvent) {
	if err := w.Append(ev); err != nil {
		log.Printf("[warn] journal write failed: %v", err)
	}
}

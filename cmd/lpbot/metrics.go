// Prometheus metrics for the quoting bot, served at /metrics when a metrics
// address is configured:
//   - lpbot_swap_batches_total: scheduled-swap batches received
//   - lpbot_orders_total{side}: limit orders accepted on-chain
//   - lpbot_order_failures_total: submissions rejected or failed
//   - lpbot_feed_errors_total: feed session errors (each precedes a reconnect)
//   - lpbot_cooldown_block: current cooldown watermark (gauge)

package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mtxSwapBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lpbot_swap_batches_total",
		Help: "Scheduled-swap notification batches received",
	})

	mtxOrders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lpbot_orders_total",
		Help: "Limit orders accepted on-chain",
	}, []string{"side"})

	mtxOrderFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lpbot_order_failures_total",
		Help: "Order submissions that were rejected or failed",
	})

	mtxFeedErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lpbot_feed_errors_total",
		Help: "Swap feed session errors",
	})

	mtxCooldownBlock = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lpbot_cooldown_block",
		Help: "Cooldown watermark block number",
	})
)

func init() {
	prometheus.MustRegister(mtxSwapBatches, mtxOrders, mtxOrderFailures, mtxFeedErrors, mtxCooldownBlock)
}

// serveMetrics starts the /metrics endpoint; it never blocks the caller.
func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("Metrics: http://%s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[warn] metrics server: %v", err)
		}
	}()
}

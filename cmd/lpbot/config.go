package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"cf-goquote/internal/cfrpc"
	"cf-goquote/internal/quoter"
	"cf-goquote/internal/swapfeed"
)

// fileConfig is the optional YAML config file. Flags and env vars override
// whatever it sets.
type fileConfig struct {
	RPC struct {
		HTTPURL  string `yaml:"http_url"`
		WSURL    string `yaml:"ws_url"`
		LPAPIURL string `yaml:"lp_api_url"`
	} `yaml:"rpc"`
	AccountID string `yaml:"account_id"`
	Strategy  struct {
		Name      string  `yaml:"name"`
		SellPrice float64 `yaml:"sell_price"`
		BuyPrice  float64 `yaml:"buy_price"`
	} `yaml:"strategy"`
	Journal     string `yaml:"journal"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type args struct {
	httpRPCURL string
	wsRPCURL   string
	lpAPIURL   string
	accountID  string

	strategy  string
	sellPrice float64
	buyPrice  float64

	journalPath string
	metricsAddr string

	cancelOpenOrders bool
}

// parseArgs resolves configuration with precedence flag > env > config file >
// default, and fails fast on anything invalid before a single network call.
func parseArgs() (args, error) {
	var (
		configPath  = flag.String("config", strings.TrimSpace(os.Getenv("CONFIG_FILE")), "optional YAML config file")
		httpRPCURL  = flag.String("http-rpc", "", "state-chain HTTP RPC URL (env HTTP_RPC_URL)")
		wsRPCURL    = flag.String("ws-rpc", "", "state-chain WebSocket RPC URL (env WS_RPC_URL)")
		lpAPIURL    = flag.String("lp-api", "", "LP API node URL used for signing submissions (env LP_API_URL)")
		accountID   = flag.String("account", "", "LP account id (env OWNER_ADDRESS)")
		strategy    = flag.String("strategy", "", "strategy name (env STRATEGY)")
		sellPrice   = flag.Float64("sell-price", 0, "target USDT sell price (env STRATEGY_USDT_SELL_PRICE)")
		buyPrice    = flag.Float64("buy-price", 0, "target USDT buy price (env STRATEGY_USDT_BUY_PRICE)")
		journalPath = flag.String("journal", "", "JSONL event journal path (env JOURNAL_FILE)")
		metricsAddr = flag.String("metrics-addr", "", "serve prometheus metrics on this address (env METRICS_ADDR)")
		cancelOpen  = flag.Bool("cancel-open-orders", false, "cancel all resting orders on the pool before quoting")
	)
	flag.Parse()

	var file fileConfig
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			return args{}, fmt.Errorf("config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return args{}, fmt.Errorf("config file %s: %w", *configPath, err)
		}
	}

	a := args{
		httpRPCURL:       pick(*httpRPCURL, os.Getenv("HTTP_RPC_URL"), file.RPC.HTTPURL, cfrpc.DefaultURL),
		wsRPCURL:         pick(*wsRPCURL, os.Getenv("WS_RPC_URL"), file.RPC.WSURL, swapfeed.DefaultURL),
		lpAPIURL:         pick(*lpAPIURL, os.Getenv("LP_API_URL"), file.RPC.LPAPIURL, ""),
		accountID:        pick(*accountID, os.Getenv("OWNER_ADDRESS"), file.AccountID, ""),
		strategy:         pick(*strategy, os.Getenv("STRATEGY"), file.Strategy.Name, quoter.StrategyBasic),
		journalPath:      pick(*journalPath, os.Getenv("JOURNAL_FILE"), file.Journal, ""),
		metricsAddr:      pick(*metricsAddr, os.Getenv("METRICS_ADDR"), file.MetricsAddr, ""),
		cancelOpenOrders: *cancelOpen,
	}

	var err error
	a.sellPrice, err = pickFloat(*sellPrice, "STRATEGY_USDT_SELL_PRICE", file.Strategy.SellPrice)
	if err != nil {
		return args{}, err
	}
	a.buyPrice, err = pickFloat(*buyPrice, "STRATEGY_USDT_BUY_PRICE", file.Strategy.BuyPrice)
	if err != nil {
		return args{}, err
	}

	if a.accountID == "" {
		return args{}, fmt.Errorf("LP account id required (set OWNER_ADDRESS or --account)")
	}
	if a.lpAPIURL == "" {
		return args{}, fmt.Errorf("LP API URL required for signing (set LP_API_URL or --lp-api)")
	}

	cfg := quoter.Config{Strategy: a.strategy, SellPrice: a.sellPrice, BuyPrice: a.buyPrice}
	if err := cfg.Validate(); err != nil {
		return args{}, err
	}
	return a, nil
}

func (a args) quoterConfig() quoter.Config {
	return quoter.Config{Strategy: a.strategy, SellPrice: a.sellPrice, BuyPrice: a.buyPrice}
}

func pick(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func pickFloat(flagValue float64, envName string, fileValue float64) (float64, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	if raw := strings.TrimSpace(os.Getenv(envName)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envName, err)
		}
		return v, nil
	}
	return fileValue, nil
}

package arbbot

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"flasharb/internal/bpsmath"
	"flasharb/internal/ethutil"
)

type args struct {
	rpcURL  string
	aggrURL string
	chainID int64

	executor      common.Address
	pool          common.Address
	loanAsset     common.Address
	destAsset     common.Address
	transferProxy common.Address

	loanSizes          []*big.Int
	profitThresholdUSD decimal.Decimal
	slippageBps        uint64
	maxImpactBps       uint64
	swapFractionBps    uint64
	premiumBps         uint64

	interval       time.Duration
	attemptTimeout time.Duration
	buildDeadline  time.Duration

	enableTrading  bool
	privateKeyHex  string
	outFile        string
	checkpointFile string
}

func parseArgs() (args, error) {
	var rpcURLFlag string
	var aggrURLFlag string
	var chainIDFlag int64

	var executorFlag string
	var poolFlag string
	var loanAssetFlag string
	var destAssetFlag string
	var transferProxyFlag string

	var loanSizesFlag string
	var thresholdFlag string
	var slippageBpsFlag uint64
	var maxImpactBpsFlag uint64
	var swapFractionBpsFlag uint64
	var premiumBpsFlag uint64

	var intervalFlag time.Duration
	var attemptTimeoutFlag time.Duration
	var buildDeadlineFlag time.Duration

	var enableTradingFlag bool
	var outFlag string
	var checkpointFlag string

	enableTradingDefault := false
	if env := strings.TrimSpace(os.Getenv("ENABLE_TRADING")); env != "" {
		v, err := strconv.ParseBool(env)
		if err != nil {
			return args{}, fmt.Errorf("invalid ENABLE_TRADING %q: %w", env, err)
		}
		enableTradingDefault = v
	}

	intervalDefault := 15 * time.Second
	if env := strings.TrimSpace(os.Getenv("POLL_INTERVAL")); env != "" {
		v, err := time.ParseDuration(env)
		if err != nil {
			return args{}, fmt.Errorf("invalid POLL_INTERVAL %q: %w", env, err)
		}
		intervalDefault = v
	}

	attemptTimeoutDefault := 2 * time.Minute
	if env := strings.TrimSpace(os.Getenv("ATTEMPT_TIMEOUT")); env != "" {
		v, err := time.ParseDuration(env)
		if err != nil {
			return args{}, fmt.Errorf("invalid ATTEMPT_TIMEOUT %q: %w", env, err)
		}
		attemptTimeoutDefault = v
	}

	chainIDDefault := int64(137)
	if env := strings.TrimSpace(os.Getenv("CHAIN_ID")); env != "" {
		v, err := strconv.ParseInt(env, 10, 64)
		if err != nil {
			return args{}, fmt.Errorf("invalid CHAIN_ID %q: %w", env, err)
		}
		chainIDDefault = v
	}

	flag.StringVar(&rpcURLFlag, "rpc-url", os.Getenv("RPC_URL"), "Chain RPC URL (env RPC_URL)")
	flag.StringVar(&aggrURLFlag, "aggregator-url", os.Getenv("AGGREGATOR_URL"), "Swap aggregator base URL (env AGGREGATOR_URL)")
	flag.Int64Var(&chainIDFlag, "chain-id", chainIDDefault, "Chain ID the bot must be connected to (env CHAIN_ID)")
	flag.StringVar(&executorFlag, "executor", os.Getenv("EXECUTOR_ADDRESS"), "Deployed flash-loan executor address (env EXECUTOR_ADDRESS)")
	flag.StringVar(&poolFlag, "pool", os.Getenv("LENDING_POOL_ADDRESS"), "Lending pool address (env LENDING_POOL_ADDRESS)")
	flag.StringVar(&loanAssetFlag, "loan-asset", os.Getenv("LOAN_ASSET"), "Borrowed asset address (env LOAN_ASSET)")
	flag.StringVar(&destAssetFlag, "dest-asset", os.Getenv("DEST_ASSET"), "Swap destination asset address (env DEST_ASSET)")
	flag.StringVar(&transferProxyFlag, "transfer-proxy", os.Getenv("TRANSFER_PROXY"), "Aggregator token transfer proxy address (env TRANSFER_PROXY)")
	flag.StringVar(&loanSizesFlag, "loan-sizes", os.Getenv("LOAN_SIZES"), "Comma-separated loan sizes in base units, tried in order each cycle (env LOAN_SIZES)")
	flag.StringVar(&thresholdFlag, "profit-threshold-usd", firstNonEmpty(os.Getenv("PROFIT_THRESHOLD_USD"), "3.00"), "Minimum estimated USD profit to attempt settlement (env PROFIT_THRESHOLD_USD)")
	flag.Uint64Var(&slippageBpsFlag, "slippage-bps", envUintDefault("SLIPPAGE_BPS", 50), "Slippage tolerance in basis points (env SLIPPAGE_BPS)")
	flag.Uint64Var(&maxImpactBpsFlag, "max-impact-bps", envUintDefault("MAX_IMPACT_BPS", 1500), "Maximum accepted price impact in basis points (env MAX_IMPACT_BPS)")
	flag.Uint64Var(&swapFractionBpsFlag, "swap-fraction-bps", envUintDefault("SWAP_FRACTION_BPS", 5000), "Share of the principal to swap, in basis points (env SWAP_FRACTION_BPS)")
	flag.Uint64Var(&premiumBpsFlag, "premium-bps", envUintDefault("PREMIUM_BPS", 9), "Lending pool premium in basis points, used for dry-run settlement (env PREMIUM_BPS)")
	flag.DurationVar(&intervalFlag, "interval", intervalDefault, "Sleep between full cycles (env POLL_INTERVAL)")
	flag.DurationVar(&attemptTimeoutFlag, "attempt-timeout", attemptTimeoutDefault, "Per-attempt deadline covering build, submit and confirmation wait (env ATTEMPT_TIMEOUT)")
	flag.DurationVar(&buildDeadlineFlag, "build-deadline", 2*time.Minute, "Swap deadline passed to the aggregator build call")
	flag.BoolVar(&enableTradingFlag, "enable-trading", enableTradingDefault, "Submit real loan-initiation transactions (env ENABLE_TRADING; default dry-run)")
	flag.StringVar(&outFlag, "out", firstNonEmpty(os.Getenv("ARB_LOG"), "logs/flasharb.jsonl"), "JSONL attempt log path, empty to disable (env ARB_LOG)")
	flag.StringVar(&checkpointFlag, "checkpoint", os.Getenv("CHECKPOINT_FILE"), "Run checkpoint path, empty to disable (env CHECKPOINT_FILE)")
	flag.Parse()

	parsed := args{
		rpcURL:          strings.TrimSpace(rpcURLFlag),
		aggrURL:         strings.TrimSpace(aggrURLFlag),
		chainID:         chainIDFlag,
		slippageBps:     slippageBpsFlag,
		maxImpactBps:    maxImpactBpsFlag,
		swapFractionBps: swapFractionBpsFlag,
		premiumBps:      premiumBpsFlag,
		interval:        intervalFlag,
		attemptTimeout:  attemptTimeoutFlag,
		buildDeadline:   buildDeadlineFlag,
		enableTrading:   enableTradingFlag,
		privateKeyHex:   strings.TrimSpace(firstNonEmpty(os.Getenv("PRIVATE_KEY"), os.Getenv("BOT_PRIVATE_KEY"))),
		outFile:         strings.TrimSpace(outFlag),
		checkpointFile:  strings.TrimSpace(checkpointFlag),
	}

	if parsed.rpcURL == "" {
		return args{}, fmt.Errorf("RPC_URL required (set RPC_URL in .env or pass --rpc-url)")
	}
	if parsed.aggrURL == "" {
		return args{}, fmt.Errorf("AGGREGATOR_URL required")
	}
	if parsed.chainID <= 0 {
		return args{}, fmt.Errorf("chain id must be positive, got %d", parsed.chainID)
	}

	var err error
	if parsed.executor, err = ethutil.ParseAddress(executorFlag); err != nil {
		return args{}, fmt.Errorf("executor: %w", err)
	}
	if parsed.pool, err = ethutil.ParseAddress(poolFlag); err != nil {
		return args{}, fmt.Errorf("lending pool: %w", err)
	}
	if parsed.loanAsset, err = ethutil.ParseAddress(loanAssetFlag); err != nil {
		return args{}, fmt.Errorf("loan asset: %w", err)
	}
	if parsed.destAsset, err = ethutil.ParseAddress(destAssetFlag); err != nil {
		return args{}, fmt.Errorf("dest asset: %w", err)
	}
	if parsed.transferProxy, err = ethutil.ParseAddress(transferProxyFlag); err != nil {
		return args{}, fmt.Errorf("transfer proxy: %w", err)
	}
	if parsed.loanAsset == parsed.destAsset {
		return args{}, fmt.Errorf("loan asset and dest asset must differ")
	}

	parsed.loanSizes, err = ethutil.ParseAmountList(loanSizesFlag)
	if err != nil {
		return args{}, fmt.Errorf("loan sizes: %w", err)
	}
	if len(parsed.loanSizes) == 0 {
		return args{}, fmt.Errorf("LOAN_SIZES required (comma-separated base-unit amounts)")
	}

	parsed.profitThresholdUSD, err = decimal.NewFromString(strings.TrimSpace(thresholdFlag))
	if err != nil {
		return args{}, fmt.Errorf("invalid profit threshold %q: %w", thresholdFlag, err)
	}

	if parsed.slippageBps > bpsmath.Scale {
		return args{}, fmt.Errorf("slippage %d bps exceeds %d", parsed.slippageBps, bpsmath.Scale)
	}
	if parsed.swapFractionBps == 0 || parsed.swapFractionBps > bpsmath.Scale {
		return args{}, fmt.Errorf("swap fraction %d bps out of (0,%d]", parsed.swapFractionBps, bpsmath.Scale)
	}
	if parsed.interval <= 0 {
		return args{}, fmt.Errorf("interval must be positive")
	}
	if parsed.attemptTimeout <= 0 {
		return args{}, fmt.Errorf("attempt timeout must be positive")
	}
	if parsed.enableTrading && parsed.privateKeyHex == "" {
		return args{}, fmt.Errorf("PRIVATE_KEY required when trading is enabled")
	}

	return parsed, nil
}

func envUintDefault(name string, def uint64) uint64 {
	env := strings.TrimSpace(os.Getenv(name))
	if env == "" {
		return def
	}
	v, err := strconv.ParseUint(env, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

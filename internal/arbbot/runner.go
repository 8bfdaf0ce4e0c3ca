package arbbot

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"flasharb/internal/aggr"
	"flasharb/internal/bpsmath"
	"flasharb/internal/dotenv"
	"flasharb/internal/executor"
	"flasharb/internal/jsonl"
	"flasharb/internal/state"
	"flasharb/internal/swapbuild"
)

// Run is the bot entry point: startup verification (fatal on failure), then
// the monitoring loop until a termination signal. One cycle walks every
// configured loan size sequentially; any fault inside a cycle is logged and
// the loop moves on.
func Run() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := dotenv.Load(); err != nil {
		log.Printf("[warn] %v", err)
	}

	parsed, err := parseArgs()
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	pk, ephemeral, err := parseOrGeneratePrivateKey(parsed.privateKeyHex)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	if ephemeral && !parsed.enableTrading {
		log.Printf("[info] no private key provided; using ephemeral key for dry-run")
	}
	signer := crypto.PubkeyToAddress(pk.PublicKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-ctx.Done():
		case <-sigCh:
			log.Printf("Shutting down…")
			cancel()
		}
	}()

	// Startup verification: faults here are fatal, everything after is
	// recovered per cycle.
	dialCtx, dialCancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := ethclient.DialContext(dialCtx, parsed.rpcURL)
	dialCancel()
	if err != nil {
		log.Fatalf("[fatal] dial rpc: %v", err)
	}
	defer client.Close()

	idCtx, idCancel := context.WithTimeout(ctx, 12*time.Second)
	chainID, err := client.ChainID(idCtx)
	idCancel()
	if err != nil {
		log.Fatalf("[fatal] chain id: %v", err)
	}
	if chainID.Int64() != parsed.chainID {
		log.Fatalf("[fatal] connected to chain %s, configured for %d", chainID, parsed.chainID)
	}

	exec, err := executor.New(parsed.executor, client)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	profCtx, profCancel := context.WithTimeout(ctx, 12*time.Second)
	startTotal, err := exec.TotalProfit(profCtx)
	profCancel()
	if err != nil {
		log.Fatalf("[fatal] executor unreachable: %v", err)
	}

	aggrClient, err := aggr.NewClient(parsed.aggrURL, parsed.chainID)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	builder, err := swapbuild.NewBuilder(aggrClient, parsed.slippageBps, parsed.buildDeadline)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	ckpt, haveCkpt, err := state.LoadCheckpoint(parsed.checkpointFile)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	if haveCkpt && !ckpt.Compatible(parsed.chainID, parsed.executor.Hex()) {
		log.Fatalf("[fatal] checkpoint %s belongs to chain=%d executor=%s", parsed.checkpointFile, ckpt.ChainID, ckpt.ExecutorAddress)
	}
	if !haveCkpt {
		ckpt = state.Checkpoint{ChainID: parsed.chainID, ExecutorAddress: parsed.executor.Hex()}
	}

	runStartedAt := time.Now()
	attemptLog := jsonl.New(parsed.outFile)
	if attemptLog != nil {
		log.Printf("Attempt log: %s (JSONL)", parsed.outFile)
		defer func() {
			if err := attemptLog.Close(); err != nil {
				log.Printf("[warn] attempt log close: %v", err)
			}
		}()
	}

	log.Printf("Flash-loan arbitrage bot")
	log.Printf("Chain: %d", parsed.chainID)
	log.Printf("Executor: %s", parsed.executor.Hex())
	log.Printf("Pool: %s", parsed.pool.Hex())
	log.Printf("Pair: %s -> %s", parsed.loanAsset.Hex(), parsed.destAsset.Hex())
	log.Printf("Loan sizes: %s", formatSizes(parsed.loanSizes))
	log.Printf("Threshold: $%s  slippage=%dbps  swap=%dbps  impact<=%dbps", parsed.profitThresholdUSD, parsed.slippageBps, parsed.swapFractionBps, parsed.maxImpactBps)
	log.Printf("Interval: %s  attempt timeout: %s", parsed.interval, parsed.attemptTimeout)
	log.Printf("Signer: %s", signer.Hex())
	log.Printf("Ledger at start: %s", startTotal)
	log.Printf("Dry-run: %v", !parsed.enableTrading)

	var sub submitter
	if parsed.enableTrading {
		sub = newLiveSubmitter(client, exec, pk, big.NewInt(parsed.chainID))
	} else {
		sub = &drySubmitter{
			caller:          client,
			executor:        parsed.executor,
			pool:            parsed.pool,
			loanAsset:       parsed.loanAsset,
			destAsset:       parsed.destAsset,
			transferProxy:   parsed.transferProxy,
			swapFractionBps: parsed.swapFractionBps,
			premiumBps:      parsed.premiumBps,
		}
	}

	deps := attemptDeps{
		quoter:          aggrClient,
		builder:         builder,
		executor:        parsed.executor,
		loanAsset:       parsed.loanAsset,
		destAsset:       parsed.destAsset,
		swapFractionBps: parsed.swapFractionBps,
		maxImpactBps:    parsed.maxImpactBps,
		thresholdUSD:    parsed.profitThresholdUSD,
	}

	logBotEvent(attemptLog, botLogEvent{
		TsMs:         time.Now().UnixMilli(),
		Event:        "start",
		Mode:         botMode(parsed.enableTrading),
		ThresholdUSD: parsed.profitThresholdUSD.String(),
		LedgerTotal:  startTotal.String(),
	})

	log.Printf("Listening…")
	for {
		ckpt.CyclesRun++
		runCycle(ctx, parsed, deps, sub, attemptLog, &ckpt, runStartedAt)
		if err := state.SaveCheckpoint(parsed.checkpointFile, ckpt); err != nil {
			log.Printf("[warn] checkpoint save: %v", err)
		}

		select {
		case <-ctx.Done():
			logBotEvent(attemptLog, botLogEvent{
				TsMs:     time.Now().UnixMilli(),
				Event:    "summary",
				Mode:     botMode(parsed.enableTrading),
				Cycle:    ckpt.CyclesRun,
				UptimeMs: time.Since(runStartedAt).Milliseconds(),
			})
			return
		case <-time.After(parsed.interval):
		}
	}
}

func runCycle(ctx context.Context, parsed args, deps attemptDeps, sub submitter, attemptLog *jsonl.Writer, ckpt *state.Checkpoint, runStartedAt time.Time) {
	for _, size := range parsed.loanSizes {
		if ctx.Err() != nil {
			return
		}

		attemptCtx, cancel := context.WithTimeout(ctx, parsed.attemptTimeout)
		outcome, err := runAttempt(attemptCtx, deps, sub, size)
		cancel()

		swapSize := bpsmath.ApplyBpsBig(size, parsed.swapFractionBps)
		ev := botLogEvent{
			TsMs:     time.Now().UnixMilli(),
			Mode:     botMode(parsed.enableTrading),
			LoanSize: size.String(),
			SwapSize: swapSize.String(),
			Cycle:    ckpt.CyclesRun,
			UptimeMs: time.Since(runStartedAt).Milliseconds(),
		}
		if outcome.Quote.DestAmount != nil {
			ev.SrcUSD = outcome.Quote.SrcUSD
			ev.DestUSD = outcome.Quote.DestUSD
			ev.ProfitUSD = outcome.ProfitUSD.String()
			ev.ThresholdUSD = parsed.profitThresholdUSD.String()
		}

		switch {
		case err != nil:
			// Per-cycle fault isolation: log and move to the next size.
			ev.Event = "error"
			ev.Err = err.Error()
			if outcome.Params.MinOut != nil {
				ev.Router = outcome.Params.Router.Hex()
				ev.MinOut = outcome.Params.MinOut.String()
			}
			log.Printf("[warn] size=%s %v", size, err)
		case outcome.Skipped:
			ev.Event = "skip"
			log.Printf("[info] size=%s profit=$%s below threshold $%s; skipping", size, outcome.ProfitUSD, parsed.profitThresholdUSD)
		default:
			ev.Event = "settle"
			ev.Router = outcome.Params.Router.Hex()
			ev.MinOut = outcome.Params.MinOut.String()
			ckpt.AttemptsSent++
			if outcome.Result.TxHash != (common.Hash{}) {
				ev.TxHash = outcome.Result.TxHash.Hex()
			}
			if outcome.Result.Received != nil {
				ev.Received = outcome.Result.Received.String()
			}
			if outcome.Result.LedgerTotal != nil {
				ev.LedgerTotal = outcome.Result.LedgerTotal.String()
				ckpt.LastLedgerTotal = outcome.Result.LedgerTotal.String()
			}
			if ev.TxHash != "" {
				log.Printf("[info] size=%s settled profit=$%s received=%s tx=%s", size, outcome.ProfitUSD, ev.Received, ev.TxHash)
			} else {
				log.Printf("[info] size=%s settled profit=$%s received=%s (dry-run)", size, outcome.ProfitUSD, ev.Received)
			}
		}
		ckpt.UpdatedAtMs = time.Now().UnixMilli()
		logBotEvent(attemptLog, ev)
	}
}

func parseOrGeneratePrivateKey(hexKey string) (*ecdsa.PrivateKey, bool, error) {
	hexKey = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if hexKey == "" {
		pk, err := crypto.GenerateKey()
		if err != nil {
			return nil, false, fmt.Errorf("generate ephemeral key: %w", err)
		}
		return pk, true, nil
	}
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, false, fmt.Errorf("invalid private key: %w", err)
	}
	return pk, false, nil
}

func formatSizes(sizes []*big.Int) string {
	parts := make([]string, 0, len(sizes))
	for _, s := range sizes {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ", ")
}

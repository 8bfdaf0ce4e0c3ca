package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"flasharb/internal/dotenv"
	"flasharb/internal/erc20"
	"flasharb/internal/ethutil"
)

// Prints the executor's loan-asset reserve and, when a router/proxy address
// is given, the standing allowances it has granted.
func main() {
	log.SetFlags(0)

	if err := dotenv.Load(); err != nil {
		log.Printf("[warn] %v", err)
	}

	var rpcFlag, executorFlag, assetFlag, spenderFlag string
	flag.StringVar(&rpcFlag, "rpc-url", os.Getenv("RPC_URL"), "Chain RPC URL (env RPC_URL)")
	flag.StringVar(&executorFlag, "executor", os.Getenv("EXECUTOR_ADDRESS"), "Executor address (env EXECUTOR_ADDRESS)")
	flag.StringVar(&assetFlag, "asset", os.Getenv("LOAN_ASSET"), "Token to inspect (env LOAN_ASSET)")
	flag.StringVar(&spenderFlag, "spender", os.Getenv("TRANSFER_PROXY"), "Optional spender to print the executor's allowance for (env TRANSFER_PROXY)")
	flag.Parse()

	if rpcFlag == "" {
		log.Fatalf("[fatal] RPC_URL required")
	}
	executor, err := ethutil.ParseAddress(executorFlag)
	if err != nil {
		log.Fatalf("[fatal] executor: %v", err)
	}
	asset, err := ethutil.ParseAddress(assetFlag)
	if err != nil {
		log.Fatalf("[fatal] asset: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcFlag)
	if err != nil {
		log.Fatalf("[fatal] dial rpc: %v", err)
	}
	defer client.Close()

	reserve, err := erc20.BalanceOf(ctx, client, asset, executor)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	fmt.Printf("executor: %s\n", executor.Hex())
	fmt.Printf("asset: %s\n", asset.Hex())
	fmt.Printf("reserve: %s\n", reserve)

	if spenderFlag == "" {
		return
	}
	spender, err := ethutil.ParseAddress(spenderFlag)
	if err != nil {
		log.Fatalf("[fatal] spender: %v", err)
	}
	allowance, err := erc20.Allowance(ctx, client, asset, executor, spender)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	note := ""
	if allowance.Cmp(erc20.MaxUint256()) == 0 {
		note = " (unlimited)"
	}
	fmt.Printf("spender: %s\n", spender.Hex())
	fmt.Printf("allowance: %s%s\n", allowance, note)
}

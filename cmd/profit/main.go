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
	"flasharb/internal/ethutil"
	"flasharb/internal/executor"
)

// Prints the executor's on-chain profit ledger total.
func main() {
	log.SetFlags(0)

	if err := dotenv.Load(); err != nil {
		log.Printf("[warn] %v", err)
	}

	var rpcFlag, executorFlag string
	flag.StringVar(&rpcFlag, "rpc-url", os.Getenv("RPC_URL"), "Chain RPC URL (env RPC_URL)")
	flag.StringVar(&executorFlag, "executor", os.Getenv("EXECUTOR_ADDRESS"), "Executor address (env EXECUTOR_ADDRESS)")
	flag.Parse()

	if rpcFlag == "" {
		log.Fatalf("[fatal] RPC_URL required")
	}
	addr, err := ethutil.ParseAddress(executorFlag)
	if err != nil {
		log.Fatalf("[fatal] executor: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcFlag)
	if err != nil {
		log.Fatalf("[fatal] dial rpc: %v", err)
	}
	defer client.Close()

	exec, err := executor.New(addr, client)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	total, err := exec.TotalProfit(ctx)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	fmt.Printf("executor: %s\n", addr.Hex())
	fmt.Printf("total_profit: %s\n", total)
}

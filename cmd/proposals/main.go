package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/voting"
	"govnode/pkg/chain"
	"govnode/pkg/config"
)

// One-shot utility: list the proposals currently eligible for voting and
// exit. Useful for checking what the next scheduled round would see.
func main() {
	window := flag.Int("window", 15, "number of proposals to inspect, counted back from the latest")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(1)
	}

	wallets, err := chain.NewWalletManager(cfg.PrivateKeys)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load wallets:", err)
		os.Exit(1)
	}
	client, err := chain.NewClient(cfg.RPCURL, cfg.DAOContractAddress, wallets)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create chain client:", err)
		os.Exit(1)
	}

	reader := voting.NewProposalReader(client, *window)
	proposals := reader.ListActive(context.Background())
	if len(proposals) == 0 {
		fmt.Println("No active proposals")
		return
	}

	now := time.Now()
	fmt.Printf("%-6s %-10s %-12s %-14s %s\n", "ID", "TYPE", "AMOUNT", "TIME LEFT", "DESCRIPTION")
	for _, p := range proposals {
		desc := p.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Printf("%-6d %-10s %-12s %-14s %s\n",
			p.ID, p.ProposalType, p.Amount, p.TimeLeft(now).Round(time.Minute), desc)
	}
}

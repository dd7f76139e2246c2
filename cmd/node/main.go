package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"

	"govnode/internal/handlers"
	"govnode/internal/routes"
	"govnode/internal/voting"
	"govnode/pkg/chain"
	"govnode/pkg/config"
	"govnode/pkg/market"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Configuration error: ", err)
	}

	wallets, err := chain.NewWalletManager(cfg.PrivateKeys)
	if err != nil {
		logrus.Fatal("Failed to load wallets: ", err)
	}

	client, err := chain.NewClient(cfg.RPCURL, cfg.DAOContractAddress, wallets)
	if err != nil {
		logrus.Fatal("Failed to create chain client: ", err)
	}
	if !client.ValidateConnectivity(context.Background()) {
		logrus.Warn("Chain connectivity degraded at startup, continuing anyway")
	}

	// Market data is optional: without it strategies run with a neutral view.
	var feed *market.Feed
	if cfg.MarketWSURL != "" {
		feed = market.NewFeed(cfg.MarketWSURL)
		if err := feed.Start(); err != nil {
			logrus.Warnf("Market feed unavailable: %v", err)
			feed = nil
		} else {
			defer feed.Stop()
		}
	}
	var marketProvider voting.MarketProvider
	if cfg.MarketAPIURL != "" {
		marketProvider = market.NewClient(cfg.MarketAPIURL, feed)
	}

	// Eventing is optional too.
	var publisher voting.EventPublisher
	if cfg.RabbitMQHost != "" {
		if err := config.InitRabbitMQ(cfg); err != nil {
			logrus.Warnf("RabbitMQ unavailable, round summaries will not be published: %v", err)
		} else {
			defer config.RabbitMQ.Close()
			p, err := config.NewPublisher()
			if err != nil {
				logrus.Warnf("Failed to create publisher: %v", err)
			} else {
				defer p.Close()
				publisher = p
			}
		}
	} else {
		logrus.Info("RabbitMQ not configured, skipping event publishing")
	}

	strategy, err := voting.NewStrategy(cfg.Strategy)
	if err != nil {
		logrus.Fatal("Configuration error: ", err)
	}

	reader := voting.NewProposalReader(client, cfg.WindowSize)
	executor := voting.NewVoteExecutor(client)
	round := voting.NewVotingRound(client, reader, strategy, executor, marketProvider, voting.RoundConfig{
		MaxProposals: cfg.MaxProposals,
		Budget:       cfg.RoundBudget,
	})
	node := voting.NewNode(round, strategy.Name(), publisher)

	logrus.WithFields(logrus.Fields{
		"strategy":    strategy.Name(),
		"wallets":     wallets.Count(),
		"voting_cron": cfg.VotingCron,
	}).Info("Governance node initialized")

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.VotingCron, func() {
		node.RunRound(context.Background())
	})
	if err != nil {
		logrus.Fatal("Invalid VOTING_CRON expression: ", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	h := &handlers.NodeHandler{
		Node:      node,
		Reader:    reader,
		Chain:     client,
		RPCURLs:   append([]string{cfg.RPCURL}, cfg.ExtraRPCURLs...),
		StartedAt: time.Now(),
	}
	r := routes.SetupRouter(h)

	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatal("Failed to start server: ", err)
	}
}

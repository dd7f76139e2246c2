package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every environment-derived setting. It is built once at
// process start and passed into component constructors; nothing reads the
// environment after Load returns.
type Config struct {
	RPCURL             string
	ExtraRPCURLs       []string // additional endpoints for health probing
	DAOContractAddress string

	WalletCount int
	PrivateKeys []string // index i holds AI_NODE_<i+1>_PRIVATE_KEY

	Strategy     string
	VotingCron   string
	WindowSize   int
	MaxProposals int
	RoundBudget  time.Duration

	MarketAPIURL string
	MarketWSURL  string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	Port string
}

const defaultWalletCount = 5

// Load reads .env (if present) and the process environment. A missing RPC
// URL, contract address or wallet key is a fatal configuration error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL:             os.Getenv("ETHEREUM_RPC_URL"),
		ExtraRPCURLs:       getenvList("BACKUP_RPC_URLS"),
		DAOContractAddress: os.Getenv("ASSET_DAO_CONTRACT_ADDRESS"),
		WalletCount:        getenvInt("WALLET_COUNT", defaultWalletCount),
		Strategy:           getenv("VOTING_STRATEGY", "conservative"),
		VotingCron:         getenv("VOTING_CRON", "@every 5m"),
		WindowSize:         getenvInt("PROPOSAL_WINDOW_SIZE", 15),
		MaxProposals:       getenvInt("MAX_PROPOSALS_PER_ROUND", 10),
		RoundBudget:        getenvDuration("ROUND_BUDGET", 60*time.Second),
		MarketAPIURL:       os.Getenv("MARKET_API_URL"),
		MarketWSURL:        os.Getenv("MARKET_WS_URL"),
		RabbitMQHost:       os.Getenv("RABBITMQ_HOST"),
		RabbitMQPort:       getenv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:       os.Getenv("RABBITMQ_USER"),
		RabbitMQPassword:   os.Getenv("RABBITMQ_PASSWORD"),
		Port:               getenv("PORT", "8080"),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ETHEREUM_RPC_URL is required")
	}
	if cfg.DAOContractAddress == "" {
		return nil, fmt.Errorf("ASSET_DAO_CONTRACT_ADDRESS is required")
	}
	if cfg.WalletCount < 1 {
		return nil, fmt.Errorf("WALLET_COUNT must be at least 1")
	}

	for i := 1; i <= cfg.WalletCount; i++ {
		key := os.Getenv(fmt.Sprintf("AI_NODE_%d_PRIVATE_KEY", i))
		if key == "" {
			return nil, fmt.Errorf("AI_NODE_%d_PRIVATE_KEY is required (wallet count %d)", i, cfg.WalletCount)
		}
		cfg.PrivateKeys = append(cfg.PrivateKeys, key)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// getenvList splits a comma-separated variable, dropping empty entries.
func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

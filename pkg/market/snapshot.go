package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/models"
)

// Thresholds for mapping 24h price change to a recommendation.
const (
	buyThreshold  = 3.0  // percent
	sellThreshold = -3.0 // percent
)

// Client fetches market conditions from the configured market data API and
// assembles the per-round snapshot. All failures degrade to a nil snapshot;
// strategies treat that as neutral.
type Client struct {
	baseURL    string
	feed       *Feed // optional fresher data from the websocket stream
	weights    models.MarketWeights
	httpClient *http.Client
}

// NewClient creates a market data client. feed may be nil.
func NewClient(baseURL string, feed *Feed) *Client {
	return &Client{
		baseURL: baseURL,
		feed:    feed,
		weights: models.MarketWeights{Trending: 0.4, Volatility: 0.4, Volume: 0.2},
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				IdleConnTimeout:       10 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
	}
}

// tickerStats is one row of the market overview response.
type tickerStats struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Change24h   float64 `json:"change_24h"` // percent
	Volatility  float64 `json:"volatility"` // [0,1]
	VolumeRatio float64 `json:"volume_ratio"`
}

type overviewResponse struct {
	Tickers []tickerStats `json:"tickers"`
}

// Snapshot builds a MarketSnapshot from the overview endpoint, overlaying
// fresher websocket data where available. Returns nil when no market view
// can be assembled.
func (c *Client) Snapshot(ctx context.Context) *models.MarketSnapshot {
	if c == nil || c.baseURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/market/overview", nil)
	if err != nil {
		logrus.Warnf("Market snapshot request build failed: %v", err)
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.Warnf("Market snapshot unavailable: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logrus.Warnf("Market snapshot unavailable: status code %d", resp.StatusCode)
		return nil
	}

	var overview overviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		logrus.Warnf("Market snapshot decode failed: %v", err)
		return nil
	}
	if len(overview.Tickers) == 0 {
		return nil
	}

	return c.assemble(overview.Tickers)
}

func (c *Client) assemble(tickers []tickerStats) *models.MarketSnapshot {
	snapshot := &models.MarketSnapshot{
		Timestamp:       time.Now(),
		Recommendations: make(map[string]string, len(tickers)),
	}

	var sumChange, sumVolatility, sumVolume float64
	for _, t := range tickers {
		change := t.Change24h
		if c.feed != nil {
			if update, ok := c.feed.Latest(t.Symbol); ok {
				change = update.Change24h
			}
		}
		snapshot.Recommendations[t.Symbol] = recommend(change)
		sumChange += change
		sumVolatility += t.Volatility
		sumVolume += t.VolumeRatio
	}

	n := float64(len(tickers))
	snapshot.Trending = sumChange / n
	snapshot.Volatility = clamp01(sumVolatility / n)
	snapshot.Volume = clamp01(sumVolume / n)

	// Risk rises with volatility and strong directional moves, falls with
	// healthy volume.
	trendRisk := clamp01(math.Abs(snapshot.Trending) / 10)
	snapshot.RiskScore = clamp01(
		c.weights.Trending*trendRisk +
			c.weights.Volatility*snapshot.Volatility +
			c.weights.Volume*(1-snapshot.Volume))

	logrus.WithFields(logrus.Fields{
		"risk_score": fmt.Sprintf("%.2f", snapshot.RiskScore),
		"trending":   fmt.Sprintf("%.2f", snapshot.Trending),
		"volatility": fmt.Sprintf("%.2f", snapshot.Volatility),
		"tickers":    len(tickers),
	}).Info("Market snapshot assembled")
	return snapshot
}

// recommend maps a 24h change percentage to buy/sell/hold.
func recommend(change24h float64) string {
	switch {
	case change24h >= buyThreshold:
		return models.ActionBuy
	case change24h <= sellThreshold:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

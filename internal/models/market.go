package models

import "time"

// Market actions recommended per ticker by the market data layer.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// MarketWeights weighs the market condition components into one risk score.
// Conceptually sums to 1.0; not enforced.
type MarketWeights struct {
	Trending   float64 `json:"trending"`
	Volatility float64 `json:"volatility"`
	Volume     float64 `json:"volume"`
}

// MarketSnapshot is an optional, best-effort view of current market
// conditions. A nil snapshot is always a valid (neutral) input to a
// strategy.
type MarketSnapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	RiskScore  float64   `json:"risk_score"` // aggregate market risk in [0,1]
	Trending   float64   `json:"trending"`
	Volatility float64   `json:"volatility"`
	Volume     float64   `json:"volume"`
	// Recommendations maps an asset ticker to buy/sell/hold.
	Recommendations map[string]string `json:"recommendations"`
}

// Recommendation returns the recommended action for a ticker, or "" when
// the snapshot has no data for it.
func (s *MarketSnapshot) Recommendation(ticker string) string {
	if s == nil || s.Recommendations == nil {
		return ""
	}
	return s.Recommendations[ticker]
}

package models

// StrategyConfig carries the tunables of one strategy variant. Immutable
// per instance; one instance per node.
type StrategyConfig struct {
	RiskTolerance            float64       `json:"risk_tolerance"`
	MaxPositionSize          float64       `json:"max_position_size"`
	DiversificationThreshold float64       `json:"diversification_threshold"`
	RebalanceThreshold       float64       `json:"rebalance_threshold"`
	MaxAmount                float64       `json:"max_amount"`      // token-unit ceiling per proposal
	MaxMarketRisk            float64       `json:"max_market_risk"` // snapshot risk ceiling
	MarketConditionWeights   MarketWeights `json:"market_condition_weights"`
}

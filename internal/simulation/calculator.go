package simulation

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const minHoldingCost = 0.0001

var scenarioServiceLevels = map[string]float64{
	ScenarioOptimistic:  0.98,
	ScenarioBase:        0.95,
	ScenarioPessimistic: 0.90,
}

// z-scores keyed by service target in percent
var serviceTargetZ = map[int]float64{
	90: 1.28,
	95: 1.65,
	97: 1.88,
	99: 2.33,
}

const defaultZ = 1.65

// ServiceLevelFor maps a scenario type to its simulated service level.
func ServiceLevelFor(scenarioType string) float64 {
	if level, ok := scenarioServiceLevels[strings.ToLower(scenarioType)]; ok {
		return level
	}
	return scenarioServiceLevels[ScenarioBase]
}

// GrowthFor returns the per-period demand growth of a scenario type.
func GrowthFor(scenarioType string) float64 {
	switch strings.ToLower(scenarioType) {
	case ScenarioOptimistic:
		return 0.02
	case ScenarioPessimistic:
		return -0.02
	}
	return 0
}

// ZScore returns the normal quantile for a service target, defaulting to 95%.
func ZScore(target float64) float64 {
	if z, ok := serviceTargetZ[int(math.Round(target*100))]; ok {
		return z
	}
	return defaultZ
}

// EOQ floors the holding cost so a zero never divides.
func EOQ(demand, orderingCost, holdingCost float64) float64 {
	return math.Sqrt(2 * demand * orderingCost / math.Max(holdingCost, minHoldingCost))
}

// SafetyStock = z × σ × √max(lead time, 1)
func SafetyStock(z, demandStd, leadTime float64) float64 {
	return z * demandStd * math.Sqrt(math.Max(leadTime, 1))
}

// ReorderPoint = daily demand × lead time + safety stock
func ReorderPoint(demand, leadTime, safetyStock float64) float64 {
	dailyDemand := demand / math.Max(leadTime, 1)
	return dailyDemand*leadTime + safetyStock
}

// Forecast projects demand over horizon periods with linear growth.
func Forecast(demand, growth float64, horizon int) []float64 {
	out := make([]float64, horizon)
	for t := 0; t < horizon; t++ {
		out[t] = round(demand*(1+growth*float64(t)), 2)
	}
	return out
}

// RiskFromStockout buckets a stockout probability.
func RiskFromStockout(p float64) string {
	switch {
	case p < 0.1:
		return "low"
	case p < 0.3:
		return "medium"
	default:
		return "high"
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

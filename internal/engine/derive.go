package engine

import (
	"encoding/json"
	"math"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

const (
	lowRiskThreshold    = 0.97
	mediumRiskThreshold = 0.90
)

// ComputeEOQ returns the economic order quantity sqrt(2*D*K/H), or nil when
// any of the inputs is unset.
func ComputeEOQ(demand, orderingCost, holdingCost float64) *float64 {
	if demand == 0 || orderingCost == 0 || holdingCost == 0 {
		return nil
	}
	eoq := math.Sqrt(2 * demand * orderingCost / holdingCost)
	return &eoq
}

// ComputeRiskLevel buckets a service level into a risk tier.
func ComputeRiskLevel(serviceLevel float64) domain.RiskLevel {
	switch {
	case serviceLevel >= lowRiskThreshold:
		return domain.RiskLow
	case serviceLevel >= mediumRiskThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// AssembleResult merges a backend response with the metrics derived from the input.
// Derived fields win over backend fields of the same name.
func AssembleResult(in domain.ScenarioInput, resp *domain.SimulationResponse) *domain.Result {
	delay := resp.ExpectedDelay

	var extra map[string]json.RawMessage
	if len(resp.Extra) > 0 {
		extra = make(map[string]json.RawMessage, len(resp.Extra))
		for k, v := range resp.Extra {
			extra[k] = v
		}
		for _, k := range domain.ResultKeys {
			delete(extra, k)
		}
	}

	return &domain.Result{
		TotalCost:            resp.TotalCost,
		ExpectedDelay:        &delay,
		ServiceLevel:         resp.ServiceLevel,
		EOQ:                  ComputeEOQ(in.Demand, in.OrderingCost, in.HoldingCost),
		RiskLevel:            ComputeRiskLevel(float64(in.TargetServiceLevel)),
		SelectedServiceLevel: in.TargetServiceLevel,
		Extra:                extra,
	}
}

package simulation

import (
	"errors"
	"fmt"
)

const (
	ScenarioOptimistic  = "optimistic"
	ScenarioBase        = "base"
	ScenarioPessimistic = "pessimistic"
)

// ErrInvalidRequest marks a request the simulator cannot run.
var ErrInvalidRequest = errors.New("invalid scenario request")

// Request is the scenario accepted by POST /scenario/run. Only demand,
// lead_time and cost are required; everything else has a default.
type Request struct {
	Demand        *float64 `json:"demand"`
	LeadTime      *float64 `json:"lead_time"`
	Cost          *float64 `json:"cost"`
	ScenarioType  string   `json:"scenario_type"`
	OrderingCost  float64  `json:"ordering_cost"`
	HoldingCost   float64  `json:"holding_cost"`
	ServiceTarget float64  `json:"service_target"`
	DemandStd     float64  `json:"demand_std"`
}

// DefaultRequest returns a request with the optional fields preset; decoding
// JSON into it overrides only the keys present.
func DefaultRequest() Request {
	return Request{
		ScenarioType:  ScenarioBase,
		OrderingCost:  50.0,
		HoldingCost:   2.0,
		ServiceTarget: 0.95,
		DemandStd:     10.0,
	}
}

// Scenario is a validated Request.
type Scenario struct {
	Demand        float64 `json:"demand"`
	LeadTime      float64 `json:"lead_time"`
	Cost          float64 `json:"cost"`
	ScenarioType  string  `json:"scenario_type"`
	OrderingCost  float64 `json:"ordering_cost"`
	HoldingCost   float64 `json:"holding_cost"`
	ServiceTarget float64 `json:"service_target"`
	DemandStd     float64 `json:"demand_std"`
}

// Validate checks required fields and returns the scenario to simulate.
func (r Request) Validate() (Scenario, error) {
	required := []struct {
		name string
		v    *float64
	}{
		{"demand", r.Demand},
		{"lead_time", r.LeadTime},
		{"cost", r.Cost},
	}
	for _, f := range required {
		if f.v == nil {
			return Scenario{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, f.name)
		}
		if *f.v < 0 {
			return Scenario{}, fmt.Errorf("%w: %s must not be negative", ErrInvalidRequest, f.name)
		}
	}
	if r.DemandStd < 0 {
		return Scenario{}, fmt.Errorf("%w: demand_std must not be negative", ErrInvalidRequest)
	}

	return Scenario{
		Demand:        *r.Demand,
		LeadTime:      *r.LeadTime,
		Cost:          *r.Cost,
		ScenarioType:  r.ScenarioType,
		OrderingCost:  r.OrderingCost,
		HoldingCost:   r.HoldingCost,
		ServiceTarget: r.ServiceTarget,
		DemandStd:     r.DemandStd,
	}, nil
}

// Response is the simulation backend reply.
type Response struct {
	TotalCost           float64     `json:"total_cost"`
	ExpectedDelay       float64     `json:"expected_delay"`
	ServiceLevel        float64     `json:"service_level"`
	EOQ                 float64     `json:"eoq"`
	SafetyStock         float64     `json:"safety_stock"`
	ReorderPoint        float64     `json:"reorder_point"`
	Forecast            []float64   `json:"forecast"`
	InventoryAvg        []float64   `json:"inventory_avg"`
	InventoryLower      []float64   `json:"inventory_lower"`
	InventoryUpper      []float64   `json:"inventory_upper"`
	StockoutProbability float64     `json:"stockout_probability"`
	RiskLevel           string      `json:"risk_level"`
	SamplePaths         [][]float64 `json:"-"`
}

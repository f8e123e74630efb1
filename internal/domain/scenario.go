// backend-go/internal/domain/scenario.go
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ScenarioInput is the set of planning parameters entered for one run.
// Zero values mean "unset".
type ScenarioInput struct {
	Demand             float64      `json:"demand" binding:"gte=0"`
	LeadTime           float64      `json:"lead_time" binding:"gte=0"`
	UnitCost           float64      `json:"unit_cost" binding:"gte=0"`
	OrderingCost       float64      `json:"ordering_cost" binding:"gte=0"`
	HoldingCost        float64      `json:"holding_cost" binding:"gte=0"`
	TargetServiceLevel ServiceLevel `json:"target_service_level"`
}

// Normalize defaults an omitted target service level and rejects negative
// values or a target outside the enumerated set.
func (in ScenarioInput) Normalize() (ScenarioInput, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"demand", in.Demand},
		{"lead_time", in.LeadTime},
		{"unit_cost", in.UnitCost},
		{"ordering_cost", in.OrderingCost},
		{"holding_cost", in.HoldingCost},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return in, fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, f.name)
		}
	}

	if in.TargetServiceLevel == 0 {
		in.TargetServiceLevel = DefaultServiceLevel
		return in, nil
	}
	level, ok := ParseServiceLevel(float64(in.TargetServiceLevel))
	if !ok {
		return in, fmt.Errorf("%w: target_service_level %v is not one of %v", ErrInvalidInput, float64(in.TargetServiceLevel), ServiceLevels)
	}
	in.TargetServiceLevel = level
	return in, nil
}

// RunInputs returns the snapshot of the inputs kept with a saved scenario.
func (in ScenarioInput) RunInputs() RunInputs {
	return RunInputs{
		Demand:             in.Demand,
		LeadTime:           in.LeadTime,
		UnitCost:           in.UnitCost,
		TargetServiceLevel: in.TargetServiceLevel,
	}
}

// RunInputs is the raw-input snapshot stored alongside a saved result.
type RunInputs struct {
	Demand             float64      `json:"demand"`
	LeadTime           float64      `json:"lead_time"`
	UnitCost           float64      `json:"unit_cost"`
	TargetServiceLevel ServiceLevel `json:"target_service_level"`
}

// SimulationRequest is the reduced payload sent to the simulation backend.
type SimulationRequest struct {
	Demand   float64 `json:"demand"`
	LeadTime float64 `json:"lead_time"`
	Cost     float64 `json:"cost"`
}

// NewSimulationRequest drops the parameters that are only used for local derivation.
func NewSimulationRequest(in ScenarioInput) SimulationRequest {
	return SimulationRequest{
		Demand:   in.Demand,
		LeadTime: in.LeadTime,
		Cost:     in.UnitCost,
	}
}

// SimulationResponse is the decoded backend reply. Keys other than the three
// required metrics are kept verbatim in Extra.
type SimulationResponse struct {
	TotalCost     float64
	ExpectedDelay float64
	ServiceLevel  float64
	Extra         map[string]json.RawMessage
}

// Result is a simulation response merged with the locally derived metrics.
type Result struct {
	TotalCost            float64
	ExpectedDelay        *float64
	ServiceLevel         float64
	EOQ                  *float64
	RiskLevel            RiskLevel
	SelectedServiceLevel ServiceLevel
	Extra                map[string]json.RawMessage
}

const (
	keyTotalCost            = "total_cost"
	keyExpectedDelay        = "expected_delay"
	keyServiceLevel         = "service_level"
	keyEOQ                  = "eoq"
	keyRiskLevel            = "risk_level"
	keySelectedServiceLevel = "selected_service_level"
)

// ResultKeys lists the keys owned by Result; pass-through fields never override them.
var ResultKeys = []string{
	keyTotalCost,
	keyExpectedDelay,
	keyServiceLevel,
	keyEOQ,
	keyRiskLevel,
	keySelectedServiceLevel,
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+len(ResultKeys))
	for k, v := range r.Extra {
		out[k] = v
	}

	out[keyTotalCost] = r.TotalCost
	if r.ExpectedDelay != nil {
		out[keyExpectedDelay] = *r.ExpectedDelay
	} else {
		delete(out, keyExpectedDelay)
	}
	out[keyServiceLevel] = r.ServiceLevel
	out[keyEOQ] = r.EOQ
	if r.RiskLevel != "" {
		out[keyRiskLevel] = r.RiskLevel
	} else {
		delete(out, keyRiskLevel)
	}
	out[keySelectedServiceLevel] = r.SelectedServiceLevel

	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var res Result
	if v, ok := raw[keyTotalCost]; ok {
		if err := json.Unmarshal(v, &res.TotalCost); err != nil {
			return fmt.Errorf("decode %s: %w", keyTotalCost, err)
		}
	}
	if v, ok := raw[keyExpectedDelay]; ok {
		if err := json.Unmarshal(v, &res.ExpectedDelay); err != nil {
			return fmt.Errorf("decode %s: %w", keyExpectedDelay, err)
		}
	}
	if v, ok := raw[keyServiceLevel]; ok {
		if err := json.Unmarshal(v, &res.ServiceLevel); err != nil {
			return fmt.Errorf("decode %s: %w", keyServiceLevel, err)
		}
	}
	if v, ok := raw[keyEOQ]; ok {
		if err := json.Unmarshal(v, &res.EOQ); err != nil {
			return fmt.Errorf("decode %s: %w", keyEOQ, err)
		}
	}
	if v, ok := raw[keyRiskLevel]; ok {
		if err := json.Unmarshal(v, &res.RiskLevel); err != nil {
			return fmt.Errorf("decode %s: %w", keyRiskLevel, err)
		}
	}
	if v, ok := raw[keySelectedServiceLevel]; ok {
		if err := json.Unmarshal(v, &res.SelectedServiceLevel); err != nil {
			return fmt.Errorf("decode %s: %w", keySelectedServiceLevel, err)
		}
	}

	for _, k := range ResultKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		res.Extra = raw
	}

	*r = res
	return nil
}

// SavedScenario is an immutable, named snapshot of one run.
type SavedScenario struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Inputs  RunInputs `json:"inputs"`
	Result  *Result   `json:"result"`
	SavedAt time.Time `json:"saved_at"`
}

// ProjectionPoint is one point of the inventory projection curve.
type ProjectionPoint struct {
	Period int     `json:"period"`
	Level  float64 `json:"level"`
}

// RunRecord is a run kept in the history store.
type RunRecord struct {
	ID        int64         `json:"id" db:"id"`
	SessionID string        `json:"session_id" db:"session_id"`
	Input     ScenarioInput `json:"input" db:"-"`
	Result    Result        `json:"result" db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

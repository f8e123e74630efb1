package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

// Placeholder is shown for any value that cannot be resolved.
const Placeholder = "—"

// MetricField names a row of the comparison table.
type MetricField string

const (
	FieldTotalCost     MetricField = "total_cost"
	FieldExpectedDelay MetricField = "expected_delay"
	FieldEOQ           MetricField = "eoq"
	FieldRisk          MetricField = "risk"
	FieldDemand        MetricField = "demand"
	FieldLeadTime      MetricField = "lead_time"
	FieldCost          MetricField = "cost"
)

// ComparisonFields is the row order of the comparison table.
var ComparisonFields = []MetricField{
	FieldTotalCost,
	FieldExpectedDelay,
	FieldEOQ,
	FieldRisk,
	FieldDemand,
	FieldLeadTime,
	FieldCost,
}

var fieldLabels = map[MetricField]string{
	FieldTotalCost:     "Total cost",
	FieldExpectedDelay: "Expected delay (days)",
	FieldEOQ:           "EOQ",
	FieldRisk:          "Risk",
	FieldDemand:        "Demand",
	FieldLeadTime:      "Lead time",
	FieldCost:          "Unit cost",
}

// Label returns the table label of the field.
func (f MetricField) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// FormatMetric renders one field of a saved scenario for the comparison table.
// It never fails: anything missing becomes Placeholder.
func FormatMetric(s *domain.SavedScenario, field MetricField) string {
	if s == nil {
		return Placeholder
	}

	switch field {
	case FieldDemand:
		return formatRaw(s.Inputs.Demand)
	case FieldLeadTime:
		return formatRaw(s.Inputs.LeadTime)
	case FieldCost:
		return formatRaw(s.Inputs.UnitCost)
	}

	r := s.Result
	if r == nil {
		return Placeholder
	}

	switch field {
	case FieldTotalCost:
		return humanize.Comma(int64(math.Round(r.TotalCost)))
	case FieldExpectedDelay:
		if r.ExpectedDelay == nil {
			return Placeholder
		}
		return fmt.Sprintf("%.1f", *r.ExpectedDelay)
	case FieldEOQ:
		if r.EOQ == nil || *r.EOQ == 0 {
			return Placeholder
		}
		return strconv.FormatInt(int64(math.Round(*r.EOQ)), 10)
	case FieldRisk:
		if r.RiskLevel == "" {
			return Placeholder
		}
		return string(r.RiskLevel)
	}

	return Placeholder
}

func formatRaw(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ComparisonRow is one line of the side-by-side table.
type ComparisonRow struct {
	Field MetricField `json:"field"`
	Label string      `json:"label"`
	A     string      `json:"a"`
	B     string      `json:"b"`
}

// Comparison is the rendered comparison view.
type Comparison struct {
	Available bool                  `json:"available"`
	A         *domain.SavedScenario `json:"a,omitempty"`
	B         *domain.SavedScenario `json:"b,omitempty"`
	Rows      []ComparisonRow       `json:"rows"`
}

// BuildComparison resolves both slots and formats every comparison field.
func BuildComparison(st State) Comparison {
	a, b := st.ResolveComparison()
	rows := make([]ComparisonRow, 0, len(ComparisonFields))
	for _, f := range ComparisonFields {
		rows = append(rows, ComparisonRow{
			Field: f,
			Label: f.Label(),
			A:     FormatMetric(a, f),
			B:     FormatMetric(b, f),
		})
	}

	return Comparison{
		Available: st.ComparisonAvailable(),
		A:         a,
		B:         b,
		Rows:      rows,
	}
}

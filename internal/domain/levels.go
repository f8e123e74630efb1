// backend-go/internal/domain/levels.go
package domain

import (
	"math"
	"strings"
)

// ServiceLevel is a target probability of not stocking out during lead time.
type ServiceLevel float64

const (
	ServiceLevel90 ServiceLevel = 0.90
	ServiceLevel95 ServiceLevel = 0.95
	ServiceLevel97 ServiceLevel = 0.97
	ServiceLevel99 ServiceLevel = 0.99

	DefaultServiceLevel = ServiceLevel95
)

// ServiceLevels is the enumerated set of selectable targets, ascending.
var ServiceLevels = []ServiceLevel{ServiceLevel90, ServiceLevel95, ServiceLevel97, ServiceLevel99}

// ParseServiceLevel matches v against the enumerated targets after rounding to two decimals.
func ParseServiceLevel(v float64) (ServiceLevel, bool) {
	rounded := ServiceLevel(math.Round(v*100) / 100)
	for _, level := range ServiceLevels {
		if level == rounded {
			return level, true
		}
	}
	return 0, false
}

// RiskLevel is the qualitative risk tier.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

var riskLevelLabels = map[RiskLevel]string{
	RiskLow:    "Low",
	RiskMedium: "Medium",
	RiskHigh:   "High",
}

// RiskLevelLabel returns a human-readable label for a risk tier.
func RiskLevelLabel(level RiskLevel) string {
	if label, ok := riskLevelLabels[level]; ok {
		return label
	}

	return "Unknown"
}

// ParseRiskLevel returns the tier for a given label (case-insensitive).
func ParseRiskLevel(label string) (RiskLevel, bool) {
	level := RiskLevel(strings.ToLower(strings.TrimSpace(label)))
	_, ok := riskLevelLabels[level]

	return level, ok
}

// ComparisonSlot addresses one side of the comparison table.
type ComparisonSlot string

const (
	SlotA ComparisonSlot = "a"
	SlotB ComparisonSlot = "b"
)

// ParseComparisonSlot accepts "a"/"b" in any case.
func ParseComparisonSlot(s string) (ComparisonSlot, bool) {
	switch ComparisonSlot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotA:
		return SlotA, true
	case SlotB:
		return SlotB, true
	}
	return "", false
}

// ComparisonSelection holds the saved-scenario ids chosen for each slot.
// Empty means no explicit choice.
type ComparisonSelection struct {
	A string `json:"a"`
	B string `json:"b"`
}

package engine

import (
	"strings"
	"testing"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestBuildSpokenSummaryNil(t *testing.T) {
	if got := BuildSpokenSummary(nil); got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
}

func TestBuildSpokenSummary(t *testing.T) {
	r := &domain.Result{
		TotalCost:     1234.6,
		ExpectedDelay: ptr(3.14),
		ServiceLevel:  0.952,
		EOQ:           ptr(63.2),
		RiskLevel:     domain.RiskLow,
	}

	got := BuildSpokenSummary(r)
	for _, want := range []string{"1235", "3.1", "95 percent", "63", "low"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestBuildSpokenSummaryDefaults(t *testing.T) {
	got := BuildSpokenSummary(&domain.Result{TotalCost: 10, ServiceLevel: 0.9})

	for _, want := range []string{"delay is 0.0 days", "quantity is 0 units", "Risk level is unknown"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

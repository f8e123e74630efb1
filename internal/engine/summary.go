package engine

import (
	"fmt"
	"math"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

// NoResultUtterance is spoken when there is nothing to summarise yet.
const NoResultUtterance = "No simulation result yet. Run a scenario first."

// BuildSpokenSummary renders a result as one sentence for speech output.
// It returns "" for a nil result.
func BuildSpokenSummary(r *domain.Result) string {
	if r == nil {
		return ""
	}

	delay := 0.0
	if r.ExpectedDelay != nil {
		delay = *r.ExpectedDelay
	}
	eoq := 0.0
	if r.EOQ != nil {
		eoq = *r.EOQ
	}
	risk := r.RiskLevel
	if risk == "" {
		risk = domain.RiskUnknown
	}

	return fmt.Sprintf(
		"Simulation complete. Total cost is %d. Expected delay is %.1f days. "+
			"Service level is %d percent. Economic order quantity is %d units. Risk level is %s.",
		int64(math.Round(r.TotalCost)),
		delay,
		int64(math.Round(r.ServiceLevel*100)),
		int64(math.Round(eoq)),
		risk,
	)
}

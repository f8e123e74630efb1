package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
)

// WriteComparisonCSV writes one row per comparison field.
func WriteComparisonCSV(w io.Writer, cmp engine.Comparison) error {
	writer := csv.NewWriter(w)

	header := []string{"Metric", scenarioName(cmp.A), scenarioName(cmp.B)}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range cmp.Rows {
		if err := writer.Write([]string{row.Label, row.A, row.B}); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Field, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

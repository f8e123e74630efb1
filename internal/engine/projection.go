package engine

import (
	"io"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

const (
	projectionPeriods  = 12
	projectionHeadroom = 50
)

// ChartRenderer draws an inventory projection onto w.
type ChartRenderer interface {
	RenderProjection(w io.Writer, title string, points []domain.ProjectionPoint) error
	ContentType() string
}

// ProjectInventory returns a straight-line depletion from demand+50 down to zero.
// The curve is synthetic and does not come from the simulation backend.
func ProjectInventory(demand float64) []domain.ProjectionPoint {
	start := demand + projectionHeadroom
	points := make([]domain.ProjectionPoint, 0, projectionPeriods+1)
	for t := 0; t <= projectionPeriods; t++ {
		level := start * float64(projectionPeriods-t) / projectionPeriods
		points = append(points, domain.ProjectionPoint{Period: t, Level: level})
	}
	return points
}

// backend-go/internal/repository/run_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

// RunRepository keeps the history of successful simulation runs.
type RunRepository interface {
	RecordRun(ctx context.Context, sessionID string, input domain.ScenarioInput, result *domain.Result) (*domain.RunRecord, error)
	ListRuns(ctx context.Context, sessionID string, limit int) ([]domain.RunRecord, error)
}

type noopRunRepository struct{}

// NewNoopRunRepository returns a repository that records nothing.
func NewNoopRunRepository() RunRepository {
	return noopRunRepository{}
}

func (noopRunRepository) RecordRun(ctx context.Context, sessionID string, input domain.ScenarioInput, result *domain.Result) (*domain.RunRecord, error) {
	return nil, nil
}

func (noopRunRepository) ListRuns(ctx context.Context, sessionID string, limit int) ([]domain.RunRecord, error) {
	return []domain.RunRecord{}, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

const runSchema = `
	CREATE TABLE IF NOT EXISTS scenario_runs (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT        NOT NULL,
		input       JSONB       NOT NULL,
		result      JSONB       NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_scenario_runs_session_created
		ON scenario_runs (session_id, created_at DESC);
`

const defaultRunLimit = 50

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *runRepository {
	return &runRepository{db: db}
}

// EnsureSchema creates the run history table when missing.
func (r *runRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, runSchema); err != nil {
		return fmt.Errorf("failed to create run history schema: %w", err)
	}
	return nil
}

func (r *runRepository) RecordRun(ctx context.Context, sessionID string, input domain.ScenarioInput, result *domain.Result) (*domain.RunRecord, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run input: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run result: %w", err)
	}

	record := &domain.RunRecord{
		SessionID: sessionID,
		Input:     input,
		Result:    *result,
	}

	err = r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO scenario_runs (session_id, input, result, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		return tx.QueryRowContext(ctx, query, sessionID, string(inputJSON), string(resultJSON), time.Now()).
			Scan(&record.ID, &record.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert scenario run: %w", err)
	}

	return record, nil
}

type runRow struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	Input     []byte    `db:"input"`
	Result    []byte    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *runRepository) ListRuns(ctx context.Context, sessionID string, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultRunLimit
	}

	query := `
		SELECT id, session_id, input, result, created_at
		FROM scenario_runs
		WHERE ($1 = '' OR session_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var rows []runRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("failed to list scenario runs: %w", err)
	}

	records := make([]domain.RunRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.RunRecord{
			ID:        row.ID,
			SessionID: row.SessionID,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.Input, &rec.Input); err != nil {
			return nil, fmt.Errorf("failed to decode run %d input: %w", row.ID, err)
		}
		if err := json.Unmarshal(row.Result, &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to decode run %d result: %w", row.ID, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

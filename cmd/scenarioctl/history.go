package main

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/repository/postgres"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, sqlx.NewDb(db, "pgx"))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sqlx.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	db, ok := c.Context.Value(dbKey).(*sqlx.DB)
	if !ok {
		return fmt.Errorf("database not initialized")
	}

	repo := postgres.NewRunRepository(postgres.Wrap(db, 1))
	runs, err := repo.ListRuns(c.Context, c.String("session"), c.Int("limit"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSESSION\tCREATED\tDEMAND\tTOTAL COST\tEOQ\tRISK")
	for _, run := range runs {
		scenario := runAsScenario(run)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.SessionID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			engine.FormatMetric(scenario, engine.FieldDemand),
			engine.FormatMetric(scenario, engine.FieldTotalCost),
			engine.FormatMetric(scenario, engine.FieldEOQ),
			engine.FormatMetric(scenario, engine.FieldRisk),
		)
	}
	return w.Flush()
}

func runAsScenario(run domain.RunRecord) *domain.SavedScenario {
	result := run.Result
	return &domain.SavedScenario{
		ID:      fmt.Sprint(run.ID),
		Inputs:  run.Input.RunInputs(),
		Result:  &result,
		SavedAt: run.CreatedAt,
	}
}

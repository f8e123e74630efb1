package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/client"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/speech"
	"github.com/andresuchdata/scenario-planner/backend-go/pkg/logger"
)

func newSimulationURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "simulation-url",
		Usage:   "Base URL of the simulation backend",
		Value:   "http://localhost:8000",
		EnvVars: []string{"SIMULATION_BASE_URL"},
	}
}

// newSession builds a standalone session talking to the simulation backend.
func newSession(c *cli.Context) *engine.Session {
	cfg := config.Load()
	simClient := client.NewSimulationClient(c.String("simulation-url"), cfg.Simulation.Timeout())

	opts := engine.Options{Client: simClient, Lang: cfg.Speech.Lang}
	if c.Bool("speak") {
		opts.Speaker = speech.New(cfg.Speech)
	}
	return engine.NewSession("cli", opts)
}

func runCommand(c *cli.Context) error {
	input, err := domain.ScenarioInput{
		Demand:             c.Float64("demand"),
		LeadTime:           c.Float64("lead-time"),
		UnitCost:           c.Float64("unit-cost"),
		OrderingCost:       c.Float64("ordering-cost"),
		HoldingCost:        c.Float64("holding-cost"),
		TargetServiceLevel: domain.ServiceLevel(c.Float64("service-level")),
	}.Normalize()
	if err != nil {
		return err
	}

	result, err := newSession(c).Run(c.Context, input)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	fmt.Fprintln(c.App.Writer, engine.BuildSpokenSummary(result))
	return nil
}

func main() {
	_ = godotenv.Load(".env")

	app := &cli.App{
		Name:  "scenarioctl",
		Usage: "Run inventory scenarios against the simulation backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a single scenario and print the result",
				Flags: []cli.Flag{
					newSimulationURLFlag(),
					&cli.Float64Flag{Name: "demand", Usage: "Demand per period", Required: true},
					&cli.Float64Flag{Name: "lead-time", Usage: "Lead time in days"},
					&cli.Float64Flag{Name: "unit-cost", Usage: "Cost per unit"},
					&cli.Float64Flag{Name: "ordering-cost", Usage: "Cost per order"},
					&cli.Float64Flag{Name: "holding-cost", Usage: "Holding cost per unit"},
					&cli.Float64Flag{Name: "service-level", Usage: "Target service level (0.90, 0.95, 0.97, 0.99)", Value: float64(domain.DefaultServiceLevel)},
					&cli.BoolFlag{Name: "speak", Usage: "Read the summary aloud with the configured speech engine"},
				},
				Action: runCommand,
			},
			{
				Name:  "batch",
				Usage: "Run every scenario of a YAML file and compare two of them",
				Flags: []cli.Flag{
					newSimulationURLFlag(),
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Scenario YAML file", Required: true},
					&cli.StringFlag{Name: "format", Usage: "Comparison output format (csv or pdf)", Value: "csv"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the comparison to this file instead of stdout"},
				},
				Action: batchCommand,
			},
			{
				Name:  "history",
				Usage: "List recorded runs from the history database",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "session", Usage: "Only runs of this session"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs", Value: 20},
				},
				Before: initDB,
				After:  closeDB,
				Action: historyCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("scenarioctl failed")
		os.Exit(1)
	}
}

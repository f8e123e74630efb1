package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/report"
)

// batchFile is the YAML layout read by the batch command.
//
//	scenarios:
//	  - name: Base
//	    demand: 1000
//	    lead_time: 5
//	    unit_cost: 12
//	    service_level: 0.95
//	compare:
//	  a: Base
//	  b: Peak
type batchFile struct {
	Scenarios []batchScenario `yaml:"scenarios"`
	Compare   struct {
		A string `yaml:"a"`
		B string `yaml:"b"`
	} `yaml:"compare"`
}

type batchScenario struct {
	Name         string  `yaml:"name"`
	Demand       float64 `yaml:"demand"`
	LeadTime     float64 `yaml:"lead_time"`
	UnitCost     float64 `yaml:"unit_cost"`
	OrderingCost float64 `yaml:"ordering_cost"`
	HoldingCost  float64 `yaml:"holding_cost"`
	ServiceLevel float64 `yaml:"service_level"`
}

func (s batchScenario) input() (domain.ScenarioInput, error) {
	in, err := domain.ScenarioInput{
		Demand:             s.Demand,
		LeadTime:           s.LeadTime,
		UnitCost:           s.UnitCost,
		OrderingCost:       s.OrderingCost,
		HoldingCost:        s.HoldingCost,
		TargetServiceLevel: domain.ServiceLevel(s.ServiceLevel),
	}.Normalize()
	if err != nil {
		return in, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return in, nil
}

func parseBatchFile(r io.Reader) (*batchFile, error) {
	var bf batchFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if len(bf.Scenarios) == 0 {
		return nil, fmt.Errorf("batch file has no scenarios")
	}
	for i, s := range bf.Scenarios {
		if _, err := s.input(); err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i+1, err)
		}
	}
	return &bf, nil
}

// runBatch runs and saves every scenario in order, then points the comparison
// at the named scenarios. Failed runs are reported and skipped.
func runBatch(c *cli.Context, session *engine.Session, bf *batchFile, log io.Writer) error {
	byName := make(map[string]string, len(bf.Scenarios))

	for _, s := range bf.Scenarios {
		in, err := s.input()
		if err != nil {
			return err
		}
		if _, err := session.Run(c.Context, in); err != nil {
			fmt.Fprintf(log, "%-20s FAILED: %v\n", s.Name, err)
			continue
		}
		saved, err := session.Save(s.Name)
		if err != nil {
			return err
		}
		byName[strings.ToLower(saved.Name)] = saved.ID
		fmt.Fprintf(log, "%-20s saved as %s\n", saved.Name, saved.ID)
	}

	if id, ok := byName[strings.ToLower(bf.Compare.A)]; ok {
		session.Select(domain.SlotA, id)
	}
	if id, ok := byName[strings.ToLower(bf.Compare.B)]; ok {
		session.Select(domain.SlotB, id)
	}
	return nil
}

func batchCommand(c *cli.Context) error {
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	bf, err := parseBatchFile(f)
	if err != nil {
		return err
	}

	session := newSession(c)
	if err := runBatch(c, session, bf, c.App.ErrWriter); err != nil {
		return err
	}

	cmp := session.Comparison()
	if !cmp.Available {
		return domain.ErrComparisonUnavailable
	}

	var buf bytes.Buffer
	switch format {
	case report.FormatPDF:
		var projection []domain.ProjectionPoint
		if cmp.A != nil {
			projection = engine.ProjectInventory(cmp.A.Inputs.Demand)
		}
		err = report.WriteComparisonPDF(&buf, cmp, projection)
	default:
		err = report.WriteComparisonCSV(&buf, cmp)
	}
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(c.App.ErrWriter, "comparison written to %s\n", out)
		return nil
	}

	if format == report.FormatPDF {
		return fmt.Errorf("pdf output needs --out")
	}
	_, err = c.App.Writer.Write(buf.Bytes())
	return err
}

package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
)

func twoScenarioComparison() engine.Comparison {
	st := engine.NewState()
	in := domain.ScenarioInput{Demand: 500, LeadTime: 7, UnitCost: 10, TargetServiceLevel: domain.ServiceLevel95}

	st = st.StartRun().CompleteRun(in, &domain.Result{TotalCost: 5000, RiskLevel: domain.RiskMedium})
	st, _, _ = st.Save("Base", "id-1", time.Now())
	st = st.StartRun().CompleteRun(in, &domain.Result{TotalCost: 12345})
	st, _, _ = st.Save("Peak", "id-2", time.Now())

	return engine.BuildComparison(st)
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Errorf("empty format: got %v %v", f, err)
	}
	if f, err := ParseFormat("PDF"); err != nil || f != FormatPDF {
		t.Errorf("PDF: got %v %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteComparisonCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteComparisonCSV(&buf, twoScenarioComparison()); err != nil {
		t.Fatalf("WriteComparisonCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != len(engine.ComparisonFields)+1 {
		t.Fatalf("expected %d rows, got %d", len(engine.ComparisonFields)+1, len(records))
	}
	if strings.Join(records[0], "|") != "Metric|Base|Peak" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][1] != "5,000" || records[1][2] != "12,345" {
		t.Errorf("unexpected total cost row %v", records[1])
	}
	if records[4][2] != engine.Placeholder {
		t.Errorf("expected placeholder for missing risk, got %q", records[4][2])
	}
}

func TestRenderComparisonPDF(t *testing.T) {
	doc, err := RenderComparison(FormatPDF, "comparison", twoScenarioComparison(), engine.ProjectInventory(500))
	if err != nil {
		t.Fatalf("RenderComparison: %v", err)
	}
	if doc.Name != "comparison.pdf" || doc.ContentType != "application/pdf" {
		t.Errorf("unexpected document metadata %s %s", doc.Name, doc.ContentType)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		t.Error("expected PDF output")
	}
}

func TestPDFChartRenderProjection(t *testing.T) {
	var buf bytes.Buffer
	if err := (PDFChart{}).RenderProjection(&buf, "Projection", engine.ProjectInventory(100)); err != nil {
		t.Fatalf("RenderProjection: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF output")
	}
}

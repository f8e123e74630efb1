package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
)

const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	contentWidth = 210.0 - marginLeft - marginRight
	chartHeight  = 70.0
)

func newDocument() (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	// core fonts are cp1252; the translator maps the placeholder dash
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

// WriteComparisonPDF renders the comparison table followed by the projection chart.
func WriteComparisonPDF(w io.Writer, cmp engine.Comparison, projection []domain.ProjectionPoint) error {
	pdf, tr := newDocument()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 10, "Scenario Comparison", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	labelWidth := contentWidth * 0.4
	valueWidth := contentWidth * 0.3

	pdf.SetFillColor(245, 247, 250)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(labelWidth, 8, "Metric", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, 8, tr(scenarioName(cmp.A)), "1", 0, "C", true, 0, "")
	pdf.CellFormat(valueWidth, 8, tr(scenarioName(cmp.B)), "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(50, 50, 50)
	for _, row := range cmp.Rows {
		pdf.CellFormat(labelWidth, 7, tr(row.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, 7, tr(row.A), "1", 0, "R", false, 0, "")
		pdf.CellFormat(valueWidth, 7, tr(row.B), "1", 1, "R", false, 0, "")
	}

	if !cmp.Available {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(contentWidth, 6, "Save at least two scenarios to compare them.", "", 1, "L", false, 0, "")
	}

	if len(projection) > 1 {
		pdf.Ln(8)
		drawProjection(pdf, "Inventory projection", projection)
	}

	return pdf.Output(w)
}

// PDFChart renders projections as single-page PDFs.
type PDFChart struct{}

func (PDFChart) ContentType() string { return FormatPDF.ContentType() }

func (PDFChart) RenderProjection(w io.Writer, title string, points []domain.ProjectionPoint) error {
	pdf, tr := newDocument()
	drawProjection(pdf, tr(title), points)
	return pdf.Output(w)
}

var _ engine.ChartRenderer = PDFChart{}

// drawProjection plots points as a polyline with simple axes below the current position.
func drawProjection(pdf *fpdf.Fpdf, title string, points []domain.ProjectionPoint) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")

	if len(points) < 2 {
		return
	}

	top := pdf.GetY() + 2
	left := marginLeft + 12
	width := contentWidth - 14
	bottom := top + chartHeight

	maxLevel := 0.0
	maxPeriod := 0
	for _, p := range points {
		maxLevel = math.Max(maxLevel, p.Level)
		maxPeriod = max(maxPeriod, p.Period)
	}
	if maxLevel == 0 {
		maxLevel = 1
	}
	if maxPeriod == 0 {
		maxPeriod = 1
	}

	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, top, left, bottom)
	pdf.Line(left, bottom, left+width, bottom)

	pdf.SetFont("Arial", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(marginLeft, top+2, fmt.Sprintf("%.0f", maxLevel))
	pdf.Text(marginLeft, bottom, "0")
	pdf.Text(left+width-10, bottom+4, fmt.Sprintf("period %d", maxPeriod))

	x := func(period int) float64 { return left + width*float64(period)/float64(maxPeriod) }
	y := func(level float64) float64 { return bottom - chartHeight*level/maxLevel }

	pdf.SetDrawColor(0, 102, 204)
	pdf.SetLineWidth(0.6)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		pdf.Line(x(prev.Period), y(prev.Level), x(cur.Period), y(cur.Level))
	}

	pdf.SetY(bottom + 6)
}

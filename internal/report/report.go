// Package report renders the scenario comparison for export.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts csv or pdf in any case; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Document is a rendered export.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// RenderComparison renders cmp in the requested format. The PDF variant also
// draws the projection of scenario A.
func RenderComparison(format Format, name string, cmp engine.Comparison, projection []domain.ProjectionPoint) (*Document, error) {
	var buf bytes.Buffer

	switch format {
	case FormatCSV:
		if err := WriteComparisonCSV(&buf, cmp); err != nil {
			return nil, err
		}
	case FormatPDF:
		if err := WriteComparisonPDF(&buf, cmp, projection); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &Document{
		Name:        fmt.Sprintf("%s.%s", name, format),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func scenarioName(s *domain.SavedScenario) string {
	if s == nil {
		return engine.Placeholder
	}
	return s.Name
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises user input into a supported Format.
func ParseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV, "":
		return FormatCSV, true
	case FormatPDF:
		return FormatPDF, true
	default:
		return "", false
	}
}

// Dataset defines tabular export content. Each row holds one cell per header.
type Dataset struct {
	Title       string
	GeneratedAt time.Time
	Headers     []string
	Rows        [][]string
}

// Renderer encodes datasets into a file body.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer for a format.
func RendererFor(format Format) Renderer {
	if format == FormatPDF {
		return PDFRenderer{}
	}
	return CSVRenderer{}
}

// CSVRenderer renders datasets as RFC 4180 CSV.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv" }
func (CSVRenderer) Extension() string   { return "csv" }

// Render produces CSV encoded bytes for the dataset.
func (CSVRenderer) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, row := range data.Rows {
		if err := writer.Write(fitRow(row, len(data.Headers))); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFRenderer renders datasets into a landscape tabular PDF.
type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return "pdf" }

// Render creates a PDF document with a title line and a bordered table.
func (PDFRenderer) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "L", false, 0, "")
	}
	if !data.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated "+data.GeneratedAt.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 236, 245)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, cell := range fitRow(row, len(data.Headers)) {
			pdf.CellFormat(colWidth, 7, truncate(cell, 48), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

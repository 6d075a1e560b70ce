package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	portraitWidth  = 190.0
	landscapeWidth = 277.0
	headerRowMM    = 8.0
	bodyRowMM      = 7.0
)

// PDFExporter lays a Dataset out as a bordered A4 table with page numbers.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render switches to landscape for tables wider than five columns. The header
// row is repeated on every page.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	orientation, width := "P", portraitWidth
	if len(data.Headers) > 5 {
		orientation, width = "L", landscapeWidth
	}
	colWidth := width / float64(len(data.Headers))

	doc := gofpdf.New(orientation, "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.SetAutoPageBreak(true, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	drawHeader := func() {
		doc.SetFont("Arial", "B", 10)
		doc.SetFillColor(230, 236, 245)
		for _, header := range data.Headers {
			doc.CellFormat(colWidth, headerRowMM, tr(header), "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Arial", "", 9)
	}
	doc.SetHeaderFunc(func() {
		if doc.PageNo() > 1 {
			drawHeader()
		}
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "R", false, 0, "")
	})

	doc.AddPage()
	if title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		doc.Ln(4)
	}
	drawHeader()

	for _, row := range data.Rows {
		for _, cell := range data.record(row) {
			doc.CellFormat(colWidth, bodyRowMM, tr(cell), "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}
	if data.Footer != nil {
		doc.SetFont("Arial", "B", 9)
		for _, cell := range data.record(data.Footer) {
			doc.CellFormat(colWidth, bodyRowMM, tr(cell), "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Section is one titled table in a report.
type Section struct {
	Title string
	Table Tabular
	// MaxRows caps the rows rendered; 0 renders all.
	MaxRows int
}

// Report is a simple multi-table PDF document.
type Report struct {
	Title    string
	Subtitle string
	Sections []Section
}

const (
	pdfLineHeight = 6.0
	pdfFontSize   = 9.0
)

// WritePDF lays out each section as a heading followed by a grid of cells.
// Columns share the page width evenly and overflowing text is truncated.
func (r Report) WritePDF(path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate UTF-8 input.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	if s := strings.TrimSpace(r.Subtitle); s != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
	}
	pdf.Ln(4)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right

	for _, s := range r.Sections {
		header := s.Table.Header()
		if len(header) == 0 {
			continue
		}
		rows := s.Table.Rows()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(s.Title), "", 1, "L", false, 0, "")

		colW := usable / float64(len(header))
		cell := func(text string, fill bool) {
			pdf.CellFormat(colW, pdfLineHeight, fit(pdf, tr(text), colW-2), "1", 0, "L", fill, 0, "")
		}
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range header {
			cell(h, true)
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", pdfFontSize)
		shown := rows
		if s.MaxRows > 0 && len(rows) > s.MaxRows {
			shown = rows[:s.MaxRows]
		}
		for _, row := range shown {
			for i := range header {
				v := ""
				if i < len(row) {
					v = row[i]
				}
				cell(v, false)
			}
			pdf.Ln(-1)
		}
		if len(shown) < len(rows) {
			pdf.SetFont("Helvetica", "I", pdfFontSize)
			pdf.CellFormat(0, pdfLineHeight, fmt.Sprintf("%d more rows not shown", len(rows)-len(shown)), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}
	return pdf.OutputFileAndClose(path)
}

// fit shortens s with a trailing "..." until it renders within w. s is
// already single-byte encoded, so trimming bytes trims characters.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hyperifyio/rewind/internal/export"
	"github.com/hyperifyio/rewind/internal/extract"
)

// pdfMaxRows caps each table in the PDF report.
const pdfMaxRows = 25

// runSummary is the per-topic overview table at the top of the report.
type runSummary []extract.Result

func (runSummary) Header() []string { return []string{"topic", "years", "with records", "empty", "failed", "records"} }

func (s runSummary) Rows() [][]string {
	rows := make([][]string, len(s))
	for i, r := range s {
		var withRecords, empty, failed int
		for _, y := range r.Years {
			switch {
			case y.Err != nil:
				failed++
			case len(y.Records) == 0:
				empty++
			default:
				withRecords++
			}
		}
		rows[i] = []string{
			r.Topic,
			strconv.Itoa(len(r.Years)),
			strconv.Itoa(withRecords),
			strconv.Itoa(empty),
			strconv.Itoa(failed),
			strconv.Itoa(len(r.Records)),
		}
	}
	return rows
}

// writeReport renders the run summary followed by the derived tables.
func writeReport(path string, cfg Config, results []extract.Result, tables []namedTable, generated time.Time) error {
	r := export.Report{
		Title:    fmt.Sprintf("rewind %s", cfg.Years),
		Subtitle: fmt.Sprintf("Generated %s by rewind %s", generated.UTC().Format(time.RFC3339), BuildVersion),
		Sections: []export.Section{{Title: "Run summary", Table: runSummary(results)}},
	}
	for _, t := range tables {
		r.Sections = append(r.Sections, export.Section{Title: t.title, Table: t.table, MaxRows: pdfMaxRows})
	}
	return r.WritePDF(path)
}

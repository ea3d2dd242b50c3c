// Package extract runs the per-year pipeline for a topic: obtain the
// document, locate the topic's section, rebuild its tables and map them onto
// canonical records.
//
// Years are independent. A year that fails is reported in its YearResult
// and never stops the rest of the range; a year whose section or table is
// absent is a success with no records.
package extract

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/rewind/internal/dom"
	"github.com/hyperifyio/rewind/internal/grid"
	"github.com/hyperifyio/rewind/internal/locate"
	"github.com/hyperifyio/rewind/internal/metrics"
	"github.com/hyperifyio/rewind/internal/schema"
	"github.com/hyperifyio/rewind/internal/topics"
)

// DocumentSource yields the parsed document for a topic and year.
type DocumentSource interface {
	Fetch(ctx context.Context, t topics.Topic, year int) (*dom.Document, error)
}

// YearResult is the outcome of one year: records, or the reason there are
// none.
type YearResult struct {
	Year    int
	Records []schema.Record
	// Heading is the section anchor that was used, empty when none matched.
	Heading string
	Tables  int
	Err     error
}

// Outcome classifies the result for reporting.
func (y YearResult) Outcome() string {
	switch {
	case y.Err != nil:
		return metrics.OutcomeFailed
	case len(y.Records) == 0:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeRecords
	}
}

// Result folds the years of one topic in ascending year order.
type Result struct {
	Topic   string
	Records []schema.Record
	Years   []YearResult
}

// Failures returns the years that failed.
func (r Result) Failures() []YearResult {
	var out []YearResult
	for _, y := range r.Years {
		if y.Err != nil {
			out = append(out, y)
		}
	}
	return out
}

// Extractor runs topics over year ranges.
type Extractor struct {
	Source DocumentSource
	// Locator defaults to locate.Default.
	Locator *locate.Locator
	// Concurrency is the number of years processed at once. Values below 2
	// process years one after another.
	Concurrency int
	Metrics     *metrics.Metrics
}

// Extract processes every year of years for t. The returned records are in
// ascending year order and, within a year, in document order, whatever the
// concurrency.
func (e *Extractor) Extract(ctx context.Context, t topics.Topic, years YearRange) Result {
	list := years.Years()
	results := make([]YearResult, len(list))
	if e.Concurrency < 2 {
		for i, y := range list {
			results[i] = e.ExtractYear(ctx, t, y)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.Concurrency)
		for i, y := range list {
			i, y := i, y
			g.Go(func() error {
				results[i] = e.ExtractYear(ctx, t, y)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := Result{Topic: t.Name, Years: results}
	for _, yr := range results {
		if yr.Err != nil {
			log.Warn().Err(yr.Err).Str("topic", t.Name).Int("year", yr.Year).Msg("year failed; continuing")
			continue
		}
		res.Records = append(res.Records, yr.Records...)
	}
	return res
}

// ExtractYear runs the pipeline for a single year.
func (e *Extractor) ExtractYear(ctx context.Context, t topics.Topic, year int) (yr YearResult) {
	yr.Year = year
	defer func() {
		if p := recover(); p != nil {
			yr = YearResult{Year: year, Err: fmt.Errorf("panic extracting %s %d: %v", t.Name, year, p)}
			log.Error().Str("topic", t.Name).Int("year", year).Bytes("stack", debug.Stack()).Msg("recovered panic")
		}
		e.Metrics.ObserveYear(t.Name, yr.Outcome(), len(yr.Records))
	}()
	if err := ctx.Err(); err != nil {
		yr.Err = err
		return yr
	}
	if e.Source == nil {
		yr.Err = fmt.Errorf("extract: no document source")
		return yr
	}
	doc, err := e.Source.Fetch(ctx, t, year)
	if err != nil {
		yr.Err = err
		return yr
	}
	sec, ok := e.section(doc, t)
	if !ok {
		log.Debug().Str("topic", t.Name).Int("year", year).Str("page", doc.Title()).Strs("keywords", t.Keywords).Msg("no matching section")
		return yr
	}
	yr.Heading = sec.Heading
	yr.Tables = len(sec.Tables)
	e.Metrics.ObserveTables(t.Name, len(sec.Tables))

	records := e.fromTables(sec.Tables, t, year)
	if len(sec.Tables) == 0 && t.ListFallback {
		records = fromLists(sec.Lists, t)
	}
	if t.AllTables {
		schema.ForwardFill(records, t.ForwardFill)
	}
	for i := range records {
		records[i].Year = year
	}
	yr.Records = records
	log.Debug().Str("topic", t.Name).Int("year", year).Str("heading", sec.Heading).
		Int("tables", yr.Tables).Int("records", len(records)).Msg("year extracted")
	return yr
}

// section anchors on the first keyword that matches a heading.
func (e *Extractor) section(doc *dom.Document, t topics.Topic) (locate.Section, bool) {
	l := e.Locator
	if l == nil {
		l = locate.Default
	}
	for _, kw := range t.Keywords {
		if sec, ok := l.Find(doc, kw); ok {
			return sec, true
		}
	}
	return locate.Section{}, false
}

func (e *Extractor) fromTables(blocks []dom.TableBlock, t topics.Topic, year int) []schema.Record {
	var out []schema.Record
	for _, b := range blocks {
		tbl := grid.FromBlock(b)
		if tbl.Empty() {
			continue
		}
		n := schema.Normalize(tbl, t)
		if n.SchemaMismatch {
			log.Warn().Str("topic", t.Name).Int("year", year).Int("columns", tbl.Width()).
				Msg("table has no header row and topic has no positional schema; fields left null")
			e.Metrics.ObserveSchemaMismatch(t.Name)
		}
		if len(t.Require) > 0 && !n.Covers(t.Require) {
			log.Debug().Str("topic", t.Name).Int("year", year).Strs("header", tbl.Header).Msg("table lacks required columns; skipped")
			continue
		}
		if len(n.Records) == 0 {
			continue
		}
		schema.ForwardFill(n.Records, t.ForwardFill)
		out = append(out, n.Records...)
		if !t.AllTables {
			break
		}
	}
	return out
}

func fromLists(lists []dom.ListBlock, t topics.Topic) []schema.Record {
	for _, l := range lists {
		n := schema.FromList(l.Items(), t)
		if len(n.Records) > 0 {
			return n.Records
		}
	}
	return nil
}

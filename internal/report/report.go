// Package report formats benchmark results as TSV or a terminal table.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/inodb/iitii/internal/bench"
)

// TSVWriter writes results in tab-delimited format, one experiment per
// line.
type TSVWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTSVWriter creates a new tab-delimited results writer.
func NewTSVWriter(w io.Writer) *TSVWriter {
	return &TSVWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#tree_type",
			"num_variants",
			"build_ms",
			"queries_ms",
			"queries_cost",
			"model_domains",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TSVWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single result line.
func (tw *TSVWriter) Write(r bench.Result) error {
	_, err := fmt.Fprintf(tw.w, "%s\t%d\t%d\t%d\t%d\t%d\n",
		r.TreeType, r.Variants, r.Build.Milliseconds(), r.Queries.Milliseconds(),
		r.Cost, r.Domains)
	return err
}

// Flush flushes buffered output.
func (tw *TSVWriter) Flush() error {
	return tw.w.Flush()
}

// RenderTable writes results as a human-readable table.
func RenderTable(w io.Writer, results []bench.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Tree", "Variants", "Domains", "Build", "Queries", "Cost", "Mean climb"})

	for _, r := range results {
		domains := "-"
		meanClimb := "-"
		if r.TreeType == "iitii" {
			domains = humanize.Comma(int64(r.Domains))
			meanClimb = fmt.Sprintf("%.2f", r.MeanClimb)
		}
		t.AppendRow(table.Row{
			r.TreeType,
			humanize.Comma(int64(r.Variants)),
			domains,
			r.Build.Round(time.Millisecond),
			r.Queries.Round(time.Millisecond),
			humanize.Comma(int64(r.Cost)),
			meanClimb,
		})
	}
	t.Render()
}

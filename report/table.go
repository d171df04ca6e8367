// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/storagebench/perfreport/benchmath"
	"github.com/storagebench/perfreport/benchsuite"
	"github.com/storagebench/perfreport/benchunit"
)

// A Table is the comparison table of one suite.
type Table struct {
	Baseline string
	// Others are the non-baseline transports, in declaration order.
	Others []string
	Rows   []*Row
}

// A Row is one (case, transfer config) pair.
type Row struct {
	Case string
	// CaseSpan is the number of rows the case name covers, starting
	// with this one. It is 0 on rows covered by an earlier row.
	CaseSpan int

	Config      benchsuite.TransferConfig
	BlobSize    string
	NumBlobs    int
	Concurrency int

	Baseline Cell
	Others   []Cell
}

// A Cell is the result of one transport.
type Cell struct {
	Summary    benchmath.Summary
	Throughput float64 // bytes/s

	// Value is the rendered throughput, with a trailing "*" if the
	// timings are volatile.
	Value string
	// Percent is the throughput as a percentage of the baseline's.
	// It is empty for the baseline itself.
	Percent string
	// Detail lists the raw timings and their coefficient of variation.
	Detail string
}

// BuildTable aggregates the timings of s.
func BuildTable(s *benchsuite.Suite) *Table {
	t := &Table{Baseline: s.Baseline}
	for _, tr := range s.Transports {
		if tr != s.Baseline {
			t.Others = append(t.Others, tr)
		}
	}
	for _, name := range s.CaseNames {
		for i, tc := range s.Configs {
			row := &Row{
				Case:        name,
				Config:      tc,
				BlobSize:    benchunit.FormatBytes(float64(tc.BlobSize)),
				NumBlobs:    tc.NumBlobs,
				Concurrency: tc.Concurrency,
			}
			if i == 0 {
				row.CaseSpan = len(s.Configs)
			}
			row.Baseline = newCell(s.Case(name, tc, s.Baseline), tc)
			for _, tr := range t.Others {
				c := newCell(s.Case(name, tc, tr), tc)
				c.Percent = formatPercent(c.Throughput, row.Baseline.Throughput)
				row.Others = append(row.Others, c)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func newCell(c *benchsuite.Case, tc benchsuite.TransferConfig) Cell {
	var ms []int64
	if c != nil {
		ms = c.TotalTimeMs
	}
	sum := benchmath.NewSampleMs(ms).Summarize()
	cell := Cell{Summary: sum, Throughput: sum.Throughput(tc.TotalBytes())}
	cell.Value = formatThroughput(cell.Throughput, sum.Volatile())
	cell.Detail = formatDetail(ms, sum.CV)
	return cell
}

func formatThroughput(v float64, volatile bool) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	s := benchunit.FormatRate(v)
	if volatile {
		s += "*"
	}
	return s
}

func formatPercent(v, base float64) string {
	p := benchmath.Percent(v, base)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", p)
}

// formatDetail renders timings like "120ms, 135ms, 128ms; 0.048".
func formatDetail(ms []int64, cv float64) string {
	if len(ms) == 0 {
		return "no samples"
	}
	parts := make([]string, len(ms))
	for i, v := range ms {
		parts[i] = strconv.FormatInt(v, 10) + "ms"
	}
	return fmt.Sprintf("%s; %.3f", strings.Join(parts, ", "), cv)
}

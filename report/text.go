// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/storagebench/perfreport/benchsuite"
	"github.com/storagebench/perfreport/internal/texttab"
)

// WriteText writes the comparison table of s to w as plain text,
// followed by the suite's environment.
func WriteText(w io.Writer, s *benchsuite.Suite) error {
	t := BuildTable(s)

	var tab texttab.Table
	tab.Row().Cell("").Cell("blob size", texttab.Right).Cell("blobs", texttab.Right).Cell("concurrency", texttab.Right).
		Cell("baseline("+t.Baseline+")", texttab.Right)
	for _, tr := range t.Others {
		tab.Cell(tr, texttab.Right).Cell("% of baseline", texttab.Right)
	}
	for _, row := range t.Rows {
		tab.Row()
		if row.CaseSpan > 0 {
			tab.Cell(row.Case)
		} else {
			tab.Cell("")
		}
		tab.Cell(row.BlobSize, texttab.Right).
			Cell(strconv.Itoa(row.NumBlobs), texttab.Right).
			Cell(strconv.Itoa(row.Concurrency), texttab.Right).
			Cell(row.Baseline.Value, texttab.Right)
		for _, c := range row.Others {
			tab.Cell(c.Value, texttab.Right).Cell(c.Percent, texttab.Right)
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nstorage account: %s\nVM: %s\nOS: %s\ncompiler: %s\nversions: %s\nlog: %s\n",
		s.Env.StorageAccount, s.Env.VM, s.Env.OS, s.Env.Compiler, s.Env.Versions(), s.LogName())
	return err
}

// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables with aligned columns.
package texttab

import (
	"bufio"
	"io"
	"slices"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Row and Cell return the Table so that a row can be built in one
// chained expression.
type Table struct {
	cells []cell
	cols  int
	row   int
	col   int
}

type cell struct {
	row, col, span int
	value          string
	align          Align
}

// Align is the horizontal alignment of a cell within its columns.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func (a Align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	switch a {
	case Center:
		return strings.Repeat(" ", n/2) + s
	case Right:
		return strings.Repeat(" ", n) + s
	}
	return s
}

// Row starts a new row.
func (t *Table) Row() *Table {
	if len(t.cells) > 0 || t.col > 0 {
		t.row++
	}
	t.col = 0
	return t
}

// Cell adds a single-column cell, left-aligned unless align is given.
func (t *Table) Cell(value string, align ...Align) *Table {
	return t.Span(1, value, align...)
}

// Span adds a cell covering cols columns.
func (t *Table) Span(cols int, value string, align ...Align) *Table {
	c := cell{row: t.row, col: t.col, span: cols, value: value}
	if len(align) > 0 {
		c.align = align[0]
	}
	t.cells = append(t.cells, c)
	t.col += cols
	t.cols = max(t.cols, t.col)
	return t
}

// widths returns the width of each column, not counting the single
// space separating columns.
func (t *Table) widths() []int {
	ws := make([]int, t.cols)
	byspan := slices.Clone(t.cells)
	slices.SortStableFunc(byspan, func(a, b cell) int { return a.span - b.span })
	for _, c := range byspan {
		w := utf8.RuneCountInString(c.value)
		if c.span == 1 {
			ws[c.col] = max(ws[c.col], w)
			continue
		}
		// Columns covered by a span are separated by spaces the
		// span's value can use.
		have := c.span - 1
		for i := c.col; i < c.col+c.span; i++ {
			have += ws[i]
		}
		if have < w {
			ws[c.col+c.span-1] += w - have
		}
	}
	return ws
}

// Format lays out the table and writes it to w. Trailing spaces are
// omitted.
func (t *Table) Format(w io.Writer) error {
	ws := t.widths()
	offs := make([]int, t.cols+1)
	for i, cw := range ws {
		offs[i+1] = offs[i] + cw + 1
	}

	cells := slices.Clone(t.cells)
	slices.SortStableFunc(cells, func(a, b cell) int {
		if a.row != b.row {
			return a.row - b.row
		}
		return a.col - b.col
	})

	bw := bufio.NewWriter(w)
	row, off := 0, 0
	for _, c := range cells {
		for row < c.row {
			bw.WriteByte('\n')
			row++
			off = 0
		}
		if c.value == "" {
			continue
		}
		bw.WriteString(strings.Repeat(" ", offs[c.col]-off))
		s := c.align.pad(c.value, offs[c.col+c.span]-offs[c.col]-1)
		bw.WriteString(s)
		off = offs[c.col] + utf8.RuneCountInString(s)
	}
	if len(cells) > 0 {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

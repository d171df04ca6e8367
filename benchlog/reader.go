// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchlog reads the timestamped log format written by the
// storage benchmark harness.
//
// Each line of a log has the form
//
//	[2006-01-02 15:04:05.000000] [info] message text
//
// A Reader splits a log into Lines. Classify turns the message text of
// a line into one of the typed messages the harness emits.
package benchlog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// TimeLayout is the layout of the timestamp field of a log line. The
// fractional part is always six digits.
const TimeLayout = "2006-01-02 15:04:05.000000"

// A Line is one decoded log line.
type Line struct {
	Time    time.Time
	Level   string // lower case, e.g. "info" or "warning"
	Message string

	fileName string
	line     int
}

// Pos returns the file name and 1-based line number this Line was read
// from, or "", 0 if it was not read by a Reader.
func (l *Line) Pos() (fileName string, line int) {
	return l.fileName, l.line
}

// A SyntaxError reports a line that does not have the shape of a log
// line.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	if e.FileName == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A Reader reads log lines from an input.
//
// Its API is modeled on bufio.Scanner. The Line returned by Line is
// overwritten by the next call to Scan.
//
// Unlike a benchmark results reader, a Reader does not skip lines it
// cannot decode: a malformed line stops the Reader and is reported by
// Err as a *SyntaxError, because a log with a corrupt line cannot be
// trusted to describe a complete run.
type Reader struct {
	s    *bufio.Scanner
	err  error
	cur  Line
	name string
	n    int
}

// maxLineSize bounds the length of a single log line.
const maxLineSize = 1 << 20

// NewReader returns a Reader that reads r. fileName is used in error
// messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLineSize)
	r.err = nil
	r.cur = Line{}
	r.name = fileName
	r.n = 0
}

// Scan advances the reader to the next line and reports whether a line
// was decoded. It returns false at EOF, on an I/O error, and on a
// malformed line; the caller should then check Err.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			r.err = fmt.Errorf("%s:%d: %w", r.name, r.n, err)
		}
		return false
	}
	r.n++
	text := strings.TrimSuffix(r.s.Text(), "\r")
	l, err := ParseLine(text)
	if err != nil {
		err.FileName, err.Line = r.name, r.n
		r.err = err
		return false
	}
	l.fileName, l.line = r.name, r.n
	r.cur = l
	return true
}

// Line returns the line decoded by the most recent call to Scan.
func (r *Reader) Line() *Line {
	return &r.cur
}

// Err returns the first error encountered by the Reader: an I/O error
// or a *SyntaxError. It returns nil at a clean EOF.
func (r *Reader) Err() error {
	return r.err
}

// FileName returns the name the Reader reports in errors.
func (r *Reader) FileName() string {
	return r.name
}

// ParseLine decodes a single log line. The returned *SyntaxError has no
// position; Reader fills it in.
func ParseLine(text string) (Line, *SyntaxError) {
	bad := func(msg string) (Line, *SyntaxError) {
		return Line{}, &SyntaxError{Msg: msg}
	}

	// [timestamp]
	if len(text) < len(TimeLayout)+2 || text[0] != '[' || text[len(TimeLayout)+1] != ']' {
		return bad("missing timestamp")
	}
	ts, err := time.Parse(TimeLayout, text[1:len(TimeLayout)+1])
	if err != nil {
		return bad("bad timestamp: " + err.Error())
	}
	rest := text[len(TimeLayout)+2:]

	// [level]
	if !strings.HasPrefix(rest, " [") {
		return bad("missing level")
	}
	rest = rest[2:]
	end := strings.IndexByte(rest, ']')
	if end <= 0 {
		return bad("missing level")
	}
	level := rest[:end]
	for i := 0; i < len(level); i++ {
		if level[i] < 'a' || level[i] > 'z' {
			return bad(fmt.Sprintf("bad level %q", level))
		}
	}
	rest = rest[end+1:]

	// message
	if !strings.HasPrefix(rest, " ") || len(rest) == 1 {
		return bad("missing message")
	}
	return Line{Time: ts, Level: level, Message: rest[1:]}, nil
}

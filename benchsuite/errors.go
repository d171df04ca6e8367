// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsuite

import "fmt"

// An ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// MalformedLogLine: a line is not a timestamped log line.
	MalformedLogLine ErrorKind = iota + 1
	// UnmatchedTimingSample: a timing line matches no declared case.
	UnmatchedTimingSample
	// OutOfOrderConfigDeclaration: a transfer config's index is not its
	// position.
	OutOfOrderConfigDeclaration
	// IncompleteSuite: the log ended before the run was complete.
	IncompleteSuite
	// InconsistentDeclaration: a declaration contradicts an earlier one.
	InconsistentDeclaration
)

var kindNames = map[ErrorKind]string{
	MalformedLogLine:            "malformed log line",
	UnmatchedTimingSample:       "unmatched timing sample",
	OutOfOrderConfigDeclaration: "out-of-order config declaration",
	IncompleteSuite:             "incomplete suite",
	InconsistentDeclaration:     "inconsistent declaration",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// A ParseError reports why a log could not be turned into a Suite. Any
// ParseError rejects the whole log.
type ParseError struct {
	Kind     ErrorKind
	FileName string
	Line     int // 0 for errors found at end of input
	Msg      string
	Err      error // underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", e.FileName, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.FileName, e.Line, e.Kind, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

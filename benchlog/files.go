// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// A Files reads a sequence of local log files, one at a time.
//
// Each call to Scan opens the next file and prepares a Reader for it.
// Files whose name ends in ".gz" are decompressed transparently.
type Files struct {
	// Paths is the list of file names to read.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin.
	AllowStdin bool

	next   int
	reader Reader
	path   string
	closer []io.Closer
	err    error
}

// Scan closes the current file, if any, and opens the next one. It
// reports whether a file was opened. If Scan returns false, the caller
// should check Err.
func (f *Files) Scan() bool {
	f.closeCurrent()
	if f.err != nil || f.next >= len(f.Paths) {
		return false
	}
	path := f.Paths[f.next]
	f.next++

	var r io.Reader
	if f.AllowStdin && path == "-" {
		r = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			f.err = err
			return false
		}
		f.closer = append(f.closer, file)
		r = file
	}
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			f.closeCurrent()
			f.err = &os.PathError{Op: "gunzip", Path: path, Err: err}
			return false
		}
		f.closer = append(f.closer, zr)
		r = zr
	}
	f.path = path
	f.reader.Reset(r, path)
	return true
}

// Path returns the path of the current file.
func (f *Files) Path() string {
	return f.path
}

// Reader returns the Reader for the current file. It is reused across
// files.
func (f *Files) Reader() *Reader {
	return &f.reader
}

// Err returns the error that stopped Scan, if any. Errors within a file
// are reported by that file's Reader.
func (f *Files) Err() error {
	return f.err
}

// Close closes the current file.
func (f *Files) Close() error {
	return f.closeCurrent()
}

func (f *Files) closeCurrent() error {
	var first error
	for i := len(f.closer) - 1; i >= 0; i-- {
		if err := f.closer[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	f.closer = f.closer[:0]
	return first
}

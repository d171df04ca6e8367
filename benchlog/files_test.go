// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "a.log")
	if err := os.WriteFile(plain, []byte("[2023-02-13 08:30:01.000001] [info] started\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("[2023-02-13 08:30:01.000001] [info] exited\n[2023-02-13 08:30:01.000002] [info] exited\n"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	zipped := filepath.Join(dir, "b.log.gz")
	if err := os.WriteFile(zipped, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &Files{Paths: []string{plain, zipped}}
	defer f.Close()
	var counts []int
	var paths []string
	for f.Scan() {
		r := f.Reader()
		n := 0
		for r.Scan() {
			n++
		}
		if err := r.Err(); err != nil {
			t.Fatal(err)
		}
		counts = append(counts, n)
		paths = append(paths, f.Path())
	}
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 || counts[0] != 1 || counts[1] != 2 {
		t.Errorf("line counts = %v, want [1 2]", counts)
	}
	if len(paths) != 2 || paths[1] != zipped {
		t.Errorf("paths = %v", paths)
	}
}

func TestFilesMissing(t *testing.T) {
	f := &Files{Paths: []string{filepath.Join(t.TempDir(), "nope.log")}}
	if f.Scan() {
		t.Fatal("Scan of missing file returned true")
	}
	if !os.IsNotExist(f.Err()) {
		t.Errorf("Err() = %v, want not-exist error", f.Err())
	}
}

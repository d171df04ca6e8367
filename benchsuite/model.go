// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchsuite builds the benchmark model of one storage
// benchmark run from its log.
//
// A Suite is the parsed form of one log. It holds the environment the
// run executed in, the declared transports, case names and transfer
// configurations, and one Case for every combination of those, each
// carrying the total time of every repetition.
package benchsuite

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// Environment describes where and with what a benchmark ran.
type Environment struct {
	OS             string
	Compiler       string
	StorageAccount string // resolved description, not the account name
	VM             string // resolved description, not the resource ID

	CoreVersion          string
	StorageCommonVersion string
	StorageBlobsVersion  string
}

// Versions returns the library versions of e.
func (e Environment) Versions() Versions {
	return Versions{e.CoreVersion, e.StorageCommonVersion, e.StorageBlobsVersion}
}

// Versions is the library version fingerprint of a run. Suites with
// equal Versions are reported together.
type Versions struct {
	Core, StorageCommon, StorageBlobs string
}

// String returns the three versions separated by spaces.
func (v Versions) String() string {
	return v.Core + " " + v.StorageCommon + " " + v.StorageBlobs
}

// A TransferConfig is the (blob size, blob count, concurrency) triple a
// case is run with.
type TransferConfig struct {
	BlobSize    int64 // bytes
	NumBlobs    int
	Concurrency int
}

// TotalBytes returns the number of bytes transferred by one run.
func (tc TransferConfig) TotalBytes() int64 {
	return tc.BlobSize * int64(tc.NumBlobs)
}

// A Case is one benchmark case run with one transfer configuration over
// one transport.
type Case struct {
	Name      string
	Config    TransferConfig
	Transport string

	// TotalTimeMs holds the total time of each repetition, in log order.
	TotalTimeMs []int64
}

// A Suite is the benchmark model of one complete run.
type Suite struct {
	Env Environment

	// Transports lists the transports in declaration order, except that
	// Baseline is always first.
	Transports []string
	Baseline   string

	CaseNames []string
	Configs   []TransferConfig

	// Cases holds one Case per (case name, config, transport), ordered
	// by case name, then config, then transport.
	Cases []*Case

	// Repeat is the declared number of repetitions of every case.
	Repeat int

	Start, End time.Time

	// Origin identifies the log this Suite was parsed from, typically
	// its URL.
	Origin string
}

// Case returns the case with the given name, configuration and
// transport, or nil.
func (s *Suite) Case(name string, tc TransferConfig, transport string) *Case {
	for _, c := range s.Cases {
		if c.Name == name && c.Config == tc && c.Transport == transport {
			return c
		}
	}
	return nil
}

// LogName returns the base file name of s.Origin. Origin may be a URL,
// in which case its path is unescaped first.
func (s *Suite) LogName() string {
	p := s.Origin
	if u, err := url.Parse(s.Origin); err == nil && u.Path != "" {
		p = u.Path
	}
	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}

var contentHashRE = regexp.MustCompile(`^.+-([0-9a-z]+)\.log$`)

// ContentHash returns the hash the harness embeds in log names, as in
// "2023-02-13T08:30:01Z-3f2a9c.log". If the name has no hash, it
// returns the whole name and false.
func (s *Suite) ContentHash() (string, bool) {
	name := s.LogName()
	if m := contentHashRE.FindStringSubmatch(name); m != nil {
		return m[1], true
	}
	return name, false
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsuite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/storagebench/perfreport/benchlog"
)

// A Resolver turns the raw storage account name and VM resource ID
// found in a log into the descriptions stored in the Environment.
//
// Implementations must not fail: a lookup that cannot be completed
// should return a placeholder such as "unknown".
type Resolver interface {
	StorageAccount(ctx context.Context, name string) string
	VirtualMachine(ctx context.Context, resourceID string) string
}

// Parse reads one benchmark log from r and returns the Suite it
// describes. origin is recorded in the Suite and used as the file name
// in errors.
//
// If res is nil, the storage account name and VM resource ID are
// stored verbatim.
//
// Any structural problem with the log is returned as a *ParseError, and
// no Suite is returned.
func Parse(ctx context.Context, r io.Reader, origin string, res Resolver) (*Suite, error) {
	return ParseReader(ctx, benchlog.NewReader(r, origin), origin, res)
}

// ParseReader is like Parse, but reads lines from an existing
// benchlog.Reader.
func ParseReader(ctx context.Context, lr *benchlog.Reader, origin string, res Resolver) (*Suite, error) {
	p := &parser{
		ctx:   ctx,
		res:   res,
		file:  lr.FileName(),
		suite: &Suite{Origin: origin},
	}
	for lr.Scan() {
		l := lr.Line()
		_, n := l.Pos()
		if err := p.apply(l, n); err != nil {
			return nil, err
		}
	}
	if err := lr.Err(); err != nil {
		var se *benchlog.SyntaxError
		if errors.As(err, &se) {
			return nil, &ParseError{Kind: MalformedLogLine, FileName: se.FileName, Line: se.Line, Msg: se.Msg, Err: err}
		}
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.suite, nil
}

// caseKey identifies the case a timing sample belongs to.
type caseKey struct {
	name      string
	config    TransferConfig
	transport string
}

type parser struct {
	ctx   context.Context
	res   Resolver
	file  string
	suite *Suite

	repeatSet bool
	index     map[caseKey]*Case
}

func (p *parser) errorf(kind ErrorKind, line int, format string, args ...any) error {
	return &ParseError{Kind: kind, FileName: p.file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) apply(l *benchlog.Line, n int) error {
	s := p.suite
	switch m := benchlog.Classify(l.Message).(type) {
	case benchlog.Started:
		s.Start = l.Time
	case benchlog.Exited:
		s.End = l.Time
	case benchlog.StorageAccount:
		s.Env.StorageAccount = m.Name
		if p.res != nil {
			s.Env.StorageAccount = p.res.StorageAccount(p.ctx, m.Name)
		}
	case benchlog.VMResource:
		s.Env.VM = m.ID
		if p.res != nil {
			s.Env.VM = p.res.VirtualMachine(p.ctx, m.ID)
		}
	case benchlog.OSInfo:
		s.Env.OS = m.Value
	case benchlog.CompilerInfo:
		s.Env.Compiler = m.Value
	case benchlog.LibraryVersion:
		switch m.Component {
		case benchlog.Core:
			s.Env.CoreVersion = m.Version
		case benchlog.StorageCommon:
			s.Env.StorageCommonVersion = m.Version
		case benchlog.StorageBlobs:
			s.Env.StorageBlobsVersion = m.Version
		}
	case benchlog.Transports:
		s.Transports = slices.Clone(m.Names)
	case benchlog.BaselineTransport:
		i := slices.Index(s.Transports, m.Name)
		if i < 0 {
			return p.errorf(InconsistentDeclaration, n, "baseline transport %q is not a declared transport %q", m.Name, s.Transports)
		}
		s.Transports = slices.Delete(s.Transports, i, i+1)
		s.Transports = slices.Insert(s.Transports, 0, m.Name)
		s.Baseline = m.Name
	case benchlog.BenchmarkCases:
		s.CaseNames = slices.Clone(m.Names)
	case benchlog.TransferConfig:
		if want := len(s.Configs) + 1; m.Index != want {
			return p.errorf(OutOfOrderConfigDeclaration, n, "transfer config %d declared at position %d", m.Index, want)
		}
		s.Configs = append(s.Configs, TransferConfig{BlobSize: m.BlobSize, NumBlobs: m.NumBlobs, Concurrency: m.Concurrency})
	case benchlog.RepeatTimes:
		if p.repeatSet {
			return p.errorf(InconsistentDeclaration, n, "repeat times declared again (was %d, now %d)", s.Repeat, m.N)
		}
		p.repeatSet = true
		s.Repeat = m.N
		p.materialize()
	case benchlog.Timing:
		key := caseKey{
			name:      m.Case,
			config:    TransferConfig{BlobSize: m.BlobSize, NumBlobs: m.NumBlobs, Concurrency: m.Concurrency},
			transport: m.Transport,
		}
		c := p.index[key]
		if c == nil {
			return p.errorf(UnmatchedTimingSample, n, "no case %q with transport %q, blob size %d, %d blobs, concurrency %d",
				m.Case, m.Transport, m.BlobSize, m.NumBlobs, m.Concurrency)
		}
		c.TotalTimeMs = append(c.TotalTimeMs, m.TotalMs)
	}
	return nil
}

// materialize creates an empty Case for every case name, config and
// transport, in that nesting order.
func (p *parser) materialize() {
	s := p.suite
	p.index = make(map[caseKey]*Case)
	for _, name := range s.CaseNames {
		for _, tc := range s.Configs {
			for _, tr := range s.Transports {
				c := &Case{Name: name, Config: tc, Transport: tr}
				s.Cases = append(s.Cases, c)
				key := caseKey{name, tc, tr}
				if _, ok := p.index[key]; !ok {
					// Samples go to the first of duplicate cases.
					p.index[key] = c
				}
			}
		}
	}
}

// finish checks that the log described a complete run.
func (p *parser) finish() error {
	s := p.suite
	for _, f := range []struct{ name, val string }{
		{"OS", s.Env.OS},
		{"compiler", s.Env.Compiler},
		{"storage account", s.Env.StorageAccount},
		{"VM", s.Env.VM},
		{"azure-core-cpp version", s.Env.CoreVersion},
		{"azure-storage-common-cpp version", s.Env.StorageCommonVersion},
		{"azure-storage-blobs-cpp version", s.Env.StorageBlobsVersion},
	} {
		if f.val == "" {
			return p.errorf(IncompleteSuite, 0, "missing %s", f.name)
		}
	}
	if s.Baseline == "" {
		return p.errorf(IncompleteSuite, 0, "missing baseline transport")
	}
	if !p.repeatSet {
		return p.errorf(IncompleteSuite, 0, "missing repeat times")
	}
	for _, c := range s.Cases {
		if len(c.TotalTimeMs) != s.Repeat {
			return p.errorf(IncompleteSuite, 0, "case %q over %q (blob size %d, %d blobs, concurrency %d) has %d samples, want %d",
				c.Name, c.Transport, c.Config.BlobSize, c.Config.NumBlobs, c.Config.Concurrency, len(c.TotalTimeMs), s.Repeat)
		}
	}
	return nil
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline turns the benchmark logs in a bucket into published
// HTML reports.
//
// A run lists the raw logs, fetches and parses them concurrently, groups
// the resulting suites by library versions, renders one report per group,
// and publishes the reports together with an index page.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/storagebench/perfreport/benchsuite"
	"github.com/storagebench/perfreport/blobstore"
	"github.com/storagebench/perfreport/release"
	"github.com/storagebench/perfreport/report"
)

// IndexName is the name of the published index page.
const IndexName = "index.html"

const contentType = "text/html"

var logNameRE = regexp.MustCompile(`^[0-9-]{10}T[0-9:]{8}Z-[0-9a-z]+\.log$`)

// IsLogName reports whether name looks like the name of a raw
// benchmark log, such as "2023-02-13T08:30:01Z-3f2a9c.log".
func IsLogName(name string) bool {
	return logNameRE.MatchString(path.Base(name))
}

// A Pipeline publishes reports for the logs in a bucket.
type Pipeline struct {
	// Logs holds the raw benchmark logs.
	Logs blobstore.Bucket
	// Publisher stores reports and the index.
	Publisher *blobstore.Publisher
	// Resolver describes storage accounts and VMs. If nil, the raw
	// names are reported.
	Resolver benchsuite.Resolver
	// Releases provides the SDK release history. If nil, no report is
	// named after a release.
	Releases *release.Fetcher
	// Workers bounds the number of logs fetched and parsed at once.
	// If <= 0, it defaults to 1.
	Workers int
	Logger  *slog.Logger
}

// A SourceError records a log that could not be used.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// A Result summarizes a run.
type Result struct {
	// Suites are the parsed suites, in log name order.
	Suites []*benchsuite.Suite
	// Failed lists the logs that were skipped.
	Failed []*SourceError
	// Reports describes the reports, in group order.
	Reports []report.Meta
	// Changed counts the published objects whose content changed,
	// including the index.
	Changed int
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Run performs a full run. Logs that cannot be read or parsed are
// logged and skipped; any other error stops the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	names, err := p.Logs.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names = lo.Filter(names, func(name string, _ int) bool { return IsLogName(name) })
	slices.Sort(names)
	p.logger().InfoContext(ctx, "found logs", "count", len(names))

	suites, failed := p.parseAll(ctx, names)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{Suites: suites, Failed: failed}
	for _, f := range failed {
		p.logger().WarnContext(ctx, "skipping log", "source", f.Name, "err", f.Err)
	}

	var h *release.History
	if p.Releases != nil {
		h = p.Releases.History(ctx)
	}

	for _, g := range report.GroupSuites(suites) {
		meta := report.NewMeta(g, h)
		var buf bytes.Buffer
		if err := report.WriteHTML(&buf, report.Title, g.Suites); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", meta.Name, err)
		}
		changed, err := p.Publisher.Publish(ctx, meta.Filename(), buf.Bytes(), contentType)
		if err != nil {
			return nil, err
		}
		if changed {
			res.Changed++
		}
		res.Reports = append(res.Reports, meta)
	}

	var buf bytes.Buffer
	if err := report.WriteIndex(&buf, res.Reports); err != nil {
		return nil, fmt.Errorf("rendering index: %w", err)
	}
	changed, err := p.Publisher.Publish(ctx, IndexName, buf.Bytes(), contentType)
	if err != nil {
		return nil, err
	}
	if changed {
		res.Changed++
	}
	return res, nil
}

// parseAll fetches and parses the named logs on up to p.Workers
// goroutines. The suites are returned in the order of names.
func (p *Pipeline) parseAll(ctx context.Context, names []string) ([]*benchsuite.Suite, []*SourceError) {
	suites := make([]*benchsuite.Suite, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(max(p.Workers, 1))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return nil
			}
			suites[i], errs[i] = p.parse(ctx, name)
			return nil
		})
	}
	g.Wait()

	var failed []*SourceError
	for i, err := range errs {
		if err != nil {
			failed = append(failed, &SourceError{names[i], err})
		}
	}
	return slices.DeleteFunc(suites, func(s *benchsuite.Suite) bool { return s == nil }), failed
}

func (p *Pipeline) parse(ctx context.Context, name string) (*benchsuite.Suite, error) {
	data, err := p.Logs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	p.logger().DebugContext(ctx, "parsing", "source", name, "bytes", len(data))
	return benchsuite.Parse(ctx, bytes.NewReader(data), p.Logs.URL(name), p.Resolver)
}

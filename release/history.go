// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package release

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// A Tag is a published release tag of the SDK repository.
type Tag struct {
	Name      string
	Published time.Time
}

// A Release is a parsed release tag.
type Release struct {
	Version   Version
	Published time.Time
	// Effective is the first of the month in which the release is
	// considered current. See EffectiveDate.
	Effective time.Time
}

// EffectiveDate returns the date a release published at t is counted
// from: three days after publication, truncated to the first of that
// month, in UTC.
func EffectiveDate(t time.Time) time.Time {
	t = t.UTC().AddDate(0, 0, 3)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// A History is the release history of every package, each sorted by
// version.
type History struct {
	pkgs map[string][]Release
}

// NewHistory builds a History from release tags. Tags that are not
// package versions are ignored.
func NewHistory(tags []Tag) *History {
	h := &History{pkgs: make(map[string][]Release)}
	for _, t := range tags {
		v, ok := ParseVersion(t.Name)
		if !ok {
			continue
		}
		h.pkgs[v.Package] = append(h.pkgs[v.Package], Release{v, t.Published, EffectiveDate(t.Published)})
	}
	for _, rels := range h.pkgs {
		slices.SortFunc(rels, func(a, b Release) int {
			if c := a.Version.Compare(b.Version); c != 0 {
				return c
			}
			return a.Effective.Compare(b.Effective)
		})
	}
	return h
}

// Releases returns the releases of pkg sorted by version.
func (h *History) Releases(pkg string) []Release {
	if h == nil {
		return nil
	}
	return h.pkgs[pkg]
}

// Current reports whether vs, taken together, were the current
// releases of their packages at some point. If so, it returns the
// effective date of the newest of them.
//
// Each version must appear in the history, be effective by that date,
// and have no successor effective by that date. Unless one of vs is a
// beta, only GA releases are considered.
func (h *History) Current(vs ...Version) (date time.Time, ok bool) {
	if len(vs) == 0 {
		return time.Time{}, false
	}
	preview := slices.ContainsFunc(vs, Version.IsBeta)

	lists := make([][]Release, len(vs))
	pos := make([]int, len(vs))
	for i, v := range vs {
		rels := h.Releases(v.Package)
		if !preview {
			rels = slices.DeleteFunc(slices.Clone(rels), func(r Release) bool { return r.Version.IsBeta() })
		}
		j := slices.IndexFunc(rels, func(r Release) bool { return r.Version.Compare(v) == 0 })
		if j < 0 {
			return time.Time{}, false
		}
		lists[i], pos[i] = rels, j
		if e := rels[j].Effective; e.After(date) {
			date = e
		}
	}

	for i, rels := range lists {
		j := pos[i]
		if rels[j].Effective.After(date) {
			return time.Time{}, false
		}
		if j+1 < len(rels) && !rels[j+1].Effective.After(date) {
			return time.Time{}, false
		}
	}
	return date, true
}

// A Source lists the release tags of the SDK repository.
type Source interface {
	ListReleases(ctx context.Context) ([]Tag, error)
}

// A Fetcher fetches the release history from a Source at most once.
type Fetcher struct {
	Source  Source
	Logger  *slog.Logger
	Timeout time.Duration // 0 means no timeout

	once sync.Once
	h    *History
}

// History returns the release history, fetching it on the first call.
// If the fetch fails, the error is logged and History returns an empty
// history, so that nothing is considered a release.
func (f *Fetcher) History(ctx context.Context) *History {
	f.once.Do(func() {
		if f.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.Timeout)
			defer cancel()
		}
		tags, err := f.Source.ListReleases(ctx)
		if err != nil {
			logger := f.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.WarnContext(ctx, "cannot fetch release history", "err", err)
			tags = nil
		}
		f.h = NewHistory(tags)
	})
	return f.h
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"strings"
	"time"

	"github.com/storagebench/perfreport/benchsuite"
	"github.com/storagebench/perfreport/release"
)

// Meta names a report and orders it in the index.
type Meta struct {
	Name string
	// IsRelease is set if the report's versions were, together, the
	// current SDK release at some point.
	IsRelease bool
	// SortKey orders reports newest first.
	SortKey time.Time
}

// Filename returns the path of the report, relative to the site root.
func (m Meta) Filename() string {
	return "reports/" + strings.ReplaceAll(m.Name, " ", "_") + ".html"
}

// NewMeta names group g.
//
// If the group's versions were the current release according to h, the
// report is named after the release month, like "Feb 2023 GA Release".
// Otherwise a group of several suites is named after its versions, and
// a single suite after the content hash of its log.
func NewMeta(g *Group, h *release.History) Meta {
	var vs []release.Version
	for _, s := range []string{g.Versions.Core, g.Versions.StorageCommon, g.Versions.StorageBlobs} {
		v, ok := release.ParseVersion(s)
		if !ok {
			vs = nil
			break
		}
		vs = append(vs, v)
	}

	if vs != nil {
		if date, ok := h.Current(vs...); ok {
			kind := "GA"
			for _, v := range vs {
				if v.IsBeta() {
					kind = "Preview"
				}
			}
			return Meta{
				Name:      date.Format("Jan 2006") + " " + kind + " Release",
				IsRelease: true,
				SortKey:   date,
			}
		}
		if len(g.Suites) > 1 {
			var latest time.Time
			for _, s := range g.Suites {
				if s.Start.After(latest) {
					latest = s.Start
				}
			}
			return Meta{Name: g.Versions.String(), SortKey: latest}
		}
	}

	return Meta{Name: hashName(g.Suites), SortKey: g.Suites[0].Start}
}

// hashName joins the content hashes of the suites' logs.
func hashName(suites []*benchsuite.Suite) string {
	hashes := make([]string, len(suites))
	for i, s := range suites {
		hashes[i], _ = s.ContentHash()
	}
	return strings.Join(hashes, "-")
}

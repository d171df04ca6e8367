// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report turns benchmark suites into comparison reports.
//
// Suites that ran the same library versions are grouped, and each group
// becomes one report. A report shows, for every case and transfer
// configuration, the throughput of each transport and its percentage of
// the baseline transport's throughput.
package report

import "github.com/storagebench/perfreport/benchsuite"

// A Group is a set of suites that ran the same library versions.
type Group struct {
	Versions benchsuite.Versions
	Suites   []*benchsuite.Suite
}

// GroupSuites groups suites by library versions. Groups are ordered by
// the first appearance of their versions in suites, and each group
// keeps its suites in input order.
func GroupSuites(suites []*benchsuite.Suite) []*Group {
	var groups []*Group
	byVersions := make(map[benchsuite.Versions]*Group)
	for _, s := range suites {
		vs := s.Env.Versions()
		g := byVersions[vs]
		if g == nil {
			g = &Group{Versions: vs}
			byVersions[vs] = g
			groups = append(groups, g)
		}
		g.Suites = append(g.Suites, s)
	}
	return groups
}

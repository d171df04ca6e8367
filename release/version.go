// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package release tracks the published releases of the SDK packages
// whose versions a benchmark run reports, and decides whether a set of
// package versions was the current release at some point in time.
package release

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
)

// A Version is a package version such as "azure-core_1.8.0" or
// "azure-storage-blobs_12.6.0-beta.2".
type Version struct {
	Package             string
	Major, Minor, Patch int
	// Beta is the beta number, or 0 for a GA version.
	Beta int
}

var versionRE = regexp.MustCompile(`^(.+)_(\d+)\.(\d+)\.(\d+)(?:-beta\.(\d+))?$`)

// ParseVersion parses s as a package version. It reports false if s
// does not have the form name_major.minor.patch[-beta.N].
func ParseVersion(s string) (Version, bool) {
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	var v Version
	v.Package = m[1]
	var err error
	for i, p := range []*int{&v.Major, &v.Minor, &v.Patch} {
		if *p, err = strconv.Atoi(m[i+2]); err != nil {
			return Version{}, false
		}
	}
	if m[5] != "" {
		if v.Beta, err = strconv.Atoi(m[5]); err != nil || v.Beta == 0 {
			return Version{}, false
		}
	}
	return v, true
}

// IsBeta reports whether v is a preview version.
func (v Version) IsBeta() bool {
	return v.Beta != 0
}

// effectiveBeta orders GA versions after all betas of the same
// major.minor.patch.
func (v Version) effectiveBeta() int {
	if v.Beta == 0 {
		return int(^uint(0) >> 1)
	}
	return v.Beta
}

// Compare returns -1, 0, or +1 depending on whether v sorts before,
// the same as, or after w. Package names are not compared.
func (v Version) Compare(w Version) int {
	if c := cmp.Compare(v.Major, w.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, w.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Patch, w.Patch); c != 0 {
		return c
	}
	return cmp.Compare(v.effectiveBeta(), w.effectiveBeta())
}

func (v Version) String() string {
	s := fmt.Sprintf("%s_%d.%d.%d", v.Package, v.Major, v.Minor, v.Patch)
	if v.Beta != 0 {
		s += fmt.Sprintf("-beta.%d", v.Beta)
	}
	return s
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestParseVersion(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Version
		ok   bool
	}{
		{"azure-core_1.8.0", Version{"azure-core", 1, 8, 0, 0}, true},
		{"azure-storage-blobs_12.6.0-beta.2", Version{"azure-storage-blobs", 12, 6, 0, 2}, true},
		{"a_b_1.2.3", Version{"a_b", 1, 2, 3, 0}, true},
		{"azure-core_1.8", Version{}, false},
		{"azure-core_1.8.0-beta", Version{}, false},
		{"azure-core_1.8.0-beta.0", Version{}, false},
		{"1.8.0", Version{}, false},
		{"unknown", Version{}, false},
	} {
		got, ok := ParseVersion(test.in)
		if got != test.want || ok != test.ok {
			t.Errorf("ParseVersion(%q) = %+v, %v, want %+v, %v", test.in, got, ok, test.want, test.ok)
			continue
		}
		if ok && got.String() != test.in {
			t.Errorf("ParseVersion(%q).String() = %q", test.in, got.String())
		}
	}
}

func TestCompare(t *testing.T) {
	order := []string{
		"p_1.0.0-beta.1",
		"p_1.0.0-beta.2",
		"p_1.0.0-beta.10",
		"p_1.0.0",
		"p_1.0.1-beta.1",
		"p_1.0.1",
		"p_1.2.0",
		"p_1.10.0",
		"p_2.0.0",
	}
	for i, a := range order {
		for j, b := range order {
			va, _ := ParseVersion(a)
			vb, _ := ParseVersion(b)
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			if got := va.Compare(vb); got != want {
				t.Errorf("%s.Compare(%s) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestEffectiveDate(t *testing.T) {
	check := func(pub, want string) {
		t.Helper()
		p, _ := time.Parse(time.RFC3339, pub)
		w, _ := time.Parse(time.RFC3339, want)
		if got := EffectiveDate(p); !got.Equal(w) {
			t.Errorf("EffectiveDate(%s) = %s, want %s", pub, got, want)
		}
	}
	check("2023-01-05T10:00:00Z", "2023-01-01T00:00:00Z")
	check("2023-02-10T23:59:59Z", "2023-02-01T00:00:00Z")
	check("2023-02-27T00:00:00Z", "2023-03-01T00:00:00Z")
	check("2022-12-30T12:00:00Z", "2023-01-01T00:00:00Z")
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var testTags = []Tag{
	{"azure-core_1.0.0", day("2023-01-05")},
	{"azure-core_1.1.0", day("2023-02-10")},
	{"azure-storage-common_12.0.0", day("2022-11-02")},
	{"azure-storage-blobs_12.0.0", day("2022-11-02")},
	{"azure-storage-blobs_12.1.0-beta.1", day("2023-03-07")},
	{"azure-storage-blobs_12.1.0", day("2023-05-09")},
	{"azure-template_1.0.0-beta.1", day("2023-01-01")},
	{"not-a-version", day("2023-01-01")},
}

func mustVersions(names ...string) []Version {
	var vs []Version
	for _, n := range names {
		v, ok := ParseVersion(n)
		if !ok {
			panic("bad version " + n)
		}
		vs = append(vs, v)
	}
	return vs
}

func TestCurrent(t *testing.T) {
	h := NewHistory(testTags)
	check := func(want string, names ...string) {
		t.Helper()
		date, ok := h.Current(mustVersions(names...)...)
		got := "none"
		if ok {
			got = date.Format("2006-01-02")
		}
		if got != want {
			t.Errorf("Current(%v) = %s, want %s", names, got, want)
		}
	}

	// Core 1.1.0 (published Feb 10) is the newest and nothing newer
	// is effective by Feb 1.
	check("2023-02-01", "azure-core_1.1.0", "azure-storage-common_12.0.0", "azure-storage-blobs_12.0.0")
	// Core 1.0.0 was current in January, before 1.1.0.
	check("2023-01-01", "azure-core_1.0.0", "azure-storage-common_12.0.0", "azure-storage-blobs_12.0.0")
	// Blobs 12.1.0 (May) supersedes nothing else, but core 1.0.0 is
	// stale by May.
	check("none", "azure-core_1.0.0", "azure-storage-common_12.0.0", "azure-storage-blobs_12.1.0")
	check("2023-05-01", "azure-core_1.1.0", "azure-storage-common_12.0.0", "azure-storage-blobs_12.1.0")
	// A beta brings betas into consideration.
	check("2023-03-01", "azure-core_1.1.0", "azure-storage-common_12.0.0", "azure-storage-blobs_12.1.0-beta.1")
	// Unknown versions are never current.
	check("none", "azure-core_1.2.0", "azure-storage-common_12.0.0", "azure-storage-blobs_12.0.0")

	if _, ok := (*History)(nil).Current(mustVersions("azure-core_1.1.0")...); ok {
		t.Errorf("nil history reported a current version")
	}
	if n := len(h.Releases("azure-template")); n != 1 {
		t.Errorf("azure-template has %d releases, want 1", n)
	}
}

type fakeSource struct {
	tags  []Tag
	err   error
	calls int
}

func (f *fakeSource) ListReleases(ctx context.Context) ([]Tag, error) {
	f.calls++
	return f.tags, f.err
}

func TestFetcherOnce(t *testing.T) {
	src := &fakeSource{tags: testTags}
	f := &Fetcher{Source: src, Timeout: time.Second}
	h1 := f.History(context.Background())
	h2 := f.History(context.Background())
	if h1 != h2 || src.calls != 1 {
		t.Errorf("fetched %d times, histories equal %v", src.calls, h1 == h2)
	}
	if len(h1.Releases("azure-core")) != 2 {
		t.Errorf("azure-core releases = %v", h1.Releases("azure-core"))
	}
}

func TestFetcherError(t *testing.T) {
	f := &Fetcher{Source: &fakeSource{err: errors.New("rate limited")}}
	h := f.History(context.Background())
	if h == nil {
		t.Fatal("History returned nil")
	}
	if _, ok := h.Current(mustVersions("azure-core_1.1.0")...); ok {
		t.Errorf("empty history reported a current version")
	}
}

func TestGitHub(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/repos/Azure/azure-sdk-for-cpp/releases", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/Azure/azure-sdk-for-cpp/releases?page=2>; rel="next"`, srv.URL))
			fmt.Fprint(w, `[{"tag_name":"azure-core_1.1.0","published_at":"2023-02-10T00:00:00Z"},{"tag_name":"draft"}]`)
		case "2":
			fmt.Fprint(w, `[{"tag_name":"azure-core_1.0.0","published_at":"2023-01-05T00:00:00Z"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	g, err := NewGitHub(context.Background(), DefaultRepo, "")
	if err != nil {
		t.Fatal(err)
	}
	base, _ := url.Parse(srv.URL + "/")
	g.Client.BaseURL = base

	tags, err := g.ListReleases(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0].Name != "azure-core_1.1.0" || tags[1].Name != "azure-core_1.0.0" {
		t.Errorf("tags = %+v", tags)
	}
	if !tags[1].Published.Equal(day("2023-01-05")) {
		t.Errorf("published = %v", tags[1].Published)
	}

	if _, err := NewGitHub(context.Background(), "no-slash", ""); err == nil {
		t.Errorf("NewGitHub accepted a repository without owner")
	}
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/storagebench/perfreport/benchsuite"
	"github.com/storagebench/perfreport/release"
)

var testConfig = benchsuite.TransferConfig{BlobSize: 1024, NumBlobs: 100, Concurrency: 4}

// testSuite returns a suite comparing curl (baseline, 100ms) with
// winhttp (200ms) on one upload case.
func testSuite(core, common, blobs string, start time.Time, origin string) *benchsuite.Suite {
	return &benchsuite.Suite{
		Env: benchsuite.Environment{
			OS:                   "Ubuntu 22.04",
			Compiler:             "GNU 11.3.0",
			StorageAccount:       "Standard_LRS, StorageV2, eastus",
			VM:                   "Standard_D8s_v3, eastus, accelerated networking enabled",
			CoreVersion:          core,
			StorageCommonVersion: common,
			StorageBlobsVersion:  blobs,
		},
		Transports: []string{"curl", "winhttp"},
		Baseline:   "curl",
		CaseNames:  []string{"upload"},
		Configs:    []benchsuite.TransferConfig{testConfig},
		Cases: []*benchsuite.Case{
			{Name: "upload", Config: testConfig, Transport: "curl", TotalTimeMs: []int64{100, 100, 100}},
			{Name: "upload", Config: testConfig, Transport: "winhttp", TotalTimeMs: []int64{200, 200, 200}},
		},
		Repeat: 3,
		Start:  start,
		End:    start.Add(time.Minute),
		Origin: origin,
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const (
	core11   = "azure-core_1.1.0"
	common12 = "azure-storage-common_12.0.0"
	blobs12  = "azure-storage-blobs_12.0.0"
)

func TestGroupSuites(t *testing.T) {
	a := testSuite(core11, common12, blobs12, date("2023-02-13"), "a-111.log")
	b := testSuite("azure-core_1.0.0", common12, blobs12, date("2023-02-14"), "b-222.log")
	c := testSuite(core11, common12, blobs12, date("2023-02-15"), "c-333.log")

	groups := GroupSuites([]*benchsuite.Suite{a, b, c})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if g := groups[0]; len(g.Suites) != 2 || g.Suites[0] != a || g.Suites[1] != c {
		t.Errorf("first group = %v", g.Suites)
	}
	if g := groups[1]; len(g.Suites) != 1 || g.Suites[0] != b {
		t.Errorf("second group = %v", g.Suites)
	}
	want := benchsuite.Versions{Core: core11, StorageCommon: common12, StorageBlobs: blobs12}
	if groups[0].Versions != want {
		t.Errorf("versions = %v, want %v", groups[0].Versions, want)
	}
}

func TestNewMeta(t *testing.T) {
	h := release.NewHistory([]release.Tag{
		{Name: "azure-core_1.0.0", Published: date("2023-01-05")},
		{Name: "azure-core_1.1.0", Published: date("2023-02-10")},
		{Name: common12, Published: date("2022-11-02")},
		{Name: blobs12, Published: date("2022-11-02")},
		{Name: "azure-storage-blobs_12.1.0-beta.1", Published: date("2023-03-07")},
	})
	s1 := date("2023-02-20")
	s2 := date("2023-02-21")

	check := func(name string, suites []*benchsuite.Suite, want Meta) {
		t.Helper()
		got := NewMeta(GroupSuites(suites)[0], h)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: meta mismatch (-want +got):\n%s", name, diff)
		}
	}

	check("GA release",
		[]*benchsuite.Suite{testSuite(core11, common12, blobs12, s1, "x-aaa.log")},
		Meta{Name: "Feb 2023 GA Release", IsRelease: true, SortKey: date("2023-02-01")})
	check("preview release",
		[]*benchsuite.Suite{testSuite(core11, common12, "azure-storage-blobs_12.1.0-beta.1", s1, "x-aaa.log")},
		Meta{Name: "Mar 2023 Preview Release", IsRelease: true, SortKey: date("2023-03-01")})
	check("superseded version",
		[]*benchsuite.Suite{
			testSuite("azure-core_1.0.0", common12, "azure-storage-blobs_12.1.0-beta.1", s1, "x-aaa.log"),
			testSuite("azure-core_1.0.0", common12, "azure-storage-blobs_12.1.0-beta.1", s2, "x-bbb.log"),
		},
		Meta{Name: "azure-core_1.0.0 " + common12 + " azure-storage-blobs_12.1.0-beta.1", SortKey: s2})
	check("unreleased single suite",
		[]*benchsuite.Suite{testSuite("azure-core_9.9.9", common12, blobs12, s1, "https://h/raw-log/2023-02-20T00:00:00Z-3f2a9c.log")},
		Meta{Name: "3f2a9c", SortKey: s1})
	check("unparsed versions",
		[]*benchsuite.Suite{
			testSuite("dev", "dev", "dev", s2, "x-aaa.log"),
			testSuite("dev", "dev", "dev", s1, "x-bbb.log"),
		},
		Meta{Name: "aaa-bbb", SortKey: s2})
}

func TestFilename(t *testing.T) {
	m := Meta{Name: "Feb 2023 GA Release"}
	if got := m.Filename(); got != "reports/Feb_2023_GA_Release.html" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestBuildTable(t *testing.T) {
	s := testSuite(core11, common12, blobs12, date("2023-02-13"), "x.log")
	tab := BuildTable(s)
	if tab.Baseline != "curl" || len(tab.Others) != 1 || tab.Others[0] != "winhttp" {
		t.Fatalf("transports = %s, %v", tab.Baseline, tab.Others)
	}
	if len(tab.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(tab.Rows))
	}
	row := tab.Rows[0]
	if row.Case != "upload" || row.CaseSpan != 1 || row.BlobSize != "1 KiB" || row.NumBlobs != 100 || row.Concurrency != 4 {
		t.Errorf("row = %+v", row)
	}
	if row.Baseline.Value != "1000 KiB/s" || row.Baseline.Percent != "" || row.Baseline.Detail != "100ms, 100ms, 100ms; 0.000" {
		t.Errorf("baseline cell = %+v", row.Baseline)
	}
	if c := row.Others[0]; c.Value != "500 KiB/s" || c.Percent != "50.0%" {
		t.Errorf("winhttp cell = %+v", c)
	}
}

func TestBuildTableRowSpan(t *testing.T) {
	s := testSuite(core11, common12, blobs12, date("2023-02-13"), "x.log")
	tc2 := benchsuite.TransferConfig{BlobSize: 1 << 20, NumBlobs: 1, Concurrency: 1}
	s.CaseNames = []string{"upload", "download"}
	s.Configs = append(s.Configs, tc2)
	var spans []int
	for _, row := range BuildTable(s).Rows {
		spans = append(spans, row.CaseSpan)
	}
	if diff := cmp.Diff([]int{2, 0, 2, 0}, spans); diff != "" {
		t.Errorf("case spans mismatch (-want +got):\n%s", diff)
	}
	// Cases missing from the suite render as n/a.
	row := BuildTable(s).Rows[1]
	if row.Baseline.Value != "n/a" || row.Others[0].Percent != "n/a" || row.Baseline.Detail != "no samples" {
		t.Errorf("missing case row = %+v", row)
	}
}

func TestVolatileMarker(t *testing.T) {
	check := func(ms []int64, want string) {
		t.Helper()
		s := testSuite(core11, common12, blobs12, date("2023-02-13"), "x.log")
		s.Cases[0].TotalTimeMs = ms
		if got := BuildTable(s).Rows[0].Baseline.Value; got != want {
			t.Errorf("%v: value = %q, want %q", ms, got, want)
		}
	}
	check([]int64{65, 135}, "1000 KiB/s*")
	check([]int64{71, 129}, "1000 KiB/s")
}

func TestWriteText(t *testing.T) {
	s := testSuite(core11, common12, blobs12, date("2023-02-13"), "https://h/raw-log/run-abc.log")
	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"baseline(curl)",
		"% of baseline",
		"upload",
		"1000 KiB/s",
		"50.0%",
		"versions: " + core11 + " " + common12 + " " + blobs12,
		"log: run-abc.log",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestChart(t *testing.T) {
	s := testSuite(core11, common12, blobs12, date("2023-02-13"), "x.log")
	png, err := Chart(BuildTable(s))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("Chart did not return a PNG image")
	}
}

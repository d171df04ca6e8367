// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchsuite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// logBuilder writes synthetic benchmark logs.
type logBuilder struct {
	sb strings.Builder
	t  time.Time
}

func newLogBuilder() *logBuilder {
	return &logBuilder{t: time.Date(2023, 2, 13, 8, 30, 1, 0, time.UTC)}
}

func (b *logBuilder) line(format string, args ...any) *logBuilder {
	b.t = b.t.Add(1500 * time.Microsecond)
	fmt.Fprintf(&b.sb, "[%s] [info] %s\n", b.t.Format("2006-01-02 15:04:05.000000"), fmt.Sprintf(format, args...))
	return b
}

func (b *logBuilder) String() string { return b.sb.String() }

// header writes the environment lines of a log.
func (b *logBuilder) header() *logBuilder {
	return b.line("started").
		line("using storage account: perfacct").
		line("Azure VM resource ID: /subscriptions/s/resourceGroups/g/providers/Microsoft.Compute/virtualMachines/vm1").
		line("OS: Ubuntu 22.04").
		line("compiler: GNU 11.3.0").
		line("azure-core-cpp version: azure-core_1.8.0").
		line("azure-storage-common-cpp version: azure-storage-common_12.3.0").
		line("azure-storage-blobs-cpp version: azure-storage-blobs_12.6.0")
}

// synthLog returns a complete log with the given shape.
func synthLog(cases []string, configs []TransferConfig, transports []string, baseline string, repeat int) string {
	b := newLogBuilder().header()
	b.line("transports: %s", strings.Join(transports, ", "))
	b.line("baseline transport: %s", baseline)
	b.line("benchmark cases: %s", strings.Join(cases, ", "))
	for i, tc := range configs {
		b.line("transfer config %d: blob size: %d bytes, number of blobs: %d, concurrency: %d", i+1, tc.BlobSize, tc.NumBlobs, tc.Concurrency)
	}
	b.line("repeat times: %d", repeat)
	ms := 100
	for r := 0; r < repeat; r++ {
		for _, c := range cases {
			for _, tc := range configs {
				for _, tr := range transports {
					ms++
					b.line("%s used %dms to %s %d %d-byte blobs with %d threads", tr, ms, c, tc.NumBlobs, tc.BlobSize, tc.Concurrency)
				}
			}
		}
	}
	b.line("this line is ignored")
	b.line("exited")
	return b.String()
}

type fakeResolver struct{}

func (fakeResolver) StorageAccount(ctx context.Context, name string) string {
	return "Standard_LRS, StorageV2, eastus (" + name + ")"
}

func (fakeResolver) VirtualMachine(ctx context.Context, id string) string {
	return "unknown"
}

var testConfigs = []TransferConfig{
	{BlobSize: 10240, NumBlobs: 5000, Concurrency: 32},
	{BlobSize: 1 << 30, NumBlobs: 16, Concurrency: 8},
}

func TestParseComplete(t *testing.T) {
	cases := []string{"upload", "download to memory", "list"}
	transports := []string{"curl", "winhttp"}
	const repeat = 4
	log := synthLog(cases, testConfigs, transports, "curl", repeat)

	s, err := Parse(context.Background(), strings.NewReader(log), "https://acct.blob.core.windows.net/raw-log/2023-02-13T08:30:01Z-3f2a9c.log", fakeResolver{})
	if err != nil {
		t.Fatal(err)
	}

	if want := len(cases) * len(testConfigs) * len(transports); len(s.Cases) != want {
		t.Fatalf("got %d cases, want %d", len(s.Cases), want)
	}
	i := 0
	for _, name := range cases {
		for _, tc := range testConfigs {
			for _, tr := range transports {
				c := s.Cases[i]
				if c.Name != name || c.Config != tc || c.Transport != tr {
					t.Errorf("case %d = %s/%+v/%s, want %s/%+v/%s", i, c.Name, c.Config, c.Transport, name, tc, tr)
				}
				if len(c.TotalTimeMs) != repeat {
					t.Errorf("case %d has %d samples, want %d", i, len(c.TotalTimeMs), repeat)
				}
				i++
			}
		}
	}

	wantEnv := Environment{
		OS:                   "Ubuntu 22.04",
		Compiler:             "GNU 11.3.0",
		StorageAccount:       "Standard_LRS, StorageV2, eastus (perfacct)",
		VM:                   "unknown",
		CoreVersion:          "azure-core_1.8.0",
		StorageCommonVersion: "azure-storage-common_12.3.0",
		StorageBlobsVersion:  "azure-storage-blobs_12.6.0",
	}
	if diff := cmp.Diff(wantEnv, s.Env); diff != "" {
		t.Errorf("environment mismatch (-want +got):\n%s", diff)
	}
	if !s.Start.Before(s.End) {
		t.Errorf("start %v not before end %v", s.Start, s.End)
	}
	if s.Repeat != repeat {
		t.Errorf("Repeat = %d, want %d", s.Repeat, repeat)
	}
	if got := s.Case("list", testConfigs[1], "winhttp"); got == nil || got.TotalTimeMs[0] != 112 {
		t.Errorf("Case(list, config 2, winhttp) = %+v", got)
	}
	if h, ok := s.ContentHash(); !ok || h != "3f2a9c" {
		t.Errorf("ContentHash() = %q, %v", h, ok)
	}
}

func TestParseBaselineFirst(t *testing.T) {
	log := synthLog([]string{"upload"}, testConfigs[:1], []string{"A", "B", "C"}, "B", 3)
	s, err := Parse(context.Background(), strings.NewReader(log), "x.log", nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"B", "A", "C"}, s.Transports); diff != "" {
		t.Errorf("transports mismatch (-want +got):\n%s", diff)
	}
	if s.Baseline != "B" {
		t.Errorf("Baseline = %q, want B", s.Baseline)
	}
	// Without a resolver the raw values are kept.
	if s.Env.StorageAccount != "perfacct" {
		t.Errorf("StorageAccount = %q, want perfacct", s.Env.StorageAccount)
	}
}

func TestParseErrors(t *testing.T) {
	good := synthLog([]string{"upload"}, testConfigs[:1], []string{"curl", "winhttp"}, "curl", 3)
	lines := strings.SplitAfter(good, "\n")

	// without returns good with the first line containing substr removed.
	without := func(substr string) string {
		var sb strings.Builder
		done := false
		for _, l := range lines {
			if !done && strings.Contains(l, substr) {
				done = true
				continue
			}
			sb.WriteString(l)
		}
		return sb.String()
	}
	// replace returns good with old replaced by new once.
	replace := func(old, new string) string {
		return strings.Replace(good, old, new, 1)
	}

	check := func(name, log string, kind ErrorKind, line int) {
		t.Helper()
		s, err := Parse(context.Background(), strings.NewReader(log), "test.log", nil)
		if err == nil {
			t.Errorf("%s: Parse succeeded with %d cases, want error", name, len(s.Cases))
			return
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: error %v is not a *ParseError", name, err)
			return
		}
		if pe.Kind != kind {
			t.Errorf("%s: kind = %v, want %v (%v)", name, pe.Kind, kind, err)
		}
		if line >= 0 && pe.Line != line {
			t.Errorf("%s: line = %d, want %d", name, pe.Line, line)
		}
		if pe.FileName != "test.log" {
			t.Errorf("%s: file name = %q", name, pe.FileName)
		}
	}

	check("malformed", replace("[info] OS:", "[INFO] OS:"), MalformedLogLine, 4)
	check("out of order", replace("transfer config 1:", "transfer config 2:"), OutOfOrderConfigDeclaration, 12)
	check("unmatched", replace("curl used 101ms to upload 5000", "curl used 101ms to upload 4999"), UnmatchedTimingSample, -1)
	check("missing sample", without(" used "), IncompleteSuite, 0)
	check("missing OS", without("OS: "), IncompleteSuite, 0)
	check("missing VM", without("Azure VM resource ID: "), IncompleteSuite, 0)
	check("missing baseline", without("baseline transport: "), IncompleteSuite, 0)
	check("missing repeat", without("repeat times: "), UnmatchedTimingSample, -1)
	check("unknown baseline", replace("baseline transport: curl", "baseline transport: http2"), InconsistentDeclaration, -1)
	check("repeat twice", replace("[info] exited", "[info] repeat times: 3"), InconsistentDeclaration, -1)
	check("empty", "", IncompleteSuite, 0)
}

func TestParseNoRepeat(t *testing.T) {
	log := newLogBuilder().header().
		line("transports: curl").
		line("baseline transport: curl").
		line("exited").String()
	_, err := Parse(context.Background(), strings.NewReader(log), "x.log", nil)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != IncompleteSuite || !strings.Contains(pe.Msg, "repeat") {
		t.Errorf("Parse error = %v, want missing repeat times", err)
	}
}

func TestLogName(t *testing.T) {
	for _, test := range []struct {
		origin, name, hash string
		ok                 bool
	}{
		{"https://a.blob.core.windows.net/raw-log/2023-02-13T08:30:01Z-3f2a9c.log", "2023-02-13T08:30:01Z-3f2a9c.log", "3f2a9c", true},
		{"/tmp/logs/run-abc123.log", "run-abc123.log", "abc123", true},
		{`C:\logs\run.log`, "run.log", "run.log", false},
		{"plain.txt", "plain.txt", "plain.txt", false},
	} {
		s := &Suite{Origin: test.origin}
		if got := s.LogName(); got != test.name {
			t.Errorf("LogName(%q) = %q, want %q", test.origin, got, test.name)
		}
		h, ok := s.ContentHash()
		if h != test.hash || ok != test.ok {
			t.Errorf("ContentHash(%q) = %q, %v, want %q, %v", test.origin, h, ok, test.hash, test.ok)
		}
	}
}

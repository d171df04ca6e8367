// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"regexp"
	"strconv"
	"strings"
)

// A Message is the decoded form of a log line's message text. It is
// one of the message types in this file.
type Message interface {
	isMessage()
}

// Started marks the beginning of a benchmark run.
type Started struct{}

// Exited marks the end of a benchmark run.
type Exited struct{}

// StorageAccount names the storage account the run used.
type StorageAccount struct{ Name string }

// VMResource gives the resource ID of the VM the run executed on.
type VMResource struct{ ID string }

// OSInfo describes the operating system of the benchmark host.
type OSInfo struct{ Value string }

// CompilerInfo describes the compiler the harness was built with.
type CompilerInfo struct{ Value string }

// A Component identifies one of the SDK libraries whose version the
// harness reports.
type Component int

const (
	Core Component = iota
	StorageCommon
	StorageBlobs
)

func (c Component) String() string {
	switch c {
	case Core:
		return "azure-core-cpp"
	case StorageCommon:
		return "azure-storage-common-cpp"
	case StorageBlobs:
		return "azure-storage-blobs-cpp"
	}
	return "Component(" + strconv.Itoa(int(c)) + ")"
}

// LibraryVersion reports the version of one SDK component.
type LibraryVersion struct {
	Component Component
	Version   string
}

// Transports lists the transports under test, in declaration order.
type Transports struct{ Names []string }

// BaselineTransport names the transport others are compared against.
type BaselineTransport struct{ Name string }

// BenchmarkCases lists the benchmark case names, in declaration order.
type BenchmarkCases struct{ Names []string }

// TransferConfig declares the Index'th (1-based) transfer configuration.
type TransferConfig struct {
	Index       int
	BlobSize    int64
	NumBlobs    int
	Concurrency int
}

// RepeatTimes declares how many times every case is run.
type RepeatTimes struct{ N int }

// Timing is the result of one run of one case.
type Timing struct {
	Transport   string
	TotalMs     int64
	Case        string
	NumBlobs    int
	BlobSize    int64
	Concurrency int
}

func (Started) isMessage()           {}
func (Exited) isMessage()            {}
func (StorageAccount) isMessage()    {}
func (VMResource) isMessage()        {}
func (OSInfo) isMessage()            {}
func (CompilerInfo) isMessage()      {}
func (LibraryVersion) isMessage()    {}
func (Transports) isMessage()        {}
func (BaselineTransport) isMessage() {}
func (BenchmarkCases) isMessage()    {}
func (TransferConfig) isMessage()    {}
func (RepeatTimes) isMessage()       {}
func (Timing) isMessage()            {}

var (
	transferConfigRE = regexp.MustCompile(`^tr?ansfer config (\d+): blob size: (\d+) bytes, number of blobs: (\d+), concurrency: (\d+)$`)
	timingRE         = regexp.MustCompile(`^(.+) used (\d+)ms to (.+) (\d+) (\d+)-byte blobs with (\d+) threads$`)
)

// keyed maps a message prefix to the decoder for the text after it.
// No prefix is a prefix of another, so at most one entry applies to a
// message.
var keyed = []struct {
	prefix string
	decode func(rest string) Message
}{
	{"using storage account: ", func(s string) Message { return StorageAccount{s} }},
	{"Azure VM resource ID: ", func(s string) Message { return VMResource{s} }},
	{"OS: ", func(s string) Message { return OSInfo{s} }},
	{"compiler: ", func(s string) Message { return CompilerInfo{s} }},
	{"azure-core-cpp version: ", func(s string) Message { return LibraryVersion{Core, s} }},
	{"azure-storage-common-cpp version: ", func(s string) Message { return LibraryVersion{StorageCommon, s} }},
	{"azure-storage-blobs-cpp version: ", func(s string) Message { return LibraryVersion{StorageBlobs, s} }},
	{"transports: ", func(s string) Message { return Transports{splitList(s)} }},
	{"baseline transport: ", func(s string) Message { return BaselineTransport{s} }},
	{"benchmark cases: ", func(s string) Message { return BenchmarkCases{splitList(s)} }},
	{"repeat times: ", decodeRepeatTimes},
}

// Classify decodes message text. It returns nil for messages it does
// not recognize; callers should ignore those so that the harness can
// add new log lines.
//
// Keyword messages are matched by prefix before the free-form timing
// grammar is tried, so a message is never classified two ways.
func Classify(msg string) Message {
	switch msg {
	case "started":
		return Started{}
	case "exited":
		return Exited{}
	}
	for _, k := range keyed {
		if rest, ok := strings.CutPrefix(msg, k.prefix); ok {
			if rest == "" {
				return nil
			}
			return k.decode(rest)
		}
	}
	if strings.HasPrefix(msg, "transfer config ") || strings.HasPrefix(msg, "tansfer config ") {
		return decodeTransferConfig(msg)
	}
	return decodeTiming(msg)
}

func decodeRepeatTimes(s string) Message {
	n, ok := atoi(s)
	if !ok {
		return nil
	}
	return RepeatTimes{n}
}

func decodeTransferConfig(msg string) Message {
	m := transferConfigRE.FindStringSubmatch(msg)
	if m == nil {
		return nil
	}
	idx, ok1 := atoi(m[1])
	size, ok2 := atoi64(m[2])
	num, ok3 := atoi(m[3])
	conc, ok4 := atoi(m[4])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	return TransferConfig{Index: idx, BlobSize: size, NumBlobs: num, Concurrency: conc}
}

func decodeTiming(msg string) Message {
	m := timingRE.FindStringSubmatch(msg)
	if m == nil {
		return nil
	}
	ms, ok1 := atoi64(m[2])
	num, ok2 := atoi(m[4])
	size, ok3 := atoi64(m[5])
	conc, ok4 := atoi(m[6])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	return Timing{
		Transport:   m[1],
		TotalMs:     ms,
		Case:        m[3],
		NumBlobs:    num,
		BlobSize:    size,
		Concurrency: conc,
	}
}

// splitList splits a comma-separated list and trims each element.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func atoi(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func atoi64(s string) (int64, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

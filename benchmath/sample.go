// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchmath computes the summary statistics reported for
// repeated timing measurements of a benchmark case.
//
// The central value of a sample is its trimmed mean: the mean after
// discarding the single smallest and single largest measurement. The
// volatility of a sample is its coefficient of variation over all
// measurements.
package benchmath

import (
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"
)

// VolatileCV is the coefficient of variation above which a sample is
// considered too noisy to be trusted.
const VolatileCV = 0.3

// A Sample is a set of repeated measurements of a given benchmark.
type Sample struct {
	// Values are the measured values, in ascending order.
	Values []float64
}

// NewSample constructs a Sample from a set of measurements. values is
// not modified.
func NewSample(values []float64) *Sample {
	vs := slices.Clone(values)
	slices.Sort(vs)
	return &Sample{vs}
}

// NewSampleMs constructs a Sample from millisecond timings.
func NewSampleMs(ms []int64) *Sample {
	vs := make([]float64, len(ms))
	for i, v := range ms {
		vs[i] = float64(v)
	}
	slices.Sort(vs)
	return &Sample{vs}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// trimmed returns s without its smallest and largest value. Samples
// with fewer than three values are not trimmed.
func (s *Sample) trimmed() stats.Sample {
	if len(s.Values) < 3 {
		return s.sample()
	}
	return stats.Sample{Xs: s.Values[1 : len(s.Values)-1], Sorted: true}
}

// A Summary summarizes a Sample.
type Summary struct {
	// N is the number of measurements.
	N int

	// Mean is the mean of all measurements.
	Mean float64

	// TrimmedMean is the mean without the smallest and largest
	// measurement, or the plain mean if N < 3.
	TrimmedMean float64

	// StdDev is the population standard deviation of all
	// measurements.
	StdDev float64

	// CV is StdDev / Mean.
	CV float64
}

// Summarize computes the Summary of s. All fields other than N are NaN
// if s is empty.
func (s *Sample) Summarize() Summary {
	n := len(s.Values)
	if n == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, TrimmedMean: nan, StdDev: nan, CV: nan}
	}
	all := s.sample()
	sum := Summary{
		N:           n,
		Mean:        all.Mean(),
		TrimmedMean: s.trimmed().Mean(),
	}
	// stats.Sample.Variance is the unbiased sample variance.
	sum.StdDev = math.Sqrt(all.Variance() * float64(n-1) / float64(n))
	if sum.Mean != 0 {
		sum.CV = sum.StdDev / sum.Mean
	}
	return sum
}

// Volatile reports whether the coefficient of variation of s exceeds
// VolatileCV.
func (s Summary) Volatile() bool {
	return s.CV > VolatileCV
}

// Throughput returns the transfer rate in bytes per second of moving
// bytes in the summary's trimmed mean time, taken to be milliseconds.
func (s Summary) Throughput(bytes int64) float64 {
	if s.N == 0 {
		return math.NaN()
	}
	return float64(bytes) * 1000 / s.TrimmedMean
}

// Percent returns v as a percentage of base.
func Percent(v, base float64) float64 {
	return v / base * 100
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit formats benchmark quantities for display.
package benchunit

import (
	"math"
	"strconv"
)

// iecPrefixes are the binary prefixes FormatBytes steps through before
// giving up and labeling the remainder "YiB".
var iecPrefixes = []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi"}

// FormatBytes formats a byte quantity using binary prefixes. For
// example, FormatBytes(1536) returns "1.5 KiB".
//
// val need not be integral; it is typically a derived rate. The value
// is divided by 1024 while its magnitude is at least 1024, so negative
// values scale the same way as positive ones. Values of 1024 ZiB and
// beyond are printed in YiB without further division.
func FormatBytes(val float64) string {
	for _, p := range iecPrefixes {
		if math.Abs(val) < 1024 {
			return formatG(val) + " " + p + "B"
		}
		val /= 1024
	}
	return formatG(val) + " YiB"
}

// FormatRate formats a bytes-per-second rate, such as "12.5 MiB/s".
func FormatRate(bytesPerSec float64) string {
	return FormatBytes(bytesPerSec) + "/s"
}

// formatG formats val with at most six significant digits, dropping
// trailing zeros, like C's %g.
func formatG(val float64) string {
	buf := make([]byte, 0, 16)
	buf = strconv.AppendFloat(buf, val, 'g', 6, 64)
	return string(buf)
}

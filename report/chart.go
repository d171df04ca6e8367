// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const chartDPI = 96

// Chart draws the throughput of every transport in t as a grouped bar
// chart and returns it as a PNG image. It returns nil if t has no rows.
func Chart(t *Table) ([]byte, error) {
	if len(t.Rows) == 0 {
		return nil, nil
	}
	transports := append([]string{t.Baseline}, t.Others...)

	pl := plot.New()
	pl.Y.Label.Text = "throughput (MiB/s)"
	pl.Y.Min = 0
	pl.Legend.Top = true

	w := vg.Points(10)
	for i, tr := range transports {
		vals := make(plotter.Values, len(t.Rows))
		for j, row := range t.Rows {
			c := row.Baseline
			if i > 0 {
				c = row.Others[i-1]
			}
			v := c.Throughput / (1 << 20)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			vals[j] = v
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		// Center the group of bars on the tick.
		bars.Offset = w * vg.Length(2*i-len(transports)+1) / 2
		pl.Add(bars)
		pl.Legend.Add(tr, bars)
	}

	labels := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		labels[i] = fmt.Sprintf("%s\n%s x %d\nc=%d", row.Case, row.BlobSize, row.NumBlobs, row.Concurrency)
	}
	pl.NominalX(labels...)

	width := vg.Length(max(len(t.Rows)*(len(transports)+1), 12)) * w * 2
	can := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, 10*vg.Centimeter),
		vgimg.UseDPI(chartDPI), vgimg.UseBackgroundColor(color.White))}
	pl.Draw(draw.New(can))
	var buf bytes.Buffer
	if _, err := can.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// chartURL returns Chart(t) as a data URL, or "" if there is nothing
// to draw.
func chartURL(t *Table) (template.URL, error) {
	png, err := Chart(t)
	if err != nil || png == nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

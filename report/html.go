// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"html/template"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/storagebench/perfreport/benchsuite"
)

const (
	// Title is the title of a report document.
	Title = "Benchmarking Report"
	// IndexTitle is the title of the index document.
	IndexTitle = "Azure Storage C++ SDK Benchmarking Reports"
)

var htmlFuncs = template.FuncMap{
	"utc": formatUTC,
	"filename": Meta.Filename,
}

// formatUTC formats t in UTC with six fractional digits, or none if t
// falls on a whole second.
func formatUTC(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}

var htmlTemplate = template.Must(template.New("").Funcs(htmlFuncs).Parse(`
{{- define "head" -}}
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.}}</title>
<link href="/styles/table.css" rel="stylesheet" type="text/css">
</head>
{{- end -}}

{{- define "report" -}}
{{template "head" .Title}}
<body>
{{- range $i, $s := .Suites}}
{{- if $i}}
<br><hr><br>
{{- end}}
<table>
<thead>
<tr><th></th><th>blob size</th><th>number of blobs</th><th>concurrency</th><th>baseline({{.Table.Baseline}})</th>
{{- range .Table.Others}}<th>{{.}}</th><th>% of baseline</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{if .CaseSpan}}<td rowspan="{{.CaseSpan}}">{{.Case}}</td>{{end -}}
<td>{{.BlobSize}}</td><td>{{.NumBlobs}}</td><td>{{.Concurrency}}</td>
{{- with .Baseline}}<td title="{{.Detail}}">{{.Value}}</td>{{end}}
{{- range .Others}}<td title="{{.Detail}}">{{.Value}}</td><td>{{.Percent}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- with .Chart}}
<img class="chart" src="{{.}}" alt="throughput chart">
{{- end}}
<ul>
<li>Azure Storage account: {{.Env.StorageAccount}}</li>
<li>Azure VM: {{.Env.VM}}</li>
<li>OS: {{.Env.OS}}</li>
<li>compiler: {{.Env.Compiler}}</li>
<li>library version:<ul>
<li>{{.Env.CoreVersion}}</li>
<li>{{.Env.StorageCommonVersion}}</li>
<li>{{.Env.StorageBlobsVersion}}</li>
</ul></li>
<li>benchmarking started at {{utc .Start}} UTC, ended at {{utc .End}} UTC</li>
<li>raw log:<a href="{{.Origin}}">{{.LogName}}</a></li>
</ul>
{{- end}}
</body>
</html>
{{end -}}

{{- define "index" -}}
{{template "head" .Title}}
<body>
{{- range .Releases}}
<a href="{{filename .}}">{{.Name}}</a><br>
{{- end}}
<br><hr><br>
{{- range .Others}}
<a href="{{filename .}}">{{.Name}}</a><br>
{{- end}}
</body>
</html>
{{end -}}
`))

// A Report is an HTML document comparing the transports of one or more
// suites.
type Report struct {
	Title  string
	Suites []*benchsuite.Suite
	// Charts adds a throughput chart under each table. A chart that
	// cannot be drawn is logged and left out.
	Charts bool
	Logger *slog.Logger
}

type suiteView struct {
	*benchsuite.Suite
	Table *Table
	Chart template.URL
}

// WriteHTML renders r to w.
func (r *Report) WriteHTML(w io.Writer) error {
	data := struct {
		Title  string
		Suites []suiteView
	}{Title: r.Title}
	for _, s := range r.Suites {
		v := suiteView{Suite: s, Table: BuildTable(s)}
		if r.Charts {
			var err error
			if v.Chart, err = chartURL(v.Table); err != nil {
				logger := r.Logger
				if logger == nil {
					logger = slog.Default()
				}
				logger.Warn("omitting chart", "source", s.Origin, "err", err)
				v.Chart = ""
			}
		}
		data.Suites = append(data.Suites, v)
	}
	return htmlTemplate.ExecuteTemplate(w, "report", data)
}

// WriteHTML writes a report of suites, with charts, to w.
func WriteHTML(w io.Writer, title string, suites []*benchsuite.Suite) error {
	r := &Report{Title: title, Suites: suites, Charts: true}
	return r.WriteHTML(w)
}

// WriteIndex writes the index of the reports described by metas to w.
// Release reports are listed first. Each list is ordered newest first.
func WriteIndex(w io.Writer, metas []Meta) error {
	releases, others := lo.FilterReject(metas, func(m Meta, _ int) bool { return m.IsRelease })
	newestFirst := func(a, b Meta) int { return b.SortKey.Compare(a.SortKey) }
	slices.SortStableFunc(releases, newestFirst)
	slices.SortStableFunc(others, newestFirst)
	return htmlTemplate.ExecuteTemplate(w, "index", struct {
		Title            string
		Releases, Others []Meta
	}{IndexTitle, releases, others})
}

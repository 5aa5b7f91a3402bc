// Package export renders compiled report documents into shareable artifacts.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/atinyakov/healthmate/internal/analytics"
)

// HTMLContentType is the media type of RenderHTML output.
const HTMLContentType = "text/html; charset=utf-8"

//go:embed templates/report.html.tmpl
var reportTemplate string

//go:embed templates/preview.html.tmpl
var previewTemplate string

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("January 2, 2006") },
	"datetime": func(t time.Time) string {
		return t.Format("01/02/2006 15:04")
	},
	"temp": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"value": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"average": func(avg *analytics.Averages, vt string) string {
		return analytics.FormatAverage(avg, analytics.VitalType(vt))
	},
}

var (
	reportHTML  = template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate))
	previewHTML = template.Must(template.New("preview").Funcs(funcs).Parse(previewTemplate))
)

// RenderHTML renders the full report document.
func RenderHTML(doc analytics.ReportDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportHTML.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPreviewHTML renders the redacted document served to share-link readers.
func RenderPreviewHTML(doc analytics.SharePreviewDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewHTML.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render preview html: %w", err)
	}
	return buf.Bytes(), nil
}

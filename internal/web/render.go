package web

import (
	"embed"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ayush/research-intelligence/internal/research"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	research.Snapshot
	Submitting  bool
	ReportReady bool
	Report      template.HTML
}

// reportPolicy keeps the report's structure and styling classes but strips
// scripts, event handlers and other active content.
func reportPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}

// reportRenderer turns the service's report fragment into trusted template
// HTML. With a nil policy the fragment is rendered verbatim.
type reportRenderer struct {
	policy *bluemonday.Policy
}

func (rr reportRenderer) render(fragment string) template.HTML {
	if rr.policy == nil {
		return template.HTML(fragment)
	}
	return template.HTML(rr.policy.Sanitize(fragment))
}

func (rr reportRenderer) page(snap research.Snapshot) pageData {
	d := pageData{
		Snapshot:    snap,
		Submitting:  snap.State == research.Submitting,
		ReportReady: snap.State == research.ReportReady,
	}
	if d.ReportReady {
		d.Report = rr.render(snap.ReportContent)
	}
	return d
}

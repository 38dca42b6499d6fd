package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"bankdash/internal/pkg/model"
)

// Page represents the dashboard page: a header with KPI figures and filter
// state, followed by all charts.
//
// A [Page] knows how to [Page.Render] as HTML.
type Page struct {
	Title  string
	Header *Header
	Charts []*Chart
}

// Header is the page section above the charts: title, description, the KPI
// strip and the filter controls.
//
// When FormAction is set, the filter controls render as a live form
// submitting back to that URL. Static exports leave it empty and show the
// active selection as plain text.
type Header struct {
	Title       string
	Description string
	Rows        int
	KPIs        []model.KPI
	Filters     []model.FilterControl
	FormAction  string
	AllValue    string
}

// NewPage creates a new page with the given title.
func NewPage(title string) *Page {
	return &Page{
		Title: title,
	}
}

// AddChart adds a chart to the page.
func (p *Page) AddChart(c *Chart) {
	p.Charts = append(p.Charts, c)
}

// Render writes the page HTML to the given writer.
//
// The go-echarts page renderer produces a complete document. The header
// fragment is injected right after the opening body tag.
func (p *Page) Render(w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.SetPageTitle(p.Title)

	for _, c := range p.Charts {
		page.AddCharts(c.Build())
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	if p.Header == nil {
		_, err := w.Write(buf.Bytes())

		return err
	}

	var header bytes.Buffer
	if err := headerTemplate.Execute(&header, p.Header); err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	doc := strings.Replace(buf.String(), "<body>", "<body>\n"+header.String(), 1)
	_, err := w.Write([]byte(doc))

	return err
}

var headerTemplate = template.Must(template.New("header").Parse(`
<style>
.dash-header { font-family: sans-serif; margin: 12px 24px; }
.dash-header h1 { margin-bottom: 4px; }
.dash-header .description { color: #555; }
.dash-kpis { display: flex; gap: 16px; margin: 16px 0; flex-wrap: wrap; }
.dash-kpi { border: 1px solid #ddd; border-radius: 6px; padding: 12px 20px; min-width: 160px; }
.dash-kpi .label { font-size: 13px; color: #777; }
.dash-kpi .value { font-size: 24px; font-weight: bold; }
.dash-filters { margin: 8px 0; }
.dash-filters label { margin-right: 12px; }
</style>
<div class="dash-header">
  <h1>{{ .Title }}</h1>
  {{ if .Description }}<p class="description">{{ .Description }}</p>{{ end }}
  <div class="dash-filters">
    {{ if .FormAction }}
    <form method="get" action="{{ .FormAction }}">
      {{ range .Filters }}
      <label>{{ .Title }}
        <select name="{{ .Field }}">
          <option value="{{ $.AllValue }}">{{ $.AllValue }}</option>
          {{ $selected := .Selected }}
          {{ range .Options }}
          <option value="{{ . }}"{{ if eq . $selected }} selected{{ end }}>{{ . }}</option>
          {{ end }}
        </select>
      </label>
      {{ end }}
      <button type="submit">Apply</button>
    </form>
    {{ else }}
    {{ range .Filters }}<label>{{ .Title }}: <strong>{{ .Selected }}</strong></label>{{ end }}
    {{ end }}
  </div>
  <div class="dash-kpis">
    {{ range .KPIs }}
    <div class="dash-kpi">
      <div class="label">{{ .Title }}</div>
      <div class="value">{{ .Display }}</div>
    </div>
    {{ end }}
  </div>
  <p>{{ .Rows }} applications selected</p>
</div>
`))

// Package templates holds the dashboard page as a templ component. The page
// is a shell: every chart and control fragment is patched in over SSE by the
// datastar endpoints.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"adr-dashboard/internal/charts"

	"github.com/a-h/templ"
)

const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

const pageStyle = `
body { margin: 0; font-family: system-ui, sans-serif; background: #f5f6f8; color: #1f2430; }
.layout { display: flex; min-height: 100vh; }
.sidebar { width: 260px; padding: 1.5rem; background: #fff; border-right: 1px solid #e3e6eb; }
.sidebar h2 { font-size: 0.95rem; text-transform: uppercase; letter-spacing: 0.04em; color: #5a6272; }
.sidebar label { display: block; margin: 0.75rem 0; font-size: 0.9rem; }
.sidebar input, .sidebar select { width: 100%; margin-top: 0.25rem; padding: 0.4rem; }
main { flex: 1; padding: 1.5rem 2rem; }
.warning { padding: 1rem; background: #fff4e5; border: 1px solid #f0c36d; border-radius: 6px; }
.caption { color: #8a6d1f; font-size: 0.9rem; }
.muted { color: #8b93a3; }
.forecast-room { background: #fff; border: 1px solid #e3e6eb; border-radius: 6px; padding: 1rem 1.25rem; margin-bottom: 1rem; }
.forecast-room input[type=range] { width: 100%; }
.delta-up { color: #1d7d46; }
.delta-down { color: #b3261e; }
`

// Dashboard renders the page shell. minDate and maxDate bound the date picker
// to the dataset's check-in range and seed the initial selection.
func Dashboard(minDate, maxDate string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		b.WriteString("<meta charset=\"utf-8\">\n")
		b.WriteString("<title>Hotel ADR Dashboard</title>\n")
		fmt.Fprintf(&b, "<script type=\"module\" src=%q></script>\n", datastarCDN)
		fmt.Fprintf(&b, "<style>%s</style>\n", pageStyle)
		b.WriteString("</head>\n")

		fmt.Fprintf(&b,
			`<body data-signals='{"start":%q,"end":%q,"kind":%q,"month":"Jan","rates":{}}'>`+"\n",
			minDate, maxDate, charts.KindMonthlyDistribution.Slug(),
		)

		b.WriteString("<div class=\"layout\">\n<aside class=\"sidebar\">\n")
		b.WriteString("<h2>Filter by Date Range</h2>\n")
		fmt.Fprintf(&b,
			"<label>Start<input type=\"date\" data-bind-start min=%q max=%q data-on-change=\"@get('/sse/chart')\"></label>\n",
			minDate, maxDate,
		)
		fmt.Fprintf(&b,
			"<label>End<input type=\"date\" data-bind-end min=%q max=%q data-on-change=\"@get('/sse/chart')\"></label>\n",
			minDate, maxDate,
		)

		b.WriteString("<h2>Select Chart</h2>\n")
		b.WriteString("<select data-bind-kind data-on-change=\"@get('/sse/chart')\">\n")
		for _, kind := range charts.Kinds() {
			fmt.Fprintf(&b, "<option value=%q>%s</option>\n",
				kind.Slug(), templ.EscapeString(kind.String()))
		}
		b.WriteString("</select>\n</aside>\n")

		b.WriteString("<main>\n<h1>Hotel ADR Dashboard</h1>\n")
		b.WriteString("<div id=\"chart-controls\"></div>\n")
		b.WriteString("<div id=\"chart-panel\" data-on-load=\"@get('/sse/chart')\"><p class=\"muted\">Loading chart&hellip;</p></div>\n")
		b.WriteString("</main>\n</div>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

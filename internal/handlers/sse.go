package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"adr-dashboard/internal/charts"
	"adr-dashboard/internal/models"
	"adr-dashboard/internal/services"
	"adr-dashboard/internal/ui/views"

	"github.com/starfederation/datastar-go/datastar"
)

var warningTemplate = template.Must(template.New("warning").Parse(
	`<div id="chart-panel"><div class="warning">{{.}}</div></div>`))

var monthControlsTemplate = template.Must(template.New("monthControls").Parse(`
<div id="chart-controls">
<label>Select Month
<select data-bind-month data-on-change="@get('/sse/chart')">
{{range .Months}}<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>{{end}}
</select>
</label>
</div>`))

var forecastTemplate = template.Must(template.New("forecast").Funcs(template.FuncMap{
	"slug": roomSlug,
}).Parse(`
<div id="chart-panel">
<h2>Adjust ADR and Forecast Revenue</h2>
{{range .Rooms}}<div class="forecast-room">
<h3>{{.RoomType}}</h3>
<label>Adjusted rate (current mean {{printf "%.2f" .MeanADR}})
<input type="range" min="0" max="{{printf "%.0f" .SliderMax}}" step="1" value="{{printf "%.2f" .Rate}}"
 data-bind="rates.{{slug .RoomType}}" data-on-input__debounce.300ms="@get('/sse/forecast')">
</label>
<ul>
<li>Bookings: <strong>{{.Bookings}}</strong></li>
<li>Total nights: <strong>{{printf "%.0f" .Nights}}</strong></li>
<li>Adjusted rate: <strong>THB {{printf "%.2f" .Rate}}</strong></li>
<li>Projected revenue: <strong>THB {{.Projected.StringFixed 2}}</strong></li>
{{if .Delta.IsPositive}}<li class="delta-up">Revenue increase: <strong>THB {{.Delta.StringFixed 2}}</strong> &#9650;</li>
{{else}}<li class="delta-down">Revenue decrease: <strong>THB {{.Delta.Abs.StringFixed 2}}</strong> &#9660;</li>
{{end}}</ul>
</div>
{{end}}</div>`))

func roomSlug(rt models.RoomType) string {
	switch rt {
	case models.RoomShower:
		return "shower"
	case models.RoomBathtub:
		return "bathtub"
	default:
		return "other"
	}
}

// chartSignals is the datastar signal state the page keeps for the sidebar
// controls and the forecast sliders.
type chartSignals struct {
	Start string             `json:"start"`
	End   string             `json:"end"`
	Kind  string             `json:"kind"`
	Month string             `json:"month"`
	Rates map[string]float64 `json:"rates"`
}

func (s chartSignals) roomRates() map[models.RoomType]float64 {
	rates := make(map[models.RoomType]float64)
	if v, ok := s.Rates["shower"]; ok {
		rates[models.RoomShower] = v
	}
	if v, ok := s.Rates["bathtub"]; ok {
		rates[models.RoomBathtub] = v
	}
	return rates
}

type SSEHandlers struct {
	store  *services.Reservations
	logger *slog.Logger
}

func NewSSEHandlers(store *services.Reservations, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		logger: logger,
	}
}

func (h *SSEHandlers) patchWarning(sse *datastar.ServerSentEventGenerator, msg string) {
	var buf strings.Builder
	if err := warningTemplate.Execute(&buf, msg); err != nil {
		h.logger.Error("render warning", "error", err)
		return
	}
	sse.PatchElements(buf.String())
}

func (h *SSEHandlers) patchControls(sse *datastar.ServerSentEventGenerator, kind charts.Kind, month string) error {
	if kind != charts.KindRevenueShare {
		sse.PatchElements(`<div id="chart-controls"></div>`)
		return nil
	}

	var buf strings.Builder
	err := monthControlsTemplate.Execute(&buf, struct {
		Months   []string
		Selected string
	}{models.MonthNames(), month})
	if err != nil {
		return err
	}
	sse.PatchElements(buf.String())
	return nil
}

// modelWarning reports the empty-result warning for render-models that carry
// one, so no chart object is created for empty selections.
func modelWarning(m charts.Model) (string, bool) {
	switch model := m.(type) {
	case charts.MonthlyDistribution:
		if len(model.Points) == 0 {
			return "No data available.", true
		}
	case charts.RevenueShare:
		if model.Warning != "" {
			return model.Warning, true
		}
	case charts.Trends:
		if len(model.Points) == 0 {
			return "No data available.", true
		}
	case charts.BinDistribution:
		if model.Warning != "" {
			return model.Warning, true
		}
	}
	return "", false
}

// HandleChart runs the full interaction pipeline once: validate the range,
// filter, aggregate for the selected kind and patch the rendered chart (or a
// warning) into the page.
func (h *SSEHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	var sig chartSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.logger.Warn("read chart signals", "error", err)
		h.patchWarning(sse, "Invalid request.")
		return
	}

	kind, err := charts.ParseKind(sig.Kind)
	if err != nil {
		h.patchWarning(sse, "Unknown chart selection.")
		return
	}

	if err := h.patchControls(sse, kind, sig.Month); err != nil {
		h.logger.Error("render chart controls", "error", err)
	}

	start, end, appErr := parseRange(sig.Start, sig.End)
	if appErr != nil {
		h.patchWarning(sse, appErr.Message)
		return
	}

	rows := h.store.FilterRange(start, end)

	if kind == charts.KindSeasonal {
		h.patchForecast(sse, rows, sig.roomRates())
		h.flush(w)
		return
	}

	model, err := charts.Build(kind, rows, charts.Params{Month: sig.Month})
	if err != nil {
		h.patchWarning(sse, "Unknown month selection.")
		return
	}

	if msg, ok := modelWarning(model); ok {
		h.patchWarning(sse, msg)
		h.flush(w)
		return
	}

	renderer, err := views.Chart(model)
	if err != nil {
		h.logger.Error("build chart view", "kind", kind.Slug(), "error", err)
		h.patchWarning(sse, "Unable to render chart.")
		return
	}

	var buf strings.Builder
	buf.WriteString(`<div id="chart-panel">`)
	if err := renderer.Render(&buf); err != nil {
		h.logger.Error("render chart", "kind", kind.Slug(), "error", err)
		h.patchWarning(sse, "Unable to render chart.")
		return
	}
	if share, ok := model.(charts.RevenueShare); ok && share.Caption != "" {
		buf.WriteString(`<p class="caption">`)
		buf.WriteString(template.HTMLEscapeString(share.Caption))
		buf.WriteString(`</p>`)
	}
	buf.WriteString(`</div>`)

	sse.PatchElements(buf.String())
	h.flush(w)
}

// HandleForecast recomputes the seasonal projection when a rate slider moves.
func (h *SSEHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	var sig chartSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.logger.Warn("read forecast signals", "error", err)
		h.patchWarning(sse, "Invalid request.")
		return
	}

	start, end, appErr := parseRange(sig.Start, sig.End)
	if appErr != nil {
		h.patchWarning(sse, appErr.Message)
		return
	}

	rows := h.store.FilterRange(start, end)
	h.patchForecast(sse, rows, sig.roomRates())
	h.flush(w)
}

func (h *SSEHandlers) patchForecast(sse *datastar.ServerSentEventGenerator, rows []models.Reservation, rates map[models.RoomType]float64) {
	model := charts.SeasonalOf(rows, rates)
	if len(model.Rooms) == 0 {
		h.patchWarning(sse, "No data available.")
		return
	}

	var buf strings.Builder
	if err := forecastTemplate.Execute(&buf, model); err != nil {
		h.logger.Error("render forecast panel", "error", err)
		h.patchWarning(sse, "Unable to render forecast.")
		return
	}
	sse.PatchElements(buf.String())
}

func (h *SSEHandlers) flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

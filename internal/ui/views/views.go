// Package views turns chart render-models into browser-ready ECharts HTML.
package views

import (
	"fmt"
	"io"

	"adr-dashboard/internal/charts"
	"adr-dashboard/internal/models"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	facetWidth  = "420px"
	facetHeight = "320px"
	chartWidth  = "900px"
	chartHeight = "520px"
)

// Renderer writes a self-contained chart snippet.
type Renderer interface {
	Render(w io.Writer) error
}

// Chart builds the view for a render-model. The seasonal analysis has no
// chart view; it renders as interactive controls in the UI templates.
func Chart(m charts.Model) (Renderer, error) {
	switch model := m.(type) {
	case charts.MonthlyDistribution:
		return monthlyDistribution(model), nil
	case charts.RevenueShare:
		return revenueShare(model), nil
	case charts.Trends:
		return trends(model), nil
	case charts.BinDistribution:
		return binDistribution(model), nil
	default:
		return nil, fmt.Errorf("no chart view for %T", m)
	}
}

// monthlyDistribution renders one scatter facet per month: day on the x axis,
// mean ADR on the y axis, point size scaled by booking count.
func monthlyDistribution(m charts.MonthlyDistribution) Renderer {
	page := components.NewPage()
	page.PageTitle = "Monthly ADR Distribution by Room Type"

	for _, month := range m.Months {
		scatter := echarts.NewScatter()
		scatter.SetGlobalOptions(
			echarts.WithInitializationOpts(opts.Initialization{
				Width:  facetWidth,
				Height: facetHeight,
			}),
			echarts.WithTitleOpts(opts.Title{Title: month}),
			echarts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Day"}),
			echarts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "ADR"}),
			echarts.WithLegendOpts(opts.Legend{Show: true}),
			echarts.WithTooltipOpts(opts.Tooltip{Show: true}),
		)

		series := make(map[string][]opts.ScatterData)
		for _, p := range m.Points {
			if p.Month != month {
				continue
			}
			series[string(p.RoomType)] = append(series[string(p.RoomType)], opts.ScatterData{
				Value:      []interface{}{p.Day, p.MeanADR},
				SymbolSize: symbolSize(p.Bookings),
			})
		}
		for _, room := range roomOrder(series) {
			scatter.AddSeries(room, series[room])
		}

		page.AddCharts(scatter)
	}

	return page
}

func symbolSize(bookings int) int {
	size := 8 + bookings*2
	if size > 40 {
		size = 40
	}
	return size
}

func roomOrder(series map[string][]opts.ScatterData) []string {
	order := make([]string, 0, len(series))
	for _, room := range []string{
		string(models.RoomBathtub),
		string(models.RoomShower),
	} {
		if _, ok := series[room]; ok {
			order = append(order, room)
		}
	}
	return order
}

// revenueShare renders the top ADR groups as a donut.
func revenueShare(m charts.RevenueShare) Renderer {
	pie := echarts.NewPie()
	pie.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		echarts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s - Top 3 ADR Share", m.Month)}),
		echarts.WithLegendOpts(opts.Legend{Show: true}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)

	data := make([]opts.PieData, 0, len(m.Slices))
	for _, s := range m.Slices {
		data = append(data, opts.PieData{Name: s.Group, Value: s.Revenue.InexactFloat64()})
	}

	pie.AddSeries("ADR Group", data).SetSeriesOptions(
		echarts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
		echarts.WithLabelOpts(opts.Label{Show: true, Formatter: "{b}: {d}%"}),
	)

	return pie
}

// trends renders bookings and mean ADR on a dual-axis line chart: bookings on
// the left axis, ADR on the right.
func trends(m charts.Trends) Renderer {
	line := echarts.NewLine()
	line.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		echarts.WithTitleOpts(opts.Title{Title: "ADR & Booking Trends by Month"}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Bookings"}),
		echarts.WithLegendOpts(opts.Legend{Show: true}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
	)
	line.ExtendYAxis(opts.YAxis{Type: "value", Name: "ADR (THB)"})

	months := make([]string, 0, len(m.Points))
	bookings := make([]opts.LineData, 0, len(m.Points))
	adr := make([]opts.LineData, 0, len(m.Points))
	for _, p := range m.Points {
		months = append(months, p.Month)
		bookings = append(bookings, opts.LineData{Value: p.Bookings})
		adr = append(adr, opts.LineData{Value: p.MeanADR})
	}

	line.SetXAxis(months)
	line.AddSeries("Total Bookings", bookings)
	line.AddSeries("Average ADR", adr).SetSeriesOptions(
		echarts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
	)

	return line
}

// binDistribution renders grouped bars, one group per 5% ADR bin, one bar per
// room type.
func binDistribution(m charts.BinDistribution) Renderer {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		echarts.WithTitleOpts(opts.Title{Title: "ADR Bin (5%) Distribution by Room Type"}),
		echarts.WithXAxisOpts(opts.XAxis{
			Name: "ADR Range (THB)",
			AxisLabel: &opts.AxisLabel{
				Show:     true,
				Rotate:   45,
				Interval: "0",
			},
		}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Number of Bookings"}),
		echarts.WithLegendOpts(opts.Legend{Show: true}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)

	bar.SetXAxis(m.Bins)
	for _, s := range m.Series {
		data := make([]opts.BarData, 0, len(s.Counts))
		for _, c := range s.Counts {
			data = append(data, opts.BarData{Value: c})
		}
		bar.AddSeries(string(s.RoomType), data)
	}

	return bar
}

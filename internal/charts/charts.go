// Package charts holds the five aggregation routines of the dashboard. Each
// routine is a pure function from a filtered reservation slice (plus optional
// user parameters) to a render-model; rendering itself lives in internal/ui.
package charts

import (
	"fmt"

	"adr-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Kind is the tagged variant of the five selectable charts.
type Kind int

const (
	KindMonthlyDistribution Kind = iota
	KindRevenueShare
	KindTrends
	KindSeasonal
	KindBinDistribution
)

var kindLabels = map[Kind]string{
	KindMonthlyDistribution: "Monthly ADR Distribution",
	KindRevenueShare:        "Top 3 ADR Revenue Share by Month",
	KindTrends:              "Year-over-Year Trends",
	KindSeasonal:            "Seasonal Analysis (Interactive)",
	KindBinDistribution:     "ADR Bin Distribution",
}

var kindSlugs = map[Kind]string{
	KindMonthlyDistribution: "monthly-distribution",
	KindRevenueShare:        "revenue-share",
	KindTrends:              "trends",
	KindSeasonal:            "seasonal",
	KindBinDistribution:     "bin-distribution",
}

func (k Kind) String() string { return kindLabels[k] }

func (k Kind) Slug() string { return kindSlugs[k] }

// Kinds lists all chart kinds in selector order.
func Kinds() []Kind {
	return []Kind{
		KindMonthlyDistribution,
		KindRevenueShare,
		KindTrends,
		KindSeasonal,
		KindBinDistribution,
	}
}

// ParseKind resolves a URL slug to a chart kind.
func ParseKind(slug string) (Kind, error) {
	for k, s := range kindSlugs {
		if s == slug {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown chart kind %q", slug)
}

// Params carries the extra user inputs two of the routines take.
type Params struct {
	// Month is the 3-letter month label for the revenue share chart.
	Month string
	// Rates are the adjusted per-room rates for the seasonal forecast;
	// rooms without an entry default to their current mean ADR.
	Rates map[models.RoomType]float64
}

// Model is a chart render-model, tagged with the kind that produced it.
type Model interface {
	ChartKind() Kind
}

// Build dispatches to exactly one aggregation routine.
func Build(kind Kind, rows []models.Reservation, p Params) (Model, error) {
	switch kind {
	case KindMonthlyDistribution:
		return MonthlyDistributionOf(rows), nil
	case KindRevenueShare:
		return RevenueShareOf(rows, p.Month)
	case KindTrends:
		return TrendsOf(rows), nil
	case KindSeasonal:
		return SeasonalOf(rows, p.Rates), nil
	case KindBinDistribution:
		return BinDistributionOf(rows), nil
	default:
		return nil, fmt.Errorf("unknown chart kind %d", kind)
	}
}

// MonthlyPoint is one (month, day, room type) group of the scatter chart.
type MonthlyPoint struct {
	Month    string          `json:"month"`
	Day      int             `json:"day"`
	RoomType models.RoomType `json:"room_type"`
	MeanADR  float64         `json:"mean_adr"`
	Bookings int             `json:"bookings"`
}

type MonthlyDistribution struct {
	Points []MonthlyPoint `json:"points"`
	// Months present in the data, in calendar order; one chart facet each.
	Months []string `json:"months"`
}

func (MonthlyDistribution) ChartKind() Kind { return KindMonthlyDistribution }

// RevenueSlice is one ADR group of the donut chart.
type RevenueSlice struct {
	Group   string          `json:"group"`
	Revenue decimal.Decimal `json:"revenue"`
	Share   float64         `json:"share"`
}

type RevenueShare struct {
	Month   string         `json:"month"`
	Slices  []RevenueSlice `json:"slices"`
	Caption string         `json:"caption,omitempty"`
	Warning string         `json:"warning,omitempty"`
}

func (RevenueShare) ChartKind() Kind { return KindRevenueShare }

// TrendPoint is one calendar month of the dual-axis line chart. Years are
// collapsed into a single month row; see TrendsOf.
type TrendPoint struct {
	Month    string  `json:"month"`
	MeanADR  float64 `json:"mean_adr"`
	Bookings int     `json:"bookings"`
}

type Trends struct {
	Points []TrendPoint `json:"points"`
}

func (Trends) ChartKind() Kind { return KindTrends }

// RoomForecast is the interactive revenue projection for one room type.
type RoomForecast struct {
	RoomType  models.RoomType `json:"room_type"`
	MeanADR   float64         `json:"mean_adr"`
	Bookings  int             `json:"bookings"`
	Nights    float64         `json:"nights"`
	SliderMax float64         `json:"slider_max"`
	Rate      float64         `json:"rate"`
	Projected decimal.Decimal `json:"projected"`
	Baseline  decimal.Decimal `json:"baseline"`
	Delta     decimal.Decimal `json:"delta"`
}

type Seasonal struct {
	Rooms []RoomForecast `json:"rooms"`
}

func (Seasonal) ChartKind() Kind { return KindSeasonal }

// BinSeries is the per-room booking count aligned to the bin labels.
type BinSeries struct {
	RoomType models.RoomType `json:"room_type"`
	Counts   []int           `json:"counts"`
}

type BinDistribution struct {
	Bins    []string    `json:"bins"`
	Series  []BinSeries `json:"series"`
	Warning string      `json:"warning,omitempty"`
}

func (BinDistribution) ChartKind() Kind { return KindBinDistribution }

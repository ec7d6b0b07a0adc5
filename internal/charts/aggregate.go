package charts

import (
	"fmt"
	"slices"
	"strings"

	"adr-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Fixed ADR buckets for the revenue share chart. Bounds are left-closed:
// 800 falls in "800-1000", 1200 falls in ">1200".
var adrGroups = []string{"<800", "800-1000", "1000-1200", ">1200"}

func groupADR(adr float64) string {
	switch {
	case adr < 800:
		return adrGroups[0]
	case adr < 1000:
		return adrGroups[1]
	case adr < 1200:
		return adrGroups[2]
	default:
		return adrGroups[3]
	}
}

// binGrowth is the 5% step of the adaptive geometric binning.
const binGrowth = 1.05

// binEdges builds strictly increasing edges from the minimum ADR, each edge 5%
// above the previous, until the maximum is covered. At least one bin is always
// produced. A non-positive minimum cannot grow geometrically, so the builder
// falls back to unit steps whenever the geometric step does not increase.
func binEdges(minADR, maxADR float64) []float64 {
	edges := []float64{minADR}
	for edges[len(edges)-1] < maxADR || len(edges) < 2 {
		last := edges[len(edges)-1]
		next := last * binGrowth
		if next <= last {
			next = last + 1
		}
		edges = append(edges, next)
	}
	return edges
}

// findBin locates v among the edges: the first bin includes its lower edge,
// every bin includes its upper edge.
func findBin(v float64, edges []float64) int {
	if v < edges[0] || v > edges[len(edges)-1] {
		return -1
	}
	for i := 1; i < len(edges); i++ {
		if v <= edges[i] {
			return i - 1
		}
	}
	return -1
}

// MonthlyDistributionOf groups the filtered rows by (month, day, room type)
// and computes the mean ADR and booking count per group. Rows with a null ADR
// contribute to neither; groups with no priced booking are dropped.
func MonthlyDistributionOf(rows []models.Reservation) MonthlyDistribution {
	type acc struct {
		month    string
		day      int
		roomType models.RoomType
		sum      float64
		n        int
	}

	groups := make(map[string]*acc)
	for _, r := range rows {
		if !r.ADR.Valid {
			continue
		}
		month, _ := r.Month()
		day, _ := r.Day()
		key := fmt.Sprintf("%s|%02d|%s", month, day, r.RoomType)
		g := groups[key]
		if g == nil {
			g = &acc{month: month, day: day, roomType: r.RoomType}
			groups[key] = g
		}
		g.sum += r.ADR.Value
		g.n++
	}

	points := make([]MonthlyPoint, 0, len(groups))
	monthsSeen := make(map[string]bool)
	for _, g := range groups {
		points = append(points, MonthlyPoint{
			Month:    g.month,
			Day:      g.day,
			RoomType: g.roomType,
			MeanADR:  g.sum / float64(g.n),
			Bookings: g.n,
		})
		monthsSeen[g.month] = true
	}

	slices.SortFunc(points, func(a, b MonthlyPoint) int {
		if d := models.MonthIndex(a.Month) - models.MonthIndex(b.Month); d != 0 {
			return d
		}
		if d := a.Day - b.Day; d != 0 {
			return d
		}
		return strings.Compare(string(a.RoomType), string(b.RoomType))
	})

	var months []string
	for _, m := range models.MonthNames() {
		if monthsSeen[m] {
			months = append(months, m)
		}
	}

	return MonthlyDistribution{Points: points, Months: months}
}

// RevenueShareOf restricts the filtered rows to one month, sums the total
// price per ADR group and keeps the top three groups by revenue. Ties keep
// the fixed group order. Null prices add nothing; null-ADR rows belong to no
// group.
func RevenueShareOf(rows []models.Reservation, month string) (RevenueShare, error) {
	if models.MonthIndex(month) < 0 {
		return RevenueShare{}, fmt.Errorf("unknown month %q", month)
	}

	result := RevenueShare{Month: month}

	revenue := make(map[string]decimal.Decimal)
	present := make(map[string]bool)
	matched := 0
	for _, r := range rows {
		if m, ok := r.Month(); !ok || m != month {
			continue
		}
		matched++
		if !r.ADR.Valid {
			continue
		}
		g := groupADR(r.ADR.Value)
		present[g] = true
		if r.TotalPrice.Valid {
			revenue[g] = revenue[g].Add(r.TotalPrice.Value)
		}
	}

	if matched == 0 {
		result.Warning = "No data available."
		return result, nil
	}

	// Build in fixed group order so the descending sort breaks ties stably.
	total := decimal.Zero
	for _, g := range adrGroups {
		if !present[g] {
			continue
		}
		result.Slices = append(result.Slices, RevenueSlice{Group: g, Revenue: revenue[g]})
		total = total.Add(revenue[g])
	}

	// A month can match rows yet form no group when every ADR is null.
	if len(result.Slices) == 0 {
		result.Warning = "No data available."
		return result, nil
	}

	slices.SortStableFunc(result.Slices, func(a, b RevenueSlice) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	if len(result.Slices) < 3 {
		result.Caption = fmt.Sprintf("Only %d ADR groups found for %s.", len(result.Slices), month)
	} else {
		result.Slices = result.Slices[:3]
	}

	for i := range result.Slices {
		if total.IsPositive() {
			share, _ := result.Slices[i].Revenue.Div(total).Mul(decimal.NewFromInt(100)).Float64()
			result.Slices[i].Share = share
		}
	}

	return result, nil
}

// TrendsOf groups by calendar month only: rows from different years collapse
// into one month row. The chart is titled year-over-year but the year is
// deliberately discarded from the grouping key.
func TrendsOf(rows []models.Reservation) Trends {
	type acc struct {
		sum float64
		n   int
	}

	groups := make(map[string]*acc)
	for _, r := range rows {
		if !r.ADR.Valid {
			continue
		}
		month, _ := r.Month()
		g := groups[month]
		if g == nil {
			g = &acc{}
			groups[month] = g
		}
		g.sum += r.ADR.Value
		g.n++
	}

	var points []TrendPoint
	for _, m := range models.MonthNames() {
		g := groups[m]
		if g == nil {
			continue
		}
		points = append(points, TrendPoint{
			Month:    m,
			MeanADR:  g.sum / float64(g.n),
			Bookings: g.n,
		})
	}

	return Trends{Points: points}
}

// seasonalSliderCap is the fallback slider bound when a room's mean ADR is 0.
const seasonalSliderCap = 10000

// SeasonalOf groups by room type and computes the revenue projection inputs:
// current mean ADR, booking count, total nights. rates carries the adjusted
// per-room rates; absent rooms project at their current mean, so the delta is
// zero until a slider moves. Revenue is rate × nights with no floor.
func SeasonalOf(rows []models.Reservation, rates map[models.RoomType]float64) Seasonal {
	type acc struct {
		sumADR   float64
		nADR     int
		bookings int
		nights   float64
	}

	groups := make(map[models.RoomType]*acc)
	for _, r := range rows {
		g := groups[r.RoomType]
		if g == nil {
			g = &acc{}
			groups[r.RoomType] = g
		}
		g.bookings++
		g.nights += r.Nights
		if r.ADR.Valid {
			g.sumADR += r.ADR.Value
			g.nADR++
		}
	}

	roomTypes := make([]models.RoomType, 0, len(groups))
	for rt := range groups {
		roomTypes = append(roomTypes, rt)
	}
	slices.SortFunc(roomTypes, func(a, b models.RoomType) int {
		return strings.Compare(string(a), string(b))
	})

	result := Seasonal{}
	for _, rt := range roomTypes {
		g := groups[rt]

		mean := 0.0
		if g.nADR > 0 {
			mean = g.sumADR / float64(g.nADR)
		}

		sliderMax := mean * 2
		if mean == 0 {
			sliderMax = seasonalSliderCap
		}

		rate := mean
		if adjusted, ok := rates[rt]; ok {
			rate = max(0, min(adjusted, sliderMax))
		}

		nights := decimal.NewFromFloat(g.nights)
		projected := decimal.NewFromFloat(rate).Mul(nights)
		baseline := decimal.NewFromFloat(mean).Mul(nights)

		result.Rooms = append(result.Rooms, RoomForecast{
			RoomType:  rt,
			MeanADR:   mean,
			Bookings:  g.bookings,
			Nights:    g.nights,
			SliderMax: sliderMax,
			Rate:      rate,
			Projected: projected,
			Baseline:  baseline,
			Delta:     projected.Sub(baseline),
		})
	}

	return result
}

// BinDistributionOf builds the adaptive 5% bins over the filtered ADR range
// and counts bookings per (bin, room type). Rows with a null ADR are excluded
// from both the range and the counts.
func BinDistributionOf(rows []models.Reservation) BinDistribution {
	var (
		minADR, maxADR float64
		seen           bool
	)
	for _, r := range rows {
		if !r.ADR.Valid {
			continue
		}
		v := r.ADR.Value
		if !seen {
			minADR, maxADR, seen = v, v, true
			continue
		}
		minADR = min(minADR, v)
		maxADR = max(maxADR, v)
	}
	if !seen {
		return BinDistribution{Warning: "No data available."}
	}

	edges := binEdges(minADR, maxADR)
	bins := make([]string, len(edges)-1)
	for i := range bins {
		bins[i] = fmt.Sprintf("%d-%d", int(edges[i]), int(edges[i+1]))
	}

	counts := make(map[models.RoomType][]int)
	for _, r := range rows {
		if !r.ADR.Valid {
			continue
		}
		bin := findBin(r.ADR.Value, edges)
		if bin < 0 {
			continue
		}
		if counts[r.RoomType] == nil {
			counts[r.RoomType] = make([]int, len(bins))
		}
		counts[r.RoomType][bin]++
	}

	roomTypes := make([]models.RoomType, 0, len(counts))
	for rt := range counts {
		roomTypes = append(roomTypes, rt)
	}
	slices.SortFunc(roomTypes, func(a, b models.RoomType) int {
		return strings.Compare(string(a), string(b))
	})

	result := BinDistribution{Bins: bins}
	for _, rt := range roomTypes {
		result.Series = append(result.Series, BinSeries{RoomType: rt, Counts: counts[rt]})
	}
	return result
}

package charts

import (
	"math"
	"testing"
	"time"

	"adr-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

func reservation(y int, m time.Month, d int, room models.RoomType, adr, price, nights float64) models.Reservation {
	r := models.Reservation{
		CheckIn:  models.Some(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)),
		RoomType: room,
		Nights:   nights,
	}
	if !math.IsNaN(adr) {
		r.ADR = models.Some(adr)
	}
	if !math.IsNaN(price) {
		r.TotalPrice = models.Some(decimal.NewFromFloat(price))
	}
	return r
}

var noADR = math.NaN()

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		got, err := ParseKind(kind.Slug())
		if err != nil {
			t.Errorf("ParseKind(%q) error = %v", kind.Slug(), err)
		}
		if got != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.Slug(), got, kind)
		}
	}

	if _, err := ParseKind("pareto"); err == nil {
		t.Error("ParseKind should reject an unknown slug")
	}
}

func TestBuild_DispatchesByKind(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 10, models.RoomShower, 900, 1800, 2),
	}

	for _, kind := range Kinds() {
		model, err := Build(kind, rows, Params{Month: "Jan"})
		if err != nil {
			t.Fatalf("Build(%v) error = %v", kind, err)
		}
		if model.ChartKind() != kind {
			t.Errorf("Build(%v) returned model of kind %v", kind, model.ChartKind())
		}
	}
}

func TestGroupADR_Boundaries(t *testing.T) {
	tests := []struct {
		adr  float64
		want string
	}{
		{0, "<800"},
		{799.99, "<800"},
		{800, "800-1000"},
		{999.99, "800-1000"},
		{1000, "1000-1200"},
		{1199.99, "1000-1200"},
		{1200, ">1200"},
		{5000, ">1200"},
	}

	for _, tt := range tests {
		if got := groupADR(tt.adr); got != tt.want {
			t.Errorf("groupADR(%v) = %q, want %q", tt.adr, got, tt.want)
		}
	}
}

func TestBinEdges_Geometric(t *testing.T) {
	edges := binEdges(100, 150)

	want := []float64{100, 105, 110.25, 115.7625}
	for i, w := range want {
		if math.Abs(edges[i]-w) > 1e-9 {
			t.Errorf("edges[%d] = %v, want %v", i, edges[i], w)
		}
	}

	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Errorf("edges not strictly increasing at %d: %v <= %v", i, edges[i], edges[i-1])
		}
	}
	if last := edges[len(edges)-1]; last < 150 {
		t.Errorf("last edge %v should cover the maximum 150", last)
	}
	if edges[len(edges)-2] >= 150 {
		t.Errorf("edge before last (%v) should still be below the maximum", edges[len(edges)-2])
	}
}

func TestBinEdges_DegenerateRange(t *testing.T) {
	edges := binEdges(100, 100)
	if len(edges) != 2 {
		t.Fatalf("expected exactly one bin for min==max, got edges %v", edges)
	}
	if edges[1] <= edges[0] {
		t.Errorf("edges must increase, got %v", edges)
	}
}

func TestBinEdges_NonPositiveMinimum(t *testing.T) {
	edges := binEdges(0, 3)
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("edges not strictly increasing: %v", edges)
		}
	}
	if edges[len(edges)-1] < 3 {
		t.Errorf("last edge %v should cover the maximum", edges[len(edges)-1])
	}
}

func TestMonthlyDistributionOf(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 10, models.RoomShower, 800, 800, 1),
		reservation(2023, 1, 10, models.RoomShower, 1000, 1000, 1),
		reservation(2023, 1, 10, models.RoomBathtub, 1200, 1200, 1),
		reservation(2023, 2, 5, models.RoomShower, 700, 700, 1),
		reservation(2023, 2, 5, models.RoomShower, noADR, 700, 1), // null ADR excluded
	}

	m := MonthlyDistributionOf(rows)

	if len(m.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(m.Points))
	}
	if len(m.Months) != 2 || m.Months[0] != "Jan" || m.Months[1] != "Feb" {
		t.Errorf("months = %v, want [Jan Feb]", m.Months)
	}

	// Points are sorted by month, day, room type; bathtub sorts first.
	p := m.Points[0]
	if p.Month != "Jan" || p.Day != 10 || p.RoomType != models.RoomBathtub {
		t.Errorf("first point = %+v", p)
	}

	shower := m.Points[1]
	if shower.RoomType != models.RoomShower || shower.MeanADR != 900 || shower.Bookings != 2 {
		t.Errorf("shower group = %+v, want mean 900 over 2 bookings", shower)
	}

	feb := m.Points[2]
	if feb.Bookings != 1 {
		t.Errorf("null-ADR row should not count as a booking, got %+v", feb)
	}
}

func TestRevenueShareOf_TopThreeWithTies(t *testing.T) {
	// Group revenues: <800: 500, 800-1000: 900, 1000-1200: 300, >1200: 900.
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, 700, 500, 1),
		reservation(2023, 1, 2, models.RoomShower, 850, 900, 1),
		reservation(2023, 1, 3, models.RoomBathtub, 1100, 300, 1),
		reservation(2023, 1, 4, models.RoomBathtub, 1300, 900, 1),
	}

	m, err := RevenueShareOf(rows, "Jan")
	if err != nil {
		t.Fatalf("RevenueShareOf() error = %v", err)
	}

	if len(m.Slices) != 3 {
		t.Fatalf("got %d slices, want 3", len(m.Slices))
	}

	// Tied 900s keep the fixed group order: 800-1000 before >1200.
	wantOrder := []string{"800-1000", ">1200", "<800"}
	for i, want := range wantOrder {
		if m.Slices[i].Group != want {
			t.Errorf("slice %d = %q, want %q", i, m.Slices[i].Group, want)
		}
	}
	if m.Caption != "" {
		t.Errorf("no caption expected with 4 groups, got %q", m.Caption)
	}
	if m.Warning != "" {
		t.Errorf("no warning expected, got %q", m.Warning)
	}
}

func TestRevenueShareOf_FewGroupsCaption(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 3, 1, models.RoomShower, 700, 500, 1),
		reservation(2023, 3, 2, models.RoomShower, 750, 200, 1),
	}

	m, err := RevenueShareOf(rows, "Mar")
	if err != nil {
		t.Fatalf("RevenueShareOf() error = %v", err)
	}

	if len(m.Slices) != 1 {
		t.Fatalf("got %d slices, want 1", len(m.Slices))
	}
	if m.Caption != "Only 1 ADR groups found for Mar." {
		t.Errorf("caption = %q", m.Caption)
	}
	if !m.Slices[0].Revenue.Equal(decimal.NewFromInt(700)) {
		t.Errorf("revenue = %v, want 700", m.Slices[0].Revenue)
	}
	if math.Abs(m.Slices[0].Share-100) > 1e-9 {
		t.Errorf("share = %v, want 100", m.Slices[0].Share)
	}
}

func TestRevenueShareOf_EmptyMonth(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, 700, 500, 1),
	}

	m, err := RevenueShareOf(rows, "Jun")
	if err != nil {
		t.Fatalf("RevenueShareOf() error = %v", err)
	}
	if m.Warning != "No data available." {
		t.Errorf("warning = %q, want \"No data available.\"", m.Warning)
	}
	if len(m.Slices) != 0 {
		t.Errorf("no slices expected for an empty month, got %d", len(m.Slices))
	}
}

func TestRevenueShareOf_AllNullADR(t *testing.T) {
	// The month matches rows, but none has a parseable ADR, so no group forms.
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, noADR, 500, 1),
		reservation(2023, 1, 2, models.RoomBathtub, noADR, 200, 1),
	}

	m, err := RevenueShareOf(rows, "Jan")
	if err != nil {
		t.Fatalf("RevenueShareOf() error = %v", err)
	}
	if m.Warning != "No data available." {
		t.Errorf("warning = %q, want \"No data available.\"", m.Warning)
	}
	if m.Caption != "" {
		t.Errorf("no caption expected without groups, got %q", m.Caption)
	}
	if len(m.Slices) != 0 {
		t.Errorf("no slices expected without groups, got %d", len(m.Slices))
	}
}

func TestRevenueShareOf_UnknownMonth(t *testing.T) {
	if _, err := RevenueShareOf(nil, "January"); err == nil {
		t.Error("RevenueShareOf should reject a non 3-letter month label")
	}
}

// Rows from different years land in the same month row. The chart is named
// year-over-year but the aggregation discards the year; this documents that
// behavior rather than endorsing it.
func TestTrendsOf_CollapsesYears(t *testing.T) {
	rows := []models.Reservation{
		reservation(2022, 1, 10, models.RoomShower, 800, 800, 1),
		reservation(2023, 1, 15, models.RoomShower, 1000, 1000, 1),
		reservation(2023, 3, 1, models.RoomBathtub, 1200, 1200, 1),
	}

	m := TrendsOf(rows)

	if len(m.Points) != 2 {
		t.Fatalf("got %d points, want 2 (Jan collapsed across years)", len(m.Points))
	}

	jan := m.Points[0]
	if jan.Month != "Jan" || jan.Bookings != 2 || jan.MeanADR != 900 {
		t.Errorf("Jan point = %+v, want 2 bookings at mean 900", jan)
	}
	if m.Points[1].Month != "Mar" {
		t.Errorf("points out of calendar order: %+v", m.Points)
	}
}

func TestSeasonalOf_Projection(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, 800, 800, 2),
		reservation(2023, 1, 2, models.RoomShower, 1200, 1200, 3),
		reservation(2023, 1, 3, models.RoomBathtub, 900, 900, 1),
	}

	m := SeasonalOf(rows, map[models.RoomType]float64{models.RoomShower: 1500})

	if len(m.Rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(m.Rooms))
	}

	// Sorted by room type name: bathtub first.
	bathtub := m.Rooms[0]
	if bathtub.RoomType != models.RoomBathtub {
		t.Fatalf("first room = %q", bathtub.RoomType)
	}
	if !bathtub.Delta.IsZero() {
		t.Errorf("untouched slider should project zero delta, got %v", bathtub.Delta)
	}

	shower := m.Rooms[1]
	if shower.MeanADR != 1000 || shower.Nights != 5 {
		t.Fatalf("shower aggregate = %+v", shower)
	}
	if shower.SliderMax != 2000 {
		t.Errorf("slider max = %v, want 2000", shower.SliderMax)
	}
	if shower.Rate != 1500 {
		t.Errorf("rate = %v, want 1500", shower.Rate)
	}
	if !shower.Projected.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("projected = %v, want 7500", shower.Projected)
	}
	if !shower.Baseline.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("baseline = %v, want 5000", shower.Baseline)
	}
	if !shower.Delta.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("delta = %v, want 2500", shower.Delta)
	}
}

func TestSeasonalOf_ZeroNights(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, 800, 800, 0),
		reservation(2023, 1, 2, models.RoomShower, 1000, 1000, 0),
	}

	m := SeasonalOf(rows, map[models.RoomType]float64{models.RoomShower: 5000})

	shower := m.Rooms[0]
	if !shower.Projected.IsZero() || !shower.Baseline.IsZero() {
		t.Errorf("zero nights must project zero revenue at any rate, got projected %v baseline %v",
			shower.Projected, shower.Baseline)
	}
}

func TestSeasonalOf_ZeroMeanSliderCap(t *testing.T) {
	rows := []models.Reservation{
		{
			CheckIn:  models.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			RoomType: models.RoomShower,
			Nights:   1,
			// ADR null: no priced bookings, mean is 0.
		},
	}

	m := SeasonalOf(rows, nil)
	if m.Rooms[0].SliderMax != 10000 {
		t.Errorf("slider max = %v, want 10000 fallback", m.Rooms[0].SliderMax)
	}
}

func TestSeasonalOf_ClampsRateToBounds(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, 1000, 1000, 1),
	}

	m := SeasonalOf(rows, map[models.RoomType]float64{models.RoomShower: 99999})
	if m.Rooms[0].Rate != 2000 {
		t.Errorf("rate = %v, want clamp to slider max 2000", m.Rooms[0].Rate)
	}

	m = SeasonalOf(rows, map[models.RoomType]float64{models.RoomShower: -5})
	if m.Rooms[0].Rate != 0 {
		t.Errorf("rate = %v, want clamp to 0", m.Rooms[0].Rate)
	}
}

func TestBinDistributionOf(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, 100, 100, 1),
		reservation(2023, 1, 2, models.RoomShower, 104, 104, 1), // same first bin
		reservation(2023, 1, 3, models.RoomBathtub, 106, 106, 1),
		reservation(2023, 1, 4, models.RoomShower, 120, 120, 1),
		reservation(2023, 1, 5, models.RoomShower, noADR, 0, 1), // excluded
	}

	m := BinDistributionOf(rows)
	if m.Warning != "" {
		t.Fatalf("unexpected warning %q", m.Warning)
	}

	if m.Bins[0] != "100-105" {
		t.Errorf("first bin = %q, want 100-105", m.Bins[0])
	}

	if len(m.Series) != 2 {
		t.Fatalf("got %d series, want 2", len(m.Series))
	}
	bathtub, shower := m.Series[0], m.Series[1]
	if bathtub.RoomType != models.RoomBathtub || shower.RoomType != models.RoomShower {
		t.Fatalf("series order = %q, %q", bathtub.RoomType, shower.RoomType)
	}

	if shower.Counts[0] != 2 {
		t.Errorf("shower count in first bin = %d, want 2 (lower edge inclusive)", shower.Counts[0])
	}
	if bathtub.Counts[1] != 1 {
		t.Errorf("bathtub count in second bin = %d, want 1", bathtub.Counts[1])
	}

	total := 0
	for _, s := range m.Series {
		for _, c := range s.Counts {
			total += c
		}
	}
	if total != 4 {
		t.Errorf("total binned bookings = %d, want 4 (null ADR excluded)", total)
	}
}

func TestBinDistributionOf_NoADRValues(t *testing.T) {
	rows := []models.Reservation{
		reservation(2023, 1, 1, models.RoomShower, noADR, 100, 1),
	}

	m := BinDistributionOf(rows)
	if m.Warning == "" {
		t.Error("expected a warning when no ADR values exist")
	}
	if len(m.Bins) != 0 {
		t.Errorf("no bins expected, got %v", m.Bins)
	}
}

func TestFindBin(t *testing.T) {
	edges := []float64{100, 105, 110.25}

	tests := []struct {
		v    float64
		want int
	}{
		{100, 0},   // lowest edge included
		{105, 0},   // upper edge belongs to the lower bin
		{105.1, 1},
		{110.25, 1},
		{99, -1},
		{111, -1},
	}
	for _, tt := range tests {
		if got := findBin(tt.v, edges); got != tt.want {
			t.Errorf("findBin(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RoomType string

const (
	RoomShower  RoomType = "Deluxe Twin Room with Shower"
	RoomBathtub RoomType = "Deluxe Twin Room with Bathtub"
	RoomOther   RoomType = "Other"
)

// ClassifyRoom maps a free-text room descriptor to one of the three fixed
// categories. Matching is case-insensitive and "shower" takes priority when a
// descriptor mentions both fittings.
func ClassifyRoom(room string) RoomType {
	r := strings.ToLower(room)
	switch {
	case strings.Contains(r, "shower"):
		return RoomShower
	case strings.Contains(r, "bathtub"), strings.Contains(r, "bath tub"):
		return RoomBathtub
	default:
		return RoomOther
	}
}

// Nullable is the result of coercing a raw cell: either a value or null.
// Aggregations must skip null cells explicitly.
type Nullable[T any] struct {
	Value T    `json:"value"`
	Valid bool `json:"valid"`
}

func Some[T any](v T) Nullable[T] { return Nullable[T]{Value: v, Valid: true} }

func Null[T any]() Nullable[T] { return Nullable[T]{} }

// Reservation is one normalized row of the source dataset. Cells that failed
// coercion are null; Nights falls back to 1 and is never null.
type Reservation struct {
	BookingRef string                    `json:"booking_ref"`
	CheckIn    Nullable[time.Time]       `json:"check_in"`
	ADR        Nullable[float64]         `json:"adr"`
	TotalPrice Nullable[decimal.Decimal] `json:"total_price"`
	Room       string                    `json:"room"`
	RoomType   RoomType                  `json:"room_type"`
	Nights     float64                   `json:"nights"`
}

func (r Reservation) Year() (int, bool) {
	if !r.CheckIn.Valid {
		return 0, false
	}
	return r.CheckIn.Value.Year(), true
}

// Month returns the 3-letter month name of the check-in date.
func (r Reservation) Month() (string, bool) {
	if !r.CheckIn.Valid {
		return "", false
	}
	return r.CheckIn.Value.Format("Jan"), true
}

func (r Reservation) Day() (int, bool) {
	if !r.CheckIn.Valid {
		return 0, false
	}
	return r.CheckIn.Value.Day(), true
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthNames lists the 3-letter month labels in calendar order.
func MonthNames() []string {
	return monthNames[:]
}

// MonthIndex returns the calendar position of a 3-letter month name, or -1
// for an unrecognized label.
func MonthIndex(name string) int {
	for i, m := range monthNames {
		if m == name {
			return i
		}
	}
	return -1
}

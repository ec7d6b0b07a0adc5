package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"adr-dashboard/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 5000
	maxWorkers = 8

	checkInLayout  = "02/01/2006"
	currencyPrefix = "THB "
)

// Reservations holds the normalized reservation table. It is loaded once at
// startup and read-only afterwards; every interaction filters a fresh copy.
type Reservations struct {
	mu         sync.RWMutex
	rows       []models.Reservation
	source     string
	loadedAt   time.Time
	rowsLoaded atomic.Int64
	logger     *slog.Logger
}

func NewReservations() *Reservations {
	return &Reservations{
		logger: slog.Default(),
	}
}

// SetData replaces the table directly, bypassing file parsing.
func (s *Reservations) SetData(rows []models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.loadedAt = time.Now()
	s.rowsLoaded.Store(int64(len(rows)))
}

// LoadFromFile reads the reservation dataset. CSV is the native format; .xlsx
// workbooks exported by the property system are read from their first sheet
// with the same header contract. A missing or unreadable file is the caller's
// fatal startup error; malformed cells inside the file degrade to null.
func (s *Reservations) LoadFromFile(ctx context.Context, filename string) error {
	start := time.Now()
	s.logger.Info("loading reservation data", "filename", filename)

	var (
		rows []models.Reservation
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = s.loadXLSX(ctx, filename)
	default:
		rows, err = s.loadCSV(ctx, filename)
	}
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("load reservations: no data rows in %s", filename)
	}

	s.mu.Lock()
	s.rows = rows
	s.source = filename
	s.loadedAt = time.Now()
	s.mu.Unlock()
	s.rowsLoaded.Store(int64(len(rows)))

	s.logger.Info("reservation data loaded",
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return nil
}

// columnIndex maps the header names we care about to their positions. A value
// of -1 means the column is absent and every cell in it coerces to null.
type columnIndex struct {
	checkIn    int
	adr        int
	totalPrice int
	room       int
	nights     int
	bookingRef int
}

func indexColumns(header []string) columnIndex {
	cols := columnIndex{checkIn: -1, adr: -1, totalPrice: -1, room: -1, nights: -1, bookingRef: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Check-in":
			cols.checkIn = i
		case "ADR":
			cols.adr = i
		case "Total price":
			cols.totalPrice = i
		case "Room":
			cols.room = i
		case "night":
			cols.nights = i
		case "Booking reference":
			cols.bookingRef = i
		}
	}
	return cols
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseRow never fails: each cell degrades independently to null (or the
// nights default of 1) so one bad cell cannot drop the whole row.
func parseRow(record []string, cols columnIndex) models.Reservation {
	r := models.Reservation{
		BookingRef: cell(record, cols.bookingRef),
		Room:       cell(record, cols.room),
		Nights:     1,
	}
	r.RoomType = models.ClassifyRoom(r.Room)

	if v := cell(record, cols.checkIn); v != "" {
		if t, err := time.Parse(checkInLayout, v); err == nil {
			r.CheckIn = models.Some(t)
		}
	}

	if v := cell(record, cols.adr); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			r.ADR = models.Some(f)
		}
	}

	if v := cell(record, cols.totalPrice); v != "" {
		v = strings.TrimPrefix(v, currencyPrefix)
		v = strings.ReplaceAll(v, ",", "")
		if d, err := decimal.NewFromString(v); err == nil {
			r.TotalPrice = models.Some(d)
		}
	}

	if v := cell(record, cols.nights); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			r.Nights = f
		}
	}

	return r
}

func (s *Reservations) loadCSV(ctx context.Context, filename string) ([]models.Reservation, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	var rows []models.Reservation
	batch := make([][]string, 0, batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken line degrades like a bad cell: skip it,
			// keep the rest of the file.
			s.logger.Warn("skipping malformed line", "error", err)
			continue
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			parsed, err := parseBatch(ctx, batch, cols)
			if err != nil {
				return nil, err
			}
			rows = append(rows, parsed...)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, err := parseBatch(ctx, batch, cols)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed...)
	}

	return rows, nil
}

// parseBatch normalizes a batch of raw records in parallel, preserving order.
func parseBatch(ctx context.Context, batch [][]string, cols columnIndex) ([]models.Reservation, error) {
	rows := make([]models.Reservation, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, record := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rows[i] = parseRow(record, cols)
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Reservations) loadXLSX(ctx context.Context, filename string) ([]models.Reservation, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("closing workbook", "error", cerr)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	cols := indexColumns(records[0])

	var rows []models.Reservation
	for off := 1; off < len(records); off += batchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := min(off+batchSize, len(records))
		parsed, err := parseBatch(ctx, records[off:end], cols)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed...)
	}

	return rows, nil
}

// FilterRange returns the rows whose check-in date lies within [start, end]
// and whose room type is one of the two recognized categories. Rows with a
// null check-in or an "Other" room never reach a chart.
func (s *Reservations) FilterRange(start, end time.Time) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]models.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		if !r.CheckIn.Valid {
			continue
		}
		if r.RoomType == models.RoomOther {
			continue
		}
		ci := r.CheckIn.Value
		if ci.Before(start) || ci.After(end) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// DateBounds reports the earliest and latest parseable check-in dates. ok is
// false when no row has a valid check-in.
func (s *Reservations) DateBounds() (minDate, maxDate time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rows {
		if !r.CheckIn.Valid {
			continue
		}
		ci := r.CheckIn.Value
		if !ok {
			minDate, maxDate, ok = ci, ci, true
			continue
		}
		if ci.Before(minDate) {
			minDate = ci
		}
		if ci.After(maxDate) {
			maxDate = ci
		}
	}
	return minDate, maxDate, ok
}

func (s *Reservations) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Stats exposes load metadata for the admin endpoint.
func (s *Reservations) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byType := make(map[models.RoomType]int)
	nullCheckIn := 0
	for _, r := range s.rows {
		byType[r.RoomType]++
		if !r.CheckIn.Valid {
			nullCheckIn++
		}
	}

	return map[string]any{
		"row_count":      len(s.rows),
		"source":         s.source,
		"loaded_at":      s.loadedAt,
		"shower_rooms":   byType[models.RoomShower],
		"bathtub_rooms":  byType[models.RoomBathtub],
		"other_rooms":    byType[models.RoomOther],
		"null_check_ins": nullCheckIn,
	}
}

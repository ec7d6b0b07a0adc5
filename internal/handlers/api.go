package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"adr-dashboard/internal/charts"
	"adr-dashboard/internal/errors"
	"adr-dashboard/internal/models"
	"adr-dashboard/internal/observability"
	"adr-dashboard/internal/services"
)

const dateLayout = "2006-01-02"

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	store  *services.Reservations
	logger *slog.Logger
}

func NewAPIHandlers(store *services.Reservations, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		logger: logger,
	}
}

// parseRange validates the inclusive date range. Both bounds are required; an
// incomplete or malformed selection is a validation error and no chart is
// built for that interaction.
func parseRange(startStr, endStr string) (time.Time, time.Time, *errors.AppError) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, errors.Validation("Please select both a start and end date.")
	}
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ValidationWrap(err, "Invalid start date.")
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ValidationWrap(err, "Invalid end date.")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.Validation("End date must not be before the start date.")
	}
	return start, end, nil
}

func ratesFromQuery(q url.Values) map[models.RoomType]float64 {
	rates := make(map[models.RoomType]float64)
	if v, err := strconv.ParseFloat(q.Get("rate_shower"), 64); err == nil {
		rates[models.RoomShower] = v
	}
	if v, err := strconv.ParseFloat(q.Get("rate_bathtub"), 64); err == nil {
		rates[models.RoomBathtub] = v
	}
	return rates
}

func (h *APIHandlers) chart(w http.ResponseWriter, r *http.Request, kind charts.Kind) {
	requestID := observability.GetRequestID(r.Context())
	q := r.URL.Query()

	start, end, appErr := parseRange(q.Get("start"), q.Get("end"))
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}

	params := charts.Params{
		Month: q.Get("month"),
		Rates: ratesFromQuery(q),
	}
	if params.Month == "" {
		params.Month = "Jan"
	}

	rows := h.store.FilterRange(start, end)
	model, err := charts.Build(kind, rows, params)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Invalid chart parameters."), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, model, cacheHeaders)
}

func (h *APIHandlers) HandleMonthlyDistribution(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, charts.KindMonthlyDistribution)
}

func (h *APIHandlers) HandleRevenueShare(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, charts.KindRevenueShare)
}

func (h *APIHandlers) HandleTrends(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, charts.KindTrends)
}

func (h *APIHandlers) HandleSeasonal(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, charts.KindSeasonal)
}

func (h *APIHandlers) HandleBinDistribution(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, charts.KindBinDistribution)
}

// HandleBounds reports the dataset's check-in range for the date picker.
func (h *APIHandlers) HandleBounds(w http.ResponseWriter, r *http.Request) {
	minDate, maxDate, ok := h.store.DateBounds()
	if !ok {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NotFound("No dated reservations loaded."), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, map[string]string{
		"min_date": minDate.Format(dateLayout),
		"max_date": maxDate.Format(dateLayout),
	}, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Stats())
}

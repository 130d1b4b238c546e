package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/insight"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	defaultProductLimit = 10
	defaultLeaderLimit  = 10
	defaultMatrixLimit  = 15
	maxLimit            = 100
	maxQuestionLength   = 500
	cacheMaxAge         = "public, max-age=300"
)

type APIHandlers struct {
	analytics *services.Analytics
	assistant *insight.Service
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, assistant *insight.Service, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		assistant: assistant,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Summary(), cacheHeaders())
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.RegionMetrics(), cacheHeaders())
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultProductLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.TopProducts(limit), cacheHeaders())
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	if region := strings.TrimSpace(r.URL.Query().Get("region")); region != "" {
		errors.WriteSuccessWithHeaders(w, h.analytics.MonthlyByRegion(region), cacheHeaders())
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlyRevenue(), cacheHeaders())
}

func (h *APIHandlers) HandleChannels(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.ChannelMetrics(), cacheHeaders())
}

func (h *APIHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.SegmentMetrics(), cacheHeaders())
}

func (h *APIHandlers) HandleSalespeople(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultLeaderLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.SalespersonLeaders(limit), cacheHeaders())
}

func (h *APIHandlers) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultMatrixLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.ProductRegionMatrix(limit), cacheHeaders())
}

// queryResponse trims the transaction slice off the aggregate set so a
// filtered query stays a bounded payload.
type queryResponse struct {
	Summary     models.SummaryMetrics       `json:"summary"`
	Regions     []models.RegionMetrics      `json:"regions"`
	Products    []models.ProductMetrics     `json:"products"`
	Monthly     []models.MonthlyPoint       `json:"monthly"`
	Channels    []models.ChannelMetrics     `json:"channels"`
	Segments    []models.SegmentMetrics     `json:"segments"`
	RecordCount int64                       `json:"record_count"`
}

func (h *APIHandlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := h.analytics.Query(filter)
	errors.WriteSuccess(w, queryResponse{
		Summary:     data.Summary,
		Regions:     data.Regions,
		Products:    data.Products,
		Monthly:     data.Monthly,
		Channels:    data.Channels,
		Segments:    data.Segments,
		RecordCount: data.RecordCount,
	})
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *APIHandlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		h.writeError(w, r, errors.ServiceUnavailable("assistant is not configured"))
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid request body"))
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		h.writeError(w, r, errors.Validation("question must not be empty"))
		return
	}
	if len(question) > maxQuestionLength {
		h.writeError(w, r, errors.Validation(fmt.Sprintf("question exceeds %d characters", maxQuestionLength)))
		return
	}

	answer := h.assistant.Ask(r.Context(), question)
	errors.WriteSuccess(w, answer)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func cacheHeaders() map[string]string {
	return map[string]string{"Cache-Control": cacheMaxAge}
}

func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.Validation("limit must be a positive integer")
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}

// filterFromQuery builds a transaction filter from repeatable dimension
// params plus an optional from/to date range.
func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	f := models.Filter{
		Regions:  cleanValues(q["region"]),
		Products: cleanValues(q["product"]),
		Channels: cleanValues(q["channel"]),
		Segments: cleanValues(q["segment"]),
	}

	if err := applyDateRange(&f, q.Get("from"), q.Get("to")); err != nil {
		return models.Filter{}, err
	}
	return f, nil
}

func applyDateRange(f *models.Filter, from, to string) error {
	if raw := strings.TrimSpace(from); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return errors.Validation("from must be formatted as YYYY-MM-DD")
		}
		f.From = t
	}
	if raw := strings.TrimSpace(to); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return errors.Validation("to must be formatted as YYYY-MM-DD")
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return errors.Validation("to must not precede from")
	}
	return nil
}

func cleanValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

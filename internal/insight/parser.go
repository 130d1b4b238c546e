package insight

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// ParseSpec extracts a QuerySpec from raw model output. Markdown fences are
// stripped, unknown enum values are clamped to safe defaults, and garbage
// falls back to a low-confidence summary spec instead of an error reaching
// the caller.
func ParseSpec(raw string) (QuerySpec, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var spec QuerySpec
	if err := json.Unmarshal([]byte(cleaned), &spec); err != nil {
		return FallbackSpec(), errors.New("unparseable model output")
	}

	return Normalize(spec), nil
}

// Normalize clamps a spec's fields into the ranges the executor accepts.
func Normalize(spec QuerySpec) QuerySpec {
	if !validMetrics[spec.Metric] {
		spec.Metric = MetricRevenue
	}
	if !validDimensions[spec.Dimension] {
		spec.Dimension = DimRegion
	}
	if !validCharts[spec.Chart] {
		spec.Chart = defaultChartFor(spec.Dimension)
	}
	if spec.Limit <= 0 {
		spec.Limit = defaultLimit
	}
	if spec.Limit > maxLimit {
		spec.Limit = maxLimit
	}
	if spec.Confidence < 0 {
		spec.Confidence = 0
	}
	if spec.Confidence > 1 {
		spec.Confidence = 1
	}

	spec.Filter.From = normalizeDate(spec.Filter.From)
	spec.Filter.To = normalizeDate(spec.Filter.To)
	return spec
}

// FallbackSpec is what an unanswerable question degrades to: the overall
// summary, flagged with low confidence so the UI can say so.
func FallbackSpec() QuerySpec {
	return QuerySpec{
		Intent:     "summary",
		Metric:     MetricRevenue,
		Dimension:  "",
		Chart:      ChartTable,
		Limit:      defaultLimit,
		Title:      "Sales summary",
		Reply:      "Here is the overall sales summary.",
		Confidence: 0.2,
	}
}

func defaultChartFor(dimension string) string {
	switch dimension {
	case DimMonth:
		return ChartLine
	case DimChannel:
		return ChartPie
	case "":
		return ChartTable
	default:
		return ChartBar
	}
}

func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if _, err := parseDate(s); err != nil {
		return ""
	}
	return s
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(models.DateFormat, s)
}

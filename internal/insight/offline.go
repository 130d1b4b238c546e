package insight

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OfflineTranslator answers without a model: a keyword heuristic over the
// dataset's fixed dimension vocabulary. Confidence is capped so callers can
// tell a heuristic answer from a model one.
type OfflineTranslator struct {
	now func() time.Time
}

func NewOfflineTranslator() *OfflineTranslator {
	return &OfflineTranslator{now: time.Now}
}

func (t *OfflineTranslator) Name() string { return "offline" }

var (
	knownRegions  = []string{"North", "South", "East", "West", "Central"}
	knownChannels = []string{"Online", "Retail", "Partner", "Direct"}
	knownSegments = []string{"Enterprise", "SMB", "Consumer", "Education"}
)

func (t *OfflineTranslator) Translate(_ context.Context, question string, _ []Example) (QuerySpec, Usage, error) {
	q := strings.ToLower(question)

	spec := QuerySpec{
		Intent:     question,
		Metric:     metricFor(q),
		Dimension:  dimensionFor(q),
		Limit:      limitFor(q),
		Confidence: 0.5,
	}
	spec.Chart = defaultChartFor(spec.Dimension)
	spec.Filter = filterFor(q, t.now())
	spec.Title = titleFor(spec)
	spec.Reply = fmt.Sprintf("Here is %s.", strings.ToLower(spec.Title))

	return Normalize(spec), Usage{}, nil
}

func metricFor(q string) string {
	switch {
	case containsAny(q, "units", "quantity", "volume sold"):
		return MetricQuantity
	case containsAny(q, "how many customers", "unique customers", "customer count"):
		return MetricCustomers
	case containsAny(q, "discount"):
		return MetricAvgDiscount
	case containsAny(q, "average order", "avg order", "order value", "average transaction"):
		return MetricAvgOrder
	case containsAny(q, "how many orders", "transactions", "deals", "number of sales"):
		return MetricTransactions
	default:
		return MetricRevenue
	}
}

func dimensionFor(q string) string {
	switch {
	case containsAny(q, "per month", "monthly", "trend", "over time", "by month"):
		return DimMonth
	case containsAny(q, "salesperson", "salespeople", "sales rep", "seller", "leaderboard"):
		return DimSalesperson
	case containsAny(q, "channel"):
		return DimChannel
	case containsAny(q, "segment"):
		return DimSegment
	case containsAny(q, "product"):
		return DimProduct
	case containsAny(q, "region"):
		return DimRegion
	case containsAny(q, "overall", "summary", "total", "in total"):
		return ""
	default:
		return DimRegion
	}
}

func limitFor(q string) int {
	for _, word := range strings.Fields(q) {
		if n, err := strconv.Atoi(word); err == nil && n > 0 && n <= maxLimit {
			return n
		}
	}
	return defaultLimit
}

func filterFor(q string, now time.Time) FilterSpec {
	var f FilterSpec
	f.Regions = matchValues(q, knownRegions)
	f.Channels = matchValues(q, knownChannels)
	f.Segments = matchValues(q, knownSegments)

	// "q4 2025" style quarters and bare years.
	for quarter := 1; quarter <= 4; quarter++ {
		tag := fmt.Sprintf("q%d", quarter)
		if !strings.Contains(q, tag) {
			continue
		}
		year := yearIn(q, now.Year())
		startMonth := time.Month((quarter-1)*3 + 1)
		from := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
		f.From = from.Format("2006-01-02")
		f.To = from.AddDate(0, 3, -1).Format("2006-01-02")
		return f
	}
	if year := yearIn(q, 0); year != 0 {
		f.From = fmt.Sprintf("%d-01-01", year)
		f.To = fmt.Sprintf("%d-12-31", year)
	}
	return f
}

func yearIn(q string, fallback int) int {
	for _, word := range strings.FieldsFunc(q, func(r rune) bool {
		return r == ' ' || r == '?' || r == ',' || r == '.'
	}) {
		if len(word) == 4 {
			if n, err := strconv.Atoi(word); err == nil && n >= 2000 && n <= 2100 {
				return n
			}
		}
	}
	return fallback
}

func matchValues(q string, known []string) []string {
	var out []string
	for _, v := range known {
		// Match whole-ish words so "north" hits but "northern lights" noise
		// is tolerable for a fallback.
		if strings.Contains(q, strings.ToLower(v)) {
			out = append(out, v)
		}
	}
	return out
}

func titleFor(spec QuerySpec) string {
	metric := map[string]string{
		MetricRevenue:      "Revenue",
		MetricQuantity:     "Units sold",
		MetricTransactions: "Transactions",
		MetricCustomers:    "Unique customers",
		MetricAvgOrder:     "Average order value",
		MetricAvgDiscount:  "Average discount",
	}[spec.Metric]

	if spec.Dimension == "" {
		return metric + " summary"
	}
	dim := map[string]string{
		DimRegion:      "region",
		DimProduct:     "product",
		DimChannel:     "sales channel",
		DimSegment:     "customer segment",
		DimSalesperson: "salesperson",
		DimMonth:       "month",
	}[spec.Dimension]
	return fmt.Sprintf("%s by %s", metric, dim)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

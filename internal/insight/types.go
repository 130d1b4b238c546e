// Package insight answers natural-language questions about the sales data.
// A translator (the Anthropic model, or an offline keyword fallback) turns
// the question into a QuerySpec; the executor compiles the spec into a
// filtered engine query and renders a table and chart payload.
package insight

import "sales-dashboard/internal/models"

// Metrics the executor can compute per group.
const (
	MetricRevenue      = "revenue"
	MetricQuantity     = "quantity"
	MetricTransactions = "transactions"
	MetricCustomers    = "customers"
	MetricAvgOrder     = "avg_order"
	MetricAvgDiscount  = "avg_discount"
)

// Dimensions the executor can group by. Empty means a dataset summary.
const (
	DimRegion      = "region"
	DimProduct     = "product"
	DimChannel     = "channel"
	DimSegment     = "segment"
	DimSalesperson = "salesperson"
	DimMonth       = "month"
)

// Chart types the dashboard can render.
const (
	ChartBar   = "bar"
	ChartLine  = "line"
	ChartPie   = "pie"
	ChartTable = "table"
	ChartNone  = "none"
)

// QuerySpec is the contract between the translator and the executor. The
// model emits it as JSON; the parser clamps anything out of range.
type QuerySpec struct {
	Intent     string     `json:"intent"`
	Metric     string     `json:"metric"`
	Dimension  string     `json:"dimension"`
	Filter     FilterSpec `json:"filter"`
	Limit      int        `json:"limit"`
	Chart      string     `json:"chart"`
	Title      string     `json:"title"`
	Reply      string     `json:"reply"`
	Confidence float64    `json:"confidence"`
}

// FilterSpec mirrors models.Filter with wire-friendly date strings.
type FilterSpec struct {
	Regions  []string `json:"regions,omitempty"`
	Products []string `json:"products,omitempty"`
	Channels []string `json:"channels,omitempty"`
	Segments []string `json:"segments,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
}

// Answer is the executor's render-ready output.
type Answer struct {
	Reply      string       `json:"reply"`
	Spec       QuerySpec    `json:"spec"`
	Table      Table        `json:"table"`
	Chart      *ChartConfig `json:"chart,omitempty"`
	Confidence float64      `json:"confidence"`
	Source     string       `json:"source"` // "model" or "offline"
}

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type ChartConfig struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	XLabel string       `json:"x_label"`
	YLabel string       `json:"y_label"`
	Points []ChartPoint `json:"points"`
	Colors []string     `json:"colors"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Usage accounts model token consumption per translation.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Example is a past successful ask used as a few-shot prompt example.
type Example struct {
	Question string
	SpecJSON string
}

var validMetrics = map[string]bool{
	MetricRevenue:      true,
	MetricQuantity:     true,
	MetricTransactions: true,
	MetricCustomers:    true,
	MetricAvgOrder:     true,
	MetricAvgDiscount:  true,
}

var validDimensions = map[string]bool{
	"":             true,
	DimRegion:      true,
	DimProduct:     true,
	DimChannel:     true,
	DimSegment:     true,
	DimSalesperson: true,
	DimMonth:       true,
}

var validCharts = map[string]bool{
	ChartBar:   true,
	ChartLine:  true,
	ChartPie:   true,
	ChartTable: true,
	ChartNone:  true,
}

// ModelFilter converts the wire filter into the engine's filter type.
// Unparseable dates are dropped rather than failing the whole ask.
func (f FilterSpec) ModelFilter() models.Filter {
	out := models.Filter{
		Regions:  f.Regions,
		Products: f.Products,
		Channels: f.Channels,
		Segments: f.Segments,
	}
	if t, err := parseDate(f.From); err == nil {
		out.From = t
	}
	if t, err := parseDate(f.To); err == nil {
		out.To = t
	}
	return out
}

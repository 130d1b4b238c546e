package insight

import (
	"context"
	"testing"
)

func translate(t *testing.T, question string) QuerySpec {
	t.Helper()
	spec, _, err := NewOfflineTranslator().Translate(context.Background(), question, nil)
	if err != nil {
		t.Fatalf("Translate(%q) error: %v", question, err)
	}
	return spec
}

func TestOfflineTranslator(t *testing.T) {
	tests := []struct {
		question      string
		wantMetric    string
		wantDimension string
	}{
		{"which region drove the most revenue?", MetricRevenue, DimRegion},
		{"top 5 products by units sold", MetricQuantity, DimProduct},
		{"monthly revenue trend", MetricRevenue, DimMonth},
		{"average discount per channel", MetricAvgDiscount, DimChannel},
		{"how many customers per segment?", MetricCustomers, DimSegment},
		{"salesperson leaderboard", MetricRevenue, DimSalesperson},
		{"what were total sales overall?", MetricRevenue, ""},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			spec := translate(t, tt.question)
			if spec.Metric != tt.wantMetric {
				t.Errorf("metric = %q, want %q", spec.Metric, tt.wantMetric)
			}
			if spec.Dimension != tt.wantDimension {
				t.Errorf("dimension = %q, want %q", spec.Dimension, tt.wantDimension)
			}
			if spec.Confidence > 0.5 {
				t.Errorf("offline confidence should stay modest, got %g", spec.Confidence)
			}
		})
	}
}

func TestOfflineTranslatorLimit(t *testing.T) {
	spec := translate(t, "top 7 products")
	if spec.Limit != 7 {
		t.Errorf("limit = %d, want 7", spec.Limit)
	}
}

func TestOfflineTranslatorRegionFilter(t *testing.T) {
	spec := translate(t, "revenue in the North region by product")
	if len(spec.Filter.Regions) != 1 || spec.Filter.Regions[0] != "North" {
		t.Errorf("regions = %v, want [North]", spec.Filter.Regions)
	}
	if spec.Dimension != DimProduct {
		t.Errorf("dimension = %q, want product", spec.Dimension)
	}
}

func TestOfflineTranslatorQuarter(t *testing.T) {
	spec := translate(t, "which region drove Q4 2025 revenue?")
	if spec.Filter.From != "2025-10-01" {
		t.Errorf("from = %q, want 2025-10-01", spec.Filter.From)
	}
	if spec.Filter.To != "2025-12-31" {
		t.Errorf("to = %q, want 2025-12-31", spec.Filter.To)
	}
}

func TestOfflineTranslatorYear(t *testing.T) {
	spec := translate(t, "revenue by channel in 2025")
	if spec.Filter.From != "2025-01-01" || spec.Filter.To != "2025-12-31" {
		t.Errorf("year filter = %q..%q", spec.Filter.From, spec.Filter.To)
	}
}

func TestNewTranslatorSelection(t *testing.T) {
	if got := NewTranslator("", "model", 1024, "").Name(); got != "offline" {
		t.Errorf("no key should select offline translator, got %q", got)
	}
	if got := NewTranslator("sk-ant-test", "model", 1024, "").Name(); got != "model" {
		t.Errorf("key should select model translator, got %q", got)
	}
}

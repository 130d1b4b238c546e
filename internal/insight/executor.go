package insight

import (
	"fmt"
	"slices"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

// Executor compiles a QuerySpec into engine calls and renders the answer.
type Executor struct {
	analytics *services.Analytics
}

func NewExecutor(analytics *services.Analytics) *Executor {
	return &Executor{analytics: analytics}
}

// Execute runs the spec against the engine. It never fails: an empty result
// set yields an empty table, and the reply says so.
func (e *Executor) Execute(spec QuerySpec) Answer {
	spec = Normalize(spec)
	data := e.analytics.Query(spec.Filter.ModelFilter())

	answer := Answer{
		Reply:      spec.Reply,
		Spec:       spec,
		Confidence: spec.Confidence,
	}

	if spec.Dimension == "" {
		answer.Table = summaryTable(data.Summary)
		return answer
	}

	points := groupPoints(data, spec)

	// Months stay chronological; every other dimension ranks by value.
	if spec.Dimension != DimMonth {
		slices.SortStableFunc(points, func(a, b ChartPoint) int {
			switch {
			case a.Value > b.Value:
				return -1
			case a.Value < b.Value:
				return 1
			default:
				return 0
			}
		})
	}
	if len(points) > spec.Limit {
		points = points[:spec.Limit]
	}

	answer.Table = pointsTable(spec, points)
	if spec.Chart != ChartTable && spec.Chart != ChartNone {
		answer.Chart = BuildChart(spec, points)
	}
	if len(points) == 0 {
		answer.Reply = "No transactions match that filter."
		answer.Confidence = min(answer.Confidence, 0.3)
	}
	return answer
}

func groupPoints(data *services.PrecomputedData, spec QuerySpec) []ChartPoint {
	var points []ChartPoint
	switch spec.Dimension {
	case DimRegion:
		for _, m := range data.Regions {
			points = append(points, ChartPoint{Label: m.Region, Value: regionValue(m, spec.Metric)})
		}
	case DimProduct:
		for _, m := range data.Products {
			points = append(points, ChartPoint{Label: m.Product, Value: productValue(m, spec.Metric)})
		}
	case DimChannel:
		for _, m := range data.Channels {
			points = append(points, ChartPoint{Label: m.Channel, Value: channelValue(m, spec.Metric)})
		}
	case DimSegment:
		for _, m := range data.Segments {
			points = append(points, ChartPoint{Label: m.Segment, Value: segmentValue(m, spec.Metric)})
		}
	case DimSalesperson:
		for _, m := range data.Salespeople {
			points = append(points, ChartPoint{Label: m.Salesperson, Value: salespersonValue(m, spec.Metric)})
		}
	case DimMonth:
		for _, m := range data.Monthly {
			points = append(points, ChartPoint{Label: m.Month, Value: monthValue(m, spec.Metric)})
		}
	}
	return points
}

func regionValue(m models.RegionMetrics, metric string) float64 {
	switch metric {
	case MetricQuantity:
		return float64(m.UnitsSold)
	case MetricTransactions:
		return float64(m.Transactions)
	case MetricCustomers:
		return float64(m.UniqueCustomers)
	case MetricAvgOrder:
		return avg(m.Revenue, m.Transactions)
	case MetricAvgDiscount:
		return m.AvgDiscount
	default:
		return m.Revenue
	}
}

func productValue(m models.ProductMetrics, metric string) float64 {
	switch metric {
	case MetricQuantity:
		return float64(m.UnitsSold)
	case MetricTransactions, MetricCustomers:
		return float64(m.Transactions)
	case MetricAvgOrder:
		return avg(m.Revenue, m.Transactions)
	case MetricAvgDiscount:
		return m.AvgDiscount
	default:
		return m.Revenue
	}
}

func channelValue(m models.ChannelMetrics, metric string) float64 {
	switch metric {
	case MetricQuantity, MetricTransactions, MetricCustomers:
		return float64(m.Transactions)
	case MetricAvgOrder:
		return avg(m.Revenue, m.Transactions)
	case MetricAvgDiscount:
		return m.AvgDiscount
	default:
		return m.Revenue
	}
}

func segmentValue(m models.SegmentMetrics, metric string) float64 {
	switch metric {
	case MetricTransactions, MetricQuantity:
		return float64(m.Transactions)
	case MetricCustomers:
		return float64(m.UniqueCustomers)
	case MetricAvgOrder:
		return m.AvgOrderValue
	default:
		return m.Revenue
	}
}

func salespersonValue(m models.SalespersonMetrics, metric string) float64 {
	switch metric {
	case MetricQuantity:
		return float64(m.UnitsSold)
	case MetricTransactions, MetricCustomers:
		return float64(m.Deals)
	case MetricAvgOrder:
		return avg(m.Revenue, m.Deals)
	case MetricAvgDiscount:
		return m.AvgDiscount
	default:
		return m.Revenue
	}
}

func monthValue(m models.MonthlyPoint, metric string) float64 {
	switch metric {
	case MetricTransactions, MetricQuantity, MetricCustomers:
		return float64(m.Transactions)
	case MetricAvgOrder:
		return avg(m.Revenue, m.Transactions)
	default:
		return m.Revenue
	}
}

func avg(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func summaryTable(s models.SummaryMetrics) Table {
	return Table{
		Columns: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total revenue", fmt.Sprintf("$%.2f", s.TotalRevenue)},
			{"Transactions", fmt.Sprintf("%d", s.Transactions)},
			{"Average transaction", fmt.Sprintf("$%.2f", s.AvgTransaction)},
			{"Unique customers", fmt.Sprintf("%d", s.UniqueCustomers)},
			{"Units sold", fmt.Sprintf("%d", s.UnitsSold)},
			{"Average discount", fmt.Sprintf("%.1f%%", s.AvgDiscount)},
			{"Date range", s.FirstDate + " to " + s.LastDate},
		},
	}
}

func pointsTable(spec QuerySpec, points []ChartPoint) Table {
	table := Table{
		Columns: []string{dimensionLabel(spec.Dimension), metricLabel(spec.Metric)},
	}
	for _, p := range points {
		table.Rows = append(table.Rows, []string{p.Label, formatMetric(spec.Metric, p.Value)})
	}
	return table
}

func formatMetric(metric string, v float64) string {
	switch metric {
	case MetricRevenue, MetricAvgOrder:
		return fmt.Sprintf("$%.2f", v)
	case MetricAvgDiscount:
		return fmt.Sprintf("%.1f%%", v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func dimensionLabel(dimension string) string {
	switch dimension {
	case DimRegion:
		return "Region"
	case DimProduct:
		return "Product"
	case DimChannel:
		return "Channel"
	case DimSegment:
		return "Segment"
	case DimSalesperson:
		return "Salesperson"
	case DimMonth:
		return "Month"
	default:
		return "Group"
	}
}

func metricLabel(metric string) string {
	switch metric {
	case MetricQuantity:
		return "Units sold"
	case MetricTransactions:
		return "Transactions"
	case MetricCustomers:
		return "Customers"
	case MetricAvgOrder:
		return "Avg order value"
	case MetricAvgDiscount:
		return "Avg discount"
	default:
		return "Revenue"
	}
}

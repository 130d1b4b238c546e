// Package report renders sales summaries for stdout, files, and Slack, and
// schedules recurring runs.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/warehouse"
)

const topProducts = 10

// Data holds every aggregate a report renders, whatever its source.
type Data struct {
	Summary     models.SummaryMetrics   `json:"summary"`
	Regions     []models.RegionMetrics  `json:"regions"`
	Products    []models.ProductMetrics `json:"products"`
	Channels    []models.ChannelMetrics `json:"channels"`
	Monthly     []models.MonthlyPoint   `json:"monthly"`
	GeneratedAt time.Time               `json:"generated_at"`
	Source      string                  `json:"source"`
}

// FromAnalytics snapshots the in-memory engine's aggregates.
func FromAnalytics(a *services.Analytics) Data {
	return Data{
		Summary:     a.Summary(),
		Regions:     a.RegionMetrics(),
		Products:    a.TopProducts(topProducts),
		Channels:    a.ChannelMetrics(),
		Monthly:     a.MonthlyRevenue(),
		GeneratedAt: time.Now().UTC(),
		Source:      "file",
	}
}

// FromWarehouse runs the push-down aggregate queries instead of loading the
// dataset into memory.
func FromWarehouse(ctx context.Context, store warehouse.Store) (Data, error) {
	summary, err := store.Summary(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("warehouse summary: %w", err)
	}
	regions, err := store.RegionRevenue(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("warehouse regions: %w", err)
	}
	products, err := store.TopProducts(ctx, topProducts)
	if err != nil {
		return Data{}, fmt.Errorf("warehouse products: %w", err)
	}
	monthly, err := store.MonthlyRevenue(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("warehouse monthly: %w", err)
	}
	return Data{
		Summary:     summary,
		Regions:     regions,
		Products:    products,
		Monthly:     monthly,
		GeneratedAt: time.Now().UTC(),
		Source:      "warehouse",
	}, nil
}

// Markdown renders the report for files and Slack.
func (d Data) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sales Report - %s\n\n", d.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Data range %s to %s (%s source).\n\n", d.Summary.FirstDate, d.Summary.LastDate, d.Source)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total revenue:** $%.2f\n", d.Summary.TotalRevenue)
	fmt.Fprintf(&b, "- **Transactions:** %d\n", d.Summary.Transactions)
	fmt.Fprintf(&b, "- **Average transaction:** $%.2f\n", d.Summary.AvgTransaction)
	fmt.Fprintf(&b, "- **Unique customers:** %d\n", d.Summary.UniqueCustomers)
	fmt.Fprintf(&b, "- **Units sold:** %d\n", d.Summary.UnitsSold)
	fmt.Fprintf(&b, "- **Average discount:** %.1f%%\n\n", d.Summary.AvgDiscount)

	if len(d.Regions) > 0 {
		b.WriteString("## Revenue by region\n\n")
		b.WriteString("| Region | Revenue | Transactions | Customers |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, r := range d.Regions {
			fmt.Fprintf(&b, "| %s | $%.2f | %d | %d |\n", r.Region, r.Revenue, r.Transactions, r.UniqueCustomers)
		}
		b.WriteString("\n")
	}

	if len(d.Products) > 0 {
		b.WriteString("## Top products\n\n")
		b.WriteString("| Product | Revenue | Units | Revenue/unit |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, p := range d.Products {
			fmt.Fprintf(&b, "| %s | $%.2f | %d | $%.2f |\n", p.Product, p.Revenue, p.UnitsSold, p.RevenuePerUnit)
		}
		b.WriteString("\n")
	}

	if len(d.Channels) > 0 {
		b.WriteString("## Channels\n\n")
		b.WriteString("| Channel | Revenue | Share |\n")
		b.WriteString("|---|---|---|\n")
		for _, c := range d.Channels {
			fmt.Fprintf(&b, "| %s | $%.2f | %.1f%% |\n", c.Channel, c.Revenue, c.RevenueShare)
		}
		b.WriteString("\n")
	}

	if len(d.Monthly) > 0 {
		b.WriteString("## Monthly revenue\n\n")
		b.WriteString("| Month | Revenue | Transactions |\n")
		b.WriteString("|---|---|---|\n")
		for _, m := range d.Monthly {
			fmt.Fprintf(&b, "| %s | $%.2f | %d |\n", m.Month, m.Revenue, m.Transactions)
		}
	}

	return b.String()
}

// Table renders the report for terminals.
func (d Data) Table() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "SALES REPORT\t%s\n", d.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Total revenue\t$%.2f\n", d.Summary.TotalRevenue)
	fmt.Fprintf(w, "Transactions\t%d\n", d.Summary.Transactions)
	fmt.Fprintf(w, "Avg transaction\t$%.2f\n", d.Summary.AvgTransaction)
	fmt.Fprintf(w, "Unique customers\t%d\n", d.Summary.UniqueCustomers)
	fmt.Fprintln(w)

	if len(d.Regions) > 0 {
		fmt.Fprintln(w, "REGION\tREVENUE\tTRANSACTIONS")
		for _, r := range d.Regions {
			fmt.Fprintf(w, "%s\t$%.2f\t%d\n", r.Region, r.Revenue, r.Transactions)
		}
		fmt.Fprintln(w)
	}

	if len(d.Products) > 0 {
		fmt.Fprintln(w, "PRODUCT\tREVENUE\tUNITS")
		for _, p := range d.Products {
			fmt.Fprintf(w, "%s\t$%.2f\t%d\n", p.Product, p.Revenue, p.UnitsSold)
		}
	}

	w.Flush()
	return b.String()
}

// JSON renders the report for machines.
func (d Data) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Render dispatches on format: md, table, or json.
func (d Data) Render(format string) (string, error) {
	switch format {
	case "md", "markdown":
		return d.Markdown(), nil
	case "table", "":
		return d.Table(), nil
	case "json":
		out, err := d.JSON()
		return string(out), err
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile saves the markdown report as sales_report_YYYYMMDD.md under dir.
func WriteFile(content, dir string, date time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("sales_report_%s.md", date.Format("20060102")))
	return path, os.WriteFile(path, []byte(content), 0644)
}

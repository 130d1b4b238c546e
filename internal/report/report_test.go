package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func sampleData() Data {
	return Data{
		Summary: models.SummaryMetrics{
			TotalRevenue:    5000,
			Transactions:    4,
			AvgTransaction:  1250,
			UniqueCustomers: 3,
			UnitsSold:       9,
			AvgDiscount:     4.5,
			FirstDate:       "2026-01-01",
			LastDate:        "2026-06-30",
		},
		Regions: []models.RegionMetrics{
			{Region: "North", Revenue: 3500, Transactions: 2, UniqueCustomers: 2},
			{Region: "South", Revenue: 1500, Transactions: 2, UniqueCustomers: 1},
		},
		Products: []models.ProductMetrics{
			{Product: "Laptop Pro 15", Revenue: 4200, UnitsSold: 3, RevenuePerUnit: 1400},
		},
		Channels: []models.ChannelMetrics{
			{Channel: "Online", Revenue: 3000, RevenueShare: 60},
			{Channel: "Retail", Revenue: 2000, RevenueShare: 40},
		},
		Monthly: []models.MonthlyPoint{
			{Month: "2026-01", Revenue: 2500, Transactions: 2},
			{Month: "2026-02", Revenue: 2500, Transactions: 2},
		},
		GeneratedAt: time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
		Source:      "file",
	}
}

func TestMarkdownSections(t *testing.T) {
	md := sampleData().Markdown()

	for _, want := range []string{
		"# Sales Report - 2026-08-31",
		"**Total revenue:** $5000.00",
		"## Revenue by region",
		"| North | $3500.00 | 2 | 2 |",
		"## Top products",
		"| Laptop Pro 15 | $4200.00 | 3 | $1400.00 |",
		"## Channels",
		"| Online | $3000.00 | 60.0% |",
		"## Monthly revenue",
		"| 2026-01 | $2500.00 | 2 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestTableFormat(t *testing.T) {
	out := sampleData().Table()

	if !strings.Contains(out, "SALES REPORT") {
		t.Error("table missing header")
	}
	if !strings.Contains(out, "North") || !strings.Contains(out, "$3500.00") {
		t.Error("table missing region rows")
	}
}

func TestJSONRoundTrips(t *testing.T) {
	raw, err := sampleData().JSON()
	if err != nil {
		t.Fatal(err)
	}

	var decoded Data
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode report JSON: %v", err)
	}
	if decoded.Summary.TotalRevenue != 5000 {
		t.Errorf("revenue after round trip = %g", decoded.Summary.TotalRevenue)
	}
	if len(decoded.Regions) != 2 {
		t.Errorf("regions after round trip = %d", len(decoded.Regions))
	}
}

func TestRenderDispatch(t *testing.T) {
	d := sampleData()

	for _, format := range []string{"md", "table", "json"} {
		if _, err := d.Render(format); err != nil {
			t.Errorf("Render(%q) error: %v", format, err)
		}
	}
	if _, err := d.Render("pdf"); err == nil {
		t.Error("Render should reject unknown formats")
	}
}

func TestFromAnalytics(t *testing.T) {
	a := services.NewAnalytics()
	a.SetData([]models.Transaction{
		{
			TransactionID: "t1", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Product: "Laptop Pro 15", Quantity: 1, UnitPrice: 1000, TotalAmount: 1000,
			CustomerID: "c1", Region: "North", SalesChannel: "Online",
		},
	})

	d := FromAnalytics(a)
	if d.Summary.TotalRevenue != 1000 {
		t.Errorf("revenue = %g", d.Summary.TotalRevenue)
	}
	if d.Source != "file" {
		t.Errorf("source = %q", d.Source)
	}
	if len(d.Regions) != 1 {
		t.Errorf("regions = %d", len(d.Regions))
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	path, err := WriteFile("# report body", dir, date)
	if err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if !strings.HasSuffix(path, "sales_report_20260831.md") {
		t.Errorf("unexpected path %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# report body" {
		t.Errorf("content = %q", content)
	}
}

type fakePoster struct {
	channel string
	text    string
	err     error
}

func (f *fakePoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channel = channelID
	return "", "", f.err
}

func TestDeliverSlack(t *testing.T) {
	poster := &fakePoster{}
	if err := DeliverSlack(poster, "C123", "report"); err != nil {
		t.Fatalf("DeliverSlack() error: %v", err)
	}
	if poster.channel != "C123" {
		t.Errorf("posted to %q", poster.channel)
	}
}

func TestDeliverSlackErrors(t *testing.T) {
	if err := DeliverSlack(&fakePoster{}, "", "report"); err == nil {
		t.Error("missing channel should error")
	}

	poster := &fakePoster{err: fmt.Errorf("channel_not_found")}
	if err := DeliverSlack(poster, "C404", "report"); err == nil {
		t.Error("API errors should propagate")
	}
}

func TestNewSchedulerEmptySpec(t *testing.T) {
	s, err := NewScheduler("", func(context.Context) {}, slog.Default())
	if err != nil {
		t.Fatalf("empty spec should not error: %v", err)
	}
	if s != nil {
		t.Error("empty spec should yield a nil scheduler")
	}
}

func TestNewSchedulerInvalidSpec(t *testing.T) {
	if _, err := NewScheduler("not a cron line", func(context.Context) {}, slog.Default()); err == nil {
		t.Error("invalid cron expression should error")
	}
}

func TestSchedulerRunsJob(t *testing.T) {
	ran := make(chan struct{}, 1)
	// Every-minute spec; the run loop fires when the timer elapses, so use a
	// short-circuit: stop immediately and assert clean shutdown instead of
	// waiting a minute for the tick.
	s, err := NewScheduler("* * * * *", func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop promptly")
	}
}

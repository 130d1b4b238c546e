package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sales-dashboard/internal/models"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sales*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func newTestAnalytics(t *testing.T) *Analytics {
	t.Helper()
	a := NewAnalytics()
	a.SetCacheDir(filepath.Join(t.TempDir(), "cache"))
	return a
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			TransactionID:   "c1a0",
			Date:            time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Product:         "Laptop Pro 15",
			Quantity:        2,
			UnitPrice:       1299.99,
			DiscountPercent: 5,
			TotalAmount:     2469.98,
			CustomerID:      "cust-1",
			CustomerName:    "Dana West",
			CustomerEmail:   "dana.west@example.com",
			CustomerSegment: "Enterprise",
			Region:          "North",
			SalesChannel:    "Online",
			Salesperson:     "Alex Morgan",
			SalespersonTier: "top_performer",
		},
		{
			TransactionID:   "c1a1",
			Date:            time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			Product:         "Wireless Mouse",
			Quantity:        3,
			UnitPrice:       49.99,
			DiscountPercent: 0,
			TotalAmount:     149.97,
			CustomerID:      "cust-2",
			CustomerName:    "Sam Ortiz",
			CustomerEmail:   "sam.ortiz@example.com",
			CustomerSegment: "Consumer",
			Region:          "South",
			SalesChannel:    "Retail",
			Salesperson:     "Jamie Lee",
			SalespersonTier: "average",
		},
		{
			TransactionID:   "c1a2",
			Date:            time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			Product:         "Laptop Pro 15",
			Quantity:        1,
			UnitPrice:       1299.99,
			DiscountPercent: 10,
			TotalAmount:     1169.99,
			CustomerID:      "cust-1",
			CustomerName:    "Dana West",
			CustomerEmail:   "dana.west@example.com",
			CustomerSegment: "Enterprise",
			Region:          "North",
			SalesChannel:    "Partner",
			Salesperson:     "Alex Morgan",
			SalespersonTier: "top_performer",
		},
	}
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.precomputed == nil {
		t.Error("precomputed should be initialized")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	summary := a.Summary()
	if summary.Transactions != 3 {
		t.Errorf("expected 3 transactions, got %d", summary.Transactions)
	}
	if summary.UniqueCustomers != 2 {
		t.Errorf("expected 2 unique customers, got %d", summary.UniqueCustomers)
	}
	if summary.UnitsSold != 6 {
		t.Errorf("expected 6 units sold, got %d", summary.UnitsSold)
	}

	wantRevenue := 2469.98 + 149.97 + 1169.99
	if diff := summary.TotalRevenue - wantRevenue; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected total revenue ~%.2f, got %.2f", wantRevenue, summary.TotalRevenue)
	}

	if summary.FirstDate != "2025-01-15" || summary.LastDate != "2025-02-03" {
		t.Errorf("unexpected date span: %s .. %s", summary.FirstDate, summary.LastDate)
	}
}

func TestAnalytics_RegionMetrics(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	regions := a.RegionMetrics()
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}

	// Sorted by revenue descending: North first.
	if regions[0].Region != "North" {
		t.Errorf("expected North first, got %q", regions[0].Region)
	}
	if regions[0].Transactions != 2 {
		t.Errorf("expected 2 North transactions, got %d", regions[0].Transactions)
	}
	if regions[0].UniqueCustomers != 1 {
		t.Errorf("expected 1 unique North customer, got %d", regions[0].UniqueCustomers)
	}
	if regions[0].Revenue < regions[1].Revenue {
		t.Error("regions should be sorted by revenue descending")
	}
}

func TestAnalytics_TopProducts(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	products := a.TopProducts(10)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	if products[0].Product != "Laptop Pro 15" {
		t.Errorf("expected Laptop Pro 15 first, got %q", products[0].Product)
	}
	if products[0].UnitsSold != 3 {
		t.Errorf("expected 3 laptop units, got %d", products[0].UnitsSold)
	}
	if products[0].RevenuePerUnit <= 0 {
		t.Error("revenue per unit should be positive")
	}

	limited := a.TopProducts(1)
	if len(limited) != 1 {
		t.Errorf("TopProducts(1) should return 1 result, got %d", len(limited))
	}
}

func TestAnalytics_MonthlyRevenue(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	monthly := a.MonthlyRevenue()
	if len(monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(monthly))
	}

	// Chronological order.
	if monthly[0].Month != "2025-01" || monthly[1].Month != "2025-02" {
		t.Errorf("months out of order: %s, %s", monthly[0].Month, monthly[1].Month)
	}

	wantJan := 2469.98 + 149.97
	if diff := monthly[0].Revenue - wantJan; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected January revenue ~%.2f, got %.2f", wantJan, monthly[0].Revenue)
	}
}

func TestAnalytics_MonthlyByRegion(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	all := a.MonthlyByRegion("")
	if len(all) != 2 {
		t.Fatalf("expected series for 2 regions, got %d", len(all))
	}

	north := a.MonthlyByRegion("north")
	if len(north) != 1 {
		t.Fatalf("expected a single series for North, got %d", len(north))
	}
	if len(north[0].Points) != 2 {
		t.Errorf("expected 2 monthly points for North, got %d", len(north[0].Points))
	}

	if unknown := a.MonthlyByRegion("Atlantis"); unknown != nil {
		t.Errorf("expected nil for unknown region, got %v", unknown)
	}
}

func TestAnalytics_ChannelAndSegmentMetrics(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	channels := a.ChannelMetrics()
	if len(channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(channels))
	}
	var totalShare float64
	for _, c := range channels {
		totalShare += c.RevenueShare
	}
	if totalShare < 99.0 || totalShare > 101.0 {
		t.Errorf("channel revenue shares should sum to ~100, got %.2f", totalShare)
	}

	segments := a.SegmentMetrics()
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Segment != "Enterprise" {
		t.Errorf("expected Enterprise to lead revenue, got %q", segments[0].Segment)
	}
	if segments[0].AvgOrderValue <= 0 {
		t.Error("avg order value should be positive")
	}
}

func TestAnalytics_SalespersonLeaders(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	leaders := a.SalespersonLeaders(5)
	if len(leaders) != 2 {
		t.Fatalf("expected 2 salespeople, got %d", len(leaders))
	}
	if leaders[0].Salesperson != "Alex Morgan" {
		t.Errorf("expected Alex Morgan to lead, got %q", leaders[0].Salesperson)
	}
	if leaders[0].Tier != "top_performer" {
		t.Errorf("expected top_performer tier, got %q", leaders[0].Tier)
	}
	if leaders[0].Deals != 2 {
		t.Errorf("expected 2 deals, got %d", leaders[0].Deals)
	}
}

func TestAnalytics_ProductRegionMatrix(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	cells := a.ProductRegionMatrix(15)
	if len(cells) != 2 {
		t.Fatalf("expected 2 matrix cells, got %d", len(cells))
	}

	// Product-major order, top product first.
	if cells[0].Product != "Laptop Pro 15" || cells[0].Region != "North" {
		t.Errorf("unexpected first cell: %+v", cells[0])
	}

	only := a.ProductRegionMatrix(1)
	for _, cell := range only {
		if cell.Product != "Laptop Pro 15" {
			t.Errorf("matrix limited to top product should not contain %q", cell.Product)
		}
	}
}

func TestAnalytics_Query(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	tests := []struct {
		name        string
		filter      models.Filter
		wantMatched int64
	}{
		{
			name:        "by region",
			filter:      models.Filter{Regions: []string{"North"}},
			wantMatched: 2,
		},
		{
			name:        "region case-insensitive",
			filter:      models.Filter{Regions: []string{"north"}},
			wantMatched: 2,
		},
		{
			name:        "by product and channel",
			filter:      models.Filter{Products: []string{"Laptop Pro 15"}, Channels: []string{"Partner"}},
			wantMatched: 1,
		},
		{
			name: "by date range",
			filter: models.Filter{
				From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			},
			wantMatched: 1,
		},
		{
			name:        "no match",
			filter:      models.Filter{Segments: []string{"Education"}},
			wantMatched: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Query(tt.filter)
			if result.RecordCount != tt.wantMatched {
				t.Errorf("Query() matched %d records, want %d", result.RecordCount, tt.wantMatched)
			}
		})
	}

	// Zero filter returns the precomputed data untouched.
	full := a.Query(models.Filter{})
	if full.RecordCount != 3 {
		t.Errorf("zero filter should return all records, got %d", full.RecordCount)
	}
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	rows := []string{strings.Join(models.CSVHeader, ",")}
	for _, tx := range sampleTransactions() {
		rows = append(rows, strings.Join(tx.Record(), ","))
	}

	f := createTempCSV(t, strings.Join(rows, "\n"))

	a := newTestAnalytics(t)
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() with valid data should not error, got: %v", err)
	}

	if got := a.Summary().Transactions; got != 3 {
		t.Errorf("expected 3 transactions after load, got %d", got)
	}
	if got := len(a.Transactions()); got != 3 {
		t.Errorf("expected 3 retained transactions, got %d", got)
	}
}

func TestAnalytics_LoadFromCSV_SkipsBadRows(t *testing.T) {
	good := strings.Join(sampleTransactions()[0].Record(), ",")
	bad := "tx-bad,not-a-date,Widget,1,10.00,0.0,10.00,c,Name,e@x.com,SMB,North,Online,Rep,average"
	csv := strings.Join([]string{strings.Join(models.CSVHeader, ","), good, bad}, "\n")

	f := createTempCSV(t, csv)

	a := newTestAnalytics(t)
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() should tolerate bad rows, got: %v", err)
	}

	stats := a.Stats()
	if stats["record_count"].(int64) != 1 {
		t.Errorf("expected 1 valid record, got %v", stats["record_count"])
	}
	if stats["skipped_records"].(int64) != 1 {
		t.Errorf("expected 1 skipped record, got %v", stats["skipped_records"])
	}
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr bool
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: true,
		},
		{
			name:    "header only",
			csv:     strings.Join(models.CSVHeader, ","),
			wantErr: true,
		},
		{
			name:    "all rows invalid",
			csv:     strings.Join(models.CSVHeader, ",") + "\nbad,row",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)

			a := newTestAnalytics(t)
			err := a.LoadFromCSV(context.Background(), f)

			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFromCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalytics_CacheRoundTrip(t *testing.T) {
	rows := []string{strings.Join(models.CSVHeader, ",")}
	for _, tx := range sampleTransactions() {
		rows = append(rows, strings.Join(tx.Record(), ","))
	}
	f := createTempCSV(t, strings.Join(rows, "\n"))

	cacheDir := filepath.Join(t.TempDir(), "cache")

	first := NewAnalytics()
	first.SetCacheDir(cacheDir)
	if err := first.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if first.Stats()["cache_hit"].(bool) {
		t.Error("first load should not be a cache hit")
	}

	second := NewAnalytics()
	second.SetCacheDir(cacheDir)
	if err := second.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if !second.Stats()["cache_hit"].(bool) {
		t.Error("second load should hit the cache")
	}
	if got := second.Summary().Transactions; got != 3 {
		t.Errorf("cached load should have 3 transactions, got %d", got)
	}
	if got := len(second.Transactions()); got != 3 {
		t.Errorf("cached load should retain transactions, got %d", got)
	}
	if diff := cmp.Diff(first.Summary(), second.Summary()); diff != "" {
		t.Errorf("cached summary differs from fresh load (-fresh +cached):\n%s", diff)
	}
	if diff := cmp.Diff(first.RegionMetrics(), second.RegionMetrics()); diff != "" {
		t.Errorf("cached region metrics differ (-fresh +cached):\n%s", diff)
	}
}

func TestAnalytics_SubscribeNotify(t *testing.T) {
	a := newTestAnalytics(t)

	ch, cancel := a.Subscribe()
	defer cancel()

	a.NotifyReload()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a reload notification")
	}

	// Dropped when the buffered slot is full; must not block.
	a.NotifyReload()
	a.NotifyReload()
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetData(sampleTransactions())

	rows := []string{strings.Join(models.CSVHeader, ",")}
	for _, tx := range sampleTransactions() {
		rows = append(rows, strings.Join(tx.Record(), ","))
	}
	f := createTempCSV(t, strings.Join(rows, "\n"))

	done := make(chan bool, 11)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = a.Summary()
			_ = a.RegionMetrics()
			_ = a.TopProducts(10)
			_ = a.MonthlyRevenue()
			_ = a.ChannelMetrics()
			_ = a.Query(models.Filter{Regions: []string{"North"}})
		}()
	}
	// Reload concurrently with the readers, as the watcher does.
	go func() {
		defer func() { done <- true }()
		if err := a.LoadFromCSV(context.Background(), f); err != nil {
			t.Error(err)
		}
	}()

	for i := 0; i < 11; i++ {
		<-done
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.006, 1.01},
		{2.344, 2.34},
		{2.345, 2.35},
		{-2.345, -2.35},
		{-1.004, -1.0},
		{0, 0},
		{1e16, 1e16},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := newTestAnalytics(t)

	if got := a.Summary().Transactions; got != 0 {
		t.Errorf("empty engine should report 0 transactions, got %d", got)
	}
	if got := len(a.RegionMetrics()); got != 0 {
		t.Errorf("RegionMetrics() should be empty, got %d", got)
	}
	if got := len(a.TopProducts(10)); got != 0 {
		t.Errorf("TopProducts() should be empty, got %d", got)
	}
	if got := len(a.MonthlyRevenue()); got != 0 {
		t.Errorf("MonthlyRevenue() should be empty, got %d", got)
	}
}

func BenchmarkAnalytics_Query(b *testing.B) {
	a := NewAnalytics()
	data := make([]models.Transaction, 0, 5000)
	base := sampleTransactions()
	for i := 0; i < 5000; i++ {
		tx := base[i%len(base)]
		tx.Date = tx.Date.AddDate(0, 0, i%365)
		data = append(data, tx)
	}
	a.SetData(data)

	filter := models.Filter{Regions: []string{"North"}, Channels: []string{"Online"}}

	b.ResetTimer()
	for b.Loop() {
		_ = a.Query(filter)
	}
}

func BenchmarkAnalytics_TopProducts(b *testing.B) {
	a := NewAnalytics()
	a.SetData(sampleTransactions())

	b.ResetTimer()
	for b.Loop() {
		_ = a.TopProducts(10)
	}
}

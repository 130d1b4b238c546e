package models

import (
	"testing"
	"time"
)

func filterTx() Transaction {
	return Transaction{
		Date:            time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Product:         "Laptop",
		Region:          "West",
		SalesChannel:    "Online",
		CustomerSegment: "Enterprise",
	}
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter matches all", Filter{}, true},
		{"matching region", Filter{Regions: []string{"West"}}, true},
		{"region case insensitive", Filter{Regions: []string{"west"}}, true},
		{"wrong region", Filter{Regions: []string{"East"}}, false},
		{"or within dimension", Filter{Regions: []string{"East", "West"}}, true},
		{"and across dimensions", Filter{Regions: []string{"West"}, Channels: []string{"Retail"}}, false},
		{"all dimensions match", Filter{
			Regions:  []string{"West"},
			Products: []string{"Laptop"},
			Channels: []string{"Online"},
			Segments: []string{"Enterprise"},
		}, true},
		{"inside date range", Filter{
			From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		}, true},
		{"before from", Filter{From: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}, false},
		{"after to", Filter{To: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)}, false},
		{"whitespace in wanted value", Filter{Products: []string{" Laptop "}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(filterTx()); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterIsZero(t *testing.T) {
	if !(Filter{}).IsZero() {
		t.Error("empty filter should be zero")
	}
	if (Filter{Regions: []string{"West"}}).IsZero() {
		t.Error("filter with a region is not zero")
	}
	if (Filter{From: time.Now()}).IsZero() {
		t.Error("filter with a date bound is not zero")
	}
}

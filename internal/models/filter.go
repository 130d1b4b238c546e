package models

import (
	"strings"
	"time"
)

// Filter narrows a set of transactions. Within a dimension the values are
// OR-ed, across dimensions they are AND-ed. Zero-value fields match
// everything.
type Filter struct {
	Regions  []string
	Products []string
	Channels []string
	Segments []string
	From     time.Time
	To       time.Time
}

func (f Filter) IsZero() bool {
	return len(f.Regions) == 0 &&
		len(f.Products) == 0 &&
		len(f.Channels) == 0 &&
		len(f.Segments) == 0 &&
		f.From.IsZero() &&
		f.To.IsZero()
}

func (f Filter) Match(tx Transaction) bool {
	if !matchDim(tx.Region, f.Regions) {
		return false
	}
	if !matchDim(tx.Product, f.Products) {
		return false
	}
	if !matchDim(tx.SalesChannel, f.Channels) {
		return false
	}
	if !matchDim(tx.CustomerSegment, f.Segments) {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	return true
}

func matchDim(value string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if strings.EqualFold(strings.TrimSpace(w), value) {
			return true
		}
	}
	return false
}

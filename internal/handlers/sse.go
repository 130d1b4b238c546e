package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"sales-dashboard/internal/insight"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	maxTableRows    = 50
	topProductRows  = 10
	leaderboardRows = 10
	matrixRows      = 15
)

var summaryCardsTemplate = template.Must(template.New("summaryCards").Parse(`
<div id="summary-cards" class="cards">
<div class="card"><div class="label">Total Sales</div><div class="value">${{printf "%.2f" .Summary.TotalRevenue}}</div></div>
<div class="card"><div class="label">Transactions</div><div class="value">{{.Summary.Transactions}}</div></div>
<div class="card"><div class="label">Avg Transaction</div><div class="value">${{printf "%.2f" .Summary.AvgTransaction}}</div></div>
<div class="card"><div class="label">Unique Customers</div><div class="value">{{.Summary.UniqueCustomers}}</div></div>
<div class="card"><div class="label">Units Sold</div><div class="value">{{.Summary.UnitsSold}}</div></div>
</div>`))

var regionTableTemplate = template.Must(template.New("regionTable").Parse(`
<div id="region-content">
<table class="modern-table">
<thead><tr><th>Region</th><th>Revenue</th><th>Orders</th><th>Customers</th><th>Avg Discount</th></tr></thead>
<tbody>
{{range .Regions}}<tr>
<td>{{.Region}}</td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>{{.Transactions}}</td>
<td>{{.UniqueCustomers}}</td>
<td>{{printf "%.1f" .AvgDiscount}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var productBarsTemplate = template.Must(template.New("productBars").Parse(`
<div id="product-content">
{{range .Products}}<div class="bar-row">
<span>{{.Product}}</span>
<div class="bar" style="width: {{printf "%.1f" .Width}}%"></div>
<span class="bar-value">${{printf "%.0f" .Revenue}}</span>
</div>{{end}}
</div>`))

var monthlyBarsTemplate = template.Must(template.New("monthlyBars").Parse(`
<div id="monthly-content">
{{range .Months}}<div class="bar-row">
<span>{{.Month}}</span>
<div class="bar" style="width: {{printf "%.1f" .Width}}%"></div>
<span class="bar-value">${{printf "%.0f" .Revenue}}</span>
</div>{{end}}
</div>`))

var channelSegmentTemplate = template.Must(template.New("channelSegment").Parse(`
<div id="channel-content">
<table class="modern-table">
<thead><tr><th>Channel</th><th>Revenue</th><th>Share</th></tr></thead>
<tbody>
{{range .Channels}}<tr><td>{{.Channel}}</td><td>${{printf "%.2f" .Revenue}}</td><td>{{printf "%.1f" .RevenueShare}}%</td></tr>{{end}}
</tbody>
</table>
<table class="modern-table" style="margin-top: 12px">
<thead><tr><th>Segment</th><th>Revenue</th><th>Avg Order</th></tr></thead>
<tbody>
{{range .Segments}}<tr><td>{{.Segment}}</td><td>${{printf "%.2f" .Revenue}}</td><td>${{printf "%.2f" .AvgOrderValue}}</td></tr>{{end}}
</tbody>
</table>
</div>`))

var salespersonTableTemplate = template.Must(template.New("salespersonTable").Parse(`
<div id="salesperson-content">
<table class="modern-table">
<thead><tr><th>Salesperson</th><th>Tier</th><th>Revenue</th><th>Deals</th><th>Units</th><th>Avg Discount</th></tr></thead>
<tbody>
{{range .Salespeople}}<tr>
<td>{{.Salesperson}}</td>
<td><span class="category-badge">{{.Tier}}</span></td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>{{.Deals}}</td>
<td>{{.UnitsSold}}</td>
<td>{{printf "%.1f" .AvgDiscount}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var matrixTableTemplate = template.Must(template.New("matrixTable").Parse(`
<div id="matrix-content">
<table class="modern-table">
<thead><tr><th>Product</th><th>Region</th><th>Revenue</th></tr></thead>
<tbody>
{{range .Cells}}<tr><td>{{.Product}}</td><td>{{.Region}}</td><td>${{printf "%.2f" .Revenue}}</td></tr>{{end}}
</tbody>
</table>
</div>`))

var askReplyTemplate = template.Must(template.New("askReply").Parse(`
<div id="ask-reply" class="ask-reply">
<p>{{.Reply}}</p>
{{if .Table.Rows}}<table class="modern-table">
<thead><tr>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Table.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
</tbody>
</table>{{end}}
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	assistant *insight.Service
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, assistant *insight.Service, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		assistant: assistant,
		logger:    logger,
	}
}

type barEntry struct {
	Month   string
	Product string
	Revenue float64
	Width   float64
}

// filterSignals is the dashboard's bound filter state, shipped by datastar
// in the request (GET: the datastar query param).
type filterSignals struct {
	Region  string `json:"region"`
	Product string `json:"product"`
	Channel string `json:"channel"`
	Segment string `json:"segment"`
	From    string `json:"from"`
	To      string `json:"to"`
}

func (s filterSignals) empty() bool {
	return strings.TrimSpace(s.Region) == "" && strings.TrimSpace(s.Product) == "" &&
		strings.TrimSpace(s.Channel) == "" && strings.TrimSpace(s.Segment) == "" &&
		strings.TrimSpace(s.From) == "" && strings.TrimSpace(s.To) == ""
}

func (s filterSignals) filter() (models.Filter, error) {
	f := models.Filter{
		Regions:  cleanValues([]string{s.Region}),
		Products: cleanValues([]string{s.Product}),
		Channels: cleanValues([]string{s.Channel}),
		Segments: cleanValues([]string{s.Segment}),
	}
	if err := applyDateRange(&f, s.From, s.To); err != nil {
		return models.Filter{}, err
	}
	return f, nil
}

// filterFromRequest prefers the dashboard's datastar signals and falls back
// to the plain query params shared with /api/query.
func filterFromRequest(r *http.Request) (models.Filter, error) {
	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err == nil && !signals.empty() {
		return signals.filter()
	}
	return filterFromQuery(r)
}

// HandleEvents streams the dashboard state. It pushes a full snapshot on
// connect and again whenever the dataset reloads, until the client goes away.
// Filter signals narrow the snapshot the same way the /api/query params do.
func (h *SSEHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	filter, err := filterFromRequest(r)
	if err != nil {
		h.logger.Warn("invalid filter on event stream", "error", err)
	}

	if err := h.pushSnapshot(sse, filter); err != nil {
		h.logger.Error("push dashboard snapshot", "error", err)
		return
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	reloads, cancel := h.analytics.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-reloads:
			if err := h.pushSnapshot(sse, filter); err != nil {
				h.logger.Error("push dashboard snapshot", "error", err)
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			h.logger.Debug("dashboard snapshot pushed after reload")
		}
	}
}

// HandleAsk answers the dashboard's ask box. The question arrives as a
// datastar signal and the reply goes back as an element patch, so the page
// updates in place.
func (h *SSEHandlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	var signals struct {
		Question string `json:"question"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read ask signals", "error", err)
		return
	}

	question := strings.TrimSpace(signals.Question)
	if question == "" || len(question) > maxQuestionLength || h.assistant == nil {
		return
	}

	answer := h.assistant.Ask(r.Context(), question)
	html, err := renderFragment(askReplyTemplate, answer)
	if err != nil {
		h.logger.Error("render ask reply", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Error("patch ask reply", "error", err)
	}
}

func (h *SSEHandlers) pushSnapshot(sse *datastar.ServerSentEventGenerator, filter models.Filter) error {
	data := h.analytics.Query(filter)

	fragments := []struct {
		tmpl *template.Template
		data any
	}{
		{summaryCardsTemplate, map[string]any{"Summary": data.Summary}},
		{regionTableTemplate, map[string]any{"Regions": limitRegions(data)}},
		{productBarsTemplate, map[string]any{"Products": productBars(data)}},
		{monthlyBarsTemplate, map[string]any{"Months": monthlyBars(data)}},
		{channelSegmentTemplate, map[string]any{"Channels": data.Channels, "Segments": data.Segments}},
		{salespersonTableTemplate, map[string]any{"Salespeople": limitSalespeople(data)}},
		{matrixTableTemplate, map[string]any{"Cells": limitMatrix(data)}},
	}

	for _, f := range fragments {
		html, err := renderFragment(f.tmpl, f.data)
		if err != nil {
			return err
		}
		if err := sse.PatchElements(html); err != nil {
			return err
		}
	}

	signals, err := json.Marshal(map[string]any{
		"regionsData": data.Regions,
		"monthlyData": data.Monthly,
		"recordCount": data.RecordCount,
	})
	if err != nil {
		return fmt.Errorf("marshal dashboard signals: %w", err)
	}
	return sse.PatchSignals(signals)
}

func renderFragment(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func limitRegions(data *services.PrecomputedData) any {
	if len(data.Regions) > maxTableRows {
		return data.Regions[:maxTableRows]
	}
	return data.Regions
}

func limitSalespeople(data *services.PrecomputedData) any {
	if len(data.Salespeople) > leaderboardRows {
		return data.Salespeople[:leaderboardRows]
	}
	return data.Salespeople
}

func limitMatrix(data *services.PrecomputedData) any {
	if len(data.Matrix) > matrixRows {
		return data.Matrix[:matrixRows]
	}
	return data.Matrix
}

func productBars(data *services.PrecomputedData) []barEntry {
	products := data.Products
	if len(products) > topProductRows {
		products = products[:topProductRows]
	}
	var max float64
	for _, p := range products {
		if p.Revenue > max {
			max = p.Revenue
		}
	}
	bars := make([]barEntry, 0, len(products))
	for _, p := range products {
		bars = append(bars, barEntry{Product: p.Product, Revenue: p.Revenue, Width: barWidth(p.Revenue, max)})
	}
	return bars
}

func monthlyBars(data *services.PrecomputedData) []barEntry {
	var max float64
	for _, m := range data.Monthly {
		if m.Revenue > max {
			max = m.Revenue
		}
	}
	bars := make([]barEntry, 0, len(data.Monthly))
	for _, m := range data.Monthly {
		bars = append(bars, barEntry{Month: m.Month, Revenue: m.Revenue, Width: barWidth(m.Revenue, max)})
	}
	return bars
}

func barWidth(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return value / max * 100
}

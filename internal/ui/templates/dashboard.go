// Package templates holds the server-rendered dashboard page. The page is a
// shell: every data region carries an id that the SSE stream patches once the
// datastar runtime connects to /events.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// Dashboard renders the full sales dashboard page.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Dashboard</title>
<script type="module" src="` + datastarCDN + `"></script>
<style>
:root { --bg: #f4f5f7; --card: #ffffff; --ink: #1f2933; --muted: #6b7280; --accent: #2563eb; }
* { box-sizing: border-box; }
body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--ink); }
header { background: var(--card); border-bottom: 1px solid #e5e7eb; padding: 16px 32px; display: flex; align-items: baseline; gap: 16px; }
header h1 { margin: 0; font-size: 20px; }
header span { color: var(--muted); font-size: 13px; }
main { max-width: 1200px; margin: 0 auto; padding: 24px 32px; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 16px; }
.card { background: var(--card); border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px 20px; }
.card .label { color: var(--muted); font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; }
.card .value { font-size: 26px; font-weight: 600; margin-top: 4px; }
section { background: var(--card); border: 1px solid #e5e7eb; border-radius: 8px; padding: 20px; margin-top: 24px; }
section h2 { margin: 0 0 12px; font-size: 15px; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 13px; }
.modern-table th { text-align: left; color: var(--muted); font-weight: 500; padding: 8px; border-bottom: 2px solid #e5e7eb; }
.modern-table td { padding: 8px; border-bottom: 1px solid #f3f4f6; }
.bar-row { display: grid; grid-template-columns: 140px 1fr 110px; align-items: center; gap: 12px; margin: 6px 0; font-size: 13px; }
.bar { height: 18px; border-radius: 3px; background: var(--accent); min-width: 2px; }
.bar-value { text-align: right; color: var(--muted); }
.filters { display: flex; flex-wrap: wrap; gap: 12px; align-items: flex-end; }
.filters label { display: flex; flex-direction: column; font-size: 12px; color: var(--muted); gap: 4px; }
.filters input, .filters select { padding: 6px 8px; border: 1px solid #d1d5db; border-radius: 6px; font-size: 13px; }
.filters button, .ask button { padding: 8px 16px; border: none; border-radius: 6px; background: var(--accent); color: #fff; font-size: 13px; cursor: pointer; }
.ask { display: flex; gap: 12px; }
.ask input { flex: 1; padding: 8px 12px; border: 1px solid #d1d5db; border-radius: 6px; font-size: 14px; }
.ask-reply { margin-top: 12px; font-size: 14px; }
.grid-2 { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; }
@media (max-width: 900px) { .grid-2 { grid-template-columns: 1fr; } }
.loading { color: var(--muted); font-size: 13px; }
</style>
</head>
<body data-signals="{region: '', product: '', channel: '', segment: '', from: '', to: '', question: ''}" data-on-load="@get('/events')">
<header>
	<h1>Sales Dashboard</h1>
	<span>live view over the sales transactions dataset</span>
</header>
<main>
	<div id="summary-cards" class="cards"><div class="card loading">Loading summary…</div></div>

	<section>
		<h2>Filters</h2>
		<div class="filters">
			<label>Region <input type="text" data-bind-region placeholder="e.g. North"></label>
			<label>Product <input type="text" data-bind-product placeholder="e.g. Laptop"></label>
			<label>Channel <input type="text" data-bind-channel placeholder="e.g. Online"></label>
			<label>Segment <input type="text" data-bind-segment placeholder="e.g. Enterprise"></label>
			<label>From <input type="date" data-bind-from></label>
			<label>To <input type="date" data-bind-to></label>
			<button data-on-click="@get('/events')">Apply</button>
		</div>
	</section>

	<section class="ask-section">
		<h2>Ask the data</h2>
		<div class="ask">
			<input type="text" data-bind-question placeholder="Which region drove Q4 revenue?" data-on-keydown__key.enter="@post('/sse/ask')">
			<button data-on-click="@post('/sse/ask')">Ask</button>
		</div>
		<div id="ask-reply" class="ask-reply"></div>
	</section>

	<div class="grid-2">
		<section><h2>Revenue by region</h2><div id="region-content" class="loading">Loading…</div></section>
		<section><h2>Monthly revenue</h2><div id="monthly-content" class="loading">Loading…</div></section>
	</div>

	<div class="grid-2">
		<section><h2>Top products</h2><div id="product-content" class="loading">Loading…</div></section>
		<section><h2>Channels &amp; segments</h2><div id="channel-content" class="loading">Loading…</div></section>
	</div>

	<section><h2>Salesperson leaderboard</h2><div id="salesperson-content" class="loading">Loading…</div></section>
	<section><h2>Product × region revenue</h2><div id="matrix-content" class="loading">Loading…</div></section>
</main>
</body>
</html>
`

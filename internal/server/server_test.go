package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/insight"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	analytics := services.NewAnalytics()
	analytics.SetData([]models.Transaction{
		{
			TransactionID:   "TX-1",
			Date:            time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Product:         "Laptop Pro 15",
			Quantity:        1,
			UnitPrice:       1299.99,
			TotalAmount:     1299.99,
			CustomerID:      "CUST-1",
			CustomerSegment: "Enterprise",
			Region:          "Europe",
			SalesChannel:    "Online",
			Salesperson:     "Marcus Webb",
			SalespersonTier: "Senior",
		},
	})
	translator := insight.NewTranslator("", "", 0, "")
	assistant := insight.NewService(translator, insight.NewExecutor(analytics), nil, slog.Default())
	return NewServer(analytics, assistant, slog.Default())
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/summary", http.StatusOK},
		{http.MethodGet, "/api/regions", http.StatusOK},
		{http.MethodGet, "/api/products", http.StatusOK},
		{http.MethodGet, "/api/monthly", http.StatusOK},
		{http.MethodGet, "/api/channels", http.StatusOK},
		{http.MethodGet, "/api/segments", http.StatusOK},
		{http.MethodGet, "/api/salespeople", http.StatusOK},
		{http.MethodGet, "/api/matrix", http.StatusOK},
		{http.MethodGet, "/api/query", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodPost, "/api/summary", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/ask", http.StatusMethodNotAllowed},
		{http.MethodGet, "/no-such-page", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<title>Sales Dashboard</title>") {
		t.Error("page is missing the title")
	}
	if !strings.Contains(body, "@get('/events')") {
		t.Error("page should connect to the event stream on load")
	}
	// Placeholder hints must name values the generator actually emits.
	for _, hint := range []string{`placeholder="e.g. North"`, `placeholder="e.g. Laptop"`} {
		if !strings.Contains(body, hint) {
			t.Errorf("page missing filter hint %s", hint)
		}
	}
}

func TestAskBoxPatch(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sse/ask", strings.NewReader(`{"question":"revenue by region"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `id="ask-reply"`) {
		t.Errorf("expected an ask-reply patch, got: %s", w.Body.String())
	}
}

func TestAskEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"top products by revenue"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("expected success envelope, got: %s", w.Body.String())
	}
}

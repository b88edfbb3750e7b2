package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dashboard-datagen/internal/models"
)

func TestNewSSEHandlers(t *testing.T) {
	dataset := createTestDataset(t)

	handlers := NewSSEHandlers(dataset, testLogger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}

	if handlers.dataset != dataset {
		t.Error("NewSSEHandlers() should set dataset field")
	}

	if handlers.logger != testLogger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderBrandTrends(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	testData := []models.BrandTrend{
		{Brand: "Lucky Me! Pancit Canton", Category: "Noodles", Value: 1000000, PctChange: 0.05},
		{Brand: "Oishi Prawn Crackers", Category: "Snacks", Value: 750000.5, PctChange: -0.031},
	}

	html, err := handlers.renderBrandTrends(testData)
	if err != nil {
		t.Fatalf("renderBrandTrends() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="brand-trends-content">`,
		`<table class="modern-table">`,
		"<th>Brand</th>",
		"<th>Category</th>",
		"<th>Value</th>",
		"<th>Change</th>",
		"Lucky Me! Pancit Canton",
		"1000000.00",
		"5.0%",
		`<td class="up">`,
		"750000.50",
		"-3.1%",
		`<td class="down">`,
	}

	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderBrandTrends_LargeDataset(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	testData := make([]models.BrandTrend, 75)
	for i := range testData {
		testData[i] = models.BrandTrend{
			Brand:    fmt.Sprintf("Brand %d", i),
			Category: "Snacks",
			Value:    float64(i * 1000),
		}
	}

	html, err := handlers.renderBrandTrends(testData)
	if err != nil {
		t.Fatalf("renderBrandTrends() failed: %v", err)
	}

	// Count table rows - should be limited to maxTableRows (50)
	rowCount := strings.Count(html, "<tr>") - 1 // Subtract header row
	if rowCount != maxTableRows {
		t.Errorf("expected %d rows, got %d", maxTableRows, rowCount)
	}
}

func TestSSEHandlers_renderBrandTrends_Escapes(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	html, err := handlers.renderBrandTrends([]models.BrandTrend{
		{Brand: "<script>alert(1)</script>", Category: "Snacks"},
	})
	if err != nil {
		t.Fatalf("renderBrandTrends() failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("brand names should be HTML escaped")
	}
}

func TestSSEHandlers_HandleBrandTrends(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	req := httptest.NewRequest(http.MethodGet, "/sse/brand-trends", nil)
	w := httptest.NewRecorder()

	handlers.HandleBrandTrends(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<table") {
		t.Error("response should contain HTML table")
	}
	if !strings.Contains(body, "Kopiko Brown Coffee") {
		t.Error("response should list catalog brands")
	}
}

func TestSSEHandlers_HandleBrandTrends_NotGenerated(t *testing.T) {
	handlers := NewSSEHandlers(newTestService(t), testLogger)

	req := httptest.NewRequest(http.MethodGet, "/sse/brand-trends", nil)
	w := httptest.NewRecorder()

	handlers.HandleBrandTrends(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "Dataset has not been generated yet") {
		t.Errorf("expected placeholder message, got %s", body)
	}
}

func TestSSEHandlers_HandleSubstitutions(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	req := httptest.NewRequest(http.MethodGet, "/sse/substitutions", nil)
	w := httptest.NewRecorder()

	handlers.HandleSubstitutions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "substitutionData") {
		t.Error("response should contain substitutionData signal")
	}
	if !strings.Contains(body, `"substitutionCount":2`) {
		t.Errorf("expected two substitution pairs for four brands, got %s", body)
	}
	if !strings.Contains(body, "Substitution data loaded") {
		t.Error("response should contain success message")
	}
}

func TestSSEHandlers_substitutionSignals_NotGenerated(t *testing.T) {
	handlers := NewSSEHandlers(newTestService(t), testLogger)

	signals, err := handlers.substitutionSignals()
	if err != nil {
		t.Fatal(err)
	}
	if got := string(signals); got != `{"substitutionCount":0,"substitutionData":[]}` {
		t.Errorf("unexpected signals %s", got)
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{"substitutionData", "substitutionCount", "<table"} {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

// Test SSE headers consistency
func TestSSEHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewSSEHandlers(createTestDataset(t), testLogger)

	sseEndpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"brand-trends", handlers.HandleBrandTrends},
		{"substitutions", handlers.HandleSubstitutions},
		{"refresh-all", handlers.HandleRefreshAll},
	}

	for _, endpoint := range sseEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("expected cache-control 'no-cache', got %q", cc)
			}

			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
		})
	}
}

func TestSSEConstants(t *testing.T) {
	if maxTableRows != 50 {
		t.Errorf("expected maxTableRows=50, got %d", maxTableRows)
	}
	if maxSubstitutionRows != 20 {
		t.Errorf("expected maxSubstitutionRows=20, got %d", maxSubstitutionRows)
	}
}

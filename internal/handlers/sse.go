package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"dashboard-datagen/internal/models"
	"dashboard-datagen/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	maxTableRows        = 50
	maxSubstitutionRows = 20
)

const emptyDatasetHTML = `<div id="brand-trends-content">Dataset has not been generated yet</div>`

var brandTrendsTemplate = template.Must(template.New("brandTrends").Funcs(template.FuncMap{
	"pct": func(v float64) string {
		return fmt.Sprintf("%+.1f%%", v*100)
	},
}).Parse(`
<div id="brand-trends-content">
<table class="modern-table">
<thead><tr><th>Brand</th><th>Category</th><th>Value</th><th>Change</th></tr></thead>
<tbody>
{{range .Data}}<tr>
<td>{{.Brand}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td><strong>₱{{printf "%.2f" .Value}}</strong></td>
<td class="{{if lt .PctChange 0.0}}down{{else}}up{{end}}">{{pct .PctChange}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	dataset *services.DatasetService
	logger  *slog.Logger
}

func NewSSEHandlers(dataset *services.DatasetService, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dataset: dataset,
		logger:  logger,
	}
}

type templateData struct {
	Data []models.BrandTrend
}

func (h *SSEHandlers) renderBrandTrends(data []models.BrandTrend) (string, error) {
	var buf strings.Builder

	if len(data) > maxTableRows {
		data = data[:maxTableRows]
	}

	err := brandTrendsTemplate.Execute(&buf, templateData{Data: data})
	return buf.String(), err
}

func (h *SSEHandlers) substitutionSignals() ([]byte, error) {
	pairs := h.dataset.SubstitutionPatterns()
	shown := pairs
	if len(shown) > maxSubstitutionRows {
		shown = shown[:maxSubstitutionRows]
	}
	if shown == nil {
		shown = []models.SubstitutionPair{}
	}

	return json.Marshal(map[string]any{
		"substitutionData":  shown,
		"substitutionCount": len(pairs),
	})
}

func (h *SSEHandlers) brandTrendsHTML() (string, error) {
	if h.dataset.Dataset() == nil {
		return emptyDatasetHTML, nil
	}
	return h.renderBrandTrends(h.dataset.BrandTrends())
}

func (h *SSEHandlers) HandleBrandTrends(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.brandTrendsHTML()
	if err != nil {
		h.logger.Error("render brand trends table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleSubstitutions(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := h.substitutionSignals()
	if err != nil {
		h.logger.Error("marshal substitution data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="substitutions-content">Substitution data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.brandTrendsHTML()
	if err != nil {
		h.logger.Error("render brand trends table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := h.substitutionSignals()
	if err != nil {
		h.logger.Error("marshal substitution data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

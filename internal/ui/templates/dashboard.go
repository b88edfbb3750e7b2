// Package templates holds the server-rendered dashboard pages.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.5/bundles/datastar.js"

// Dashboard renders the preview page. The brand trend table and the
// substitution signals are streamed in from /sse/refresh-all on load.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, dashboardHead); err != nil {
			return err
		}
		_, err := io.WriteString(w, dashboardBody)
		return err
	})
}

const dashboardHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Retail Dashboard Data Preview</title>
<script type="module" src="` + datastarScript + `"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2937; }
header p { color: #6b7280; }
section { margin-top: 2rem; }
.modern-table { border-collapse: collapse; width: 100%; }
.modern-table th, .modern-table td { border-bottom: 1px solid #e5e7eb; padding: .4rem .6rem; text-align: left; }
.category-badge { background: #eef2ff; border-radius: 999px; padding: .1rem .5rem; font-size: .85em; }
.up { color: #047857; }
.down { color: #b91c1c; }
</style>
</head>
`

const dashboardBody = `<body data-signals="{substitutionData: [], substitutionCount: 0}" data-on-load="@get('/sse/refresh-all')">
<header>
<h1>Retail Dashboard Data Preview</h1>
<p>Synthetic transactions, baskets and brand trends generated from the brand catalog</p>
<button data-on-click="@post('/api/regenerate'); @get('/sse/refresh-all')">Regenerate</button>
</header>
<section>
<h2>Brand Trends</h2>
<div id="brand-trends-content">Loading brand trends...</div>
</section>
<section>
<h2>Substitution Patterns</h2>
<p><span data-text="$substitutionCount"></span> substitution pairs</p>
<div id="substitutions-content">Loading substitution patterns...</div>
</section>
</body>
</html>
`

// Package templates holds the templ components for the conversion UI.
// The app is a single page, so components are written directly against
// templ's Component API instead of a generation pipeline.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// UploadPage is the full conversion page. maxUpload is the human-readable
// upload cap shown in the drop zone hint.
func UploadPage(maxUpload string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, chunk := range []string{
			pageBeforeHint,
			templ.EscapeString(maxUpload),
			pageAfterHint,
		} {
			if _, err := io.WriteString(w, chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

const pageBeforeHint = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>pairlist</title>
<link rel="stylesheet" href="/static/styles.css">
<script src="/static/app.js" defer></script>
</head>
<body>
<header class="site-header">
<h1>pairlist</h1>
<p class="tagline">Turn a CSV roster into username@displayName pairs</p>
</header>
<main>
<section class="card" id="upload-card">
<div id="drop-zone" tabindex="0">
<p class="drop-title">Drop your CSV here</p>
<p class="drop-or">or</p>
<button type="button" id="browse-btn">Choose a file</button>
<input type="file" id="file-input" accept=".csv" hidden>
<p class="hint" id="upload-hint">Needs username and displayName columns &middot; up to `

const pageAfterHint = `</p>
</div>
</section>
<section class="card hidden" id="results">
<div class="results-header">
<h2 id="result-filename"></h2>
<button type="button" class="ghost" id="reset-btn">Start over</button>
</div>
<div id="summary" class="chips"></div>
<div id="dupes" class="notice hidden"></div>
<h3>Preview</h3>
<table id="preview">
<thead><tr><th>username</th><th>displayName</th></tr></thead>
<tbody id="preview-body"></tbody>
</table>
<h3>Flattened output</h3>
<textarea id="output" readonly rows="8" spellcheck="false"></textarea>
<div class="actions">
<button type="button" id="copy-btn">Copy to clipboard</button>
<a class="button" id="download-btn" download>Download .txt</a>
<a class="button ghost" id="export-btn" download>Download normalized CSV</a>
</div>
</section>
</main>
<div id="toasts" aria-live="polite"></div>
<noscript><p class="notice">This tool needs JavaScript to upload and convert files.</p></noscript>
<footer><p>Files are processed in memory and forgotten after a short retention window.</p></footer>
</body>
</html>
`

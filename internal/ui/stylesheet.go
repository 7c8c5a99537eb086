package ui

import "net/http"

// Stylesheet serves the single application stylesheet.
func (h *Handler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(appCSS))
}

const appCSS = `
:root {
  --bg: #f6f7f9;
  --panel: #ffffff;
  --border: #d9dde3;
  --text: #1f2933;
  --muted: #6b7683;
  --accent: #2563eb;
  --error: #b91c1c;
}

* { box-sizing: border-box; }

body {
  margin: 0;
  font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
  background: var(--bg);
  color: var(--text);
}

.layout {
  display: flex;
  min-height: 100vh;
  align-items: flex-start;
}

.sidebar {
  width: 260px;
  flex-shrink: 0;
  padding: 1.5rem 1.25rem;
  background: var(--panel);
  border-right: 1px solid var(--border);
  min-height: 100vh;
}

.sidebar h2 {
  font-size: 0.8rem;
  text-transform: uppercase;
  letter-spacing: 0.05em;
  color: var(--muted);
  margin: 1.5rem 0 0.5rem;
}

.sidebar dl { margin: 0; font-size: 0.85rem; }
.sidebar dt { color: var(--muted); margin-top: 0.5rem; }
.sidebar dd { margin: 0; }

.content {
  flex: 1;
  padding: 1.5rem 2rem;
  max-width: 1100px;
}

.page-title { margin-top: 0; }

.card {
  background: var(--panel);
  border: 1px solid var(--border);
  border-radius: 8px;
  padding: 1rem 1.25rem;
  margin-bottom: 1.25rem;
}

.card.error { border-color: var(--error); }
.card.error h2, .card.error h3 { color: var(--error); }

.card h2 { margin-top: 0; font-size: 1.05rem; }

.muted { color: var(--muted); font-size: 0.85rem; }

.metric-row { display: flex; gap: 2rem; }
.metric p { margin: 0 0 0.25rem; }
.metric strong { font-size: 1.2rem; }

.table-wrap { overflow-x: auto; }

table {
  border-collapse: collapse;
  width: 100%;
  font-size: 0.85rem;
}

th, td {
  text-align: left;
  padding: 0.35rem 0.6rem;
  border-bottom: 1px solid var(--border);
  white-space: nowrap;
}

th { color: var(--muted); font-weight: 600; }

form { margin: 0.5rem 0; }

label {
  display: inline-block;
  margin-right: 0.35rem;
  font-size: 0.85rem;
  color: var(--muted);
}

select, input[type="number"], textarea {
  font: inherit;
  padding: 0.3rem 0.5rem;
  border: 1px solid var(--border);
  border-radius: 6px;
  background: var(--panel);
  margin-right: 0.75rem;
}

textarea {
  display: block;
  width: 100%;
  min-height: 7rem;
  margin: 0.5rem 0 0.75rem;
  font-family: ui-monospace, "SF Mono", Menlo, monospace;
}

button {
  font: inherit;
  padding: 0.35rem 0.9rem;
  border-radius: 6px;
  border: 1px solid var(--border);
  cursor: pointer;
}

button.primary {
  background: var(--accent);
  border-color: var(--accent);
  color: #fff;
}

button.secondary { background: var(--panel); }

pre {
  background: var(--bg);
  border: 1px solid var(--border);
  border-radius: 6px;
  padding: 0.75rem;
  overflow-x: auto;
  font-size: 0.8rem;
  white-space: pre-wrap;
}
`

// Package ui is the web face of the dashboard. Every request renders
// the full page from scratch, the same way a reactive notebook would;
// the explorer's caches keep that cheap.
package ui

import (
	"net/http"
	"strconv"

	gomponents "maragu.dev/gomponents"

	"github.com/tablero-dev/tablero/internal/database"
	"github.com/tablero-dev/tablero/internal/errs"
	"github.com/tablero-dev/tablero/internal/explorer"
	"github.com/tablero-dev/tablero/internal/logger"
)

const (
	minPreviewLimit     = 10
	maxPreviewLimit     = 500
	defaultPreviewLimit = explorer.DefaultPreviewLimit
)

// ConnSummary is what the sidebar shows about the configured
// connection. The password never appears here: URL must be the
// redacted form.
type ConnSummary struct {
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	URL      string
}

// Handler serves the dashboard pages.
type Handler struct {
	Explorer *explorer.Explorer
	Conn     ConnSummary
	Log      *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(exp *explorer.Explorer, conn ConnSummary, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.New(nil)
	}
	return &Handler{Explorer: exp, Conn: conn, Log: log}
}

// Dashboard renders the full page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.render(w, r, renderState{
		Table:   q.Get("table"),
		Limit:   parseLimit(q.Get("limit")),
		Dataset: q.Get("dataset"),
	})
}

// RunQuery executes the submitted ad-hoc query and re-renders the full
// page with its outcome inline.
func (h *Handler) RunQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "The submitted form could not be parsed."))
		return
	}

	state := renderState{
		Table:   r.Form.Get("table"),
		Limit:   parseLimit(r.Form.Get("limit")),
		Dataset: r.Form.Get("dataset"),
		Query:   r.Form.Get("sql"),
	}
	state.QueryResult, state.QueryErr = h.runQuery(r, state.Query)
	h.render(w, r, state)
}

func (h *Handler) runQuery(r *http.Request, query string) (*database.ResultSet, string) {
	result, err := h.Explorer.RunQuery(r.Context(), query)
	if err != nil {
		h.Log.ErrorWith("ad-hoc query failed", err, nil)
		return nil, errs.DetailOf(err)
	}
	return result, ""
}

// Healthz is the liveness probe. It does not touch the database.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// renderState carries the request's selections through a render cycle.
type renderState struct {
	Table   string
	Limit   int
	Dataset string

	Query       string
	QueryResult *database.ResultSet
	QueryErr    string
}

// render assembles the dashboard data and writes the page. A
// connectivity failure halts the cycle: nothing below the status
// section is attempted.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, state renderState) {
	ctx := r.Context()

	info, err := h.Explorer.Status(ctx)
	if err != nil {
		h.Log.ErrorWith("connectivity check failed", err, map[string]interface{}{"url": h.Conn.URL})
		renderHTML(w, http.StatusServiceUnavailable, haltedPage(h.Conn, errs.DetailOf(err)))
		return
	}

	d := dashboardData{
		Conn:        h.Conn,
		Info:        info,
		Limit:       state.Limit,
		Query:       state.Query,
		QueryResult: state.QueryResult,
		QueryErr:    state.QueryErr,
	}

	tables, err := h.Explorer.Tables(ctx)
	if err != nil {
		h.Log.ErrorWith("table listing failed", err, nil)
		d.TablesErr = errs.DetailOf(err)
	} else {
		d.Tables = tables
		selected := state.Table
		if selected == "" && len(tables) > 0 {
			selected = tables[0]
		}
		if selected != "" {
			d.SelectedTable = selected
			preview, err := h.Explorer.Preview(ctx, selected, state.Limit)
			if err != nil {
				h.Log.ErrorWith("table preview failed", err, map[string]interface{}{"table": selected})
				d.PreviewErr = errs.DetailOf(err)
			} else {
				d.Preview = preview
			}
		}
	}

	refs, err := h.Explorer.Datasets(ctx)
	if err != nil {
		h.Log.ErrorWith("dataset listing failed", err, nil)
		d.DatasetsErr = errs.DetailOf(err)
	} else {
		d.Datasets = refs
		if state.Dataset != "" {
			ref, ok := h.Explorer.FindDataset(ctx, state.Dataset)
			if !ok {
				d.DatasetErr = "the selected dataset is no longer available"
			} else {
				d.SelectedDataset = state.Dataset
				table, err := h.Explorer.DatasetPreview(ctx, ref)
				if err != nil {
					h.Log.ErrorWith("dataset preview failed", err, map[string]interface{}{"dataset": ref.Label})
					d.DatasetErr = errs.DetailOf(err)
				} else {
					d.DatasetTable = table
				}
			}
		}
	}

	renderHTML(w, http.StatusOK, dashboardPage(d))
}

// parseLimit clamps the preview row limit to its allowed range.
func parseLimit(raw string) int {
	limit := defaultPreviewLimit
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < minPreviewLimit {
		limit = minPreviewLimit
	}
	if limit > maxPreviewLimit {
		limit = maxPreviewLimit
	}
	return limit
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

package ui

import (
	"fmt"
	"strconv"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"github.com/tablero-dev/tablero/internal/database"
	"github.com/tablero-dev/tablero/internal/dataset"
	"github.com/tablero-dev/tablero/internal/explorer"
)

// dashboardData is everything one render cycle puts on screen.
type dashboardData struct {
	Conn ConnSummary
	Info *database.ServerInfo

	Tables        []string
	TablesErr     string
	SelectedTable string
	Limit         int
	Preview       *database.ResultSet
	PreviewErr    string

	Datasets        []explorer.Ref
	DatasetsErr     string
	SelectedDataset string
	DatasetTable    *dataset.Table
	DatasetErr      string

	Query       string
	QueryResult *database.ResultSet
	QueryErr    string
}

func dashboardPage(d dashboardData) gomponents.Node {
	return page("Tablero",
		html.Div(
			html.Class("layout"),
			sidebar(d),
			html.Main(
				html.Class("content"),
				html.H1(html.Class("page-title"), gomponents.Text("Data Explorer")),
				statusSection(d),
				tablesSection(d),
				datasetsSection(d),
				sqlSection(d),
			),
		),
	)
}

// haltedPage is what renders when the database is unreachable. Nothing
// else is shown: without a connection the rest of the page is noise.
func haltedPage(conn ConnSummary, detail string) gomponents.Node {
	return page("Database Unavailable",
		html.Div(
			html.Class("layout"),
			html.Main(
				html.Class("content"),
				html.H1(html.Class("page-title"), gomponents.Text("Database Unavailable")),
				html.Div(
					html.Class("card error"),
					html.P(gomponents.Text("Could not connect to "+conn.URL)),
					html.Pre(gomponents.Text(detail)),
				),
				html.P(html.Class("muted"), gomponents.Text("The dashboard will retry on the next page load.")),
				html.P(html.A(html.Href("/"), gomponents.Text("Reload"))),
			),
		),
	)
}

func errorPage(title, message string) gomponents.Node {
	return page(title,
		html.Div(
			html.Class("layout"),
			html.Main(
				html.Class("content"),
				html.H1(html.Class("page-title"), gomponents.Text(title)),
				html.P(gomponents.Text(message)),
				html.P(html.A(html.Href("/"), gomponents.Text("Back to the dashboard"))),
			),
		),
	)
}

func page(title string, body ...gomponents.Node) gomponents.Node {
	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" | Tablero")),
			html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
		),
		html.Body(gomponents.Group(body)),
	)
}

func sidebar(d dashboardData) gomponents.Node {
	return html.Aside(
		html.Class("sidebar"),
		html.Strong(gomponents.Text("Tablero")),
		html.P(html.Class("muted"), gomponents.Text("Read-only data explorer")),
		html.H2(gomponents.Text("Connection")),
		html.Dl(
			html.Dt(gomponents.Text("Driver")), html.Dd(gomponents.Text(d.Conn.Driver)),
			html.Dt(gomponents.Text("Host")), html.Dd(gomponents.Text(d.Conn.Host+":"+d.Conn.Port)),
			html.Dt(gomponents.Text("Database")), html.Dd(gomponents.Text(d.Conn.Database)),
			html.Dt(gomponents.Text("User")), html.Dd(gomponents.Text(d.Conn.User)),
		),
		html.H2(gomponents.Text("Datasets")),
		datasetSelector(d),
	)
}

func datasetSelector(d dashboardData) gomponents.Node {
	if d.DatasetsErr != "" {
		return html.P(html.Class("muted"), gomponents.Text("Dataset listing unavailable."))
	}
	if len(d.Datasets) == 0 {
		return html.P(html.Class("muted"), gomponents.Text("No datasets found."))
	}

	options := make([]gomponents.Node, 0, len(d.Datasets)+1)
	options = append(options, selectOption("", d.SelectedDataset, "(none)"))
	for _, ref := range d.Datasets {
		options = append(options, selectOption(ref.ID(), d.SelectedDataset, ref.Label))
	}

	return html.Form(
		html.Method("get"),
		html.Action("/"),
		keepSelection("table", d.SelectedTable),
		keepSelection("limit", strconv.Itoa(d.Limit)),
		html.Select(html.Name("dataset"), gomponents.Group(options)),
		html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text("Browse")),
	)
}

func statusSection(d dashboardData) gomponents.Node {
	return html.Div(
		html.Class("card"),
		html.H2(gomponents.Text("Connection Status")),
		html.Div(
			html.Class("metric-row"),
			metric("Schema", d.Info.Schema),
			metric("Server version", d.Info.Version),
		),
		html.P(html.Class("muted"), gomponents.Text(d.Conn.URL)),
	)
}

func metric(label, value string) gomponents.Node {
	return html.Div(
		html.Class("metric"),
		html.P(html.Class("muted"), gomponents.Text(label)),
		html.Strong(gomponents.Text(value)),
	)
}

func tablesSection(d dashboardData) gomponents.Node {
	if d.TablesErr != "" {
		return errorCard("Tables", d.TablesErr)
	}
	if len(d.Tables) == 0 {
		return html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Tables")),
			html.P(html.Class("muted"), gomponents.Text("The schema has no tables.")),
		)
	}

	options := make([]gomponents.Node, 0, len(d.Tables))
	for _, name := range d.Tables {
		options = append(options, selectOption(name, d.SelectedTable, name))
	}

	body := []gomponents.Node{
		html.H2(gomponents.Text("Tables")),
		html.Form(
			html.Method("get"),
			html.Action("/"),
			keepSelection("dataset", d.SelectedDataset),
			html.Label(gomponents.Text("Table")),
			html.Select(html.Name("table"), gomponents.Group(options)),
			html.Label(gomponents.Text("Rows")),
			html.Input(
				html.Type("number"),
				html.Name("limit"),
				html.Min(strconv.Itoa(minPreviewLimit)),
				html.Max(strconv.Itoa(maxPreviewLimit)),
				html.Value(strconv.Itoa(d.Limit)),
			),
			html.Button(html.Type("submit"), html.Class("primary"), gomponents.Text("Preview")),
		),
	}

	if d.PreviewErr != "" {
		body = append(body,
			html.H3(gomponents.Text("Preview failed")),
			html.Pre(gomponents.Text(d.PreviewErr)),
		)
	} else if d.Preview != nil {
		body = append(body,
			html.P(html.Class("muted"), gomponents.Text(fmt.Sprintf("%s, %d row(s)", d.SelectedTable, d.Preview.RowCount()))),
			resultTable(d.Preview),
		)
	}

	return html.Div(html.Class("card table-wrap"), gomponents.Group(body))
}

func datasetsSection(d dashboardData) gomponents.Node {
	if d.SelectedDataset == "" && d.DatasetErr == "" {
		return html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Dataset Preview")),
			html.P(html.Class("muted"), gomponents.Text("Pick a dataset in the sidebar to browse it.")),
		)
	}
	if d.DatasetErr != "" {
		return errorCard("Dataset Preview", d.DatasetErr)
	}

	return html.Div(
		html.Class("card table-wrap"),
		html.H2(gomponents.Text("Dataset Preview")),
		html.P(html.Class("muted"), gomponents.Text(fmt.Sprintf("Showing the first %d row(s).", d.DatasetTable.RowCount()))),
		stringTable(d.DatasetTable.Columns, d.DatasetTable.Rows),
	)
}

func sqlSection(d dashboardData) gomponents.Node {
	body := []gomponents.Node{
		html.H2(gomponents.Text("SQL")),
		html.Form(
			html.Method("post"),
			html.Action("/query"),
			keepSelection("table", d.SelectedTable),
			keepSelection("limit", strconv.Itoa(d.Limit)),
			keepSelection("dataset", d.SelectedDataset),
			html.Textarea(html.Name("sql"), html.Placeholder("SELECT * FROM ..."), gomponents.Text(d.Query)),
			html.Button(html.Type("submit"), html.Class("primary"), gomponents.Text("Run query")),
		),
	}

	switch {
	case d.QueryErr != "":
		body = append(body,
			html.H3(gomponents.Text("Query failed")),
			html.Pre(gomponents.Text(d.QueryErr)),
		)
	case d.QueryResult != nil:
		meta := fmt.Sprintf("%d row(s)", d.QueryResult.RowCount())
		if d.QueryResult.RowCount() >= explorer.AdHocMaxRows {
			meta = fmt.Sprintf("showing the first %d row(s)", explorer.AdHocMaxRows)
		}
		body = append(body,
			html.P(html.Class("muted"), gomponents.Text(meta)),
			resultTable(d.QueryResult),
		)
	default:
		body = append(body, html.P(html.Class("muted"), gomponents.Text("Run a query to see results.")))
	}

	return html.Div(html.Class("card table-wrap"), gomponents.Group(body))
}

func errorCard(title, detail string) gomponents.Node {
	return html.Div(
		html.Class("card error"),
		html.H2(gomponents.Text(title)),
		html.Pre(gomponents.Text(detail)),
	)
}

func resultTable(rs *database.ResultSet) gomponents.Node {
	header := make([]gomponents.Node, 0, len(rs.Columns))
	for _, col := range rs.Columns {
		header = append(header, html.Th(gomponents.Text(col)))
	}

	rows := make([]gomponents.Node, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		cells := make([]gomponents.Node, 0, len(row))
		for _, cell := range row {
			cells = append(cells, html.Td(gomponents.Text(database.FormatValue(cell))))
		}
		rows = append(rows, html.Tr(gomponents.Group(cells)))
	}

	return html.Table(
		html.THead(html.Tr(gomponents.Group(header))),
		html.TBody(gomponents.Group(rows)),
	)
}

func stringTable(columns []string, data [][]string) gomponents.Node {
	header := make([]gomponents.Node, 0, len(columns))
	for _, col := range columns {
		header = append(header, html.Th(gomponents.Text(col)))
	}

	rows := make([]gomponents.Node, 0, len(data))
	for _, row := range data {
		cells := make([]gomponents.Node, 0, len(row))
		for _, cell := range row {
			cells = append(cells, html.Td(gomponents.Text(cell)))
		}
		rows = append(rows, html.Tr(gomponents.Group(cells)))
	}

	return html.Table(
		html.THead(html.Tr(gomponents.Group(header))),
		html.TBody(gomponents.Group(rows)),
	)
}

func selectOption(value, selected, label string) gomponents.Node {
	if value == selected {
		return html.Option(html.Value(value), html.Selected(), gomponents.Text(label))
	}
	return html.Option(html.Value(value), gomponents.Text(label))
}

// keepSelection renders a hidden input so a form submit does not lose
// the other sections' selections.
func keepSelection(name, value string) gomponents.Node {
	if value == "" {
		return gomponents.Text("")
	}
	return html.Input(html.Type("hidden"), html.Name(name), html.Value(value))
}

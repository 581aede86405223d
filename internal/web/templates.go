package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
)

const pageTitle = "Welcome to Food Sales Dashboard"

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type dashboardPage struct {
	Title      string
	Start      string
	End        string
	Error      string
	Dates      []selectOption
	Cities     []selectOption
	Categories []selectOption
	Headers    []string
	Rows       [][]string
	Count      int
	Total      int
	Search     bool
	Shown      bool
	AutoSubmit bool
}

type loadErrorPage struct {
	Title   string
	Message string
}

var templates = template.Must(template.New("").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.filters { display: flex; gap: 1.5rem; align-items: flex-end; margin-bottom: 1rem; }
.filters label { display: block; font-weight: bold; margin-bottom: .25rem; }
.error { color: #b91c1c; font-weight: bold; }
.count { color: #555; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: .35rem .6rem; text-align: left; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>🍽️ {{.Title}}</h1>
{{end}}

{{define "dashboard"}}{{template "head" .}}
<form class="filters" method="get" action="/">
{{if .Search}}
  <div><label for="start">Start date</label><input type="date" id="start" name="start" value="{{.Start}}"{{if .AutoSubmit}} onchange="this.form.submit()"{{end}}></div>
  <div><label for="end">End date</label><input type="date" id="end" name="end" value="{{.End}}"{{if .AutoSubmit}} onchange="this.form.submit()"{{end}}></div>
{{else}}
  <div><label for="date">Date</label>
  <select id="date" name="date" onchange="this.form.submit()">
  {{range .Dates}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
  </select></div>
{{end}}
  <div><label for="city">City:</label>
  <select id="city" name="city"{{if .AutoSubmit}} onchange="this.form.submit()"{{end}}>
  {{range .Cities}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
  </select></div>
  <div><label for="category">Category:</label>
  <select id="category" name="category"{{if .AutoSubmit}} onchange="this.form.submit()"{{end}}>
  {{range .Categories}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
  </select></div>
{{if .Search}}  <button type="submit" name="action" value="search">Search</button>{{end}}
</form>
{{if .Error}}<p class="error" role="alert">Error: {{.Error}}</p>{{end}}
{{if .Shown}}
<p class="count">Showing {{.Count}} of {{.Total}} records</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range $i, $c := .}}<td{{if ge $i 6}} class="num"{{end}}>{{$c}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{else if not .Error}}
<p class="count">Choose a date range and press Search.</p>
{{end}}
</body>
</html>
{{end}}

{{define "load_error"}}{{template "head" .}}
<p class="error" role="alert">{{.Message}}</p>
</body>
</html>
{{end}}
`))

func (s *Server) newDashboardPage(sess *filter.Session, q url.Values, rows []model.Record, shown bool, message string) dashboardPage {
	sel := sess.Selection()

	page := dashboardPage{
		Title:      pageTitle,
		Search:     sess.Mode() == filter.ModeOnDemand,
		Error:      message,
		Shown:      shown,
		AutoSubmit: sess.Mode() == filter.ModeLive || sess.Applied(),
		Headers:    model.Headers,
		Count:      len(rows),
		Total:      s.data.Len(),
		Dates:      selectOptions(filter.Choices(s.options.Dates), sel.Date, filter.AllDates),
		Cities:     selectOptions(filter.Choices(s.options.Cities), sel.City, filter.AllCities),
		Categories: selectOptions(filter.Choices(s.options.Categories), sel.Category, filter.AllCategories),
	}

	if sel.Range != nil {
		page.Start = sel.Range.Start.String()
		page.End = sel.Range.End.String()
	}
	// Keep what the user typed when it could not be parsed.
	if q.Has("start") {
		page.Start = q.Get("start")
	}
	if q.Has("end") {
		page.End = q.Get("end")
	}

	page.Rows = make([][]string, len(rows))
	for i, r := range rows {
		page.Rows[i] = r.Cells()
	}
	return page
}

func selectOptions[T comparable](choices []filter.Constraint[T], current filter.Constraint[T], all string) []selectOption {
	out := make([]selectOption, len(choices))
	for i, c := range choices {
		value := ""
		if c.IsSet() {
			value = c.Label(all)
		}
		out[i] = selectOption{Value: value, Label: c.Label(all), Selected: c == current}
	}
	return out
}

func (s *Server) renderLoadError(w http.ResponseWriter) {
	s.render(w, http.StatusServiceUnavailable, "load_error", loadErrorPage{
		Title:   pageTitle,
		Message: common.LoadFailureMessage,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Failed to render page", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Failed to write page", "error", err)
	}
}

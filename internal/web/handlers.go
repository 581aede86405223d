package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
)

var errBadDate = errors.New("enter dates as YYYY-MM-DD")

// filterKeys are the query parameters the dashboard form submits.
var filterKeys = []string{"date", "start", "end", "city", "category", "action"}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.loadErr != nil {
		s.renderLoadError(w)
		return
	}

	q := r.URL.Query()
	var (
		page     dashboardPage
		badInput error
	)

	s.sessions.With(w, r, func(sess *filter.Session) {
		if submitted(q) {
			badInput = s.applyQuery(sess, q)
		}

		var message string
		if badInput != nil {
			message = common.UserMessage(badInput)
		}
		if badInput == nil && q.Get("action") == "search" && sess.Mode() == filter.ModeOnDemand {
			if err := sess.Apply(); err != nil {
				message = common.UserMessage(err)
			}
		}

		rows, shown, err := sess.Rows(s.data)
		if err != nil && message == "" {
			message = common.UserMessage(err)
		}

		page = s.newDashboardPage(sess, q, rows, shown, message)
	})

	status := http.StatusOK
	if badInput != nil {
		status = http.StatusBadRequest
	}
	s.render(w, status, "dashboard", page)
}

func submitted(q url.Values) bool {
	for _, k := range filterKeys {
		if q.Has(k) {
			return true
		}
	}
	return false
}

// applyQuery copies the submitted controls into the session. Unknown option
// values and unparseable dates leave the session untouched.
func (s *Server) applyQuery(sess *filter.Session, q url.Values) error {
	sel, err := selectionFromQuery(sess.Selection(), sess.Mode(), q)
	if err != nil {
		return err
	}
	if !s.options.Contains(sel) {
		return common.NewUserError("Unknown filter option.", filter.ErrUnknownOption)
	}

	sess.SetCity(sel.City)
	sess.SetCategory(sel.Category)
	sess.SetDate(sel.Date)
	if sel.Range != nil {
		sess.SetRange(sel.Range.Start, sel.Range.End)
	}
	return nil
}

// selectionFromQuery overlays the query onto base. An empty value means
// unconstrained.
func selectionFromQuery(base filter.Selection, mode filter.Mode, q url.Values) (filter.Selection, error) {
	sel := base
	sel.City = stringChoice(q.Get("city"))
	sel.Category = stringChoice(q.Get("category"))

	if mode == filter.ModeLive {
		date, err := dateChoice(q.Get("date"))
		if err != nil {
			return sel, err
		}
		sel.Date = date
		return sel, nil
	}

	if q.Has("start") || q.Has("end") {
		start, err := dataset.ParseDate(q.Get("start"))
		if err != nil {
			return sel, common.NewUserError("Start date: "+errBadDate.Error()+".", err)
		}
		end, err := dataset.ParseDate(q.Get("end"))
		if err != nil {
			return sel, common.NewUserError("End date: "+errBadDate.Error()+".", err)
		}
		sel.Range = &filter.DateRange{Start: start, End: end}
	}
	return sel, nil
}

func stringChoice(v string) filter.Constraint[string] {
	if v == "" {
		return filter.Unconstrained[string]()
	}
	return filter.Constrained(v)
}

func dateChoice(v string) (filter.Constraint[civil.Date], error) {
	if v == "" {
		return filter.Unconstrained[civil.Date](), nil
	}
	d, err := dataset.ParseDate(v)
	if err != nil {
		return filter.Constraint[civil.Date]{}, common.NewUserError("Date: "+errBadDate.Error()+".", err)
	}
	return filter.Constrained(d), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.loadErr != nil {
		http.Error(w, common.LoadFailureMessage, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.data.Len()})
}

type optionsResponse struct {
	Dates      []civil.Date `json:"dates"`
	Cities     []string     `json:"cities"`
	Categories []string     `json:"categories"`
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	if s.loadErr != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: common.LoadFailureMessage})
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Dates:      s.options.Dates,
		Cities:     s.options.Cities,
		Categories: s.options.Categories,
	})
}

type recordsResponse struct {
	Records []model.Record `json:"records"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleRecords is a stateless query: the range is active when either bound
// is given, with the missing bound taken from the dataset.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if s.loadErr != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: common.LoadFailureMessage})
		return
	}

	q := r.URL.Query()
	mode := filter.ModeLive
	base := filter.Selection{}
	if q.Has("start") || q.Has("end") {
		if q.Has("date") {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Use either date or start/end, not both."})
			return
		}
		mode = filter.ModeOnDemand
		fillOpenRange(q, s.data)
	}

	sel, err := selectionFromQuery(base, mode, q)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: common.UserMessage(err)})
		return
	}

	rows, err := filter.Apply(s.data, sel)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, recordsResponse{Records: rows, Count: len(rows), Total: s.data.Len()})
}

// fillOpenRange supplies a missing range bound from the table's first or last
// date. An empty table has no bounds, so the given bound closes the range.
func fillOpenRange(q url.Values, t model.Table) {
	first, last, ok := filter.Bounds(t)
	if !ok {
		first, _ = dataset.ParseDate(q.Get("end"))
		last, _ = dataset.ParseDate(q.Get("start"))
	}
	if !q.Has("start") {
		q.Set("start", first.String())
	}
	if !q.Has("end") {
		q.Set("end", last.String())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

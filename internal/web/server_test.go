package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(id string, day int, city, category, product string) model.Record {
	return model.Record{
		ID:         id,
		Date:       civil.Date{Year: 2020, Month: time.January, Day: day},
		Region:     "East",
		City:       city,
		Category:   category,
		Product:    product,
		Quantity:   10,
		UnitPrice:  decimal.RequireFromString("1.50"),
		TotalPrice: decimal.RequireFromString("15.00"),
	}
}

func testTable(t *testing.T) model.Table {
	t.Helper()
	table, err := model.NewTable([]model.Record{
		sale("1", 1, "Boston", "Bars", "Carrot"),
		sale("2", 2, "Austin", "Cookies", "Oatmeal"),
		sale("3", 3, "Boston", "Cookies", "Ginger"),
		sale("4", 4, "Austin", "Bars", "Bran"),
		sale("5", 5, "New York", "Crackers", "Rye"),
	})
	require.NoError(t, err)
	return table
}

func newTestServer(t *testing.T, mode filter.Mode, data model.Table, loadErr error) *httptest.Server {
	t.Helper()
	s := NewServer(Config{Mode: mode}, data, loadErr)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func get(t *testing.T, client *http.Client, rawURL string) (int, string) {
	t.Helper()
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func searchURL(base string, values map[string]string) string {
	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	return base + "/?" + q.Encode()
}

func TestDashboard_LiveMode(t *testing.T) {
	ts := newTestServer(t, filter.ModeLive, testTable(t), nil)
	client := newClient(t)

	status, body := get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome to Food Sales Dashboard")
	assert.Contains(t, body, "All Dates")
	assert.Contains(t, body, "All Cities")
	assert.Contains(t, body, "All Categories")
	assert.Contains(t, body, "Showing 5 of 5 records")
	assert.Contains(t, body, "Total Price ($)")
	assert.Contains(t, body, "$15.00")

	status, body = get(t, client, searchURL(ts.URL, map[string]string{"city": "Austin", "category": "", "date": ""}))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Showing 2 of 5 records")
	assert.Contains(t, body, "Oatmeal")
	assert.Contains(t, body, "Bran")
	assert.NotContains(t, body, "Carrot")
	assert.Contains(t, body, `<option value="Austin" selected>`)

	// The selection lives in the session, so a bare reload keeps it.
	_, body = get(t, client, ts.URL+"/")
	assert.Contains(t, body, "Showing 2 of 5 records")

	_, body = get(t, client, searchURL(ts.URL, map[string]string{"city": "", "date": "2020-01-03"}))
	assert.Contains(t, body, "Showing 1 of 5 records")
	assert.Contains(t, body, "Ginger")
}

func TestDashboard_SearchModeApplyFlow(t *testing.T) {
	ts := newTestServer(t, filter.ModeOnDemand, testTable(t), nil)
	client := newClient(t)

	_, body := get(t, client, ts.URL+"/")
	assert.NotContains(t, body, "<table>")
	assert.Contains(t, body, "press Search")
	assert.Contains(t, body, `value="2020-01-01"`)
	assert.Contains(t, body, `value="2020-01-05"`)

	form := map[string]string{"start": "2020-01-01", "end": "2020-01-05", "city": "Austin", "category": ""}
	_, body = get(t, client, searchURL(ts.URL, form))
	assert.NotContains(t, body, "<table>", "no rows before the first search")

	form["action"] = "search"
	_, body = get(t, client, searchURL(ts.URL, form))
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "Showing 2 of 5 records")
	assert.Contains(t, body, "Oatmeal")

	delete(form, "action")
	form["city"] = "Boston"
	_, body = get(t, client, searchURL(ts.URL, form))
	assert.Contains(t, body, "<table>", "rows stay visible after the first search")
	assert.Contains(t, body, "Carrot")
	assert.Contains(t, body, "Ginger")
	assert.NotContains(t, body, "Oatmeal")
}

func TestDashboard_ControlsResubmitOnceApplied(t *testing.T) {
	const autoSubmit = `onchange="this.form.submit()"`

	tests := []struct {
		name    string
		mode    filter.Mode
		query   map[string]string
		control string
		want    bool
	}{
		{name: "live city", mode: filter.ModeLive, control: `<select id="city" name="city"`, want: true},
		{name: "live date", mode: filter.ModeLive, control: `<select id="date" name="date"`, want: true},
		{name: "search before apply city", mode: filter.ModeOnDemand, control: `<select id="city" name="city"`},
		{name: "search before apply start", mode: filter.ModeOnDemand, control: `<input type="date" id="start"`},
		{
			name:    "search after apply city",
			mode:    filter.ModeOnDemand,
			query:   map[string]string{"start": "2020-01-01", "end": "2020-01-05", "action": "search"},
			control: `<select id="city" name="city"`,
			want:    true,
		},
		{
			name:    "search after apply category",
			mode:    filter.ModeOnDemand,
			query:   map[string]string{"start": "2020-01-01", "end": "2020-01-05", "action": "search"},
			control: `<select id="category" name="category"`,
			want:    true,
		},
		{
			name:    "search after apply end",
			mode:    filter.ModeOnDemand,
			query:   map[string]string{"start": "2020-01-01", "end": "2020-01-05", "action": "search"},
			control: `<input type="date" id="end"`,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.mode, testTable(t), nil)
			target := ts.URL + "/"
			if tt.query != nil {
				target = searchURL(ts.URL, tt.query)
			}
			_, body := get(t, newClient(t), target)

			i := strings.Index(body, tt.control)
			require.GreaterOrEqual(t, i, 0, "control %q not rendered", tt.control)
			tag := body[i : i+strings.Index(body[i:], ">")]
			assert.Equal(t, tt.want, strings.Contains(tag, autoSubmit), tag)
		})
	}
}

func TestDashboard_InvalidRange(t *testing.T) {
	ts := newTestServer(t, filter.ModeOnDemand, testTable(t), nil)
	client := newClient(t)

	form := map[string]string{"start": "2020-01-04", "end": "2020-01-02", "city": "", "category": "", "action": "search"}
	status, body := get(t, client, searchURL(ts.URL, form))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Error: start date must be on or before end date")
	assert.NotContains(t, body, "<table>")

	// Without a successful search, a plain reload still shows no rows.
	_, body = get(t, client, ts.URL+"/")
	assert.NotContains(t, body, "<table>")

	form["end"] = "2020-01-05"
	_, body = get(t, client, searchURL(ts.URL, form))
	assert.NotContains(t, body, "Error:")
	assert.Contains(t, body, "Showing 2 of 5 records")
}

func TestDashboard_BadDateInput(t *testing.T) {
	ts := newTestServer(t, filter.ModeOnDemand, testTable(t), nil)

	form := map[string]string{"start": "someday", "end": "2020-01-02", "action": "search"}
	status, body := get(t, newClient(t), searchURL(ts.URL, form))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "Error: Start date: enter dates as YYYY-MM-DD.")
	assert.Contains(t, body, `value="someday"`)
	assert.NotContains(t, body, "<table>")
}

func TestDashboard_UnknownOption(t *testing.T) {
	ts := newTestServer(t, filter.ModeLive, testTable(t), nil)

	status, body := get(t, newClient(t), searchURL(ts.URL, map[string]string{"city": "Paris"}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "Unknown filter option.")
}

func TestDashboard_SessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t, filter.ModeOnDemand, testTable(t), nil)
	alice := newClient(t)
	bob := newClient(t)

	_, body := get(t, alice, searchURL(ts.URL, map[string]string{"action": "search"}))
	assert.Contains(t, body, "Showing 5 of 5 records")

	_, body = get(t, bob, ts.URL+"/")
	assert.NotContains(t, body, "<table>")

	_, body = get(t, alice, ts.URL+"/")
	assert.Contains(t, body, "<table>")
}

func TestDashboard_LoadFailure(t *testing.T) {
	loadErr := &dataset.LoadError{Source: "missing.csv", Err: errors.New("no such file")}
	ts := newTestServer(t, filter.ModeLive, model.Table{}, loadErr)
	client := newClient(t)

	status, body := get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, common.LoadFailureMessage)
	assert.NotContains(t, body, "<form")
	assert.NotContains(t, body, "<table>")

	status, _ = get(t, client, ts.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = get(t, client, ts.URL+"/api/records")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAPI_Options(t *testing.T) {
	ts := newTestServer(t, filter.ModeLive, testTable(t), nil)

	status, body := get(t, newClient(t), ts.URL+"/api/options")
	require.Equal(t, http.StatusOK, status)

	var got struct {
		Dates      []string `json:"dates"`
		Cities     []string `json:"cities"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, []string{"2020-01-01", "2020-01-02", "2020-01-03", "2020-01-04", "2020-01-05"}, got.Dates)
	assert.Equal(t, []string{"Austin", "Boston", "New York"}, got.Cities)
	assert.Equal(t, []string{"Bars", "Cookies", "Crackers"}, got.Categories)
}

func TestAPI_Records(t *testing.T) {
	ts := newTestServer(t, filter.ModeLive, testTable(t), nil)
	client := newClient(t)

	tests := []struct {
		name       string
		query      string
		wantIDs    []string
		wantStatus int
	}{
		{name: "everything", query: "", wantIDs: []string{"1", "2", "3", "4", "5"}, wantStatus: http.StatusOK},
		{name: "city", query: "city=Austin", wantIDs: []string{"2", "4"}, wantStatus: http.StatusOK},
		{name: "city and category", query: "city=Boston&category=Cookies", wantIDs: []string{"3"}, wantStatus: http.StatusOK},
		{name: "exact date", query: "date=2020-01-05", wantIDs: []string{"5"}, wantStatus: http.StatusOK},
		{name: "open-ended range", query: "start=2020-01-04", wantIDs: []string{"4", "5"}, wantStatus: http.StatusOK},
		{name: "inclusive range", query: "start=2020-01-02&end=2020-01-03", wantIDs: []string{"2", "3"}, wantStatus: http.StatusOK},
		{name: "no match", query: "city=Paris", wantIDs: []string{}, wantStatus: http.StatusOK},
		{name: "inverted range", query: "start=2020-01-04&end=2020-01-02", wantStatus: http.StatusUnprocessableEntity},
		{name: "bad date", query: "date=tomorrow", wantStatus: http.StatusBadRequest},
		{name: "date mixed with range", query: "date=2020-01-03&start=2020-01-01", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, client, ts.URL+"/api/records?"+tt.query)
			require.Equal(t, tt.wantStatus, status, body)
			if tt.wantStatus != http.StatusOK {
				assert.True(t, strings.Contains(body, `"error"`))
				return
			}

			var got struct {
				Records []struct {
					ID         string `json:"id"`
					TotalPrice string `json:"total_price"`
				} `json:"records"`
				Count int `json:"count"`
				Total int `json:"total"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))

			ids := make([]string, 0, len(got.Records))
			for _, r := range got.Records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), got.Count)
			assert.Equal(t, 5, got.Total)
		})
	}
}

func TestAPI_RecordsEmptyTable(t *testing.T) {
	ts := newTestServer(t, filter.ModeLive, model.Table{}, nil)
	client := newClient(t)

	for _, query := range []string{"start=2020-01-04", "end=2020-01-04"} {
		status, body := get(t, client, ts.URL+"/api/records?"+query)
		require.Equal(t, http.StatusOK, status, body)
		assert.JSONEq(t, `{"records":[],"count":0,"total":0}`, body, query)
	}
}

func TestSessionStore_Prune(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(func() *filter.Session {
		return filter.NewSession(filter.ModeLive, filter.Selection{})
	}, time.Hour)
	store.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	store.With(rec, httptest.NewRequest(http.MethodGet, "/", nil), func(*filter.Session) {})
	require.Equal(t, 1, store.Len())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	// The same cookie reuses the session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	store.With(httptest.NewRecorder(), req, func(*filter.Session) {})
	assert.Equal(t, 1, store.Len())

	now = now.Add(30 * time.Minute)
	assert.Zero(t, store.Prune())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Prune())
	assert.Zero(t, store.Len())
}

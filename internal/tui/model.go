// Package tui implements the terminal dashboard for browsing food sales.
package tui

import (
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/Veraticus/foodsales/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the dashboard state.
type Model struct {
	theme      themes.Theme
	loadErr    error
	inputErr   error
	rangeErr   error
	session    *filter.Session
	config     Config
	keymap     KeyMap
	help       help.Model
	startInput textinput.Model
	endInput   textinput.Model
	rows       table.Model
	data       model.Table
	visible    []model.Record
	dates      []filter.Constraint[civil.Date]
	cities     []filter.Constraint[string]
	categories []filter.Constraint[string]
	controls   []control
	dateIdx    int
	cityIdx    int
	catIdx     int
	focus      int
	width      int
	height     int
	shown      bool
	ready      bool
	quitting   bool
}

// New creates a dashboard model. The dataset is loaded by Init.
func New(opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(cfg)
}

func newModel(cfg Config) Model {
	h := help.New()
	h.ShowAll = false

	m := Model{
		config:     cfg,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       h,
		startInput: newDateInput(),
		endInput:   newDateInput(),
		rows:       newRecordTable(cfg.Theme),
		width:      cfg.Width,
		height:     cfg.Height,
	}

	if cfg.Mode == filter.ModeOnDemand {
		m.controls = []control{controlStart, controlEnd, controlCity, controlCategory}
	} else {
		m.controls = []control{controlDate, controlCity, controlCategory}
	}

	m.handleResize()
	return m
}

func newDateInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = 10
	ti.Width = 12
	ti.Prompt = ""
	return ti
}

func newRecordTable(theme themes.Theme) table.Model {
	widths := []int{8, 10, 8, 14, 12, 18, 5, 14, 15}
	columns := make([]table.Column, len(model.Headers))
	for i, title := range model.Headers {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = theme.TableHeader
	s.Selected = theme.Selected
	t.SetStyles(s)
	return t
}

// Init starts loading the dataset.
func (m Model) Init() tea.Cmd {
	return m.loadDataset()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if m.config.Recorder != nil {
		if nm, ok := next.(Model); ok {
			m.config.Recorder.RecordState(nm, msg)
		}
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case dataLoadedMsg:
		cmd := m.handleDataLoaded(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}
	if m.loadErr != nil {
		return m.renderLoadError()
	}
	return m.renderDashboard()
}

// Err returns the load failure, if any.
func (m Model) Err() error {
	return m.loadErr
}

func (m *Model) handleDataLoaded(msg dataLoadedMsg) tea.Cmd {
	m.ready = true
	if msg.err != nil {
		m.loadErr = msg.err
		slog.Error("Failed to load dataset", "error", msg.err)
		return nil
	}

	m.data = msg.table
	opts := filter.DeriveOptions(m.data)
	m.dates = filter.Choices(opts.Dates)
	m.cities = filter.Choices(opts.Cities)
	m.categories = filter.Choices(opts.Categories)

	sel := filter.DefaultSelection(m.config.Mode, m.data)
	m.session = filter.NewSession(m.config.Mode, sel)
	if sel.Range != nil && m.data.Len() > 0 {
		m.startInput.SetValue(sel.Range.Start.String())
		m.endInput.SetValue(sel.Range.End.String())
	}

	slog.Debug("Dataset loaded",
		"records", m.data.Len(),
		"dates", len(opts.Dates),
		"cities", len(opts.Cities),
		"categories", len(opts.Categories))

	m.refresh()
	return m.setFocus(0)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if !m.ready || m.loadErr != nil {
		if key.Matches(msg, m.keymap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	focused := m.controls[m.focus]

	switch {
	case key.Matches(msg, m.keymap.NextControl):
		cmd := m.setFocus(m.focus + 1)
		return m, cmd
	case key.Matches(msg, m.keymap.PrevControl):
		cmd := m.setFocus(m.focus - 1)
		return m, cmd
	case key.Matches(msg, m.keymap.Search):
		m.search()
		return m, nil
	case msg.Type == tea.KeyUp:
		m.rows.MoveUp(1)
		return m, nil
	case msg.Type == tea.KeyDown:
		m.rows.MoveDown(1)
		return m, nil
	case key.Matches(msg, m.keymap.PageUp):
		m.rows.MoveUp(m.rows.Height())
		return m, nil
	case key.Matches(msg, m.keymap.PageDown):
		m.rows.MoveDown(m.rows.Height())
		return m, nil
	}

	if focused.isTextInput() {
		if msg.Type == tea.KeyEsc {
			m.quitting = true
			return m, tea.Quit
		}
		cmd := m.updateDateInput(focused, msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.PrevOption):
		m.cycle(focused, -1)
	case key.Matches(msg, m.keymap.NextOption):
		m.cycle(focused, 1)
	case key.Matches(msg, m.keymap.Up):
		m.rows.MoveUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.rows.MoveDown(1)
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// setFocus moves focus to control i, wrapping around.
func (m *Model) setFocus(i int) tea.Cmd {
	n := len(m.controls)
	m.focus = ((i % n) + n) % n

	m.startInput.Blur()
	m.endInput.Blur()

	switch m.controls[m.focus] {
	case controlStart:
		return m.startInput.Focus()
	case controlEnd:
		return m.endInput.Focus()
	default:
		return nil
	}
}

func (m *Model) cycle(c control, delta int) {
	step := func(i, n int) int {
		return ((i+delta)%n + n) % n
	}

	switch c {
	case controlDate:
		m.dateIdx = step(m.dateIdx, len(m.dates))
		m.session.SetDate(m.dates[m.dateIdx])
	case controlCity:
		m.cityIdx = step(m.cityIdx, len(m.cities))
		m.session.SetCity(m.cities[m.cityIdx])
	case controlCategory:
		m.catIdx = step(m.catIdx, len(m.categories))
		m.session.SetCategory(m.categories[m.catIdx])
	default:
		return
	}
	m.refresh()
}

func (m *Model) updateDateInput(c control, msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if c == controlStart {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}
	m.syncRange()
	return cmd
}

// syncRange pushes the typed range into the session once both dates parse.
func (m *Model) syncRange() {
	start, err := dataset.ParseDate(m.startInput.Value())
	if err != nil {
		m.inputErr = fmt.Errorf("start date: %w", err)
		return
	}
	end, err := dataset.ParseDate(m.endInput.Value())
	if err != nil {
		m.inputErr = fmt.Errorf("end date: %w", err)
		return
	}

	m.inputErr = nil
	m.session.SetRange(start, end)
	m.refresh()
}

// search is the explicit apply action. It only exists in search mode.
func (m *Model) search() {
	if m.config.Mode != filter.ModeOnDemand || m.inputErr != nil {
		return
	}
	if err := m.session.Apply(); err != nil {
		m.rangeErr = err
		return
	}
	slog.Debug("Search applied", "selection", m.session.Selection().Range)
	m.refresh()
}

// refresh recomputes the visible rows from the session.
func (m *Model) refresh() {
	rows, visible, err := m.session.Rows(m.data)
	m.rangeErr = err
	m.shown = visible
	m.visible = rows

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = r.Cells()
	}
	m.rows.SetRows(tableRows)
	m.rows.GotoTop()
}

// handleResize adjusts the table height to the terminal.
func (m *Model) handleResize() {
	// Title, controls, status, row count, help and spacing.
	const chrome = 10
	m.rows.SetHeight(max(3, m.height-chrome))
	m.help.Width = m.width
}

package filter

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/model"
)

// Mode selects how a session reacts to selection changes.
type Mode int

const (
	// ModeLive re-filters on every selection change. It uses the single-date
	// selection.
	ModeLive Mode = iota
	// ModeOnDemand hides the table until the first explicit apply. It uses the
	// date-range selection.
	ModeOnDemand
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeOnDemand:
		return "search"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "live":
		return ModeLive, nil
	case "search", "on-demand":
		return ModeOnDemand, nil
	default:
		return ModeLive, fmt.Errorf("unknown view mode %q (want live or search)", s)
	}
}

// ApplyState tracks whether the user has committed to a query.
type ApplyState int

const (
	// Unapplied is the initial state; no table is shown in ModeOnDemand.
	Unapplied ApplyState = iota
	// Applied is terminal for the session.
	Applied
)

func (s ApplyState) String() string {
	if s == Applied {
		return "applied"
	}
	return "unapplied"
}

// Session is the per-user filter context. It is not safe for concurrent use;
// callers that share one across goroutines must synchronise.
type Session struct {
	selection Selection
	mode      Mode
	state     ApplyState
}

// NewSession creates a session in the Unapplied state.
func NewSession(mode Mode, initial Selection) *Session {
	return &Session{mode: mode, selection: initial}
}

// DefaultSelection returns the starting selection for mode over t: every
// dimension unconstrained and, for ModeOnDemand, the range spanning the
// table's first and last dates.
func DefaultSelection(mode Mode, t model.Table) Selection {
	var sel Selection
	if mode == ModeOnDemand {
		first, last, _ := Bounds(t)
		sel.Range = &DateRange{Start: first, End: last}
	}
	return sel
}

// Mode returns the session mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// State returns the current apply state.
func (s *Session) State() ApplyState {
	return s.state
}

// Applied reports whether the explicit apply action has succeeded.
func (s *Session) Applied() bool {
	return s.state == Applied
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	sel := s.selection
	if sel.Range != nil {
		r := *sel.Range
		sel.Range = &r
	}
	return sel
}

// SetCity changes the city constraint. It never resets the apply state.
func (s *Session) SetCity(c Constraint[string]) {
	s.selection.City = c
}

// SetCategory changes the category constraint.
func (s *Session) SetCategory(c Constraint[string]) {
	s.selection.Category = c
}

// SetDate changes the exact-date constraint.
func (s *Session) SetDate(c Constraint[civil.Date]) {
	s.selection.Date = c
}

// SetRange replaces the date range. The range may be invalid; that is
// reported when rows are requested.
func (s *Session) SetRange(start, end civil.Date) {
	s.selection.Range = &DateRange{Start: start, End: end}
}

// Apply is the explicit search action. It moves the session to Applied
// unless the current range is invalid, in which case the state is left
// untouched and the validation error is returned.
func (s *Session) Apply() error {
	if err := s.selection.Validate(); err != nil {
		return err
	}
	s.state = Applied
	return nil
}

// Rows evaluates the current selection against t. visible is false while an
// on-demand session is still Unapplied, and no filtering happens in that
// case. An invalid range yields its validation error and no rows.
func (s *Session) Rows(t model.Table) (rows []model.Record, visible bool, err error) {
	if err := s.selection.Validate(); err != nil {
		return nil, false, err
	}
	if s.mode == ModeOnDemand && s.state != Applied {
		return nil, false, nil
	}
	rows, err = Apply(t, s.selection)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

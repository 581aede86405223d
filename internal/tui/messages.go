package tui

import "github.com/Veraticus/foodsales/internal/model"

// Data loading messages.
type dataLoadedMsg struct {
	err   error
	table model.Table
}

// control identifies a focusable filter control.
type control int

const (
	controlDate control = iota
	controlStart
	controlEnd
	controlCity
	controlCategory
)

func (c control) label() string {
	switch c {
	case controlDate:
		return "Date"
	case controlStart:
		return "Start date"
	case controlEnd:
		return "End date"
	case controlCity:
		return "City"
	case controlCategory:
		return "Category"
	default:
		return ""
	}
}

func (c control) isTextInput() bool {
	return c == controlStart || c == controlEnd
}

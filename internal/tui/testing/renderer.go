// Package testing provides test utilities for TUI components.
package testing

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// TestRenderer drives a Bubble Tea model without a terminal and keeps the
// latest rendered view.
type TestRenderer struct {
	Model tea.Model

	// Output contains the last rendered view.
	Output string

	// Commands contains all commands returned by Update calls.
	Commands []tea.Cmd

	// UpdateCount tracks how many times Update was called.
	UpdateCount int
}

// NewTestRenderer wraps model.
func NewTestRenderer(model tea.Model) *TestRenderer {
	r := &TestRenderer{Model: model}
	r.Output = model.View()
	return r
}

// Send delivers each message in order and re-renders after every update.
func (r *TestRenderer) Send(msgs ...tea.Msg) *TestRenderer {
	for _, msg := range msgs {
		r.UpdateCount++

		next, cmd := r.Model.Update(msg)
		if cmd != nil {
			r.Commands = append(r.Commands, cmd)
		}
		r.Model = next
		r.Output = next.View()
	}
	return r
}

// Run executes cmd and delivers its message, if any. Only use it for
// commands that do not sleep, such as data loading.
func (r *TestRenderer) Run(cmd tea.Cmd) *TestRenderer {
	if cmd == nil {
		return r
	}
	if msg := cmd(); msg != nil {
		r.Send(msg)
	}
	return r
}

// Plain returns the output without ANSI escape codes.
func (r *TestRenderer) Plain() string {
	return StripANSI(r.Output)
}

// Lines returns the plain output split by newlines.
func (r *TestRenderer) Lines() []string {
	return strings.Split(r.Plain(), "\n")
}

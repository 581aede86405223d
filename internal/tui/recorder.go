package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Recorder writes every dashboard update to a directory: a running log of
// messages and filter state in dashboard.log plus one rendered frame per
// update.
type Recorder struct {
	logFile  *os.File
	dir      string
	frameNum int
	mu       sync.Mutex
}

// NewRecorder creates dir if needed and starts a new log in it.
func NewRecorder(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(dir, "dashboard.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create recording log: %w", err)
	}

	r := &Recorder{logFile: logFile, dir: dir}
	r.log("Recording started at %s", time.Now().Format(time.RFC3339))
	return r, nil
}

// Dir returns the recording directory.
func (r *Recorder) Dir() string {
	return r.dir
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameNum
}

// RecordState logs msg and the resulting model, then saves the rendered view.
func (r *Recorder) RecordState(m Model, msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frameNum++

	r.log("\n=== Frame %d ===", r.frameNum)
	r.log("Time: %s", time.Now().Format("15:04:05.000"))
	r.log("Message: %T %v", msg, msg)
	r.log("Ready: %v", m.ready)
	if m.session != nil {
		sel := m.session.Selection()
		r.log("Mode: %s State: %s", m.session.Mode(), m.session.State())
		r.log("Selection: date=%s city=%s category=%s range=%v",
			sel.Date.Label("-"), sel.City.Label("-"), sel.Category.Label("-"), sel.Range)
		r.log("Visible: %v (%d rows)", m.shown, len(m.visible))
	}
	if m.rangeErr != nil {
		r.log("Range error: %v", m.rangeErr)
	}

	view := m.View()
	framePath := filepath.Join(r.dir, fmt.Sprintf("frame-%04d.txt", r.frameNum))
	if err := os.WriteFile(framePath, []byte(view), 0600); err != nil {
		r.log("Error saving frame: %v", err)
	}
}

func (r *Recorder) log(format string, args ...any) {
	if r.logFile == nil {
		return
	}
	_, _ = fmt.Fprintf(r.logFile, format+"\n", args...)
}

// Close finishes the log.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.logFile == nil {
		return nil
	}
	r.log("Recording complete. %d frames captured.", r.frameNum)
	err := r.logFile.Close()
	r.logFile = nil
	return err
}

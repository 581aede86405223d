package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/foodsales/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// loadDataset reads the session table from the configured loader.
func (m Model) loadDataset() tea.Cmd {
	loader := m.config.Loader
	timeout := m.config.LoadTimeout

	return func() tea.Msg {
		if loader == nil {
			return dataLoadedMsg{err: fmt.Errorf("%w: no dataset loader configured", common.ErrLoad)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		table, err := loader.Load(ctx)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{table: table}
	}
}

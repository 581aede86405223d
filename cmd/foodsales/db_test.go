package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBStatusAndClear(t *testing.T) {
	csvPath := useCSV(t, testCSV)
	dbPath := filepath.Join(t.TempDir(), "foodsales.db")
	viper.Set("database.path", dbPath)

	var out bytes.Buffer
	status := dbStatusCmd()
	status.SetOut(&out)
	status.SetArgs([]string{})
	require.NoError(t, status.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Last import")
	assert.Contains(t, out.String(), "never")

	_, err := runImportCmd(t, csvPath)
	require.NoError(t, err)

	out.Reset()
	status = dbStatusCmd()
	status.SetOut(&out)
	status.SetArgs([]string{})
	require.NoError(t, status.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Records")
	assert.Contains(t, out.String(), "4 records")

	// Declined confirmation keeps the data.
	out.Reset()
	clearCmd := dbClearCmd()
	clearCmd.SetOut(&out)
	clearCmd.SetArgs([]string{})
	clearCmd.SetIn(strings.NewReader("n\n"))
	require.NoError(t, clearCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Clear canceled.")
	assert.Equal(t, 4, storedCount(t, dbPath))

	out.Reset()
	clearCmd = dbClearCmd()
	clearCmd.SetOut(&out)
	clearCmd.SetArgs([]string{})
	clearCmd.SetIn(strings.NewReader("yes\n"))
	require.NoError(t, clearCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Deleted 4 records")
	assert.Equal(t, 0, storedCount(t, dbPath))

	out.Reset()
	clearCmd = dbClearCmd()
	clearCmd.SetOut(&out)
	clearCmd.SetArgs([]string{"--force"})
	require.NoError(t, clearCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Nothing to clear.")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Sure?"), "input %q", tt.input)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

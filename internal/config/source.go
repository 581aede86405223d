package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/spf13/viper"
)

// LoadSource resolves the dataset.* keys into a loader source.
//
// The sqlite source reads dataset.path when set and falls back to
// database.path, so an imported dataset is found without extra flags.
func LoadSource() (dataset.Source, error) {
	kind := dataset.SourceKind(strings.ToLower(strings.TrimSpace(viper.GetString("dataset.source"))))
	if kind == "" {
		kind = dataset.SourceCSV
	}

	src := dataset.Source{Kind: kind, Path: ExpandPath(viper.GetString("dataset.path"))}

	switch kind {
	case dataset.SourceCSV:
		if src.Path == "" {
			return dataset.Source{}, fmt.Errorf("%w: set dataset.path or pass --data", common.ErrMissingConfig)
		}
	case dataset.SourceSQLite:
		if src.Path == "" {
			src.Path = DatabasePath()
		}
	case dataset.SourceSheets:
		cfg, err := LoadSheetsConfig()
		if err != nil {
			return dataset.Source{}, err
		}
		src.Sheets = cfg
	default:
		return dataset.Source{}, fmt.Errorf("%w: dataset.source must be csv, sqlite or sheets, got %q", common.ErrInvalidConfig, kind)
	}

	return src, nil
}

// DatabasePath returns the configured SQLite path.
func DatabasePath() string {
	if p := viper.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	return DefaultDatabasePath()
}

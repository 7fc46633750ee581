package main

import (
	"context"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/preprocessing"
)

// Config is the YAML document read by fit and eval.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Discretize DiscretizeConfig `yaml:"discretize"`
	Split      SplitConfig      `yaml:"split"`
	Model      ModelConfig      `yaml:"model"`
	Log        LogConfig        `yaml:"log"`
}

// DataConfig says where samples come from and which keys matter.
type DataConfig struct {
	// Path is a CSV file; "-" reads STDIN. Exclusive with SQLite.
	Path string `yaml:"path"`
	// SQLite is a database file read together with Table.
	SQLite string `yaml:"sqlite"`
	Table  string `yaml:"table"`
	// Columns restricts the columns read. Empty reads all of them.
	Columns []string `yaml:"columns"`
	// MissingMarker is the CSV cell text read as a missing value.
	MissingMarker string `yaml:"missing_marker"`
	// Label is the column holding the class.
	Label string `yaml:"label"`
	// Attributes are the candidate split columns in priority order. Empty
	// means every column except Label.
	Attributes []string `yaml:"attributes"`
}

// DiscretizeConfig lists numeric columns to replace by quantile bin ids.
type DiscretizeConfig struct {
	Columns []string `yaml:"columns"`
	Bins    int      `yaml:"bins"`
	Method  string   `yaml:"method"`
}

// SplitConfig controls the held-out evaluation of the eval command.
type SplitConfig struct {
	TestSize float64 `yaml:"test_size"`
	Seed     uint64  `yaml:"seed"`
	Stratify bool    `yaml:"stratify"`
	// Folds > 1 additionally runs k-fold cross-validation.
	Folds int `yaml:"folds"`
}

// ModelConfig holds classifier hyperparameters.
type ModelConfig struct {
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// LogConfig is overridden by the --log-level and --log-file flags.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func defaultConfig() Config {
	return Config{
		Data:       DataConfig{MissingMarker: "?"},
		Discretize: DiscretizeConfig{Bins: 4, Method: "linear"},
		Split:      SplitConfig{TestSize: 0.3, Seed: 42, Stratify: true},
		Log:        LogConfig{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// LoadConfig reads and validates the YAML file at path. Keys left out keep
// their defaults; unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig on an in-memory document.
func ParseConfig(data []byte) (*Config, error) {
	cfg := defaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	d := c.Data
	switch {
	case d.Path == "" && d.SQLite == "":
		return errors.NewValidationError("data.path", "either data.path or data.sqlite must be set", "")
	case d.Path != "" && d.SQLite != "":
		return errors.NewValidationError("data.sqlite", "cannot be combined with data.path", d.SQLite)
	case d.SQLite != "" && d.Table == "":
		return errors.NewValidationError("data.table", "required with data.sqlite", d.Table)
	case d.Label == "":
		return errors.NewValidationError("data.label", "must be set", d.Label)
	}
	for _, a := range d.Attributes {
		if a == d.Label {
			return errors.NewValidationError("data.attributes", "must not contain the label", a)
		}
	}
	for _, col := range c.Discretize.Columns {
		if col == d.Label {
			return errors.NewValidationError("discretize.columns", "must not contain the label", col)
		}
	}
	if c.Discretize.Bins < 1 {
		return errors.NewValidationError("discretize.bins", "must be at least 1", c.Discretize.Bins)
	}
	if _, err := preprocessing.ParseQuantileMethod(c.Discretize.Method); err != nil {
		return err
	}
	if !(c.Split.TestSize > 0 && c.Split.TestSize < 1) {
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", c.Split.TestSize)
	}
	if c.Split.Folds == 1 || c.Split.Folds < 0 {
		return errors.NewValidationError("split.folds", "must be 0 or at least 2", c.Split.Folds)
	}
	if c.Model.ParallelThreshold < 0 {
		return errors.NewValidationError("model.parallel_threshold", "must not be negative", c.Model.ParallelThreshold)
	}
	return nil
}

// loadDataset reads the configured source and returns the samples and the
// candidate attributes.
func (c *Config) loadDataset(ctx context.Context) (dataset.Dataset, []string, error) {
	var (
		ds      dataset.Dataset
		columns []string
		err     error
	)
	if c.Data.SQLite != "" {
		db, openErr := dataset.OpenSQLite(c.Data.SQLite)
		if openErr != nil {
			return nil, nil, openErr
		}
		defer db.Close()
		ds, err = dataset.LoadSQLite(ctx, db, c.Data.Table, c.Data.Columns)
		columns = c.Data.Columns
		if len(columns) == 0 {
			columns = ds.Keys()
		}
	} else {
		path := c.Data.Path
		if path == "-" {
			path = ""
		}
		ds, columns, err = dataset.ReadCSVFile(path, dataset.CSVOptions{
			MissingMarker: c.Data.MissingMarker,
			TrimSpace:     true,
			Columns:       c.Data.Columns,
		})
	}
	if err != nil {
		return nil, nil, err
	}
	if len(ds) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "loading dataset")
	}
	return ds, c.attributes(columns), nil
}

func (c *Config) attributes(columns []string) []string {
	if len(c.Data.Attributes) > 0 {
		return c.Data.Attributes
	}
	attrs := make([]string, 0, len(columns))
	for _, col := range columns {
		if col != c.Data.Label {
			attrs = append(attrs, col)
		}
	}
	return attrs
}

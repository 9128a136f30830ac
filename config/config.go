// Package config loads and validates the migration's YAML configuration,
// mirroring the dataclasses the Python prototype used.
package config

import (
	"os"

	"github.com/ora2pg/migrator/migrateerr"
	"gopkg.in/yaml.v3"
)

// Oracle holds the source connection parameters.
type Oracle struct {
	Owner     string `yaml:"owner"`
	DSN       string `yaml:"dsn"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	ArraySize int    `yaml:"arraysize"`
}

// Postgres holds the target connection parameters.
type Postgres struct {
	DSN             string `yaml:"dsn"`
	Schema          string `yaml:"schema"`
	CopyParallelism int    `yaml:"copy_parallelism"`
	CopyBatchRows   int    `yaml:"copy_batch_rows"`
}

// Migrate holds table filtering and DDL-emission policy.
type Migrate struct {
	IncludeTables          []string `yaml:"include_tables"`
	ExcludeTables          []string `yaml:"exclude_tables"`
	CreateIndexesAfterLoad bool     `yaml:"create_indexes_after_load"`
	FksDeferrable          bool     `yaml:"fks_deferrable"`
	DryRun                 bool     `yaml:"dry_run"`
}

// Output holds output-artifact locations.
type Output struct {
	Dir      string `yaml:"dir"`
	PlanSQL  string `yaml:"plan_sql"`
	ReportMD string `yaml:"report_md"`
}

// Config is the full aggregate configuration.
type Config struct {
	Oracle   Oracle   `yaml:"oracle"`
	Postgres Postgres `yaml:"postgres"`
	Migrate  Migrate  `yaml:"migrate"`
	Output   Output   `yaml:"output"`
}

// Default returns a Config with every documented default applied.
func Default() Config {
	return Config{
		Oracle: Oracle{ArraySize: 10000},
		Postgres: Postgres{
			Schema:          "public",
			CopyParallelism: 4,
			CopyBatchRows:   50000,
		},
		Migrate: Migrate{
			CreateIndexesAfterLoad: true,
			FksDeferrable:          true,
		},
		Output: Output{
			Dir:      "./out",
			PlanSQL:  "plan.sql",
			ReportMD: "report.md",
		},
	}
}

// Load reads and parses a YAML config file, applying defaults for any
// field the file does not set; a field the file sets explicitly, even to
// a zero value, keeps that value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, migrateerr.New(migrateerr.Configuration, "reading config file", err).WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, migrateerr.New(migrateerr.Configuration, "parsing config file", err).WithContext("path", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the required fields are present.
func (c *Config) Validate() error {
	missing := func(field string) error {
		return migrateerr.New(migrateerr.Configuration, "missing required config field", nil).WithContext("field", field)
	}
	switch {
	case c.Oracle.Owner == "":
		return missing("oracle.owner")
	case c.Oracle.DSN == "":
		return missing("oracle.dsn")
	case c.Oracle.User == "":
		return missing("oracle.user")
	case c.Postgres.DSN == "":
		return missing("postgres.dsn")
	}
	return nil
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the settings of the report generator.
//
// Settings are layered: built-in defaults, then an optional YAML file,
// then environment variables, then command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Backend selects the object store: "azure" or "gcs".
	Backend string `yaml:"backend"`

	Azure struct {
		// Account is the storage account holding logs and reports.
		Account         string `yaml:"account"`
		LogContainer    string `yaml:"log_container"`
		ReportContainer string `yaml:"report_container"`
		SubscriptionID  string `yaml:"subscription_id"`
	} `yaml:"azure"`

	GCS struct {
		LogBucket    string `yaml:"log_bucket"`
		ReportBucket string `yaml:"report_bucket"`
	} `yaml:"gcs"`

	// DryRun writes reports under DryRunDir instead of uploading them.
	DryRun    bool   `yaml:"dry_run"`
	DryRunDir string `yaml:"dry_run_dir"`

	Workers       int           `yaml:"workers"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"`

	Cache struct {
		// Driver is a database/sql driver name, "sqlite3" or "mysql".
		// An empty DSN disables persistence.
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"cache"`

	Release struct {
		Repo  string `yaml:"repo"`
		Token string `yaml:"token"`
	} `yaml:"release"`
}

// Default returns the built-in settings.
func Default() *Config {
	c := new(Config)
	c.Backend = "azure"
	c.Azure.Account = "azsdkcpp"
	c.Azure.LogContainer = "raw-log"
	c.Azure.ReportContainer = "$web"
	c.DryRunDir = "out"
	c.Workers = 16
	c.LookupTimeout = 30 * time.Second
	c.Cache.Driver = "sqlite3"
	c.Cache.DSN = "benchreport-cache.db"
	c.Release.Repo = "Azure/azure-sdk-for-cpp"
	return c
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the environment variables AZURE_SUBSCRIPTION_ID,
// DRY_RUN and GITHUB_TOKEN onto c. Unset or empty variables are
// ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("AZURE_SUBSCRIPTION_ID"); v != "" {
		c.Azure.SubscriptionID = v
	}
	if v := getenv("DRY_RUN"); v != "" {
		c.DryRun = Truthy(v)
	}
	if v := getenv("GITHUB_TOKEN"); v != "" {
		c.Release.Token = v
	}
}

// Truthy reports whether s is one of TRUE, ON, 1 or YES, in any case.
func Truthy(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "ON", "1", "YES":
		return true
	}
	return false
}

// Validate checks that c is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case "azure":
		if c.Azure.Account == "" || c.Azure.LogContainer == "" || c.Azure.ReportContainer == "" {
			return fmt.Errorf("azure backend needs an account and log and report containers")
		}
	case "gcs":
		if c.GCS.LogBucket == "" || c.GCS.ReportBucket == "" {
			return fmt.Errorf("gcs backend needs log and report buckets")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.LookupTimeout < 0 {
		return fmt.Errorf("negative lookup timeout %v", c.LookupTimeout)
	}
	if c.Cache.DSN != "" && c.Cache.Driver == "" {
		return fmt.Errorf("cache DSN given without a driver")
	}
	return nil
}

// Flags binds the command-line flags for the settings to fs. The
// returned function builds the final Config once fs has been parsed:
// it loads the file named by -config, applies the environment, and
// then applies only the flags that were set explicitly.
func Flags(fs *flag.FlagSet, getenv func(string) string) func() (*Config, error) {
	path := fs.String("config", "", "read settings from YAML `file`")
	f := Default()
	fs.StringVar(&f.Backend, "backend", f.Backend, "object store: azure or gcs")
	fs.StringVar(&f.Azure.Account, "account", f.Azure.Account, "Azure storage `account` with logs and reports")
	fs.StringVar(&f.Azure.LogContainer, "log-container", f.Azure.LogContainer, "Azure `container` with raw logs")
	fs.StringVar(&f.Azure.ReportContainer, "report-container", f.Azure.ReportContainer, "Azure `container` for reports")
	fs.StringVar(&f.Azure.SubscriptionID, "subscription", f.Azure.SubscriptionID, "Azure subscription `ID`")
	fs.StringVar(&f.GCS.LogBucket, "log-bucket", f.GCS.LogBucket, "GCS `bucket` with raw logs")
	fs.StringVar(&f.GCS.ReportBucket, "report-bucket", f.GCS.ReportBucket, "GCS `bucket` for reports")
	fs.BoolVar(&f.DryRun, "dry-run", f.DryRun, "write reports locally instead of uploading")
	fs.StringVar(&f.DryRunDir, "dry-run-dir", f.DryRunDir, "`directory` for dry-run output")
	fs.IntVar(&f.Workers, "workers", f.Workers, "number of logs fetched and parsed concurrently")
	fs.DurationVar(&f.LookupTimeout, "lookup-timeout", f.LookupTimeout, "timeout for each metadata lookup")
	fs.StringVar(&f.Cache.Driver, "cache-driver", f.Cache.Driver, "database `driver` for the lookup cache")
	fs.StringVar(&f.Cache.DSN, "cache-dsn", f.Cache.DSN, "database `DSN` for the lookup cache; empty disables it")
	fs.StringVar(&f.Release.Repo, "release-repo", f.Release.Repo, "GitHub `repository` to read releases from")

	set := map[string]func(c *Config){
		"backend":          func(c *Config) { c.Backend = f.Backend },
		"account":          func(c *Config) { c.Azure.Account = f.Azure.Account },
		"log-container":    func(c *Config) { c.Azure.LogContainer = f.Azure.LogContainer },
		"report-container": func(c *Config) { c.Azure.ReportContainer = f.Azure.ReportContainer },
		"subscription":     func(c *Config) { c.Azure.SubscriptionID = f.Azure.SubscriptionID },
		"log-bucket":       func(c *Config) { c.GCS.LogBucket = f.GCS.LogBucket },
		"report-bucket":    func(c *Config) { c.GCS.ReportBucket = f.GCS.ReportBucket },
		"dry-run":          func(c *Config) { c.DryRun = f.DryRun },
		"dry-run-dir":      func(c *Config) { c.DryRunDir = f.DryRunDir },
		"workers":          func(c *Config) { c.Workers = f.Workers },
		"lookup-timeout":   func(c *Config) { c.LookupTimeout = f.LookupTimeout },
		"cache-driver":     func(c *Config) { c.Cache.Driver = f.Cache.Driver },
		"cache-dsn":        func(c *Config) { c.Cache.DSN = f.Cache.DSN },
		"release-repo":     func(c *Config) { c.Release.Repo = f.Release.Repo },
	}

	return func() (*Config, error) {
		c := Default()
		if *path != "" {
			if err := c.LoadFile(*path); err != nil {
				return nil, err
			}
		}
		c.ApplyEnv(getenv)
		fs.Visit(func(fl *flag.Flag) {
			if apply := set[fl.Name]; apply != nil {
				apply(c)
			}
		})
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	}
}

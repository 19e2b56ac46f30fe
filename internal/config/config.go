package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go-analytics-pipeline/internal/apperror"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GCP        GCPConfig        `yaml:"gcp"`
	Storage    StorageConfig    `yaml:"storage"`
	DataStudio DataStudioConfig `yaml:"datastudio"`
	Queries    QueriesConfig    `yaml:"queries"`
	History    HistoryConfig    `yaml:"history"`
	Server     ServerConfig     `yaml:"server"`
	Mock       MockConfig       `yaml:"mock"`
	Log        LogConfig        `yaml:"log"`
}

type GCPConfig struct {
	ProjectID       string `yaml:"project_id"`
	DatasetID       string `yaml:"dataset_id"`
	TableID         string `yaml:"table_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// StorageConfig locates published artifacts. Bucket defaults to the project id.
// LocalDir switches publishing to a directory instead of Cloud Storage.
type StorageConfig struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	LocalDir string `yaml:"local_dir"`
}

type DataStudioConfig struct {
	DashboardID     string `yaml:"dashboard_id"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds
	CredentialsFile string `yaml:"credentials_file"`
	Endpoint        string `yaml:"endpoint"`
}

type QueriesConfig struct {
	Dir string `yaml:"dir"`
}

type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig holds the listen addresses. ShutdownTimeout is a Go duration
// string such as "10s".
type ServerConfig struct {
	APIAddr         string `yaml:"api_addr"`
	StaticAddr      string `yaml:"static_addr"`
	StaticDir       string `yaml:"static_dir"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type MockConfig struct {
	OutputDir    string `yaml:"output_dir"`
	DashboardDir string `yaml:"dashboard_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads, defaults and validates the YAML settings document at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Config(path, fmt.Errorf("read config: %w", err))
	}
	return Parse(raw)
}

// Parse decodes a YAML settings document.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, apperror.Config("parse", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GCP.TableID == "" {
		c.GCP.TableID = "covid19_data"
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = c.GCP.ProjectID
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "covid19_data"
	}
	if c.DataStudio.RefreshInterval == 0 {
		c.DataStudio.RefreshInterval = 3600
	}
	if c.DataStudio.CredentialsFile == "" {
		c.DataStudio.CredentialsFile = c.GCP.CredentialsFile
	}
	if c.Server.APIAddr == "" {
		c.Server.APIAddr = ":8080"
	}
	if c.Server.StaticAddr == "" {
		c.Server.StaticAddr = ":8000"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "."
	}
	if c.Mock.OutputDir == "" {
		c.Mock.OutputDir = "mock_data"
	}
	if c.Mock.DashboardDir == "" {
		c.Mock.DashboardDir = "dashboard"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Storage.Prefix = strings.Trim(c.Storage.Prefix, "/")
}

func (c *Config) validate() error {
	if c.GCP.ProjectID == "" {
		return apperror.Config("gcp.project_id", errors.New("is required"))
	}
	if c.GCP.DatasetID == "" {
		return apperror.Config("gcp.dataset_id", errors.New("is required"))
	}
	if c.DataStudio.RefreshInterval < 0 {
		return apperror.Config("datastudio.refresh_interval", fmt.Errorf("must be >= 0, got %d", c.DataStudio.RefreshInterval))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return apperror.Config("log.level", fmt.Errorf("unsupported level %q", c.Log.Level))
	}
	return nil
}

// RequireDashboard checks the settings needed by the dashboard updater.
func (c *Config) RequireDashboard() error {
	if c.DataStudio.DashboardID == "" {
		return apperror.Config("datastudio.dashboard_id", errors.New("is required"))
	}
	if c.DataStudio.CredentialsFile == "" {
		return apperror.Config("datastudio.credentials_file", errors.New("is required"))
	}
	return nil
}

// UseLocalStorage reports whether artifacts live in a local directory.
func (c *Config) UseLocalStorage() bool {
	return c.Storage.LocalDir != ""
}

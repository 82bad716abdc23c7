// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "LOTTERY_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local runs and tests.
	Development Environment = "development"
	// Production is for deployed servers and agencies.
	Production Environment = "production"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Log formats. FormatAuto picks text on a terminal and JSON otherwise.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the configuration shared by the lottery binaries. The
// server reads Server, Storage, and Logging; an agency reads Agency
// and Logging.
type Config struct {
	Environment Environment `yaml:"environment"`

	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Agency  AgencyConfig  `yaml:"agency"`

	// Per-environment overrides, applied after the base file.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that may differ per
// environment.
type ConfigOverrides struct {
	Storage *StorageConfig `yaml:"storage,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig configures the TCP listener and status socket.
type ServerConfig struct {
	// Address is the TCP listen address. Default: ":12345"
	Address string `yaml:"address"`

	// ListenBacklog is the kernel accept queue length. Default: 5
	ListenBacklog int `yaml:"listen_backlog"`

	// AcceptPollInterval bounds how long the accept loop blocks
	// before checking for shutdown. Default: 1s
	AcceptPollInterval time.Duration `yaml:"accept_poll_interval"`

	// StatusSocket is the Unix socket for operator queries. Empty
	// disables it.
	StatusSocket string `yaml:"status_socket"`
}

// StorageConfig configures the bet store.
type StorageConfig struct {
	// Backend is "csv" or "sqlite". Default: csv
	Backend string `yaml:"backend"`

	// Path is the CSV file or SQLite database. Default: ./bets.csv
	Path string `yaml:"path"`

	// ResetOnStart truncates the store when the server starts.
	// Default: true
	ResetOnStart bool `yaml:"reset_on_start"`

	// PoolSize is the SQLite connection pool size. Default: 4
	PoolSize int `yaml:"pool_size"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is auto, text, or json. Default: auto
	Format string `yaml:"format"`
}

// AgencyConfig configures an agency client.
type AgencyConfig struct {
	// ID is the agency's positive id. Required for lottery-agency.
	ID int `yaml:"id"`

	// ServerAddress is the lottery server. Default: localhost:12345
	ServerAddress string `yaml:"server_address"`

	// DataFile is the agency's bets CSV. Default:
	// ${LOTTERY_DATA_DIR:-.data}/agency-<id>.csv
	DataFile string `yaml:"data_file"`

	// BatchMaxAmount caps bets per BATCH message. Default: 100
	BatchMaxAmount int `yaml:"batch_max_amount"`

	// PollAttempts and PollInterval control the winners poll.
	// Defaults: 30 attempts, 1s apart.
	PollAttempts int           `yaml:"poll_attempts"`
	PollInterval time.Duration `yaml:"poll_interval"`

	// DialTimeout bounds the TCP connect. Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Default returns the configuration used when no file is given, and
// the base every file is merged onto.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Address:            ":12345",
			ListenBacklog:      5,
			AcceptPollInterval: time.Second,
		},
		Storage: StorageConfig{
			Backend:      BackendCSV,
			Path:         "./bets.csv",
			ResetOnStart: true,
			PoolSize:     4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatAuto,
		},
		Agency: AgencyConfig{
			ServerAddress:  "localhost:12345",
			BatchMaxAmount: 100,
			PollAttempts:   30,
			PollInterval:   time.Second,
			DialTimeout:    5 * time.Second,
		},
	}
}

// Load loads the file named by LOTTERY_CONFIG. It fails if the
// variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your lottery.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// Resolve picks the configuration for a binary: the file at path if
// non-empty, else the file named by LOTTERY_CONFIG if set, else
// Default with variables expanded.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from path, merged onto Default, with
// environment overrides applied and path variables expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching Environment.
// Production without an explicit section logs as JSON.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: FormatJSON},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Storage != nil {
		if overrides.Storage.Backend != "" {
			c.Storage.Backend = overrides.Storage.Backend
		}
		if overrides.Storage.Path != "" {
			c.Storage.Path = overrides.Storage.Path
		}
		if overrides.Storage.PoolSize != 0 {
			c.Storage.PoolSize = overrides.Storage.PoolSize
		}
		// ResetOnStart is a bool, so it always applies.
		c.Storage.ResetOnStart = overrides.Storage.ResetOnStart
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	if c.Agency.ID > 0 {
		vars["AGENCY_ID"] = fmt.Sprint(c.Agency.ID)
	}

	c.Server.StatusSocket = expandVars(c.Server.StatusSocket, vars)
	c.Storage.Path = expandVars(c.Storage.Path, vars)
	c.Agency.DataFile = expandVars(c.Agency.DataFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. The vars map is
// consulted before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// AgencyDataFile returns the agency's bets file, deriving the default
// name from the agency id when DataFile is empty.
func (c *Config) AgencyDataFile() string {
	if c.Agency.DataFile != "" {
		return c.Agency.DataFile
	}
	directory := expandVars("${LOTTERY_DATA_DIR:-.data}", nil)
	return filepath.Join(directory, fmt.Sprintf("agency-%d.csv", c.Agency.ID))
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// Validate checks the sections every binary uses: environment,
// server, storage, and logging.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("server.address is required"))
	}
	if c.Server.ListenBacklog < 0 {
		errs = append(errs, fmt.Errorf("server.listen_backlog must not be negative, got %d", c.Server.ListenBacklog))
	}
	if c.Server.AcceptPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.accept_poll_interval must be positive, got %v", c.Server.AcceptPollInterval))
	}

	backends := []string{BackendCSV, BackendSQLite}
	if !slices.Contains(backends, c.Storage.Backend) {
		errs = append(errs, fmt.Errorf("storage.backend must be one of: %v", backends))
	}
	if c.Storage.Path == "" {
		errs = append(errs, fmt.Errorf("storage.path is required"))
	}
	if c.Storage.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("storage.pool_size must not be negative, got %d", c.Storage.PoolSize))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	formats := []string{FormatAuto, FormatText, FormatJSON}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

// ValidateAgency checks the agency section.
func (c *Config) ValidateAgency() error {
	var errs []error

	if c.Agency.ID <= 0 {
		errs = append(errs, fmt.Errorf("agency.id must be a positive integer, got %d", c.Agency.ID))
	}
	if c.Agency.ServerAddress == "" {
		errs = append(errs, fmt.Errorf("agency.server_address is required"))
	}
	if c.Agency.BatchMaxAmount <= 0 {
		errs = append(errs, fmt.Errorf("agency.batch_max_amount must be positive, got %d", c.Agency.BatchMaxAmount))
	}
	if c.Agency.PollAttempts <= 0 {
		errs = append(errs, fmt.Errorf("agency.poll_attempts must be positive, got %d", c.Agency.PollAttempts))
	}
	if c.Agency.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("agency.poll_interval must be positive, got %v", c.Agency.PollInterval))
	}
	if c.Agency.DialTimeout <= 0 {
		errs = append(errs, fmt.Errorf("agency.dial_timeout must be positive, got %v", c.Agency.DialTimeout))
	}

	return errors.Join(errs...)
}

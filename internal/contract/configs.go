package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/bootup/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the audit.
// This struct remains the "final, validated" config.
type Config struct {
	Bundles []string // Expanded bundle paths, set from positional args

	Options          schema.BootupOptions
	ThrottlingMethod schema.ThrottlingMethod // Empty means use the bundle settings
	CPUSlowdown      float64                 // Zero means use the bundle settings
	SelfEvalURL      string
	Pass             string

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool
	Width       int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	FaultLog string // Optional JSON-lines file receiving faults

	MinScore    float64 // check: minimum acceptable score (0 = disabled)
	MaxBootupMs float64 // check: maximum acceptable bootup time (0 = disabled)

	Watch bool

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	BundleArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	P10              float64 `mapstructure:"p10"`
	Median           float64 `mapstructure:"median"`
	ThresholdMs      float64 `mapstructure:"threshold-ms"`
	ThrottlingMethod string  `mapstructure:"throttling-method"`
	CPUSlowdown      float64 `mapstructure:"cpu-slowdown"`
	SelfEvalURL      string  `mapstructure:"self-eval-url"`
	Pass             string  `mapstructure:"pass"`
	OutputFile       string  `mapstructure:"output-file"`
	Limit            int     `mapstructure:"limit"`
	Workers          int     `mapstructure:"workers"`
	Precision        int     `mapstructure:"precision"`
	Output           string  `mapstructure:"output"`
	Detail           bool    `mapstructure:"detail"`
	Width            int     `mapstructure:"width"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`
	FaultLog         string  `mapstructure:"fault-log"`
	Emoji            string  `mapstructure:"emoji"`
	Color            string  `mapstructure:"color"`

	// --- Fields from auditCmd.Flags() ---
	Watch bool `mapstructure:"watch"`

	// --- Fields from checkCmd.Flags() ---
	MinScore    float64 `mapstructure:"min-score"`
	MaxBootupMs float64 `mapstructure:"max-bootup-ms"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Bundles = slices.Clone(c.Bundles)
	return &clone
}

// ResolveSettings applies the configured throttling overrides to recorded bundle settings.
func (c *Config) ResolveSettings(recorded schema.Settings) schema.Settings {
	resolved := recorded
	if c.ThrottlingMethod != "" {
		resolved.ThrottlingMethod = c.ThrottlingMethod
	}
	if c.CPUSlowdown > 0 {
		resolved.CPUSlowdownMultiplier = c.CPUSlowdown
	}
	return resolved
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processScoringOptions(cfg, input); err != nil {
		return err
	}
	if err := processThrottling(cfg, input); err != nil {
		return err
	}
	if err := processCheckBudgets(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the presentation and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.Watch = input.Watch
	cfg.FaultLog = strings.TrimSpace(input.FaultLog)

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, prom, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processScoringOptions validates the log-normal control points and the noise threshold.
func processScoringOptions(cfg *Config, input *ConfigRawInput) error {
	opts := schema.BootupOptions{P10: input.P10, Median: input.Median, ThresholdMs: input.ThresholdMs}
	if opts.P10 <= 0 || opts.Median <= 0 {
		return fmt.Errorf("p10 and median must be greater than 0 (received p10=%.2f median=%.2f)", opts.P10, opts.Median)
	}
	if opts.P10 >= opts.Median {
		return fmt.Errorf("p10 (%.2f) must be less than median (%.2f)", opts.P10, opts.Median)
	}
	if opts.ThresholdMs < 0 {
		return fmt.Errorf("threshold-ms cannot be negative (received %.2f)", opts.ThresholdMs)
	}
	cfg.Options = opts

	cfg.SelfEvalURL = strings.TrimSpace(input.SelfEvalURL)
	if cfg.SelfEvalURL == "" {
		cfg.SelfEvalURL = schema.DefaultSelfEvalURL
	}
	cfg.Pass = strings.TrimSpace(input.Pass)
	if cfg.Pass == "" {
		cfg.Pass = schema.DefaultPass
	}
	return nil
}

// processThrottling validates the optional overrides of the recorded throttling settings.
func processThrottling(cfg *Config, input *ConfigRawInput) error {
	method := schema.ThrottlingMethod(strings.ToLower(strings.TrimSpace(input.ThrottlingMethod)))
	if method != "" {
		if _, ok := schema.ValidThrottlingMethods[method]; !ok {
			return fmt.Errorf("invalid throttling method '%s'. must be simulate, devtools, provided", input.ThrottlingMethod)
		}
	}
	cfg.ThrottlingMethod = method

	if input.CPUSlowdown < 0 {
		return fmt.Errorf("cpu-slowdown cannot be negative (received %.2f)", input.CPUSlowdown)
	}
	cfg.CPUSlowdown = input.CPUSlowdown
	return nil
}

// processCheckBudgets validates the budgets used by the check command.
func processCheckBudgets(cfg *Config, input *ConfigRawInput) error {
	if input.MinScore < 0 || input.MinScore > 1 {
		return fmt.Errorf("min-score must be between 0 and 1 (received %.2f)", input.MinScore)
	}
	if input.MaxBootupMs < 0 {
		return fmt.Errorf("max-bootup-ms cannot be negative (received %.2f)", input.MaxBootupMs)
	}
	cfg.MinScore = input.MinScore
	cfg.MaxBootupMs = input.MaxBootupMs
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

package contract

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/stationsync/schema"
)

// Default values for configuration.
const (
	DefaultAPIURL         = "https://api.netatmo.com"
	DefaultMaxPages       = 1000
	DefaultWorkers        = 1
	MaxWorkers            = 64
	DefaultRequestTimeout = 30 * time.Second
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Credentials holds what the token source needs to obtain an access token.
// Either RefreshToken or Username+Password must be set alongside the client pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string // Please use env var as this is plaintext
	RefreshToken string // Please use env var as this is plaintext
}

// Config holds the runtime configuration for a sync run.
// It is built once at startup by ProcessAndValidate and not mutated afterwards.
type Config struct {
	Credentials Credentials
	APIURL      string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	PageSize       int
	MaxPages       int
	Workers        int
	RequestTimeout time.Duration

	StationFilter string                   // Optional station name prefix
	Types         []schema.MeasurementType // Empty means every declared type
	KeepGoing     bool                     // Continue past protocol and store-query errors

	Output     schema.OutputMode
	OutputFile string
	UseColors  bool

	LogLevel  slog.Level
	LogFormat schema.LogFormat
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Credentials ---
	ClientID     string `mapstructure:"client-id"`
	ClientSecret string `mapstructure:"client-secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	RefreshToken string `mapstructure:"refresh-token"`
	APIURL       string `mapstructure:"api-url"`

	// --- Store ---
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Fetch loop ---
	PageSize       int    `mapstructure:"page-size"`
	MaxPages       int    `mapstructure:"max-pages"`
	Workers        int    `mapstructure:"workers"`
	RequestTimeout string `mapstructure:"request-timeout"`
	Station        string `mapstructure:"station"`
	Types          string `mapstructure:"types"`
	KeepGoing      bool   `mapstructure:"keep-going"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`
	LogFormat  string `mapstructure:"log-format"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateFetchInputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials checks that the token source has enough to authenticate.
// Only commands that talk to the upstream API call it.
func ValidateCredentials(c Credentials) error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("client-id and client-secret are required")
	}
	if c.RefreshToken == "" && (c.Username == "" || c.Password == "") {
		return fmt.Errorf("either refresh-token or username and password are required")
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
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	return nil
}

// ParseTypesList parses a comma-separated list of measurement types.
// An empty string yields a nil slice, meaning no filtering.
func ParseTypesList(s string) ([]schema.MeasurementType, error) {
	var types []schema.MeasurementType
	seen := make(map[schema.MeasurementType]bool)
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		mt, err := schema.ParseMeasurementType(p)
		if err != nil {
			return nil, err
		}
		if !seen[mt] {
			seen[mt] = true
			types = append(types, mt)
		}
	}
	return types, nil
}

// ParseLogLevel maps a level name onto slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}

// validateSimpleInputs transfers and checks credentials, output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Credentials = Credentials{
		ClientID:     strings.TrimSpace(input.ClientID),
		ClientSecret: strings.TrimSpace(input.ClientSecret),
		Username:     strings.TrimSpace(input.Username),
		Password:     input.Password,
		RefreshToken: strings.TrimSpace(input.RefreshToken),
	}
	cfg.OutputFile = input.OutputFile
	cfg.StationFilter = strings.TrimSpace(input.Station)
	cfg.KeepGoing = input.KeepGoing

	apiURL := strings.TrimRight(strings.TrimSpace(input.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api-url %q: must be an absolute URL", input.APIURL)
	}
	cfg.APIURL = apiURL

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	format := input.LogFormat
	if format == "" {
		format = string(schema.TextLog)
	}
	cfg.LogFormat = schema.LogFormat(strings.ToLower(format))
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	return nil
}

// validateFetchInputs checks the pagination and worker parameters.
func validateFetchInputs(cfg *Config, input *ConfigRawInput) error {
	if input.PageSize <= 0 {
		return fmt.Errorf("page-size must be greater than 0 (received %d)", input.PageSize)
	}
	cfg.PageSize = input.PageSize

	if input.MaxPages <= 0 {
		return fmt.Errorf("max-pages must be greater than 0 (received %d)", input.MaxPages)
	}
	cfg.MaxPages = input.MaxPages

	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.RequestTimeout = DefaultRequestTimeout
	if v := strings.TrimSpace(input.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid request-timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("request-timeout must be positive (received %s)", v)
		}
		cfg.RequestTimeout = d
	}

	types, err := ParseTypesList(input.Types)
	if err != nil {
		return fmt.Errorf("invalid --types value: %w", err)
	}
	cfg.Types = types

	return nil
}

// validateStoreInputs checks the store backend configuration.
func validateStoreInputs(cfg *Config, input *ConfigRawInput) error {
	backend := input.StoreBackend
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

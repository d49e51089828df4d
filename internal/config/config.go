package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultDialTimeout  = 2 * time.Second
	DefaultMigrateCmd   = "alembic upgrade head"
)

// Endpoint is a single host:port dependency to gate on.
type Endpoint struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Addr returns the dialable address for the endpoint.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, e.Port)
}

// String returns a human-readable label for logs and reports.
func (e Endpoint) String() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Addr()
}

// Config is the supervisor's immutable startup configuration, built
// once at process start. Stages receive values from here instead of
// reading the ambient environment themselves.
type Config struct {
	Database Endpoint   // primary dependency, always gated first
	Extras   []Endpoint // additional wait targets (brokers, caches, ...)

	PollInterval time.Duration
	DialTimeout  time.Duration

	MigrateCommand []string // argv of the external migration tool
	SkipMigrations bool

	// PostgresDSN enables the deep probe: after TCP succeeds, wait
	// until the server actually accepts queries. Empty disables it.
	PostgresDSN string

	LogLevel  string
	LogFormat string
}

// endpointsFile is the YAML shape of an optional endpoints config file.
type endpointsFile struct {
	PollInterval string     `yaml:"poll_interval"`
	DialTimeout  string     `yaml:"dial_timeout"`
	Endpoints    []Endpoint `yaml:"endpoints"`
}

// Load builds the configuration from environment variables, plus an
// optional YAML endpoints file. The file only ever adds wait targets
// and interval overrides; DB_HOST/DB_PORT stay authoritative for the
// primary dependency.
func Load(cfgFile string) (*Config, error) {
	viper.AutomaticEnv()

	// Bind the variables the entrypoint contract names
	viper.BindEnv("db_host", "DB_HOST")
	viper.BindEnv("db_port", "DB_PORT")
	viper.BindEnv("wait_for", "WAIT_FOR")
	viper.BindEnv("poll_interval", "POLL_INTERVAL")
	viper.BindEnv("dial_timeout", "DIAL_TIMEOUT")
	viper.BindEnv("migrate_cmd", "MIGRATE_CMD")
	viper.BindEnv("migrate_skip", "MIGRATE_SKIP")
	viper.BindEnv("database_url", "DATABASE_URL")
	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.BindEnv("log_format", "LOG_FORMAT")

	viper.SetDefault("poll_interval", DefaultPollInterval.String())
	viper.SetDefault("dial_timeout", DefaultDialTimeout.String())
	viper.SetDefault("migrate_cmd", DefaultMigrateCmd)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	cfg := &Config{
		Database: Endpoint{
			Name: "database",
			Host: viper.GetString("db_host"),
			Port: viper.GetString("db_port"),
		},
		SkipMigrations: viper.GetBool("migrate_skip"),
		PostgresDSN:    viper.GetString("database_url"),
		LogLevel:       viper.GetString("log_level"),
		LogFormat:      viper.GetString("log_format"),
	}

	pollInterval, err := time.ParseDuration(viper.GetString("poll_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	cfg.PollInterval = pollInterval

	dialTimeout, err := time.ParseDuration(viper.GetString("dial_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIAL_TIMEOUT: %w", err)
	}
	cfg.DialTimeout = dialTimeout

	// The migration tool is opaque: split on whitespace, never parse
	// beyond that. Shell quoting is not supported on purpose.
	cfg.MigrateCommand = strings.Fields(viper.GetString("migrate_cmd"))

	extras, err := parseWaitFor(viper.GetString("wait_for"))
	if err != nil {
		return nil, err
	}
	cfg.Extras = extras

	if cfgFile != "" {
		if err := cfg.applyFile(cfgFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseWaitFor parses the WAIT_FOR variable: a comma-separated list of
// host:port pairs, e.g. "rabbitmq:5672,redis:6379".
func parseWaitFor(value string) ([]Endpoint, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var endpoints []Endpoint
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		host, port, err := net.SplitHostPort(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid WAIT_FOR entry %q: %w", entry, err)
		}
		endpoints = append(endpoints, Endpoint{Host: host, Port: port})
	}
	return endpoints, nil
}

// applyFile merges an endpoints file into the config. File endpoints
// are appended after WAIT_FOR entries; intervals in the file win over
// defaults but lose to explicit environment values.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file endpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if file.PollInterval != "" && os.Getenv("POLL_INTERVAL") == "" {
		interval, err := time.ParseDuration(file.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval in %s: %w", path, err)
		}
		c.PollInterval = interval
	}

	if file.DialTimeout != "" && os.Getenv("DIAL_TIMEOUT") == "" {
		timeout, err := time.ParseDuration(file.DialTimeout)
		if err != nil {
			return fmt.Errorf("invalid dial_timeout in %s: %w", path, err)
		}
		c.DialTimeout = timeout
	}

	c.Extras = append(c.Extras, file.Endpoints...)
	return nil
}

// Validate fails fast on configuration errors instead of letting the
// prober poll an empty endpoint forever.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is not set")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is not set")
	}
	if err := validatePort(c.Database.Port); err != nil {
		return fmt.Errorf("DB_PORT: %w", err)
	}

	for _, ep := range c.Extras {
		if ep.Host == "" {
			return fmt.Errorf("endpoint %q has no host", ep.String())
		}
		if err := validatePort(ep.Port); err != nil {
			return fmt.Errorf("endpoint %q: %w", ep.String(), err)
		}
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive, got %s", c.DialTimeout)
	}

	if !c.SkipMigrations && len(c.MigrateCommand) == 0 {
		return fmt.Errorf("MIGRATE_CMD is empty; set it or use MIGRATE_SKIP=true")
	}

	return nil
}

// Endpoints returns every wait target in gate order: database first,
// then the extras.
func (c *Config) Endpoints() []Endpoint {
	endpoints := make([]Endpoint, 0, len(c.Extras)+1)
	endpoints = append(endpoints, c.Database)
	endpoints = append(endpoints, c.Extras...)
	return endpoints
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port %q is not a number", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port %d out of range", n)
	}
	return nil
}

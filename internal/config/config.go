// Package config provides configuration management for contactform using
// Viper, loading values from a YAML file, CONTACTFORM_ environment variables,
// and command-line flags.
//
// It covers the HTTP server binding, the GraphQL endpoint the form submits
// to, the form's submit policy, and logging.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/validation"
)

// EnvPrefix prefixes every environment variable read by BindEnv.
const EnvPrefix = "CONTACTFORM"

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// BindEnv makes every key readable from the environment, e.g. api.api_key
// from CONTACTFORM_API_API_KEY.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Form   FormConfig   `mapstructure:"form" yaml:"form"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	Host            string        `mapstructure:"host" yaml:"host"`
	Open            bool          `mapstructure:"open" yaml:"open"`
	Environment     string        `mapstructure:"environment" yaml:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Live session limits; 0 disables a limit.
	MaxSessionsPerIP     int `mapstructure:"max_sessions_per_ip" yaml:"max_sessions_per_ip"`
	MaxMessagesPerMinute int `mapstructure:"max_messages_per_minute" yaml:"max_messages_per_minute"`
}

type APIConfig struct {
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key"`
	AuthToken string        `mapstructure:"auth_token" yaml:"auth_token"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type FormConfig struct {
	BlockInvalid bool `mapstructure:"block_invalid" yaml:"block_invalid"`
	SingleFlight bool `mapstructure:"single_flight" yaml:"single_flight"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "localhost",
			Open:            false,
			Environment:     "development",
			AllowedOrigins:  []string{},
			ShutdownTimeout: 10 * time.Second,

			MaxSessionsPerIP:     20,
			MaxMessagesPerMinute: 120,
		},
		API: APIConfig{
			// amplify mock serves the AppSync API here
			Endpoint: "http://localhost:20002/graphql",
			Timeout:  30 * time.Second,
		},
		Form: FormConfig{
			BlockInvalid: false,
			SingleFlight: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers Default() with v so env vars and IsSet work for every key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.open", d.Server.Open)
	v.SetDefault("server.environment", d.Server.Environment)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_sessions_per_ip", d.Server.MaxSessionsPerIP)
	v.SetDefault("server.max_messages_per_minute", d.Server.MaxMessagesPerMinute)
	v.SetDefault("api.endpoint", d.API.Endpoint)
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.auth_token", "")
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("form.block_invalid", d.Form.BlockInvalid)
	v.SetDefault("form.single_flight", d.Form.SingleFlight)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v, applies defaults, and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config, err := Decode(v)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Decode applies defaults and unmarshals v without validating.
func Decode(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	// Slices given as a comma separated env var arrive as a single element.
	if len(config.Server.AllowedOrigins) == 1 && strings.Contains(config.Server.AllowedOrigins[0], ",") {
		config.Server.AllowedOrigins = strings.Split(config.Server.AllowedOrigins[0], ",")
	}

	return &config, nil
}

// Addr returns host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// URL returns the base URL the server is reachable at.
func (c *ServerConfig) URL() string {
	return "http://" + c.Addr()
}

// Origins returns the origins allowed to open live sessions and make CORS
// requests: the configured list plus the server's own addresses.
func (c *ServerConfig) Origins() []string {
	origins := append([]string{}, c.AllowedOrigins...)
	origins = append(origins,
		c.Addr(),
		fmt.Sprintf("localhost:%d", c.Port),
		fmt.Sprintf("127.0.0.1:%d", c.Port),
	)
	return origins
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.AllowedOrigins = append([]string{}, c.Server.AllowedOrigins...)
	out.API.APIKey = logging.Redact(c.API.APIKey)
	out.API.AuthToken = logging.Redact(c.API.AuthToken)
	return &out
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	collector := errors.NewErrorCollector()

	collector.AddError(validateServerConfig(&config.Server))
	collector.AddError(validateAPIConfig(&config.API))
	collector.AddError(validateLogConfig(&config.Log))

	if err := collector.Err(); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "configuration rejected")
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// 0 lets the system pick a port in tests
	if config.Port < 0 || config.Port > 65535 {
		return errors.ConfigurationError("server.port",
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port), config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " "}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return errors.ConfigurationError("server.host", "host contains dangerous character: "+char, config.Host)
			}
		}
	}

	switch config.Environment {
	case "development", "production":
	default:
		return errors.ConfigurationError("server.environment",
			"must be development or production", config.Environment)
	}

	if config.ShutdownTimeout < 0 {
		return errors.ConfigurationError("server.shutdown_timeout", "must not be negative", config.ShutdownTimeout)
	}

	if config.MaxSessionsPerIP < 0 {
		return errors.ConfigurationError("server.max_sessions_per_ip", "must not be negative", config.MaxSessionsPerIP)
	}
	if config.MaxMessagesPerMinute < 0 {
		return errors.ConfigurationError("server.max_messages_per_minute", "must not be negative", config.MaxMessagesPerMinute)
	}

	return nil
}

func validateAPIConfig(config *APIConfig) error {
	if config.Endpoint == "" {
		return errors.ConfigurationError("api.endpoint", "endpoint is required", config.Endpoint)
	}
	if err := validation.ValidateURL(config.Endpoint); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeInvalidURL, "invalid api.endpoint")
	}
	if config.Timeout < 0 {
		return errors.ConfigurationError("api.timeout", "must not be negative", config.Timeout)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return errors.ConfigurationError("log.level", err.Error(), config.Level)
	}
	if config.Format != "text" && config.Format != "json" {
		return errors.ConfigurationError("log.format", "must be text or json", config.Format)
	}
	return nil
}

// NewLogger builds the logger described by the log section.
func (c *LogConfig) NewLogger() *logging.ContactLogger {
	cfg := logging.DefaultConfig()
	cfg.Format = c.Format
	if level, err := logging.ParseLevel(c.Level); err == nil {
		cfg.Level = level
	}
	return logging.NewLogger(cfg)
}

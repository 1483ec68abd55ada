package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/contactform/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "successful load with defaults",
			setup: func() {
				viper.Reset()
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "overrides",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", 3000)
				viper.Set("server.host", "0.0.0.0")
				viper.Set("api.endpoint", "https://abc.appsync-api.us-east-1.amazonaws.com/graphql")
				viper.Set("api.api_key", "da2-secret")
				viper.Set("api.timeout", "5s")
				viper.Set("form.block_invalid", true)
				viper.Set("form.single_flight", false)
				viper.Set("log.level", "debug")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3000, cfg.Server.Port)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, "https://abc.appsync-api.us-east-1.amazonaws.com/graphql", cfg.API.Endpoint)
				assert.Equal(t, "da2-secret", cfg.API.APIKey)
				assert.Equal(t, 5*time.Second, cfg.API.Timeout)
				assert.True(t, cfg.Form.BlockInvalid)
				assert.False(t, cfg.Form.SingleFlight)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "comma separated origins",
			setup: func() {
				viper.Reset()
				viper.Set("server.allowed_origins", []string{"http://a.test,http://b.test"})
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name: "invalid viper config",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", "invalid_port")
			},
			expectError: true,
		},
		{
			name: "port out of range",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", 70000)
			},
			expectError: true,
		},
		{
			name: "negative live session limit",
			setup: func() {
				viper.Reset()
				viper.Set("server.max_sessions_per_ip", -1)
			},
			expectError: true,
		},
		{
			name: "endpoint not http",
			setup: func() {
				viper.Reset()
				viper.Set("api.endpoint", "ftp://example.com/graphql")
			},
			expectError: true,
		},
		{
			name: "unknown log level",
			setup: func() {
				viper.Reset()
				viper.Set("log.level", "loud")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".contactform.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  allowed_origins:
    - http://localhost:3000
api:
  endpoint: http://localhost:20002/graphql
form:
  block_invalid: true
`), 0o600))

	t.Setenv("CONTACTFORM_SERVER_PORT", "9191")

	v := viper.New()
	v.SetConfigFile(path)
	BindEnv(v)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port, "env overrides file")
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Form.BlockInvalid)
	assert.True(t, cfg.Form.SingleFlight, "unset keys keep defaults")
}

func TestValidateConfigCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	cfg.API.Endpoint = ""
	cfg.Log.Format = "xml"

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.True(t, errors.HasErrorType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "api.endpoint")
	assert.Contains(t, err.Error(), "log.format")
}

func TestValidateServerHost(t *testing.T) {
	for _, host := range []string{"localhost", "0.0.0.0", "127.0.0.1", ""} {
		cfg := Default()
		cfg.Server.Host = host
		assert.NoError(t, validateConfig(cfg), host)
	}
	for _, host := range []string{"localhost; rm -rf /", "host name", "a|b"} {
		cfg := Default()
		cfg.Server.Host = host
		assert.Error(t, validateConfig(cfg), host)
	}
}

func TestServerConfigAddresses(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8080, AllowedOrigins: []string{"http://app.test"}}

	assert.Equal(t, "0.0.0.0:8080", s.Addr())
	assert.Equal(t, "http://0.0.0.0:8080", s.URL())
	assert.Equal(t, []string{"http://app.test", "0.0.0.0:8080", "localhost:8080", "127.0.0.1:8080"}, s.Origins())
	assert.Equal(t, []string{"http://app.test"}, s.AllowedOrigins, "Origins must not alias the configured slice")
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.API.APIKey = "da2-abcdefgh1234"
	cfg.API.AuthToken = "tok"

	red := cfg.Redacted()
	assert.Equal(t, "****1234", red.API.APIKey)
	assert.Equal(t, "****", red.API.AuthToken)
	assert.Equal(t, "da2-abcdefgh1234", cfg.API.APIKey)
}

func TestValidateConfigWithDetails(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		result := ValidateConfigWithDetails(Default())
		assert.True(t, result.Valid)
		assert.False(t, result.HasErrors())
	})

	t.Run("production without credentials warns", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Environment = "production"
		result := ValidateConfigWithDetails(cfg)

		assert.True(t, result.Valid)
		require.True(t, result.HasWarnings())
		fields := make([]string, 0, len(result.Warnings))
		for _, w := range result.Warnings {
			fields = append(fields, w.Field)
		}
		assert.Contains(t, fields, "api")
		assert.Contains(t, fields, "api.endpoint")
	})

	t.Run("errors carry suggestions", func(t *testing.T) {
		cfg := Default()
		cfg.API.Endpoint = ""
		cfg.Server.Environment = "staging"
		result := ValidateConfigWithDetails(cfg)

		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 2)
		assert.NotEmpty(t, result.Errors[1].Suggestions)
		assert.Contains(t, result.String(), "api.endpoint: endpoint is required")
	})

	t.Run("disabled single flight warns", func(t *testing.T) {
		cfg := Default()
		cfg.Form.SingleFlight = false
		result := ValidateConfigWithDetails(cfg)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "form.single_flight", result.Warnings[0].Field)
	})
}

func TestLogConfigNewLogger(t *testing.T) {
	lc := LogConfig{Level: "warn", Format: "json"}
	logger := lc.NewLogger()
	require.NotNil(t, logger)
	assert.Equal(t, "WARN", logger.Level().String())
}

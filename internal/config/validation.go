package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("      hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("      hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback.
// It backs `contactform config validate`; Load only enforces the errors.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfigDetails(&config.Server, result)
	validateAPIConfigDetails(&config.API, config.Server.Environment, result)
	validateFormConfigDetails(&config.Form, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()
	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port,
			"port below 1024 requires elevated privileges",
			"Consider using a port above 1024 for development",
		)
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.addError("server.host", config.Host, err.Error(),
				"Use 'localhost' for local development",
				"Use '0.0.0.0' to bind to all interfaces",
			)
		}
	}

	switch config.Environment {
	case "development", "production":
	default:
		result.addError("server.environment", config.Environment, "unknown environment type",
			"Use 'development' for local development",
			"Use 'production' for deployments",
		)
	}

	for i, origin := range config.AllowedOrigins {
		if strings.Contains(origin, "://") {
			if err := validation.ValidateURL(origin); err != nil {
				result.addError(fmt.Sprintf("server.allowed_origins[%d]", i), origin, err.Error(),
					"Use a full origin like 'http://localhost:3000' or a bare host like 'localhost:3000'",
				)
			}
			continue
		}
		if _, _, err := net.SplitHostPort(origin); err != nil {
			result.addWarning(fmt.Sprintf("server.allowed_origins[%d]", i), origin,
				"bare origin without port only matches default ports",
			)
		}
	}

	if config.MaxSessionsPerIP < 0 {
		result.addError("server.max_sessions_per_ip", config.MaxSessionsPerIP, "must not be negative",
			"Use 0 to allow any number of live sessions")
	}
	if config.MaxMessagesPerMinute < 0 {
		result.addError("server.max_messages_per_minute", config.MaxMessagesPerMinute, "must not be negative",
			"Use 0 to disable the live message rate limit")
	}

	if config.Open && config.Environment == "production" {
		result.addWarning("server.open", config.Open, "opening a browser in production has no effect on remote hosts")
	}
}

func validateAPIConfigDetails(config *APIConfig, environment string, result *ValidationResult) {
	if config.Endpoint == "" {
		result.addError("api.endpoint", config.Endpoint, "endpoint is required",
			"Use the GraphQL endpoint printed by 'amplify status'",
			"Use 'http://localhost:20002/graphql' with 'amplify mock api'",
		)
	} else if err := validation.ValidateURL(config.Endpoint); err != nil {
		result.addError("api.endpoint", config.Endpoint, err.Error())
	} else if u, _ := url.Parse(config.Endpoint); u != nil && u.Scheme == "http" && environment == "production" {
		result.addWarning("api.endpoint", config.Endpoint, "plain http endpoint in production",
			"Use the https AppSync endpoint",
		)
	}

	if config.APIKey == "" && config.AuthToken == "" && environment == "production" {
		result.addWarning("api", nil, "no api_key or auth_token configured; the mutation will be rejected",
			"Set CONTACTFORM_API_API_KEY or CONTACTFORM_API_AUTH_TOKEN",
		)
	}

	if config.Timeout < 0 {
		result.addError("api.timeout", config.Timeout.String(), "timeout must not be negative")
	} else if config.Timeout == 0 {
		result.addWarning("api.timeout", config.Timeout.String(), "no timeout; a stalled backend holds submits open",
			"Use a timeout such as '30s'",
		)
	}
}

func validateFormConfigDetails(config *FormConfig, result *ValidationResult) {
	if !config.SingleFlight {
		result.addWarning("form.single_flight", config.SingleFlight,
			"overlapping submits will each create a contact",
		)
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.addError("log.level", config.Level, err.Error(), "Use debug, info, warn or error")
	}
	if config.Format != "text" && config.Format != "json" {
		result.addError("log.format", config.Format, "must be text or json")
	}
}

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

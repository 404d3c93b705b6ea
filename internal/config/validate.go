package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns both errors (fatal) and
// warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Database.validate(result)
	c.Server.validate(result)
	c.Resolver.validate(result)
	c.Observability.validate(result)
	c.validateTables(result)

	return result
}

var validRelationKinds = map[string]bool{
	"":             true,
	"one_to_many":  true,
	"list":         true,
	"many_to_many": true,
	"mm":           true,
}

func (c *Config) validateTables(result *ValidationResult) {
	for table, spec := range c.Tables {
		if strings.TrimSpace(table) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "tables",
				Message: "table name cannot be empty",
			})
			continue
		}
		for field, fs := range spec.Fields {
			key := fmt.Sprintf("tables.%s.fields.%s", table, field)
			if strings.TrimSpace(field) == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("tables.%s.fields", table),
					Message: "field name cannot be empty",
				})
				continue
			}
			if !validRelationKinds[fs.Kind] {
				result.Errors = append(result.Errors, ValidationError{
					Field:   key,
					Message: fmt.Sprintf("unknown relation kind %q", fs.Kind),
					Hint:    "use one_to_many, list, many_to_many, or mm",
				})
			}
			if strings.TrimSpace(fs.ForeignTable) == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field:   key,
					Message: "foreign_table is required for relation fields",
				})
			}
			if (fs.Kind == "one_to_many" || fs.Kind == "list" || fs.Kind == "") && fs.JunctionTable != "" {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Field:   key,
					Message: "junction_table is ignored for list relations",
					Hint:    "set kind to many_to_many or remove junction_table",
				})
			}
		}
	}
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	usingDSN := strings.TrimSpace(d.ConnectionString) != "" || strings.TrimSpace(d.ConnectionStringFile) != ""

	if !usingDSN {
		if strings.TrimSpace(d.Host) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.host",
				Message: "host is required when no DSN is configured",
			})
		}
		if d.Port < 1 || d.Port > 65535 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.port",
				Message: fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port),
			})
		}
		if strings.TrimSpace(d.User) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.user",
				Message: "user is required when no DSN is configured",
			})
		}
	}

	if _, err := d.EffectiveDatabaseName(); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.database",
			Message: err.Error(),
		})
	}

	switch d.TLS.Mode {
	case "", "off", "skip-verify", "verify-ca", "verify-full":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.tls.mode",
			Message: fmt.Sprintf("unknown TLS mode %q", d.TLS.Mode),
			Hint:    "use off, skip-verify, verify-ca, or verify-full",
		})
	}
	if (d.TLS.Mode == "verify-ca" || d.TLS.Mode == "verify-full") && strings.TrimSpace(d.TLS.CAFile) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.tls.ca_file",
			Message: fmt.Sprintf("ca_file is required for TLS mode %q", d.TLS.Mode),
		})
	}
	if d.TLS.Mode == "skip-verify" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.tls.mode",
			Message: "skip-verify disables server certificate verification",
			Hint:    "use verify-ca or verify-full in production",
		})
	}

	if d.Pool.MaxIdle > d.Pool.MaxOpen && d.Pool.MaxOpen > 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.pool.max_idle",
			Message: fmt.Sprintf("max_idle (%d) exceeds max_open (%d)", d.Pool.MaxIdle, d.Pool.MaxOpen),
			Hint:    "idle connections above max_open are never created",
		})
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port < 1 || s.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port),
		})
	}
	if s.ShutdownTimeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown_timeout cannot be negative",
		})
	}
}

func (r *ResolverConfig) validate(result *ValidationResult) {
	if r.DefaultLanguageID < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "resolver.default_language_id",
			Message: "default_language_id cannot be negative",
		})
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.trace_sample_ratio",
			Message: fmt.Sprintf("trace_sample_ratio %v must be between 0.0 and 1.0", o.TraceSampleRatio),
		})
	}

	switch o.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.level",
			Message: fmt.Sprintf("unknown log level %q", o.Logging.Level),
			Hint:    "use debug, info, warn, or error",
		})
	}
	switch o.Logging.Format {
	case "", "json", "text":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.format",
			Message: fmt.Sprintf("unknown log format %q", o.Logging.Format),
			Hint:    "use json or text",
		})
	}

	for _, signal := range []struct {
		name string
		cfg  OTLPConfig
		used bool
	}{
		{"observability.otlp", o.OTLP, o.TracingEnabled || o.Logging.ExportsEnabled},
		{"observability.traces", o.GetTracesConfig(), o.TracingEnabled},
		{"observability.logs", o.GetLogsConfig(), o.Logging.ExportsEnabled},
	} {
		if !signal.used {
			continue
		}
		switch signal.cfg.Protocol {
		case "", "grpc", "http/protobuf":
		default:
			result.Errors = append(result.Errors, ValidationError{
				Field:   signal.name + ".protocol",
				Message: fmt.Sprintf("unknown OTLP protocol %q", signal.cfg.Protocol),
				Hint:    "use grpc or http/protobuf",
			})
		}
		if signal.cfg.IsInsecure() {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   signal.name + ".insecure",
				Message: "telemetry export uses an unencrypted connection",
			})
		}
	}
}

package config

import (
	"testing"
	"time"

	"relation-labels/internal/metadata"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "relation_labels",
			Database: "cms",
			Pool:     PoolConfig{MaxOpen: 25, MaxIdle: 5, MaxLifetime: 5 * time.Minute},
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			ServiceName:      "relation-labels",
			TraceSampleRatio: 1.0,
			Logging:          LoggingConfig{Level: "info", Format: "json"},
			OTLP:             OTLPConfig{Protocol: "grpc"},
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	result := validConfig().Validate()
	assert.False(t, result.HasErrors(), "unexpected errors: %s", result.Error())
	assert.Empty(t, result.Warnings)
}

func TestValidateRejectsBadPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Port = 0
	cfg.Server.Port = 70000

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "database.port")
	assert.Contains(t, result.Error(), "server.port")
}

func TestValidateRequiresDatabaseName(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Database = ""

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "database.database")
}

func TestValidateDatabaseNameMismatchWithDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.ConnectionString = "user:pass@tcp(localhost:3306)/other"

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "database mismatch")
}

func TestValidateRejectsUnknownTLSMode(t *testing.T) {
	cfg := validConfig()
	cfg.Database.TLS.Mode = "mystery"

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "unknown TLS mode")
}

func TestValidateWarnsOnSkipVerify(t *testing.T) {
	cfg := validConfig()
	cfg.Database.TLS.Mode = "skip-verify"

	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "database.tls.mode", result.Warnings[0].Field)
}

func TestValidateRejectsBadSampleRatio(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.TraceSampleRatio = 1.5

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "trace_sample_ratio")
}

func TestValidateRejectsUnknownOTLPProtocol(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.TracingEnabled = true
	cfg.Observability.OTLP.Protocol = "carrier-pigeon"

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "unknown OTLP protocol")
}

func TestValidateTables(t *testing.T) {
	cfg := validConfig()
	cfg.Tables = map[string]metadata.TableSpec{
		"pages": {
			LabelField: "title",
			Fields: map[string]metadata.FieldSpec{
				"category": {Kind: "mm", ForeignTable: "categories"},
				"broken":   {Kind: "sideways", ForeignTable: "categories"},
				"orphan":   {Kind: "list"},
			},
		},
	}

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), `unknown relation kind "sideways"`)
	assert.Contains(t, result.Error(), "foreign_table is required")
}

func TestValidateWarnsOnJunctionTableForListRelation(t *testing.T) {
	cfg := validConfig()
	cfg.Tables = map[string]metadata.TableSpec{
		"news": {
			Fields: map[string]metadata.FieldSpec{
				"related": {Kind: "list", ForeignTable: "articles", JunctionTable: "news_article_mm"},
			},
		},
	}

	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "junction_table is ignored")
}

func TestDSNFromDiscreteFields(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "secret"

	assert.Equal(t,
		"relation_labels:secret@tcp(localhost:3306)/cms?parseTime=true&loc=UTC",
		cfg.Database.DSN(),
	)
}

func TestDSNAppendsRequiredParams(t *testing.T) {
	cfg := validConfig()
	cfg.Database.ConnectionString = "user:pass@tcp(db:3306)/cms"

	dsn := cfg.Database.DSN()
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=UTC")
}

func TestDSNPreservesExistingParams(t *testing.T) {
	cfg := validConfig()
	cfg.Database.ConnectionString = "user:pass@tcp(db:3306)/cms?parseTime=false&loc=Local"

	assert.Equal(t, "user:pass@tcp(db:3306)/cms?parseTime=false&loc=Local", cfg.Database.DSN())
}

func TestDSNAddsTLSParam(t *testing.T) {
	cfg := validConfig()
	cfg.Database.TLS.Mode = "skip-verify"

	assert.Contains(t, cfg.Database.DSN(), "tls=skip-verify")
}

func TestEffectiveDatabaseNameFromDSN(t *testing.T) {
	d := DatabaseConfig{ConnectionString: "user:pass@tcp(db:3306)/cms"}
	name, err := d.EffectiveDatabaseName()
	require.NoError(t, err)
	assert.Equal(t, "cms", name)
}

func TestMergeOTLPConfigs(t *testing.T) {
	base := OTLPConfig{
		Endpoint:    "collector:4317",
		Protocol:    "grpc",
		Timeout:     10 * time.Second,
		Compression: "gzip",
		Headers:     map[string]string{"x-team": "cms"},
	}
	override := OTLPConfig{
		Endpoint: "traces-collector:4318",
		Protocol: "http/protobuf",
		Insecure: boolPtr(true),
		Headers:  map[string]string{"x-signal": "traces"},
	}

	merged := mergeOTLPConfigs(base, override)
	assert.Equal(t, "traces-collector:4318", merged.Endpoint)
	assert.Equal(t, "http/protobuf", merged.Protocol)
	assert.True(t, merged.IsInsecure())
	assert.Equal(t, 10*time.Second, merged.Timeout)
	assert.Equal(t, "gzip", merged.Compression)
	assert.Equal(t, "cms", merged.Headers["x-team"])
	assert.Equal(t, "traces", merged.Headers["x-signal"])
}

func TestMergeOTLPConfigsInheritsInsecure(t *testing.T) {
	base := OTLPConfig{Endpoint: "collector:4317", Insecure: boolPtr(true)}

	merged := mergeOTLPConfigs(base, OTLPConfig{Endpoint: "traces-collector:4318"})
	assert.True(t, merged.IsInsecure(), "override without insecure must keep the global value")

	merged = mergeOTLPConfigs(base, OTLPConfig{Insecure: boolPtr(false)})
	assert.False(t, merged.IsInsecure(), "explicit false must win over the global value")
}

func TestUnmarshalConfigParsesDurationStrings(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("server.read_timeout", "45s")
	v.Set("database.pool.max_lifetime", "10m")
	v.Set("server.port", "9090")

	cfg, err := unmarshalConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Database.Pool.MaxLifetime)
	assert.Equal(t, 9090, cfg.Server.Port)
}

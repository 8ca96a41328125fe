package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cimflat/pkg/cimflat"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cimflat.DefaultMaxPasses, cfg.Resolve.MaxPasses)
	assert.Equal(t, "**/*.xml", cfg.Input.Pattern)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "xlsx", cfg.Output.CleanFormat)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoad_AllFields(t *testing.T) {
	path := writeFile(t, ConfigFileName, `input:
  pattern: "*_EQ.xml"
  parser: encoding/xml
extract:
  accept_about: true
resolve:
  max_passes: 8
output:
  dir: out/full
  format: xlsx
  clean_dir: out/clean
  clean_format: csv
  metrics_file: out/cimflat.prom
postgres:
  url: postgres://u@localhost/cim
  schema: grid
workers: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "*_EQ.xml", cfg.Input.Pattern)
	assert.Equal(t, "encoding/xml", cfg.Input.Parser)
	assert.True(t, cfg.Extract.AcceptAbout)
	assert.Equal(t, 8, cfg.Resolve.MaxPasses)
	assert.Equal(t, "out/full", cfg.Output.Dir)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.Equal(t, "out/clean", cfg.Output.CleanDir)
	assert.Equal(t, "csv", cfg.Output.CleanFormat)
	assert.Equal(t, "out/cimflat.prom", cfg.Output.MetricsFile)
	assert.Equal(t, "postgres://u@localhost/cim", cfg.Postgres.URL)
	assert.Equal(t, "grid", cfg.Postgres.Schema)
	assert.Equal(t, 4, cfg.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MinimalYAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, ConfigFileName, "workers: 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Workers = 2
	assert.Equal(t, want, cfg)
}

func TestLoad_ExplicitZeroPassesDisablesCap(t *testing.T) {
	path := writeFile(t, ConfigFileName, "resolve:\n  max_passes: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Resolve.MaxPasses)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, ConfigFileName, "{{invalid")

	cfg, err := Load(path)
	assert.ErrorIs(t, err, cimflat.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvPostgresURL: "postgres://env",
		EnvMaxPasses:   "12",
		EnvWorkers:     " 3 ",
		EnvParser:      "encoding/xml",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Postgres.URL)
	assert.Equal(t, 12, cfg.Resolve.MaxPasses)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "encoding/xml", cfg.Input.Parser)
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookupFrom(map[string]string{EnvWorkers: ""})))
	assert.Equal(t, 1, cfg.Workers)
}

func TestApplyEnv_NotANumber(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{EnvMaxPasses: "lots"}))
	assert.ErrorIs(t, err, cimflat.ErrInvalidConfig)
	assert.Contains(t, err.Error(), EnvMaxPasses)
}

func TestLoadEnvFile_AndLookupPrecedence(t *testing.T) {
	path := writeFile(t, ".env", "CIMFLAT_WORKERS=6\nCIMFLAT_PARSER=encoding/xml\n# comment\n")

	vars, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "6", vars[EnvWorkers])

	t.Setenv(EnvWorkers, "2")
	lookup := EnvLookup(vars)

	v, ok := lookup(EnvWorkers)
	assert.True(t, ok)
	assert.Equal(t, "2", v, "process environment wins over .env")

	v, ok = lookup(EnvParser)
	assert.True(t, ok)
	assert.Equal(t, "encoding/xml", v)

	_, ok = lookup("CIMFLAT_SURELY_UNSET_VARIABLE")
	assert.False(t, ok)
}

func TestLoadEnvFile_Missing(t *testing.T) {
	_, err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative passes", func(c *Config) { c.Resolve.MaxPasses = -1 }, "max passes"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"unknown parser", func(c *Config) { c.Input.Parser = "sax" }, "sax"},
		{"unknown format", func(c *Config) { c.Output.Format = "parquet" }, "parquet"},
		{"unknown clean format", func(c *Config) { c.Output.CleanFormat = "json" }, "clean format"},
		{"empty schema", func(c *Config) { c.Postgres.URL = "postgres://x"; c.Postgres.Schema = "" }, "schema"},
		{"unknown auth", func(c *Config) { c.Postgres.Auth = "kerberos" }, "kerberos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, cimflat.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_NoneFormatAllowed(t *testing.T) {
	cfg := Default()
	cfg.Output.CleanFormat = FormatNone
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_PostgresAuth(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvPostgresAuth:      "azure-entra",
		EnvAzureTenantID:     "tenant",
		EnvAzureClientID:     "client",
		EnvAzureClientSecret: "secret",
		EnvAWSRegion:         "eu-west-1",
	})))

	assert.Equal(t, "azure-entra", cfg.Postgres.Auth)
	assert.Equal(t, "tenant", cfg.Postgres.AzureTenantID)
	assert.Equal(t, "client", cfg.Postgres.AzureClientID)
	assert.Equal(t, "secret", cfg.Postgres.AzureClientSecret)
	assert.Equal(t, "eu-west-1", cfg.Postgres.AWSRegion)
}

func TestPostgresConfig_Connection(t *testing.T) {
	p := PostgresConfig{
		URL:            "postgresql://loader@db:5432/grid",
		Auth:           "google-iam",
		GoogleInstance: "proj:region:grid",
	}

	conn, err := p.Connection()
	require.NoError(t, err)
	assert.Equal(t, cimflat.AuthMethodGoogleIAM, conn.AuthMethod)
	assert.Equal(t, "proj:region:grid", conn.GoogleInstance)
	assert.Equal(t, "loader", conn.Username)
	assert.Equal(t, "grid", conn.Database)
}

func TestPostgresConfig_ConnectionErrors(t *testing.T) {
	_, err := PostgresConfig{URL: "postgresql://db/grid", Auth: "ldap"}.Connection()
	assert.ErrorIs(t, err, cimflat.ErrInvalidConfig)

	_, err = PostgresConfig{URL: "nonsense"}.Connection()
	assert.ErrorIs(t, err, cimflat.ErrInvalidConfig)
}

func TestLoad_AzureSecretNotReadFromYAML(t *testing.T) {
	path := writeFile(t, ConfigFileName, "postgres:\n  auth: azure-entra\n  azure_tenant_id: t\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "azure-entra", cfg.Postgres.Auth)
	assert.Equal(t, "t", cfg.Postgres.AzureTenantID)
	assert.Empty(t, cfg.Postgres.AzureClientSecret)
}

func TestEnvLookup_EmptyProcessValueFallsBackToFile(t *testing.T) {
	t.Setenv(EnvWorkers, "")

	v, ok := EnvLookup(map[string]string{EnvWorkers: "6"})(EnvWorkers)
	assert.True(t, ok)
	assert.Equal(t, "6", v)
}

// Package config loads cimflat settings.
//
// Precedence, highest first: command-line flags (applied by the CLI),
// environment variables (process environment, then the .env file),
// cimflat.yaml, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cimflat/internal/db"
	"github.com/vvka-141/cimflat/internal/xmltree"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables read by ApplyEnv.
const (
	EnvPostgresURL    = "CIMFLAT_POSTGRES_URL"
	EnvPostgresAuth   = "CIMFLAT_POSTGRES_AUTH"
	EnvGoogleInstance = "CIMFLAT_GOOGLE_INSTANCE"
	EnvMaxPasses      = "CIMFLAT_MAX_PASSES"
	EnvWorkers        = "CIMFLAT_WORKERS"
	EnvParser         = "CIMFLAT_PARSER"

	// Cloud credentials use the variable names of the respective SDKs.
	EnvAWSRegion         = "AWS_REGION"
	EnvAzureTenantID     = "AZURE_TENANT_ID"
	EnvAzureClientID     = "AZURE_CLIENT_ID"
	EnvAzureClientSecret = "AZURE_CLIENT_SECRET"
)

// ConfigFileName is the file looked up in the working directory.
const ConfigFileName = cimflat.DefaultConfigFile

// FormatNone disables a file view.
const FormatNone = "none"

type InputConfig struct {
	// Pattern selects the document inside archives and directories.
	Pattern string `yaml:"pattern"`
	// Parser is the XML backend name.
	Parser string `yaml:"parser"`
}

type ExtractConfig struct {
	AcceptAbout bool `yaml:"accept_about"`
}

type ResolveConfig struct {
	// MaxPasses caps resolution; 0 disables the cap.
	MaxPasses int `yaml:"max_passes"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Format      string `yaml:"format"`
	CleanDir    string `yaml:"clean_dir"`
	CleanFormat string `yaml:"clean_format"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

type PostgresConfig struct {
	URL    string `yaml:"url,omitempty"`
	Schema string `yaml:"schema"`

	// Auth is standard, aws-iam, google-iam or azure-entra.
	Auth           string `yaml:"auth,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	// AzureClientSecret is only read from the environment.
	AzureClientSecret string `yaml:"-"`
}

// Connection parses URL and applies the authentication settings.
func (p PostgresConfig) Connection() (*cimflat.ConnectionConfig, error) {
	method, err := cimflat.ParseAuthMethod(p.Auth)
	if err != nil {
		return nil, err
	}
	conn, err := db.ParseConnectionString(p.URL)
	if err != nil {
		return nil, err
	}
	conn.AuthMethod = method
	conn.AWSRegion = p.AWSRegion
	conn.GoogleInstance = p.GoogleInstance
	conn.AzureTenantID = p.AzureTenantID
	conn.AzureClientID = p.AzureClientID
	conn.AzureClientSecret = p.AzureClientSecret
	return conn, nil
}

type Config struct {
	Input    InputConfig    `yaml:"input"`
	Extract  ExtractConfig  `yaml:"extract"`
	Resolve  ResolveConfig  `yaml:"resolve"`
	Output   OutputConfig   `yaml:"output"`
	Postgres PostgresConfig `yaml:"postgres"`
	// Workers bounds parallel extraction and planning. 1 is sequential.
	Workers int `yaml:"workers"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Pattern: cimflat.DefaultDocumentPattern,
			Parser:  string(xmltree.DefaultBackend),
		},
		Resolve: ResolveConfig{MaxPasses: cimflat.DefaultMaxPasses},
		Output: OutputConfig{
			Dir:         cimflat.DefaultOutputDir,
			Format:      cimflat.FormatCSV,
			CleanDir:    cimflat.DefaultCleanOutputDir,
			CleanFormat: cimflat.FormatXLSX,
		},
		Postgres: PostgresConfig{Schema: cimflat.DefaultSchema},
		Workers:  1,
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, cimflat.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadEnvFile reads KEY=VALUE pairs from a .env file without touching the
// process environment.
func LoadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return vars, nil
}

// EnvLookup returns a lookup that prefers the process environment over
// fileVars. A variable set to the empty string counts as unset.
func EnvLookup(fileVars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPostgresURL); ok && v != "" {
		c.Postgres.URL = v
	}
	if v, ok := lookup(EnvParser); ok && v != "" {
		c.Input.Parser = v
	}
	for key, dst := range map[string]*string{
		EnvPostgresAuth:      &c.Postgres.Auth,
		EnvGoogleInstance:    &c.Postgres.GoogleInstance,
		EnvAWSRegion:         &c.Postgres.AWSRegion,
		EnvAzureTenantID:     &c.Postgres.AzureTenantID,
		EnvAzureClientID:     &c.Postgres.AzureClientID,
		EnvAzureClientSecret: &c.Postgres.AzureClientSecret,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup(EnvMaxPasses); ok && v != "" {
		n, err := parseInt(EnvMaxPasses, v)
		if err != nil {
			return err
		}
		c.Resolve.MaxPasses = n
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := parseInt(EnvWorkers, v)
		if err != nil {
			return err
		}
		c.Workers = n
	}
	return nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not an integer: %w", key, value, cimflat.ErrInvalidConfig)
	}
	return n, nil
}

// Validate checks value ranges and names. All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string
	if c.Resolve.MaxPasses < 0 {
		problems = append(problems, fmt.Sprintf("max passes must not be negative, got %d", c.Resolve.MaxPasses))
	}
	if c.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := xmltree.ParseBackend(c.Input.Parser); err != nil {
		problems = append(problems, err.Error())
	}
	for name, format := range map[string]string{"format": c.Output.Format, "clean format": c.Output.CleanFormat} {
		if !validFormat(format) {
			problems = append(problems, fmt.Sprintf("unknown %s %q (want csv, xlsx or none)", name, format))
		}
	}
	if c.Postgres.URL != "" && c.Postgres.Schema == "" {
		problems = append(problems, "postgres schema must not be empty")
	}
	if _, err := cimflat.ParseAuthMethod(c.Postgres.Auth); err != nil {
		problems = append(problems, fmt.Sprintf("unknown postgres auth %q", c.Postgres.Auth))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", cimflat.ErrInvalidConfig, strings.Join(problems, "; "))
}

func validFormat(f string) bool {
	switch f {
	case cimflat.FormatCSV, cimflat.FormatXLSX, FormatNone:
		return true
	}
	return false
}

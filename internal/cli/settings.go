package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cimflat/internal/config"
	"github.com/vvka-141/cimflat/internal/services"
	"github.com/vvka-141/cimflat/internal/xmltree"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// commonFlags are the settings shared by every command that reads a model.
type commonFlags struct {
	configPath  string
	envFile     string
	document    string
	parser      string
	workers     int
	maxPasses   int
	acceptAbout bool
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVar(&f.configPath, "config", cimflat.DefaultConfigFile,
		"Settings file; a missing default file is ignored")
	cmd.Flags().StringVar(&f.envFile, "env-file", cimflat.DefaultEnvFile,
		"File with CIMFLAT_* variables; the process environment wins")
	cmd.Flags().StringVar(&f.document, "document", cimflat.DefaultDocumentPattern,
		"Glob selecting the document inside an archive or directory (case-insensitive)")
	cmd.Flags().StringVar(&f.parser, "parser", string(xmltree.DefaultBackend),
		"XML parser: xmlstream|encoding/xml")
	cmd.Flags().IntVar(&f.workers, "workers", 1,
		"Parallel extraction and resolution workers (1 = sequential)")
	cmd.Flags().IntVar(&f.maxPasses, "max-passes", cimflat.DefaultMaxPasses,
		"Stop resolving after this many passes (0 = until converged)")
	cmd.Flags().BoolVar(&f.acceptAbout, "accept-about", false,
		"Accept rdf:about as identifier for elements without rdf:ID")
}

// loadSettings merges cimflat.yaml, the environment and the flags the user
// set explicitly. The result is not validated yet so that commands can add
// their own overrides first.
func loadSettings(cmd *cobra.Command, f *commonFlags) (*config.Config, error) {
	cfg, err := loadConfigFile(f.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}

	fileVars, err := loadEnvFile(f.envFile, cmd.Flags().Changed("env-file"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(config.EnvLookup(fileVars)); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("document") {
		cfg.Input.Pattern = f.document
	}
	if flags.Changed("parser") {
		cfg.Input.Parser = f.parser
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("max-passes") {
		cfg.Resolve.MaxPasses = f.maxPasses
	}
	if flags.Changed("accept-about") {
		cfg.Extract.AcceptAbout = f.acceptAbout
	}
	return cfg, nil
}

func loadConfigFile(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrConfigNotFound) && !explicit {
		return config.Default(), nil
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("config file %s not found: %w", path, cimflat.ErrInvalidConfig)
	}
	return nil, err
}

func loadEnvFile(path string, explicit bool) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("env file %s: %w: %w", path, cimflat.ErrInvalidConfig, err)
	}
	vars, err := config.LoadEnvFile(path)
	if err != nil {
		return nil, fmt.Errorf("env file %s: %w: %w", path, cimflat.ErrInvalidConfig, err)
	}
	return vars, nil
}

// converterOptions maps validated settings onto the pipeline options.
func converterOptions(cfg *config.Config) (services.Options, error) {
	backend, err := xmltree.ParseBackend(cfg.Input.Parser)
	if err != nil {
		return services.Options{}, err
	}

	opts := services.DefaultOptions()
	opts.Pattern = cfg.Input.Pattern
	opts.Backend = backend
	opts.Extract.AcceptAbout = cfg.Extract.AcceptAbout
	opts.Extract.Workers = cfg.Workers
	opts.Resolve.MaxPasses = cfg.Resolve.MaxPasses
	opts.Resolve.Workers = cfg.Workers
	return opts, nil
}

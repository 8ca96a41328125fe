package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vvka-141/cimflat/internal/config"
	"github.com/vvka-141/cimflat/internal/db"
	"github.com/vvka-141/cimflat/internal/files/filesystem"
	"github.com/vvka-141/cimflat/internal/logging"
	"github.com/vvka-141/cimflat/internal/metrics"
	"github.com/vvka-141/cimflat/internal/services"
	"github.com/vvka-141/cimflat/internal/sink"
	"github.com/vvka-141/cimflat/internal/tui"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Extract, resolve and write one table per class",
	Long: `Convert reads the model in <input> and writes two views of every class:

  enriched  all fields, including the inlined fields of referenced objects
            -> <out>/<Class>_enriched.<format>
  clean     the enriched view without declared_id, @attributes,
            *__resource and *mrid columns
            -> <clean-out>/<Class>_clean.<clean-format>

With --postgres-url (or $CIMFLAT_POSTGRES_URL) the enriched view is also
loaded into <schema>."<Class>" tables. Cloud databases can authenticate
with short-lived tokens (--postgres-auth aws-iam|google-iam|azure-entra).

A document without objects writes nothing and exits 0.

Examples:
  # CSV and XLSX next to the working directory
  cimflat convert model.zip

  # Pick the equipment profile from a CGMES archive
  cimflat convert model.zip --document "**/*_EQ_*.xml"

  # Only the clean view, as CSV
  cimflat convert ./export --format none --clean-format csv

  # Load into PostgreSQL as well
  cimflat convert model.zip --postgres-url postgresql://user@localhost/grid`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

type convertFlagValues struct {
	common commonFlags

	out, format           string
	cleanOut, cleanFormat string
	metricsFile           string

	postgresURL, postgresSchema, postgresAuth string
	googleInstance, awsRegion                 string

	timeout time.Duration
}

var convertFlags convertFlagValues

func init() {
	rootCmd.AddCommand(convertCmd)
	addCommonFlags(convertCmd, &convertFlags.common)

	convertCmd.Flags().StringVar(&convertFlags.out, "out", cimflat.DefaultOutputDir,
		"Directory of the enriched tables")
	convertCmd.Flags().StringVar(&convertFlags.format, "format", cimflat.FormatCSV,
		"Format of the enriched tables: csv|xlsx|none")
	convertCmd.Flags().StringVar(&convertFlags.cleanOut, "clean-out", cimflat.DefaultCleanOutputDir,
		"Directory of the clean tables")
	convertCmd.Flags().StringVar(&convertFlags.cleanFormat, "clean-format", cimflat.FormatXLSX,
		"Format of the clean tables: csv|xlsx|none")
	convertCmd.Flags().StringVar(&convertFlags.metricsFile, "metrics-file", "",
		"Write run metrics in Prometheus text format to this file")

	convertCmd.Flags().StringVar(&convertFlags.postgresURL, "postgres-url", "",
		"Also load the enriched tables into PostgreSQL (URI or ADO.NET format).\n"+
			"Alternative: $CIMFLAT_POSTGRES_URL")
	convertCmd.Flags().StringVar(&convertFlags.postgresSchema, "postgres-schema", cimflat.DefaultSchema,
		"Schema receiving the tables")
	convertCmd.Flags().StringVar(&convertFlags.postgresAuth, "postgres-auth", "",
		"Authentication: standard|aws-iam|google-iam|azure-entra")
	convertCmd.Flags().StringVar(&convertFlags.googleInstance, "google-instance", "",
		"Cloud SQL instance (project:region:instance) for google-iam")
	convertCmd.Flags().StringVar(&convertFlags.awsRegion, "aws-region", "",
		"AWS region for aws-iam (default: $AWS_REGION)")

	convertCmd.Flags().DurationVar(&convertFlags.timeout, "timeout", 10*time.Minute,
		"Abort the conversion after this duration")
}

// buildConvertConfig layers the convert flags over the shared settings.
func buildConvertConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadSettings(cmd, &convertFlags.common)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, apply := range map[string]func(){
		"out":             func() { cfg.Output.Dir = convertFlags.out },
		"format":          func() { cfg.Output.Format = convertFlags.format },
		"clean-out":       func() { cfg.Output.CleanDir = convertFlags.cleanOut },
		"clean-format":    func() { cfg.Output.CleanFormat = convertFlags.cleanFormat },
		"metrics-file":    func() { cfg.Output.MetricsFile = convertFlags.metricsFile },
		"postgres-url":    func() { cfg.Postgres.URL = convertFlags.postgresURL },
		"postgres-schema": func() { cfg.Postgres.Schema = convertFlags.postgresSchema },
		"postgres-auth":   func() { cfg.Postgres.Auth = convertFlags.postgresAuth },
		"google-instance": func() { cfg.Postgres.GoogleInstance = convertFlags.googleInstance },
		"aws-region":      func() { cfg.Postgres.AWSRegion = convertFlags.awsRegion },
	} {
		if flags.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildOutputs creates the sinks selected by cfg.
func buildOutputs(cfg *config.Config, fs afero.Fs, logger cimflat.Logger) (services.Outputs, error) {
	var outputs services.Outputs

	if cfg.Output.Format != config.FormatNone {
		s, err := sink.NewFile(fs, cfg.Output.Dir, sink.SuffixEnriched, cfg.Output.Format)
		if err != nil {
			return outputs, err
		}
		outputs.Enriched = append(outputs.Enriched, s)
	}
	if cfg.Output.CleanFormat != config.FormatNone {
		s, err := sink.NewFile(fs, cfg.Output.CleanDir, sink.SuffixClean, cfg.Output.CleanFormat)
		if err != nil {
			return outputs, err
		}
		outputs.Clean = append(outputs.Clean, s)
	}

	if cfg.Postgres.URL != "" {
		connConfig, err := cfg.Postgres.Connection()
		if err != nil {
			return outputs, err
		}
		logger.Verbose("PostgreSQL sink: %s@%s:%d/%s schema %s (%s)",
			connConfig.Username, connConfig.Host, connConfig.Port, connConfig.Database,
			cfg.Postgres.Schema, connConfig.AuthMethod)
		connector, err := db.NewConnector(connConfig, logger)
		if err != nil {
			return outputs, err
		}
		outputs.Enriched = append(outputs.Enriched, sink.NewPostgres(connector, cfg.Postgres.Schema, logger))
	}
	return outputs, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	verbose := getVerboseFlag(cmd)

	cfg, err := buildConvertConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := converterOptions(cfg)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	outputs, err := buildOutputs(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	converter := services.NewConverter(filesystem.NewOSFileSystem(), opts, logger, m)

	interactive := tui.IsInteractive()
	// verbose lines would tear through the spinner
	progress := tui.NewProgress(os.Stderr, interactive && !verbose, logger)
	converter.OnStage = progress.Stage

	ctx, cancel := context.WithTimeout(context.Background(), convertFlags.timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := converter.Convert(ctx, input, outputs)
	progress.Done(err)

	if cfg.Output.MetricsFile != "" {
		if werr := m.WriteTextfile(cfg.Output.MetricsFile); werr != nil {
			logger.Error("failed to write metrics to %s: %v", cfg.Output.MetricsFile, werr)
		}
	}

	if result != nil {
		printConvertResult(cmd.OutOrStdout(), result, interactive)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	return nil
}

func printConvertResult(out io.Writer, result *services.Result, styled bool) {
	if result.Empty() {
		fmt.Fprintln(out, "No objects extracted")
		return
	}

	session := result.Session
	summary := tui.Summary{
		SessionID:  session.ID.String(),
		Document:   session.Document.String(),
		Digest:     session.Digest,
		Classes:    make(map[string]int),
		Records:    session.Classes.Total(),
		Passes:     session.Stats.Passes,
		Converged:  session.Stats.Converged,
		Unresolved: session.Stats.Unresolved,
	}
	for _, cc := range session.ClassCounts() {
		summary.Classes[cc.Class] = cc.Records
	}
	for _, r := range result.Reports {
		summary.Outputs = append(summary.Outputs, r.String())
	}
	fmt.Fprint(out, tui.RenderSummary(summary, styled))
}

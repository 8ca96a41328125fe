package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cimflat/internal/files/filesystem"
	"github.com/vvka-141/cimflat/internal/logging"
	"github.com/vvka-141/cimflat/internal/services"
)

var classesCmd = &cobra.Command{
	Use:   "classes <input>",
	Short: "List the object classes of a model",
	Long: `Classes extracts and resolves the model in <input> and lists every class
with its number of objects, in order of first appearance. Nothing is written.

Examples:
  cimflat classes model.zip
  cimflat classes model.zip --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClasses,
}

type classesFlagValues struct {
	common commonFlags
	json   bool
}

var classesFlags classesFlagValues

func init() {
	rootCmd.AddCommand(classesCmd)
	addCommonFlags(classesCmd, &classesFlags.common)
	classesCmd.Flags().BoolVar(&classesFlags.json, "json", false, "Output as JSON")
}

// loadSession runs the read-only part of the pipeline for classes and show.
func loadSession(cmd *cobra.Command, f *commonFlags, input string) (*services.Session, error) {
	cfg, err := loadSettings(cmd, f)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := converterOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	converter := services.NewConverter(filesystem.NewOSFileSystem(), opts, logger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return converter.Load(ctx, input)
}

// classesReport is the JSON document printed by classes --json.
type classesReport struct {
	Document   string                `json:"document"`
	SHA256     string                `json:"sha256"`
	// Normalized ignores XML comments and formatting whitespace.
	Normalized string                `json:"sha256_normalized"`
	Records    int                   `json:"records"`
	Classes    []services.ClassCount `json:"classes"`
}

func runClasses(cmd *cobra.Command, args []string) error {
	session, err := loadSession(cmd, &classesFlags.common, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if classesFlags.json {
		report := classesReport{
			Document:   session.Document.String(),
			SHA256:     session.Digest,
			Normalized: session.NormalizedDigest,
			Records:    session.Classes.Total(),
			Classes:    session.ClassCounts(),
		}
		jsonBytes, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	if session.Empty() {
		fmt.Fprintln(out, "No objects extracted")
		return nil
	}
	return writeClassTable(out, session.ClassCounts())
}

func writeClassTable(out io.Writer, counts []services.ClassCount) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tRECORDS")
	total := 0
	for _, cc := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", cc.Class, cc.Records)
		total += cc.Records
	}
	fmt.Fprintf(tw, "\t%d\n", total)
	return tw.Flush()
}

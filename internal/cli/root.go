package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cimflat",
	Short: "Flatten CIM RDF/XML models into per-class tables",
	Long: `cimflat reads a CIM/CGMES RDF/XML equipment model, turns every object
into a flat record, inlines the attributes of everything an object
references (transitively) and writes one table per class.

Input may be a .zip archive, a directory or a single .xml document.

Exit Codes:
  0  - Success (including documents without objects)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or flags
  11 - PostgreSQL connection failed
  12 - Object not found (show)
  13 - Writing output failed
  14 - Input not found, unreadable or not XML`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cimflat/internal/config"
	"github.com/vvka-141/cimflat/internal/testing/fixtures"
)

// prepareCommand restores every flag of cmd to its default, clears the
// CIMFLAT_* environment and captures stdout.
func prepareCommand(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	reset := func() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset()
	t.Cleanup(reset)

	for _, key := range []string{
		config.EnvPostgresURL, config.EnvPostgresAuth, config.EnvGoogleInstance,
		config.EnvMaxPasses, config.EnvWorkers, config.EnvParser,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CIMFLAT_NON_INTERACTIVE", "1")

	var out bytes.Buffer
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })
	return &out
}

func setFlags(t *testing.T, cmd *cobra.Command, values map[string]string) {
	t.Helper()
	for name, value := range values {
		require.NoError(t, cmd.Flags().Set(name, value), name)
	}
}

// writeModel stores the three-object scenario in a fresh directory.
func writeModel(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "model.xml")
	require.NoError(t, os.WriteFile(path, []byte(fixtures.Scenario), 0o644))
	return dir, path
}

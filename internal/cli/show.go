package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cimflat/internal/record"
)

var showCmd = &cobra.Command{
	Use:   "show <input> <id>",
	Short: "Print one resolved object",
	Long: `Show extracts and resolves the model in <input> and prints the object
declared with <id>, inlined fields included, in field order.

The identifier may be given as declared ("_br1"), as referenced ("#_br1")
or bare ("br1").

Examples:
  cimflat show model.zip _br1
  cimflat show model.zip "#_br1" --json`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

type showFlagValues struct {
	common commonFlags
	json   bool
}

var showFlags showFlagValues

func init() {
	rootCmd.AddCommand(showCmd)
	addCommonFlags(showCmd, &showFlags.common)
	showCmd.Flags().BoolVar(&showFlags.json, "json", false, "Output as JSON instead of YAML")
}

func runShow(cmd *cobra.Command, args []string) error {
	session, err := loadSession(cmd, &showFlags.common, args[0])
	if err != nil {
		return err
	}
	rec, err := session.Lookup(args[1])
	if err != nil {
		return err
	}

	if showFlags.json {
		return writeRecordJSON(cmd.OutOrStdout(), rec)
	}
	return writeRecordYAML(cmd.OutOrStdout(), rec)
}

// writeRecordYAML prints rec as a mapping in field order.
func writeRecordYAML(out io.Writer, rec *record.Record) error {
	node := &yaml.Node{Kind: yaml.MappingNode}
	rec.Range(func(name, value string) bool {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
		)
		return true
	})

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// writeRecordJSON prints rec as an object in field order. encoding/json
// sorts map keys, so the object is assembled by hand.
func writeRecordJSON(out io.Writer, rec *record.Record) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	first := true
	var err error
	rec.Range(func(name, value string) bool {
		var k, v []byte
		if k, err = json.Marshal(name); err != nil {
			return false
		}
		if v, err = json.Marshal(value); err != nil {
			return false
		}
		if !first {
			buf.WriteString(",")
		}
		first = false
		buf.WriteString("\n  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if !first {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	_, err = out.Write(buf.Bytes())
	return err
}

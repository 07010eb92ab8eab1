// RA reference export command.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpp-archive/autharch/internal/exporter"
)

var (
	exportLevel  string
	exportOutput string
)

var exportRARefsCmd = &cobra.Command{
	Use:   "export-ra-refs",
	Short: "Export a concordance of RA references to record UUIDs",
	Long: `Export-ra-refs writes a JSON document mapping every RA reference, with
ranges expanded, to the UUID of the record that holds it. References
claimed by records at the same level are reported under "duplicates";
where an item and a file claim the same reference the item wins.

Example:
  autharch export-ra-refs --level item --output refs.json`,
	Args: cobra.NoArgs,
	RunE: runExportRARefs,
}

func init() {
	exportRARefsCmd.Flags().StringVar(&exportLevel, "level", string(exporter.LevelBoth), "record levels to export: file, item or both")
	exportRARefsCmd.Flags().StringVar(&exportOutput, "output", "", "output file (default: stdout)")
}

func runExportRARefs(cmd *cobra.Command, args []string) error {
	level := exporter.Level(exportLevel)
	switch level {
	case exporter.LevelFile, exporter.LevelItem, exporter.LevelBoth:
	default:
		return fmt.Errorf("level must be one of file, item or both, got %q", exportLevel)
	}

	export, err := raExporter.Export(cmd.Context(), level)
	if err != nil {
		return fmt.Errorf("export RA references: %w", err)
	}

	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	payload = append(payload, '\n')

	if exportOutput == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(exportOutput, payload, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Wrote %d reference(s) to %s\n", len(export.Refs), exportOutput)
	return nil
}

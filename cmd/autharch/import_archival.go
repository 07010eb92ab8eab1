// Archival spreadsheet import command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importArchivalCmd = &cobra.Command{
	Use:   "import-archival PROJECT_SLUG FILE...",
	Short: "Import archival records from CSV or XLSX spreadsheets",
	Long: `Import-archival reads tabular archival descriptions and creates the
record hierarchy for the named project. Each row becomes a collection,
series, file or item according to its Level column, and parent links are
derived from the CALM reference.

The import is idempotent: rows whose ID already exists in the project are
skipped. A row whose ID exists in a different project aborts the import.

Example:
  autharch import-archival gpp catalogue.xlsx additions.csv`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImportArchival,
}

func runImportArchival(cmd *cobra.Command, args []string) error {
	if err := archivalImporter.Import(cmd.Context(), args[0], args[1:]); err != nil {
		return fmt.Errorf("import archival data: %w", err)
	}
	fmt.Printf("Imported %d file(s) into project %q\n", len(args)-1, args[0])
	return nil
}

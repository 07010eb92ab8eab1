// JSON entity import command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importEntitiesCmd = &cobra.Command{
	Use:   "import-entities-json PROJECT_SLUG FILE...",
	Short: "Import authority entities from JSON documents",
	Long: `Import-entities-json reads JSON entity documents, one entity per file,
and creates them in the named project. Relations between entities are
wired after all documents have been read.

Example:
  autharch import-entities-json gpp entities/*.json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImportEntities,
}

func runImportEntities(cmd *cobra.Command, args []string) error {
	if err := jsonEntityImporter.Import(cmd.Context(), args[0], args[1:]); err != nil {
		return fmt.Errorf("import JSON entities: %w", err)
	}
	fmt.Printf("Imported %d document(s) into project %q\n", len(args)-1, args[0])
	return nil
}

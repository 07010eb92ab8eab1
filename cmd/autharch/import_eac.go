// EAC-CPF XML import command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importEACCmd = &cobra.Command{
	Use:   "import-eac PROJECT_SLUG FILE...",
	Short: "Import authority entities from EAC-CPF XML documents",
	Long: `Import-eac reads EAC-CPF XML files and creates one authority entity
per document in the named project. Relations between entities are wired
after all documents have been read, so files may reference each other in
any order.

A document that is not well-formed XML aborts the import.

Example:
  autharch import-eac gpp entities/*.xml`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImportEAC,
}

func runImportEAC(cmd *cobra.Command, args []string) error {
	if err := eacImporter.Import(cmd.Context(), args[0], args[1:]); err != nil {
		return fmt.Errorf("import EAC documents: %w", err)
	}
	fmt.Printf("Imported %d document(s) into project %q\n", len(args)-1, args[0])
	return nil
}

// Entity merge command.
package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var mergeActor string

var mergeCmd = &cobra.Command{
	Use:   "merge SURVIVOR_ID LOSER_ID",
	Short: "Merge a duplicate entity into another",
	Long: `Merge consolidates the loser entity into the survivor. The survivor
absorbs the loser's identities, relations and record links; the loser is
marked deleted but kept for audit. Both entities must be of the same type
and belong to the same project.

Example:
  autharch merge 6b1f... 9c2a... --actor "A. Archivist"`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeActor, "actor", "cli", "name recorded on the merge revision")
}

func runMerge(cmd *cobra.Command, args []string) error {
	survivorID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid survivor id %q: %w", args[0], err)
	}
	loserID, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid loser id %q: %w", args[1], err)
	}

	survivor, err := mergeService.Merge(cmd.Context(), survivorID, loserID, mergeActor)
	if err != nil {
		return err
	}
	fmt.Printf("Merged %s into %s\n", loserID, survivor.ID)
	return nil
}

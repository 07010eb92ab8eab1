// Create project command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createProjectCmd = &cobra.Command{
	Use:   "create-project SLUG TITLE",
	Short: "Create a cataloguing project",
	Long: `Create-project registers a new cataloguing project. Every record and
entity imported afterwards is scoped to a project by its slug.

Example:
  autharch create-project gpp "Georgian Papers Programme"`,
	Args: cobra.ExactArgs(2),
	RunE: runCreateProject,
}

func runCreateProject(cmd *cobra.Command, args []string) error {
	project, err := projectService.Create(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Created project %q (%s)\n", project.Slug, project.ID)
	return nil
}

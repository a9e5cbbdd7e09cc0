package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/redengine/internal/registry"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List script templates",
	Long:  `Shows the built-in script templates that 'redengine new' can scaffold.`,
	Run:   runTemplates,
}

func runTemplates(_ *cobra.Command, _ []string) {
	templates := registry.List()

	if len(templates) == 0 {
		fmt.Println("No templates available.")
		return
	}

	fmt.Println("Available templates:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	maxTitleLen := 5
	for _, t := range templates {
		maxIDLen = max(maxIDLen, len(t.ID))
		maxTitleLen = max(maxTitleLen, len(t.Title))
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Description")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "-----------")

	for _, t := range templates {
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, t.ID, maxTitleLen, t.Title, t.Description)
	}

	fmt.Println()
	fmt.Println("Run 'redengine new <id> [dir]' to start a project from a template.")
}

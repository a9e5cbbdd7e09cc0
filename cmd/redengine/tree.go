package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/redengine/internal/project"
)

var flagTreeHidden bool

// treeWidth is wide enough that printed labels are never cut.
const treeWidth = 1 << 10

var treeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "Print the project tree",
	Long: `Print the project tree as the explorer pane shows it, fully expanded,
with each file's detected language.

Examples:
  redengine tree
  redengine tree ./demo --hidden`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTree,
}

func init() {
	treeCmd.Flags().BoolVar(&flagTreeHidden, "hidden", false, "Include hidden files and folders")
}

func runTree(_ *cobra.Command, args []string) {
	root, err := project.Load(projectDir(args), project.LoadOptions{ShowHidden: flagTreeHidden})
	if err != nil {
		fatalf("%v", err)
	}

	root.Walk(func(it *project.Item, depth int) bool {
		line := project.Label(root, it, depth, true, treeWidth)
		if it.Language != "" {
			line += "  (" + it.Language + ")"
		}
		fmt.Println(line)
		return true
	})

	fmt.Println()
	fmt.Printf("%d scripts\n", len(root.Scripts()))
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/redengine/internal/project"
	"github.com/vovakirdan/redengine/internal/registry"
)

var flagForce bool

var newCmd = &cobra.Command{
	Use:   "new <template> [dir]",
	Short: "Scaffold a project from a template",
	Long: `Write a template script into a project directory (default: current
directory, created if missing) and point the project's redengine.toml at it.

Examples:
  redengine new bounce ./demo
  redengine new static --force`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runNew,
}

func init() {
	newCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing script")
}

func runNew(_ *cobra.Command, args []string) {
	id := args[0]

	// Check if template exists
	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown template %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'redengine templates' to see available templates.")
		os.Exit(1)
	}

	dir := projectDir(args[1:])
	path, err := scaffold(id, dir, flagForce)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Printf("Run 'redengine edit %s' to open it.\n", dir)
}

// scaffold writes template id into dir and makes it the manifest entry.
func scaffold(id, dir string, force bool) (string, error) {
	tpl, err := registry.Get(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, tpl.FileName())
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(tpl.Source); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	m, err := project.LoadManifest(dir)
	if err != nil {
		return "", err
	}
	m.Entry = tpl.FileName()
	if err := project.SaveManifest(dir, m); err != nil {
		return "", err
	}
	return path, nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"paper-review/internal/extract"
	"paper-review/internal/terminal"
)

// inspectCmd prints what the upload page shows after selecting a file
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show file info for a paper without uploading it",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	info, err := extract.Inspect(cmdContext(cmd), data, filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), terminal.New(cmd.OutOrStdout(), width).FileInfo(info))
	return nil
}

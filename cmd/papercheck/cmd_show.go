package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"paper-review/internal/reports"
	"paper-review/internal/terminal"
)

// showCmd renders a saved response offline
var showCmd = &cobra.Command{
	Use:   "show <report>",
	Short: "Render a saved analysis response",
	Long: `Render a response body saved from the analysis service, or the output of
"papercheck upload --json". Files ending in .md are shown as markdown reports.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	res := reports.Decode(data, contentTypeFor(path))
	return printResult(cmd, terminal.New(cmd.OutOrStdout(), width), res)
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return "application/json"
	}
}

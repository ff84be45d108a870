package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"paper-review/internal/reports"
	"paper-review/internal/terminal"
	"paper-review/internal/uploads"
)

var uploadJSON bool

// uploadCmd sends a paper to the analysis service
var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a paper and print its error report",
	Long: `Upload a paper as multipart/form-data to the analysis service and print
the report. Progress goes to stderr. The exit code is 1 when the upload fails
or the response cannot be shown as a report.

Use --json to print the normalized report instead, which "papercheck show"
can render later.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "Print the normalized report as JSON")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	r := terminal.New(out, width)
	progress := terminal.New(errOut, width)

	file := uploads.File{Name: filepath.Base(path), Data: data}
	ctrl := uploads.NewController(uploads.NewClient(endpoint, nil), timeout)
	ctrl.OnProgress = func(percent int) {
		fmt.Fprint(errOut, "\r"+progress.Progress(file.Name, percent))
	}

	if err := ctrl.Select(cmdContext(cmd), file); err != nil {
		return err
	}
	if info := ctrl.State().FileInfo; info != nil && verbose {
		fmt.Fprint(errOut, progress.FileInfo(*info))
	}

	res, err := ctrl.Upload(cmdContext(cmd))
	fmt.Fprintln(errOut)
	if err != nil {
		fmt.Fprint(errOut, r.Error(uploads.UserMessage(err)))
		return errReported
	}
	return printResult(cmd, r, res)
}

func printResult(cmd *cobra.Command, r *terminal.Renderer, res reports.Result) error {
	out := cmd.OutOrStdout()
	if uploadJSON && res.Report != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}

	text, err := r.Render(reports.BuildView(res, tab))
	if err != nil {
		return err
	}
	if res.IsFailure() {
		fmt.Fprint(cmd.ErrOrStderr(), text)
		return errReported
	}
	fmt.Fprint(out, text)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"paper-review/internal/shared/config"
	"paper-review/internal/shared/telemetry"
)

var (
	endpoint string
	timeout  time.Duration
	verbose  bool
	tab      string
	width    int

	logger *zap.Logger
)

// errReported marks failures already printed to the user.
var errReported = errors.New("reported")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "papercheck",
	Short: "Check an academic paper for errors",
	Long: `papercheck uploads a paper to the analysis service and prints the
error report: a summary of counts per category and one tab per category
with findings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if !cmd.Flags().Changed("endpoint") {
			endpoint = cfg.AnalysisEndpoint
		}
		if !cmd.Flags().Changed("timeout") {
			timeout = cfg.UploadTimeout
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		telemetry.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", config.DefaultEndpoint, "Analysis service upload URL (or set ANALYSIS_ENDPOINT)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Upload timeout, 0 waits indefinitely (or set UPLOAD_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&tab, "tab", "t", "summary", "Report tab to print: summary or a category key")
	rootCmd.PersistentFlags().IntVar(&width, "width", 100, "Output width")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

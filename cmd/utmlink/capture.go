package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/utmlink/utmlink/internal/attribution"
	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/log"
)

// NewCaptureCmd creates the capture command.
func NewCaptureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <page-url>",
		Short: "Capture tracked parameters from a landing URL",
		Long: `Capture scans a landing URL's query string for the configured tracked
parameters and stores the found set, overwriting any previously stored one.
A URL carrying none of the tracked parameters stores nothing and leaves a
previously captured set intact.

Examples:
  # Capture utm parameters from a landing URL
  utmlink capture "https://site.example/?utm_source=linkedin&utm_medium=social"`,
		Args: cobra.ExactArgs(1),
		RunE: runCaptureCmd,
	}
}

// runCaptureCmd executes the capture command.
func runCaptureCmd(cmd *cobra.Command, args []string) error {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	if cfg.StorageMode == config.ModeSession {
		logger.Warn("session mode: captured parameters do not survive this process")
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	captured, err := attribution.Capture(cmd.Context(), s, cfg.StorageKey, args[0], cfg.Parameters, time.Now(), logger)
	if err != nil {
		return err
	}

	if captured == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no tracked parameters found; stored set unchanged")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "captured %d parameter(s):\n", len(captured))
	for _, name := range cfg.Parameters {
		if value, ok := captured[name]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", name, value)
		}
	}

	return nil
}

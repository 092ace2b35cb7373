package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/utmlink/utmlink/internal/attribution"
	"github.com/utmlink/utmlink/internal/log"
	"github.com/utmlink/utmlink/internal/store"
)

// NewParamsCmd creates the params command.
func NewParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Show the currently stored parameters",
		Long: `Params prints the stored parameter set, applying the lazy retention
check: a durable-mode record older than the configured retention window is
deleted and reported as absent.

Examples:
  # Show stored parameters
  utmlink params

  # Show the raw stored record as JSON
  utmlink params --json`,
		Args: cobra.NoArgs,
		RunE: runParamsCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the stored record as JSON")

	return cmd
}

// runParamsCmd executes the params command.
func runParamsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	params := attribution.ReadParams(cmd.Context(), s, cfg, time.Now(), logger)
	if params == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no parameters stored")
		return nil
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		// Re-read the raw record so the timestamp is included.
		raw, ok, err := s.Get(cmd.Context(), cfg.StorageKey)
		if err != nil {
			return fmt.Errorf("failed to read stored record: %w", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no parameters stored")
			return nil
		}
		rec, err := store.DecodeRecord(raw)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	printed := make(map[string]bool, len(params))
	for _, name := range cfg.Parameters {
		if value, ok := params[name]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, value)
			printed[name] = true
		}
	}
	// Names stored under a previous configuration still show up.
	extra := make([]string, 0)
	for name := range params {
		if !printed[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, params[name])
	}

	return nil
}

// NewClearCmd creates the clear command.
func NewClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored parameters",
		Long:  `Clear removes the stored parameter record from the configured store.`,
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
}

// runClearCmd executes the clear command.
func runClearCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := attribution.ClearParams(cmd.Context(), s, cfg.StorageKey); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "stored parameters cleared")
	return nil
}

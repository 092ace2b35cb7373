package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/store"
)

// NewRootCmd creates the root command for utmlink.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utmlink",
		Short: "Forward marketing attribution parameters onto form links",
		Long: `utmlink captures marketing attribution parameters (utm_source, utm_medium,
utm_campaign, utm_term, utm_content) from a landing URL, stores them, and
rewrites anchors in HTML documents that point at configured form services
(typeform.com by default) so the original acquisition channel survives the
hop from a marketing page to a form submission.

Parameters already present on a destination link are never overwritten:
the link's own values always win.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable diagnostic trace logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .utmlink in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewRewriteCmd())
	cmd.AddCommand(NewCaptureCmd())
	cmd.AddCommand(NewParamsCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// baseConfig builds a Config from defaults, the config file, environment
// overrides, and the persistent flags. Subcommands layer their own flags
// on top of the result.
func baseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		configPath, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return nil, err
		}
	}
	cfg.ConfigFilePath = configPath

	// If the user explicitly specified a config file, error if not
	// found. Otherwise silently continue with defaults.
	found := config.FindConfigFile(configPath)
	if found != "" {
		cf, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cf.Apply(cfg)
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}

	return cfg, nil
}

// openStore opens the store matching the configured storage mode.
// Session mode gets an in-memory store scoped to this process.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StorageMode == config.ModeSession {
		return store.NewMemory(), nil
	}
	return store.OpenSQLite(cfg.DataDir, store.DefaultOptions())
}

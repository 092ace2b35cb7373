package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/utmlink/utmlink/internal/attribution"
	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/dom"
	"github.com/utmlink/utmlink/internal/lifecycle"
	"github.com/utmlink/utmlink/internal/log"
	"github.com/utmlink/utmlink/internal/report"
	"github.com/utmlink/utmlink/internal/store"
)

// NewRewriteCmd creates the rewrite command.
func NewRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [files...]",
		Short: "Rewrite form links in HTML documents with stored parameters",
		Long: `Rewrite parses each HTML document, finds anchors pointing at the
configured form service domains, and merges the stored attribution
parameters into their destination URLs. Parameters already present on a
link are kept as-is.

When --page-url is given, parameters are captured from it first, so the
rewrite always sees the freshest values.

Examples:
  # Capture from a landing URL and rewrite a single page to stdout
  utmlink rewrite --page-url "https://example.com/?utm_source=news" index.html

  # Rewrite from stdin to stdout using previously stored parameters
  cat page.html | utmlink rewrite -

  # Rewrite a whole directory's pages into out/
  utmlink rewrite -o out/ pages/*.html

  # Rewrite files in place and write a Markdown summary
  utmlink rewrite --in-place --report summary.md pages/*.html`,
		Args: cobra.ArbitraryArgs,
		RunE: runRewriteCmd,
	}

	cmd.Flags().StringP("page-url", "u", "",
		"Landing page URL to capture attribution parameters from before rewriting")
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory rewritten documents are written to (created if needed)")
	cmd.Flags().Bool("in-place", false,
		"Rewrite each file in place (mutually exclusive with --output-dir)")
	cmd.Flags().StringP("report", "r", "",
		"Write a Markdown rewrite summary to the specified file path")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of files processed concurrently")
	cmd.Flags().String("charset", "",
		"Character set of the input documents (default: detect)")

	return cmd
}

// runRewriteCmd executes the rewrite command.
func runRewriteCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRewriteConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runRewrite(ctx, cmd, cfg)
}

// buildRewriteConfig layers the rewrite command's flags on the base
// configuration.
func buildRewriteConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return nil, err
	}

	cfg.PageURL, err = cmd.Flags().GetString("page-url")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.InPlace, err = cmd.Flags().GetBool("in-place")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Charset, err = cmd.Flags().GetString("charset")
	if err != nil {
		return nil, err
	}

	cfg.Targets = args

	return cfg, nil
}

// runRewrite executes the rewrite over all targets.
func runRewrite(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more HTML files, or - for stdin)")
	}
	if err := validateTargets(cfg); err != nil {
		return err
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	// Capture once up front. The per-file controllers then only scan,
	// so every file observes the same parameter set.
	if cfg.PageURL != "" {
		if _, err := attribution.Capture(ctx, s, cfg.StorageKey, cfg.PageURL, cfg.Parameters, time.Now(), logger); err != nil {
			return fmt.Errorf("failed to capture parameters from %s: %w", cfg.PageURL, err)
		}
	}

	results := make([]report.FileResult, len(cfg.Targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.BatchSize)

	// Stdout is only ever the destination for a single target, so the
	// mutex guards it without serializing file processing.
	var stdoutMu sync.Mutex

	for i, target := range cfg.Targets {
		g.Go(func() error {
			result := rewriteFile(gctx, cmd, cfg, s, logger, target, &stdoutMu)
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	summary := &report.Summary{
		RunID:       runID,
		PageURL:     cfg.PageURL,
		Captured:    attribution.ReadParams(ctx, s, cfg, time.Now(), logger),
		GeneratedAt: time.Now(),
		Files:       results,
	}

	if err := report.NewTextWriter(cmd.ErrOrStderr()).Write(summary); err != nil {
		logger.Error("failed to write summary", "error", err)
	}

	if cfg.ReportFile != "" {
		if err := writeMarkdownReport(cfg.ReportFile, summary); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if summary.HasErrors() {
		return errors.New("one or more files failed to process")
	}
	return nil
}

// validateTargets checks the target list against the output flags.
func validateTargets(cfg *config.Config) error {
	stdin := false
	for _, target := range cfg.Targets {
		if target == "-" {
			stdin = true
		}
	}

	if stdin && len(cfg.Targets) > 1 {
		return errors.New("stdin (-) cannot be combined with file targets")
	}
	if stdin && cfg.InPlace {
		return errors.New("--in-place cannot be used with stdin")
	}
	if len(cfg.Targets) > 1 && cfg.OutputDir == "" && !cfg.InPlace {
		return errors.New("multiple targets require --output-dir or --in-place")
	}
	return nil
}

// rewriteFile processes a single target and returns its result. Errors
// are recorded per file rather than aborting the whole run.
func rewriteFile(ctx context.Context, cmd *cobra.Command, cfg *config.Config, s store.Store, logger *slog.Logger, target string, stdoutMu *sync.Mutex) report.FileResult {
	result := report.FileResult{Source: target}

	doc, err := readDocument(cmd, cfg, target)
	if err != nil {
		logger.Error("failed to read document", "source", target, "error", err)
		result.Err = err.Error()
		return result
	}

	result.Anchors = len(dom.Anchors(doc.Root()))

	// Capture already ran at the command level; clear the landing URL
	// so the controller goes straight to scanning.
	fileCfg := *cfg
	fileCfg.PageURL = ""

	ctrl := lifecycle.New(&fileCfg, s, doc, logger.With("source", target),
		lifecycle.WithRecorder(func(before, after string) {
			result.Rewrites = append(result.Rewrites, report.Rewrite{Before: before, After: after})
		}))

	if _, err := ctrl.Start(ctx, nil); err != nil {
		logger.Error("failed to rewrite document", "source", target, "error", err)
		result.Err = err.Error()
		return result
	}

	if err := writeDocument(cmd, cfg, target, doc, stdoutMu); err != nil {
		logger.Error("failed to write document", "source", target, "error", err)
		result.Err = err.Error()
	}
	return result
}

// readDocument parses a target into a DOM tree. "-" reads stdin.
func readDocument(cmd *cobra.Command, cfg *config.Config, target string) (*dom.Document, error) {
	var r io.Reader
	if target == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(target) //nolint:gosec // path comes from the user's own arguments
		if err != nil {
			return nil, err
		}
		defer f.Close() //nolint:errcheck // read-only
		r = f
	}
	return dom.ParseWithCharset(r, cfg.Charset)
}

// writeDocument renders the rewritten tree to the configured output.
func writeDocument(cmd *cobra.Command, cfg *config.Config, target string, doc *dom.Document, stdoutMu *sync.Mutex) error {
	switch {
	case cfg.InPlace:
		return writeDocumentFile(target, doc)
	case cfg.OutputDir != "":
		if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
			return err
		}
		name := filepath.Base(target)
		if target == "-" {
			name = "stdin.html"
		}
		return writeDocumentFile(filepath.Join(cfg.OutputDir, name), doc)
	default:
		stdoutMu.Lock()
		defer stdoutMu.Unlock()
		return doc.Render(cmd.OutOrStdout())
	}
}

// writeDocumentFile renders the tree to path atomically enough for a
// CLI: write to a temp file in the same directory, then rename.
func writeDocumentFile(path string, doc *dom.Document) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}

	if err := doc.Render(tmp); err != nil {
		_ = tmp.Close()           //nolint:errcheck // render error takes precedence
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best effort cleanup
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best effort cleanup
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// writeMarkdownReport writes the Markdown summary to path, creating
// parent directories if needed.
func writeMarkdownReport(path string, summary *report.Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}

	f, err := os.Create(path) //nolint:gosec // path comes from the user's own flag
	if err != nil {
		return err
	}

	if err := report.NewMarkdownWriter(f).Write(summary); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return f.Close()
}

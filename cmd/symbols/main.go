package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/symbols"
)

type cliOptions struct {
	configPath string
	tables     []string
	cacheDir   string
	verbose    bool

	format     string
	outputFile string
	outputDir  string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "symbols",
		Short: "Generate Go enumerations from database tables",
		Long: `Symbols turns the rows of database tables into Go enumerations with per-column
accessors and lookup functions. Rows are read once from DATABASE_URL and cached
in <table>.cache; later runs work offline.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", symbols.DefaultConfigFile, "Config file")
	flags.StringArrayVarP(&opts.tables, "table", "t", nil, "Table to process (repeatable, default: all tables in the config)")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "Directory of the row cache files (default: working directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the Go file of every configured table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts)
		},
	}

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Show the enumerations that would be generated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	describeCmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or markdown")
	describeCmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	describeCmd.Flags().StringVarP(&opts.outputDir, "output-dir", "d", "", "Output directory for one file per table")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts)
		},
	}

	rootCmd.AddCommand(generateCmd, describeCmd, watchCmd)
	return rootCmd
}

// newLogger builds the development logger, at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func (o *cliOptions) generatorOptions(log *zap.Logger) *symbols.Options {
	return &symbols.Options{
		Tables:   o.tables,
		CacheDir: o.cacheDir,
		Logger:   log,
	}
}

func runGenerate(ctx context.Context, opts *cliOptions) error {
	log, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	return generate(ctx, opts, log)
}

func generate(ctx context.Context, opts *cliOptions, log *zap.Logger) error {
	cfg, err := symbols.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	_, err = symbols.Generate(ctx, cfg, opts.generatorOptions(log))
	return err
}

func runDescribe(ctx context.Context, opts *cliOptions, stdout io.Writer) error {
	log, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if opts.outputDir != "" && opts.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	cfg, err := symbols.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	writer := stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warn("failed to close output file", zap.Error(err))
			}
		}()
		writer = f
	}

	return symbols.Describe(ctx, cfg, opts.generatorOptions(log), &symbols.OutputOptions{
		Writer:    writer,
		OutputDir: opts.outputDir,
		Format:    opts.format,
	})
}

// runWatch generates once, then again on every change of the config file,
// until interrupted. Failed runs are logged and do not stop the watch.
func runWatch(ctx context.Context, opts *cliOptions) error {
	log, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	path, err := filepath.Abs(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Warn("failed to close watcher", zap.Error(err))
		}
	}()

	// Editors often replace the file instead of writing it, so the
	// directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	if err := generate(ctx, opts, log); err != nil {
		log.Error("generation failed", zap.Error(err))
	}
	log.Info("watching config", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigChange(event, path) {
				continue
			}
			log.Info("config changed", zap.String("path", path), zap.String("op", event.Op.String()))
			if err := generate(ctx, opts, log); err != nil {
				log.Error("generation failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// isConfigChange reports whether event rewrote the file at path.
func isConfigChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

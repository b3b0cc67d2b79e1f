package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doccrawl/internal/app"
	"github.com/ternarybob/doccrawl/internal/common"
	"github.com/ternarybob/doccrawl/internal/services/browser"
	"github.com/ternarybob/doccrawl/internal/services/transform"
)

// rootOptions holds the command line overrides
type rootOptions struct {
	configFiles []string
	linksFile   string
	outputDir   string
	logLevel    string
}

// NewRootCmd creates the doccrawl root command; running it performs one crawl
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "doccrawl",
		Short: "Crawl a list of documentation pages into one markdown file",
		Long: `DocCrawl reads URLs from a links file (one per line), renders each page
in a single headless browser session and writes the successful pages to
crawled_docs_<timestamp>.md.

Configuration is layered: defaults, config files, DOCCRAWL_* environment
variables, then command line flags.`,
		Version:       common.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringArrayVarP(&opts.configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	cmd.Flags().StringVar(&opts.linksFile, "links", "", "Links file (overrides config)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")

	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			common.WriteCrashFile(r, string(debug.Stack()))
			stop()
			os.Exit(2)
		}
	}()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// runCrawl loads configuration, wires the application and performs one crawl
func runCrawl(ctx context.Context, opts *rootOptions) error {
	configFiles := opts.configFiles
	if len(configFiles) == 0 {
		if path := common.DiscoverConfigFile(); path != "" {
			configFiles = append(configFiles, path)
		}
	}

	// Startup order: config files -> env -> flags, validate, logger, banner
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, opts.linksFile, opts.outputDir, opts.logLevel)

	if err := config.Validate(); err != nil {
		return err
	}

	common.SetCrashLogDir(config.Logging.File)
	logger := common.InitLogger(config)
	common.PrintBanner(config, logger)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Strs("log_output", config.Logging.Output).
		Msg("Resolved configuration")

	application, err := newApp(config, logger)
	if err != nil {
		return err
	}

	result := application.Run(ctx)

	logger.Debug().
		Int("urls", result.URLs).
		Int("crawled", result.Report.Len()).
		Int("failed", result.Report.Failed).
		Bool("saved", result.Saved).
		Msg("Run finished")

	return nil
}

func newApp(config *common.Config, logger arbor.ILogger) (*app.App, error) {
	transformService := transform.NewService(logger)
	application, err := app.New(config, logger, browser.NewEngineFactory(transformService, logger), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

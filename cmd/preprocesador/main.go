// Package main is the entry point for the preprocesador binary. Without a
// subcommand it starts the interactive menu; "run" executes a YAML recipe.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/exporter"
	"github.com/sofiagarciap/preprocesador-datos/internal/infrastructure"
	"github.com/sofiagarciap/preprocesador-datos/internal/menu"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/recipe"
	"github.com/sofiagarciap/preprocesador-datos/internal/visualize"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command with its subcommands
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Interactive tabular data preprocessing",
		Long: `Load a CSV, Excel or SQLite dataset, then select columns, handle missing
values, encode categoricals, scale numeric features and treat outliers, one
stage at a time. Visualize and export the result once every stage is done.

Example:
  preprocesador --config preprocesador.yaml
  preprocesador run recipe.yaml`,
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("base-dir", "b", "", "Directory output paths are resolved against (default: working directory)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level override (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run <recipe.yaml>",
		Short: "Run every stage from a recipe without prompting",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecipe,
	}
	runCmd.Flags().Bool("json", false, "Print the run result as JSON")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}

	rootCmd.AddCommand(runCmd, versionCmd)
	return rootCmd
}

// app holds everything one invocation wires together
type app struct {
	cfg       *config.Config
	paths     *config.Paths
	providers *infrastructure.OTelProviders
	manager   *pipeline.Manager
	exporter  *exporter.Exporter
	renderer  *visualize.Renderer
	metrics   *infrastructure.PipelineMetrics
}

// setup loads configuration and builds the pipeline and its collaborators
func setup(cmd *cobra.Command) (*app, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	baseDir, err := cmd.Flags().GetString("base-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get base-dir flag: %w", err)
	}
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := cfg.ResolvePaths(baseDir)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create output directories: %w", err)
	}
	paths.LogPathResolution()

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, err
	}
	tracer, err := pipeline.NewStageTracer(providers)
	if err != nil {
		return nil, err
	}

	pcfg := pipeline.ConfigFrom(cfg.Pipeline)
	if err := pcfg.Validate(); err != nil {
		return nil, err
	}
	manager := pipeline.NewManager(nil, pcfg)
	manager.SetTracer(tracer)

	return &app{
		cfg:       cfg,
		paths:     paths,
		providers: providers,
		manager:   manager,
		exporter:  exporter.New(paths, cfg.Export),
		renderer:  visualize.NewRenderer(cfg.Visualize, paths).WithMetrics(tracer.Metrics()),
		metrics:   tracer.Metrics(),
	}, nil
}

// close flushes telemetry and the log file
func (a *app) close() {
	if err := a.providers.WriteMetrics(); err != nil {
		slog.Error("failed to write metrics", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.providers.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down telemetry", "error", err)
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runInteractive drives the menu on the command's input and output
func runInteractive(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	m := menu.New(cmd.InOrStdin(), cmd.OutOrStdout(), menu.Deps{
		Manager:  a.manager,
		Config:   a.cfg,
		Exporter: a.exporter,
		Renderer: a.renderer,
		Metrics:  a.metrics,
	})
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runRecipe executes the recipe named by the only argument
func runRecipe(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	rec, err := recipe.Load(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	var out io.Writer = cmd.OutOrStdout()
	if asJSON {
		out = io.Discard
	}
	runner := &recipe.Runner{
		Manager:  a.manager,
		Config:   a.cfg,
		Exporter: a.exporter,
		Renderer: a.renderer,
		Metrics:  a.metrics,
		Out:      out,
	}
	res, err := runner.Run(ctx, rec)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}

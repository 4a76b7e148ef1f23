// Package main provides the entry point for the scenario ranking CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/scenario-ranker/internal/config"
	"github.com/yourusername/scenario-ranker/internal/database"
	"github.com/yourusername/scenario-ranker/internal/logger"
	"github.com/yourusername/scenario-ranker/internal/metrics"
	"github.com/yourusername/scenario-ranker/internal/pipeline"
	"github.com/yourusername/scenario-ranker/internal/repository"
	"github.com/yourusername/scenario-ranker/internal/storage"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	log        *logrus.Logger
	cfg        *config.Config
)

var runFlags struct {
	root     string
	out      string
	symbol   string
	scenario string
	fetch    bool
	upload   bool
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	runCmd.Flags().StringVar(&runFlags.root, "root", "", "Root directory of the scenario tree")
	runCmd.Flags().StringVar(&runFlags.out, "out", "", "Output directory (defaults to output.dir)")
	runCmd.Flags().StringVar(&runFlags.symbol, "symbol", "", "Symbol to fetch and record")
	runCmd.Flags().StringVar(&runFlags.scenario, "scenario", "", "Scenario archive to fetch (default: all)")
	runCmd.Flags().BoolVar(&runFlags.fetch, "fetch", false, "Download scenario archives into --root before ranking")
	runCmd.Flags().BoolVar(&runFlags.upload, "upload", false, "Upload the output directory to remote storage")
	_ = runCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "ranker",
	Short: "Rank backtested trading scenarios",
	Long:  `Aggregates backtest summaries across scenarios, scores and filters strategies, and publishes ranked summary and setup tables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ranking pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRanking(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ranker %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if log != nil {
			log.WithError(err).Error("Ranking failed")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log = logger.NewLogger(cfg.App.LogLevel)
	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("Configuration loaded")
	return nil
}

func runRanking(ctx context.Context) error {
	chain, err := cfg.ExtractionChain()
	if err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	deps := pipeline.Dependencies{Logger: log}
	if cfg.Output.CopyArtifacts {
		deps.Copier = storage.LocalCopier{}
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Region:   cfg.Storage.Region,
			Bucket:   cfg.Storage.Bucket,
			CacheTTL: cfg.CacheTTL(),
		}, log)
		if err != nil {
			return err
		}
		deps.Archives = store
		deps.Uploader = store
	}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		deps.Recorder = repository.NewRunRecorder(db)
	}

	out := runFlags.out
	if out == "" {
		out = cfg.Output.Dir
	}

	p := pipeline.New(pipeline.Options{
		Filter:          cfg.FilterConfig(),
		Chain:           chain,
		Marker:          cfg.Ranking.MarkerSegment,
		SummaryGlob:     cfg.Ranking.SummaryGlob,
		SetupGlob:       cfg.Ranking.SetupGlob,
		Delimiter:       cfg.Ranking.SymbolDelimiter,
		ReadWorkers:     cfg.Ranking.ReadWorkers,
		CopyArtifacts:   cfg.Output.CopyArtifacts,
		UploadPrefix:    cfg.Storage.UploadPrefix,
		MetricsTextfile: cfg.Metrics.Enabled && cfg.Metrics.PushTextfile,
	}, deps)

	res, err := p.Run(ctx, pipeline.Request{
		Root:     runFlags.root,
		OutDir:   out,
		Symbol:   runFlags.symbol,
		Fetch:    runFlags.fetch,
		Scenario: runFlags.scenario,
		Upload:   runFlags.upload,
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"run_id":   res.Run.ID,
		"ranked":   res.Ranked.Len(),
		"setups":   res.Joined.Table.Len(),
		"warnings": len(res.Warnings),
		"out":      res.Published.Dir,
	}).Info("Ranking complete")
	return nil
}

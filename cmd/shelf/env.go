package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/papershelf/papershelf/internal/config"
	"github.com/papershelf/papershelf/internal/indexer"
	"github.com/papershelf/papershelf/internal/registry"
	"github.com/papershelf/papershelf/internal/storage"
	"github.com/papershelf/papershelf/internal/thumb"
)

// verbose enables debug logging.
var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// mustLoadConfig loads the global config or exits.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.EnsureDataDirs(); err != nil {
		exitWithError(ExitConfigError, "preparing data dir: %v", err)
	}
	return cfg
}

// mustOpenDB opens the catalog database or exits.
func mustOpenDB(cfg *config.GlobalConfig) *storage.DB {
	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	return db
}

// newLogger builds the pipeline logger. Warnings and above by default;
// everything with --verbose.
func newLogger() *zap.SugaredLogger {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}

// newIndexer wires the pipeline for CLI commands.
func newIndexer(cfg *config.GlobalConfig, db *storage.DB, offline, noThumb bool) *indexer.Indexer {
	var fetcher indexer.Fetcher
	if !offline {
		fetcher = registry.NewClient(cfg.RegistryConfig())
	}

	opts := []indexer.Option{
		indexer.WithLogger(newLogger()),
		indexer.WithPolicy(cfg.MergePolicy()),
	}
	if !noThumb {
		opts = append(opts, indexer.WithThumbnailer(thumb.NewGenerator(cfg.ThumbsPath())))
	}

	return indexer.New(db, fetcher, opts...)
}

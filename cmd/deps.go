package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/advisory"
	"github.com/abhisek/aquaassist/internal/config"
	"github.com/abhisek/aquaassist/internal/engine"
	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/logging"
	"github.com/abhisek/aquaassist/internal/notify"
	"github.com/abhisek/aquaassist/internal/predictor"
	"github.com/abhisek/aquaassist/internal/speech"
)

// deps is everything a command needs, built once from configuration.
type deps struct {
	cfg         *config.Config
	logger      *zap.Logger
	catalog     *advisory.Catalog
	store       history.Store
	service     *engine.Service
	caps        speech.Capabilities
	speech      *speech.OpenAI // nil when speech is unavailable
	historyPath string
}

// loadConfig reads configuration and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("history"); p != "" {
		cfg.History.Path = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*advisory.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return advisory.Default(), nil
	}
	return advisory.LoadFile(cfg.Catalog.Path)
}

// buildDeps opens history, builds the predictor and engine, and resolves
// speech capabilities. Callers must Close the result.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	p, err := predictor.New(ctx, cfg.Predictor, catalog.Labels(), logger)
	if err != nil {
		return nil, fmt.Errorf("build predictor: %w", err)
	}
	eng, err := engine.New(p, catalog, engine.Config{PredictTimeout: cfg.Predictor.Timeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	if cfg.History.Path == "" && cfg.History.Backend != "postgres" {
		if cfg.History.Path, err = history.DefaultPath(cfg.History.Backend); err != nil {
			return nil, fmt.Errorf("resolve history path: %w", err)
		}
	}
	store, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	caps, sp := speech.Resolve(cfg.Speech, logger)

	return &deps{
		cfg:         cfg,
		logger:      logger,
		catalog:     catalog,
		store:       store,
		service:     engine.NewService(eng, store, logger),
		caps:        caps,
		speech:      sp,
		historyPath: cfg.History.Path,
	}, nil
}

func (d *deps) notifier(lang string) *notify.Notifier {
	return notify.New(d.cfg.Notify, lang, d.logger)
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		d.logger.Warn("closing history", zap.Error(err))
	}
	_ = d.logger.Sync()
}

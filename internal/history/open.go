package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Open builds the configured store and initializes it.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" && cfg.Backend != "postgres" {
		p, err := DefaultPath(cfg.Backend)
		if err != nil {
			return nil, storeErr("open", err)
		}
		path = p
	}

	var s Store
	switch cfg.Backend {
	case "csv":
		s = NewCSVStore(path, logger)
	case "sqlite":
		if err := ensureDir(path); err != nil {
			return nil, storeErr("open", err)
		}
		st, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		s = st
	case "postgres":
		st, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		s = st
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	logger.Debug("history ready", zap.String("backend", cfg.Backend), zap.String("path", path))
	return s, nil
}

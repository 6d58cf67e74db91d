// Package persistence opens the saved-view backend named by configuration.
package persistence

import (
	"context"
	"fmt"
	"io"

	"github.com/cdtdelta/tablekit/internal/config"
	"github.com/cdtdelta/tablekit/internal/database"
	"github.com/cdtdelta/tablekit/internal/kvstore"
	"github.com/cdtdelta/tablekit/internal/views"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the persistence adapter for cfg and a closer that releases
// its connection. The closer is never nil.
func Open(ctx context.Context, cfg config.StorageConfig) (views.Persistence, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return views.NewMemory(), nopCloser{}, nil

	case config.DriverYAML, "":
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, nil, err
		}
		return views.NewYAMLFile(path), nopCloser{}, nil

	case config.DriverFile:
		root, err := cfg.StoragePath()
		if err != nil {
			return nil, nil, err
		}
		dir, err := kvstore.NewDir(root)
		if err != nil {
			return nil, nil, err
		}
		return views.NewKVPersistence(dir, cfg.Key), nopCloser{}, nil

	case config.DriverSQLite:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, nil, err
		}
		db, err := database.OpenStore(database.DriverSQLite, path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, db, nil

	case config.DriverPostgres:
		db, err := database.OpenStore(database.DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return db, db, nil

	case config.DriverRedis:
		r, err := kvstore.NewRedis(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, nil, err
		}
		return views.NewKVPersistence(r, cfg.Key), r, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

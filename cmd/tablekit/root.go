package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/tablekit/internal/config"
	"github.com/cdtdelta/tablekit/internal/loader"
	"github.com/cdtdelta/tablekit/internal/logger"
	"github.com/cdtdelta/tablekit/internal/persistence"
	"github.com/cdtdelta/tablekit/internal/views"
)

// cli carries state shared by every subcommand once the root command has
// loaded configuration.
type cli struct {
	configFile string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "tablekit",
		Short:         "Filter, sort, group and page tabular data files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: search user config dir, . and ./config)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log.level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(newQueryCmd(c), newViewsCmd(c))
	return rootCmd
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	logger.Init(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	c.cfg = cfg
	return nil
}

// openStore opens the configured saved-view backend. The returned closer
// must be called when the command is done.
func (c *cli) openStore(ctx context.Context) (*views.Store, io.Closer, error) {
	p, closer, err := persistence.Open(ctx, c.cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("opening saved views (%s): %w", c.cfg.Storage.Driver, err)
	}
	return views.NewStore(ctx, p, views.WithLogger(logger.Get())), closer, nil
}

func loadDataset(path string) (*loader.Dataset, error) {
	ds, err := loader.Read(path, func(n int) {
		logger.Debug("Reading data file", "path", path, "rows", n)
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	logger.Info("Loaded data file",
		"path", path,
		"rows", len(ds.Rows),
		"columns", len(ds.Columns),
		"excluded", ds.Excluded,
	)
	return ds, nil
}

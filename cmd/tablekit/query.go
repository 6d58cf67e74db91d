package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/tablekit/internal/loader"
	"github.com/cdtdelta/tablekit/internal/logger"
	"github.com/cdtdelta/tablekit/internal/table"
	"github.com/cdtdelta/tablekit/internal/views"
)

func newQueryCmd(c *cli) *cobra.Command {
	var (
		flags     queryFlags
		savedView string
		page      int
		pageSize  int
		all       bool
		out       string
	)

	cmd := &cobra.Command{
		Use:   "query FILE",
		Short: "Search, filter, sort, group and page a CSV or JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			e, err := c.newEngine(ds)
			if err != nil {
				return err
			}

			if savedView != "" {
				if err := c.applySavedView(ctx, e, savedView); err != nil {
					return err
				}
			}
			if err := flags.apply(e); err != nil {
				return err
			}
			if all {
				e.SetPaginated(false)
			}
			if pageSize > 0 {
				if err := e.SetPageSize(pageSize); err != nil {
					return err
				}
			}
			if page > 1 {
				e.SetPageIndex(page - 1)
			}

			if out != "" {
				rows := e.FilteredRows(ds.Rows)
				if err := loader.WriteCSV(out, e.VisibleColumns(), rows); err != nil {
					return err
				}
				logger.Info("Exported rows", "path", out, "rows", len(rows))
				return nil
			}

			w := cmd.OutOrStdout()
			columns := e.VisibleColumns()
			res := e.Derive(ds.Rows)
			if res.Groups != nil {
				writeGroups(w, columns, res.Groups)
				return nil
			}
			writeRows(w, columns, res.Page)
			writeFooter(w, len(res.Page), len(res.Filtered), len(ds.Rows), e.State().PageIndex, res.PageCount)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&savedView, "view", "", "apply a saved view by id or name before other flags")
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default from config)")
	cmd.Flags().BoolVar(&all, "all", false, "disable pagination")
	cmd.Flags().StringVar(&out, "out", "", "write all matching rows to a CSV file instead of printing")
	return cmd
}

func (c *cli) newEngine(ds *loader.Dataset) (*table.Engine, error) {
	opts := table.OptionsFromConfig(c.cfg.Table, ds.Columns)
	opts.Logger = logger.Get()
	return table.New(opts)
}

// applySavedView applies the saved view whose id or name matches ref.
func (c *cli) applySavedView(ctx context.Context, e *table.Engine, ref string) error {
	store, closer, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	v := findView(store, ref)
	if v == nil {
		return fmt.Errorf("saved view %q not found", ref)
	}
	if _, err := e.ApplySavedView(store, v.ID); err != nil {
		return fmt.Errorf("applying saved view %q: %w", v.Name, err)
	}
	return nil
}

// findView looks a view up by id, then by case-insensitive name.
func findView(store *views.Store, ref string) *views.SavedView {
	if v := store.Get(ref); v != nil {
		return v
	}
	for _, v := range store.List() {
		if strings.EqualFold(v.Name, ref) {
			return &v
		}
	}
	return nil
}

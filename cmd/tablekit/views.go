package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/tablekit/internal/views"
)

func newViewsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved views",
	}
	cmd.AddCommand(
		newViewsListCmd(c),
		newViewsSaveCmd(c),
		newViewsDeleteCmd(c),
		newViewsDefaultCmd(c),
		newViewsDuplicateCmd(c),
		newViewsRenameCmd(c),
		newViewsExportCmd(c),
		newViewsImportCmd(c),
	)
	return cmd
}

// withStore opens the store for one command and reports persistence
// failures once the command has run.
func (c *cli) withStore(ctx context.Context, fn func(*views.Store) error) error {
	store, closer, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := fn(store); err != nil {
		return err
	}
	if err := store.PersistErr(); err != nil {
		return err
	}
	return nil
}

func mustFindView(store *views.Store, ref string) (*views.SavedView, error) {
	v := findView(store, ref)
	if v == nil {
		return nil, fmt.Errorf("saved view %q not found", ref)
	}
	return v, nil
}

func newViewsListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store *views.Store) error {
				writeViewList(cmd.OutOrStdout(), store.List())
				return nil
			})
		},
	}
}

func newViewsSaveCmd(c *cli) *cobra.Command {
	var (
		flags       queryFlags
		description string
		makeDefault bool
	)
	cmd := &cobra.Command{
		Use:   "save NAME FILE",
		Short: "Save the query given by flags over FILE's columns as a view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[1])
			if err != nil {
				return err
			}
			e, err := c.newEngine(ds)
			if err != nil {
				return err
			}
			if err := flags.apply(e); err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(store *views.Store) error {
				v, err := store.Create(ctx, args[0], e.Snapshot(), views.CreateOptions{
					Description:  description,
					SetAsDefault: makeDefault,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved view %s (%s)\n", v.Name, v.ID)
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&description, "description", "", "view description")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default view")
	return cmd
}

func newViewsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID|NAME",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(store *views.Store) error {
				v, err := mustFindView(store, args[0])
				if err != nil {
					return err
				}
				store.Delete(ctx, v.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted view %s\n", v.Name)
				return nil
			})
		},
	}
}

func newViewsDefaultCmd(c *cli) *cobra.Command {
	var clearDefault bool
	cmd := &cobra.Command{
		Use:   "default [ID|NAME]",
		Short: "Set or clear the default view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearDefault == (len(args) == 1) {
				return fmt.Errorf("give exactly one of a view or --clear")
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(store *views.Store) error {
				if clearDefault {
					store.SetDefault(ctx, "")
					fmt.Fprintln(cmd.OutOrStdout(), "cleared default view")
					return nil
				}
				v, err := mustFindView(store, args[0])
				if err != nil {
					return err
				}
				store.SetDefault(ctx, v.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "default view is now %s\n", v.Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearDefault, "clear", false, "clear the default flag from every view")
	return cmd
}

func newViewsDuplicateCmd(c *cli) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "duplicate ID|NAME",
		Short: "Copy a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(store *views.Store) error {
				v, err := mustFindView(store, args[0])
				if err != nil {
					return err
				}
				dup := store.Duplicate(ctx, v.ID, name)
				fmt.Fprintf(cmd.OutOrStdout(), "created view %s (%s)\n", dup.Name, dup.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the copy (default: \"<name> (copy)\")")
	return cmd
}

func newViewsRenameCmd(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "rename ID|NAME NEW_NAME",
		Short: "Rename a saved view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(store *views.Store) error {
				v, err := mustFindView(store, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("description") {
					description = v.Description
				}
				renamed, err := store.Rename(ctx, v.ID, args[1], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed view to %s\n", renamed.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func newViewsExportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved views as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store *views.Store) error {
				data, err := views.ExportJSON(store.List())
				if err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(out, data, 0644); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

func newViewsImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import saved views from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading import: %w", err)
			}
			imported, err := views.ImportJSON(data)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(store *views.Store) error {
				added := store.Import(ctx, imported)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d views\n", len(added))
				return nil
			})
		},
	}
}

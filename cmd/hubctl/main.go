package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hub-ops-service/internal/adapters/cache"
	"hub-ops-service/internal/app"
	"hub-ops-service/internal/config"
	"hub-ops-service/internal/importer"
	"hub-ops-service/internal/ports"
)

func main() {
	config.LoadDotEnv()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hubctl",
		Short:        "Hub operations admin tool",
		Long:         `Maintains the hub database: schema, reference table imports and offline lane suggestions.`,
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newImportCmd(), newSuggestCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate requires STORE=%s", config.StorePostgres)
			}
			stores, err := app.OpenStores(cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			if err := stores.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema ready.")
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var table, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a reference table from a CSV export",
		Long:  `Replaces packages, lanes or drivers from a CSV file (";" or "," separated) and invalidates the reference cache.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := importer.ParseTable(table)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("import requires STORE=%s", config.StorePostgres)
			}

			ctx := cmd.Context()
			stores, err := app.OpenStores(cfg)
			if err != nil {
				return err
			}
			defer stores.Close()
			if err := stores.Migrate(ctx); err != nil {
				return err
			}

			refCache, closeCache, err := app.NewReferenceCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			res, err := importFile(ctx, &importer.Importer{Writer: stores.Writer, Cache: refCache}, t, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported table=%s rows=%d dropped=%d\n", res.Table, res.Imported, res.Dropped)
			if cfg.RedisURL == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "REDIS_URL not set: running servers keep their cached reference data until it expires")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "Table to replace: packages, lanes or drivers")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file path, or - for stdin")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var (
		presentOnly bool
		packages    string
		lanes       string
	)
	cmd := &cobra.Command{
		Use:   "suggest <identifier>",
		Short: "Print the nearest lanes for a package or lane",
		Long: `Resolves an order id or lane code and prints the closest lanes.
With --packages/--lanes the CSV files are loaded into memory and the database is not used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offline := packages != "" || lanes != ""
			var (
				cfg *config.Config
				err error
			)
			if offline {
				cfg, err = config.LoadWithStore(config.StoreMemory)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			stores, err := app.OpenStores(cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			if offline {
				im := &importer.Importer{Writer: stores.Writer}
				for _, src := range []struct {
					table importer.Table
					path  string
				}{
					{importer.TablePackages, packages},
					{importer.TableLanes, lanes},
				} {
					if src.path == "" {
						continue
					}
					if _, err := importFile(ctx, im, src.table, src.path); err != nil {
						return err
					}
				}
			}

			// Offline ranking must not see the shared snapshot in Redis.
			var refCache ports.ReferenceCache = cache.NewMemoryReferenceCache()
			if !offline {
				shared, closeCache, err := app.NewReferenceCache(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeCache()
				refCache = shared
			}

			mod, err := app.Build(cfg, stores, refCache, nil)
			if err != nil {
				return err
			}
			alloc, err := mod.Allocator.ResolveAndSuggest(ctx, args[0], presentOnly)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			out := cmd.OutOrStdout()
			if alloc.Resolved {
				fmt.Fprintf(out, "%s resolved from %s\n", alloc.Identifier, alloc.Source)
			} else {
				fmt.Fprintf(out, "%s not found, ranking from the hub\n", alloc.Identifier)
			}
			if len(alloc.Suggestions) == 0 {
				fmt.Fprintln(out, "no lanes")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CAGE\tDISTANCE\tPLATE")
			for _, s := range alloc.Suggestions {
				dist := "unknown"
				if s.DistanceKnown {
					dist = fmt.Sprintf("%.3f km", s.DistanceKm)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Lane.CorridorCage, dist, s.Lane.LicensePlate)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&presentOnly, "present-only", false, "Only lanes whose vehicle is checked in")
	cmd.Flags().StringVar(&packages, "packages", "", "Packages CSV to load instead of the database")
	cmd.Flags().StringVar(&lanes, "lanes", "", "Lanes CSV to load instead of the database")
	return cmd
}

func importFile(ctx context.Context, im *importer.Importer, table importer.Table, path string) (importer.Result, error) {
	if path == "" {
		return importer.Result{}, errors.New("import: file path is required")
	}
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return importer.Result{}, fmt.Errorf("import: %w", err)
		}
		defer f.Close()
		r = f
	}
	return im.Import(ctx, table, r)
}

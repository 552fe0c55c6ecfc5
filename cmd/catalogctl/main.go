// Command catalogctl inspects dataset catalogs and seeds the Postgres catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goanalytics/adapters/postgres"
	"goanalytics/domain/analysis"
	"goanalytics/internal"
	"goanalytics/internal/config"
	"goanalytics/internal/container"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Dataset catalog tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newListCmd(),
		newSeedCmd(),
	)
	return rootCmd
}

// loadContainer reads configuration with the catalog source overridden
func loadContainer(source string) (*container.Container, error) {
	if source != "" {
		os.Setenv("CATALOG_SOURCE", source)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
}

func newListCmd() *cobra.Command {
	var source string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets from a catalog source",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(source)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if err := c.InitCatalogs(cmd.Context()); err != nil {
				return err
			}
			datasets, err := c.Datasets.ListDatasets(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(datasets)
			}
			return printDatasets(cmd, datasets)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "catalog source (remote, excel, postgres, builtin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printDatasets(cmd *cobra.Command, datasets []analysis.DatasetDescriptor) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDOCUMENTS\tNUMERIC FIELDS")
	for _, ds := range datasets {
		fmt.Fprintf(w, "%s\t%d\t%v\n", ds.Name, ds.DocumentCount, ds.NumericFields)
	}
	return w.Flush()
}

func newSeedCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy datasets from another catalog source into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == config.CatalogPostgres {
				return fmt.Errorf("--from must not be postgres")
			}
			return seed(cmd.Context(), cmd, from)
		},
	}
	cmd.Flags().StringVar(&from, "from", config.CatalogExcel, "source to copy from (remote, excel, builtin)")
	return cmd
}

func seed(ctx context.Context, cmd *cobra.Command, from string) error {
	c, err := loadContainer(from)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)

	if err := c.InitCatalogs(ctx); err != nil {
		return err
	}
	datasets, err := c.Datasets.ListDatasets(ctx)
	if err != nil {
		return err
	}

	db, err := c.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	target := postgres.NewDatasetCatalog(db)
	if err := target.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := target.Upsert(ctx, datasets...); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d datasets from %s\n", len(datasets), from)
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog/mongo"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog/postgres"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/config"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "import <catalog.json>",
		Short: "Load a catalog file into the configured database",
		Long: `Load a catalog file into the configured database.

Courses are upserted by code, so importing the same file twice is harmless.
The Postgres schema is created if it does not exist.

Examples:
  ucoursemap import courses.json --to postgres
  UCOURSEMAP_MONGO_URI=mongodb://localhost ucoursemap import courses.json --to mongo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], to)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target backend: postgres, mongo (default: catalog.backend from config)")
	return cmd
}

func (c *CLI) runImport(ctx context.Context, path, to string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if to == "" {
		to = cfg.Catalog.Backend
	}

	mem, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	courses := mem.All()
	prog := newProgress(c.logger(ctx))

	switch to {
	case config.CatalogPostgres:
		if cfg.Catalog.PostgresDSN == "" {
			return fmt.Errorf("catalog.postgres_dsn is not set")
		}
		cat, pool, err := postgres.Open(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := cat.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := cat.Upsert(ctx, courses); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	case config.CatalogMongo:
		if cfg.Catalog.MongoURI == "" {
			return fmt.Errorf("catalog.mongo_uri is not set")
		}
		cat, client, err := mongo.Open(ctx, cfg.Catalog.MongoURI, cfg.Catalog.MongoDatabase)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		if err := cat.Upsert(ctx, courses); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	default:
		return fmt.Errorf("cannot import into %q: choose postgres or mongo", to)
	}

	prog.done(fmt.Sprintf("Imported %d courses into %s", len(courses), to))
	return nil
}

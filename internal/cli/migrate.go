package cli

import (
	"fmt"
	"io"

	"go-cashbook-ws/pkg/config"
	"go-cashbook-ws/pkg/database"
	"go-cashbook-ws/pkg/docstore"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the workspace document table",
		Long: `Runs the schema migration for the postgres and sqlite storage drivers.
The file and drive drivers have no schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.LoadConfig()
			if err != nil {
				return err
			}

			var db *gorm.DB
			switch cfg.Storage.Driver {
			case config.DriverPostgres:
				db, err = database.ConnectPostgres(cfg.Storage.DatabaseURL)
			case config.DriverSQLite:
				db, err = database.ConnectSQLite(cfg.Storage.SQLitePath)
			default:
				return fmt.Errorf("storage driver %q has no schema to migrate", cfg.Storage.Driver)
			}
			if err != nil {
				return err
			}
			if err := docstore.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			result := map[string]string{"driver": cfg.Storage.Driver, "status": "migrated"}
			return rootOpts.write(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "%s document table migrated\n", cfg.Storage.Driver)
			})
		},
	}
}

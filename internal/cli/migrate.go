package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Run database migrations",
		Long:      `Apply pending migrations to DATABASE_URL (default), or print the migration status.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, appLogger, err := loadConfig()
			if err != nil {
				return err
			}

			db, target, err := openTarget(cfg, appLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close(db) //nolint: errcheck

			switch action {
			case "status":
				version, err := database.MigrationStatus(cmd.Context(), db, target.Dialect, appLogger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Database version: %d\n", version)
			default:
				if err := database.Migrate(cmd.Context(), db, target.Dialect, appLogger); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database migrations completed successfully!")
			}
			return nil
		},
	}

	return cmd
}

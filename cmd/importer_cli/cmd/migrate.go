package cmd

import (
	"fmt"

	"github.com/SscSPs/statement_importer/internal/platform/config"
	"github.com/SscSPs/statement_importer/pkg/database"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:         "migrate",
		Short:       "Apply pending database migrations",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, _ := cmd.Flags().GetString("path")
			return database.RunMigrations(cfg.DatabaseURL, path, c.logger)
		},
	}
	migrateCmd.Flags().String("path", "file://migrations", "migration source URL")
	return migrateCmd
}

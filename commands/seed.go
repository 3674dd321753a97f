package commands

import (
	"fmt"

	"dorm-backend/config"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial admin account from SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("database connect failed: %w", err)
		}
		if err := config.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return config.SeedDatabase(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	},
}

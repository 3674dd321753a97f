package commands

import (
	"fmt"
	"log"

	"dorm-backend/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("database connect failed: %w", err)
		}
		if err := config.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Println("✅ Migrations applied")
		return nil
	},
}

package commands

import (
	"log"
	"os"

	"dorm-backend/config"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "dorm-backend",
	Short: "Dormitory room occupancy and assignment service",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// openDatabase loads config and connects using DB_DRIVER.
func openDatabase() (config.Config, *gorm.DB, error) {
	cfg := config.Load()
	db, err := config.ConnectDatabase(cfg.DBDriver)
	if err != nil {
		return cfg, nil, err
	}
	log.Printf("✅ Database connection established (%s)", cfg.DBDriver)
	return cfg, db, nil
}

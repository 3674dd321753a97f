package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dorm-backend/config"
	"dorm-backend/controllers"
	"dorm-backend/events"
	"dorm-backend/routes"
	"dorm-backend/services"

	"github.com/spf13/cobra"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run AutoMigrate on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return fmt.Errorf("database connect failed: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set to serve the API")
	}
	if !skipMigrate {
		if err := config.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := config.SeedDatabase(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			log.Printf("warning: seeding failed: %v", err)
		}
	}

	publisher, err := events.Open(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Initialize services
	occupancyService := services.NewOccupancyService(db, publisher)
	catalogService := services.NewCatalogService(db, cfg.ImportReportTTL)
	go catalogService.Reports.Start()
	defer catalogService.Reports.Stop()

	// Build router
	router := routes.SetupRouter(routes.Controllers{
		Auth:       controllers.NewAuthController(catalogService, cfg.JWTSecret, cfg.JWTTTL),
		Rooms:      controllers.NewRoomController(catalogService, occupancyService),
		Users:      controllers.NewUserController(catalogService, occupancyService),
		Facilities: controllers.NewFacilityController(catalogService),
		Requests:   controllers.NewRequestController(catalogService, occupancyService),
		Imports:    controllers.NewImportController(catalogService),
	}, cfg.JWTSecret, cfg.CorsOrigins)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("ListenAndServe(): %w", err)
	case <-quit:
	}
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("✅ Server stopped gracefully")
	return nil
}

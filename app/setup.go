package app

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/schoolhub/records-api/api"
	"github.com/schoolhub/records-api/config"
	"github.com/schoolhub/records-api/database"
	"github.com/schoolhub/records-api/router"
	"github.com/schoolhub/records-api/services/cron"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running and DB_* variables are set")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to run database migrations")
		return err
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("failed to get database connection")
	}

	// Seed the admin account if configured and missing
	if err := database.NewSeeder(db).SeedAll(); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(db)
		if err := cronManager.Start(); err != nil {
			// Scheduled maintenance is not critical to serving requests
			log.Printf("Warning: failed to start cron jobs: %v", err)
		}
	}

	// Defer closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup routes (security middleware is attached inside)
	router.SetupRoutes(app, store)

	return server.Run()
}

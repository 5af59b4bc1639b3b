package main

import (
	"fmt"
	"os"

	"github.com/crewdeck/backend/internal/config"
	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/internal/services"
)

// One-off bulk import of the customer list CSV. Run it against a fresh
// database, or rerun it after the list changes; matching phone numbers are
// updated in place.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	path := cfg.Import.CustomerCSV
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	service := services.NewCustomerService(models.GetDB())
	result, err := service.ImportFromFile(path)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d new customers, updated %d existing ones from %s\n",
		result.Imported, result.Updated, path)
}

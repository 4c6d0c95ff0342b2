// Command migrate applies or rolls back the commerce schema.
package main

import (
	"flag"
	"fmt"
	"os"

	"flora-commerce/internal/config"
	"flora-commerce/internal/database"
	"flora-commerce/internal/database/migrations"
	"flora-commerce/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	dir := flag.String("dir", "./migrations", "directory containing migration files")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	switch *direction {
	case "up":
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	case "down":
		if err := runner.MigrateDown(); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown direction %q, expected up or down\n", *direction)
		os.Exit(2)
	}

	version, dirty, err := runner.Version()
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("Schema version: %d (dirty=%v)", version, dirty))
}

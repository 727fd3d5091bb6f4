package main

import (
	"context"
	"log"

	"timeclock/internal/config"
	"timeclock/internal/store"
)

func main() {
	cfg := config.Load()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background(), "migrations/001_init.sql"); err != nil {
		log.Fatalf("error executing migration: %v", err)
	}

	log.Println("migration completed successfully")
}

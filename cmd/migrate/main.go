package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	dbName := cfg.Database.DBName

	// First, connect to postgres database to create the target database if needed
	adminCfg := cfg.Database
	adminCfg.DBName = "postgres"
	postgresDB, err := sql.Open("postgres", postgres.DSN(adminCfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to postgres database: %v\n", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName,
	).Scan(&exists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check database existence: %v\n", err)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", dbName)
		if _, err = postgresDB.Exec(fmt.Sprintf("CREATE DATABASE %q", dbName)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create database: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database '%s' created successfully.\n", dbName)
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationPath := filepath.Join("migrations", "000001_init_schema.up.sql")
	if len(os.Args) > 1 {
		migrationPath = os.Args[1]
	}

	if err := postgres.RunMigrations(db, migrationPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully!")
}

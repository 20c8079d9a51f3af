// Command migrate brings the database schema up to date.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"devhub/internal/config"
	"devhub/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|roles>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema migrated")
	case "roles":
		if err := database.SeedRoles(db); err != nil {
			return err
		}
		log.Println("built-in roles seeded")
	default:
		return usage()
	}
	return nil
}

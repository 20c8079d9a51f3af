// Command main runs the database seeder for DevHub.
package main

import (
	"flag"
	"log"

	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numGames := flag.Int("games", defaults.NumGames, "Number of games to create")
	numSnippets := flag.Int("snippets", defaults.NumSnippets, "Number of snippets to create")
	numTutorials := flag.Int("tutorials", defaults.NumTutorials, "Number of tutorials to create")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	categories := flag.String("categories", "", "YAML fixture with the categories to create")
	dryRun := flag.Bool("dry-run", false, "Log generated rows without writing them")
	fast := flag.Bool("fast", false, "Skip password hashing (seeded users cannot log in)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	_, err = seed.Seed(db, seed.Options{
		NumUsers:       *numUsers,
		NumGames:       *numGames,
		NumSnippets:    *numSnippets,
		NumTutorials:   *numTutorials,
		ShouldClean:    *shouldClean,
		CategoriesFile: *categories,
		Factory:        seed.SeedOptions{DryRun: *dryRun, SkipBcrypt: *fast},
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
	if !*fast {
		log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
	}
}

package seed

import (
	"fmt"
	"log"

	"devhub/internal/database"
	"devhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	NumGames     int
	NumSnippets  int
	NumTutorials int
	ShouldClean  bool
	// CategoriesFile is an optional YAML fixture replacing DefaultCategories.
	CategoriesFile string
	Factory        SeedOptions
}

// DefaultOptions returns the options used by cmd/seed without flags.
func DefaultOptions() Options {
	return Options{
		NumUsers:     20,
		NumGames:     30,
		NumSnippets:  40,
		NumTutorials: 25,
		ShouldClean:  true,
	}
}

// Result counts the rows created by Seed.
type Result struct {
	Users       int
	Categories  int
	Tags        int
	Games       int
	Snippets    int
	Tutorials   int
	Submissions int
}

// joinTables are cleared before the tables they reference.
var joinTables = []string{"game_tags", "snippet_tags", "tutorial_tags", "user_roles"}

// statusFor spreads statuses roughly 70/20/10 over approved, pending and rejected.
func statusFor(i int) models.ModerationStatus {
	switch i % 10 {
	case 1, 5:
		return models.StatusPending
	case 8:
		return models.StatusRejected
	default:
		return models.StatusApproved
	}
}

// Seed populates the database with demo data. The first seeded user is an
// admin and the second a moderator.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d users, %d games, %d snippets, %d tutorials...",
		opts.NumUsers, opts.NumGames, opts.NumSnippets, opts.NumTutorials)

	if opts.ShouldClean && !opts.Factory.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}
	if !opts.Factory.DryRun {
		if err := database.SeedRoles(db); err != nil {
			return nil, err
		}
	}

	names := DefaultCategories
	if opts.CategoriesFile != "" {
		loaded, err := LoadCategoriesFile(opts.CategoriesFile)
		if err != nil {
			return nil, err
		}
		names = loaded
	}
	categories, err := Categories(db, names, opts.Factory.DryRun)
	if err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}
	tags, err := Tags(db, DefaultTags, opts.Factory.DryRun)
	if err != nil {
		return nil, fmt.Errorf("failed to seed tags: %w", err)
	}

	res := &Result{Categories: len(categories), Tags: len(tags)}
	f := NewFactory(db, opts.Factory)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		switch i {
		case 0:
			err = f.GrantRole(user, models.RoleAdmin)
		case 1:
			err = f.GrantRole(user, models.RoleModerator)
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	res.Users = len(users)
	log.Printf("✓ %d users created", res.Users)
	if len(users) == 0 {
		return res, nil
	}

	pickUser := func() *models.User { return users[gofakeit.Number(0, len(users)-1)] }
	pickCategory := func() *models.Category { return &categories[gofakeit.Number(0, len(categories)-1)] }
	pickTags := func() []models.Tag {
		if len(tags) == 0 {
			return nil
		}
		n := gofakeit.Number(1, min(3, len(tags)))
		order := seqInts(len(tags))
		gofakeit.ShuffleInts(order)
		out := make([]models.Tag, 0, n)
		for _, idx := range order[:n] {
			out = append(out, tags[idx])
		}
		return out
	}

	submit := func(kind models.ContentKind, item models.Item, status models.ModerationStatus) error {
		if err := f.AttachTags(item, pickTags()); err != nil {
			return err
		}
		if _, err := f.CreateSubmission(kind, item, status); err != nil {
			return err
		}
		res.Submissions++
		return nil
	}

	if len(categories) > 0 {
		for i := 0; i < opts.NumGames; i++ {
			status := statusFor(i)
			game, err := f.CreateGame(pickUser(), pickCategory(), status)
			if err != nil {
				return nil, fmt.Errorf("failed to create game: %w", err)
			}
			if err := submit(models.KindGame, game, status); err != nil {
				return nil, err
			}
			res.Games++
		}
		for i := 0; i < opts.NumTutorials; i++ {
			status := statusFor(i)
			tutorial, err := f.CreateTutorial(pickUser(), pickCategory(), status)
			if err != nil {
				return nil, fmt.Errorf("failed to create tutorial: %w", err)
			}
			if err := submit(models.KindTutorial, tutorial, status); err != nil {
				return nil, err
			}
			res.Tutorials++
		}
	}
	for i := 0; i < opts.NumSnippets; i++ {
		status := statusFor(i)
		snippet, err := f.CreateSnippet(pickUser(), status)
		if err != nil {
			return nil, fmt.Errorf("failed to create snippet: %w", err)
		}
		if err := submit(models.KindSnippet, snippet, status); err != nil {
			return nil, err
		}
		res.Snippets++
	}

	log.Printf("✓ %d games, %d snippets, %d tutorials, %d submissions created",
		res.Games, res.Snippets, res.Tutorials, res.Submissions)
	return res, nil
}

func seqInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// clearData removes every seeded row. Roles are kept.
func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	for _, table := range joinTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	for _, model := range []any{
		&models.Submission{}, &models.Game{}, &models.Snippet{}, &models.Tutorial{},
		&models.Tag{}, &models.Category{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

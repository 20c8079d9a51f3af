// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"devhub/internal/database"
	"devhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated, private in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with fake profile data. Role names, if given,
// must be seeded roles.
func CreateUser(t *testing.T, db *gorm.DB, roles ...string) *models.User {
	t.Helper()
	user := &models.User{
		Username: "dev_" + strings.ToLower(gofakeit.LetterN(10)),
		Email:    gofakeit.Email(),
		Password: "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6f6p0lZFqK1Q6Ft2F9Zs1bW",
		Bio:      gofakeit.Sentence(8),
	}
	require.NoError(t, db.Create(user).Error)

	for _, name := range roles {
		var role models.Role
		require.NoError(t, db.Where("name = ?", name).First(&role).Error)
		require.NoError(t, db.Model(user).Association("Roles").Append(&role))
	}
	return user
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateGame inserts a game with the given status.
func CreateGame(t *testing.T, db *gorm.DB, creator *models.User, category *models.Category, status models.ModerationStatus) *models.Game {
	t.Helper()
	game := &models.Game{
		Title:       gofakeit.AppName(),
		Excerpt:     gofakeit.Sentence(6),
		Description: gofakeit.Paragraph(1, 3, 10, " "),
		Version:     gofakeit.AppVersion(),
		Status:      status,
		CreatorID:   creator.ID,
		CategoryID:  category.ID,
	}
	require.NoError(t, db.Create(game).Error)
	return game
}

// CreateSnippet inserts a snippet with the given status.
func CreateSnippet(t *testing.T, db *gorm.DB, creator *models.User, status models.ModerationStatus) *models.Snippet {
	t.Helper()
	snippet := &models.Snippet{
		Title:       gofakeit.HackerPhrase(),
		Description: gofakeit.Sentence(8),
		Code:        "func main() {}",
		Language:    "go",
		Engine:      "ebiten",
		Status:      status,
		CreatorID:   creator.ID,
	}
	require.NoError(t, db.Create(snippet).Error)
	return snippet
}

// CreateTutorial inserts a tutorial with the given status.
func CreateTutorial(t *testing.T, db *gorm.DB, creator *models.User, category *models.Category, status models.ModerationStatus) *models.Tutorial {
	t.Helper()
	tutorial := &models.Tutorial{
		Title:      gofakeit.BookTitle(),
		Excerpt:    gofakeit.Sentence(6),
		Content:    gofakeit.Paragraph(2, 4, 12, "\n\n"),
		ReadTime:   gofakeit.Number(1, 30),
		Status:     status,
		CreatorID:  creator.ID,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(tutorial).Error)
	return tutorial
}

// CreateSubmission inserts a pending submission for a content row.
func CreateSubmission(t *testing.T, db *gorm.DB, kind models.ContentKind, contentID uint, title string, creatorID uint) *models.Submission {
	t.Helper()
	s := &models.Submission{
		Title:       kind.SubmissionTitle(title),
		Status:      models.StatusPending,
		SubmittedAt: time.Now().UTC(),
		CreatorID:   creatorID,
	}
	s.Attach(kind, contentID)
	require.NoError(t, db.Create(s).Error)
	return s
}

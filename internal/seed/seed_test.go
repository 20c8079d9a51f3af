package seed

import (
	"os"
	"path/filepath"
	"testing"

	"devhub/internal/models"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	return Options{
		NumUsers:     4,
		NumGames:     10,
		NumSnippets:  10,
		NumTutorials: 10,
		ShouldClean:  true,
		Factory:      SeedOptions{SkipBcrypt: true, MaxDays: 30},
	}
}

func TestStatusFor_Distribution(t *testing.T) {
	counts := map[models.ModerationStatus]int{}
	for i := 0; i < 10; i++ {
		counts[statusFor(i)]++
	}
	assert.Equal(t, 7, counts[models.StatusApproved])
	assert.Equal(t, 2, counts[models.StatusPending])
	assert.Equal(t, 1, counts[models.StatusRejected])
}

func TestSeed_CreatesConsistentContent(t *testing.T) {
	db := testutil.NewDB(t)

	res, err := Seed(db, smallOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Users)
	assert.Equal(t, len(DefaultCategories), res.Categories)
	assert.Equal(t, len(DefaultTags), res.Tags)
	assert.Equal(t, 10, res.Games)
	assert.Equal(t, 10, res.Snippets)
	assert.Equal(t, 10, res.Tutorials)
	assert.Equal(t, 30, res.Submissions)

	var approvedGames int64
	require.NoError(t, db.Model(&models.Game{}).Where("status = ?", models.StatusApproved).Count(&approvedGames).Error)
	assert.EqualValues(t, 7, approvedGames)

	var subs []models.Submission
	require.NoError(t, db.Preload("Game").Preload("Snippet").Preload("Tutorial").Find(&subs).Error)
	require.Len(t, subs, 30)
	for _, s := range subs {
		var contentStatus models.ModerationStatus
		switch s.Type {
		case models.KindGame:
			require.NotNil(t, s.Game)
			contentStatus = s.Game.Status
		case models.KindSnippet:
			require.NotNil(t, s.Snippet)
			contentStatus = s.Snippet.Status
		case models.KindTutorial:
			require.NotNil(t, s.Tutorial)
			contentStatus = s.Tutorial.Status
		}
		assert.Equal(t, contentStatus, s.Status, "submission %d", s.ID)

		if s.Status == models.StatusPending {
			assert.Nil(t, s.ResolvedAt)
			continue
		}
		require.NotNil(t, s.ResolvedAt)
		assert.True(t, s.ResolvedAt.After(s.SubmittedAt))
		if s.Status == models.StatusRejected {
			require.NotNil(t, s.Comment)
			assert.NotEmpty(t, *s.Comment)
		}
	}

	var staff []models.User
	require.NoError(t, db.Preload("Roles").Joins("JOIN user_roles ON user_roles.user_id = users.id").Find(&staff).Error)
	require.Len(t, staff, 2)
	var roleNames []string
	for _, u := range staff {
		roleNames = append(roleNames, u.RoleNames()...)
	}
	assert.ElementsMatch(t, []string{models.RoleAdmin, models.RoleModerator}, roleNames)

	var tagged int64
	require.NoError(t, db.Table("snippet_tags").Distinct("snippet_id").Count(&tagged).Error)
	assert.EqualValues(t, 10, tagged)
}

func TestSeed_CleanReplacesPreviousRun(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := Seed(db, smallOptions())
	require.NoError(t, err)
	_, err = Seed(db, smallOptions())
	require.NoError(t, err)

	var users, games, submissions, roles int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Game{}).Count(&games).Error)
	require.NoError(t, db.Model(&models.Submission{}).Count(&submissions).Error)
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 10, games)
	assert.EqualValues(t, 30, submissions)
	assert.EqualValues(t, 2, roles)
}

func TestSeed_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewDB(t)
	opts := smallOptions()
	opts.Factory.DryRun = true

	res, err := Seed(db, opts)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Games)

	var users, categories int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Zero(t, users)
	assert.Zero(t, categories)
}

func TestParseCategories(t *testing.T) {
	names, err := ParseCategories([]byte(`
categories:
  - name: Arcade
  - name: "  Puzzle "
  - name: arcade
  - name: ""
  - name: Roguelike
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Arcade", "Puzzle", "Roguelike"}, names)

	_, err = ParseCategories([]byte("categories: []"))
	assert.Error(t, err)

	_, err = ParseCategories([]byte("categories: [unclosed"))
	assert.Error(t, err)
}

func TestSeed_UsesCategoriesFile(t *testing.T) {
	db := testutil.NewDB(t)
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: Metroidvania\n  - name: Roguelike\n"), 0o600))

	opts := smallOptions()
	opts.CategoriesFile = path
	res, err := Seed(db, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories)

	var names []string
	require.NoError(t, db.Model(&models.Category{}).Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"Metroidvania", "Roguelike"}, names)

	_, err = LoadCategoriesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCategoriesAndTags_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)

	first, err := Categories(db, []string{"Arcade", "Puzzle"}, false)
	require.NoError(t, err)
	second, err := Categories(db, []string{"Arcade", "Puzzle", "Racing"}, false)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Len(t, second, 3)
	assert.Equal(t, first[0].ID, second[0].ID)

	tags, err := Tags(db, []string{"Pixel-Art", "pixel-art", " 2D "}, false)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "pixel-art", tags[0].Name)
	assert.Equal(t, "2d", tags[1].Name)
}

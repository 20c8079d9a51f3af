package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"devhub/internal/archive"
	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestGameService_CreateThenFetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Roguelike")
	svc := NewGameService(env.contentDeps())

	game, err := svc.Create(ctx, user.ID, CreateGameInput{
		Title:       "Dungeon Crawl",
		Excerpt:     "Descend.",
		Description: "A turn based dungeon crawler.",
		Version:     "1.0.0",
		FileSize:    2048,
		GameURL:     "https://example.com/dungeon.zip",
		CategoryID:  cat.ID,
		Tags:        []string{"Go", " ECS ", "go"},
		Cover:       pngFile(t, "cover.png"),
		Screenshots: []MediaFile{*pngFile(t, "shot-1.png")},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, game.Status)
	assert.True(t, strings.HasPrefix(game.CoverImageURL, testMediaBase+"/"))
	assert.True(t, strings.HasSuffix(game.CoverImageURL, "cover.webp"))
	require.Len(t, game.Screenshots, 1)
	assert.True(t, strings.HasSuffix(game.Screenshots[0], "shot-1.webp"))
	assert.Equal(t, 2, env.store.Len())
	assert.ElementsMatch(t, []string{"go", "ecs"}, tagNames(game.Tags))
	require.NotNil(t, game.Creator)
	assert.Equal(t, user.ID, game.Creator.ID)

	var subs []models.Submission
	require.NoError(t, env.db.Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, "Game: Dungeon Crawl", subs[0].Title)
	assert.Equal(t, models.KindGame, subs[0].Type)
	assert.Equal(t, models.StatusPending, subs[0].Status)
	assert.Equal(t, user.ID, subs[0].CreatorID)
	require.NotNil(t, subs[0].GameID)
	assert.Equal(t, game.ID, *subs[0].GameID)
	assert.Nil(t, subs[0].SnippetID)
	assert.Nil(t, subs[0].TutorialID)
	assert.Nil(t, subs[0].ResolvedAt)

	fetched, err := svc.GetByPID(ctx, game.PID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, fetched.ID)
	assert.Equal(t, game.Title, fetched.Title)
	assert.Equal(t, game.Screenshots, fetched.Screenshots)
}

func TestGameService_CreateFailuresLeaveNothingBehind(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		setup func(t *testing.T, env *testEnv, in *CreateGameInput) uint
	}{
		{
			name: "unknown creator",
			code: models.CodeNotFound,
			setup: func(t *testing.T, env *testEnv, in *CreateGameInput) uint {
				return 9999
			},
		},
		{
			name: "unknown category",
			code: models.CodeNotFound,
			setup: func(t *testing.T, env *testEnv, in *CreateGameInput) uint {
				in.CategoryID = 9999
				return testutil.CreateUser(t, env.db).ID
			},
		},
		{
			name: "missing category",
			code: models.CodeValidation,
			setup: func(t *testing.T, env *testEnv, in *CreateGameInput) uint {
				in.CategoryID = 0
				return testutil.CreateUser(t, env.db).ID
			},
		},
		{
			name: "not an image",
			code: models.CodeValidation,
			setup: func(t *testing.T, env *testEnv, in *CreateGameInput) uint {
				in.Cover = &MediaFile{Name: "cover.png", ContentType: "image/png", Data: []byte("plain text")}
				return testutil.CreateUser(t, env.db).ID
			},
		},
		{
			name: "storage failure",
			code: models.CodeInternal,
			setup: func(t *testing.T, env *testEnv, in *CreateGameInput) uint {
				env.store.PutErr = errors.New("bucket unavailable")
				return testutil.CreateUser(t, env.db).ID
			},
		},
		{
			name: "database failure after upload",
			code: models.CodeInternal,
			setup: func(t *testing.T, env *testEnv, in *CreateGameInput) uint {
				require.NoError(t, env.db.Migrator().DropTable(&models.Submission{}))
				return testutil.CreateUser(t, env.db).ID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cat := testutil.CreateCategory(t, env.db, "Arcade")
			in := CreateGameInput{
				Title:       "Doomed",
				CategoryID:  cat.ID,
				Tags:        []string{"fresh-tag"},
				Cover:       pngFile(t, "cover.png"),
				Screenshots: []MediaFile{*pngFile(t, "a.png"), *pngFile(t, "b.png")},
			}
			creatorID := tt.setup(t, env, &in)

			_, err := NewGameService(env.contentDeps()).Create(context.Background(), creatorID, in)
			requireCode(t, err, tt.code)

			assert.Zero(t, env.count(t, &models.Game{}))
			assert.Zero(t, env.count(t, &models.Tag{}))
			if env.db.Migrator().HasTable(&models.Submission{}) {
				assert.Zero(t, env.count(t, &models.Submission{}))
			}
			assert.Zero(t, env.store.Len(), "uploads must be rolled back")
		})
	}
}

func TestGameService_CreateRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Sports")

	_, err := NewGameService(env.contentDeps()).Create(context.Background(), user.ID, CreateGameInput{
		CategoryID: cat.ID,
		GameURL:    "not a url",
		FileSize:   -1,
	})
	appErr := requireCode(t, err, models.CodeValidation)
	fields := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "game_url", "file_size"}, fields)
}

func TestTutorialService_CreateWithCover(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Rendering")

	tut, err := NewTutorialService(env.contentDeps()).Create(context.Background(), user.ID, CreateTutorialInput{
		Title:      "Signed distance fields",
		Excerpt:    "Shapes from math",
		Content:    "Long form content",
		ReadTime:   12,
		CategoryID: cat.ID,
		Cover:      pngFile(t, "sdf.png"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tut.CoverImageURL)
	require.NotNil(t, tut.Category)
	assert.Equal(t, cat.ID, tut.Category.ID)

	var sub models.Submission
	require.NoError(t, env.db.Where("tutorial_id = ?", tut.ID).First(&sub).Error)
	assert.Equal(t, "Tutorial: Signed distance fields", sub.Title)
}

func TestSnippetService_CreateArchivesCode(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	pub := &publisherStub{publishFn: func(_ context.Context, s archive.Snippet) (string, error) {
		return "https://github.com/devhub/snippets/blob/main/" + archive.Path(s), nil
	}}

	snippet, err := NewSnippetService(env.contentDeps(), pub).Create(context.Background(), user.ID, CreateSnippetInput{
		Title:    "Fixed timestep",
		Code:     "for acc >= dt { step(dt) }",
		Language: "go",
		Tags:     []string{"loop"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pub.calls)
	assert.Contains(t, snippet.CodeURL, snippet.PID)

	var stored models.Snippet
	require.NoError(t, env.db.First(&stored, snippet.ID).Error)
	assert.Equal(t, snippet.CodeURL, stored.CodeURL)
}

func TestSnippetService_ArchiveFailureIsNotReturned(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	pub := &publisherStub{publishFn: func(context.Context, archive.Snippet) (string, error) {
		return "", errors.New("github down")
	}}

	snippet, err := NewSnippetService(env.contentDeps(), pub).Create(context.Background(), user.ID, CreateSnippetInput{
		Title:    "Coyote time",
		Code:     "if grounded || since < 0.1 { jump() }",
		Language: "go",
	})
	require.NoError(t, err)
	assert.Empty(t, snippet.CodeURL)
	assert.Equal(t, int64(1), env.count(t, &models.Submission{}))
}

func TestContentService_ListForcesApproved(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	for i := 0; i < 3; i++ {
		testutil.CreateSnippet(t, env.db, user, models.StatusApproved)
	}
	testutil.CreateSnippet(t, env.db, user, models.StatusPending)
	testutil.CreateSnippet(t, env.db, user, models.StatusRejected)

	svc := NewSnippetService(env.contentDeps(), nil)
	page, err := svc.List(context.Background(), repository.ContentFilter{Status: models.StatusPending}, models.NewPageRequest(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 10, page.Meta.Limit)
	for _, s := range page.Data {
		assert.Equal(t, models.StatusApproved, s.Status)
	}

	mine, err := svc.ByCreator(context.Background(), user.ID, models.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(5), mine.Meta.Total)

	empty, err := svc.List(context.Background(), repository.ContentFilter{Search: "no such thing"}, models.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
	assert.Zero(t, empty.Meta.TotalPages)
}

func TestContentService_FeaturedIsCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Shooter")

	var games []*models.Game
	for i := 0; i < 4; i++ {
		g := testutil.CreateGame(t, env.db, user, cat, models.StatusApproved)
		require.NoError(t, env.db.Model(g).UpdateColumn("downloads", (i+1)*100).Error)
		games = append(games, g)
	}
	svc := NewGameService(env.contentDeps())

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, games[3].ID, featured[0].ID)
	assert.Equal(t, games[2].ID, featured[1].ID)
	assert.Equal(t, games[1].ID, featured[2].ID)
	assert.True(t, env.mr.Exists(cache.FeaturedKey("game")))

	require.NoError(t, env.db.Model(games[0]).UpdateColumn("downloads", 10000).Error)
	cached, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, games[3].ID, cached[0].ID)

	_, err = svc.SetStatus(ctx, games[3].PID, models.StatusRejected)
	require.NoError(t, err)
	assert.False(t, env.mr.Exists(cache.FeaturedKey("game")))

	fresh, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 3)
	assert.Equal(t, games[0].ID, fresh[0].ID)
}

func TestContentService_FeaturedWithoutRedis(t *testing.T) {
	env := newTestEnv(t)
	deps := env.contentDeps()
	deps.Redis = nil

	featured, err := NewTutorialService(deps).Featured(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, featured)
	assert.Empty(t, featured)
}

func TestContentService_Similar(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Networking")
	base := testutil.CreateTutorial(t, env.db, user, cat, models.StatusApproved)
	other := testutil.CreateTutorial(t, env.db, user, cat, models.StatusApproved)
	testutil.CreateTutorial(t, env.db, user, cat, models.StatusPending)

	similar, err := NewTutorialService(env.contentDeps()).Similar(context.Background(), base.PID)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, other.ID, similar[0].ID)

	_, err = NewSnippetService(env.contentDeps(), nil).Similar(context.Background(), "any")
	requireCode(t, err, models.CodeValidation)
}

func TestContentService_AddInteraction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db)
	snippet := testutil.CreateSnippet(t, env.db, user, models.StatusApproved)
	svc := NewSnippetService(env.contentDeps(), nil)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.AddInteraction(ctx, snippet.PID, models.InteractionLikes))
		}()
	}
	wg.Wait()

	err := svc.AddInteraction(ctx, snippet.PID, models.InteractionStars)
	requireCode(t, err, models.CodeValidation)
	err = svc.AddInteraction(ctx, "missing", models.InteractionLikes)
	requireCode(t, err, models.CodeNotFound)

	var got models.Snippet
	require.NoError(t, env.db.First(&got, snippet.ID).Error)
	assert.Equal(t, int64(n), got.Likes)
	assert.Zero(t, got.Views)
	assert.Zero(t, got.Forks)
}

func TestContentService_UpdatePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	stranger := testutil.CreateUser(t, env.db)
	moderator := testutil.CreateUser(t, env.db, models.RoleModerator)
	snippet := testutil.CreateSnippet(t, env.db, owner, models.StatusPending)
	svc := NewSnippetService(env.contentDeps(), nil)

	title := "Renamed"
	_, err := svc.Update(ctx, stranger.ID, snippet.ID, UpdateSnippetInput{Title: &title})
	requireCode(t, err, models.CodeForbidden)

	updated, err := svc.Update(ctx, owner.ID, snippet.ID, UpdateSnippetInput{Title: &title, Tags: []string{"Physics"}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, []string{"physics"}, tagNames(updated.Tags))

	lang := "rust"
	updated, err = svc.Update(ctx, moderator.ID, snippet.ID, UpdateSnippetInput{Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "rust", updated.Language)
	assert.Equal(t, []string{"physics"}, tagNames(updated.Tags))
}

func TestContentService_UpdateMovesCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	arcade := testutil.CreateCategory(t, env.db, "Arcade")
	puzzle := testutil.CreateCategory(t, env.db, "Puzzle")

	game := testutil.CreateGame(t, env.db, owner, arcade, models.StatusApproved)
	games := NewGameService(env.contentDeps())
	updated, err := games.Update(ctx, owner.ID, game.ID, UpdateGameInput{CategoryID: &puzzle.ID, Tags: []string{"logic"}})
	require.NoError(t, err)
	assert.Equal(t, puzzle.ID, updated.CategoryID)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Puzzle", updated.Category.Name)
	assert.Equal(t, []string{"logic"}, tagNames(updated.Tags))

	var rawGame models.Game
	require.NoError(t, env.db.First(&rawGame, game.ID).Error)
	assert.Equal(t, puzzle.ID, rawGame.CategoryID)

	tutorial := testutil.CreateTutorial(t, env.db, owner, arcade, models.StatusApproved)
	tutorials := NewTutorialService(env.contentDeps())
	_, err = tutorials.Update(ctx, owner.ID, tutorial.ID, UpdateTutorialInput{CategoryID: &puzzle.ID})
	require.NoError(t, err)

	var rawTutorial models.Tutorial
	require.NoError(t, env.db.First(&rawTutorial, tutorial.ID).Error)
	assert.Equal(t, puzzle.ID, rawTutorial.CategoryID)
}

func TestContentService_DeleteKeepsSubmissionAndRemovesMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db)
	stranger := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Idle")
	svc := NewGameService(env.contentDeps())

	game, err := svc.Create(ctx, owner.ID, CreateGameInput{
		Title:      "Clicker",
		CategoryID: cat.ID,
		Cover:      pngFile(t, "c.png"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, env.store.Len())

	requireCode(t, svc.Delete(ctx, stranger.ID, game.ID), models.CodeForbidden)
	require.NoError(t, svc.Delete(ctx, owner.ID, game.ID))

	_, err = svc.GetByID(ctx, game.ID)
	requireCode(t, err, models.CodeNotFound)
	assert.Zero(t, env.store.Len())
	assert.Equal(t, int64(1), env.count(t, &models.Submission{}))
}

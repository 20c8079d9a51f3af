package service

import (
	"context"
	"testing"
	"time"

	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type pendingGame struct {
	game *models.Game
	sub  *models.Submission
}

func newPendingGame(t *testing.T, env *testEnv) pendingGame {
	t.Helper()
	user := testutil.CreateUser(t, env.db)
	cat := testutil.CreateCategory(t, env.db, "Puzzle")
	game := testutil.CreateGame(t, env.db, user, cat, models.StatusPending)
	sub := testutil.CreateSubmission(t, env.db, models.KindGame, game.ID, game.Title, user.ID)
	return pendingGame{game: game, sub: sub}
}

func reloadGame(t *testing.T, env *testEnv, id uint) models.Game {
	t.Helper()
	var g models.Game
	require.NoError(t, env.db.First(&g, id).Error)
	return g
}

func reloadSubmission(t *testing.T, env *testEnv, id uint) models.Submission {
	t.Helper()
	var s models.Submission
	require.NoError(t, env.db.First(&s, id).Error)
	return s
}

func TestSubmissionService_Approve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := newPendingGame(t, env)
	require.NoError(t, env.mr.Set(cache.FeaturedKey("game"), "[]"))

	svc := NewSubmissionService(env.repos, env.rdb)
	res, err := svc.Resolve(ctx, p.sub.ID, ResolveInput{Status: models.StatusApproved, Comment: ptr("  nice work ")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, res.Status)
	require.NotNil(t, res.ResolvedAt)
	assert.False(t, res.ResolvedAt.Before(res.SubmittedAt))
	require.NotNil(t, res.Comment)
	assert.Equal(t, "nice work", *res.Comment)
	require.NotNil(t, res.Game)
	assert.Equal(t, models.StatusApproved, res.Game.Status)

	game := reloadGame(t, env, p.game.ID)
	assert.Equal(t, models.StatusApproved, game.Status)
	assert.Equal(t, p.game.Title, game.Title)
	assert.False(t, env.mr.Exists(cache.FeaturedKey("game")), "featured cache must be invalidated")
}

func TestSubmissionService_RejectRequiresComment(t *testing.T) {
	for _, comment := range []*string{nil, ptr(""), ptr("   ")} {
		env := newTestEnv(t)
		p := newPendingGame(t, env)

		_, err := NewSubmissionService(env.repos, env.rdb).Resolve(context.Background(), p.sub.ID,
			ResolveInput{Status: models.StatusRejected, Comment: comment})
		requireCode(t, err, models.CodeValidation)

		assert.Equal(t, models.StatusPending, reloadGame(t, env, p.game.ID).Status)
		sub := reloadSubmission(t, env, p.sub.ID)
		assert.Equal(t, models.StatusPending, sub.Status)
		assert.Nil(t, sub.ResolvedAt)
		assert.Nil(t, sub.Comment)
	}
}

func TestSubmissionService_Reject(t *testing.T) {
	env := newTestEnv(t)
	p := newPendingGame(t, env)

	res, err := NewSubmissionService(env.repos, env.rdb).Resolve(context.Background(), p.sub.ID,
		ResolveInput{Status: models.StatusRejected, Comment: ptr("missing license")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, res.Status)
	assert.Equal(t, models.StatusRejected, reloadGame(t, env, p.game.ID).Status)
}

func TestSubmissionService_ResolveTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := newPendingGame(t, env)
	svc := NewSubmissionService(env.repos, env.rdb)

	_, err := svc.Resolve(ctx, p.sub.ID, ResolveInput{Status: models.StatusApproved})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, p.sub.ID, ResolveInput{Status: models.StatusRejected, Comment: ptr("changed my mind")})
	requireCode(t, err, models.CodeConflict)
	assert.Equal(t, models.StatusApproved, reloadGame(t, env, p.game.ID).Status)
	assert.Equal(t, models.StatusApproved, reloadSubmission(t, env, p.sub.ID).Status)
}

func TestSubmissionService_ResolveRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	p := newPendingGame(t, env)
	svc := NewSubmissionService(env.repos, env.rdb)

	tests := []struct {
		name string
		id   uint
		in   ResolveInput
		code string
	}{
		{"unknown status", p.sub.ID, ResolveInput{Status: "archived"}, models.CodeValidation},
		{"back to pending", p.sub.ID, ResolveInput{Status: models.StatusPending}, models.CodeValidation},
		{"missing submission", 9999, ResolveInput{Status: models.StatusApproved}, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), tt.id, tt.in)
			requireCode(t, err, tt.code)
			assert.Equal(t, models.StatusPending, reloadGame(t, env, p.game.ID).Status)
		})
	}
}

func TestSubmissionService_ResolveMalformedSubmission(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db)
	snippet := testutil.CreateSnippet(t, env.db, user, models.StatusPending)

	// Typed as a game but pointing at a snippet.
	sub := testutil.CreateSubmission(t, env.db, models.KindSnippet, snippet.ID, snippet.Title, user.ID)
	require.NoError(t, env.db.Model(sub).UpdateColumn("type", models.KindGame).Error)

	orphan := &models.Submission{Title: "Game: gone", Type: models.KindGame, SubmittedAt: time.Now().UTC(), CreatorID: user.ID}
	require.NoError(t, env.db.Create(orphan).Error)

	svc := NewSubmissionService(env.repos, env.rdb)
	for _, id := range []uint{sub.ID, orphan.ID} {
		_, err := svc.Resolve(context.Background(), id, ResolveInput{Status: models.StatusApproved})
		requireCode(t, err, models.CodeValidation)
		assert.Equal(t, models.StatusPending, reloadSubmission(t, env, id).Status)
	}

	var got models.Snippet
	require.NoError(t, env.db.First(&got, snippet.ID).Error)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestSubmissionService_ResolvedAtNeverPrecedesSubmittedAt(t *testing.T) {
	env := newTestEnv(t)
	p := newPendingGame(t, env)
	svc := NewSubmissionService(env.repos, env.rdb)
	svc.now = func() time.Time { return p.sub.SubmittedAt.Add(-time.Hour) }

	res, err := svc.Resolve(context.Background(), p.sub.ID, ResolveInput{Status: models.StatusApproved})
	require.NoError(t, err)
	require.NotNil(t, res.ResolvedAt)
	assert.False(t, res.ResolvedAt.Before(res.SubmittedAt))
}

func TestSubmissionService_CreateListUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, models.RoleAdmin)
	snippet := testutil.CreateSnippet(t, env.db, user, models.StatusPending)
	svc := NewSubmissionService(env.repos, env.rdb)

	sub, err := svc.Create(ctx, CreateSubmissionInput{Type: models.KindSnippet, ContentPID: snippet.PID})
	require.NoError(t, err)
	assert.Equal(t, "Snippet: "+snippet.Title, sub.Title)
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Equal(t, user.ID, sub.CreatorID)

	_, err = svc.Create(ctx, CreateSubmissionInput{Type: models.KindSnippet, ContentPID: snippet.PID})
	requireCode(t, err, models.CodeConflict)
	_, err = svc.Create(ctx, CreateSubmissionInput{Type: models.KindTutorial, ContentPID: snippet.PID})
	requireCode(t, err, models.CodeNotFound)
	_, err = svc.Create(ctx, CreateSubmissionInput{Type: "video", ContentPID: snippet.PID})
	requireCode(t, err, models.CodeValidation)

	page, err := svc.List(ctx, repository.SubmissionFilter{Status: models.StatusPending}, models.NewPageRequest(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, sub.ID, page.Data[0].ID)

	_, err = svc.List(ctx, repository.SubmissionFilter{Type: "video"}, models.NewPageRequest(1, 10))
	requireCode(t, err, models.CodeValidation)

	updated, err := svc.Update(ctx, sub.ID, UpdateSubmissionInput{Title: ptr("Snippet: renamed"), Comment: ptr("queued")})
	require.NoError(t, err)
	assert.Equal(t, "Snippet: renamed", updated.Title)
	assert.Equal(t, models.StatusPending, updated.Status)

	require.NoError(t, svc.Delete(ctx, sub.ID))
	requireCode(t, svc.Delete(ctx, sub.ID), models.CodeNotFound)

	var still models.Snippet
	require.NoError(t, env.db.First(&still, snippet.ID).Error)
}

func TestSubmissionService_CreateBelongsToContentOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	author := testutil.CreateUser(t, env.db)
	category := testutil.CreateCategory(t, env.db, "Arcade")
	game := testutil.CreateGame(t, env.db, author, category, models.StatusPending)
	svc := NewSubmissionService(env.repos, env.rdb)

	sub, err := svc.Create(ctx, CreateSubmissionInput{Type: models.KindGame, ContentPID: game.PID, Title: "Filed by staff"})
	require.NoError(t, err)
	assert.Equal(t, author.ID, sub.CreatorID)
	assert.NotEqual(t, admin.ID, sub.CreatorID)
	assert.Equal(t, "Filed by staff", sub.Title)
}

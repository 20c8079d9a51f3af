package service

import (
	"context"
	"strings"
	"testing"

	"devhub/internal/models"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewTaxonomyService(env.repos)

	role, err := svc.CreateRole(ctx, NameInput{Name: " Reviewer "})
	require.NoError(t, err)
	assert.Equal(t, "reviewer", role.Name)
	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)

	_, err = svc.CreateCategory(ctx, NameInput{Name: "  "})
	requireCode(t, err, models.CodeValidation)
	cat, err := svc.CreateCategory(ctx, NameInput{Name: "Simulation"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, NameInput{Name: "Simulation"})
	requireCode(t, err, models.CodeConflict)
	got, err := svc.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Simulation", got.Name)

	tag, err := svc.CreateTag(ctx, NameInput{Name: "Pixel-Art"})
	require.NoError(t, err)
	assert.Equal(t, "pixel-art", tag.Name)
	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))
	requireCode(t, svc.DeleteTag(ctx, tag.ID), models.CodeNotFound)
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	_, err = svc.GetCategory(ctx, cat.ID)
	requireCode(t, err, models.CodeNotFound)

	testutil.CreateCategory(t, env.db, "Kept")
	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestStorageService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewStorageService(env.store, 16)

	obj, err := svc.Upload(ctx, MediaFile{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hello")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(obj.Key, "-notes.txt"))

	stat, err := svc.Stat(ctx, obj.Key)
	require.NoError(t, err)
	assert.Equal(t, obj.URL, stat.URL)

	_, err = svc.Upload(ctx, MediaFile{Name: "big.bin", Data: make([]byte, 17)})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.Upload(ctx, MediaFile{Name: "empty.bin"})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.Stat(ctx, "../etc/passwd")
	requireCode(t, err, models.CodeValidation)

	require.NoError(t, svc.Delete(ctx, obj.Key))
	_, err = svc.Stat(ctx, obj.Key)
	requireCode(t, err, models.CodeNotFound)
	requireCode(t, svc.Delete(ctx, obj.Key), models.CodeNotFound)

	_, err = NewStorageService(nil, 0).Upload(ctx, MediaFile{Name: "a", Data: []byte("a")})
	requireCode(t, err, models.CodeInternal)
}

func TestTaxonomyService_NameLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewTaxonomyService(env.repos)

	appErr := requireCode(t, func() error { _, err := svc.CreateCategory(ctx, NameInput{Name: " \t "}); return err }(), models.CodeValidation)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "name", appErr.Fields[0].Field)
	assert.Equal(t, "is required", appErr.Fields[0].Message)

	// The limit counts characters, not bytes.
	wide := strings.Repeat("é", 60)
	cat, err := svc.CreateCategory(ctx, NameInput{Name: "  " + wide + "  "})
	require.NoError(t, err)
	assert.Equal(t, wide, cat.Name)

	appErr = requireCode(t, func() error { _, err := svc.CreateTag(ctx, NameInput{Name: strings.Repeat("x", 61)}); return err }(), models.CodeValidation)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "must be at most 60", appErr.Fields[0].Message)
}

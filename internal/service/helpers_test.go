package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"devhub/internal/archive"
	"devhub/internal/media"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/storage"
	"devhub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMediaBase = "http://cdn.test/devhub-media"

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	store *storage.MemoryStore
	mr    *miniredis.Miniredis
	rdb   *redis.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &testEnv{
		db:    db,
		repos: repository.New(db),
		store: storage.NewMemoryStore(testMediaBase),
		mr:    mr,
		rdb:   rdb,
	}
}

func (e *testEnv) contentDeps() ContentDeps {
	return ContentDeps{
		Repos:       e.repos,
		Store:       e.store,
		Media:       media.NewProcessor(1),
		Redis:       e.rdb,
		FeaturedTTL: time.Minute,
	}
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func pngFile(t *testing.T, name string) *MediaFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		for y := 0; y < 24; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 10), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &MediaFile{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

func requireCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

// publisherStub is a stub for SnippetPublisher.
type publisherStub struct {
	publishFn func(context.Context, archive.Snippet) (string, error)
	calls     int
}

func (p *publisherStub) Publish(ctx context.Context, s archive.Snippet) (string, error) {
	p.calls++
	return p.publishFn(ctx, s)
}

package service

import (
	"context"
	"fmt"
	"time"

	"devhub/internal/cache"
	"devhub/internal/media"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"
	"devhub/internal/storage"

	"github.com/redis/go-redis/v9"
)

// FeaturedLimit caps every featured list.
const FeaturedLimit = 3

// MediaFile is an uploaded file before normalisation.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ContentDeps are the collaborators shared by the content services.
type ContentDeps struct {
	Repos       *repository.Repositories
	Store       storage.Store
	Media       *media.Processor
	Redis       *redis.Client
	FeaturedTTL time.Duration
}

// ContentService implements the operations common to every content kind.
type ContentService[T repository.Content] struct {
	kind models.ContentKind
	deps ContentDeps
	repo func(*repository.Repositories) repository.ContentRepository[T]
	now  func() time.Time
}

func newContentService[T repository.Content](kind models.ContentKind, deps ContentDeps, repo func(*repository.Repositories) repository.ContentRepository[T]) *ContentService[T] {
	if deps.Media == nil {
		deps.Media = media.NewProcessor(0)
	}
	return &ContentService[T]{kind: kind, deps: deps, repo: repo, now: time.Now}
}

// Kind returns the content kind served.
func (s *ContentService[T]) Kind() models.ContentKind {
	return s.kind
}

func itemOf[T repository.Content](v *T) models.Item {
	return any(v).(models.Item)
}

// GetByID returns an item of any status.
func (s *ContentService[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	return s.repo(s.deps.Repos).GetByID(ctx, id)
}

// GetByPID returns an item of any status by its public id.
func (s *ContentService[T]) GetByPID(ctx context.Context, pid string) (*T, error) {
	return s.repo(s.deps.Repos).GetByPID(ctx, pid)
}

// List returns approved items matching filter. The status filter is always
// forced to approved.
func (s *ContentService[T]) List(ctx context.Context, filter repository.ContentFilter, page models.PageRequest) (*models.Paginated[T], error) {
	filter.Status = models.StatusApproved
	filter.Tags = repository.NormalizeTagNames(filter.Tags)
	items, total, err := s.repo(s.deps.Repos).List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(items, page, total), nil
}

// ByCreator lists every item of one creator regardless of status.
func (s *ContentService[T]) ByCreator(ctx context.Context, creatorID uint, page models.PageRequest) (*models.Paginated[T], error) {
	items, total, err := s.repo(s.deps.Repos).List(ctx, repository.ContentFilter{CreatorID: creatorID}, page)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(items, page, total), nil
}

// Featured returns the top approved items by the kind's featured counter.
func (s *ContentService[T]) Featured(ctx context.Context) ([]T, error) {
	var items []T
	cached, err := cache.CacheAside(ctx, s.deps.Redis, cache.FeaturedKey(string(s.kind)), &items, s.deps.FeaturedTTL, func() error {
		var err error
		items, err = s.repo(s.deps.Repos).Featured(ctx, FeaturedLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	result := "miss"
	if cached {
		result = "hit"
	}
	observability.FeaturedCache.WithLabelValues(string(s.kind), result).Inc()
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Similar returns up to FeaturedLimit approved items sharing the category of pid.
func (s *ContentService[T]) Similar(ctx context.Context, pid string) ([]T, error) {
	if !s.kind.HasCategory() {
		return nil, models.NewValidationError(fmt.Sprintf("%s items have no category", s.kind.Label()))
	}
	item, err := s.GetByPID(ctx, pid)
	if err != nil {
		return nil, err
	}
	it := itemOf(item)
	return s.repo(s.deps.Repos).SameCategory(ctx, it.CategoryRef(), it.GetID(), FeaturedLimit)
}

// AddInteraction increments one counter of the item identified by pid.
func (s *ContentService[T]) AddInteraction(ctx context.Context, pid string, field models.InteractionField) error {
	if !s.kind.AllowsInteraction(field) {
		return models.NewValidationError(fmt.Sprintf("%q is not a valid interaction for %s items, expected one of %v",
			field, s.kind, s.kind.Interactions()))
	}
	if err := s.deps.Repos.Counters.Increment(ctx, s.kind, pid, field); err != nil {
		return err
	}
	observability.Interactions.WithLabelValues(string(s.kind), string(field)).Inc()
	return nil
}

// SetStatus changes the moderation status of an item directly.
func (s *ContentService[T]) SetStatus(ctx context.Context, pid string, status models.ModerationStatus) (*repository.StatusUpdateResult, error) {
	res, err := s.deps.Repos.Status.UpdateStatus(ctx, s.kind, pid, status)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, s.deps.Redis, cache.FeaturedKey(string(s.kind)))
	return res, nil
}

// Delete removes the item and, after commit, its stored media. The linked
// submission is kept.
func (s *ContentService[T]) Delete(ctx context.Context, actorID, id uint) error {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	it := itemOf(item)
	if err := s.authorize(ctx, actorID, it.OwnerID()); err != nil {
		return err
	}

	if err := s.repo(s.deps.Repos).Delete(ctx, item); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.deps.Redis, cache.FeaturedKey(string(s.kind)))
	s.deleteMedia(ctx, it.MediaURLs())
	return nil
}

// authorize allows the owner and admins or moderators.
func (s *ContentService[T]) authorize(ctx context.Context, actorID, ownerID uint) error {
	if actorID != 0 && actorID == ownerID {
		return nil
	}
	return requireStaff(ctx, s.deps.Repos, actorID)
}

func (s *ContentService[T]) deleteMedia(ctx context.Context, urls []string) {
	if s.deps.Store == nil {
		return
	}
	for _, u := range urls {
		key, ok := s.deps.Store.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := s.deps.Store.Delete(ctx, key); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete stored media", "kind", s.kind, "key", key, "error", err)
		}
	}
}

// createRequest carries the kind-specific parts of a create call.
type createRequest[T repository.Content] struct {
	creatorID  uint
	categoryID uint
	tags       []string
	media      []MediaFile
	// build returns the new row given the public URLs of media, in order.
	build func(urls []string) *T
}

// create persists a new item and its pending submission in one transaction.
// Uploads are deleted again unless the transaction commits.
func (s *ContentService[T]) create(ctx context.Context, req createRequest[T]) (*T, error) {
	repos := s.deps.Repos
	exists, err := repos.Users.Exists(ctx, req.creatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", req.creatorID)
	}
	if s.kind.HasCategory() {
		if req.categoryID == 0 {
			return nil, models.NewValidationError("category_id is required")
		}
		if _, err := repos.Categories.GetByID(ctx, req.categoryID); err != nil {
			return nil, err
		}
	}

	images := make([]*media.Image, 0, len(req.media))
	for _, f := range req.media {
		img, err := s.deps.Media.Normalize(f.Name, f.ContentType, f.Data)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	scope := storage.NewUploadScope(s.deps.Store)
	defer scope.Close(ctx)

	urls := make([]string, 0, len(images))
	for _, img := range images {
		if s.deps.Store == nil {
			return nil, models.NewInternalError(fmt.Errorf("object storage is not configured"))
		}
		obj, err := scope.Put(ctx, img.Name, img.ContentType, img.Data)
		if err != nil {
			return nil, models.NewInternalError(fmt.Errorf("upload %s: %w", img.Name, err))
		}
		urls = append(urls, obj.URL)
	}

	item := req.build(urls)
	err = repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		tags, err := tx.Tags.FindOrCreate(ctx, req.tags)
		if err != nil {
			return err
		}
		if err := s.repo(tx).Create(ctx, item); err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := s.repo(tx).ReplaceTags(ctx, item, tags); err != nil {
				return err
			}
		}

		it := itemOf(item)
		submission := &models.Submission{
			Title:       s.kind.SubmissionTitle(it.GetTitle()),
			Status:      models.StatusPending,
			SubmittedAt: s.now().UTC(),
			CreatorID:   req.creatorID,
		}
		submission.Attach(s.kind, it.GetID())
		return tx.Submissions.Create(ctx, submission)
	})
	if err != nil {
		return nil, asAppError(err)
	}
	scope.Commit()

	observability.ContentCreated.WithLabelValues(string(s.kind)).Inc()
	it := itemOf(item)
	middleware.Logger.InfoContext(ctx, "content submitted",
		"kind", s.kind, "pid", it.GetPID(), "creator_id", req.creatorID, "uploads", len(urls))

	return s.GetByID(ctx, it.GetID())
}

// update applies fields and, when tags is non-nil, replaces the tag set.
func (s *ContentService[T]) update(ctx context.Context, actorID, id uint, fields map[string]any, tags []string) (*T, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, itemOf(item).OwnerID()); err != nil {
		return nil, err
	}

	err = s.deps.Repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := s.repo(tx).Update(ctx, item, fields); err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		found, err := tx.Tags.FindOrCreate(ctx, tags)
		if err != nil {
			return err
		}
		return s.repo(tx).ReplaceTags(ctx, item, found)
	})
	if err != nil {
		return nil, asAppError(err)
	}
	cache.Invalidate(ctx, s.deps.Redis, cache.FeaturedKey(string(s.kind)))
	return s.GetByID(ctx, id)
}

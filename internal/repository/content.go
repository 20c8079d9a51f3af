package repository

import (
	"context"
	"fmt"

	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Content is the set of content models sharing the generic repository.
type Content interface {
	models.Game | models.Snippet | models.Tutorial
}

// ContentFilter narrows a content listing. Zero values disable a filter.
type ContentFilter struct {
	Status     models.ModerationStatus
	CreatorID  uint
	CategoryID uint
	Tags       []string
	Search     string
	Engine     string
	Language   string
}

// ContentRepository defines persistence operations shared by games, snippets and tutorials.
type ContentRepository[T Content] interface {
	Create(ctx context.Context, item *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	GetByPID(ctx context.Context, pid string) (*T, error)
	List(ctx context.Context, filter ContentFilter, page models.PageRequest) ([]T, int64, error)
	Featured(ctx context.Context, limit int) ([]T, error)
	SameCategory(ctx context.Context, categoryID, excludeID uint, limit int) ([]T, error)
	Update(ctx context.Context, item *T, fields map[string]any) error
	ReplaceTags(ctx context.Context, item *T, tags []models.Tag) error
	Delete(ctx context.Context, item *T) error
}

type contentRepository[T Content] struct {
	db   *gorm.DB
	kind models.ContentKind
}

// NewContentRepository returns a ContentRepository for the given kind.
func NewContentRepository[T Content](db *gorm.DB, kind models.ContentKind) ContentRepository[T] {
	return &contentRepository[T]{db: db, kind: kind}
}

// searchColumns are matched case-insensitively by the search filter.
var searchColumns = map[models.ContentKind][2]string{
	models.KindGame:     {"title", "description"},
	models.KindSnippet:  {"title", "description"},
	models.KindTutorial: {"title", "excerpt"},
}

func (r *contentRepository[T]) table() string {
	return r.kind.Table()
}

func (r *contentRepository[T]) withDetails(db *gorm.DB) *gorm.DB {
	db = db.Preload("Creator").Preload("Tags")
	if r.kind.HasCategory() {
		db = db.Preload("Category")
	}
	return db
}

func (r *contentRepository[T]) Create(ctx context.Context, item *T) error {
	defer observability.TrackQuery("insert", r.table())()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(fmt.Sprintf("%s already exists", r.kind.Label()))
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	defer observability.TrackQuery("select", r.table())()
	var item T
	if err := r.withDetails(r.db.WithContext(ctx)).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, r.kind.Label(), id)
	}
	return &item, nil
}

func (r *contentRepository[T]) GetByPID(ctx context.Context, pid string) (*T, error) {
	defer observability.TrackQuery("select", r.table())()
	var item T
	if err := r.withDetails(r.db.WithContext(ctx)).Where("pid = ?", pid).First(&item).Error; err != nil {
		return nil, notFoundOr(err, r.kind.Label(), pid)
	}
	return &item, nil
}

// filtered applies every non-zero filter to db.
func (r *contentRepository[T]) filtered(f ContentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		table := r.table()
		if f.Status != "" {
			db = db.Where(table+".status = ?", f.Status)
		}
		if f.CreatorID != 0 {
			db = db.Where(table+".creator_id = ?", f.CreatorID)
		}
		if f.CategoryID != 0 && r.kind.HasCategory() {
			db = db.Where(table+".category_id = ?", f.CategoryID)
		}
		if f.Engine != "" {
			db = db.Where("LOWER("+table+".engine) = LOWER(?)", f.Engine)
		}
		if f.Language != "" {
			db = db.Where("LOWER("+table+".language) = LOWER(?)", f.Language)
		}
		if f.Search != "" {
			cols := searchColumns[r.kind]
			pattern := likePattern(f.Search)
			db = db.Where(
				fmt.Sprintf(`(LOWER(%[1]s.%[2]s) LIKE ? ESCAPE '\' OR LOWER(%[1]s.%[3]s) LIKE ? ESCAPE '\')`, table, cols[0], cols[1]),
				pattern, pattern,
			)
		}
		if len(f.Tags) > 0 {
			db = db.Where(table+".id IN (?)", r.taggedWithAll(f.Tags))
		}
		return db
	}
}

// taggedWithAll selects the ids of rows carrying every tag in names.
func (r *contentRepository[T]) taggedWithAll(names []string) *gorm.DB {
	joinTable := string(r.kind) + "_tags"
	fk := string(r.kind) + "_id"
	return r.db.Table(joinTable+" AS jt").
		Select("jt."+fk).
		Joins("JOIN tags ON tags.id = jt.tag_id").
		Where("tags.name IN ?", names).
		Group("jt."+fk).
		Having("COUNT(DISTINCT tags.id) = ?", len(names))
}

func (r *contentRepository[T]) List(ctx context.Context, filter ContentFilter, page models.PageRequest) ([]T, int64, error) {
	defer observability.TrackQuery("list", r.table())()

	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Scopes(r.filtered(filter)).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	items := make([]T, 0, page.Limit)
	if total == 0 {
		return items, 0, nil
	}
	err := r.withDetails(r.db.WithContext(ctx)).
		Scopes(r.filtered(filter), paginate(page)).
		Order(r.table() + ".created_at DESC").
		Order(r.table() + ".id DESC").
		Find(&items).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *contentRepository[T]) Featured(ctx context.Context, limit int) ([]T, error) {
	defer observability.TrackQuery("featured", r.table())()
	var items []T
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("status = ?", models.StatusApproved).
		Order(string(r.kind.FeaturedBy()) + " DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *contentRepository[T]) SameCategory(ctx context.Context, categoryID, excludeID uint, limit int) ([]T, error) {
	defer observability.TrackQuery("similar", r.table())()
	var items []T
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("status = ? AND category_id = ? AND id <> ?", models.StatusApproved, categoryID, excludeID).
		Order("views DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *contentRepository[T]) Update(ctx context.Context, item *T, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	defer observability.TrackQuery("update", r.table())()
	// Preloaded associations would otherwise be saved back over the new
	// foreign keys.
	if err := r.db.WithContext(ctx).Model(item).Omit(clause.Associations).Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository[T]) ReplaceTags(ctx context.Context, item *T, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(item).Association("Tags").Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository[T]) Delete(ctx context.Context, item *T) error {
	defer observability.TrackQuery("delete", r.table())()
	res := r.db.WithContext(ctx).Select("Tags").Delete(item)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInternalError(fmt.Errorf("%s delete affected no rows", r.kind.Label()))
	}
	return nil
}

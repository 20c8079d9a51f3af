package repository

import (
	"context"

	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionFilter narrows a submission listing.
type SubmissionFilter struct {
	Status models.ModerationStatus
	Type   models.ContentKind
}

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter, page models.PageRequest) ([]models.Submission, int64, error)
	Update(ctx context.Context, s *models.Submission, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository returns a new SubmissionRepository implementation.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func withLinkedContent(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator").
		Preload("Game", func(db *gorm.DB) *gorm.DB { return db.Select("id", "pid", "title", "status") }).
		Preload("Snippet", func(db *gorm.DB) *gorm.DB { return db.Select("id", "pid", "title", "status") }).
		Preload("Tutorial", func(db *gorm.DB) *gorm.DB { return db.Select("id", "pid", "title", "status") })
}

func (r *submissionRepository) Create(ctx context.Context, s *models.Submission) error {
	defer observability.TrackQuery("insert", "submissions")()
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Content already has a submission")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	defer observability.TrackQuery("select", "submissions")()
	var s models.Submission
	if err := withLinkedContent(r.db.WithContext(ctx)).First(&s, id).Error; err != nil {
		return nil, notFoundOr(err, "Submission", id)
	}
	return &s, nil
}

// GetForUpdate loads the submission and locks its row until the surrounding
// transaction ends.
func (r *submissionRepository) GetForUpdate(ctx context.Context, id uint) (*models.Submission, error) {
	defer observability.TrackQuery("select_for_update", "submissions")()
	var s models.Submission
	err := withLinkedContent(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Submission", id)
	}
	return &s, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter, page models.PageRequest) ([]models.Submission, int64, error) {
	defer observability.TrackQuery("list", "submissions")()

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			db = db.Where("type = ?", filter.Type)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	items := make([]models.Submission, 0, page.Limit)
	if total == 0 {
		return items, 0, nil
	}
	err := withLinkedContent(r.db.WithContext(ctx)).
		Scopes(scope, paginate(page)).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *submissionRepository) Update(ctx context.Context, s *models.Submission, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	defer observability.TrackQuery("update", "submissions")()
	if err := r.db.WithContext(ctx).Model(s).Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "submissions")()
	res := r.db.WithContext(ctx).Delete(&models.Submission{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Submission", id)
	}
	return nil
}

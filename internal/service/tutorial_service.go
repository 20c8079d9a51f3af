package service

import (
	"context"

	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"
)

// CreateTutorialInput is the payload of a new tutorial.
type CreateTutorialInput struct {
	Title      string   `json:"title" form:"title" validate:"required,max=200"`
	Excerpt    string   `json:"excerpt" form:"excerpt" validate:"max=500"`
	Content    string   `json:"content" form:"content" validate:"required"`
	ReadTime   int      `json:"read_time" form:"read_time" validate:"gte=0,lte=600"`
	CategoryID uint     `json:"category_id" form:"category_id" validate:"required"`
	Tags       []string `json:"tags" form:"tags" validate:"max=10,dive,max=60"`

	Cover *MediaFile `json:"-" form:"-"`
}

// UpdateTutorialInput holds the editable tutorial fields.
type UpdateTutorialInput struct {
	Title      *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Excerpt    *string  `json:"excerpt" validate:"omitempty,max=500"`
	Content    *string  `json:"content" validate:"omitempty,min=1"`
	ReadTime   *int     `json:"read_time" validate:"omitempty,gte=0,lte=600"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags" validate:"omitempty,max=10,dive,max=60"`
}

// TutorialService manages tutorials.
type TutorialService struct {
	*ContentService[models.Tutorial]
}

// NewTutorialService returns a TutorialService.
func NewTutorialService(deps ContentDeps) *TutorialService {
	return &TutorialService{newContentService(models.KindTutorial, deps, func(r *repository.Repositories) repository.ContentRepository[models.Tutorial] {
		return r.Tutorials
	})}
}

// Create stores a pending tutorial and its submission.
func (s *TutorialService) Create(ctx context.Context, creatorID uint, in CreateTutorialInput) (*models.Tutorial, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var files []MediaFile
	if in.Cover != nil {
		files = append(files, *in.Cover)
	}

	return s.create(ctx, createRequest[models.Tutorial]{
		creatorID:  creatorID,
		categoryID: in.CategoryID,
		tags:       in.Tags,
		media:      files,
		build: func(urls []string) *models.Tutorial {
			tutorial := &models.Tutorial{
				Title:      in.Title,
				Excerpt:    in.Excerpt,
				Content:    in.Content,
				ReadTime:   in.ReadTime,
				Status:     models.StatusPending,
				CreatorID:  creatorID,
				CategoryID: in.CategoryID,
			}
			if len(urls) > 0 {
				tutorial.CoverImageURL = urls[0]
			}
			return tutorial
		},
	})
}

// Update changes the editable fields of a tutorial.
func (s *TutorialService) Update(ctx context.Context, actorID, id uint, in UpdateTutorialInput) (*models.Tutorial, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	setIf(fields, "title", in.Title)
	setIf(fields, "excerpt", in.Excerpt)
	setIf(fields, "content", in.Content)
	setIf(fields, "read_time", in.ReadTime)
	if in.CategoryID != nil {
		if _, err := s.deps.Repos.Categories.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *in.CategoryID
	}
	return s.update(ctx, actorID, id, fields, in.Tags)
}

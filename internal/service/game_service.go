package service

import (
	"context"

	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"

	"gorm.io/datatypes"
)

// CreateGameInput is the payload of a new game.
type CreateGameInput struct {
	Title       string   `json:"title" form:"title" validate:"required,max=200"`
	Excerpt     string   `json:"excerpt" form:"excerpt" validate:"max=500"`
	Description string   `json:"description" form:"description"`
	Version     string   `json:"version" form:"version" validate:"max=40"`
	FileSize    int64    `json:"file_size" form:"file_size" validate:"gte=0"`
	GameURL     string   `json:"game_url" form:"game_url" validate:"omitempty,url"`
	CategoryID  uint     `json:"category_id" form:"category_id" validate:"required"`
	Tags        []string `json:"tags" form:"tags" validate:"max=10,dive,max=60"`

	Cover       *MediaFile  `json:"-" form:"-"`
	Screenshots []MediaFile `json:"-" form:"-" validate:"max=8"`
}

// UpdateGameInput holds the editable game fields. Nil fields are left unchanged.
type UpdateGameInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Excerpt     *string  `json:"excerpt" validate:"omitempty,max=500"`
	Description *string  `json:"description"`
	Version     *string  `json:"version" validate:"omitempty,max=40"`
	FileSize    *int64   `json:"file_size" validate:"omitempty,gte=0"`
	GameURL     *string  `json:"game_url" validate:"omitempty,url"`
	CategoryID  *uint    `json:"category_id"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=60"`
}

// GameService manages games.
type GameService struct {
	*ContentService[models.Game]
}

// NewGameService returns a GameService.
func NewGameService(deps ContentDeps) *GameService {
	return &GameService{newContentService(models.KindGame, deps, func(r *repository.Repositories) repository.ContentRepository[models.Game] {
		return r.Games
	})}
}

// Create stores a pending game and its submission. The cover comes first in
// the uploaded media, followed by the screenshots.
func (s *GameService) Create(ctx context.Context, creatorID uint, in CreateGameInput) (*models.Game, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	files := make([]MediaFile, 0, len(in.Screenshots)+1)
	if in.Cover != nil {
		files = append(files, *in.Cover)
	}
	files = append(files, in.Screenshots...)

	return s.create(ctx, createRequest[models.Game]{
		creatorID:  creatorID,
		categoryID: in.CategoryID,
		tags:       in.Tags,
		media:      files,
		build: func(urls []string) *models.Game {
			game := &models.Game{
				Title:       in.Title,
				Excerpt:     in.Excerpt,
				Description: in.Description,
				Version:     in.Version,
				FileSize:    in.FileSize,
				GameURL:     in.GameURL,
				Status:      models.StatusPending,
				CreatorID:   creatorID,
				CategoryID:  in.CategoryID,
				Screenshots: datatypes.JSONSlice[string]{},
			}
			if in.Cover != nil {
				game.CoverImageURL, urls = urls[0], urls[1:]
			}
			game.Screenshots = append(game.Screenshots, urls...)
			return game
		},
	})
}

// Update changes the editable fields of a game. Only the owner, admins and
// moderators may update it.
func (s *GameService) Update(ctx context.Context, actorID, id uint, in UpdateGameInput) (*models.Game, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	setIf(fields, "title", in.Title)
	setIf(fields, "excerpt", in.Excerpt)
	setIf(fields, "description", in.Description)
	setIf(fields, "version", in.Version)
	setIf(fields, "file_size", in.FileSize)
	setIf(fields, "game_url", in.GameURL)
	if in.CategoryID != nil {
		if _, err := s.deps.Repos.Categories.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *in.CategoryID
	}
	return s.update(ctx, actorID, id, fields, in.Tags)
}

func setIf[V any](fields map[string]any, column string, v *V) {
	if v != nil {
		fields[column] = *v
	}
}

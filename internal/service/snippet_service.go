package service

import (
	"context"

	"devhub/internal/archive"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"
)

// SnippetPublisher archives snippet source outside the database.
type SnippetPublisher interface {
	Publish(ctx context.Context, s archive.Snippet) (string, error)
}

// CreateSnippetInput is the payload of a new snippet.
type CreateSnippetInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	Code        string   `json:"code" validate:"required,max=100000"`
	Language    string   `json:"language" validate:"required,max=40"`
	Engine      string   `json:"engine" validate:"max=60"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=60"`
}

// UpdateSnippetInput holds the editable snippet fields.
type UpdateSnippetInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	Code        *string  `json:"code" validate:"omitempty,min=1,max=100000"`
	Language    *string  `json:"language" validate:"omitempty,min=1,max=40"`
	Engine      *string  `json:"engine" validate:"omitempty,max=60"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=60"`
}

// SnippetService manages snippets.
type SnippetService struct {
	*ContentService[models.Snippet]
	publisher SnippetPublisher
}

// NewSnippetService returns a SnippetService. publisher may be nil.
func NewSnippetService(deps ContentDeps, publisher SnippetPublisher) *SnippetService {
	return &SnippetService{
		ContentService: newContentService(models.KindSnippet, deps, func(r *repository.Repositories) repository.ContentRepository[models.Snippet] {
			return r.Snippets
		}),
		publisher: publisher,
	}
}

// Create stores a pending snippet and its submission, then archives the
// code when a publisher is configured. Archive failures are only logged.
func (s *SnippetService) Create(ctx context.Context, creatorID uint, in CreateSnippetInput) (*models.Snippet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	snippet, err := s.create(ctx, createRequest[models.Snippet]{
		creatorID: creatorID,
		tags:      in.Tags,
		build: func([]string) *models.Snippet {
			return &models.Snippet{
				Title:       in.Title,
				Description: in.Description,
				Code:        in.Code,
				Language:    in.Language,
				Engine:      in.Engine,
				Status:      models.StatusPending,
				CreatorID:   creatorID,
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.archive(ctx, snippet)
	return snippet, nil
}

func (s *SnippetService) archive(ctx context.Context, snippet *models.Snippet) {
	if s.publisher == nil {
		return
	}
	author := ""
	if snippet.Creator != nil {
		author = snippet.Creator.Username
	}
	url, err := s.publisher.Publish(ctx, archive.Snippet{
		PID:      snippet.PID,
		Title:    snippet.Title,
		Language: snippet.Language,
		Code:     snippet.Code,
		Author:   author,
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "snippet archive failed", "pid", snippet.PID, "error", err)
		return
	}
	if err := s.deps.Repos.Snippets.Update(ctx, snippet, map[string]any{"code_url": url}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store snippet archive url", "pid", snippet.PID, "error", err)
		return
	}
	snippet.CodeURL = url
}

// Update changes the editable fields of a snippet.
func (s *SnippetService) Update(ctx context.Context, actorID, id uint, in UpdateSnippetInput) (*models.Snippet, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	setIf(fields, "title", in.Title)
	setIf(fields, "description", in.Description)
	setIf(fields, "code", in.Code)
	setIf(fields, "language", in.Language)
	setIf(fields, "engine", in.Engine)
	return s.update(ctx, actorID, id, fields, in.Tags)
}

package service

import (
	"context"
	"strings"

	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"
)

// NameInput is the payload for creating a role, category or tag.
type NameInput struct {
	Name string `json:"name" validate:"required,max=60"`
}

// TaxonomyService manages roles, categories and tags.
type TaxonomyService struct {
	repos *repository.Repositories
}

// NewTaxonomyService returns a TaxonomyService.
func NewTaxonomyService(repos *repository.Repositories) *TaxonomyService {
	return &TaxonomyService{repos: repos}
}

func cleanName(in NameInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	return in.Name, nil
}

func (s *TaxonomyService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.repos.Roles.List(ctx)
}

// CreateRole adds a role. Names are stored lowercase.
func (s *TaxonomyService) CreateRole(ctx context.Context, in NameInput) (*models.Role, error) {
	name, err := cleanName(in)
	if err != nil {
		return nil, err
	}
	role := &models.Role{Name: strings.ToLower(name)}
	if err := s.repos.Roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories.List(ctx)
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.repos.Categories.GetByID(ctx, id)
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, in NameInput) (*models.Category, error) {
	name, err := cleanName(in)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name}
	if err := s.repos.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uint) error {
	return s.repos.Categories.Delete(ctx, id)
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.repos.Tags.List(ctx)
}

func (s *TaxonomyService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.repos.Tags.GetByID(ctx, id)
}

// CreateTag adds a tag, normalised like the tags attached to content.
func (s *TaxonomyService) CreateTag(ctx context.Context, in NameInput) (*models.Tag, error) {
	if _, err := cleanName(in); err != nil {
		return nil, err
	}
	names := repository.NormalizeTagNames([]string{in.Name})
	tag := &models.Tag{Name: names[0]}
	if err := s.repos.Tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, id uint) error {
	return s.repos.Tags.Delete(ctx, id)
}

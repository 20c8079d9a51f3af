package seed

import (
	"fmt"
	"os"
	"strings"

	"devhub/internal/models"
	"devhub/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCategories are seeded when no fixture file is given.
var DefaultCategories = []string{
	"Action", "Adventure", "Arcade", "Platformer", "Puzzle", "Racing",
	"RPG", "Shooter", "Simulation", "Strategy", "Graphics", "Game Design",
}

// DefaultTags are attached at random to seeded content.
var DefaultTags = []string{
	"pixel-art", "2d", "3d", "multiplayer", "physics", "shaders", "procedural",
	"ai", "audio", "ui", "networking", "open-source",
}

// categoryFixture is the layout of a categories YAML file:
//
//	categories:
//	  - name: Arcade
//	  - name: Puzzle
type categoryFixture struct {
	Categories []struct {
		Name string `yaml:"name"`
	} `yaml:"categories"`
}

// ParseCategories decodes a categories fixture. Blank and repeated names are
// dropped.
func ParseCategories(data []byte) ([]string, error) {
	var fx categoryFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse categories fixture: %w", err)
	}
	seen := make(map[string]bool, len(fx.Categories))
	names := make([]string, 0, len(fx.Categories))
	for _, c := range fx.Categories {
		name := strings.TrimSpace(c.Name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("categories fixture defines no categories")
	}
	return names, nil
}

// LoadCategoriesFile reads a categories fixture from disk.
func LoadCategoriesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories fixture: %w", err)
	}
	return ParseCategories(data)
}

// Categories inserts the named categories that do not exist yet and returns
// all of them.
func Categories(db *gorm.DB, names []string, dryRun bool) ([]models.Category, error) {
	if dryRun {
		out := make([]models.Category, len(names))
		for i, n := range names {
			out[i] = models.Category{ID: uint(i + 1), Name: n}
		}
		return out, nil
	}
	rows := make([]models.Category, len(names))
	for i, n := range names {
		rows[i] = models.Category{Name: n}
	}
	if len(rows) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return nil, err
		}
	}
	var out []models.Category
	err := db.Where("name IN ?", names).Order("id").Find(&out).Error
	return out, err
}

// Tags inserts the normalised tag names that do not exist yet and returns
// all of them.
func Tags(db *gorm.DB, names []string, dryRun bool) ([]models.Tag, error) {
	names = repository.NormalizeTagNames(names)
	if dryRun {
		out := make([]models.Tag, len(names))
		for i, n := range names {
			out[i] = models.Tag{ID: uint(i + 1), Name: n}
		}
		return out, nil
	}
	rows := make([]models.Tag, len(names))
	for i, n := range names {
		rows[i] = models.Tag{Name: n}
	}
	if len(rows) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return nil, err
		}
	}
	var out []models.Tag
	err := db.Where("name IN ?", names).Order("id").Find(&out).Error
	return out, err
}

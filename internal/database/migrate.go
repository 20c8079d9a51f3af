package database

import (
	"fmt"
	"log/slog"

	"devhub/internal/middleware"
	"devhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltinRoles are created by every migration run.
var BuiltinRoles = []string{models.RoleAdmin, models.RoleModerator}

// Migrate brings the schema up to date and seeds the built-in roles.
// It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return SeedRoles(db)
}

// SeedRoles inserts the built-in roles that do not exist yet.
func SeedRoles(db *gorm.DB) error {
	for _, name := range BuiltinRoles {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Role{Name: name})
		if res.Error != nil {
			return fmt.Errorf("failed to seed role %q: %w", name, res.Error)
		}
		if res.RowsAffected > 0 {
			middleware.Logger.Info("Seeded role", slog.String("role", name))
		}
	}
	return nil
}

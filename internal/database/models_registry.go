package database

import "devhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Referenced tables come before the tables that point at them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Role{},
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Game{},
		&models.Snippet{},
		&models.Tutorial{},
		&models.Submission{},
	}
}

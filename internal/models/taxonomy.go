package models

// Category groups games and tutorials.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:80;uniqueIndex;not null" json:"name"`
}

// Tag is a free-form label attached to any content item.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:60;uniqueIndex;not null" json:"name"`
}

// Role grants access to privileged endpoints.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:40;uniqueIndex;not null" json:"name"`
}

// Built-in role names.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

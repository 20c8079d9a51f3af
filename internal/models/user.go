package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SocialLinks holds the optional profile links of a user.
type SocialLinks struct {
	Website  string `json:"website,omitempty"`
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// User represents an account on the hub.
type User struct {
	ID            uint                             `gorm:"primaryKey" json:"id"`
	PID           string                           `gorm:"column:pid;size:32;uniqueIndex;not null" json:"pid"`
	Username      string                           `gorm:"size:60;uniqueIndex;not null" json:"username"`
	Email         string                           `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password      string                           `json:"-"`
	Bio           string                           `gorm:"type:text" json:"bio"`
	Links         datatypes.JSONType[SocialLinks]  `json:"links"`
	AvatarURL     string                           `gorm:"type:text" json:"avatar_url"`
	CoverImageURL string                           `gorm:"type:text" json:"cover_image_url"`
	GitHubID      *int64                           `gorm:"column:github_id;uniqueIndex" json:"github_id,omitempty"`
	LastLoginAt   *time.Time                       `json:"last_login_at,omitempty"`
	Roles         []Role                           `gorm:"many2many:user_roles;" json:"roles"`
	CreatedAt     time.Time                        `json:"created_at"`
	UpdatedAt     time.Time                        `json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.PID == "" {
		u.PID = NewPID()
	}
	return nil
}

// RoleNames returns the names of the roles assigned to the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user holds the role with the given id.
func (u *User) HasRole(roleID uint) bool {
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user's role set intersects names.
func (u *User) HasAnyRole(names ...string) bool {
	for _, r := range u.Roles {
		for _, n := range names {
			if r.Name == n {
				return true
			}
		}
	}
	return false
}

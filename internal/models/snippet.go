package models

import (
	"time"

	"gorm.io/gorm"
)

// Snippet is a short piece of source code shared with the community.
type Snippet struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	PID         string           `gorm:"column:pid;size:32;uniqueIndex;not null" json:"pid"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Code        string           `gorm:"type:text;not null" json:"code"`
	Language    string           `gorm:"size:40;index" json:"language"`
	Engine      string           `gorm:"size:60;index" json:"engine"`
	CodeURL     string           `gorm:"type:text" json:"code_url,omitempty"`
	Status      ModerationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Views       int64            `gorm:"not null;default:0" json:"views"`
	Likes       int64            `gorm:"not null;default:0" json:"likes"`
	Forks       int64            `gorm:"not null;default:0" json:"forks"`
	CreatorID   uint             `gorm:"not null;index" json:"creator_id"`
	Creator     *User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Tags        []Tag            `gorm:"many2many:snippet_tags;" json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (s *Snippet) BeforeCreate(_ *gorm.DB) error {
	if s.PID == "" {
		s.PID = NewPID()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}

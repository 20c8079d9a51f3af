package models

import (
	"time"

	"gorm.io/gorm"
)

// Tutorial is a long-form article.
type Tutorial struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	PID           string           `gorm:"column:pid;size:32;uniqueIndex;not null" json:"pid"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Excerpt       string           `gorm:"type:text" json:"excerpt"`
	Content       string           `gorm:"type:text;not null" json:"content"`
	ReadTime      int              `json:"read_time"`
	CoverImageURL string           `gorm:"type:text" json:"cover_image_url"`
	Status        ModerationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Views         int64            `gorm:"not null;default:0" json:"views"`
	Likes         int64            `gorm:"not null;default:0" json:"likes"`
	CreatorID     uint             `gorm:"not null;index" json:"creator_id"`
	Creator       *User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CategoryID    uint             `gorm:"not null;index" json:"category_id"`
	Category      *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags          []Tag            `gorm:"many2many:tutorial_tags;" json:"tags"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (t *Tutorial) BeforeCreate(_ *gorm.DB) error {
	if t.PID == "" {
		t.PID = NewPID()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return nil
}

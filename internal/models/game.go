package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Game is a downloadable game published on the hub.
type Game struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	PID           string                      `gorm:"column:pid;size:32;uniqueIndex;not null" json:"pid"`
	Title         string                      `gorm:"size:200;not null" json:"title"`
	Excerpt       string                      `gorm:"type:text" json:"excerpt"`
	Description   string                      `gorm:"type:text" json:"description"`
	Version       string                      `gorm:"size:40" json:"version"`
	FileSize      int64                       `json:"file_size"`
	CoverImageURL string                      `gorm:"type:text" json:"cover_image_url"`
	Screenshots   datatypes.JSONSlice[string] `json:"screenshots"`
	GameURL       string                      `gorm:"type:text" json:"game_url"`
	Status        ModerationStatus            `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Views         int64                       `gorm:"not null;default:0" json:"views"`
	Likes         int64                       `gorm:"not null;default:0" json:"likes"`
	Stars         int64                       `gorm:"not null;default:0" json:"stars"`
	Downloads     int64                       `gorm:"not null;default:0" json:"downloads"`
	CreatorID     uint                        `gorm:"not null;index" json:"creator_id"`
	Creator       *User                       `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CategoryID    uint                        `gorm:"not null;index" json:"category_id"`
	Category      *Category                   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags          []Tag                       `gorm:"many2many:game_tags;" json:"tags"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a public id and the initial moderation status.
func (g *Game) BeforeCreate(_ *gorm.DB) error {
	if g.PID == "" {
		g.PID = NewPID()
	}
	if g.Status == "" {
		g.Status = StatusPending
	}
	return nil
}

// MediaURLs lists every stored object URL referenced by the game.
func (g *Game) MediaURLs() []string {
	urls := make([]string, 0, len(g.Screenshots)+1)
	if g.CoverImageURL != "" {
		urls = append(urls, g.CoverImageURL)
	}
	return append(urls, g.Screenshots...)
}

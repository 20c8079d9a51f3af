package models

import "time"

// Submission is a moderation request wrapping exactly one content item.
// Exactly one of GameID, SnippetID and TutorialID is set and it matches Type.
type Submission struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Type        ContentKind      `gorm:"type:varchar(16);not null;index" json:"type"`
	Status      ModerationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Comment     *string          `gorm:"type:text" json:"comment"`
	SubmittedAt time.Time        `gorm:"not null;index" json:"submitted_at"`
	ResolvedAt  *time.Time       `json:"resolved_at"`
	CreatorID   uint             `gorm:"not null;index" json:"creator_id"`
	Creator     *User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	GameID      *uint            `gorm:"uniqueIndex" json:"game_id,omitempty"`
	Game        *Game            `gorm:"foreignKey:GameID;constraint:OnDelete:SET NULL;" json:"game,omitempty"`
	SnippetID   *uint            `gorm:"uniqueIndex" json:"snippet_id,omitempty"`
	Snippet     *Snippet         `gorm:"foreignKey:SnippetID;constraint:OnDelete:SET NULL;" json:"snippet,omitempty"`
	TutorialID  *uint            `gorm:"uniqueIndex" json:"tutorial_id,omitempty"`
	Tutorial    *Tutorial        `gorm:"foreignKey:TutorialID;constraint:OnDelete:SET NULL;" json:"tutorial,omitempty"`
}

// LinkedContent reports the kind and pid of the populated content reference.
// ok is false when no reference is loaded.
func (s *Submission) LinkedContent() (kind ContentKind, pid string, ok bool) {
	switch {
	case s.Game != nil:
		return KindGame, s.Game.PID, true
	case s.Snippet != nil:
		return KindSnippet, s.Snippet.PID, true
	case s.Tutorial != nil:
		return KindTutorial, s.Tutorial.PID, true
	}
	return "", "", false
}

// Attach links the submission to a freshly created content row.
func (s *Submission) Attach(kind ContentKind, id uint) {
	s.Type = kind
	switch kind {
	case KindGame:
		s.GameID = &id
	case KindSnippet:
		s.SnippetID = &id
	case KindTutorial:
		s.TutorialID = &id
	}
}

package models

// ModerationStatus is the moderation state shared by content rows and submissions.
type ModerationStatus string

const (
	// StatusPending indicates the item is awaiting review.
	StatusPending ModerationStatus = "pending"
	// StatusApproved indicates the item is publicly visible.
	StatusApproved ModerationStatus = "approved"
	// StatusRejected indicates the item was turned down by a moderator.
	StatusRejected ModerationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ContentKind identifies which content table a row or submission belongs to.
type ContentKind string

const (
	KindGame     ContentKind = "game"
	KindSnippet  ContentKind = "snippet"
	KindTutorial ContentKind = "tutorial"
)

// InteractionField names an interaction counter column.
type InteractionField string

const (
	InteractionViews     InteractionField = "views"
	InteractionLikes     InteractionField = "likes"
	InteractionStars     InteractionField = "stars"
	InteractionDownloads InteractionField = "downloads"
	InteractionForks     InteractionField = "forks"
)

type kindInfo struct {
	label        string
	table        string
	interactions []InteractionField
	featuredBy   InteractionField
	hasCategory  bool
}

var kinds = map[ContentKind]kindInfo{
	KindGame: {
		label:        "Game",
		table:        "games",
		interactions: []InteractionField{InteractionLikes, InteractionViews, InteractionStars, InteractionDownloads},
		featuredBy:   InteractionDownloads,
		hasCategory:  true,
	},
	KindSnippet: {
		label:        "Snippet",
		table:        "snippets",
		interactions: []InteractionField{InteractionLikes, InteractionViews, InteractionForks},
		featuredBy:   InteractionLikes,
	},
	KindTutorial: {
		label:        "Tutorial",
		table:        "tutorials",
		interactions: []InteractionField{InteractionLikes, InteractionViews},
		featuredBy:   InteractionViews,
		hasCategory:  true,
	},
}

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Label is the human readable name, e.g. "Game".
func (k ContentKind) Label() string {
	return kinds[k].label
}

// Table is the relational table backing the kind.
func (k ContentKind) Table() string {
	return kinds[k].table
}

// Interactions returns the counters that may be incremented for the kind.
func (k ContentKind) Interactions() []InteractionField {
	return kinds[k].interactions
}

// AllowsInteraction reports whether field is in the kind's allow-list.
func (k ContentKind) AllowsInteraction(field InteractionField) bool {
	for _, f := range kinds[k].interactions {
		if f == field {
			return true
		}
	}
	return false
}

// FeaturedBy is the counter used to rank featured items.
func (k ContentKind) FeaturedBy() InteractionField {
	return kinds[k].featuredBy
}

// HasCategory reports whether items of the kind belong to a category.
func (k ContentKind) HasCategory() bool {
	return kinds[k].hasCategory
}

// ContentKinds lists every content kind.
func ContentKinds() []ContentKind {
	return []ContentKind{KindGame, KindSnippet, KindTutorial}
}

// SubmissionTitle builds the title of the submission wrapping a content item.
func (k ContentKind) SubmissionTitle(contentTitle string) string {
	return k.Label() + ": " + contentTitle
}

// Model returns an empty model value of the kind, for use with gorm's Model().
func (k ContentKind) Model() any {
	switch k {
	case KindGame:
		return &Game{}
	case KindSnippet:
		return &Snippet{}
	case KindTutorial:
		return &Tutorial{}
	}
	return nil
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerationStatus_Valid(t *testing.T) {
	for _, s := range []ModerationStatus{StatusPending, StatusApproved, StatusRejected} {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []ModerationStatus{"", "archived", "APPROVED"} {
		assert.False(t, s.Valid(), s)
	}
}

func TestContentKind_InteractionAllowList(t *testing.T) {
	tests := []struct {
		kind    ContentKind
		allowed []InteractionField
		denied  []InteractionField
	}{
		{KindGame, []InteractionField{InteractionLikes, InteractionViews, InteractionStars, InteractionDownloads}, []InteractionField{InteractionForks}},
		{KindSnippet, []InteractionField{InteractionLikes, InteractionViews, InteractionForks}, []InteractionField{InteractionStars, InteractionDownloads}},
		{KindTutorial, []InteractionField{InteractionLikes, InteractionViews}, []InteractionField{InteractionStars, InteractionDownloads, InteractionForks}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			for _, f := range tt.allowed {
				assert.True(t, tt.kind.AllowsInteraction(f), f)
			}
			for _, f := range tt.denied {
				assert.False(t, tt.kind.AllowsInteraction(f), f)
			}
			assert.False(t, tt.kind.AllowsInteraction("password"))
		})
	}
}

func TestContentKind_Metadata(t *testing.T) {
	assert.Equal(t, "Game: Pong", KindGame.SubmissionTitle("Pong"))
	assert.Equal(t, "tutorials", KindTutorial.Table())
	assert.Equal(t, InteractionDownloads, KindGame.FeaturedBy())
	assert.Equal(t, InteractionLikes, KindSnippet.FeaturedBy())
	assert.Equal(t, InteractionViews, KindTutorial.FeaturedBy())
	assert.True(t, KindGame.HasCategory())
	assert.False(t, KindSnippet.HasCategory())

	assert.IsType(t, &Snippet{}, KindSnippet.Model())
	assert.Nil(t, ContentKind("video").Model())
	assert.False(t, ContentKind("video").Valid())
	assert.Len(t, ContentKinds(), 3)
}

func TestSubmission_AttachAndLinkedContent(t *testing.T) {
	var s Submission
	_, _, ok := s.LinkedContent()
	assert.False(t, ok)

	s.Attach(KindTutorial, 7)
	assert.Equal(t, KindTutorial, s.Type)
	if assert.NotNil(t, s.TutorialID) {
		assert.Equal(t, uint(7), *s.TutorialID)
	}
	assert.Nil(t, s.GameID)
	assert.Nil(t, s.SnippetID)

	s.Tutorial = &Tutorial{ID: 7, PID: "tut1"}
	kind, pid, ok := s.LinkedContent()
	assert.True(t, ok)
	assert.Equal(t, KindTutorial, kind)
	assert.Equal(t, "tut1", pid)
}

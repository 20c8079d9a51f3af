package service

import (
	"context"
	"strings"
	"time"

	"devhub/internal/cache"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"
	"devhub/internal/validation"

	"github.com/redis/go-redis/v9"
)

// ResolveInput is a moderation decision.
type ResolveInput struct {
	Status  models.ModerationStatus `json:"status" validate:"required,status"`
	Comment *string                 `json:"comment"`
}

// CreateSubmissionInput opens a submission for existing content.
type CreateSubmissionInput struct {
	Type       models.ContentKind `json:"type" validate:"required,kind"`
	ContentPID string             `json:"content_pid" validate:"required"`
	Title      string             `json:"title" validate:"max=255"`
}

// UpdateSubmissionInput holds the editable submission fields.
type UpdateSubmissionInput struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Comment *string `json:"comment"`
}

// SubmissionService runs the moderation workflow.
type SubmissionService struct {
	repos *repository.Repositories
	redis *redis.Client
	now   func() time.Time
}

// NewSubmissionService returns a SubmissionService. rdb may be nil.
func NewSubmissionService(repos *repository.Repositories, rdb *redis.Client) *SubmissionService {
	return &SubmissionService{repos: repos, redis: rdb, now: time.Now}
}

// Resolve approves or rejects a pending submission and propagates the
// decision to the linked content row in the same transaction.
func (s *SubmissionService) Resolve(ctx context.Context, id uint, in ResolveInput) (*models.Submission, error) {
	if !in.Status.Valid() {
		return nil, models.NewValidationError("status must be one of [pending approved rejected]")
	}
	if in.Status == models.StatusPending {
		return nil, models.NewValidationError("a submission can only be resolved to approved or rejected")
	}
	comment := ""
	if in.Comment != nil {
		comment = strings.TrimSpace(*in.Comment)
	}
	if in.Status == models.StatusRejected && comment == "" {
		return nil, models.NewValidationError("a comment is required when rejecting a submission")
	}

	ctx, span := observability.StartSpan(ctx, "submission", "resolve")
	var kind models.ContentKind
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		sub, err := tx.Submissions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sub.Status != models.StatusPending {
			return models.NewConflictError("Submission has already been " + string(sub.Status))
		}

		linked, pid, ok := sub.LinkedContent()
		if !ok || linked != sub.Type {
			return models.NewValidationError("Submission does not reference content of its type")
		}
		kind = linked

		if _, err := tx.Status.UpdateStatus(ctx, kind, pid, in.Status); err != nil {
			return err
		}

		resolvedAt := s.now().UTC()
		if resolvedAt.Before(sub.SubmittedAt) {
			resolvedAt = sub.SubmittedAt
		}
		fields := map[string]any{
			"status":      in.Status,
			"resolved_at": resolvedAt,
		}
		if comment != "" {
			fields["comment"] = comment
		}
		return tx.Submissions.Update(ctx, sub, fields)
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, asAppError(err)
	}

	cache.Invalidate(ctx, s.redis, cache.FeaturedKey(string(kind)))
	observability.SubmissionsResolved.WithLabelValues(string(kind), string(in.Status)).Inc()
	middleware.Logger.InfoContext(ctx, "submission resolved", "submission_id", id, "kind", kind, "status", in.Status)

	return s.repos.Submissions.GetByID(ctx, id)
}

// Create opens a pending submission for content that has none. The
// submission belongs to the content's owner, not to the staff member
// filing it.
func (s *SubmissionService) Create(ctx context.Context, in CreateSubmissionInput) (*models.Submission, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var item models.Item
	switch in.Type {
	case models.KindGame:
		g, err := s.repos.Games.GetByPID(ctx, in.ContentPID)
		if err != nil {
			return nil, err
		}
		item = g
	case models.KindSnippet:
		sn, err := s.repos.Snippets.GetByPID(ctx, in.ContentPID)
		if err != nil {
			return nil, err
		}
		item = sn
	case models.KindTutorial:
		t, err := s.repos.Tutorials.GetByPID(ctx, in.ContentPID)
		if err != nil {
			return nil, err
		}
		item = t
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.Type.SubmissionTitle(item.GetTitle())
	}
	sub := &models.Submission{
		Title:       title,
		Status:      models.StatusPending,
		SubmittedAt: s.now().UTC(),
		CreatorID:   item.OwnerID(),
	}
	sub.Attach(in.Type, item.GetID())
	if err := s.repos.Submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return s.repos.Submissions.GetByID(ctx, sub.ID)
}

// List returns submissions newest first.
func (s *SubmissionService) List(ctx context.Context, filter repository.SubmissionFilter, page models.PageRequest) (*models.Paginated[models.Submission], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("status must be one of [pending approved rejected]")
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, models.NewValidationError("type must be one of [game snippet tutorial]")
	}
	items, total, err := s.repos.Submissions.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(items, page, total), nil
}

// Get returns one submission with its linked content summary.
func (s *SubmissionService) Get(ctx context.Context, id uint) (*models.Submission, error) {
	return s.repos.Submissions.GetByID(ctx, id)
}

// Update changes the title or comment. The status is only changed by Resolve.
func (s *SubmissionService) Update(ctx context.Context, id uint, in UpdateSubmissionInput) (*models.Submission, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	sub, err := s.repos.Submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	setIf(fields, "title", in.Title)
	setIf(fields, "comment", in.Comment)
	if err := s.repos.Submissions.Update(ctx, sub, fields); err != nil {
		return nil, err
	}
	return s.repos.Submissions.GetByID(ctx, id)
}

// Delete removes the submission and leaves its content untouched.
func (s *SubmissionService) Delete(ctx context.Context, id uint) error {
	return s.repos.Submissions.Delete(ctx, id)
}

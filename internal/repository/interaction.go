package repository

import (
	"context"
	"fmt"

	"devhub/internal/models"

	"gorm.io/gorm"
)

// InteractionRepository increments interaction counters.
type InteractionRepository interface {
	Increment(ctx context.Context, kind models.ContentKind, pid string, field models.InteractionField) error
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository returns an InteractionRepository.
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// Increment adds one to field in a single UPDATE. The caller must have
// checked field against the kind's allow-list.
func (r *interactionRepository) Increment(ctx context.Context, kind models.ContentKind, pid string, field models.InteractionField) error {
	if !kind.AllowsInteraction(field) {
		return models.NewValidationError(fmt.Sprintf("invalid interaction field %q", field))
	}
	col := string(field)
	res := r.db.WithContext(ctx).
		Model(kind.Model()).
		Where("pid = ?", pid).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(kind.Label(), pid)
	}
	return nil
}

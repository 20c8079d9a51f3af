package repository

import (
	"context"
	"fmt"

	"devhub/internal/middleware"
	"devhub/internal/models"

	"gorm.io/gorm"
)

// StatusUpdateResult reports a moderation status change on one content row.
type StatusUpdateResult struct {
	Kind         models.ContentKind      `json:"kind"`
	PID          string                  `json:"pid"`
	Status       models.ModerationStatus `json:"status"`
	RowsAffected int64                   `json:"rows_affected"`
}

// StatusUpdater sets the moderation status of any content kind.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, kind models.ContentKind, pid string, status models.ModerationStatus) (*StatusUpdateResult, error)
}

type statusUpdater struct {
	db *gorm.DB
}

// NewStatusUpdater returns a StatusUpdater.
func NewStatusUpdater(db *gorm.DB) StatusUpdater {
	return &statusUpdater{db: db}
}

// UpdateStatus writes only the status column of the row identified by pid.
func (u *statusUpdater) UpdateStatus(ctx context.Context, kind models.ContentKind, pid string, status models.ModerationStatus) (*StatusUpdateResult, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unknown content type %q", kind))
	}
	if !status.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	row := kind.Model()
	if err := u.db.WithContext(ctx).Model(row).Select("id").Where("pid = ?", pid).Take(row).Error; err != nil {
		return nil, notFoundOr(err, kind.Label(), pid)
	}

	res := u.db.WithContext(ctx).Model(row).UpdateColumn("status", status)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewInternalError(fmt.Errorf("%s %s status update affected no rows", kind.Label(), pid))
	}

	result := &StatusUpdateResult{Kind: kind, PID: pid, Status: status, RowsAffected: res.RowsAffected}
	middleware.Logger.InfoContext(ctx, "status updated",
		"kind", result.Kind, "pid", result.PID, "status", result.Status, "rows_affected", result.RowsAffected)
	return result, nil
}

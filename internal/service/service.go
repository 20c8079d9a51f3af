// Package service implements the business rules of the hub on top of the
// repositories.
package service

import (
	"context"
	"errors"

	"devhub/internal/models"
	"devhub/internal/repository"
)

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}

// requireStaff fails with FORBIDDEN unless the user holds the admin or
// moderator role.
func requireStaff(ctx context.Context, repos *repository.Repositories, userID uint) error {
	return requireRole(ctx, repos, userID, models.RoleAdmin, models.RoleModerator)
}

func requireRole(ctx context.Context, repos *repository.Repositories, userID uint, roles ...string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NewUnauthorizedError("User no longer exists")
		}
		return err
	}
	if !user.HasAnyRole(roles...) {
		return models.NewForbiddenError("Insufficient permissions")
	}
	return nil
}

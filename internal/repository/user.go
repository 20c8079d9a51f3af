package repository

import (
	"context"
	"errors"

	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, identifier string) (*models.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page models.PageRequest) ([]models.User, int64, error)
	ListWithRoles(ctx context.Context) ([]models.User, error)
	AddRole(ctx context.Context, user *models.User, role *models.Role) error
	RemoveRole(ctx context.Context, user *models.User, role *models.Role) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// GetByUsername returns (nil, nil) when no user has the username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByLogin matches either the email or the username.
func (r *userRepository) GetByLogin(ctx context.Context, identifier string) (*models.User, error) {
	return r.findOne(ctx, "email = ? OR username = ?", identifier, identifier)
}

// GetByGitHubID returns (nil, nil) when no user is linked to the GitHub account.
func (r *userRepository) GetByGitHubID(ctx context.Context, githubID int64) (*models.User, error) {
	return r.findOne(ctx, "github_id = ?", githubID)
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	defer observability.TrackQuery("update", "users")()
	if err := r.db.WithContext(ctx).Model(user).Updates(fields).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "users")()
	res := r.db.WithContext(ctx).Select("Roles").Delete(&models.User{ID: id})
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return models.NewConflictError("User still owns content")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	defer observability.TrackQuery("list", "users")()
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	users := make([]models.User, 0, page.Limit)
	if err := r.db.WithContext(ctx).Preload("Roles").Scopes(paginate(page)).Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

// ListWithRoles returns every user holding at least one role.
func (r *userRepository) ListWithRoles(ctx context.Context) ([]models.User, error) {
	defer observability.TrackQuery("list", "users")()
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("EXISTS (SELECT 1 FROM user_roles WHERE user_roles.user_id = users.id)").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) AddRole(ctx context.Context, user *models.User, role *models.Role) error {
	if err := r.db.WithContext(ctx).Model(user).Association("Roles").Append(role); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) RemoveRole(ctx context.Context, user *models.User, role *models.Role) error {
	if err := r.db.WithContext(ctx).Model(user).Association("Roles").Delete(role); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

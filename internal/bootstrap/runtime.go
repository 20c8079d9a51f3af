// Package bootstrap prepares the database and cache a process needs before
// it starts serving.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devhub/internal/cache"
	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database, migrates it, connects to Redis and
// ensures the development root admin when enabled. The Redis client is nil
// when Redis is unreachable.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("database migration failed: %w", err)
	}

	r, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache", "error", err)
	} else {
		middleware.Logger.Info("redis connected")
	}

	if err := EnsureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}
	return db, r, nil
}

// EnsureDevRootAdmin creates or promotes the account named by DEV_ROOT_EMAIL
// to admin. It only acts in development with DEV_BOOTSTRAP_ROOT set.
func EnsureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "devhub_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@devhub.local"
	}
	if err := validation.ValidatePassword(cfg.DevRootPassword); err != nil {
		return fmt.Errorf("DEV_ROOT_PASSWORD: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var admin models.Role
		if err := tx.Where("name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
			return fmt.Errorf("find admin role: %w", err)
		}

		var root models.User
		findErr := tx.Preload("Roles").Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			if err := tx.Model(&root).Update("password", string(hashedPassword)).Error; err != nil {
				return err
			}
		}

		if root.HasRole(admin.ID) {
			return nil
		}
		return tx.Model(&root).Association("Roles").Append(&admin)
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development root admin ensured", "email", email)
	return nil
}

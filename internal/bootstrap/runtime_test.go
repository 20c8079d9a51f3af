package bootstrap

import (
	"testing"

	"devhub/internal/config"
	"devhub/internal/models"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func rootConfig() *config.Config {
	return &config.Config{
		Env:              "development",
		DevBootstrapRoot: true,
		DevRootUsername:  "root_admin",
		DevRootEmail:     "Root@DevHub.Local",
		DevRootPassword:  "Root-Passw0rd!x",
	}
}

func TestEnsureDevRootAdmin_CreatesAdmin(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, EnsureDevRootAdmin(rootConfig(), db))
	require.NoError(t, EnsureDevRootAdmin(rootConfig(), db))

	var users []models.User
	require.NoError(t, db.Preload("Roles").Find(&users).Error)
	require.Len(t, users, 1)
	root := users[0]
	assert.Equal(t, "root_admin", root.Username)
	assert.Equal(t, "root@devhub.local", root.Email)
	assert.Equal(t, []string{models.RoleAdmin}, root.RoleNames())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.Password), []byte("Root-Passw0rd!x")))
}

func TestEnsureDevRootAdmin_PromotesExistingAccount(t *testing.T) {
	db := testutil.NewDB(t)
	existing := testutil.CreateUser(t, db, models.RoleModerator)
	cfg := rootConfig()
	cfg.DevRootEmail = existing.Email

	require.NoError(t, EnsureDevRootAdmin(cfg, db))

	var reloaded models.User
	require.NoError(t, db.Preload("Roles").First(&reloaded, existing.ID).Error)
	assert.ElementsMatch(t, []string{models.RoleModerator, models.RoleAdmin}, reloaded.RoleNames())
	assert.Equal(t, existing.Username, reloaded.Username)
}

func TestEnsureDevRootAdmin_Disabled(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"production", func(c *config.Config) { c.Env = "production" }},
		{"flag off", func(c *config.Config) { c.DevBootstrapRoot = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			cfg := rootConfig()
			tt.mutate(cfg)

			require.NoError(t, EnsureDevRootAdmin(cfg, db))

			var count int64
			require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestEnsureDevRootAdmin_RejectsWeakPassword(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := rootConfig()
	cfg.DevRootPassword = "short"

	assert.Error(t, EnsureDevRootAdmin(cfg, db))
	assert.NoError(t, EnsureDevRootAdmin(nil, db))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devhub/internal/auth"
	"devhub/internal/media"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/storage"
	"devhub/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// TokenIssuer issues, verifies and revokes access tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

// GitHubAuthenticator completes the GitHub OAuth flow.
type GitHubAuthenticator interface {
	AuthURL(ctx context.Context) (string, error)
	ConsumeState(ctx context.Context, state string) error
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// RegisterInput is the payload of a new account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	Bio      string `json:"bio" validate:"max=500"`
}

// LoginInput accepts either an email or a username in Login.
type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput holds the editable profile fields.
type UpdateUserInput struct {
	Username *string             `json:"username" validate:"omitempty,username"`
	Email    *string             `json:"email" validate:"omitempty,email,max=255"`
	Bio      *string             `json:"bio" validate:"omitempty,max=500"`
	Links    *models.SocialLinks `json:"links"`
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserService manages accounts, sign-in and role assignment.
type UserService struct {
	repos  *repository.Repositories
	tokens TokenIssuer
	github GitHubAuthenticator
	store  storage.Store
	media  *media.Processor
	now    func() time.Time
}

// NewUserService returns a UserService. github and store may be nil when
// the corresponding features are not configured.
func NewUserService(repos *repository.Repositories, tokens TokenIssuer, github GitHubAuthenticator, store storage.Store, processor *media.Processor) *UserService {
	if processor == nil {
		processor = media.NewProcessor(0)
	}
	return &UserService{repos: repos, tokens: tokens, github: github, store: store, media: processor, now: time.Now}
}

// Register creates an account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.repos.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}
	taken, err := s.repos.Users.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Bio:      in.Bio,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.signIn(ctx, user)
}

// Login checks the password of the account matching the email or username.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByLogin(ctx, strings.TrimSpace(in.Login))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.signIn(ctx, user)
}

// Logout revokes the presented token.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GitHubAuthURL starts the OAuth flow.
func (s *UserService) GitHubAuthURL(ctx context.Context) (string, error) {
	if s.github == nil {
		return "", models.NewValidationError("GitHub login is not configured")
	}
	url, err := s.github.AuthURL(ctx)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

// GitHubLogin completes the OAuth flow. The account is found by GitHub id,
// else linked by email, else created.
func (s *UserService) GitHubLogin(ctx context.Context, code, state string) (*AuthResult, error) {
	if s.github == nil {
		return nil, models.NewValidationError("GitHub login is not configured")
	}
	if code == "" {
		return nil, models.NewValidationError("Missing authorization code")
	}
	if err := s.github.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			return nil, models.NewUnauthorizedError("Invalid OAuth state")
		}
		return nil, models.NewInternalError(err)
	}
	profile, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, models.NewUnauthorizedError("GitHub authentication failed")
	}

	user, err := s.repos.Users.GetByGitHubID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if user == nil && profile.Email != "" {
		user, err = s.repos.Users.GetByEmail(ctx, strings.ToLower(profile.Email))
		if err != nil {
			return nil, err
		}
		if user != nil {
			githubID := profile.ID
			if err := s.repos.Users.Update(ctx, user, map[string]any{"github_id": githubID}); err != nil {
				return nil, err
			}
			user.GitHubID = &githubID
		}
	}
	if user == nil {
		if user, err = s.createFromGitHub(ctx, profile); err != nil {
			return nil, err
		}
	}
	return s.signIn(ctx, user)
}

func (s *UserService) createFromGitHub(ctx context.Context, profile *auth.GitHubUser) (*models.User, error) {
	username, err := s.uniqueUsername(ctx, profile.Login)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(profile.Email)
	if email == "" {
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", profile.ID, profile.Login)
	}
	githubID := profile.ID
	user := &models.User{
		Username:  username,
		Email:     email,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		GitHubID:  &githubID,
		Links: datatypes.NewJSONType(models.SocialLinks{
			Website: profile.Blog,
			GitHub:  profile.HTMLURL,
		}),
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user created from GitHub", "user_id", user.ID, "github_id", githubID)
	return user, nil
}

// uniqueUsername returns base, or base with a numeric suffix, that no
// account uses yet.
func (s *UserService) uniqueUsername(ctx context.Context, base string) (string, error) {
	base = strings.TrimSpace(base)
	if validation.ValidateUsername(base) != nil {
		base = "dev" + gofakeit.DigitN(6)
	}
	candidate := base
	for i := 0; i < 10; i++ {
		taken, err := s.repos.Users.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%s", base, gofakeit.DigitN(4))
	}
	return "", models.NewConflictError("Could not allocate a unique username")
}

// signIn records the login time and issues a token.
func (s *UserService) signIn(ctx context.Context, user *models.User) (*AuthResult, error) {
	now := s.now().UTC()
	if err := s.repos.Users.Update(ctx, user, map[string]any{"last_login_at": now}); err != nil {
		return nil, err
	}
	fresh, err := s.repos.Users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(fresh)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: fresh}, nil
}

// Get returns a user with roles.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.repos.Users.GetByID(ctx, id)
}

// List returns users ordered by id.
func (s *UserService) List(ctx context.Context, page models.PageRequest) (*models.Paginated[models.User], error) {
	users, total, err := s.repos.Users.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(users, page, total), nil
}

// ListWithRoles returns every user holding at least one role.
func (s *UserService) ListWithRoles(ctx context.Context) ([]models.User, error) {
	return s.repos.Users.ListWithRoles(ctx)
}

// FindByToken returns the user a valid token belongs to.
func (s *UserService) FindByToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}
	return s.repos.Users.GetByID(ctx, id)
}

// Update changes a profile. Users may edit themselves; admins may edit anyone.
func (s *UserService) Update(ctx context.Context, actorID, id uint, in UpdateUserInput) (*models.User, error) {
	if err := s.selfOrAdmin(ctx, actorID, id); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Username != nil && *in.Username != user.Username {
		taken, err := s.repos.Users.UsernameTaken(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Username is already taken")
		}
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	setIf(fields, "bio", in.Bio)
	if in.Links != nil {
		fields["links"] = datatypes.NewJSONType(*in.Links)
	}
	if err := s.repos.Users.Update(ctx, user, fields); err != nil {
		return nil, err
	}
	return s.repos.Users.GetByID(ctx, id)
}

// UpdatePictures replaces the avatar and/or cover image. Previous objects
// are deleted once the new URLs are saved.
func (s *UserService) UpdatePictures(ctx context.Context, actorID, id uint, avatar, cover *MediaFile) (*models.User, error) {
	if err := s.selfOrAdmin(ctx, actorID, id); err != nil {
		return nil, err
	}
	if avatar == nil && cover == nil {
		return nil, models.NewValidationError("No file uploaded")
	}
	if s.store == nil {
		return nil, models.NewInternalError(errors.New("object storage is not configured"))
	}
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	type upload struct {
		column string
		file   *MediaFile
		old    string
	}
	uploads := []upload{
		{column: "avatar_url", file: avatar, old: user.AvatarURL},
		{column: "cover_image_url", file: cover, old: user.CoverImageURL},
	}

	scope := storage.NewUploadScope(s.store)
	defer scope.Close(ctx)

	fields := map[string]any{}
	var replaced []string
	for _, u := range uploads {
		if u.file == nil {
			continue
		}
		img, err := s.media.Normalize(u.file.Name, u.file.ContentType, u.file.Data)
		if err != nil {
			return nil, err
		}
		obj, err := scope.Put(ctx, img.Name, img.ContentType, img.Data)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		fields[u.column] = obj.URL
		if u.old != "" {
			replaced = append(replaced, u.old)
		}
	}

	if err := s.repos.Users.Update(ctx, user, fields); err != nil {
		return nil, err
	}
	scope.Commit()

	for _, old := range replaced {
		if key, ok := s.store.KeyFromURL(old); ok {
			if err := s.store.Delete(ctx, key); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to delete replaced picture", "key", key, "error", err)
			}
		}
	}
	return s.repos.Users.GetByID(ctx, id)
}

// Delete removes an account. Users may delete themselves; admins anyone.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if err := s.selfOrAdmin(ctx, actorID, id); err != nil {
		return err
	}
	return s.repos.Users.Delete(ctx, id)
}

// AddRole grants a role. Granting a held role is a validation error.
func (s *UserService) AddRole(ctx context.Context, userID, roleID uint) (*models.User, error) {
	user, role, err := s.userAndRole(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if user.HasRole(role.ID) {
		return nil, models.NewValidationError(fmt.Sprintf("User already has role %q", role.Name))
	}
	if err := s.repos.Users.AddRole(ctx, user, role); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "role granted", "user_id", user.ID, "role", role.Name)
	return s.repos.Users.GetByID(ctx, userID)
}

// RemoveRole revokes a role. Revoking a role the user lacks is a validation error.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleID uint) (*models.User, error) {
	user, role, err := s.userAndRole(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(role.ID) {
		return nil, models.NewValidationError(fmt.Sprintf("User does not have role %q", role.Name))
	}
	if err := s.repos.Users.RemoveRole(ctx, user, role); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "role revoked", "user_id", user.ID, "role", role.Name)
	return s.repos.Users.GetByID(ctx, userID)
}

func (s *UserService) userAndRole(ctx context.Context, userID, roleID uint) (*models.User, *models.Role, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	role, err := s.repos.Roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, nil, err
	}
	return user, role, nil
}

func (s *UserService) selfOrAdmin(ctx context.Context, actorID, targetID uint) error {
	if actorID != 0 && actorID == targetID {
		return nil
	}
	return requireRole(ctx, s.repos, actorID, models.RoleAdmin)
}

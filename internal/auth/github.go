package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const (
	oauthStatePrefix = "oauth_state:"
	oauthStateTTL    = 10 * time.Minute
)

// ErrInvalidState is returned when the callback state is unknown or expired.
var ErrInvalidState = errors.New("auth: invalid oauth state")

// GitHubUser is the subset of the GitHub /user response used to link accounts.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
	HTMLURL   string `json:"html_url"`
	Blog      string `json:"blog"`
}

// GitHubProvider runs the GitHub authorization code flow.
type GitHubProvider struct {
	config *oauth2.Config
	redis  *redis.Client
	// apiURL overrides the REST API root when set.
	apiURL *url.URL
}

// NewGitHubProvider returns a provider for the given OAuth app credentials.
// Issued states are kept in rdb so any instance can complete the callback.
func NewGitHubProvider(clientID, clientSecret, callbackURL string, rdb *redis.Client) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githuboauth.Endpoint,
		},
		redis: rdb,
	}
}

// AuthURL creates a fresh state and returns the GitHub authorization URL.
func (p *GitHubProvider) AuthURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if p.redis != nil {
		if err := p.redis.Set(ctx, oauthStatePrefix+state, "1", oauthStateTTL).Err(); err != nil {
			return "", fmt.Errorf("auth: storing oauth state: %w", err)
		}
	}
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// ConsumeState checks that state was issued by AuthURL and invalidates it.
func (p *GitHubProvider) ConsumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	if p.redis == nil {
		return nil
	}
	n, err := p.redis.Del(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		return fmt.Errorf("auth: reading oauth state: %w", err)
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

// Exchange trades the authorization code for the GitHub profile of the user.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	client := github.NewClient(p.config.Client(ctx, token))
	if p.apiURL != nil {
		client.BaseURL = p.apiURL
	}

	profile, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("auth: fetching GitHub profile: %w", err)
	}
	if profile.GetID() == 0 {
		return nil, errors.New("auth: GitHub returned an invalid user (ID = 0)")
	}
	user := &GitHubUser{
		ID:        profile.GetID(),
		Login:     profile.GetLogin(),
		Name:      profile.GetName(),
		Email:     profile.GetEmail(),
		AvatarURL: profile.GetAvatarURL(),
		Bio:       profile.GetBio(),
		HTMLURL:   profile.GetHTMLURL(),
		Blog:      profile.GetBlog(),
	}

	// Private addresses are only listed by the emails endpoint.
	if user.Email == "" {
		if emails, _, err := client.Users.ListEmails(ctx, nil); err == nil {
			user.Email = primaryEmail(emails)
		}
	}
	return user, nil
}

func primaryEmail(emails []*github.UserEmail) string {
	for _, e := range emails {
		if e.GetPrimary() && e.GetVerified() {
			return e.GetEmail()
		}
	}
	for _, e := range emails {
		if e.GetVerified() {
			return e.GetEmail()
		}
	}
	return ""
}

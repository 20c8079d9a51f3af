package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-github/v66/github"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func newGitHubStub(t *testing.T, user GitHubUser, emails []stubEmail) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gh-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, srv *httptest.Server) (*GitHubProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	p := NewGitHubProvider("client", "secret", "http://localhost/callback", rdb)
	if srv != nil {
		p.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token"}
		api, err := url.Parse(srv.URL + "/")
		require.NoError(t, err)
		p.apiURL = api
	}
	return p, mr
}

func TestGitHubProvider_StateRoundTrip(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()

	authURL, err := p.AuthURL(ctx)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client", parsed.Query().Get("client_id"))

	require.NoError(t, p.ConsumeState(ctx, state))
	assert.ErrorIs(t, p.ConsumeState(ctx, state), ErrInvalidState, "state is single use")
	assert.ErrorIs(t, p.ConsumeState(ctx, ""), ErrInvalidState)
}

func TestGitHubProvider_Exchange(t *testing.T) {
	srv := newGitHubStub(t,
		GitHubUser{ID: 99, Login: "octocat"},
		[]stubEmail{{Email: "old@example.com", Verified: true}, {Email: "octo@example.com", Primary: true, Verified: true}},
	)
	p, _ := newTestProvider(t, srv)

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(99), user.ID)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "octo@example.com", user.Email)
}

func TestGitHubProvider_ExchangeRejectsEmptyProfile(t *testing.T) {
	srv := newGitHubStub(t, GitHubUser{}, nil)
	p, _ := newTestProvider(t, srv)

	_, err := p.Exchange(context.Background(), "code")
	assert.Error(t, err)
}

func TestGitHubProvider_ExchangeKeepsPublicEmail(t *testing.T) {
	srv := newGitHubStub(t,
		GitHubUser{ID: 5, Login: "hubber", Email: "public@example.com", HTMLURL: "https://github.com/hubber"},
		[]stubEmail{{Email: "private@example.com", Primary: true, Verified: true}},
	)
	p, _ := newTestProvider(t, srv)

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "public@example.com", user.Email)
	assert.Equal(t, "https://github.com/hubber", user.HTMLURL)
}

func TestPrimaryEmail(t *testing.T) {
	verified, primary := true, true
	unverified := false
	a, b, c := "a@example.com", "b@example.com", "c@example.com"
	emails := []*github.UserEmail{
		{Email: &a, Primary: &primary, Verified: &unverified},
		{Email: &b, Verified: &verified},
		{Email: &c, Primary: &primary, Verified: &verified},
	}
	assert.Equal(t, "c@example.com", primaryEmail(emails))
	assert.Equal(t, "b@example.com", primaryEmail(emails[:2]))
	assert.Empty(t, primaryEmail(emails[:1]))
}

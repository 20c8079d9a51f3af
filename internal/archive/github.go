// Package archive publishes approved snippet source to a GitHub repository.
package archive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Config configures a GitHubPublisher.
type Config struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	// APIURL overrides the GitHub API root.
	APIURL string
}

// Snippet is the source published for one snippet.
type Snippet struct {
	PID      string
	Title    string
	Language string
	Code     string
	Author   string
}

// GitHubPublisher writes files through the GitHub contents API.
type GitHubPublisher struct {
	client *github.Client
	cfg    Config
}

// NewGitHubPublisher returns a publisher authenticated with a static token.
func NewGitHubPublisher(ctx context.Context, cfg Config) (*GitHubPublisher, error) {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := github.NewClient(oauth2.NewClient(ctx, src))
	if cfg.APIURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("archive: parsing api url: %w", err)
		}
		client.BaseURL = base
	}
	return &GitHubPublisher{client: client, cfg: cfg}, nil
}

// Publish creates the snippet's file and returns its HTML URL.
func (p *GitHubPublisher) Publish(ctx context.Context, s Snippet) (string, error) {
	message := fmt.Sprintf("Add snippet %s: %s", s.PID, s.Title)
	branch := p.cfg.Branch
	res, _, err := p.client.Repositories.CreateFile(ctx, p.cfg.Owner, p.cfg.Repo, Path(s), &github.RepositoryContentFileOptions{
		Message: &message,
		Content: []byte(s.Code),
		Branch:  &branch,
	})
	if err != nil {
		return "", fmt.Errorf("publish snippet: %w", err)
	}
	if res == nil || res.Content == nil {
		return "", errors.New("publish snippet: github returned no content")
	}
	return res.Content.GetHTMLURL(), nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

var extensions = map[string]string{
	"go":         "go",
	"golang":     "go",
	"javascript": "js",
	"typescript": "ts",
	"python":     "py",
	"csharp":     "cs",
	"c#":         "cs",
	"c++":        "cpp",
	"cpp":        "cpp",
	"c":          "c",
	"gdscript":   "gd",
	"lua":        "lua",
	"rust":       "rs",
	"java":       "java",
	"glsl":       "glsl",
	"hlsl":       "hlsl",
}

// Path is the repository path a snippet is published under:
// snippets/<language>/<pid>-<title slug>.<ext>.
func Path(s Snippet) string {
	lang := strings.ToLower(strings.TrimSpace(s.Language))
	ext, ok := extensions[lang]
	if !ok {
		ext = "txt"
	}
	dir := strings.Trim(slugUnsafe.ReplaceAllString(lang, "-"), "-")
	if dir == "" {
		dir = "other"
	}
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s.Title), "-"), "-")
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	name := s.PID
	if slug != "" {
		name += "-" + slug
	}
	return fmt.Sprintf("snippets/%s/%s.%s", dir, name, ext)
}

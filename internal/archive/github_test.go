package archive

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   Snippet
		want string
	}{
		{"known language", Snippet{PID: "abc", Title: "Fast Inverse Sqrt!", Language: "C++"}, "snippets/c/abc-fast-inverse-sqrt.cpp"},
		{"unknown language", Snippet{PID: "abc", Title: "Hello", Language: "Brainfuck"}, "snippets/brainfuck/abc-hello.txt"},
		{"empty title", Snippet{PID: "abc", Language: "go"}, "snippets/go/abc.go"},
		{"no language", Snippet{PID: "abc", Title: "x"}, "snippets/other/abc-x.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Path(tt.in))
		})
	}
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
}

func TestPublish(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody putContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"path":"snippets/go/p1-hello.go","html_url":"https://github.com/acme/snips/blob/main/snippets/go/p1-hello.go"}}`))
	}))
	defer srv.Close()

	pub, err := NewGitHubPublisher(context.Background(), Config{
		Token: "tkn", Owner: "acme", Repo: "snips", APIURL: srv.URL,
	})
	require.NoError(t, err)
	url, err := pub.Publish(context.Background(), Snippet{PID: "p1", Title: "Hello", Language: "go", Code: "package main"})
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/acme/snips/blob/main/snippets/go/p1-hello.go", url)
	assert.Equal(t, "Bearer tkn", gotAuth)
	assert.Equal(t, "/repos/acme/snips/contents/snippets/go/p1-hello.go", gotPath)
	assert.Equal(t, "main", gotBody.Branch)
	assert.Equal(t, "Add snippet p1: Hello", gotBody.Message)
	decoded, err := base64.StdEncoding.DecodeString(gotBody.Content)
	require.NoError(t, err)
	assert.Equal(t, "package main", string(decoded))
}

func TestPublish_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"sha wasn't supplied"}`))
	}))
	defer srv.Close()

	pub, err := NewGitHubPublisher(context.Background(), Config{Token: "t", Owner: "o", Repo: "r", APIURL: srv.URL})
	require.NoError(t, err)
	_, err = pub.Publish(context.Background(), Snippet{PID: "p1", Language: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestNewGitHubPublisher_BadAPIURL(t *testing.T) {
	_, err := NewGitHubPublisher(context.Background(), Config{Token: "t", Owner: "o", Repo: "r", APIURL: "http://[::1"})
	assert.Error(t, err)
}

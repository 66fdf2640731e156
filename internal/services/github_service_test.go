package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHubService(t *testing.T, mux *http.ServeMux) *GitHubService {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return NewGitHubServiceWithClient(client)
}

func TestGitHubServiceGetPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/widgets/pulls/5", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"number":5,"state":"open","body":"- [x] @BrentW","head":{"sha":"deadbeef"}}`))
	})

	details, err := newTestGitHubService(t, mux).GetPullRequest(context.Background(), "octo/widgets", 5)
	require.NoError(t, err)
	assert.Equal(t, "- [x] @BrentW", details.Body)
	assert.Equal(t, "deadbeef", details.HeadSHA)
	assert.Equal(t, "open", details.State)
}

func TestGitHubServiceIsCollaborator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/widgets/collaborators/aergonaut", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /repos/octo/widgets/collaborators/stranger", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	service := newTestGitHubService(t, mux)

	ok, err := service.IsCollaborator(context.Background(), "octo/widgets", "aergonaut")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.IsCollaborator(context.Background(), "octo/widgets", "stranger")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGitHubServiceCreateCommitStatus(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/widgets/statuses/deadbeef", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})

	err := newTestGitHubService(t, mux).CreateCommitStatus(context.Background(), "octo/widgets", "deadbeef", CommitStatus{
		State:       "failure",
		Description: DescriptionNotEnoughReviewers,
		Context:     "code-review/checklist",
	})
	require.NoError(t, err)
	assert.Equal(t, "failure", got["state"])
	assert.Equal(t, DescriptionNotEnoughReviewers, got["description"])
	assert.Equal(t, "code-review/checklist", got["context"])
	_, hasTarget := got["target_url"]
	assert.False(t, hasTarget)
}

func TestGitHubServiceCreateCommitStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/widgets/statuses/deadbeef", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"No commit found for SHA"}`))
	})

	err := newTestGitHubService(t, mux).CreateCommitStatus(context.Background(), "octo/widgets", "deadbeef", CommitStatus{State: "pending"})
	require.Error(t, err)

	var errorResponse *github.ErrorResponse
	assert.ErrorAs(t, err, &errorResponse)
}

func TestGitHubServiceUpdateIssue(t *testing.T) {
	var got map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /repos/octo/widgets/issues/5", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"number":5}`))
	})

	err := newTestGitHubService(t, mux).UpdateIssue(context.Background(), "octo/widgets", 5, IssueUpdate{Assignees: []string{"aergonaut"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"aergonaut"}, got["assignees"])
}

func TestParseRepoFullName(t *testing.T) {
	owner, repo, err := parseRepoFullName("octo/widgets")
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "widgets", repo)

	for _, invalid := range []string{"", "octo", "/widgets", "octo/", "octo/widgets/extra"} {
		_, _, err := parseRepoFullName(invalid)
		assert.Error(t, err, "%q should be rejected", invalid)
	}
}

func TestTruncateDescription(t *testing.T) {
	assert.Equal(t, "short", truncateDescription("short"))

	long := truncateDescription(strings.Repeat("a", 200))
	assert.Len(t, long, 140)
	assert.True(t, strings.HasSuffix(long, "..."))
}

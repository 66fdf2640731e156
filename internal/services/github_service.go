package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// PullRequestDetails is the part of a GitHub pull request reconciliation reads
type PullRequestDetails struct {
	Repository string
	Number     int
	State      string
	Body       string
	HeadSHA    string
}

// CommitStatus is the payload of a commit status
type CommitStatus struct {
	State       string
	Description string
	Context     string
	TargetURL   string
}

// IssueUpdate holds the issue fields reconciliation may change
type IssueUpdate struct {
	Assignees []string
}

// GitHubService talks to the GitHub REST API on behalf of the reconciler
type GitHubService struct {
	client *github.Client
}

// NewGitHubService creates a GitHub client authenticated with token. When
// apiURL is set the client targets that GitHub Enterprise instance.
func NewGitHubService(token, apiURL string) (*GitHubService, error) {
	client := github.NewClient(nil)
	if token != "" {
		client = createAuthenticatedClient(token)
	}

	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
	}

	return NewGitHubServiceWithClient(client), nil
}

func NewGitHubServiceWithClient(client *github.Client) *GitHubService {
	return &GitHubService{client: client}
}

// createAuthenticatedClient creates a GitHub client with the provided token
func createAuthenticatedClient(token string) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return github.NewClient(tc)
}

// GetPullRequest fetches the current body and head commit of a pull request
func (s *GitHubService) GetPullRequest(ctx context.Context, repository string, number int) (*PullRequestDetails, error) {
	owner, repo, err := parseRepoFullName(repository)
	if err != nil {
		return nil, err
	}

	pr, _, err := s.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request %s#%d: %w", repository, number, err)
	}

	return &PullRequestDetails{
		Repository: repository,
		Number:     pr.GetNumber(),
		State:      pr.GetState(),
		Body:       pr.GetBody(),
		HeadSHA:    pr.GetHead().GetSHA(),
	}, nil
}

// IsCollaborator reports whether login is a collaborator on repository
func (s *GitHubService) IsCollaborator(ctx context.Context, repository, login string) (bool, error) {
	owner, repo, err := parseRepoFullName(repository)
	if err != nil {
		return false, err
	}

	isCollaborator, _, err := s.client.Repositories.IsCollaborator(ctx, owner, repo, login)
	if err != nil {
		return false, fmt.Errorf("failed to check collaborator %s on %s: %w", login, repository, err)
	}
	return isCollaborator, nil
}

// CreateCommitStatus sets a status on the commit sha
func (s *GitHubService) CreateCommitStatus(ctx context.Context, repository, sha string, status CommitStatus) error {
	owner, repo, err := parseRepoFullName(repository)
	if err != nil {
		return err
	}

	repoStatus := &github.RepoStatus{
		State:       github.String(status.State),
		Description: github.String(truncateDescription(status.Description)),
		Context:     github.String(status.Context),
	}
	if status.TargetURL != "" {
		repoStatus.TargetURL = github.String(status.TargetURL)
	}

	if _, _, err := s.client.Repositories.CreateStatus(ctx, owner, repo, sha, repoStatus); err != nil {
		return fmt.Errorf("failed to create %s status on %s@%s: %w", status.State, repository, sha, err)
	}
	return nil
}

// UpdateIssue edits the issue backing a pull request
func (s *GitHubService) UpdateIssue(ctx context.Context, repository string, number int, update IssueUpdate) error {
	owner, repo, err := parseRepoFullName(repository)
	if err != nil {
		return err
	}

	request := &github.IssueRequest{}
	if update.Assignees != nil {
		assignees := update.Assignees
		request.Assignees = &assignees
	}

	if _, _, err := s.client.Issues.Edit(ctx, owner, repo, number, request); err != nil {
		return fmt.Errorf("failed to update issue %s#%d: %w", repository, number, err)
	}
	return nil
}

// GitHub rejects status descriptions longer than 140 characters
func truncateDescription(description string) string {
	const limit = 140
	runes := []rune(description)
	if len(runes) <= limit {
		return description
	}
	return string(runes[:limit-3]) + "..."
}

// parseRepoFullName splits "owner/repo"
func parseRepoFullName(fullName string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository name format: %q", fullName)
	}
	return owner, repo, nil
}

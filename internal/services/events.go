package services

import (
	"fmt"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/google/go-github/v57/github"
)

// GitHub webhook event names, as sent in the X-GitHub-Event header
const (
	GitHubEventPullRequest  = "pull_request"
	GitHubEventIssueComment = "issue_comment"
	GitHubEventPing         = "ping"
)

// EventFromPullRequest reduces a pull_request delivery to a reconciliation event
func EventFromPullRequest(payload *github.PullRequestEvent) models.Event {
	pr := payload.GetPullRequest()

	repository := pr.GetBase().GetRepo().GetFullName()
	if repository == "" {
		repository = payload.GetRepo().GetFullName()
	}

	number := pr.GetNumber()
	if number == 0 {
		number = payload.GetNumber()
	}

	key := models.PullRequestKey{Repository: repository, Number: number}

	switch action := payload.GetAction(); action {
	case "opened":
		return models.OpenedEvent{
			PullRequest: key,
			Body:        pr.GetBody(),
			HeadSHA:     pr.GetHead().GetSHA(),
		}
	case "synchronize":
		return models.SynchronizeEvent{PullRequest: key}
	default:
		return models.OtherEvent{PullRequest: key, Action: action}
	}
}

// EventFromIssueComment reduces an issue_comment delivery. Comments on plain
// issues carry no checklist and become OtherEvent.
func EventFromIssueComment(payload *github.IssueCommentEvent) models.Event {
	issue := payload.GetIssue()
	key := models.PullRequestKey{
		Repository: payload.GetRepo().GetFullName(),
		Number:     issue.GetNumber(),
	}

	if !issue.IsPullRequest() {
		return models.OtherEvent{PullRequest: key, Action: "issue_comment." + payload.GetAction()}
	}

	return models.CommentEvent{
		PullRequest: key,
		Commenter:   payload.GetComment().GetUser().GetLogin(),
	}
}

// ParseEvent decodes a raw webhook body of the given GitHub event type
func ParseEvent(eventType string, payload []byte) (models.Event, error) {
	parsed, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", eventType, err)
	}

	switch event := parsed.(type) {
	case *github.PullRequestEvent:
		return EventFromPullRequest(event), nil
	case *github.IssueCommentEvent:
		return EventFromIssueComment(event), nil
	default:
		return nil, fmt.Errorf("unsupported event type %q", eventType)
	}
}

// EventTypeForJob returns the GitHub event name a job's payload was received as
func EventTypeForJob(jobType models.JobType) (string, error) {
	switch jobType {
	case models.JobTypePullRequestEvent:
		return GitHubEventPullRequest, nil
	case models.JobTypeIssueCommentEvent:
		return GitHubEventIssueComment, nil
	default:
		return "", fmt.Errorf("unknown job type %q", jobType)
	}
}

// DecodeJob turns a queued job back into a reconciliation event
func DecodeJob(job *models.Job) (models.Event, error) {
	eventType, err := EventTypeForJob(job.JobType)
	if err != nil {
		return nil, err
	}
	return ParseEvent(eventType, job.Payload)
}

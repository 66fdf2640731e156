package models

import "fmt"

// PullRequestKey identifies a pull request across webhook deliveries
type PullRequestKey struct {
	Repository string
	Number     int
}

func (k PullRequestKey) String() string {
	return fmt.Sprintf("%s#%d", k.Repository, k.Number)
}

// Event is a webhook delivery reduced to what reconciliation needs.
// The set of implementations is closed: OpenedEvent, SynchronizeEvent,
// CommentEvent and OtherEvent.
type Event interface {
	Key() PullRequestKey
	Name() string
	sealed()
}

// OpenedEvent is a pull_request "opened" delivery. Body and HeadSHA come
// straight from the payload.
type OpenedEvent struct {
	PullRequest PullRequestKey
	Body        string
	HeadSHA     string
}

// SynchronizeEvent is a pull_request "synchronize" delivery. The body is
// refetched from GitHub, so only the key is carried.
type SynchronizeEvent struct {
	PullRequest PullRequestKey
}

// CommentEvent is an issue_comment delivery on a pull request
type CommentEvent struct {
	PullRequest PullRequestKey
	Commenter   string
}

// OtherEvent is any delivery that produces no side effects
type OtherEvent struct {
	PullRequest PullRequestKey
	Action      string
}

func (e OpenedEvent) Key() PullRequestKey      { return e.PullRequest }
func (e SynchronizeEvent) Key() PullRequestKey { return e.PullRequest }
func (e CommentEvent) Key() PullRequestKey     { return e.PullRequest }
func (e OtherEvent) Key() PullRequestKey       { return e.PullRequest }

func (OpenedEvent) Name() string      { return "opened" }
func (SynchronizeEvent) Name() string { return "synchronize" }
func (CommentEvent) Name() string     { return "comment" }
func (OtherEvent) Name() string       { return "other" }

func (OpenedEvent) sealed()      {}
func (SynchronizeEvent) sealed() {}
func (CommentEvent) sealed()     {}
func (OtherEvent) sealed()       {}

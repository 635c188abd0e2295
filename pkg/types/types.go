// Package types contains shared data structures used across the auto-assign system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

// PullRequest represents the pull request that triggered the run.
type PullRequest struct {
	Title              string
	Author             string
	RequestedReviewers []string
	RequestedTeams     []string
	Assignees          []string
	Number             int
	Draft              bool
}

// Issue represents the issue that triggered the run.
type Issue struct {
	Title     string
	Author    string
	Assignees []string
	Number    int
}

// Event is the CI event context for one invocation. Exactly one of
// PullRequest or Issue is set for events this tool acts on; both may be nil
// for payloads that carry neither (those invocations are skipped).
type Event struct {
	PullRequest *PullRequest
	Issue       *Issue
	Name        string
	Action      string
	Owner       string
	Repo        string
}

// IsPullRequest reports whether the event carries a pull request payload.
func (e *Event) IsPullRequest() bool {
	return e.PullRequest != nil
}

// Number returns the issue or PR number, or 0 when neither is present.
func (e *Event) Number() int {
	switch {
	case e.PullRequest != nil:
		return e.PullRequest.Number
	case e.Issue != nil:
		return e.Issue.Number
	default:
		return 0
	}
}

// Author returns the login of the user who opened the PR or issue.
func (e *Event) Author() string {
	switch {
	case e.PullRequest != nil:
		return e.PullRequest.Author
	case e.Issue != nil:
		return e.Issue.Author
	default:
		return ""
	}
}

// Assignees returns the current assignees of the PR or issue.
func (e *Event) Assignees() []string {
	switch {
	case e.PullRequest != nil:
		return e.PullRequest.Assignees
	case e.Issue != nil:
		return e.Issue.Assignees
	default:
		return nil
	}
}

// Package event reads the CI event context injected by the runner.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/yuxiqian/auto-assign/pkg/types"
)

// Environment variables set by the CI runner.
const (
	nameVar       = "GITHUB_EVENT_NAME"
	pathVar       = "GITHUB_EVENT_PATH"
	repositoryVar = "GITHUB_REPOSITORY"
)

type login struct {
	Login string `json:"login"`
}

type teamRef struct {
	Slug string `json:"slug"`
}

type prPayload struct {
	Title              string    `json:"title"`
	User               login     `json:"user"`
	Assignees          []login   `json:"assignees"`
	RequestedReviewers []login   `json:"requested_reviewers"`
	RequestedTeams     []teamRef `json:"requested_teams"`
	Number             int       `json:"number"`
	Draft              bool      `json:"draft"`
}

type issuePayload struct {
	Title     string  `json:"title"`
	User      login   `json:"user"`
	Assignees []login `json:"assignees"`
	Number    int     `json:"number"`
}

// payload is the event body; at most one of PullRequest/Issue is present.
type payload struct {
	PullRequest *prPayload    `json:"pull_request"`
	Issue       *issuePayload `json:"issue"`
	Action      string        `json:"action"`
}

// Read builds the event context from the runner environment. It fails only
// when the environment contract is broken (missing or unreadable payload);
// payloads carrying neither a PR nor an issue produce an event with both
// variants nil, which the dispatcher skips.
func Read() (*types.Event, error) {
	name := os.Getenv(nameVar)
	if name == "" {
		return nil, fmt.Errorf("%s is not set", nameVar)
	}

	owner, repo, err := splitRepository(os.Getenv(repositoryVar))
	if err != nil {
		return nil, err
	}

	path := os.Getenv(pathVar)
	if path == "" {
		return nil, fmt.Errorf("%s is not set", pathVar)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is set by the CI runner
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	return parse(name, owner, repo, data)
}

// parse decodes an event payload into the tagged union.
func parse(name, owner, repo string, data []byte) (*types.Event, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	ev := &types.Event{
		Name:   name,
		Action: p.Action,
		Owner:  owner,
		Repo:   repo,
	}

	switch {
	case p.PullRequest != nil:
		ev.PullRequest = &types.PullRequest{
			Number:             p.PullRequest.Number,
			Title:              p.PullRequest.Title,
			Author:             p.PullRequest.User.Login,
			Draft:              p.PullRequest.Draft,
			Assignees:          logins(p.PullRequest.Assignees),
			RequestedReviewers: logins(p.PullRequest.RequestedReviewers),
			RequestedTeams:     slugs(p.PullRequest.RequestedTeams),
		}
	case p.Issue != nil:
		ev.Issue = &types.Issue{
			Number:    p.Issue.Number,
			Title:     p.Issue.Title,
			Author:    p.Issue.User.Login,
			Assignees: logins(p.Issue.Assignees),
		}
	default:
		slog.Info("Event payload carries neither a pull request nor an issue", "event", name, "action", p.Action)
	}

	return ev, nil
}

// splitRepository splits "owner/repo" into its parts.
func splitRepository(repository string) (owner, repo string, err error) {
	if repository == "" {
		return "", "", fmt.Errorf("%s is not set", repositoryVar)
	}
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", errors.New("malformed repository, expected owner/repo: " + repository)
	}
	return owner, repo, nil
}

func logins(users []login) []string {
	var names []string
	for _, u := range users {
		if u.Login != "" {
			names = append(names, u.Login)
		}
	}
	return names
}

func slugs(teams []teamRef) []string {
	var names []string
	for _, t := range teams {
		if t.Slug != "" {
			names = append(names, t.Slug)
		}
	}
	return names
}

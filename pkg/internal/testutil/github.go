// Package testutil provides a programmable mock of the platform API for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/yuxiqian/auto-assign/pkg/github"
	"github.com/yuxiqian/auto-assign/pkg/types"
)

// MockClient implements github.API. Responses are configured per key and
// write calls are recorded for assertions.
type MockClient struct {
	validUsers   map[string]bool
	teamMembers  map[string][]string
	teamErrors   map[string]error
	labels       map[string][]string
	labelErrors  map[string]error
	pullRequests map[string]*types.PullRequest
	issues       map[string]*types.Issue

	// Errors returned by write calls.
	RequestReviewersErr error
	AddAssigneesErr     error

	ReviewerRequests []ReviewerRequest
	AssigneeAdds     []AssigneeAdd

	mu sync.Mutex
}

// ReviewerRequest records a RequestReviewers call.
type ReviewerRequest struct {
	Owner         string
	Repo          string
	Reviewers     []string
	TeamReviewers []string
	Number        int
}

// AssigneeAdd records an AddAssignees call.
type AssigneeAdd struct {
	Owner     string
	Repo      string
	Assignees []string
	Number    int
}

// NewMockClient creates an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{
		validUsers:   make(map[string]bool),
		teamMembers:  make(map[string][]string),
		teamErrors:   make(map[string]error),
		labels:       make(map[string][]string),
		labelErrors:  make(map[string]error),
		pullRequests: make(map[string]*types.PullRequest),
		issues:       make(map[string]*types.Issue),
	}
}

var _ github.API = (*MockClient)(nil)

func issueKey(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s/%d", owner, repo, number)
}

func teamKey(org, slug string) string {
	return org + "/" + slug
}

// SetValidUser marks a username as resolving (or not) to a real account.
func (m *MockClient) SetValidUser(username string, valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validUsers[username] = valid
}

// SetTeamMembers configures the membership of org/slug.
func (m *MockClient) SetTeamMembers(org, slug string, members []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teamMembers[teamKey(org, slug)] = members
}

// SetTeamError makes expansion of org/slug fail.
func (m *MockClient) SetTeamError(org, slug string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teamErrors[teamKey(org, slug)] = err
}

// SetLabels configures the labels on an issue or PR.
func (m *MockClient) SetLabels(owner, repo string, number int, labels []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[issueKey(owner, repo, number)] = labels
}

// SetLabelError makes label listing fail for an issue or PR.
func (m *MockClient) SetLabelError(owner, repo string, number int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labelErrors[issueKey(owner, repo, number)] = err
}

// SetPullRequest configures the platform copy of a pull request.
func (m *MockClient) SetPullRequest(owner, repo string, pr *types.PullRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pullRequests[issueKey(owner, repo, pr.Number)] = pr
}

// SetIssue configures the platform copy of an issue.
func (m *MockClient) SetIssue(owner, repo string, issue *types.Issue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[issueKey(owner, repo, issue.Number)] = issue
}

// IsValidUser reports the configured validity; unconfigured users are invalid.
func (m *MockClient) IsValidUser(_ context.Context, username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validUsers[username]
}

// TeamMembers returns the configured membership or error.
func (m *MockClient) TeamMembers(_ context.Context, org, slug string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := teamKey(org, slug)
	if err := m.teamErrors[key]; err != nil {
		return nil, err
	}
	members, ok := m.teamMembers[key]
	if !ok {
		return nil, fmt.Errorf("team not found: %s", key)
	}
	return members, nil
}

// PullRequest returns the configured pull request.
func (m *MockClient) PullRequest(_ context.Context, owner, repo string, number int) (*types.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pr, ok := m.pullRequests[issueKey(owner, repo, number)]
	if !ok {
		return nil, fmt.Errorf("pull request not found: %s", issueKey(owner, repo, number))
	}
	return pr, nil
}

// Issue returns the configured issue.
func (m *MockClient) Issue(_ context.Context, owner, repo string, number int) (*types.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[issueKey(owner, repo, number)]
	if !ok {
		return nil, fmt.Errorf("issue not found: %s", issueKey(owner, repo, number))
	}
	return issue, nil
}

// Labels returns the configured labels or error.
func (m *MockClient) Labels(_ context.Context, owner, repo string, number int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := issueKey(owner, repo, number)
	if err := m.labelErrors[key]; err != nil {
		return nil, err
	}
	return m.labels[key], nil
}

// RequestReviewers records the call and returns the configured error.
func (m *MockClient) RequestReviewers(_ context.Context, owner, repo string, number int, reviewers, teamReviewers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RequestReviewersErr != nil {
		return m.RequestReviewersErr
	}
	m.ReviewerRequests = append(m.ReviewerRequests, ReviewerRequest{
		Owner:         owner,
		Repo:          repo,
		Number:        number,
		Reviewers:     reviewers,
		TeamReviewers: teamReviewers,
	})
	return nil
}

// AddAssignees records the call and returns the configured error.
func (m *MockClient) AddAssignees(_ context.Context, owner, repo string, number int, assignees []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddAssigneesErr != nil {
		return m.AddAssigneesErr
	}
	m.AssigneeAdds = append(m.AssigneeAdds, AssigneeAdd{
		Owner:     owner,
		Repo:      repo,
		Number:    number,
		Assignees: assignees,
	})
	return nil
}

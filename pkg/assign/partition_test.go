package assign

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		author     string
		candidates []string
		wantTeams  []string
		wantUsers  []string
	}{
		{
			name:       "users and teams",
			candidates: []string{"alice", "bob", "org/team-x"},
			author:     "alice",
			wantTeams:  []string{"team-x"},
			wantUsers:  []string{"bob"},
		},
		{
			name:       "author excluded case-insensitively",
			candidates: []string{"Alice", "ALICE", "bob"},
			author:     "alice",
			wantUsers:  []string{"bob"},
		},
		{
			name:       "org prefix stripped at first separator",
			candidates: []string{"org/nested/team"},
			wantTeams:  []string{"nested/team"},
		},
		{
			name:       "author-looking team identifier stays a team",
			candidates: []string{"alice/team-y"},
			author:     "alice",
			wantTeams:  []string{"team-y"},
		},
		{
			name:       "empty slug dropped",
			candidates: []string{"org/", "bob"},
			wantUsers:  []string{"bob"},
		},
		{
			name:       "empty input",
			candidates: nil,
			author:     "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Split(tt.candidates, tt.author)
			if !reflect.DeepEqual(p.Teams, tt.wantTeams) {
				t.Errorf("teams = %v, want %v", p.Teams, tt.wantTeams)
			}
			if !reflect.DeepEqual(p.Users, tt.wantUsers) {
				t.Errorf("users = %v, want %v", p.Users, tt.wantUsers)
			}
		})
	}
}

func TestSplit_NeverContainsAuthor(t *testing.T) {
	candidates := []string{"alice", "Alice", "aLiCe", "bob", "org/alice"}

	p := Split(candidates, "alice")

	for _, user := range p.Users {
		if user == "alice" || user == "Alice" || user == "aLiCe" {
			t.Errorf("author %q leaked into users", user)
		}
	}
	// "org/alice" is a team slug, not the author.
	if !reflect.DeepEqual(p.Teams, []string{"alice"}) {
		t.Errorf("teams = %v, want [alice]", p.Teams)
	}
	if !reflect.DeepEqual(p.Users, []string{"bob"}) {
		t.Errorf("users = %v, want [bob]", p.Users)
	}
}

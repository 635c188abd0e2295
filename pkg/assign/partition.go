// Package assign implements candidate selection and the event dispatcher.
package assign

import "strings"

// Partition holds configured candidates split into team slugs and
// usernames. The two lists are disjoint by construction.
type Partition struct {
	Teams []string
	Users []string
}

// Split partitions candidate identifiers. Identifiers containing "/" are
// teams; the slug is everything after the first separator (org prefix
// stripped), and an identifier with an empty slug is dropped. Other
// identifiers are users, except the author, which is dropped
// case-insensitively.
func Split(candidates []string, author string) Partition {
	var p Partition
	for _, candidate := range candidates {
		if _, slug, ok := strings.Cut(candidate, "/"); ok {
			if slug != "" {
				p.Teams = append(p.Teams, slug)
			}
			continue
		}
		if strings.EqualFold(candidate, author) {
			continue
		}
		p.Users = append(p.Users, candidate)
	}
	return p
}

// containsFold reports whether list already holds s under case folding.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

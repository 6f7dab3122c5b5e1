// Package filter describes which posts a feed selects.
package filter

import (
	"fmt"
	"strings"
)

// Filter narrows the post feed. Nil fields do not constrain it; the zero value
// selects every post.
type Filter struct {
	GroupID    *int64
	AuthorID   *int64
	FollowerID *int64
}

func All() Filter {
	return Filter{}
}

func ByGroup(groupID int64) Filter {
	return Filter{GroupID: &groupID}
}

func ByAuthor(authorID int64) Filter {
	return Filter{AuthorID: &authorID}
}

// FollowedBy selects posts whose author is followed by userID.
func FollowedBy(userID int64) Filter {
	return Filter{FollowerID: &userID}
}

// Where renders the filter as a WHERE clause over the posts table aliased as p.
// Placeholders are numbered from $1 in order of appearance.
func (f Filter) Where() (string, []any) {
	var (
		conditions []string
		args       []any
	)

	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.GroupID != nil {
		add("p.group_id = $%d", *f.GroupID)
	}
	if f.AuthorID != nil {
		add("p.author_id = $%d", *f.AuthorID)
	}
	if f.FollowerID != nil {
		add("p.author_id IN (SELECT f.author_id FROM follows f WHERE f.user_id = $%d)", *f.FollowerID)
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

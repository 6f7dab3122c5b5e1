package models

import (
	"time"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/utils/stringutils"
)

// PostPreviewLength is how much of a post's text its string form shows.
const PostPreviewLength = 15

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

func (g *Group) String() string {
	return g.Title
}

type Post struct {
	ID       int64
	Text     string
	PubDate  time.Time
	AuthorID int64
	GroupID  *int64
	// Image is the storage key of the attached picture; empty when there is none.
	Image string

	Author *auth.User
	Group  *Group
}

func (p *Post) String() string {
	return stringutils.Truncate(p.Text, PostPreviewLength)
}

func (p *Post) IsAuthoredBy(user *auth.User) bool {
	return user != nil && p.AuthorID == user.ID
}

type Comment struct {
	ID       int64
	Text     string
	Created  time.Time
	AuthorID int64
	PostID   int64

	Author *auth.User
}

type Follow struct {
	ID int64
	// UserID follows AuthorID.
	UserID   int64
	AuthorID int64
}

type Profile struct {
	Author     *auth.User
	Following  bool
	PostsCount int64
}

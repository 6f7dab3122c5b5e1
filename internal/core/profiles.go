package core

import (
	"context"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

// GetProfile resolves username and reports whether viewer follows that user.
// viewer may be nil for anonymous callers.
func (c *Core) GetProfile(ctx context.Context, username string, viewer *auth.User) (*models.Profile, error) {
	author, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{Author: author}

	if viewer != nil && viewer.ID != author.ID {
		profile.Following, err = c.IsFollowing(ctx, viewer.ID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	profile.PostsCount, err = c.CountPostsByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (c *Core) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	const queryFollowing = `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2
		)
	`

	following, err := databaseutils.QueryScalar[bool](c.sqlTemplate, ctx, queryFollowing, userID, authorID)
	if err != nil {
		return false, xerrors.New(err)
	}
	return following, nil
}

// GetFollowingUserList returns the users followed by userID, by username.
func (c *Core) GetFollowingUserList(ctx context.Context, userID int64) ([]*auth.User, error) {
	queryFollowing := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password
		FROM users AS u JOIN follows f ON u.id = f.author_id
		WHERE f.user_id = $1
		ORDER BY u.username
	`
	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, queryFollowing, scanUser, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

// FollowUser makes follower follow the user named authorUsername and returns that user.
// Following yourself or someone already followed changes nothing.
func (c *Core) FollowUser(ctx context.Context, follower *auth.User, authorUsername string) (*auth.User, error) {
	author, err := c.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	if author.ID == follower.ID {
		return author, nil
	}

	insertSQL := `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`

	created, err := databaseutils.ExecuteCommand(c.sqlTemplate, ctx, insertSQL, follower.ID, author.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if created > 0 {
		c.log.Info("User followed", "user_id", follower.ID, "author_id", author.ID)
	}
	return author, nil
}

// UnfollowUser removes the follow edge if there is one.
func (c *Core) UnfollowUser(ctx context.Context, follower *auth.User, authorUsername string) (*auth.User, error) {
	author, err := c.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	deleteSql := `
		DELETE FROM follows
		WHERE user_id = $1 AND author_id = $2
	`

	affected, err := databaseutils.ExecuteCommand(c.sqlTemplate, ctx, deleteSql, follower.ID, author.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if affected > 0 {
		c.log.Info("User unfollowed", "user_id", follower.ID, "author_id", author.ID)
	}
	return author, nil
}

package core

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/utils/collectionutils"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/utils/functional"
	"github.com/siahsang/yatube/models"
)

var ErrNotPostAuthor = xerrors.Message("Post can only be edited by its author")

const postColumns = `p.id, p.text, p.pub_date, p.author_id, p.group_id, p.image`

func scanPost(rows *sql.Rows) (*models.Post, error) {
	var (
		post    = &models.Post{}
		groupID sql.NullInt64
	)
	if err := rows.Scan(&post.ID, &post.Text, &post.PubDate, &post.AuthorID, &groupID, &post.Image); err != nil {
		return nil, xerrors.New(err)
	}
	if groupID.Valid {
		post.GroupID = &groupID.Int64
	}
	return post, nil
}

func (c *Core) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	const insertSQL = `
		INSERT INTO posts (text, pub_date, author_id, group_id, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, text, pub_date, author_id, group_id, image
	`

	created, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanPost,
		post.Text, time.Now().UTC(), post.AuthorID, post.GroupID, post.Image)
	if err != nil {
		return nil, xerrors.New(err)
	}

	c.log.Info("Post created", "post_id", created.ID, "author_id", created.AuthorID)
	return created, nil
}

func (c *Core) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	post, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	if err := c.hydratePosts(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}

	return post, nil
}

// UpdatePost rewrites text, group and image of a post owned by editor.
// Posts of other authors are left untouched and ErrNotPostAuthor is returned.
func (c *Core) UpdatePost(ctx context.Context, editor *auth.User, post *models.Post) (*models.Post, error) {
	if editor == nil {
		return nil, xerrors.New(ErrNotPostAuthor)
	}

	const updateSQL = `
		UPDATE posts
		SET text = $1, group_id = $2, image = $3
		WHERE id = $4 AND author_id = $5
	`

	affected, err := databaseutils.ExecuteCommand(c.sqlTemplate, ctx, updateSQL,
		post.Text, post.GroupID, post.Image, post.ID, editor.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if affected == 0 {
		if _, err := c.GetPost(ctx, post.ID); err != nil {
			return nil, err
		}
		return nil, xerrors.New(ErrNotPostAuthor)
	}

	c.log.Info("Post updated", "post_id", post.ID, "author_id", editor.ID)
	return c.GetPost(ctx, post.ID)
}

func (c *Core) CountPostsByAuthor(ctx context.Context, authorID int64) (int64, error) {
	count, err := databaseutils.QueryScalar[int64](c.sqlTemplate, ctx,
		`SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

// hydratePosts attaches authors and groups to posts with one query per relation.
func (c *Core) hydratePosts(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	authorIdList := collectionutils.Distinct(functional.Map(posts, func(p *models.Post) int64 {
		return p.AuthorID
	}))
	authors, err := c.GetUsersByIdList(ctx, authorIdList)
	if err != nil {
		return err
	}
	authorById := collectionutils.Associate(authors, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	var groupIdList []int64
	for _, post := range posts {
		if post.GroupID != nil {
			groupIdList = append(groupIdList, *post.GroupID)
		}
	}
	groups, err := c.GetGroupsByIdList(ctx, collectionutils.Distinct(groupIdList))
	if err != nil {
		return err
	}
	groupById := collectionutils.Associate(groups, func(group *models.Group) (int64, *models.Group) {
		return group.ID, group
	})

	for _, post := range posts {
		post.Author = authorById[post.AuthorID]
		if post.GroupID != nil {
			post.Group = collectionutils.GetOrDefault(groupById, *post.GroupID, nil)
		}
	}

	return nil
}

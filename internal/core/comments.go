package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/utils/collectionutils"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/utils/functional"
	"github.com/siahsang/yatube/models"
)

func scanComment(rows *sql.Rows) (*models.Comment, error) {
	var comment models.Comment
	if err := rows.Scan(&comment.ID, &comment.Text, &comment.Created, &comment.AuthorID, &comment.PostID); err != nil {
		return nil, xerrors.New(err)
	}
	return &comment, nil
}

func (c *Core) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	insertSQL := `
		INSERT INTO comments (text, created, author_id, post_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, text, created, author_id, post_id
	`

	newComment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanComment,
		comment.Text, time.Now().UTC(), comment.AuthorID, comment.PostID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	c.log.Info("Comment created", "comment_id", newComment.ID, "post_id", newComment.PostID)
	return newComment, nil
}

// GetCommentsByPostID lists a post's comments oldest first, with their authors.
func (c *Core) GetCommentsByPostID(ctx context.Context, postID int64) ([]*models.Comment, error) {
	query := `
		SELECT id, text, created, author_id, post_id
		FROM comments
		WHERE post_id = $1
		ORDER BY created, id
	`

	comments, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanComment, postID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	authorIdList := collectionutils.Distinct(functional.Map(comments, func(comment *models.Comment) int64 {
		return comment.AuthorID
	}))
	authors, err := c.GetUsersByIdList(ctx, authorIdList)
	if err != nil {
		return nil, err
	}
	authorById := collectionutils.Associate(authors, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})
	for _, comment := range comments {
		comment.Author = authorById[comment.AuthorID]
	}

	return comments, nil
}

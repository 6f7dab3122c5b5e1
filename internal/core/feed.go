package core

import (
	"context"
	"fmt"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/filter"
	"github.com/siahsang/yatube/internal/paginator"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

// Feed returns one page of the posts selected by f, newest first.
// Posts published at the same instant are ordered by descending id.
func (c *Core) Feed(ctx context.Context, f filter.Filter, pageNumber int) (paginator.Page[*models.Post], error) {
	count, err := c.CountPosts(ctx, f)
	if err != nil {
		return paginator.Page[*models.Post]{}, err
	}

	where, args := f.Where()
	page := paginator.New[*models.Post](int(count), paginator.PostsPerPage, pageNumber)

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		%s
		ORDER BY p.pub_date DESC, p.id DESC
		LIMIT $%d OFFSET $%d
	`, postColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Limit(), page.Offset())

	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanPost, args...)
	if err != nil {
		return paginator.Page[*models.Post]{}, xerrors.New(err)
	}

	if err := c.hydratePosts(ctx, posts); err != nil {
		return paginator.Page[*models.Post]{}, err
	}

	return page.WithItems(posts), nil
}

// CountPosts returns the number of posts selected by f.
func (c *Core) CountPosts(ctx context.Context, f filter.Filter) (int64, error) {
	where, args := f.Where()

	count, err := databaseutils.QueryScalar[int64](c.sqlTemplate, ctx,
		`SELECT COUNT(*) FROM posts p `+where, args...)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

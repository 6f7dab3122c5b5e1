package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/database"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/utils/stringutils"
	"github.com/siahsang/yatube/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrDuplicatedSlug = xerrors.Message("Duplicate slug")

const groupColumns = `id, title, slug, description`

func scanGroup(rows *sql.Rows) (*models.Group, error) {
	var group = &models.Group{}
	if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description); err != nil {
		return nil, xerrors.New(err)
	}
	return group, nil
}

func (c *Core) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	const insertSQL = `
		INSERT INTO post_groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING ` + groupColumns

	created, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanGroup,
		group.Title, group.Slug, group.Description)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, xerrors.New(ErrDuplicatedSlug)
		default:
			return nil, xerrors.New(err)
		}
	}

	c.log.Info("Group created", "group_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (c *Core) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM post_groups WHERE slug = $1`

	group, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanGroup, slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return group, nil
}

func (c *Core) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM post_groups WHERE id = $1`

	group, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanGroup, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return group, nil
}

func (c *Core) ListGroups(ctx context.Context) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM post_groups ORDER BY title, id`

	groups, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanGroup)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return groups, nil
}

func (c *Core) GetGroupsByIdList(ctx context.Context, groupIdList []int64) ([]*models.Group, error) {
	if len(groupIdList) == 0 {
		return []*models.Group{}, nil
	}

	placeholders, args := stringutils.INCluse(1, groupIdList)
	query := fmt.Sprintf(`SELECT %s FROM post_groups WHERE id in (%s)`, groupColumns, strings.Join(placeholders, ", "))

	groups, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanGroup, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return groups, nil
}

// CreateSlug derives a URL-safe slug from a group title. Accents are folded
// to their base letters; other characters outside [a-z0-9_-] are dropped, so
// the result is empty for titles written entirely in a non-Latin script.
func (c *Core) CreateSlug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}

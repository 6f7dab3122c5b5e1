package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/database"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	core    *Core
	session databaseutils.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	dsn := "file:" + filepath.Join(t.TempDir(), "yatube.db") + "?_foreign_keys=on&_busy_timeout=5000"

	db, err := database.Open(ctx, database.Options{Driver: database.DriverSQLite, DSN: dsn, MaxIdleConns: 2}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite))

	return &testEnv{
		core:    NewCore(logger, databaseutils.NewSQLTemplate(db, 3*time.Second)),
		session: databaseutils.NewSession(db, logger),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *auth.User {
	t.Helper()

	user := &auth.User{Username: username, Password: []byte("!")}
	require.NoError(t, e.core.CreateNewUser(context.Background(), user))
	return user
}

func (e *testEnv) createGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()

	group, err := e.core.CreateGroup(context.Background(), &models.Group{Title: title, Slug: slug, Description: title + " description"})
	require.NoError(t, err)
	return group
}

func (e *testEnv) createPost(t *testing.T, author *auth.User, text string, group *models.Group) *models.Post {
	t.Helper()

	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	created, err := e.core.CreatePost(context.Background(), post)
	require.NoError(t, err)
	return created
}

func (e *testEnv) createPosts(t *testing.T, author *auth.User, n int, group *models.Group) []*models.Post {
	t.Helper()

	posts := make([]*models.Post, n)
	for i := range posts {
		posts[i] = e.createPost(t, author, fmt.Sprintf("Test post text %d", i), group)
	}
	return posts
}

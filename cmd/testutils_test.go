package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/config"
	"github.com/siahsang/yatube/internal/database"
	"github.com/siahsang/yatube/internal/web"
	"github.com/siahsang/yatube/models"
	"github.com/stretchr/testify/require"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type rendered struct {
	name string
	data any
}

// recordingRenderer keeps the name and data of every rendered page.
type recordingRenderer struct {
	web.Renderer

	mu    sync.Mutex
	pages []rendered
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any) error {
	r.mu.Lock()
	r.pages = append(r.pages, rendered{name: name, data: data})
	r.mu.Unlock()
	return r.Renderer.Render(w, name, data)
}

func (r *recordingRenderer) last() rendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pages) == 0 {
		return rendered{}
	}
	return r.pages[len(r.pages)-1]
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

type testApp struct {
	app      *application
	handler  http.Handler
	renderer *recordingRenderer
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.CacheTTL = time.Minute
	cfg.MediaRoot = t.TempDir()
	cfg.DBDSN = "file:" + filepath.Join(t.TempDir(), "yatube.db") + "?_foreign_keys=on&_busy_timeout=5000"

	db, err := database.Open(ctx, database.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN, MaxIdleConns: 2}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, cfg.DBDriver))

	app, err := newApplication(cfg, logger, db)
	require.NoError(t, err)

	renderer := &recordingRenderer{Renderer: app.renderer}
	app.renderer = renderer

	return &testApp{app: app, handler: app.routes(), renderer: renderer}
}

func (ta *testApp) createUser(t *testing.T, username string) *auth.User {
	t.Helper()

	user := &auth.User{Username: username, Password: []byte("!")}
	require.NoError(t, ta.app.core.CreateNewUser(context.Background(), user))
	return user
}

func (ta *testApp) createGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()

	group, err := ta.app.core.CreateGroup(context.Background(), &models.Group{Title: title, Slug: slug, Description: "Test group description"})
	require.NoError(t, err)
	return group
}

func (ta *testApp) createPost(t *testing.T, author *auth.User, text string, group *models.Group) *models.Post {
	t.Helper()

	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	created, err := ta.app.core.CreatePost(context.Background(), post)
	require.NoError(t, err)
	return created
}

func (ta *testApp) createPosts(t *testing.T, author *auth.User, n int, group *models.Group) {
	t.Helper()

	for i := range n {
		ta.createPost(t, author, fmt.Sprintf("Test post text %d", i), group)
	}
}

func (ta *testApp) do(t *testing.T, req *http.Request, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()

	if user != nil {
		token, err := ta.app.auth.GenerateToken(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func (ta *testApp) get(t *testing.T, target string, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	return ta.do(t, httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (ta *testApp) postForm(t *testing.T, target string, form url.Values, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ta.do(t, req, user)
}

func (ta *testApp) postMultipart(t *testing.T, target string, fields map[string]string, fileField, fileName string, file []byte, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ta.do(t, req, user)
}

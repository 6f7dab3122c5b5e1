package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/filter"
	"github.com/siahsang/yatube/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicPagesUseTemplates(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "test_urls1")
	author := ta.createUser(t, "test_urls0")
	group := ta.createGroup(t, "Test group title", "test_group")
	post := ta.createPost(t, author, "Test post text", group)

	pages := map[string]string{
		"/":                    "posts/index.html",
		"/group/test_group/":   "posts/group_list.html",
		"/profile/test_urls1/": "posts/profile.html",
	}
	pages[fmt.Sprintf("/posts/%d/", post.ID)] = "posts/post_detail.html"

	for target, template := range pages {
		for _, caller := range []*auth.User{nil, user} {
			t.Run(target, func(t *testing.T) {
				rr := ta.get(t, target, caller)
				assert.Equal(t, http.StatusOK, rr.Code)
				assert.Equal(t, template, ta.renderer.last().name)
			})
		}
	}
}

func TestUnknownPagesRenderCustom404(t *testing.T) {
	ta := newTestApplication(t)

	for _, target := range []string{"/bad/address/", "/group/missing/", "/profile/ghost/", "/posts/999/", "/posts/abc/"} {
		rr := ta.get(t, target, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
		assert.Equal(t, "core/404.html", ta.renderer.last().name, target)
	}
}

func TestAuthOnlyPagesRedirectAnonymousToLogin(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	post := ta.createPost(t, author, "Test post text", nil)

	redirects := map[string]string{
		"/create/":                  "/auth/login/?next=/create/",
		"/follow/":                  "/auth/login/?next=/follow/",
		"/profile/author/follow/":   "/auth/login/?next=/profile/author/follow/",
		"/profile/author/unfollow/": "/auth/login/?next=/profile/author/unfollow/",
	}
	redirects[fmt.Sprintf("/posts/%d/edit/", post.ID)] = fmt.Sprintf("/auth/login/?next=/posts/%d/edit/", post.ID)

	for target, expected := range redirects {
		rr := ta.get(t, target, nil)
		assert.Equal(t, http.StatusFound, rr.Code, target)
		assert.Equal(t, expected, rr.Header().Get("Location"), target)
	}
}

func TestIndexContext(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	group := ta.createGroup(t, "Test group title", "test_group")
	ta.createPost(t, author, "Test post text", group)

	rr := ta.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	data := ta.renderer.last().data.(feedPage)
	require.Len(t, data.PageObj.Items, 1)
	first := data.PageObj.Items[0]
	assert.Equal(t, "Test post text", first.Text)
	assert.Equal(t, "Test group title", first.Group.Title)
	assert.Equal(t, "author", first.Author.Username)
	assert.Contains(t, rr.Body.String(), "Test post text")
}

func TestGroupAndProfileContext(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	group := ta.createGroup(t, "Test group title", "test_group")
	other := ta.createGroup(t, "Other group", "other_group")
	ta.createPost(t, author, "Test post text", group)

	ta.get(t, "/group/test_group/", nil)
	groupData := ta.renderer.last().data.(groupPage)
	assert.Equal(t, "test_group", groupData.Group.Slug)
	require.Len(t, groupData.PageObj.Items, 1)

	ta.get(t, "/group/"+other.Slug+"/", nil)
	assert.Empty(t, ta.renderer.last().data.(groupPage).PageObj.Items)

	ta.get(t, "/profile/author/", nil)
	profileData := ta.renderer.last().data.(profilePage)
	assert.Equal(t, "author", profileData.Profile.Author.Username)
	assert.Equal(t, int64(1), profileData.Profile.PostsCount)
	assert.False(t, profileData.CanFollow)
	require.Len(t, profileData.PageObj.Items, 1)
}

func TestFeedsArePaginated(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	group := ta.createGroup(t, "Test group title", "test_group")
	ta.createPosts(t, author, 13, group)

	for _, target := range []string{"/", "/group/test_group/", "/profile/author/"} {
		expected := map[string]int{"": 10, "?page=2": 3, "?page=99": 3, "?page=abc": 10}
		for query, count := range expected {
			ta.app.cache.InvalidateAll()
			rr := ta.get(t, target+query, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			var items int
			switch data := ta.renderer.last().data.(type) {
			case feedPage:
				items = len(data.PageObj.Items)
			case groupPage:
				items = len(data.PageObj.Items)
			case profilePage:
				items = len(data.PageObj.Items)
			}
			assert.Equal(t, count, items, target+query)
		}
	}
}

func TestIndexPageIsCached(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	ta.createPosts(t, author, 3, nil)

	first := ta.get(t, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	renders := ta.renderer.count()

	ta.createPost(t, author, "Fresh cached post", nil)

	cached := ta.get(t, "/", nil)
	assert.Equal(t, first.Body.Bytes(), cached.Body.Bytes())
	assert.NotContains(t, cached.Body.String(), "Fresh cached post")
	assert.Equal(t, renders, ta.renderer.count())

	ta.app.cache.InvalidateAll()

	fresh := ta.get(t, "/", nil)
	assert.NotEqual(t, first.Body.Bytes(), fresh.Body.Bytes())
	assert.Contains(t, fresh.Body.String(), "Fresh cached post")
}

func TestIndexCachesEachPage(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	ta.createPosts(t, author, 13, nil)

	second := ta.get(t, "/?page=2", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.NotContains(t, second.Body.String(), "Test post text 3")

	ta.createPost(t, author, "Fresh cached post", nil)

	cached := ta.get(t, "/?page=2", nil)
	assert.Equal(t, second.Body.Bytes(), cached.Body.Bytes())

	first := ta.get(t, "/?page=1", nil)
	assert.Contains(t, first.Body.String(), "Fresh cached post")
	assert.NotEqual(t, second.Body.Bytes(), first.Body.Bytes())
	assert.Equal(t, 2, ta.app.cache.Len())

	for _, query := range []string{"?page=99", "?page=7919", "?page=-3", "?page=abc", ""} {
		rr := ta.get(t, "/"+query, nil)
		require.Equal(t, http.StatusOK, rr.Code, query)
	}
	assert.Equal(t, 2, ta.app.cache.Len())
	assert.Equal(t, second.Body.Bytes(), ta.get(t, "/?page=99", nil).Body.Bytes())

	ta.app.cache.InvalidateAll()

	fresh := ta.get(t, "/?page=2", nil)
	assert.Contains(t, fresh.Body.String(), "Test post text 3")
	assert.NotEqual(t, second.Body.Bytes(), fresh.Body.Bytes())
}

func TestIndexCacheIsPerViewer(t *testing.T) {
	ta := newTestApplication(t)
	leo := ta.createUser(t, "leo")

	anonymous := ta.get(t, "/", nil)
	signedIn := ta.get(t, "/", leo)

	assert.NotContains(t, anonymous.Body.String(), "/profile/leo/")
	assert.Contains(t, signedIn.Body.String(), "/profile/leo/")
}

func TestCreatePost(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "leo")
	group := ta.createGroup(t, "Test group title", "test_group")

	rr := ta.get(t, "/create/", user)
	require.Equal(t, http.StatusOK, rr.Code)
	formData := ta.renderer.last().data.(postFormPage)
	assert.False(t, formData.IsEdit)
	require.Len(t, formData.Groups, 1)

	rr = ta.postForm(t, "/create/", url.Values{"text": {"Test post text"}, "group": {strconv.FormatInt(group.ID, 10)}}, user)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/profile/leo/", rr.Header().Get("Location"))

	page, err := ta.app.core.Feed(context.Background(), filter.All(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Test post text", page.Items[0].Text)
	assert.Equal(t, group.ID, page.Items[0].Group.ID)
	assert.Equal(t, user.ID, page.Items[0].AuthorID)
}

func TestCreatePostRejectsInvalidForm(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "leo")

	cases := map[string]url.Values{
		"blank text":    {"text": {"   "}},
		"unknown group": {"text": {"Test"}, "group": {"404"}},
		"bad group":     {"text": {"Test"}, "group": {"abc"}},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			rr := ta.postForm(t, "/create/", form, user)
			assert.Equal(t, http.StatusOK, rr.Code)

			data := ta.renderer.last().data.(postFormPage)
			assert.NotEmpty(t, data.Form.FieldErrors)
		})
	}

	count, err := ta.app.core.CountPostsByAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreatePostWithImage(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "leo")

	rr := ta.postMultipart(t, "/create/", map[string]string{"text": "With a picture"}, "image", "small.gif", smallGIF, user)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	page, err := ta.app.core.Feed(context.Background(), filter.All(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	image := page.Items[0].Image
	assert.True(t, strings.HasPrefix(image, "posts/"), image)
	assert.True(t, strings.HasSuffix(image, ".gif"), image)

	_, err = os.Stat(filepath.Join(ta.app.config.MediaRoot, filepath.FromSlash(image)))
	require.NoError(t, err)

	media := ta.get(t, "/media/"+image, nil)
	assert.Equal(t, http.StatusOK, media.Code)
	assert.Equal(t, smallGIF, media.Body.Bytes())

	ta.get(t, fmt.Sprintf("/posts/%d/", page.Items[0].ID), nil)
	assert.Equal(t, image, ta.renderer.last().data.(postDetailPage).Post.Image)
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "leo")

	rr := ta.postMultipart(t, "/create/", map[string]string{"text": "Not a picture"}, "image", "notes.gif", []byte("plain text"), user)

	assert.Equal(t, http.StatusOK, rr.Code)
	data := ta.renderer.last().data.(postFormPage)
	assert.Contains(t, data.Form.FieldErrors, "image")
}

// brokenStorage fails every upload.
type brokenStorage struct {
	storage.Storage
}

func (brokenStorage) Save(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", errors.New("disk full")
}

func TestFailedUploadLeavesNoPost(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "leo")
	ta.app.media = brokenStorage{Storage: ta.app.media}

	rr := ta.postMultipart(t, "/create/", map[string]string{"text": "With a picture"}, "image", "small.gif", smallGIF, user)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	count, err := ta.app.core.CountPostsByAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	post := ta.createPost(t, user, "Original text", nil)
	rr = ta.postMultipart(t, fmt.Sprintf("/posts/%d/edit/", post.ID), map[string]string{"text": "Edited text"}, "image", "small.gif", smallGIF, user)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	unchanged, err := ta.app.core.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original text", unchanged.Text)
	assert.Empty(t, unchanged.Image)
}

func TestEditPostByAuthor(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	groupOne := ta.createGroup(t, "Group one", "group_one")
	groupTwo := ta.createGroup(t, "Group two", "group_two")
	post := ta.createPost(t, author, "Test post text", groupOne)
	editURL := fmt.Sprintf("/posts/%d/edit/", post.ID)

	rr := ta.get(t, editURL, author)
	require.Equal(t, http.StatusOK, rr.Code)
	data := ta.renderer.last().data.(postFormPage)
	assert.True(t, data.IsEdit)
	assert.Equal(t, "Test post text", data.Form.Text)
	assert.Equal(t, strconv.FormatInt(groupOne.ID, 10), data.Form.Group)

	rr = ta.postForm(t, editURL, url.Values{"text": {"Changed text"}, "group": {strconv.FormatInt(groupTwo.ID, 10)}}, author)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rr.Header().Get("Location"))

	updated, err := ta.app.core.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed text", updated.Text)
	assert.Equal(t, groupTwo.ID, updated.Group.ID)
}

func TestEditPostInvalidFormKeepsPost(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	post := ta.createPost(t, author, "Test post text", nil)

	rr := ta.postForm(t, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {""}}, author)

	assert.Equal(t, http.StatusOK, rr.Code)
	data := ta.renderer.last().data.(postFormPage)
	assert.True(t, data.IsEdit)
	assert.Contains(t, data.Form.FieldErrors, "text")

	stored, err := ta.app.core.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test post text", stored.Text)
}

func TestEditPostByNonAuthorRedirectsToDetail(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	stranger := ta.createUser(t, "stranger")
	group := ta.createGroup(t, "Group one", "group_one")
	post := ta.createPost(t, author, "Test post text", group)
	editURL := fmt.Sprintf("/posts/%d/edit/", post.ID)
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	rr := ta.get(t, editURL, stranger)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, detailURL, rr.Header().Get("Location"))

	rr = ta.postForm(t, editURL, url.Values{"text": {"Hijacked"}}, stranger)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, detailURL, rr.Header().Get("Location"))

	stored, err := ta.app.core.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test post text", stored.Text)
	assert.Equal(t, group.ID, *stored.GroupID)
}

func TestEditMissingPost(t *testing.T) {
	ta := newTestApplication(t)
	user := ta.createUser(t, "leo")

	rr := ta.get(t, "/posts/42/edit/", user)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "core/404.html", ta.renderer.last().name)
}

func TestPostDetailContext(t *testing.T) {
	ta := newTestApplication(t)
	author := ta.createUser(t, "author")
	group := ta.createGroup(t, "Test group title", "test_group")
	post := ta.createPost(t, author, "Test post text", group)
	ta.createPost(t, author, "Second", nil)

	ta.get(t, fmt.Sprintf("/posts/%d/", post.ID), author)

	data := ta.renderer.last().data.(postDetailPage)
	assert.Equal(t, "Test post text", data.Post.Text)
	assert.Equal(t, "Test group title", data.Post.Group.Title)
	assert.Equal(t, int64(2), data.AuthorPostsCount)
	assert.True(t, data.CanEdit)
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/filter"
	"github.com/siahsang/yatube/internal/paginator"
	"github.com/siahsang/yatube/internal/storage"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/validator"
	"github.com/siahsang/yatube/models"
)

type postForm struct {
	Text        string
	Group       string
	Image       string
	FieldErrors map[string]string
}

func (app *application) pageNumber(r *http.Request) int {
	return paginator.ParseNumber(app.readString(r.URL.Query(), "page", "1"))
}

// index is served from the page cache. The key holds the clamped page number
// and the viewer, so out-of-range page values share one entry.
func (app *application) index(w http.ResponseWriter, r *http.Request) {
	count, err := app.core.CountPosts(r.Context(), filter.All())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	number := paginator.New[*models.Post](int(count), paginator.PostsPerPage, app.pageNumber(r)).Number
	data := app.newTemplateData(r)

	viewer := ""
	if data.CurrentUser != nil {
		viewer = data.CurrentUser.Username
	}
	key := fmt.Sprintf("index:page=%d:%s", number, viewer)

	body, hit, err := app.cache.GetOrRender(key, app.config.CacheTTL, func() ([]byte, error) {
		page, err := app.core.Feed(r.Context(), filter.All(), number)
		if err != nil {
			return nil, err
		}
		return app.renderBytes("posts/index.html", feedPage{templateData: data, PageObj: page})
	})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Debug("Index page", "key", key, "cache_hit", hit)
	app.writeHTML(w, http.StatusOK, body)
}

func (app *application) groupPosts(w http.ResponseWriter, r *http.Request) {
	group, err := app.core.GetGroupBySlug(r.Context(), app.readStringParam(r, "slug"))
	if err != nil {
		app.lookupErrorResponse(w, r, err)
		return
	}

	page, err := app.core.Feed(r.Context(), filter.ByGroup(group.ID), app.pageNumber(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/group_list.html", groupPage{
		templateData: app.newTemplateData(r),
		Group:        group,
		PageObj:      page,
	})
}

func (app *application) profile(w http.ResponseWriter, r *http.Request) {
	viewer := app.currentUser(r)

	profile, err := app.core.GetProfile(r.Context(), app.readStringParam(r, "username"), viewer)
	if err != nil {
		app.lookupErrorResponse(w, r, err)
		return
	}

	page, err := app.core.Feed(r.Context(), filter.ByAuthor(profile.Author.ID), app.pageNumber(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/profile.html", profilePage{
		templateData: app.newTemplateData(r),
		Profile:      profile,
		CanFollow:    viewer != nil && viewer.ID != profile.Author.ID,
		PageObj:      page,
	})
}

func (app *application) postDetail(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "post_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPost(r.Context(), id)
	if err != nil {
		app.lookupErrorResponse(w, r, err)
		return
	}

	postsCount, err := app.core.CountPostsByAuthor(r.Context(), post.AuthorID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	comments, err := app.core.GetCommentsByPostID(r.Context(), post.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	data := app.newTemplateData(r)
	app.render(w, r, http.StatusOK, "posts/post_detail.html", postDetailPage{
		templateData:     data,
		Post:             post,
		AuthorPostsCount: postsCount,
		Comments:         comments,
		CanEdit:          post.IsAuthoredBy(data.CurrentUser),
	})
}

func (app *application) followIndex(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	page, err := app.core.Feed(r.Context(), filter.FollowedBy(user.ID), app.pageNumber(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "posts/follow.html", feedPage{
		templateData: app.newTemplateData(r),
		PageObj:      page,
	})
}

func (app *application) postCreate(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	if r.Method == http.MethodGet {
		app.renderPostForm(w, r, http.StatusOK, postForm{}, false, 0)
		return
	}

	form, groupID, upload, ok := app.bindPostForm(w, r)
	if !ok {
		return
	}
	if form.FieldErrors != nil {
		app.renderPostForm(w, r, http.StatusOK, form, false, 0)
		return
	}

	image := imageName(upload)
	stored := false
	_, err := databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (*models.Post, error) {
		post, err := app.core.CreatePost(txCtx, &models.Post{
			Text:     form.Text,
			AuthorID: user.ID,
			GroupID:  groupID,
			Image:    image,
		})
		if err != nil {
			return nil, err
		}
		if stored, err = app.saveImage(txCtx, image, upload); err != nil {
			return nil, err
		}
		return post, nil
	})
	if err != nil {
		if stored {
			app.discardImage(r.Context(), image)
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusSeeOther)
}

// postEdit checks authorship before it reads the submitted form.
func (app *application) postEdit(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	id, err := app.readIDParam(r, "post_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPost(r.Context(), id)
	if err != nil {
		app.lookupErrorResponse(w, r, err)
		return
	}

	detailURL := fmt.Sprintf("/posts/%d/", post.ID)
	if !post.IsAuthoredBy(user) {
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		form := postForm{Text: post.Text, Image: post.Image}
		if post.GroupID != nil {
			form.Group = strconv.FormatInt(*post.GroupID, 10)
		}
		app.renderPostForm(w, r, http.StatusOK, form, true, post.ID)
		return
	}

	form, groupID, upload, ok := app.bindPostForm(w, r)
	if !ok {
		return
	}
	form.Image = post.Image
	if form.FieldErrors != nil {
		app.renderPostForm(w, r, http.StatusOK, form, true, post.ID)
		return
	}

	image := post.Image
	if upload != nil {
		image = imageName(upload)
	}
	stored := false
	_, err = databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (*models.Post, error) {
		updated, err := app.core.UpdatePost(txCtx, user, &models.Post{
			ID:      post.ID,
			Text:    form.Text,
			GroupID: groupID,
			Image:   image,
		})
		if err != nil {
			return nil, err
		}
		if stored, err = app.saveImage(txCtx, image, upload); err != nil {
			return nil, err
		}
		return updated, nil
	})
	if err != nil {
		if stored {
			app.discardImage(r.Context(), image)
		}
		switch {
		case errors.Is(err, core.ErrNotPostAuthor):
			http.Redirect(w, r, detailURL, http.StatusSeeOther)
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

// bindPostForm parses and validates a post submission. ok is false when a
// response has already been written. Validation problems are left in
// form.FieldErrors.
func (app *application) bindPostForm(w http.ResponseWriter, r *http.Request) (form postForm, groupID *int64, upload *imageUpload, ok bool) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return form, nil, nil, false
	}

	form.Text = strings.TrimSpace(r.PostForm.Get("text"))
	form.Group = strings.TrimSpace(r.PostForm.Get("group"))

	v := validator.New()
	v.CheckNotBlank(form.Text, "text", "This field is required.")

	if form.Group != "" {
		id, err := strconv.ParseInt(form.Group, 10, 64)
		if err != nil {
			v.AddError("group", "Select a valid choice.")
		} else if _, err := app.core.GetGroupByID(r.Context(), id); err != nil {
			if !errors.Is(err, core.NoRecordFound) {
				app.serverErrorResponse(w, r, err)
				return form, nil, nil, false
			}
			v.AddError("group", "Select a valid choice.")
		} else {
			groupID = &id
		}
	}

	upload, err := app.readImage(r, "image", v)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return form, nil, nil, false
	}

	if !v.IsValid() {
		form.FieldErrors = v.Errors
	}
	return form, groupID, upload, true
}

func imageName(upload *imageUpload) string {
	if upload == nil {
		return ""
	}
	return storage.UniqueName("posts", upload.format)
}

// saveImage runs after the row naming the image is written, so a failed
// upload rolls the row back. It reports whether a file was stored.
func (app *application) saveImage(ctx context.Context, name string, upload *imageUpload) (bool, error) {
	if upload == nil {
		return false, nil
	}
	if _, err := app.media.Save(ctx, name, bytes.NewReader(upload.data), int64(len(upload.data)), upload.contentType); err != nil {
		return false, err
	}
	return true, nil
}

// discardImage removes a stored upload whose transaction did not commit.
func (app *application) discardImage(ctx context.Context, name string) {
	if err := app.media.Delete(ctx, name); err != nil {
		app.logger.Error("Removing orphaned media failed", "name", name, "stack", xerrors.Sprint(err))
	}
}

func (app *application) renderPostForm(w http.ResponseWriter, r *http.Request, status int, form postForm, isEdit bool, postID int64) {
	groups, err := app.core.ListGroups(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.render(w, r, status, "posts/create_post.html", postFormPage{
		templateData: app.newTemplateData(r),
		Form:         form,
		Groups:       groups,
		IsEdit:       isEdit,
		PostID:       postID,
	})
}

// lookupErrorResponse maps a missing record to 404 and anything else to 500.
func (app *application) lookupErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.NoRecordFound) {
		app.notFoundResponse(w, r)
		return
	}
	app.serverErrorResponse(w, r, err)
}

package main

import (
	"bytes"
	"net/http"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/paginator"
	"github.com/siahsang/yatube/models"
)

// templateData is embedded by every page: the navigation bar needs the caller.
type templateData struct {
	CurrentUser *auth.User
}

type feedPage struct {
	templateData
	PageObj paginator.Page[*models.Post]
}

type groupPage struct {
	templateData
	Group   *models.Group
	PageObj paginator.Page[*models.Post]
}

type profilePage struct {
	templateData
	Profile   *models.Profile
	CanFollow bool
	PageObj   paginator.Page[*models.Post]
}

type postDetailPage struct {
	templateData
	Post             *models.Post
	AuthorPostsCount int64
	Comments         []*models.Comment
	CommentForm      commentForm
	CanEdit          bool
}

type postFormPage struct {
	templateData
	Form   postForm
	Groups []*models.Group
	IsEdit bool
	PostID int64
}

type signupPage struct {
	templateData
	Form signupForm
}

type loginPage struct {
	templateData
	Form loginForm
	Next string
}

func (app *application) newTemplateData(r *http.Request) templateData {
	user, _ := app.auth.GetAuthenticatedUser(r)
	return templateData{CurrentUser: user}
}

// renderBytes renders into memory so a template error can still become a 500 page.
func (app *application) renderBytes(page string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := app.renderer.Render(&buf, page, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	body, err := app.renderBytes(page, data)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	app.writeHTML(w, status, body)
}

func (app *application) writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		app.logger.Error(err.Error())
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/validator"
	"github.com/siahsang/yatube/models"
)

type commentForm struct {
	Text string
}

// addComment always returns to the post; blank text is dropped silently.
func (app *application) addComment(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "post_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	form := commentForm{Text: strings.TrimSpace(r.PostForm.Get("text"))}

	v := validator.New()
	v.CheckNotBlank(form.Text, "text", "This field is required.")

	user := app.currentUser(r)
	_, err = databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (*models.Comment, error) {
		post, err := app.core.GetPost(txCtx, id)
		if err != nil {
			return nil, err
		}
		if !v.IsValid() {
			return nil, nil
		}
		return app.core.CreateComment(txCtx, &models.Comment{
			Text:     form.Text,
			AuthorID: user.ID,
			PostID:   post.ID,
		})
	})
	if err != nil {
		app.lookupErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", id), http.StatusSeeOther)
}

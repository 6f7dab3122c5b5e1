package main

import (
	"context"
	"net/http"
	"net/url"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
)

func (app *application) profileFollow(w http.ResponseWriter, r *http.Request) {
	app.changeFollow(w, r, app.core.FollowUser)
}

func (app *application) profileUnfollow(w http.ResponseWriter, r *http.Request) {
	app.changeFollow(w, r, app.core.UnfollowUser)
}

// profileRedirect answers GET on the follow endpoints. Follow edges only
// change on POST, so a cross-site link cannot alter them.
func (app *application) profileRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/profile/"+url.PathEscape(app.readStringParam(r, "username"))+"/", http.StatusSeeOther)
}

func (app *application) changeFollow(w http.ResponseWriter, r *http.Request, change func(context.Context, *auth.User, string) (*auth.User, error)) {
	user := app.currentUser(r)
	username := app.readStringParam(r, "username")

	author, err := databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (*auth.User, error) {
		return change(txCtx, user, username)
	})
	if err != nil {
		app.lookupErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusSeeOther)
}

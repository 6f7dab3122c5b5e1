package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/siahsang/yatube/internal/storage"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/", app.index)
	router.HandlerFunc(http.MethodGet, "/group/:slug/", app.groupPosts)
	router.HandlerFunc(http.MethodGet, "/profile/:username/", app.profile)
	router.HandlerFunc(http.MethodGet, "/posts/:post_id/", app.postDetail)

	router.HandlerFunc(http.MethodGet, "/create/", app.requireAuthenticatedUser(app.postCreate))
	router.HandlerFunc(http.MethodPost, "/create/", app.requireAuthenticatedUser(app.postCreate))
	router.HandlerFunc(http.MethodGet, "/posts/:post_id/edit/", app.requireAuthenticatedUser(app.postEdit))
	router.HandlerFunc(http.MethodPost, "/posts/:post_id/edit/", app.requireAuthenticatedUser(app.postEdit))
	router.HandlerFunc(http.MethodPost, "/posts/:post_id/comment/", app.requireAuthenticatedUser(app.addComment))

	router.HandlerFunc(http.MethodGet, "/follow/", app.requireAuthenticatedUser(app.followIndex))
	router.HandlerFunc(http.MethodPost, "/profile/:username/follow/", app.requireAuthenticatedUser(app.profileFollow))
	router.HandlerFunc(http.MethodPost, "/profile/:username/unfollow/", app.requireAuthenticatedUser(app.profileUnfollow))
	router.HandlerFunc(http.MethodGet, "/profile/:username/follow/", app.requireAuthenticatedUser(app.profileRedirect))
	router.HandlerFunc(http.MethodGet, "/profile/:username/unfollow/", app.requireAuthenticatedUser(app.profileRedirect))

	router.HandlerFunc(http.MethodGet, "/auth/signup/", app.signup)
	router.HandlerFunc(http.MethodPost, "/auth/signup/", app.signup)
	router.HandlerFunc(http.MethodGet, "/auth/login/", app.login)
	router.HandlerFunc(http.MethodPost, "/auth/login/", app.login)
	router.HandlerFunc(http.MethodPost, "/auth/logout/", app.logout)

	if local, ok := app.media.(*storage.LocalStorage); ok {
		router.ServeFiles("/media/*filepath", http.Dir(local.BasePath()))
	}

	return app.recoverPanic(app.logRequest(app.crossOrigin(app.authenticate(router))))
}

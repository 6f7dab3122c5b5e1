package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/core"
)

const tokenCookieName = "token"

// authenticate attaches the caller to the request context. A missing, invalid
// or expired token leaves the request anonymous.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		w.Header().Add("Vary", "Cookie")

		token := readToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claim, err := app.auth.Authenticate(token)
		if err != nil {
			app.logger.Debug("Ignoring invalid token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		user, err := app.core.GetUserByUsername(r.Context(), claim.Username)
		if err != nil {
			if errors.Is(err, core.NoRecordFound) {
				next.ServeHTTP(w, r)
				return
			}
			app.serverErrorResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, app.auth.SetAuthenticatedUser(r, user))
	})
}

func readToken(r *http.Request) string {
	if authorization := r.Header.Get("Authorization"); authorization != "" {
		scheme, token, ok := strings.Cut(authorization, " ")
		if ok && scheme == "Token" {
			return strings.TrimSpace(token)
		}
		return ""
	}

	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !app.auth.IsUserAuthenticated(r) {
			http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// crossOrigin rejects unsafe cross-site requests with the 403 page.
func (app *application) crossOrigin(next http.Handler) http.Handler {
	protection := http.NewCrossOriginProtection()
	protection.SetDenyHandler(http.HandlerFunc(app.csrfFailureResponse))
	return protection.Handler(next)
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, xerrors.Newf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		app.logger.Info("Request handled",
			"method", r.Method,
			"url", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/validator"
)

type loginForm struct {
	Username    string
	FieldErrors map[string]string
}

const invalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	data := loginPage{
		templateData: app.newTemplateData(r),
		Next:         app.readString(r.URL.Query(), "next", ""),
	}

	if r.Method == http.MethodGet {
		app.render(w, r, http.StatusOK, "users/login.html", data)
		return
	}

	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	data.Form.Username = strings.TrimSpace(r.PostForm.Get("username"))
	data.Next = app.readString(r.PostForm, "next", data.Next)
	password := r.PostForm.Get("password")

	v := validator.New()
	v.CheckNotBlank(data.Form.Username, "username", "This field is required.")
	v.CheckNotBlank(password, "password", "This field is required.")

	if !v.IsValid() {
		data.Form.FieldErrors = v.Errors
		app.render(w, r, http.StatusOK, "users/login.html", data)
		return
	}

	user, err := app.core.GetUserByUsername(r.Context(), data.Form.Username)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			v.AddError("credentials", invalidCredentials)
			data.Form.FieldErrors = v.Errors
			app.render(w, r, http.StatusOK, "users/login.html", data)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	match, err := user.IsPasswordMatch(password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !match {
		v.AddError("credentials", invalidCredentials)
		data.Form.FieldErrors = v.Errors
		app.render(w, r, http.StatusOK, "users/login.html", data)
		return
	}

	token, err := app.auth.GenerateToken(user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.setTokenCookie(w, r, token)
	http.Redirect(w, r, safeNext(data.Next), http.StatusSeeOther)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	app.clearTokenCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/validator"
)

type signupForm struct {
	FirstName   string
	LastName    string
	Username    string
	Email       string
	FieldErrors map[string]string
}

func (app *application) signup(w http.ResponseWriter, r *http.Request) {
	data := signupPage{templateData: app.newTemplateData(r)}

	if r.Method == http.MethodGet {
		app.render(w, r, http.StatusOK, "users/signup.html", data)
		return
	}

	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	data.Form = signupForm{
		FirstName: strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:  strings.TrimSpace(r.PostForm.Get("last_name")),
		Username:  strings.TrimSpace(r.PostForm.Get("username")),
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
	}
	password := r.PostForm.Get("password")

	v := validator.New()
	checkUsername(v, data.Form.Username)
	checkEmail(v, data.Form.Email)
	v.CheckMaxLength(data.Form.FirstName, 150, "first_name", "Ensure this value has at most 150 characters.")
	v.CheckMaxLength(data.Form.LastName, 150, "last_name", "Ensure this value has at most 150 characters.")
	v.CheckNotBlank(password, "password", "This field is required.")
	v.Check(len(password) >= 8, "password", "This password is too short. It must contain at least 8 characters.")

	if !v.IsValid() {
		data.Form.FieldErrors = v.Errors
		app.render(w, r, http.StatusOK, "users/signup.html", data)
		return
	}

	user := &auth.User{
		Username:  data.Form.Username,
		Email:     data.Form.Email,
		FirstName: data.Form.FirstName,
		LastName:  data.Form.LastName,
	}
	if err := user.SetPassword(password); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if err := app.core.CreateNewUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateUsername):
			v.AddError("username", "A user with that username already exists.")
			data.Form.FieldErrors = v.Errors
			app.render(w, r, http.StatusOK, "users/signup.html", data)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	token, err := app.auth.GenerateToken(user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.setTokenCookie(w, r, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

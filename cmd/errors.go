package main

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/mdobak/go-xerrors"
)

type AppError struct {
	ErrorStack   error
	ErrorMessage string
	ErrorDetails map[string]string
}

type errorPage struct {
	templateData
	Path string
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "core/404.html", &AppError{
		ErrorMessage: "The requested resource could not be found.",
	})
}

func (app *application) csrfFailureResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, "core/403csrf.html", &AppError{
		ErrorMessage: "Cross-origin request rejected.",
		ErrorDetails: map[string]string{
			"origin":         r.Header.Get("Origin"),
			"sec_fetch_site": r.Header.Get("Sec-Fetch-Site"),
		},
	})
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusInternalServerError, "core/500.html", &AppError{
		ErrorStack:   err,
		ErrorMessage: "An internal server error occurred.",
	})
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, slog.LevelWarn, &AppError{ErrorStack: err, ErrorMessage: "Bad request"})
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, page string, appError *AppError) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	app.logError(r, level, appError)

	var buf bytes.Buffer
	data := errorPage{templateData: app.newTemplateData(r), Path: r.URL.Path}
	if err := app.renderer.Render(&buf, page, data); err != nil {
		app.logger.Error("Errors rendering error page", "page", page, "stack", xerrors.Sprint(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		app.logger.Error(err.Error())
	}
}

func (app *application) logError(r *http.Request, level slog.Level, appError *AppError) {
	var attrs []slog.Attr
	attrs = append(attrs, slog.String("request_url", r.URL.String()))
	attrs = append(attrs, slog.String("request_method", r.Method))
	attrs = append(attrs, slog.String("message", appError.ErrorMessage))
	if appError.ErrorStack != nil {
		attrs = append(attrs, slog.String("stack", xerrors.Sprint(appError.ErrorStack)))
	}

	for key, valueData := range appError.ErrorDetails {
		attrs = append(attrs, slog.Any(key, valueData))
	}

	app.logger.LogAttrs(r.Context(), level, "ErrorStack in handling request", attrs...)
}

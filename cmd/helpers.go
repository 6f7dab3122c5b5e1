package main

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/validator"
)

const (
	maxImageSize = 5 << 20
	maxBodySize  = maxImageSize + 1<<20
)

func (app *application) readIDParam(r *http.Request, name string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil || id < 1 {
		return 0, xerrors.Newf("invalid %s parameter", name)
	}
	return id, nil
}

func (app *application) readStringParam(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

func (app *application) readString(qs url.Values, key string, defaultValue string) string {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	return s
}

func (app *application) currentUser(r *http.Request) *auth.User {
	user, _ := app.auth.GetAuthenticatedUser(r)
	return user
}

// parseForm accepts multipart and urlencoded bodies alike.
func (app *application) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	err := r.ParseMultipartForm(maxImageSize)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return xerrors.New(err)
	}
	if err := r.ParseForm(); err != nil {
		return xerrors.New(err)
	}
	return nil
}

type imageUpload struct {
	data        []byte
	format      string
	contentType string
}

// readImage returns nil when no file was sent. Problems with the file are
// reported on v under key.
func (app *application) readImage(r *http.Request, key string, v *validator.Validator) (*imageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(key)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, xerrors.New(err)
	}
	defer file.Close()

	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}
	if header.Size > maxImageSize {
		v.AddError(key, "The image must be at most 5 MB.")
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, xerrors.New(err)
	}

	format := v.CheckImage(data, key, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	if format == "" {
		return nil, nil
	}

	return &imageUpload{
		data:        data,
		format:      format,
		contentType: "image/" + format,
	}, nil
}

// loginURL keeps slashes readable in next, as in "/auth/login/?next=/create/".
func loginURL(next string) string {
	return "/auth/login/?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (app *application) setTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(app.auth.TokenTTL()),
		MaxAge:   int(app.auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (app *application) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

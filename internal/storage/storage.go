// Package storage saves uploaded media and resolves public URLs for it.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"
)

var ErrInvalidName = xerrors.Message("Invalid media name")

type Storage interface {
	// Save stores size bytes from r under name and returns the stored name.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes name. A missing name is not an error.
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// UniqueName builds "<dir>/<uuid>.<ext>" so uploads never overwrite each other.
func UniqueName(dir, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "jpeg" {
		ext = "jpg"
	}
	return path.Join(dir, uuid.NewString()+"."+ext)
}

// cleanName rejects names escaping the media root.
func cleanName(name string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || cleaned != strings.TrimPrefix(name, "/") {
		return "", xerrors.Newf("%w: %q", ErrInvalidName, name)
	}
	return cleaned, nil
}

func joinURL(base, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}

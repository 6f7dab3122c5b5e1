package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mdobak/go-xerrors"
)

type LocalStorage struct {
	basePath string
	baseURL  string
	logger   *slog.Logger
}

func NewLocalStorage(basePath, baseURL string, logger *slog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, xerrors.New(err)
	}
	return &LocalStorage{basePath: basePath, baseURL: baseURL, logger: logger}, nil
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader, size int64, _ string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", xerrors.New(err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", xerrors.New(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(r, size)); err != nil {
		_ = os.Remove(fullPath)
		return "", xerrors.New(err)
	}

	s.logger.InfoContext(ctx, "Media file saved", "path", fullPath)
	return name, nil
}

func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return xerrors.New(err)
	}

	s.logger.InfoContext(ctx, "Media file removed", "path", fullPath)
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return joinURL(s.baseURL, name)
}

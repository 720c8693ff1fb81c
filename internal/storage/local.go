package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/stencil-engine/pkg/errors"
)

// Local implements Storage on a local directory.
type Local struct {
	basePath string
}

// NewLocal creates a Local storage rooted at basePath.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		basePath = "./plans"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "create storage directory", err)
	}
	return &Local{basePath: basePath}, nil
}

func (s *Local) fullPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

// Upload stores the data from reader under key.
func (s *Local) Upload(ctx context.Context, key string, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "create directory", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "create file", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "write file", err)
	}
	return nil
}

// UploadFile stores a local file under key.
func (s *Local) UploadFile(ctx context.Context, key string, localPath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "open source file", err)
	}
	defer src.Close()
	return s.Upload(ctx, key, src)
}

// Download opens the object stored under key.
func (s *Local) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.fullPath(key))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDownloadError, "open object", err)
	}
	return file, nil
}

// DownloadFile fetches the object under key into a local file.
func (s *Local) DownloadFile(ctx context.Context, key string, localPath string) error {
	src, err := s.Download(ctx, key)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeDownloadError, "create directory", err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDownloadError, "create file", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return apperrors.Wrap(apperrors.CodeDownloadError, "copy object", err)
	}
	return nil
}

// Exists reports whether an object exists under key.
func (s *Local) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.fullPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

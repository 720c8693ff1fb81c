// Package storage moves plan files between machines: a generated plan
// can be published to a shared location and replayed elsewhere on the
// same grid configuration. Backends: local filesystem and Tencent COS.
package storage

import (
	"context"
	"io"

	"github.com/stencil-engine/pkg/config"
	apperrors "github.com/stencil-engine/pkg/errors"
)

// Storage is the interface plan publication runs against.
type Storage interface {
	// Upload stores the data from reader under key.
	Upload(ctx context.Context, key string, reader io.Reader) error
	// UploadFile stores a local file under key.
	UploadFile(ctx context.Context, key string, localPath string) error
	// Download opens the object stored under key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// DownloadFile fetches the object under key into a local file.
	DownloadFile(ctx context.Context, key string, localPath string) error
	// Exists reports whether an object exists under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Type enumerates the storage backends.
type Type string

const (
	// TypeLocal keeps plan files in a local directory.
	TypeLocal Type = "local"
	// TypeCOS publishes plan files to a COS bucket.
	TypeCOS Type = "cos"
)

// New creates a Storage instance from the configuration.
func New(cfg *config.StorageConfig) (Storage, error) {
	switch Type(cfg.Type) {
	case TypeLocal, "":
		return NewLocal(cfg.LocalPath)
	case TypeCOS:
		return NewCOS(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return nil, apperrors.Newf(apperrors.CodeConfigError, "unsupported storage type: %s", cfg.Type)
	}
}
